package domain

import (
	"strings"
	"unicode/utf8"
)

const MaxQueryLength = 1000

// NormalizeQuery обрезает пробелы и слишком длинный ввод.
// Пустой результат значит, что запрос отправлять не надо.
func NormalizeQuery(raw string) string {
	q := strings.TrimSpace(raw)
	if len(q) <= MaxQueryLength {
		return q
	}
	q = q[:MaxQueryLength]
	// не режем посреди руны
	for len(q) > 0 && !utf8.ValidString(q) {
		q = q[:len(q)-1]
	}
	return strings.TrimSpace(q)
}

func ValidateQuery(raw string) error {
	q := strings.TrimSpace(raw)
	if q == "" {
		return ErrEmptyQuery
	}
	if len(q) > MaxQueryLength {
		return ErrQueryTooLong
	}
	return nil
}
