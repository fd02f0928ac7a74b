package telegram

import (
	"strings"
)

// ParseInput делит сообщение на команду и аргументы.
// Обычный текст -> ("", text как есть), его чистит контроллер.
// "/more@CineBot" -> ("more", "").
func ParseInput(text string) (command, args string) {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "/") {
		return "", text
	}

	parts := strings.SplitN(trimmed, " ", 2)
	command = strings.ToLower(strings.TrimPrefix(parts[0], "/"))
	if at := strings.Index(command, "@"); at >= 0 {
		command = command[:at]
	}
	if command == "" {
		return "", text
	}

	if len(parts) > 1 {
		args = normalizeSpaces(parts[1])
	}
	return command, args
}

func normalizeSpaces(s string) string {
	fields := strings.Fields(s)
	return strings.Join(fields, " ")
}
