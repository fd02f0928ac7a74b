package telegram

import (
	"fmt"
	"html"
	"strings"

	"github.com/kitbuilder587/cine-bot/internal/controller"
	"github.com/kitbuilder587/cine-bot/internal/domain"
)

const (
	// лимиты телеграма
	messageLimit = 4096
	captionLimit = 1024

	MoreButtonText = "Generate more"
	CallbackMore   = "more"

	noPosterText = "No poster available"
)

// FormatCard - карточка фильма в HTML. Постер сюда не входит,
// его шлет SendPhoto.
func FormatCard(r domain.ResultRecord) string {
	var sb strings.Builder

	title := html.EscapeString(r.DisplayTitle())
	if r.Enrichment != nil && r.Enrichment.ReleaseYear != "" {
		title += " (" + html.EscapeString(r.Enrichment.ReleaseYear) + ")"
	}
	if link := r.ExternalLink(); link != "" {
		sb.WriteString(fmt.Sprintf("<a href=\"%s\"><b>%s</b></a>", html.EscapeString(link), title))
	} else {
		sb.WriteString("<b>" + title + "</b>")
	}

	if desc := strings.TrimSpace(r.Description); desc != "" {
		sb.WriteString("\n\n" + html.EscapeString(desc))
	}

	if cast := r.Enrichment.CastMembers(); len(cast) > 0 {
		sb.WriteString("\n\n<b>Cast:</b> " + html.EscapeString(strings.Join(cast, ", ")))
	}

	var badges []string
	if r.Enrichment != nil && strings.TrimSpace(r.Enrichment.Score) != "" {
		badges = append(badges, fmt.Sprintf("🍅 Critics: %s/100", html.EscapeString(strings.TrimSpace(r.Enrichment.Score))))
	}
	if pct, ok := r.ConfidencePercent(); ok {
		badges = append(badges, fmt.Sprintf("Match: %d%%", pct))
	}
	if len(badges) > 0 {
		sb.WriteString("\n\n" + strings.Join(badges, "  ·  "))
	}

	return sb.String()
}

// FormatTextCard - карточка без фото: плейсхолдер или ссылка на постер.
func FormatTextCard(r domain.ResultRecord) string {
	card := FormatCard(r)
	if poster := r.PosterURL(); poster != "" {
		return card + fmt.Sprintf("\n\n<a href=\"%s\">Poster</a>", html.EscapeString(poster))
	}
	return card + "\n\n<i>" + noPosterText + "</i>"
}

func FormatBanner(message string) string {
	return "⚠️ " + html.EscapeString(message)
}

// FormatHeader - строка перед новой порцией карточек.
func FormatHeader(s controller.State, more bool) string {
	n := s.LastBatch
	if more {
		return fmt.Sprintf("➕ %s more", pluralMovies(n))
	}
	return fmt.Sprintf("🎬 %s for <i>%s</i>", pluralMovies(n), html.EscapeString(s.LastSubmittedQuery))
}

func FormatFooter(s controller.State) string {
	return fmt.Sprintf("Showing %s.", pluralMovies(len(s.Results)))
}

func FormatHistory(entries []domain.HistoryEntry) string {
	var sb strings.Builder
	sb.WriteString("<b>Recent searches:</b>\n\n")

	for i, e := range entries {
		mark := "✓"
		detail := pluralMovies(e.ResultCount)
		if !e.Succeeded() {
			mark = "✗"
			detail = controller.MessageFor(e.Outcome, e.Kind == domain.HistoryMore)
		}
		kind := ""
		if e.Kind == domain.HistoryMore {
			kind = " (more)"
		}
		sb.WriteString(fmt.Sprintf("%d. %s <i>%s</i>%s: %s\n   %s\n",
			i+1,
			mark,
			html.EscapeString(truncateText(e.Query, 80)),
			kind,
			html.EscapeString(detail),
			e.CreatedAt.Format("02 Jan 15:04"),
		))
	}

	return strings.TrimRight(sb.String(), "\n")
}

func pluralMovies(n int) string {
	if n == 1 {
		return "1 movie"
	}
	return fmt.Sprintf("%d movies", n)
}

func SplitMessage(text string, maxLen int) []string {
	if len(text) <= maxLen {
		return []string{text}
	}

	var messages []string
	for len(text) > 0 {
		if len(text) <= maxLen {
			messages = append(messages, text)
			break
		}

		splitPoint := findSafeSplitPoint(text, maxLen)
		if splitPoint <= 0 || splitPoint > len(text) {
			splitPoint = maxLen
		}

		messages = append(messages, text[:splitPoint])
		text = text[splitPoint:]
	}

	return messages
}

func findSafeSplitPoint(text string, maxLen int) int {
	// ищем пробел или перевод строки, не ломая HTML-теги
	for i := maxLen - 1; i > maxLen/2; i-- {
		if i >= len(text) {
			continue
		}
		if isInsideHTMLTag(text, i) {
			continue
		}

		if text[i] == '\n' || text[i] == ' ' {
			return i + 1
		}
	}

	// внутри тега - ищем конец
	if maxLen < len(text) && isInsideHTMLTag(text, maxLen) {
		for i := maxLen; i < len(text); i++ {
			if text[i] == '>' {
				for j := i + 1; j < len(text) && j < i+50; j++ {
					if text[j] == '\n' || text[j] == ' ' {
						return j + 1
					}
				}
				return i + 1
			}
		}
	}

	for i := maxLen - 1; i > 0; i-- {
		if text[i] == ' ' || text[i] == '\n' {
			return i + 1
		}
	}

	return maxLen
}

func isInsideHTMLTag(text string, pos int) bool {
	if pos >= len(text) || pos < 0 {
		return false
	}
	for i := pos; i >= 0; i-- {
		if text[i] == '>' {
			return false
		}
		if text[i] == '<' {
			return true
		}
	}
	return false
}

// truncateText режет по рунам.
func truncateText(s string, maxRunes int) string {
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	return string(runes[:maxRunes-1]) + "…"
}
