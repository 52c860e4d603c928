package telegram

import (
	"strings"
	"unicode/utf8"

	"github.com/set-night/resumidor/internal/domain"
	"github.com/set-night/resumidor/internal/render"
)

// SplitMessage splits a message into chunks of maxLen characters,
// trying to split at newlines when possible.
func SplitMessage(text string, maxLen int) []string {
	if utf8.RuneCountInString(text) <= maxLen {
		return []string{text}
	}

	var parts []string
	runes := []rune(text)
	for len(runes) > 0 {
		if len(runes) <= maxLen {
			parts = append(parts, string(runes))
			break
		}

		splitAt := maxLen
		// Prefer a newline in the second half of the chunk
		chunk := string(runes[:maxLen])
		if i := strings.LastIndex(chunk, "\n"); i >= 0 {
			if n := utf8.RuneCountInString(chunk[:i]); n > maxLen/2 {
				splitAt = n + 1
			}
		}

		parts = append(parts, string(runes[:splitAt]))
		runes = runes[splitAt:]
	}

	return parts
}

// MessageText flattens a stored message for a chat client without HTML support.
func MessageText(m domain.Message) string {
	if !m.IsHTML {
		return m.Text
	}
	return render.PlainText(m.Text)
}

// Snippet shortens s to at most n runes for button labels.
func Snippet(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "…"
}
