package telegram

import (
	"strings"
	"unicode/utf16"
)

// Chunk splits text into pieces of at most limit UTF-16 code units, the unit
// Telegram counts message length in. A piece ends at the last newline inside
// the window when there is one, so code blocks and lists break between lines.
func Chunk(text string, limit int) []string {
	if limit <= 0 || utf16Len(text) <= limit {
		return []string{text}
	}

	var out []string
	runes := []rune(text)
	for len(runes) > 0 {
		end, units, nl := 0, 0, -1
		for end < len(runes) {
			n := utf16.RuneLen(runes[end])
			if n < 0 {
				n = 1
			}
			if units+n > limit {
				break
			}
			if runes[end] == '\n' {
				nl = end
			}
			units += n
			end++
		}
		if end == len(runes) {
			out = append(out, string(runes))
			break
		}
		cut := max(end, 1)
		if nl > 0 {
			cut = nl + 1
		}
		out = append(out, strings.TrimRight(string(runes[:cut]), "\n"))
		runes = runes[cut:]
	}
	return out
}

func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		if l := utf16.RuneLen(r); l > 0 {
			n += l
		} else {
			n++
		}
	}
	return n
}
