package plaintext

import (
	"strings"
	"unicode"
)

const byteOrderMark = '\uFEFF'

// Text normalises line endings, drops control characters and trims
// surrounding whitespace. Line breaks and tabs are kept.
func Text(content string) string {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")
	content = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) || r == byteOrderMark {
			return -1
		}
		return r
	}, content)
	return strings.TrimSpace(content)
}
