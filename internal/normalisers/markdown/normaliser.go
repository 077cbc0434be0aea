package markdown

import (
	"regexp"
	"strings"
)

var (
	codeBlock     = regexp.MustCompile("(?s)```.*?```")
	inlineCode    = regexp.MustCompile("`([^`]+)`")
	images        = regexp.MustCompile(`!\[[^\]]*\]\([^)]*\)`)
	links         = regexp.MustCompile(`\[([^\]]+)\]\([^)]*\)`)
	headings      = regexp.MustCompile(`(?m)^[ \t]*#{1,6}[ \t]+`)
	blockquotes   = regexp.MustCompile(`(?m)^[ \t]*>[ \t]?`)
	rules         = regexp.MustCompile(`(?m)^[ \t]*([-*_][ \t]*){3,}$`)
	bullets       = regexp.MustCompile(`(?m)^[ \t]*[-*+][ \t]+`)
	numbered      = regexp.MustCompile(`(?m)^[ \t]*\d+[.)][ \t]+`)
	emphasis      = regexp.MustCompile(`(\*\*|__|\*|~~)`)
	underscoreEm  = regexp.MustCompile(`(^|\W)_([^_]+)_(\W|$)`)
	multiNewlines = regexp.MustCompile(`\n{3,}`)
)

// Text strips Markdown syntax and keeps the readable text. Link text is
// kept and link targets dropped. Underscores inside words survive so
// handles such as brighton_hove stay intact.
func Text(content string) string {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = codeBlock.ReplaceAllString(content, "")
	content = images.ReplaceAllString(content, "")
	content = links.ReplaceAllString(content, "$1")
	content = inlineCode.ReplaceAllString(content, "$1")
	content = rules.ReplaceAllString(content, "")
	content = headings.ReplaceAllString(content, "")
	content = blockquotes.ReplaceAllString(content, "")
	content = bullets.ReplaceAllString(content, "")
	content = numbered.ReplaceAllString(content, "")
	content = emphasis.ReplaceAllString(content, "")
	content = underscoreEm.ReplaceAllString(content, "$1$2$3")
	content = multiNewlines.ReplaceAllString(content, "\n\n")
	return strings.TrimSpace(content)
}
