package html

import (
	"html"
	"regexp"
	"strings"
)

// Pre-compiled expressions, applied in order by Text.
var (
	dropElements = []*regexp.Regexp{
		regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`),
		regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`),
		regexp.MustCompile(`(?is)<noscript[^>]*>.*?</noscript>`),
		regexp.MustCompile(`(?is)<head[^>]*>.*?</head>`),
		regexp.MustCompile(`(?is)<svg[^>]*>.*?</svg>`),
		regexp.MustCompile(`(?is)<figure[^>]*>.*?</figure>`),
		regexp.MustCompile(`(?s)<!--.*?-->`),
	}
	openBlock   = regexp.MustCompile(`(?i)<(p|div|h[1-6]|li|tr|blockquote|pre|table|section|article)[^>]*>`)
	closeBlock  = regexp.MustCompile(`(?i)</(p|div|h[1-6]|li|tr|blockquote|pre|table|section|article)>`)
	lineBreaks  = regexp.MustCompile(`(?i)<(br|hr)\s*/?>`)
	anyTag      = regexp.MustCompile(`<[^>]+>`)
	multiSpaces = regexp.MustCompile(`[ \t\p{Zs}]+`)
)

// Text returns the visible text of an HTML fragment, one block per line.
func Text(content string) string {
	for _, re := range dropElements {
		content = re.ReplaceAllString(content, "")
	}

	content = openBlock.ReplaceAllString(content, "\n")
	content = closeBlock.ReplaceAllString(content, "\n")
	content = lineBreaks.ReplaceAllString(content, "\n")
	content = anyTag.ReplaceAllString(content, "")
	content = html.UnescapeString(content)

	lines := strings.Split(content, "\n")
	kept := lines[:0]
	for _, line := range lines {
		line = strings.TrimSpace(multiSpaces.ReplaceAllString(line, " "))
		if line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}
