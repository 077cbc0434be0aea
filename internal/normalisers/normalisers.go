package normalisers

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/storyfeed/internal/core/domain"
	"github.com/custodia-labs/storyfeed/internal/normalisers/html"
	"github.com/custodia-labs/storyfeed/internal/normalisers/markdown"
	"github.com/custodia-labs/storyfeed/internal/normalisers/plaintext"
)

// Format names how a slide body is written.
type Format string

// Slide formats.
const (
	FormatText     Format = "text"
	FormatHTML     Format = "html"
	FormatMarkdown Format = "markdown"
)

// Func converts one slide body to plain text.
type Func func(content string) string

var registry = map[Format]Func{
	FormatText:     plaintext.Text,
	FormatHTML:     html.Text,
	FormatMarkdown: markdown.Text,
}

// Formats returns the supported formats in a stable order.
func Formats() []Format {
	return []Format{FormatText, FormatHTML, FormatMarkdown}
}

// For returns the normaliser for format. An empty format selects plain text.
func For(format string) (Func, error) {
	f := Format(strings.ToLower(strings.TrimSpace(format)))
	if f == "" {
		f = FormatText
	}
	fn, ok := registry[f]
	if !ok {
		return nil, fmt.Errorf("%w: slide format %q", domain.ErrUnsupportedType, format)
	}
	return fn, nil
}

// Slides normalises every slide body in place.
func Slides(format string, slides []domain.Slide) error {
	fn, err := For(format)
	if err != nil {
		return err
	}
	for i := range slides {
		slides[i].Content = fn(slides[i].Content)
	}
	return nil
}
