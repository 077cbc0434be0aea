package plaintext

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestText(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"unchanged", "The council set its budget.", "The council set its budget."},
		{"trims", "  padded \n", "padded"},
		{"crlf", "one\r\ntwo\rthree", "one\ntwo\nthree"},
		{"control characters", "bell\x07 and\x00 nul", "bell and nul"},
		{"byte order mark", "\uFEFFHarbour", "Harbour"},
		{"tabs kept", "a\tb", "a\tb"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Text(tt.content))
		})
	}
}
