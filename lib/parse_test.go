package lib

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseHeadersStringToMap(t *testing.T) {
	tests := []struct {
		input    string
		expected map[string][]string
	}{
		{"", map[string][]string{}},
		{"Content-Type: text/html", map[string][]string{"Content-Type": {"text/html"}}},
		{"X-A: 1, X-B: 2, X-A: 3", map[string][]string{"X-A": {"1", "3"}, "X-B": {"2"}}},
		{"Invalid, : empty, Cookie: a=b:c", map[string][]string{"Cookie": {"a=b:c"}}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, ParseHeadersStringToMap(tt.input), tt.input)
	}
}

func TestParseHeaderFlags(t *testing.T) {
	headers := ParseHeaderFlags([]string{"Accept: text/html, application/xhtml+xml", "Cookie:session=1", "broken"})
	assert.Equal(t, map[string][]string{
		"Accept": {"text/html, application/xhtml+xml"},
		"Cookie": {"session=1"},
	}, headers)
}
