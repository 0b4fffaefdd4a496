package lib

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockData struct {
	Name    string `json:"name" yaml:"name"`
	Content string `json:"content" yaml:"content"`
}

func (m mockData) String() string {
	return m.Name
}

func (m mockData) Pretty() string {
	return "Name: " + m.Name + " | Content: " + m.Content
}

func (m mockData) TableHeaders() []string {
	return []string{"Name", "Content"}
}

func (m mockData) TableRow() []string {
	return []string{m.Name, m.Content}
}

func TestFormatOutput(t *testing.T) {
	data := []mockData{{Name: "Test", Content: "Sample Content"}, {Name: "Other", Content: "More"}}

	tests := []struct {
		format FormatType
		output string
		hasErr bool
	}{
		{Text, "Test\nOther", false},
		{Pretty, "Name: Test | Content: Sample Content\nName: Other | Content: More", false},
		{JSON, `[
  {
    "name": "Test",
    "content": "Sample Content"
  },
  {
    "name": "Other",
    "content": "More"
  }
]`, false},
		{YAML, "- name: Test\n  content: Sample Content\n- name: Other\n  content: More\n", false},
		{FormatType("unknown"), "", true},
	}

	for _, tt := range tests {
		result, err := FormatOutput(data, tt.format)
		if tt.hasErr {
			assert.Error(t, err)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.output, result, "format %s", tt.format)
	}
}

func TestFormatOutputTable(t *testing.T) {
	result, err := FormatOutput([]mockData{{Name: "Test", Content: "Sample"}}, Table)
	require.NoError(t, err)
	assert.Contains(t, result, "NAME")
	assert.Contains(t, result, "CONTENT")
	assert.Contains(t, result, "Sample")
}

func TestFormatOutputEmptyJSON(t *testing.T) {
	result, err := FormatOutput([]mockData(nil), JSON)
	require.NoError(t, err)
	assert.Equal(t, "[]", result)
}

func TestFormatOutputToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "output.txt")

	err := FormatOutputToFile([]mockData{{Name: "Test", Content: "Sample Content"}}, Pretty, path)
	require.NoError(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Name: Test | Content: Sample Content", string(content))
}

func TestParseFormatType(t *testing.T) {
	format, err := ParseFormatType(" TABLE ")
	require.NoError(t, err)
	assert.Equal(t, Table, format)

	_, err = ParseFormatType("xml")
	assert.Error(t, err)
}
