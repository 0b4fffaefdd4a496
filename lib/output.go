package lib

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/olekukonko/tablewriter"
	"gopkg.in/yaml.v3"
)

type FormatType string

const (
	Pretty FormatType = "pretty"
	Text   FormatType = "text"
	JSON   FormatType = "json"
	YAML   FormatType = "yaml"
	Table  FormatType = "table"
)

// OutputFormats lists the formats accepted by ParseFormatType
var OutputFormats = []FormatType{Pretty, Text, JSON, YAML, Table}

type Formattable interface {
	String() string
	Pretty() string
	TableHeaders() []string
	TableRow() []string
}

func FormatOutput[T Formattable](data []T, format FormatType) (string, error) {
	switch format {
	case Text, Pretty:
		lines := make([]string, 0, len(data))
		for _, item := range data {
			if format == Text {
				lines = append(lines, item.String())
			} else {
				lines = append(lines, item.Pretty())
			}
		}
		return strings.Join(lines, "\n"), nil
	case JSON:
		if data == nil {
			data = []T{}
		}
		j, err := json.MarshalIndent(data, "", "  ")
		if err != nil {
			return "", err
		}
		return string(j), nil
	case YAML:
		y, err := yaml.Marshal(data)
		if err != nil {
			return "", err
		}
		return string(y), nil
	case Table:
		var tableData [][]string
		for _, item := range data {
			tableData = append(tableData, item.TableRow())
		}

		buffer := new(bytes.Buffer)
		table := tablewriter.NewWriter(buffer)
		if len(data) > 0 {
			table.SetHeader(data[0].TableHeaders())
		}
		table.SetBorder(true)
		table.SetAutoWrapText(false)
		table.AppendBulk(tableData)
		table.Render()

		return buffer.String(), nil
	default:
		return "", fmt.Errorf("unknown format: %v", format)
	}
}

func FormatOutputToFile[T Formattable](data []T, format FormatType, filepath string) error {
	formattedData, err := FormatOutput(data, format)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath, []byte(formattedData), 0644)
}

// ParseFormatType converts a string format to a FormatType.
func ParseFormatType(format string) (FormatType, error) {
	normalized := FormatType(strings.ToLower(strings.TrimSpace(format)))
	for _, known := range OutputFormats {
		if normalized == known {
			return known, nil
		}
	}
	return "", fmt.Errorf("unknown format: %s", format)
}
