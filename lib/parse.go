package lib

import (
	"strings"
)

// ParseHeadersStringToMap parses a string containing key-value pairs separated by commas into a map[string][]string
func ParseHeadersStringToMap(headersStr string) map[string][]string {
	headers := make(map[string][]string)
	pairs := strings.Split(headersStr, ",")
	for _, pair := range pairs {
		addHeaderPair(headers, pair)
	}
	return headers
}

// ParseHeaderFlags parses repeated "Key: Value" flag values. Values may contain commas.
func ParseHeaderFlags(values []string) map[string][]string {
	headers := make(map[string][]string)
	for _, value := range values {
		addHeaderPair(headers, value)
	}
	return headers
}

func addHeaderPair(headers map[string][]string, pair string) {
	kv := strings.SplitN(pair, ":", 2)
	if len(kv) != 2 {
		return
	}
	key := strings.TrimSpace(kv[0])
	value := strings.TrimSpace(kv[1])
	if key == "" {
		return
	}
	headers[key] = append(headers[key], value)
}
