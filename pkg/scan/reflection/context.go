package reflection

import (
	"html"
	"strings"
)

// ReflectionMode represents where in the document structure the reflection occurs
type ReflectionMode string

const (
	ModeHTML      ReflectionMode = "html"      // Outside tags, in text content
	ModeScript    ReflectionMode = "script"    // Inside <script> tags
	ModeAttribute ReflectionMode = "attribute" // Inside a tag, usually an attribute value
	ModeComment   ReflectionMode = "comment"   // Inside HTML comments
	ModeCSS       ReflectionMode = "css"       // Inside <style> tags
	ModeEncoded   ReflectionMode = "encoded"   // Only present once HTML entities are decoded
	ModeNone      ReflectionMode = ""
)

// ClassifyContext reports the context of the first marker reflection in body, checked in the
// order comment, script, style, tag and plain text. Returns ModeNone when the marker is absent.
func ClassifyContext(body string, marker string) ReflectionMode {
	if marker == "" {
		return ModeNone
	}
	idx := strings.Index(body, marker)
	if idx == -1 {
		return ModeNone
	}
	before := strings.ToLower(body[:idx])

	if isOpen(before, "<!--", "-->") {
		return ModeComment
	}
	if isOpen(before, "<script", "</script") {
		return ModeScript
	}
	if isOpen(before, "<style", "</style") {
		return ModeCSS
	}
	if isOpen(before, "<", ">") {
		return ModeAttribute
	}
	return ModeHTML
}

// isOpen tells whether the last opener in text has not been closed yet
func isOpen(text, opener, closer string) bool {
	open := strings.LastIndex(text, opener)
	if open == -1 {
		return false
	}
	return strings.LastIndex(text, closer) < open
}

// DescribeReflection classifies the raw reflection when there is one, otherwise reports ModeEncoded if
// the marker only shows up after entity decoding.
func DescribeReflection(body string, marker string) ReflectionMode {
	if mode := ClassifyContext(body, marker); mode != ModeNone {
		return mode
	}
	if marker != "" && strings.Contains(html.UnescapeString(body), marker) {
		return ModeEncoded
	}
	return ModeNone
}
