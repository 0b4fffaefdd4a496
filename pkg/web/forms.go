package web

import (
	"bytes"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/pyneda/htin/lib"
	"github.com/rs/zerolog/log"
)

// Input types that never carry user supplied data
var nonTestableInputTypes = []string{"submit", "button", "image"}

// Form describes an HTML form as needed to replay it with injected values
type Form struct {
	// Action is the raw action attribute, empty when missing
	Action string
	// Method is lowercase, either "get" or "post"
	Method string
	// Fields are the names of the testable inputs in the order they are tested
	Fields []string
	// Hidden holds values that must be sent unchanged with every submission
	Hidden map[string]string
	// HiddenOrder keeps the document order of Hidden keys
	HiddenOrder []string
}

// IsPost reports whether the form is submitted with POST
func (f Form) IsPost() bool {
	return f.Method == "post"
}

// TargetURL resolves the form action against the URL of the page that contains it
func (f Form) TargetURL(pageURL string) (*url.URL, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, err
	}
	ref, err := url.Parse(strings.TrimSpace(f.Action))
	if err != nil {
		return nil, err
	}
	return base.ResolveReference(ref), nil
}

// Baseline returns a fresh copy of the values submitted alongside every injected field
func (f Form) Baseline() url.Values {
	values := url.Values{}
	for _, name := range f.HiddenOrder {
		values.Set(name, f.Hidden[name])
	}
	return values
}

// ExtractForms parses an HTML document and returns its forms in document order
func ExtractForms(body []byte) ([]Form, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	var forms []Form
	doc.Find("form").Each(func(i int, s *goquery.Selection) {
		forms = append(forms, ParseForm(s))
	})
	log.Debug().Int("count", len(forms)).Msg("Forms extracted from page")
	return forms, nil
}

// ParseForm builds a Form from a goquery selection pointing to a <form> element.
// Hidden inputs and selects with options become fixed values (only the first option is ever sent),
// every other named input except submit, button and image types is testable, followed by
// textareas and selects without options.
func ParseForm(s *goquery.Selection) Form {
	action, _ := s.Attr("action")
	method := "get"
	if m, ok := s.Attr("method"); ok && strings.EqualFold(strings.TrimSpace(m), "post") {
		method = "post"
	}

	form := Form{
		Action: action,
		Method: method,
		Hidden: make(map[string]string),
	}
	seen := make(map[string]bool)

	addField := func(name string) {
		if seen[name] {
			return
		}
		seen[name] = true
		form.Fields = append(form.Fields, name)
	}
	addHidden := func(name, value string) {
		if _, exists := form.Hidden[name]; !exists {
			form.HiddenOrder = append(form.HiddenOrder, name)
		}
		form.Hidden[name] = value
	}

	s.Find("input").Each(func(_ int, input *goquery.Selection) {
		name, ok := input.Attr("name")
		if !ok || name == "" {
			return
		}
		inputType := strings.ToLower(strings.TrimSpace(input.AttrOr("type", "text")))
		if inputType == "" {
			inputType = "text"
		}
		switch {
		case inputType == "hidden":
			addHidden(name, input.AttrOr("value", ""))
		case lib.SliceContains(nonTestableInputTypes, inputType):
			return
		default:
			addField(name)
		}
	})

	s.Find("textarea").Each(func(_ int, textarea *goquery.Selection) {
		if name, ok := textarea.Attr("name"); ok && name != "" {
			addField(name)
		}
	})

	s.Find("select").Each(func(_ int, sel *goquery.Selection) {
		name, ok := sel.Attr("name")
		if !ok || name == "" {
			return
		}
		option := sel.Find("option").First()
		if option.Length() == 0 {
			addField(name)
			return
		}
		value, ok := option.Attr("value")
		if !ok {
			value = strings.TrimSpace(option.Text())
		}
		addHidden(name, value)
	})

	return form
}
