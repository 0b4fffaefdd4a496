package reflection

import (
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"
	xhtml "golang.org/x/net/html"
)

// Reason explains why a response was considered vulnerable
type Reason string

const (
	ReasonReflected           Reason = "marker reflected raw or decoded"
	ReasonDangerousTagMarker  Reason = "dangerous tag containing marker found in DOM"
	ReasonDangerousTagPresent Reason = "dangerous tag present (unconfirmed correlation)"
	ReasonRegexMatch          Reason = "marker matched via regex"
	ReasonNone                Reason = "not vulnerable"
)

// Confidence tells report consumers how strongly a detection is tied to the injected marker
type Confidence string

const (
	ConfidenceConfirmed Confidence = "confirmed"
	// ConfidenceTentative is only produced by the dangerous tag fallback, which flags any page that
	// contains one of DangerousTags even when the marker is nowhere near it. Expect false positives.
	ConfidenceTentative Confidence = "tentative"
	ConfidenceNone      Confidence = "none"
)

// Step identifies the detection stage that produced a result
type Step string

const (
	StepSubstring Step = "substring"
	StepDOM       Step = "dom"
	StepRegex     Step = "regex"
	StepNone      Step = "none"
)

// MatchOutcome is the result of a single best-effort detection step
type MatchOutcome int

const (
	OutcomeNotMatched MatchOutcome = iota
	OutcomeMatched
	// OutcomeWeakMatch means the step found something suspicious that is not correlated to the marker
	OutcomeWeakMatch
	// OutcomeParseFailed is treated exactly like OutcomeNotMatched by IsVulnerable
	OutcomeParseFailed
)

func (o MatchOutcome) String() string {
	switch o {
	case OutcomeMatched:
		return "matched"
	case OutcomeWeakMatch:
		return "weak-match"
	case OutcomeParseFailed:
		return "parse-failed"
	default:
		return "not-matched"
	}
}

// DangerousTags are the elements inspected by the DOM step
var DangerousTags = []string{"script", "iframe", "img", "svg", "object", "embed"}

// MinRegexPatternLength is the escaped marker length the regex step requires before searching
const MinRegexPatternLength = 5

// Detection is the verdict for a single response
type Detection struct {
	Vulnerable bool
	Reason     Reason
	Confidence Confidence
	Step       Step
	// Tag is set when the DOM step matched
	Tag string
}

var notVulnerable = Detection{Vulnerable: false, Reason: ReasonNone, Confidence: ConfidenceNone, Step: StepNone}

// IsVulnerable decides whether body shows the marker was reflected without sanitization.
// Steps run in order and the first match wins: substring on the raw and entity-decoded body, dangerous
// tags in the parsed DOM, and a case-insensitive regex search. It performs no I/O and is safe for
// concurrent use.
func IsVulnerable(body string, marker string) Detection {
	if marker == "" {
		return notVulnerable
	}
	decoded := html.UnescapeString(body)

	if strings.Contains(body, marker) || strings.Contains(decoded, marker) {
		return Detection{Vulnerable: true, Reason: ReasonReflected, Confidence: ConfidenceConfirmed, Step: StepSubstring}
	}

	outcome, tag := MatchDangerousTags(decoded, marker)
	switch outcome {
	case OutcomeMatched:
		return Detection{Vulnerable: true, Reason: ReasonDangerousTagMarker, Confidence: ConfidenceConfirmed, Step: StepDOM, Tag: tag}
	case OutcomeWeakMatch:
		return Detection{Vulnerable: true, Reason: ReasonDangerousTagPresent, Confidence: ConfidenceTentative, Step: StepDOM, Tag: tag}
	}

	if MatchRegex(decoded, marker) == OutcomeMatched {
		return Detection{Vulnerable: true, Reason: ReasonRegexMatch, Confidence: ConfidenceConfirmed, Step: StepRegex}
	}

	return notVulnerable
}

// MatchDangerousTags parses the document and looks for dangerous elements. It returns OutcomeMatched with
// the tag name when an element's markup contains the marker, OutcomeWeakMatch when such elements exist
// but none contains it.
func MatchDangerousTags(document string, marker string) (outcome MatchOutcome, tag string) {
	defer func() {
		if r := recover(); r != nil {
			log.Debug().Interface("panic", r).Msg("Recovered while inspecting DOM for dangerous tags")
			outcome, tag = OutcomeParseFailed, ""
		}
	}()

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(document))
	if err != nil {
		log.Debug().Err(err).Msg("Could not parse response body as HTML")
		return OutcomeParseFailed, ""
	}

	firstPresent := ""
	for _, name := range DangerousTags {
		found := false
		doc.Find(name).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			if firstPresent == "" {
				firstPresent = name
			}
			markup, err := renderNodes(s)
			if err != nil {
				return true
			}
			if strings.Contains(markup, marker) {
				found = true
				return false
			}
			return true
		})
		if found {
			return OutcomeMatched, name
		}
	}
	if firstPresent != "" {
		return OutcomeWeakMatch, firstPresent
	}
	return OutcomeNotMatched, ""
}

func renderNodes(s *goquery.Selection) (string, error) {
	var sb strings.Builder
	for _, node := range s.Nodes {
		if err := xhtml.Render(&sb, node); err != nil {
			return "", err
		}
	}
	return sb.String(), nil
}

// MatchRegex searches the escaped marker case-insensitively. Patterns not longer than
// MinRegexPatternLength are never searched.
func MatchRegex(document string, marker string) MatchOutcome {
	pattern := regexp.QuoteMeta(marker)
	if len(pattern) <= MinRegexPatternLength {
		return OutcomeNotMatched
	}
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		log.Debug().Err(err).Str("pattern", pattern).Msg("Could not compile marker pattern")
		return OutcomeParseFailed
	}
	if re.MatchString(document) {
		return OutcomeMatched
	}
	return OutcomeNotMatched
}

// PayloadIntact reports whether the exact rendered payload came back unmodified
func PayloadIntact(body string, payload string) bool {
	return payload != "" && strings.Contains(body, payload)
}

// Evidence returns a single line excerpt of the response around the first marker occurrence
func Evidence(body string, marker string, radius int) string {
	idx := strings.Index(body, marker)
	if idx == -1 {
		idx = strings.Index(strings.ToLower(body), strings.ToLower(marker))
	}
	if idx == -1 {
		return ""
	}
	start := idx - radius
	if start < 0 {
		start = 0
	}
	end := idx + len(marker) + radius
	if end > len(body) {
		end = len(body)
	}
	excerpt := strings.Join(strings.Fields(body[start:end]), " ")
	return fmt.Sprintf("...%s...", excerpt)
}
