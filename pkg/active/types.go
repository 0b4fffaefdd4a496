package active

import (
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/pyneda/htin/pkg/payloads"
	"github.com/pyneda/htin/pkg/scan/reflection"
)

// SurfaceKind is the kind of input an attempt injects into
type SurfaceKind string

const (
	SurfaceURLParameter SurfaceKind = "url_parameter"
	SurfaceFormField    SurfaceKind = "form_field"
)

// Attempt is a single payload submission
type Attempt struct {
	Surface SurfaceKind
	Name    string
	Method  string
	Level   payloads.RiskLevel
	Payload string
	Marker  payloads.Marker
	URL     string
}

// Finding is a reflected payload. Findings are not modified once created.
type Finding struct {
	Type          SurfaceKind               `json:"type" yaml:"type"`
	Parameter     string                    `json:"parameter,omitempty" yaml:"parameter,omitempty"`
	Field         string                    `json:"field,omitempty" yaml:"field,omitempty"`
	Method        string                    `json:"method" yaml:"method"`
	Payload       string                    `json:"payload" yaml:"payload"`
	Marker        payloads.Marker           `json:"marker" yaml:"marker"`
	Reason        reflection.Reason         `json:"reason" yaml:"reason"`
	Confidence    reflection.Confidence     `json:"confidence" yaml:"confidence"`
	Level         payloads.RiskLevel        `json:"level" yaml:"level"`
	URL           string                    `json:"url" yaml:"url"`
	StatusCode    int                       `json:"status_code" yaml:"status_code"`
	Context       reflection.ReflectionMode `json:"context,omitempty" yaml:"context,omitempty"`
	PayloadIntact bool                      `json:"payload_intact" yaml:"payload_intact"`
	Evidence      string                    `json:"evidence,omitempty" yaml:"evidence,omitempty"`
}

const evidenceRadius = 60

func newFinding(attempt Attempt, detection reflection.Detection, finalURL string, statusCode int, body string) Finding {
	finding := Finding{
		Type:          attempt.Surface,
		Method:        attempt.Method,
		Payload:       attempt.Payload,
		Marker:        attempt.Marker,
		Reason:        detection.Reason,
		Confidence:    detection.Confidence,
		Level:         attempt.Level,
		URL:           finalURL,
		StatusCode:    statusCode,
		Context:       reflection.DescribeReflection(body, string(attempt.Marker)),
		PayloadIntact: reflection.PayloadIntact(body, attempt.Payload),
		Evidence:      reflection.Evidence(body, string(attempt.Marker), evidenceRadius),
	}
	if attempt.Surface == SurfaceFormField {
		finding.Field = attempt.Name
	} else {
		finding.Parameter = attempt.Name
	}
	return finding
}

// Surface returns the parameter or field name the finding affects
func (f Finding) Surface() string {
	if f.Type == SurfaceFormField {
		return f.Field
	}
	return f.Parameter
}

// IsConfirmed reports whether the reflection is correlated to the marker
func (f Finding) IsConfirmed() bool {
	return f.Confidence == reflection.ConfidenceConfirmed
}

func (f Finding) String() string {
	return fmt.Sprintf("[%s] %s %s %s (%s): %s", f.Level, f.Type, f.Method, f.Surface(), f.Confidence, f.URL)
}

func (f Finding) Pretty() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Type: %s\n", f.Type)
	if f.Type == SurfaceFormField {
		fmt.Fprintf(&sb, "Field: %s\n", f.Field)
	} else {
		fmt.Fprintf(&sb, "Parameter: %s\n", f.Parameter)
	}
	fmt.Fprintf(&sb, "Method: %s\n", f.Method)
	fmt.Fprintf(&sb, "Level: %s\n", f.Level)
	fmt.Fprintf(&sb, "Reason: %s\n", f.Reason)
	fmt.Fprintf(&sb, "Confidence: %s\n", f.Confidence)
	fmt.Fprintf(&sb, "URL: %s\n", f.URL)
	fmt.Fprintf(&sb, "Payload: %s\n", f.Payload)
	if f.Context != reflection.ModeNone {
		fmt.Fprintf(&sb, "Context: %s\n", f.Context)
	}
	if f.Evidence != "" {
		fmt.Fprintf(&sb, "Evidence: %s\n", f.Evidence)
	}
	return sb.String()
}

func (f Finding) TableHeaders() []string {
	return []string{"Type", "Surface", "Method", "Level", "Confidence", "Context", "Status", "URL"}
}

func (f Finding) TableRow() []string {
	return []string{
		string(f.Type),
		f.Surface(),
		f.Method,
		string(f.Level),
		string(f.Confidence),
		string(f.Context),
		strconv.Itoa(f.StatusCode),
		f.URL,
	}
}

// FilterConfirmed drops the findings produced by the unconfirmed dangerous tag fallback
func FilterConfirmed(findings []Finding) []Finding {
	confirmed := make([]Finding, 0, len(findings))
	for _, finding := range findings {
		if finding.IsConfirmed() {
			confirmed = append(confirmed, finding)
		}
	}
	return confirmed
}

// Statistics counts the work of a scan run. Counters only grow until Reset.
type Statistics struct {
	totalTested          atomic.Int64
	vulnerabilitiesFound atomic.Int64
	formsTested          atomic.Int64
	paramsTested         atomic.Int64
}

// StatisticsSnapshot is a point in time copy of Statistics
type StatisticsSnapshot struct {
	TotalTested          int64 `json:"total_tested" yaml:"total_tested"`
	VulnerabilitiesFound int64 `json:"vulnerabilities_found" yaml:"vulnerabilities_found"`
	FormsTested          int64 `json:"forms_tested" yaml:"forms_tested"`
	ParamsTested         int64 `json:"params_tested" yaml:"params_tested"`
}

func (s *Statistics) Reset() {
	s.totalTested.Store(0)
	s.vulnerabilitiesFound.Store(0)
	s.formsTested.Store(0)
	s.paramsTested.Store(0)
}

func (s *Statistics) IncTested()          { s.totalTested.Add(1) }
func (s *Statistics) IncVulnerabilities() { s.vulnerabilitiesFound.Add(1) }
func (s *Statistics) IncFormsTested()     { s.formsTested.Add(1) }
func (s *Statistics) IncParamsTested()    { s.paramsTested.Add(1) }

func (s *Statistics) Snapshot() StatisticsSnapshot {
	return StatisticsSnapshot{
		TotalTested:          s.totalTested.Load(),
		VulnerabilitiesFound: s.vulnerabilitiesFound.Load(),
		FormsTested:          s.formsTested.Load(),
		ParamsTested:         s.paramsTested.Load(),
	}
}
