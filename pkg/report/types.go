package report

import (
	"github.com/pyneda/htin/pkg/active"
	"github.com/pyneda/htin/pkg/payloads"
)

// ScanInfo describes the run a report belongs to
type ScanInfo struct {
	Target         string                    `json:"target"`
	Timestamp      string                    `json:"timestamp"`
	ScannerVersion string                    `json:"scanner_version"`
	ScanID         string                    `json:"scan_id"`
	Levels         []payloads.RiskLevel      `json:"levels"`
	Interrupted    bool                      `json:"interrupted,omitempty"`
	Statistics     active.StatisticsSnapshot `json:"statistics"`
	// ConfirmedFound counts confirmed findings; statistics.vulnerabilities_found includes tentative ones
	ConfirmedFound int                       `json:"confirmed_found"`
	ConfirmedOnly  bool                      `json:"confirmed_only,omitempty"`
}

// Report is the document persisted by the json format
type Report struct {
	ScanInfo        ScanInfo         `json:"scan_info"`
	Vulnerabilities []active.Finding `json:"vulnerabilities"`
	Recommendations []string         `json:"recommendations,omitempty"`
}

// Recommendations are included whenever a report has findings
var Recommendations = []string{
	"Sanitize all user supplied input",
	"HTML encode every value written to a page",
	"Deploy a Content Security Policy (CSP)",
	"Validate data types on the server",
	"Use frameworks with built-in anti-XSS output escaping",
	"Put a Web Application Firewall (WAF) in front of the application",
	"Run regular security audits",
}

// Summary contains report statistics
type Summary struct {
	Total          int            `json:"total"`
	Confirmed      int            `json:"confirmed"`
	Tentative      int            `json:"tentative"`
	UniqueSurfaces int            `json:"unique_surfaces"`
	LevelCounts    map[string]int `json:"level_counts"`
	TypeCounts     map[string]int `json:"type_counts"`
}

// HTMLReportData contains structured data for the HTML template
type HTMLReportData struct {
	Title       string  `json:"title"`
	Report      Report  `json:"report"`
	Summary     Summary `json:"summary"`
	GeneratedAt string  `json:"generated_at"`
}
