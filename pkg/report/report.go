package report

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pyneda/htin/internal/config"
	"github.com/pyneda/htin/lib"
	"github.com/pyneda/htin/pkg/active"
	"github.com/pyneda/htin/pkg/scan"
	"github.com/rs/zerolog/log"
)

//go:embed templates/*
var templates embed.FS

type ReportFormat string

const (
	ReportFormatHTML ReportFormat = "html"
	ReportFormatJSON ReportFormat = "json"
)

// ParseReportFormat accepts json and html, case insensitive
func ParseReportFormat(format string) (ReportFormat, error) {
	switch ReportFormat(strings.ToLower(strings.TrimSpace(format))) {
	case ReportFormatJSON:
		return ReportFormatJSON, nil
	case ReportFormatHTML:
		return ReportFormatHTML, nil
	}
	return "", fmt.Errorf("invalid report format %q, use json or html", format)
}

type ReportOptions struct {
	Result        *scan.Result
	Title         string
	Format        ReportFormat
	ConfirmedOnly bool
	Interrupted   bool
}

// NewReport builds the report document for a scan result
func NewReport(options ReportOptions) Report {
	result := options.Result
	findings := result.Findings
	if options.ConfirmedOnly {
		findings = active.FilterConfirmed(findings)
	}
	if findings == nil {
		findings = []active.Finding{}
	}
	timestamp := result.FinishedAt
	if timestamp.IsZero() {
		timestamp = time.Now()
	}
	var recommendations []string
	if len(findings) > 0 {
		recommendations = Recommendations
	}
	return Report{
		ScanInfo: ScanInfo{
			Target:         result.Target,
			Timestamp:      timestamp.Format(time.RFC3339),
			ScannerVersion: config.Version,
			ScanID:         result.ScanID,
			Levels:         result.Levels,
			Interrupted:    options.Interrupted,
			Statistics:     result.Statistics,
			ConfirmedFound: len(active.FilterConfirmed(result.Findings)),
			ConfirmedOnly:  options.ConfirmedOnly,
		},
		Vulnerabilities: findings,
		Recommendations: recommendations,
	}
}

func GenerateReport(options ReportOptions, w io.Writer) error {
	if options.Result == nil {
		return errors.New("no scan result to report")
	}
	switch options.Format {
	case ReportFormatHTML:
		return generateHTMLReport(options, w)
	case ReportFormatJSON:
		return generateJSONReport(options, w)
	default:
		return errors.New("invalid report format")
	}
}

// SaveReport writes the report to path, creating parent directories
func SaveReport(options ReportOptions, path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := GenerateReport(options, f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	log.Info().Str("file", path).Str("format", string(options.Format)).Msg("Report saved")
	return nil
}

// DefaultFilename builds a report file name from the scanned host and path
func DefaultFilename(target string, format ReportFormat, at time.Time) string {
	name := target
	if host, err := lib.GetHostFromURL(target); err == nil && host != "" {
		name = host + " " + pathOf(target)
	}
	slug := lib.Slugify(name)
	if slug == "" {
		slug = "scan"
	}
	return fmt.Sprintf("htin-%s-%s.%s", slug, at.Format("20060102-150405"), format)
}

// ResolveOutputPath returns output unchanged unless it names a directory, either existing or ending with a
// path separator, in which case a default file name is generated inside it.
func ResolveOutputPath(output string, target string, format ReportFormat, at time.Time) string {
	if strings.HasSuffix(output, "/") || strings.HasSuffix(output, string(os.PathSeparator)) {
		return filepath.Join(output, DefaultFilename(target, format, at))
	}
	if info, err := os.Stat(output); err == nil && info.IsDir() {
		return filepath.Join(output, DefaultFilename(target, format, at))
	}
	return output
}

func pathOf(target string) string {
	withoutScheme := target
	if idx := strings.Index(withoutScheme, "://"); idx != -1 {
		withoutScheme = withoutScheme[idx+3:]
	}
	if idx := strings.IndexAny(withoutScheme, "?#"); idx != -1 {
		withoutScheme = withoutScheme[:idx]
	}
	if idx := strings.Index(withoutScheme, "/"); idx != -1 {
		return withoutScheme[idx:]
	}
	return ""
}

func generateHTMLReport(options ReportOptions, w io.Writer) error {
	funcMap := template.FuncMap{
		"add":   func(a, b int) int { return a + b },
		"upper": strings.ToUpper,
	}

	tmpl, err := template.New("report.tmpl").Funcs(funcMap).ParseFS(templates, "templates/report.tmpl")
	if err != nil {
		log.Error().Err(err).Msg("Failed to parse report template")
		return err
	}

	rep := NewReport(options)
	title := options.Title
	if title == "" {
		title = "HTML injection scan of " + rep.ScanInfo.Target
	}
	data := HTMLReportData{
		Title:       title,
		Report:      rep,
		Summary:     generateSummary(rep.Vulnerabilities),
		GeneratedAt: time.Now().Format("2006-01-02 15:04:05"),
	}

	if err := tmpl.Execute(w, data); err != nil {
		log.Error().Err(err).Msg("Failed to execute report template")
		return err
	}
	return nil
}

func generateJSONReport(options ReportOptions, w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	return encoder.Encode(NewReport(options))
}

func generateSummary(findings []active.Finding) Summary {
	summary := Summary{
		Total:       len(findings),
		LevelCounts: make(map[string]int),
		TypeCounts:  make(map[string]int),
	}
	surfaces := make(map[string]bool)
	for _, finding := range findings {
		if finding.IsConfirmed() {
			summary.Confirmed++
		} else {
			summary.Tentative++
		}
		summary.LevelCounts[string(finding.Level)]++
		summary.TypeCounts[string(finding.Type)]++
		surfaces[string(finding.Type)+" "+finding.Method+" "+finding.Surface()] = true
	}
	summary.UniqueSurfaces = len(surfaces)
	return summary
}
