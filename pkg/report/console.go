package report

import (
	"fmt"
	"io"
	"time"

	"github.com/pyneda/htin/lib"
	"github.com/pyneda/htin/pkg/active"
	"github.com/pyneda/htin/pkg/scan"
)

// ConsoleOptions controls the terminal rendering of a result
type ConsoleOptions struct {
	Palette       lib.Palette
	ConfirmedOnly bool
	Interrupted   bool
	// Format selects a lib output format for the findings, empty means the coloured blocks
	Format lib.FormatType
}

// PrintConsole writes the scan summary followed by the findings
func PrintConsole(w io.Writer, result *scan.Result, options ConsoleOptions) error {
	p := options.Palette
	findings := result.Findings
	if options.ConfirmedOnly {
		findings = active.FilterConfirmed(findings)
	}
	stats := result.Statistics

	fmt.Fprintln(w)
	fmt.Fprintln(w, p.Paint(lib.RoleTitle, "=== Scan summary ==="))
	if options.Interrupted {
		fmt.Fprintln(w, p.Paint(lib.RoleTentative, "  Scan interrupted, results are partial"))
	}
	fmt.Fprintf(w, "  Target: %s\n", result.Target)
	fmt.Fprintf(w, "  Date: %s\n", scanDate(result))
	fmt.Fprintf(w, "  Payloads sent: %d\n", stats.TotalTested)
	fmt.Fprintf(w, "  Forms tested: %d\n", stats.FormsTested)
	fmt.Fprintf(w, "  Parameters tested: %d\n", stats.ParamsTested)
	fmt.Fprintf(w, "  Vulnerabilities found: %s\n", p.Paint(lib.RoleConfirmed, fmt.Sprint(len(findings))))
	fmt.Fprintln(w)

	if len(findings) == 0 {
		fmt.Fprintln(w, p.Paint(lib.RoleSuccess, "No HTML injection found"))
		return nil
	}

	if options.Format != "" {
		out, err := lib.FormatOutput(findings, options.Format)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, out)
		printRecommendations(w, p)
		return nil
	}

	fmt.Fprintln(w, p.Paint(lib.RoleTitle, "=== Findings ==="))
	tentative := 0
	for i, finding := range findings {
		role := lib.RoleConfirmed
		if !finding.IsConfirmed() {
			role = lib.RoleTentative
			tentative++
		}
		fmt.Fprintf(w, "%s Type: %s\n", p.Paint(role, fmt.Sprintf("[%d]", i+1)), finding.Type)
		if finding.Type == active.SurfaceFormField {
			fmt.Fprintf(w, "    Field: %s (%s)\n", finding.Field, finding.Method)
		} else {
			fmt.Fprintf(w, "    Parameter: %s\n", finding.Parameter)
		}
		fmt.Fprintf(w, "    Level: %s\n", finding.Level)
		fmt.Fprintf(w, "    Confidence: %s\n", p.Paint(role, string(finding.Confidence)))
		fmt.Fprintf(w, "    Reason: %s\n", finding.Reason)
		if finding.Context != "" {
			fmt.Fprintf(w, "    Context: %s\n", finding.Context)
		}
		fmt.Fprintf(w, "    URL: %s\n", finding.URL)
		fmt.Fprintf(w, "    Payload: %s\n", p.Paint(lib.RoleMuted, truncate(finding.Payload, 80)))
		fmt.Fprintln(w)
	}
	if tentative > 0 {
		fmt.Fprintln(w, p.Paint(lib.RoleInfo, fmt.Sprintf("%d tentative finding(s) only show a dangerous tag somewhere in the response, not the payload itself. Use --confirmed-only to hide them.", tentative)))
		fmt.Fprintln(w)
	}
	printRecommendations(w, p)
	return nil
}

func printRecommendations(w io.Writer, p lib.Palette) {
	fmt.Fprintln(w, p.Paint(lib.RoleTitle, "=== Recommendations ==="))
	for i, recommendation := range Recommendations {
		fmt.Fprintf(w, "  %d. %s\n", i+1, recommendation)
	}
	fmt.Fprintln(w)
}

func scanDate(result *scan.Result) string {
	at := result.FinishedAt
	if at.IsZero() {
		at = time.Now()
	}
	return at.Format("2006-01-02 15:04:05")
}

// truncate shortens s to max runes
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
