package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/pyneda/htin/lib"
	"github.com/pyneda/htin/pkg/active"
	"github.com/pyneda/htin/pkg/http_utils"
	"github.com/pyneda/htin/pkg/payloads"
	"github.com/pyneda/htin/pkg/report"
	"github.com/pyneda/htin/pkg/scan"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"golang.org/x/term"
)

const (
	exitClean       = 0
	exitFindings    = 1
	exitError       = 1
	exitInterrupted = 130
)

var scanURL string
var scanVerbose bool
var scanOutput string
var scanReportFormat string
var scanConsoleFormat string
var scanNoColor bool
var scanHeaders []string
var scanConfirmedOnly bool
var scanAssumeYes bool

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan a page for HTML injection",
	Long: `Fetches the target page once, then injects marker tagged payloads into every form field and every
query parameter of the URL and reports the responses that reflect them.

Exit status is 0 when nothing is found, 1 when there are findings or the scan failed and 130 when it
was interrupted.`,
	Example: `  htin scan -u "http://testphp.vulnweb.com/search.php?test=query"
  htin scan -u http://localhost:8080/ -l basic -l xss -d 0 -o reports/ --format html`,
	Run: func(cmd *cobra.Command, args []string) {
		if !confirmAuthorization(os.Stdin, cmd.OutOrStdout(), scanURL) {
			fmt.Fprintln(cmd.OutOrStdout(), "Operation cancelled. You need explicit authorization to scan this target.")
			os.Exit(exitClean)
		}
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		code := runScan(ctx, cmd.OutOrStdout())
		stop()
		os.Exit(code)
	},
}

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().StringVarP(&scanURL, "url", "u", "", "Target URL, http:// is assumed when no scheme is given")
	scanCmd.Flags().StringSliceP("levels", "l", []string{"basic", "styled", "dangerous"}, "Payload levels to test: basic, styled, dangerous, xss")
	scanCmd.Flags().Float64P("timeout", "t", 15, "Request timeout in seconds")
	scanCmd.Flags().Float64P("delay", "d", 0.5, "Minimum delay between requests in seconds")
	scanCmd.Flags().Int("concurrency", 1, "Maximum requests in flight")
	scanCmd.Flags().String("payloads", "", "YAML file with additional payload templates")
	scanCmd.Flags().Bool("strict-levels", false, "Fail on unknown payload levels instead of skipping them")
	scanCmd.Flags().String("protocol", "http1", "HTTP protocol to use: http1, h2 or h3")
	scanCmd.Flags().String("proxy", "", "Proxy URL, defaults to the environment proxy")
	scanCmd.Flags().StringArrayVarP(&scanHeaders, "header", "H", nil, `Extra request header as "Name: value", can be repeated`)
	scanCmd.Flags().BoolVarP(&scanVerbose, "verbose", "v", false, "Log failed attempts and reflected payloads")
	scanCmd.Flags().StringVarP(&scanOutput, "output", "o", "", "Report file, or directory to write a generated file name into")
	scanCmd.Flags().StringVar(&scanReportFormat, "format", "json", "Report file format: json or html")
	scanCmd.Flags().StringVar(&scanConsoleFormat, "console-format", "", "Print findings as text, pretty, json, yaml or table instead of the default blocks")
	scanCmd.Flags().BoolVar(&scanNoColor, "no-color", false, "Disable coloured output")
	scanCmd.Flags().BoolVar(&scanConfirmedOnly, "confirmed-only", false, "Ignore tentative findings in output and exit status")
	scanCmd.Flags().BoolVarP(&scanAssumeYes, "yes", "y", false, "Confirm authorization without prompting")
	scanCmd.MarkFlagRequired("url")

	bindFlags(scanCmd.Flags(), map[string]string{
		"scan.levels":         "levels",
		"navigation.timeout":  "timeout",
		"scan.delay":          "delay",
		"scan.concurrency":    "concurrency",
		"payloads.file":       "payloads",
		"scan.strict_levels":  "strict-levels",
		"navigation.protocol": "protocol",
		"navigation.proxy":    "proxy",
	})
}

// bindFlags maps configuration keys to the flags overriding them
func bindFlags(flags *pflag.FlagSet, keys map[string]string) {
	for key, name := range keys {
		if err := viper.BindPFlag(key, flags.Lookup(name)); err != nil {
			log.Fatal().Err(err).Str("flag", name).Msg("Could not bind flag")
		}
	}
}

// confirmAuthorization asks for confirmation on interactive terminals only
func confirmAuthorization(in *os.File, out io.Writer, target string) bool {
	if scanAssumeYes || in == nil || !term.IsTerminal(int(in.Fd())) {
		return true
	}
	fmt.Fprintf(out, "Only scan applications you have explicit written authorization to test.\nDo you have authorization to scan %s? (yes/no): ", target)
	answer, err := bufio.NewReader(in).ReadString('\n')
	if err != nil {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "yes" || answer == "y"
}

// resolveLevels turns configured level names into risk levels, warning about or rejecting unknown ones
func resolveLevels(names []string, strict bool) ([]payloads.RiskLevel, error) {
	if strict {
		levels, err := payloads.ParseLevelsStrict(names)
		if err != nil {
			return nil, err
		}
		if len(levels) == 0 {
			return nil, errors.New("no payload levels selected")
		}
		return levels, nil
	}
	levels, unknown := payloads.ParseLevels(names)
	if len(unknown) > 0 {
		log.Warn().Strs("unknown", unknown).Interface("valid", payloads.AllLevels).Msg("Skipping unknown payload levels")
	}
	if len(levels) == 0 {
		return nil, errors.New("no valid payload levels selected")
	}
	return levels, nil
}

func loadCatalog() (*payloads.Catalog, error) {
	file := viper.GetString("payloads.file")
	if file == "" {
		return payloads.DefaultCatalog(), nil
	}
	return payloads.LoadCatalogFile(file)
}

func secondsToDuration(seconds float64) time.Duration {
	return time.Duration(seconds * float64(time.Second))
}

// runScan performs the scan, renders and saves the results and returns the process exit status
func runScan(ctx context.Context, out io.Writer) int {
	target := lib.EnsureScheme(scanURL)

	levels, err := resolveLevels(viper.GetStringSlice("scan.levels"), viper.GetBool("scan.strict_levels"))
	if err != nil {
		log.Error().Err(err).Msg("Invalid payload levels")
		return exitError
	}
	catalog, err := loadCatalog()
	if err != nil {
		log.Error().Err(err).Msg("Could not load payloads")
		return exitError
	}
	reportFormat, err := report.ParseReportFormat(scanReportFormat)
	if err != nil {
		log.Error().Err(err).Msg("Invalid report format")
		return exitError
	}
	var consoleFormat lib.FormatType
	if scanConsoleFormat != "" {
		consoleFormat, err = lib.ParseFormatType(scanConsoleFormat)
		if err != nil {
			log.Error().Err(err).Msg("Invalid console format")
			return exitError
		}
	}

	clientOptions := http_utils.ClientOptionsFromConfig()
	for name, values := range lib.ParseHeaderFlags(scanHeaders) {
		clientOptions.Headers[name] = values
	}
	options := scan.Options{
		URL:          target,
		Levels:       levels,
		Timeout:      clientOptions.Timeout,
		Delay:        secondsToDuration(viper.GetFloat64("scan.delay")),
		Concurrency:  viper.GetInt("scan.concurrency"),
		MaxRedirects: clientOptions.MaxRedirects,
		Verbose:      scanVerbose,
	}
	scanner, err := scan.NewScanner(options, http_utils.CreateHttpClient(clientOptions), catalog)
	if err != nil {
		log.Error().Err(err).Msg("Validation failed")
		return exitError
	}

	result, err := scanner.Scan(ctx, target, levels)
	interrupted := errors.Is(err, context.Canceled)
	fetchFailed := errors.Is(err, scan.ErrInitialFetch)
	switch {
	case interrupted:
		log.Warn().Msg("Scan interrupted by user")
	case fetchFailed:
		log.Error().Err(err).Msg("Could not fetch the target page")
	case err != nil:
		log.Error().Err(err).Msg("Scan failed")
		return exitError
	}

	outFile, _ := out.(*os.File)
	palette := lib.NewPalette(
		lib.ColorEnabled(viper.GetBool("report.color"), scanNoColor, outFile),
		viper.GetStringMapString("report.palette"),
	)
	err = report.PrintConsole(out, result, report.ConsoleOptions{
		Palette:       palette,
		ConfirmedOnly: scanConfirmedOnly,
		Interrupted:   interrupted,
		Format:        consoleFormat,
	})
	if err != nil {
		log.Error().Err(err).Msg("Could not print results")
	}

	if scanOutput != "" {
		path := report.ResolveOutputPath(scanOutput, target, reportFormat, time.Now())
		err := report.SaveReport(report.ReportOptions{
			Result:        result,
			Format:        reportFormat,
			ConfirmedOnly: scanConfirmedOnly,
			Interrupted:   interrupted,
		}, path)
		if err != nil {
			log.Error().Err(err).Str("file", path).Msg("Could not save report")
		}
	}

	if fetchFailed {
		return exitError
	}
	return exitCode(result, interrupted, scanConfirmedOnly)
}

func exitCode(result *scan.Result, interrupted bool, confirmedOnly bool) int {
	if interrupted {
		return exitInterrupted
	}
	findings := result.Findings
	if confirmedOnly {
		findings = active.FilterConfirmed(findings)
	}
	if len(findings) > 0 {
		return exitFindings
	}
	return exitClean
}
