package scan

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/pyneda/htin/lib"
	"github.com/pyneda/htin/pkg/active"
	"github.com/pyneda/htin/pkg/http_utils"
	"github.com/pyneda/htin/pkg/payloads"
	"github.com/pyneda/htin/pkg/scan/ratelimit"
	"github.com/pyneda/htin/pkg/web"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/iter"
)

// ErrInitialFetch is returned when the target page itself cannot be fetched. It is the only error that
// aborts a scan.
var ErrInitialFetch = errors.New("initial fetch failed")

// Result is the outcome of a scan run
type Result struct {
	ScanID     string                    `json:"scan_id"`
	Target     string                    `json:"target"`
	Levels     []payloads.RiskLevel      `json:"levels"`
	StartedAt  time.Time                 `json:"started_at"`
	FinishedAt time.Time                 `json:"finished_at"`
	Findings   []active.Finding          `json:"findings"`
	Statistics active.StatisticsSnapshot `json:"statistics"`
}

// Scanner fetches a single page and tests its forms and query parameters
type Scanner struct {
	Options     Options
	HTTPClient  *http.Client
	RateLimiter ratelimit.RateLimiter
	Catalog     *payloads.Catalog
	stats       *active.Statistics
	audit       *active.HTMLInjectionAudit
}

// NewScanner validates options and wires the shared client, limiter and statistics. A nil catalog means
// the embedded one.
func NewScanner(options Options, client *http.Client, catalog *payloads.Catalog) (*Scanner, error) {
	if err := options.Validate(); err != nil {
		return nil, err
	}
	if client == nil {
		client = http_utils.CreateHttpClient(http_utils.ClientOptions{
			Timeout:         options.Timeout,
			FollowRedirects: true,
			MaxRedirects:    options.MaxRedirects,
		})
	}
	if catalog == nil {
		catalog = payloads.DefaultCatalog()
	}
	s := &Scanner{
		Options:     options,
		HTTPClient:  client,
		RateLimiter: ratelimit.NewSpacingLimiter(options.Delay, options.Concurrency),
		Catalog:     catalog,
		stats:       &active.Statistics{},
	}
	s.audit = active.NewHTMLInjectionAudit(active.ActiveModuleOptions{
		HTTPClient:  s.HTTPClient,
		RateLimiter: s.RateLimiter,
		Catalog:     s.Catalog,
		Stats:       s.stats,
		Concurrency: options.Concurrency,
		Timeout:     options.Timeout,
		Verbose:     options.Verbose,
	})
	return s, nil
}

// Statistics returns the counters of the current or last run
func (s *Scanner) Statistics() active.StatisticsSnapshot {
	return s.stats.Snapshot()
}

// Scan fetches targetURL once, tests every form in document order and then every query parameter.
// Findings keep that order regardless of concurrency. When ctx is cancelled the partial result is
// returned together with ctx.Err(). An empty targetURL or levels falls back to the scanner options,
// then to the default levels.
func (s *Scanner) Scan(ctx context.Context, targetURL string, levels []payloads.RiskLevel) (*Result, error) {
	if targetURL == "" {
		targetURL = s.Options.URL
	}
	if len(levels) == 0 {
		levels = s.Options.Levels
	}
	if len(levels) == 0 {
		levels = payloads.DefaultLevels
	}
	s.stats.Reset()
	result := &Result{
		ScanID:    uuid.NewString(),
		Target:    targetURL,
		Levels:    levels,
		StartedAt: time.Now(),
	}
	scanLog := log.With().Str("url", targetURL).Str("scan_id", result.ScanID).Logger()
	finish := func() {
		result.FinishedAt = time.Now()
		result.Statistics = s.stats.Snapshot()
	}

	scanLog.Info().Interface("levels", levels).Msg("Starting HTML injection scan")
	body, err := s.fetch(ctx, targetURL)
	if err != nil {
		finish()
		if ctx.Err() != nil {
			return result, ctx.Err()
		}
		scanLog.Error().Err(err).Msg("Could not fetch target")
		return result, fmt.Errorf("%w: %s: %w", ErrInitialFetch, targetURL, err)
	}

	forms, err := web.ExtractForms(body)
	if err != nil {
		scanLog.Warn().Err(err).Msg("Could not parse forms from target page")
	}
	scanLog.Info().Int("forms", len(forms)).Msg("Forms found")
	for i, form := range forms {
		if ctx.Err() != nil {
			break
		}
		scanLog.Info().Int("form", i+1).Int("total", len(forms)).Msg("Analyzing form")
		s.stats.IncFormsTested()
		result.Findings = append(result.Findings, s.audit.TestForm(ctx, targetURL, form, levels)...)
	}

	params, err := lib.QueryParamNames(targetURL)
	if err != nil {
		scanLog.Warn().Err(err).Msg("Could not read query parameters")
	}
	if len(params) > 0 && ctx.Err() == nil {
		scanLog.Info().Strs("params", params).Msg("Testing URL parameters")
		mapper := iter.Mapper[string, []active.Finding]{MaxGoroutines: s.Options.Concurrency}
		perParam := mapper.Map(params, func(param *string) []active.Finding {
			if ctx.Err() != nil {
				return nil
			}
			s.stats.IncParamsTested()
			return s.audit.TestParameter(ctx, targetURL, *param, levels)
		})
		for _, paramFindings := range perParam {
			result.Findings = append(result.Findings, paramFindings...)
		}
	}

	finish()
	if ctx.Err() != nil {
		scanLog.Warn().Int("findings", len(result.Findings)).Msg("Scan interrupted, returning partial results")
		return result, ctx.Err()
	}
	scanLog.Info().
		Int("findings", len(result.Findings)).
		Int64("requests", result.Statistics.TotalTested).
		Dur("duration", result.FinishedAt.Sub(result.StartedAt)).
		Msg("Scan completed")
	return result, nil
}

func (s *Scanner) fetch(ctx context.Context, targetURL string) ([]byte, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, err
	}
	if err := s.RateLimiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.RateLimiter.Release()

	result := http_utils.ExecuteRequest(request, http_utils.RequestExecutionOptions{
		Client:  s.HTTPClient,
		Timeout: s.Options.Timeout,
	})
	if result.Err != nil {
		return nil, result.Err
	}
	log.Debug().Str("url", result.FinalURL).Int("status", result.StatusCode).Int("size", len(result.Body)).Msg("Fetched target page")
	return result.Body, nil
}
