package active

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/pyneda/htin/lib"
	"github.com/pyneda/htin/pkg/http_utils"
	"github.com/pyneda/htin/pkg/payloads"
	"github.com/pyneda/htin/pkg/scan/reflection"
	"github.com/pyneda/htin/pkg/web"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/iter"
)

// HTMLInjectionAudit submits marker tagged payloads into URL parameters and form fields and checks the
// responses for their reflection. Request failures only skip the attempt that caused them.
type HTMLInjectionAudit struct {
	Options ActiveModuleOptions
}

func NewHTMLInjectionAudit(options ActiveModuleOptions) *HTMLInjectionAudit {
	return &HTMLInjectionAudit{Options: options.withDefaults()}
}

// TestParameter injects every payload of levels into param. When the URL does not carry param it is
// added, so parameters that are read but not linked get tested too.
func (a *HTMLInjectionAudit) TestParameter(ctx context.Context, baseURL string, param string, levels []payloads.RiskLevel) []Finding {
	auditLog := log.With().Str("audit", "html-injection").Str("url", baseURL).Str("param", param).Logger()
	var findings []Finding

	for _, entry := range a.Options.Catalog.ForLevels(levels) {
		if ctx.Err() != nil {
			auditLog.Debug().Msg("Parameter testing cancelled")
			break
		}
		marker := payloads.NewMarker()
		payload := entry.Template.Render(marker)
		testURL, err := lib.ReplaceQueryParam(baseURL, param, payload)
		if err != nil {
			auditLog.Error().Err(err).Msg("Could not build test URL")
			return findings
		}
		attempt := Attempt{
			Surface: SurfaceURLParameter,
			Name:    param,
			Method:  http.MethodGet,
			Level:   entry.Level,
			Payload: payload,
			Marker:  marker,
			URL:     testURL,
		}
		request, err := http.NewRequestWithContext(ctx, http.MethodGet, testURL, nil)
		if err != nil {
			auditLog.Error().Err(err).Str("test_url", testURL).Msg("Could not create request")
			continue
		}
		if finding := a.send(ctx, attempt, request, auditLog); finding != nil {
			findings = append(findings, *finding)
		}
	}

	return findings
}

// TestForm injects every payload of levels into each testable field of form, keeping the hidden values
// unchanged in every submission.
func (a *HTMLInjectionAudit) TestForm(ctx context.Context, pageURL string, form web.Form, levels []payloads.RiskLevel) []Finding {
	auditLog := log.With().Str("audit", "html-injection").Str("url", pageURL).Str("action", form.Action).Str("method", strings.ToUpper(form.Method)).Logger()

	if len(form.Fields) == 0 {
		auditLog.Info().Msg("Form has no testable fields, skipping")
		return nil
	}
	target, err := form.TargetURL(pageURL)
	if err != nil {
		auditLog.Error().Err(err).Msg("Could not resolve form action")
		return nil
	}
	auditLog.Info().Strs("fields", form.Fields).Str("target", target.String()).Msg("Testing form fields")

	mapper := iter.Mapper[string, []Finding]{MaxGoroutines: a.Options.Concurrency}
	perField := mapper.Map(form.Fields, func(field *string) []Finding {
		return a.testFormField(ctx, form, target, *field, levels, auditLog)
	})

	var findings []Finding
	for _, fieldFindings := range perField {
		findings = append(findings, fieldFindings...)
	}
	return findings
}

func (a *HTMLInjectionAudit) testFormField(ctx context.Context, form web.Form, target *url.URL, field string, levels []payloads.RiskLevel, formLog zerolog.Logger) []Finding {
	fieldLog := formLog.With().Str("field", field).Logger()
	method := http.MethodGet
	if form.IsPost() {
		method = http.MethodPost
	}

	var findings []Finding
	for _, entry := range a.Options.Catalog.ForLevels(levels) {
		if ctx.Err() != nil {
			fieldLog.Debug().Msg("Form field testing cancelled")
			break
		}
		marker := payloads.NewMarker()
		payload := entry.Template.Render(marker)
		data := form.Baseline()
		data.Set(field, payload)

		request, err := http_utils.NewFormRequest(ctx, method, target, data)
		if err != nil {
			fieldLog.Error().Err(err).Msg("Could not create form request")
			continue
		}
		attempt := Attempt{
			Surface: SurfaceFormField,
			Name:    field,
			Method:  method,
			Level:   entry.Level,
			Payload: payload,
			Marker:  marker,
			URL:     target.String(),
		}
		if finding := a.send(ctx, attempt, request, fieldLog); finding != nil {
			findings = append(findings, *finding)
		}
	}
	return findings
}

// send performs one attempt and returns a finding when the marker is reflected
func (a *HTMLInjectionAudit) send(ctx context.Context, attempt Attempt, request *http.Request, logger zerolog.Logger) *Finding {
	attemptLog := logger.With().Str("level", string(attempt.Level)).Str("marker", string(attempt.Marker)).Logger()

	if err := a.Options.RateLimiter.Acquire(ctx); err != nil {
		attemptLog.Debug().Err(err).Msg("Attempt not sent")
		return nil
	}
	result := http_utils.ExecuteRequest(request, http_utils.RequestExecutionOptions{
		Client:  a.Options.HTTPClient,
		Timeout: a.Options.Timeout,
	})
	a.Options.RateLimiter.Release()

	if result.Err != nil {
		if ctx.Err() != nil {
			return nil
		}
		event := attemptLog.Debug()
		if a.Options.Verbose {
			event = attemptLog.Warn()
		}
		event.Err(result.Err).Str("error_category", http_utils.CategorizeRequestError(result.Err)).Msg("Request failed, skipping attempt")
		return nil
	}
	a.Options.Stats.IncTested()

	body := string(result.Body)
	detection := reflection.IsVulnerable(body, string(attempt.Marker))
	if !detection.Vulnerable {
		attemptLog.Debug().Int("status", result.StatusCode).Msg("Payload not reflected")
		return nil
	}
	a.Options.Stats.IncVulnerabilities()

	finalURL := attempt.URL
	if attempt.Surface == SurfaceURLParameter {
		finalURL = result.FinalURL
	}
	finding := newFinding(attempt, detection, finalURL, result.StatusCode, body)
	attemptLog.Warn().
		Str("reason", string(detection.Reason)).
		Str("confidence", string(detection.Confidence)).
		Str("context", string(finding.Context)).
		Str("test_url", finalURL).
		Msg("HTML injection detected")
	if a.Options.Verbose {
		attemptLog.Info().Str("payload", attempt.Payload).Msg("Reflected payload")
	}
	return &finding
}
