package http_utils

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
)

// DefaultMaxBodySize caps how much of a response body is read
const DefaultMaxBodySize = 10 * 1024 * 1024

// RequestExecutionResult contains the complete result of an HTTP request execution
type RequestExecutionResult struct {
	Response   *http.Response
	Body       []byte
	FinalURL   string
	StatusCode int
	Duration   time.Duration
	Err        error
	TimedOut   bool
}

// RequestExecutionOptions contains options for executing HTTP requests
type RequestExecutionOptions struct {
	Client      *http.Client
	Timeout     time.Duration
	MaxBodySize int64
}

// ExecuteRequest executes an HTTP request and reads the whole response body. The response body is
// closed before returning, its content is available in Body.
func ExecuteRequest(req *http.Request, options RequestExecutionOptions) RequestExecutionResult {
	startTime := time.Now()

	client := options.Client
	if client == nil {
		client = CreateHttpClient(ClientOptions{FollowRedirects: true, MaxRedirects: 10})
	}

	if options.Timeout > 0 {
		ctx, cancel := context.WithTimeout(req.Context(), options.Timeout)
		defer cancel()
		req = req.WithContext(ctx)
	}

	maxBodySize := options.MaxBodySize
	if maxBodySize <= 0 {
		maxBodySize = DefaultMaxBodySize
	}

	result := RequestExecutionResult{}

	response, err := client.Do(req)
	if err != nil {
		result.Duration = time.Since(startTime)
		result.Err = err
		result.TimedOut = IsTimeoutError(err)
		return result
	}
	defer response.Body.Close()

	body, err := io.ReadAll(io.LimitReader(response.Body, maxBodySize))
	result.Duration = time.Since(startTime)
	if err != nil {
		result.Err = err
		result.TimedOut = IsTimeoutError(err)
		return result
	}

	response.Body = http.NoBody
	result.Response = response
	result.Body = body
	result.StatusCode = response.StatusCode
	result.FinalURL = response.Request.URL.String()
	return result
}

// IsTimeoutError checks if an error is due to timeout
func IsTimeoutError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	errorStr := err.Error()
	return strings.Contains(errorStr, "timeout") ||
		strings.Contains(errorStr, "deadline exceeded") ||
		strings.Contains(errorStr, "operation timed out")
}
