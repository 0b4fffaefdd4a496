package http_utils

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pyneda/htin/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClientOptions() ClientOptions {
	return ClientOptions{
		Timeout:         5 * time.Second,
		FollowRedirects: true,
		MaxRedirects:    10,
	}
}

func TestExecuteRequest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/timeout":
			time.Sleep(500 * time.Millisecond)
		case "/redirect":
			http.Redirect(w, r, "/final?from=redirect", http.StatusFound)
			return
		case "/ua":
			w.Write([]byte(r.UserAgent() + "|" + r.Header.Get("X-Scan")))
			return
		}
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`<p>success</p>`))
	}))
	defer server.Close()

	client := CreateHttpClient(testClientOptions())

	t.Run("successful request", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodGet, server.URL+"/test", nil)
		require.NoError(t, err)

		result := ExecuteRequest(req, RequestExecutionOptions{Client: client})

		assert.NoError(t, result.Err)
		assert.False(t, result.TimedOut)
		assert.Equal(t, http.StatusOK, result.StatusCode)
		assert.Equal(t, "<p>success</p>", string(result.Body))
		assert.Equal(t, server.URL+"/test", result.FinalURL)
		assert.Greater(t, result.Duration, time.Duration(0))
	})

	t.Run("redirect followed and final url exposed", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodGet, server.URL+"/redirect", nil)
		require.NoError(t, err)

		result := ExecuteRequest(req, RequestExecutionOptions{Client: client})

		require.NoError(t, result.Err)
		assert.Equal(t, http.StatusOK, result.StatusCode)
		assert.Equal(t, server.URL+"/final?from=redirect", result.FinalURL)
	})

	t.Run("redirect not followed when disabled", func(t *testing.T) {
		opts := testClientOptions()
		opts.FollowRedirects = false
		req, err := http.NewRequest(http.MethodGet, server.URL+"/redirect", nil)
		require.NoError(t, err)

		result := ExecuteRequest(req, RequestExecutionOptions{Client: CreateHttpClient(opts)})

		require.NoError(t, result.Err)
		assert.Equal(t, http.StatusFound, result.StatusCode)
		assert.Equal(t, server.URL+"/redirect", result.FinalURL)
	})

	t.Run("user agent and extra headers", func(t *testing.T) {
		opts := testClientOptions()
		opts.Headers = map[string][]string{"X-Scan": {"htin"}}
		req, err := http.NewRequest(http.MethodGet, server.URL+"/ua", nil)
		require.NoError(t, err)

		result := ExecuteRequest(req, RequestExecutionOptions{Client: CreateHttpClient(opts)})

		require.NoError(t, result.Err)
		assert.Equal(t, config.DefaultUserAgent+"|htin", string(result.Body))
	})

	t.Run("timeout", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodGet, server.URL+"/timeout", nil)
		require.NoError(t, err)

		result := ExecuteRequest(req, RequestExecutionOptions{Client: client, Timeout: 50 * time.Millisecond})

		assert.Error(t, result.Err)
		assert.True(t, result.TimedOut)
		assert.Nil(t, result.Response)
		assert.Equal(t, ErrorCategoryTimeout, CategorizeRequestError(result.Err))
	})

	t.Run("connection refused", func(t *testing.T) {
		closed := httptest.NewServer(http.NotFoundHandler())
		closedURL := closed.URL
		closed.Close()

		req, err := http.NewRequest(http.MethodGet, closedURL, nil)
		require.NoError(t, err)
		result := ExecuteRequest(req, RequestExecutionOptions{Client: client})

		assert.Error(t, result.Err)
		assert.False(t, result.TimedOut)
	})
}

func TestTooManyRedirects(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/loop", http.StatusFound)
	}))
	defer server.Close()

	opts := testClientOptions()
	opts.MaxRedirects = 2
	req, err := http.NewRequest(http.MethodGet, server.URL, nil)
	require.NoError(t, err)

	result := ExecuteRequest(req, RequestExecutionOptions{Client: CreateHttpClient(opts)})
	require.Error(t, result.Err)
	assert.Equal(t, ErrorCategoryTooManyRedirects, CategorizeRequestError(result.Err))
}

func TestParseProtocol(t *testing.T) {
	for input, expected := range map[string]Protocol{"": ProtocolHTTP1, "HTTP1": ProtocolHTTP1, "h2": ProtocolHTTP2, " h3 ": ProtocolHTTP3} {
		protocol, err := ParseProtocol(input)
		require.NoError(t, err)
		assert.Equal(t, expected, protocol)
	}
	_, err := ParseProtocol("spdy")
	assert.Error(t, err)
}

func TestCreateHttpClientTransports(t *testing.T) {
	opts := testClientOptions()
	for _, protocol := range []Protocol{ProtocolHTTP1, ProtocolHTTP2, ProtocolHTTP3} {
		opts.Protocol = protocol
		client := CreateHttpClient(opts)
		transport, ok := client.Transport.(*headerTransport)
		require.True(t, ok)
		assert.NotNil(t, transport.base)
		assert.Equal(t, config.DefaultUserAgent, transport.userAgent)
	}
}

func TestIsTimeoutError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"context deadline exceeded", context.DeadlineExceeded, true},
		{"timeout error", &timeoutError{}, true},
		{"regular error", assert.AnError, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsTimeoutError(tt.err))
		})
	}
}

func TestCategorizeRequestError(t *testing.T) {
	assert.Equal(t, ErrorCategoryNone, CategorizeRequestError(nil))
	assert.Equal(t, ErrorCategoryConnectionRefused, CategorizeRequestError(errString("dial tcp: connection refused")))
	assert.Equal(t, ErrorCategoryDNSResolution, CategorizeRequestError(errString("lookup x: no such host")))
	assert.Equal(t, ErrorCategoryUnknown, CategorizeRequestError(errString("boom")))
}

type errString string

func (e errString) Error() string { return strings.TrimSpace(string(e)) }

// timeoutError is a helper for testing timeout error detection
type timeoutError struct{}

func (e *timeoutError) Error() string {
	return "request timeout"
}

func (e *timeoutError) Timeout() bool {
	return true
}

func (e *timeoutError) Temporary() bool {
	return false
}
