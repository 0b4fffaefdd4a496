package http_utils

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParseURL(rawURL string) *url.URL {
	u, err := url.Parse(rawURL)
	if err != nil {
		panic(err)
	}
	return u
}

func TestNewFormRequest(t *testing.T) {
	data := url.Values{"q": {"<b>x</b>"}, "csrf": {"abc"}}

	testCases := []struct {
		name         string
		method       string
		target       string
		expectMethod string
		expectURL    string
		expectBody   string
	}{
		{
			name:         "post sends urlencoded body",
			method:       "post",
			target:       "https://example.com/submit",
			expectMethod: http.MethodPost,
			expectURL:    "https://example.com/submit",
			expectBody:   "csrf=abc&q=%3Cb%3Ex%3C%2Fb%3E",
		},
		{
			name:         "post keeps action query",
			method:       "POST",
			target:       "https://example.com/submit?src=page",
			expectMethod: http.MethodPost,
			expectURL:    "https://example.com/submit?src=page",
			expectBody:   "csrf=abc&q=%3Cb%3Ex%3C%2Fb%3E",
		},
		{
			name:         "get merges into empty query",
			method:       "GET",
			target:       "https://example.com/search",
			expectMethod: http.MethodGet,
			expectURL:    "https://example.com/search?csrf=abc&q=%3Cb%3Ex%3C%2Fb%3E",
		},
		{
			name:         "get keeps existing query",
			method:       "GET",
			target:       "https://example.com/search?page=2",
			expectMethod: http.MethodGet,
			expectURL:    "https://example.com/search?page=2&csrf=abc&q=%3Cb%3Ex%3C%2Fb%3E",
		},
		{
			name:         "unknown methods fall back to get",
			method:       "PUT",
			target:       "https://example.com/search",
			expectMethod: http.MethodGet,
			expectURL:    "https://example.com/search?csrf=abc&q=%3Cb%3Ex%3C%2Fb%3E",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			request, err := NewFormRequest(context.Background(), tc.method, mustParseURL(tc.target), data)
			require.NoError(t, err)
			assert.Equal(t, tc.expectMethod, request.Method)
			assert.Equal(t, tc.expectURL, request.URL.String())
			if tc.expectBody == "" {
				assert.Nil(t, request.Body)
				return
			}
			assert.Equal(t, "application/x-www-form-urlencoded", request.Header.Get("Content-Type"))
			body, err := io.ReadAll(request.Body)
			require.NoError(t, err)
			assert.Equal(t, tc.expectBody, string(body))
		})
	}
}
