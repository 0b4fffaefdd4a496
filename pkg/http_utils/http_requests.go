package http_utils

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/pyneda/htin/lib"
)

// NewFormRequest builds a form submission. POST sends data as an urlencoded body, any other method merges
// data into the query of target.
func NewFormRequest(ctx context.Context, method string, target *url.URL, data url.Values) (*http.Request, error) {
	if strings.EqualFold(method, http.MethodPost) {
		request, err := http.NewRequestWithContext(ctx, http.MethodPost, target.String(), strings.NewReader(data.Encode()))
		if err != nil {
			return nil, err
		}
		request.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		return request, nil
	}
	return http.NewRequestWithContext(ctx, http.MethodGet, lib.MergeQuery(target, data).String(), nil)
}
