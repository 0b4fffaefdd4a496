package lib

import (
	"net/url"
	"strings"
)

// EnsureScheme prefixes targets given without a scheme with http://
func EnsureScheme(target string) string {
	target = strings.TrimSpace(target)
	lower := strings.ToLower(target)
	if target == "" || strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return target
	}
	return "http://" + target
}

// splitQuery returns the raw key=value pairs of a query string without decoding them
func splitQuery(rawQuery string) []string {
	if rawQuery == "" {
		return nil
	}
	return strings.Split(rawQuery, "&")
}

// rawQueryKey returns the decoded key of a raw key=value pair
func rawQueryKey(pair string) string {
	key, _, _ := strings.Cut(pair, "=")
	if decoded, err := url.QueryUnescape(key); err == nil {
		return decoded
	}
	return key
}

// QueryParamNames returns the unique parameter names of the URL query in the order they first appear.
// Parameters with an empty value are included.
func QueryParamNames(rawURL string) ([]string, error) {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}
	var names []string
	seen := make(map[string]bool)
	for _, pair := range splitQuery(parsedURL.RawQuery) {
		key := rawQueryKey(pair)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		names = append(names, key)
	}
	return names, nil
}

// ReplaceQueryParam returns rawURL with every value of param set to the query escaped value. Every other
// pair of the query is kept byte for byte and in place. When param is not present it is appended.
func ReplaceQueryParam(rawURL, param, value string) (string, error) {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	escaped := url.QueryEscape(value)
	pairs := splitQuery(parsedURL.RawQuery)
	found := false
	for i, pair := range pairs {
		if rawQueryKey(pair) != param {
			continue
		}
		rawKey, _, _ := strings.Cut(pair, "=")
		pairs[i] = rawKey + "=" + escaped
		found = true
	}
	if !found {
		pairs = append(pairs, url.QueryEscape(param)+"="+escaped)
	}
	parsedURL.RawQuery = strings.Join(pairs, "&")
	parsedURL.ForceQuery = false
	return parsedURL.String(), nil
}

// MergeQuery returns target with values added to its existing query
func MergeQuery(target *url.URL, values url.Values) *url.URL {
	merged := *target
	if len(values) == 0 {
		return &merged
	}
	encoded := values.Encode()
	if merged.RawQuery == "" {
		merged.RawQuery = encoded
	} else {
		merged.RawQuery = merged.RawQuery + "&" + encoded
	}
	return &merged
}

// GetHostFromURL extracts the host from the given URL.
func GetHostFromURL(u string) (string, error) {
	parsedURL, err := url.Parse(u)
	if err != nil {
		return "", err
	}
	return parsedURL.Hostname(), nil
}
