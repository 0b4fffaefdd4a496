package lib

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplaceQueryParam(t *testing.T) {
	tests := []struct {
		name     string
		rawURL   string
		param    string
		value    string
		expected string
	}{
		{"single", "http://x/y?id=5", "id", "<b>m</b>", "http://x/y?id=%3Cb%3Em%3C%2Fb%3E"},
		{"others kept verbatim", "http://x/y?a=%20raw&id=5&b=c+d", "id", "v", "http://x/y?a=%20raw&id=v&b=c+d"},
		{"repeated key", "http://x/y?id=1&x=2&id=3", "id", "v", "http://x/y?id=v&x=2&id=v"},
		{"absent appended", "http://x/y?a=1", "q", "v", "http://x/y?a=1&q=v"},
		{"no query", "http://x/y", "q", "v", "http://x/y?q=v"},
		{"empty value", "http://x/y?id=&a=1", "id", "v", "http://x/y?id=v&a=1"},
		{"key without equals", "http://x/y?flag&a=1", "flag", "v", "http://x/y?flag=v&a=1"},
		{"encoded key", "http://x/y?my%20key=1", "my key", "v", "http://x/y?my%20key=v"},
		{"fragment kept", "http://x/y?id=1#top", "id", "v", "http://x/y?id=v#top"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ReplaceQueryParam(tt.rawURL, tt.param, tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestReplaceQueryParamOnlyChangesTarget(t *testing.T) {
	result, err := ReplaceQueryParam("http://x/y?id=5", "id", "payload")
	require.NoError(t, err)

	original, _ := url.Parse("http://x/y?id=5")
	changed, _ := url.Parse(result)
	assert.Equal(t, original.Scheme, changed.Scheme)
	assert.Equal(t, original.Host, changed.Host)
	assert.Equal(t, original.Path, changed.Path)
	assert.Equal(t, url.Values{"id": {"payload"}}, changed.Query())
}

func TestQueryParamNames(t *testing.T) {
	names, err := QueryParamNames("http://x/y?b=1&a=2&b=3&empty=&flag&=novalue")
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a", "empty", "flag"}, names)

	names, err = QueryParamNames("http://x/y")
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestMergeQuery(t *testing.T) {
	target, _ := url.Parse("http://x/search?src=page")
	merged := MergeQuery(target, url.Values{"q": {"a b"}})
	assert.Equal(t, "http://x/search?src=page&q=a+b", merged.String())
	assert.Equal(t, "src=page", target.RawQuery)

	target, _ = url.Parse("http://x/search")
	assert.Equal(t, "http://x/search?q=1", MergeQuery(target, url.Values{"q": {"1"}}).String())
}

func TestGetHostFromURL(t *testing.T) {
	host, err := GetHostFromURL("https://sub.example.com:8443/path?a=1")
	require.NoError(t, err)
	assert.Equal(t, "sub.example.com", host)
}

func TestEnsureScheme(t *testing.T) {
	assert.Equal(t, "http://example.com/a?b=1", EnsureScheme("example.com/a?b=1"))
	assert.Equal(t, "https://example.com", EnsureScheme(" https://example.com "))
	assert.Equal(t, "HTTP://example.com", EnsureScheme("HTTP://example.com"))
	assert.Equal(t, "", EnsureScheme(""))
}
