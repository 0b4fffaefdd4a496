package http_utils

import (
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pyneda/htin/internal/config"
	"github.com/pyneda/htin/lib"
	"github.com/quic-go/quic-go/http3"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
	"golang.org/x/net/http2"
)

// Protocol selects the transport used by CreateHttpClient
type Protocol string

const (
	ProtocolHTTP1 Protocol = "http1"
	ProtocolHTTP2 Protocol = "h2"
	ProtocolHTTP3 Protocol = "h3"
)

// ParseProtocol validates a protocol name, an empty name means http1
func ParseProtocol(name string) (Protocol, error) {
	switch Protocol(strings.ToLower(strings.TrimSpace(name))) {
	case "", ProtocolHTTP1:
		return ProtocolHTTP1, nil
	case ProtocolHTTP2:
		return ProtocolHTTP2, nil
	case ProtocolHTTP3:
		return ProtocolHTTP3, nil
	}
	return "", fmt.Errorf("unknown protocol %q, valid values are http1, h2 and h3", name)
}

// ClientOptions configures the client shared by every request of a scan.
// Redirects are followed by default, up to MaxRedirects hops, and the final URL is reported to callers.
type ClientOptions struct {
	Timeout            time.Duration
	UserAgent          string
	FollowRedirects    bool
	MaxRedirects       int
	Proxy              string
	Protocol           Protocol
	InsecureSkipVerify bool
	Headers            map[string][]string
}

// ClientOptionsFromConfig reads the navigation settings
func ClientOptionsFromConfig() ClientOptions {
	protocol, err := ParseProtocol(viper.GetString("navigation.protocol"))
	if err != nil {
		log.Warn().Err(err).Msg("Falling back to http1")
		protocol = ProtocolHTTP1
	}
	return ClientOptions{
		Timeout:            time.Duration(viper.GetFloat64("navigation.timeout") * float64(time.Second)),
		UserAgent:          viper.GetString("navigation.user_agent"),
		FollowRedirects:    viper.GetBool("navigation.follow_redirects"),
		MaxRedirects:       viper.GetInt("navigation.max_redirects"),
		Proxy:              viper.GetString("navigation.proxy"),
		Protocol:           protocol,
		InsecureSkipVerify: viper.GetBool("navigation.insecure_skip_verify"),
		Headers:            configuredHeaders(),
	}
}

// configuredHeaders reads navigation.headers either as a map or, when it comes from the environment, as a
// comma separated "Key: Value" list
func configuredHeaders() map[string][]string {
	if raw, ok := viper.Get("navigation.headers").(string); ok {
		return lib.ParseHeadersStringToMap(raw)
	}
	headers := make(map[string][]string)
	for key, value := range viper.GetStringMapString("navigation.headers") {
		headers[key] = append(headers[key], value)
	}
	return headers
}

func getProxyFunc(proxy string) func(*http.Request) (*url.URL, error) {
	if proxy == "" {
		return http.ProxyFromEnvironment
	}
	proxyURL, err := url.Parse(proxy)
	if err != nil {
		log.Error().Err(err).Str("proxy", proxy).Msg("Error parsing proxy url, using environment proxy")
		return http.ProxyFromEnvironment
	}
	return http.ProxyURL(proxyURL)
}

// CreateHttpTransport creates an HTTP transport with no pre-defined http version.
func CreateHttpTransport(opts ClientOptions) *http.Transport {
	return &http.Transport{
		Proxy: getProxyFunc(opts.Proxy),
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		MaxConnsPerHost:       100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		TLSClientConfig: &tls.Config{
			Renegotiation:      tls.RenegotiateOnceAsClient,
			InsecureSkipVerify: opts.InsecureSkipVerify,
		},
	}
}

// CreateHttp2Transport creates an HTTP/2 only transport. It requires https targets and ignores proxies.
func CreateHttp2Transport(opts ClientOptions) *http2.Transport {
	return &http2.Transport{
		AllowHTTP: false,
		DialTLS: func(network, addr string, cfg *tls.Config) (net.Conn, error) {
			if cfg == nil {
				cfg = &tls.Config{}
			}
			cfg.NextProtos = []string{"h2"}
			return tls.DialWithDialer(&net.Dialer{
				Timeout:   30 * time.Second,
				KeepAlive: 30 * time.Second,
			}, network, addr, cfg)
		},
		TLSClientConfig: &tls.Config{
			Renegotiation:      tls.RenegotiateOnceAsClient,
			InsecureSkipVerify: opts.InsecureSkipVerify,
		},
	}
}

// CreateHttp3Transport creates an HTTP/3 transport.
func CreateHttp3Transport(opts ClientOptions) *http3.RoundTripper {
	return &http3.RoundTripper{
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: opts.InsecureSkipVerify,
		},
		DisableCompression: false,
	}
}

// headerTransport sets the scanner headers on every request, redirect hops included
type headerTransport struct {
	base      http.RoundTripper
	userAgent string
	headers   map[string][]string
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	for key, values := range t.headers {
		req.Header.Del(key)
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}
	if t.userAgent != "" {
		req.Header.Set("User-Agent", t.userAgent)
	}
	return t.base.RoundTrip(req)
}

func redirectPolicy(opts ClientOptions) func(req *http.Request, via []*http.Request) error {
	return func(req *http.Request, via []*http.Request) error {
		if !opts.FollowRedirects {
			return http.ErrUseLastResponse
		}
		if len(via) > opts.MaxRedirects {
			return fmt.Errorf("stopped after %d redirects", opts.MaxRedirects)
		}
		log.Debug().Str("from", via[len(via)-1].URL.String()).Str("to", req.URL.String()).Msg("Following redirect")
		return nil
	}
}

// CreateHttpClient creates the client used for every request of a scan
func CreateHttpClient(opts ClientOptions) *http.Client {
	if opts.UserAgent == "" {
		opts.UserAgent = config.DefaultUserAgent
	}
	var base http.RoundTripper
	switch opts.Protocol {
	case ProtocolHTTP2:
		base = CreateHttp2Transport(opts)
	case ProtocolHTTP3:
		base = CreateHttp3Transport(opts)
	default:
		base = CreateHttpTransport(opts)
	}
	return &http.Client{
		Transport: &headerTransport{
			base:      base,
			userAgent: opts.UserAgent,
			headers:   opts.Headers,
		},
		Timeout:       opts.Timeout,
		CheckRedirect: redirectPolicy(opts),
	}
}
