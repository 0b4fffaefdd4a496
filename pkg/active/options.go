package active

import (
	"net/http"
	"time"

	"github.com/pyneda/htin/pkg/http_utils"
	"github.com/pyneda/htin/pkg/payloads"
	"github.com/pyneda/htin/pkg/scan/ratelimit"
)

type ActiveModuleOptions struct {
	HTTPClient  *http.Client
	RateLimiter ratelimit.RateLimiter
	Catalog     *payloads.Catalog
	Stats       *Statistics
	// Concurrency bounds how many fields of the same form are tested at once
	Concurrency int
	Timeout     time.Duration
	Verbose     bool
}

func (o ActiveModuleOptions) withDefaults() ActiveModuleOptions {
	if o.HTTPClient == nil {
		o.HTTPClient = http_utils.CreateHttpClient(http_utils.ClientOptions{FollowRedirects: true, MaxRedirects: 10})
	}
	if o.RateLimiter == nil {
		o.RateLimiter = ratelimit.NewNoOpRateLimiter()
	}
	if o.Catalog == nil {
		o.Catalog = payloads.DefaultCatalog()
	}
	if o.Stats == nil {
		o.Stats = &Statistics{}
	}
	if o.Concurrency < 1 {
		o.Concurrency = 1
	}
	return o
}
