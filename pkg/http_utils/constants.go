package http_utils

import "strings"

// Error category constants for request error categorization
const (
	ErrorCategoryConnectionClosedEOF = "connection_closed_eof"
	ErrorCategoryConnectionRefused   = "connection_refused"
	ErrorCategoryConnectionReset     = "connection_reset"
	ErrorCategoryDNSResolution       = "dns_resolution"
	ErrorCategoryTimeout             = "timeout"
	ErrorCategoryTLSError            = "tls_error"
	ErrorCategoryTooManyRedirects    = "too_many_redirects"
	ErrorCategoryURLInvalid          = "url_invalid"
	ErrorCategoryCancelled           = "cancelled"
	ErrorCategoryUnknown             = "unknown"
	ErrorCategoryNone                = "none"
)

// CategorizeRequestError gives per-attempt failures a short label for the logs
func CategorizeRequestError(err error) string {
	if err == nil {
		return ErrorCategoryNone
	}
	if IsTimeoutError(err) {
		return ErrorCategoryTimeout
	}

	errorMsg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(errorMsg, "context canceled"):
		return ErrorCategoryCancelled
	case strings.Contains(errorMsg, "eof"):
		return ErrorCategoryConnectionClosedEOF
	case strings.Contains(errorMsg, "connection refused"):
		return ErrorCategoryConnectionRefused
	case strings.Contains(errorMsg, "connection reset"):
		return ErrorCategoryConnectionReset
	case strings.Contains(errorMsg, "no such host"):
		return ErrorCategoryDNSResolution
	case strings.Contains(errorMsg, "redirects"):
		return ErrorCategoryTooManyRedirects
	case strings.Contains(errorMsg, "tls"), strings.Contains(errorMsg, "certificate"):
		return ErrorCategoryTLSError
	case strings.Contains(errorMsg, "invalid url"), strings.Contains(errorMsg, "unsupported protocol scheme"):
		return ErrorCategoryURLInvalid
	}
	return ErrorCategoryUnknown
}
