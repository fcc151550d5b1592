package qweather

import (
	"fmt"
	"net/http"
	"strconv"
)

// InvalidArgumentError reports a bad or missing request parameter. It is
// surfaced as a 400 and never retried; no network call is made.
type InvalidArgumentError struct {
	Param  string
	Reason string
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("invalid argument %q: %s", e.Param, e.Reason)
}

// Status implements the HTTP status mapping used by the boundary layer.
func (e *InvalidArgumentError) Status() (int, string) {
	return http.StatusBadRequest, e.Error()
}

// UpstreamError reports a non-success upstream envelope or a transport-level
// failure. Results carrying it are never cached.
type UpstreamError struct {
	// StatusCode is the transport-level HTTP status, or 0 when the transport
	// succeeded but the envelope carried a non-success code.
	StatusCode int

	// Code is the envelope's embedded code, when one was readable.
	Code string

	// Body is a bounded excerpt of the upstream response body.
	Body string
}

func (e *UpstreamError) Error() string {
	switch {
	case e.Code != "":
		return fmt.Sprintf("upstream error code %s", e.Code)
	case e.StatusCode != 0:
		return fmt.Sprintf("upstream HTTP %d", e.StatusCode)
	default:
		return "upstream error"
	}
}

// Status passes the upstream's own error status through when it is a valid
// HTTP error code; anything else is reported as a bad gateway.
func (e *UpstreamError) Status() (int, string) {
	if code, err := strconv.Atoi(e.Code); err == nil && code >= 400 && code < 600 {
		return code, e.Error()
	}
	if e.StatusCode >= 400 && e.StatusCode < 600 {
		return e.StatusCode, e.Error()
	}
	return http.StatusBadGateway, e.Error()
}
