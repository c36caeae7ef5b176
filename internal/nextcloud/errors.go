package nextcloud

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig is returned by New when the client configuration is
// unusable (empty or malformed base URL).
var ErrInvalidConfig = errors.New("invalid client configuration")

// RequestError represents an unexpected HTTP status returned by the WebDAV
// server. The response body is kept for diagnostics.
type RequestError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *RequestError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("webdav %s %s: status=%d body=%s", e.Method, e.Path, e.StatusCode, e.Body)
}

// ParseError wraps a failure to parse a PROPFIND multi-status response.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse multistatus response: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
