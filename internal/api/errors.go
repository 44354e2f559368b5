package api

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"syscall"

	"github.com/sony/gobreaker"
)

// NetworkError reports a failed call to the data service: the transport
// failed, the breaker refused the call, or the status was not 2xx.
type NetworkError struct {
	Op         string // "fetch" or "predict"
	URL        string
	StatusCode int // 0 when no response was received
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s %s: status %d %s", e.Op, e.URL, e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// ConnectivityDenied reports whether the service actively refused us:
// connection refused, unresolvable host, or an access-policy status.
// Everything else is a generic network failure.
func (e *NetworkError) ConnectivityDenied() bool {
	switch e.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return true
	}
	if e.Err == nil {
		return false
	}
	if errors.Is(e.Err, syscall.ECONNREFUSED) {
		return true
	}
	var dnsErr *net.DNSError
	return errors.As(e.Err, &dnsErr)
}

// BreakerOpen reports whether the call was refused by the circuit breaker.
func (e *NetworkError) BreakerOpen() bool {
	return errors.Is(e.Err, gobreaker.ErrOpenState) || errors.Is(e.Err, gobreaker.ErrTooManyRequests)
}

// IsNetworkError reports whether err is or wraps a *NetworkError.
func IsNetworkError(err error) bool {
	var nErr *NetworkError
	return errors.As(err, &nErr)
}
