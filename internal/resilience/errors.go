package resilience

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/url"
	"syscall"
)

// StatusOverloaded is Anthropic's non-standard "overloaded" status.
const StatusOverloaded = 529

// TransientError marks a failed outbound call as safe to retry. StatusCode
// is the response status that caused it, or 0 for a transport failure.
type TransientError struct {
	Err        error
	StatusCode int
}

func (e *TransientError) Error() string {
	return e.Err.Error()
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// NewTransientError wraps err as transient.
func NewTransientError(err error, statusCode int) *TransientError {
	return &TransientError{Err: err, StatusCode: statusCode}
}

// Classify wraps err as a *TransientError when a retry may succeed. status
// is the provider's HTTP status for err (0 when no response arrived). A
// non-zero status decides on its own; only transport failures fall through
// to IsTransient.
func Classify(err error, status int) error {
	if err == nil {
		return nil
	}
	if status != 0 {
		if IsTransientHTTPStatus(status) {
			return NewTransientError(err, status)
		}
		return err
	}
	var te *TransientError
	if errors.As(err, &te) {
		return err
	}
	if IsTransient(err) {
		return NewTransientError(err, 0)
	}
	return err
}

// IsTransient reports whether err, or any error in its chain, is a
// *TransientError or a connection-level failure of an outbound call.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var te *TransientError
	if errors.As(err, &te) {
		return true
	}

	// A per-call deadline. The caller's own context is checked by the retry loop.
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	return isTransientTransport(err)
}

// transientErrnos are socket errors where the remote side may recover.
var transientErrnos = []error{
	syscall.ECONNRESET,
	syscall.ECONNREFUSED,
	syscall.ECONNABORTED,
	syscall.EPIPE,
	syscall.ETIMEDOUT,
	syscall.EHOSTUNREACH,
	syscall.ENETUNREACH,
}

func isTransientTransport(err error) bool {
	// Covers *url.Error timeouts, TLS handshake timeouts and read deadlines.
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	// An unknown host stays unknown; only resolver hiccups are retried.
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return dnsErr.IsTemporary || dnsErr.IsTimeout
	}

	for _, errno := range transientErrnos {
		if errors.Is(err, errno) {
			return true
		}
	}

	// The server dropped a pooled or in-flight connection.
	var urlErr *url.Error
	if errors.As(err, &urlErr) && (errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF)) {
		return true
	}

	var opErr *net.OpError
	return errors.As(err, &opErr) && opErr.Op == "dial"
}

// IsTransientHTTPStatus reports whether a response status means the same
// request may succeed later.
func IsTransientHTTPStatus(statusCode int) bool {
	switch statusCode {
	case http.StatusRequestTimeout,
		http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout,
		StatusOverloaded:
		return true
	default:
		return false
	}
}
