// Package resilience classifies failures of external service calls.
// The core never retries; these helpers only label errors for the caller.
package resilience

import (
	"context"
	"errors"
	"net"
	"os"
	"strings"
	"syscall"

	"github.com/sells-group/scrape-playground/internal/model"
)

// IsTimeout returns true if err (or any error in its chain) is a deadline
// or network timeout.
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var remote *model.RemoteError
	if errors.As(err, &remote) && remote.Timeout {
		return true
	}
	// http.Client wraps its own timeout as a string when the body read stalls.
	return strings.Contains(strings.ToLower(err.Error()), "client.timeout exceeded")
}

// IsTransient returns true if the error looks like it would succeed when
// tried again later: timeouts, connection resets, DNS failures, or a
// provider answering with a transient HTTP status.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	if IsTimeout(err) {
		return true
	}

	var remote *model.RemoteError
	if errors.As(err, &remote) && IsTransientHTTPStatus(remote.StatusCode) {
		return true
	}

	// Connection reset / refused / DNS.
	if errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNABORTED) {
		return true
	}

	// String-based heuristics for wrapped errors from HTTP clients.
	msg := strings.ToLower(err.Error())
	transientPatterns := []string{
		"connection reset by peer",
		"broken pipe",
		"temporary failure in name resolution",
		"no such host",
		"tls handshake timeout",
		"i/o timeout",
		"server closed idle connection",
		"transport connection broken",
	}
	for _, p := range transientPatterns {
		if strings.Contains(msg, p) {
			return true
		}
	}

	return false
}

// IsTransientHTTPStatus returns true if the HTTP status code indicates a
// transient server-side issue.
func IsTransientHTTPStatus(statusCode int) bool {
	switch statusCode {
	case 408, // Request Timeout
		429, // Too Many Requests
		500, // Internal Server Error
		502, // Bad Gateway
		503, // Service Unavailable
		504: // Gateway Timeout
		return true
	default:
		return false
	}
}
