package tui

import (
	"context"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"syscall"

	"github.com/studiowebux/restdeck/internal/executor"
)

const timeoutHint = "Fetch timed out - the server did not answer in time, raise `timeout` in config.yaml (default: 30s)"

// categorizeFetchError turns a failed collection fetch into an actionable message
// for the error detail modal. The table itself only ever shows the fixed failure text.
func categorizeFetchError(err error) string {
	if err == nil {
		return ""
	}

	var fetchErr *executor.FetchError
	if errors.As(err, &fetchErr) && fetchErr.Status != 0 {
		if errors.Is(err, executor.ErrUnexpectedStatus) {
			return categorizeStatus(fetchErr.Status)
		}
		return "Server answered " + fetchErr.StatusText + " but the body is not a record list - check the collection's `records` path in config.yaml"
	}

	return categorizeError(err)
}

// categorizeStatus explains a non-2xx answer
func categorizeStatus(status int) string {
	text := fmt.Sprintf("%d %s", status, http.StatusText(status))
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return text + " - the server rejected the credentials, check `token` in config.yaml"
	case status == http.StatusNotFound:
		return text + " - no collection at this locator, check `base_url` or the collection `url` override"
	case status == http.StatusTooManyRequests:
		return text + " - rate limited, wait before reloading"
	case status >= 500:
		return text + " - the server failed, retry later"
	case status >= 300 && status < 400:
		return text + " - redirect was not followed, point the locator at the final URL"
	default:
		return text + " - unexpected response status"
	}
}

// categorizeError unwraps err and maps well-known network failures.
func categorizeError(err error) string {
	if err == nil {
		return ""
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return timeoutHint
	}
	if errors.Is(err, context.Canceled) {
		return "Fetch cancelled"
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return timeoutHint
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		if msg := categorizeNetError(opErr); msg != "" {
			return msg
		}
	}

	var unknownAuthority x509.UnknownAuthorityError
	if errors.As(err, &unknownAuthority) {
		return "TLS certificate signed by unknown authority - set `tls.ca_file` in config.yaml or enable `tls.insecure_skip_verify`"
	}
	var invalidCert x509.CertificateInvalidError
	if errors.As(err, &invalidCert) {
		return "TLS certificate is invalid: " + invalidCert.Error()
	}

	return categorizeMessage(err.Error())
}

// categorizeNetError handles syscall level failures; "" means not recognized
func categorizeNetError(e *net.OpError) string {
	if e.Timeout() {
		return timeoutHint
	}

	var errno syscall.Errno
	if errors.As(e.Err, &errno) {
		switch errno {
		case syscall.ECONNREFUSED:
			return "Connection refused - is the server (or `restdeck mock`) running on that port?"
		case syscall.ECONNRESET:
			return "Connection reset by server - the server dropped the connection"
		case syscall.ENETUNREACH:
			return "Network unreachable - check the network connection"
		case syscall.EHOSTUNREACH:
			return "Host unreachable - check that the server is online"
		}
	}
	return ""
}

// categorizeMessage is the string based fallback for errors without a useful type
func categorizeMessage(errStr string) string {
	if errStr == "" {
		return ""
	}
	errLower := strings.ToLower(errStr)

	switch {
	case strings.Contains(errLower, "deadline exceeded"),
		strings.Contains(errLower, "client.timeout exceeded"):
		return timeoutHint

	case strings.Contains(errLower, "no such host"),
		strings.Contains(errLower, "dial tcp: lookup"):
		return "DNS resolution failed - verify `base_url` and the network connection"

	case strings.Contains(errLower, "connection refused"):
		return "Connection refused - is the server (or `restdeck mock`) running on that port?"

	case strings.Contains(errLower, "connection reset"):
		return "Connection reset by server - the server dropped the connection"

	case strings.Contains(errLower, "network is unreachable"),
		strings.Contains(errLower, "no route to host"):
		return "Network unreachable - check the network connection"

	case strings.Contains(errLower, "x509"),
		strings.Contains(errLower, "tls"),
		strings.Contains(errLower, "certificate"):
		return categorizeTLSMessage(errLower, errStr)

	case strings.Contains(errLower, "unsupported protocol"),
		strings.Contains(errLower, "invalid url"):
		return "Invalid locator - collection URLs must start with http:// or https://"

	case strings.Contains(errLower, "eof"):
		return "Connection closed unexpectedly - the server ended the response early"
	}

	return "Fetch failed: " + errStr
}

func categorizeTLSMessage(errLower, errStr string) string {
	switch {
	case strings.Contains(errLower, "unknown authority"):
		return "TLS certificate signed by unknown authority - set `tls.ca_file` in config.yaml or enable `tls.insecure_skip_verify`"
	case strings.Contains(errLower, "expired"):
		return "TLS certificate has expired"
	case strings.Contains(errLower, "is valid for"):
		return "TLS hostname mismatch - the certificate does not cover this host"
	case strings.Contains(errLower, "handshake"):
		return "TLS handshake failed - check `tls.cert_file` and `tls.key_file`"
	}
	return "TLS error: " + errStr
}
