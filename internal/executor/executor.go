package executor

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/studiowebux/restdeck/internal/filter"
	"github.com/studiowebux/restdeck/internal/types"
	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"
)

// DefaultTimeout is used when Options.Timeout is zero
const DefaultTimeout = 30 * time.Second

// ErrUnexpectedStatus marks a response outside the 2xx range
var ErrUnexpectedStatus = errors.New("unexpected status")

// FetchError describes a failed collection fetch.
// Status is zero when the server never answered.
type FetchError struct {
	URL        string
	Status     int
	StatusText string
	Err        error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("GET %s: %s: %v", e.URL, e.StatusText, e.Err)
	}
	return fmt.Sprintf("GET %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Options configures the HTTP client
type Options struct {
	Timeout   time.Duration
	Token     string // Bearer token sent with every request
	TLS       *types.TLSConfig
	UserAgent string
}

// Client fetches collections over HTTP
type Client struct {
	http      *http.Client
	userAgent string
	group     singleflight.Group
}

// NewClient creates a client with optional TLS and bearer token configuration
func NewClient(opts Options) (*Client, error) {
	httpClient, err := buildHTTPClient(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to configure HTTP client: %w", err)
	}

	ua := opts.UserAgent
	if ua == "" {
		ua = "restdeck"
	}

	return &Client{http: httpClient, userAgent: ua}, nil
}

// Close releases idle connections
func (c *Client) Close() {
	c.http.CloseIdleConnections()
}

// Fetch performs one GET against the collection's locator and decodes its records.
// Concurrent fetches of the same locator share a single request.
func (c *Client) Fetch(ctx context.Context, collection types.Collection) (*types.FetchResult, error) {
	key := collection.URL + "\x00" + collection.RecordsPath

	ch := c.group.DoChan(key, func() (interface{}, error) {
		// The shared request must not die with whichever caller arrived first
		return c.fetch(context.WithoutCancel(ctx), collection)
	})

	select {
	case <-ctx.Done():
		return nil, &FetchError{URL: collection.URL, Err: ctx.Err()}
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		shared := res.Val.(*types.FetchResult)
		result := *shared
		result.Collection = collection.Key
		result.Records = append([]types.Record(nil), shared.Records...)
		return &result, nil
	}
}

func (c *Client) fetch(ctx context.Context, collection types.Collection) (*types.FetchResult, error) {
	startTime := time.Now()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, collection.URL, nil)
	if err != nil {
		return nil, &FetchError{URL: collection.URL, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, &FetchError{URL: collection.URL, Err: err}
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	duration := time.Since(startTime).Milliseconds()
	if err != nil {
		return nil, &FetchError{
			URL:        collection.URL,
			Status:     resp.StatusCode,
			StatusText: resp.Status,
			Err:        fmt.Errorf("failed to read response body: %w", err),
		}
	}

	if !IsSuccessStatus(resp.StatusCode) {
		return nil, &FetchError{
			URL:        collection.URL,
			Status:     resp.StatusCode,
			StatusText: resp.Status,
			Err:        ErrUnexpectedStatus,
		}
	}

	records, err := filter.Decode(bodyBytes, collection.RecordsPath)
	if err != nil {
		return nil, &FetchError{
			URL:        collection.URL,
			Status:     resp.StatusCode,
			StatusText: resp.Status,
			Err:        fmt.Errorf("failed to decode records: %w", err),
		}
	}

	return &types.FetchResult{
		Collection:   collection.Key,
		URL:          collection.URL,
		Status:       resp.StatusCode,
		StatusText:   resp.Status,
		Records:      records,
		Duration:     duration,
		ResponseSize: len(bodyBytes),
	}, nil
}

// buildHTTPClient creates an HTTP client with optional TLS/mTLS and bearer token configuration
func buildHTTPClient(opts Options) (*http.Client, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()

	if tlsConfig := opts.TLS; tlsConfig != nil {
		tlsCfg := &tls.Config{
			InsecureSkipVerify: tlsConfig.InsecureSkipVerify,
		}

		// Load client certificate if provided (for mTLS)
		if tlsConfig.CertFile != "" && tlsConfig.KeyFile != "" {
			cert, err := tls.LoadX509KeyPair(tlsConfig.CertFile, tlsConfig.KeyFile)
			if err != nil {
				return nil, fmt.Errorf("failed to load client certificate: %w", err)
			}
			tlsCfg.Certificates = []tls.Certificate{cert}
		}

		// Load CA certificate if provided (for server verification)
		if tlsConfig.CAFile != "" {
			caCert, err := os.ReadFile(tlsConfig.CAFile)
			if err != nil {
				return nil, fmt.Errorf("failed to read CA certificate: %w", err)
			}
			caCertPool := x509.NewCertPool()
			if !caCertPool.AppendCertsFromPEM(caCert) {
				return nil, fmt.Errorf("failed to parse CA certificate")
			}
			tlsCfg.RootCAs = caCertPool
		}

		transport.TLSClientConfig = tlsCfg
	}

	var rt http.RoundTripper = transport
	if opts.Token != "" {
		rt = &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: opts.Token}),
			Base:   transport,
		}
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: rt,
	}, nil
}

// FormatDuration formats duration in milliseconds to human-readable string
func FormatDuration(ms int64) string {
	if ms < 1000 {
		return fmt.Sprintf("%dms", ms)
	}
	seconds := float64(ms) / 1000.0
	return fmt.Sprintf("%.2fs", seconds)
}

// FormatSize formats byte size to human-readable string
func FormatSize(bytes int) string {
	if bytes < 1024 {
		return fmt.Sprintf("%dB", bytes)
	}
	if bytes < 1024*1024 {
		return fmt.Sprintf("%.2fKB", float64(bytes)/1024.0)
	}
	return fmt.Sprintf("%.2fMB", float64(bytes)/(1024.0*1024.0))
}

// IsSuccessStatus returns true if status code is 2xx
func IsSuccessStatus(status int) bool {
	return status >= 200 && status < 300
}
