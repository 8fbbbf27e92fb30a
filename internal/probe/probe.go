package probe

import (
	"context"
	"crypto/tls"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
	"syscall"
	"time"
)

// ErrEmptyTarget is returned when the caller supplied no URL. It is a
// caller mistake, reported as a client error, never probed.
var ErrEmptyTarget = errors.New("target url is required")

// maxBodyBytes bounds how much of the response is buffered for
// challenge detection.
const maxBodyBytes = 256 * 1024

// Result classifies one probe attempt. Never persisted.
type Result struct {
	Reachable         bool
	StatusCode        int
	ChallengeDetected bool
	ErrKind           string // "" on a completed response
}

// Client probes arbitrary remote URLs on behalf of callers. One
// outbound request per call, no retries, no caching of results.
type Client struct {
	timeout  time.Duration
	detector Detector
}

// NewClient creates a probe client with the given whole-request
// timeout and the default challenge detector.
func NewClient(timeout time.Duration) *Client {
	return &Client{
		timeout:  timeout,
		detector: NewMarkerDetector(),
	}
}

// NewClientWithDetector creates a probe client with a custom detector.
func NewClientWithDetector(timeout time.Duration, d Detector) *Client {
	return &Client{timeout: timeout, detector: d}
}

// Check probes target once. The timeout covers the whole request; on
// expiry the in-flight request is cancelled and the result carries
// ErrKind "timeout". Transport failures come back classified in the
// Result, not as an error: probing a dead target is an expected
// outcome. The only error case is an empty target.
func (c *Client) Check(ctx context.Context, target string) (Result, error) {
	target = strings.TrimSpace(target)
	if target == "" {
		return Result{}, ErrEmptyTarget
	}

	// Courtesy scheme handling, not URL validation: bare hosts get a
	// plain-http scheme, anything else malformed is left to fail at
	// the transport layer.
	if !strings.Contains(target, "://") {
		target = "http://" + target
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, http.NoBody)
	if err != nil {
		return Result{Reachable: false, ErrKind: classify(err)}, nil
	}

	client := &http.Client{
		Timeout: c.timeout,
		Transport: &http.Transport{
			TLSHandshakeTimeout: c.timeout,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
			DisableKeepAlives: true,
		},
	}

	resp, err := client.Do(req)
	if err != nil {
		return Result{Reachable: false, ErrKind: classify(err)}, nil
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return Result{Reachable: false, StatusCode: resp.StatusCode, ErrKind: classify(err)}, nil
	}

	challenged := c.detector.Detect(resp.StatusCode, body)
	return Result{
		Reachable:         resp.StatusCode == http.StatusOK && !challenged,
		StatusCode:        resp.StatusCode,
		ChallengeDetected: challenged,
	}, nil
}

// classify maps a transport error to a stable, lowercased kind.
func classify(err error) string {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return "timeout"
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return "dns"
	}

	if errors.Is(err, syscall.ECONNREFUSED) {
		return "connection refused"
	}
	if errors.Is(err, syscall.ECONNRESET) {
		return "connection reset"
	}

	// Unwrap the url.Error wrapper so callers see the transport
	// reason, not the full request context.
	var urlErr interface{ Unwrap() error }
	if errors.As(err, &urlErr) {
		if inner := urlErr.Unwrap(); inner != nil {
			return strings.ToLower(inner.Error())
		}
	}
	return strings.ToLower(err.Error())
}
