// Package hycu provides a client for the HYCU REST API, the error taxonomy
// for API failures, and name-to-identifier resolution for managed entities.
package hycu

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/sirupsen/logrus"
)

const (
	// DefaultPort is the controller's REST API port.
	DefaultPort = 8443
	// DefaultTimeout is the per-request timeout.
	DefaultTimeout = 100 * time.Second

	apiPrefix = "/rest/v1.0/"
)

// ClientConfig configures a Client.
type ClientConfig struct {
	Host    string
	Token   string
	Port    int
	Timeout time.Duration

	// BaseURL overrides the URL derived from Host and Port.
	BaseURL string

	// WrapTransport, when set, decorates the pooled transport (request
	// tracing in verbose mode).
	WrapTransport func(http.RoundTripper) http.RoundTripper
}

// Client performs authenticated GET requests against one controller.
type Client struct {
	baseURL string
	token   string
	timeout time.Duration
	http    *http.Client
	logger  *logrus.Logger
}

// NewClient creates a new API client.
func NewClient(cfg ClientConfig, logger *logrus.Logger) *Client {
	if logger == nil {
		logger = logrus.New()
		logger.SetLevel(logrus.WarnLevel)
	}
	if cfg.Port == 0 {
		cfg.Port = DefaultPort
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	base := cfg.BaseURL
	if base == "" {
		base = "https://" + net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	}
	base = strings.TrimRight(base, "/") + apiPrefix

	// Appliances ship with self-signed certificates.
	transport := cleanhttp.DefaultPooledTransport()
	transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec

	var rt http.RoundTripper = transport
	if cfg.WrapTransport != nil {
		rt = cfg.WrapTransport(rt)
	}

	return &Client{
		baseURL: base,
		token:   cfg.Token,
		timeout: cfg.Timeout,
		http:    &http.Client{Transport: rt},
		logger:  logger,
	}
}

// BaseURL returns the API root, ending in "/rest/v1.0/".
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Get issues one GET request for path (relative to the API root) and decodes
// the JSON body into out. There are no retries.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	endpoint := c.baseURL + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return &RequestError{Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	log := c.logger.WithField("url", endpoint)
	log.Debug("API request")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		log.WithField("error", err).Debug("API request failed")
		return c.transportError(ctx, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return c.transportError(ctx, err)
	}

	log.WithFields(logrus.Fields{
		"status":  resp.StatusCode,
		"elapsed": time.Since(start),
	}).Debug("API response")

	if err := statusError(resp.StatusCode, body); err != nil {
		return err
	}

	if err := json.Unmarshal(body, out); err != nil {
		return &ParseError{Err: err}
	}
	return nil
}

func statusError(status int, body []byte) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return &AuthError{Status: status}
	case status == http.StatusNotFound:
		return &NotFoundError{}
	case status >= 500:
		return &ServerError{Status: status}
	default:
		return &HTTPError{Status: status, Body: strings.TrimSpace(string(body))}
	}
}

func (c *Client) transportError(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return &TimeoutError{Timeout: c.timeout}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &TimeoutError{Timeout: c.timeout}
	}

	var dnsErr *net.DNSError
	var opErr *net.OpError
	if errors.As(err, &dnsErr) || (errors.As(err, &opErr) && opErr.Op == "dial") {
		return &ConnectionError{Err: err}
	}
	return &RequestError{Err: err}
}

func listQuery(pageSize int) url.Values {
	q := url.Values{}
	q.Set("pageSize", strconv.Itoa(pageSize))
	q.Set("pageNumber", "1")
	return q
}

func epochMillis(t time.Time) string {
	return fmt.Sprintf("%d", t.UnixMilli())
}
