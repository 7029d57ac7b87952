package satellite

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/goccy/go-json"
	"go.uber.org/zap"
	"k8s.io/utils/clock"

	v1 "github.com/renzon/robottelo/api/v1"
	srvErrors "github.com/renzon/robottelo/pkg/errors"
	"github.com/renzon/robottelo/pkg/poll"
)

const (
	defaultRequestTimeout = 60 * time.Second
	allPerPage            = 1000
)

var (
	compositionMessage = regexp.MustCompile(`(?i)composition rule violation|non-composite|composite content view|puppet repositor`)
	duplicateMessage   = regexp.MustCompile(`(?i)duplicate|already (promoted|been added|added)`)
	duplicateReference = regexp.MustCompile(`^duplicate (.+?) reference(?:: (.*))?$`)
)

// StatusError is an HTTP failure outside the error taxonomy.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status %d: %s", e.Method, e.Path, e.StatusCode, e.Message)
}

// Client talks to the Foreman, Katello and task APIs of one server.
type Client struct {
	baseURL    string
	httpClient *http.Client
	username   string
	password   string

	pollTimeout  time.Duration
	pollInterval time.Duration
	newBackOff   func() backoff.BackOff
	clock        clock.Clock
	observers    []func(Observation)
}

type ClientOption func(c *Client)

func WithBasicAuth(username, password string) ClientOption {
	return func(c *Client) {
		c.username = username
		c.password = password
	}
}

func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithInsecureTLS skips server certificate verification.
func WithInsecureTLS() ClientOption {
	return func(c *Client) {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec
		c.httpClient.Transport = transport
	}
}

func WithRequestTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithPollDefaults sets the budget of every Wait call.
func WithPollDefaults(timeout, interval time.Duration) ClientOption {
	return func(c *Client) {
		c.pollTimeout = timeout
		c.pollInterval = interval
	}
}

// WithPollBackOff replaces the constant poll interval. The factory is called once per wait.
func WithPollBackOff(factory func() backoff.BackOff) ClientOption {
	return func(c *Client) {
		c.newBackOff = factory
	}
}

func WithClock(clk clock.Clock) ClientOption {
	return func(c *Client) {
		c.clock = clk
	}
}

// WithObserver registers fn to receive the outcome of every Wait call.
func WithObserver(fn func(Observation)) ClientOption {
	return func(c *Client) {
		c.observers = append(c.observers, fn)
	}
}

func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		httpClient:   &http.Client{Timeout: defaultRequestTimeout},
		pollTimeout:  poll.DefaultTimeout,
		pollInterval: poll.DefaultInterval,
		clock:        clock.RealClock{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// As returns a client sharing this one's settings but authenticating as another user.
func (c *Client) As(username, password string) *Client {
	clone := *c
	clone.username, clone.password = username, password
	clone.observers = append([]func(Observation){}, c.observers...)
	return &clone
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, nil, body, out)
}

func (c *Client) put(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPut, path, nil, body, out)
}

func (c *Client) delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil, nil)
}

// do performs one request. Error responses are classified into the error taxonomy;
// a *string out receives the raw body.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding %s %s body: %w", method, path, err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("building %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.username != "" {
		req.SetBasicAuth(c.username, c.password)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading %s %s response: %w", method, path, err)
	}
	zap.S().Named("satellite").Debugw("request", "method", method, "path", path, "status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode >= http.StatusBadRequest {
		return classify(method, path, resp.StatusCode, raw)
	}

	switch o := out.(type) {
	case nil:
		return nil
	case *string:
		*o = string(raw)
		return nil
	default:
		if len(raw) == 0 {
			return nil
		}
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("decoding %s %s response: %w", method, path, err)
		}
		return nil
	}
}

// classify maps an error response onto the error taxonomy: status code first, then the
// display message for the 422 family.
func classify(method, path string, status int, raw []byte) error {
	var body v1.ErrorResponse
	msg := strings.TrimSpace(string(raw))
	if err := json.Unmarshal(raw, &body); err == nil && body.DisplayMessage != "" {
		msg = body.DisplayMessage
	}

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return srvErrors.NewUnauthorizedError(msg)
	case status == http.StatusNotFound:
		return srvErrors.NewResourceNotFoundError(path, "")
	case status == http.StatusConflict:
		return duplicateError(msg)
	case status == http.StatusUnprocessableEntity:
		switch {
		case compositionMessage.MatchString(msg):
			return srvErrors.NewCompositionRuleViolationError(strings.TrimPrefix(msg, "composition rule violation: "))
		case duplicateMessage.MatchString(msg):
			return duplicateError(msg)
		case len(body.Errors) > 0:
			return srvErrors.NewValidationError(body.Errors...)
		default:
			return srvErrors.NewValidationError(strings.TrimPrefix(msg, "validation failed: "))
		}
	default:
		return &StatusError{Method: method, Path: path, StatusCode: status, Message: msg}
	}
}

func duplicateError(msg string) error {
	if m := duplicateReference.FindStringSubmatch(msg); m != nil {
		if m[2] == "" {
			return srvErrors.NewDuplicateReferenceError(m[1])
		}
		return srvErrors.NewDuplicateReferenceError(m[1], strings.Split(m[2], ", ")...)
	}
	return srvErrors.NewDuplicateReferenceError("membership", msg)
}

func searchQuery(search string) url.Values {
	q := url.Values{"per_page": {fmt.Sprint(allPerPage)}}
	if search != "" {
		q.Set("search", search)
	}
	return q
}
