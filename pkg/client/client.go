// Package client submits readings to the prediction relay and interprets the reply.
//
// Failures are reported as one of a small set of kinds: a transport failure
// (ErrNetwork), a body that is not JSON (ErrNonJSONResponse), a non-2xx or
// error-bearing reply (*RequestError), or a reply without a usable score
// (ErrInvalidResult). Message maps each kind to the text shown to users.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/HatiCode/fwirelay/pkg/fwi"
	"github.com/HatiCode/fwirelay/pkg/relay"
)

var (
	// ErrNetwork is returned when the relay could not be reached or did not answer.
	ErrNetwork = errors.New("network or server error")
	// ErrNonJSONResponse is returned when the reply body is not valid JSON.
	ErrNonJSONResponse = errors.New("received non-JSON response from server")
	// ErrInvalidResult is returned when a successful reply carries no finite score.
	ErrInvalidResult = errors.New("prediction result is not a valid number")
	// ErrResponseTooLarge is returned when the reply body exceeds the read limit.
	ErrResponseTooLarge = errors.New("response from server too large")
)

// RequestError is a reply with a non-2xx status or an error field.
type RequestError struct {
	Status int
	// Message is the reply's error field, or a generic text naming the status.
	Message string
}

func (e *RequestError) Error() string {
	return e.Message
}

// DefaultResultPaths are the gjson paths tried, in order, to find the score.
var DefaultResultPaths = []string{"result", "prediction"}

const maxResponseBytes = 1 << 20

// Client posts readings to a relay endpoint.
type Client struct {
	endpoint    string
	http        *http.Client
	resultPaths []string
	logger      *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		if c != nil {
			cl.http = c
		}
	}
}

// WithResultPaths replaces DefaultResultPaths. Paths use gjson syntax.
func WithResultPaths(paths ...string) Option {
	return func(cl *Client) {
		if len(paths) > 0 {
			cl.resultPaths = paths
		}
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(l *slog.Logger) Option {
	return func(cl *Client) {
		if l != nil {
			cl.logger = l
		}
	}
}

// New creates a client for the relay at baseURL (scheme and host, no path).
func New(baseURL string, opts ...Option) (*Client, error) {
	endpoint, err := relay.Endpoint(baseURL)
	if err != nil {
		return nil, fmt.Errorf("relay url: %w", err)
	}

	c := &Client{
		endpoint:    endpoint,
		http:        &http.Client{Timeout: 90 * time.Second},
		resultPaths: DefaultResultPaths,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Predict validates in, submits it and returns the predicted FWI score.
// An invalid input returns a *fwi.ValidationError without any network call.
func (c *Client) Predict(ctx context.Context, in fwi.Input) (float64, error) {
	if err := in.Validate(); err != nil {
		return 0, err
	}
	payload, err := in.Payload()
	if err != nil {
		return 0, err
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return 0, fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrNetwork, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		return 0, fmt.Errorf("%w: read response: %w", ErrNetwork, err)
	}
	if len(data) > maxResponseBytes {
		return 0, fmt.Errorf("%w: limit is %d bytes", ErrResponseTooLarge, maxResponseBytes)
	}
	c.logger.Debug("relay responded", "status", resp.StatusCode, "bytes", len(data))

	return c.interpret(resp.StatusCode, data)
}

// interpret classifies a reply. Checks run in a fixed order: JSON syntax, then
// status and error field, then the score.
func (c *Client) interpret(status int, data []byte) (float64, error) {
	text := string(data)
	if len(data) == 0 {
		text = "{}"
	}
	if !gjson.Valid(text) {
		return 0, ErrNonJSONResponse
	}

	msg := gjson.Get(text, "error")
	if status < 200 || status > 299 || truthy(msg) {
		m := ""
		if truthy(msg) {
			m = msg.String()
		}
		if m == "" {
			m = fmt.Sprintf("Request failed (%d)", status)
		}
		return 0, &RequestError{Status: status, Message: m}
	}

	for _, path := range c.resultPaths {
		res := gjson.Get(text, path)
		if !res.Exists() {
			continue
		}
		v, ok := number(res)
		if !ok {
			return 0, ErrInvalidResult
		}
		return v, nil
	}
	return 0, ErrInvalidResult
}

func truthy(r gjson.Result) bool {
	switch r.Type {
	case gjson.Null, gjson.False:
		return false
	case gjson.String:
		return r.Str != ""
	case gjson.Number:
		return r.Num != 0
	case gjson.True, gjson.JSON:
		return true
	}
	return false
}

func number(r gjson.Result) (float64, bool) {
	var v float64
	switch r.Type {
	case gjson.Number:
		v = r.Num
	case gjson.String:
		f, err := strconv.ParseFloat(strings.TrimSpace(r.Str), 64)
		if err != nil {
			return 0, false
		}
		v = f
	default:
		return 0, false
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// Message returns the text shown to a user for err.
func Message(err error) string {
	var reqErr *RequestError
	var valErr *fwi.ValidationError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &valErr):
		return valErr.Error()
	case errors.As(err, &reqErr):
		return reqErr.Message
	case errors.Is(err, ErrNonJSONResponse):
		return "Received non-JSON response from server."
	case errors.Is(err, ErrInvalidResult):
		return "Prediction result is not a valid number."
	case errors.Is(err, ErrResponseTooLarge):
		return "Response from server too large."
	default:
		return "Network or server error."
	}
}
