// Package booking is the HTTP client for the appointment booking service.
package booking

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hammamikhairi/ottokiosk/internal/domain"
	"github.com/hammamikhairi/ottokiosk/internal/logger"
)

// Compile-time interface check.
var _ domain.Booker = (*Client)(nil)

// Messages used when the service gives nothing usable back.
const (
	// MessageUnparsable replaces an error body that is not JSON.
	MessageUnparsable = "Unknown error"
	// MessageMissing replaces an error body without a message.
	MessageMissing = "Invalid CR Number. Please contact helpdesk."
)

// Error is a failure reported by the booking service itself.
type Error struct {
	StatusCode int
	Code       string // e.g. "EXPIRED_14D", may be empty
	Message    string
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("booking rejected (%d %s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("booking rejected (%d): %s", e.StatusCode, e.Message)
}

// Is makes every service-reported failure match domain.ErrBooking.
func (e *Error) Is(target error) bool { return target == domain.ErrBooking }

// UserMessage returns the message the service meant for the user.
func (e *Error) UserMessage() string { return e.Message }

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.http = hc }
}

// WithPath overrides the booking resource path.
func WithPath(path string) ClientOption {
	return func(c *Client) { c.path = path }
}

// Client posts identifiers to the booking endpoint.
type Client struct {
	baseURL string
	path    string
	http    *http.Client
	log     *logger.Logger
}

// NewClient creates a booking client for the service at baseURL.
// The client has no request timeout of its own; callers bound each call
// through the context.
func NewClient(baseURL string, log *logger.Logger, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		path:    "/book_appointment",
		http:    &http.Client{},
		log:     log,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Book submits the identifier as the cr_number form field. A 2xx reply is
// decoded into an Appointment; anything else becomes an *Error. Transport
// failures are returned wrapped with domain.ErrBooking.
func (c *Client) Book(ctx context.Context, identifier string) (*domain.Appointment, error) {
	identifier = domain.NormalizeIdentifier(identifier)
	if identifier == "" {
		return nil, domain.ErrEmptyIdentifier
	}

	form := url.Values{}
	form.Set(FieldIdentifier, identifier)

	endpoint := c.baseURL + c.path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("booking: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	c.log.Debug("booking: POST %s", endpoint)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("booking: request failed: %w: %w", domain.ErrBooking, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("booking: read response: %w: %w", domain.ErrBooking, err)
	}
	c.log.Debug("booking: %s in %s (%d bytes)", resp.Status, time.Since(start).Round(time.Millisecond), len(body))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, decodeError(resp.StatusCode, body)
	}

	var ok successBody
	if err := json.Unmarshal(body, &ok); err != nil {
		return nil, fmt.Errorf("booking: decode response: %w: %w", domain.ErrBooking, err)
	}
	return ok.appointment(), nil
}

func decodeError(status int, body []byte) error {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		return &Error{StatusCode: status, Message: MessageUnparsable}
	}
	msg := strings.TrimSpace(eb.Message)
	if msg == "" {
		msg = MessageMissing
	}
	return &Error{StatusCode: status, Code: eb.Code, Message: msg}
}
