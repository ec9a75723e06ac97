package upstream

import (
	"bytes"
	"context"
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

	"courtdash/internal/domain"
	"courtdash/internal/observability/metrics"
	"courtdash/internal/pkg/logging"

	"github.com/sirupsen/logrus"
)

const defaultUserAgent = "courtdash/1.0"

// Credentials carry the owner's bearer token for one call chain.
type Credentials struct {
	Token string
}

func (c Credentials) Empty() bool { return strings.TrimSpace(c.Token) == "" }

// Config controls how the backend client behaves.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
	Backoff    time.Duration
	HTTPClient *http.Client
	Metrics    *metrics.Metrics
	UserAgent  string
}

// Client speaks to the booking backend's REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	maxRetries int
	backoff    time.Duration
	metrics    *metrics.Metrics
	userAgent  string
}

func New(cfg Config) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errors.New("upstream: base URL is required")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("upstream: invalid base URL: %w", err)
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}
	backoff := cfg.Backoff
	if backoff <= 0 {
		backoff = 250 * time.Millisecond
	}
	userAgent := strings.TrimSpace(cfg.UserAgent)
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		maxRetries: maxRetries,
		backoff:    backoff,
		metrics:    cfg.Metrics,
		userAgent:  userAgent,
	}, nil
}

// ListBookings returns every booking visible to the owner, across venues.
func (c *Client) ListBookings(ctx context.Context, cred Credentials) ([]domain.Booking, error) {
	var out []domain.Booking
	if err := c.invoke(ctx, cred, "list_bookings", http.MethodGet, "/bookings", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) UpdateBookingStatus(ctx context.Context, cred Credentials, bookingID string, status domain.BookingStatus) (*domain.Booking, error) {
	body := map[string]string{"status": string(status)}
	var out domain.Booking
	path := "/bookings/" + url.PathEscape(bookingID) + "/status"
	if err := c.invoke(ctx, cred, "update_booking_status", http.MethodPatch, path, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdatePaymentStatus(ctx context.Context, cred Credentials, bookingID string, status domain.PaymentStatus) (*domain.Booking, error) {
	body := map[string]string{"paymentStatus": string(status)}
	var out domain.Booking
	path := "/bookings/" + url.PathEscape(bookingID) + "/payment-status"
	if err := c.invoke(ctx, cred, "update_payment_status", http.MethodPatch, path, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetCourt(ctx context.Context, cred Credentials, courtID string) (*domain.Court, error) {
	var out domain.Court
	if err := c.invoke(ctx, cred, "get_court", http.MethodGet, "/courts/"+url.PathEscape(courtID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListCourts(ctx context.Context, cred Credentials, venueID string) ([]domain.Court, error) {
	var out []domain.Court
	path := "/venues/" + url.PathEscape(venueID) + "/courts"
	if err := c.invoke(ctx, cred, "list_courts", http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) UpdateCourtPricing(ctx context.Context, cred Credentials, courtID string, update domain.CourtPricingUpdate) (*domain.Court, error) {
	var out domain.Court
	path := "/courts/" + url.PathEscape(courtID) + "/pricing"
	if err := c.invoke(ctx, cred, "update_court_pricing", http.MethodPut, path, update, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetVenue(ctx context.Context, cred Credentials, venueID string) (*domain.Venue, error) {
	var out domain.Venue
	if err := c.invoke(ctx, cred, "get_venue", http.MethodGet, "/venues/"+url.PathEscape(venueID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListEquipment(ctx context.Context, cred Credentials, venueID string) ([]domain.Equipment, error) {
	var out []domain.Equipment
	path := "/venues/" + url.PathEscape(venueID) + "/equipment"
	if err := c.invoke(ctx, cred, "list_equipment", http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) invoke(ctx context.Context, cred Credentials, op, method, path string, in, out any) error {
	if cred.Empty() {
		return ErrUnauthorized
	}

	var body []byte
	if in != nil {
		var err error
		body, err = json.Marshal(in)
		if err != nil {
			return fmt.Errorf("upstream: marshal %s body: %w", op, err)
		}
	}

	// Only reads are retried; a repeated PATCH/PUT could apply twice.
	retries := 0
	if method == http.MethodGet {
		retries = c.maxRetries
	}

	fullURL := c.baseURL + "/" + strings.TrimLeft(path, "/")
	var lastErr error
	for attempt := 0; attempt <= retries; attempt++ {
		started := time.Now()
		data, status, err := c.do(ctx, cred, method, fullURL, body)
		c.observe(op, status, err, time.Since(started))

		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastErr = fmt.Errorf("upstream: %s: %w", op, err)
			if attempt == retries || !shouldRetry(err) {
				return lastErr
			}
			c.logRetry(ctx, op, attempt, status, err)
			if sleepErr := c.sleep(ctx, attempt); sleepErr != nil {
				return sleepErr
			}
			continue
		}

		if status >= 200 && status < 300 {
			if out == nil {
				return nil
			}
			if err := decodeBody(data, out); err != nil {
				return fmt.Errorf("upstream: decode %s response: %w", op, err)
			}
			return nil
		}

		apiErr := decodeAPIError(status, data)
		if attempt < retries && apiErr.Transient() {
			lastErr = apiErr
			c.logRetry(ctx, op, attempt, status, apiErr)
			if sleepErr := c.sleep(ctx, attempt); sleepErr != nil {
				return sleepErr
			}
			continue
		}
		return apiErr
	}
	if lastErr != nil {
		return lastErr
	}
	return errors.New("upstream: request failed without response")
}

func (c *Client) do(ctx context.Context, cred Credentials, method, fullURL string, body []byte) ([]byte, int, error) {
	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, fullURL, bodyReader)
	if err != nil {
		return nil, 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+cred.Token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read response: %w", err)
	}
	return data, resp.StatusCode, nil
}

// decodeBody accepts both a bare payload and a {"data": ...} envelope.
func decodeBody(data []byte, out any) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil
	}
	if trimmed[0] == '{' {
		var envelope map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &envelope); err == nil {
			if inner, ok := envelope["data"]; ok {
				if _, hasSuccess := envelope["success"]; hasSuccess || len(envelope) == 1 {
					return json.Unmarshal(inner, out)
				}
			}
		}
	}
	return json.Unmarshal(trimmed, out)
}

func (c *Client) sleep(ctx context.Context, attempt int) error {
	delay := c.backoff * time.Duration(1<<attempt)
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (c *Client) observe(op string, status int, err error, elapsed time.Duration) {
	label := strconv.Itoa(status)
	if err != nil && status == 0 {
		label = "error"
	}
	c.metrics.ObserveUpstream(op, label, elapsed.Seconds())
}

func (c *Client) logRetry(ctx context.Context, op string, attempt, status int, err error) {
	logging.FromContext(ctx).WithFields(logrus.Fields{
		"operation": op,
		"attempt":   attempt + 1,
		"status":    status,
		"error":     err,
	}).Warn("upstream retry")
}

func shouldRetry(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return !errors.Is(err, context.Canceled)
}
