package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	logrus "github.com/sirupsen/logrus"

	"landscape_dispatch/internal/apperr"
	"landscape_dispatch/internal/models"
)

// OrdersClient talks to the order/payment service over JSON-over-HTTP.
// Transient failures (network errors, 5xx) are retried with a doubling
// delay; once attempts are exhausted the error wraps
// apperr.UpstreamUnavailable so callers surface it as a 502.
type OrdersClient struct {
	baseURL     string
	httpClient  *http.Client
	maxAttempts int
	baseDelay   time.Duration
	sleep       func(time.Duration)
}

func NewOrdersClient(baseURL string, maxAttempts int, baseDelay time.Duration) *OrdersClient {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &OrdersClient{
		baseURL:     baseURL,
		httpClient:  &http.Client{Timeout: 10 * time.Second},
		maxAttempts: maxAttempts,
		baseDelay:   baseDelay,
		sleep:       time.Sleep,
	}
}

// ListPaidUnassigned fetches paid orders the order service still considers
// unassigned. Orders with an active local assignment are filtered out by the
// assignment engine, not here.
func (c *OrdersClient) ListPaidUnassigned(ctx context.Context) ([]models.Order, error) {
	q := url.Values{}
	q.Set("paymentStatus", "paid")
	q.Set("unassigned", "true")
	return c.listOrders(ctx, q)
}

// ListUnpaid fetches orders still awaiting payment (display only, never assignable).
func (c *OrdersClient) ListUnpaid(ctx context.Context) ([]models.Order, error) {
	q := url.Values{}
	q.Set("paymentStatus", "unpaid")
	return c.listOrders(ctx, q)
}

// GetOrder fetches a single order by id. Returns apperr.NotFound on 404.
func (c *OrdersClient) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	endpoint := c.baseURL + "/orders/" + url.PathEscape(id)
	if err := c.getJSON(ctx, endpoint, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (c *OrdersClient) listOrders(ctx context.Context, q url.Values) ([]models.Order, error) {
	var orders []models.Order
	endpoint := c.baseURL + "/orders?" + q.Encode()
	if err := c.getJSON(ctx, endpoint, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (c *OrdersClient) getJSON(ctx context.Context, endpoint string, out interface{}) error {
	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		err := c.doOnce(ctx, endpoint, out)
		if err == nil {
			return nil
		}
		lastErr = err
		// 4xx answers are definitive, do not retry them
		if !retryable(err) || ctx.Err() != nil || attempt == c.maxAttempts {
			break
		}
		delay := c.baseDelay << (attempt - 1)
		logrus.WithError(err).WithFields(logrus.Fields{
			"endpoint": endpoint,
			"attempt":  attempt,
			"delay":    delay,
		}).Warn("order service request failed, retrying")
		c.sleep(delay)
	}
	return lastErr
}

// transientError marks a failure worth retrying.
type transientError struct{ err error }

func (e *transientError) Error() string { return e.err.Error() }
func (e *transientError) Unwrap() error { return apperr.UpstreamUnavailable }

func retryable(err error) bool {
	_, ok := err.(*transientError)
	return ok
}

func (c *OrdersClient) doOnce(ctx context.Context, endpoint string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("order gateway: build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &transientError{fmt.Errorf("order gateway: %w", err)}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("order gateway: %w", apperr.NotFound)
	case resp.StatusCode >= 500:
		return &transientError{fmt.Errorf("order gateway: upstream returned %d", resp.StatusCode)}
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("order gateway: unexpected status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("order gateway: decode response: %w", err)
	}
	return nil
}
