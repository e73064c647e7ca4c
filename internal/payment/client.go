package payment

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/roomhive/service-reservation/internal/metrics"
)

// Client calls the external payment gateway to execute refunds. Calls run
// through a circuit breaker; the booking outcome never depends on them.
type Client struct {
	http    *resty.Client
	breaker *gobreaker.CircuitBreaker
	logger  *zap.Logger
}

type refundRequest struct {
	ReservationID string `json:"reservation_id"`
	AmountCents   int64  `json:"amount_cents"`
	Currency      string `json:"currency"`
}

// NewClient creates a payment gateway client for the given base URL.
func NewClient(baseURL string, logger *zap.Logger) *Client {
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(5 * time.Second).
		SetRetryCount(0) // retries are the breaker's problem, not resty's

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "payment-gateway",
		MaxRequests: 3,
		Interval:    15 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			state := float64(0)
			switch to {
			case gobreaker.StateOpen:
				state = 1
			case gobreaker.StateHalfOpen:
				state = 2
			}
			metrics.CircuitBreakerState.WithLabelValues(name).Set(state)
			logger.Info("circuit breaker state changed",
				zap.String("circuit", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	return &Client{http: httpClient, breaker: breaker, logger: logger}
}

// ProcessRefund submits a refund for the reservation. Returns an error when
// the gateway rejects the call or the breaker is open.
func (c *Client) ProcessRefund(ctx context.Context, reservationID uuid.UUID, amountCents int64, currency string) error {
	_, err := c.breaker.Execute(func() (interface{}, error) {
		resp, err := c.http.R().
			SetContext(ctx).
			SetBody(refundRequest{
				ReservationID: reservationID.String(),
				AmountCents:   amountCents,
				Currency:      currency,
			}).
			Post("/api/v1/refunds")
		if err != nil {
			return nil, err
		}
		if resp.IsError() {
			return nil, fmt.Errorf("payment gateway returned %d", resp.StatusCode())
		}
		return nil, nil
	})
	if err == gobreaker.ErrOpenState {
		return fmt.Errorf("payment gateway circuit open: %w", err)
	}
	return err
}
