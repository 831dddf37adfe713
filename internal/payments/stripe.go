package payments

import (
	"context"
	"errors"
	"os"

	stripe "github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/paymentintent"

	"github.com/example/cabshare/internal/pricing"
)

// ErrMissingAPIKey means the Stripe credential was not configured.
var ErrMissingAPIKey = errors.New("payments: missing stripe api key")

// StripeClient wraps stripe-go for seat-fare hold/capture/cancel flows. A
// hold places a manual-capture PaymentIntent for the booked seats; the ride
// owner captures it once the trip happens or cancels to release the funds.
type StripeClient struct{}

// NewStripeClient initializes the stripe client from the STRIPE_API_KEY env
// var.
func NewStripeClient() (*StripeClient, error) {
	key := os.Getenv("STRIPE_API_KEY")
	if key == "" {
		return nil, ErrMissingAPIKey
	}
	stripe.Key = key
	return &StripeClient{}, nil
}

// HoldSeatFare creates a manual-capture PaymentIntent for seats at the
// estimated per-seat fare. The amount is converted to the currency's minor
// unit. Returns the PaymentIntent ID.
func (s *StripeClient) HoldSeatFare(ctx context.Context, fare pricing.Fare, seats int, currency, customerID string) (string, error) {
	if seats < 1 {
		return "", pricing.ErrInvalidSeats
	}
	amount := int64(fare.PerSeat * float64(seats) * 100)
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amount),
		Currency: stripe.String(currency),
	}
	if customerID != "" {
		params.Customer = stripe.String(customerID)
	}
	params.CaptureMethod = stripe.String(string(stripe.PaymentIntentCaptureMethodManual))
	pi, err := paymentintent.New(params)
	if err != nil {
		return "", err
	}
	return pi.ID, nil
}

// Capture finalizes a previously held seat fare.
func (s *StripeClient) Capture(ctx context.Context, paymentIntentID string) error {
	_, err := paymentintent.Capture(paymentIntentID, nil)
	return err
}

// Cancel releases a held seat fare.
func (s *StripeClient) Cancel(ctx context.Context, paymentIntentID string) error {
	_, err := paymentintent.Cancel(paymentIntentID, nil)
	return err
}
