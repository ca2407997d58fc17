// Package payment issues the redirect target a freshly created booking
// sends the customer to.  With a Stripe key configured it creates a
// Checkout session; without one it falls back to an in-app path that
// references the booking directly and bypasses any payment gate.  The
// fallback exists only for environments without a payment provider.
package payment

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"
)

// Provider creates payment sessions for bookings.
type Provider struct {
	frontendURL string
	currency    string
	enabled     bool
}

// New configures the Stripe client (package-global key, the way the
// stripe-go bindings work) and returns a Provider.  An empty secretKey
// disables Stripe and selects the fallback redirect.
func New(secretKey, frontendURL, currency string) *Provider {
	if secretKey != "" {
		stripe.Key = secretKey
	}
	return &Provider{
		frontendURL: frontendURL,
		currency:    currency,
		enabled:     secretKey != "",
	}
}

// Enabled reports whether a payment provider is configured.
func (p *Provider) Enabled() bool { return p.enabled }

// CheckoutURL returns the redirect target for a booking.  amount is in
// currency units (the show price times the seat count); Stripe wants the
// smallest denomination, so it is multiplied by 100.  When Stripe is not
// configured the returned URL is a relative SPA path with no payment
// step.
func (p *Provider) CheckoutURL(ctx context.Context, bookingID, showID uint64, movieTitle string, seatCount int, amount float64) (string, error) {
	if !p.enabled {
		return fmt.Sprintf("/my-bookings?bookingId=%d", bookingID), nil
	}
	bid := fmt.Sprintf("%d", bookingID)
	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency: stripe.String(p.currency),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(fmt.Sprintf("%s - %d seats", movieTitle, seatCount)),
				},
				UnitAmount: stripe.Int64(int64(amount * 100)),
			},
			Quantity: stripe.Int64(1),
		}},
		SuccessURL: stripe.String(p.frontendURL + "/my-bookings?session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:  stripe.String(fmt.Sprintf("%s/movies/%d?cancelled=true", p.frontendURL, showID)),
	}
	params.AddMetadata("bookingId", bid)
	params.Context = ctx
	s, err := session.New(params)
	if err != nil {
		return "", fmt.Errorf("payment: create checkout session: %w", err)
	}
	return s.URL, nil
}
