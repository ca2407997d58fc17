// Package queue defines message payloads exchanged over the message broker.
package queue

// BookingCreatedEvent is published when a booking is successfully created
// and its seats are committed to the ledger.  It contains enough
// information for downstream consumers to log, notify, or trigger
// analytics without querying the primary database.  PaymentPending is
// true when the customer was redirected to a payment provider and the
// paid flag has not flipped yet.
type BookingCreatedEvent struct {
	BookingID      uint64   `json:"booking_id"`
	UserID         uint64   `json:"user_id"`
	ShowID         uint64   `json:"show_id"`
	MovieTitle     string   `json:"movie_title"`
	ShowDateTime   string   `json:"show_datetime"`
	Seats          []string `json:"seats"`
	Amount         float64  `json:"amount"`
	PaymentPending bool     `json:"payment_pending"`
	CreatedAt      string   `json:"created_at"`
}
