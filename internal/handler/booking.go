package handler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/quickshow/movie-ticket-booking/internal/model"
	"github.com/quickshow/movie-ticket-booking/internal/payment"
	"github.com/quickshow/movie-ticket-booking/internal/queue"
	"github.com/quickshow/movie-ticket-booking/internal/repository"
	"github.com/quickshow/movie-ticket-booking/internal/service/queue_publisher"
)

// BookingHandler bundles dependencies for booking endpoints.  Creating a
// booking spans three repositories inside one transaction: the show lookup,
// the booking row and the seat-ledger rows.  The ledger's composite primary
// key guarantees that two concurrent requests can never both take the same
// seat even if both pass the availability check.
type BookingHandler struct {
	Shows    *repository.ShowRepo
	Bookings *repository.BookingRepo
	Ledger   *repository.SeatLedgerRepo
	Payments *payment.Provider
}

func NewBookingHandler(s *repository.ShowRepo, b *repository.BookingRepo, l *repository.SeatLedgerRepo, p *payment.Provider) *BookingHandler {
	return &BookingHandler{Shows: s, Bookings: b, Ledger: l, Payments: p}
}

type createBookingReq struct {
	ShowID        uint64   `json:"showId"`
	SelectedSeats []string `json:"selectedSeats"`
}

// CreateBooking handles POST /api/booking/create.  It validates the seat
// selection, checks the show is still bookable, and atomically records the
// booking together with its seat-ledger rows.  On a seat conflict the
// response names the exact seats that were already taken so the client can
// refresh its seat map.
func (h *BookingHandler) CreateBooking(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}

	var req createBookingReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request body")
	}
	if req.ShowID == 0 {
		return fail(c, http.StatusBadRequest, "showId is required")
	}

	seats := model.DedupSeatLabels(req.SelectedSeats)
	if len(seats) == 0 || len(seats) > model.MaxSeatsPerBooking {
		return fail(c, http.StatusBadRequest, fmt.Sprintf("invalid seats selected (max %d)", model.MaxSeatsPerBooking))
	}
	for _, s := range seats {
		if !model.ValidSeatLabel(s) {
			return fail(c, http.StatusBadRequest, fmt.Sprintf("invalid seat label: %s", s))
		}
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	show, err := h.Shows.GetDetail(ctx, req.ShowID)
	if err != nil {
		if errors.Is(err, repository.ErrShowNotFound) {
			return fail(c, http.StatusNotFound, "show not found")
		}
		log.Printf("create booking: load show %d: %v", req.ShowID, err)
		return fail(c, http.StatusInternalServerError, "failed to create booking")
	}
	if !show.ShowDateTime.After(time.Now().UTC()) {
		return fail(c, http.StatusBadRequest, "cannot book past or current shows")
	}
	if show.ShowPrice <= 0 {
		log.Printf("create booking: show %d has invalid price %f", show.ID, show.ShowPrice)
		return fail(c, http.StatusInternalServerError, "invalid show price")
	}

	booking, err := h.reserveSeats(ctx, userID, show, seats)
	if err != nil {
		var taken *repository.SeatsTakenError
		if errors.As(err, &taken) {
			return c.JSON(http.StatusBadRequest, echo.Map{
				"success":   false,
				"error":     taken.Error(),
				"conflicts": taken.Seats,
			})
		}
		log.Printf("create booking: reserve seats for show %d: %v", show.ID, err)
		return fail(c, http.StatusInternalServerError, "failed to create booking")
	}

	url, err := h.Payments.CheckoutURL(ctx, booking.ID, show.ID, show.MovieTitle, len(seats), booking.Amount)
	if err != nil {
		log.Printf("create booking: checkout session for booking %d: %v", booking.ID, err)
		return fail(c, http.StatusInternalServerError, "failed to create payment session")
	}
	if err := h.Bookings.SetPaymentLink(ctx, booking.ID, url); err != nil {
		log.Printf("create booking: store payment link for booking %d: %v", booking.ID, err)
	}

	event := queue.BookingCreatedEvent{
		BookingID:      booking.ID,
		UserID:         userID,
		ShowID:         show.ID,
		MovieTitle:     show.MovieTitle,
		ShowDateTime:   show.ShowDateTime.UTC().Format(time.RFC3339),
		Seats:          seats,
		Amount:         booking.Amount,
		PaymentPending: h.Payments.Enabled(),
		CreatedAt:      time.Now().UTC().Format(time.RFC3339),
	}
	go func() {
		pubCtx, pubCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer pubCancel()
		_ = queue_publisher.PublishBookingCreated(pubCtx, event)
	}()

	return c.JSON(http.StatusCreated, echo.Map{
		"success":   true,
		"url":       url,
		"bookingId": booking.ID,
	})
}

// reserveSeats runs the critical section of booking creation.  The explicit
// conflict check under FOR UPDATE exists to report the precise conflicting
// labels; the ledger's primary key is the hard guarantee if two transactions
// interleave anyway, in which case the duplicate-key error is mapped to the
// same SeatsTakenError.
func (h *BookingHandler) reserveSeats(ctx context.Context, userID uint64, show *repository.ShowDetail, seats []string) (*repository.BookingRecord, error) {
	tx, err := h.Shows.DB().BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	conflicts, err := h.Ledger.TakenTx(ctx, tx, show.ID, seats)
	if err != nil {
		return nil, err
	}
	if len(conflicts) > 0 {
		return nil, &repository.SeatsTakenError{Seats: conflicts}
	}

	booking := &repository.BookingRecord{
		UserID:      userID,
		ShowID:      show.ID,
		Amount:      show.ShowPrice * float64(len(seats)),
		BookedSeats: seats,
	}
	if err := h.Bookings.CreateTx(ctx, tx, booking); err != nil {
		return nil, err
	}
	if err := h.Ledger.OccupyTx(ctx, tx, show.ID, seats, userID, booking.ID); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return booking, nil
}

// GetOccupiedSeats handles GET /api/booking/seats/:showId.  The endpoint is
// public so the seat map renders before login.
func (h *BookingHandler) GetOccupiedSeats(c echo.Context) error {
	showID, err := strconv.ParseUint(c.Param("showId"), 10, 64)
	if err != nil || showID == 0 {
		return fail(c, http.StatusBadRequest, "invalid show id")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Shows.GetByID(ctx, showID); err != nil {
		if errors.Is(err, repository.ErrShowNotFound) {
			return fail(c, http.StatusNotFound, "show not found")
		}
		log.Printf("occupied seats: load show %d: %v", showID, err)
		return fail(c, http.StatusInternalServerError, "failed to load seats")
	}

	seats, err := h.Ledger.ListOccupied(ctx, showID)
	if err != nil {
		log.Printf("occupied seats: list for show %d: %v", showID, err)
		return fail(c, http.StatusInternalServerError, "failed to load seats")
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success":       true,
		"occupiedSeats": seats,
	})
}
