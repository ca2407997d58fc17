package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"
)

// BookingRepo provides CRUD operations for bookings.  A booking groups the
// seats one user reserved for one show, the computed amount and the
// payment state.  The seat labels themselves also live in occupied_seats;
// booked_seats on the booking is the denormalized copy the frontend
// renders.  All timestamp fields are stored in UTC.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// BookingRecord mirrors the schema of the bookings table.
type BookingRecord struct {
	ID          uint64
	UserID      uint64
	ShowID      uint64
	Amount      float64
	BookedSeats []string
	IsPaid      bool
	PaymentLink string
	CreatedAt   time.Time
}

// CreateTx inserts a new booking within the scope of an existing
// transaction and populates the generated ID on the record.  The caller
// must commit or rollback the transaction.  IsPaid always starts false;
// the payment-confirmation webhook flips it later.
func (r *BookingRepo) CreateTx(ctx context.Context, tx *sql.Tx, b *BookingRecord) error {
	seats, err := json.Marshal(b.BookedSeats)
	if err != nil {
		return err
	}
	const q = `INSERT INTO bookings (user_id, show_id, amount, booked_seats, is_paid) VALUES (?, ?, ?, ?, ?)`
	result, err := tx.ExecContext(ctx, q, b.UserID, b.ShowID, b.Amount, seats, b.IsPaid)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	return nil
}

// SetPaymentLink persists the redirect target chosen for a booking after
// the payment session has been created (or the fallback path picked).
func (r *BookingRepo) SetPaymentLink(ctx context.Context, bookingID uint64, url string) error {
	const q = `UPDATE bookings SET payment_link = ? WHERE id = ?`
	_, err := r.db.ExecContext(ctx, q, url, bookingID)
	return err
}

// MarkPaid flips the paid flag for a booking.  Used by the payment
// confirmation step.
func (r *BookingRepo) MarkPaid(ctx context.Context, bookingID uint64) error {
	const q = `UPDATE bookings SET is_paid = 1 WHERE id = ?`
	_, err := r.db.ExecContext(ctx, q, bookingID)
	return err
}

// BookingDetail is a booking joined with its show and movie, the shape the
// "my bookings" page renders.
type BookingDetail struct {
	ID          uint64    `json:"_id"`
	Amount      float64   `json:"amount"`
	BookedSeats []string  `json:"bookedSeats"`
	IsPaid      bool      `json:"isPaid"`
	PaymentLink string    `json:"paymentLink,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	Show        struct {
		ID           uint64    `json:"_id"`
		ShowDateTime time.Time `json:"showDateTime"`
		ShowPrice    float64   `json:"showPrice"`
		Movie        struct {
			ID         string `json:"_id"`
			Title      string `json:"title"`
			PosterPath string `json:"poster_path"`
			Runtime    uint32 `json:"runtime"`
		} `json:"movie"`
	} `json:"show"`
}

// AdminBookingDetail extends BookingDetail with the owning user, for the
// admin bookings table.
type AdminBookingDetail struct {
	BookingDetail
	User struct {
		ID    uint64 `json:"_id"`
		Name  string `json:"name"`
		Email string `json:"email"`
	} `json:"user"`
}

const bookingDetailColumns = `b.id, b.amount, b.booked_seats, b.is_paid, b.payment_link, b.created_at,
       s.id, s.show_datetime, s.show_price,
       m.id, m.title, m.poster_path, m.runtime`

const bookingDetailJoins = ` FROM bookings b
       JOIN shows s ON s.id = b.show_id
       JOIN movies m ON m.id = s.movie_id`

func scanBookingDetail(rows *sql.Rows, withUser bool) (*AdminBookingDetail, error) {
	var (
		d       AdminBookingDetail
		seats   []byte
		link    sql.NullString
		poster  sql.NullString
		dest    []interface{}
	)
	dest = append(dest,
		&d.ID, &d.Amount, &seats, &d.IsPaid, &link, &d.CreatedAt,
		&d.Show.ID, &d.Show.ShowDateTime, &d.Show.ShowPrice,
		&d.Show.Movie.ID, &d.Show.Movie.Title, &poster, &d.Show.Movie.Runtime,
	)
	if withUser {
		dest = append(dest, &d.User.ID, &d.User.Name, &d.User.Email)
	}
	if err := rows.Scan(dest...); err != nil {
		return nil, err
	}
	d.PaymentLink = link.String
	d.Show.Movie.PosterPath = poster.String
	d.BookedSeats = []string{}
	if len(seats) > 0 {
		if err := json.Unmarshal(seats, &d.BookedSeats); err != nil {
			return nil, err
		}
	}
	return &d, nil
}

// ListByUser returns all bookings for the given user with show and movie
// details, newest first.  When no bookings exist, an empty slice is
// returned.
func (r *BookingRepo) ListByUser(ctx context.Context, userID uint64) ([]BookingDetail, error) {
	const q = `SELECT ` + bookingDetailColumns + bookingDetailJoins + `
               WHERE b.user_id = ?
               ORDER BY b.created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	details := make([]BookingDetail, 0)
	for rows.Next() {
		d, err := scanBookingDetail(rows, false)
		if err != nil {
			return nil, err
		}
		details = append(details, d.BookingDetail)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return details, nil
}

// ListAll returns every booking with user, show and movie details for the
// admin console, newest first.
func (r *BookingRepo) ListAll(ctx context.Context) ([]AdminBookingDetail, error) {
	const q = `SELECT ` + bookingDetailColumns + `, u.id, u.name, u.email` + bookingDetailJoins + `
               JOIN users u ON u.id = b.user_id
               ORDER BY b.created_at DESC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	details := make([]AdminBookingDetail, 0)
	for rows.Next() {
		d, err := scanBookingDetail(rows, true)
		if err != nil {
			return nil, err
		}
		details = append(details, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return details, nil
}

// PaidStats returns the number of paid bookings and their summed revenue.
// The dashboard is a point-in-time snapshot; no consistency stronger than
// "eventually reflects committed bookings" is required.
func (r *BookingRepo) PaidStats(ctx context.Context) (count int64, revenue float64, err error) {
	const q = `SELECT COUNT(*), COALESCE(SUM(amount), 0) FROM bookings WHERE is_paid = 1`
	err = r.db.QueryRowContext(ctx, q).Scan(&count, &revenue)
	return count, revenue, err
}
