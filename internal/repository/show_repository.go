// Package repository contains data access logic for the booking domain.
// This file covers shows: a Show is one scheduled screening of a movie at
// a datetime for a price.  Timestamps are stored in UTC (parseTime DSN
// option maps DATETIME columns to time.Time).
package repository

import (
	"context"
	"database/sql"
	"time"
)

// Show represents a scheduled screening of a movie.
type Show struct {
	ID           uint64    `json:"_id"`
	MovieID      string    `json:"movie"`
	ShowDateTime time.Time `json:"showDateTime"`
	ShowPrice    float64   `json:"showPrice"`
	CreatedAt    time.Time `json:"-"`
}

// ShowDetail is a show joined with the title of its movie, used by the
// booking path for payment descriptions.
type ShowDetail struct {
	Show
	MovieTitle string
}

// AdminShow is the listing shape for the admin console: the show plus the
// movie fields the dashboard renders.
type AdminShow struct {
	ID           uint64    `json:"_id"`
	ShowDateTime time.Time `json:"showDateTime"`
	ShowPrice    float64   `json:"showPrice"`
	MovieID      string    `json:"movieId"`
	MovieTitle   string    `json:"movieTitle"`
	PosterPath   string    `json:"posterPath"`
}

// ShowRepo manages persistence for shows.
type ShowRepo struct {
	db *sql.DB
}

// NewShowRepo constructs a ShowRepo with the given DB handle.
func NewShowRepo(db *sql.DB) *ShowRepo { return &ShowRepo{db: db} }

// DB exposes the underlying sql.DB.  It allows callers to begin
// transactions spanning multiple repositories.  The booking handler uses
// it so the booking row and the seat-ledger rows commit atomically.
func (r *ShowRepo) DB() *sql.DB { return r.db }

// CreateBulk inserts multiple shows in one statement.  All shows must
// reference an existing movie.  Passing an empty slice has no effect.
func (r *ShowRepo) CreateBulk(ctx context.Context, shows []Show) error {
	if len(shows) == 0 {
		return nil
	}
	query := `INSERT INTO shows (movie_id, show_datetime, show_price) VALUES `
	args := make([]interface{}, 0, len(shows)*3)
	for i, s := range shows {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?)"
		args = append(args, s.MovieID, s.ShowDateTime.UTC(), s.ShowPrice)
	}
	_, err := r.db.ExecContext(ctx, query, args...)
	return err
}

// GetByID retrieves a show by its ID.  It returns ErrShowNotFound when no
// matching row exists.
func (r *ShowRepo) GetByID(ctx context.Context, id uint64) (*Show, error) {
	const q = `SELECT id, movie_id, show_datetime, show_price, created_at FROM shows WHERE id = ?`
	var s Show
	err := r.db.QueryRowContext(ctx, q, id).Scan(&s.ID, &s.MovieID, &s.ShowDateTime, &s.ShowPrice, &s.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrShowNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// GetDetail retrieves a show together with its movie title.  It returns
// ErrShowNotFound when no matching row exists.
func (r *ShowRepo) GetDetail(ctx context.Context, id uint64) (*ShowDetail, error) {
	const q = `SELECT s.id, s.movie_id, s.show_datetime, s.show_price, s.created_at, m.title
               FROM shows s
               JOIN movies m ON m.id = s.movie_id
               WHERE s.id = ?`
	var d ShowDetail
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&d.ID, &d.MovieID, &d.ShowDateTime, &d.ShowPrice, &d.CreatedAt, &d.MovieTitle)
	if err == sql.ErrNoRows {
		return nil, ErrShowNotFound
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// ListUpcomingByMovie returns all future shows for a movie in ascending
// datetime order.  The ORDER BY is load-bearing: the showtime grouping
// endpoint requires ascending time within each date.
func (r *ShowRepo) ListUpcomingByMovie(ctx context.Context, movieID string, now time.Time) ([]Show, error) {
	const q = `SELECT id, movie_id, show_datetime, show_price, created_at
               FROM shows
               WHERE movie_id = ? AND show_datetime >= ?
               ORDER BY show_datetime ASC`
	rows, err := r.db.QueryContext(ctx, q, movieID, now.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	shows := make([]Show, 0)
	for rows.Next() {
		var s Show
		if err := rows.Scan(&s.ID, &s.MovieID, &s.ShowDateTime, &s.ShowPrice, &s.CreatedAt); err != nil {
			return nil, err
		}
		shows = append(shows, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return shows, nil
}

// ListUpcomingMovieIDs returns the distinct movie IDs that have at least
// one future show, ordered by each movie's earliest upcoming showtime.
func (r *ShowRepo) ListUpcomingMovieIDs(ctx context.Context, now time.Time) ([]string, error) {
	const q = `SELECT movie_id
               FROM shows
               WHERE show_datetime >= ?
               GROUP BY movie_id
               ORDER BY MIN(show_datetime) ASC`
	rows, err := r.db.QueryContext(ctx, q, now.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}

// ListUpcomingForAdmin returns every future show with the movie fields the
// admin console renders, ascending by datetime.
func (r *ShowRepo) ListUpcomingForAdmin(ctx context.Context, now time.Time) ([]AdminShow, error) {
	const q = `SELECT s.id, s.show_datetime, s.show_price, m.id, m.title, m.poster_path
               FROM shows s
               JOIN movies m ON m.id = s.movie_id
               WHERE s.show_datetime >= ?
               ORDER BY s.show_datetime ASC`
	rows, err := r.db.QueryContext(ctx, q, now.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]AdminShow, 0)
	for rows.Next() {
		var (
			a      AdminShow
			poster sql.NullString
		)
		if err := rows.Scan(&a.ID, &a.ShowDateTime, &a.ShowPrice, &a.MovieID, &a.MovieTitle, &poster); err != nil {
			return nil, err
		}
		a.PosterPath = poster.String
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GroupShowtimes buckets shows by the calendar date portion of their
// datetime (UTC).  Input order is preserved within each bucket, so
// callers should pass shows sorted ascending.
func GroupShowtimes(shows []Show) map[string][]ShowTime {
	grouped := make(map[string][]ShowTime, len(shows))
	for _, s := range shows {
		date := s.ShowDateTime.UTC().Format("2006-01-02")
		grouped[date] = append(grouped[date], ShowTime{
			Time:   s.ShowDateTime.UTC(),
			ShowID: s.ID,
		})
	}
	return grouped
}

// ShowTime is one bookable screening slot within a date bucket.
type ShowTime struct {
	Time   time.Time `json:"time"`
	ShowID uint64    `json:"showId"`
}
