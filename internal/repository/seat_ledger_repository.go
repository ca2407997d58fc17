package repository

import (
	"context"
	"database/sql"
	"sort"
	"strings"
)

// SeatLedgerRepo records which seats of a show are taken and by whom.  The
// ledger is the occupied_seats table: one row per (show, seat label), with
// the composite primary key acting as the insert-if-absent guard.  Absent
// row = free seat.  Rows are only ever added by the booking path; there is
// no release flow.
type SeatLedgerRepo struct {
	db *sql.DB
}

// NewSeatLedgerRepo returns a SeatLedgerRepo bound to the given database.
func NewSeatLedgerRepo(db *sql.DB) *SeatLedgerRepo { return &SeatLedgerRepo{db: db} }

// TakenTx returns the subset of labels that are already occupied for the
// show, locking the matching rows for the duration of the transaction.
// Callers use it inside the booking transaction to report exactly which
// seats conflict before attempting the insert.  The returned slice is
// sorted and empty when every requested seat is free.
func (r *SeatLedgerRepo) TakenTx(ctx context.Context, tx *sql.Tx, showID uint64, labels []string) ([]string, error) {
	if len(labels) == 0 {
		return nil, nil
	}
	placeholders := make([]string, len(labels))
	args := make([]interface{}, 0, len(labels)+1)
	args = append(args, showID)
	for i, l := range labels {
		placeholders[i] = "?"
		args = append(args, l)
	}
	query := `SELECT seat_label FROM occupied_seats WHERE show_id = ? AND seat_label IN (` +
		strings.Join(placeholders, ",") + `) FOR UPDATE`
	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var taken []string
	for rows.Next() {
		var l string
		if err := rows.Scan(&l); err != nil {
			return nil, err
		}
		taken = append(taken, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	sort.Strings(taken)
	return taken, nil
}

// OccupyTx marks every label as held by userID under bookingID, inside the
// caller's transaction.  The caller must have verified availability via
// TakenTx in the same transaction; should another transaction still win
// the race, the primary key rejects the insert and the duplicate-key
// error is mapped to a SeatsTakenError so the externally observable
// contract stays "reject if any requested seat is occupied".
func (r *SeatLedgerRepo) OccupyTx(ctx context.Context, tx *sql.Tx, showID uint64, labels []string, userID, bookingID uint64) error {
	if len(labels) == 0 {
		return nil
	}
	query := `INSERT INTO occupied_seats (show_id, seat_label, user_id, booking_id) VALUES `
	args := make([]interface{}, 0, len(labels)*4)
	for i, l := range labels {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?)"
		args = append(args, showID, l, userID, bookingID)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		if isDuplicateKey(err) {
			sorted := append([]string(nil), labels...)
			sort.Strings(sorted)
			return &SeatsTakenError{Seats: sorted}
		}
		return err
	}
	return nil
}

// ListOccupied returns every currently-held seat label for a show, sorted
// for deterministic seat-map rendering.  When the show has no occupied
// seats (or does not exist), an empty slice is returned; existence is the
// caller's concern.
func (r *SeatLedgerRepo) ListOccupied(ctx context.Context, showID uint64) ([]string, error) {
	const q = `SELECT seat_label FROM occupied_seats WHERE show_id = ? ORDER BY seat_label`
	rows, err := r.db.QueryContext(ctx, q, showID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	labels := make([]string, 0)
	for rows.Next() {
		var l string
		if err := rows.Scan(&l); err != nil {
			return nil, err
		}
		labels = append(labels, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return labels, nil
}
