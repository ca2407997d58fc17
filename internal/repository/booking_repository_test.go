package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestCreateTxPopulatesID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()
	repo := NewBookingRepo(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO bookings").
		WithArgs(3, 7, 450.0, []byte(`["A1","A2","A3"]`), false).
		WillReturnResult(sqlmock.NewResult(21, 1))

	tx, err := db.Begin()
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	b := &BookingRecord{
		UserID:      3,
		ShowID:      7,
		Amount:      450,
		BookedSeats: []string{"A1", "A2", "A3"},
	}
	if err := repo.CreateTx(context.Background(), tx, b); err != nil {
		t.Fatalf("CreateTx: %v", err)
	}
	if b.ID != 21 {
		t.Fatalf("expected generated id 21, got %d", b.ID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPaidStats(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()
	repo := NewBookingRepo(db)

	mock.ExpectQuery("SELECT COUNT\\(\\*\\), COALESCE\\(SUM\\(amount\\), 0\\) FROM bookings WHERE is_paid = 1").
		WillReturnRows(sqlmock.NewRows([]string{"count", "revenue"}).AddRow(4, 1800.0))

	count, revenue, err := repo.PaidStats(context.Background())
	if err != nil {
		t.Fatalf("PaidStats: %v", err)
	}
	if count != 4 || revenue != 1800 {
		t.Fatalf("stats mismatch: got count=%d revenue=%f", count, revenue)
	}
}

func TestListByUserEmpty(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()
	repo := NewBookingRepo(db)

	cols := []string{
		"b.id", "b.amount", "b.booked_seats", "b.is_paid", "b.payment_link", "b.created_at",
		"s.id", "s.show_datetime", "s.show_price",
		"m.id", "m.title", "m.poster_path", "m.runtime",
	}
	mock.ExpectQuery("FROM bookings b").
		WithArgs(9).
		WillReturnRows(sqlmock.NewRows(cols))

	got, err := repo.ListByUser(context.Background(), 9)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", got)
	}
}
