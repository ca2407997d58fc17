package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"

	"github.com/quickshow/movie-ticket-booking/internal/payment"
	"github.com/quickshow/movie-ticket-booking/internal/repository"
)

func newBookingTestEnv(t *testing.T) (*BookingHandler, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	h := NewBookingHandler(
		repository.NewShowRepo(db),
		repository.NewBookingRepo(db),
		repository.NewSeatLedgerRepo(db),
		payment.New("", "http://localhost:5173", "inr"),
	)
	return h, mock, func() { db.Close() }
}

func newBookingContext(t *testing.T, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/booking/create", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", uint64(3))
	c.Set("role", "user")
	return c, rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return out
}

func expectShowDetail(mock sqlmock.Sqlmock, showID uint64, dt time.Time, price float64, title string) {
	rows := sqlmock.NewRows([]string{"id", "movie_id", "show_datetime", "show_price", "created_at", "title"}).
		AddRow(showID, "872585", dt, price, time.Now().UTC(), title)
	mock.ExpectQuery("JOIN movies m ON m.id = s.movie_id").
		WithArgs(showID).
		WillReturnRows(rows)
}

func TestCreateBookingRejectsEmptySelection(t *testing.T) {
	h, _, closeDB := newBookingTestEnv(t)
	defer closeDB()

	c, rec := newBookingContext(t, `{"showId":7,"selectedSeats":[]}`)
	if err := h.CreateBooking(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["success"] != false {
		t.Fatalf("expected success=false, got %v", body["success"])
	}
}

func TestCreateBookingRejectsTooManySeats(t *testing.T) {
	h, _, closeDB := newBookingTestEnv(t)
	defer closeDB()

	c, rec := newBookingContext(t, `{"showId":7,"selectedSeats":["A1","A2","A3","A4","A5","A6"]}`)
	if err := h.CreateBooking(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestCreateBookingRejectsMalformedSeatLabel(t *testing.T) {
	h, _, closeDB := newBookingTestEnv(t)
	defer closeDB()

	c, rec := newBookingContext(t, `{"showId":7,"selectedSeats":["A1","Z9"]}`)
	if err := h.CreateBooking(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if msg, _ := body["error"].(string); !strings.Contains(msg, "Z9") {
		t.Fatalf("expected the bad label in the message, got %q", msg)
	}
}

func TestCreateBookingDedupsBeforeLimitCheck(t *testing.T) {
	h, mock, closeDB := newBookingTestEnv(t)
	defer closeDB()

	// Six entries but only five distinct seats: the selection is allowed.
	dt := time.Now().UTC().Add(24 * time.Hour)
	expectShowDetail(mock, 7, dt, 150, "Test Movie")
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT seat_label FROM occupied_seats").
		WillReturnRows(sqlmock.NewRows([]string{"seat_label"}))
	mock.ExpectExec("INSERT INTO bookings").
		WillReturnResult(sqlmock.NewResult(21, 1))
	mock.ExpectExec("INSERT INTO occupied_seats").
		WillReturnResult(sqlmock.NewResult(0, 5))
	mock.ExpectCommit()
	mock.ExpectExec("UPDATE bookings SET payment_link").
		WillReturnResult(sqlmock.NewResult(0, 1))

	c, rec := newBookingContext(t, `{"showId":7,"selectedSeats":["A1","A1","A2","A3","A4","A5"]}`)
	if err := h.CreateBooking(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestCreateBookingRejectsPastShow(t *testing.T) {
	h, mock, closeDB := newBookingTestEnv(t)
	defer closeDB()

	expectShowDetail(mock, 7, time.Now().UTC().Add(-time.Hour), 150, "Test Movie")

	c, rec := newBookingContext(t, `{"showId":7,"selectedSeats":["A1"]}`)
	if err := h.CreateBooking(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["error"] != "cannot book past or current shows" {
		t.Fatalf("unexpected message: %v", body["error"])
	}
}

func TestCreateBookingShowNotFound(t *testing.T) {
	h, mock, closeDB := newBookingTestEnv(t)
	defer closeDB()

	mock.ExpectQuery("JOIN movies m ON m.id = s.movie_id").
		WithArgs(404).
		WillReturnRows(sqlmock.NewRows([]string{"id", "movie_id", "show_datetime", "show_price", "created_at", "title"}))

	c, rec := newBookingContext(t, `{"showId":404,"selectedSeats":["A1"]}`)
	if err := h.CreateBooking(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestCreateBookingReportsExactConflicts(t *testing.T) {
	h, mock, closeDB := newBookingTestEnv(t)
	defer closeDB()

	dt := time.Now().UTC().Add(24 * time.Hour)
	expectShowDetail(mock, 7, dt, 150, "Test Movie")
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT seat_label FROM occupied_seats").
		WillReturnRows(sqlmock.NewRows([]string{"seat_label"}).AddRow("B3").AddRow("B2"))
	mock.ExpectRollback()

	c, rec := newBookingContext(t, `{"showId":7,"selectedSeats":["B2","B3","C1"]}`)
	if err := h.CreateBooking(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["error"] != "seats B2, B3 are already taken" {
		t.Fatalf("unexpected message: %v", body["error"])
	}
	conflicts, _ := body["conflicts"].([]interface{})
	if len(conflicts) != 2 || conflicts[0] != "B2" || conflicts[1] != "B3" {
		t.Fatalf("unexpected conflicts: %v", body["conflicts"])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreateBookingSuccessComputesAmount(t *testing.T) {
	h, mock, closeDB := newBookingTestEnv(t)
	defer closeDB()

	dt := time.Now().UTC().Add(48 * time.Hour)
	expectShowDetail(mock, 7, dt, 200, "Test Movie")
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT seat_label FROM occupied_seats").
		WithArgs(7, "D4", "D5").
		WillReturnRows(sqlmock.NewRows([]string{"seat_label"}))
	mock.ExpectExec("INSERT INTO bookings").
		WithArgs(3, 7, 400.0, []byte(`["D4","D5"]`), false).
		WillReturnResult(sqlmock.NewResult(21, 1))
	mock.ExpectExec("INSERT INTO occupied_seats").
		WithArgs(7, "D4", 3, 21, 7, "D5", 3, 21).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()
	mock.ExpectExec("UPDATE bookings SET payment_link").
		WithArgs("/my-bookings?bookingId=21", 21).
		WillReturnResult(sqlmock.NewResult(0, 1))

	c, rec := newBookingContext(t, `{"showId":7,"selectedSeats":["D4","D5"]}`)
	if err := h.CreateBooking(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["success"] != true {
		t.Fatalf("expected success=true, got %v", body["success"])
	}
	if body["url"] != "/my-bookings?bookingId=21" {
		t.Fatalf("unexpected redirect url: %v", body["url"])
	}
	if body["bookingId"] != float64(21) {
		t.Fatalf("unexpected booking id: %v", body["bookingId"])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestGetOccupiedSeats(t *testing.T) {
	h, mock, closeDB := newBookingTestEnv(t)
	defer closeDB()

	mock.ExpectQuery("SELECT id, movie_id, show_datetime, show_price, created_at FROM shows").
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"id", "movie_id", "show_datetime", "show_price", "created_at"}).
			AddRow(7, "872585", time.Now().UTC().Add(time.Hour), 150.0, time.Now().UTC()))
	mock.ExpectQuery("SELECT seat_label FROM occupied_seats").
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"seat_label"}).AddRow("A1").AddRow("B2"))

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/booking/seats/7", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("showId")
	c.SetParamValues("7")

	if err := h.GetOccupiedSeats(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := decodeBody(t, rec)
	seats, _ := body["occupiedSeats"].([]interface{})
	if len(seats) != 2 || seats[0] != "A1" || seats[1] != "B2" {
		t.Fatalf("unexpected seats: %v", body["occupiedSeats"])
	}
}

func TestGetOccupiedSeatsUnknownShow(t *testing.T) {
	h, mock, closeDB := newBookingTestEnv(t)
	defer closeDB()

	mock.ExpectQuery("SELECT id, movie_id, show_datetime, show_price, created_at FROM shows").
		WithArgs(99).
		WillReturnRows(sqlmock.NewRows([]string{"id", "movie_id", "show_datetime", "show_price", "created_at"}))

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/booking/seats/99", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("showId")
	c.SetParamValues("99")

	if err := h.GetOccupiedSeats(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
