package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"

	"github.com/quickshow/movie-ticket-booking/internal/config"
	"github.com/quickshow/movie-ticket-booking/internal/repository"
	"github.com/quickshow/movie-ticket-booking/internal/utils"
)

func newAuthTestEnv(t *testing.T) (*AuthHandler, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	cfg := config.Config{
		JWTSecret:      "test-secret",
		AccessTTLMin:   15,
		RefreshTTLDays: 7,
		BcryptCost:     4, // minimum cost keeps the tests fast
	}
	h := NewAuthHandler(cfg, repository.NewUserRepo(db), repository.NewTokenRepo(db))
	return h, mock, func() { db.Close() }
}

func newAuthContext(t *testing.T, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestRegisterRequiresAllFields(t *testing.T) {
	h, _, closeDB := newAuthTestEnv(t)
	defer closeDB()

	c, rec := newAuthContext(t, "/api/auth/register", `{"name":"Ann","email":"a@b.c"}`)
	if err := h.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestRegisterDefaultsRoleToUser(t *testing.T) {
	h, mock, closeDB := newAuthTestEnv(t)
	defer closeDB()

	mock.ExpectExec("INSERT INTO users").
		WithArgs("Ann", "ann@example.com", sqlmock.AnyArg(), "user").
		WillReturnResult(sqlmock.NewResult(5, 1))

	c, rec := newAuthContext(t, "/api/auth/register",
		`{"name":"Ann","email":"Ann@Example.com","password":"pw","role":"superuser"}`)
	if err := h.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	out := decodeBody(t, rec)
	user, _ := out["user"].(map[string]interface{})
	if user["role"] != "user" {
		t.Fatalf("unexpected role: %v", user["role"])
	}
	if user["email"] != "ann@example.com" {
		t.Fatalf("email not normalized: %v", user["email"])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	h, mock, closeDB := newAuthTestEnv(t)
	defer closeDB()

	mock.ExpectExec("INSERT INTO users").
		WillReturnError(errors.New("Error 1062 (23000): Duplicate entry 'ann@example.com' for key 'users.email'"))

	c, rec := newAuthContext(t, "/api/auth/register",
		`{"name":"Ann","email":"ann@example.com","password":"pw"}`)
	if err := h.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	out := decodeBody(t, rec)
	if out["error"] != "email already registered" {
		t.Fatalf("unexpected message: %v", out["error"])
	}
}

func userRow(t *testing.T, id uint64, name, email, password, role string) *sqlmock.Rows {
	t.Helper()
	hash, err := utils.HashPassword(password, 4)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	now := time.Now().UTC()
	return sqlmock.NewRows([]string{"id", "name", "email", "password_hash", "role", "created_at", "updated_at"}).
		AddRow(id, name, email, hash, role, now, now)
}

func TestLoginSuccessIssuesTokenPair(t *testing.T) {
	h, mock, closeDB := newAuthTestEnv(t)
	defer closeDB()

	mock.ExpectQuery("SELECT id,name,email,password_hash,role,created_at,updated_at FROM users WHERE email=\\?").
		WithArgs("ann@example.com").
		WillReturnRows(userRow(t, 5, "Ann", "ann@example.com", "pw", "admin"))
	mock.ExpectExec("INSERT INTO refresh_tokens").
		WillReturnResult(sqlmock.NewResult(1, 1))

	c, rec := newAuthContext(t, "/api/auth/login", `{"email":"ann@example.com","password":"pw"}`)
	if err := h.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	out := decodeBody(t, rec)
	token, _ := out["token"].(string)
	if token == "" {
		t.Fatalf("expected an access token")
	}
	uid, role, err := utils.ParseAccessToken("test-secret", token)
	if err != nil {
		t.Fatalf("issued token does not verify: %v", err)
	}
	if uid != 5 || role != "admin" {
		t.Fatalf("claims mismatch: uid=%d role=%s", uid, role)
	}
	if rt, _ := out["refresh_token"].(string); rt == "" {
		t.Fatalf("expected a refresh token")
	}
}

func TestLoginWrongPassword(t *testing.T) {
	h, mock, closeDB := newAuthTestEnv(t)
	defer closeDB()

	mock.ExpectQuery("FROM users WHERE email=\\?").
		WithArgs("ann@example.com").
		WillReturnRows(userRow(t, 5, "Ann", "ann@example.com", "pw", "user"))

	c, rec := newAuthContext(t, "/api/auth/login", `{"email":"ann@example.com","password":"nope"}`)
	if err := h.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	out := decodeBody(t, rec)
	if out["error"] != "invalid credentials" {
		t.Fatalf("unexpected message: %v", out["error"])
	}
}

func TestLoginUnknownUser(t *testing.T) {
	h, mock, closeDB := newAuthTestEnv(t)
	defer closeDB()

	mock.ExpectQuery("FROM users WHERE email=\\?").
		WithArgs("ghost@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "password_hash", "role", "created_at", "updated_at"}))

	c, rec := newAuthContext(t, "/api/auth/login", `{"email":"ghost@example.com","password":"pw"}`)
	if err := h.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
