package handler

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/quickshow/movie-ticket-booking/internal/model"
	"github.com/quickshow/movie-ticket-booking/internal/repository"
)

// UserHandler bundles dependencies for user-scoped endpoints.
type UserHandler struct {
	Users    *repository.UserRepo
	Movies   *repository.MovieRepo
	Bookings *repository.BookingRepo
}

func NewUserHandler(u *repository.UserRepo, m *repository.MovieRepo, b *repository.BookingRepo) *UserHandler {
	return &UserHandler{Users: u, Movies: m, Bookings: b}
}

// MyBookings handles GET /api/user/bookings: the caller's bookings, most
// recent first, each joined with its show and movie.
func (h *UserHandler) MyBookings(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	bookings, err := h.Bookings.ListByUser(ctx, userID)
	if err != nil {
		log.Printf("my bookings: user %d: %v", userID, err)
		return fail(c, http.StatusInternalServerError, "failed to load bookings")
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success":  true,
		"bookings": bookings,
	})
}

type updateFavoriteReq struct {
	MovieID string `json:"movieId"`
}

// UpdateFavorite handles POST /api/user/update-favorite.  The same call
// toggles: it adds the movie when absent and removes it when present, and
// returns the full favorites list so the client state stays in sync.
func (h *UserHandler) UpdateFavorite(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}

	var req updateFavoriteReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request body")
	}
	if req.MovieID == "" {
		return fail(c, http.StatusBadRequest, "movieId is required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	added, err := h.Users.ToggleFavorite(ctx, userID, req.MovieID)
	if err != nil {
		log.Printf("update favorite: user %d movie %s: %v", userID, req.MovieID, err)
		return fail(c, http.StatusInternalServerError, "failed to update favorite")
	}
	msg := "Favorite removed"
	if added {
		msg = "Favorite added"
	}

	ids, err := h.Users.ListFavoriteIDs(ctx, userID)
	if err != nil {
		log.Printf("update favorite: list for user %d: %v", userID, err)
		return fail(c, http.StatusInternalServerError, "failed to update favorite")
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success":   true,
		"message":   msg,
		"favorites": ids,
	})
}

// Favorites handles GET /api/user/favorites: the cached movie records for
// every movie the caller marked as favorite.
func (h *UserHandler) Favorites(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	ids, err := h.Users.ListFavoriteIDs(ctx, userID)
	if err != nil {
		log.Printf("favorites: list for user %d: %v", userID, err)
		return fail(c, http.StatusInternalServerError, "failed to load favorites")
	}
	movies, err := h.Movies.ListByIDs(ctx, ids)
	if err != nil {
		log.Printf("favorites: load movies for user %d: %v", userID, err)
		return fail(c, http.StatusInternalServerError, "failed to load favorites")
	}
	if movies == nil {
		movies = []model.Movie{}
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"movies":  movies,
	})
}
