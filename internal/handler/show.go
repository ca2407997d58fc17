package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/quickshow/movie-ticket-booking/internal/catalog"
	"github.com/quickshow/movie-ticket-booking/internal/model"
	"github.com/quickshow/movie-ticket-booking/internal/repository"
)

// ShowHandler bundles dependencies for show and catalog endpoints.  Movies
// are cached locally the first time an admin schedules a show for them;
// listings never reach out to the external catalog.
type ShowHandler struct {
	Catalog *catalog.Client
	Movies  *repository.MovieRepo
	Shows   *repository.ShowRepo
}

func NewShowHandler(cat *catalog.Client, m *repository.MovieRepo, s *repository.ShowRepo) *ShowHandler {
	return &ShowHandler{Catalog: cat, Movies: m, Shows: s}
}

type showInput struct {
	Date string `json:"date"`
	Time string `json:"time"`
}

type addShowReq struct {
	MovieID    string      `json:"movieId"`
	ShowsInput []showInput `json:"showsInput"`
	ShowPrice  float64     `json:"showPrice"`
}

// NowPlaying handles GET /api/show/now-playing.  It proxies the external
// catalog's now-playing listing for the admin scheduling screen.
func (h *ShowHandler) NowPlaying(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	movies, err := h.Catalog.NowPlaying(ctx)
	if err != nil {
		if errors.Is(err, catalog.ErrNotConfigured) {
			return fail(c, http.StatusServiceUnavailable, "movie catalog is not configured")
		}
		log.Printf("now playing: %v", err)
		return fail(c, http.StatusInternalServerError, "failed to fetch now playing movies")
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"movies":  movies,
	})
}

// AddShow handles POST /api/show/add.  The movie record is fetched from the
// catalog and cached on first use; subsequent shows for the same movie reuse
// the cached row.
func (h *ShowHandler) AddShow(c echo.Context) error {
	var req addShowReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request body")
	}
	if req.MovieID == "" || len(req.ShowsInput) == 0 || req.ShowPrice <= 0 {
		return fail(c, http.StatusBadRequest, "Missing required fields")
	}

	shows := make([]repository.Show, 0, len(req.ShowsInput))
	for _, in := range req.ShowsInput {
		dt, err := time.Parse("2006-01-02T15:04", in.Date+"T"+in.Time)
		if err != nil {
			return fail(c, http.StatusBadRequest, "invalid show date or time")
		}
		shows = append(shows, repository.Show{
			MovieID:      req.MovieID,
			ShowDateTime: dt.UTC(),
			ShowPrice:    req.ShowPrice,
		})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 20*time.Second)
	defer cancel()

	if err := h.ensureMovie(ctx, req.MovieID); err != nil {
		if errors.Is(err, catalog.ErrNotConfigured) {
			return fail(c, http.StatusServiceUnavailable, "movie catalog is not configured")
		}
		log.Printf("add show: ensure movie %s: %v", req.MovieID, err)
		return fail(c, http.StatusInternalServerError, "failed to add shows")
	}

	if err := h.Shows.CreateBulk(ctx, shows); err != nil {
		log.Printf("add show: insert shows for movie %s: %v", req.MovieID, err)
		return fail(c, http.StatusInternalServerError, "failed to add shows")
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "Shows added successfully",
	})
}

// ensureMovie caches the movie row if it is not stored yet.
func (h *ShowHandler) ensureMovie(ctx context.Context, movieID string) error {
	_, err := h.Movies.GetByID(ctx, movieID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repository.ErrMovieNotFound) {
		return err
	}
	movie, err := h.Catalog.Movie(ctx, movieID)
	if err != nil {
		return err
	}
	return h.Movies.Create(ctx, movie)
}

// GetShows handles GET /api/show/all: the distinct movies that still have
// upcoming shows, ordered by their earliest showtime.
func (h *ShowHandler) GetShows(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	ids, err := h.Shows.ListUpcomingMovieIDs(ctx, time.Now().UTC())
	if err != nil {
		log.Printf("list shows: %v", err)
		return fail(c, http.StatusInternalServerError, "failed to load shows")
	}
	movies, err := h.Movies.ListByIDs(ctx, ids)
	if err != nil {
		log.Printf("list shows: load movies: %v", err)
		return fail(c, http.StatusInternalServerError, "failed to load shows")
	}
	if movies == nil {
		movies = []model.Movie{}
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"shows":   movies,
	})
}

// GetShow handles GET /api/show/:movieId.  The response carries the cached
// movie record (null when the movie has no upcoming shows and was never
// cached) plus its upcoming showtimes grouped by date.
func (h *ShowHandler) GetShow(c echo.Context) error {
	movieID := c.Param("movieId")
	if movieID == "" {
		return fail(c, http.StatusBadRequest, "movieId is required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	var movie *model.Movie
	m, err := h.Movies.GetByID(ctx, movieID)
	if err != nil && !errors.Is(err, repository.ErrMovieNotFound) {
		log.Printf("get show: load movie %s: %v", movieID, err)
		return fail(c, http.StatusInternalServerError, "failed to load show")
	}
	if err == nil {
		movie = m
	}

	shows, err := h.Shows.ListUpcomingByMovie(ctx, movieID, time.Now().UTC())
	if err != nil {
		log.Printf("get show: list shows for movie %s: %v", movieID, err)
		return fail(c, http.StatusInternalServerError, "failed to load show")
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success":  true,
		"movie":    movie,
		"dateTime": repository.GroupShowtimes(shows),
	})
}
