package handler

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/quickshow/movie-ticket-booking/internal/repository"
)

// AdminHandler bundles dependencies for the admin console endpoints.
type AdminHandler struct {
	Users    *repository.UserRepo
	Shows    *repository.ShowRepo
	Bookings *repository.BookingRepo
}

func NewAdminHandler(u *repository.UserRepo, s *repository.ShowRepo, b *repository.BookingRepo) *AdminHandler {
	return &AdminHandler{Users: u, Shows: s, Bookings: b}
}

// IsAdmin handles GET /api/admin/is-admin.  The route sits behind the admin
// role check, so reaching the handler already proves the answer.
func (h *AdminHandler) IsAdmin(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"isAdmin": true,
	})
}

type dashboardData struct {
	TotalBookings int64                  `json:"totalBookings"`
	TotalRevenue  float64                `json:"totalRevenue"`
	ActiveShows   []repository.AdminShow `json:"activeShows"`
	TotalUser     int64                  `json:"totalUser"`
}

// Dashboard handles GET /api/admin/dashboard.  Revenue only counts paid
// bookings; active shows are the upcoming ones.
func (h *AdminHandler) Dashboard(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	count, revenue, err := h.Bookings.PaidStats(ctx)
	if err != nil {
		log.Printf("dashboard: booking stats: %v", err)
		return fail(c, http.StatusInternalServerError, "failed to load dashboard")
	}
	shows, err := h.Shows.ListUpcomingForAdmin(ctx, time.Now().UTC())
	if err != nil {
		log.Printf("dashboard: active shows: %v", err)
		return fail(c, http.StatusInternalServerError, "failed to load dashboard")
	}
	users, err := h.Users.Count(ctx)
	if err != nil {
		log.Printf("dashboard: user count: %v", err)
		return fail(c, http.StatusInternalServerError, "failed to load dashboard")
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"dashboardData": dashboardData{
			TotalBookings: count,
			TotalRevenue:  revenue,
			ActiveShows:   shows,
			TotalUser:     users,
		},
	})
}

// AllShows handles GET /api/admin/all-shows: every upcoming show with its
// movie fields, in ascending datetime order.
func (h *AdminHandler) AllShows(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	shows, err := h.Shows.ListUpcomingForAdmin(ctx, time.Now().UTC())
	if err != nil {
		log.Printf("admin shows: %v", err)
		return fail(c, http.StatusInternalServerError, "failed to load shows")
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"shows":   shows,
	})
}

// AllBookings handles GET /api/admin/all-bookings: every booking joined
// with its user, show and movie, most recent first.
func (h *AdminHandler) AllBookings(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	bookings, err := h.Bookings.ListAll(ctx)
	if err != nil {
		log.Printf("admin bookings: %v", err)
		return fail(c, http.StatusInternalServerError, "failed to load bookings")
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success":  true,
		"bookings": bookings,
	})
}
