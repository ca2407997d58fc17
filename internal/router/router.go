// Package router wires HTTP routes to their handlers and middleware.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/quickshow/movie-ticket-booking/internal/handler"
	"github.com/quickshow/movie-ticket-booking/internal/middleware"
)

// RegisterRoutes registers routes that do not belong to any API surface.
// Currently it exposes only a health check for load balancers.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the authentication endpoints under /api/auth.
// Register, login, refresh and logout are public; verify requires a valid
// access token because it reports who the caller is.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/api/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/logout", a.Logout)
	g.GET("/verify", a.Verify, middleware.JWTAuth(jwtSecret))
}

// RegisterShows registers the show and catalog endpoints under /api/show.
// The browse endpoints are public and sit behind the response cache when
// Redis is available; scheduling and the catalog proxy are admin-only.
func RegisterShows(e *echo.Echo, h *handler.ShowHandler, jwtSecret string, cache echo.MiddlewareFunc) {
	g := e.Group("/api/show")

	admin := []echo.MiddlewareFunc{middleware.JWTAuth(jwtSecret), middleware.RequireRole("admin")}
	g.GET("/now-playing", h.NowPlaying, admin...)
	g.POST("/add", h.AddShow, admin...)

	public := g.Group("")
	if cache != nil {
		public.Use(cache)
	}
	public.GET("/all", h.GetShows)
	public.GET("/:movieId", h.GetShow)
}

// RegisterBookings registers the booking endpoints under /api/booking.
// Creating a booking requires an authenticated user; the occupied-seats
// lookup is public so seat maps render before login.
func RegisterBookings(e *echo.Echo, h *handler.BookingHandler, jwtSecret string, cache echo.MiddlewareFunc) {
	g := e.Group("/api/booking")
	g.POST("/create", h.CreateBooking, middleware.JWTAuth(jwtSecret), middleware.RequireRole("user", "admin"))

	seats := g.Group("/seats")
	if cache != nil {
		seats.Use(cache)
	}
	seats.GET("/:showId", h.GetOccupiedSeats)
}

// RegisterUser registers the user-scoped endpoints under /api/user.  All of
// them require an authenticated caller.
func RegisterUser(e *echo.Echo, h *handler.UserHandler, jwtSecret string) {
	g := e.Group("/api/user")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.GET("/bookings", h.MyBookings)
	g.POST("/update-favorite", h.UpdateFavorite)
	g.GET("/favorites", h.Favorites)
}

// RegisterAdmin registers the admin console endpoints under /api/admin.
// Every route requires the admin role.
func RegisterAdmin(e *echo.Echo, h *handler.AdminHandler, jwtSecret string) {
	g := e.Group("/api/admin")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole("admin"))
	g.GET("/is-admin", h.IsAdmin)
	g.GET("/dashboard", h.Dashboard)
	g.GET("/all-shows", h.AllShows)
	g.GET("/all-bookings", h.AllBookings)
}
