package main // Entry point package

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/quickshow/movie-ticket-booking/internal/catalog"
	"github.com/quickshow/movie-ticket-booking/internal/config"
	"github.com/quickshow/movie-ticket-booking/internal/database"
	"github.com/quickshow/movie-ticket-booking/internal/handler"
	"github.com/quickshow/movie-ticket-booking/internal/middleware"
	"github.com/quickshow/movie-ticket-booking/internal/payment"
	"github.com/quickshow/movie-ticket-booking/internal/queue"
	"github.com/quickshow/movie-ticket-booking/internal/repository"
	"github.com/quickshow/movie-ticket-booking/internal/router"
)

func main() {
	_ = godotenv.Load() // read .env when present; real env vars win

	cfg := config.Load() // load and validate environment config

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.EnsureSchema(ctx, db); err != nil {
		cancel()
		log.Fatalf("schema: %v", err)
	}
	cancel()

	// Redis backs the response cache and the rate limiter.  Both degrade
	// gracefully when it is unreachable.
	rdb := config.NewRedisClient()

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	movies := repository.NewMovieRepo(db)
	shows := repository.NewShowRepo(db)
	bookings := repository.NewBookingRepo(db)
	ledger := repository.NewSeatLedgerRepo(db)

	cat := catalog.New(cfg.TMDBToken)
	pay := payment.New(cfg.StripeKey, cfg.FrontendURL, cfg.Currency)
	if !cat.Configured() {
		log.Printf("TMDB token not set; catalog endpoints disabled")
	}
	if !pay.Enabled() {
		log.Printf("Stripe key not set; bookings use the fallback redirect")
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())

	if rdb != nil {
		e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	}
	var cache echo.MiddlewareFunc
	if rdb != nil {
		cache = middleware.NewRedisCache(config.LoadCacheConfig(), rdb)
	}

	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, users, tokens), cfg.JWTSecret)
	router.RegisterShows(e, handler.NewShowHandler(cat, movies, shows), cfg.JWTSecret, cache)
	router.RegisterBookings(e, handler.NewBookingHandler(shows, bookings, ledger, pay), cfg.JWTSecret, cache)
	router.RegisterUser(e, handler.NewUserHandler(users, movies, bookings), cfg.JWTSecret)
	router.RegisterAdmin(e, handler.NewAdminHandler(users, shows, bookings), cfg.JWTSecret)

	go func() {
		if err := queue.StartBookingConsumer(); err != nil {
			log.Printf("booking consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
