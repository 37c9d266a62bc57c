package main // Entry point package

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/iliyamo/partner-booking/internal/config"
	"github.com/iliyamo/partner-booking/internal/database"
	"github.com/iliyamo/partner-booking/internal/handler"
	"github.com/iliyamo/partner-booking/internal/middleware"
	"github.com/iliyamo/partner-booking/internal/queue"
	"github.com/iliyamo/partner-booking/internal/repository"
	"github.com/iliyamo/partner-booking/internal/router"
	"github.com/iliyamo/partner-booking/internal/service"
)

func main() {
	cfg := config.Load() // Load environment config

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database connect failed: %v", err)
	}
	defer db.Close()

	// Redis is optional: rate limiting and caching degrade gracefully
	// when it is unreachable.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; rate limiting and caching disabled")
	}

	bookingRepo := repository.NewBookingRepo(db)
	listingRepo := repository.NewListingRepo(db)
	partnerRepo := repository.NewPartnerRepo(db)
	notifier := queue.NewPublisher()

	dispatcher := service.NewDispatcher(bookingRepo, listingRepo, partnerRepo, notifier,
		cfg.BookingWindow, cfg.NotifyTimeout, cfg.AdminChatIDs)
	decisions := service.NewDecisionService(bookingRepo, listingRepo, notifier, cfg.NotifyTimeout)
	sweeper := service.NewSweeper(bookingRepo, listingRepo, notifier,
		cfg.SweepInterval, cfg.BookingWindow, cfg.NotifyTimeout)

	// The sweeper and the optional audit consumer run for the lifetime of
	// the process; SIGINT/SIGTERM stops the sweep loop cleanly.  Other
	// worker processes run their own sweepers concurrently; the store's
	// conditional updates keep them from double-resolving a booking.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	go sweeper.Run(ctx)
	if cfg.RunNotifyAudit {
		go func() {
			if err := queue.StartNotifyConsumer(); err != nil {
				log.Printf("notify consumer stopped: %v", err)
			}
		}()
	}

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterPublic(e, handler.NewListingHandler(listingRepo),
		middleware.NewRedisCache(config.LoadCacheConfig(), rdb))
	router.RegisterPartnerConnect(e, handler.NewPartnerHandler(partnerRepo, cfg.JWTSecret, cfg.PartnerTTLMin))
	router.RegisterBooking(e, handler.NewBookingHandler(dispatcher, bookingRepo), cfg.JWTSecret,
		middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	router.RegisterPartner(e, handler.NewDecisionHandler(decisions), handler.NewListingHandler(listingRepo), cfg.JWTSecret)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s, window=%s, sweep=%s)", addr, cfg.Env, cfg.BookingWindow, cfg.SweepInterval)

	go func() {
		<-ctx.Done()
		_ = e.Close()
	}()
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
