package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"courtdash/internal/config"
	"courtdash/internal/database"
	"courtdash/internal/middleware"
	"courtdash/internal/modules/booking"
	"courtdash/internal/modules/pricing"
	"courtdash/internal/modules/venue"
	"courtdash/internal/modules/views"
	"courtdash/internal/observability/metrics"
	jwtsvc "courtdash/internal/pkg/jwt"
	"courtdash/internal/pkg/logging"
	"courtdash/internal/realtime"
	"courtdash/internal/repository"
	"courtdash/internal/upstream"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("invalid configuration")
	}
	logging.Init(cfg.LogLevel)
	if cfg.IsProd() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		logrus.WithError(err).Fatal("database connection failed")
	}
	if err := database.Migrate(db, &repository.SavedViewModel{}); err != nil {
		logrus.WithError(err).Fatal("database migration failed")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	client, err := upstream.New(upstream.Config{
		BaseURL:    cfg.UpstreamBaseURL,
		Timeout:    cfg.UpstreamTimeout,
		MaxRetries: cfg.UpstreamMaxRetries,
		Backoff:    cfg.UpstreamBackoff,
		Metrics:    m,
	})
	if err != nil {
		logrus.WithError(err).Fatal("upstream client init failed")
	}

	inspector := jwtsvc.NewInspector(cfg.TokenLeeway)
	hub := realtime.NewHub(m)

	viewService := views.NewService(repository.NewSavedViewRepository(db))
	viewHandler := views.NewHandler(viewService)

	bookingService := booking.NewService(client, hub, m, cfg.WeekStart)
	bookingHandler := booking.NewHandler(bookingService, viewService)

	pricingHandler := pricing.NewHandler(client)
	venueHandler := venue.NewHandler(client)
	realtimeHandler := realtime.NewHandler(hub, inspector, client, middleware.OriginChecker(cfg.CORSOrigins))

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.ErrorLogger(), middleware.CORS(cfg.CORSOrigins))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	v1 := r.Group("/api/v1")
	{
		realtimeHandler.RegisterRoutes(v1)

		owner := v1.Group("/owner")
		owner.Use(middleware.BearerCredentials(inspector))
		{
			bookingHandler.RegisterRoutes(owner)
			pricingHandler.RegisterRoutes(owner)
			viewHandler.RegisterRoutes(owner)

			venueGroup := owner.Group("/venues/:venueId")
			venueGroup.Use(middleware.VenueOwnership(client))
			{
				venueHandler.RegisterVenueRoutes(venueGroup)
				pricingHandler.RegisterVenueRoutes(venueGroup)
				viewHandler.RegisterVenueRoutes(venueGroup)
			}

			// Booking reads degrade to an empty dashboard when the venue
			// lookup itself is down.
			bookingVenues := owner.Group("/venues/:venueId")
			bookingVenues.Use(middleware.VenueOwnership(client, middleware.AllowUnavailable()))
			bookingHandler.RegisterVenueRoutes(bookingVenues)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.RealtimeURL != "" {
		listener := realtime.NewListener(cfg.RealtimeURL, cfg.RealtimeServiceToken, hub)
		go func() {
			if err := listener.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logrus.WithError(err).Error("realtime listener stopped")
			}
		}()
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logrus.WithField("addr", cfg.HTTPAddr).Info("courtdash listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithError(err).Fatal("http server failed")
		}
	}()

	<-ctx.Done()
	logrus.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Error("graceful shutdown failed")
	}
}
