package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"burger-ordering-api/cart"
	"burger-ordering-api/catalog"
	"burger-ordering-api/config"
	"burger-ordering-api/geo"
	"burger-ordering-api/handlers"
	"burger-ordering-api/metrics"
	"burger-ordering-api/middleware"
	"burger-ordering-api/notify"
	"burger-ordering-api/routes"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

func init() {
	log.SetFormatter(&log.JSONFormatter{})
	log.SetOutput(os.Stdout)
	log.SetLevel(log.InfoLevel)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("Failed to load configuration")
	}
	if level, err := log.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	}
	gin.SetMode(cfg.GinMode)

	// Initialize database
	if err := config.InitDB(cfg.DatabasePath); err != nil {
		log.WithError(err).Fatal("Failed to initialize database")
	}
	if err := config.SeedMenu(config.DB, cfg.Seed); err != nil {
		log.WithError(err).Fatal("Failed to seed menu")
	}
	if err := config.EnsureAdmin(config.DB, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		log.WithError(err).Fatal("Failed to create admin account")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Menu cache, carts and outbound clients
	menu := catalog.NewCache(config.DB)
	if err := menu.Refresh(ctx); err != nil {
		log.WithError(err).Fatal("Failed to load menu")
	}
	carts := cart.NewStore()

	var geocoder handlers.DistanceFinder
	if cfg.GeocoderURL != "" {
		geocoder = geo.NewClient(cfg.GeocoderURL, geo.Point{Lat: cfg.OriginLat, Lon: cfg.OriginLon})
	} else {
		log.Warn("GEOCODER_URL is not set, delivery orders use the distance sent by the client")
	}

	handlers.Configure(handlers.Services{
		Menu:     menu,
		Carts:    carts,
		Geocoder: geocoder,
		Notifier: notify.NewClient(notify.Config{
			SMSGatewayURL:  cfg.SMSGatewayURL,
			SMSAPIKey:      cfg.SMSAPIKey,
			PushGatewayURL: cfg.PushGatewayURL,
		}),
		Rules: cfg.Pricing,
	})

	// Router and middleware
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(), metrics.PrometheusMiddleware())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":         "healthy",
			"service":        "Burger Ordering API",
			"menu_loaded_at": menu.Snapshot().LoadedAt,
		})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	routes.SetupRoutes(r)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.WithField("port", cfg.Port).Info("Server running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return menu.Run(gctx, cfg.MenuRefreshInterval)
	})
	g.Go(func() error {
		return carts.RunSweeper(gctx, 10*time.Minute, cfg.CartMaxAge)
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		log.Info("Shutting down server")
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.WithError(err).Fatal("Server stopped with error")
	}
	log.Info("Server stopped")
}
