package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"venuehub/internal/admin"
	"venuehub/internal/auth"
	"venuehub/internal/catalog"
	"venuehub/internal/cms"
	"venuehub/internal/pages"
	"venuehub/internal/reconcile"
	"venuehub/internal/stream"
	"venuehub/pkg/database"
	"venuehub/pkg/utils"
)

func main() {
	configPath := flag.String("config", "config.toml", "config file path")
	flag.Parse()

	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true})

	cfg, err := utils.Load(*configPath)
	if err != nil {
		logger.Fatal("failed to load config", "err", err)
	}

	dbCfg := database.DefaultConfig()
	if cfg.Database.Path != "" {
		dbCfg = database.Config{Path: cfg.Database.Path}
	}
	db := database.MustOpen(dbCfg)
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		logger.Fatal("db migrate failed", "err", err)
	}

	router := gin.Default()

	// Optional: avoid “trusted all proxies” warning
	_ = router.SetTrustedProxies([]string{"127.0.0.1"})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "not_ready",
				"db_error": err.Error(),
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready", "db": "ok"})
	})

	api := router.Group("/api")

	// Catalogue (public, database-backed)
	catalogRepo := catalog.NewRepo(db)
	catalog.NewHandler(catalogRepo).RegisterRoutes(api)

	// Streaming
	resolver, err := stream.NewResolver(cfg.Media.Root, cfg.Media.FallbackDir)
	if err != nil {
		logger.Fatal("failed to set up resolver", "err", err)
	}
	stream.NewHandler(resolver, logger.With("component", "stream")).RegisterRoutes(api)

	// CMS-backed pages
	cmsClient := cms.NewClient(cfg.CMS.URL, cfg.CMS.User, cfg.CMS.Password, logger.With("component", "cms"))
	pages.NewHandler(cmsClient, logger.With("component", "pages")).RegisterRoutes(api)

	// Admin
	tokens := auth.TokenService{
		Secret:   []byte(cfg.Auth.JWTSecret),
		Issuer:   cfg.Auth.JWTIssuer,
		Duration: cfg.Auth.JWTDuration(),
	}
	reconciler := &reconcile.Reconciler{
		Repo:        catalogRepo,
		Dir:         cfg.Media.ScanDir,
		ServePrefix: cfg.Media.ServePrefix,
		Logger:      logger.With("component", "reconcile"),
	}
	adminHandler := &admin.Handler{
		Repo:        catalogRepo,
		Tokens:      tokens,
		AdminHash:   cfg.Auth.AdminHash,
		ScanDir:     cfg.Media.ScanDir,
		ServePrefix: cfg.Media.ServePrefix,
		Reconciler:  reconciler,
		Logger:      logger.With("component", "admin"),
	}
	adminHandler.RegisterRoutes(router.Group("/admin"))

	httpSrv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", "addr", cfg.Server.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("shutdown signal received", "signal", sig.String())
	case err := <-errCh:
		logger.Error("server error", "err", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown error", "err", err)
	}
	logger.Info("server stopped")
}
