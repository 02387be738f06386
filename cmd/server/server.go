package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/Skufu/CareFusion/internal/assessment"
	"github.com/Skufu/CareFusion/internal/chat"
	"github.com/Skufu/CareFusion/internal/platform/db"
	"github.com/Skufu/CareFusion/internal/platform/middleware"
	"github.com/Skufu/CareFusion/internal/portal"
	"github.com/Skufu/CareFusion/internal/report"
)

type HealthChecker interface {
	Ping(ctx context.Context) error
}

func serveCmd() *cobra.Command {
	var autoMigrate bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), autoMigrate)
		},
	}
	cmd.Flags().BoolVar(&autoMigrate, "migrate", false, "apply pending migrations before serving (requires ENABLE_DB)")
	return cmd
}

func runServer(ctx context.Context, autoMigrate bool) error {
	a, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if autoMigrate {
		if a.pool == nil {
			return errors.New("--migrate requires ENABLE_DB=true")
		}
		if err := db.Migrate(a.cfg.DatabaseURL, a.logger); err != nil {
			return err
		}
	}

	gin.SetMode(a.cfg.GinMode)
	router := setupRouter(a)
	server := &http.Server{
		Addr:              ":" + a.cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      a.cfg.AITimeout + 15*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	a.logger.Info().Str("port", a.cfg.Port).Msg("server listening")
	return waitForShutdown(a, server, errCh)
}

func setupRouter(a *app) *gin.Engine {
	origins := a.cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	router := gin.New()
	router.Use(
		middleware.Recovery(a.logger),
		middleware.Logger(a.logger),
		middleware.BodyLimit(a.cfg.MaxBodyBytes),
		cors.New(cors.Config{
			AllowOrigins:     origins,
			AllowMethods:     []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			ExposeHeaders:    []string{"Content-Disposition"},
			MaxAge:           12 * time.Hour,
			AllowWebSockets:  true,
			AllowCredentials: false,
		}),
	)

	hc := a.health
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET("/readyz", func(c *gin.Context) {
		if hc == nil {
			c.JSON(http.StatusOK, gin.H{"status": "ok", "db": "disabled"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := hc.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "degraded",
				"db":     fmt.Sprintf("unhealthy: %v", err),
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "db": "ok"})
	})

	api := router.Group("/api")
	assessment.RegisterRoutes(api, assessment.NewHandler(a.assessments, a.policy, a.cfg.DefaultUserID))
	report.RegisterRoutes(api, report.NewHandler(a.assessments))
	portal.RegisterRoutes(api, router, portal.NewHandler(a.portal))
	chat.RegisterRoutes(api, router, chat.NewHandler(a.assessments, a.hub, a.cfg.CORSOrigins, a.logger))

	return router
}

func waitForShutdown(a *app, server *http.Server, errCh <-chan error) error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-stop:
	}

	a.logger.Info().Msg("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		a.logger.Error().Err(err).Msg("graceful shutdown failed")
		return err
	}
	return nil
}
