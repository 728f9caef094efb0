package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/markgannott/menopause-kp-cdst/internal/config"
	"github.com/markgannott/menopause-kp-cdst/internal/domain/assessment"
	"github.com/markgannott/menopause-kp-cdst/internal/domain/reference"
	"github.com/markgannott/menopause-kp-cdst/internal/platform/auth"
	"github.com/markgannott/menopause-kp-cdst/internal/platform/middleware"
	"github.com/markgannott/menopause-kp-cdst/internal/refdata"
)

const version = "1.0.0"

func main() {
	rootCmd := &cobra.Command{
		Use:   "cdst-server",
		Short: "Menopause KP clinical decision support API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(assessCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the CDST API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

// assessCmd runs one assessment from a JSON profile file and prints the
// result, for scripted use without a server.
func assessCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "assess",
		Short: "Run a single assessment from a JSON request file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("file")
			if path == "" {
				return fmt.Errorf("--file is required")
			}

			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			var req assessment.Request
			if err := json.Unmarshal(data, &req); err != nil {
				return fmt.Errorf("parse request: %w", err)
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			ref, err := refdata.New()
			if err != nil {
				return err
			}
			svc := assessment.NewService(ref, cfg.EligiblePopulation, cfg.DefaultUptakePct, zerolog.Nop())

			a, err := svc.Assess(context.Background(), req)
			if err != nil {
				return err
			}
			out, err := json.MarshalIndent(a, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		},
	}
	cmd.Flags().String("file", "", "Path to a JSON assessment request")
	return cmd
}

func runServer() error {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "" || os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	ref, err := refdata.New()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build reference data")
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	// Auth middleware
	if cfg.ResolvedAuthMode() == "development" {
		e.Use(auth.DevAuthMiddleware())
	} else {
		e.Use(auth.JWTMiddleware(auth.JWTConfig{
			SigningKey: []byte(cfg.AuthJWTSecret),
		}))
	}

	apiV1 := e.Group("/api/v1")

	rateLimitCfg := middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}
	if rateLimitCfg.RequestsPerSecond <= 0 {
		rateLimitCfg = middleware.DefaultRateLimitConfig()
	}
	apiV1.Use(middleware.RateLimit(rateLimitCfg))

	// Health check
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": version,
		})
	})

	// Domain handlers
	svc := assessment.NewService(ref, cfg.EligiblePopulation, cfg.DefaultUptakePct, logger)
	assessment.NewHandler(svc).RegisterRoutes(apiV1)
	reference.NewHandler(ref).RegisterRoutes(apiV1)

	logger.Info().
		Str("port", cfg.Port).
		Str("auth_mode", cfg.ResolvedAuthMode()).
		Msg("starting cdst server")

	// Graceful shutdown
	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("shutdown error")
		return err
	}
	return nil
}
