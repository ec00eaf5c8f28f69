// Package main initializes and starts the SchemeSeva API server,
// setting up configuration, logging, database connections, repositories,
// services, the chat relay, handlers and optional TLS.
package main

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	nethttp "net/http"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/atinyakov/schemeseva/internal/config"
	"github.com/atinyakov/schemeseva/internal/db"
	"github.com/atinyakov/schemeseva/internal/logger"
	"github.com/atinyakov/schemeseva/internal/relay"
	"github.com/atinyakov/schemeseva/internal/repository"
	"github.com/atinyakov/schemeseva/internal/server/handler/http"
	"github.com/atinyakov/schemeseva/internal/service"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Parse command-line, config file and environment configuration.
	options, err := config.Parse(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	// Print build metadata (or "N/A" if unset).
	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	// Initialize structured logging.
	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init(options.LogLevel); err != nil {
		fmt.Fprintln(os.Stderr, "failed to init logger:", err)
		os.Exit(1)
	}
	zapLogger := log.Log

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, options, zapLogger); err != nil {
		zapLogger.Fatal("server stopped", zap.Error(err))
	}
}

func run(ctx context.Context, options *config.Options, zapLogger *zap.Logger) error {
	// Initialize PostgreSQL connection.
	postgresDB, err := db.InitPostgres(options.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("cannot init database: %w", err)
	}
	defer postgresDB.Close()

	// Purge expired sessions and one-time codes in the background.
	cleanCtx, stopCleaner := context.WithCancel(ctx)
	cleanerDone := db.StartExpiredCleaner(cleanCtx, postgresDB, options.CleanupInterval.Duration, zapLogger)

	// Initialize repositories.
	schemeRepo := repository.NewPostgresSchemeRepository(postgresDB)
	authRepo := repository.NewPostgresAuthRepository(postgresDB)

	// Initialize business-logic services.
	schemeService := service.NewSchemeService(schemeRepo)
	authService := service.NewAuthService(authRepo, service.LogSender{Log: zapLogger}, service.AuthOptions{
		CountryCode: options.CountryCode,
		SessionTTL:  options.SessionTTL.Duration,
		OTPTTL:      options.OTPTTL.Duration,
	})
	videoService := service.NewVideoService(schemeRepo, options.VideoRegion)

	completer, err := relay.New(ctx, relay.Config{
		Provider: options.ChatProvider,
		BaseURL:  options.ChatBaseURL,
		Model:    options.ChatModel,
		APIKey:   options.ChatAPIKey,
		Timeout:  options.ChatTimeout.Duration,
	})
	if err != nil {
		return fmt.Errorf("cannot init chat relay: %w", err)
	}
	if options.ChatAPIKey == "" {
		zapLogger.Warn("CHAT_API_KEY is not set, chat requests will fail upstream")
	}

	// Build the router with middleware and routes.
	router := http.NewRouter(http.Handlers{
		Schemes: &http.SchemeHandler{SchemeService: schemeService, Log: zapLogger},
		Auth:    &http.AuthHandler{AuthService: authService, Log: zapLogger},
		Chat:    &http.ChatHandler{Completer: completer, Log: zapLogger},
		Videos:  &http.VideoHandler{VideoService: videoService, Log: zapLogger},
	}, authService, zapLogger)

	server := &nethttp.Server{
		Addr:              options.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if options.TLSCert != "" && options.TLSKey != "" {
			zapLogger.Info("starting HTTPS server", zap.String("addr", options.Port))
			err = server.ListenAndServeTLS(options.TLSCert, options.TLSKey)
		} else {
			zapLogger.Info("starting HTTP server", zap.String("addr", options.Port))
			err = server.ListenAndServe()
		}
		if errors.Is(err, nethttp.ErrServerClosed) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		<-gctx.Done()
		zapLogger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	stopCleaner()
	<-cleanerDone
	return err
}
