package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/dfcarvalho/smmpanel/internal/db"
	"github.com/dfcarvalho/smmpanel/internal/handlers"
	"github.com/dfcarvalho/smmpanel/internal/logger"
	"github.com/dfcarvalho/smmpanel/internal/repository/postgres"
	"github.com/dfcarvalho/smmpanel/internal/service/auth"
	"github.com/dfcarvalho/smmpanel/internal/service/auth/tokenmanager"
	"github.com/dfcarvalho/smmpanel/internal/service/catalog"
	"github.com/dfcarvalho/smmpanel/internal/service/order"
	"github.com/dfcarvalho/smmpanel/internal/service/payment"
	"github.com/dfcarvalho/smmpanel/internal/service/settings"
	"github.com/dfcarvalho/smmpanel/internal/service/stats"
	"github.com/dfcarvalho/smmpanel/internal/service/user"
)

type ServerApp struct {
	ListenAddr string
	Handler    http.Handler
}

func NewServerApp(ctx context.Context, c *Config) (*ServerApp, error) {
	// Initialize logger
	logger, err := logger.New(c.Environment, c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("error while initializing logger: %w", err)
	}

	// Connect to the database and run migrations
	pool, err := db.ConnectAndMigrate(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("error while connecting to db. Err: %w", err)
	}

	// Initialize repositories
	storage := postgres.NewStorage(pool)

	// Initialize services
	tokenManager, err := tokenmanager.New(tokenmanager.Config{SecretKey: c.SecretKey}, storage.Refresh())
	if err != nil {
		return nil, fmt.Errorf("error while creating token manager. Err: %w", err)
	}
	userService := user.NewService(auth.DefaultHasher, storage)
	authService, err := auth.NewService(auth.Config{}, tokenManager, userService)
	if err != nil {
		return nil, fmt.Errorf("error while creating auth service. Err: %w", err)
	}
	settingsService := settings.NewService(storage.Setting())
	paymentService := payment.NewService(storage, settingsService, logger)
	orderService := order.NewService(storage, settingsService, logger)
	catalogService := catalog.NewService(storage, settingsService, logger)
	statsService := stats.NewService(storage)

	mux := handlers.NewRouter(
		authService,
		userService,
		paymentService,
		orderService,
		catalogService,
		settingsService,
		statsService,
		logger,
	)

	return &ServerApp{
		ListenAddr: c.ListenAddr,
		Handler:    mux,
	}, nil
}

// Run starts http server and closes gracefully on context cancellation
func (s *ServerApp) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:    s.ListenAddr,
		Handler: s.Handler,
	}

	idleConnsClosed := make(chan struct{})
	srvCtx, srvCtxCancel := context.WithCancel(ctx)
	defer srvCtxCancel()

	go func() {
		<-srvCtx.Done()

		timeoutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(timeoutCtx); err == context.DeadlineExceeded {
			slog.Error("HTTP server shutdown timeout exceeded, forcing shutdown...")
		}
		slog.Info("HTTP server stopped")
		close(idleConnsClosed)
	}()

	// Listen and serve until context is cancelled; then close gracefully connections
	slog.Info("Starting server", "address", s.ListenAddr)
	err := httpServer.ListenAndServe()
	srvCtxCancel()
	<-idleConnsClosed

	return err
}
