package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/messageinabottle/golang_services/internal/platform/config"
	"github.com/messageinabottle/golang_services/internal/platform/database"
	"github.com/messageinabottle/golang_services/internal/platform/logger"
	"github.com/messageinabottle/golang_services/internal/web_service/adapters/http_clients"
	"github.com/messageinabottle/golang_services/internal/web_service/app"
	"github.com/messageinabottle/golang_services/internal/web_service/forms"
	"github.com/messageinabottle/golang_services/internal/web_service/session"
	httptransport "github.com/messageinabottle/golang_services/internal/web_service/transport/http"
)

const serviceName = "web_service"

func main() {
	cfg, err := config.Load(serviceName)
	if err != nil {
		slog.Error("Failed to load configuration", "service", serviceName, "error", err)
		os.Exit(1)
	}

	appLogger := logger.New(cfg.LogLevel)
	appLogger.Info("Web service starting...", "port", cfg.WebServicePort, "session_store", cfg.SessionStore)

	store, closeStore, err := newSessionStore(context.Background(), cfg, appLogger)
	if err != nil {
		appLogger.Error("Failed to set up session store", "backend", cfg.SessionStore, "error", err)
		os.Exit(1)
	}
	defer closeStore()

	sessions := session.NewManager(store, session.Options{
		CookieName: cfg.SessionCookieName,
		Secure:     cfg.SessionCookieSecure,
		TTL:        cfg.SessionTTL(),
	}, appLogger)

	users := http_clients.NewUserServiceClient(cfg.UsersMSURL, cfg.RequestsTimeout(), nil, appLogger)
	messages := http_clients.NewMessageServiceClient(cfg.MessagesMSURL, cfg.RequestsTimeout(), nil, appLogger)
	lottery := http_clients.NewLotteryServiceClient(cfg.LotteryMSURL, cfg.RequestsTimeout(), nil, appLogger)

	validate := forms.NewValidator(nil)
	renderer, err := httptransport.NewRenderer(appLogger)
	if err != nil {
		appLogger.Error("Failed to parse templates", "error", err)
		os.Exit(1)
	}

	composer := app.NewComposer(users, messages, appLogger)
	mailbox := app.NewMailbox(messages, cfg.MailboxPageSize, appLogger)

	handlers := httptransport.Handlers{
		Auth:    httptransport.NewAuthHandler(users, sessions, validate, renderer, appLogger),
		Users:   httptransport.NewUserHandler(users, sessions, validate, renderer, cfg.MaxUploadBytes, appLogger),
		Mailbox: httptransport.NewMailboxHandler(mailbox, renderer, appLogger),
		Message: httptransport.NewMessageHandler(composer, mailbox, messages, validate, renderer, cfg.MaxUploadBytes, time.Now, appLogger),
		Lottery: httptransport.NewLotteryHandler(lottery, validate, renderer, appLogger),
		Home:    httptransport.NewHomeHandler(mailbox, renderer, appLogger),
	}
	router := httptransport.NewRouter(httptransport.RouterConfig{
		Sessions:       sessions,
		UserLoader:     users,
		HandlerTimeout: cfg.HandlerTimeout(),
		Logger:         appLogger,
	}, handlers)

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.WebServicePort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	appLogger.Info(fmt.Sprintf("Web server listening on port %d", cfg.WebServicePort))
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error("HTTP server failed to serve", "error", err)
			os.Exit(1)
		}
	}()

	quitChan := make(chan os.Signal, 1)
	signal.Notify(quitChan, syscall.SIGINT, syscall.SIGTERM)
	receivedSignal := <-quitChan
	appLogger.Info("Shutdown signal received", "signal", receivedSignal.String())

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
	defer cancelShutdown()
	if err := httpServer.Shutdown(ctxShutdown); err != nil {
		appLogger.Error("HTTP server shutdown failed", "error", err)
	}
	appLogger.Info("Web service shut down successfully.")
}

// newSessionStore opens the configured session backend. The returned func
// releases its connections.
func newSessionStore(ctx context.Context, cfg *config.Config, log *slog.Logger) (session.Store, func(), error) {
	switch cfg.SessionStore {
	case config.SessionStoreRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, nil, fmt.Errorf("pinging redis: %w", err)
		}
		log.Info("Successfully connected to Redis", "addr", cfg.RedisAddr)
		return session.NewRedisStore(rdb), func() { _ = rdb.Close() }, nil

	case config.SessionStorePostgres:
		pool, err := database.NewDBPool(ctx, cfg.PostgresDSN, database.PoolOptions{
			MaxConns:        cfg.PostgresMaxConns,
			MinConns:        cfg.PostgresMinConns,
			MaxConnLifetime: cfg.PostgresMaxConnLifetime(),
			MaxConnIdleTime: cfg.PostgresMaxConnIdle(),
		})
		if err != nil {
			return nil, nil, err
		}
		store := session.NewPostgresStore(pool, log)
		if err := store.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		if n, err := store.DeleteExpired(ctx); err != nil {
			log.Warn("Failed to purge expired sessions", "error", err)
		} else if n > 0 {
			log.Info("Purged expired sessions", "count", n)
		}
		log.Info("Successfully connected to PostgreSQL database")
		return store, pool.Close, nil

	default:
		return session.NewMemoryStore(), func() {}, nil
	}
}
