// Package aviary собирает приложение ассоциации: хранилище, кэш отчётов,
// публикацию событий, сервисы и HTTP-сервер.
package aviary

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/aviary/internal/cache"
	"github.com/magabrotheeeer/aviary/internal/config"
	"github.com/magabrotheeeer/aviary/internal/events"
	"github.com/magabrotheeeer/aviary/internal/lib/jwt"
	"github.com/magabrotheeeer/aviary/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/aviary/internal/lib/sl"
	"github.com/magabrotheeeer/aviary/internal/migrations"
	"github.com/magabrotheeeer/aviary/internal/services/account"
	"github.com/magabrotheeeer/aviary/internal/services/catalog"
	"github.com/magabrotheeeer/aviary/internal/services/members"
	"github.com/magabrotheeeer/aviary/internal/services/membership"
	"github.com/magabrotheeeer/aviary/internal/services/reports"
	"github.com/magabrotheeeer/aviary/internal/storage"
)

// reportCache объединяет чтение отчёта и его сброс.
type reportCache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Invalidate(ctx context.Context, keys ...string) error
}

// Services: сервисы, которые обслуживают HTTP-маршруты.
type Services struct {
	Account    *account.Service
	Membership *membership.Service
	Members    *members.Service
	Reports    *reports.Service
	Catalog    *catalog.Service
}

type App struct {
	server *http.Server
	logger *slog.Logger
	db     *storage.Storage
	closer []func() error
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := storage.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	app := &App{logger: logger, db: db}

	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		app.close()
		return nil, err
	}

	var rc reportCache = cache.Noop{}
	if cfg.RedisAddress != "" {
		redisCache, err := cache.InitServer(ctx, cfg.RedisConnection)
		if err != nil {
			app.close()
			return nil, err
		}
		rc = redisCache
		app.closer = append(app.closer, redisCache.Close)
	} else {
		logger.Warn("redis address is empty, report cache disabled")
	}

	var publisher events.Publisher = events.Noop{}
	if cfg.RabbitURL != "" {
		conn, err := rabbitmq.Connect(cfg.RabbitURL, cfg.RetryAttempts, cfg.RetryDelay)
		if err != nil {
			app.close()
			return nil, err
		}
		app.closer = append(app.closer, conn.Close)
		ch, err := rabbitmq.SetupChannel(conn, cfg.Exchange, events.Queues())
		if err != nil {
			app.close()
			return nil, err
		}
		app.closer = append(app.closer, ch.Close)
		publisher = events.NewAMQPPublisher(ch, cfg.Exchange)
		watchConnection(logger, conn)
	} else {
		logger.Warn("rabbitmq url is empty, domain events disabled")
	}

	tokens := jwt.NewMaker(cfg.JWTSecretKey, cfg.TokenTTL)
	services := Services{
		Account:    account.New(logger, db, tokens, rc, publisher),
		Membership: membership.New(logger, db, rc, publisher),
		Members:    members.New(logger, db, publisher),
		Reports:    reports.New(logger, db, rc, cfg.ReportTTL),
		Catalog:    catalog.New(logger, db, rc),
	}

	if err = services.Account.EnsureAdmin(ctx, cfg.BootstrapAdmin); err != nil {
		app.close()
		return nil, err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewDBStatsCollector(db.DB, "aviary"),
	)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, RouteDeps{
		Services: services,
		DB:       db,
		Registry: reg,
		HTTP:     cfg.HTTPServer,
	})

	app.server = &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return app, nil
}

func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		a.close()
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		a.close()
		return err
	}
}

// close освобождает ресурсы в обратном порядке открытия.
func (a *App) close() {
	for i := len(a.closer) - 1; i >= 0; i-- {
		if err := a.closer[i](); err != nil {
			a.logger.Warn("failed to close resource", sl.Err(err))
		}
	}
	a.closer = nil
	if err := a.db.Close(); err != nil {
		a.logger.Warn("failed to close database", sl.Err(err))
	}
}

// watchConnection пишет в лог обрыв соединения с брокером.
func watchConnection(logger *slog.Logger, conn *amqp.Connection) {
	closed := conn.NotifyClose(make(chan *amqp.Error, 1))
	go func() {
		if err, ok := <-closed; ok && err != nil {
			logger.Error("rabbitmq connection lost", slog.String("reason", err.Reason), slog.Int("code", err.Code))
		}
	}()
}
