// Package app wires configuration, storage, services and the HTTP server.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/appiso/access-control/internal/api"
	"github.com/appiso/access-control/internal/api/handler"
	"github.com/appiso/access-control/internal/api/metrics"
	"github.com/appiso/access-control/internal/api/middleware"
	"github.com/appiso/access-control/internal/core/domain"
	"github.com/appiso/access-control/internal/core/ports"
	"github.com/appiso/access-control/internal/core/service"
	"github.com/appiso/access-control/internal/infrastructure/config"
	mongostore "github.com/appiso/access-control/internal/infrastructure/db/mongo"
	redisstore "github.com/appiso/access-control/internal/infrastructure/db/redis"
	sqlitestore "github.com/appiso/access-control/internal/infrastructure/db/sqlite"
	"github.com/appiso/access-control/internal/infrastructure/lock"
	"github.com/appiso/access-control/internal/infrastructure/security"
)

const shutdownTimeout = 10 * time.Second

type Application struct {
	cfg     *config.Config
	echo    *echo.Echo
	log     zerolog.Logger
	limiter *middleware.IPRateLimiter
	closers []func(context.Context) error
}

type stores struct {
	accounts  ports.AccountRepository
	employees ports.EmployeeRepository
	probe     handler.Dependency
}

// New connects to the configured backends, seeds bootstrap data and builds
// the router. Everything opened before a failure is closed again.
func New(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Application, error) {
	a := &Application{cfg: cfg, log: log}

	st, err := a.openStore(ctx)
	if err != nil {
		a.close(ctx)
		return nil, err
	}
	probes := []handler.Dependency{st.probe}

	locker, redisProbe, err := a.openLocker(ctx)
	if err != nil {
		a.close(ctx)
		return nil, err
	}
	if redisProbe != nil {
		probes = append(probes, redisProbe)
	}

	hasher, err := security.NewHasher(cfg.Auth.PasswordHash, cfg.Auth.BcryptCost)
	if err != nil {
		a.close(ctx)
		return nil, fmt.Errorf("init password hasher: %w", err)
	}
	tokens, err := service.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if err != nil {
		a.close(ctx)
		return nil, fmt.Errorf("init token service: %w", err)
	}

	authService := service.NewAuthService(st.accounts, locker, hasher, tokens, cfg.LockoutPolicy(), log.With().Str("component", "auth").Logger()).
		WithObserver(metrics.NewLoginObserver())
	employeeService := service.NewEmployeeService(st.employees, log.With().Str("component", "employees").Logger())

	seeds := []service.AccountSeed{
		{Username: "security.admin", Password: cfg.Seed.AdminPassword, Role: domain.RoleAdminSecurity},
		{Username: "manager.general", Password: cfg.Seed.ManagerPassword, Role: domain.RoleManager},
	}
	if err := service.NewSeeder(authService, st.accounts, st.employees, log).Seed(ctx, seeds, service.DefaultEmployees); err != nil {
		a.close(ctx)
		return nil, fmt.Errorf("seed data: %w", err)
	}

	if cfg.Rate.LoginPerSecond > 0 {
		a.limiter = middleware.NewIPRateLimiter(cfg.Rate.LoginPerSecond, cfg.Rate.LoginBurst, 0)
	}

	a.echo = api.NewRouter(api.Dependencies{
		Auth:         authService,
		Employees:    employeeService,
		Tokens:       tokens,
		Authorizer:   service.NewAuthorizer(),
		LoginLimiter: a.limiter,
		Probes:       probes,
		Logger:       log,
	})

	return a, nil
}

func (a *Application) openStore(ctx context.Context) (stores, error) {
	switch a.cfg.Store.Driver {
	case config.StoreSQLite:
		db, err := sqlitestore.Open(a.cfg.SQLite.Path)
		if err != nil {
			return stores{}, fmt.Errorf("init sqlite: %w", err)
		}
		a.closers = append(a.closers, func(context.Context) error { return db.Close() })
		a.log.Info().Str("path", a.cfg.SQLite.Path).Msg("using sqlite store")
		return stores{
			accounts:  sqlitestore.NewAccountRepository(db),
			employees: sqlitestore.NewEmployeeRepository(db),
			probe:     sqlitestore.NewPinger(db),
		}, nil

	default:
		client, db, err := mongostore.Connect(ctx, mongostore.Config{
			URI:      a.cfg.Mongo.URI,
			Database: a.cfg.Mongo.Database,
		})
		if err != nil {
			return stores{}, fmt.Errorf("init mongo: %w", err)
		}
		a.closers = append(a.closers, client.Disconnect)

		accounts := mongostore.NewAccountRepository(db)
		if err := accounts.EnsureIndexes(ctx); err != nil {
			return stores{}, fmt.Errorf("init mongo indexes: %w", err)
		}
		a.log.Info().Str("database", a.cfg.Mongo.Database).Msg("using mongo store")
		return stores{
			accounts:  accounts,
			employees: mongostore.NewEmployeeRepository(db),
			probe:     mongostore.NewPinger(db),
		}, nil
	}
}

func (a *Application) openLocker(ctx context.Context) (ports.AccountLocker, handler.Dependency, error) {
	if a.cfg.Lock.Backend != config.LockRedis {
		return lock.NewStriped(0), nil, nil
	}

	client, err := redisstore.Connect(ctx, redisstore.Config{
		Addr:     a.cfg.Redis.Addr,
		Password: a.cfg.Redis.Password,
		DB:       a.cfg.Redis.DB,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("init redis: %w", err)
	}
	a.closers = append(a.closers, func(context.Context) error { return client.Close() })
	a.log.Info().Str("addr", a.cfg.Redis.Addr).Msg("using redis account lock")

	return redisstore.NewAccountLocker(client, a.cfg.Lock.TTL), redisstore.NewPinger(client), nil
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (a *Application) Run(ctx context.Context) error {
	defer a.close(context.Background())

	if a.limiter != nil {
		go a.sweepLimiter(ctx)
	}

	errCh := make(chan error, 1)
	go func() {
		addr := ":" + a.cfg.Port
		a.log.Info().Str("addr", addr).Msg("http server listening")
		if err := a.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	a.log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := a.echo.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}

func (a *Application) sweepLimiter(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := a.limiter.Sweep(now); n > 0 {
				a.log.Debug().Int("dropped", n).Msg("swept idle login rate limiters")
			}
		}
	}
}

func (a *Application) close(ctx context.Context) {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			a.log.Warn().Err(err).Msg("closing resource")
		}
	}
	a.closers = nil
}
