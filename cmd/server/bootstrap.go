package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/charlesng35/accountd/internal/api"
	"github.com/charlesng35/accountd/internal/app"
	"github.com/charlesng35/accountd/internal/app/maintenance"
	iauth "github.com/charlesng35/accountd/internal/auth"
	"github.com/charlesng35/accountd/internal/database"
	"github.com/charlesng35/accountd/internal/monitoring"
	"github.com/charlesng35/accountd/internal/monitoring/checks"
	"github.com/charlesng35/accountd/internal/services"
	"github.com/charlesng35/accountd/internal/store"
	"github.com/charlesng35/accountd/internal/store/document"
	"github.com/charlesng35/accountd/internal/store/relational"
	"github.com/charlesng35/accountd/pkg/metrics"
)

// sweepStaleAfter marks the revocation probe degraded when no sweep has
// completed for this long.
const sweepStaleAfter = time.Hour

// runtimeStack bundles long-lived services used by the HTTP server.
type runtimeStack struct {
	Stores      *store.Registry
	Revocations *iauth.Revocations
	Cleaner     *maintenance.Cleaner
	Health      *monitoring.HealthManager
	Router      *gin.Engine
}

// openStores connects both Credential Stores. Failure of either is fatal.
func openStores(ctx context.Context, cfg *app.Config, log *zap.Logger) (*store.Registry, error) {
	db, err := database.Open(database.Config{
		Driver:          "postgres",
		DSN:             cfg.Database.Postgres.URI,
		MaxOpenConns:    cfg.Database.Postgres.MaxOpenConns,
		MaxIdleConns:    cfg.Database.Postgres.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.Postgres.ConnMaxLifetime,
	})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := relational.InitSchema(ctx, db); err != nil {
		_ = database.Close(db)
		return nil, fmt.Errorf("initialise postgres schema: %w", err)
	}
	rel, err := relational.New(db)
	if err != nil {
		_ = database.Close(db)
		return nil, err
	}
	log.Info("postgres connected")

	doc, err := document.Open(ctx, document.Config{
		URI:            cfg.Database.Mongo.URI,
		Database:       cfg.Database.Mongo.Database,
		ConnectTimeout: cfg.Database.Mongo.ConnectTimeout,
	})
	if err != nil {
		return nil, multierr.Append(fmt.Errorf("open mongo: %w", err), rel.Close(ctx))
	}
	log.Info("mongo connected", zap.String("database", cfg.Database.Mongo.Database))

	return store.NewRegistry(map[string]store.Store{
		store.BackendPostgres: rel,
		store.BackendMongo:    doc,
	}), nil
}

// bootstrapRuntime wires services, background jobs, health probes and the
// HTTP router around an already opened store registry.
func bootstrapRuntime(cfg *app.Config, stores *store.Registry) (*runtimeStack, error) {
	stack := &runtimeStack{Stores: stores}
	success := false

	defer func() {
		if !success {
			stack.stopJobs(context.Background(), zap.NewNop())
		}
	}()

	// enable gin debug mod
	if debug, _ := os.LookupEnv("GIN_DEBUG"); debug != "true" {
		gin.SetMode(gin.ReleaseMode)
	}

	jwtSvc, err := iauth.NewJWTService(cfg.Auth.JWTServiceConfig())
	if err != nil {
		return nil, fmt.Errorf("initialise jwt service: %w", err)
	}

	stack.Revocations = iauth.NewRevocations(func(size int) {
		metrics.RevokedTokens.Set(float64(size))
	})

	accounts, err := services.NewAccountService(services.AccountServiceConfig{
		Hasher:      cfg.Auth.PasswordHasher(),
		Tokens:      jwtSvc,
		Revocations: stack.Revocations,
	})
	if err != nil {
		return nil, fmt.Errorf("initialise account service: %w", err)
	}

	stack.Cleaner = maintenance.NewCleaner(stack.Revocations,
		maintenance.WithSweepSchedule(cfg.Auth.SweepSchedule()))
	if err := stack.Cleaner.Start(); err != nil {
		return nil, fmt.Errorf("start maintenance jobs: %w", err)
	}

	stack.Health = monitoring.NewHealthManager()
	for _, name := range stores.Names() {
		st, err := stores.Get(name)
		if err != nil {
			return nil, err
		}
		stack.Health.Register(checks.Store(name, st, 0))
	}
	stack.Health.Register(checks.Revocations(stack.Revocations.Len, stack.Cleaner, sweepStaleAfter))

	stack.Router, err = api.NewRouter(api.Deps{
		Stores:      stores,
		JWT:         jwtSvc,
		Revocations: stack.Revocations,
		Accounts:    accounts,
		Directory:   services.NewDirectoryService(),
		Health:      stack.Health,
	})
	if err != nil {
		return nil, fmt.Errorf("build api router: %w", err)
	}

	success = true
	return stack, nil
}

func (s *runtimeStack) stopJobs(ctx context.Context, log *zap.Logger) {
	if s.Cleaner == nil {
		return
	}
	stopCtx := s.Cleaner.Stop()
	<-stopCtx.Done()
	if err := s.Cleaner.RunOnce(ctx); err != nil {
		log.Warn("maintenance shutdown cleanup failed", zap.Error(err))
	}
}

// Shutdown gracefully stops background jobs and releases both stores.
func (s *runtimeStack) Shutdown(ctx context.Context, log *zap.Logger) {
	if s == nil {
		return
	}

	s.stopJobs(ctx, log)

	if err := s.Stores.Close(ctx); err != nil {
		log.Warn("store shutdown", zap.Error(err))
	}
}
