package app

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"slices"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"evadmin/backend/libs/db"
	libredis "evadmin/backend/libs/redis"
	"evadmin/backend/services/admin-service/internal/auth"
	"evadmin/backend/services/admin-service/internal/catalog"
	appconfig "evadmin/backend/services/admin-service/internal/config"
	"evadmin/backend/services/admin-service/internal/dashboard"
	"evadmin/backend/services/admin-service/internal/feed"
	httpserver "evadmin/backend/services/admin-service/internal/http"
	"evadmin/backend/services/admin-service/internal/http/handlers"
	"evadmin/backend/services/admin-service/internal/http/middleware"
	"evadmin/backend/services/admin-service/internal/live"
	"evadmin/backend/services/admin-service/internal/mockdata"
	"evadmin/backend/services/admin-service/internal/models"
	"evadmin/backend/services/admin-service/internal/provider"
	"evadmin/backend/services/admin-service/internal/settings"
)

// App wires dependencies for the admin service.
type App struct {
	cfg       *appconfig.Config
	server    *httpserver.Server
	hub       *live.Hub
	bus       *feed.Bus
	registry  *catalog.Registry
	simulator *feed.Simulator
	redisFeed *feed.RedisBridge
	mqttFeed  *feed.MQTTBridge
	db        *sql.DB
	redis     *redis.Client
	logger    *zap.Logger
}

// New builds application graph.
func New(ctx context.Context, cfg *appconfig.Config, logger *zap.Logger) (*App, error) {
	a := &App{
		cfg:    cfg,
		bus:    feed.NewBus(logger),
		logger: logger,
	}

	if cfg.RedisEnabled() {
		client, err := libredis.NewClient(ctx, libredis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return nil, fmt.Errorf("app: connect redis: %w", err)
		}
		a.redis = client
	}

	hasher := auth.NewBcryptHasher(0)
	var admins auth.AdminRepository

	switch cfg.Data.Mode {
	case appconfig.ModePostgres:
		sqlDB, err := db.Open(ctx, cfg.Database.DSN, db.PoolOptions{MaxOpenConns: cfg.Database.MaxOpenConns})
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("app: connect postgres: %w", err)
		}
		a.db = sqlDB
		a.registry = a.postgresRegistry(sqlDB)
		admins = auth.NewPostgresAdmins(sqlDB)
	default:
		targets, registry := a.memoryRegistry(time.Now())
		a.registry = registry
		if cfg.SimulatorEnabled() {
			a.simulator = feed.NewSimulator(selectTargets(targets, cfg.Simulator.Entities),
				cfg.Simulator.Interval, cfg.Simulator.Batch, a.bus, logger)
		}
		seed, err := seedAdmin(cfg.Admin, hasher)
		if err != nil {
			a.Close()
			return nil, err
		}
		admins = auth.NewMemoryAdmins(seed)
	}

	var prefs settings.Store = settings.NewMemoryStore()
	if a.redis != nil {
		prefs = settings.NewRedisStore(a.redis)
		a.redisFeed = feed.NewRedisBridge(a.redis, a.bus, cfg.Redis.Channel, logger)
	}
	if cfg.MQTTEnabled() {
		a.mqttFeed = feed.NewMQTTBridge(feed.MQTTOptions{
			Broker:      cfg.MQTT.Broker,
			ClientID:    cfg.MQTT.ClientID,
			Username:    cfg.MQTT.Username,
			Password:    cfg.MQTT.Password,
			TopicPrefix: cfg.MQTT.TopicPrefix,
			QoS:         cfg.MQTT.QoS,
		}, a.applyStatus, a.bus, logger)
	}

	tokens := auth.NewTokenService(cfg.JWT.Secret, cfg.JWTExpiration())
	authSvc := auth.NewService(admins, hasher, tokens, logger)

	a.hub = live.NewHub(cfg.PingInterval())
	liveSrv := live.NewServer(a.hub, a.registry, a.bus, live.Options{
		PageSize:      cfg.Live.PageSize,
		FlushInterval: cfg.Live.FlushInterval,
		WriteTimeout:  cfg.WriteTimeout(),
	}, logger)

	entities := handlers.NewEntityHandlers(a.registry, logger)
	settingsHandlers := handlers.NewSettingsHandlers(prefs, logger)
	deps := httpserver.RouterDeps{
		Health:    handlers.NewHealthHandler(),
		Login:     handlers.NewLoginHandler(authSvc, logger),
		Dashboard: handlers.NewDashboardHandler(dashboard.NewService(a.registry), logger),
		Entities:  entities,
		Settings:  settingsHandlers,
		Pages:     handlers.NewPageHandlers(entities, settingsHandlers, logger),
		Live:      liveSrv.HandleWS,
	}

	router := httpserver.NewRouter(deps,
		middleware.AuthMiddleware(tokens, false),
		middleware.AuthMiddleware(tokens, true),
	)
	a.server = httpserver.NewServer(cfg.HTTPAddress(), router, logger,
		middleware.RecoveryMiddleware(logger),
		middleware.LoggingMiddleware(logger),
		middleware.RequestIDMiddleware,
	)

	logger.Info("admin service initialized",
		zap.String("data_mode", cfg.Data.Mode),
		zap.Strings("entities", a.registry.Names()),
		zap.Bool("redis", a.redis != nil),
		zap.Bool("mqtt", a.mqttFeed != nil),
		zap.Bool("simulator", a.simulator != nil),
	)
	return a, nil
}

// Handler exposes the HTTP handler with middlewares applied.
func (a *App) Handler() http.Handler {
	return a.server.Handler()
}

// Registry exposes the entity registry.
func (a *App) Registry() *catalog.Registry {
	return a.registry
}

// Run serves HTTP traffic and runs every update source until ctx is
// cancelled or the HTTP server fails. The Redis and MQTT bridges retry
// their connections in the background and never end Run on their own.
func (a *App) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return a.server.Run(ctx)
	})
	g.Go(func() error {
		a.hub.Start(ctx)
		return nil
	})
	if a.simulator != nil {
		g.Go(func() error {
			a.simulator.Run(ctx)
			return nil
		})
	}
	if a.redisFeed != nil {
		g.Go(func() error {
			return a.redisFeed.Run(ctx)
		})
	}
	if a.mqttFeed != nil {
		g.Go(func() error {
			return a.mqttFeed.Run(ctx)
		})
	}

	return g.Wait()
}

// Close releases acquired resources.
func (a *App) Close() {
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn("failed to close db", zap.Error(err))
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Warn("failed to close redis", zap.Error(err))
		}
	}
}

func (a *App) applyStatus(ctx context.Context, entity, id, status string) error {
	res, ok := a.registry.Lookup(entity)
	if !ok {
		return fmt.Errorf("unknown entity %q", entity)
	}
	return res.Apply(ctx, id, status)
}

func (a *App) memoryRegistry(now time.Time) ([]feed.Target, *catalog.Registry) {
	data := mockdata.Generate(a.cfg.Data.Seed, a.cfg.Data.Sizes, now)
	b := &binder{app: a, seed: a.cfg.Data.Seed}

	registry := catalog.NewRegistry(
		memoryResource(b, catalog.Stations(), data.Stations, mockdata.MutateStation),
		memoryResource(b, catalog.Devices(time.Now), data.Devices, mockdata.MutateDevice),
		memoryResource(b, catalog.Orders(), data.Orders, mockdata.MutateOrder),
		memoryResource(b, catalog.Users(), data.Users, mockdata.MutateUser),
		memoryResource(b, catalog.Transactions(), data.Transactions, mockdata.MutateTransaction),
		memoryResource(b, catalog.Maintenance(), data.Maintenance, mockdata.MutateMaintenance),
	)
	return b.targets, registry
}

func (a *App) postgresRegistry(sqlDB *sql.DB) *catalog.Registry {
	b := &binder{app: a}
	return catalog.NewRegistry(
		postgresResource(b, sqlDB, catalog.Stations(), provider.StationsTable),
		postgresResource(b, sqlDB, catalog.Devices(time.Now), provider.DevicesTable),
		postgresResource(b, sqlDB, catalog.Orders(), provider.OrdersTable),
		postgresResource(b, sqlDB, catalog.Users(), provider.UsersTable),
		postgresResource(b, sqlDB, catalog.Transactions(), provider.TransactionsTable),
		postgresResource(b, sqlDB, catalog.Maintenance(), provider.MaintenanceTable),
	)
}

// binder collects simulator targets while resources are registered.
type binder struct {
	app     *App
	seed    uint64
	targets []feed.Target
}

func memoryResource[R any](b *binder, def *catalog.Definition[R], records []R, mutate mockdata.Mutator[R]) catalog.Resource {
	mem := provider.NewMemory(def, records, mutate, b.seed+uint64(len(b.targets))+1)
	b.targets = append(b.targets, feed.Target{Entity: def.Name, Mutate: mem.MutateRandom})
	return bind(b, def, mem)
}

func postgresResource[R any](b *binder, sqlDB *sql.DB, def *catalog.Definition[R], table provider.Table[R]) catalog.Resource {
	return bind(b, def, provider.NewPostgres(sqlDB, def, table))
}

// bind wraps p in the Redis page cache when Redis is configured. Every
// update on the bus bumps the entity's cache generation.
func bind[R any](b *binder, def *catalog.Definition[R], p catalog.Provider[R]) catalog.Resource {
	a := b.app
	if a.redis != nil {
		cached := provider.NewCached(p, a.redis, def.Name, a.cfg.Redis.CacheTTL, a.logger)
		a.bus.Hook(def.Name, func(ctx context.Context, _ feed.Update) {
			cached.Invalidate(ctx)
		})
		p = cached
	}
	return catalog.NewResource(def, p, a.bus)
}

func selectTargets(targets []feed.Target, entities []string) []feed.Target {
	if len(entities) == 0 {
		return targets
	}
	out := make([]feed.Target, 0, len(entities))
	for _, t := range targets {
		if slices.Contains(entities, t.Entity) {
			out = append(out, t)
		}
	}
	return out
}

func seedAdmin(cfg appconfig.AdminConfig, hasher auth.Hasher) (models.Admin, error) {
	hash := cfg.PasswordHash
	if hash == "" {
		var err error
		hash, err = hasher.Hash(cfg.Password)
		if err != nil {
			return models.Admin{}, fmt.Errorf("app: hash admin password: %w", err)
		}
	} else if err := hasher.CheckHash(hash); err != nil {
		return models.Admin{}, fmt.Errorf("app: admin password hash: %w", err)
	}
	role := cfg.Role
	if role == "" {
		role = "admin"
	}
	return models.Admin{
		Username:     cfg.Username,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	}, nil
}
