// Package bootstrap assembles the stores and collaborators selected by configuration.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"nestaway/internal/cache"
	"nestaway/internal/config"
	"nestaway/internal/database"
	"nestaway/internal/mailer"
	"nestaway/internal/middleware"
	"nestaway/internal/repository"
	"nestaway/internal/seed"
	"nestaway/internal/server"
	"nestaway/internal/storage"
	"nestaway/internal/verification"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"gorm.io/gorm"
)

// listingPageTTL bounds how stale a cached search page can be on other instances.
const listingPageTTL = 30 * time.Second

// Options control runtime initialization behavior.
type Options struct {
	// SeedDemo fills an empty catalogue with demo data. Ignored in production.
	SeedDemo bool
}

// Runtime owns every connection opened for a process.
type Runtime struct {
	Config     *config.Config
	DB         *gorm.DB
	Mongo      *mongo.Database
	Redis      *redis.Client
	Users      repository.UserRepository
	Properties repository.PropertyRepository
	Codes      verification.Registry
	Mail       mailer.Sender
	Storage    storage.ObjectStorage
	Pages      *cache.ListingCache

	store   server.Pinger
	closers []func(ctx context.Context) error
}

// InitStores connects the primary store selected by DB_DRIVER and Redis. It is
// enough for the admin and seed tools.
func InitStores(ctx context.Context, cfg *config.Config) (*Runtime, error) {
	rt := &Runtime{Config: cfg}

	switch cfg.DBDriver {
	case "mongo":
		client, db, err := database.ConnectMongo(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("mongo connection failed: %w", err)
		}
		rt.Mongo = db
		rt.Users = repository.NewMongoUserRepository(db)
		rt.Properties = repository.NewMongoPropertyRepository(db)
		rt.store = mongoPinger{client: client}
		rt.onClose(func(ctx context.Context) error { return client.Disconnect(ctx) })
	default:
		db, err := database.Connect(cfg)
		if err != nil {
			return nil, fmt.Errorf("database connection failed: %w", err)
		}
		rt.DB = db
		rt.Users = repository.NewUserRepository(db)
		rt.Properties = repository.NewPropertyRepository(db)
		rt.store = sqlPinger{db: db}
		rt.onClose(func(context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		})
	}

	// A nil client leaves Redis-backed features disabled.
	cache.InitRedis(cfg.RedisURL)
	rt.Redis = cache.GetClient()
	if rt.Redis != nil {
		rdb := rt.Redis
		rt.onClose(func(context.Context) error { return rdb.Close() })
	}

	return rt, nil
}

// InitRuntime connects everything the API server needs.
func InitRuntime(ctx context.Context, cfg *config.Config, opts Options) (*Runtime, error) {
	rt, err := InitStores(ctx, cfg)
	if err != nil {
		return nil, err
	}
	fail := func(err error) (*Runtime, error) {
		_ = rt.Close(context.Background())
		return nil, err
	}

	switch {
	case cfg.VerificationStore == "redis" && rt.Redis != nil:
		rt.Codes = verification.NewRedisRegistry(rt.Redis)
	case cfg.VerificationStore == "redis" && cfg.IsProduction():
		return fail(errors.New("VERIFICATION_STORE=redis but redis is unreachable"))
	default:
		if cfg.VerificationStore == "redis" {
			middleware.Logger.Warn("redis unreachable, keeping verification codes in memory")
		}
		mem := verification.NewMemoryRegistry()
		rt.Codes = mem
		rt.onClose(func(context.Context) error { mem.Stop(); return nil })
	}

	rt.Mail, err = mailer.New(cfg)
	if err != nil {
		return fail(fmt.Errorf("mailer: %w", err))
	}
	if c, ok := rt.Mail.(io.Closer); ok {
		rt.onClose(func(context.Context) error { return c.Close() })
	}

	rt.Storage, err = storage.New(ctx, cfg)
	if err != nil {
		return fail(fmt.Errorf("storage: %w", err))
	}

	rt.Pages = cache.NewMemcachedListingCache(cfg.MemcachedServers(), listingPageTTL)
	rt.onClose(func(context.Context) error { rt.Pages.Stop(); return nil })

	if opts.SeedDemo && !cfg.IsProduction() {
		if err := seedIfEmpty(ctx, rt); err != nil {
			return fail(err)
		}
	}

	return rt, nil
}

// Deps exposes the runtime as server dependencies.
func (rt *Runtime) Deps() server.Deps {
	d := server.Deps{
		Users:      rt.Users,
		Properties: rt.Properties,
		Codes:      rt.Codes,
		Mail:       rt.Mail,
		Storage:    rt.Storage,
		Pages:      rt.Pages,
		Redis:      rt.Redis,
		Store:      rt.store,
	}
	if local, ok := rt.Storage.(*storage.LocalStorage); ok {
		d.MediaRoot = local.Root()
	}
	return d
}

// Close releases connections in reverse order of creation.
func (rt *Runtime) Close(ctx context.Context) error {
	var errs []error
	for i := len(rt.closers) - 1; i >= 0; i-- {
		if err := rt.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	rt.closers = nil
	return errors.Join(errs...)
}

func (rt *Runtime) onClose(fn func(ctx context.Context) error) {
	rt.closers = append(rt.closers, fn)
}

func seedIfEmpty(ctx context.Context, rt *Runtime) error {
	_, total, err := rt.Properties.List(ctx, repository.PropertyFilter{Page: 1, Limit: 1})
	if err != nil {
		return fmt.Errorf("check catalogue: %w", err)
	}
	if total > 0 {
		return nil
	}
	middleware.Logger.Info("empty catalogue, seeding demo data")
	if _, err := seed.Seed(ctx, rt.Users, rt.Properties, seed.DefaultOptions()); err != nil {
		return fmt.Errorf("seed demo data: %w", err)
	}
	return nil
}

type sqlPinger struct{ db *gorm.DB }

func (p sqlPinger) Ping(ctx context.Context) error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

type mongoPinger struct{ client *mongo.Client }

func (p mongoPinger) Ping(ctx context.Context) error {
	return p.client.Ping(ctx, readpref.Primary())
}

