package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/iliyamo/wedding-guests/internal/config"
	"github.com/iliyamo/wedding-guests/internal/database"
	"github.com/iliyamo/wedding-guests/internal/handler"
	"github.com/iliyamo/wedding-guests/internal/logger"
	"github.com/iliyamo/wedding-guests/internal/mediacache"
	"github.com/iliyamo/wedding-guests/internal/middleware"
	"github.com/iliyamo/wedding-guests/internal/queue"
	"github.com/iliyamo/wedding-guests/internal/repository"
	"github.com/iliyamo/wedding-guests/internal/router"
	"github.com/iliyamo/wedding-guests/internal/service"
	"github.com/iliyamo/wedding-guests/internal/storage"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, config.Load())
		},
	}
}

func serve(ctx context.Context, cfg config.Config) error {
	logger.Init(cfg.Env == "dev")
	log := logger.With("env", cfg.Env)

	db, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	objects, err := storage.NewS3Store(ctx, cfg.Storage)
	if err != nil {
		return err
	}

	rdb := openRedis(ctx)
	if rdb != nil {
		defer rdb.Close()
	}
	cacheCfg := config.LoadCacheConfig()
	publisher := changePublisher(rdb, cacheCfg, config.BrokerEnabled())

	svc := service.NewGuestService(
		repository.NewGuestRepo(db, cfg.DBDriver),
		objects,
		publisher,
		service.Options{PublicBase: cfg.Storage.PublicBase, PhotoMaxDim: cfg.PhotoMaxDim},
	)

	var mc *mediacache.Cache
	if mcfg := config.LoadMediaCacheConfig(); mcfg.Enabled {
		mc = mediaCache(ctx, rdb, mcfg)
	}
	rl := config.LoadRateLimitConfig()

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.RequestID(), middleware.RequestLog(), echomw.Recover())

	router.RegisterRoutes(e)
	router.RegisterPublic(e, handler.NewPublicHandler(svc), middleware.NewRedisCache(cacheCfg, rdb))
	router.RegisterAdmin(e,
		handler.NewAdminHandler(svc, cfg.UploadMaxBytes),
		&handler.SessionHandler{
			Secret:       cfg.AdminSecret,
			SecretBcrypt: cfg.AdminSecretBcrypt,
			JWTSecret:    cfg.JWTSecret,
			TTL:          cfg.SessionTTL(),
		},
		middleware.AdminAuthConfig{
			Secret:       cfg.AdminSecret,
			SecretBcrypt: cfg.AdminSecretBcrypt,
			JWTSecret:    cfg.JWTSecret,
		},
		router.AdminLimits{
			Session: middleware.AdminRateLimit(rl, middleware.ScopeSession, rdb),
			Write:   middleware.AdminRateLimit(rl, middleware.ScopeWrite, rdb),
		},
	)
	router.RegisterMedia(e, handler.NewMediaHandler(objects, mc))

	addr := ":" + cfg.Port
	errc := make(chan error, 1)
	go func() {
		log.Infow("listening", "addr", addr, "db_driver", cfg.DBDriver)
		errc <- e.Start(addr)
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	log.Infow("shutting down")
	return e.Shutdown(shutdownCtx)
}

func openDB(cfg config.Config) (*sql.DB, error) {
	return database.Open(database.Params{
		Driver:  cfg.DBDriver,
		User:    cfg.DBUser,
		Pass:    cfg.DBPass,
		Host:    cfg.DBHost,
		Port:    cfg.DBPort,
		Name:    cfg.DBName,
		SSLMode: cfg.DBSSL,
	})
}

// openRedis connects to the optional Redis server.  Without it the response
// cache and the rate limiter pass through and the media cache stays in
// process.
func openRedis(ctx context.Context) *redis.Client {
	rc := config.LoadRedisConfig()
	rdb, err := rc.Connect(ctx)
	if err != nil {
		logger.L().Warnw("redis unavailable; response cache, rate limit and shared media cache disabled", "error", err)
		return nil
	}
	return rdb
}

// cachePurger drops cached guest lists.  As an EventPublisher it purges on
// every change announced by this process.
type cachePurger struct {
	rdb    *redis.Client
	prefix string
}

func (p cachePurger) purge(ctx context.Context) error {
	n, err := middleware.PurgeCache(ctx, p.rdb, p.prefix)
	if n > 0 {
		logger.L().Debugw("guest cache purged", "keys", n)
	}
	return err
}

func (p cachePurger) PublishGuestChanged(ctx context.Context, _ queue.GuestChangedEvent) error {
	return p.purge(ctx)
}

// changePublisher picks where guest changes go.  Without a broker the event
// is applied inline: cache purge plus change log.  With a broker the server
// still purges its cache at once and the consume command keeps the log.
func changePublisher(rdb *redis.Client, cacheCfg config.CacheConfig, broker bool) service.EventPublisher {
	purger := cachePurger{rdb: rdb, prefix: cacheCfg.Prefix}
	if !broker {
		return &queue.Handler{Purge: purger.purge}
	}
	return service.Publishers{purger, &service.RabbitPublisher{URL: config.BrokerURL()}}
}

func mediaCache(ctx context.Context, rdb *redis.Client, mcfg config.MediaCacheConfig) *mediacache.Cache {
	var store mediacache.Store = mediacache.NewMemoryStore()
	if rdb != nil {
		store = mediacache.NewRedisStore(rdb, "mediacache", mcfg.TTL)
	}
	mc := mediacache.New(store, mcfg)
	dropped, err := mc.Activate(ctx)
	if err != nil {
		logger.L().Warnw("media cache activation failed", "error", err)
	} else if len(dropped) > 0 {
		logger.L().Infow("stale media cache generations dropped", "generations", dropped)
	}
	return mc
}
