package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/fTr0ut/ShelvesAI-sub003/internal/api"
	"github.com/fTr0ut/ShelvesAI-sub003/pkg/backend"
	"github.com/fTr0ut/ShelvesAI-sub003/pkg/cache"
	"github.com/fTr0ut/ShelvesAI-sub003/pkg/config"
	"github.com/fTr0ut/ShelvesAI-sub003/pkg/pipeline"
	"github.com/fTr0ut/ShelvesAI-sub003/pkg/store"
)

// shutdownTimeout bounds graceful drain of in-flight requests.
const shutdownTimeout = 10 * time.Second

// serveCommand creates the serve command for running the layout HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the shelf layout HTTP API",
		Long: `Run the shelf layout HTTP API.

The server exposes the layout pipeline over HTTP:

  POST /v1/layout                      compute a layout for an inline item list
  GET  /v1/shelves/{shelfID}/layout    fetch, lay out, and persist a shelf
  POST /v1/shelves/{shelfID}/refresh   recompute a shelf layout, bypassing caches
  GET  /healthz                        liveness probe

Storage and caching come from the config file: a Redis cache when
cache.redis.addr is set (a file cache otherwise), and a MongoDB store when
mongo.uri is set (an in-memory store otherwise).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, \":8080\")")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr string) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	if addr == "" {
		addr = cfg.Server.Addr
	}

	backendCache, err := c.serveCache(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initialize cache: %w", err)
	}
	defer backendCache.Close()

	shelfStore, err := c.serveStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initialize store: %w", err)
	}
	defer shelfStore.Close(context.Background())

	keyer := serveKeyer(cfg)
	client := backend.NewClient(cfg.Backend.BaseURL, backendCache, cfg.Cache.Duration(),
		backend.WithToken(cfg.Backend.Token),
		backend.WithKeyer(keyer))

	server := api.New(api.Options{
		Runner:  pipeline.NewRunner(backendCache, keyer, c.Logger),
		Store:   shelfStore,
		Backend: client,
		Logger:  c.Logger,
	})

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           server,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		c.Logger.Info("listening", "addr", addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	c.Logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// serveKeyer picks the cache key generator. A deployment with a backend
// token holds tenant-private shelves, so its cache keys are scoped by a hash
// of the token: instances sharing one Redis but using different credentials
// cannot serve each other's entries.
func serveKeyer(cfg config.Config) cache.Keyer {
	if cfg.Backend.Token == "" {
		return cache.NewDefaultKeyer()
	}
	scope := "tenant:" + cache.Hash([]byte(cfg.Backend.Token))[:12] + ":"
	return cache.NewScopedKeyer(cache.NewDefaultKeyer(), scope)
}

// serveCache picks the cache backend from config: Redis when an address is
// configured, a file cache otherwise.
func (c *CLI) serveCache(ctx context.Context, cfg config.Config) (cache.Cache, error) {
	if cfg.Cache.Redis.Addr != "" {
		c.Logger.Debug("using redis cache", "addr", cfg.Cache.Redis.Addr)
		return cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
		})
	}
	dir := cfg.Cache.Dir
	if dir == "" {
		d, err := cacheDir()
		if err != nil {
			return nil, err
		}
		dir = d
	}
	c.Logger.Debug("using file cache", "dir", dir)
	return cache.NewFileCache(dir)
}

// serveStore picks the shelf store from config: MongoDB when a URI is
// configured, in-memory otherwise.
func (c *CLI) serveStore(ctx context.Context, cfg config.Config) (store.Store, error) {
	if cfg.Mongo.URI != "" {
		c.Logger.Debug("using mongo store", "database", cfg.Mongo.Database)
		return store.NewMongoStore(ctx, store.MongoConfig{
			URI:      cfg.Mongo.URI,
			Database: cfg.Mongo.Database,
		})
	}
	c.Logger.Debug("using in-memory store")
	return store.NewMemoryStore(), nil
}
