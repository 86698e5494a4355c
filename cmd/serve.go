package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/desertthunder/compilations/internal/filters"
	"github.com/desertthunder/compilations/internal/server"
	"github.com/desertthunder/compilations/internal/services"
	"github.com/desertthunder/compilations/internal/session"
	"github.com/desertthunder/compilations/internal/shared"
	"github.com/redis/go-redis/v9"
	"github.com/urfave/cli/v3"
)

const (
	shutdownTimeout = 10 * time.Second
	sweepInterval   = time.Minute
	redisPingWait   = 5 * time.Second
)

// Serve wires the services from config and runs the HTTP server until SIGINT or SIGTERM.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := config.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := r.sessionStore(ctx, config.Session)
	if err != nil {
		return err
	}
	defer closeStore()

	opts, err := r.serverOptions(config, store)
	if err != nil {
		return err
	}
	if addr := cmd.String("addr"); addr != "" {
		host, port, err := splitAddr(addr)
		if err != nil {
			return err
		}
		opts.Config.Host, opts.Config.Port = host, port
	}

	srv := server.New(opts)
	errs := make(chan error, 1)
	go func() { errs <- srv.Start() }()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Stop(shutdownCtx)
}

// serverOptions builds every service the HTTP layer depends on.
func (r *Runner) serverOptions(config *shared.Config, store session.Store) (server.Options, error) {
	registry, err := filters.FromConfig(config.Rules)
	if err != nil {
		return server.Options{}, err
	}
	if registry.Len() == 0 {
		r.logger.Warn("no filter rules configured, every listing will be empty")
	}

	client := r.client(config)

	auth, err := services.NewOAuthManager(services.OAuthOpts{
		ClientID:     config.Reddit.ClientID,
		ClientSecret: config.Reddit.ClientSecret,
		Scopes:       config.Reddit.Scopes,
		AuthURL:      config.Reddit.AuthURL,
		TokenURL:     config.Reddit.TokenURL,
		UserAgent:    config.Reddit.UserAgent,
		HTTPClient:   client,
	})
	if err != nil {
		return server.Options{}, err
	}

	api := services.NewAPIService(config.Reddit.APIBase, client)
	api.SetUserAgent(config.Reddit.UserAgent)
	api.SetRateLimit(config.Reddit.RequestRate(), config.Reddit.RateBurst)

	reddit, err := services.NewRedditService(services.RedditOpts{
		API:     api,
		User:    config.Reddit.User,
		Filters: registry,
		Logger:  r.logger,
	})
	if err != nil {
		return server.Options{}, err
	}

	return server.Options{
		Config:   config.Server,
		Auth:     auth,
		Library:  reddit,
		Resolver: services.NewResolver(client, registry, r.logger),
		Sessions: store,
		Logger:   r.logger,
	}, nil
}

// sessionStore opens the configured backend. The returned func releases it.
//
// The memory backend is swept in the background until ctx is done.
func (r *Runner) sessionStore(ctx context.Context, config shared.SessionConfig) (session.Store, func(), error) {
	switch config.Backend {
	case shared.SessionBackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     config.RedisAddr,
			Password: config.RedisPassword,
			DB:       config.RedisDB,
		})
		store := session.NewRedisStore(client, config.Prefix)

		pingCtx, cancel := context.WithTimeout(ctx, redisPingWait)
		defer cancel()
		if err := store.Ping(pingCtx); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("%w: redis unavailable at %s: %v", shared.ErrInvalidConfig, config.RedisAddr, err)
		}

		r.logger.Info("using redis session store", "addr", config.RedisAddr, "db", config.RedisDB)
		return store, func() { client.Close() }, nil
	default:
		store := session.NewMemoryStore()
		go r.sweep(ctx, store)
		r.logger.Info("using in-memory session store")
		return store, func() {}, nil
	}
}

func (r *Runner) sweep(ctx context.Context, store *session.MemoryStore) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := store.Sweep(); n > 0 {
				r.logger.Debug("expired sessions removed", "count", n)
			}
		}
	}
}

func splitAddr(addr string) (string, int, error) {
	host, rawPort, err := net.SplitHostPort(addr)
	if err != nil {
		return "", 0, fmt.Errorf("%w: addr %q: %v", shared.ErrInvalidArgument, addr, err)
	}
	port, err := strconv.Atoi(rawPort)
	if err != nil || port < 0 || port > 65535 {
		return "", 0, fmt.Errorf("%w: addr %q has an invalid port", shared.ErrInvalidArgument, addr)
	}
	return host, port, nil
}
