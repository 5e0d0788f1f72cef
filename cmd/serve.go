package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmehdipour/dialer/internal/ai"
	"github.com/jmehdipour/dialer/internal/config"
	"github.com/jmehdipour/dialer/internal/db"
	httpSrv "github.com/jmehdipour/dialer/internal/http"
	"github.com/jmehdipour/dialer/internal/interpreter"
	"github.com/jmehdipour/dialer/internal/logger"
	"github.com/jmehdipour/dialer/internal/logstore"
	"github.com/jmehdipour/dialer/internal/telephony"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the dialer web panel",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		logger.Init(cfg.Log.Level)
		defer logger.Sync()

		store, closeStore, err := openStore(cfg)
		if err != nil {
			return fmt.Errorf("open call log store: %w", err)
		}
		defer closeStore()

		var redisClient *redis.Client
		if cfg.Redis.Addr != "" {
			redisClient, err = db.NewRedisClient(db.RedisOpts{
				Addr:        cfg.Redis.Addr,
				Password:    cfg.Redis.Password,
				DB:          cfg.Redis.DB,
				DialTimeout: cfg.Redis.DialTimeout,
			})
			if err != nil {
				return fmt.Errorf("redis connect: %w", err)
			}
			defer func() { _ = redisClient.Close() }()
		}

		provider := telephony.NewTwilioClient(cfg.Twilio, telephony.Say{
			Message:  cfg.Call.Message,
			Voice:    cfg.Call.Voice,
			Language: cfg.Call.Language,
		})
		if !provider.Configured() {
			log.Printf("twilio credentials not configured; call attempts will fail until they are set")
		}

		server := httpSrv.NewServer(httpSrv.Deps{
			Config:   cfg,
			Provider: provider,
			Store:    store,
			Commands: buildCommandChain(cfg),
			Redis:    redisClient,
		})

		errCh := make(chan error, 1)
		go func() {
			log.Printf("starting http on %s", cfg.HTTP.Addr)
			errCh <- server.Start(cfg.HTTP.Addr)
		}()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-sigCh:
			log.Printf("signal received: %s, shutting down...", sig)
		case err := <-errCh:
			if err != nil {
				log.Printf("http server exited: %v", err)
			}
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(ctx)

		return nil
	},
}

// openStore picks the call-log backend from config.
func openStore(cfg config.Config) (logstore.Store, func(), error) {
	switch cfg.Store.Backend {
	case "", "file":
		path := cfg.Store.File.Path
		if path == "" {
			path = "calls.json"
		}
		return logstore.NewFileStore(path), func() {}, nil
	case "mysql":
		sqlDB, err := db.NewMySQLConnection(cfg.Store.MySQL.DSN, db.MySQLOpts{
			MaxOpenConns:    cfg.Store.MySQL.MaxOpenConns,
			MaxIdleConns:    cfg.Store.MySQL.MaxIdleConns,
			ConnMaxLifetime: cfg.Store.MySQL.ConnMaxLifetime,
			ConnMaxIdleTime: cfg.Store.MySQL.ConnMaxIdleTime,
			PingTimeout:     cfg.Store.MySQL.PingTimeout,
		})
		if err != nil {
			return nil, nil, err
		}
		return logstore.NewMySQLStore(sqlDB), func() { _ = sqlDB.Close() }, nil
	case "memory":
		return logstore.NewMemoryStore(), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

// buildCommandChain assembles the resolvers: the AI service first when one
// is configured, guarded by a breaker, then the deterministic fallback.
func buildCommandChain(cfg config.Config) *interpreter.Chain {
	fallback := interpreter.RegexResolver{}

	client := ai.FromConfig(cfg.AI)
	if client == nil {
		return interpreter.NewChain(fallback)
	}

	guarded := interpreter.Guarded(
		interpreter.NewAIResolver(client),
		cfg.AI.Breaker.FailThreshold,
		time.Duration(cfg.AI.Breaker.OpenForMs)*time.Millisecond,
	)
	return interpreter.NewChain(guarded, fallback)
}
