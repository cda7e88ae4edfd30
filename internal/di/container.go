package di

import (
	"context"
	"log/slog"

	"github.com/go-telegram/bot"
	challengeService "github.com/rossnomann/terminator/internal/modules/challenge/service"
	snapshotRepo "github.com/rossnomann/terminator/internal/modules/snapshot/repository"
	snapshotService "github.com/rossnomann/terminator/internal/modules/snapshot/service"
	"github.com/rossnomann/terminator/internal/shared/config"
	httpServer "github.com/rossnomann/terminator/internal/transport/http"
	telegramTransport "github.com/rossnomann/terminator/internal/transport/telegram"
	"github.com/samber/do/v2"
	"github.com/samber/oops"
)

// Setup initializes the dependency injection container
func Setup() (do.Injector, error) {
	injector := do.New()

	// Register Config
	do.Provide(injector, func(i do.Injector) (*config.Config, error) {
		cfg, err := config.Load()
		if err != nil {
			return nil, oops.With("context", "failed to load config").Wrap(err)
		}
		return cfg, nil
	})

	// Register Snapshot Repository
	do.Provide(injector, func(i do.Injector) (snapshotRepo.Repository, error) {
		cfg := do.MustInvoke[*config.Config](i)
		switch cfg.StorageBackend {
		case config.StorageRedis:
			return snapshotRepo.NewRedisStorage(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB), nil
		default:
			repo, err := snapshotRepo.NewFileStorage(cfg.StoragePath)
			if err != nil {
				return nil, oops.With("storage_path", cfg.StoragePath, "context", "failed to initialize snapshot repository").Wrap(err)
			}
			return repo, nil
		}
	})

	// Register Snapshot Service
	do.Provide(injector, func(i do.Injector) (*snapshotService.Service, error) {
		cfg := do.MustInvoke[*config.Config](i)
		repo := do.MustInvoke[snapshotRepo.Repository](i)
		return snapshotService.New(repo, cfg.SnapshotLifetime, cfg.SnapshotSweepInterval), nil
	})

	// Register Telegram Gateway
	do.Provide(injector, func(i do.Injector) (*telegramTransport.Gateway, error) {
		return telegramTransport.NewGateway(), nil
	})

	// Register Challenge Service
	do.Provide(injector, func(i do.Injector) (*challengeService.Service, error) {
		cfg := do.MustInvoke[*config.Config](i)
		gateway := do.MustInvoke[*telegramTransport.Gateway](i)
		snapshots := do.MustInvoke[*snapshotService.Service](i)
		return challengeService.New(cfg, gateway, snapshots), nil
	})

	// Register Telegram Handler
	do.Provide(injector, func(i do.Injector) (*telegramTransport.Handler, error) {
		challenges := do.MustInvoke[*challengeService.Service](i)
		return telegramTransport.New(challenges), nil
	})

	// Register HTTP Server
	do.Provide(injector, func(i do.Injector) (*httpServer.Server, error) {
		cfg := do.MustInvoke[*config.Config](i)
		server := httpServer.New(cfg)
		server.SetLogger(slog.Default())
		return server, nil
	})

	// Register Bot (needs to be initialized after handlers are ready)
	do.Provide(injector, func(i do.Injector) (*bot.Bot, error) {
		cfg := do.MustInvoke[*config.Config](i)
		handler := do.MustInvoke[*telegramTransport.Handler](i)

		opts := []bot.Option{
			bot.WithDefaultHandler(handler.HandleUpdate),
		}
		if cfg.TelegramAPIURL != "" {
			opts = append(opts, bot.WithServerURL(cfg.TelegramAPIURL))
		}

		b, err := bot.New(cfg.TelegramBotToken, opts...)
		if err != nil {
			return nil, oops.With("context", "failed to create telegram bot").Wrap(err)
		}

		// Attach the bot where construction order forbids direct injection
		gateway := do.MustInvoke[*telegramTransport.Gateway](i)
		gateway.SetBot(b)

		server := do.MustInvoke[*httpServer.Server](i)
		server.SetBot(b)

		return b, nil
	})

	return injector, nil
}

// Shutdown gracefully shuts down all services
func Shutdown(injector do.Injector) error {
	ctx := context.Background()

	// Shutdown bot if it exists
	if b, err := do.Invoke[*bot.Bot](injector); err == nil && b != nil {
		b.Close(ctx)
	}

	// Stop in-flight challenges, then the snapshot sweep
	if challenges, err := do.Invoke[*challengeService.Service](injector); err == nil && challenges != nil {
		challenges.Stop()
	}
	if snapshots, err := do.Invoke[*snapshotService.Service](injector); err == nil && snapshots != nil {
		snapshots.Stop()
	}

	return nil
}
