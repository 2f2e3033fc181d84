package common

import (
	"context"
	"fmt"
	"log"
	"strings"

	"club-points-ledger/internal/api"
	"club-points-ledger/internal/club"
	"club-points-ledger/internal/database"
	"club-points-ledger/internal/formance"
	"club-points-ledger/internal/ledger"
	"club-points-ledger/internal/models"
	"club-points-ledger/internal/mq"
	"club-points-ledger/internal/objectstore"
	"club-points-ledger/internal/relay"
	"club-points-ledger/internal/scheduler"

	"go.uber.org/zap"
)

type Services struct {
	DbService     *database.Service
	ClubService   *club.Service
	LedgerService *api.LedgerService
	Storage       *objectstore.Storage
	Broker        mq.Backend
	Mirror        *formance.Service
	Relay         *relay.Relay
	Scheduler     *scheduler.Scheduler
}

func InitializeLogger() (*zap.Logger, func()) {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	zap.ReplaceGlobals(logger)

	cleanup := func() {
		if err := logger.Sync(); err != nil {
			if !isIgnorableSyncError(err) {
				log.Printf("Failed to sync logger: %v\n", err)
			}
		}
	}

	return logger, cleanup
}

// InitializeServices opens the database and wires every configured collaborator.
// Optional backends left unconfigured stay nil.
func InitializeServices(ctx context.Context, cfg *models.Config) (*Services, error) {
	dbService, err := database.NewService(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	services := &Services{DbService: dbService}

	storage, err := objectstore.New(ctx, cfg.ObjectStore)
	if err != nil {
		services.Close()
		return nil, err
	}
	services.Storage = storage

	var sinks []relay.Sink
	if cfg.Relay.Enabled {
		sinks, err = services.initSinks(ctx, cfg)
		if err != nil {
			services.Close()
			return nil, err
		}
	}

	// Events are queued for the relay only when something will consume them.
	engine := ledger.NewEngine(len(sinks) > 0)
	var opts []club.Option
	if storage != nil {
		opts = append(opts, club.WithImageRemover(storage))
	}
	services.ClubService = club.NewService(dbService, engine, opts...)
	services.LedgerService = api.NewLedgerService(dbService)

	if len(sinks) > 0 {
		services.Relay = relay.New(relay.Config{
			Outbox:          dbService,
			Sinks:           sinks,
			PollingInterval: cfg.Relay.PollingInterval,
			BatchSize:       cfg.Relay.BatchSize,
		})
	}

	sched, err := scheduler.New(dbService, cfg.Scheduler.TierResyncInterval)
	if err != nil {
		services.Close()
		return nil, err
	}
	services.Scheduler = sched

	return services, nil
}

func (cs *Services) initSinks(ctx context.Context, cfg *models.Config) ([]relay.Sink, error) {
	var sinks []relay.Sink

	broker, err := mq.NewBackend(ctx, cfg.MQ)
	if err != nil {
		return nil, err
	}
	if broker != nil {
		cs.Broker = broker
		publisher, err := mq.NewEventPublisher(broker, cfg.MQ.Channel)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, publisher)
		zap.L().Info("Relaying point events to broker",
			zap.String("backend", cfg.MQ.Backend),
			zap.String("channel", cfg.MQ.Channel))
	}

	if cfg.Formance.Enabled {
		mirror, err := formance.NewService(ctx, cfg.Formance)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize formance mirror: %w", err)
		}
		cs.Mirror = mirror
		sinks = append(sinks, mirror)
	}

	if len(sinks) == 0 {
		zap.L().Warn("Relay enabled but no sinks configured")
	}
	return sinks, nil
}

// InitializeDatabaseOnly initializes just the database service.
// Useful for read-only operations like the ranking report
func InitializeDatabaseOnly(ctx context.Context, cfg *models.Config) (*database.Service, error) {
	dbService, err := database.NewService(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	return dbService, nil
}

func (cs *Services) Close() {
	if cs.Scheduler != nil {
		if err := cs.Scheduler.Stop(); err != nil {
			zap.L().Warn("Failed to stop scheduler", zap.Error(err))
		}
	}
	if cs.Relay != nil {
		cs.Relay.Stop()
	}
	if cs.Broker != nil {
		if err := cs.Broker.Close(); err != nil {
			zap.L().Warn("Failed to close broker", zap.Error(err))
		}
	}
	if cs.DbService != nil {
		cs.DbService.Close()
	}
}

func isIgnorableSyncError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "sync /dev/stderr: inappropriate ioctl for device") ||
		strings.Contains(msg, "sync /dev/stdout: inappropriate ioctl for device")
}
