package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/inventario-bares/internal/application/notification"
	"github.com/jhoicas/inventario-bares/internal/domain/repository"
	"github.com/jhoicas/inventario-bares/internal/infrastructure/kafka"
	"github.com/jhoicas/inventario-bares/internal/infrastructure/memory"
	"github.com/jhoicas/inventario-bares/internal/infrastructure/postgres"
	"github.com/jhoicas/inventario-bares/pkg/config"
	"github.com/jhoicas/inventario-bares/pkg/logger"
)

// storage agrupa los puertos de persistencia del driver elegido.
type storage struct {
	products   repository.ProductRepository
	categories repository.CategoryRepository
	users      repository.UserRepository
	inventory  repository.InventoryRepository
	requests   repository.RequestRepository
	transfers  repository.TransferRepository
	alerts     repository.AlertConfigRepository
	audit      repository.AuditLogRepository
	tx         repository.TxRunner
	pool       *pgxpool.Pool
}

func (s *storage) close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// openStorage conecta a PostgreSQL (aplicando migraciones si DB_MIGRATE) o usa el almacenamiento en memoria.
func openStorage(ctx context.Context, cfg config.DBConfig, log *logger.Logger) (*storage, error) {
	if cfg.Driver == "memory" {
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
		r := memory.NewStore().Repos()
		return &storage{
			products: r.Products, categories: r.Categories, users: r.Users, inventory: r.Inventory,
			requests: r.Requests, transfers: r.Transfers, alerts: r.Alerts, audit: r.Audit, tx: r.Tx,
		}, nil
	}

	pool, err := postgres.NewPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
	}
	if cfg.Migrate {
		if err := postgres.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migraciones: %w", err)
		}
		log.Info().Msg("migraciones aplicadas")
	}
	r := postgres.NewRepos(pool)
	return &storage{
		products: r.Products, categories: r.Categories, users: r.Users, inventory: r.Inventory,
		requests: r.Requests, transfers: r.Transfers, alerts: r.Alerts, audit: r.Audit, tx: r.Tx,
		pool: pool,
	}, nil
}

// eventBus publicador para los casos de uso y canal que drena el Dispatcher.
// events es nil con las notificaciones deshabilitadas.
type eventBus struct {
	publisher notification.Publisher
	events    <-chan notification.Event
	close     func()
}

func openEvents(cfg *config.Config, log *logger.Logger) (*eventBus, error) {
	if !cfg.Notify.Enabled {
		log.Warn().Msg("notificaciones deshabilitadas")
		return &eventBus{publisher: notification.Nop{}, close: func() {}}, nil
	}

	switch cfg.Events.Backend {
	case "kafka":
		kafkaLog := log.Component("kafka")
		publisher := kafka.NewPublisher(kafka.NewWriter(cfg.Events.KafkaBrokers, cfg.Events.KafkaTopic, kafkaLog), cfg.Events.KafkaTopic, kafkaLog)
		source := kafka.NewSource(kafka.NewReader(cfg.Events.KafkaBrokers, cfg.Events.KafkaTopic, cfg.Events.KafkaGroupID), cfg.Notify.QueueSize, kafkaLog)
		readCtx, stopReading := context.WithCancel(context.Background())
		go source.Run(readCtx)
		log.Info().Strs("brokers", cfg.Events.KafkaBrokers).Str("topic", cfg.Events.KafkaTopic).Msg("bus de eventos kafka")
		return &eventBus{
			publisher: publisher,
			events:    source.Events(),
			close: func() {
				if err := publisher.Close(); err != nil {
					kafkaLog.Error().Err(err).Msg("cerrar writer")
				}
				stopReading()
				if err := source.Close(); err != nil {
					kafkaLog.Error().Err(err).Msg("cerrar reader")
				}
			},
		}, nil
	case "memory":
		queue := notification.NewQueue(cfg.Notify.QueueSize, log.Component("queue"))
		return &eventBus{publisher: queue, events: queue.Events(), close: queue.Close}, nil
	}
	return nil, fmt.Errorf("EVENTS_BACKEND desconocido: %q", cfg.Events.Backend)
}
