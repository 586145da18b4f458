package main

import (
	"context"
	"fmt"

	"github.com/Libasse27/erp-senegal-sub002/internal/application/inventory"
	"github.com/Libasse27/erp-senegal-sub002/internal/domain/repository"
	"github.com/Libasse27/erp-senegal-sub002/internal/infrastructure/catalog"
	"github.com/Libasse27/erp-senegal-sub002/internal/infrastructure/kafka"
	"github.com/Libasse27/erp-senegal-sub002/internal/infrastructure/lock"
	"github.com/Libasse27/erp-senegal-sub002/internal/infrastructure/memory"
	"github.com/Libasse27/erp-senegal-sub002/internal/infrastructure/notify"
	"github.com/Libasse27/erp-senegal-sub002/internal/infrastructure/postgres"
	infraredis "github.com/Libasse27/erp-senegal-sub002/internal/infrastructure/redis"
	"github.com/Libasse27/erp-senegal-sub002/pkg/config"
	"github.com/Libasse27/erp-senegal-sub002/pkg/logger"
)

// stockStore adaptadores de persistencia según STORE_BACKEND.
type stockStore struct {
	txRunner      inventory.TxRunner
	productRepo   repository.ProductRepository
	warehouseRepo repository.WarehouseRepository
	stockRepo     repository.StockRecordRepository
	movRepo       repository.StockMovementRepository
	close         func()
}

func openStore(ctx context.Context, cfg *config.Config, log *logger.Logger) (*stockStore, error) {
	if cfg.Stock.StoreBackend == config.BackendMemory {
		store := memory.NewStore()
		if cfg.Stock.CatalogFile != "" {
			c, err := catalog.LoadFile(cfg.Stock.CatalogFile)
			if err != nil {
				return nil, err
			}
			for _, p := range c.Products {
				store.PutProduct(p)
			}
			for _, w := range c.Warehouses {
				store.PutWarehouse(w)
			}
			log.Info().
				Int("products", len(c.Products)).
				Int("warehouses", len(c.Warehouses)).
				Msg("catálogo cargado en memoria")
		} else {
			log.Warn().Msg("backend memory sin CATALOG_FILE: no hay productos ni bodegas")
		}
		return &stockStore{
			txRunner:      memory.NewTxRunner(store),
			productRepo:   memory.NewProductRepository(store),
			warehouseRepo: memory.NewWarehouseRepository(store),
			stockRepo:     memory.NewStockRecordRepository(store),
			movRepo:       memory.NewStockMovementRepository(store),
			close:         func() {},
		}, nil
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
	}
	if cfg.Stock.AutoMigrate {
		if err := postgres.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		log.Info().Msg("esquema de stock aplicado")
	}
	return &stockStore{
		txRunner:      postgres.NewTxRunner(pool, cfg.Stock.StatementLockTimeout),
		productRepo:   postgres.NewProductRepository(pool),
		warehouseRepo: postgres.NewWarehouseRepository(pool),
		stockRepo:     postgres.NewStockRecordRepository(pool),
		movRepo:       postgres.NewStockMovementRepository(pool),
		close:         pool.Close,
	}, nil
}

func openLocker(ctx context.Context, cfg *config.Config) (inventory.KeyLocker, func(), error) {
	if cfg.Stock.LockBackend != config.BackendRedis {
		return lock.NewKeyedMutex(cfg.Stock.LockWaitTimeout), func() {}, nil
	}
	rdb, err := infraredis.NewClient(ctx, cfg.Redis)
	if err != nil {
		return nil, nil, err
	}
	locker := infraredis.NewLocker(rdb, cfg.Stock.LockTTL, cfg.Stock.LockWaitTimeout)
	return locker, func() { _ = rdb.Close() }, nil
}

// openNotifier Kafka si hay brokers; si no, alertas y auditoría van al log.
func openNotifier(ctx context.Context, cfg *config.Config, log *logger.Logger) (inventory.Notifier, func()) {
	if !cfg.Kafka.Enabled() {
		return notify.NewLogPublisher(log), func() {}
	}
	producer := kafka.NewProducer(kafka.NewWriter(cfg.Kafka.Brokers), cfg.Kafka.Buffer, log)
	producer.Start(ctx)
	log.Info().Strs("brokers", cfg.Kafka.Brokers).Msg("publicando eventos de stock en Kafka")
	closeFn := func() {
		producer.Close()
		producer.WaitClosed()
	}
	return kafka.NewPublisher(producer, cfg.Kafka.AlertTopic, cfg.Kafka.AuditTopic), closeFn
}
