package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Libasse27/erp-senegal-sub002/internal/domain"
	"github.com/Libasse27/erp-senegal-sub002/internal/domain/entity"
	"github.com/Libasse27/erp-senegal-sub002/internal/domain/repository"
	"github.com/Libasse27/erp-senegal-sub002/internal/infrastructure/memory"
)

var (
	key = entity.StockKey{ProductID: "riz", WarehouseID: "dakar"}
	now = time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
)

func newRecord(qty int64) *entity.StockRecord {
	rec := entity.NewStockRecord(key, decimal.NewFromInt(100), "u1", now)
	rec.SetPosition(qty, decimal.NewFromInt(100))
	return rec
}

func entryMovement(t *testing.T, qty int64) *entity.StockMovement {
	t.Helper()
	m, err := entity.NewEntryMovement(key.ProductID, key.WarehouseID, qty, entity.ReasonPurchase)
	require.NoError(t, err)
	m.Stamp(decimal.NewFromInt(100), 0, qty)
	m.CreatedAt = now
	return m
}

func TestTxRunner_CommitAsignaSecuencia(t *testing.T) {
	store := memory.NewStore()
	runner := memory.NewTxRunner(store)
	first := entryMovement(t, 5)
	second := entryMovement(t, 3)

	err := runner.Run(context.Background(), func(stockRepo repository.StockRecordRepository, movRepo repository.StockMovementRepository) error {
		rec := newRecord(8)
		if err := stockRepo.Save(context.Background(), rec); err != nil {
			return err
		}
		assert.Equal(t, int64(1), rec.Version)
		if err := movRepo.Append(context.Background(), first); err != nil {
			return err
		}
		assert.Zero(t, first.Sequence, "la secuencia se asigna al confirmar")
		return movRepo.Append(context.Background(), second)
	})
	require.NoError(t, err)

	assert.Equal(t, int64(1), first.Sequence)
	assert.Equal(t, int64(2), second.Sequence)
	assert.NotEmpty(t, first.ID)

	rec, err := memory.NewStockRecordRepository(store).Get(context.Background(), key)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, int64(8), rec.QuantityOnHand)
	assert.Equal(t, int64(1), rec.Version)
}

func TestTxRunner_ErrorDescartaTodo(t *testing.T) {
	store := memory.NewStore()
	runner := memory.NewTxRunner(store)
	boom := errors.New("boom")

	err := runner.Run(context.Background(), func(stockRepo repository.StockRecordRepository, movRepo repository.StockMovementRepository) error {
		require.NoError(t, stockRepo.Save(context.Background(), newRecord(8)))
		require.NoError(t, movRepo.Append(context.Background(), entryMovement(t, 8)))
		staged, err := stockRepo.Get(context.Background(), key)
		require.NoError(t, err)
		assert.Equal(t, int64(8), staged.QuantityOnHand, "la tx ve sus propias escrituras")
		return boom
	})
	require.ErrorIs(t, err, boom)

	rec, err := memory.NewStockRecordRepository(store).Get(context.Background(), key)
	require.NoError(t, err)
	assert.Nil(t, rec)
	movs, err := memory.NewStockMovementRepository(store).List(context.Background(), repository.MovementFilter{})
	require.NoError(t, err)
	assert.Empty(t, movs)
}

func TestTxRunner_VersionObsoletaEsReintentable(t *testing.T) {
	store := memory.NewStore()
	records := memory.NewStockRecordRepository(store)
	require.NoError(t, records.Save(context.Background(), newRecord(10)))

	runner := memory.NewTxRunner(store)
	err := runner.Run(context.Background(), func(stockRepo repository.StockRecordRepository, _ repository.StockMovementRepository) error {
		rec, err := stockRepo.GetForUpdate(context.Background(), key)
		if err != nil {
			return err
		}
		// otra escritura confirma entre la lectura y el commit
		require.NoError(t, store.SetReserved(key, 2))
		rec.SetPosition(4, rec.WeightedAverageCost)
		return stockRepo.Save(context.Background(), rec)
	})
	require.ErrorIs(t, err, domain.ErrLockTimeout)
	assert.True(t, domain.IsRetryable(err))

	rec, err := records.Get(context.Background(), key)
	require.NoError(t, err)
	assert.Equal(t, int64(10), rec.QuantityOnHand)
	assert.Equal(t, int64(2), rec.QuantityReserved)
}

func TestTxRunner_InsercionConcurrente(t *testing.T) {
	store := memory.NewStore()
	runner := memory.NewTxRunner(store)
	err := runner.Run(context.Background(), func(stockRepo repository.StockRecordRepository, _ repository.StockMovementRepository) error {
		require.NoError(t, memory.NewStockRecordRepository(store).Save(context.Background(), newRecord(1)))
		return stockRepo.Save(context.Background(), newRecord(5))
	})
	assert.ErrorIs(t, err, domain.ErrLockTimeout)
}

func TestTxRunner_ContextoCancelado(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	called := false
	err := memory.NewTxRunner(memory.NewStore()).Run(ctx, func(repository.StockRecordRepository, repository.StockMovementRepository) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestStore_SetReserved(t *testing.T) {
	store := memory.NewStore()
	assert.ErrorIs(t, store.SetReserved(key, 1), domain.ErrNoStockRecord)

	require.NoError(t, memory.NewStockRecordRepository(store).Save(context.Background(), newRecord(5)))
	assert.ErrorIs(t, store.SetReserved(key, 6), domain.ErrInvalidInput)
	assert.ErrorIs(t, store.SetReserved(key, -1), domain.ErrInvalidInput)
	require.NoError(t, store.SetReserved(key, 5))

	rec, err := memory.NewStockRecordRepository(store).Get(context.Background(), key)
	require.NoError(t, err)
	assert.Equal(t, int64(0), rec.QuantityAvailable())
	assert.Equal(t, int64(2), rec.Version)
}

func TestMovementRepo_ListByKeyEnOrdenDeCommit(t *testing.T) {
	store := memory.NewStore()
	movs := memory.NewStockMovementRepository(store)
	ctx := context.Background()

	in := entryMovement(t, 5)
	require.NoError(t, movs.Append(ctx, in))
	tr, err := entity.NewTransferMovement(key.ProductID, key.WarehouseID, "thies", 2)
	require.NoError(t, err)
	require.NoError(t, movs.Append(ctx, tr))
	other, err := entity.NewEntryMovement("lait", key.WarehouseID, 1, entity.ReasonPurchase)
	require.NoError(t, err)
	require.NoError(t, movs.Append(ctx, other))

	got, err := movs.ListByKey(ctx, key)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, in.ID, got[0].ID)
	assert.Equal(t, tr.ID, got[1].ID)

	thies, err := movs.ListByKey(ctx, entity.StockKey{ProductID: key.ProductID, WarehouseID: "thies"})
	require.NoError(t, err)
	assert.Len(t, thies, 1)

	byID, err := movs.GetByID(ctx, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), byID.Sequence)
	missing, err := movs.GetByID(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}
