package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/shopspring/decimal"

	"github.com/Libasse27/erp-senegal-sub002/internal/domain"
	"github.com/Libasse27/erp-senegal-sub002/internal/domain/entity"
	"github.com/Libasse27/erp-senegal-sub002/internal/domain/repository"
)

var _ repository.StockRecordRepository = (*StockRecordRepo)(nil)

const stockRecordsTable = "stock_records"

var stockRecordColumns = []string{
	"id", "product_id", "warehouse_id", "quantity_on_hand", "quantity_reserved",
	"weighted_average_cost", "stock_value", "last_movement_at", "expiry_date", "version",
	"created_by", "updated_by", "created_at", "updated_at", "deleted_at",
}

// stockRecordRow fila de stock_records.
type stockRecordRow struct {
	ID                  string          `db:"id"`
	ProductID           string          `db:"product_id"`
	WarehouseID         string          `db:"warehouse_id"`
	QuantityOnHand      int64           `db:"quantity_on_hand"`
	QuantityReserved    int64           `db:"quantity_reserved"`
	WeightedAverageCost decimal.Decimal `db:"weighted_average_cost"`
	StockValue          decimal.Decimal `db:"stock_value"`
	LastMovementAt      time.Time       `db:"last_movement_at"`
	ExpiryDate          *time.Time      `db:"expiry_date"`
	Version             int64           `db:"version"`
	CreatedBy           string          `db:"created_by"`
	UpdatedBy           string          `db:"updated_by"`
	CreatedAt           time.Time       `db:"created_at"`
	UpdatedAt           time.Time       `db:"updated_at"`
	DeletedAt           *time.Time      `db:"deleted_at"`
}

func (r stockRecordRow) toEntity() *entity.StockRecord {
	return &entity.StockRecord{
		ID:                  r.ID,
		ProductID:           r.ProductID,
		WarehouseID:         r.WarehouseID,
		QuantityOnHand:      r.QuantityOnHand,
		QuantityReserved:    r.QuantityReserved,
		WeightedAverageCost: r.WeightedAverageCost,
		StockValue:          r.StockValue,
		LastMovementAt:      r.LastMovementAt,
		ExpiryDate:          r.ExpiryDate,
		Version:             r.Version,
		CreatedBy:           r.CreatedBy,
		UpdatedBy:           r.UpdatedBy,
		CreatedAt:           r.CreatedAt,
		UpdatedAt:           r.UpdatedAt,
		DeletedAt:           r.DeletedAt,
	}
}

// StockRecordRepo implementación de StockRecordRepository sobre PostgreSQL (usable con pool o tx).
type StockRecordRepo struct {
	q Querier
}

// NewStockRecordRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockRecordRepository(q Querier) *StockRecordRepo {
	return &StockRecordRepo{q: q}
}

// Get obtiene el registro activo de la clave; nil, nil si no existe.
func (r *StockRecordRepo) Get(ctx context.Context, key entity.StockKey) (*entity.StockRecord, error) {
	return r.get(ctx, key, "")
}

// GetForUpdate igual que Get con SELECT ... FOR UPDATE (bloquea la fila hasta el fin de la tx).
func (r *StockRecordRepo) GetForUpdate(ctx context.Context, key entity.StockKey) (*entity.StockRecord, error) {
	return r.get(ctx, key, "FOR UPDATE")
}

func (r *StockRecordRepo) get(ctx context.Context, key entity.StockKey, suffix string) (*entity.StockRecord, error) {
	q := psql.Select(stockRecordColumns...).
		From(stockRecordsTable).
		Where(squirrel.Eq{"product_id": key.ProductID, "warehouse_id": key.WarehouseID, "deleted_at": nil})
	if suffix != "" {
		q = q.Suffix(suffix)
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	var row stockRecordRow
	if err := pgxscan.Get(ctx, r.q, &row, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		if lerr := lockError(key.String(), err); lerr != nil {
			return nil, lerr
		}
		return nil, fmt.Errorf("get stock record: %w", err)
	}
	return row.toEntity(), nil
}

// Save inserta (Version == 0) o actualiza comparando version; incrementa Version.
func (r *StockRecordRepo) Save(ctx context.Context, rec *entity.StockRecord) error {
	if rec.Version == 0 {
		return r.insert(ctx, rec)
	}
	sql, args, err := psql.Update(stockRecordsTable).
		SetMap(map[string]any{
			"quantity_on_hand":      rec.QuantityOnHand,
			"quantity_reserved":     rec.QuantityReserved,
			"weighted_average_cost": rec.WeightedAverageCost,
			"stock_value":           rec.StockValue,
			"last_movement_at":      rec.LastMovementAt,
			"expiry_date":           rec.ExpiryDate,
			"updated_by":            rec.UpdatedBy,
			"updated_at":            rec.UpdatedAt,
			"version":               squirrel.Expr("version + 1"),
		}).
		Where(squirrel.Eq{"id": rec.ID, "version": rec.Version}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}
	cmd, err := r.q.Exec(ctx, sql, args...)
	if err != nil {
		if lerr := lockError(rec.Key().String(), err); lerr != nil {
			return lerr
		}
		return fmt.Errorf("update stock record: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return &domain.LockTimeoutError{Key: rec.Key().String(), Err: fmt.Errorf("versión %d obsoleta", rec.Version)}
	}
	rec.Version++
	return nil
}

func (r *StockRecordRepo) insert(ctx context.Context, rec *entity.StockRecord) error {
	sql, args, err := psql.Insert(stockRecordsTable).
		Columns(stockRecordColumns...).
		Values(
			rec.ID, rec.ProductID, rec.WarehouseID, rec.QuantityOnHand, rec.QuantityReserved,
			rec.WeightedAverageCost, rec.StockValue, rec.LastMovementAt, rec.ExpiryDate, 1,
			rec.CreatedBy, rec.UpdatedBy, rec.CreatedAt, rec.UpdatedAt, rec.DeletedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.q.Exec(ctx, sql, args...); err != nil {
		if lerr := lockError(rec.Key().String(), err); lerr != nil {
			return lerr
		}
		return fmt.Errorf("insert stock record: %w", err)
	}
	rec.Version = 1
	return nil
}

// ListActive registros no eliminados, ordenados por clave.
func (r *StockRecordRepo) ListActive(ctx context.Context) ([]*entity.StockRecord, error) {
	sql, args, err := psql.Select(stockRecordColumns...).
		From(stockRecordsTable).
		Where(squirrel.Eq{"deleted_at": nil}).
		OrderBy("product_id", "warehouse_id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	var rows []stockRecordRow
	if err := pgxscan.Select(ctx, r.q, &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("list stock records: %w", err)
	}
	out := make([]*entity.StockRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toEntity())
	}
	return out, nil
}
