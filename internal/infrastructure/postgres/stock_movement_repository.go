package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/shopspring/decimal"

	"github.com/Libasse27/erp-senegal-sub002/internal/domain/entity"
	"github.com/Libasse27/erp-senegal-sub002/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

const stockMovementsTable = "stock_movements"

var stockMovementColumns = []string{
	"id", "sequence", "type", "reason", "product_id", "source_warehouse_id", "destination_warehouse_id",
	"quantity", "unit_cost", "quantity_before", "quantity_after", "note",
	"document_type", "document_id", "created_by", "created_at",
}

type stockMovementRow struct {
	ID                     string          `db:"id"`
	Sequence               int64           `db:"sequence"`
	Type                   string          `db:"type"`
	Reason                 string          `db:"reason"`
	ProductID              string          `db:"product_id"`
	SourceWarehouseID      *string         `db:"source_warehouse_id"`
	DestinationWarehouseID *string         `db:"destination_warehouse_id"`
	Quantity               int64           `db:"quantity"`
	UnitCost               decimal.Decimal `db:"unit_cost"`
	QuantityBefore         int64           `db:"quantity_before"`
	QuantityAfter          int64           `db:"quantity_after"`
	Note                   string          `db:"note"`
	DocumentType           *string         `db:"document_type"`
	DocumentID             *string         `db:"document_id"`
	CreatedBy              string          `db:"created_by"`
	CreatedAt              time.Time       `db:"created_at"`
}

func (r stockMovementRow) toEntity() *entity.StockMovement {
	m := &entity.StockMovement{
		ID:                     r.ID,
		Sequence:               r.Sequence,
		Type:                   entity.MovementType(r.Type),
		Reason:                 entity.MovementReason(r.Reason),
		ProductID:              r.ProductID,
		SourceWarehouseID:      deref(r.SourceWarehouseID),
		DestinationWarehouseID: deref(r.DestinationWarehouseID),
		Quantity:               r.Quantity,
		UnitCost:               r.UnitCost,
		QuantityBefore:         r.QuantityBefore,
		QuantityAfter:          r.QuantityAfter,
		Note:                   r.Note,
		CreatedBy:              r.CreatedBy,
		CreatedAt:              r.CreatedAt,
	}
	if r.DocumentType != nil && r.DocumentID != nil {
		m.Document = &entity.DocumentRef{Type: *r.DocumentType, ID: *r.DocumentID}
	}
	return m
}

// StockMovementRepo libro de movimientos sobre PostgreSQL (solo inserción).
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

// Append inserta el movimiento; sequence (bigserial) lo asigna la base.
// Para una misma clave el orden de inserción es el de commit: la fila de stock sigue bloqueada.
func (r *StockMovementRepo) Append(ctx context.Context, m *entity.StockMovement) error {
	var docType, docID *string
	if m.Document != nil {
		docType, docID = &m.Document.Type, &m.Document.ID
	}
	sql, args, err := psql.Insert(stockMovementsTable).
		Columns(
			"id", "type", "reason", "product_id", "source_warehouse_id", "destination_warehouse_id",
			"quantity", "unit_cost", "quantity_before", "quantity_after", "note",
			"document_type", "document_id", "created_by", "created_at",
		).
		Values(
			m.ID, string(m.Type), string(m.Reason), m.ProductID, nullable(m.SourceWarehouseID), nullable(m.DestinationWarehouseID),
			m.Quantity, m.UnitCost, m.QuantityBefore, m.QuantityAfter, m.Note,
			docType, docID, m.CreatedBy, m.CreatedAt,
		).
		Suffix("RETURNING sequence").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if err := r.q.QueryRow(ctx, sql, args...).Scan(&m.Sequence); err != nil {
		return fmt.Errorf("insert stock movement: %w", err)
	}
	return nil
}

// GetByID nil, nil si no existe.
func (r *StockMovementRepo) GetByID(ctx context.Context, id string) (*entity.StockMovement, error) {
	sql, args, err := psql.Select(stockMovementColumns...).
		From(stockMovementsTable).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	var row stockMovementRow
	if err := pgxscan.Get(ctx, r.q, &row, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock movement: %w", err)
	}
	return row.toEntity(), nil
}

// List aplica los filtros; más recientes primero.
func (r *StockMovementRepo) List(ctx context.Context, f repository.MovementFilter) ([]*entity.StockMovement, error) {
	q := psql.Select(stockMovementColumns...).From(stockMovementsTable)
	if f.ProductID != "" {
		q = q.Where(squirrel.Eq{"product_id": f.ProductID})
	}
	if f.WarehouseID != "" {
		q = q.Where(squirrel.Or{
			squirrel.Eq{"source_warehouse_id": f.WarehouseID},
			squirrel.Eq{"destination_warehouse_id": f.WarehouseID},
		})
	}
	if f.Type != "" {
		q = q.Where(squirrel.Eq{"type": string(f.Type)})
	}
	if f.Reason != "" {
		q = q.Where(squirrel.Eq{"reason": string(f.Reason)})
	}
	if f.From != nil {
		q = q.Where(squirrel.GtOrEq{"created_at": *f.From})
	}
	if f.To != nil {
		q = q.Where(squirrel.LtOrEq{"created_at": *f.To})
	}
	q = q.OrderBy("sequence DESC")
	if f.Limit > 0 {
		q = q.Limit(uint64(f.Limit))
	}
	if f.Offset > 0 {
		q = q.Offset(uint64(f.Offset))
	}
	return r.selectMovements(ctx, q)
}

// ListByKey movimientos de la clave en orden ascendente de sequence.
func (r *StockMovementRepo) ListByKey(ctx context.Context, key entity.StockKey) ([]*entity.StockMovement, error) {
	q := psql.Select(stockMovementColumns...).
		From(stockMovementsTable).
		Where(squirrel.Eq{"product_id": key.ProductID}).
		Where(squirrel.Or{
			squirrel.Eq{"source_warehouse_id": key.WarehouseID},
			squirrel.Eq{"destination_warehouse_id": key.WarehouseID},
		}).
		OrderBy("sequence ASC")
	return r.selectMovements(ctx, q)
}

func (r *StockMovementRepo) selectMovements(ctx context.Context, q squirrel.SelectBuilder) ([]*entity.StockMovement, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	var rows []stockMovementRow
	if err := pgxscan.Select(ctx, r.q, &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("list stock movements: %w", err)
	}
	out := make([]*entity.StockMovement, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toEntity())
	}
	return out, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
