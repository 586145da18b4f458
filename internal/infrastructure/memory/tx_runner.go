package memory

import (
	"context"

	"github.com/Libasse27/erp-senegal-sub002/internal/application/inventory"
	"github.com/Libasse27/erp-senegal-sub002/internal/domain/entity"
	"github.com/Libasse27/erp-senegal-sub002/internal/domain/repository"
)

var _ inventory.TxRunner = (*TxRunner)(nil)

// TxRunner transacciones sobre el Store: las escrituras se preparan en la tx y se
// confirman juntas (o ninguna) comparando versiones.
type TxRunner struct {
	s *Store
}

func NewTxRunner(s *Store) *TxRunner {
	return &TxRunner{s: s}
}

// Run ejecuta fn con repos atados a la tx; si fn falla se descarta todo.
func (r *TxRunner) Run(ctx context.Context, fn func(
	stockRepo repository.StockRecordRepository,
	movRepo repository.StockMovementRepository,
) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t := &tx{s: r.s, staged: make(map[entity.StockKey]stagedRecord)}
	if err := fn(&txStockRepo{t: t}, &txMovementRepo{t: t}); err != nil {
		return err
	}
	records := make([]stagedRecord, 0, len(t.order))
	for _, k := range t.order {
		records = append(records, t.staged[k])
	}
	return r.s.commit(records, t.movements)
}

type tx struct {
	s         *Store
	staged    map[entity.StockKey]stagedRecord
	order     []entity.StockKey
	movements []*entity.StockMovement
}

type txStockRepo struct{ t *tx }

func (r *txStockRepo) Get(_ context.Context, key entity.StockKey) (*entity.StockRecord, error) {
	if st, ok := r.t.staged[key]; ok {
		return st.record.Clone(), nil
	}
	return r.t.s.getRecord(key), nil
}

func (r *txStockRepo) GetForUpdate(ctx context.Context, key entity.StockKey) (*entity.StockRecord, error) {
	return r.Get(ctx, key)
}

func (r *txStockRepo) Save(_ context.Context, record *entity.StockRecord) error {
	st := stage(record)
	if prev, ok := r.t.staged[record.Key()]; ok {
		// Segunda escritura en la misma tx: se conserva la versión leída originalmente.
		st.expected = prev.expected
	} else {
		r.t.order = append(r.t.order, record.Key())
	}
	r.t.staged[record.Key()] = st
	record.Version = st.record.Version
	return nil
}

func (r *txStockRepo) ListActive(_ context.Context) ([]*entity.StockRecord, error) {
	out := r.t.s.activeRecords()
	for i, rec := range out {
		if st, ok := r.t.staged[rec.Key()]; ok {
			out[i] = st.record.Clone()
		}
	}
	return out, nil
}

type txMovementRepo struct{ t *tx }

// Append prepara el movimiento; Sequence se asigna al confirmar.
func (r *txMovementRepo) Append(_ context.Context, movement *entity.StockMovement) error {
	r.t.movements = append(r.t.movements, movement)
	return nil
}

func (r *txMovementRepo) GetByID(ctx context.Context, id string) (*entity.StockMovement, error) {
	return NewStockMovementRepository(r.t.s).GetByID(ctx, id)
}

func (r *txMovementRepo) List(ctx context.Context, filter repository.MovementFilter) ([]*entity.StockMovement, error) {
	return NewStockMovementRepository(r.t.s).List(ctx, filter)
}

func (r *txMovementRepo) ListByKey(ctx context.Context, key entity.StockKey) ([]*entity.StockMovement, error) {
	return NewStockMovementRepository(r.t.s).ListByKey(ctx, key)
}
