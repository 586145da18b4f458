package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/Libasse27/erp-senegal-sub002/internal/domain"
	"github.com/Libasse27/erp-senegal-sub002/internal/domain/entity"
	"github.com/Libasse27/erp-senegal-sub002/internal/domain/repository"
)

// Store almacén en memoria de productos, bodegas, registros y movimientos.
// Todas las lecturas devuelven copias; las escrituras se confirman bajo mu.
type Store struct {
	mu         sync.RWMutex
	products   map[string]*entity.Product
	warehouses map[string]*entity.Warehouse
	records    map[entity.StockKey]*entity.StockRecord
	movements  []*entity.StockMovement
	byID       map[string]*entity.StockMovement
	seq        int64
}

func NewStore() *Store {
	return &Store{
		products:   make(map[string]*entity.Product),
		warehouses: make(map[string]*entity.Warehouse),
		records:    make(map[entity.StockKey]*entity.StockRecord),
		byID:       make(map[string]*entity.StockMovement),
	}
}

// PutProduct registra o reemplaza un producto del catálogo.
func (s *Store) PutProduct(p *entity.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *p
	s.products[p.ID] = &c
}

func (s *Store) PutWarehouse(w *entity.Warehouse) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *w
	s.warehouses[w.ID] = &c
}

// SetReserved fija la cantidad reservada de un registro (lo hace el flujo de ventas).
func (s *Store) SetReserved(key entity.StockKey, reserved int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[key]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrNoStockRecord, key)
	}
	if reserved < 0 || reserved > rec.QuantityOnHand {
		return fmt.Errorf("%w: reservado %d fuera de [0, %d]", domain.ErrInvalidInput, reserved, rec.QuantityOnHand)
	}
	rec.QuantityReserved = reserved
	rec.Version++
	return nil
}

func (s *Store) getRecord(key entity.StockKey) *entity.StockRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[key]
	if !ok || rec.DeletedAt != nil {
		return nil
	}
	return rec.Clone()
}

// commit aplica registros y movimientos preparados. Falla completo si alguna versión cambió.
func (s *Store) commit(records []stagedRecord, movements []*entity.StockMovement) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, st := range records {
		if err := s.checkVersion(st); err != nil {
			return err
		}
	}
	for _, st := range records {
		s.records[st.record.Key()] = st.record.Clone()
	}
	for _, m := range movements {
		s.appendLocked(m)
	}
	return nil
}

func (s *Store) checkVersion(st stagedRecord) error {
	key := st.record.Key()
	current, ok := s.records[key]
	if st.expected == 0 {
		if ok {
			return &domain.LockTimeoutError{Key: key.String(), Err: fmt.Errorf("registro creado concurrentemente")}
		}
		return nil
	}
	if !ok || current.Version != st.expected {
		return &domain.LockTimeoutError{Key: key.String(), Err: fmt.Errorf("versión %d obsoleta", st.expected)}
	}
	return nil
}

func (s *Store) appendLocked(m *entity.StockMovement) {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	s.seq++
	m.Sequence = s.seq
	c := *m
	s.movements = append(s.movements, &c)
	s.byID[c.ID] = &c
}

func (s *Store) listMovements(filter repository.MovementFilter) []*entity.StockMovement {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*entity.StockMovement, 0)
	for i := len(s.movements) - 1; i >= 0; i-- {
		m := s.movements[i]
		if matches(m, filter) {
			c := *m
			out = append(out, &c)
		}
	}
	if filter.Offset >= len(out) {
		return []*entity.StockMovement{}
	}
	out = out[filter.Offset:]
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out
}

func matches(m *entity.StockMovement, f repository.MovementFilter) bool {
	if f.ProductID != "" && m.ProductID != f.ProductID {
		return false
	}
	if f.WarehouseID != "" && m.SourceWarehouseID != f.WarehouseID && m.DestinationWarehouseID != f.WarehouseID {
		return false
	}
	if f.Type != "" && m.Type != f.Type {
		return false
	}
	if f.Reason != "" && m.Reason != f.Reason {
		return false
	}
	if f.From != nil && m.CreatedAt.Before(*f.From) {
		return false
	}
	if f.To != nil && m.CreatedAt.After(*f.To) {
		return false
	}
	return true
}

func (s *Store) activeRecords() []*entity.StockRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*entity.StockRecord, 0, len(s.records))
	for _, rec := range s.records {
		if rec.DeletedAt == nil {
			out = append(out, rec.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key().Less(out[j].Key()) })
	return out
}

// stagedRecord escritura pendiente; expected es la versión leída (0 = insert).
type stagedRecord struct {
	record   *entity.StockRecord
	expected int64
}

var (
	_ repository.ProductRepository       = (*ProductRepo)(nil)
	_ repository.WarehouseRepository     = (*WarehouseRepo)(nil)
	_ repository.StockRecordRepository   = (*StockRecordRepo)(nil)
	_ repository.StockMovementRepository = (*StockMovementRepo)(nil)
)

// ProductRepo lectura de productos del Store.
type ProductRepo struct{ s *Store }

func NewProductRepository(s *Store) *ProductRepo { return &ProductRepo{s: s} }

func (r *ProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.products[id]
	if !ok {
		return nil, nil
	}
	c := *p
	return &c, nil
}

// WarehouseRepo lectura de bodegas del Store.
type WarehouseRepo struct{ s *Store }

func NewWarehouseRepository(s *Store) *WarehouseRepo { return &WarehouseRepo{s: s} }

func (r *WarehouseRepo) GetByID(_ context.Context, id string) (*entity.Warehouse, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	w, ok := r.s.warehouses[id]
	if !ok {
		return nil, nil
	}
	c := *w
	return &c, nil
}

// StockRecordRepo acceso directo (fuera de transacción); Save confirma de inmediato.
type StockRecordRepo struct{ s *Store }

func NewStockRecordRepository(s *Store) *StockRecordRepo { return &StockRecordRepo{s: s} }

func (r *StockRecordRepo) Get(_ context.Context, key entity.StockKey) (*entity.StockRecord, error) {
	return r.s.getRecord(key), nil
}

// GetForUpdate sin transacción no bloquea; la exclusión la da el KeyLocker.
func (r *StockRecordRepo) GetForUpdate(ctx context.Context, key entity.StockKey) (*entity.StockRecord, error) {
	return r.Get(ctx, key)
}

func (r *StockRecordRepo) Save(_ context.Context, record *entity.StockRecord) error {
	st := stage(record)
	if err := r.s.commit([]stagedRecord{st}, nil); err != nil {
		return err
	}
	record.Version = st.record.Version
	return nil
}

func (r *StockRecordRepo) ListActive(_ context.Context) ([]*entity.StockRecord, error) {
	return r.s.activeRecords(), nil
}

// StockMovementRepo libro de movimientos en memoria.
type StockMovementRepo struct{ s *Store }

func NewStockMovementRepository(s *Store) *StockMovementRepo { return &StockMovementRepo{s: s} }

func (r *StockMovementRepo) Append(_ context.Context, movement *entity.StockMovement) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.appendLocked(movement)
	return nil
}

func (r *StockMovementRepo) GetByID(_ context.Context, id string) (*entity.StockMovement, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	m, ok := r.s.byID[id]
	if !ok {
		return nil, nil
	}
	c := *m
	return &c, nil
}

func (r *StockMovementRepo) List(_ context.Context, filter repository.MovementFilter) ([]*entity.StockMovement, error) {
	return r.s.listMovements(filter), nil
}

func (r *StockMovementRepo) ListByKey(_ context.Context, key entity.StockKey) ([]*entity.StockMovement, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*entity.StockMovement, 0)
	for _, m := range r.s.movements {
		if m.Touches(key) {
			c := *m
			out = append(out, &c)
		}
	}
	return out, nil
}

// stage prepara la escritura e incrementa la versión de la copia.
func stage(record *entity.StockRecord) stagedRecord {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	c := record.Clone()
	st := stagedRecord{record: c, expected: c.Version}
	c.Version++
	return st
}
