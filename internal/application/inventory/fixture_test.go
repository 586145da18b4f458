package inventory_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/Libasse27/erp-senegal-sub002/internal/application/inventory"
	"github.com/Libasse27/erp-senegal-sub002/internal/domain"
	"github.com/Libasse27/erp-senegal-sub002/internal/domain/entity"
	"github.com/Libasse27/erp-senegal-sub002/internal/infrastructure/lock"
	"github.com/Libasse27/erp-senegal-sub002/internal/infrastructure/memory"
)

const (
	prodRiz       = "riz"
	prodLait      = "lait"
	prodLivraison = "livraison"
	whDakar       = "dakar"
	whThies       = "thies"
	testUser      = "u-bodeguero"
)

var baseTime = time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)

// stepClock avanza un minuto en cada lectura: movimientos con CreatedAt distintos.
type stepClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Minute)
	return c.now
}

type fakeNotifier struct {
	mu     sync.Mutex
	alerts []entity.StockAlert
	audits []entity.AuditEntry
	err    error
}

func (n *fakeNotifier) PublishAlert(_ context.Context, a entity.StockAlert) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.alerts = append(n.alerts, a)
	return n.err
}

func (n *fakeNotifier) PublishAudit(_ context.Context, e entity.AuditEntry) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.audits = append(n.audits, e)
	return n.err
}

func (n *fakeNotifier) counts() (alerts, audits int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.alerts), len(n.audits)
}

// timeoutLocker siempre agota la espera.
type timeoutLocker struct{}

func (timeoutLocker) Lock(_ context.Context, keys ...entity.StockKey) (func(), error) {
	return nil, &domain.LockTimeoutError{Key: keys[0].String(), Err: context.DeadlineExceeded}
}

type fixture struct {
	store    *memory.Store
	svc      *inventory.StockService
	notifier *fakeNotifier
	clock    *stepClock
}

func newFixture(t *testing.T, opts ...inventory.Option) *fixture {
	return newFixtureWithLocker(t, lock.NewKeyedMutex(5*time.Second), opts...)
}

func newFixtureWithLocker(t *testing.T, locker inventory.KeyLocker, opts ...inventory.Option) *fixture {
	t.Helper()
	store := memory.NewStore()
	store.PutProduct(&entity.Product{
		ID: prodRiz, Code: "RIZ-25", Name: "Riz brisé 25kg", IsStockable: true,
		PurchasePrice: decimal.NewFromInt(100), StockMinimum: 5, StockAlertThreshold: 10,
	})
	store.PutProduct(&entity.Product{
		ID: prodLait, Code: "LAIT-400", Name: "Lait en poudre", IsStockable: true,
		PurchasePrice: decimal.NewFromInt(2300), HasExpiry: true,
	})
	store.PutProduct(&entity.Product{
		ID: prodLivraison, Code: "SRV-LIV", Name: "Livraison", IsStockable: false,
	})
	store.PutWarehouse(&entity.Warehouse{ID: whDakar, Code: "DKR-01", Name: "Dépôt Dakar", IsActive: true})
	store.PutWarehouse(&entity.Warehouse{ID: whThies, Code: "THS-01", Name: "Magasin Thiès", IsActive: true})

	notifier := &fakeNotifier{}
	clock := &stepClock{now: baseTime}
	all := append([]inventory.Option{
		inventory.WithNotifier(notifier),
		inventory.WithClock(clock.Now),
	}, opts...)

	svc := inventory.NewStockService(
		memory.NewTxRunner(store),
		locker,
		memory.NewProductRepository(store),
		memory.NewWarehouseRepository(store),
		memory.NewStockRecordRepository(store),
		memory.NewStockMovementRepository(store),
		all...,
	)
	return &fixture{store: store, svc: svc, notifier: notifier, clock: clock}
}

func (f *fixture) entry(t *testing.T, product, warehouse string, qty, cost int64) *inventory.OperationResult {
	t.Helper()
	c := decimal.NewFromInt(cost)
	res, err := f.svc.RecordEntry(context.Background(), inventory.EntryInput{
		ProductID: product, WarehouseID: warehouse, Quantity: qty, UnitCost: &c, UserID: testUser,
	})
	require.NoError(t, err)
	return res
}

func (f *fixture) record(t *testing.T, product, warehouse string) *entity.StockRecord {
	t.Helper()
	rec, err := f.svc.GetStockRecord(context.Background(), product, warehouse)
	require.NoError(t, err)
	return rec
}

func (f *fixture) movementCount(t *testing.T) int {
	t.Helper()
	movs, err := f.svc.ListMovements(context.Background(), listAll())
	require.NoError(t, err)
	return len(movs)
}

func dec(n int64) decimal.Decimal { return decimal.NewFromInt(n) }
