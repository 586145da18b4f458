package inventory_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Libasse27/erp-senegal-sub002/internal/application/inventory"
	"github.com/Libasse27/erp-senegal-sub002/internal/domain"
)

func TestConcurrencia_SalidasNoSobregiran(t *testing.T) {
	f := newFixture(t)
	f.entry(t, prodRiz, whDakar, 20, 100)

	var (
		wg         sync.WaitGroup
		ok         atomic.Int64
		rejected   atomic.Int64
		unexpected atomic.Int64
	)
	for i := 0; i < 12; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.RecordExit(context.Background(), inventory.ExitInput{
				ProductID: prodRiz, WarehouseID: whDakar, Quantity: 3,
			})
			switch {
			case err == nil:
				ok.Add(1)
			case errors.Is(err, domain.ErrInsufficientStock):
				rejected.Add(1)
			default:
				unexpected.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(6), ok.Load())
	assert.Equal(t, int64(6), rejected.Load())
	assert.Zero(t, unexpected.Load())

	rec := f.record(t, prodRiz, whDakar)
	assert.Equal(t, int64(2), rec.QuantityOnHand)
	assert.Equal(t, 7, f.movementCount(t))
}

func TestConcurrencia_TrasladosCruzadosConservanCantidad(t *testing.T) {
	f := newFixture(t)
	f.entry(t, prodRiz, whDakar, 50, 100)
	f.entry(t, prodRiz, whThies, 50, 120)

	var wg sync.WaitGroup
	errs := make(chan error, 40)
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := f.svc.TransferStock(context.Background(), inventory.TransferInput{
				ProductID: prodRiz, SourceWarehouseID: whDakar, DestinationWarehouseID: whThies, Quantity: 1,
			})
			errs <- err
		}()
		go func() {
			defer wg.Done()
			_, err := f.svc.TransferStock(context.Background(), inventory.TransferInput{
				ProductID: prodRiz, SourceWarehouseID: whThies, DestinationWarehouseID: whDakar, Quantity: 1,
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	dakar := f.record(t, prodRiz, whDakar)
	thies := f.record(t, prodRiz, whThies)
	assert.Equal(t, int64(100), dakar.QuantityOnHand+thies.QuantityOnHand)
	assert.Equal(t, 42, f.movementCount(t))

	for _, wh := range []string{whDakar, whThies} {
		report, err := f.svc.Reconcile(context.Background(), prodRiz, wh)
		require.NoError(t, err)
		assert.True(t, report.Consistent, "bodega %s", wh)
	}
}
