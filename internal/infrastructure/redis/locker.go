package redis

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bsm/redislock"

	"github.com/Libasse27/erp-senegal-sub002/internal/application/inventory"
	"github.com/Libasse27/erp-senegal-sub002/internal/domain"
	"github.com/Libasse27/erp-senegal-sub002/internal/domain/entity"
)

var _ inventory.KeyLocker = (*Locker)(nil)

// Locker bloqueo distribuido por clave de stock (varias instancias de la API).
type Locker struct {
	client *redislock.Client
	ttl    time.Duration
	wait   time.Duration
	retry  time.Duration
	prefix string
}

// NewLocker ttl vence el lock si el proceso muere; wait es la espera máxima por clave.
func NewLocker(rdb redislock.RedisClient, ttl, wait time.Duration) *Locker {
	return &Locker{
		client: redislock.New(rdb),
		ttl:    ttl,
		wait:   wait,
		retry:  25 * time.Millisecond,
		prefix: "lock:stock:",
	}
}

// Lock obtiene las claves en orden; si alguna no se obtiene a tiempo libera las demás.
func (l *Locker) Lock(ctx context.Context, keys ...entity.StockKey) (func(), error) {
	sorted := entity.SortKeys(keys)
	held := make([]*redislock.Lock, 0, len(sorted))
	releaseAll := func() {
		for i := len(held) - 1; i >= 0; i-- {
			_ = held[i].Release(context.Background())
		}
	}
	for _, k := range sorted {
		lk, err := l.obtain(ctx, k)
		if err != nil {
			releaseAll()
			return nil, err
		}
		held = append(held, lk)
	}
	var once sync.Once
	return func() { once.Do(releaseAll) }, nil
}

func (l *Locker) obtain(ctx context.Context, k entity.StockKey) (*redislock.Lock, error) {
	obtainCtx := ctx
	if l.wait > 0 {
		var cancel context.CancelFunc
		obtainCtx, cancel = context.WithTimeout(ctx, l.wait)
		defer cancel()
	}
	lk, err := l.client.Obtain(obtainCtx, l.prefix+k.String(), l.ttl, &redislock.Options{
		RetryStrategy: redislock.LinearBackoff(l.retry),
	})
	switch {
	case err == nil:
		return lk, nil
	case errors.Is(err, redislock.ErrNotObtained), errors.Is(err, context.DeadlineExceeded):
		return nil, &domain.LockTimeoutError{Key: k.String(), Err: err}
	default:
		return nil, fmt.Errorf("obtener lock %s: %w", k, err)
	}
}
