package lock

import (
	"context"
	"sync"
	"time"

	"github.com/Libasse27/erp-senegal-sub002/internal/application/inventory"
	"github.com/Libasse27/erp-senegal-sub002/internal/domain"
	"github.com/Libasse27/erp-senegal-sub002/internal/domain/entity"
)

var _ inventory.KeyLocker = (*KeyedMutex)(nil)

// KeyedMutex un mutex por clave de stock, dentro del proceso. Claves distintas no compiten.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[entity.StockKey]*keyLock
	wait  time.Duration
}

type keyLock struct {
	ch   chan struct{}
	refs int
}

// NewKeyedMutex wait es la espera máxima total para adquirir todas las claves (0 = sin límite).
func NewKeyedMutex(wait time.Duration) *KeyedMutex {
	return &KeyedMutex{locks: make(map[entity.StockKey]*keyLock), wait: wait}
}

// Lock adquiere las claves en orden total. Al agotar la espera libera lo adquirido
// y devuelve *domain.LockTimeoutError.
func (m *KeyedMutex) Lock(ctx context.Context, keys ...entity.StockKey) (func(), error) {
	sorted := entity.SortKeys(keys)
	var timeout <-chan time.Time
	if m.wait > 0 {
		t := time.NewTimer(m.wait)
		defer t.Stop()
		timeout = t.C
	}
	acquired := make([]entity.StockKey, 0, len(sorted))
	for _, k := range sorted {
		l := m.ref(k)
		select {
		case l.ch <- struct{}{}:
			acquired = append(acquired, k)
		case <-timeout:
			m.unref(k)
			m.release(acquired)
			return nil, &domain.LockTimeoutError{Key: k.String()}
		case <-ctx.Done():
			m.unref(k)
			m.release(acquired)
			return nil, &domain.LockTimeoutError{Key: k.String(), Err: ctx.Err()}
		}
	}
	var once sync.Once
	return func() { once.Do(func() { m.release(acquired) }) }, nil
}

func (m *KeyedMutex) ref(k entity.StockKey) *keyLock {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.locks[k]
	if !ok {
		l = &keyLock{ch: make(chan struct{}, 1)}
		m.locks[k] = l
	}
	l.refs++
	return l
}

func (m *KeyedMutex) unref(k entity.StockKey) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l := m.locks[k]
	l.refs--
	if l.refs == 0 {
		delete(m.locks, k)
	}
}

func (m *KeyedMutex) release(keys []entity.StockKey) {
	for i := len(keys) - 1; i >= 0; i-- {
		m.mu.Lock()
		l := m.locks[keys[i]]
		m.mu.Unlock()
		<-l.ch
		m.unref(keys[i])
	}
}

// Held cantidad de claves con referencias vivas (tests).
func (m *KeyedMutex) Held() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.locks)
}
