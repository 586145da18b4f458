package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio del libro de existencias (sin dependencias externas).
var (
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrProductNotFound   = errors.New("producto no encontrado")
	ErrWarehouseNotFound = errors.New("bodega no encontrada")
	ErrNotStockable      = errors.New("el producto no maneja inventario")
	ErrNoStockRecord     = errors.New("no existe registro de stock para el producto en la bodega")
	ErrInsufficientStock = errors.New("stock insuficiente")
	ErrInvalidTransfer   = errors.New("traslado inválido")
	ErrMalformedMovement = errors.New("movimiento mal formado")
	ErrLockTimeout       = errors.New("tiempo de espera agotado al bloquear el stock")
)

// InsufficientStockError detalla la cantidad pedida frente a la disponible.
// errors.Is(err, ErrInsufficientStock) es verdadero.
type InsufficientStockError struct {
	ProductID   string
	WarehouseID string
	Requested   int64
	Available   int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("%s: producto %s en bodega %s, solicitado %d, disponible %d",
		ErrInsufficientStock, e.ProductID, e.WarehouseID, e.Requested, e.Available)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// Shortfall cantidad que falta para cubrir la solicitud.
func (e *InsufficientStockError) Shortfall() int64 {
	return e.Requested - e.Available
}

// LockTimeoutError indica contención transitoria sobre una clave de stock.
type LockTimeoutError struct {
	Key string
	Err error
}

func (e *LockTimeoutError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s (%s): %v", ErrLockTimeout, e.Key, e.Err)
	}
	return fmt.Sprintf("%s (%s)", ErrLockTimeout, e.Key)
}

func (e *LockTimeoutError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrLockTimeout, e.Err}
	}
	return []error{ErrLockTimeout}
}

// IsRetryable solo los timeouts de bloqueo se pueden reintentar.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrLockTimeout)
}

// Malformed envuelve ErrMalformedMovement con el detalle de la regla violada.
func Malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedMovement, fmt.Sprintf(format, args...))
}
