package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product producto del catálogo visto por el libro de existencias (solo lectura).
// Los servicios (IsStockable = false) nunca tienen stock.
type Product struct {
	ID                  string
	Code                string
	Name                string
	IsStockable         bool
	PurchasePrice       decimal.Decimal // costo de referencia por defecto en entradas
	StockMinimum        int64
	StockAlertThreshold int64 // StockMinimum <= StockAlertThreshold
	HasExpiry           bool
	CreatedAt           time.Time
	UpdatedAt           time.Time
}
