package entity

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// CurrencyPlaces decimales de la moneda (FCFA no tiene subunidad).
const CurrencyPlaces int32 = 0

// StockKey identifica un registro de stock: un producto en una bodega.
type StockKey struct {
	ProductID   string
	WarehouseID string
}

func (k StockKey) String() string {
	return k.ProductID + ":" + k.WarehouseID
}

// Less orden total y estable entre claves; usado para bloquear sin deadlocks.
func (k StockKey) Less(o StockKey) bool {
	if k.ProductID != o.ProductID {
		return k.ProductID < o.ProductID
	}
	return k.WarehouseID < o.WarehouseID
}

// SortKeys ordena y elimina duplicados.
func SortKeys(keys []StockKey) []StockKey {
	out := make([]StockKey, 0, len(keys))
	seen := make(map[StockKey]struct{}, len(keys))
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}

// StockRecord stock actual de un producto en una bodega (agregado mutable).
// QuantityAvailable y StockValue son derivados: solo SetPosition los actualiza.
type StockRecord struct {
	ID                  string
	ProductID           string
	WarehouseID         string
	QuantityOnHand      int64
	QuantityReserved    int64 // mantenido por el flujo de ventas; aquí solo se lee
	WeightedAverageCost decimal.Decimal
	StockValue          decimal.Decimal
	LastMovementAt      time.Time
	ExpiryDate          *time.Time
	Version             int64 // 0 = aún no persistido
	CreatedBy           string
	UpdatedBy           string
	CreatedAt           time.Time
	UpdatedAt           time.Time
	DeletedAt           *time.Time
}

// NewStockRecord registro vacío sembrado con un costo inicial.
func NewStockRecord(key StockKey, seedCost decimal.Decimal, userID string, now time.Time) *StockRecord {
	r := &StockRecord{
		ProductID:   key.ProductID,
		WarehouseID: key.WarehouseID,
		CreatedBy:   userID,
		UpdatedBy:   userID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	r.SetPosition(0, seedCost)
	return r
}

func (r *StockRecord) Key() StockKey {
	return StockKey{ProductID: r.ProductID, WarehouseID: r.WarehouseID}
}

// QuantityAvailable = QuantityOnHand - QuantityReserved.
func (r *StockRecord) QuantityAvailable() int64 {
	return r.QuantityOnHand - r.QuantityReserved
}

// SetPosition fija cantidad y costo promedio y recalcula el valor del stock.
func (r *StockRecord) SetPosition(quantity int64, cost decimal.Decimal) {
	r.QuantityOnHand = quantity
	r.WeightedAverageCost = cost.Round(CurrencyPlaces)
	r.StockValue = r.WeightedAverageCost.Mul(decimal.NewFromInt(quantity)).Round(CurrencyPlaces)
}

// Touch marca el registro como modificado por un movimiento.
func (r *StockRecord) Touch(userID string, now time.Time) {
	r.LastMovementAt = now
	r.UpdatedAt = now
	r.UpdatedBy = userID
}

// Clone copia profunda (instantáneas antes/después).
func (r *StockRecord) Clone() *StockRecord {
	if r == nil {
		return nil
	}
	c := *r
	if r.ExpiryDate != nil {
		t := *r.ExpiryDate
		c.ExpiryDate = &t
	}
	if r.DeletedAt != nil {
		t := *r.DeletedAt
		c.DeletedAt = &t
	}
	return &c
}

// RecordChange par antes/después de una operación, para auditoría.
// Before es nil cuando el registro se creó en la operación.
type RecordChange struct {
	Before *StockRecord
	After  *StockRecord
}
