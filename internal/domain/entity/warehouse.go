package entity

import "time"

// Warehouse representa una bodega o depósito donde se almacena inventario (multi-bodega).
type Warehouse struct {
	ID        string
	Code      string
	Name      string
	Type      string // principal, tienda, tránsito...
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
