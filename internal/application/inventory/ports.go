package inventory

import (
	"context"

	"github.com/Libasse27/erp-senegal-sub002/internal/domain/entity"
	"github.com/Libasse27/erp-senegal-sub002/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción, pasando repositorios atados a esa tx.
// Si fn devuelve error no se persiste nada.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		stockRepo repository.StockRecordRepository,
		movRepo repository.StockMovementRepository,
	) error) error
}

// KeyLocker exclusión mutua por clave de stock. Las claves se adquieren ordenadas y sin
// duplicados; si la espera supera el límite devuelve domain.ErrLockTimeout.
type KeyLocker interface {
	Lock(ctx context.Context, keys ...entity.StockKey) (release func(), err error)
}

// Notifier recibe alertas y auditoría después del commit (Kafka, log...).
type Notifier interface {
	PublishAlert(ctx context.Context, alert entity.StockAlert) error
	PublishAudit(ctx context.Context, entry entity.AuditEntry) error
}
