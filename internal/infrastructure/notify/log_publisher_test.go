package notify_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Libasse27/erp-senegal-sub002/internal/domain/entity"
	"github.com/Libasse27/erp-senegal-sub002/internal/infrastructure/notify"
)

func TestLogPublisher_NuncaFalla(t *testing.T) {
	p := notify.NewLogPublisher(nil)
	exp := time.Now().Add(24 * time.Hour)

	assert.NoError(t, p.PublishAlert(context.Background(), entity.StockAlert{
		Level: entity.AlertExpiringSoon, ProductID: "p", WarehouseID: "w", ExpiryDate: &exp,
	}))
	assert.NoError(t, p.PublishAudit(context.Background(), entity.AuditEntry{
		Operation: "exit", Movement: &entity.StockMovement{ID: "m"},
	}))
}
