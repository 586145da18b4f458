package inventory

import (
	"context"
	"time"

	"github.com/Libasse27/erp-senegal-sub002/internal/domain/inventory"
	"github.com/Libasse27/erp-senegal-sub002/pkg/logger"
)

// AlertScanner ejecuta ListAlerts periódicamente y reenvía cada alerta al notificador.
type AlertScanner struct {
	svc      *StockService
	notifier Notifier
	interval time.Duration
	log      *logger.Logger
}

// NewAlertScanner construye el barrido. interval <= 0 lo deshabilita.
func NewAlertScanner(svc *StockService, notifier Notifier, interval time.Duration, log *logger.Logger) *AlertScanner {
	if log == nil {
		log = logger.Nop()
	}
	return &AlertScanner{svc: svc, notifier: notifier, interval: interval, log: log}
}

// Run bloquea hasta que ctx se cancele.
func (sc *AlertScanner) Run(ctx context.Context) error {
	if sc.interval <= 0 {
		sc.log.Info().Msg("barrido de alertas deshabilitado")
		<-ctx.Done()
		return nil
	}
	ticker := time.NewTicker(sc.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := sc.ScanOnce(ctx); err != nil && ctx.Err() == nil {
				sc.log.Error().Err(err).Msg("barrido de alertas falló")
			}
		}
	}
}

// ScanOnce un barrido completo. Devuelve el reporte aunque falle alguna publicación.
func (sc *AlertScanner) ScanOnce(ctx context.Context) (*inventory.AlertReport, error) {
	report, err := sc.svc.ListAlerts(ctx)
	if err != nil {
		return nil, err
	}
	published := 0
	if sc.notifier != nil {
		for _, alert := range report.All() {
			if err := sc.notifier.PublishAlert(ctx, alert); err != nil {
				sc.log.Warn().Err(err).
					Str("product_id", alert.ProductID).
					Str("warehouse_id", alert.WarehouseID).
					Str("level", string(alert.Level)).
					Msg("no se pudo publicar la alerta")
				continue
			}
			published++
		}
	}
	sc.log.Info().
		Int("rupture", len(report.Rupture)).
		Int("below_minimum", len(report.BelowMinimum)).
		Int("below_alert_threshold", len(report.BelowAlertThreshold)).
		Int("expiring_soon", len(report.ExpiringSoon)).
		Int("published", published).
		Msg("barrido de alertas completado")
	return report, nil
}
