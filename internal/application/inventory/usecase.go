package inventory

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Libasse27/erp-senegal-sub002/internal/domain"
	"github.com/Libasse27/erp-senegal-sub002/internal/domain/entity"
	"github.com/Libasse27/erp-senegal-sub002/internal/domain/inventory"
	"github.com/Libasse27/erp-senegal-sub002/internal/domain/repository"
	"github.com/Libasse27/erp-senegal-sub002/pkg/logger"
)

const tracerName = "github.com/Libasse27/erp-senegal-sub002/internal/application/inventory"

// Límites de paginación de ListMovements.
const (
	DefaultMovementLimit = 100
	MaxMovementLimit     = 1000
)

// StockService registra entradas, salidas, traslados y ajustes de forma transaccional:
// bloquea las claves afectadas en orden, carga los registros, aplica el costo promedio,
// persiste registro(s) + un único movimiento y hace Commit o Rollback.
type StockService struct {
	txRunner      TxRunner
	locker        KeyLocker
	productRepo   repository.ProductRepository
	warehouseRepo repository.WarehouseRepository
	stockRepo     repository.StockRecordRepository
	movRepo       repository.StockMovementRepository

	notifier      Notifier
	log           *logger.Logger
	tracer        trace.Tracer
	now           func() time.Time
	expiryHorizon time.Duration
}

// Option configura dependencias opcionales del servicio.
type Option func(*StockService)

// WithNotifier publica alertas y auditoría después de cada commit.
func WithNotifier(n Notifier) Option {
	return func(s *StockService) { s.notifier = n }
}

func WithLogger(l *logger.Logger) Option {
	return func(s *StockService) { s.log = l }
}

func WithClock(now func() time.Time) Option {
	return func(s *StockService) { s.now = now }
}

// WithExpiryHorizon ventana de vencimiento próximo para ListAlerts (por defecto 30 días).
func WithExpiryHorizon(d time.Duration) Option {
	return func(s *StockService) {
		if d > 0 {
			s.expiryHorizon = d
		}
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(s *StockService) { s.tracer = t }
}

// NewStockService construye el servicio. stockRepo y movRepo se usan para lecturas fuera de transacción.
func NewStockService(
	txRunner TxRunner,
	locker KeyLocker,
	productRepo repository.ProductRepository,
	warehouseRepo repository.WarehouseRepository,
	stockRepo repository.StockRecordRepository,
	movRepo repository.StockMovementRepository,
	opts ...Option,
) *StockService {
	s := &StockService{
		txRunner:      txRunner,
		locker:        locker,
		productRepo:   productRepo,
		warehouseRepo: warehouseRepo,
		stockRepo:     stockRepo,
		movRepo:       movRepo,
		log:           logger.Nop(),
		tracer:        otel.Tracer(tracerName),
		now:           time.Now,
		expiryHorizon: inventory.DefaultExpiryHorizon,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// EntryInput entrada de mercancía (compra, producción, devolución de cliente...).
// UnitCost nil usa el precio de compra del producto; el costo se redondea a FCFA enteros.
// Reason vacío equivale a purchase.
type EntryInput struct {
	ProductID   string
	WarehouseID string
	Quantity    int64
	UnitCost    *decimal.Decimal
	Reason      entity.MovementReason
	Note        string
	Document    *entity.DocumentRef
	ExpiryDate  *time.Time
	UserID      string
}

// ExitInput salida de mercancía. Reason vacío equivale a sale.
type ExitInput struct {
	ProductID   string
	WarehouseID string
	Quantity    int64
	Reason      entity.MovementReason
	Note        string
	Document    *entity.DocumentRef
	UserID      string
}

type TransferInput struct {
	ProductID              string
	SourceWarehouseID      string
	DestinationWarehouseID string
	Quantity               int64
	Note                   string
	Document               *entity.DocumentRef
	UserID                 string
}

// AdjustmentInput corrección por conteo físico: positive-adjustment, negative-adjustment o loss.
type AdjustmentInput struct {
	ProductID   string
	WarehouseID string
	Quantity    int64
	Reason      entity.MovementReason
	Note        string
	UserID      string
}

// OperationResult resultado de una operación confirmada.
// Record es el registro principal (origen en salidas/traslados, destino en entradas);
// Destination solo se llena en traslados. Alert es nil si no se cruzó ningún umbral.
type OperationResult struct {
	Movement    *entity.StockMovement
	Record      *entity.StockRecord
	Destination *entity.StockRecord
	Changes     []entity.RecordChange
	Alert       *entity.StockAlert
}

// ReconcileReport compara el registro vivo con el reconstruido desde el libro de movimientos.
type ReconcileReport struct {
	Live       *entity.StockRecord
	Replayed   *entity.StockRecord
	Movements  int
	Consistent bool
}

type mutation func(
	ctx context.Context,
	stockRepo repository.StockRecordRepository,
	movRepo repository.StockMovementRepository,
	res *OperationResult,
) error

// RecordEntry suma stock en la bodega destino y recalcula el costo promedio ponderado.
// Crea el registro si no existe, sembrado con el costo de la entrada.
func (s *StockService) RecordEntry(ctx context.Context, in EntryInput) (*OperationResult, error) {
	if err := validateKeyInput(in.ProductID, in.WarehouseID, in.Quantity); err != nil {
		return nil, err
	}
	if in.UnitCost != nil && in.UnitCost.IsNegative() {
		return nil, fmt.Errorf("%w: costo unitario negativo", domain.ErrInvalidInput)
	}
	reason := in.Reason
	if reason == "" {
		reason = entity.ReasonPurchase
	}
	mov, err := entity.NewEntryMovement(in.ProductID, in.WarehouseID, in.Quantity, reason)
	if err != nil {
		return nil, err
	}
	product, err := s.stockableProduct(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}
	if err := s.requireWarehouse(ctx, in.WarehouseID); err != nil {
		return nil, err
	}
	if in.ExpiryDate != nil && !product.HasExpiry {
		return nil, fmt.Errorf("%w: el producto %s no maneja vencimiento", domain.ErrInvalidInput, product.ID)
	}
	// FCFA no tiene subunidad: el costo se fija entero antes de costear y de registrarse.
	unitCost := product.PurchasePrice
	if in.UnitCost != nil {
		unitCost = *in.UnitCost
	}
	unitCost = inventory.RoundCurrency(unitCost)
	key := entity.StockKey{ProductID: in.ProductID, WarehouseID: in.WarehouseID}

	return s.execute(ctx, "record_entry", in.UserID, []entity.StockKey{key}, func(
		ctx context.Context,
		stockRepo repository.StockRecordRepository,
		movRepo repository.StockMovementRepository,
		res *OperationResult,
	) error {
		now := s.now()
		rec, before, err := loadOrCreate(ctx, stockRepo, key, unitCost, in.UserID, now)
		if err != nil {
			return err
		}
		if err := ensureCapacity(rec, in.Quantity); err != nil {
			return err
		}
		prev := rec.QuantityOnHand
		qty, cost := inventory.ApplyIncomingStock(rec, in.Quantity, unitCost)
		rec.SetPosition(qty, cost)
		if in.ExpiryDate != nil {
			rec.ExpiryDate = earliest(rec.ExpiryDate, in.ExpiryDate)
		}
		rec.Touch(in.UserID, now)
		if err := stockRepo.Save(ctx, rec); err != nil {
			return err
		}
		mov.Stamp(unitCost, prev, qty)
		if err := appendMovement(ctx, movRepo, mov, in.Note, in.Document, in.UserID, now); err != nil {
			return err
		}
		res.Movement = mov
		res.Record = rec.Clone()
		res.Changes = []entity.RecordChange{{Before: before, After: rec.Clone()}}
		return nil
	})
}

// RecordExit resta stock al costo promedio vigente (el costo no cambia).
// Se valida contra la cantidad disponible (existencia - reservado).
func (s *StockService) RecordExit(ctx context.Context, in ExitInput) (*OperationResult, error) {
	if err := validateKeyInput(in.ProductID, in.WarehouseID, in.Quantity); err != nil {
		return nil, err
	}
	reason := in.Reason
	if reason == "" {
		reason = entity.ReasonSale
	}
	mov, err := entity.NewExitMovement(in.ProductID, in.WarehouseID, in.Quantity, reason)
	if err != nil {
		return nil, err
	}
	product, err := s.stockableProduct(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}
	if err := s.requireWarehouse(ctx, in.WarehouseID); err != nil {
		return nil, err
	}
	key := entity.StockKey{ProductID: in.ProductID, WarehouseID: in.WarehouseID}

	return s.execute(ctx, "record_exit", in.UserID, []entity.StockKey{key}, func(
		ctx context.Context,
		stockRepo repository.StockRecordRepository,
		movRepo repository.StockMovementRepository,
		res *OperationResult,
	) error {
		now := s.now()
		rec, err := loadExisting(ctx, stockRepo, key)
		if err != nil {
			return err
		}
		if available := rec.QuantityAvailable(); available < in.Quantity {
			return &domain.InsufficientStockError{
				ProductID: key.ProductID, WarehouseID: key.WarehouseID,
				Requested: in.Quantity, Available: available,
			}
		}
		before := rec.Clone()
		decrease(rec, in.Quantity)
		rec.Touch(in.UserID, now)
		if err := stockRepo.Save(ctx, rec); err != nil {
			return err
		}
		mov.Stamp(rec.WeightedAverageCost, before.QuantityOnHand, rec.QuantityOnHand)
		if err := appendMovement(ctx, movRepo, mov, in.Note, in.Document, in.UserID, now); err != nil {
			return err
		}
		res.Movement = mov
		res.Record = rec.Clone()
		res.Changes = []entity.RecordChange{{Before: before, After: rec.Clone()}}
		res.Alert = inventory.QuantityAlert(rec, product, before.QuantityOnHand, now)
		return nil
	})
}

// TransferStock mueve stock entre bodegas en un único movimiento. El destino recibe
// la mercancía al costo promedio del origen. Las dos claves se bloquean en orden.
func (s *StockService) TransferStock(ctx context.Context, in TransferInput) (*OperationResult, error) {
	if err := validateKeyInput(in.ProductID, in.SourceWarehouseID, in.Quantity); err != nil {
		return nil, err
	}
	if in.DestinationWarehouseID == "" {
		return nil, fmt.Errorf("%w: bodega destino requerida", domain.ErrInvalidTransfer)
	}
	if in.SourceWarehouseID == in.DestinationWarehouseID {
		return nil, fmt.Errorf("%w: origen y destino son la misma bodega %s", domain.ErrInvalidTransfer, in.SourceWarehouseID)
	}
	mov, err := entity.NewTransferMovement(in.ProductID, in.SourceWarehouseID, in.DestinationWarehouseID, in.Quantity)
	if err != nil {
		return nil, err
	}
	product, err := s.stockableProduct(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}
	if err := s.requireWarehouse(ctx, in.SourceWarehouseID); err != nil {
		return nil, err
	}
	if err := s.requireWarehouse(ctx, in.DestinationWarehouseID); err != nil {
		return nil, err
	}
	srcKey := entity.StockKey{ProductID: in.ProductID, WarehouseID: in.SourceWarehouseID}
	dstKey := entity.StockKey{ProductID: in.ProductID, WarehouseID: in.DestinationWarehouseID}
	keys := entity.SortKeys([]entity.StockKey{srcKey, dstKey})

	return s.execute(ctx, "transfer_stock", in.UserID, keys, func(
		ctx context.Context,
		stockRepo repository.StockRecordRepository,
		movRepo repository.StockMovementRepository,
		res *OperationResult,
	) error {
		now := s.now()
		// Filas bloqueadas en el mismo orden que las claves.
		loaded := make(map[entity.StockKey]*entity.StockRecord, len(keys))
		for _, k := range keys {
			rec, err := stockRepo.GetForUpdate(ctx, k)
			if err != nil {
				return err
			}
			loaded[k] = rec
		}
		src := loaded[srcKey]
		if src == nil {
			return noStockRecord(srcKey)
		}
		if available := src.QuantityAvailable(); available < in.Quantity {
			return &domain.InsufficientStockError{
				ProductID: srcKey.ProductID, WarehouseID: srcKey.WarehouseID,
				Requested: in.Quantity, Available: available,
			}
		}
		cost := src.WeightedAverageCost
		srcBefore := src.Clone()
		dst := loaded[dstKey]
		dstBefore := dst.Clone()
		if dst == nil {
			dst = entity.NewStockRecord(dstKey, cost, in.UserID, now)
			dst.ID = uuid.NewString()
		}
		if err := ensureCapacity(dst, in.Quantity); err != nil {
			return err
		}

		qty, newCost := inventory.ApplyIncomingStock(dst, in.Quantity, cost)
		dst.SetPosition(qty, newCost)
		if src.ExpiryDate != nil {
			dst.ExpiryDate = earliest(dst.ExpiryDate, src.ExpiryDate)
		}
		decrease(src, in.Quantity)
		src.Touch(in.UserID, now)
		dst.Touch(in.UserID, now)

		if err := stockRepo.Save(ctx, src); err != nil {
			return err
		}
		if err := stockRepo.Save(ctx, dst); err != nil {
			return err
		}
		mov.Stamp(cost, srcBefore.QuantityOnHand, src.QuantityOnHand)
		if err := appendMovement(ctx, movRepo, mov, in.Note, in.Document, in.UserID, now); err != nil {
			return err
		}
		res.Movement = mov
		res.Record = src.Clone()
		res.Destination = dst.Clone()
		res.Changes = []entity.RecordChange{
			{Before: srcBefore, After: src.Clone()},
			{Before: dstBefore, After: dst.Clone()},
		}
		res.Alert = inventory.QuantityAlert(src, product, srcBefore.QuantityOnHand, now)
		return nil
	})
}

// AdjustStock corrige la existencia física. El ajuste positivo entra al costo promedio
// del propio registro; el negativo (o pérdida) se valida contra la existencia, no contra
// lo disponible, y si deja menos existencia que lo reservado, lo reservado se reduce.
func (s *StockService) AdjustStock(ctx context.Context, in AdjustmentInput) (*OperationResult, error) {
	if err := validateKeyInput(in.ProductID, in.WarehouseID, in.Quantity); err != nil {
		return nil, err
	}
	mov, err := entity.NewAdjustmentMovement(in.ProductID, in.WarehouseID, in.Quantity, in.Reason)
	if err != nil {
		return nil, err
	}
	product, err := s.stockableProduct(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}
	if err := s.requireWarehouse(ctx, in.WarehouseID); err != nil {
		return nil, err
	}
	key := entity.StockKey{ProductID: in.ProductID, WarehouseID: in.WarehouseID}

	return s.execute(ctx, "adjust_stock", in.UserID, []entity.StockKey{key}, func(
		ctx context.Context,
		stockRepo repository.StockRecordRepository,
		movRepo repository.StockMovementRepository,
		res *OperationResult,
	) error {
		now := s.now()
		var (
			rec    *entity.StockRecord
			before *entity.StockRecord
			err    error
		)
		if mov.Increases() {
			rec, before, err = loadOrCreate(ctx, stockRepo, key, product.PurchasePrice, in.UserID, now)
			if err != nil {
				return err
			}
			if err := ensureCapacity(rec, in.Quantity); err != nil {
				return err
			}
			cost := rec.WeightedAverageCost
			prev := rec.QuantityOnHand
			qty, newCost := inventory.ApplyIncomingStock(rec, in.Quantity, cost)
			rec.SetPosition(qty, newCost)
			mov.Stamp(cost, prev, qty)
		} else {
			rec, err = loadExisting(ctx, stockRepo, key)
			if err != nil {
				return err
			}
			if rec.QuantityOnHand < in.Quantity {
				return &domain.InsufficientStockError{
					ProductID: key.ProductID, WarehouseID: key.WarehouseID,
					Requested: in.Quantity, Available: rec.QuantityOnHand,
				}
			}
			before = rec.Clone()
			decrease(rec, in.Quantity)
			if rec.QuantityReserved > rec.QuantityOnHand {
				rec.QuantityReserved = rec.QuantityOnHand
			}
			mov.Stamp(rec.WeightedAverageCost, before.QuantityOnHand, rec.QuantityOnHand)
			res.Alert = inventory.QuantityAlert(rec, product, before.QuantityOnHand, now)
		}
		rec.Touch(in.UserID, now)
		if err := stockRepo.Save(ctx, rec); err != nil {
			return err
		}
		if err := appendMovement(ctx, movRepo, mov, in.Note, nil, in.UserID, now); err != nil {
			return err
		}
		res.Movement = mov
		res.Record = rec.Clone()
		res.Changes = []entity.RecordChange{{Before: before, After: rec.Clone()}}
		return nil
	})
}

// GetStockRecord devuelve el registro de la clave o domain.ErrNoStockRecord.
func (s *StockService) GetStockRecord(ctx context.Context, productID, warehouseID string) (*entity.StockRecord, error) {
	if productID == "" || warehouseID == "" {
		return nil, fmt.Errorf("%w: producto y bodega requeridos", domain.ErrInvalidInput)
	}
	key := entity.StockKey{ProductID: productID, WarehouseID: warehouseID}
	rec, err := s.stockRepo.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, noStockRecord(key)
	}
	return rec, nil
}

// ListMovements lista movimientos (más recientes primero) según los filtros.
func (s *StockService) ListMovements(ctx context.Context, filter repository.MovementFilter) ([]*entity.StockMovement, error) {
	if filter.From != nil && filter.To != nil && filter.From.After(*filter.To) {
		return nil, fmt.Errorf("%w: rango de fechas invertido", domain.ErrInvalidInput)
	}
	if filter.Offset < 0 {
		return nil, fmt.Errorf("%w: offset negativo", domain.ErrInvalidInput)
	}
	if filter.Limit <= 0 {
		filter.Limit = DefaultMovementLimit
	}
	if filter.Limit > MaxMovementLimit {
		filter.Limit = MaxMovementLimit
	}
	return s.movRepo.List(ctx, filter)
}

// ListAlerts barre los registros activos y los clasifica contra los umbrales de su producto.
func (s *StockService) ListAlerts(ctx context.Context) (*inventory.AlertReport, error) {
	ctx, span := s.tracer.Start(ctx, "inventory.list_alerts")
	defer span.End()

	records, err := s.stockRepo.ListActive(ctx)
	if err != nil {
		return nil, failSpan(span, err)
	}
	now := s.now()
	report := &inventory.AlertReport{GeneratedAt: now}
	products := make(map[string]*entity.Product)
	for _, rec := range records {
		product, ok := products[rec.ProductID]
		if !ok {
			product, err = s.productRepo.GetByID(ctx, rec.ProductID)
			if err != nil {
				return nil, failSpan(span, err)
			}
			if product == nil {
				return nil, failSpan(span, fmt.Errorf("%w: %s", domain.ErrProductNotFound, rec.ProductID))
			}
			products[rec.ProductID] = product
		}
		if !product.IsStockable {
			continue
		}
		report.Add(rec, product, now, s.expiryHorizon)
	}
	span.SetAttributes(attribute.Int("stock.records", len(records)))
	return report, nil
}

// Reconcile reconstruye el registro desde su libro de movimientos y lo compara con el vivo.
func (s *StockService) Reconcile(ctx context.Context, productID, warehouseID string) (*ReconcileReport, error) {
	live, err := s.GetStockRecord(ctx, productID, warehouseID)
	if err != nil {
		return nil, err
	}
	movements, err := s.movRepo.ListByKey(ctx, live.Key())
	if err != nil {
		return nil, err
	}
	replayed, err := inventory.Replay(live.Key(), movements)
	if err != nil {
		return nil, err
	}
	return &ReconcileReport{
		Live:       live,
		Replayed:   replayed,
		Movements:  len(movements),
		Consistent: inventory.Matches(live, replayed),
	}, nil
}

// execute bloquea las claves, corre fn en una transacción y, ya confirmada, publica alerta y auditoría.
func (s *StockService) execute(ctx context.Context, op, userID string, keys []entity.StockKey, fn mutation) (*OperationResult, error) {
	ctx, span := s.tracer.Start(ctx, "inventory."+op, trace.WithAttributes(
		attribute.String("stock.keys", joinKeys(keys)),
		attribute.String("user.id", userID),
	))
	defer span.End()

	res, err := s.commit(ctx, keys, fn)
	if err != nil {
		s.log.Debug().Err(err).Str("operation", op).Str("keys", joinKeys(keys)).Msg("operación de stock rechazada")
		return nil, failSpan(span, err)
	}
	span.SetAttributes(
		attribute.String("movement.id", res.Movement.ID),
		attribute.Int64("movement.sequence", res.Movement.Sequence),
	)
	s.log.Debug().
		Str("operation", op).
		Str("movement_id", res.Movement.ID).
		Str("type", string(res.Movement.Type)).
		Int64("quantity", res.Movement.Quantity).
		Str("keys", joinKeys(keys)).
		Msg("movimiento de stock registrado")
	s.publish(ctx, op, userID, res)
	return res, nil
}

func (s *StockService) commit(ctx context.Context, keys []entity.StockKey, fn mutation) (*OperationResult, error) {
	release, err := s.locker.Lock(ctx, keys...)
	if err != nil {
		return nil, err
	}
	defer release()

	var res *OperationResult
	err = s.txRunner.Run(ctx, func(
		stockRepo repository.StockRecordRepository,
		movRepo repository.StockMovementRepository,
	) error {
		res = &OperationResult{}
		return fn(ctx, stockRepo, movRepo, res)
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// publish reenvía al notificador; un fallo aquí no revierte la operación ya confirmada.
func (s *StockService) publish(ctx context.Context, op, userID string, res *OperationResult) {
	if s.notifier == nil {
		return
	}
	if res.Alert != nil {
		if err := s.notifier.PublishAlert(ctx, *res.Alert); err != nil {
			s.log.Warn().Err(err).Str("operation", op).Str("level", string(res.Alert.Level)).Msg("no se pudo publicar la alerta de stock")
		}
	}
	entry := entity.AuditEntry{
		Operation: op,
		Movement:  res.Movement,
		Changes:   res.Changes,
		UserID:    userID,
		At:        res.Movement.CreatedAt,
	}
	if err := s.notifier.PublishAudit(ctx, entry); err != nil {
		s.log.Warn().Err(err).Str("operation", op).Str("movement_id", res.Movement.ID).Msg("no se pudo publicar la auditoría")
	}
}

func (s *StockService) stockableProduct(ctx context.Context, id string) (*entity.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrProductNotFound, id)
	}
	if !product.IsStockable {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotStockable, id)
	}
	return product, nil
}

func (s *StockService) requireWarehouse(ctx context.Context, id string) error {
	wh, err := s.warehouseRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if wh == nil {
		return fmt.Errorf("%w: %s", domain.ErrWarehouseNotFound, id)
	}
	return nil
}

func validateKeyInput(productID, warehouseID string, quantity int64) error {
	if productID == "" || warehouseID == "" {
		return fmt.Errorf("%w: producto y bodega requeridos", domain.ErrInvalidInput)
	}
	if quantity <= 0 {
		return fmt.Errorf("%w: la cantidad debe ser positiva (%d)", domain.ErrInvalidInput, quantity)
	}
	return nil
}

// loadOrCreate bloquea la fila; si no existe devuelve un registro nuevo (before nil).
func loadOrCreate(
	ctx context.Context,
	stockRepo repository.StockRecordRepository,
	key entity.StockKey,
	seedCost decimal.Decimal,
	userID string,
	now time.Time,
) (rec *entity.StockRecord, before *entity.StockRecord, err error) {
	rec, err = stockRepo.GetForUpdate(ctx, key)
	if err != nil {
		return nil, nil, err
	}
	if rec == nil {
		rec = entity.NewStockRecord(key, seedCost, userID, now)
		rec.ID = uuid.NewString()
		return rec, nil, nil
	}
	return rec, rec.Clone(), nil
}

func loadExisting(ctx context.Context, stockRepo repository.StockRecordRepository, key entity.StockKey) (*entity.StockRecord, error) {
	rec, err := stockRepo.GetForUpdate(ctx, key)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, noStockRecord(key)
	}
	return rec, nil
}

// ensureCapacity rechaza entradas que desbordarían la existencia (int64).
func ensureCapacity(rec *entity.StockRecord, quantity int64) error {
	if quantity > math.MaxInt64-rec.QuantityOnHand {
		return fmt.Errorf("%w: la existencia superaría el máximo (%d + %d)", domain.ErrInvalidInput, rec.QuantityOnHand, quantity)
	}
	return nil
}

// decrease resta cantidad sin tocar el costo. Sin existencia no queda nada por vencer.
func decrease(rec *entity.StockRecord, quantity int64) {
	rec.SetPosition(rec.QuantityOnHand-quantity, rec.WeightedAverageCost)
	if rec.QuantityOnHand == 0 {
		rec.ExpiryDate = nil
	}
}

func appendMovement(
	ctx context.Context,
	movRepo repository.StockMovementRepository,
	mov *entity.StockMovement,
	note string,
	doc *entity.DocumentRef,
	userID string,
	now time.Time,
) error {
	mov.ID = uuid.NewString()
	mov.Note = note
	mov.Document = doc
	mov.CreatedBy = userID
	mov.CreatedAt = now
	return movRepo.Append(ctx, mov)
}

func noStockRecord(key entity.StockKey) error {
	return fmt.Errorf("%w: %s", domain.ErrNoStockRecord, key)
}

func earliest(current, candidate *time.Time) *time.Time {
	if candidate == nil {
		return current
	}
	if current == nil || candidate.Before(*current) {
		t := *candidate
		return &t
	}
	return current
}

func joinKeys(keys []entity.StockKey) string {
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k.String()
	}
	return strings.Join(parts, ",")
}

func failSpan(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
