package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/Libasse27/erp-senegal-sub002/internal/application/dto"
	"github.com/Libasse27/erp-senegal-sub002/internal/domain"
	"github.com/Libasse27/erp-senegal-sub002/internal/domain/entity"
	"github.com/Libasse27/erp-senegal-sub002/internal/domain/inventory"
	"github.com/Libasse27/erp-senegal-sub002/internal/domain/repository"
)

// Adaptadores request HTTP -> casos de uso. userID viene del token.

func (s *StockService) RecordEntryFromRequest(ctx context.Context, userID string, in dto.StockEntryRequest) (*dto.StockOperationResponse, error) {
	res, err := s.RecordEntry(ctx, EntryInput{
		ProductID:   in.ProductID,
		WarehouseID: in.WarehouseID,
		Quantity:    in.Quantity,
		UnitCost:    in.UnitCost,
		Reason:      entity.MovementReason(in.Reason),
		Note:        in.Note,
		Document:    toDocumentRef(in.Document),
		ExpiryDate:  in.ExpiryDate,
		UserID:      userID,
	})
	if err != nil {
		return nil, err
	}
	return ToOperationResponse(res), nil
}

func (s *StockService) RecordExitFromRequest(ctx context.Context, userID string, in dto.StockExitRequest) (*dto.StockOperationResponse, error) {
	res, err := s.RecordExit(ctx, ExitInput{
		ProductID:   in.ProductID,
		WarehouseID: in.WarehouseID,
		Quantity:    in.Quantity,
		Reason:      entity.MovementReason(in.Reason),
		Note:        in.Note,
		Document:    toDocumentRef(in.Document),
		UserID:      userID,
	})
	if err != nil {
		return nil, err
	}
	return ToOperationResponse(res), nil
}

func (s *StockService) TransferStockFromRequest(ctx context.Context, userID string, in dto.StockTransferRequest) (*dto.StockOperationResponse, error) {
	res, err := s.TransferStock(ctx, TransferInput{
		ProductID:              in.ProductID,
		SourceWarehouseID:      in.SourceWarehouseID,
		DestinationWarehouseID: in.DestinationWarehouseID,
		Quantity:               in.Quantity,
		Note:                   in.Note,
		Document:               toDocumentRef(in.Document),
		UserID:                 userID,
	})
	if err != nil {
		return nil, err
	}
	return ToOperationResponse(res), nil
}

func (s *StockService) AdjustStockFromRequest(ctx context.Context, userID string, in dto.StockAdjustmentRequest) (*dto.StockOperationResponse, error) {
	res, err := s.AdjustStock(ctx, AdjustmentInput{
		ProductID:   in.ProductID,
		WarehouseID: in.WarehouseID,
		Quantity:    in.Quantity,
		Reason:      entity.MovementReason(in.Reason),
		Note:        in.Note,
		UserID:      userID,
	})
	if err != nil {
		return nil, err
	}
	return ToOperationResponse(res), nil
}

// ListMovementsFromQuery convierte los query params (fechas RFC3339) en MovementFilter.
func (s *StockService) ListMovementsFromQuery(ctx context.Context, q dto.MovementListQuery) (*dto.MovementListResponse, error) {
	filter := repository.MovementFilter{
		ProductID:   q.ProductID,
		WarehouseID: q.WarehouseID,
		Type:        entity.MovementType(q.Type),
		Reason:      entity.MovementReason(q.Reason),
		Limit:       q.Limit,
		Offset:      q.Offset,
	}
	var err error
	if filter.From, err = parseTime(q.From); err != nil {
		return nil, err
	}
	if filter.To, err = parseTime(q.To); err != nil {
		return nil, err
	}
	movements, err := s.ListMovements(ctx, filter)
	if err != nil {
		return nil, err
	}
	limit := q.Limit
	if limit <= 0 {
		limit = DefaultMovementLimit
	}
	out := &dto.MovementListResponse{
		Items: make([]dto.StockMovementResponse, 0, len(movements)),
		Page:  dto.PageResponse{Limit: limit, Offset: q.Offset},
	}
	for _, m := range movements {
		out.Items = append(out.Items, ToMovementResponse(m))
	}
	return out, nil
}

func parseTime(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, fmt.Errorf("%w: fecha %q", domain.ErrInvalidInput, s)
	}
	return &t, nil
}

func toDocumentRef(in *dto.DocumentRefRequest) *entity.DocumentRef {
	if in == nil {
		return nil
	}
	return &entity.DocumentRef{Type: in.Type, ID: in.ID}
}

// ToRecordResponse mapea entidad -> DTO.
func ToRecordResponse(r *entity.StockRecord) dto.StockRecordResponse {
	return dto.StockRecordResponse{
		ID:                  r.ID,
		ProductID:           r.ProductID,
		WarehouseID:         r.WarehouseID,
		QuantityOnHand:      r.QuantityOnHand,
		QuantityReserved:    r.QuantityReserved,
		QuantityAvailable:   r.QuantityAvailable(),
		WeightedAverageCost: r.WeightedAverageCost,
		StockValue:          r.StockValue,
		LastMovementAt:      r.LastMovementAt,
		ExpiryDate:          r.ExpiryDate,
		Version:             r.Version,
		UpdatedAt:           r.UpdatedAt,
	}
}

func ToMovementResponse(m *entity.StockMovement) dto.StockMovementResponse {
	out := dto.StockMovementResponse{
		ID:                     m.ID,
		Sequence:               m.Sequence,
		Type:                   string(m.Type),
		Reason:                 string(m.Reason),
		ProductID:              m.ProductID,
		SourceWarehouseID:      m.SourceWarehouseID,
		DestinationWarehouseID: m.DestinationWarehouseID,
		Quantity:               m.Quantity,
		UnitCost:               m.UnitCost,
		TotalCost:              m.TotalCost(),
		QuantityBefore:         m.QuantityBefore,
		QuantityAfter:          m.QuantityAfter,
		Note:                   m.Note,
		CreatedBy:              m.CreatedBy,
		CreatedAt:              m.CreatedAt,
	}
	if m.Document != nil {
		out.Document = &dto.DocumentRefRequest{Type: m.Document.Type, ID: m.Document.ID}
	}
	return out
}

func ToAlertResponse(a entity.StockAlert) dto.StockAlertResponse {
	return dto.StockAlertResponse{
		Level:          string(a.Level),
		ProductID:      a.ProductID,
		WarehouseID:    a.WarehouseID,
		QuantityOnHand: a.QuantityOnHand,
		StockMinimum:   a.StockMinimum,
		AlertThreshold: a.AlertThreshold,
		ExpiryDate:     a.ExpiryDate,
		NewlyCrossed:   a.NewlyCrossed,
	}
}

func ToOperationResponse(res *OperationResult) *dto.StockOperationResponse {
	out := &dto.StockOperationResponse{
		Movement: ToMovementResponse(res.Movement),
		Record:   ToRecordResponse(res.Record),
	}
	if res.Destination != nil {
		d := ToRecordResponse(res.Destination)
		out.Destination = &d
	}
	if res.Alert != nil {
		a := ToAlertResponse(*res.Alert)
		out.Alert = &a
	}
	return out
}

func ToAlertReportResponse(r *inventory.AlertReport) *dto.AlertReportResponse {
	return &dto.AlertReportResponse{
		Rupture:             toAlertResponses(r.Rupture),
		BelowMinimum:        toAlertResponses(r.BelowMinimum),
		BelowAlertThreshold: toAlertResponses(r.BelowAlertThreshold),
		ExpiringSoon:        toAlertResponses(r.ExpiringSoon),
		GeneratedAt:         r.GeneratedAt,
	}
}

func toAlertResponses(alerts []entity.StockAlert) []dto.StockAlertResponse {
	out := make([]dto.StockAlertResponse, 0, len(alerts))
	for _, a := range alerts {
		out = append(out, ToAlertResponse(a))
	}
	return out
}

func ToReconcileResponse(r *ReconcileReport) *dto.ReconcileResponse {
	return &dto.ReconcileResponse{
		Live:       ToRecordResponse(r.Live),
		Replayed:   ToRecordResponse(r.Replayed),
		Movements:  r.Movements,
		Consistent: r.Consistent,
	}
}
