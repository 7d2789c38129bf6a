package production

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/hongquyngo/vti-production-sub002/internal/domain/inventory"
	"github.com/hongquyngo/vti-production-sub002/internal/domain/production"
	"github.com/hongquyngo/vti-production-sub002/internal/domain/shared"
	"github.com/hongquyngo/vti-production-sub002/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ReturnMaterials reverses part of earlier issuances. GOOD lines go back into
// stock as new lots; DAMAGED lines are recorded but not restocked. Either way
// the requirement's issued quantity drops by the primary equivalent.
func (s *MaterialService) ReturnMaterials(ctx context.Context, req ReturnMaterialsRequest) (*ReturnMaterialsResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "material_return", "return")
	defer span.End()
	telemetry.SetAttribute(span, telemetry.SpanAttrOrderID, req.OrderID.String())

	result, err := s.returnMaterials(ctx, req)
	if err != nil {
		telemetry.RecordError(span, err)
		s.recordRejection(ctx, "return", err)
		s.logger.Info("material return rejected",
			zap.String("order_id", req.OrderID.String()),
			zap.Error(err),
		)
		return nil, err
	}
	return result, nil
}

func (s *MaterialService) returnMaterials(ctx context.Context, req ReturnMaterialsRequest) (*ReturnMaterialsResult, error) {
	if err := validateReturnRequest(req); err != nil {
		return nil, err
	}

	requested := make(map[uuid.UUID]decimal.Decimal, len(req.Lines))
	for _, line := range req.Lines {
		requested[line.IssuanceDetailID] = requested[line.IssuanceDetailID].Add(line.Quantity.Round(inventory.QuantityScale))
	}
	detailIDs := make([]uuid.UUID, 0, len(requested))
	for id := range requested {
		detailIDs = append(detailIDs, id)
	}
	sort.Slice(detailIDs, func(i, j int) bool { return detailIDs[i].String() < detailIDs[j].String() })

	var record *production.ReturnRecord
	restocked, scrapped := 0, 0

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		order, err := repos.OrderRepo().LockByID(ctx, req.OrderID)
		if err != nil {
			return lookupError(err, "production order %s not found", req.OrderID)
		}

		locked, err := repos.IssuanceRepo().LockDetails(ctx, order.ID, detailIDs)
		if err != nil {
			return err
		}
		details := make(map[uuid.UUID]*production.IssuanceDetail, len(locked))
		for i := range locked {
			details[locked[i].ID] = &locked[i]
		}

		returned, err := repos.ReturnRepo().SumReturnedByDetail(ctx, detailIDs)
		if err != nil {
			return err
		}
		for _, id := range detailIDs {
			detail, ok := details[id]
			if !ok {
				return shared.NewDomainErrorf(shared.ErrValidation,
					"issuance detail %s is not a confirmed issuance of order %s", id, order.OrderNo)
			}
			returnable := detail.Returnable(returned[id])
			if requested[id].GreaterThan(returnable) {
				return shared.NewDomainErrorf(shared.ErrReturnExceedsIssued,
					"issuance detail %s: requested %s, returnable %s", id, requested[id], returnable)
			}
		}

		reqs, err := repos.RequirementRepo().LockByOrder(ctx, order.ID)
		if err != nil {
			return err
		}
		byMaterial := make(map[uuid.UUID]*production.MaterialRequirement, len(reqs))
		for _, r := range reqs {
			byMaterial[r.MaterialID] = r
		}

		returnedAt := s.now()
		record, err = production.NewReturnRecord(production.NewReturnNo(returnedAt), returnedAt, order, req.Reason, req.ReturnedBy, req.ReceivedBy)
		if err != nil {
			return err
		}
		ledger := inventory.NewLedger(repos.LotRepo(), s.strategy)

		decrements := make(map[uuid.UUID]decimal.Decimal)
		for _, line := range req.Lines {
			issued := details[line.IssuanceDetailID]
			d, err := record.AddDetail(issued, line.Quantity.Round(inventory.QuantityScale), line.Condition)
			if err != nil {
				return err
			}

			if d.Condition.Restocks() {
				detailID := d.ID
				lot, err := ledger.RecordIn(ctx, inventory.InboundRequest{
					ProductID:   d.MaterialID,
					WarehouseID: order.WarehouseID,
					Type:        inventory.EntryTypeProductionReturn,
					Quantity:    d.Quantity,
					BatchNo:     d.BatchNo,
					ExpiryDate:  d.ExpiryDate,
				}, inventory.Correlation{
					GroupID:        record.GroupID,
					ActionDetailID: &detailID,
					CreatedBy:      &record.ReceivedBy,
					Reason:         record.Reason,
				})
				if err != nil {
					return err
				}
				lotID := lot.ID
				d.RestockEntryID = &lotID
				restocked++
			} else {
				scrapped++
			}

			materialID := issued.RequirementMaterialID()
			decrements[materialID] = decrements[materialID].Add(d.EquivalentQty)
		}

		for materialID := range decrements {
			if _, ok := byMaterial[materialID]; !ok {
				return shared.NewDomainErrorf(shared.ErrInvalidState,
					"order %s has no requirement for returned material %s", order.OrderNo, materialID)
			}
		}
		for _, r := range reqs {
			amount, ok := decrements[r.MaterialID]
			if !ok {
				continue
			}
			if err := r.SubtractIssued(amount); err != nil {
				return err
			}
			if err := repos.RequirementRepo().Save(ctx, r); err != nil {
				return err
			}
		}

		if err := repos.ReturnRepo().Create(ctx, record); err != nil {
			return err
		}
		record.AddDomainEvent(production.NewMaterialsReturnedEvent(record))
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishDomainEvents(ctx, record)
	s.metrics.RecordReturn(ctx, record.WarehouseID, restocked, scrapped)
	s.logger.Info("materials returned",
		zap.String("return_no", record.ReturnNo),
		zap.String("order_id", record.OrderID.String()),
		zap.Int("restocked", restocked),
		zap.Int("scrapped", scrapped),
	)

	out := &ReturnMaterialsResult{
		ReturnID: record.ID,
		ReturnNo: record.ReturnNo,
		OrderID:  record.OrderID,
		Details:  make([]ReturnDetailResponse, len(record.Details)),
	}
	for i := range record.Details {
		out.Details[i] = ToReturnDetailResponse(&record.Details[i])
	}
	return out, nil
}

func validateReturnRequest(req ReturnMaterialsRequest) error {
	if req.ReturnedBy == uuid.Nil || req.ReceivedBy == uuid.Nil {
		return shared.NewDomainErrorf(shared.ErrValidation, "returning and receiving employees are required")
	}
	if strings.TrimSpace(req.Reason) == "" {
		return shared.NewDomainErrorf(shared.ErrValidation, "return reason is required")
	}
	if len(req.Lines) == 0 {
		return shared.NewDomainErrorf(shared.ErrValidation, "at least one return line is required")
	}
	for _, line := range req.Lines {
		if line.IssuanceDetailID == uuid.Nil {
			return shared.NewDomainErrorf(shared.ErrValidation, "issuance detail is required on every return line")
		}
		if !line.Quantity.Round(inventory.QuantityScale).IsPositive() {
			return shared.NewDomainErrorf(shared.ErrValidation,
				"return quantity for detail %s must be positive", line.IssuanceDetailID)
		}
		if !line.Condition.IsValid() {
			return shared.NewDomainErrorf(shared.ErrValidation,
				"invalid condition %q for detail %s", line.Condition, line.IssuanceDetailID)
		}
	}
	return nil
}
