package production

import (
	"context"

	"github.com/google/uuid"
	"github.com/hongquyngo/vti-production-sub002/internal/domain/production"
)

// QueryService answers read-only questions about order materials.
// It uses non-transactional repositories and takes no locks.
type QueryService struct {
	orderRepo       production.ProductionOrderRepository
	requirementRepo production.MaterialRequirementRepository
	issuanceRepo    production.IssuanceRepository
	returnRepo      production.ReturnRepository
}

// NewQueryService creates a new QueryService
func NewQueryService(
	orderRepo production.ProductionOrderRepository,
	requirementRepo production.MaterialRequirementRepository,
	issuanceRepo production.IssuanceRepository,
	returnRepo production.ReturnRepository,
) *QueryService {
	return &QueryService{
		orderRepo:       orderRepo,
		requirementRepo: requirementRepo,
		issuanceRepo:    issuanceRepo,
		returnRepo:      returnRepo,
	}
}

// GetOrderMaterials returns each requirement with its derived status and the
// order-level summary
func (s *QueryService) GetOrderMaterials(ctx context.Context, orderID uuid.UUID) (*OrderMaterialsResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, lookupError(err, "production order %s not found", orderID)
	}
	reqs, err := s.requirementRepo.FindByOrder(ctx, order.ID)
	if err != nil {
		return nil, err
	}

	summary := production.SummarizeRequirements(order.ID, reqs)
	resp := &OrderMaterialsResponse{
		OrderID:      order.ID,
		OrderNo:      order.OrderNo,
		OrderStatus:  string(order.Status),
		WarehouseID:  order.WarehouseID,
		Requirements: make([]RequirementResponse, len(reqs)),
		Summary: MaterialSummary{
			Total:         summary.Total,
			Pending:       summary.Pending,
			Partial:       summary.Partial,
			Issued:        summary.Issued,
			FullyIssued:   summary.FullyIssued,
			TotalRequired: summary.TotalRequired,
			TotalIssued:   summary.TotalIssued,
		},
	}
	for i, r := range reqs {
		resp.Requirements[i] = ToRequirementResponse(r)
	}
	return resp, nil
}

// ListReturnable returns issuance details of the order that still have
// quantity left to return
func (s *QueryService) ListReturnable(ctx context.Context, orderID uuid.UUID) ([]ReturnableDetailResponse, error) {
	if _, err := s.orderRepo.FindByID(ctx, orderID); err != nil {
		return nil, lookupError(err, "production order %s not found", orderID)
	}
	details, err := s.issuanceRepo.FindConfirmedDetailsByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if len(details) == 0 {
		return []ReturnableDetailResponse{}, nil
	}

	ids := make([]uuid.UUID, len(details))
	for i := range details {
		ids[i] = details[i].ID
	}
	returned, err := s.returnRepo.SumReturnedByDetail(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]ReturnableDetailResponse, 0, len(details))
	for i := range details {
		d := &details[i]
		returnable := d.Returnable(returned[d.ID])
		if !returnable.IsPositive() {
			continue
		}
		out = append(out, ReturnableDetailResponse{
			IssuanceDetailResponse: ToIssuanceDetailResponse(d),
			Returned:               returned[d.ID],
			Returnable:             returnable,
		})
	}
	return out, nil
}

// GetIssuance returns one issuance record with its details
func (s *QueryService) GetIssuance(ctx context.Context, id uuid.UUID) (*IssuanceResponse, error) {
	record, err := s.issuanceRepo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "issuance %s not found", id)
	}
	return ToIssuanceResponse(record), nil
}

// GetReturn returns one return record with its details
func (s *QueryService) GetReturn(ctx context.Context, id uuid.UUID) (*ReturnResponse, error) {
	record, err := s.returnRepo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "return %s not found", id)
	}
	return ToReturnResponse(record), nil
}
