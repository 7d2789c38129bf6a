package production

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderMaterialSummary aggregates requirement statuses for one order
type OrderMaterialSummary struct {
	OrderID       uuid.UUID
	Total         int
	Pending       int
	Partial       int
	Issued        int
	FullyIssued   bool
	TotalRequired decimal.Decimal
	TotalIssued   decimal.Decimal
}

// SummarizeRequirements derives the order-level material position.
// Nothing here is persisted; it is recomputed from the requirement rows.
func SummarizeRequirements(orderID uuid.UUID, reqs []*MaterialRequirement) OrderMaterialSummary {
	s := OrderMaterialSummary{
		OrderID:       orderID,
		Total:         len(reqs),
		TotalRequired: decimal.Zero,
		TotalIssued:   decimal.Zero,
	}
	for _, r := range reqs {
		switch DeriveRequirementStatus(r.IssuedQty, r.RequiredQty) {
		case RequirementStatusIssued:
			s.Issued++
		case RequirementStatusPartial:
			s.Partial++
		default:
			s.Pending++
		}
		s.TotalRequired = s.TotalRequired.Add(r.RequiredQty)
		s.TotalIssued = s.TotalIssued.Add(r.IssuedQty)
	}
	s.FullyIssued = s.Total > 0 && s.Issued == s.Total
	return s
}
