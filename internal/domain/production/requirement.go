package production

import (
	"github.com/google/uuid"
	"github.com/hongquyngo/vti-production-sub002/internal/domain/inventory"
	"github.com/hongquyngo/vti-production-sub002/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// RequirementStatus is derived from issued vs required quantity
type RequirementStatus string

const (
	RequirementStatusPending RequirementStatus = "PENDING"
	RequirementStatusPartial RequirementStatus = "PARTIAL"
	RequirementStatusIssued  RequirementStatus = "ISSUED"
)

// DeriveRequirementStatus computes the status for issued/required.
// Over-issue is allowed and still reports ISSUED.
func DeriveRequirementStatus(issued, required decimal.Decimal) RequirementStatus {
	switch {
	case issued.GreaterThanOrEqual(required):
		return RequirementStatusIssued
	case issued.IsPositive():
		return RequirementStatusPartial
	default:
		return RequirementStatusPending
	}
}

// MaterialRequirement is one material line of a production order.
// IssuedQty is always expressed in primary-equivalent units.
type MaterialRequirement struct {
	shared.BaseEntity
	OrderID     uuid.UUID
	MaterialID  uuid.UUID
	RequiredQty decimal.Decimal
	IssuedQty   decimal.Decimal
	UOM         string
	Status      RequirementStatus
}

// NewMaterialRequirement creates a pending requirement
func NewMaterialRequirement(orderID, materialID uuid.UUID, requiredQty decimal.Decimal, uom string) (*MaterialRequirement, error) {
	if orderID == uuid.Nil || materialID == uuid.Nil {
		return nil, shared.NewDomainErrorf(shared.ErrValidation, "order and material are required")
	}
	if requiredQty.IsNegative() {
		return nil, shared.NewDomainErrorf(shared.ErrValidation, "required quantity cannot be negative")
	}
	req := &MaterialRequirement{
		BaseEntity:  shared.NewBaseEntity(),
		OrderID:     orderID,
		MaterialID:  materialID,
		RequiredQty: requiredQty.Round(inventory.QuantityScale),
		IssuedQty:   decimal.Zero,
		UOM:         uom,
	}
	req.refreshStatus()
	return req, nil
}

// AddIssued increments the issued quantity by a primary-equivalent amount
func (r *MaterialRequirement) AddIssued(equivalent decimal.Decimal) error {
	if equivalent.IsNegative() {
		return shared.NewDomainErrorf(shared.ErrValidation, "issued quantity cannot be negative")
	}
	r.IssuedQty = r.IssuedQty.Add(equivalent)
	r.refreshStatus()
	r.Touch()
	return nil
}

// SubtractIssued decrements the issued quantity, never below zero
func (r *MaterialRequirement) SubtractIssued(equivalent decimal.Decimal) error {
	if equivalent.IsNegative() {
		return shared.NewDomainErrorf(shared.ErrValidation, "returned quantity cannot be negative")
	}
	r.IssuedQty = decimal.Max(decimal.Zero, r.IssuedQty.Sub(equivalent))
	r.refreshStatus()
	r.Touch()
	return nil
}

// Remaining returns required - issued, floored at zero
func (r *MaterialRequirement) Remaining() decimal.Decimal {
	return decimal.Max(decimal.Zero, r.RequiredQty.Sub(r.IssuedQty))
}

func (r *MaterialRequirement) refreshStatus() {
	r.Status = DeriveRequirementStatus(r.IssuedQty, r.RequiredQty)
}
