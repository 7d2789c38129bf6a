package production

import (
	"time"

	"github.com/google/uuid"
	"github.com/hongquyngo/vti-production-sub002/internal/domain/inventory"
	"github.com/hongquyngo/vti-production-sub002/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// IssuanceStatus is the status of an issuance record
type IssuanceStatus string

const (
	IssuanceStatusConfirmed IssuanceStatus = "CONFIRMED"
	IssuanceStatusCancelled IssuanceStatus = "CANCELLED"
)

// IssuanceRecord is the header of one material issuance to a production order
type IssuanceRecord struct {
	shared.BaseAggregateRoot
	IssueNo       string
	OrderID       uuid.UUID
	WarehouseID   uuid.UUID
	Status        IssuanceStatus
	IssuedBy      uuid.UUID
	ReceivedBy    *uuid.UUID
	Notes         string
	IssueDate     time.Time
	GroupID       uuid.UUID
	Details       []IssuanceDetail
	Substitutions []SubstitutionEvent
}

// IssuanceDetail is the quantity of one material taken from one lot.
// Alternative details snapshot the conversion ratio used at issuance time.
type IssuanceDetail struct {
	shared.BaseEntity
	IssuanceID         uuid.UUID
	OrderID            uuid.UUID
	MaterialID         uuid.UUID
	LotEntryID         uuid.UUID
	BatchNo            string
	ExpiryDate         *time.Time
	Quantity           decimal.Decimal
	UOM                string
	IsAlternative      bool
	OriginalMaterialID *uuid.UUID
	AlternativeID      *uuid.UUID
	ConversionRatio    decimal.Decimal
	EquivalentQty      decimal.Decimal
}

// NewIssuanceRecord creates a confirmed issuance header dated issueDate
func NewIssuanceRecord(issueNo string, issueDate time.Time, order *ProductionOrder, issuedBy uuid.UUID, receivedBy *uuid.UUID, notes string) (*IssuanceRecord, error) {
	if order == nil {
		return nil, shared.NewDomainErrorf(shared.ErrValidation, "production order is required")
	}
	if issuedBy == uuid.Nil {
		return nil, shared.NewDomainErrorf(shared.ErrValidation, "issuing employee is required")
	}
	return &IssuanceRecord{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		IssueNo:           issueNo,
		OrderID:           order.ID,
		WarehouseID:       order.WarehouseID,
		Status:            IssuanceStatusConfirmed,
		IssuedBy:          issuedBy,
		ReceivedBy:        receivedBy,
		Notes:             notes,
		IssueDate:         issueDate,
		GroupID:           uuid.New(),
		Details:           make([]IssuanceDetail, 0),
	}, nil
}

// AddPrimaryDetail records primary material taken from a lot
func (r *IssuanceRecord) AddPrimaryDetail(req *MaterialRequirement, pick inventory.LotPick) *IssuanceDetail {
	d := r.newDetail(req.MaterialID, req.UOM, pick)
	d.ConversionRatio = decimal.NewFromInt(1)
	d.EquivalentQty = pick.Quantity
	r.Details = append(r.Details, d)
	return &r.Details[len(r.Details)-1]
}

// AddAlternativeDetail records substitute material taken from a lot on
// behalf of req's primary material
func (r *IssuanceRecord) AddAlternativeDetail(req *MaterialRequirement, alt *BOMAlternative, ratio decimal.Decimal, pick inventory.LotPick) *IssuanceDetail {
	d := r.newDetail(alt.AlternativeMaterialID, alt.UOM, pick)
	original := req.MaterialID
	altID := alt.ID
	d.IsAlternative = true
	d.OriginalMaterialID = &original
	d.AlternativeID = &altID
	d.ConversionRatio = ratio
	d.EquivalentQty = EquivalentPrimaryQuantity(pick.Quantity, ratio)
	r.Details = append(r.Details, d)
	return &r.Details[len(r.Details)-1]
}

func (r *IssuanceRecord) newDetail(materialID uuid.UUID, uom string, pick inventory.LotPick) IssuanceDetail {
	return IssuanceDetail{
		BaseEntity: shared.NewBaseEntity(),
		IssuanceID: r.ID,
		OrderID:    r.OrderID,
		MaterialID: materialID,
		LotEntryID: pick.Lot.ID,
		BatchNo:    pick.Lot.BatchNo,
		ExpiryDate: pick.Lot.ExpiryDate,
		Quantity:   pick.Quantity,
		UOM:        uom,
	}
}

// RecordSubstitution appends a substitution event to the record
func (r *IssuanceRecord) RecordSubstitution(e SubstitutionEvent) {
	r.Substitutions = append(r.Substitutions, e)
}

// RequirementMaterialID returns the requirement a detail counts against
func (d *IssuanceDetail) RequirementMaterialID() uuid.UUID {
	if d.IsAlternative && d.OriginalMaterialID != nil {
		return *d.OriginalMaterialID
	}
	return d.MaterialID
}

// EquivalentFor converts a quantity of this detail's material into
// primary-equivalent units using the ratio snapshotted at issuance
func (d *IssuanceDetail) EquivalentFor(qty decimal.Decimal) decimal.Decimal {
	if !d.IsAlternative {
		return qty
	}
	return EquivalentPrimaryQuantity(qty, d.ConversionRatio)
}

// Returnable returns how much of the detail can still be returned
func (d *IssuanceDetail) Returnable(alreadyReturned decimal.Decimal) decimal.Decimal {
	return decimal.Max(decimal.Zero, d.Quantity.Sub(alreadyReturned))
}
