package production

import (
	"github.com/google/uuid"
	"github.com/hongquyngo/vti-production-sub002/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Aggregate type constants
const (
	AggregateTypeIssuance = "MaterialIssuance"
	AggregateTypeReturn   = "MaterialReturn"
)

// Event type constants
const (
	EventTypeMaterialsIssued   = "MaterialsIssued"
	EventTypeMaterialsReturned = "MaterialsReturned"
)

// IssuedLine is one issuance detail as carried by MaterialsIssuedEvent
type IssuedLine struct {
	DetailID           uuid.UUID       `json:"detail_id"`
	MaterialID         uuid.UUID       `json:"material_id"`
	BatchNo            string          `json:"batch_no"`
	Quantity           decimal.Decimal `json:"quantity"`
	EquivalentQty      decimal.Decimal `json:"equivalent_qty"`
	IsAlternative      bool            `json:"is_alternative"`
	OriginalMaterialID *uuid.UUID      `json:"original_material_id,omitempty"`
}

// MaterialsIssuedEvent is raised after an issuance commits
type MaterialsIssuedEvent struct {
	shared.BaseDomainEvent
	IssueNo     string       `json:"issue_no"`
	OrderID     uuid.UUID    `json:"order_id"`
	WarehouseID uuid.UUID    `json:"warehouse_id"`
	IssuedBy    uuid.UUID    `json:"issued_by"`
	Lines       []IssuedLine `json:"lines"`
	Substituted int          `json:"substituted"`
}

// NewMaterialsIssuedEvent creates a new MaterialsIssuedEvent
func NewMaterialsIssuedEvent(r *IssuanceRecord) *MaterialsIssuedEvent {
	lines := make([]IssuedLine, 0, len(r.Details))
	for _, d := range r.Details {
		lines = append(lines, IssuedLine{
			DetailID:           d.ID,
			MaterialID:         d.MaterialID,
			BatchNo:            d.BatchNo,
			Quantity:           d.Quantity,
			EquivalentQty:      d.EquivalentQty,
			IsAlternative:      d.IsAlternative,
			OriginalMaterialID: d.OriginalMaterialID,
		})
	}
	return &MaterialsIssuedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeMaterialsIssued, AggregateTypeIssuance, r.ID),
		IssueNo:         r.IssueNo,
		OrderID:         r.OrderID,
		WarehouseID:     r.WarehouseID,
		IssuedBy:        r.IssuedBy,
		Lines:           lines,
		Substituted:     len(r.Substitutions),
	}
}

// ReturnedLine is one return detail as carried by MaterialsReturnedEvent
type ReturnedLine struct {
	DetailID         uuid.UUID       `json:"detail_id"`
	IssuanceDetailID uuid.UUID       `json:"issuance_detail_id"`
	MaterialID       uuid.UUID       `json:"material_id"`
	BatchNo          string          `json:"batch_no"`
	Quantity         decimal.Decimal `json:"quantity"`
	Condition        ReturnCondition `json:"condition"`
	Restocked        bool            `json:"restocked"`
}

// MaterialsReturnedEvent is raised after a return commits
type MaterialsReturnedEvent struct {
	shared.BaseDomainEvent
	ReturnNo    string         `json:"return_no"`
	OrderID     uuid.UUID      `json:"order_id"`
	WarehouseID uuid.UUID      `json:"warehouse_id"`
	Reason      string         `json:"reason"`
	Lines       []ReturnedLine `json:"lines"`
}

// NewMaterialsReturnedEvent creates a new MaterialsReturnedEvent
func NewMaterialsReturnedEvent(r *ReturnRecord) *MaterialsReturnedEvent {
	lines := make([]ReturnedLine, 0, len(r.Details))
	for _, d := range r.Details {
		lines = append(lines, ReturnedLine{
			DetailID:         d.ID,
			IssuanceDetailID: d.IssuanceDetailID,
			MaterialID:       d.MaterialID,
			BatchNo:          d.BatchNo,
			Quantity:         d.Quantity,
			Condition:        d.Condition,
			Restocked:        d.RestockEntryID != nil,
		})
	}
	return &MaterialsReturnedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeMaterialsReturned, AggregateTypeReturn, r.ID),
		ReturnNo:        r.ReturnNo,
		OrderID:         r.OrderID,
		WarehouseID:     r.WarehouseID,
		Reason:          r.Reason,
		Lines:           lines,
	}
}
