package production

import (
	"time"

	"github.com/google/uuid"
	"github.com/hongquyngo/vti-production-sub002/internal/domain/production"
	"github.com/shopspring/decimal"
)

// IssueMaterialsRequest asks to issue materials to a production order.
// PrimaryQuantities is keyed by material id. AlternativeQuantities is keyed by
// "materialId:alternativeId" and given in alternative units. When both maps
// are empty every requirement's remaining quantity is issued from primary stock.
type IssueMaterialsRequest struct {
	OrderID               uuid.UUID                     `json:"order_id"`
	IssuedBy              uuid.UUID                     `json:"issued_by"`
	ReceivedBy            *uuid.UUID                    `json:"received_by,omitempty"`
	Notes                 string                        `json:"notes,omitempty"`
	PrimaryQuantities     map[uuid.UUID]decimal.Decimal `json:"primary_quantities,omitempty"`
	AlternativeQuantities map[string]decimal.Decimal    `json:"alternative_quantities,omitempty"`
}

// IssueMaterialsResult is the outcome of a committed issuance
type IssueMaterialsResult struct {
	IssueID       uuid.UUID                `json:"issue_id"`
	IssueNo       string                   `json:"issue_no"`
	OrderID       uuid.UUID                `json:"order_id"`
	OrderStatus   string                   `json:"order_status"`
	Details       []IssuanceDetailResponse `json:"details"`
	Substitutions []SubstitutionResponse   `json:"substitutions"`
}

// IssuanceDetailResponse is one lot consumed by an issuance
type IssuanceDetailResponse struct {
	ID                 uuid.UUID       `json:"id"`
	IssuanceID         uuid.UUID       `json:"issuance_id"`
	MaterialID         uuid.UUID       `json:"material_id"`
	LotEntryID         uuid.UUID       `json:"lot_entry_id"`
	BatchNo            string          `json:"batch_no"`
	ExpiryDate         *time.Time      `json:"expiry_date,omitempty"`
	Quantity           decimal.Decimal `json:"quantity"`
	UOM                string          `json:"uom"`
	IsAlternative      bool            `json:"is_alternative"`
	OriginalMaterialID *uuid.UUID      `json:"original_material_id,omitempty"`
	AlternativeID      *uuid.UUID      `json:"alternative_id,omitempty"`
	ConversionRatio    decimal.Decimal `json:"conversion_ratio"`
	EquivalentQty      decimal.Decimal `json:"equivalent_qty"`
}

// SubstitutionResponse describes an alternative used in place of a primary
type SubstitutionResponse struct {
	OriginalMaterialID   uuid.UUID       `json:"original_material_id"`
	SubstituteMaterialID uuid.UUID       `json:"substitute_material_id"`
	AlternativeID        uuid.UUID       `json:"alternative_id"`
	ActualQuantity       decimal.Decimal `json:"actual_quantity"`
	EquivalentQuantity   decimal.Decimal `json:"equivalent_quantity"`
	ConversionRatio      decimal.Decimal `json:"conversion_ratio"`
	Priority             int             `json:"priority"`
}

// IssuanceResponse is a stored issuance record
type IssuanceResponse struct {
	ID          uuid.UUID                `json:"id"`
	IssueNo     string                   `json:"issue_no"`
	OrderID     uuid.UUID                `json:"order_id"`
	WarehouseID uuid.UUID                `json:"warehouse_id"`
	Status      string                   `json:"status"`
	IssuedBy    uuid.UUID                `json:"issued_by"`
	ReceivedBy  *uuid.UUID               `json:"received_by,omitempty"`
	Notes       string                   `json:"notes,omitempty"`
	IssueDate   time.Time                `json:"issue_date"`
	Details     []IssuanceDetailResponse `json:"details"`
}

// ReturnLine is one line of a return request
type ReturnLine struct {
	IssuanceDetailID uuid.UUID                  `json:"issuance_detail_id"`
	Quantity         decimal.Decimal            `json:"quantity"`
	Condition        production.ReturnCondition `json:"condition"`
}

// ReturnMaterialsRequest asks to return previously issued materials
type ReturnMaterialsRequest struct {
	OrderID    uuid.UUID    `json:"order_id"`
	Reason     string       `json:"reason"`
	ReturnedBy uuid.UUID    `json:"returned_by"`
	ReceivedBy uuid.UUID    `json:"received_by"`
	Lines      []ReturnLine `json:"returns"`
}

// ReturnDetailResponse is one stored return line
type ReturnDetailResponse struct {
	ID               uuid.UUID       `json:"id"`
	ReturnID         uuid.UUID       `json:"return_id"`
	IssuanceDetailID uuid.UUID       `json:"issuance_detail_id"`
	MaterialID       uuid.UUID       `json:"material_id"`
	BatchNo          string          `json:"batch_no"`
	ExpiryDate       *time.Time      `json:"expiry_date,omitempty"`
	Quantity         decimal.Decimal `json:"quantity"`
	UOM              string          `json:"uom"`
	Condition        string          `json:"condition"`
	EquivalentQty    decimal.Decimal `json:"equivalent_qty"`
	RestockEntryID   *uuid.UUID      `json:"restock_entry_id,omitempty"`
}

// ReturnMaterialsResult is the outcome of a committed return
type ReturnMaterialsResult struct {
	ReturnID uuid.UUID              `json:"return_id"`
	ReturnNo string                 `json:"return_no"`
	OrderID  uuid.UUID              `json:"order_id"`
	Details  []ReturnDetailResponse `json:"details"`
}

// ReturnResponse is a stored return record
type ReturnResponse struct {
	ID          uuid.UUID              `json:"id"`
	ReturnNo    string                 `json:"return_no"`
	OrderID     uuid.UUID              `json:"order_id"`
	WarehouseID uuid.UUID              `json:"warehouse_id"`
	Status      string                 `json:"status"`
	Reason      string                 `json:"reason"`
	ReturnedBy  uuid.UUID              `json:"returned_by"`
	ReceivedBy  uuid.UUID              `json:"received_by"`
	ReturnDate  time.Time              `json:"return_date"`
	Details     []ReturnDetailResponse `json:"details"`
}

// RequirementResponse is one material requirement with its derived status
type RequirementResponse struct {
	ID          uuid.UUID       `json:"id"`
	MaterialID  uuid.UUID       `json:"material_id"`
	RequiredQty decimal.Decimal `json:"required_qty"`
	IssuedQty   decimal.Decimal `json:"issued_qty"`
	Remaining   decimal.Decimal `json:"remaining"`
	UOM         string          `json:"uom"`
	Status      string          `json:"status"`
}

// OrderMaterialsResponse is the material position of a production order
type OrderMaterialsResponse struct {
	OrderID      uuid.UUID             `json:"order_id"`
	OrderNo      string                `json:"order_no"`
	OrderStatus  string                `json:"order_status"`
	WarehouseID  uuid.UUID             `json:"warehouse_id"`
	Requirements []RequirementResponse `json:"requirements"`
	Summary      MaterialSummary       `json:"summary"`
}

// MaterialSummary counts requirements by status
type MaterialSummary struct {
	Total         int             `json:"total"`
	Pending       int             `json:"pending"`
	Partial       int             `json:"partial"`
	Issued        int             `json:"issued"`
	FullyIssued   bool            `json:"fully_issued"`
	TotalRequired decimal.Decimal `json:"total_required"`
	TotalIssued   decimal.Decimal `json:"total_issued"`
}

// ReturnableDetailResponse is an issuance detail that can still be returned
type ReturnableDetailResponse struct {
	IssuanceDetailResponse
	Returned   decimal.Decimal `json:"returned"`
	Returnable decimal.Decimal `json:"returnable"`
}

// ToIssuanceDetailResponse converts a domain detail
func ToIssuanceDetailResponse(d *production.IssuanceDetail) IssuanceDetailResponse {
	return IssuanceDetailResponse{
		ID:                 d.ID,
		IssuanceID:         d.IssuanceID,
		MaterialID:         d.MaterialID,
		LotEntryID:         d.LotEntryID,
		BatchNo:            d.BatchNo,
		ExpiryDate:         d.ExpiryDate,
		Quantity:           d.Quantity,
		UOM:                d.UOM,
		IsAlternative:      d.IsAlternative,
		OriginalMaterialID: d.OriginalMaterialID,
		AlternativeID:      d.AlternativeID,
		ConversionRatio:    d.ConversionRatio,
		EquivalentQty:      d.EquivalentQty,
	}
}

// ToIssuanceResponse converts a domain issuance record
func ToIssuanceResponse(r *production.IssuanceRecord) *IssuanceResponse {
	details := make([]IssuanceDetailResponse, len(r.Details))
	for i := range r.Details {
		details[i] = ToIssuanceDetailResponse(&r.Details[i])
	}
	return &IssuanceResponse{
		ID:          r.ID,
		IssueNo:     r.IssueNo,
		OrderID:     r.OrderID,
		WarehouseID: r.WarehouseID,
		Status:      string(r.Status),
		IssuedBy:    r.IssuedBy,
		ReceivedBy:  r.ReceivedBy,
		Notes:       r.Notes,
		IssueDate:   r.IssueDate,
		Details:     details,
	}
}

// ToSubstitutionResponse converts a substitution event
func ToSubstitutionResponse(e production.SubstitutionEvent) SubstitutionResponse {
	return SubstitutionResponse{
		OriginalMaterialID:   e.OriginalMaterialID,
		SubstituteMaterialID: e.SubstituteMaterialID,
		AlternativeID:        e.AlternativeID,
		ActualQuantity:       e.ActualQuantity,
		EquivalentQuantity:   e.EquivalentQuantity,
		ConversionRatio:      e.ConversionRatio,
		Priority:             e.Priority,
	}
}

// ToReturnDetailResponse converts a domain return detail
func ToReturnDetailResponse(d *production.ReturnDetail) ReturnDetailResponse {
	return ReturnDetailResponse{
		ID:               d.ID,
		ReturnID:         d.ReturnID,
		IssuanceDetailID: d.IssuanceDetailID,
		MaterialID:       d.MaterialID,
		BatchNo:          d.BatchNo,
		ExpiryDate:       d.ExpiryDate,
		Quantity:         d.Quantity,
		UOM:              d.UOM,
		Condition:        string(d.Condition),
		EquivalentQty:    d.EquivalentQty,
		RestockEntryID:   d.RestockEntryID,
	}
}

// ToReturnResponse converts a domain return record
func ToReturnResponse(r *production.ReturnRecord) *ReturnResponse {
	details := make([]ReturnDetailResponse, len(r.Details))
	for i := range r.Details {
		details[i] = ToReturnDetailResponse(&r.Details[i])
	}
	return &ReturnResponse{
		ID:          r.ID,
		ReturnNo:    r.ReturnNo,
		OrderID:     r.OrderID,
		WarehouseID: r.WarehouseID,
		Status:      string(r.Status),
		Reason:      r.Reason,
		ReturnedBy:  r.ReturnedBy,
		ReceivedBy:  r.ReceivedBy,
		ReturnDate:  r.ReturnDate,
		Details:     details,
	}
}

// ToRequirementResponse converts a domain requirement
func ToRequirementResponse(r *production.MaterialRequirement) RequirementResponse {
	return RequirementResponse{
		ID:          r.ID,
		MaterialID:  r.MaterialID,
		RequiredQty: r.RequiredQty,
		IssuedQty:   r.IssuedQty,
		Remaining:   r.Remaining(),
		UOM:         r.UOM,
		Status:      string(production.DeriveRequirementStatus(r.IssuedQty, r.RequiredQty)),
	}
}
