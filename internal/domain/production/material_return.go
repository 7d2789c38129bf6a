package production

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hongquyngo/vti-production-sub002/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ReturnCondition is the physical condition of returned material
type ReturnCondition string

const (
	ReturnConditionGood    ReturnCondition = "GOOD"
	ReturnConditionDamaged ReturnCondition = "DAMAGED"
)

// IsValid checks if the condition is valid
func (c ReturnCondition) IsValid() bool {
	return c == ReturnConditionGood || c == ReturnConditionDamaged
}

// Restocks returns true if material in this condition goes back into stock
func (c ReturnCondition) Restocks() bool {
	return c == ReturnConditionGood
}

// ReturnStatus is the status of a return record
type ReturnStatus string

const (
	ReturnStatusConfirmed ReturnStatus = "CONFIRMED"
)

// ReturnRecord is the header of a material return from a production order
type ReturnRecord struct {
	shared.BaseAggregateRoot
	ReturnNo    string
	OrderID     uuid.UUID
	WarehouseID uuid.UUID
	Reason      string
	ReturnedBy  uuid.UUID
	ReceivedBy  uuid.UUID
	Status      ReturnStatus
	ReturnDate  time.Time
	GroupID     uuid.UUID
	Details     []ReturnDetail
}

// ReturnDetail reverses part of one issuance detail
type ReturnDetail struct {
	shared.BaseEntity
	ReturnID         uuid.UUID
	IssuanceDetailID uuid.UUID
	MaterialID       uuid.UUID
	BatchNo          string
	ExpiryDate       *time.Time
	Quantity         decimal.Decimal
	UOM              string
	Condition        ReturnCondition
	EquivalentQty    decimal.Decimal
	RestockEntryID   *uuid.UUID
}

// NewReturnRecord creates a confirmed return header dated returnDate
func NewReturnRecord(returnNo string, returnDate time.Time, order *ProductionOrder, reason string, returnedBy, receivedBy uuid.UUID) (*ReturnRecord, error) {
	if order == nil {
		return nil, shared.NewDomainErrorf(shared.ErrValidation, "production order is required")
	}
	if returnedBy == uuid.Nil || receivedBy == uuid.Nil {
		return nil, shared.NewDomainErrorf(shared.ErrValidation, "returning and receiving employees are required")
	}
	return &ReturnRecord{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ReturnNo:          returnNo,
		OrderID:           order.ID,
		WarehouseID:       order.WarehouseID,
		Reason:            strings.TrimSpace(reason),
		ReturnedBy:        returnedBy,
		ReceivedBy:        receivedBy,
		Status:            ReturnStatusConfirmed,
		ReturnDate:        returnDate,
		GroupID:           uuid.New(),
		Details:           make([]ReturnDetail, 0),
	}, nil
}

// AddDetail records qty of an issuance detail coming back in the given condition
func (r *ReturnRecord) AddDetail(issued *IssuanceDetail, qty decimal.Decimal, condition ReturnCondition) (*ReturnDetail, error) {
	if !qty.IsPositive() {
		return nil, shared.NewDomainErrorf(shared.ErrValidation, "return quantity must be positive, got %s", qty)
	}
	if !condition.IsValid() {
		return nil, shared.NewDomainErrorf(shared.ErrValidation, "invalid return condition %q", condition)
	}
	d := ReturnDetail{
		BaseEntity:       shared.NewBaseEntity(),
		ReturnID:         r.ID,
		IssuanceDetailID: issued.ID,
		MaterialID:       issued.MaterialID,
		BatchNo:          issued.BatchNo,
		ExpiryDate:       issued.ExpiryDate,
		Quantity:         qty,
		UOM:              issued.UOM,
		Condition:        condition,
		EquivalentQty:    issued.EquivalentFor(qty),
	}
	r.Details = append(r.Details, d)
	return &r.Details[len(r.Details)-1], nil
}
