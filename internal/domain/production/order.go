package production

import (
	"strings"

	"github.com/google/uuid"
	"github.com/hongquyngo/vti-production-sub002/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// OrderStatus represents the lifecycle state of a production order
type OrderStatus string

const (
	OrderStatusDraft      OrderStatus = "DRAFT"
	OrderStatusConfirmed  OrderStatus = "CONFIRMED"
	OrderStatusInProgress OrderStatus = "IN_PROGRESS"
	OrderStatusCompleted  OrderStatus = "COMPLETED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
)

// IsValid checks if the status is valid
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusDraft, OrderStatusConfirmed, OrderStatusInProgress, OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

// CanIssue returns true if materials may be issued to an order in this status
func (s OrderStatus) CanIssue() bool {
	switch s {
	case OrderStatusDraft, OrderStatusConfirmed, OrderStatusInProgress:
		return true
	}
	return false
}

// String returns the string representation
func (s OrderStatus) String() string {
	return string(s)
}

// ProductionOrder is the aggregate materials are issued to and returned from
type ProductionOrder struct {
	shared.BaseAggregateRoot
	OrderNo     string
	Status      OrderStatus
	WarehouseID uuid.UUID
	BOMID       uuid.UUID
	ProductID   uuid.UUID
	PlannedQty  decimal.Decimal
	UOM         string
}

// NewProductionOrder creates a draft production order
func NewProductionOrder(orderNo string, bomID, productID, warehouseID uuid.UUID, plannedQty decimal.Decimal, uom string) (*ProductionOrder, error) {
	if strings.TrimSpace(orderNo) == "" {
		return nil, shared.NewDomainErrorf(shared.ErrValidation, "order number is required")
	}
	if bomID == uuid.Nil || productID == uuid.Nil || warehouseID == uuid.Nil {
		return nil, shared.NewDomainErrorf(shared.ErrValidation, "bom, product and warehouse are required")
	}
	if !plannedQty.IsPositive() {
		return nil, shared.NewDomainErrorf(shared.ErrValidation, "planned quantity must be positive")
	}

	return &ProductionOrder{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderNo:           orderNo,
		Status:            OrderStatusDraft,
		WarehouseID:       warehouseID,
		BOMID:             bomID,
		ProductID:         productID,
		PlannedQty:        plannedQty,
		UOM:               uom,
	}, nil
}

// EnsureIssuable returns ErrOrderNotIssuable unless the order accepts issuance
func (o *ProductionOrder) EnsureIssuable() error {
	if !o.Status.CanIssue() {
		return shared.NewDomainErrorf(shared.ErrOrderNotIssuable,
			"production order %s is %s and cannot receive materials", o.OrderNo, o.Status)
	}
	return nil
}

// Confirm moves a draft order to CONFIRMED
func (o *ProductionOrder) Confirm() error {
	if o.Status != OrderStatusDraft {
		return shared.NewDomainErrorf(shared.ErrInvalidState, "only draft orders can be confirmed, order %s is %s", o.OrderNo, o.Status)
	}
	o.Status = OrderStatusConfirmed
	o.Touch()
	o.IncrementVersion()
	return nil
}

// MarkInProgress moves the order to IN_PROGRESS on first issuance.
// Returns true if the status changed.
func (o *ProductionOrder) MarkInProgress() bool {
	if o.Status == OrderStatusInProgress {
		return false
	}
	o.Status = OrderStatusInProgress
	o.Touch()
	o.IncrementVersion()
	return true
}

// Complete closes an in-progress order
func (o *ProductionOrder) Complete() error {
	if o.Status != OrderStatusInProgress {
		return shared.NewDomainErrorf(shared.ErrInvalidState, "only in-progress orders can be completed, order %s is %s", o.OrderNo, o.Status)
	}
	o.Status = OrderStatusCompleted
	o.Touch()
	o.IncrementVersion()
	return nil
}

// Cancel cancels an order that has not been completed
func (o *ProductionOrder) Cancel() error {
	if o.Status == OrderStatusCompleted || o.Status == OrderStatusCancelled {
		return shared.NewDomainErrorf(shared.ErrInvalidState, "order %s is already %s", o.OrderNo, o.Status)
	}
	o.Status = OrderStatusCancelled
	o.Touch()
	o.IncrementVersion()
	return nil
}
