package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/hongquyngo/vti-production-sub002/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// QuantityScale is the number of decimal places quantities are stored with
const QuantityScale int32 = 4

// EntryType is the kind of movement a ledger row records
type EntryType string

const (
	EntryTypeReceipt          EntryType = "STOCK_IN_RECEIPT"
	EntryTypeProductionReturn EntryType = "STOCK_IN_PRODUCTION_RETURN"
	EntryTypeProductionOutput EntryType = "STOCK_IN_PRODUCTION"
	EntryTypeProductionIssue  EntryType = "STOCK_OUT_PRODUCTION_ISSUE"
	EntryTypeWriteOff         EntryType = "STOCK_OUT_WRITE_OFF"
)

// IsValid checks if the entry type is valid
func (t EntryType) IsValid() bool {
	return t.IsInbound() || t.IsOutbound()
}

// IsInbound returns true for rows that create a lot with a remain balance
func (t EntryType) IsInbound() bool {
	switch t {
	case EntryTypeReceipt, EntryTypeProductionReturn, EntryTypeProductionOutput:
		return true
	}
	return false
}

// InboundEntryTypes lists the types that open a lot
func InboundEntryTypes() []EntryType {
	return []EntryType{EntryTypeReceipt, EntryTypeProductionReturn, EntryTypeProductionOutput}
}

// IsOutbound returns true for rows that consume from a lot
func (t EntryType) IsOutbound() bool {
	switch t {
	case EntryTypeProductionIssue, EntryTypeWriteOff:
		return true
	}
	return false
}

// String returns the string representation
func (t EntryType) String() string {
	return string(t)
}

// Correlation ties ledger rows back to the business action that produced them
type Correlation struct {
	GroupID        uuid.UUID
	ActionDetailID *uuid.UUID
	CreatedBy      *uuid.UUID
	Reason         string
}

// LotEntry is one row of the append-only inventory ledger.
//
// Inbound rows open a lot: Quantity is positive and Remain starts equal to it.
// Outbound rows are negative, always carry Remain = 0 and point at the lot
// they consumed through SourceEntryID. The only field ever mutated after
// insert is Remain on an inbound row.
type LotEntry struct {
	shared.BaseEntity
	ProductID      uuid.UUID
	WarehouseID    uuid.UUID
	Type           EntryType
	Quantity       decimal.Decimal
	Remain         decimal.Decimal
	BatchNo        string
	ExpiryDate     *time.Time
	GroupID        uuid.UUID
	ActionDetailID *uuid.UUID
	SourceEntryID  *uuid.UUID
	Reason         string
	CreatedBy      *uuid.UUID
}

// NewInboundEntry opens a new lot
func NewInboundEntry(productID, warehouseID uuid.UUID, entryType EntryType, quantity decimal.Decimal, batchNo string, expiry *time.Time) (*LotEntry, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainErrorf(shared.ErrValidation, "product ID is required")
	}
	if warehouseID == uuid.Nil {
		return nil, shared.NewDomainErrorf(shared.ErrValidation, "warehouse ID is required")
	}
	if !entryType.IsInbound() {
		return nil, shared.NewDomainErrorf(shared.ErrValidation, "entry type %s is not an inbound type", entryType)
	}
	if !quantity.IsPositive() {
		return nil, shared.NewDomainErrorf(shared.ErrValidation, "inbound quantity must be positive, got %s", quantity)
	}

	qty := quantity.Round(QuantityScale)
	return &LotEntry{
		BaseEntity:  shared.NewBaseEntity(),
		ProductID:   productID,
		WarehouseID: warehouseID,
		Type:        entryType,
		Quantity:    qty,
		Remain:      qty,
		BatchNo:     batchNo,
		ExpiryDate:  expiry,
	}, nil
}

// NewOutboundEntry records quantity leaving the given source lot.
// It does not touch the source lot's remain; see Consume.
func NewOutboundEntry(source *LotEntry, entryType EntryType, quantity decimal.Decimal) (*LotEntry, error) {
	if source == nil {
		return nil, shared.NewDomainErrorf(shared.ErrValidation, "source lot is required")
	}
	if !entryType.IsOutbound() {
		return nil, shared.NewDomainErrorf(shared.ErrValidation, "entry type %s is not an outbound type", entryType)
	}
	if !quantity.IsPositive() {
		return nil, shared.NewDomainErrorf(shared.ErrValidation, "outbound quantity must be positive, got %s", quantity)
	}

	sourceID := source.ID
	return &LotEntry{
		BaseEntity:    shared.NewBaseEntity(),
		ProductID:     source.ProductID,
		WarehouseID:   source.WarehouseID,
		Type:          entryType,
		Quantity:      quantity.Round(QuantityScale).Neg(),
		Remain:        decimal.Zero,
		BatchNo:       source.BatchNo,
		ExpiryDate:    source.ExpiryDate,
		SourceEntryID: &sourceID,
	}, nil
}

// WithCorrelation stamps the correlation fields onto the entry
func (e *LotEntry) WithCorrelation(c Correlation) *LotEntry {
	e.GroupID = c.GroupID
	e.ActionDetailID = c.ActionDetailID
	e.CreatedBy = c.CreatedBy
	e.Reason = c.Reason
	return e
}

// Consume decrements the lot's remain
func (e *LotEntry) Consume(quantity decimal.Decimal) error {
	if !e.Type.IsInbound() {
		return shared.NewDomainErrorf(shared.ErrInvalidState, "cannot consume from %s entry %s", e.Type, e.ID)
	}
	if !quantity.IsPositive() {
		return shared.NewDomainErrorf(shared.ErrValidation, "consume quantity must be positive, got %s", quantity)
	}
	if quantity.GreaterThan(e.Remain) {
		return shared.NewDomainErrorf(shared.ErrInsufficientStock,
			"lot %s has %s remaining, cannot consume %s", e.BatchNo, e.Remain, quantity)
	}
	e.Remain = e.Remain.Sub(quantity)
	e.Touch()
	return nil
}

// IsAvailable returns true if the lot can still be allocated from
func (e *LotEntry) IsAvailable() bool {
	return e.Type.IsInbound() && e.Remain.IsPositive()
}

// IsExpired reports whether the lot is past its expiry date at the given time.
// Lots without an expiry date never expire.
func (e *LotEntry) IsExpired(at time.Time) bool {
	return e.ExpiryDate != nil && e.ExpiryDate.Before(at)
}

// RemainAdjustment audits a remain change made outside allocation
type RemainAdjustment struct {
	shared.BaseEntity
	LotEntryID     uuid.UUID
	PreviousRemain decimal.Decimal
	NewRemain      decimal.Decimal
	Reason         string
	GroupID        uuid.UUID
	CreatedBy      *uuid.UUID
}

// Balance is the on-hand position of one product in one warehouse
type Balance struct {
	ProductID   uuid.UUID
	WarehouseID uuid.UUID
	OnHand      decimal.Decimal
	LotCount    int64
}
