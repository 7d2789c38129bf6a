package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/hongquyngo/vti-production-sub002/internal/domain/inventory"
	"github.com/shopspring/decimal"
)

// LotEntryResponse represents a ledger row in API responses
type LotEntryResponse struct {
	ID             uuid.UUID       `json:"id"`
	ProductID      uuid.UUID       `json:"product_id"`
	WarehouseID    uuid.UUID       `json:"warehouse_id"`
	Type           string          `json:"type"`
	Quantity       decimal.Decimal `json:"quantity"`
	Remain         decimal.Decimal `json:"remain"`
	BatchNo        string          `json:"batch_no"`
	ExpiryDate     *time.Time      `json:"expiry_date,omitempty"`
	GroupID        *uuid.UUID      `json:"group_id,omitempty"`
	ActionDetailID *uuid.UUID      `json:"action_detail_id,omitempty"`
	SourceEntryID  *uuid.UUID      `json:"source_entry_id,omitempty"`
	Reason         string          `json:"reason,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

// BalanceResponse is the on-hand quantity of a product in a warehouse
type BalanceResponse struct {
	ProductID   uuid.UUID       `json:"product_id"`
	WarehouseID uuid.UUID       `json:"warehouse_id"`
	OnHand      decimal.Decimal `json:"on_hand"`
	LotCount    int64           `json:"lot_count"`
}

// LotListFilter represents filter options for the ledger listing
type LotListFilter struct {
	ProductID   uuid.UUID
	WarehouseID uuid.UUID
	Page        int
	PageSize    int
	OrderBy     string
	OrderDir    string
}

// ReceiveStockRequest receives a new lot into a warehouse
type ReceiveStockRequest struct {
	ProductID   uuid.UUID       `json:"product_id"`
	WarehouseID uuid.UUID       `json:"warehouse_id"`
	Quantity    decimal.Decimal `json:"quantity"`
	BatchNo     string          `json:"batch_no"`
	ExpiryDate  *time.Time      `json:"expiry_date"`
	ReceivedBy  *uuid.UUID      `json:"received_by"`
}

// WriteOffRequest zeroes the remain of a lot
type WriteOffRequest struct {
	Reason     string     `json:"reason"`
	OperatorID *uuid.UUID `json:"operator_id"`
}

// WriteOffResponse is the outcome of a write-off
type WriteOffResponse struct {
	Lot            LotEntryResponse `json:"lot"`
	Outbound       LotEntryResponse `json:"outbound"`
	PreviousRemain decimal.Decimal  `json:"previous_remain"`
}

// ToLotEntryResponse converts a domain ledger row to a response
func ToLotEntryResponse(e *inventory.LotEntry) LotEntryResponse {
	resp := LotEntryResponse{
		ID:             e.ID,
		ProductID:      e.ProductID,
		WarehouseID:    e.WarehouseID,
		Type:           e.Type.String(),
		Quantity:       e.Quantity,
		Remain:         e.Remain,
		BatchNo:        e.BatchNo,
		ExpiryDate:     e.ExpiryDate,
		ActionDetailID: e.ActionDetailID,
		SourceEntryID:  e.SourceEntryID,
		Reason:         e.Reason,
		CreatedAt:      e.CreatedAt,
	}
	if e.GroupID != uuid.Nil {
		groupID := e.GroupID
		resp.GroupID = &groupID
	}
	return resp
}
