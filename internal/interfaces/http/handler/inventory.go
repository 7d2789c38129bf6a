package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appinv "github.com/hongquyngo/vti-production-sub002/internal/application/inventory"
	"github.com/hongquyngo/vti-production-sub002/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// InventoryOperations receives, writes off and reads ledger lots
type InventoryOperations interface {
	ReceiveStock(ctx context.Context, req appinv.ReceiveStockRequest) (*appinv.LotEntryResponse, error)
	WriteOff(ctx context.Context, lotID uuid.UUID, req appinv.WriteOffRequest) (*appinv.WriteOffResponse, error)
	ListLots(ctx context.Context, filter appinv.LotListFilter) ([]appinv.LotEntryResponse, int64, error)
	GetBalance(ctx context.Context, productID, warehouseID uuid.UUID) (*appinv.BalanceResponse, error)
}

// InventoryHandler serves the inventory ledger endpoints
type InventoryHandler struct {
	BaseHandler
	inventory InventoryOperations
}

// NewInventoryHandler creates a new InventoryHandler
func NewInventoryHandler(inventory InventoryOperations) *InventoryHandler {
	return &InventoryHandler{inventory: inventory}
}

// ReceiveStockRequest is the body of a goods receipt
type ReceiveStockRequest struct {
	ProductID   string          `json:"product_id" binding:"required,uuid"`
	WarehouseID string          `json:"warehouse_id" binding:"required,uuid"`
	Quantity    decimal.Decimal `json:"quantity"`
	BatchNo     string          `json:"batch_no" binding:"required,max=100"`
	ExpiryDate  string          `json:"expiry_date"`
	ReceivedBy  string          `json:"received_by" binding:"omitempty,uuid"`
}

// WriteOffRequest is the body of a lot write-off
type WriteOffRequest struct {
	Reason     string `json:"reason" binding:"required,max=500"`
	OperatorID string `json:"operator_id" binding:"omitempty,uuid"`
}

// LotQuery selects the ledger rows of one product in one warehouse
type LotQuery struct {
	ProductID   string `form:"product_id" binding:"required,uuid"`
	WarehouseID string `form:"warehouse_id" binding:"required,uuid"`
	Page        int    `form:"page" binding:"omitempty,min=1"`
	PageSize    int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy     string `form:"order_by" binding:"omitempty,oneof=created_at expiry_date batch_no type quantity remain"`
	OrderDir    string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// BalanceQuery selects a product in a warehouse
type BalanceQuery struct {
	ProductID   string `form:"product_id" binding:"required,uuid"`
	WarehouseID string `form:"warehouse_id" binding:"required,uuid"`
}

// parseExpiryDate accepts RFC3339 or a plain date
func parseExpiryDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ReceiveStock handles POST /inventory/lots
func (h *InventoryHandler) ReceiveStock(c *gin.Context) {
	var req ReceiveStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	expiry, err := parseExpiryDate(req.ExpiryDate)
	if err != nil {
		h.BadRequest(c, "Invalid expiry_date format, use YYYY-MM-DD or RFC3339")
		return
	}
	receivedBy, err := parseOptionalUUID(req.ReceivedBy)
	if err != nil {
		h.BadRequest(c, "Invalid received_by format")
		return
	}

	lot, err := h.inventory.ReceiveStock(c.Request.Context(), appinv.ReceiveStockRequest{
		ProductID:   uuid.MustParse(req.ProductID),
		WarehouseID: uuid.MustParse(req.WarehouseID),
		Quantity:    req.Quantity,
		BatchNo:     req.BatchNo,
		ExpiryDate:  expiry,
		ReceivedBy:  receivedBy,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, lot)
}

// WriteOff handles POST /inventory/lots/:id/write-off
func (h *InventoryHandler) WriteOff(c *gin.Context) {
	lotID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req WriteOffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}
	operatorID, err := parseOptionalUUID(req.OperatorID)
	if err != nil {
		h.BadRequest(c, "Invalid operator_id format")
		return
	}

	resp, err := h.inventory.WriteOff(c.Request.Context(), lotID, appinv.WriteOffRequest{
		Reason:     req.Reason,
		OperatorID: operatorID,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ListLots handles GET /inventory/lots
func (h *InventoryHandler) ListLots(c *gin.Context) {
	var q LotQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.ValidationError(c, err)
		return
	}

	defaults := shared.DefaultFilter()
	filter := appinv.LotListFilter{
		ProductID:   uuid.MustParse(q.ProductID),
		WarehouseID: uuid.MustParse(q.WarehouseID),
		Page:        q.Page,
		PageSize:    q.PageSize,
		OrderBy:     q.OrderBy,
		OrderDir:    q.OrderDir,
	}
	if filter.Page == 0 {
		filter.Page = defaults.Page
	}
	if filter.PageSize == 0 {
		filter.PageSize = defaults.PageSize
	}

	lots, total, err := h.inventory.ListLots(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, lots, total, filter.Page, filter.PageSize)
}

// GetBalance handles GET /inventory/balance
func (h *InventoryHandler) GetBalance(c *gin.Context) {
	var q BalanceQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.ValidationError(c, err)
		return
	}

	resp, err := h.inventory.GetBalance(c.Request.Context(), uuid.MustParse(q.ProductID), uuid.MustParse(q.WarehouseID))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
