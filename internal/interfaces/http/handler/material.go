package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appprod "github.com/hongquyngo/vti-production-sub002/internal/application/production"
	"github.com/hongquyngo/vti-production-sub002/internal/domain/production"
	"github.com/shopspring/decimal"
)

// MaterialCommands issues and returns materials for production orders
type MaterialCommands interface {
	IssueMaterials(ctx context.Context, req appprod.IssueMaterialsRequest) (*appprod.IssueMaterialsResult, error)
	ReturnMaterials(ctx context.Context, req appprod.ReturnMaterialsRequest) (*appprod.ReturnMaterialsResult, error)
}

// MaterialQueries reads the material position of production orders
type MaterialQueries interface {
	GetOrderMaterials(ctx context.Context, orderID uuid.UUID) (*appprod.OrderMaterialsResponse, error)
	ListReturnable(ctx context.Context, orderID uuid.UUID) ([]appprod.ReturnableDetailResponse, error)
	GetIssuance(ctx context.Context, id uuid.UUID) (*appprod.IssuanceResponse, error)
	GetReturn(ctx context.Context, id uuid.UUID) (*appprod.ReturnResponse, error)
}

// MaterialHandler serves material issuance and return endpoints
type MaterialHandler struct {
	BaseHandler
	commands MaterialCommands
	queries  MaterialQueries
}

// NewMaterialHandler creates a new MaterialHandler
func NewMaterialHandler(commands MaterialCommands, queries MaterialQueries) *MaterialHandler {
	return &MaterialHandler{commands: commands, queries: queries}
}

// IssueMaterialsRequest is the body of an issuance.
// PrimaryQuantities is keyed by material id, AlternativeQuantities by
// "materialId:alternativeId" in alternative units. Omitting both issues the
// remaining quantity of every requirement.
type IssueMaterialsRequest struct {
	IssuedBy              string                     `json:"issued_by" binding:"required,uuid"`
	ReceivedBy            string                     `json:"received_by" binding:"omitempty,uuid"`
	Notes                 string                     `json:"notes" binding:"max=1000"`
	PrimaryQuantities     map[string]decimal.Decimal `json:"primary_quantities"`
	AlternativeQuantities map[string]decimal.Decimal `json:"alternative_quantities"`
}

// ReturnLineRequest is one line of a return body
type ReturnLineRequest struct {
	IssuanceDetailID string          `json:"issuance_detail_id" binding:"required,uuid"`
	Quantity         decimal.Decimal `json:"quantity"`
	Condition        string          `json:"condition" binding:"required,oneof=GOOD DAMAGED"`
}

// ReturnMaterialsRequest is the body of a return
type ReturnMaterialsRequest struct {
	Reason     string              `json:"reason" binding:"required,max=500"`
	ReturnedBy string              `json:"returned_by" binding:"required,uuid"`
	ReceivedBy string              `json:"received_by" binding:"required,uuid"`
	Lines      []ReturnLineRequest `json:"returns" binding:"required,min=1,dive"`
}

// IssueMaterials handles POST /production-orders/:id/issues
func (h *MaterialHandler) IssueMaterials(c *gin.Context) {
	orderID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req IssueMaterialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	receivedBy, err := parseOptionalUUID(req.ReceivedBy)
	if err != nil {
		h.BadRequest(c, "Invalid received_by format")
		return
	}
	primary := make(map[uuid.UUID]decimal.Decimal, len(req.PrimaryQuantities))
	for raw, qty := range req.PrimaryQuantities {
		materialID, err := uuid.Parse(raw)
		if err != nil {
			h.BadRequest(c, "Invalid material id "+raw)
			return
		}
		primary[materialID] = qty
	}

	result, err := h.commands.IssueMaterials(c.Request.Context(), appprod.IssueMaterialsRequest{
		OrderID:               orderID,
		IssuedBy:              uuid.MustParse(req.IssuedBy),
		ReceivedBy:            receivedBy,
		Notes:                 req.Notes,
		PrimaryQuantities:     primary,
		AlternativeQuantities: req.AlternativeQuantities,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// ReturnMaterials handles POST /production-orders/:id/returns
func (h *MaterialHandler) ReturnMaterials(c *gin.Context) {
	orderID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req ReturnMaterialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	lines := make([]appprod.ReturnLine, len(req.Lines))
	for i, l := range req.Lines {
		lines[i] = appprod.ReturnLine{
			IssuanceDetailID: uuid.MustParse(l.IssuanceDetailID),
			Quantity:         l.Quantity,
			Condition:        production.ReturnCondition(l.Condition),
		}
	}

	result, err := h.commands.ReturnMaterials(c.Request.Context(), appprod.ReturnMaterialsRequest{
		OrderID:    orderID,
		Reason:     req.Reason,
		ReturnedBy: uuid.MustParse(req.ReturnedBy),
		ReceivedBy: uuid.MustParse(req.ReceivedBy),
		Lines:      lines,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// GetOrderMaterials handles GET /production-orders/:id/materials
func (h *MaterialHandler) GetOrderMaterials(c *gin.Context) {
	orderID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	resp, err := h.queries.GetOrderMaterials(c.Request.Context(), orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ListReturnable handles GET /production-orders/:id/returnable
func (h *MaterialHandler) ListReturnable(c *gin.Context) {
	orderID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	resp, err := h.queries.ListReturnable(c.Request.Context(), orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// GetIssuance handles GET /issues/:id
func (h *MaterialHandler) GetIssuance(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	resp, err := h.queries.GetIssuance(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// GetReturn handles GET /returns/:id
func (h *MaterialHandler) GetReturn(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	resp, err := h.queries.GetReturn(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
