package router

import (
	"github.com/gin-gonic/gin"
	"github.com/hongquyngo/vti-production-sub002/internal/interfaces/http/handler"
)

// MaterialRoutes maps issuance, return and order material endpoints.
// Submissions run behind the idempotency middleware.
func MaterialRoutes(h *handler.MaterialHandler, idempotency gin.HandlerFunc) []RouteRegistrar {
	orders := NewDomainGroup("production-orders", "/production-orders")
	orders.POST("/:id/issues", idempotency, h.IssueMaterials)
	orders.POST("/:id/returns", idempotency, h.ReturnMaterials)
	orders.GET("/:id/materials", h.GetOrderMaterials)
	orders.GET("/:id/returnable", h.ListReturnable)

	issues := NewDomainGroup("issues", "/issues")
	issues.GET("/:id", h.GetIssuance)

	returns := NewDomainGroup("returns", "/returns")
	returns.GET("/:id", h.GetReturn)

	return []RouteRegistrar{orders, issues, returns}
}

// InventoryRoutes maps the ledger endpoints
func InventoryRoutes(h *handler.InventoryHandler, idempotency gin.HandlerFunc) RouteRegistrar {
	inv := NewDomainGroup("inventory", "/inventory")
	lots := inv.Group("lots", "/lots")
	lots.POST("", idempotency, h.ReceiveStock)
	lots.GET("", h.ListLots)
	lots.POST("/:id/write-off", idempotency, h.WriteOff)
	inv.GET("/balance", h.GetBalance)
	return inv
}
