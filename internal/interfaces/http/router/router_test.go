package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(engine http.Handler, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func TestRouter_SetupUsesVersionPrefix(t *testing.T) {
	engine := gin.New()
	g := NewDomainGroup("issues", "/issues")
	g.GET("/:id", func(c *gin.Context) { c.String(http.StatusOK, c.Param("id")) })

	NewRouter(engine, WithAPIVersion("v2")).Register(g).Setup()

	w := serve(engine, http.MethodGet, "/api/v2/issues/42")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "42", w.Body.String())
	assert.Equal(t, http.StatusNotFound, serve(engine, http.MethodGet, "/api/v1/issues/42").Code)
}

func TestDomainGroup(t *testing.T) {
	t.Run("name and prefix", func(t *testing.T) {
		g := NewDomainGroup("inventory", "/inventory")
		assert.Equal(t, "inventory", g.Name())
		assert.Equal(t, "/inventory", g.Prefix())
	})

	t.Run("group middleware runs before routes", func(t *testing.T) {
		engine := gin.New()
		g := NewDomainGroup("orders", "/production-orders")
		g.Use(func(c *gin.Context) {
			c.Header("X-Group", "orders")
			c.Next()
		})
		g.POST("/:id/issues", func(c *gin.Context) { c.Status(http.StatusCreated) })
		g.RegisterRoutes(engine.Group("/api/v1"))

		w := serve(engine, http.MethodPost, "/api/v1/production-orders/1/issues")
		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, "orders", w.Header().Get("X-Group"))
	})

	t.Run("subgroups nest under the parent prefix", func(t *testing.T) {
		engine := gin.New()
		inv := NewDomainGroup("inventory", "/inventory")
		inv.Group("lots", "/lots").GET("", func(c *gin.Context) { c.String(http.StatusOK, "lots") })
		inv.GET("/balance", func(c *gin.Context) { c.String(http.StatusOK, "balance") })
		inv.RegisterRoutes(engine.Group("/api/v1"))

		assert.Equal(t, "lots", serve(engine, http.MethodGet, "/api/v1/inventory/lots").Body.String())
		assert.Equal(t, "balance", serve(engine, http.MethodGet, "/api/v1/inventory/balance").Body.String())
	})
}
