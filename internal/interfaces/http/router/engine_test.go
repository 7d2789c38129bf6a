package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	appinv "github.com/hongquyngo/vti-production-sub002/internal/application/inventory"
	appprod "github.com/hongquyngo/vti-production-sub002/internal/application/production"
	"github.com/hongquyngo/vti-production-sub002/internal/domain/shared"
	"github.com/hongquyngo/vti-production-sub002/internal/infrastructure/cache"
	"github.com/hongquyngo/vti-production-sub002/internal/infrastructure/config"
	"github.com/hongquyngo/vti-production-sub002/internal/interfaces/http/handler"
	"github.com/hongquyngo/vti-production-sub002/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type countingMaterials struct {
	issues atomic.Int32
}

func (m *countingMaterials) IssueMaterials(_ context.Context, req appprod.IssueMaterialsRequest) (*appprod.IssueMaterialsResult, error) {
	m.issues.Add(1)
	return &appprod.IssueMaterialsResult{IssueID: uuid.New(), IssueNo: "MI-1", OrderID: req.OrderID}, nil
}

func (m *countingMaterials) ReturnMaterials(context.Context, appprod.ReturnMaterialsRequest) (*appprod.ReturnMaterialsResult, error) {
	return nil, shared.ErrReturnExceedsIssued
}

func (m *countingMaterials) GetOrderMaterials(context.Context, uuid.UUID) (*appprod.OrderMaterialsResponse, error) {
	return nil, shared.ErrNotFound
}

func (m *countingMaterials) ListReturnable(context.Context, uuid.UUID) ([]appprod.ReturnableDetailResponse, error) {
	return nil, nil
}

func (m *countingMaterials) GetIssuance(context.Context, uuid.UUID) (*appprod.IssuanceResponse, error) {
	return nil, shared.ErrNotFound
}

func (m *countingMaterials) GetReturn(context.Context, uuid.UUID) (*appprod.ReturnResponse, error) {
	return nil, shared.ErrNotFound
}

type emptyInventory struct{}

func (emptyInventory) ReceiveStock(context.Context, appinv.ReceiveStockRequest) (*appinv.LotEntryResponse, error) {
	return &appinv.LotEntryResponse{}, nil
}

func (emptyInventory) WriteOff(context.Context, uuid.UUID, appinv.WriteOffRequest) (*appinv.WriteOffResponse, error) {
	return nil, shared.ErrInvalidState
}

func (emptyInventory) ListLots(context.Context, appinv.LotListFilter) ([]appinv.LotEntryResponse, int64, error) {
	return []appinv.LotEntryResponse{}, 0, nil
}

func (emptyInventory) GetBalance(context.Context, uuid.UUID, uuid.UUID) (*appinv.BalanceResponse, error) {
	return &appinv.BalanceResponse{}, nil
}

type okPinger struct{}

func (okPinger) PingContext(context.Context) error { return nil }

func newTestEngine(t *testing.T) (http.Handler, *countingMaterials) {
	t.Helper()
	store := cache.NewInMemoryIdempotencyStore()
	t.Cleanup(func() { _ = store.Close() })

	materials := &countingMaterials{}
	cfg := &config.Config{
		App: config.AppConfig{Name: "production-materials", Env: "test"},
		HTTP: config.HTTPConfig{
			MaxBodySize:      1 << 10,
			CORSAllowOrigins: []string{"*"},
			CORSAllowMethods: []string{"GET", "POST"},
		},
		Idempotency: config.IdempotencyConfig{Enabled: true, TTL: time.Hour, LockTTL: time.Minute},
	}

	engine, err := NewEngine(Dependencies{
		Config:      cfg,
		Logger:      zap.NewNop(),
		Idempotency: store,
		Material:    handler.NewMaterialHandler(materials, materials),
		Inventory:   handler.NewInventoryHandler(emptyInventory{}),
		Health:      handler.NewHealthHandler(okPinger{}, "test"),
	})
	require.NoError(t, err)
	return engine, materials
}

func postJSON(engine http.Handler, path, body, key string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if key != "" {
		req.Header.Set(middleware.IdempotencyHeader, key)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestNewEngine_IssueIsIdempotent(t *testing.T) {
	engine, materials := newTestEngine(t)
	path := "/api/v1/production-orders/" + uuid.NewString() + "/issues"
	body := `{"issued_by":"` + uuid.NewString() + `"}`

	first := postJSON(engine, path, body, "submit-1")
	second := postJSON(engine, path, body, "submit-1")

	require.Equal(t, http.StatusCreated, first.Code)
	require.Equal(t, http.StatusCreated, second.Code)
	assert.Equal(t, int32(1), materials.issues.Load())
	assert.Equal(t, "true", second.Header().Get(middleware.ReplayHeader))
	assert.Equal(t, first.Body.String(), second.Body.String())
}

func TestNewEngine_Routes(t *testing.T) {
	engine, _ := newTestEngine(t)
	id := uuid.NewString()

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/health", http.StatusOK},
		{http.MethodGet, "/health/ready", http.StatusOK},
		{http.MethodGet, "/api/v1/production-orders/" + id + "/materials", http.StatusNotFound},
		{http.MethodGet, "/api/v1/production-orders/" + id + "/returnable", http.StatusOK},
		{http.MethodGet, "/api/v1/issues/" + id, http.StatusNotFound},
		{http.MethodGet, "/api/v1/returns/" + id, http.StatusNotFound},
		{http.MethodGet, "/api/v1/inventory/lots?product_id=" + id + "&warehouse_id=" + id, http.StatusOK},
		{http.MethodGet, "/api/v1/inventory/balance?product_id=" + id + "&warehouse_id=" + id, http.StatusOK},
		{http.MethodGet, "/api/v1/issues/not-a-uuid", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := serve(engine, tt.method, tt.path)
			assert.Equal(t, tt.want, w.Code)
			assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))
		})
	}
}

func TestNewEngine_RejectsOversizedBody(t *testing.T) {
	engine, materials := newTestEngine(t)
	body := `{"issued_by":"` + uuid.NewString() + `","notes":"` + strings.Repeat("x", 2048) + `"}`

	w := postJSON(engine, "/api/v1/production-orders/"+uuid.NewString()+"/issues", body, "")

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Zero(t, materials.issues.Load())
}

func TestNewEngine_FailedSubmissionIsNotReplayed(t *testing.T) {
	engine, _ := newTestEngine(t)
	path := "/api/v1/production-orders/" + uuid.NewString() + "/returns"
	body := `{"reason":"leftover","returned_by":"` + uuid.NewString() + `","received_by":"` + uuid.NewString() + `",
		"returns":[{"issuance_detail_id":"` + uuid.NewString() + `","quantity":"5","condition":"GOOD"}]}`

	first := postJSON(engine, path, body, "ret-1")
	second := postJSON(engine, path, body, "ret-1")

	assert.Equal(t, http.StatusUnprocessableEntity, first.Code)
	assert.Equal(t, http.StatusUnprocessableEntity, second.Code)
	assert.Empty(t, second.Header().Get(middleware.ReplayHeader))
}
