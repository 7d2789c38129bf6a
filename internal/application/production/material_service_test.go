package production

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hongquyngo/vti-production-sub002/internal/domain/inventory"
	"github.com/hongquyngo/vti-production-sub002/internal/domain/production"
	"github.com/hongquyngo/vti-production-sub002/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

func (p *recordingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
	return nil
}

type recordingMetrics struct {
	issuances  int
	returns    int
	rejections []string
}

func (m *recordingMetrics) RecordIssuance(context.Context, uuid.UUID, int, int) { m.issuances++ }
func (m *recordingMetrics) RecordReturn(context.Context, uuid.UUID, int, int)   { m.returns++ }
func (m *recordingMetrics) RecordRejection(_ context.Context, _ string, code string) {
	m.rejections = append(m.rejections, code)
}

type fixture struct {
	store     *memStore
	svc       *MaterialService
	publisher *recordingPublisher
	metrics   *recordingMetrics
	order     *production.ProductionOrder
	material  uuid.UUID
	alt       production.BOMAlternative
	employee  uuid.UUID
}

// newFixture seeds an order requiring 100 of M, where M has lots of 40
// (expiring first) and 80, and an alternative A at 2 units per unit of M
// with one lot of 50.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := newMemStore()

	order, err := production.NewProductionOrder("PO-2025-001", uuid.New(), uuid.New(), uuid.New(), dec("10"), "pcs")
	require.NoError(t, err)
	store.orders[order.ID] = *order

	material := uuid.New()
	req, err := production.NewMaterialRequirement(order.ID, material, dec("100"), "kg")
	require.NoError(t, err)
	store.reqs[req.ID] = *req

	line, err := production.NewBOMLine(order.BOMID, material, dec("1"), "kg")
	require.NoError(t, err)
	alt, err := line.AddAlternative(uuid.New(), dec("2"), "kg", 1)
	require.NoError(t, err)
	store.lines[line.ID] = *line

	base := time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC)
	seedLot(t, store, material, order.WarehouseID, "L1", "40", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), base)
	seedLot(t, store, material, order.WarehouseID, "L2", "80", time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), base)
	seedLot(t, store, alt.AlternativeMaterialID, order.WarehouseID, "A1", "50", time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), base)

	publisher := &recordingPublisher{}
	metrics := &recordingMetrics{}
	svc := NewMaterialService(store, nil)
	svc.SetEventPublisher(publisher)
	svc.SetMetrics(metrics)

	return &fixture{
		store:     store,
		svc:       svc,
		publisher: publisher,
		metrics:   metrics,
		order:     order,
		material:  material,
		alt:       *alt,
		employee:  uuid.New(),
	}
}

func seedLot(t *testing.T, store *memStore, productID, warehouseID uuid.UUID, batch, qty string, expiry, createdAt time.Time) {
	t.Helper()
	lot, err := inventory.NewInboundEntry(productID, warehouseID, inventory.EntryTypeReceipt, dec(qty), batch, &expiry)
	require.NoError(t, err)
	lot.CreatedAt = createdAt
	store.lots[lot.ID] = *lot
}

func (f *fixture) altKey() string {
	return production.AlternativeKey{MaterialID: f.material, AlternativeID: f.alt.ID}.String()
}

func (f *fixture) lotRemain(batch string) decimal.Decimal {
	for _, e := range f.store.lots {
		if e.BatchNo == batch && e.Type == inventory.EntryTypeReceipt {
			return e.Remain
		}
	}
	return decimal.Zero
}

// conserved checks remain + outbound == inbound for a product
func (f *fixture) conserved(t *testing.T, productID uuid.UUID) {
	t.Helper()
	in, remain, out := decimal.Zero, decimal.Zero, decimal.Zero
	for _, e := range f.store.entries(productID) {
		if e.Type.IsInbound() {
			in = in.Add(e.Quantity)
			remain = remain.Add(e.Remain)
		} else {
			out = out.Add(e.Quantity.Abs())
		}
	}
	assert.True(t, remain.Add(out).Equal(in), "remain %s + out %s != in %s", remain, out, in)
}

func TestIssueAndReturn_Scenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	issued, err := f.svc.IssueMaterials(ctx, IssueMaterialsRequest{
		OrderID:           f.order.ID,
		IssuedBy:          f.employee,
		PrimaryQuantities: map[uuid.UUID]decimal.Decimal{f.material: dec("60")},
	})
	require.NoError(t, err)
	require.Len(t, issued.Details, 2)
	assert.Equal(t, "L1", issued.Details[0].BatchNo)
	assert.True(t, issued.Details[0].Quantity.Equal(dec("40")))
	assert.Equal(t, "L2", issued.Details[1].BatchNo)
	assert.True(t, issued.Details[1].Quantity.Equal(dec("20")))
	assert.Equal(t, string(production.OrderStatusInProgress), issued.OrderStatus)
	assert.Regexp(t, `^MI-\d{8}-[0-9A-F]{6}$`, issued.IssueNo)

	assert.True(t, f.lotRemain("L1").IsZero())
	assert.True(t, f.lotRemain("L2").Equal(dec("60")))
	req := f.store.requirement(f.order.ID, f.material)
	assert.True(t, req.IssuedQty.Equal(dec("60")))
	assert.Equal(t, production.RequirementStatusPartial, req.Status)

	substituted, err := f.svc.IssueMaterials(ctx, IssueMaterialsRequest{
		OrderID:               f.order.ID,
		IssuedBy:              f.employee,
		AlternativeQuantities: map[string]decimal.Decimal{f.altKey(): dec("20")},
	})
	require.NoError(t, err)
	require.Len(t, substituted.Details, 1)
	require.Len(t, substituted.Substitutions, 1)
	sub := substituted.Substitutions[0]
	assert.True(t, sub.ActualQuantity.Equal(dec("20")))
	assert.True(t, sub.EquivalentQuantity.Equal(dec("10")))
	assert.True(t, sub.ConversionRatio.Equal(dec("2")))
	req = f.store.requirement(f.order.ID, f.material)
	assert.True(t, req.IssuedQty.Equal(dec("70")))
	assert.Equal(t, production.RequirementStatusPartial, req.Status)

	altDetail := substituted.Details[0]
	returned, err := f.svc.ReturnMaterials(ctx, ReturnMaterialsRequest{
		OrderID:    f.order.ID,
		Reason:     "excess",
		ReturnedBy: f.employee,
		ReceivedBy: uuid.New(),
		Lines: []ReturnLine{
			{IssuanceDetailID: altDetail.ID, Quantity: dec("10"), Condition: production.ReturnConditionGood},
		},
	})
	require.NoError(t, err)
	require.Len(t, returned.Details, 1)
	require.NotNil(t, returned.Details[0].RestockEntryID)
	assert.True(t, returned.Details[0].EquivalentQty.Equal(dec("5")))

	req = f.store.requirement(f.order.ID, f.material)
	assert.True(t, req.IssuedQty.Equal(dec("65")))

	restock := f.store.lots[*returned.Details[0].RestockEntryID]
	assert.Equal(t, f.alt.AlternativeMaterialID, restock.ProductID)
	assert.Equal(t, inventory.EntryTypeProductionReturn, restock.Type)
	assert.True(t, restock.Quantity.Equal(dec("10")))
	assert.True(t, restock.Remain.Equal(dec("10")))
	assert.Equal(t, "A1", restock.BatchNo)

	f.conserved(t, f.material)
	f.conserved(t, f.alt.AlternativeMaterialID)

	require.Len(t, f.publisher.events, 3)
	assert.Equal(t, production.EventTypeMaterialsIssued, f.publisher.events[0].EventType())
	assert.Equal(t, production.EventTypeMaterialsReturned, f.publisher.events[2].EventType())
	assert.Equal(t, 2, f.metrics.issuances)
	assert.Equal(t, 1, f.metrics.returns)
}

func TestIssueMaterials_InsufficientStockRollsBack(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.IssueMaterials(context.Background(), IssueMaterialsRequest{
		OrderID:           f.order.ID,
		IssuedBy:          f.employee,
		PrimaryQuantities: map[uuid.UUID]decimal.Decimal{f.material: dec("150")},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrInsufficientStock))

	assert.True(t, f.lotRemain("L1").Equal(dec("40")))
	assert.True(t, f.lotRemain("L2").Equal(dec("80")))
	assert.Len(t, f.store.entries(f.material), 2)
	assert.Empty(t, f.store.issuances)
	assert.True(t, f.store.requirement(f.order.ID, f.material).IssuedQty.IsZero())
	assert.Equal(t, production.OrderStatusDraft, f.store.orders[f.order.ID].Status)
	assert.Empty(t, f.publisher.events)
	assert.Equal(t, []string{"INSUFFICIENT_STOCK"}, f.metrics.rejections)
}

func TestIssueMaterials_ShortfallCoveredByAlternative(t *testing.T) {
	f := newFixture(t)

	result, err := f.svc.IssueMaterials(context.Background(), IssueMaterialsRequest{
		OrderID:               f.order.ID,
		IssuedBy:              f.employee,
		PrimaryQuantities:     map[uuid.UUID]decimal.Decimal{f.material: dec("150")},
		AlternativeQuantities: map[string]decimal.Decimal{f.altKey(): dec("40")},
	})
	require.NoError(t, err)
	assert.Len(t, result.Details, 3)
	req := f.store.requirement(f.order.ID, f.material)
	assert.True(t, req.IssuedQty.Equal(dec("140")), "120 primary + 40/2 alternative, got %s", req.IssuedQty)
	assert.Equal(t, production.RequirementStatusIssued, req.Status)
}

func TestIssueMaterials_AlternativeShortfallRollsBackPrimary(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.IssueMaterials(context.Background(), IssueMaterialsRequest{
		OrderID:               f.order.ID,
		IssuedBy:              f.employee,
		PrimaryQuantities:     map[uuid.UUID]decimal.Decimal{f.material: dec("30")},
		AlternativeQuantities: map[string]decimal.Decimal{f.altKey(): dec("60")},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrInsufficientStock))
	assert.True(t, f.lotRemain("L1").Equal(dec("40")))
	assert.True(t, f.lotRemain("A1").Equal(dec("50")))
	assert.True(t, f.store.requirement(f.order.ID, f.material).IssuedQty.IsZero())
}

func TestIssueMaterials_AlternativeKeyByMaterialID(t *testing.T) {
	f := newFixture(t)
	key := production.AlternativeKey{MaterialID: f.material, AlternativeID: f.alt.AlternativeMaterialID}.String()

	result, err := f.svc.IssueMaterials(context.Background(), IssueMaterialsRequest{
		OrderID:               f.order.ID,
		IssuedBy:              f.employee,
		AlternativeQuantities: map[string]decimal.Decimal{key: dec("10")},
	})
	require.NoError(t, err)
	require.Len(t, result.Substitutions, 1)
	assert.Equal(t, f.alt.ID, result.Substitutions[0].AlternativeID)
}

func TestIssueMaterials_AutoFill(t *testing.T) {
	f := newFixture(t)

	result, err := f.svc.IssueMaterials(context.Background(), IssueMaterialsRequest{
		OrderID:  f.order.ID,
		IssuedBy: f.employee,
	})
	require.NoError(t, err)
	assert.Len(t, result.Details, 2)
	req := f.store.requirement(f.order.ID, f.material)
	assert.True(t, req.IssuedQty.Equal(dec("100")))
	assert.Equal(t, production.RequirementStatusIssued, req.Status)

	_, err = f.svc.IssueMaterials(context.Background(), IssueMaterialsRequest{
		OrderID:  f.order.ID,
		IssuedBy: f.employee,
	})
	assert.True(t, errors.Is(err, shared.ErrValidation), "nothing left to auto-fill")
}

func TestIssueMaterials_OverIssueAllowed(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.IssueMaterials(context.Background(), IssueMaterialsRequest{
		OrderID:           f.order.ID,
		IssuedBy:          f.employee,
		PrimaryQuantities: map[uuid.UUID]decimal.Decimal{f.material: dec("110")},
	})
	require.NoError(t, err)
	req := f.store.requirement(f.order.ID, f.material)
	assert.True(t, req.IssuedQty.Equal(dec("110")))
	assert.Equal(t, production.RequirementStatusIssued, req.Status)
}

func TestIssueMaterials_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name string
		req  IssueMaterialsRequest
	}{
		{
			name: "missing issuer",
			req:  IssueMaterialsRequest{OrderID: f.order.ID},
		},
		{
			name: "negative quantity",
			req: IssueMaterialsRequest{OrderID: f.order.ID, IssuedBy: f.employee,
				PrimaryQuantities: map[uuid.UUID]decimal.Decimal{f.material: dec("-1")}},
		},
		{
			name: "material not on order",
			req: IssueMaterialsRequest{OrderID: f.order.ID, IssuedBy: f.employee,
				PrimaryQuantities: map[uuid.UUID]decimal.Decimal{uuid.New(): dec("1")}},
		},
		{
			name: "malformed alternative key",
			req: IssueMaterialsRequest{OrderID: f.order.ID, IssuedBy: f.employee,
				AlternativeQuantities: map[string]decimal.Decimal{"not-a-key": dec("1")}},
		},
		{
			name: "unknown alternative",
			req: IssueMaterialsRequest{OrderID: f.order.ID, IssuedBy: f.employee,
				AlternativeQuantities: map[string]decimal.Decimal{
					production.AlternativeKey{MaterialID: f.material, AlternativeID: uuid.New()}.String(): dec("1"),
				}},
		},
		{
			name: "only zero quantities",
			req: IssueMaterialsRequest{OrderID: f.order.ID, IssuedBy: f.employee,
				PrimaryQuantities: map[uuid.UUID]decimal.Decimal{f.material: decimal.Zero}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.IssueMaterials(ctx, tt.req)
			require.Error(t, err)
			assert.True(t, errors.Is(err, shared.ErrValidation), "got %v", err)
		})
	}
	assert.Empty(t, f.store.issuances)
}

func TestIssueMaterials_OrderNotIssuable(t *testing.T) {
	f := newFixture(t)
	o := f.store.orders[f.order.ID]
	o.Status = production.OrderStatusCompleted
	f.store.orders[f.order.ID] = o

	_, err := f.svc.IssueMaterials(context.Background(), IssueMaterialsRequest{
		OrderID:           f.order.ID,
		IssuedBy:          f.employee,
		PrimaryQuantities: map[uuid.UUID]decimal.Decimal{f.material: dec("10")},
	})
	assert.True(t, errors.Is(err, shared.ErrOrderNotIssuable))

	_, err = f.svc.IssueMaterials(context.Background(), IssueMaterialsRequest{
		OrderID:  uuid.New(),
		IssuedBy: f.employee,
	})
	assert.True(t, errors.Is(err, shared.ErrNotFound))
}

func (f *fixture) issuePrimary(t *testing.T, qty string) *IssueMaterialsResult {
	t.Helper()
	result, err := f.svc.IssueMaterials(context.Background(), IssueMaterialsRequest{
		OrderID:           f.order.ID,
		IssuedBy:          f.employee,
		PrimaryQuantities: map[uuid.UUID]decimal.Decimal{f.material: dec(qty)},
	})
	require.NoError(t, err)
	return result
}

func TestReturnMaterials_ExceedsIssued(t *testing.T) {
	f := newFixture(t)
	issued := f.issuePrimary(t, "30")
	detailID := issued.Details[0].ID

	_, err := f.svc.ReturnMaterials(context.Background(), ReturnMaterialsRequest{
		OrderID: f.order.ID, Reason: "excess", ReturnedBy: f.employee, ReceivedBy: f.employee,
		Lines: []ReturnLine{
			{IssuanceDetailID: detailID, Quantity: dec("20"), Condition: production.ReturnConditionGood},
			{IssuanceDetailID: detailID, Quantity: dec("11"), Condition: production.ReturnConditionDamaged},
		},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrReturnExceedsIssued))
	assert.Empty(t, f.store.returns)
	assert.Len(t, f.store.entries(f.material), 3, "two lots plus one outbound row")
	assert.True(t, f.store.requirement(f.order.ID, f.material).IssuedQty.Equal(dec("30")))

	_, err = f.svc.ReturnMaterials(context.Background(), ReturnMaterialsRequest{
		OrderID: f.order.ID, Reason: "excess", ReturnedBy: f.employee, ReceivedBy: f.employee,
		Lines: []ReturnLine{{IssuanceDetailID: detailID, Quantity: dec("30"), Condition: production.ReturnConditionGood}},
	})
	require.NoError(t, err)

	_, err = f.svc.ReturnMaterials(context.Background(), ReturnMaterialsRequest{
		OrderID: f.order.ID, Reason: "again", ReturnedBy: f.employee, ReceivedBy: f.employee,
		Lines: []ReturnLine{{IssuanceDetailID: detailID, Quantity: dec("0.5"), Condition: production.ReturnConditionGood}},
	})
	assert.True(t, errors.Is(err, shared.ErrReturnExceedsIssued))
}

func TestReturnMaterials_DamagedDoesNotRestock(t *testing.T) {
	f := newFixture(t)
	issued := f.issuePrimary(t, "30")
	before := len(f.store.entries(f.material))

	result, err := f.svc.ReturnMaterials(context.Background(), ReturnMaterialsRequest{
		OrderID: f.order.ID, Reason: "contaminated", ReturnedBy: f.employee, ReceivedBy: f.employee,
		Lines: []ReturnLine{{IssuanceDetailID: issued.Details[0].ID, Quantity: dec("10"), Condition: production.ReturnConditionDamaged}},
	})
	require.NoError(t, err)
	require.Len(t, result.Details, 1)
	assert.Nil(t, result.Details[0].RestockEntryID)
	assert.Len(t, f.store.entries(f.material), before)
	assert.True(t, f.store.requirement(f.order.ID, f.material).IssuedQty.Equal(dec("20")))
	f.conserved(t, f.material)
}

func TestReturnMaterials_Validation(t *testing.T) {
	f := newFixture(t)
	issued := f.issuePrimary(t, "10")
	good := ReturnLine{IssuanceDetailID: issued.Details[0].ID, Quantity: dec("1"), Condition: production.ReturnConditionGood}

	tests := []struct {
		name string
		req  ReturnMaterialsRequest
	}{
		{"missing receiver", ReturnMaterialsRequest{OrderID: f.order.ID, Reason: "x", ReturnedBy: f.employee, Lines: []ReturnLine{good}}},
		{"missing reason", ReturnMaterialsRequest{OrderID: f.order.ID, ReturnedBy: f.employee, ReceivedBy: f.employee, Lines: []ReturnLine{good}}},
		{"no lines", ReturnMaterialsRequest{OrderID: f.order.ID, Reason: "x", ReturnedBy: f.employee, ReceivedBy: f.employee}},
		{"zero quantity", ReturnMaterialsRequest{OrderID: f.order.ID, Reason: "x", ReturnedBy: f.employee, ReceivedBy: f.employee,
			Lines: []ReturnLine{{IssuanceDetailID: good.IssuanceDetailID, Quantity: decimal.Zero, Condition: production.ReturnConditionGood}}}},
		{"bad condition", ReturnMaterialsRequest{OrderID: f.order.ID, Reason: "x", ReturnedBy: f.employee, ReceivedBy: f.employee,
			Lines: []ReturnLine{{IssuanceDetailID: good.IssuanceDetailID, Quantity: dec("1"), Condition: "LOST"}}}},
		{"unknown detail", ReturnMaterialsRequest{OrderID: f.order.ID, Reason: "x", ReturnedBy: f.employee, ReceivedBy: f.employee,
			Lines: []ReturnLine{{IssuanceDetailID: uuid.New(), Quantity: dec("1"), Condition: production.ReturnConditionGood}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.ReturnMaterials(context.Background(), tt.req)
			require.Error(t, err)
			assert.True(t, errors.Is(err, shared.ErrValidation), "got %v", err)
		})
	}
	assert.Empty(t, f.store.returns)
}

func TestMaterialDocuments_DatedByServiceClock(t *testing.T) {
	f := newFixture(t)
	clock := time.Date(2025, 1, 14, 23, 59, 59, 0, time.UTC)
	f.svc.now = func() time.Time { return clock }

	issued := f.issuePrimary(t, "10")
	assert.Regexp(t, `^MI-20250114-`, issued.IssueNo)
	assert.True(t, f.store.issuances[issued.IssueID].IssueDate.Equal(clock))

	returned, err := f.svc.ReturnMaterials(context.Background(), ReturnMaterialsRequest{
		OrderID:    f.order.ID,
		Reason:     "excess",
		ReturnedBy: f.employee,
		ReceivedBy: uuid.New(),
		Lines: []ReturnLine{
			{IssuanceDetailID: issued.Details[0].ID, Quantity: dec("2"), Condition: production.ReturnConditionGood},
		},
	})
	require.NoError(t, err)
	assert.Regexp(t, `^MR-20250114-`, returned.ReturnNo)
	assert.True(t, f.store.returns[returned.ReturnID].ReturnDate.Equal(clock))
}

func TestIssueMaterials_LocksCandidateProductsInOrder(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.IssueMaterials(context.Background(), IssueMaterialsRequest{
		OrderID:               f.order.ID,
		IssuedBy:              f.employee,
		PrimaryQuantities:     map[uuid.UUID]decimal.Decimal{f.material: dec("10")},
		AlternativeQuantities: map[string]decimal.Decimal{f.altKey(): dec("4")},
	})
	require.NoError(t, err)

	want := []uuid.UUID{f.material, f.alt.AlternativeMaterialID}
	sort.Slice(want, func(i, j int) bool { return want[i].String() < want[j].String() })
	require.GreaterOrEqual(t, len(f.store.locked), 2)
	assert.Equal(t, want, f.store.locked[:2])
}
