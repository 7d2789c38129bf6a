package production

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/hongquyngo/vti-production-sub002/internal/domain/inventory"
	"github.com/hongquyngo/vti-production-sub002/internal/domain/production"
	"github.com/hongquyngo/vti-production-sub002/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// memStore is an in-memory stand-in for the database. Execute snapshots the
// state and restores it when fn fails, which is enough to observe rollback.
type memStore struct {
	mu        sync.Mutex
	orders    map[uuid.UUID]production.ProductionOrder
	reqs      map[uuid.UUID]production.MaterialRequirement
	lines     map[uuid.UUID]production.BOMLine
	issuances map[uuid.UUID]production.IssuanceRecord
	returns   map[uuid.UUID]production.ReturnRecord
	lots      map[uuid.UUID]inventory.LotEntry
	adjusts   []inventory.RemainAdjustment
	// locked lists the products passed to LockAvailable, in call order
	locked []uuid.UUID
}

func newMemStore() *memStore {
	return &memStore{
		orders:    map[uuid.UUID]production.ProductionOrder{},
		reqs:      map[uuid.UUID]production.MaterialRequirement{},
		lines:     map[uuid.UUID]production.BOMLine{},
		issuances: map[uuid.UUID]production.IssuanceRecord{},
		returns:   map[uuid.UUID]production.ReturnRecord{},
		lots:      map[uuid.UUID]inventory.LotEntry{},
	}
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (s *memStore) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	orders, reqs, issuances, returns, lots := cloneMap(s.orders), cloneMap(s.reqs), cloneMap(s.issuances), cloneMap(s.returns), cloneMap(s.lots)
	adjusts := append([]inventory.RemainAdjustment(nil), s.adjusts...)

	if err := fn(memRepos{s}); err != nil {
		s.orders, s.reqs, s.issuances, s.returns, s.lots, s.adjusts = orders, reqs, issuances, returns, lots, adjusts
		return err
	}
	return nil
}

type memRepos struct{ s *memStore }

func (r memRepos) OrderRepo() production.ProductionOrderRepository           { return memOrders{r.s} }
func (r memRepos) RequirementRepo() production.MaterialRequirementRepository { return memReqs{r.s} }
func (r memRepos) BOMRepo() production.BOMRepository                         { return memBOM{r.s} }
func (r memRepos) IssuanceRepo() production.IssuanceRepository               { return memIssuances{r.s} }
func (r memRepos) ReturnRepo() production.ReturnRepository                   { return memReturns{r.s} }
func (r memRepos) LotRepo() inventory.LotEntryRepository                     { return memLots{r.s} }

type memOrders struct{ s *memStore }

func (r memOrders) FindByID(_ context.Context, id uuid.UUID) (*production.ProductionOrder, error) {
	o, ok := r.s.orders[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &o, nil
}

func (r memOrders) LockByID(ctx context.Context, id uuid.UUID) (*production.ProductionOrder, error) {
	return r.FindByID(ctx, id)
}

func (r memOrders) Save(_ context.Context, o *production.ProductionOrder) error {
	r.s.orders[o.ID] = *o
	return nil
}

type memReqs struct{ s *memStore }

func (r memReqs) FindByOrder(_ context.Context, orderID uuid.UUID) ([]*production.MaterialRequirement, error) {
	out := make([]*production.MaterialRequirement, 0)
	for _, req := range r.s.reqs {
		if req.OrderID == orderID {
			req := req
			out = append(out, &req)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MaterialID.String() < out[j].MaterialID.String() })
	return out, nil
}

func (r memReqs) LockByOrder(ctx context.Context, orderID uuid.UUID) ([]*production.MaterialRequirement, error) {
	return r.FindByOrder(ctx, orderID)
}

func (r memReqs) Save(_ context.Context, req *production.MaterialRequirement) error {
	r.s.reqs[req.ID] = *req
	return nil
}

type memBOM struct{ s *memStore }

func (r memBOM) FindLines(_ context.Context, bomID uuid.UUID) ([]*production.BOMLine, error) {
	out := make([]*production.BOMLine, 0)
	for _, l := range r.s.lines {
		if l.BOMID == bomID {
			l := l
			l.Alternatives = append([]production.BOMAlternative(nil), l.Alternatives...)
			out = append(out, &l)
		}
	}
	return out, nil
}

func (r memBOM) SaveLine(_ context.Context, l *production.BOMLine) error {
	r.s.lines[l.ID] = *l
	return nil
}

type memIssuances struct{ s *memStore }

func (r memIssuances) Create(_ context.Context, rec *production.IssuanceRecord) error {
	c := *rec
	c.Details = append([]production.IssuanceDetail(nil), rec.Details...)
	r.s.issuances[rec.ID] = c
	return nil
}

func (r memIssuances) FindByID(_ context.Context, id uuid.UUID) (*production.IssuanceRecord, error) {
	rec, ok := r.s.issuances[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &rec, nil
}

func (r memIssuances) FindConfirmedDetailsByOrder(_ context.Context, orderID uuid.UUID) ([]production.IssuanceDetail, error) {
	out := make([]production.IssuanceDetail, 0)
	for _, rec := range r.s.issuances {
		if rec.OrderID == orderID && rec.Status == production.IssuanceStatusConfirmed {
			out = append(out, rec.Details...)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	return out, nil
}

func (r memIssuances) LockDetails(ctx context.Context, orderID uuid.UUID, ids []uuid.UUID) ([]production.IssuanceDetail, error) {
	all, _ := r.FindConfirmedDetailsByOrder(ctx, orderID)
	want := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	out := make([]production.IssuanceDetail, 0, len(ids))
	for _, d := range all {
		if want[d.ID] {
			out = append(out, d)
		}
	}
	return out, nil
}

type memReturns struct{ s *memStore }

func (r memReturns) Create(_ context.Context, rec *production.ReturnRecord) error {
	c := *rec
	c.Details = append([]production.ReturnDetail(nil), rec.Details...)
	r.s.returns[rec.ID] = c
	return nil
}

func (r memReturns) FindByID(_ context.Context, id uuid.UUID) (*production.ReturnRecord, error) {
	rec, ok := r.s.returns[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &rec, nil
}

func (r memReturns) SumReturnedByDetail(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]decimal.Decimal, error) {
	want := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	out := make(map[uuid.UUID]decimal.Decimal)
	for _, rec := range r.s.returns {
		for _, d := range rec.Details {
			if want[d.IssuanceDetailID] {
				out[d.IssuanceDetailID] = out[d.IssuanceDetailID].Add(d.Quantity)
			}
		}
	}
	return out, nil
}

type memLots struct{ s *memStore }

func (r memLots) LockAvailable(_ context.Context, productID, warehouseID uuid.UUID) ([]*inventory.LotEntry, error) {
	r.s.locked = append(r.s.locked, productID)
	out := make([]*inventory.LotEntry, 0)
	for _, e := range r.s.lots {
		if e.ProductID == productID && e.WarehouseID == warehouseID && e.IsAvailable() {
			e := e
			out = append(out, &e)
		}
	}
	return inventory.NewFEFOStrategy().Order(out), nil
}

func (r memLots) LockByID(ctx context.Context, id uuid.UUID) (*inventory.LotEntry, error) {
	return r.FindByID(ctx, id)
}

func (r memLots) FindByID(_ context.Context, id uuid.UUID) (*inventory.LotEntry, error) {
	e, ok := r.s.lots[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &e, nil
}

func (r memLots) Create(_ context.Context, e *inventory.LotEntry) error {
	r.s.lots[e.ID] = *e
	return nil
}

func (r memLots) UpdateRemain(_ context.Context, e *inventory.LotEntry) error {
	stored := r.s.lots[e.ID]
	stored.Remain = e.Remain
	r.s.lots[e.ID] = stored
	return nil
}

func (r memLots) CreateAdjustment(_ context.Context, adj *inventory.RemainAdjustment) error {
	r.s.adjusts = append(r.s.adjusts, *adj)
	return nil
}

func (r memLots) List(_ context.Context, productID, warehouseID uuid.UUID, _ shared.Filter) ([]inventory.LotEntry, int64, error) {
	out := make([]inventory.LotEntry, 0)
	for _, e := range r.s.lots {
		if e.ProductID == productID && e.WarehouseID == warehouseID {
			out = append(out, e)
		}
	}
	return out, int64(len(out)), nil
}

func (r memLots) Balance(_ context.Context, productID, warehouseID uuid.UUID) (*inventory.Balance, error) {
	b := &inventory.Balance{ProductID: productID, WarehouseID: warehouseID, OnHand: decimal.Zero}
	for _, e := range r.s.lots {
		if e.ProductID == productID && e.WarehouseID == warehouseID && e.IsAvailable() {
			b.OnHand = b.OnHand.Add(e.Remain)
			b.LotCount++
		}
	}
	return b, nil
}

// entries returns every ledger row of a product, for assertions
func (s *memStore) entries(productID uuid.UUID) []inventory.LotEntry {
	out := make([]inventory.LotEntry, 0)
	for _, e := range s.lots {
		if e.ProductID == productID {
			out = append(out, e)
		}
	}
	return out
}

func (s *memStore) requirement(orderID, materialID uuid.UUID) production.MaterialRequirement {
	for _, r := range s.reqs {
		if r.OrderID == orderID && r.MaterialID == materialID {
			return r
		}
	}
	return production.MaterialRequirement{}
}

var (
	_ TransactionScope          = (*memStore)(nil)
	_ TransactionalRepositories = memRepos{}
)
