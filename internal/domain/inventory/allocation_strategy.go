package inventory

import (
	"sort"

	"github.com/google/uuid"
	"github.com/hongquyngo/vti-production-sub002/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// LotPick is the quantity taken from a single lot
type LotPick struct {
	Lot      *LotEntry
	Quantity decimal.Decimal
}

// AllocationResult represents the outcome of allocating a quantity across lots
type AllocationResult struct {
	ProductID   uuid.UUID
	WarehouseID uuid.UUID
	Requested   decimal.Decimal
	Picks       []LotPick
	Allocated   decimal.Decimal
	Shortfall   decimal.Decimal
}

// IsFulfilled returns true if the whole requested quantity was allocated
func (r *AllocationResult) IsFulfilled() bool {
	return r.Shortfall.IsZero()
}

// AllocationStrategy decides which lots cover a requested quantity
type AllocationStrategy interface {
	Name() string
	// Order returns the lots in consumption order without mutating the input
	Order(lots []*LotEntry) []*LotEntry
	// Allocate never allocates more than requested; the uncovered part is
	// reported as Shortfall and left to the caller to act on.
	Allocate(requested decimal.Decimal, lots []*LotEntry) (*AllocationResult, error)
}

// FEFOStrategy allocates soonest-expiring lots first.
// Lots without an expiry date come last; ties fall back to creation time.
type FEFOStrategy struct{}

// NewFEFOStrategy creates a new FEFO allocation strategy
func NewFEFOStrategy() *FEFOStrategy {
	return &FEFOStrategy{}
}

// Name returns the strategy name
func (s *FEFOStrategy) Name() string {
	return "fefo"
}

// Order sorts lots by expiry ascending (nil last), then creation time
func (s *FEFOStrategy) Order(lots []*LotEntry) []*LotEntry {
	sorted := make([]*LotEntry, len(lots))
	copy(sorted, lots)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.ExpiryDate != nil && b.ExpiryDate != nil {
			if !a.ExpiryDate.Equal(*b.ExpiryDate) {
				return a.ExpiryDate.Before(*b.ExpiryDate)
			}
		} else if a.ExpiryDate != nil {
			return true
		} else if b.ExpiryDate != nil {
			return false
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})
	return sorted
}

// Allocate greedily takes min(lot.Remain, needed) in FEFO order
func (s *FEFOStrategy) Allocate(requested decimal.Decimal, lots []*LotEntry) (*AllocationResult, error) {
	return AllocateInOrder(requested, lots, s.Order)
}

// AllocateInOrder filters lots to those with stock, orders them with order
// and takes min(lot.Remain, needed) from each until requested is covered.
func AllocateInOrder(requested decimal.Decimal, lots []*LotEntry, order func([]*LotEntry) []*LotEntry) (*AllocationResult, error) {
	if !requested.IsPositive() {
		return nil, shared.NewDomainErrorf(shared.ErrValidation, "requested quantity must be positive, got %s", requested)
	}

	available := make([]*LotEntry, 0, len(lots))
	for _, lot := range lots {
		if lot.IsAvailable() {
			available = append(available, lot)
		}
	}

	result := &AllocationResult{
		Requested: requested,
		Picks:     make([]LotPick, 0),
		Allocated: decimal.Zero,
	}
	if len(available) > 0 {
		result.ProductID = available[0].ProductID
		result.WarehouseID = available[0].WarehouseID
	}

	needed := requested
	for _, lot := range order(available) {
		if !needed.IsPositive() {
			break
		}
		take := decimal.Min(lot.Remain, needed)
		result.Picks = append(result.Picks, LotPick{Lot: lot, Quantity: take})
		result.Allocated = result.Allocated.Add(take)
		needed = needed.Sub(take)
	}

	result.Shortfall = decimal.Max(decimal.Zero, requested.Sub(result.Allocated))
	return result, nil
}

var _ AllocationStrategy = (*FEFOStrategy)(nil)
