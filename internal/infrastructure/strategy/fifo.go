package strategy

import (
	"sort"

	"github.com/hongquyngo/vti-production-sub002/internal/domain/inventory"
	"github.com/shopspring/decimal"
)

// FIFOStrategy consumes lots in receipt order and ignores expiry dates.
// Useful for materials that carry no shelf life.
type FIFOStrategy struct{}

// NewFIFOStrategy creates a new FIFO allocation strategy
func NewFIFOStrategy() *FIFOStrategy {
	return &FIFOStrategy{}
}

// Name returns the strategy name
func (s *FIFOStrategy) Name() string {
	return "fifo"
}

// Order sorts lots by creation time, oldest first, then by ID
func (s *FIFOStrategy) Order(lots []*inventory.LotEntry) []*inventory.LotEntry {
	sorted := make([]*inventory.LotEntry, len(lots))
	copy(sorted, lots)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].CreatedAt.Equal(sorted[j].CreatedAt) {
			return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
		}
		return sorted[i].ID.String() < sorted[j].ID.String()
	})
	return sorted
}

// Allocate takes from the oldest lots until requested is covered
func (s *FIFOStrategy) Allocate(requested decimal.Decimal, lots []*inventory.LotEntry) (*inventory.AllocationResult, error) {
	return inventory.AllocateInOrder(requested, lots, s.Order)
}

var _ inventory.AllocationStrategy = (*FIFOStrategy)(nil)
