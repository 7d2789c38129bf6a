package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/hongquyngo/vti-production-sub002/internal/domain/shared"
)

// LotEntryRepository is the persistence port of the inventory ledger
type LotEntryRepository interface {
	// LockAvailable returns inbound lots with remain > 0 for the product and
	// warehouse, row-locked for the rest of the transaction, in FEFO order.
	LockAvailable(ctx context.Context, productID, warehouseID uuid.UUID) ([]*LotEntry, error)

	// LockByID returns a single ledger row, row-locked
	LockByID(ctx context.Context, id uuid.UUID) (*LotEntry, error)

	// FindByID returns a single ledger row
	FindByID(ctx context.Context, id uuid.UUID) (*LotEntry, error)

	// Create appends a ledger row
	Create(ctx context.Context, entry *LotEntry) error

	// UpdateRemain persists the remain of an inbound row
	UpdateRemain(ctx context.Context, entry *LotEntry) error

	// CreateAdjustment appends a remain adjustment audit record
	CreateAdjustment(ctx context.Context, adj *RemainAdjustment) error

	// List returns ledger rows for a product in a warehouse, oldest first
	List(ctx context.Context, productID, warehouseID uuid.UUID, filter shared.Filter) ([]LotEntry, int64, error)

	// Balance sums remain across inbound rows
	Balance(ctx context.Context, productID, warehouseID uuid.UUID) (*Balance, error)
}
