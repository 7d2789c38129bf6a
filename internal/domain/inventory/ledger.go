package inventory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/hongquyngo/vti-production-sub002/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// InboundRequest describes quantity entering a warehouse as a new lot
type InboundRequest struct {
	ProductID   uuid.UUID
	WarehouseID uuid.UUID
	Type        EntryType
	Quantity    decimal.Decimal
	BatchNo     string
	ExpiryDate  *time.Time
}

// WriteOffResult is the outcome of writing off a lot
type WriteOffResult struct {
	Lot        *LotEntry
	Outbound   *LotEntry
	Adjustment *RemainAdjustment
}

// Ledger is the domain service over the append-only lot ledger.
// It must be built on a repository bound to the caller's transaction so that
// row locks taken by Allocate are held until the caller commits.
type Ledger struct {
	repo     LotEntryRepository
	strategy AllocationStrategy
}

// NewLedger creates a ledger. A nil strategy defaults to FEFO.
func NewLedger(repo LotEntryRepository, strategy AllocationStrategy) *Ledger {
	if strategy == nil {
		strategy = NewFEFOStrategy()
	}
	return &Ledger{repo: repo, strategy: strategy}
}

// LockProducts locks the available lots of every given product in one pass,
// in ascending product id order. Callers that later Allocate several products
// in the same transaction take this first so two of them never hold each
// other's lots.
func (l *Ledger) LockProducts(ctx context.Context, warehouseID uuid.UUID, productIDs []uuid.UUID) error {
	seen := make(map[uuid.UUID]struct{}, len(productIDs))
	ids := make([]uuid.UUID, 0, len(productIDs))
	for _, id := range productIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })

	for _, id := range ids {
		if _, err := l.repo.LockAvailable(ctx, id, warehouseID); err != nil {
			return fmt.Errorf("lock lots for product %s: %w", id, err)
		}
	}
	return nil
}

// Allocate locks the available lots of a product and selects which of them
// cover qty. Nothing is written; the picks are consumed with RecordOut.
func (l *Ledger) Allocate(ctx context.Context, productID, warehouseID uuid.UUID, qty decimal.Decimal) (*AllocationResult, error) {
	lots, err := l.repo.LockAvailable(ctx, productID, warehouseID)
	if err != nil {
		return nil, fmt.Errorf("lock lots for product %s: %w", productID, err)
	}

	result, err := l.strategy.Allocate(qty, lots)
	if err != nil {
		return nil, err
	}
	result.ProductID = productID
	result.WarehouseID = warehouseID
	return result, nil
}

// RecordOut consumes a pick from its lot and appends the matching OUT row
func (l *Ledger) RecordOut(ctx context.Context, pick LotPick, entryType EntryType, corr Correlation) (*LotEntry, error) {
	out, err := NewOutboundEntry(pick.Lot, entryType, pick.Quantity)
	if err != nil {
		return nil, err
	}
	if err := pick.Lot.Consume(pick.Quantity); err != nil {
		return nil, err
	}
	if err := l.repo.UpdateRemain(ctx, pick.Lot); err != nil {
		return nil, fmt.Errorf("update remain of lot %s: %w", pick.Lot.ID, err)
	}

	out.WithCorrelation(corr)
	if err := l.repo.Create(ctx, out); err != nil {
		return nil, fmt.Errorf("append outbound entry: %w", err)
	}
	return out, nil
}

// RecordIn appends a new IN row whose remain equals its quantity
func (l *Ledger) RecordIn(ctx context.Context, req InboundRequest, corr Correlation) (*LotEntry, error) {
	in, err := NewInboundEntry(req.ProductID, req.WarehouseID, req.Type, req.Quantity, req.BatchNo, req.ExpiryDate)
	if err != nil {
		return nil, err
	}
	in.WithCorrelation(corr)
	if err := l.repo.Create(ctx, in); err != nil {
		return nil, fmt.Errorf("append inbound entry: %w", err)
	}
	return in, nil
}

// WriteOff zeroes a lot's remain outside of allocation. The written-off
// amount is recorded as a STOCK_OUT_WRITE_OFF row so that inbound quantity
// still equals remain plus outbound quantity, and an adjustment record keeps
// the reason and correlation.
func (l *Ledger) WriteOff(ctx context.Context, lotID uuid.UUID, corr Correlation) (*WriteOffResult, error) {
	if corr.Reason == "" {
		return nil, shared.NewDomainErrorf(shared.ErrValidation, "write-off reason is required")
	}

	lot, err := l.repo.LockByID(ctx, lotID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainErrorf(shared.ErrNotFound, "lot %s not found", lotID)
		}
		return nil, fmt.Errorf("lock lot %s: %w", lotID, err)
	}
	if !lot.Type.IsInbound() {
		return nil, shared.NewDomainErrorf(shared.ErrValidation, "entry %s is not a lot", lotID)
	}
	if !lot.Remain.IsPositive() {
		return nil, shared.NewDomainErrorf(shared.ErrInvalidState, "lot %s has nothing left to write off", lotID)
	}

	previous := lot.Remain
	out, err := l.RecordOut(ctx, LotPick{Lot: lot, Quantity: previous}, EntryTypeWriteOff, corr)
	if err != nil {
		return nil, err
	}

	adj := &RemainAdjustment{
		BaseEntity:     shared.NewBaseEntity(),
		LotEntryID:     lot.ID,
		PreviousRemain: previous,
		NewRemain:      lot.Remain,
		Reason:         corr.Reason,
		GroupID:        corr.GroupID,
		CreatedBy:      corr.CreatedBy,
	}
	if err := l.repo.CreateAdjustment(ctx, adj); err != nil {
		return nil, fmt.Errorf("record remain adjustment: %w", err)
	}

	return &WriteOffResult{Lot: lot, Outbound: out, Adjustment: adj}, nil
}
