package inventory

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hongquyngo/vti-production-sub002/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testProductID   = uuid.MustParse("11111111-1111-1111-1111-111111111111")
	testWarehouseID = uuid.MustParse("22222222-2222-2222-2222-222222222222")
)

func timePtr(t time.Time) *time.Time {
	return &t
}

func newTestLot(t *testing.T, batchNo string, qty float64, expiry *time.Time, createdAt time.Time) *LotEntry {
	t.Helper()
	lot, err := NewInboundEntry(testProductID, testWarehouseID, EntryTypeReceipt, decimal.NewFromFloat(qty), batchNo, expiry)
	require.NoError(t, err)
	lot.CreatedAt = createdAt
	return lot
}

func TestFEFOStrategy_Order(t *testing.T) {
	s := NewFEFOStrategy()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("earliest expiry first and nil expiry last", func(t *testing.T) {
		noExpiry := newTestLot(t, "N", 10, nil, base)
		late := newTestLot(t, "L", 10, timePtr(base.AddDate(0, 6, 0)), base)
		early := newTestLot(t, "E", 10, timePtr(base.AddDate(0, 1, 0)), base)

		ordered := s.Order([]*LotEntry{noExpiry, late, early})
		require.Len(t, ordered, 3)
		assert.Equal(t, "E", ordered[0].BatchNo)
		assert.Equal(t, "L", ordered[1].BatchNo)
		assert.Equal(t, "N", ordered[2].BatchNo)
	})

	t.Run("same expiry falls back to creation time", func(t *testing.T) {
		expiry := timePtr(base.AddDate(0, 3, 0))
		newer := newTestLot(t, "NEW", 10, expiry, base.Add(time.Hour))
		older := newTestLot(t, "OLD", 10, expiry, base)

		ordered := s.Order([]*LotEntry{newer, older})
		assert.Equal(t, "OLD", ordered[0].BatchNo)
		assert.Equal(t, "NEW", ordered[1].BatchNo)
	})

	t.Run("does not mutate input", func(t *testing.T) {
		a := newTestLot(t, "A", 1, nil, base)
		b := newTestLot(t, "B", 1, timePtr(base), base)
		input := []*LotEntry{a, b}
		_ = s.Order(input)
		assert.Equal(t, "A", input[0].BatchNo)
	})
}

func TestFEFOStrategy_Allocate(t *testing.T) {
	s := NewFEFOStrategy()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("rejects non-positive quantity", func(t *testing.T) {
		_, err := s.Allocate(decimal.Zero, nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, shared.ErrValidation)

		_, err = s.Allocate(decimal.NewFromInt(-5), nil)
		assert.ErrorIs(t, err, shared.ErrValidation)
	})

	t.Run("consumes across lots in expiry order", func(t *testing.T) {
		l1 := newTestLot(t, "L1", 40, timePtr(base.AddDate(0, 1, 0)), base)
		l2 := newTestLot(t, "L2", 80, timePtr(base.AddDate(0, 2, 0)), base)

		result, err := s.Allocate(decimal.NewFromInt(60), []*LotEntry{l2, l1})
		require.NoError(t, err)

		require.Len(t, result.Picks, 2)
		assert.Equal(t, "L1", result.Picks[0].Lot.BatchNo)
		assert.True(t, result.Picks[0].Quantity.Equal(decimal.NewFromInt(40)))
		assert.Equal(t, "L2", result.Picks[1].Lot.BatchNo)
		assert.True(t, result.Picks[1].Quantity.Equal(decimal.NewFromInt(20)))
		assert.True(t, result.Allocated.Equal(decimal.NewFromInt(60)))
		assert.True(t, result.IsFulfilled())
	})

	t.Run("reports shortfall without over-allocating", func(t *testing.T) {
		l1 := newTestLot(t, "L1", 15, nil, base)

		result, err := s.Allocate(decimal.NewFromInt(20), []*LotEntry{l1})
		require.NoError(t, err)
		assert.True(t, result.Allocated.Equal(decimal.NewFromInt(15)))
		assert.True(t, result.Shortfall.Equal(decimal.NewFromInt(5)))
		assert.False(t, result.IsFulfilled())
	})

	t.Run("skips exhausted lots", func(t *testing.T) {
		empty := newTestLot(t, "EMPTY", 10, timePtr(base), base)
		require.NoError(t, empty.Consume(decimal.NewFromInt(10)))
		full := newTestLot(t, "FULL", 10, nil, base)

		result, err := s.Allocate(decimal.NewFromInt(5), []*LotEntry{empty, full})
		require.NoError(t, err)
		require.Len(t, result.Picks, 1)
		assert.Equal(t, "FULL", result.Picks[0].Lot.BatchNo)
	})

	t.Run("no lots yields full shortfall", func(t *testing.T) {
		result, err := s.Allocate(decimal.NewFromInt(7), nil)
		require.NoError(t, err)
		assert.Empty(t, result.Picks)
		assert.True(t, result.Shortfall.Equal(decimal.NewFromInt(7)))
	})
}
