package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/hongquyngo/vti-production-sub002/internal/domain/inventory"
	"github.com/hongquyngo/vti-production-sub002/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateSortOrder(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty string returns default", "", "ASC"},
		{"ASC uppercase returns ASC", "ASC", "ASC"},
		{"asc lowercase returns ASC", "asc", "ASC"},
		{"desc lowercase returns DESC", "desc", "DESC"},
		{"invalid value returns default", "INVALID", "ASC"},
		{"sql injection attempt returns default", "DESC; DROP TABLE inventory_lot_entries;--", "ASC"},
		{"whitespace around desc returns DESC", "  desc  ", "DESC"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ValidateSortOrder(tt.input, "ASC"))
		})
	}
}

func TestValidateSortField(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty string returns default", "", "created_at"},
		{"valid field returns field", "expiry_date", "expiry_date"},
		{"unknown field returns default", "warehouse_name", "created_at"},
		{"sql injection attempt returns default", "remain; DROP TABLE users;--", "created_at"},
		{"case sensitive", "BATCH_NO", "created_at"},
		{"whitespace around valid field returns field", "  batch_no ", "batch_no"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ValidateSortField(tt.input, LotEntrySortFields, "created_at"))
		})
	}
}

func TestGormLotEntryRepository_List_SortsByWhitelistedField(t *testing.T) {
	db := newSQLiteDB(t)
	ctx := context.Background()
	repo := NewGormLotEntryRepository(db)
	product, warehouse := uuid.New(), uuid.New()

	for _, batch := range []string{"B", "C", "A"} {
		lot, err := inventory.NewInboundEntry(product, warehouse, inventory.EntryTypeReceipt, dec("1"), batch, nil)
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, lot))
	}

	lots, total, err := repo.List(ctx, product, warehouse, shared.Filter{Page: 1, PageSize: 10, OrderBy: "batch_no", OrderDir: "desc"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, lots, 3)
	assert.Equal(t, "C", lots[0].BatchNo)
	assert.Equal(t, "A", lots[2].BatchNo)

	lots, _, err = repo.List(ctx, product, warehouse, shared.Filter{Page: 1, PageSize: 2, OrderBy: "no_such_column", OrderDir: "asc"})
	require.NoError(t, err)
	assert.Len(t, lots, 2)
}
