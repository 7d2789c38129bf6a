package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/hongquyngo/vti-production-sub002/internal/domain/inventory"
	"github.com/hongquyngo/vti-production-sub002/internal/domain/shared"
	"github.com/hongquyngo/vti-production-sub002/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// fefoOrder mirrors inventory.FEFOStrategy so locks are taken in the same
// order lots are consumed
const fefoOrder = "expiry_date ASC NULLS LAST, created_at ASC, id ASC"

// GormLotEntryRepository implements LotEntryRepository using GORM
type GormLotEntryRepository struct {
	db *gorm.DB
}

// NewGormLotEntryRepository creates a new GormLotEntryRepository
func NewGormLotEntryRepository(db *gorm.DB) *GormLotEntryRepository {
	return &GormLotEntryRepository{db: db}
}

func inboundTypes() []string {
	types := inventory.InboundEntryTypes()
	out := make([]string, len(types))
	for i, t := range types {
		out[i] = t.String()
	}
	return out
}

// LockAvailable selects open lots FOR UPDATE in FEFO order
func (r *GormLotEntryRepository) LockAvailable(ctx context.Context, productID, warehouseID uuid.UUID) ([]*inventory.LotEntry, error) {
	var rows []models.LotEntryModel
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("product_id = ? AND warehouse_id = ? AND remain > 0", productID, warehouseID).
		Where("type IN ?", inboundTypes()).
		Order(fefoOrder).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	lots := make([]*inventory.LotEntry, len(rows))
	for i := range rows {
		lots[i] = rows[i].ToDomain()
	}
	return lots, nil
}

// LockByID loads one ledger row FOR UPDATE
func (r *GormLotEntryRepository) LockByID(ctx context.Context, id uuid.UUID) (*inventory.LotEntry, error) {
	return r.findByID(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

// FindByID loads one ledger row
func (r *GormLotEntryRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.LotEntry, error) {
	return r.findByID(r.db.WithContext(ctx), id)
}

func (r *GormLotEntryRepository) findByID(db *gorm.DB, id uuid.UUID) (*inventory.LotEntry, error) {
	var row models.LotEntryModel
	if err := db.Where("id = ?", id).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return row.ToDomain(), nil
}

// Create appends a ledger row
func (r *GormLotEntryRepository) Create(ctx context.Context, entry *inventory.LotEntry) error {
	return r.db.WithContext(ctx).Create(models.LotEntryModelFromDomain(entry)).Error
}

// UpdateRemain writes the remain column of an inbound row. No other column
// of a ledger row is ever updated.
func (r *GormLotEntryRepository) UpdateRemain(ctx context.Context, entry *inventory.LotEntry) error {
	result := r.db.WithContext(ctx).
		Model(&models.LotEntryModel{}).
		Where("id = ?", entry.ID).
		Updates(map[string]any{
			"remain":     entry.Remain,
			"updated_at": entry.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// CreateAdjustment appends a remain adjustment audit record
func (r *GormLotEntryRepository) CreateAdjustment(ctx context.Context, adj *inventory.RemainAdjustment) error {
	return r.db.WithContext(ctx).Create(models.RemainAdjustmentModelFromDomain(adj)).Error
}

// List returns the ledger rows of a product in a warehouse
func (r *GormLotEntryRepository) List(ctx context.Context, productID, warehouseID uuid.UUID, filter shared.Filter) ([]inventory.LotEntry, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).
		Model(&models.LotEntryModel{}).
		Where("product_id = ? AND warehouse_id = ?", productID, warehouseID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	field := ValidateSortField(filter.OrderBy, LotEntrySortFields, "created_at")
	dir := ValidateSortOrder(filter.OrderDir, "ASC")
	query := r.db.WithContext(ctx).
		Where("product_id = ? AND warehouse_id = ?", productID, warehouseID).
		Order(field + " " + dir).
		Order("id " + dir)
	if filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}

	var rows []models.LotEntryModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	entries := make([]inventory.LotEntry, len(rows))
	for i := range rows {
		entries[i] = *rows[i].ToDomain()
	}
	return entries, total, nil
}

type balanceRow struct {
	OnHand   decimal.Decimal
	LotCount int64
}

// Balance sums remain across open lots
func (r *GormLotEntryRepository) Balance(ctx context.Context, productID, warehouseID uuid.UUID) (*inventory.Balance, error) {
	var row balanceRow
	err := r.db.WithContext(ctx).
		Model(&models.LotEntryModel{}).
		Select("COALESCE(SUM(remain), 0) AS on_hand, COUNT(*) AS lot_count").
		Where("product_id = ? AND warehouse_id = ? AND remain > 0", productID, warehouseID).
		Where("type IN ?", inboundTypes()).
		Scan(&row).Error
	if err != nil {
		return nil, err
	}
	return &inventory.Balance{
		ProductID:   productID,
		WarehouseID: warehouseID,
		OnHand:      row.OnHand,
		LotCount:    row.LotCount,
	}, nil
}

var _ inventory.LotEntryRepository = (*GormLotEntryRepository)(nil)
