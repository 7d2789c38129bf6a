package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/hongquyngo/vti-production-sub002/internal/domain/production"
	"github.com/hongquyngo/vti-production-sub002/internal/domain/shared"
	"github.com/hongquyngo/vti-production-sub002/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormProductionOrderRepository implements ProductionOrderRepository using GORM
type GormProductionOrderRepository struct {
	db *gorm.DB
}

// NewGormProductionOrderRepository creates a new GormProductionOrderRepository
func NewGormProductionOrderRepository(db *gorm.DB) *GormProductionOrderRepository {
	return &GormProductionOrderRepository{db: db}
}

// FindByID finds a production order by its ID
func (r *GormProductionOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*production.ProductionOrder, error) {
	return r.find(r.db.WithContext(ctx), id)
}

// LockByID finds a production order and locks its row
func (r *GormProductionOrderRepository) LockByID(ctx context.Context, id uuid.UUID) (*production.ProductionOrder, error) {
	return r.find(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *GormProductionOrderRepository) find(db *gorm.DB, id uuid.UUID) (*production.ProductionOrder, error) {
	var row models.ProductionOrderModel
	if err := db.Where("id = ?", id).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return row.ToDomain(), nil
}

// Save inserts a new order or updates an existing one guarded by its version.
// Every state change bumps Version once, so the stored row must still hold
// Version-1; any other value means a concurrent writer got there first.
func (r *GormProductionOrderRepository) Save(ctx context.Context, order *production.ProductionOrder) error {
	db := r.db.WithContext(ctx)
	model := models.ProductionOrderModelFromDomain(order)

	result := db.Model(&models.ProductionOrderModel{}).
		Where("id = ? AND version = ?", order.ID, order.Version-1).
		Updates(map[string]any{
			"status":      model.Status,
			"planned_qty": model.PlannedQty,
			"uom":         model.UOM,
			"version":     model.Version,
			"updated_at":  model.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}

	var count int64
	if err := db.Model(&models.ProductionOrderModel{}).Where("id = ?", order.ID).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return shared.NewDomainErrorf(shared.ErrConcurrencyConflict,
			"production order %s was modified by another transaction", order.OrderNo)
	}
	return db.Create(model).Error
}

// GormMaterialRequirementRepository implements MaterialRequirementRepository using GORM
type GormMaterialRequirementRepository struct {
	db *gorm.DB
}

// NewGormMaterialRequirementRepository creates a new GormMaterialRequirementRepository
func NewGormMaterialRequirementRepository(db *gorm.DB) *GormMaterialRequirementRepository {
	return &GormMaterialRequirementRepository{db: db}
}

// FindByOrder returns the requirements of an order ordered by material
func (r *GormMaterialRequirementRepository) FindByOrder(ctx context.Context, orderID uuid.UUID) ([]*production.MaterialRequirement, error) {
	return r.findByOrder(r.db.WithContext(ctx), orderID)
}

// LockByOrder locks the requirements of an order in material order
func (r *GormMaterialRequirementRepository) LockByOrder(ctx context.Context, orderID uuid.UUID) ([]*production.MaterialRequirement, error) {
	return r.findByOrder(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), orderID)
}

func (r *GormMaterialRequirementRepository) findByOrder(db *gorm.DB, orderID uuid.UUID) ([]*production.MaterialRequirement, error) {
	var rows []models.MaterialRequirementModel
	if err := db.Where("order_id = ?", orderID).Order("material_id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	reqs := make([]*production.MaterialRequirement, len(rows))
	for i := range rows {
		reqs[i] = rows[i].ToDomain()
	}
	return reqs, nil
}

// Save creates or updates a requirement
func (r *GormMaterialRequirementRepository) Save(ctx context.Context, req *production.MaterialRequirement) error {
	return r.db.WithContext(ctx).Save(models.MaterialRequirementModelFromDomain(req)).Error
}

// GormBOMRepository implements BOMRepository using GORM
type GormBOMRepository struct {
	db *gorm.DB
}

// NewGormBOMRepository creates a new GormBOMRepository
func NewGormBOMRepository(db *gorm.DB) *GormBOMRepository {
	return &GormBOMRepository{db: db}
}

// FindLines returns the lines of a BOM with their alternatives by priority
func (r *GormBOMRepository) FindLines(ctx context.Context, bomID uuid.UUID) ([]*production.BOMLine, error) {
	var rows []models.BOMLineModel
	err := r.db.WithContext(ctx).
		Preload("Alternatives", func(db *gorm.DB) *gorm.DB {
			return db.Order("priority ASC").Order("id ASC")
		}).
		Where("bom_id = ?", bomID).
		Order("material_id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	lines := make([]*production.BOMLine, len(rows))
	for i := range rows {
		lines[i] = rows[i].ToDomain()
	}
	return lines, nil
}

// SaveLine creates or updates a BOM line together with its alternatives
func (r *GormBOMRepository) SaveLine(ctx context.Context, line *production.BOMLine) error {
	return r.db.WithContext(ctx).
		Session(&gorm.Session{FullSaveAssociations: true}).
		Save(models.BOMLineModelFromDomain(line)).Error
}

var (
	_ production.ProductionOrderRepository     = (*GormProductionOrderRepository)(nil)
	_ production.MaterialRequirementRepository = (*GormMaterialRequirementRepository)(nil)
	_ production.BOMRepository                 = (*GormBOMRepository)(nil)
)
