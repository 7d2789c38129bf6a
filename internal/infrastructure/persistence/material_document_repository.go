package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/hongquyngo/vti-production-sub002/internal/domain/production"
	"github.com/hongquyngo/vti-production-sub002/internal/domain/shared"
	"github.com/hongquyngo/vti-production-sub002/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormIssuanceRepository implements IssuanceRepository using GORM
type GormIssuanceRepository struct {
	db *gorm.DB
}

// NewGormIssuanceRepository creates a new GormIssuanceRepository
func NewGormIssuanceRepository(db *gorm.DB) *GormIssuanceRepository {
	return &GormIssuanceRepository{db: db}
}

// Create inserts the issuance header and its details
func (r *GormIssuanceRepository) Create(ctx context.Context, record *production.IssuanceRecord) error {
	return r.db.WithContext(ctx).Create(models.IssuanceModelFromDomain(record)).Error
}

// FindByID loads an issuance with its details
func (r *GormIssuanceRepository) FindByID(ctx context.Context, id uuid.UUID) (*production.IssuanceRecord, error) {
	var row models.IssuanceModel
	err := r.db.WithContext(ctx).
		Preload("Details", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC").Order("id ASC")
		}).
		Where("id = ?", id).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return row.ToDomain(), nil
}

func (r *GormIssuanceRepository) confirmedDetails(db *gorm.DB, orderID uuid.UUID) *gorm.DB {
	return db.
		Joins("JOIN material_issues ON material_issues.id = material_issue_details.issuance_id").
		Where("material_issue_details.order_id = ? AND material_issues.status = ?",
			orderID, string(production.IssuanceStatusConfirmed))
}

// FindConfirmedDetailsByOrder lists the details of CONFIRMED issuances of an order
func (r *GormIssuanceRepository) FindConfirmedDetailsByOrder(ctx context.Context, orderID uuid.UUID) ([]production.IssuanceDetail, error) {
	var rows []models.IssuanceDetailModel
	err := r.confirmedDetails(r.db.WithContext(ctx), orderID).
		Order("material_issue_details.created_at ASC").
		Order("material_issue_details.id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return issuanceDetailsToDomain(rows), nil
}

// LockDetails locks the requested details of CONFIRMED issuances of an order
func (r *GormIssuanceRepository) LockDetails(ctx context.Context, orderID uuid.UUID, ids []uuid.UUID) ([]production.IssuanceDetail, error) {
	if len(ids) == 0 {
		return []production.IssuanceDetail{}, nil
	}
	var rows []models.IssuanceDetailModel
	err := r.confirmedDetails(r.db.WithContext(ctx), orderID).
		Clauses(clause.Locking{Strength: "UPDATE", Table: clause.Table{Name: "material_issue_details"}}).
		Where("material_issue_details.id IN ?", ids).
		Order("material_issue_details.id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return issuanceDetailsToDomain(rows), nil
}

func issuanceDetailsToDomain(rows []models.IssuanceDetailModel) []production.IssuanceDetail {
	details := make([]production.IssuanceDetail, len(rows))
	for i := range rows {
		details[i] = *rows[i].ToDomain()
	}
	return details
}

// GormReturnRepository implements ReturnRepository using GORM
type GormReturnRepository struct {
	db *gorm.DB
}

// NewGormReturnRepository creates a new GormReturnRepository
func NewGormReturnRepository(db *gorm.DB) *GormReturnRepository {
	return &GormReturnRepository{db: db}
}

// Create inserts the return header and its details
func (r *GormReturnRepository) Create(ctx context.Context, record *production.ReturnRecord) error {
	return r.db.WithContext(ctx).Create(models.ReturnModelFromDomain(record)).Error
}

// FindByID loads a return with its details
func (r *GormReturnRepository) FindByID(ctx context.Context, id uuid.UUID) (*production.ReturnRecord, error) {
	var row models.ReturnModel
	err := r.db.WithContext(ctx).
		Preload("Details", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC").Order("id ASC")
		}).
		Where("id = ?", id).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return row.ToDomain(), nil
}

type returnedSum struct {
	IssuanceDetailID uuid.UUID
	Returned         decimal.Decimal
}

// SumReturnedByDetail totals the returned quantity of each issuance detail
func (r *GormReturnRepository) SumReturnedByDetail(ctx context.Context, detailIDs []uuid.UUID) (map[uuid.UUID]decimal.Decimal, error) {
	out := make(map[uuid.UUID]decimal.Decimal, len(detailIDs))
	if len(detailIDs) == 0 {
		return out, nil
	}

	var sums []returnedSum
	err := r.db.WithContext(ctx).
		Model(&models.ReturnDetailModel{}).
		Select("issuance_detail_id, COALESCE(SUM(quantity), 0) AS returned").
		Where("issuance_detail_id IN ?", detailIDs).
		Group("issuance_detail_id").
		Scan(&sums).Error
	if err != nil {
		return nil, err
	}
	for _, s := range sums {
		out[s.IssuanceDetailID] = s.Returned
	}
	return out, nil
}

var (
	_ production.IssuanceRepository = (*GormIssuanceRepository)(nil)
	_ production.ReturnRepository   = (*GormReturnRepository)(nil)
)
