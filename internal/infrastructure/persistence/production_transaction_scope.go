package persistence

import (
	"context"

	appprod "github.com/hongquyngo/vti-production-sub002/internal/application/production"
	"github.com/hongquyngo/vti-production-sub002/internal/domain/inventory"
	"github.com/hongquyngo/vti-production-sub002/internal/domain/production"
	"gorm.io/gorm"
)

// GormProductionTransactionScope runs issuance and return use cases in one
// GORM transaction. Row locks taken by the repositories it hands out are held
// until Execute returns.
type GormProductionTransactionScope struct {
	db *gorm.DB
}

// NewGormProductionTransactionScope creates a new GormProductionTransactionScope.
func NewGormProductionTransactionScope(db *gorm.DB) *GormProductionTransactionScope {
	return &GormProductionTransactionScope{db: db}
}

// Execute runs fn inside a transaction, rolling back when it returns an error.
func (s *GormProductionTransactionScope) Execute(ctx context.Context, fn func(repos appprod.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormProductionRepositories{tx: tx})
	})
}

type gormProductionRepositories struct {
	tx *gorm.DB
}

func (r *gormProductionRepositories) OrderRepo() production.ProductionOrderRepository {
	return NewGormProductionOrderRepository(r.tx)
}

func (r *gormProductionRepositories) RequirementRepo() production.MaterialRequirementRepository {
	return NewGormMaterialRequirementRepository(r.tx)
}

func (r *gormProductionRepositories) BOMRepo() production.BOMRepository {
	return NewGormBOMRepository(r.tx)
}

func (r *gormProductionRepositories) IssuanceRepo() production.IssuanceRepository {
	return NewGormIssuanceRepository(r.tx)
}

func (r *gormProductionRepositories) ReturnRepo() production.ReturnRepository {
	return NewGormReturnRepository(r.tx)
}

func (r *gormProductionRepositories) LotRepo() inventory.LotEntryRepository {
	return NewGormLotEntryRepository(r.tx)
}

var (
	_ appprod.TransactionScope          = (*GormProductionTransactionScope)(nil)
	_ appprod.TransactionalRepositories = (*gormProductionRepositories)(nil)
)
