package persistence

import (
	"context"

	appinv "github.com/hongquyngo/vti-production-sub002/internal/application/inventory"
	"github.com/hongquyngo/vti-production-sub002/internal/domain/inventory"
	"gorm.io/gorm"
)

// GormTransactionScope implements the ledger TransactionScope using GORM transactions.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
// If the function succeeds, the transaction is committed.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appinv.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormLedgerRepositories{tx: tx})
	})
}

type gormLedgerRepositories struct {
	tx *gorm.DB
}

// LotRepo returns the ledger repository scoped to the current transaction.
func (r *gormLedgerRepositories) LotRepo() inventory.LotEntryRepository {
	return NewGormLotEntryRepository(r.tx)
}

var (
	_ appinv.TransactionScope          = (*GormTransactionScope)(nil)
	_ appinv.TransactionalRepositories = (*gormLedgerRepositories)(nil)
)
