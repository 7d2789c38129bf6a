package inventory

import (
	"context"

	"github.com/hongquyngo/vti-production-sub002/internal/domain/inventory"
)

// TransactionScope provides transactional access to the ledger repository.
// If fn returns an error the transaction is rolled back, otherwise committed.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides repositories sharing one transaction
type TransactionalRepositories interface {
	// LotRepo returns the ledger repository scoped to the current transaction
	LotRepo() inventory.LotEntryRepository
}

// NoOpTransactionScope runs fn directly against a repository without a
// transaction. Useful in tests.
type NoOpTransactionScope struct {
	lotRepo inventory.LotEntryRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope
func NewNoOpTransactionScope(lotRepo inventory.LotEntryRepository) *NoOpTransactionScope {
	return &NoOpTransactionScope{lotRepo: lotRepo}
}

// Execute runs the function without a real transaction
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// LotRepo returns the ledger repository
func (s *NoOpTransactionScope) LotRepo() inventory.LotEntryRepository {
	return s.lotRepo
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
