package production

import (
	"context"

	"github.com/hongquyngo/vti-production-sub002/internal/domain/inventory"
	"github.com/hongquyngo/vti-production-sub002/internal/domain/production"
)

// TransactionScope runs issuance and return use cases atomically.
// If fn returns an error the transaction is rolled back, otherwise committed.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories exposes repositories bound to one transaction.
// Row locks taken through any of them are held until Execute returns.
type TransactionalRepositories interface {
	OrderRepo() production.ProductionOrderRepository
	RequirementRepo() production.MaterialRequirementRepository
	BOMRepo() production.BOMRepository
	IssuanceRepo() production.IssuanceRepository
	ReturnRepo() production.ReturnRepository
	LotRepo() inventory.LotEntryRepository
}
