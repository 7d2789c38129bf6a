package production

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductionOrderRepository persists production orders
type ProductionOrderRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*ProductionOrder, error)
	// LockByID loads the order with a row lock held until the transaction ends
	LockByID(ctx context.Context, id uuid.UUID) (*ProductionOrder, error)
	Save(ctx context.Context, order *ProductionOrder) error
}

// MaterialRequirementRepository persists order material requirements
type MaterialRequirementRepository interface {
	FindByOrder(ctx context.Context, orderID uuid.UUID) ([]*MaterialRequirement, error)
	// LockByOrder locks every requirement of the order, ordered by material id
	LockByOrder(ctx context.Context, orderID uuid.UUID) ([]*MaterialRequirement, error)
	Save(ctx context.Context, req *MaterialRequirement) error
}

// BOMRepository reads BOM lines with their alternatives
type BOMRepository interface {
	FindLines(ctx context.Context, bomID uuid.UUID) ([]*BOMLine, error)
	SaveLine(ctx context.Context, line *BOMLine) error
}

// IssuanceRepository persists issuance records and their details
type IssuanceRepository interface {
	Create(ctx context.Context, record *IssuanceRecord) error
	FindByID(ctx context.Context, id uuid.UUID) (*IssuanceRecord, error)
	// FindConfirmedDetailsByOrder lists details of CONFIRMED issuances of the order
	FindConfirmedDetailsByOrder(ctx context.Context, orderID uuid.UUID) ([]IssuanceDetail, error)
	// LockDetails locks the given details of CONFIRMED issuances of the order,
	// ordered by id. Unknown ids are absent from the result.
	LockDetails(ctx context.Context, orderID uuid.UUID, ids []uuid.UUID) ([]IssuanceDetail, error)
}

// ReturnRepository persists return records and their details
type ReturnRepository interface {
	Create(ctx context.Context, record *ReturnRecord) error
	FindByID(ctx context.Context, id uuid.UUID) (*ReturnRecord, error)
	// SumReturnedByDetail totals returned quantity per issuance detail
	SumReturnedByDetail(ctx context.Context, detailIDs []uuid.UUID) (map[uuid.UUID]decimal.Decimal, error)
}
