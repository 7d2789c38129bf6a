package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/hongquyngo/vti-production-sub002/internal/domain/inventory"
	"github.com/hongquyngo/vti-production-sub002/internal/domain/shared"
	"github.com/hongquyngo/vti-production-sub002/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// InventoryService exposes the lot ledger outside of production flows:
// receipts, write-offs and read-only views
type InventoryService struct {
	lotRepo inventory.LotEntryRepository
	scope   TransactionScope
	logger  *zap.Logger
}

// NewInventoryService creates a new InventoryService.
// lotRepo serves reads; writes go through scope.
func NewInventoryService(lotRepo inventory.LotEntryRepository, scope TransactionScope, logger *zap.Logger) *InventoryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InventoryService{lotRepo: lotRepo, scope: scope, logger: logger}
}

// ReceiveStock appends a receipt lot to the ledger
func (s *InventoryService) ReceiveStock(ctx context.Context, req ReceiveStockRequest) (*LotEntryResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "inventory", "receive")
	defer span.End()

	var lot *inventory.LotEntry
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		lot, err = inventory.NewLedger(repos.LotRepo(), nil).RecordIn(ctx, inventory.InboundRequest{
			ProductID:   req.ProductID,
			WarehouseID: req.WarehouseID,
			Type:        inventory.EntryTypeReceipt,
			Quantity:    req.Quantity,
			BatchNo:     req.BatchNo,
			ExpiryDate:  req.ExpiryDate,
		}, inventory.Correlation{GroupID: uuid.New(), CreatedBy: req.ReceivedBy})
		return err
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.logger.Info("stock received",
		zap.String("lot_id", lot.ID.String()),
		zap.String("product_id", lot.ProductID.String()),
		zap.String("batch_no", lot.BatchNo),
		zap.String("quantity", lot.Quantity.String()),
	)
	resp := ToLotEntryResponse(lot)
	return &resp, nil
}

// WriteOff zeroes the remain of a lot with an auditable reason
func (s *InventoryService) WriteOff(ctx context.Context, lotID uuid.UUID, req WriteOffRequest) (*WriteOffResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "inventory", "write_off")
	defer span.End()

	var result *inventory.WriteOffResult
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		result, err = inventory.NewLedger(repos.LotRepo(), nil).WriteOff(ctx, lotID, inventory.Correlation{
			GroupID:   uuid.New(),
			CreatedBy: req.OperatorID,
			Reason:    req.Reason,
		})
		return err
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.logger.Info("lot written off",
		zap.String("lot_id", lotID.String()),
		zap.String("previous_remain", result.Adjustment.PreviousRemain.String()),
		zap.String("reason", req.Reason),
	)
	return &WriteOffResponse{
		Lot:            ToLotEntryResponse(result.Lot),
		Outbound:       ToLotEntryResponse(result.Outbound),
		PreviousRemain: result.Adjustment.PreviousRemain,
	}, nil
}

// ListLots lists the ledger rows of a product in a warehouse
func (s *InventoryService) ListLots(ctx context.Context, filter LotListFilter) ([]LotEntryResponse, int64, error) {
	f := shared.DefaultFilter()
	if filter.Page > 0 {
		f.Page = filter.Page
	}
	if filter.PageSize > 0 {
		f.PageSize = filter.PageSize
	}
	if filter.OrderDir != "" {
		f.OrderDir = filter.OrderDir
	}
	f.OrderBy = filter.OrderBy

	entries, total, err := s.lotRepo.List(ctx, filter.ProductID, filter.WarehouseID, f)
	if err != nil {
		return nil, 0, err
	}
	out := make([]LotEntryResponse, len(entries))
	for i := range entries {
		out[i] = ToLotEntryResponse(&entries[i])
	}
	return out, total, nil
}

// GetBalance returns the on-hand quantity of a product in a warehouse
func (s *InventoryService) GetBalance(ctx context.Context, productID, warehouseID uuid.UUID) (*BalanceResponse, error) {
	b, err := s.lotRepo.Balance(ctx, productID, warehouseID)
	if err != nil {
		return nil, err
	}
	return &BalanceResponse{
		ProductID:   b.ProductID,
		WarehouseID: b.WarehouseID,
		OnHand:      b.OnHand,
		LotCount:    b.LotCount,
	}, nil
}
