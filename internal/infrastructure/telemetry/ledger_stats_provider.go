package telemetry

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormLedgerStatsProvider aggregates open lots straight from the ledger table
type GormLedgerStatsProvider struct {
	db *gorm.DB
}

// NewGormLedgerStatsProvider creates a GormLedgerStatsProvider
func NewGormLedgerStatsProvider(db *gorm.DB) *GormLedgerStatsProvider {
	return &GormLedgerStatsProvider{db: db}
}

// StatsByWarehouse returns open lot counts, expired open lots and on-hand per warehouse
func (p *GormLedgerStatsProvider) StatsByWarehouse(ctx context.Context, asOf time.Time) (map[uuid.UUID]LedgerStats, error) {
	type row struct {
		WarehouseID uuid.UUID `gorm:"column:warehouse_id"`
		OpenLots    int64     `gorm:"column:open_lots"`
		ExpiredLots int64     `gorm:"column:expired_lots"`
		OnHand      float64   `gorm:"column:on_hand"`
	}

	today := time.Date(asOf.Year(), asOf.Month(), asOf.Day(), 0, 0, 0, 0, time.UTC)
	var rows []row
	err := p.db.WithContext(ctx).
		Table("inventory_lot_entries").
		Select("warehouse_id, COUNT(*) AS open_lots, "+
			"SUM(CASE WHEN expiry_date IS NOT NULL AND expiry_date < ? THEN 1 ELSE 0 END) AS expired_lots, "+
			"COALESCE(SUM(remain), 0) AS on_hand", today).
		Where("remain > 0").
		Group("warehouse_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	stats := make(map[uuid.UUID]LedgerStats, len(rows))
	for _, r := range rows {
		stats[r.WarehouseID] = LedgerStats{OpenLots: r.OpenLots, ExpiredLots: r.ExpiredLots, OnHand: r.OnHand}
	}
	return stats, nil
}
