package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/hongquyngo/vti-production-sub002/internal/domain/inventory"
	"github.com/shopspring/decimal"
)

// LotEntryModel is the persistence model for one inventory ledger row.
// Stock-out rows are stored with a negative quantity and zero remain; the
// check tags mirror the constraints in the SQL migration.
type LotEntryModel struct {
	BaseModel
	ProductID      uuid.UUID       `gorm:"type:uuid;not null;index:idx_lot_entries_product_warehouse,priority:1"`
	WarehouseID    uuid.UUID       `gorm:"type:uuid;not null;index:idx_lot_entries_product_warehouse,priority:2"`
	Type           string          `gorm:"type:varchar(40);not null"`
	Quantity       decimal.Decimal `gorm:"type:decimal(18,4);not null;check:chk_lot_quantity_sign,quantity <> 0 AND ((quantity > 0 AND remain <= quantity) OR (quantity < 0 AND remain = 0))"`
	Remain         decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0;check:chk_lot_remain_non_negative,remain >= 0"`
	BatchNo        string          `gorm:"type:varchar(100);not null;default:''"`
	ExpiryDate     *time.Time      `gorm:"type:date"`
	GroupID        uuid.UUID       `gorm:"type:uuid;index"`
	ActionDetailID *uuid.UUID      `gorm:"type:uuid;index"`
	SourceEntryID  *uuid.UUID      `gorm:"type:uuid;index"`
	Reason         string          `gorm:"type:varchar(500)"`
	CreatedBy      *uuid.UUID      `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (LotEntryModel) TableName() string {
	return "inventory_lot_entries"
}

// ToDomain converts the persistence model to a domain LotEntry.
func (m *LotEntryModel) ToDomain() *inventory.LotEntry {
	return &inventory.LotEntry{
		BaseEntity:     m.BaseModel.ToDomain(),
		ProductID:      m.ProductID,
		WarehouseID:    m.WarehouseID,
		Type:           inventory.EntryType(m.Type),
		Quantity:       m.Quantity,
		Remain:         m.Remain,
		BatchNo:        m.BatchNo,
		ExpiryDate:     m.ExpiryDate,
		GroupID:        m.GroupID,
		ActionDetailID: m.ActionDetailID,
		SourceEntryID:  m.SourceEntryID,
		Reason:         m.Reason,
		CreatedBy:      m.CreatedBy,
	}
}

// FromDomain populates the persistence model from a domain LotEntry.
func (m *LotEntryModel) FromDomain(e *inventory.LotEntry) {
	m.FromDomainBaseEntity(e.BaseEntity)
	m.ProductID = e.ProductID
	m.WarehouseID = e.WarehouseID
	m.Type = string(e.Type)
	m.Quantity = e.Quantity
	m.Remain = e.Remain
	m.BatchNo = e.BatchNo
	m.ExpiryDate = e.ExpiryDate
	m.GroupID = e.GroupID
	m.ActionDetailID = e.ActionDetailID
	m.SourceEntryID = e.SourceEntryID
	m.Reason = e.Reason
	m.CreatedBy = e.CreatedBy
}

// LotEntryModelFromDomain creates a new persistence model from a domain LotEntry.
func LotEntryModelFromDomain(e *inventory.LotEntry) *LotEntryModel {
	m := &LotEntryModel{}
	m.FromDomain(e)
	return m
}

// RemainAdjustmentModel audits a remain change made outside allocation.
type RemainAdjustmentModel struct {
	BaseModel
	LotEntryID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	PreviousRemain decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	NewRemain      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Reason         string          `gorm:"type:varchar(500);not null"`
	GroupID        uuid.UUID       `gorm:"type:uuid;index"`
	CreatedBy      *uuid.UUID      `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (RemainAdjustmentModel) TableName() string {
	return "lot_remain_adjustments"
}

// ToDomain converts the persistence model to a domain RemainAdjustment.
func (m *RemainAdjustmentModel) ToDomain() *inventory.RemainAdjustment {
	return &inventory.RemainAdjustment{
		BaseEntity:     m.BaseModel.ToDomain(),
		LotEntryID:     m.LotEntryID,
		PreviousRemain: m.PreviousRemain,
		NewRemain:      m.NewRemain,
		Reason:         m.Reason,
		GroupID:        m.GroupID,
		CreatedBy:      m.CreatedBy,
	}
}

// RemainAdjustmentModelFromDomain creates a new persistence model from a domain RemainAdjustment.
func RemainAdjustmentModelFromDomain(a *inventory.RemainAdjustment) *RemainAdjustmentModel {
	m := &RemainAdjustmentModel{
		LotEntryID:     a.LotEntryID,
		PreviousRemain: a.PreviousRemain,
		NewRemain:      a.NewRemain,
		Reason:         a.Reason,
		GroupID:        a.GroupID,
		CreatedBy:      a.CreatedBy,
	}
	m.FromDomainBaseEntity(a.BaseEntity)
	return m
}
