package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/hongquyngo/vti-production-sub002/internal/domain/production"
	"github.com/shopspring/decimal"
)

// IssuanceModel is the persistence model for the IssuanceRecord aggregate root.
type IssuanceModel struct {
	AggregateModel
	IssueNo     string                `gorm:"type:varchar(30);not null;uniqueIndex"`
	OrderID     uuid.UUID             `gorm:"type:uuid;not null;index"`
	WarehouseID uuid.UUID             `gorm:"type:uuid;not null"`
	Status      string                `gorm:"type:varchar(20);not null"`
	IssuedBy    uuid.UUID             `gorm:"type:uuid;not null"`
	ReceivedBy  *uuid.UUID            `gorm:"type:uuid"`
	Notes       string                `gorm:"type:text"`
	IssueDate   time.Time             `gorm:"not null"`
	GroupID     uuid.UUID             `gorm:"type:uuid;not null;index"`
	Details     []IssuanceDetailModel `gorm:"foreignKey:IssuanceID;references:ID"`
}

// TableName returns the table name for GORM
func (IssuanceModel) TableName() string {
	return "material_issues"
}

// ToDomain converts the persistence model to a domain IssuanceRecord.
func (m *IssuanceModel) ToDomain() *production.IssuanceRecord {
	r := &production.IssuanceRecord{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		IssueNo:           m.IssueNo,
		OrderID:           m.OrderID,
		WarehouseID:       m.WarehouseID,
		Status:            production.IssuanceStatus(m.Status),
		IssuedBy:          m.IssuedBy,
		ReceivedBy:        m.ReceivedBy,
		Notes:             m.Notes,
		IssueDate:         m.IssueDate,
		GroupID:           m.GroupID,
		Details:           make([]production.IssuanceDetail, len(m.Details)),
	}
	for i := range m.Details {
		r.Details[i] = *m.Details[i].ToDomain()
	}
	return r
}

// IssuanceModelFromDomain creates a new persistence model from a domain IssuanceRecord.
// Substitution events are not stored; they are recoverable from alternative details.
func IssuanceModelFromDomain(r *production.IssuanceRecord) *IssuanceModel {
	m := &IssuanceModel{
		IssueNo:     r.IssueNo,
		OrderID:     r.OrderID,
		WarehouseID: r.WarehouseID,
		Status:      string(r.Status),
		IssuedBy:    r.IssuedBy,
		ReceivedBy:  r.ReceivedBy,
		Notes:       r.Notes,
		IssueDate:   r.IssueDate,
		GroupID:     r.GroupID,
		Details:     make([]IssuanceDetailModel, len(r.Details)),
	}
	m.FromDomainAggregateRoot(r.BaseAggregateRoot)
	for i := range r.Details {
		m.Details[i] = *IssuanceDetailModelFromDomain(&r.Details[i])
	}
	return m
}

// IssuanceDetailModel is the quantity of one material taken from one lot.
type IssuanceDetailModel struct {
	BaseModel
	IssuanceID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	OrderID            uuid.UUID       `gorm:"type:uuid;not null;index"`
	MaterialID         uuid.UUID       `gorm:"type:uuid;not null"`
	LotEntryID         uuid.UUID       `gorm:"type:uuid;not null"`
	BatchNo            string          `gorm:"type:varchar(100)"`
	ExpiryDate         *time.Time      `gorm:"type:date"`
	Quantity           decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UOM                string          `gorm:"column:uom;type:varchar(20)"`
	IsAlternative      bool            `gorm:"not null"`
	OriginalMaterialID *uuid.UUID      `gorm:"type:uuid"`
	AlternativeID      *uuid.UUID      `gorm:"type:uuid"`
	ConversionRatio    decimal.Decimal `gorm:"type:decimal(20,10);not null"`
	EquivalentQty      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
}

// TableName returns the table name for GORM
func (IssuanceDetailModel) TableName() string {
	return "material_issue_details"
}

// ToDomain converts the persistence model to a domain IssuanceDetail.
func (m *IssuanceDetailModel) ToDomain() *production.IssuanceDetail {
	return &production.IssuanceDetail{
		BaseEntity:         m.BaseModel.ToDomain(),
		IssuanceID:         m.IssuanceID,
		OrderID:            m.OrderID,
		MaterialID:         m.MaterialID,
		LotEntryID:         m.LotEntryID,
		BatchNo:            m.BatchNo,
		ExpiryDate:         m.ExpiryDate,
		Quantity:           m.Quantity,
		UOM:                m.UOM,
		IsAlternative:      m.IsAlternative,
		OriginalMaterialID: m.OriginalMaterialID,
		AlternativeID:      m.AlternativeID,
		ConversionRatio:    m.ConversionRatio,
		EquivalentQty:      m.EquivalentQty,
	}
}

// IssuanceDetailModelFromDomain creates a new persistence model from a domain IssuanceDetail.
func IssuanceDetailModelFromDomain(d *production.IssuanceDetail) *IssuanceDetailModel {
	m := &IssuanceDetailModel{
		IssuanceID:         d.IssuanceID,
		OrderID:            d.OrderID,
		MaterialID:         d.MaterialID,
		LotEntryID:         d.LotEntryID,
		BatchNo:            d.BatchNo,
		ExpiryDate:         d.ExpiryDate,
		Quantity:           d.Quantity,
		UOM:                d.UOM,
		IsAlternative:      d.IsAlternative,
		OriginalMaterialID: d.OriginalMaterialID,
		AlternativeID:      d.AlternativeID,
		ConversionRatio:    d.ConversionRatio,
		EquivalentQty:      d.EquivalentQty,
	}
	m.FromDomainBaseEntity(d.BaseEntity)
	return m
}

// ReturnModel is the persistence model for the ReturnRecord aggregate root.
type ReturnModel struct {
	AggregateModel
	ReturnNo    string              `gorm:"type:varchar(30);not null;uniqueIndex"`
	OrderID     uuid.UUID           `gorm:"type:uuid;not null;index"`
	WarehouseID uuid.UUID           `gorm:"type:uuid;not null"`
	Reason      string              `gorm:"type:varchar(500);not null"`
	ReturnedBy  uuid.UUID           `gorm:"type:uuid;not null"`
	ReceivedBy  uuid.UUID           `gorm:"type:uuid;not null"`
	Status      string              `gorm:"type:varchar(20);not null"`
	ReturnDate  time.Time           `gorm:"not null"`
	GroupID     uuid.UUID           `gorm:"type:uuid;not null;index"`
	Details     []ReturnDetailModel `gorm:"foreignKey:ReturnID;references:ID"`
}

// TableName returns the table name for GORM
func (ReturnModel) TableName() string {
	return "material_returns"
}

// ToDomain converts the persistence model to a domain ReturnRecord.
func (m *ReturnModel) ToDomain() *production.ReturnRecord {
	r := &production.ReturnRecord{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		ReturnNo:          m.ReturnNo,
		OrderID:           m.OrderID,
		WarehouseID:       m.WarehouseID,
		Reason:            m.Reason,
		ReturnedBy:        m.ReturnedBy,
		ReceivedBy:        m.ReceivedBy,
		Status:            production.ReturnStatus(m.Status),
		ReturnDate:        m.ReturnDate,
		GroupID:           m.GroupID,
		Details:           make([]production.ReturnDetail, len(m.Details)),
	}
	for i := range m.Details {
		r.Details[i] = *m.Details[i].ToDomain()
	}
	return r
}

// ReturnModelFromDomain creates a new persistence model from a domain ReturnRecord.
func ReturnModelFromDomain(r *production.ReturnRecord) *ReturnModel {
	m := &ReturnModel{
		ReturnNo:    r.ReturnNo,
		OrderID:     r.OrderID,
		WarehouseID: r.WarehouseID,
		Reason:      r.Reason,
		ReturnedBy:  r.ReturnedBy,
		ReceivedBy:  r.ReceivedBy,
		Status:      string(r.Status),
		ReturnDate:  r.ReturnDate,
		GroupID:     r.GroupID,
		Details:     make([]ReturnDetailModel, len(r.Details)),
	}
	m.FromDomainAggregateRoot(r.BaseAggregateRoot)
	for i := range r.Details {
		m.Details[i] = *ReturnDetailModelFromDomain(&r.Details[i])
	}
	return m
}

// ReturnDetailModel reverses part of one issuance detail.
type ReturnDetailModel struct {
	BaseModel
	ReturnID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	IssuanceDetailID uuid.UUID       `gorm:"type:uuid;not null;index"`
	MaterialID       uuid.UUID       `gorm:"type:uuid;not null"`
	BatchNo          string          `gorm:"type:varchar(100)"`
	ExpiryDate       *time.Time      `gorm:"type:date"`
	Quantity         decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UOM              string          `gorm:"column:uom;type:varchar(20)"`
	Condition        string          `gorm:"column:item_condition;type:varchar(20);not null"`
	EquivalentQty    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	RestockEntryID   *uuid.UUID      `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (ReturnDetailModel) TableName() string {
	return "material_return_details"
}

// ToDomain converts the persistence model to a domain ReturnDetail.
func (m *ReturnDetailModel) ToDomain() *production.ReturnDetail {
	return &production.ReturnDetail{
		BaseEntity:       m.BaseModel.ToDomain(),
		ReturnID:         m.ReturnID,
		IssuanceDetailID: m.IssuanceDetailID,
		MaterialID:       m.MaterialID,
		BatchNo:          m.BatchNo,
		ExpiryDate:       m.ExpiryDate,
		Quantity:         m.Quantity,
		UOM:              m.UOM,
		Condition:        production.ReturnCondition(m.Condition),
		EquivalentQty:    m.EquivalentQty,
		RestockEntryID:   m.RestockEntryID,
	}
}

// ReturnDetailModelFromDomain creates a new persistence model from a domain ReturnDetail.
func ReturnDetailModelFromDomain(d *production.ReturnDetail) *ReturnDetailModel {
	m := &ReturnDetailModel{
		ReturnID:         d.ReturnID,
		IssuanceDetailID: d.IssuanceDetailID,
		MaterialID:       d.MaterialID,
		BatchNo:          d.BatchNo,
		ExpiryDate:       d.ExpiryDate,
		Quantity:         d.Quantity,
		UOM:              d.UOM,
		Condition:        string(d.Condition),
		EquivalentQty:    d.EquivalentQty,
		RestockEntryID:   d.RestockEntryID,
	}
	m.FromDomainBaseEntity(d.BaseEntity)
	return m
}
