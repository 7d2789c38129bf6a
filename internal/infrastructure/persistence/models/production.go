package models

import (
	"github.com/google/uuid"
	"github.com/hongquyngo/vti-production-sub002/internal/domain/production"
	"github.com/shopspring/decimal"
)

// ProductionOrderModel is the persistence model for the ProductionOrder aggregate root.
type ProductionOrderModel struct {
	AggregateModel
	OrderNo     string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	Status      string          `gorm:"type:varchar(20);not null;index"`
	WarehouseID uuid.UUID       `gorm:"type:uuid;not null"`
	BOMID       uuid.UUID       `gorm:"column:bom_id;type:uuid;not null"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null"`
	PlannedQty  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UOM         string          `gorm:"column:uom;type:varchar(20)"`
}

// TableName returns the table name for GORM
func (ProductionOrderModel) TableName() string {
	return "production_orders"
}

// ToDomain converts the persistence model to a domain ProductionOrder.
func (m *ProductionOrderModel) ToDomain() *production.ProductionOrder {
	return &production.ProductionOrder{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		OrderNo:           m.OrderNo,
		Status:            production.OrderStatus(m.Status),
		WarehouseID:       m.WarehouseID,
		BOMID:             m.BOMID,
		ProductID:         m.ProductID,
		PlannedQty:        m.PlannedQty,
		UOM:               m.UOM,
	}
}

// ProductionOrderModelFromDomain creates a new persistence model from a domain ProductionOrder.
func ProductionOrderModelFromDomain(o *production.ProductionOrder) *ProductionOrderModel {
	m := &ProductionOrderModel{
		OrderNo:     o.OrderNo,
		Status:      string(o.Status),
		WarehouseID: o.WarehouseID,
		BOMID:       o.BOMID,
		ProductID:   o.ProductID,
		PlannedQty:  o.PlannedQty,
		UOM:         o.UOM,
	}
	m.FromDomainAggregateRoot(o.BaseAggregateRoot)
	return m
}

// MaterialRequirementModel is one material line of a production order.
type MaterialRequirementModel struct {
	BaseModel
	OrderID     uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_order_material,priority:1"`
	MaterialID  uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_order_material,priority:2"`
	RequiredQty decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	IssuedQty   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	UOM         string          `gorm:"column:uom;type:varchar(20)"`
	Status      string          `gorm:"type:varchar(20);not null"`
}

// TableName returns the table name for GORM
func (MaterialRequirementModel) TableName() string {
	return "production_order_materials"
}

// ToDomain converts the persistence model to a domain MaterialRequirement.
func (m *MaterialRequirementModel) ToDomain() *production.MaterialRequirement {
	return &production.MaterialRequirement{
		BaseEntity:  m.BaseModel.ToDomain(),
		OrderID:     m.OrderID,
		MaterialID:  m.MaterialID,
		RequiredQty: m.RequiredQty,
		IssuedQty:   m.IssuedQty,
		UOM:         m.UOM,
		Status:      production.RequirementStatus(m.Status),
	}
}

// MaterialRequirementModelFromDomain creates a new persistence model from a domain MaterialRequirement.
func MaterialRequirementModelFromDomain(r *production.MaterialRequirement) *MaterialRequirementModel {
	m := &MaterialRequirementModel{
		OrderID:     r.OrderID,
		MaterialID:  r.MaterialID,
		RequiredQty: r.RequiredQty,
		IssuedQty:   r.IssuedQty,
		UOM:         r.UOM,
		Status:      string(r.Status),
	}
	m.FromDomainBaseEntity(r.BaseEntity)
	return m
}

// BOMLineModel is one primary material of a bill of materials.
type BOMLineModel struct {
	BaseModel
	BOMID        uuid.UUID             `gorm:"column:bom_id;type:uuid;not null;index"`
	MaterialID   uuid.UUID             `gorm:"type:uuid;not null"`
	Quantity     decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	UOM          string                `gorm:"column:uom;type:varchar(20)"`
	Alternatives []BOMAlternativeModel `gorm:"foreignKey:BOMLineID;references:ID"`
}

// TableName returns the table name for GORM
func (BOMLineModel) TableName() string {
	return "bom_lines"
}

// ToDomain converts the persistence model to a domain BOMLine.
func (m *BOMLineModel) ToDomain() *production.BOMLine {
	line := &production.BOMLine{
		BaseEntity:   m.BaseModel.ToDomain(),
		BOMID:        m.BOMID,
		MaterialID:   m.MaterialID,
		Quantity:     m.Quantity,
		UOM:          m.UOM,
		Alternatives: make([]production.BOMAlternative, len(m.Alternatives)),
	}
	for i := range m.Alternatives {
		line.Alternatives[i] = *m.Alternatives[i].ToDomain()
	}
	return line
}

// BOMLineModelFromDomain creates a new persistence model from a domain BOMLine.
func BOMLineModelFromDomain(l *production.BOMLine) *BOMLineModel {
	m := &BOMLineModel{
		BOMID:        l.BOMID,
		MaterialID:   l.MaterialID,
		Quantity:     l.Quantity,
		UOM:          l.UOM,
		Alternatives: make([]BOMAlternativeModel, len(l.Alternatives)),
	}
	m.FromDomainBaseEntity(l.BaseEntity)
	for i := range l.Alternatives {
		m.Alternatives[i] = *BOMAlternativeModelFromDomain(&l.Alternatives[i])
	}
	return m
}

// BOMAlternativeModel is a substitute material for a BOM line.
type BOMAlternativeModel struct {
	BaseModel
	BOMLineID             uuid.UUID       `gorm:"column:bom_line_id;type:uuid;not null;index"`
	AlternativeMaterialID uuid.UUID       `gorm:"type:uuid;not null"`
	Quantity              decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UOM                   string          `gorm:"column:uom;type:varchar(20)"`
	Priority              int             `gorm:"not null"`
	IsActive              bool            `gorm:"not null"`
}

// TableName returns the table name for GORM
func (BOMAlternativeModel) TableName() string {
	return "bom_alternatives"
}

// ToDomain converts the persistence model to a domain BOMAlternative.
func (m *BOMAlternativeModel) ToDomain() *production.BOMAlternative {
	return &production.BOMAlternative{
		BaseEntity:            m.BaseModel.ToDomain(),
		BOMLineID:             m.BOMLineID,
		AlternativeMaterialID: m.AlternativeMaterialID,
		Quantity:              m.Quantity,
		UOM:                   m.UOM,
		Priority:              m.Priority,
		IsActive:              m.IsActive,
	}
}

// BOMAlternativeModelFromDomain creates a new persistence model from a domain BOMAlternative.
func BOMAlternativeModelFromDomain(a *production.BOMAlternative) *BOMAlternativeModel {
	m := &BOMAlternativeModel{
		BOMLineID:             a.BOMLineID,
		AlternativeMaterialID: a.AlternativeMaterialID,
		Quantity:              a.Quantity,
		UOM:                   a.UOM,
		Priority:              a.Priority,
		IsActive:              a.IsActive,
	}
	m.FromDomainBaseEntity(a.BaseEntity)
	return m
}
