// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer free
// from ORM concerns.
//
// Structure:
//   - base.go: BaseModel and AggregateModel
//   - inventory.go: ledger rows and remain adjustments
//   - production.go: orders, requirements and BOM lines
//   - material.go: issuance and return documents
package models
