package production

import (
	"sort"

	"github.com/google/uuid"
	"github.com/hongquyngo/vti-production-sub002/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// BOMLine is one primary material of a bill of materials
type BOMLine struct {
	shared.BaseEntity
	BOMID        uuid.UUID
	MaterialID   uuid.UUID
	Quantity     decimal.Decimal
	UOM          string
	Alternatives []BOMAlternative
}

// BOMAlternative is a substitute material for a BOM line.
// Lower Priority is preferred.
type BOMAlternative struct {
	shared.BaseEntity
	BOMLineID             uuid.UUID
	AlternativeMaterialID uuid.UUID
	Quantity              decimal.Decimal
	UOM                   string
	Priority              int
	IsActive              bool
}

// NewBOMLine creates a BOM line without alternatives
func NewBOMLine(bomID, materialID uuid.UUID, quantity decimal.Decimal, uom string) (*BOMLine, error) {
	if bomID == uuid.Nil || materialID == uuid.Nil {
		return nil, shared.NewDomainErrorf(shared.ErrValidation, "bom and material are required")
	}
	if !quantity.IsPositive() {
		return nil, shared.NewDomainErrorf(shared.ErrValidation, "bom line quantity must be positive")
	}
	return &BOMLine{
		BaseEntity: shared.NewBaseEntity(),
		BOMID:      bomID,
		MaterialID: materialID,
		Quantity:   quantity,
		UOM:        uom,
	}, nil
}

// AddAlternative attaches an active substitute to the line
func (l *BOMLine) AddAlternative(materialID uuid.UUID, quantity decimal.Decimal, uom string, priority int) (*BOMAlternative, error) {
	if materialID == uuid.Nil || materialID == l.MaterialID {
		return nil, shared.NewDomainErrorf(shared.ErrValidation, "alternative material must differ from the primary")
	}
	if !quantity.IsPositive() {
		return nil, shared.NewDomainErrorf(shared.ErrValidation, "alternative quantity must be positive")
	}
	alt := BOMAlternative{
		BaseEntity:            shared.NewBaseEntity(),
		BOMLineID:             l.ID,
		AlternativeMaterialID: materialID,
		Quantity:              quantity,
		UOM:                   uom,
		Priority:              priority,
		IsActive:              true,
	}
	l.Alternatives = append(l.Alternatives, alt)
	return &l.Alternatives[len(l.Alternatives)-1], nil
}

// ActiveAlternatives returns the active alternatives ordered by priority
func (l *BOMLine) ActiveAlternatives() []BOMAlternative {
	active := make([]BOMAlternative, 0, len(l.Alternatives))
	for _, a := range l.Alternatives {
		if a.IsActive {
			active = append(active, a)
		}
	}
	sort.SliceStable(active, func(i, j int) bool {
		return active[i].Priority < active[j].Priority
	})
	return active
}

// FindActiveAlternative looks an active alternative up by its own ID or by
// the substitute material ID
func (l *BOMLine) FindActiveAlternative(id uuid.UUID) (*BOMAlternative, bool) {
	for i := range l.Alternatives {
		a := &l.Alternatives[i]
		if a.IsActive && a.ID == id {
			return a, true
		}
	}
	for i := range l.Alternatives {
		a := &l.Alternatives[i]
		if a.IsActive && a.AlternativeMaterialID == id {
			return a, true
		}
	}
	return nil, false
}
