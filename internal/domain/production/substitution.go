package production

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/hongquyngo/vti-production-sub002/internal/domain/inventory"
	"github.com/hongquyngo/vti-production-sub002/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// RatioScale is the number of decimal places a conversion ratio is kept with.
// The same rounded ratio is snapshotted on issuance details and reused on
// return, so issue and return of the same quantity cancel exactly.
const RatioScale int32 = 10

// ConversionRatio returns how many alternative units replace one primary unit:
// alternative declared quantity / primary declared quantity.
func ConversionRatio(primaryQty, alternativeQty decimal.Decimal) (decimal.Decimal, error) {
	if !primaryQty.IsPositive() {
		return decimal.Zero, shared.NewDomainErrorf(shared.ErrValidation, "primary declared quantity must be positive, got %s", primaryQty)
	}
	if !alternativeQty.IsPositive() {
		return decimal.Zero, shared.NewDomainErrorf(shared.ErrValidation, "alternative declared quantity must be positive, got %s", alternativeQty)
	}
	return alternativeQty.DivRound(primaryQty, RatioScale), nil
}

// EquivalentPrimaryQuantity converts alternative units into primary units
func EquivalentPrimaryQuantity(alternativeQty, ratio decimal.Decimal) decimal.Decimal {
	if !ratio.IsPositive() {
		return decimal.Zero
	}
	return alternativeQty.DivRound(ratio, inventory.QuantityScale)
}

// SuggestAlternativeQuantity proposes how many alternative units would cover
// a primary shortfall. It is advisory only; nothing calls it during issuance.
func SuggestAlternativeQuantity(shortfall, ratio decimal.Decimal) decimal.Decimal {
	if !shortfall.IsPositive() || !ratio.IsPositive() {
		return decimal.Zero
	}
	return shortfall.Mul(ratio).Round(inventory.QuantityScale)
}

// AlternativeKey identifies an alternative quantity in an issuance request
type AlternativeKey struct {
	MaterialID    uuid.UUID
	AlternativeID uuid.UUID
}

// String renders the key as "materialId:alternativeId"
func (k AlternativeKey) String() string {
	return k.MaterialID.String() + ":" + k.AlternativeID.String()
}

// ParseAlternativeKey parses "materialId:alternativeId"
func ParseAlternativeKey(s string) (AlternativeKey, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return AlternativeKey{}, shared.NewDomainErrorf(shared.ErrValidation, "alternative key %q must be materialId:alternativeId", s)
	}
	materialID, err := uuid.Parse(strings.TrimSpace(parts[0]))
	if err != nil {
		return AlternativeKey{}, shared.NewDomainErrorf(shared.ErrValidation, "alternative key %q has an invalid material id", s)
	}
	altID, err := uuid.Parse(strings.TrimSpace(parts[1]))
	if err != nil {
		return AlternativeKey{}, shared.NewDomainErrorf(shared.ErrValidation, "alternative key %q has an invalid alternative id", s)
	}
	return AlternativeKey{MaterialID: materialID, AlternativeID: altID}, nil
}

// SubstitutionEvent records one alternative material standing in for a primary
type SubstitutionEvent struct {
	OriginalMaterialID   uuid.UUID
	SubstituteMaterialID uuid.UUID
	AlternativeID        uuid.UUID
	ActualQuantity       decimal.Decimal
	EquivalentQuantity   decimal.Decimal
	ConversionRatio      decimal.Decimal
	Priority             int
}

// String implements fmt.Stringer for log output
func (e SubstitutionEvent) String() string {
	return fmt.Sprintf("%s -> %s: %s (= %s primary @ %s)",
		e.OriginalMaterialID, e.SubstituteMaterialID, e.ActualQuantity, e.EquivalentQuantity, e.ConversionRatio)
}
