package production

import (
	"context"
	"errors"
	"sort"

	"github.com/google/uuid"
	"github.com/hongquyngo/vti-production-sub002/internal/domain/inventory"
	"github.com/hongquyngo/vti-production-sub002/internal/domain/production"
	"github.com/hongquyngo/vti-production-sub002/internal/domain/shared"
	"github.com/hongquyngo/vti-production-sub002/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// alternativeRequest is a resolved "materialId:alternativeId" entry
type alternativeRequest struct {
	key      production.AlternativeKey
	quantity decimal.Decimal
	line     *production.BOMLine
	alt      *production.BOMAlternative
}

// IssueMaterials issues primary and explicitly chosen alternative materials
// to a production order in one transaction. Either every lot consumption,
// requirement update and the issuance record commit together, or nothing does.
func (s *MaterialService) IssueMaterials(ctx context.Context, req IssueMaterialsRequest) (*IssueMaterialsResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "material_issuance", "issue")
	defer span.End()
	telemetry.SetAttribute(span, telemetry.SpanAttrOrderID, req.OrderID.String())

	result, err := s.issueMaterials(ctx, req)
	if err != nil {
		telemetry.RecordError(span, err)
		s.recordRejection(ctx, "issue", err)
		s.logger.Info("material issuance rejected",
			zap.String("order_id", req.OrderID.String()),
			zap.Error(err),
		)
		return nil, err
	}
	return result, nil
}

func (s *MaterialService) issueMaterials(ctx context.Context, req IssueMaterialsRequest) (*IssueMaterialsResult, error) {
	if req.IssuedBy == uuid.Nil {
		return nil, shared.NewDomainErrorf(shared.ErrValidation, "issuing employee is required")
	}
	primaries, err := normalizePrimaryQuantities(req.PrimaryQuantities)
	if err != nil {
		return nil, err
	}
	altKeys, err := parseAlternativeQuantities(req.AlternativeQuantities)
	if err != nil {
		return nil, err
	}
	autoFill := len(req.PrimaryQuantities) == 0 && len(req.AlternativeQuantities) == 0

	var record *production.IssuanceRecord
	var orderStatus production.OrderStatus

	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		order, err := repos.OrderRepo().LockByID(ctx, req.OrderID)
		if err != nil {
			return lookupError(err, "production order %s not found", req.OrderID)
		}
		if err := order.EnsureIssuable(); err != nil {
			return err
		}

		reqs, err := repos.RequirementRepo().LockByOrder(ctx, order.ID)
		if err != nil {
			return err
		}
		byMaterial := make(map[uuid.UUID]*production.MaterialRequirement, len(reqs))
		for _, r := range reqs {
			byMaterial[r.MaterialID] = r
		}

		if autoFill {
			for _, r := range reqs {
				if remaining := r.Remaining(); remaining.IsPositive() {
					primaries[r.MaterialID] = remaining
				}
			}
		}
		for materialID := range primaries {
			if _, ok := byMaterial[materialID]; !ok {
				return shared.NewDomainErrorf(shared.ErrValidation,
					"material %s is not required by order %s", materialID, order.OrderNo)
			}
		}

		alternatives, err := s.resolveAlternatives(ctx, repos, order, byMaterial, altKeys)
		if err != nil {
			return err
		}

		issuedAt := s.now()
		record, err = production.NewIssuanceRecord(production.NewIssueNo(issuedAt), issuedAt, order, req.IssuedBy, req.ReceivedBy, req.Notes)
		if err != nil {
			return err
		}
		ledger := inventory.NewLedger(repos.LotRepo(), s.strategy)
		corr := inventory.Correlation{GroupID: record.GroupID, CreatedBy: &record.IssuedBy}

		// A material can be a primary here and an alternative in another
		// order, so every candidate product is locked before allocating.
		if err := ledger.LockProducts(ctx, order.WarehouseID, candidateProducts(primaries, alternatives)); err != nil {
			return err
		}

		for _, r := range reqs {
			equivalent := decimal.Zero
			alts := alternatives[r.MaterialID]

			if qty, ok := primaries[r.MaterialID]; ok {
				issued, err := s.issuePrimary(ctx, ledger, record, order, r, qty, len(alts) > 0, corr)
				if err != nil {
					return err
				}
				equivalent = equivalent.Add(issued)
			}
			for _, a := range alts {
				issued, err := s.issueAlternative(ctx, ledger, record, order, r, a, corr)
				if err != nil {
					return err
				}
				equivalent = equivalent.Add(issued)
			}

			if !equivalent.IsPositive() {
				continue
			}
			if err := r.AddIssued(equivalent); err != nil {
				return err
			}
			if err := repos.RequirementRepo().Save(ctx, r); err != nil {
				return err
			}
		}

		if len(record.Details) == 0 {
			return shared.NewDomainErrorf(shared.ErrValidation, "nothing to issue for order %s", order.OrderNo)
		}

		if order.MarkInProgress() {
			if err := repos.OrderRepo().Save(ctx, order); err != nil {
				return err
			}
		}
		orderStatus = order.Status

		if err := repos.IssuanceRepo().Create(ctx, record); err != nil {
			return err
		}
		record.AddDomainEvent(production.NewMaterialsIssuedEvent(record))
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishDomainEvents(ctx, record)
	s.metrics.RecordIssuance(ctx, record.WarehouseID, len(record.Details), len(record.Substitutions))
	s.logger.Info("materials issued",
		zap.String("issue_no", record.IssueNo),
		zap.String("order_id", record.OrderID.String()),
		zap.Int("details", len(record.Details)),
		zap.Int("substitutions", len(record.Substitutions)),
	)
	for _, sub := range record.Substitutions {
		s.logger.Debug("material substituted", zap.Stringer("substitution", sub))
	}

	out := &IssueMaterialsResult{
		IssueID:       record.ID,
		IssueNo:       record.IssueNo,
		OrderID:       record.OrderID,
		OrderStatus:   string(orderStatus),
		Details:       make([]IssuanceDetailResponse, len(record.Details)),
		Substitutions: make([]SubstitutionResponse, len(record.Substitutions)),
	}
	for i := range record.Details {
		out.Details[i] = ToIssuanceDetailResponse(&record.Details[i])
	}
	for i, sub := range record.Substitutions {
		out.Substitutions[i] = ToSubstitutionResponse(sub)
	}
	return out, nil
}

// candidateProducts lists every product an issuance may draw lots from
func candidateProducts(primaries map[uuid.UUID]decimal.Decimal, alternatives map[uuid.UUID][]alternativeRequest) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(primaries)+len(alternatives))
	for id := range primaries {
		ids = append(ids, id)
	}
	for _, alts := range alternatives {
		for _, a := range alts {
			ids = append(ids, a.alt.AlternativeMaterialID)
		}
	}
	return ids
}

// issuePrimary allocates qty of the requirement's own material. A shortfall
// is an error unless the caller also supplied alternatives for it.
func (s *MaterialService) issuePrimary(
	ctx context.Context,
	ledger *inventory.Ledger,
	record *production.IssuanceRecord,
	order *production.ProductionOrder,
	r *production.MaterialRequirement,
	qty decimal.Decimal,
	hasAlternatives bool,
	corr inventory.Correlation,
) (decimal.Decimal, error) {
	allocation, err := ledger.Allocate(ctx, r.MaterialID, order.WarehouseID, qty)
	if err != nil {
		return decimal.Zero, err
	}
	if !allocation.IsFulfilled() && !hasAlternatives {
		return decimal.Zero, shared.NewDomainErrorf(shared.ErrInsufficientStock,
			"material %s: requested %s, available %s, short %s",
			r.MaterialID, qty, allocation.Allocated, allocation.Shortfall)
	}

	equivalent := decimal.Zero
	for _, pick := range allocation.Picks {
		detail := record.AddPrimaryDetail(r, pick)
		detailID := detail.ID
		corr.ActionDetailID = &detailID
		if _, err := ledger.RecordOut(ctx, pick, inventory.EntryTypeProductionIssue, corr); err != nil {
			return decimal.Zero, err
		}
		equivalent = equivalent.Add(pick.Quantity)
	}
	return equivalent, nil
}

// issueAlternative allocates an alternative quantity in full and returns the
// primary-equivalent quantity it contributes to the requirement
func (s *MaterialService) issueAlternative(
	ctx context.Context,
	ledger *inventory.Ledger,
	record *production.IssuanceRecord,
	order *production.ProductionOrder,
	r *production.MaterialRequirement,
	a alternativeRequest,
	corr inventory.Correlation,
) (decimal.Decimal, error) {
	ratio, err := production.ConversionRatio(a.line.Quantity, a.alt.Quantity)
	if err != nil {
		return decimal.Zero, err
	}

	allocation, err := ledger.Allocate(ctx, a.alt.AlternativeMaterialID, order.WarehouseID, a.quantity)
	if err != nil {
		return decimal.Zero, err
	}
	if !allocation.IsFulfilled() {
		return decimal.Zero, shared.NewDomainErrorf(shared.ErrInsufficientStock,
			"alternative %s for material %s: requested %s, available %s",
			a.alt.AlternativeMaterialID, r.MaterialID, a.quantity, allocation.Allocated)
	}

	actual := decimal.Zero
	equivalent := decimal.Zero
	for _, pick := range allocation.Picks {
		detail := record.AddAlternativeDetail(r, a.alt, ratio, pick)
		detailID := detail.ID
		equivalent = equivalent.Add(detail.EquivalentQty)
		corr.ActionDetailID = &detailID
		if _, err := ledger.RecordOut(ctx, pick, inventory.EntryTypeProductionIssue, corr); err != nil {
			return decimal.Zero, err
		}
		actual = actual.Add(pick.Quantity)
	}

	record.RecordSubstitution(production.SubstitutionEvent{
		OriginalMaterialID:   r.MaterialID,
		SubstituteMaterialID: a.alt.AlternativeMaterialID,
		AlternativeID:        a.alt.ID,
		ActualQuantity:       actual,
		EquivalentQuantity:   equivalent,
		ConversionRatio:      ratio,
		Priority:             a.alt.Priority,
	})
	return equivalent, nil
}

// resolveAlternatives matches alternative keys to the order's BOM and groups
// them by primary material, most preferred first
func (s *MaterialService) resolveAlternatives(
	ctx context.Context,
	repos TransactionalRepositories,
	order *production.ProductionOrder,
	byMaterial map[uuid.UUID]*production.MaterialRequirement,
	keys map[production.AlternativeKey]decimal.Decimal,
) (map[uuid.UUID][]alternativeRequest, error) {
	grouped := make(map[uuid.UUID][]alternativeRequest)
	if len(keys) == 0 {
		return grouped, nil
	}

	lines, err := repos.BOMRepo().FindLines(ctx, order.BOMID)
	if err != nil {
		return nil, err
	}
	lineByMaterial := make(map[uuid.UUID]*production.BOMLine, len(lines))
	for _, l := range lines {
		lineByMaterial[l.MaterialID] = l
	}

	for key, qty := range keys {
		if _, ok := byMaterial[key.MaterialID]; !ok {
			return nil, shared.NewDomainErrorf(shared.ErrValidation,
				"material %s is not required by order %s", key.MaterialID, order.OrderNo)
		}
		line, ok := lineByMaterial[key.MaterialID]
		if !ok {
			return nil, shared.NewDomainErrorf(shared.ErrValidation,
				"material %s has no BOM line on order %s", key.MaterialID, order.OrderNo)
		}
		alt, ok := line.FindActiveAlternative(key.AlternativeID)
		if !ok {
			return nil, shared.NewDomainErrorf(shared.ErrValidation,
				"alternative %s is not an active alternative of material %s", key.AlternativeID, key.MaterialID)
		}
		grouped[key.MaterialID] = append(grouped[key.MaterialID], alternativeRequest{
			key:      key,
			quantity: qty,
			line:     line,
			alt:      alt,
		})
	}

	for materialID, alts := range grouped {
		sort.Slice(alts, func(i, j int) bool {
			if alts[i].alt.Priority != alts[j].alt.Priority {
				return alts[i].alt.Priority < alts[j].alt.Priority
			}
			return alts[i].alt.ID.String() < alts[j].alt.ID.String()
		})
		for i := 1; i < len(alts); i++ {
			if alts[i].alt.ID == alts[i-1].alt.ID {
				return nil, shared.NewDomainErrorf(shared.ErrValidation,
					"alternative %s of material %s requested twice", alts[i].alt.ID, materialID)
			}
		}
		grouped[materialID] = alts
	}
	return grouped, nil
}

// normalizePrimaryQuantities drops zero entries and rejects negative ones
func normalizePrimaryQuantities(in map[uuid.UUID]decimal.Decimal) (map[uuid.UUID]decimal.Decimal, error) {
	out := make(map[uuid.UUID]decimal.Decimal, len(in))
	for materialID, qty := range in {
		if qty.IsNegative() {
			return nil, shared.NewDomainErrorf(shared.ErrValidation,
				"quantity for material %s cannot be negative", materialID)
		}
		if qty.IsZero() {
			continue
		}
		out[materialID] = qty.Round(inventory.QuantityScale)
	}
	return out, nil
}

// parseAlternativeQuantities parses "materialId:alternativeId" keys,
// dropping zero entries and rejecting negative ones
func parseAlternativeQuantities(in map[string]decimal.Decimal) (map[production.AlternativeKey]decimal.Decimal, error) {
	out := make(map[production.AlternativeKey]decimal.Decimal, len(in))
	for raw, qty := range in {
		key, err := production.ParseAlternativeKey(raw)
		if err != nil {
			return nil, err
		}
		if qty.IsNegative() {
			return nil, shared.NewDomainErrorf(shared.ErrValidation,
				"quantity for alternative %s cannot be negative", raw)
		}
		if qty.IsZero() {
			continue
		}
		out[key] = qty.Round(inventory.QuantityScale)
	}
	return out, nil
}

// lookupError maps a repository not-found error to a domain error with context
func lookupError(err error, format string, args ...any) error {
	if errors.Is(err, shared.ErrNotFound) {
		return shared.NewDomainErrorf(shared.ErrNotFound, format, args...)
	}
	return err
}
