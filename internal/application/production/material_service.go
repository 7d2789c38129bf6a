package production

import (
	"context"
	"errors"
	"time"

	"github.com/hongquyngo/vti-production-sub002/internal/domain/inventory"
	"github.com/hongquyngo/vti-production-sub002/internal/domain/shared"
	"go.uber.org/zap"
)

// MaterialService issues materials to production orders and takes them back
type MaterialService struct {
	scope          TransactionScope
	strategy       inventory.AllocationStrategy
	eventPublisher shared.EventPublisher
	metrics        MetricsRecorder
	logger         *zap.Logger
	now            func() time.Time
}

// NewMaterialService creates a MaterialService allocating with FEFO
func NewMaterialService(scope TransactionScope, logger *zap.Logger) *MaterialService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MaterialService{
		scope:    scope,
		strategy: inventory.NewFEFOStrategy(),
		metrics:  noopMetrics{},
		logger:   logger,
		now:      time.Now,
	}
}

// SetEventPublisher sets the publisher used after commit
func (s *MaterialService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetMetrics sets the metrics recorder
func (s *MaterialService) SetMetrics(m MetricsRecorder) {
	if m == nil {
		m = noopMetrics{}
	}
	s.metrics = m
}

// SetAllocationStrategy replaces the lot allocation strategy
func (s *MaterialService) SetAllocationStrategy(strategy inventory.AllocationStrategy) {
	if strategy != nil {
		s.strategy = strategy
	}
}

// publishDomainEvents publishes and clears the events of a committed aggregate.
// Failures are logged; the transaction has already committed.
func (s *MaterialService) publishDomainEvents(ctx context.Context, agg shared.AggregateRoot) {
	events := agg.GetDomainEvents()
	defer agg.ClearDomainEvents()
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish domain events",
			zap.String("aggregate_id", agg.GetID().String()),
			zap.Error(err),
		)
	}
}

func (s *MaterialService) recordRejection(ctx context.Context, operation string, err error) {
	code := "INTERNAL_ERROR"
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		code = domainErr.Code
	}
	s.metrics.RecordRejection(ctx, operation, code)
}
