package telemetry

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// ErrMeterNil is returned when no meter is supplied
var ErrMeterNil = errors.New("telemetry: meter cannot be nil")

// LedgerStats is a point-in-time view of one warehouse's open lots
type LedgerStats struct {
	OpenLots    int64
	ExpiredLots int64
	OnHand      float64
}

// LedgerStatsProvider reads ledger aggregates for the periodic gauges
type LedgerStatsProvider interface {
	StatsByWarehouse(ctx context.Context, asOf time.Time) (map[uuid.UUID]LedgerStats, error)
}

// MaterialMetrics counts issuances, returns and rejections, and samples
// ledger gauges on an interval when a provider is configured
type MaterialMetrics struct {
	logger *zap.Logger

	issuances     *Counter
	issueLines    *Counter
	substitutions *Counter
	returnLines   *Counter
	rejections    *Counter

	openLots    *Gauge
	expiredLots *Gauge
	onHand      *FloatGauge

	provider    LedgerStatsProvider
	stopChan    chan struct{}
	stopOnce    sync.Once
	collectOnce sync.Once
}

// MaterialMetricsConfig configures NewMaterialMetrics
type MaterialMetricsConfig struct {
	Meter    metric.Meter
	Logger   *zap.Logger
	Provider LedgerStatsProvider
}

// NewMaterialMetrics registers the material flow instruments on cfg.Meter
func NewMaterialMetrics(cfg MaterialMetricsConfig) (*MaterialMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	mm := &MaterialMetrics{
		logger:   logger,
		provider: cfg.Provider,
		stopChan: make(chan struct{}),
	}

	var err error
	counters := []struct {
		dst              **Counter
		name, desc, unit string
	}{
		{&mm.issuances, "material_issuance_total", "Committed material issuances", "{issuances}"},
		{&mm.issueLines, "material_issue_detail_total", "Lot-level issue detail lines written", "{lines}"},
		{&mm.substitutions, "material_substitution_total", "Issue lines served by an alternative material", "{lines}"},
		{&mm.returnLines, "material_return_detail_total", "Returned detail lines by condition", "{lines}"},
		{&mm.rejections, "material_operation_rejected_total", "Issuance and return requests rejected", "{requests}"},
	}
	for _, c := range counters {
		if *c.dst, err = NewCounter(cfg.Meter, c.name, c.desc, c.unit); err != nil {
			return nil, err
		}
	}

	if mm.openLots, err = NewGauge(cfg.Meter, "inventory_open_lots", "Inbound lots with positive remain", "{lots}"); err != nil {
		return nil, err
	}
	if mm.expiredLots, err = NewGauge(cfg.Meter, "inventory_expired_open_lots", "Open lots past their expiry date", "{lots}"); err != nil {
		return nil, err
	}
	if mm.onHand, err = NewFloatGauge(cfg.Meter, "inventory_on_hand_quantity", "Sum of open lot remains", "{units}"); err != nil {
		return nil, err
	}
	return mm, nil
}

// RecordIssuance counts one committed issuance
func (mm *MaterialMetrics) RecordIssuance(ctx context.Context, warehouseID uuid.UUID, details, substitutions int) {
	wh := AttrWarehouseID.String(warehouseID.String())
	mm.issuances.Inc(ctx, wh)
	mm.issueLines.Add(ctx, int64(details), wh)
	if substitutions > 0 {
		mm.substitutions.Add(ctx, int64(substitutions), wh)
	}
}

// RecordReturn counts returned lines split by condition
func (mm *MaterialMetrics) RecordReturn(ctx context.Context, warehouseID uuid.UUID, restocked, scrapped int) {
	wh := AttrWarehouseID.String(warehouseID.String())
	if restocked > 0 {
		mm.returnLines.Add(ctx, int64(restocked), wh, AttrCondition.String("GOOD"))
	}
	if scrapped > 0 {
		mm.returnLines.Add(ctx, int64(scrapped), wh, AttrCondition.String("DAMAGED"))
	}
}

// RecordRejection counts a rejected request by operation and error code
func (mm *MaterialMetrics) RecordRejection(ctx context.Context, operation, code string) {
	mm.rejections.Inc(ctx, AttrOperation.String(operation), AttrErrorCode.String(code))
}

// StartPeriodicCollection samples the ledger gauges every interval until
// Stop is called or ctx ends. Later calls are ignored.
func (mm *MaterialMetrics) StartPeriodicCollection(ctx context.Context, interval time.Duration) {
	if mm.provider == nil {
		return
	}
	mm.collectOnce.Do(func() {
		if interval <= 0 {
			interval = 5 * time.Minute
		}
		go mm.runPeriodicCollection(ctx, interval)
	})
}

func (mm *MaterialMetrics) runPeriodicCollection(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	mm.CollectLedgerStats(ctx)
	for {
		select {
		case <-mm.stopChan:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			mm.CollectLedgerStats(ctx)
		}
	}
}

// CollectLedgerStats records one sample of the ledger gauges
func (mm *MaterialMetrics) CollectLedgerStats(ctx context.Context) {
	if mm.provider == nil {
		return
	}
	stats, err := mm.provider.StatsByWarehouse(ctx, time.Now())
	if err != nil {
		mm.logger.Warn("failed to collect ledger stats", zap.Error(err))
		return
	}
	for warehouseID, s := range stats {
		wh := AttrWarehouseID.String(warehouseID.String())
		mm.openLots.Record(ctx, s.OpenLots, wh)
		mm.expiredLots.Record(ctx, s.ExpiredLots, wh)
		mm.onHand.Record(ctx, s.OnHand, wh)
	}
}

// Stop ends periodic collection
func (mm *MaterialMetrics) Stop() {
	mm.stopOnce.Do(func() {
		close(mm.stopChan)
	})
}
