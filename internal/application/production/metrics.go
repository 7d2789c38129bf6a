package production

import (
	"context"

	"github.com/google/uuid"
)

// MetricsRecorder receives counters about committed and rejected operations
type MetricsRecorder interface {
	RecordIssuance(ctx context.Context, warehouseID uuid.UUID, details, substitutions int)
	RecordReturn(ctx context.Context, warehouseID uuid.UUID, restocked, scrapped int)
	RecordRejection(ctx context.Context, operation, code string)
}

type noopMetrics struct{}

func (noopMetrics) RecordIssuance(context.Context, uuid.UUID, int, int) {}
func (noopMetrics) RecordReturn(context.Context, uuid.UUID, int, int)   {}
func (noopMetrics) RecordRejection(context.Context, string, string)     {}
