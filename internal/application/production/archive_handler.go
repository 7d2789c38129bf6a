package production

import (
	"context"
	"encoding/json"
	"fmt"
	"path"

	"github.com/hongquyngo/vti-production-sub002/internal/domain/production"
	"github.com/hongquyngo/vti-production-sub002/internal/domain/shared"
	"go.uber.org/zap"
)

// DocumentArchive stores issuance and return documents for downstream
// reporting (slips, variance analysis)
type DocumentArchive interface {
	Put(ctx context.Context, key string, body []byte, contentType string) error
}

// ArchiveHandler writes every committed issuance and return event to the
// document archive as JSON
type ArchiveHandler struct {
	archive DocumentArchive
	logger  *zap.Logger
}

// NewArchiveHandler creates a new ArchiveHandler
func NewArchiveHandler(archive DocumentArchive, logger *zap.Logger) *ArchiveHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ArchiveHandler{archive: archive, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *ArchiveHandler) EventTypes() []string {
	return []string{production.EventTypeMaterialsIssued, production.EventTypeMaterialsReturned}
}

// Handle archives one event
func (h *ArchiveHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	var key string
	switch e := event.(type) {
	case *production.MaterialsIssuedEvent:
		key = ArchiveKey("issues", e.OrderID.String(), e.IssueNo)
	case *production.MaterialsReturnedEvent:
		key = ArchiveKey("returns", e.OrderID.String(), e.ReturnNo)
	default:
		return fmt.Errorf("unexpected event type: %s", event.EventType())
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", event.EventType(), err)
	}
	if err := h.archive.Put(ctx, key, body, "application/json"); err != nil {
		h.logger.Error("failed to archive document",
			zap.String("key", key),
			zap.String("event_id", event.EventID().String()),
			zap.Error(err),
		)
		return err
	}

	h.logger.Debug("document archived", zap.String("key", key))
	return nil
}

// ArchiveKey builds the object key of an archived document
func ArchiveKey(kind, orderID, documentNo string) string {
	return path.Join("production-orders", orderID, kind, documentNo+".json")
}
