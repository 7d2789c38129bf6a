package storage

import (
	"context"
	"errors"

	appprod "github.com/hongquyngo/vti-production-sub002/internal/application/production"
	"go.uber.org/zap"
)

var _ appprod.DocumentArchive = (*NoopArchive)(nil)

// NoopArchive is used when no bucket is configured. It only logs the key.
type NoopArchive struct {
	logger *zap.Logger
}

// NewNoopArchive creates a NoopArchive
func NewNoopArchive(logger *zap.Logger) *NoopArchive {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NoopArchive{logger: logger}
}

// Put discards the document
func (a *NoopArchive) Put(_ context.Context, key string, body []byte, _ string) error {
	if key == "" {
		return errors.New("document key is required")
	}
	a.logger.Debug("document archiving disabled, dropping", zap.String("key", key), zap.Int("bytes", len(body)))
	return nil
}
