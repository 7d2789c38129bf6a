package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hongquyngo/vti-production-sub002/internal/domain/shared"
	"github.com/hongquyngo/vti-production-sub002/internal/infrastructure/config"
	"github.com/hongquyngo/vti-production-sub002/internal/infrastructure/logger"
	"github.com/hongquyngo/vti-production-sub002/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

const (
	// IdempotencyHeader names the client-chosen submission key
	IdempotencyHeader = "Idempotency-Key"
	// ReplayHeader is set on responses served from the idempotency store
	ReplayHeader = "Idempotent-Replayed"

	maxIdempotencyKeyLength = 255
)

// IdempotencyBackend claims keys and keeps the responses of completed requests
type IdempotencyBackend interface {
	shared.IdempotencyStore
	shared.ResponseStore
}

type storedResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

type capturingWriter struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *capturingWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *capturingWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// Idempotency replays the stored response of a completed request carrying the
// same Idempotency-Key. While a key is in flight duplicates get 409. Only 2xx
// responses are stored; any other outcome releases the key for a retry.
// Requests without the header pass through.
func Idempotency(store IdempotencyBackend, cfg config.IdempotencyConfig, base *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(IdempotencyHeader)
		if !cfg.Enabled || key == "" {
			c.Next()
			return
		}
		if len(key) > maxIdempotencyKeyLength {
			c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(
				dto.ErrCodeBadRequest, "Idempotency-Key is too long", GetRequestID(c)))
			return
		}

		ctx := c.Request.Context()
		log := logger.Ctx(ctx, base)
		storeKey := "http:" + c.Request.Method + " " + c.Request.URL.Path + ":" + key

		if replay(c, store, storeKey, log) {
			return
		}

		claimed, err := store.MarkProcessed(ctx, storeKey, cfg.LockTTL)
		if err != nil {
			log.Error("idempotency claim failed", zap.String("key", key), zap.Error(err))
			abortUnavailable(c)
			return
		}
		if !claimed {
			// the first request may have completed in between
			if replay(c, store, storeKey, log) {
				return
			}
			c.AbortWithStatusJSON(http.StatusConflict, dto.NewErrorResponse(
				dto.ErrCodeIdempotencyInFlight,
				"A request with this Idempotency-Key is still being processed",
				GetRequestID(c),
			))
			return
		}

		writer := &capturingWriter{ResponseWriter: c.Writer}
		c.Writer = writer
		c.Next()

		status := writer.Status()
		if status < http.StatusOK || status >= http.StatusMultipleChoices {
			if err := store.Release(ctx, storeKey); err != nil {
				log.Warn("idempotency release failed", zap.String("key", key), zap.Error(err))
			}
			return
		}

		payload, err := json.Marshal(storedResponse{
			Status:      status,
			ContentType: writer.Header().Get("Content-Type"),
			Body:        writer.body.Bytes(),
		})
		if err == nil {
			err = store.SaveResponse(ctx, storeKey, payload, cfg.TTL)
		}
		if err != nil {
			log.Error("idempotency response not stored", zap.String("key", key), zap.Error(err))
		}
	}
}

func replay(c *gin.Context, store IdempotencyBackend, storeKey string, log *zap.Logger) bool {
	payload, ok, err := store.GetResponse(c.Request.Context(), storeKey)
	if err != nil {
		log.Error("idempotency lookup failed", zap.Error(err))
		abortUnavailable(c)
		return true
	}
	if !ok {
		return false
	}
	var resp storedResponse
	if err := json.Unmarshal(payload, &resp); err != nil {
		log.Error("idempotency payload corrupt", zap.Error(err))
		abortUnavailable(c)
		return true
	}
	c.Header(ReplayHeader, "true")
	contentType := resp.ContentType
	if contentType == "" {
		contentType = "application/json; charset=utf-8"
	}
	c.Data(resp.Status, contentType, resp.Body)
	c.Abort()
	return true
}

func abortUnavailable(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusServiceUnavailable, dto.NewErrorResponse(
		dto.ErrCodeUnavailable, "Idempotency store unavailable", GetRequestID(c)))
}
