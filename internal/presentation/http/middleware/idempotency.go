package middleware

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/storefront-api/internal/domain/entity"
	"github.com/sangkips/storefront-api/internal/domain/repository"
	"github.com/sangkips/storefront-api/internal/presentation/http/dto/response"
)

const (
	// IdempotencyKeyHeader is the HTTP header for idempotency keys
	IdempotencyKeyHeader = "Idempotency-Key"
	// IdempotencyKeyTTL is how long keys are valid
	IdempotencyKeyTTL = 24 * time.Hour
)

// IdempotencyConfig holds configuration for the idempotency middleware
type IdempotencyConfig struct {
	Repo repository.IdempotencyRepository
}

// responseWriter wraps gin.ResponseWriter to capture the response body
type responseWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w responseWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// Idempotency replays the stored response when a signed-in caller repeats a
// request to the same endpoint with the same Idempotency-Key. The key is
// reserved before the handler runs, so a duplicate that arrives while the
// first request is still running gets 409. Server failures release the key so
// the caller can retry them.
func Idempotency(config IdempotencyConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if config.Repo == nil {
			c.Next()
			return
		}
		if c.Request.Method != http.MethodPost && c.Request.Method != http.MethodPut && c.Request.Method != http.MethodPatch {
			c.Next()
			return
		}

		idempotencyKey := c.GetHeader(IdempotencyKeyHeader)
		if idempotencyKey == "" {
			c.Next()
			return
		}

		userIDValue, exists := c.Get(ContextUserID)
		if !exists {
			c.Next()
			return
		}
		ownerID, ok := userIDValue.(uuid.UUID)
		if !ok {
			c.Next()
			return
		}

		// bookkeeping must finish even if the client goes away
		ctx := context.WithoutCancel(c.Request.Context())
		endpoint := c.Request.Method + " " + c.FullPath()

		ikey := &entity.IdempotencyKey{
			Key:       idempotencyKey,
			OwnerID:   ownerID,
			Endpoint:  endpoint,
			ExpiresAt: time.Now().Add(IdempotencyKeyTTL),
		}
		reserved, err := config.Repo.Reserve(ctx, ikey)
		if err != nil {
			slog.Warn("idempotency reservation failed", "error", err)
			c.Next()
			return
		}

		if !reserved {
			existing, err := config.Repo.GetByKey(ctx, idempotencyKey, ownerID, endpoint)
			if err != nil || existing == nil {
				slog.Warn("idempotency lookup failed", "error", err)
				c.Next()
				return
			}
			if existing.IsPending() {
				response.ErrorWithCode(c, http.StatusConflict, "A request with this Idempotency-Key is still being processed")
				c.Abort()
				return
			}
			c.Header("X-Idempotency-Replayed", "true")
			c.Data(existing.ResponseCode, "application/json; charset=utf-8", []byte(existing.ResponseBody))
			c.Abort()
			return
		}

		blw := &responseWriter{body: bytes.NewBufferString(""), ResponseWriter: c.Writer}
		c.Writer = blw

		c.Next()

		status := c.Writer.Status()
		if status >= http.StatusInternalServerError {
			if err := config.Repo.Release(ctx, ikey.ID); err != nil {
				slog.Warn("failed to release idempotency key", "error", err)
			}
			return
		}
		if err := config.Repo.Complete(ctx, ikey.ID, status, blw.body.String()); err != nil {
			slog.Warn("failed to store idempotency response", "error", err)
		}
	}
}
