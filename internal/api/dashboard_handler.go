package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"resumebuilder/internal/api/middleware"
	"resumebuilder/internal/dashboard"
)

const summaryCacheTTL = 30 * time.Second

// DashboardHandler serves the launcher summary. The computed summary is
// cached briefly in redis; mutations drop the cache through the publisher.
type DashboardHandler struct {
	db     *gorm.DB
	redis  redis.UniversalClient
	logger *slog.Logger
}

func NewDashboardHandler(db *gorm.DB, redisClient redis.UniversalClient, logger *slog.Logger) *DashboardHandler {
	return &DashboardHandler{db: db, redis: redisClient, logger: logger}
}

// Summary returns the caller's aggregated dashboard payload.
func (h *DashboardHandler) Summary(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	ctx := c.Request.Context()
	logger := middleware.LoggerFromContext(c)
	key := summaryCacheKey(userID)

	if h.redis != nil {
		cached, err := h.redis.Get(ctx, key).Bytes()
		if err == nil {
			var summary dashboard.Summary
			if json.Unmarshal(cached, &summary) == nil {
				c.JSON(http.StatusOK, summary)
				return
			}
		} else if !errors.Is(err, redis.Nil) {
			logger.Warn("summary cache read failed", slog.Any("error", err))
		}
	}

	summary, err := dashboard.BuildSummary(ctx, h.db, userID)
	if err != nil {
		logger.Error("build summary failed", slog.Any("error", err))
		Internal(c, "failed to build summary")
		return
	}

	if h.redis != nil {
		if body, err := json.Marshal(summary); err == nil {
			if err := h.redis.Set(ctx, key, body, summaryCacheTTL).Err(); err != nil {
				logger.Warn("summary cache write failed", slog.Any("error", err))
			}
		}
	}

	c.JSON(http.StatusOK, summary)
}
