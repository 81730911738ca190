package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"resumebuilder/internal/api/middleware"
	"resumebuilder/internal/database"
	"resumebuilder/internal/resume"
)

// BookmarkHandler serves favorite toggling over resume projects.
type BookmarkHandler struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewBookmarkHandler(db *gorm.DB, logger *slog.Logger) *BookmarkHandler {
	return &BookmarkHandler{db: db, logger: logger}
}

type toggleBookmarkRequest struct {
	EntityType string `json:"entity_type"`
	EntityID   uint   `json:"entity_id" binding:"required"`
	Label      string `json:"label"`
}

type bookmarkResponse struct {
	ID         uint      `json:"id"`
	EntityType string    `json:"entity_type"`
	EntityID   uint      `json:"entity_id"`
	Label      string    `json:"label,omitempty"`
	Title      string    `json:"title,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Toggle flips the bookmark for (user, entity) and reports the resulting
// state. Toggling on a missing row creates it, toggling on an existing row
// removes it; the unique index keeps concurrent toggles from doubling up.
func (h *BookmarkHandler) Toggle(c *gin.Context) {
	var req toggleBookmarkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	entityType := req.EntityType
	if entityType == "" {
		entityType = "resume"
	}
	if entityType != "resume" {
		BadRequest(c, "unsupported entity type")
		return
	}

	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	ctx := c.Request.Context()
	logger := middleware.LoggerFromContext(c)

	if _, err := getOwnedProject(ctx, h.db, userID, req.EntityID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "project not found")
			return
		}
		logger.Error("bookmark target lookup failed", slog.Any("error", err))
		Internal(c, "failed to toggle bookmark")
		return
	}

	label, err := resume.NormalizeLabel(req.Label)
	if err != nil {
		BadRequest(c, err.Error())
		return
	}

	active := false
	err = h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing database.Bookmark
		err := tx.Where("user_id = ? AND entity_type = ? AND entity_id = ?", userID, entityType, req.EntityID).
			First(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			bookmark := database.Bookmark{
				UserID:     userID,
				EntityType: entityType,
				EntityID:   req.EntityID,
				Label:      label,
			}
			if err := tx.Create(&bookmark).Error; err != nil {
				return err
			}
			active = true
			return nil
		case err != nil:
			return err
		default:
			return tx.Delete(&database.Bookmark{}, existing.ID).Error
		}
	})
	if err != nil {
		logger.Error("toggle bookmark failed", slog.Any("error", err))
		Internal(c, "failed to toggle bookmark")
		return
	}

	c.JSON(http.StatusOK, gin.H{"active": active})
}

// List returns the caller's bookmarks, newest first.
func (h *BookmarkHandler) List(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	ctx := c.Request.Context()

	var bookmarks []database.Bookmark
	if err := h.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&bookmarks).Error; err != nil {
		middleware.LoggerFromContext(c).Error("list bookmarks failed", slog.Any("error", err))
		Internal(c, "failed to list bookmarks")
		return
	}

	titles := map[uint]string{}
	if len(bookmarks) > 0 {
		ids := make([]uint, 0, len(bookmarks))
		for _, bookmark := range bookmarks {
			ids = append(ids, bookmark.EntityID)
		}
		var projects []database.ResumeProject
		if err := h.db.WithContext(ctx).
			Select("id", "title").
			Where("user_id = ? AND id IN ?", userID, ids).
			Find(&projects).Error; err != nil {
			middleware.LoggerFromContext(c).Error("resolve bookmark titles failed", slog.Any("error", err))
			Internal(c, "failed to list bookmarks")
			return
		}
		for _, project := range projects {
			titles[project.ID] = project.Title
		}
	}

	out := make([]bookmarkResponse, 0, len(bookmarks))
	for _, bookmark := range bookmarks {
		out = append(out, bookmarkResponse{
			ID:         bookmark.ID,
			EntityType: bookmark.EntityType,
			EntityID:   bookmark.EntityID,
			Label:      bookmark.Label,
			Title:      titles[bookmark.EntityID],
			CreatedAt:  bookmark.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"bookmarks": out})
}
