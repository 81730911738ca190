package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"resumebuilder/internal/api/middleware"
	"resumebuilder/internal/database"
	"resumebuilder/internal/resume"
)

// SectionHandler serves section upsert and item writes within a project.
type SectionHandler struct {
	db        *gorm.DB
	publisher *ActivityPublisher
	logger    *slog.Logger
}

func NewSectionHandler(db *gorm.DB, publisher *ActivityPublisher, logger *slog.Logger) *SectionHandler {
	return &SectionHandler{db: db, publisher: publisher, logger: logger}
}

func validSectionKey(key string) bool {
	for _, def := range resume.DefaultSections() {
		if def.Key == key {
			return true
		}
	}
	return false
}

type upsertSectionRequest struct {
	Order     *int  `json:"order"`
	IsEnabled *bool `json:"is_enabled"`
}

// UpsertSection creates or updates the (project, key) section in place.
// Repeating the same request is a no-op, the section row count never grows
// past one per key.
func (h *SectionHandler) UpsertSection(c *gin.Context) {
	var req upsertSectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	if req.Order != nil && *req.Order < 0 {
		BadRequest(c, "order must not be negative")
		return
	}

	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}
	projectID, ok := uintParam(c, "id")
	if !ok {
		BadRequest(c, "invalid project id")
		return
	}
	key := c.Param("key")
	if !validSectionKey(key) {
		BadRequest(c, "unknown section key")
		return
	}

	ctx := c.Request.Context()
	logger := middleware.LoggerFromContext(c)

	project, err := getOwnedProject(ctx, h.db, userID, projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "project not found")
			return
		}
		logger.Error("project lookup failed", slog.Any("error", err))
		Internal(c, "failed to load project")
		return
	}

	var section database.ResumeSection
	err = h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("project_id = ? AND key = ?", project.ID, key).
			First(&section).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			section = database.ResumeSection{
				ProjectID: project.ID,
				Key:       key,
				Order:     defaultSectionOrder(key),
				IsEnabled: true,
			}
			if req.Order != nil {
				section.Order = *req.Order
			}
			if req.IsEnabled != nil {
				section.IsEnabled = *req.IsEnabled
			}
			if err := tx.Create(&section).Error; err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			updates := map[string]any{}
			if req.Order != nil {
				updates["sort_order"] = *req.Order
				section.Order = *req.Order
			}
			if req.IsEnabled != nil {
				updates["is_enabled"] = *req.IsEnabled
				section.IsEnabled = *req.IsEnabled
			}
			if len(updates) > 0 {
				if err := tx.Model(&section).Updates(updates).Error; err != nil {
					return err
				}
			}
		}
		return touchProject(ctx, tx, project.ID)
	})
	if err != nil {
		logger.Error("upsert section failed", slog.Any("error", err))
		Internal(c, "failed to upsert section")
		return
	}

	h.publisher.Publish(ctx, userID, "resume.updated", fmt.Sprintf("%d", project.ID))
	c.JSON(http.StatusOK, sectionResponse{
		ID:        section.ID,
		Key:       section.Key,
		Order:     section.Order,
		IsEnabled: section.IsEnabled,
		Items:     []itemResponse{},
	})
}

func defaultSectionOrder(key string) int {
	for _, def := range resume.DefaultSections() {
		if def.Key == key {
			return def.Order
		}
	}
	return resume.SectionsPerProject + 1
}
