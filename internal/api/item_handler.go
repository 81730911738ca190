package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"resumebuilder/internal/api/middleware"
	"resumebuilder/internal/database"
	"resumebuilder/internal/resume"
)

// ItemHandler serves item writes within a project's sections.
type ItemHandler struct {
	db        *gorm.DB
	publisher *ActivityPublisher
	logger    *slog.Logger
}

func NewItemHandler(db *gorm.DB, publisher *ActivityPublisher, logger *slog.Logger) *ItemHandler {
	return &ItemHandler{db: db, publisher: publisher, logger: logger}
}

type saveItemRequest struct {
	ID    *uint           `json:"id"`
	Order *int            `json:"order"`
	Data  json.RawMessage `json:"data" binding:"required"`
}

// SaveItem adds an item to a section or, when an id is supplied, updates that
// item in place. Payloads are normalized per section key before they are
// stored; a validation failure rejects the whole write. Singleton sections
// (basics, summary, declaration) fold writes into their one existing item.
func (h *ItemHandler) SaveItem(c *gin.Context) {
	var req saveItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
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
	if err := h.db.WithContext(ctx).
		Where("project_id = ? AND key = ?", project.ID, key).
		First(&section).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "section not found")
			return
		}
		logger.Error("section lookup failed", slog.Any("error", err))
		Internal(c, "failed to load section")
		return
	}

	normalizedRaw, err := resume.NormalizeItemData(key, req.Data)
	if err != nil {
		var validation *resume.ValidationError
		if errors.As(err, &validation) {
			BadRequest(c, validation.Error())
			return
		}
		logger.Error("normalize item failed", slog.Any("error", err))
		Internal(c, "failed to normalize item")
		return
	}
	normalized := datatypes.JSON(normalizedRaw)

	var item database.ResumeItem
	err = h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		targetID := req.ID
		if targetID == nil && resume.IsSingletonSection(key) {
			var existing database.ResumeItem
			err := tx.Where("section_id = ?", section.ID).
				Order("id ASC").First(&existing).Error
			if err == nil {
				targetID = &existing.ID
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
		}

		if targetID != nil {
			if err := tx.Where("id = ? AND section_id = ?", *targetID, section.ID).
				First(&item).Error; err != nil {
				return err
			}
			updates := map[string]any{"data": normalized}
			if req.Order != nil {
				updates["sort_order"] = *req.Order
				item.Order = *req.Order
			}
			if err := tx.Model(&item).Updates(updates).Error; err != nil {
				return err
			}
			item.Data = normalized
		} else {
			order := 0
			if req.Order != nil {
				order = *req.Order
			} else {
				var maxOrder int
				row := tx.Model(&database.ResumeItem{}).
					Where("section_id = ?", section.ID).
					Select("COALESCE(MAX(sort_order), 0)").Row()
				if err := row.Scan(&maxOrder); err == nil {
					order = maxOrder + 1
				}
			}
			item = database.ResumeItem{
				SectionID: section.ID,
				Order:     order,
				Data:      normalized,
			}
			if err := tx.Create(&item).Error; err != nil {
				return err
			}
		}
		return touchProject(ctx, tx, project.ID)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "item not found")
			return
		}
		logger.Error("save item failed", slog.Any("error", err))
		Internal(c, "failed to save item")
		return
	}

	h.publisher.Publish(ctx, userID, "resume.updated", fmt.Sprintf("%d", project.ID))
	c.JSON(http.StatusOK, newItemResponse(item))
}

// DeleteItem removes one item. The lookup pins the item to a section of the
// caller's project, so ids belonging to other projects read as missing.
func (h *ItemHandler) DeleteItem(c *gin.Context) {
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
	itemID, ok := uintParam(c, "itemID")
	if !ok {
		BadRequest(c, "invalid item id")
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

	err = h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var item database.ResumeItem
		if err := tx.
			Where("resume_items.id = ?", itemID).
			Where("section_id IN (?)", tx.Model(&database.ResumeSection{}).
				Select("id").Where("project_id = ?", project.ID)).
			First(&item).Error; err != nil {
			return err
		}
		if err := tx.Delete(&database.ResumeItem{}, item.ID).Error; err != nil {
			return err
		}
		return touchProject(ctx, tx, project.ID)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "item not found")
			return
		}
		logger.Error("delete item failed", slog.Any("error", err))
		Internal(c, "failed to delete item")
		return
	}

	h.publisher.Publish(ctx, userID, "resume.updated", fmt.Sprintf("%d", project.ID))
	c.Status(http.StatusNoContent)
}
