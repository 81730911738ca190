package api

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"resumebuilder/internal/api/middleware"
	"resumebuilder/internal/database"
)

// TemplateHandler serves the template catalog.
type TemplateHandler struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewTemplateHandler(db *gorm.DB, logger *slog.Logger) *TemplateHandler {
	return &TemplateHandler{db: db, logger: logger}
}

type templateResponse struct {
	Key             string `json:"key"`
	Name            string `json:"name"`
	Description     string `json:"description"`
	Tier            string `json:"tier"`
	PreviewImageURL string `json:"preview_image_url,omitempty"`
	IsDefault       bool   `json:"is_default"`
	Locked          bool   `json:"locked"`
}

// ListTemplates returns the active catalog. Every template is listed for
// every caller; pro entries carry locked=true for free-plan callers so the
// client can render the upgrade prompt.
func (h *TemplateHandler) ListTemplates(c *gin.Context) {
	isPaid := isPaidFromContext(c)

	var templates []database.ResumeTemplate
	if err := h.db.WithContext(c.Request.Context()).
		Where("is_active = ?", true).
		Order("tier ASC, key ASC").
		Find(&templates).Error; err != nil {
		middleware.LoggerFromContext(c).Error("list templates failed", slog.Any("error", err))
		Internal(c, "failed to list templates")
		return
	}

	out := make([]templateResponse, 0, len(templates))
	for _, template := range templates {
		out = append(out, templateResponse{
			Key:             template.Key,
			Name:            template.Name,
			Description:     template.Description,
			Tier:            template.Tier,
			PreviewImageURL: template.PreviewImageURL,
			IsDefault:       template.IsDefault,
			Locked:          template.Tier == "pro" && !isPaid,
		})
	}
	c.JSON(http.StatusOK, gin.H{"templates": out})
}
