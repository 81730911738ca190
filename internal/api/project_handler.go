package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"resumebuilder/internal/api/middleware"
	"resumebuilder/internal/database"
	"resumebuilder/internal/resume"
)

var (
	errTemplateUnknown = errors.New("unknown template")
	errTemplateLocked  = errors.New("template requires the pro plan")
)

// ProjectHandler serves the resume project CRUD surface.
type ProjectHandler struct {
	db        *gorm.DB
	publisher *ActivityPublisher
	logger    *slog.Logger
}

func NewProjectHandler(db *gorm.DB, publisher *ActivityPublisher, logger *slog.Logger) *ProjectHandler {
	return &ProjectHandler{db: db, publisher: publisher, logger: logger}
}

type projectResponse struct {
	ID             uint       `json:"id"`
	Title          string     `json:"title"`
	TemplateKey    string     `json:"template_key"`
	IsDefault      bool       `json:"is_default"`
	PhotoURL       string     `json:"photo_url,omitempty"`
	PhotoUpdatedAt *time.Time `json:"photo_updated_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func newProjectResponse(project database.ResumeProject) projectResponse {
	return projectResponse{
		ID:             project.ID,
		Title:          project.Title,
		TemplateKey:    project.TemplateKey,
		IsDefault:      project.IsDefault,
		PhotoURL:       project.PhotoURL,
		PhotoUpdatedAt: project.PhotoUpdatedAt,
		CreatedAt:      project.CreatedAt,
		UpdatedAt:      project.UpdatedAt,
	}
}

type itemResponse struct {
	ID        uint           `json:"id"`
	Order     int            `json:"order"`
	Data      map[string]any `json:"data"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

type sectionResponse struct {
	ID        uint           `json:"id"`
	Key       string         `json:"key"`
	Order     int            `json:"order"`
	IsEnabled bool           `json:"is_enabled"`
	Items     []itemResponse `json:"items"`
}

type projectDetailResponse struct {
	projectResponse
	Sections []sectionResponse `json:"sections"`
}

// ListProjects returns the caller's projects, most recently updated first.
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	ctx := c.Request.Context()

	var projects []database.ResumeProject
	if err := h.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("updated_at DESC, created_at DESC").
		Find(&projects).Error; err != nil {
		middleware.LoggerFromContext(c).Error("list projects failed", slog.Any("error", err))
		Internal(c, "failed to list projects")
		return
	}

	out := make([]projectResponse, 0, len(projects))
	for _, project := range projects {
		out = append(out, newProjectResponse(project))
	}
	c.JSON(http.StatusOK, gin.H{"projects": out})
}

type createProjectRequest struct {
	Title       string `json:"title" binding:"required"`
	TemplateKey string `json:"template_key"`
}

// CreateProject creates a project together with its starter section set.
// The caller's first project becomes the default automatically.
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	var req createProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	ctx := c.Request.Context()
	logger := middleware.LoggerFromContext(c)

	title, err := resume.NormalizeProjectTitle(req.Title)
	if err != nil {
		BadRequest(c, err.Error())
		return
	}

	template, err := h.resolveTemplate(ctx, req.TemplateKey, isPaidFromContext(c))
	if err != nil {
		h.replyTemplateError(c, err)
		return
	}

	var project database.ResumeProject
	err = h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&database.ResumeProject{}).
			Where("user_id = ?", userID).
			Count(&count).Error; err != nil {
			return err
		}

		project = database.ResumeProject{
			UserID:      userID,
			Title:       title,
			TemplateKey: template.Key,
			IsDefault:   count == 0,
		}
		if err := tx.Create(&project).Error; err != nil {
			return err
		}

		sections := make([]database.ResumeSection, 0, resume.SectionsPerProject)
		for _, def := range resume.DefaultSections() {
			sections = append(sections, database.ResumeSection{
				ProjectID: project.ID,
				Key:       def.Key,
				Order:     def.Order,
				IsEnabled: true,
			})
		}
		return tx.Create(&sections).Error
	})
	if err != nil {
		logger.Error("create project failed", slog.Any("error", err))
		Internal(c, "failed to create project")
		return
	}

	h.publisher.Publish(ctx, userID, "resume.created", fmt.Sprintf("%d", project.ID))
	c.JSON(http.StatusCreated, newProjectResponse(project))
}

// GetProject returns one project with its sections and items nested, sections
// and items both in their persisted order.
func (h *ProjectHandler) GetProject(c *gin.Context) {
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

	ctx := c.Request.Context()

	project, err := getOwnedProject(ctx, h.db, userID, projectID)
	if err != nil {
		h.replyLookupError(c, err)
		return
	}

	var sections []database.ResumeSection
	if err := h.db.WithContext(ctx).
		Where("project_id = ?", project.ID).
		Order("sort_order ASC, id ASC").
		Find(&sections).Error; err != nil {
		Internal(c, "failed to load sections")
		return
	}

	sectionIDs := make([]uint, 0, len(sections))
	for _, section := range sections {
		sectionIDs = append(sectionIDs, section.ID)
	}

	itemsBySection := map[uint][]itemResponse{}
	if len(sectionIDs) > 0 {
		var items []database.ResumeItem
		if err := h.db.WithContext(ctx).
			Where("section_id IN ?", sectionIDs).
			Order("sort_order ASC, created_at ASC, id ASC").
			Find(&items).Error; err != nil {
			Internal(c, "failed to load items")
			return
		}
		for _, item := range items {
			itemsBySection[item.SectionID] = append(itemsBySection[item.SectionID], newItemResponse(item))
		}
	}

	detail := projectDetailResponse{
		projectResponse: newProjectResponse(*project),
		Sections:        make([]sectionResponse, 0, len(sections)),
	}
	for _, section := range sections {
		items := itemsBySection[section.ID]
		if items == nil {
			items = []itemResponse{}
		}
		detail.Sections = append(detail.Sections, sectionResponse{
			ID:        section.ID,
			Key:       section.Key,
			Order:     section.Order,
			IsEnabled: section.IsEnabled,
			Items:     items,
		})
	}

	c.JSON(http.StatusOK, detail)
}

type updateProjectRequest struct {
	Title       *string `json:"title"`
	TemplateKey *string `json:"template_key"`
}

// UpdateProject renames a project or switches its template. Switching to a
// pro template is gated on the caller's plan the same way creation is.
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	var req updateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	if req.Title == nil && req.TemplateKey == nil {
		BadRequest(c, "nothing to update")
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

	ctx := c.Request.Context()

	project, err := getOwnedProject(ctx, h.db, userID, projectID)
	if err != nil {
		h.replyLookupError(c, err)
		return
	}

	updates := map[string]any{"updated_at": time.Now().UTC()}
	if req.Title != nil {
		title, err := resume.NormalizeProjectTitle(*req.Title)
		if err != nil {
			BadRequest(c, err.Error())
			return
		}
		updates["title"] = title
	}
	if req.TemplateKey != nil {
		template, err := h.resolveTemplate(ctx, *req.TemplateKey, isPaidFromContext(c))
		if err != nil {
			h.replyTemplateError(c, err)
			return
		}
		updates["template_key"] = template.Key
	}

	if err := h.db.WithContext(ctx).Model(project).Updates(updates).Error; err != nil {
		middleware.LoggerFromContext(c).Error("update project failed", slog.Any("error", err))
		Internal(c, "failed to update project")
		return
	}

	if title, ok := updates["title"].(string); ok {
		project.Title = title
	}
	if templateKey, ok := updates["template_key"].(string); ok {
		project.TemplateKey = templateKey
	}
	project.UpdatedAt = updates["updated_at"].(time.Time)

	h.publisher.Publish(ctx, userID, "resume.updated", fmt.Sprintf("%d", project.ID))
	c.JSON(http.StatusOK, newProjectResponse(*project))
}

// DeleteProject removes a project with its sections, items and bookmarks.
// When the default project goes away, the most recently updated survivor is
// promoted so a default always exists while any project does.
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
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

	ctx := c.Request.Context()
	logger := middleware.LoggerFromContext(c)

	project, err := getOwnedProject(ctx, h.db, userID, projectID)
	if err != nil {
		h.replyLookupError(c, err)
		return
	}

	err = h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Where("section_id IN (?)", tx.Model(&database.ResumeSection{}).
				Select("id").Where("project_id = ?", project.ID)).
			Delete(&database.ResumeItem{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", project.ID).
			Delete(&database.ResumeSection{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ? AND entity_type = ? AND entity_id = ?", userID, "resume", project.ID).
			Delete(&database.Bookmark{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&database.ResumeProject{}, project.ID).Error; err != nil {
			return err
		}

		if !project.IsDefault {
			return nil
		}

		var survivor database.ResumeProject
		err := tx.Where("user_id = ?", userID).
			Order("updated_at DESC, created_at DESC").
			First(&survivor).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return tx.Model(&survivor).Update("is_default", true).Error
	})
	if err != nil {
		logger.Error("delete project failed", slog.Any("error", err))
		Internal(c, "failed to delete project")
		return
	}

	h.publisher.Publish(ctx, userID, "resume.deleted", fmt.Sprintf("%d", project.ID))
	c.Status(http.StatusNoContent)
}

// SetDefault marks one project as the default. The clear-then-set runs in a
// transaction, and a partial unique index backs up the invariant that at most
// one default exists per owner.
func (h *ProjectHandler) SetDefault(c *gin.Context) {
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

	ctx := c.Request.Context()

	project, err := getOwnedProject(ctx, h.db, userID, projectID)
	if err != nil {
		h.replyLookupError(c, err)
		return
	}

	err = h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&database.ResumeProject{}).
			Where("user_id = ? AND is_default = ?", userID, true).
			Update("is_default", false).Error; err != nil {
			return err
		}
		return tx.Model(&database.ResumeProject{}).
			Where("id = ?", project.ID).
			Updates(map[string]any{"is_default": true, "updated_at": time.Now().UTC()}).Error
	})
	if err != nil {
		middleware.LoggerFromContext(c).Error("set default failed", slog.Any("error", err))
		Internal(c, "failed to set default project")
		return
	}

	project.IsDefault = true
	h.publisher.Publish(ctx, userID, "resume.updated", fmt.Sprintf("%d", project.ID))
	c.JSON(http.StatusOK, newProjectResponse(*project))
}

func (h *ProjectHandler) resolveTemplate(ctx context.Context, key string, isPaid bool) (database.ResumeTemplate, error) {
	var template database.ResumeTemplate
	query := h.db.WithContext(ctx).Where("is_active = ?", true)
	if key == "" {
		query = query.Where("is_default = ?", true)
	} else {
		query = query.Where("key = ?", key)
	}
	if err := query.First(&template).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return database.ResumeTemplate{}, errTemplateUnknown
		}
		return database.ResumeTemplate{}, err
	}
	if template.Tier == "pro" && !isPaid {
		return database.ResumeTemplate{}, errTemplateLocked
	}
	return template, nil
}

func (h *ProjectHandler) replyTemplateError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, errTemplateUnknown):
		BadRequest(c, "unknown template")
	case errors.Is(err, errTemplateLocked):
		PaymentRequired(c, "template requires the pro plan")
	default:
		middleware.LoggerFromContext(c).Error("template lookup failed", slog.Any("error", err))
		Internal(c, "failed to resolve template")
	}
}

func (h *ProjectHandler) replyLookupError(c *gin.Context, err error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		NotFound(c, "project not found")
		return
	}
	middleware.LoggerFromContext(c).Error("project lookup failed", slog.Any("error", err))
	Internal(c, "failed to load project")
}

// getOwnedProject loads a project scoped by owner. Projects of other users
// come back as gorm.ErrRecordNotFound, never as a permission error.
func getOwnedProject(ctx context.Context, db *gorm.DB, userID, projectID uint) (*database.ResumeProject, error) {
	var project database.ResumeProject
	if err := db.WithContext(ctx).
		Where("id = ? AND user_id = ?", projectID, userID).
		First(&project).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

// touchProject bumps a project's updated_at after nested content changes.
func touchProject(ctx context.Context, db *gorm.DB, projectID uint) error {
	return db.WithContext(ctx).Model(&database.ResumeProject{}).
		Where("id = ?", projectID).
		Update("updated_at", time.Now().UTC()).Error
}

func newItemResponse(item database.ResumeItem) itemResponse {
	data := map[string]any{}
	_ = json.Unmarshal(item.Data, &data)
	return itemResponse{
		ID:        item.ID,
		Order:     item.Order,
		Data:      data,
		CreatedAt: item.CreatedAt,
		UpdatedAt: item.UpdatedAt,
	}
}
