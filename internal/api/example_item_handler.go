package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"resumebuilder/internal/api/middleware"
	"resumebuilder/internal/database"
	"resumebuilder/internal/repository"
)

// ExampleItemHandler is the CRUD walkthrough module. It exists to document
// the repository contract end to end; nothing else depends on it.
type ExampleItemHandler struct {
	items  *repository.Repository[database.ExampleItem]
	logger *slog.Logger
}

func NewExampleItemHandler(db *gorm.DB, logger *slog.Logger) *ExampleItemHandler {
	return &ExampleItemHandler{items: repository.New[database.ExampleItem](db), logger: logger}
}

type exampleItemResponse struct {
	ID         uint      `json:"id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	IsArchived bool      `json:"is_archived"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func newExampleItemResponse(item database.ExampleItem) exampleItemResponse {
	return exampleItemResponse{
		ID:         item.ID,
		Title:      item.Title,
		Content:    item.Content,
		IsArchived: item.IsArchived,
		CreatedAt:  item.CreatedAt,
		UpdatedAt:  item.UpdatedAt,
	}
}

// List returns the caller's items, newest first. Archived items are hidden
// unless include_archived is set.
func (h *ExampleItemHandler) List(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	where := []repository.Clause{repository.Where("user_id = ?", userID)}
	if c.Query("include_archived") != "true" {
		where = append(where, repository.Where("is_archived = ?", false))
	}

	items, err := h.items.GetData(c.Request.Context(), repository.Query{
		Where:   where,
		OrderBy: "created_at DESC, id DESC",
	})
	if err != nil {
		middleware.LoggerFromContext(c).Error("list example items failed", slog.Any("error", err))
		Internal(c, "failed to list items")
		return
	}

	out := make([]exampleItemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, newExampleItemResponse(item))
	}
	c.JSON(http.StatusOK, gin.H{"items": out})
}

var exampleSortColumns = map[string]string{
	"created_at": "created_at DESC, id DESC",
	"updated_at": "updated_at DESC, id DESC",
	"title":      "title ASC, id ASC",
}

// ListAll returns one page across all users, demonstrating the paginated
// read path of the repository. Supports title search and a whitelisted sort.
func (h *ExampleItemHandler) ListAll(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "25"))
	if pageSize > 100 {
		pageSize = 100
	}

	orderBy, ok := exampleSortColumns[c.DefaultQuery("sort", "created_at")]
	if !ok {
		BadRequest(c, "unsupported sort")
		return
	}

	var where []repository.Clause
	if search := strings.TrimSpace(c.Query("query")); search != "" {
		where = append(where, repository.Where("title LIKE ?", "%"+search+"%"))
	}

	result, err := h.items.GetPaginatedData(c.Request.Context(), repository.PageQuery{
		Page:     page,
		PageSize: pageSize,
		Where:    where,
		OrderBy:  orderBy,
	})
	if err != nil {
		middleware.LoggerFromContext(c).Error("paginate example items failed", slog.Any("error", err))
		Internal(c, "failed to list items")
		return
	}
	c.JSON(http.StatusOK, result)
}

type createExampleItemRequest struct {
	Title   string `json:"title" binding:"required,max=120"`
	Content string `json:"content"`
}

// Create stores a new item owned by the caller.
func (h *ExampleItemHandler) Create(c *gin.Context) {
	var req createExampleItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		BadRequest(c, "title is required")
		return
	}

	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	item := database.ExampleItem{
		UserID:  userID,
		Title:   title,
		Content: req.Content,
	}
	if err := h.items.Insert(c.Request.Context(), &item); err != nil {
		middleware.LoggerFromContext(c).Error("create example item failed", slog.Any("error", err))
		Internal(c, "failed to create item")
		return
	}
	c.JSON(http.StatusCreated, newExampleItemResponse(item))
}

type updateExampleItemRequest struct {
	Title      *string `json:"title"`
	Content    *string `json:"content"`
	IsArchived *bool   `json:"is_archived"`
}

// Update patches the caller's item. Items of other users read as missing.
func (h *ExampleItemHandler) Update(c *gin.Context) {
	var req updateExampleItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}
	itemID, ok := uintParam(c, "id")
	if !ok {
		BadRequest(c, "invalid item id")
		return
	}

	ctx := c.Request.Context()
	owned := []repository.Clause{
		repository.Where("id = ?", itemID),
		repository.Where("user_id = ?", userID),
	}

	if _, err := h.items.Get(ctx, owned...); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "item not found")
			return
		}
		middleware.LoggerFromContext(c).Error("example item lookup failed", slog.Any("error", err))
		Internal(c, "failed to update item")
		return
	}

	patch := map[string]any{}
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" || len([]rune(title)) > 120 {
			BadRequest(c, "title must be between 1 and 120 characters")
			return
		}
		patch["title"] = title
	}
	if req.Content != nil {
		patch["content"] = *req.Content
	}
	if req.IsArchived != nil {
		patch["is_archived"] = *req.IsArchived
	}
	if len(patch) == 0 {
		BadRequest(c, "nothing to update")
		return
	}

	if err := h.items.Update(ctx, patch, owned...); err != nil {
		middleware.LoggerFromContext(c).Error("update example item failed", slog.Any("error", err))
		Internal(c, "failed to update item")
		return
	}

	item, err := h.items.Get(ctx, owned...)
	if err != nil {
		middleware.LoggerFromContext(c).Error("reload example item failed", slog.Any("error", err))
		Internal(c, "failed to update item")
		return
	}
	c.JSON(http.StatusOK, newExampleItemResponse(*item))
}

// Delete removes the caller's item.
func (h *ExampleItemHandler) Delete(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}
	itemID, ok := uintParam(c, "id")
	if !ok {
		BadRequest(c, "invalid item id")
		return
	}

	ctx := c.Request.Context()
	owned := []repository.Clause{
		repository.Where("id = ?", itemID),
		repository.Where("user_id = ?", userID),
	}

	if _, err := h.items.Get(ctx, owned...); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "item not found")
			return
		}
		middleware.LoggerFromContext(c).Error("example item lookup failed", slog.Any("error", err))
		Internal(c, "failed to delete item")
		return
	}

	if err := h.items.Delete(ctx, owned...); err != nil {
		middleware.LoggerFromContext(c).Error("delete example item failed", slog.Any("error", err))
		Internal(c, "failed to delete item")
		return
	}
	c.Status(http.StatusNoContent)
}
