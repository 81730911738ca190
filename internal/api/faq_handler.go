package api

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"resumebuilder/internal/api/middleware"
	"resumebuilder/internal/database"
	"resumebuilder/internal/repository"
)

// FaqHandler serves the read-only knowledge base.
type FaqHandler struct {
	faqs   *repository.Repository[database.Faq]
	logger *slog.Logger
}

func NewFaqHandler(db *gorm.DB, logger *slog.Logger) *FaqHandler {
	return &FaqHandler{faqs: repository.New[database.Faq](db), logger: logger}
}

type faqResponse struct {
	ID       uint   `json:"id"`
	Audience string `json:"audience"`
	Category string `json:"category"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// List returns published FAQ entries, optionally filtered by audience and
// category, in their editorial order.
func (h *FaqHandler) List(c *gin.Context) {
	where := []repository.Clause{
		repository.Where("is_published = ?", true),
	}
	if audience := c.Query("audience"); audience != "" {
		where = append(where, repository.Where("audience = ?", audience))
	}
	if category := c.Query("category"); category != "" {
		where = append(where, repository.Where("category = ?", category))
	}

	faqs, err := h.faqs.GetData(c.Request.Context(), repository.Query{
		Where:   where,
		OrderBy: "sort_order ASC, id ASC",
	})
	if err != nil {
		middleware.LoggerFromContext(c).Error("list faqs failed", slog.Any("error", err))
		Internal(c, "failed to list faqs")
		return
	}

	out := make([]faqResponse, 0, len(faqs))
	for _, faq := range faqs {
		out = append(out, faqResponse{
			ID:       faq.ID,
			Audience: faq.Audience,
			Category: faq.Category,
			Question: faq.Question,
			Answer:   faq.Answer,
		})
	}
	c.JSON(http.StatusOK, gin.H{"faqs": out})
}
