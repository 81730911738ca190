package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"resumebuilder/internal/database"
)

func contentRouter(db *gorm.DB, userID uint) *gin.Engine {
	router := newTestRouter()
	publisher := testPublisher(db)
	projects := NewProjectHandler(db, publisher, slog.Default())
	sections := NewSectionHandler(db, publisher, slog.Default())
	items := NewItemHandler(db, publisher, slog.Default())

	group := router.Group("/v1/projects", testAuth(userID, false))
	group.POST("", projects.CreateProject)
	group.GET("/:id", projects.GetProject)
	group.PUT("/:id/sections/:key", sections.UpsertSection)
	group.POST("/:id/sections/:key/items", items.SaveItem)
	group.DELETE("/:id/items/:itemID", items.DeleteItem)
	return router
}

func createProject(t *testing.T, router *gin.Engine, title string) projectResponse {
	t.Helper()
	w := doJSON(t, router, http.MethodPost, "/v1/projects", gin.H{"title": title})
	mustStatus(t, w, http.StatusCreated)
	var created projectResponse
	decodeBody(t, w, &created)
	return created
}

func TestUpsertSectionIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	seedTemplates(t, db)
	router := contentRouter(db, 1)
	project := createProject(t, router, "Mine")

	path := fmt.Sprintf("/v1/projects/%d/sections/skills", project.ID)
	disabled := false
	for i := 0; i < 3; i++ {
		w := doJSON(t, router, http.MethodPut, path, gin.H{"order": 2, "is_enabled": disabled})
		mustStatus(t, w, http.StatusOK)
	}

	var rows []database.ResumeSection
	if err := db.Where("project_id = ? AND key = ?", project.ID, "skills").Find(&rows).Error; err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("row count = %d, want 1", len(rows))
	}
	if rows[0].Order != 2 || rows[0].IsEnabled {
		t.Errorf("section = order %d enabled %v", rows[0].Order, rows[0].IsEnabled)
	}
}

func TestUpsertSectionRejectsUnknownKey(t *testing.T) {
	db := newTestDB(t)
	seedTemplates(t, db)
	router := contentRouter(db, 1)
	project := createProject(t, router, "Mine")

	w := doJSON(t, router, http.MethodPut, fmt.Sprintf("/v1/projects/%d/sections/hobbies", project.ID), gin.H{"order": 1})
	mustStatus(t, w, http.StatusBadRequest)

	w = doJSON(t, router, http.MethodPut, fmt.Sprintf("/v1/projects/%d/sections/skills", project.ID), gin.H{"order": -1})
	mustStatus(t, w, http.StatusBadRequest)
}

func TestSaveItemNormalizesPayload(t *testing.T) {
	db := newTestDB(t)
	seedTemplates(t, db)
	router := contentRouter(db, 1)
	project := createProject(t, router, "Mine")

	path := fmt.Sprintf("/v1/projects/%d/sections/experience/items", project.ID)
	w := doJSON(t, router, http.MethodPost, path, gin.H{
		"data": gin.H{
			"role":      "Engineer",
			"company":   "Acme—Corp",
			"startYear": 2020,
			"bullets":   "built it\nran it",
		},
	})
	mustStatus(t, w, http.StatusOK)

	var saved itemResponse
	decodeBody(t, w, &saved)
	if saved.Data["company"] != "Acme-Corp" {
		t.Errorf("company not sanitized: %v", saved.Data["company"])
	}
	bullets := saved.Data["bullets"].([]any)
	if len(bullets) != 2 {
		t.Errorf("bullets = %v", bullets)
	}

	// Validation failures reject the write with a field message.
	w = doJSON(t, router, http.MethodPost, path, gin.H{
		"data": gin.H{"role": "x", "startYear": 2021, "endYear": 2019},
	})
	mustStatus(t, w, http.StatusBadRequest)
	var body map[string]any
	decodeBody(t, w, &body)
	if msg, _ := body["error"].(string); !strings.Contains(msg, "endYear") {
		t.Errorf("error = %v", body["error"])
	}
}

func TestSaveItemUpdatesInPlace(t *testing.T) {
	db := newTestDB(t)
	seedTemplates(t, db)
	router := contentRouter(db, 1)
	project := createProject(t, router, "Mine")

	path := fmt.Sprintf("/v1/projects/%d/sections/skills/items", project.ID)
	w := doJSON(t, router, http.MethodPost, path, gin.H{"data": gin.H{"name": "Go"}})
	mustStatus(t, w, http.StatusOK)
	var first itemResponse
	decodeBody(t, w, &first)

	w = doJSON(t, router, http.MethodPost, path, gin.H{"id": first.ID, "data": gin.H{"name": "Golang"}})
	mustStatus(t, w, http.StatusOK)

	var count int64
	if err := db.Model(&database.ResumeItem{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Errorf("item count = %d, want 1", count)
	}

	var reloaded database.ResumeItem
	if err := db.First(&reloaded, first.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if !strings.Contains(string(reloaded.Data), "Golang") {
		t.Errorf("data = %s", reloaded.Data)
	}
}

func TestSaveItemSingletonFoldsIntoOne(t *testing.T) {
	db := newTestDB(t)
	seedTemplates(t, db)
	router := contentRouter(db, 1)
	project := createProject(t, router, "Mine")

	path := fmt.Sprintf("/v1/projects/%d/sections/summary/items", project.ID)
	for _, text := range []string{"First version.", "Second version."} {
		w := doJSON(t, router, http.MethodPost, path, gin.H{"data": gin.H{"text": text}})
		mustStatus(t, w, http.StatusOK)
	}

	var items []database.ResumeItem
	if err := db.Find(&items).Error; err != nil {
		t.Fatalf("load items: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("singleton section holds %d items", len(items))
	}
	if !strings.Contains(string(items[0].Data), "Second version.") {
		t.Errorf("data = %s", items[0].Data)
	}
}

func TestDeleteItemCrossProjectGuard(t *testing.T) {
	db := newTestDB(t)
	seedTemplates(t, db)
	router := contentRouter(db, 1)

	projectA := createProject(t, router, "A")
	projectB := createProject(t, router, "B")

	w := doJSON(t, router, http.MethodPost, fmt.Sprintf("/v1/projects/%d/sections/skills/items", projectA.ID), gin.H{"data": gin.H{"name": "Go"}})
	mustStatus(t, w, http.StatusOK)
	var item itemResponse
	decodeBody(t, w, &item)

	// The item belongs to project A; deleting it through project B misses.
	w = doJSON(t, router, http.MethodDelete, fmt.Sprintf("/v1/projects/%d/items/%d", projectB.ID, item.ID), nil)
	mustStatus(t, w, http.StatusNotFound)

	w = doJSON(t, router, http.MethodDelete, fmt.Sprintf("/v1/projects/%d/items/%d", projectA.ID, item.ID), nil)
	mustStatus(t, w, http.StatusNoContent)

	var count int64
	if err := db.Model(&database.ResumeItem{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Errorf("item count = %d", count)
	}
}
