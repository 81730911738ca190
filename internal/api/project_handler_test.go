package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"resumebuilder/internal/database"
	"resumebuilder/internal/resume"
)

func projectRouter(db *gorm.DB, userID uint, isPaid bool) *gin.Engine {
	router := newTestRouter()
	h := NewProjectHandler(db, testPublisher(db), slog.Default())

	group := router.Group("/v1/projects", testAuth(userID, isPaid))
	group.GET("", h.ListProjects)
	group.POST("", h.CreateProject)
	group.GET("/:id", h.GetProject)
	group.PATCH("/:id", h.UpdateProject)
	group.DELETE("/:id", h.DeleteProject)
	group.POST("/:id/default", h.SetDefault)
	return router
}

func TestCreateProjectSeedsDefaultSections(t *testing.T) {
	db := newTestDB(t)
	seedTemplates(t, db)
	router := projectRouter(db, 1, false)

	w := doJSON(t, router, http.MethodPost, "/v1/projects", gin.H{"title": "My Resume"})
	mustStatus(t, w, http.StatusCreated)

	var created projectResponse
	decodeBody(t, w, &created)
	if !created.IsDefault {
		t.Error("first project must become the default")
	}
	if created.TemplateKey != "classic" {
		t.Errorf("template fell back to %q, want classic", created.TemplateKey)
	}

	var sections []database.ResumeSection
	if err := db.Where("project_id = ?", created.ID).Order("sort_order ASC").Find(&sections).Error; err != nil {
		t.Fatalf("load sections: %v", err)
	}
	if len(sections) != resume.SectionsPerProject {
		t.Fatalf("section count = %d, want %d", len(sections), resume.SectionsPerProject)
	}
	if sections[0].Key != resume.SectionBasics || sections[0].Order != 1 {
		t.Errorf("first section = %s/%d", sections[0].Key, sections[0].Order)
	}
	if sections[10].Key != resume.SectionDeclaration || sections[10].Order != 11 {
		t.Errorf("last section = %s/%d", sections[10].Key, sections[10].Order)
	}
	for _, section := range sections {
		if !section.IsEnabled {
			t.Errorf("section %s starts disabled", section.Key)
		}
	}

	// The second project does not steal the default.
	w = doJSON(t, router, http.MethodPost, "/v1/projects", gin.H{"title": "Second"})
	mustStatus(t, w, http.StatusCreated)
	var second projectResponse
	decodeBody(t, w, &second)
	if second.IsDefault {
		t.Error("second project must not be the default")
	}
}

func TestCreateProjectValidation(t *testing.T) {
	db := newTestDB(t)
	seedTemplates(t, db)
	router := projectRouter(db, 1, false)

	w := doJSON(t, router, http.MethodPost, "/v1/projects", gin.H{"title": "   "})
	mustStatus(t, w, http.StatusBadRequest)

	w = doJSON(t, router, http.MethodPost, "/v1/projects", gin.H{"title": "x", "template_key": "nope"})
	mustStatus(t, w, http.StatusBadRequest)

	// Inactive templates read as unknown.
	w = doJSON(t, router, http.MethodPost, "/v1/projects", gin.H{"title": "x", "template_key": "retired"})
	mustStatus(t, w, http.StatusBadRequest)
}

func TestCreateProjectTierGate(t *testing.T) {
	db := newTestDB(t)
	seedTemplates(t, db)

	free := projectRouter(db, 1, false)
	w := doJSON(t, free, http.MethodPost, "/v1/projects", gin.H{"title": "x", "template_key": "minimal"})
	mustStatus(t, w, http.StatusPaymentRequired)

	var body map[string]any
	decodeBody(t, w, &body)
	if body["code"] != "PAYMENT_REQUIRED" {
		t.Errorf("code = %v", body["code"])
	}

	// The gate rejects before anything is written.
	var count int64
	if err := db.Model(&database.ResumeProject{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Errorf("project row created despite gate, count = %d", count)
	}

	paid := projectRouter(db, 2, true)
	w = doJSON(t, paid, http.MethodPost, "/v1/projects", gin.H{"title": "x", "template_key": "minimal"})
	mustStatus(t, w, http.StatusCreated)
}

func TestGetProjectScopedByOwner(t *testing.T) {
	db := newTestDB(t)
	seedTemplates(t, db)

	owner := projectRouter(db, 1, false)
	w := doJSON(t, owner, http.MethodPost, "/v1/projects", gin.H{"title": "Mine"})
	mustStatus(t, w, http.StatusCreated)
	var created projectResponse
	decodeBody(t, w, &created)

	w = doJSON(t, owner, http.MethodGet, fmt.Sprintf("/v1/projects/%d", created.ID), nil)
	mustStatus(t, w, http.StatusOK)
	var detail projectDetailResponse
	decodeBody(t, w, &detail)
	if len(detail.Sections) != resume.SectionsPerProject {
		t.Errorf("detail sections = %d", len(detail.Sections))
	}

	// Someone else's id reads as missing, not as forbidden.
	intruder := projectRouter(db, 2, false)
	w = doJSON(t, intruder, http.MethodGet, fmt.Sprintf("/v1/projects/%d", created.ID), nil)
	mustStatus(t, w, http.StatusNotFound)
}

func TestDeleteProjectPromotesSurvivor(t *testing.T) {
	db := newTestDB(t)
	seedTemplates(t, db)
	router := projectRouter(db, 1, false)

	var ids []uint
	for _, title := range []string{"One", "Two", "Three"} {
		w := doJSON(t, router, http.MethodPost, "/v1/projects", gin.H{"title": title})
		mustStatus(t, w, http.StatusCreated)
		var created projectResponse
		decodeBody(t, w, &created)
		ids = append(ids, created.ID)
	}

	// Make "Two" clearly the most recently updated survivor.
	if err := db.Model(&database.ResumeProject{}).Where("id = ?", ids[1]).
		Update("updated_at", time.Now().Add(time.Hour)).Error; err != nil {
		t.Fatalf("touch: %v", err)
	}

	w := doJSON(t, router, http.MethodDelete, fmt.Sprintf("/v1/projects/%d", ids[0]), nil)
	mustStatus(t, w, http.StatusNoContent)

	var defaults []database.ResumeProject
	if err := db.Where("user_id = ? AND is_default = ?", 1, true).Find(&defaults).Error; err != nil {
		t.Fatalf("load defaults: %v", err)
	}
	if len(defaults) != 1 || defaults[0].ID != ids[1] {
		t.Errorf("default after delete = %+v", defaults)
	}

	// Sections and items of the deleted project are gone.
	var sectionCount int64
	if err := db.Model(&database.ResumeSection{}).Where("project_id = ?", ids[0]).Count(&sectionCount).Error; err != nil {
		t.Fatalf("count sections: %v", err)
	}
	if sectionCount != 0 {
		t.Errorf("orphan sections = %d", sectionCount)
	}
}

func TestSetDefaultIsExclusive(t *testing.T) {
	db := newTestDB(t)
	seedTemplates(t, db)
	router := projectRouter(db, 1, false)

	var ids []uint
	for _, title := range []string{"One", "Two"} {
		w := doJSON(t, router, http.MethodPost, "/v1/projects", gin.H{"title": title})
		mustStatus(t, w, http.StatusCreated)
		var created projectResponse
		decodeBody(t, w, &created)
		ids = append(ids, created.ID)
	}

	w := doJSON(t, router, http.MethodPost, fmt.Sprintf("/v1/projects/%d/default", ids[1]), nil)
	mustStatus(t, w, http.StatusOK)

	var defaults []database.ResumeProject
	if err := db.Where("user_id = ? AND is_default = ?", 1, true).Find(&defaults).Error; err != nil {
		t.Fatalf("load defaults: %v", err)
	}
	if len(defaults) != 1 || defaults[0].ID != ids[1] {
		t.Errorf("defaults = %+v", defaults)
	}

	// Setting the same project again stays consistent.
	w = doJSON(t, router, http.MethodPost, fmt.Sprintf("/v1/projects/%d/default", ids[1]), nil)
	mustStatus(t, w, http.StatusOK)
	var count int64
	if err := db.Model(&database.ResumeProject{}).Where("user_id = ? AND is_default = ?", 1, true).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Errorf("default count = %d", count)
	}
}

func TestUpdateProjectTemplateGate(t *testing.T) {
	db := newTestDB(t)
	seedTemplates(t, db)
	router := projectRouter(db, 1, false)

	w := doJSON(t, router, http.MethodPost, "/v1/projects", gin.H{"title": "Mine"})
	mustStatus(t, w, http.StatusCreated)
	var created projectResponse
	decodeBody(t, w, &created)

	w = doJSON(t, router, http.MethodPatch, fmt.Sprintf("/v1/projects/%d", created.ID), gin.H{"template_key": "minimal"})
	mustStatus(t, w, http.StatusPaymentRequired)

	w = doJSON(t, router, http.MethodPatch, fmt.Sprintf("/v1/projects/%d", created.ID), gin.H{"title": "Renamed"})
	mustStatus(t, w, http.StatusOK)

	var reloaded database.ResumeProject
	if err := db.First(&reloaded, created.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.Title != "Renamed" {
		t.Errorf("title = %q", reloaded.Title)
	}
	if reloaded.TemplateKey != "classic" {
		t.Errorf("template changed despite gate: %q", reloaded.TemplateKey)
	}
}
