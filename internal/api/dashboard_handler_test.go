package api

import (
	"log/slog"
	"net/http"
	"testing"

	"resumebuilder/internal/dashboard"
	"resumebuilder/internal/database"
	"resumebuilder/internal/resume"
)

func TestDashboardSummaryEndpoint(t *testing.T) {
	db := newTestDB(t)

	// Two projects with all sections enabled on one of them: 11 of 22
	// sections enabled rounds to a completion hint of 50.
	projects := []database.ResumeProject{
		{UserID: 1, Title: "Main", TemplateKey: "classic", IsDefault: true},
		{UserID: 1, Title: "Side", TemplateKey: "modern"},
	}
	for i := range projects {
		if err := db.Create(&projects[i]).Error; err != nil {
			t.Fatalf("create project: %v", err)
		}
	}
	for _, def := range resume.DefaultSections() {
		section := database.ResumeSection{ProjectID: projects[0].ID, Key: def.Key, Order: def.Order, IsEnabled: true}
		if err := db.Create(&section).Error; err != nil {
			t.Fatalf("create section: %v", err)
		}
		disabled := database.ResumeSection{ProjectID: projects[1].ID, Key: def.Key, Order: def.Order, IsEnabled: false}
		if err := db.Create(&disabled).Error; err != nil {
			t.Fatalf("create section: %v", err)
		}
	}

	router := newTestRouter()
	h := NewDashboardHandler(db, nil, slog.Default())
	router.GET("/v1/dashboard/summary", testAuth(1, false), h.Summary)

	w := doJSON(t, router, http.MethodGet, "/v1/dashboard/summary", nil)
	mustStatus(t, w, http.StatusOK)

	var summary dashboard.Summary
	decodeBody(t, w, &summary)

	if summary.TotalResumes != 2 {
		t.Errorf("totalResumes = %d", summary.TotalResumes)
	}
	if summary.DefaultResumeTitle == nil || *summary.DefaultResumeTitle != "Main" {
		t.Errorf("defaultResumeTitle = %v", summary.DefaultResumeTitle)
	}
	if summary.CompletionHint == nil || *summary.CompletionHint != 50 {
		t.Errorf("completionHint = %v", summary.CompletionHint)
	}
	if len(summary.TemplatesUsed) != 2 {
		t.Errorf("templatesUsed = %v", summary.TemplatesUsed)
	}
}
