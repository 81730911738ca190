package dashboard

import (
	"context"
	"fmt"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"resumebuilder/internal/database"
	"resumebuilder/internal/resume"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&database.ResumeProject{}, &database.ResumeSection{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedProject(t *testing.T, db *gorm.DB, userID uint, title, template string, isDefault bool, enabledSections int) database.ResumeProject {
	t.Helper()
	project := database.ResumeProject{UserID: userID, Title: title, TemplateKey: template, IsDefault: isDefault}
	if err := db.Create(&project).Error; err != nil {
		t.Fatalf("create project: %v", err)
	}
	for i, def := range resume.DefaultSections() {
		section := database.ResumeSection{
			ProjectID: project.ID,
			Key:       def.Key,
			Order:     def.Order,
			IsEnabled: i < enabledSections,
		}
		if err := db.Create(&section).Error; err != nil {
			t.Fatalf("create section: %v", err)
		}
	}
	return project
}

func TestBuildSummaryEmpty(t *testing.T) {
	db := newTestDB(t)

	summary, err := BuildSummary(context.Background(), db, 1)
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	if summary.AppID != "resume-builder" || summary.Version != 1 {
		t.Errorf("envelope = %+v", summary)
	}
	if summary.TotalResumes != 0 {
		t.Errorf("totalResumes = %d", summary.TotalResumes)
	}
	if summary.DefaultResumeTitle != nil {
		t.Errorf("defaultResumeTitle = %v", *summary.DefaultResumeTitle)
	}
	if summary.SectionsEnabledCount != nil || summary.CompletionHint != nil {
		t.Error("optional counters must be absent with no projects")
	}
	if len(summary.TemplatesUsed) != 0 {
		t.Errorf("templatesUsed = %v", summary.TemplatesUsed)
	}
	// With no projects the timestamp falls back to now.
	if _, err := time.Parse(time.RFC3339, summary.LastUpdatedAt); err != nil {
		t.Errorf("lastUpdatedAt not RFC3339: %q", summary.LastUpdatedAt)
	}
}

func TestBuildSummaryAggregates(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	// Two projects, 11 sections enabled in total: hint = 11/22 -> 50.
	seedProject(t, db, 1, "Main", "classic", true, resume.SectionsPerProject)
	seedProject(t, db, 1, "Side", "modern", false, 0)
	seedProject(t, db, 2, "Other user", "classic", true, 3)

	summary, err := BuildSummary(ctx, db, 1)
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	if summary.TotalResumes != 2 {
		t.Errorf("totalResumes = %d", summary.TotalResumes)
	}
	if summary.DefaultResumeTitle == nil || *summary.DefaultResumeTitle != "Main" {
		t.Errorf("defaultResumeTitle = %v", summary.DefaultResumeTitle)
	}
	if len(summary.TemplatesUsed) != 2 {
		t.Errorf("templatesUsed = %v", summary.TemplatesUsed)
	}
	if summary.SectionsEnabledCount == nil || *summary.SectionsEnabledCount != resume.SectionsPerProject {
		t.Errorf("sectionsEnabledCount = %v", summary.SectionsEnabledCount)
	}
	if summary.CompletionHint == nil || *summary.CompletionHint != 50 {
		t.Errorf("completionHint = %v", summary.CompletionHint)
	}
}

func TestBuildSummaryHintClamped(t *testing.T) {
	db := newTestDB(t)

	// Every section enabled on a single project: exactly 100, never above.
	seedProject(t, db, 1, "Full", "classic", true, resume.SectionsPerProject)

	summary, err := BuildSummary(context.Background(), db, 1)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if summary.CompletionHint == nil || *summary.CompletionHint != 100 {
		t.Errorf("completionHint = %v", summary.CompletionHint)
	}
}
