// Package dashboard computes the read-side summary the parent application
// renders on its launcher. The computation has no side effects; callers push
// the result over the activity webhook after most mutations.
package dashboard

import (
	"context"
	"math"
	"time"

	"gorm.io/gorm"

	"resumebuilder/internal/database"
	"resumebuilder/internal/resume"
)

// Summary is the versioned payload embedded in activity pushes.
type Summary struct {
	AppID                string   `json:"appId"`
	Version              int      `json:"version"`
	TotalResumes         int      `json:"totalResumes"`
	DefaultResumeTitle   *string  `json:"defaultResumeTitle"`
	LastUpdatedAt        string   `json:"lastUpdatedAt"`
	TemplatesUsed        []string `json:"templatesUsed"`
	SectionsEnabledCount *int     `json:"sectionsEnabledCount,omitempty"`
	CompletionHint       *int     `json:"completionHint,omitempty"`
}

// BuildSummary aggregates the caller's projects into a Summary. The latest
// update falls back to each project's creation timestamp and, with no
// projects at all, to the current time.
func BuildSummary(ctx context.Context, db *gorm.DB, userID uint) (Summary, error) {
	var projects []database.ResumeProject
	if err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("updated_at DESC, created_at DESC").
		Find(&projects).Error; err != nil {
		return Summary{}, err
	}

	summary := Summary{
		AppID:         "resume-builder",
		Version:       1,
		TotalResumes:  len(projects),
		TemplatesUsed: []string{},
	}

	var latest time.Time
	seenTemplates := map[string]bool{}
	for _, project := range projects {
		if project.IsDefault && summary.DefaultResumeTitle == nil {
			title := project.Title
			summary.DefaultResumeTitle = &title
		}
		if project.TemplateKey != "" && !seenTemplates[project.TemplateKey] {
			seenTemplates[project.TemplateKey] = true
			summary.TemplatesUsed = append(summary.TemplatesUsed, project.TemplateKey)
		}
		candidate := project.UpdatedAt
		if candidate.IsZero() {
			candidate = project.CreatedAt
		}
		if candidate.After(latest) {
			latest = candidate
		}
	}

	if latest.IsZero() {
		latest = time.Now().UTC()
	}
	summary.LastUpdatedAt = latest.UTC().Format(time.RFC3339)

	if len(projects) > 0 {
		projectIDs := make([]uint, 0, len(projects))
		for _, project := range projects {
			projectIDs = append(projectIDs, project.ID)
		}

		var enabled int64
		if err := db.WithContext(ctx).
			Model(&database.ResumeSection{}).
			Where("project_id IN ? AND is_enabled = ?", projectIDs, true).
			Count(&enabled).Error; err != nil {
			return Summary{}, err
		}

		enabledCount := int(enabled)
		summary.SectionsEnabledCount = &enabledCount

		denom := len(projects) * resume.SectionsPerProject
		hint := int(math.Round(float64(enabledCount) / float64(denom) * 100))
		if hint < 0 {
			hint = 0
		}
		if hint > 100 {
			hint = 100
		}
		summary.CompletionHint = &hint
	}

	return summary, nil
}
