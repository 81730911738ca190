package api

import (
	"log/slog"
	"net/http"
	"testing"
)

func TestListTemplatesLockedFlags(t *testing.T) {
	db := newTestDB(t)
	seedTemplates(t, db)

	router := newTestRouter()
	h := NewTemplateHandler(db, slog.Default())
	router.GET("/v1/templates", testAuth(1, false), h.ListTemplates)

	w := doJSON(t, router, http.MethodGet, "/v1/templates", nil)
	mustStatus(t, w, http.StatusOK)

	var body struct {
		Templates []templateResponse `json:"templates"`
	}
	decodeBody(t, w, &body)

	// The retired template stays hidden; the three active ones are listed.
	if len(body.Templates) != 3 {
		t.Fatalf("template count = %d", len(body.Templates))
	}
	for _, template := range body.Templates {
		wantLocked := template.Tier == "pro"
		if template.Locked != wantLocked {
			t.Errorf("template %s locked = %v, want %v", template.Key, template.Locked, wantLocked)
		}
	}
}

func TestListTemplatesPaidSeesEverythingUnlocked(t *testing.T) {
	db := newTestDB(t)
	seedTemplates(t, db)

	router := newTestRouter()
	h := NewTemplateHandler(db, slog.Default())
	router.GET("/v1/templates", testAuth(1, true), h.ListTemplates)

	w := doJSON(t, router, http.MethodGet, "/v1/templates", nil)
	mustStatus(t, w, http.StatusOK)

	var body struct {
		Templates []templateResponse `json:"templates"`
	}
	decodeBody(t, w, &body)
	for _, template := range body.Templates {
		if template.Locked {
			t.Errorf("template %s locked for paid caller", template.Key)
		}
	}
}
