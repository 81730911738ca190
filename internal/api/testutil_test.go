package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"resumebuilder/internal/database"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// testPublisher builds a publisher with no queue and no cache behind it; the
// nil collaborators turn Publish into a no-op, which is what handler tests
// want.
func testPublisher(db *gorm.DB) *ActivityPublisher {
	return NewActivityPublisher(db, nil, nil, slog.Default())
}

// testAuth stamps a fixed identity onto every request the way the real auth
// middleware would.
func testAuth(userID uint, isPaid bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("userID", userID)
		c.Set("isPaid", isPaid)
		c.Next()
	}
}

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Buffer
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewBuffer(encoded)
	} else {
		reader = &bytes.Buffer{}
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, target any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), target); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
}

func seedTemplates(t *testing.T, db *gorm.DB) {
	t.Helper()
	templates := []database.ResumeTemplate{
		{Key: "classic", Name: "Classic", Tier: "free", IsActive: true, IsDefault: true},
		{Key: "modern", Name: "Modern", Tier: "free", IsActive: true},
		{Key: "minimal", Name: "Minimal", Tier: "pro", IsActive: true},
		{Key: "retired", Name: "Retired", Tier: "free", IsActive: false},
	}
	for i := range templates {
		if err := db.Create(&templates[i]).Error; err != nil {
			t.Fatalf("seed template: %v", err)
		}
	}
}

func mustStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	if w.Code != want {
		t.Fatalf("status = %d, want %d (body %s)", w.Code, want, w.Body.String())
	}
}
