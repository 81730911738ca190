package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"

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
	if err := db.AutoMigrate(&database.ExampleItem{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestRepositoryCRUD(t *testing.T) {
	ctx := context.Background()
	items := New[database.ExampleItem](newTestDB(t))

	item := database.ExampleItem{UserID: 1, Title: "first", Content: "hello"}
	if err := items.Insert(ctx, &item); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if item.ID == 0 {
		t.Fatal("expected assigned ID")
	}

	got, err := items.Get(ctx, Where("id = ?", item.ID), Where("user_id = ?", 1))
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Title != "first" {
		t.Errorf("title = %q", got.Title)
	}

	// Owner scoping: another user's predicate reads as missing.
	if _, err := items.Get(ctx, Where("id = ?", item.ID), Where("user_id = ?", 2)); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	if err := items.Update(ctx, map[string]any{"title": "renamed"}, Where("id = ?", item.ID)); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, err = items.Get(ctx, Where("id = ?", item.ID))
	if err != nil {
		t.Fatalf("get after update: %v", err)
	}
	if got.Title != "renamed" {
		t.Errorf("title after update = %q", got.Title)
	}

	if err := items.Delete(ctx, Where("id = ?", item.ID)); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := items.Get(ctx, Where("id = ?", item.ID)); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestRepositoryPagination(t *testing.T) {
	ctx := context.Background()
	items := New[database.ExampleItem](newTestDB(t))

	for i := 1; i <= 7; i++ {
		item := database.ExampleItem{UserID: 1, Title: fmt.Sprintf("item-%d", i)}
		if err := items.Insert(ctx, &item); err != nil {
			t.Fatalf("insert %d: %v", i, err)
		}
	}

	page, err := items.GetPaginatedData(ctx, PageQuery{Page: 2, PageSize: 3, OrderBy: "id ASC"})
	if err != nil {
		t.Fatalf("paginate: %v", err)
	}
	if page.Total != 7 {
		t.Errorf("total = %d", page.Total)
	}
	if len(page.Data) != 3 {
		t.Fatalf("page size = %d", len(page.Data))
	}
	if page.Data[0].Title != "item-4" {
		t.Errorf("first of page 2 = %q", page.Data[0].Title)
	}

	// Out-of-range pages come back empty, never as an error.
	page, err = items.GetPaginatedData(ctx, PageQuery{Page: 5, PageSize: 3})
	if err != nil {
		t.Fatalf("paginate out of range: %v", err)
	}
	if len(page.Data) != 0 {
		t.Errorf("expected empty page, got %d", len(page.Data))
	}

	// Defaults kick in for nonsense paging values.
	page, err = items.GetPaginatedData(ctx, PageQuery{Page: 0, PageSize: 0})
	if err != nil {
		t.Fatalf("paginate defaults: %v", err)
	}
	if page.Page != 1 || page.PageSize != 25 {
		t.Errorf("defaults = page %d size %d", page.Page, page.PageSize)
	}

	list, err := items.GetData(ctx, Query{
		Where:   []Clause{Where("user_id = ?", 1)},
		OrderBy: "id DESC",
		Limit:   2,
	})
	if err != nil {
		t.Fatalf("get data: %v", err)
	}
	if len(list) != 2 || list[0].Title != "item-7" {
		t.Errorf("list = %v", list)
	}
}
