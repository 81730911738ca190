// Package repository provides a thin generic CRUD wrapper over gorm.
// It performs no authorization itself: callers pass owner-scoped predicates
// and must treat "not found" and "not owned" as the same outcome.
package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// ErrNotFound is returned when a predicate matches no record.
var ErrNotFound = errors.New("record not found")

// Query shapes list reads.
type Query struct {
	Where   []Clause
	OrderBy string
	Limit   int
}

// PageQuery shapes paginated reads.
type PageQuery struct {
	Page     int
	PageSize int
	Where    []Clause
	OrderBy  string
}

// Clause is one conditional fragment with its arguments.
type Clause struct {
	Expr string
	Args []any
}

// Where builds a Clause.
func Where(expr string, args ...any) Clause {
	return Clause{Expr: expr, Args: args}
}

// Page is one page of results with its total count.
type Page[T any] struct {
	Data     []T   `json:"data"`
	Total    int64 `json:"total"`
	Page     int   `json:"page"`
	PageSize int   `json:"pageSize"`
}

// Repository instantiates the generic contract for one entity type.
type Repository[T any] struct {
	db *gorm.DB
}

// New builds a repository bound to db.
func New[T any](db *gorm.DB) *Repository[T] {
	return &Repository[T]{db: db}
}

// Insert persists a new record; gorm stamps both timestamps identically.
func (r *Repository[T]) Insert(ctx context.Context, record *T) error {
	return r.db.WithContext(ctx).Create(record).Error
}

// Get returns the first record matching the clauses, or ErrNotFound.
func (r *Repository[T]) Get(ctx context.Context, where ...Clause) (*T, error) {
	var record T
	tx := r.applyWhere(r.db.WithContext(ctx), where)
	if err := tx.First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &record, nil
}

// Update applies the patch to every record matching the clauses and stamps
// the update timestamp.
func (r *Repository[T]) Update(ctx context.Context, patch map[string]any, where ...Clause) error {
	var model T
	tx := r.applyWhere(r.db.WithContext(ctx).Model(&model), where)
	return tx.Updates(patch).Error
}

// Delete removes every record matching the clauses.
func (r *Repository[T]) Delete(ctx context.Context, where ...Clause) error {
	var model T
	tx := r.applyWhere(r.db.WithContext(ctx), where)
	return tx.Delete(&model).Error
}

// GetData lists records with optional ordering and limit.
func (r *Repository[T]) GetData(ctx context.Context, q Query) ([]T, error) {
	var records []T
	tx := r.applyWhere(r.db.WithContext(ctx), q.Where)
	if q.OrderBy != "" {
		tx = tx.Order(q.OrderBy)
	}
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}
	if err := tx.Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// GetPaginatedData lists one page of records along with the total count.
func (r *Repository[T]) GetPaginatedData(ctx context.Context, q PageQuery) (Page[T], error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = 25
	}

	var model T
	counted := r.applyWhere(r.db.WithContext(ctx).Model(&model), q.Where)

	var total int64
	if err := counted.Count(&total).Error; err != nil {
		return Page[T]{}, err
	}

	tx := r.applyWhere(r.db.WithContext(ctx), q.Where)
	if q.OrderBy != "" {
		tx = tx.Order(q.OrderBy)
	}
	tx = tx.Offset((q.Page - 1) * q.PageSize).Limit(q.PageSize)

	var records []T
	if err := tx.Find(&records).Error; err != nil {
		return Page[T]{}, err
	}

	return Page[T]{
		Data:     records,
		Total:    total,
		Page:     q.Page,
		PageSize: q.PageSize,
	}, nil
}

func (r *Repository[T]) applyWhere(tx *gorm.DB, where []Clause) *gorm.DB {
	for _, clause := range where {
		tx = tx.Where(clause.Expr, clause.Args...)
	}
	return tx
}
