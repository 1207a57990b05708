package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/coursegate/internal/db"
	"github.com/alexanderramin/coursegate/internal/domain"
)

// SQLiteContentRepo implements ContentRepo using a SQLite database.
type SQLiteContentRepo struct {
	db db.DBTX
}

func NewSQLiteContentRepo(conn db.DBTX) *SQLiteContentRepo {
	return &SQLiteContentRepo{db: conn}
}

func (r *SQLiteContentRepo) CreateModule(ctx context.Context, m *domain.Module) error {
	if m.CreatedAt.IsZero() {
		m.CreatedAt = nowUTC()
	}
	query := `INSERT INTO modules (id, course_id, title, order_index, created_at) VALUES (?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query, m.ID, m.CourseID, m.Title, m.OrderIndex, formatTime(m.CreatedAt))
	if err != nil {
		return fmt.Errorf("inserting module: %w", err)
	}
	return nil
}

func (r *SQLiteContentRepo) CreateItem(ctx context.Context, c *domain.ContentItem) error {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = nowUTC()
	}
	query := `INSERT INTO module_contents
		(join_id, source_id, module_id, course_id, type, title, order_index, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		c.JoinID, c.SourceID, c.ModuleID, c.CourseID, string(c.Type), c.Title, c.OrderIndex, formatTime(c.CreatedAt))
	if err != nil {
		return fmt.Errorf("inserting module content: %w", err)
	}
	return nil
}

func (r *SQLiteContentRepo) ListModules(ctx context.Context, courseID string) ([]*domain.Module, error) {
	query := `SELECT id, course_id, title, order_index, created_at
		FROM modules WHERE course_id = ? ORDER BY order_index, created_at`
	rows, err := r.db.QueryContext(ctx, query, courseID)
	if err != nil {
		return nil, fmt.Errorf("listing modules: %w", err)
	}
	defer rows.Close()

	var modules []*domain.Module
	for rows.Next() {
		var m domain.Module
		var createdAt string
		if err := rows.Scan(&m.ID, &m.CourseID, &m.Title, &m.OrderIndex, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning module row: %w", err)
		}
		if m.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
			return nil, fmt.Errorf("parsing module created_at: %w", err)
		}
		modules = append(modules, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating modules: %w", err)
	}
	return modules, nil
}

const contentColumns = `join_id, source_id, module_id, course_id, type, title, order_index, created_at`

func (r *SQLiteContentRepo) ListItems(ctx context.Context, moduleID string) ([]*domain.ContentItem, error) {
	query := `SELECT ` + contentColumns + ` FROM module_contents
		WHERE module_id = ? ORDER BY order_index, created_at`
	rows, err := r.db.QueryContext(ctx, query, moduleID)
	if err != nil {
		return nil, fmt.Errorf("listing module contents: %w", err)
	}
	defer rows.Close()

	var items []*domain.ContentItem
	for rows.Next() {
		item, err := scanContentItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating module contents: %w", err)
	}
	return items, nil
}

func (r *SQLiteContentRepo) FindItem(ctx context.Context, courseID, id string) (*domain.ContentItem, error) {
	query := `SELECT ` + contentColumns + ` FROM module_contents
		WHERE course_id = ? AND join_id = ?`
	item, err := scanContentItem(r.db.QueryRowContext(ctx, query, courseID, id))
	if err == nil || !errors.Is(err, ErrNotFound) {
		return item, err
	}

	query = `SELECT ` + contentColumns + ` FROM module_contents
		WHERE course_id = ? AND source_id = ? ORDER BY order_index LIMIT 1`
	return scanContentItem(r.db.QueryRowContext(ctx, query, courseID, id))
}

func scanContentItem(row rowScanner) (*domain.ContentItem, error) {
	var c domain.ContentItem
	var contentType, createdAt string
	err := row.Scan(&c.JoinID, &c.SourceID, &c.ModuleID, &c.CourseID, &contentType, &c.Title, &c.OrderIndex, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("content item: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning content item: %w", err)
	}
	c.Type = domain.ContentType(contentType)
	if c.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
		return nil, fmt.Errorf("parsing content created_at: %w", err)
	}
	return &c, nil
}
