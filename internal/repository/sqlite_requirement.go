package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/coursegate/internal/db"
	"github.com/alexanderramin/coursegate/internal/domain"
)

// SQLiteRequirementRepo implements RequirementRepo using a SQLite database.
type SQLiteRequirementRepo struct {
	db db.DBTX
}

func NewSQLiteRequirementRepo(conn db.DBTX) *SQLiteRequirementRepo {
	return &SQLiteRequirementRepo{db: conn}
}

func (r *SQLiteRequirementRepo) Create(ctx context.Context, req *domain.Requirement) error {
	if req.CreatedAt.IsZero() {
		req.CreatedAt = nowUTC()
	}
	query := `INSERT INTO requirements (id, course_id, phase, type, target_id, required, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		req.ID, req.CourseID, string(req.Phase), string(req.Type), req.TargetID,
		boolToInt(req.Required), formatTime(req.CreatedAt))
	if err != nil {
		return fmt.Errorf("inserting requirement: %w", err)
	}
	return nil
}

func (r *SQLiteRequirementRepo) ListByCourse(ctx context.Context, courseID string, phase domain.RequirementPhase) ([]*domain.Requirement, error) {
	query := `SELECT id, course_id, phase, type, target_id, required, created_at
		FROM requirements WHERE course_id = ? AND phase = ? ORDER BY created_at, id`
	rows, err := r.db.QueryContext(ctx, query, courseID, string(phase))
	if err != nil {
		return nil, fmt.Errorf("listing requirements: %w", err)
	}
	defer rows.Close()

	var reqs []*domain.Requirement
	for rows.Next() {
		var req domain.Requirement
		var phaseStr, typeStr, createdAt string
		var required int
		if err := rows.Scan(&req.ID, &req.CourseID, &phaseStr, &typeStr, &req.TargetID, &required, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning requirement row: %w", err)
		}
		req.Phase = domain.RequirementPhase(phaseStr)
		req.Type = domain.RequirementType(typeStr)
		req.Required = intToBool(required)
		if req.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
			return nil, fmt.Errorf("parsing requirement created_at: %w", err)
		}
		reqs = append(reqs, &req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating requirements: %w", err)
	}
	return reqs, nil
}
