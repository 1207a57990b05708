package repository

import (
	"context"
	"fmt"

	"github.com/alexanderramin/coursegate/internal/db"
	"github.com/alexanderramin/coursegate/internal/domain"
)

// SQLiteSubmissionRepo implements SubmissionRepo using a SQLite database.
type SQLiteSubmissionRepo struct {
	db db.DBTX
}

func NewSQLiteSubmissionRepo(conn db.DBTX) *SQLiteSubmissionRepo {
	return &SQLiteSubmissionRepo{db: conn}
}

func (r *SQLiteSubmissionRepo) Create(ctx context.Context, s *domain.Submission) error {
	if s.SubmittedAt.IsZero() {
		s.SubmittedAt = nowUTC()
	}
	query := `INSERT INTO submissions (id, kind, target_id, course_id, user_id, submitted_at)
		VALUES (?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		s.ID, string(s.Kind), s.TargetID, s.CourseID, s.UserID, formatTime(s.SubmittedAt))
	if err != nil {
		return fmt.Errorf("inserting submission: %w", err)
	}
	return nil
}

func (r *SQLiteSubmissionRepo) Exists(ctx context.Context, kind domain.SubmissionKind, courseID, userID, targetID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM submissions
		WHERE kind = ? AND course_id = ? AND user_id = ? AND target_id = ?)`
	var exists int
	if err := r.db.QueryRowContext(ctx, query, string(kind), courseID, userID, targetID).Scan(&exists); err != nil {
		return false, fmt.Errorf("checking submission: %w", err)
	}
	return intToBool(exists), nil
}
