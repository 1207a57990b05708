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

// SQLiteAttemptRepo implements AttemptRepo using a SQLite database.
type SQLiteAttemptRepo struct {
	db db.DBTX
}

func NewSQLiteAttemptRepo(conn db.DBTX) *SQLiteAttemptRepo {
	return &SQLiteAttemptRepo{db: conn}
}

func (r *SQLiteAttemptRepo) Create(ctx context.Context, a *domain.AssessmentAttempt) error {
	if a.AttemptedAt.IsZero() {
		a.AttemptedAt = nowUTC()
	}
	query := `INSERT INTO assessment_attempts
		(id, assessment_id, course_id, user_id, graded, passed, score, attempted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		a.ID, a.AssessmentID, a.CourseID, a.UserID,
		boolToInt(a.Graded), nullableBoolToValue(a.Passed), a.Score, formatTime(a.AttemptedAt))
	if err != nil {
		return fmt.Errorf("inserting assessment attempt: %w", err)
	}
	return nil
}

// Latest returns the most recent attempt, or ErrNotFound if the learner
// never attempted the assessment.
func (r *SQLiteAttemptRepo) Latest(ctx context.Context, courseID, userID, assessmentID string) (*domain.AssessmentAttempt, error) {
	query := `SELECT ` + attemptColumns + `
		FROM assessment_attempts
		WHERE course_id = ? AND user_id = ? AND assessment_id = ?
		ORDER BY attempted_at DESC, id DESC LIMIT 1`
	return scanAttempt(r.db.QueryRowContext(ctx, query, courseID, userID, assessmentID))
}

// LatestGraded returns the most recent attempt carrying a pass/fail result,
// or ErrNotFound when no attempt has been graded yet.
func (r *SQLiteAttemptRepo) LatestGraded(ctx context.Context, courseID, userID, assessmentID string) (*domain.AssessmentAttempt, error) {
	query := `SELECT ` + attemptColumns + `
		FROM assessment_attempts
		WHERE course_id = ? AND user_id = ? AND assessment_id = ?
			AND graded = 1 AND passed IS NOT NULL
		ORDER BY attempted_at DESC, id DESC LIMIT 1`
	return scanAttempt(r.db.QueryRowContext(ctx, query, courseID, userID, assessmentID))
}

const attemptColumns = `id, assessment_id, course_id, user_id, graded, passed, score, attempted_at`

func scanAttempt(row *sql.Row) (*domain.AssessmentAttempt, error) {
	var a domain.AssessmentAttempt
	var graded int
	var passed sql.NullInt64
	var attemptedAt string
	err := row.Scan(&a.ID, &a.AssessmentID, &a.CourseID, &a.UserID, &graded, &passed, &a.Score, &attemptedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("assessment attempt: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning assessment attempt: %w", err)
	}
	a.Graded = intToBool(graded)
	a.Passed = parseNullableBool(passed)
	if a.AttemptedAt, err = time.Parse(timeLayout, attemptedAt); err != nil {
		return nil, fmt.Errorf("parsing attempted_at: %w", err)
	}
	return &a, nil
}
