package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/coursegate/internal/db"
	"github.com/alexanderramin/coursegate/internal/domain"
	"github.com/google/uuid"
)

// SQLiteProgressRepo implements ProgressRepo using a SQLite database.
type SQLiteProgressRepo struct {
	db  db.DBTX
	now func() time.Time
}

func NewSQLiteProgressRepo(conn db.DBTX) *SQLiteProgressRepo {
	return &SQLiteProgressRepo{db: conn, now: nowUTC}
}

const progressColumns = `id, user_id, client_id, course_id, content_id, content_type,
	percentage, completed, status, view_count, play_count, payload,
	last_activity_at, completed_at, created_at, updated_at`

func (r *SQLiteProgressRepo) Get(ctx context.Context, key domain.ProgressKey) (*domain.ProgressRecord, error) {
	query := `SELECT ` + progressColumns + ` FROM progress_records
		WHERE user_id = ? AND client_id = ? AND course_id = ? AND content_id = ? AND content_type = ?`
	row := r.db.QueryRowContext(ctx, query,
		key.UserID, key.ClientID, key.CourseID, key.ContentID, string(key.ContentType))
	return scanProgress(row)
}

// Upsert loads the record for key (creating it on first interaction), applies
// delta and writes it back. A completed record is never downgraded; see
// domain.ProgressRecord.Apply.
func (r *SQLiteProgressRepo) Upsert(ctx context.Context, key domain.ProgressKey, delta domain.ProgressDelta) (*domain.ProgressRecord, error) {
	now := r.now()

	rec, err := r.Get(ctx, key)
	switch {
	case errors.Is(err, ErrNotFound):
		rec = domain.NewProgressRecord(uuid.New().String(), key, now)
		rec.Apply(delta, now)
		if err := r.insert(ctx, rec); err != nil {
			return nil, err
		}
		return rec, nil
	case err != nil:
		return nil, err
	}

	rec.Apply(delta, now)
	if err := r.update(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (r *SQLiteProgressRepo) insert(ctx context.Context, rec *domain.ProgressRecord) error {
	query := `INSERT INTO progress_records (` + progressColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		rec.ID,
		rec.UserID,
		rec.ClientID,
		rec.CourseID,
		rec.ContentID,
		string(rec.ContentType),
		rec.Percentage,
		boolToInt(rec.Completed),
		string(rec.Status),
		rec.ViewCount,
		rec.PlayCount,
		rec.Payload,
		formatTime(rec.LastActivityAt),
		nullableTimeToString(rec.CompletedAt),
		formatTime(rec.CreatedAt),
		formatTime(rec.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting progress record: %w", err)
	}
	return nil
}

// update repeats the completion ratchet in SQL so a writer racing outside a
// transaction still cannot clear a stored completion.
func (r *SQLiteProgressRepo) update(ctx context.Context, rec *domain.ProgressRecord) error {
	query := `UPDATE progress_records SET
			percentage       = CASE WHEN completed = 1 THEN percentage ELSE ? END,
			status           = CASE WHEN completed = 1 THEN status ELSE ? END,
			completed_at     = COALESCE(completed_at, ?),
			completed        = MAX(completed, ?),
			view_count       = MAX(view_count, ?),
			play_count       = MAX(play_count, ?),
			payload          = ?,
			last_activity_at = ?,
			updated_at       = ?
		WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query,
		rec.Percentage,
		string(rec.Status),
		nullableTimeToString(rec.CompletedAt),
		boolToInt(rec.Completed),
		rec.ViewCount,
		rec.PlayCount,
		rec.Payload,
		formatTime(rec.LastActivityAt),
		formatTime(rec.UpdatedAt),
		rec.ID,
	)
	if err != nil {
		return fmt.Errorf("updating progress record: %w", err)
	}
	return nil
}

func (r *SQLiteProgressRepo) ListByCourse(ctx context.Context, userID, clientID, courseID string) ([]*domain.ProgressRecord, error) {
	query := `SELECT ` + progressColumns + ` FROM progress_records
		WHERE user_id = ? AND client_id = ? AND course_id = ?
		ORDER BY last_activity_at DESC`
	rows, err := r.db.QueryContext(ctx, query, userID, clientID, courseID)
	if err != nil {
		return nil, fmt.Errorf("listing progress records: %w", err)
	}
	defer rows.Close()

	var records []*domain.ProgressRecord
	for rows.Next() {
		rec, err := scanProgress(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating progress records: %w", err)
	}
	return records, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProgress(row rowScanner) (*domain.ProgressRecord, error) {
	var rec domain.ProgressRecord
	var contentType, status string
	var completed int
	var lastActivityAt, createdAt, updatedAt string
	var completedAt sql.NullString

	err := row.Scan(
		&rec.ID, &rec.UserID, &rec.ClientID, &rec.CourseID, &rec.ContentID, &contentType,
		&rec.Percentage, &completed, &status, &rec.ViewCount, &rec.PlayCount, &rec.Payload,
		&lastActivityAt, &completedAt, &createdAt, &updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("progress record: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning progress record: %w", err)
	}

	rec.ContentType = domain.ContentType(contentType)
	rec.Status = domain.StatusLabel(status)
	rec.Completed = intToBool(completed)
	rec.CompletedAt = parseNullableTime(completedAt)

	var parseErr error
	if rec.LastActivityAt, parseErr = time.Parse(timeLayout, lastActivityAt); parseErr != nil {
		return nil, fmt.Errorf("parsing last_activity_at: %w", parseErr)
	}
	if rec.CreatedAt, parseErr = time.Parse(timeLayout, createdAt); parseErr != nil {
		return nil, fmt.Errorf("parsing created_at: %w", parseErr)
	}
	if rec.UpdatedAt, parseErr = time.Parse(timeLayout, updatedAt); parseErr != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", parseErr)
	}
	return &rec, nil
}
