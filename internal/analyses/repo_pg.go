package analyses

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"legal-backend/internal/legal"
	"legal-backend/internal/shared/pagination"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const selectColumns = `id, session_id, document_id, owner_id, mode, status, overall_risk, result,
       error_code, error_message, created_at, started_at, completed_at`

// Create inserts a new analysis.
func (r *PGRepo) Create(ctx context.Context, analysis Analysis) error {
	const query = `
INSERT INTO analyses (
    id,
    session_id,
    document_id,
    owner_id,
    mode,
    status,
    created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.DB.ExecContext(
		ctx,
		query,
		analysis.ID,
		analysis.SessionID,
		nullString(analysis.DocumentID),
		analysis.OwnerID,
		analysis.Mode,
		analysis.Status,
		analysis.CreatedAt,
	)
	return err
}

// GetByID returns an analysis by ID.
func (r *PGRepo) GetByID(ctx context.Context, analysisID string) (Analysis, error) {
	query := `
SELECT ` + selectColumns + `
FROM analyses
WHERE id = $1
LIMIT 1`
	a, err := scanAnalysis(r.DB.QueryRowContext(ctx, query, analysisID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Analysis{}, ErrNotFound
		}
		return Analysis{}, err
	}
	return a, nil
}

// UpdateStatus applies a status transition. Empty fields keep their stored values.
func (r *PGRepo) UpdateStatus(ctx context.Context, analysisID string, update StatusUpdate) error {
	const query = `
UPDATE analyses
SET status = COALESCE(NULLIF($2, ''), status),
    result = COALESCE($3::jsonb, result),
    overall_risk = COALESCE($4, overall_risk),
    error_code = COALESCE($5, error_code),
    error_message = COALESCE($6, error_message),
    started_at = COALESCE($7, started_at),
    completed_at = COALESCE($8, completed_at)
WHERE id = $1`

	var result, overallRisk sql.NullString
	if update.Result != nil {
		payload, err := json.Marshal(update.Result)
		if err != nil {
			return fmt.Errorf("marshal result: %w", err)
		}
		result = sql.NullString{String: string(payload), Valid: true}
		overallRisk = sql.NullString{String: string(update.Result.OverallRisk), Valid: true}
	}
	var errorMessage sql.NullString
	if update.ErrorMessage != nil {
		errorMessage = sql.NullString{String: *update.ErrorMessage, Valid: true}
	}

	res, err := r.DB.ExecContext(
		ctx,
		query,
		analysisID,
		update.Status,
		result,
		overallRisk,
		nullString(update.ErrorCode),
		errorMessage,
		nullTime(update.StartedAt),
		nullTime(update.CompletedAt),
	)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListByOwner lists analyses ordered newest-first.
func (r *PGRepo) ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]Analysis, error) {
	limit, offset = pagination.Clamp(limit, offset, pagination.MaxRepoLimit)
	query := `
SELECT ` + selectColumns + `
FROM analyses
WHERE owner_id = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`

	rows, err := r.DB.QueryContext(ctx, query, ownerID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Analysis{}
	for rows.Next() {
		a, err := scanAnalysis(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAnalysis(row rowScanner) (Analysis, error) {
	var a Analysis
	var documentID sql.NullString
	var overallRisk sql.NullString
	var result []byte
	var errorCode sql.NullString
	var errorMessage sql.NullString
	var startedAt sql.NullTime
	var completedAt sql.NullTime
	if err := row.Scan(
		&a.ID,
		&a.SessionID,
		&documentID,
		&a.OwnerID,
		&a.Mode,
		&a.Status,
		&overallRisk,
		&result,
		&errorCode,
		&errorMessage,
		&a.CreatedAt,
		&startedAt,
		&completedAt,
	); err != nil {
		return Analysis{}, err
	}
	if documentID.Valid {
		a.DocumentID = documentID.String
	}
	if overallRisk.Valid {
		a.OverallRisk = overallRisk.String
	}
	if len(result) > 0 {
		var r legal.AnalysisResult
		if err := json.Unmarshal(result, &r); err != nil {
			return Analysis{}, fmt.Errorf("decode result for analysis %s: %w", a.ID, err)
		}
		a.Result = &r
	}
	if errorCode.Valid {
		a.ErrorCode = errorCode.String
	}
	if errorMessage.Valid {
		a.ErrorMessage = &errorMessage.String
	}
	if startedAt.Valid {
		a.StartedAt = &startedAt.Time
	}
	if completedAt.Valid {
		a.CompletedAt = &completedAt.Time
	}
	return a, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

var _ Repo = (*PGRepo)(nil)
