package records

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
)

// SQLRepo appends records to the analysis_records table. The query uses $n
// placeholders, which both pgx and sqlite accept.
type SQLRepo struct {
	DB *sql.DB
}

func (r *SQLRepo) Append(ctx context.Context, rec Record) error {
	if err := validate(rec); err != nil {
		return err
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	const query = `
INSERT INTO analysis_records (id, recorded_at, email, score, job_text, resume_text, analysis, optimized_resume, phase, session_id, model)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.DB.ExecContext(ctx, query,
		rec.ID,
		rec.Timestamp.UTC(),
		rec.Email,
		nullableScore(rec),
		rec.JobText,
		rec.ResumeText,
		rec.Analysis,
		rec.OptimizedResume,
		string(rec.Phase),
		rec.SessionID,
		rec.Model,
	)
	return err
}

func nullableScore(rec Record) any {
	if !rec.Score.Found {
		return nil
	}
	return rec.Score.Value
}

var _ Sink = (*SQLRepo)(nil)
