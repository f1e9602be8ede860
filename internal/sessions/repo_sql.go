package sessions

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// SQLRepo stores sessions in the sessions table. Get treats rows idle longer
// than TTL as missing, matching MemoryRepo; the sweeper deletes them later.
type SQLRepo struct {
	DB  *sql.DB
	TTL time.Duration
	Now func() time.Time
}

func (r *SQLRepo) Get(ctx context.Context, id string) (Session, error) {
	const query = `
SELECT id, state, email, resume_text, job_text, analysis, score, score_found,
       optimized_resume, upload_key, model, created_at, updated_at, analyzed_at, optimized_at
FROM sessions
WHERE id = $1`
	var s Session
	var state string
	var analyzedAt sql.NullTime
	var optimizedAt sql.NullTime
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&s.ID,
		&state,
		&s.Email,
		&s.ResumeText,
		&s.JobText,
		&s.Analysis,
		&s.Score.Value,
		&s.Score.Found,
		&s.OptimizedResume,
		&s.UploadKey,
		&s.Model,
		&s.CreatedAt,
		&s.UpdatedAt,
		&analyzedAt,
		&optimizedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Session{}, ErrNotFound
		}
		return Session{}, err
	}
	if r.expired(s) {
		return Session{}, ErrNotFound
	}
	s.State = State(state)
	s.AnalyzedAt = timePtr(analyzedAt)
	s.OptimizedAt = timePtr(optimizedAt)
	return s, nil
}

func (r *SQLRepo) expired(s Session) bool {
	if r.TTL <= 0 {
		return false
	}
	now := time.Now
	if r.Now != nil {
		now = r.Now
	}
	return now().Sub(s.UpdatedAt) > r.TTL
}

func (r *SQLRepo) Save(ctx context.Context, s Session) error {
	const query = `
INSERT INTO sessions (id, state, email, resume_text, job_text, analysis, score, score_found,
                      optimized_resume, upload_key, model, created_at, updated_at, analyzed_at, optimized_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
ON CONFLICT (id) DO UPDATE SET
  state = EXCLUDED.state,
  email = EXCLUDED.email,
  resume_text = EXCLUDED.resume_text,
  job_text = EXCLUDED.job_text,
  analysis = EXCLUDED.analysis,
  score = EXCLUDED.score,
  score_found = EXCLUDED.score_found,
  optimized_resume = EXCLUDED.optimized_resume,
  upload_key = EXCLUDED.upload_key,
  model = EXCLUDED.model,
  updated_at = EXCLUDED.updated_at,
  analyzed_at = EXCLUDED.analyzed_at,
  optimized_at = EXCLUDED.optimized_at`
	_, err := r.DB.ExecContext(ctx, query,
		s.ID,
		string(s.State),
		s.Email,
		s.ResumeText,
		s.JobText,
		s.Analysis,
		s.Score.Value,
		s.Score.Found,
		s.OptimizedResume,
		s.UploadKey,
		s.Model,
		s.CreatedAt.UTC(),
		s.UpdatedAt.UTC(),
		nullableTime(s.AnalyzedAt),
		nullableTime(s.OptimizedAt),
	)
	return err
}

func (r *SQLRepo) Delete(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	return err
}

// DeleteIdleBefore removes sessions not updated since cutoff.
func (r *SQLRepo) DeleteIdleBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM sessions WHERE updated_at < $1`, cutoff.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time.UTC()
	return &v
}

var _ Repo = (*SQLRepo)(nil)
