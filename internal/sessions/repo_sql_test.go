package sessions

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"resume-critic/internal/score"
)

func TestSQLRepoSaveUpserts(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	s := New("s-1", t0)
	s.RecordAnalysis(AnalysisResult{
		Email:      "a@b.com",
		ResumeText: "cv",
		JobText:    "job",
		Analysis:   "Nota: 55%",
		Score:      score.Result{Value: 55, Found: true},
		UploadKey:  "abc/cv.pdf",
		Model:      "gpt-4o",
	}, t0.Add(time.Minute))

	mock.ExpectExec("INSERT INTO sessions").
		WithArgs(
			"s-1",
			"analyzed",
			"a@b.com",
			"cv",
			"job",
			"Nota: 55%",
			55,
			true,
			"",
			"abc/cv.pdf",
			"gpt-4o",
			t0,
			t0.Add(time.Minute),
			t0.Add(time.Minute),
			nil,
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := (&SQLRepo{DB: db}).Save(context.Background(), s); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestSQLRepoGet(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	analyzed := t0.Add(time.Minute)
	rows := sqlmock.NewRows([]string{
		"id", "state", "email", "resume_text", "job_text", "analysis", "score", "score_found",
		"optimized_resume", "upload_key", "model", "created_at", "updated_at", "analyzed_at", "optimized_at",
	}).AddRow("s-1", "analyzed", "a@b.com", "cv", "job", "Nota: 55%", 55, true, "", "key", "gpt-4o", t0, analyzed, analyzed, nil)
	mock.ExpectQuery("SELECT id, state").WithArgs("s-1").WillReturnRows(rows)

	got, err := (&SQLRepo{DB: db}).Get(context.Background(), "s-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !got.CanOptimize() || got.Score.Value != 55 || !got.Score.Found {
		t.Fatalf("unexpected session %+v", got)
	}
	if got.AnalyzedAt == nil || got.OptimizedAt != nil {
		t.Fatalf("unexpected timestamps %+v", got)
	}
}

func TestSQLRepoGetNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	mock.ExpectQuery("SELECT id, state").WithArgs("nope").WillReturnError(sql.ErrNoRows)

	if _, err := (&SQLRepo{DB: db}).Get(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSQLRepoGetExpired(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	columns := []string{
		"id", "state", "email", "resume_text", "job_text", "analysis", "score", "score_found",
		"optimized_resume", "upload_key", "model", "created_at", "updated_at", "analyzed_at", "optimized_at",
	}
	for i := 0; i < 2; i++ {
		rows := sqlmock.NewRows(columns).
			AddRow("s-1", "analyzed", "a@b.com", "cv", "job", "Nota: 55%", 55, true, "", "key", "gpt-4o", t0, t0, t0, nil)
		mock.ExpectQuery("SELECT id, state").WithArgs("s-1").WillReturnRows(rows)
	}

	now := t0.Add(time.Hour)
	repo := &SQLRepo{DB: db, TTL: time.Hour, Now: func() time.Time { return now }}
	if _, err := repo.Get(context.Background(), "s-1"); err != nil {
		t.Fatalf("expected session at exactly the TTL, got %v", err)
	}

	now = t0.Add(time.Hour + time.Second)
	if _, err := repo.Get(context.Background(), "s-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after TTL, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}
