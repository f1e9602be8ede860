package analyses

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"resume-critic/internal/extract"
	"resume-critic/internal/llm"
	"resume-critic/internal/records"
	"resume-critic/internal/score"
	"resume-critic/internal/sessions"
	"resume-critic/internal/shared/metrics"
	"resume-critic/internal/shared/storage/object"
	"resume-critic/internal/shared/telemetry"
)

// Service runs the two completion phases against a session.
type Service struct {
	Store    object.ObjectStore
	Sessions sessions.Repo
	Records  records.Sink
	Policy   records.FailurePolicy
	LLM      llm.Client
	Prompts  *llm.Prompts
	Now      func() time.Time
}

// AnalyzeInput is one phase 1 submission.
type AnalyzeInput struct {
	SessionID      string
	FileName       string
	File           io.Reader
	JobDescription string
	Email          string
	Consent        bool
}

// Outcome is the session after an operation plus any non-fatal warnings.
// From is the state the session was in before the operation.
type Outcome struct {
	Session  sessions.Session
	From     sessions.State
	Warnings []Warning
}

// Analyze archives and extracts the upload, requests the critique, appends
// an analysis record and moves the session to analyzed. An empty SessionID
// starts a new session.
func (s *Service) Analyze(ctx context.Context, in AnalyzeInput) (Outcome, error) {
	if err := validateAnalyzeInput(in); err != nil {
		return Outcome{}, err
	}
	metrics.IncAnalysisStarted()

	sessionID := strings.TrimSpace(in.SessionID)
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	email := strings.TrimSpace(in.Email)
	job := strings.TrimSpace(in.JobDescription)

	key, size, mimeType, err := s.Store.Save(ctx, sessionID, in.FileName, in.File)
	if err != nil {
		metrics.IncFailure("storage")
		return Outcome{}, fmt.Errorf("archive upload: %w", err)
	}
	telemetry.Info("analysis.upload.stored", map[string]any{
		"session_id": sessionID,
		"key":        key,
		"size_bytes": size,
		"mime_type":  mimeType,
	})

	resume, err := extract.ExtractText(ctx, s.Store, key, mimeType, in.FileName)
	if err != nil {
		metrics.IncFailure("extraction")
		telemetry.Warn("analysis.extract.failed", map[string]any{
			"session_id": sessionID,
			"key":        key,
			"err":        err.Error(),
		})
		return Outcome{}, fmt.Errorf("%w: %v", ErrExtraction, err)
	}
	if strings.TrimSpace(resume) == "" {
		metrics.IncFailure("extraction")
		telemetry.Warn("analysis.extract.empty", map[string]any{
			"session_id": sessionID,
			"key":        key,
		})
		return Outcome{}, fmt.Errorf("%w: no text found in upload", ErrExtraction)
	}

	req, err := s.Prompts.Analysis(resume, job)
	if err != nil {
		return Outcome{}, fmt.Errorf("build analysis prompt: %w", err)
	}
	analysis, err := s.complete(ctx, sessionID, records.PhaseAnalysis, req)
	if err != nil {
		return Outcome{}, err
	}

	parsed := score.Parse(analysis)
	if !parsed.Found {
		metrics.IncScoreMissing()
		telemetry.Warn("analysis.score.missing", map[string]any{"session_id": sessionID})
	}

	sess, err := s.loadOrNew(ctx, sessionID)
	if err != nil {
		return Outcome{}, err
	}
	from := sess.State

	now := s.now()
	model := llm.ModelOf(s.LLM)
	warnings, err := s.appendRecord(ctx, records.Record{
		ID:         uuid.NewString(),
		Timestamp:  now,
		SessionID:  sessionID,
		Email:      email,
		Score:      parsed,
		JobText:    job,
		ResumeText: resume,
		Analysis:   analysis,
		Phase:      records.PhaseAnalysis,
		Model:      model,
	})
	if err != nil {
		return Outcome{}, err
	}

	sess.RecordAnalysis(sessions.AnalysisResult{
		Email:      email,
		ResumeText: resume,
		JobText:    job,
		Analysis:   analysis,
		Score:      parsed,
		UploadKey:  key,
		Model:      model,
	}, now)
	if err := s.Sessions.Save(ctx, sess); err != nil {
		return Outcome{}, fmt.Errorf("save session: %w", err)
	}

	metrics.IncAnalysisCompleted()
	return Outcome{Session: sess, From: from, Warnings: warnings}, nil
}

// Optimize rewrites the analyzed résumé using the stored phase 1 context and
// appends an optimization record as a new row.
func (s *Service) Optimize(ctx context.Context, sessionID string) (Outcome, error) {
	if strings.TrimSpace(sessionID) == "" {
		return Outcome{}, ErrAnalysisRequired
	}
	sess, err := s.Sessions.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, sessions.ErrNotFound) {
			return Outcome{}, ErrAnalysisRequired
		}
		return Outcome{}, fmt.Errorf("load session: %w", err)
	}
	if !sess.CanOptimize() {
		return Outcome{}, ErrAnalysisRequired
	}

	req, err := s.Prompts.Optimization(sess.ResumeText, sess.JobText, sess.Analysis)
	if err != nil {
		return Outcome{}, fmt.Errorf("build optimization prompt: %w", err)
	}
	rewritten, err := s.complete(ctx, sessionID, records.PhaseOptimization, req)
	if err != nil {
		return Outcome{}, err
	}

	now := s.now()
	warnings, err := s.appendRecord(ctx, records.Record{
		ID:              uuid.NewString(),
		Timestamp:       now,
		SessionID:       sessionID,
		Email:           sess.Email,
		Score:           sess.Score,
		JobText:         sess.JobText,
		ResumeText:      sess.ResumeText,
		Analysis:        sess.Analysis,
		OptimizedResume: rewritten,
		Phase:           records.PhaseOptimization,
		Model:           llm.ModelOf(s.LLM),
	})
	if err != nil {
		return Outcome{}, err
	}

	if err := sess.RecordOptimization(rewritten, now); err != nil {
		return Outcome{}, ErrAnalysisRequired
	}
	if err := s.Sessions.Save(ctx, sess); err != nil {
		return Outcome{}, fmt.Errorf("save session: %w", err)
	}

	metrics.IncOptimizationCompleted()
	return Outcome{Session: sess, From: sessions.StateAnalyzed, Warnings: warnings}, nil
}

// Current returns the stored session, or a fresh idle one when none exists.
func (s *Service) Current(ctx context.Context, sessionID string) (sessions.Session, error) {
	if strings.TrimSpace(sessionID) == "" {
		return sessions.New("", s.now()), nil
	}
	return s.loadOrNew(ctx, sessionID)
}

// Reset discards all state held for the session.
func (s *Service) Reset(ctx context.Context, sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return nil
	}
	return s.Sessions.Delete(ctx, sessionID)
}

func (s *Service) complete(ctx context.Context, sessionID string, phase records.Phase, req llm.Request) (string, error) {
	start := time.Now()
	out, err := s.LLM.Complete(ctx, req)
	metrics.ObserveCompletionDurationMs(float64(time.Since(start).Milliseconds()))
	if err != nil {
		metrics.IncFailure("completion")
		telemetry.Error("analysis.completion.failed", map[string]any{
			"session_id": sessionID,
			"phase":      string(phase),
			"err":        err.Error(),
		})
		return "", fmt.Errorf("%w: %v", ErrCompletion, err)
	}
	return out, nil
}

// appendRecord applies the failure policy: under warn a failed append becomes
// a warning, under fail it aborts the operation before the session moves.
func (s *Service) appendRecord(ctx context.Context, rec records.Record) ([]Warning, error) {
	if s.Records == nil {
		return nil, nil
	}
	err := s.Records.Append(ctx, rec)
	if err == nil {
		return nil, nil
	}
	metrics.IncRecordFailure()
	telemetry.Warn("records.append.failed", map[string]any{
		"session_id": rec.SessionID,
		"phase":      string(rec.Phase),
		"policy":     string(s.Policy),
		"err":        err.Error(),
	})
	if s.Policy == records.PolicyFail {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return []Warning{{
		Code:    warnRecordNotSaved,
		Message: "The result was not saved to the record log.",
	}}, nil
}

func (s *Service) loadOrNew(ctx context.Context, sessionID string) (sessions.Session, error) {
	sess, err := s.Sessions.Get(ctx, sessionID)
	if err == nil {
		return sess, nil
	}
	if errors.Is(err, sessions.ErrNotFound) {
		return sessions.New(sessionID, s.now()), nil
	}
	return sessions.Session{}, fmt.Errorf("load session: %w", err)
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}
