package sessions

import (
	"errors"
	"time"

	"resume-critic/internal/score"
)

// State is a session's position in the two-phase flow.
type State string

const (
	StateIdle     State = "idle"
	StateAnalyzed State = "analyzed"
)

var (
	// ErrNotAnalyzed is returned when phase 2 is attempted before phase 1 succeeded.
	ErrNotAnalyzed = errors.New("session has no completed analysis")
	// ErrNotFound is returned by repos for unknown or expired sessions.
	ErrNotFound = errors.New("session not found")
)

// Session holds everything phase 2 needs from phase 1.
type Session struct {
	ID              string
	State           State
	Email           string
	ResumeText      string
	JobText         string
	Analysis        string
	Score           score.Result
	OptimizedResume string
	UploadKey       string
	Model           string
	CreatedAt       time.Time
	UpdatedAt       time.Time
	AnalyzedAt      *time.Time
	OptimizedAt     *time.Time
}

// AnalysisResult is the phase 1 output recorded on a session.
type AnalysisResult struct {
	Email      string
	ResumeText string
	JobText    string
	Analysis   string
	Score      score.Result
	UploadKey  string
	Model      string
}

// New returns an idle session.
func New(id string, now time.Time) Session {
	now = now.UTC()
	return Session{
		ID:        id,
		State:     StateIdle,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// CanOptimize reports whether phase 2 is reachable.
func (s Session) CanOptimize() bool {
	return s.State == StateAnalyzed
}

// RecordAnalysis moves the session to analyzed from any state. It replaces
// all phase 1 inputs and outputs and discards any earlier rewrite.
func (s *Session) RecordAnalysis(res AnalysisResult, now time.Time) {
	now = now.UTC()
	s.State = StateAnalyzed
	s.Email = res.Email
	s.ResumeText = res.ResumeText
	s.JobText = res.JobText
	s.Analysis = res.Analysis
	s.Score = res.Score
	s.UploadKey = res.UploadKey
	s.Model = res.Model
	s.OptimizedResume = ""
	s.OptimizedAt = nil
	s.AnalyzedAt = &now
	s.UpdatedAt = now
}

// RecordOptimization stores the rewritten résumé. The session stays analyzed
// so the rewrite can be requested again.
func (s *Session) RecordOptimization(text string, now time.Time) error {
	if !s.CanOptimize() {
		return ErrNotAnalyzed
	}
	now = now.UTC()
	s.OptimizedResume = text
	s.OptimizedAt = &now
	s.UpdatedAt = now
	return nil
}
