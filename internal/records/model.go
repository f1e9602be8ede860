package records

import (
	"strconv"
	"time"

	"resume-critic/internal/score"
)

// Phase identifies which completion produced a record.
type Phase string

const (
	PhaseAnalysis     Phase = "analysis"
	PhaseOptimization Phase = "optimization"
)

// Record is one append-only row in the record log.
type Record struct {
	ID              string
	Timestamp       time.Time
	SessionID       string
	Email           string
	Score           score.Result
	JobText         string
	ResumeText      string
	Analysis        string
	OptimizedResume string
	Phase           Phase
	Model           string
}

// Columns is the positional layout every tabular sink writes.
var Columns = []string{
	"timestamp",
	"email",
	"score",
	"job",
	"resume",
	"analysis",
	"optimized_resume",
	"phase",
	"session_id",
	"model",
}

// Row returns the record's cells in Columns order. A missing score is
// written as "N/A".
func (r Record) Row() []string {
	scoreCell := "N/A"
	if r.Score.Found {
		scoreCell = strconv.Itoa(r.Score.Value)
	}
	return []string{
		r.Timestamp.UTC().Format(time.RFC3339),
		r.Email,
		scoreCell,
		r.JobText,
		r.ResumeText,
		r.Analysis,
		r.OptimizedResume,
		string(r.Phase),
		r.SessionID,
		r.Model,
	}
}
