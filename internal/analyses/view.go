package analyses

import (
	"time"

	"resume-critic/internal/sessions"
)

// ScoreView is the presentation form of a parsed score.
type ScoreView struct {
	Value    int     `json:"value"`
	Found    bool    `json:"found"`
	Display  string  `json:"display"`
	Fraction float64 `json:"fraction"`
	Band     string  `json:"band"`
}

// SessionView is the response body for every session route.
type SessionView struct {
	SessionID       string     `json:"sessionId"`
	State           string     `json:"state"`
	CanOptimize     bool       `json:"canOptimize"`
	Email           string     `json:"email,omitempty"`
	Analysis        string     `json:"analysis"`
	OptimizedResume string     `json:"optimizedResume"`
	Score           ScoreView  `json:"score"`
	AnalyzedAt      *time.Time `json:"analyzedAt,omitempty"`
	OptimizedAt     *time.Time `json:"optimizedAt,omitempty"`
	Warnings        []Warning  `json:"warnings"`
}

// NewView renders a session for the client.
func NewView(s sessions.Session, warnings []Warning) SessionView {
	if warnings == nil {
		warnings = []Warning{}
	}
	return SessionView{
		SessionID:       s.ID,
		State:           string(s.State),
		CanOptimize:     s.CanOptimize(),
		Email:           s.Email,
		Analysis:        s.Analysis,
		OptimizedResume: s.OptimizedResume,
		Score: ScoreView{
			Value:    s.Score.Value,
			Found:    s.Score.Found,
			Display:  s.Score.Display(),
			Fraction: s.Score.Fraction(),
			Band:     s.Score.Band(),
		},
		AnalyzedAt:  s.AnalyzedAt,
		OptimizedAt: s.OptimizedAt,
		Warnings:    warnings,
	}
}
