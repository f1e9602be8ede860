package analyses

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"resume-critic/internal/llm"
	"resume-critic/internal/records"
	"resume-critic/internal/sessions"
	"resume-critic/internal/shared/storage/object/local"
)

// scriptedLLM returns its replies in order and records every request.
type scriptedLLM struct {
	mu      sync.Mutex
	replies []string
	err     error
	calls   []llm.Request
}

func (s *scriptedLLM) Complete(ctx context.Context, req llm.Request) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, req)
	if s.err != nil {
		return "", s.err
	}
	if len(s.replies) == 0 {
		return "", llm.ErrEmptyCompletion
	}
	out := s.replies[0]
	s.replies = s.replies[1:]
	return out, nil
}

func (s *scriptedLLM) Model() string { return "test-model" }

func (s *scriptedLLM) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

type failingSink struct{}

func (failingSink) Append(ctx context.Context, rec records.Record) error {
	return errors.New("sheets: connection reset")
}

type fixture struct {
	svc      *Service
	llm      *scriptedLLM
	records  *records.MemoryRepo
	sessions *sessions.MemoryRepo
}

var fixedNow = time.Date(2026, time.May, 4, 9, 30, 0, 0, time.UTC)

func newFixture(t *testing.T, replies ...string) *fixture {
	t.Helper()
	prompts, err := llm.LoadPrompts("")
	if err != nil {
		t.Fatalf("load prompts: %v", err)
	}
	prompts.Temperature = llm.Temperature(0.7)

	fake := &scriptedLLM{replies: replies}
	recs := records.NewMemoryRepo()
	sess := sessions.NewMemoryRepo(0, nil)
	return &fixture{
		svc: &Service{
			Store:    local.New(t.TempDir()),
			Sessions: sess,
			Records:  recs,
			Policy:   records.PolicyWarn,
			LLM:      fake,
			Prompts:  prompts,
			Now:      func() time.Time { return fixedNow },
		},
		llm:      fake,
		records:  recs,
		sessions: sess,
	}
}
