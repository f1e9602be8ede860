package llm

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestAnalysisPromptCarriesInputsInUserMessage(t *testing.T) {
	p, err := LoadPrompts("")
	if err != nil {
		t.Fatalf("LoadPrompts: %v", err)
	}
	req, err := p.Analysis("Go developer, 5 years", "Backend Engineer {{.Resume}}")
	if err != nil {
		t.Fatalf("Analysis: %v", err)
	}
	if !strings.Contains(req.System, "Minha Nota") {
		t.Fatalf("system prompt must ask for a score line")
	}
	if strings.Contains(req.System, "Go developer") {
		t.Fatalf("user text leaked into system prompt")
	}
	if !strings.Contains(req.User, "Go developer, 5 years") {
		t.Fatalf("resume missing from user message: %q", req.User)
	}
	if !strings.Contains(req.User, "Backend Engineer {{.Resume}}") {
		t.Fatalf("job text must be inserted verbatim: %q", req.User)
	}
}

func TestOptimizationPromptIncludesPriorAnalysis(t *testing.T) {
	p, err := LoadPrompts("")
	if err != nil {
		t.Fatalf("LoadPrompts: %v", err)
	}
	p.Temperature = Temperature(0.7)
	req, err := p.Optimization("cv text", "job text", "Minha Nota: 80%")
	if err != nil {
		t.Fatalf("Optimization: %v", err)
	}
	for _, want := range []string{"cv text", "job text", "Minha Nota: 80%", p.OptimizeInstruction} {
		if !strings.Contains(req.User, want) {
			t.Fatalf("expected %q in user message: %q", want, req.User)
		}
	}
	if req.System != p.System {
		t.Fatalf("phase 2 must reuse the phase 1 instruction block")
	}
	if req.Temperature == nil || *req.Temperature != 0.7 {
		t.Fatalf("expected temperature 0.7")
	}
}

func TestLoadPromptsOverridesFromDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "system.txt"), []byte("custom system\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	p, err := LoadPrompts(dir)
	if err != nil {
		t.Fatalf("LoadPrompts: %v", err)
	}
	if p.System != "custom system" {
		t.Fatalf("expected override, got %q", p.System)
	}
	if p.OptimizeInstruction == "" {
		t.Fatalf("expected embedded fallback for optimization instruction")
	}
}

func TestLoadPromptsRejectsBrokenTemplate(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "analysis.tmpl"), []byte("{{.Resume"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadPrompts(dir); err == nil {
		t.Fatalf("expected parse error")
	}
}
