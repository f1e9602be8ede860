package llm

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"text/template"
)

//go:embed prompts/*
var defaultPrompts embed.FS

const (
	systemFile            = "system.txt"
	analysisFile          = "analysis.tmpl"
	optimizationFile      = "optimization.txt"
	optimizationInputFile = "optimization.tmpl"
)

// Prompts holds the instruction texts and input templates for both phases.
type Prompts struct {
	System              string
	OptimizeInstruction string
	Temperature         *float32

	analysis     *template.Template
	optimization *template.Template
}

// LoadPrompts reads prompt files from dir, falling back to the embedded
// defaults for any file dir does not provide. An empty dir uses only the
// embedded set.
func LoadPrompts(dir string) (*Prompts, error) {
	embedded, err := fs.Sub(defaultPrompts, "prompts")
	if err != nil {
		return nil, err
	}
	read := func(name string) (string, error) {
		if strings.TrimSpace(dir) != "" {
			data, err := os.ReadFile(filepath.Join(dir, name))
			if err == nil {
				return string(data), nil
			}
			if !os.IsNotExist(err) {
				return "", fmt.Errorf("read prompt %s: %w", name, err)
			}
		}
		data, err := fs.ReadFile(embedded, name)
		if err != nil {
			return "", fmt.Errorf("read embedded prompt %s: %w", name, err)
		}
		return string(data), nil
	}

	system, err := read(systemFile)
	if err != nil {
		return nil, err
	}
	instruction, err := read(optimizationFile)
	if err != nil {
		return nil, err
	}
	analysisSrc, err := read(analysisFile)
	if err != nil {
		return nil, err
	}
	optimizationSrc, err := read(optimizationInputFile)
	if err != nil {
		return nil, err
	}

	analysis, err := template.New(analysisFile).Option("missingkey=error").Parse(analysisSrc)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", analysisFile, err)
	}
	optimization, err := template.New(optimizationInputFile).Option("missingkey=error").Parse(optimizationSrc)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", optimizationInputFile, err)
	}

	return &Prompts{
		System:              strings.TrimSpace(system),
		OptimizeInstruction: strings.TrimSpace(instruction),
		analysis:            analysis,
		optimization:        optimization,
	}, nil
}

// Analysis builds the phase 1 request from résumé text and job description.
func (p *Prompts) Analysis(resume, job string) (Request, error) {
	user, err := render(p.analysis, map[string]string{
		"Resume": resume,
		"Job":    job,
	})
	if err != nil {
		return Request{}, err
	}
	return Request{System: p.System, User: user, Temperature: p.Temperature}, nil
}

// Optimization builds the phase 2 request, carrying the phase 1 analysis as context.
func (p *Prompts) Optimization(resume, job, analysis string) (Request, error) {
	user, err := render(p.optimization, map[string]string{
		"Resume":      resume,
		"Job":         job,
		"Analysis":    analysis,
		"Instruction": p.OptimizeInstruction,
	})
	if err != nil {
		return Request{}, err
	}
	return Request{System: p.System, User: user, Temperature: p.Temperature}, nil
}

func render(tmpl *template.Template, data map[string]string) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s: %w", tmpl.Name(), err)
	}
	return strings.TrimSpace(buf.String()), nil
}
