package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kbukum/sitekit/document"
	"github.com/kbukum/sitekit/errors"
	"github.com/kbukum/sitekit/logger"
	"github.com/kbukum/sitekit/observability"
)

// Policy decides when a pipeline runs.
type Policy int

const (
	// PolicyDefault runs the pipeline when no targets are given, or when it
	// is a target or a dependency of one.
	PolicyDefault Policy = iota
	// PolicyManual runs the pipeline only as a target or a dependency of one.
	PolicyManual
	// PolicyAlways runs the pipeline in every run.
	PolicyAlways
)

func (p Policy) String() string {
	switch p {
	case PolicyDefault:
		return "default"
	case PolicyManual:
		return "manual"
	case PolicyAlways:
		return "always"
	default:
		return fmt.Sprintf("Policy(%d)", int(p))
	}
}

// ParsePolicy parses a policy name case-insensitively.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "default":
		return PolicyDefault, nil
	case "manual":
		return PolicyManual, nil
	case "always":
		return PolicyAlways, nil
	default:
		return PolicyDefault, errors.Configuration("unknown execution policy %q", s)
	}
}

// Pipeline is a named list of modules. A pipeline must not be changed after
// it is registered.
type Pipeline struct {
	Name string
	// Dependencies name the pipelines that must finish first. Their outputs
	// are readable through Context.Outputs.
	Dependencies   []string
	InputModules   []Module
	ProcessModules []Module
	OutputModules  []Module
	Policy         Policy
	// Deployment pipelines run only when a run asks for deployment, and then
	// after every non-deployment pipeline.
	Deployment bool
	// ReadOnly pipelines produce documents for others and write nothing, so
	// they may not have output modules.
	ReadOnly bool
}

func (p *Pipeline) validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return errors.Configuration("pipeline name must not be empty")
	}
	if p.ReadOnly && len(p.OutputModules) > 0 {
		return errors.Configuration("read-only pipeline %q has output modules", p.Name)
	}
	for _, dep := range p.Dependencies {
		if dep == p.Name {
			return errors.Configuration("pipeline %q depends on itself", p.Name)
		}
	}
	return nil
}

// Stage names a group of modules within a pipeline.
type Stage string

const (
	StageInput   Stage = "input"
	StageProcess Stage = "process"
	StageOutput  Stage = "output"
)

// execute runs the stages in order. The input stage starts from an empty
// sequence; every module consumes the previous module's output.
func (p *Pipeline) execute(ctx context.Context, run *Context) (document.Sequence, error) {
	docs := []*document.Document{}
	stages := []struct {
		stage   Stage
		modules []Module
	}{
		{StageInput, p.InputModules},
		{StageProcess, p.ProcessModules},
		{StageOutput, p.OutputModules},
	}
	for _, s := range stages {
		for _, m := range s.modules {
			out, err := runModule(ctx, run, s.stage, m, docs)
			if err != nil {
				return nil, err
			}
			docs = out
		}
	}
	return document.Sequence(docs), nil
}

func runModule(ctx context.Context, run *Context, stage Stage, m Module, docs []*document.Document) ([]*document.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ctx, span := observability.StartSpan(ctx, observability.SpanModule)
	defer span.End()
	observability.SetSpanAttribute(ctx, observability.AttrPipeline, run.Pipeline)
	observability.SetSpanAttribute(ctx, observability.AttrModule, m.Name())

	start := time.Now()
	out, err := m.Execute(ctx, run, docs)
	if err != nil {
		observability.SetSpanError(ctx, err)
		return nil, fmt.Errorf("%s: %w", m.Name(), err)
	}
	if out == nil {
		out = []*document.Document{}
	}
	observability.SetSpanAttribute(ctx, observability.AttrDocuments, len(out))

	fields := logger.DurationFields(m.Name(), time.Since(start))
	fields[logger.FieldPhase] = string(stage)
	fields[logger.FieldModule] = m.Name()
	fields[logger.FieldDocuments] = len(out)
	run.Log().Debug("module finished", fields)
	return out, nil
}
