package pipeline

import (
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/kbukum/sitekit/dag"
	"github.com/kbukum/sitekit/document"
	"github.com/kbukum/sitekit/errors"
	"github.com/kbukum/sitekit/logger"
)

// RecentWindow is how far back from the run start an item still counts as
// recent.
const RecentWindow = 24 * time.Hour

// Settings are the run-wide options modules may consult.
type Settings struct {
	// Validate marks a validation-only run. Modules that call external
	// services pass documents through unchanged.
	Validate bool
}

// Context is what a module sees of the run executing it.
type Context struct {
	// RunID identifies the run in logs and traces.
	RunID uuid.UUID
	// Started is captured once when the run begins.
	Started time.Time
	// Pipeline is the name of the executing pipeline.
	Pipeline string
	Settings Settings
	Outputs  *Outputs
	Logger   *logger.Logger
}

// RecentAnchor returns the earliest instant that still counts as recent for
// this run. It is derived from Started, so every module in a run agrees on it.
func (c *Context) RecentAnchor() time.Time {
	return c.Started.Add(-RecentWindow)
}

// Log returns the context logger, or a no-op logger when none is set.
func (c *Context) Log() *logger.Logger {
	if c == nil || c.Logger == nil {
		return logger.Nop()
	}
	return c.Logger
}

// Outputs gives a pipeline read access to the results of its dependencies.
type Outputs struct {
	state *dag.State
	deps  []string
}

func outputPort(pipeline string) dag.Port[document.Sequence] {
	return dag.Port[document.Sequence]{Key: "output:" + pipeline}
}

// FromPipeline returns the documents produced by the named pipeline. Only
// declared dependencies can be read; anything else is a configuration error.
func (o *Outputs) FromPipeline(name string) (document.Sequence, error) {
	if o == nil || !slices.Contains(o.deps, name) {
		return nil, errors.Configuration("pipeline %q is not a dependency", name)
	}
	docs, err := dag.Read(o.state, outputPort(name))
	if err != nil {
		return nil, errors.Configuration("no output recorded for pipeline %q", name).WithCause(err)
	}
	return docs, nil
}

// Dependencies returns the pipelines whose outputs are readable.
func (o *Outputs) Dependencies() []string {
	if o == nil {
		return nil
	}
	return slices.Clone(o.deps)
}
