package pipeline

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kbukum/sitekit/dag"
	"github.com/kbukum/sitekit/document"
	"github.com/kbukum/sitekit/errors"
	"github.com/kbukum/sitekit/logger"
	"github.com/kbukum/sitekit/observability"
	"github.com/kbukum/sitekit/resilience"
)

// Scheduler owns the registered pipelines and executes runs over them.
type Scheduler struct {
	registry *dag.Registry

	mu        sync.RWMutex
	pipelines map[string]*Pipeline

	maxParallel int
	log         *logger.Logger
	metrics     *observability.Metrics
	settings    Settings
	clock       resilience.Clock
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithMaxParallel bounds how many pipelines of one level run at once
// (0 = unlimited).
func WithMaxParallel(n int) Option {
	return func(s *Scheduler) { s.maxParallel = n }
}

// WithLogger sets the logger runs and pipelines log to.
func WithLogger(l *logger.Logger) Option {
	return func(s *Scheduler) { s.log = l }
}

// WithMetrics enables pipeline metrics.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Scheduler) { s.metrics = m }
}

// WithSettings sets the run-wide module settings.
func WithSettings(settings Settings) Option {
	return func(s *Scheduler) { s.settings = settings }
}

// WithClock sets the clock that stamps each run's start.
func WithClock(c resilience.Clock) Option {
	return func(s *Scheduler) { s.clock = c }
}

// NewScheduler creates a Scheduler with no pipelines.
func NewScheduler(opts ...Option) *Scheduler {
	s := &Scheduler{
		registry:  dag.NewRegistry(),
		pipelines: make(map[string]*Pipeline),
		log:       logger.Nop(),
		clock:     resilience.SystemClock{},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.WithComponent("scheduler")
	return s
}

// Register adds pipelines. An empty or duplicate name, or a read-only
// pipeline with output modules, is a configuration error.
func (s *Scheduler) Register(pipelines ...*Pipeline) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range pipelines {
		if err := p.validate(); err != nil {
			return err
		}
		if err := s.registry.Register(&pipelineNode{pipeline: p}); err != nil {
			return err
		}
		s.pipelines[p.Name] = p
	}
	return nil
}

// Pipeline returns a registered pipeline by name.
func (s *Scheduler) Pipeline(name string) (*Pipeline, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.pipelines[name]
	return p, ok
}

// Names returns the registered pipeline names, sorted.
func (s *Scheduler) Names() []string {
	return s.registry.List()
}

// RunOptions select what a run executes.
type RunOptions struct {
	// Targets names the pipelines to run. Empty means every pipeline whose
	// policy is not manual. Dependencies of targets always run.
	Targets []string
	// Deploy includes deployment pipelines.
	Deploy bool
}

// Result is the outcome of a successful run.
type Result struct {
	RunID    uuid.UUID
	Started  time.Time
	Duration time.Duration
	// Order lists the executed pipelines in completion order.
	Order []string
	// Skipped lists registered pipelines the run did not need, sorted.
	Skipped []string
	Outputs map[string]document.Sequence
}

// Output returns the documents a pipeline produced in this run.
func (r *Result) Output(name string) (document.Sequence, bool) {
	docs, ok := r.Outputs[name]
	return docs, ok
}

// plan is a validated run selection.
type plan struct {
	graph    *dag.Graph
	selected map[string]bool
	deps     map[string][]string
}

// Plan resolves opts into the dependency levels that would execute, without
// running anything. Pipelines inside a level are sorted by name.
func (s *Scheduler) Plan(opts RunOptions) ([][]string, error) {
	pl, err := s.plan(opts)
	if err != nil {
		return nil, err
	}
	levels, err := dag.BuildLevels(pl.graph)
	if err != nil {
		return nil, err
	}
	var out [][]string
	for _, level := range levels {
		var keep []string
		for _, name := range level {
			if pl.selected[name] {
				keep = append(keep, name)
			}
		}
		if len(keep) > 0 {
			out = append(out, keep)
		}
	}
	return out, nil
}

func (s *Scheduler) plan(opts RunOptions) (*plan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	declared := s.registry.Graph(func(name string) []string {
		return s.pipelines[name].Dependencies
	})

	var seeds []string
	for _, name := range opts.Targets {
		p, ok := s.pipelines[name]
		if !ok {
			return nil, errors.Configuration("unknown target %q", name)
		}
		if p.Deployment && !opts.Deploy {
			return nil, errors.Configuration("pipeline %q is a deployment pipeline and needs a deploy run", name)
		}
		seeds = append(seeds, name)
	}
	for _, name := range s.registry.List() {
		p := s.pipelines[name]
		if p.Deployment && !opts.Deploy {
			continue
		}
		if p.Policy == PolicyAlways || (len(opts.Targets) == 0 && p.Policy == PolicyDefault) {
			seeds = append(seeds, name)
		}
	}

	selected, err := dag.Ancestors(declared, seeds)
	if err != nil {
		return nil, err
	}

	// Deployment pipelines additionally wait for every selected
	// non-deployment pipeline.
	var built []string
	for name := range selected {
		if p, ok := s.pipelines[name]; ok && !p.Deployment {
			built = append(built, name)
		}
	}
	sort.Strings(built)

	deps := make(map[string][]string, len(s.pipelines))
	for name, p := range s.pipelines {
		d := slices.Clone(p.Dependencies)
		if p.Deployment && selected[name] {
			for _, b := range built {
				if !slices.Contains(d, b) {
					d = append(d, b)
				}
			}
		}
		deps[name] = d
	}

	g := s.registry.Graph(func(name string) []string { return deps[name] })
	if _, err := dag.BuildLevels(g); err != nil {
		return nil, err
	}
	return &plan{graph: g, selected: selected, deps: deps}, nil
}

// Run executes one build. Every run gets fresh state: a new RunID, a start
// time read once from the clock, and empty outputs. On failure the error of
// the first failing pipeline is returned, prefixed with its name, and no
// outputs are published. A canceled ctx yields a CANCELED error.
func (s *Scheduler) Run(ctx context.Context, opts RunOptions) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Canceled(err)
	}

	pl, err := s.plan(opts)
	if err != nil {
		return nil, err
	}

	runID := uuid.New()
	started := s.clock.Now()
	log := s.log.WithFields(logger.Fields(logger.FieldRunID, runID.String()))

	ctx, span := observability.StartSpan(ctx, observability.SpanBuildRun)
	defer span.End()

	for name, node := range pl.graph.Nodes {
		wrapped := dag.WithTracing(node, observability.SpanPipelineRun, observability.AttrPipeline)
		if s.metrics != nil {
			wrapped = dag.WithMetrics(wrapped, s.metrics)
		}
		pl.graph.Nodes[name] = dag.WithLogging(wrapped, log)
	}

	state := dag.NewState()
	dag.Write(state, runPort, &runInfo{
		id:       runID,
		started:  started,
		settings: s.settings,
		log:      log,
		deps:     pl.deps,
	})

	log.Info("build started", logger.Fields("pipelines", len(pl.selected)))
	engine := &dag.Engine{MaxParallel: s.maxParallel}
	res, err := engine.ExecuteSelected(ctx, pl.graph, state, func(name string, _ *dag.State) bool {
		return pl.selected[name]
	})
	if err != nil {
		observability.SetSpanError(ctx, err)
		log.WithError(err).Error("build failed")
		return nil, err
	}

	result := &Result{
		RunID:    runID,
		Started:  started,
		Duration: res.Duration,
		Order:    res.Order,
		Outputs:  make(map[string]document.Sequence, len(res.Order)),
	}
	for name, nr := range res.NodeResults {
		switch nr.Status {
		case dag.StatusCompleted:
			if docs, ok := nr.Output.(document.Sequence); ok {
				result.Outputs[name] = docs
			}
		case dag.StatusSkipped:
			result.Skipped = append(result.Skipped, name)
		}
	}
	sort.Strings(result.Skipped)

	log.Info("build finished", logger.DurationFields("build", res.Duration))
	return result, nil
}

type runInfo struct {
	id       uuid.UUID
	started  time.Time
	settings Settings
	log      *logger.Logger
	deps     map[string][]string
}

var runPort = dag.Port[*runInfo]{Key: "run"}

// pipelineNode adapts a Pipeline to dag.Node.
type pipelineNode struct {
	pipeline *Pipeline
}

func (n *pipelineNode) Name() string { return n.pipeline.Name }

func (n *pipelineNode) Run(ctx context.Context, state *dag.State) (any, error) {
	info, err := dag.Read(state, runPort)
	if err != nil {
		return nil, err
	}
	p := n.pipeline
	run := &Context{
		RunID:    info.id,
		Started:  info.started,
		Pipeline: p.Name,
		Settings: info.settings,
		Outputs:  &Outputs{state: state, deps: info.deps[p.Name]},
		Logger:   info.log.WithPipeline(p.Name),
	}
	docs, err := p.execute(ctx, run)
	if err != nil {
		return nil, err
	}
	dag.Write(state, outputPort(p.Name), docs)
	return docs, nil
}
