package dag

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"
	"time"

	"github.com/kbukum/sitekit/errors"
)

// Engine executes a graph in dependency order.
type Engine struct {
	// MaxParallel limits concurrent nodes per level (0 = unlimited).
	MaxParallel int
}

// ExecuteBatch runs ALL nodes in dependency order.
func (e *Engine) ExecuteBatch(ctx context.Context, g *Graph, state *State) (*Result, error) {
	return e.execute(ctx, g, state, nil)
}

// ExecuteSelected runs only nodes that pass the filter.
// Nodes that don't pass are marked as skipped. The whole graph is still
// validated, so a cycle anywhere fails the run.
func (e *Engine) ExecuteSelected(ctx context.Context, g *Graph, state *State, filter NodeFilter) (*Result, error) {
	return e.execute(ctx, g, state, filter)
}

// NodeFilter returns true if a node should execute in this run.
type NodeFilter func(nodeName string, state *State) bool

func (e *Engine) execute(ctx context.Context, g *Graph, state *State, filter NodeFilter) (*Result, error) {
	start := time.Now()

	levels, err := BuildLevels(g)
	if err != nil {
		return nil, err
	}

	result := &Result{
		NodeResults: make(map[string]NodeResult),
	}
	defer func() { result.Duration = time.Since(start) }()

	for _, level := range levels {
		if err := ctx.Err(); err != nil {
			return result, errors.Canceled(err)
		}

		var toRun []string
		for _, name := range level {
			if filter != nil && !filter(name, state) {
				result.NodeResults[name] = NodeResult{
					Name:   name,
					Status: StatusSkipped,
				}
				continue
			}
			toRun = append(toRun, name)
		}

		if len(toRun) == 0 {
			continue
		}

		levelErr := e.executeLevel(ctx, g, state, toRun, result)
		if err := ctx.Err(); err != nil {
			return result, errors.Canceled(err)
		}
		if levelErr != nil {
			return result, levelErr
		}
	}

	return result, nil
}

// executeLevel runs one level concurrently and returns the first node
// failure. A failure cancels the nodes still running in the level.
func (e *Engine) executeLevel(parent context.Context, g *Graph, state *State, names []string, result *Result) error {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		firstErr error
	)

	sem := make(chan struct{}, e.concurrency(len(names)))

	for _, name := range names {
		wg.Add(1)
		go func(nodeName string) {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				mu.Lock()
				result.NodeResults[nodeName] = NodeResult{Name: nodeName, Status: StatusCanceled, Error: ctx.Err()}
				mu.Unlock()
				return
			}
			defer func() { <-sem }()

			nr := e.executeNode(ctx, g.Nodes[nodeName], state)

			mu.Lock()
			defer mu.Unlock()
			if nr.Error != nil && ctx.Err() != nil && stderrors.Is(nr.Error, context.Canceled) {
				nr.Status = StatusCanceled
			}
			result.NodeResults[nodeName] = nr
			if nr.Status == StatusCompleted {
				result.Order = append(result.Order, nodeName)
			}
			if nr.Status == StatusFailed && firstErr == nil {
				firstErr = fmt.Errorf("%s: %w", nodeName, nr.Error)
				cancel()
			}
		}(name)
	}

	wg.Wait()
	return firstErr
}

func (e *Engine) executeNode(ctx context.Context, node Node, state *State) NodeResult {
	start := time.Now()
	output, err := runSafely(ctx, node, state)
	duration := time.Since(start)

	if err != nil {
		return NodeResult{
			Name:     node.Name(),
			Status:   StatusFailed,
			Duration: duration,
			Error:    err,
		}
	}

	return NodeResult{
		Name:     node.Name(),
		Status:   StatusCompleted,
		Duration: duration,
		Output:   output,
	}
}

// runSafely converts a panicking node into an INTERNAL_ERROR failure.
func runSafely(ctx context.Context, node Node, state *State) (output any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Internal(fmt.Errorf("panic in %s: %v", node.Name(), r))
		}
	}()
	return node.Run(ctx, state)
}

func (e *Engine) concurrency(levelSize int) int {
	if e.MaxParallel <= 0 || e.MaxParallel > levelSize {
		return levelSize
	}
	return e.MaxParallel
}
