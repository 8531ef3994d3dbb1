package dag

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kbukum/sitekit/errors"
)

// --- test helpers ---

func newFuncNode(name string, fn func(ctx context.Context, state *State) (any, error)) Node {
	if fn == nil {
		fn = func(context.Context, *State) (any, error) { return name, nil }
	}
	return Func(name, fn)
}

type items []string

func (i items) Len() int { return len(i) }

// --- State tests ---

func TestState_GetSet(t *testing.T) {
	s := NewState()
	s.Set("key", "value")
	v, ok := s.Get("key")
	if !ok || v != "value" {
		t.Fatalf("expected 'value', got %v (ok=%v)", v, ok)
	}
	if keys := s.Keys(); len(keys) != 1 || keys[0] != "key" {
		t.Fatalf("unexpected keys %v", keys)
	}
}

func TestPort_ReadWrite(t *testing.T) {
	s := NewState()
	port := Port[int]{Key: "count"}
	Write(s, port, 42)

	val, err := Read(s, port)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if val != 42 {
		t.Fatalf("expected 42, got %d", val)
	}
}

func TestPort_MissingKey(t *testing.T) {
	_, err := Read(NewState(), Port[int]{Key: "missing"})
	if !errors.HasCode(err, errors.ErrCodeNotFound) {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestPort_TypeMismatch(t *testing.T) {
	s := NewState()
	s.Set("key", "not-an-int")
	_, err := Read(s, Port[int]{Key: "key"})
	if !errors.HasCode(err, errors.ErrCodeInternal) {
		t.Fatalf("expected INTERNAL_ERROR, got %v", err)
	}
}

// --- BuildLevels tests ---

func TestBuildLevels_Linear(t *testing.T) {
	g := &Graph{
		Nodes: map[string]Node{
			"a": newFuncNode("a", nil),
			"b": newFuncNode("b", nil),
			"c": newFuncNode("c", nil),
		},
		Edges: []Edge{
			{From: "a", To: "b"},
			{From: "b", To: "c"},
		},
	}

	levels, err := BuildLevels(g)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(levels) != 3 {
		t.Fatalf("expected 3 levels, got %d", len(levels))
	}
	if levels[0][0] != "a" || levels[1][0] != "b" || levels[2][0] != "c" {
		t.Fatalf("unexpected level order: %v", levels)
	}
}

func TestBuildLevels_DiamondSortedWithinLevel(t *testing.T) {
	g := &Graph{
		Nodes: map[string]Node{
			"a": newFuncNode("a", nil),
			"c": newFuncNode("c", nil),
			"b": newFuncNode("b", nil),
			"d": newFuncNode("d", nil),
		},
		Edges: []Edge{
			{From: "a", To: "c"},
			{From: "a", To: "b"},
			{From: "b", To: "d"},
			{From: "c", To: "d"},
		},
	}

	levels, err := BuildLevels(g)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := [][]string{{"a"}, {"b", "c"}, {"d"}}
	if fmt.Sprint(levels) != fmt.Sprint(want) {
		t.Fatalf("expected %v, got %v", want, levels)
	}
}

func TestBuildLevels_CycleIsConfigurationError(t *testing.T) {
	g := &Graph{
		Nodes: map[string]Node{
			"a": newFuncNode("a", nil),
			"b": newFuncNode("b", nil),
		},
		Edges: []Edge{
			{From: "a", To: "b"},
			{From: "b", To: "a"},
		},
	}

	_, err := BuildLevels(g)
	if !errors.IsConfiguration(err) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestBuildLevels_UnknownNode(t *testing.T) {
	g := &Graph{
		Nodes: map[string]Node{"a": newFuncNode("a", nil)},
		Edges: []Edge{{From: "missing", To: "a"}},
	}

	_, err := BuildLevels(g)
	if !errors.IsConfiguration(err) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestAncestors(t *testing.T) {
	g := &Graph{
		Nodes: map[string]Node{
			"a": newFuncNode("a", nil),
			"b": newFuncNode("b", nil),
			"c": newFuncNode("c", nil),
			"x": newFuncNode("x", nil),
		},
		Edges: []Edge{{From: "a", To: "b"}, {From: "b", To: "c"}},
	}

	got, err := Ancestors(g, []string{"c"})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 || !got["a"] || !got["b"] || !got["c"] || got["x"] {
		t.Fatalf("unexpected ancestors %v", got)
	}

	if _, err := Ancestors(g, []string{"nope"}); !errors.IsConfiguration(err) {
		t.Fatalf("expected configuration error for unknown target, got %v", err)
	}
}

// --- Engine tests ---

func TestEngine_BatchExecution(t *testing.T) {
	outPort := Port[string]{Key: "output"}
	g := &Graph{
		Nodes: map[string]Node{
			"a": newFuncNode("a", func(_ context.Context, s *State) (any, error) {
				s.Set("a_done", true)
				return "a-result", nil
			}),
			"b": newFuncNode("b", func(_ context.Context, s *State) (any, error) {
				if _, ok := s.Get("a_done"); !ok {
					return nil, fmt.Errorf("a should have run first")
				}
				Write(s, outPort, "final")
				return "b-result", nil
			}),
		},
		Edges: []Edge{{From: "a", To: "b"}},
	}

	engine := &Engine{}
	state := NewState()
	result, err := engine.ExecuteBatch(context.Background(), g, state)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.NodeResults["b"].Status != StatusCompleted {
		t.Fatalf("expected b completed, got %s", result.NodeResults["b"].Status)
	}
	if fmt.Sprint(result.Order) != "[a b]" {
		t.Fatalf("unexpected order %v", result.Order)
	}

	out, err := Read(state, outPort)
	if err != nil || out != "final" {
		t.Fatalf("expected 'final', got %q (%v)", out, err)
	}
}

func TestEngine_DependencyOrder(t *testing.T) {
	var mu sync.Mutex
	var order []string
	record := func(name string) Node {
		return newFuncNode(name, func(context.Context, *State) (any, error) {
			mu.Lock()
			order = append(order, name)
			mu.Unlock()
			return nil, nil
		})
	}
	g := &Graph{
		Nodes: map[string]Node{"P1": record("P1"), "P2": record("P2"), "P3": record("P3")},
		Edges: []Edge{{From: "P1", To: "P2"}, {From: "P2", To: "P3"}, {From: "P1", To: "P3"}},
	}

	if _, err := (&Engine{}).ExecuteBatch(context.Background(), g, NewState()); err != nil {
		t.Fatal(err)
	}
	if fmt.Sprint(order) != "[P1 P2 P3]" {
		t.Fatalf("expected [P1 P2 P3], got %v", order)
	}
}

func TestEngine_CycleFailsBeforeAnyNodeRuns(t *testing.T) {
	var ran atomic.Int32
	node := func(name string) Node {
		return newFuncNode(name, func(context.Context, *State) (any, error) {
			ran.Add(1)
			return nil, nil
		})
	}
	g := &Graph{
		Nodes: map[string]Node{"P1": node("P1"), "P2": node("P2"), "P0": node("P0")},
		Edges: []Edge{{From: "P1", To: "P2"}, {From: "P2", To: "P1"}},
	}

	_, err := (&Engine{}).ExecuteBatch(context.Background(), g, NewState())
	if !errors.IsConfiguration(err) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	if ran.Load() != 0 {
		t.Fatalf("expected no node to run, %d ran", ran.Load())
	}
}

func TestEngine_FailFast(t *testing.T) {
	nodeErr := errors.Unauthorized("bad credentials")
	var downstream atomic.Bool

	g := &Graph{
		Nodes: map[string]Node{
			"bad": newFuncNode("bad", func(_ context.Context, _ *State) (any, error) {
				return nil, nodeErr
			}),
			"slow": newFuncNode("slow", func(ctx context.Context, _ *State) (any, error) {
				select {
				case <-ctx.Done():
					return nil, ctx.Err()
				case <-time.After(5 * time.Second):
					return "late", nil
				}
			}),
			"after": newFuncNode("after", func(context.Context, *State) (any, error) {
				downstream.Store(true)
				return nil, nil
			}),
		},
		Edges: []Edge{{From: "bad", To: "after"}},
	}

	result, err := (&Engine{}).ExecuteBatch(context.Background(), g, NewState())
	if !stderrors.Is(err, nodeErr) {
		t.Fatalf("expected node error, got %v", err)
	}
	if !errors.HasCode(err, errors.ErrCodeUnauthorized) {
		t.Fatalf("expected code to survive wrapping, got %v", err)
	}
	if downstream.Load() {
		t.Fatal("dependent node ran after failure")
	}
	if got := result.NodeResults["slow"].Status; got != StatusCanceled {
		t.Fatalf("expected sibling canceled, got %q", got)
	}
	if got := result.NodeResults["bad"].Status; got != StatusFailed {
		t.Fatalf("expected failed, got %q", got)
	}
}

func TestEngine_PanicBecomesInternalError(t *testing.T) {
	g := &Graph{Nodes: map[string]Node{
		"boom": newFuncNode("boom", func(context.Context, *State) (any, error) { panic("oops") }),
	}}
	_, err := (&Engine{}).ExecuteBatch(context.Background(), g, NewState())
	if !errors.HasCode(err, errors.ErrCodeInternal) {
		t.Fatalf("expected INTERNAL_ERROR, got %v", err)
	}
}

func TestEngine_MaxParallel(t *testing.T) {
	var running atomic.Int32
	var maxRunning atomic.Int32

	makeNode := func(name string) Node {
		return newFuncNode(name, func(_ context.Context, _ *State) (any, error) {
			cur := running.Add(1)
			for {
				old := maxRunning.Load()
				if cur <= old || maxRunning.CompareAndSwap(old, cur) {
					break
				}
			}
			time.Sleep(20 * time.Millisecond)
			running.Add(-1)
			return name, nil
		})
	}

	g := &Graph{
		Nodes: map[string]Node{
			"a": makeNode("a"),
			"b": makeNode("b"),
			"c": makeNode("c"),
			"d": makeNode("d"),
		},
	}

	engine := &Engine{MaxParallel: 2}
	if _, err := engine.ExecuteBatch(context.Background(), g, NewState()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if maxRunning.Load() > 2 {
		t.Fatalf("expected max 2 concurrent, got %d", maxRunning.Load())
	}
}

func TestEngine_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	g := &Graph{Nodes: map[string]Node{"a": newFuncNode("a", nil)}}

	_, err := (&Engine{}).ExecuteBatch(ctx, g, NewState())
	if !errors.IsCanceled(err) {
		t.Fatalf("expected CANCELED, got %v", err)
	}
}

func TestEngine_CanceledMidRun(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var second atomic.Bool
	g := &Graph{
		Nodes: map[string]Node{
			"first": newFuncNode("first", func(ctx context.Context, _ *State) (any, error) {
				cancel()
				<-ctx.Done()
				return nil, ctx.Err()
			}),
			"second": newFuncNode("second", func(context.Context, *State) (any, error) {
				second.Store(true)
				return nil, nil
			}),
		},
		Edges: []Edge{{From: "first", To: "second"}},
	}

	_, err := (&Engine{}).ExecuteBatch(ctx, g, NewState())
	if !errors.IsCanceled(err) {
		t.Fatalf("expected CANCELED, got %v", err)
	}
	if second.Load() {
		t.Fatal("second node ran after cancellation")
	}
}

func TestEngine_ExecuteSelected(t *testing.T) {
	g := &Graph{
		Nodes: map[string]Node{
			"a": newFuncNode("a", func(context.Context, *State) (any, error) { return items{"x", "y"}, nil }),
			"b": newFuncNode("b", nil),
		},
	}

	result, err := (&Engine{}).ExecuteSelected(context.Background(), g, NewState(), func(name string, _ *State) bool {
		return name == "a"
	})
	if err != nil {
		t.Fatal(err)
	}
	if result.NodeResults["b"].Status != StatusSkipped {
		t.Fatalf("expected b skipped, got %q", result.NodeResults["b"].Status)
	}
	if sizeOf(result.NodeResults["a"].Output) != 2 {
		t.Fatalf("expected sized output")
	}
}

// --- Registry tests ---

func TestRegistry_RegisterGetList(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(newFuncNode("test", nil)); err != nil {
		t.Fatal(err)
	}

	got, ok := r.Get("test")
	if !ok || got.Name() != "test" {
		t.Fatalf("expected to find 'test' node")
	}
	if _, ok := r.Get("missing"); ok {
		t.Fatal("expected missing")
	}
	if names := r.List(); len(names) != 1 || names[0] != "test" {
		t.Fatalf("unexpected list: %v", names)
	}
}

func TestRegistry_DuplicateName(t *testing.T) {
	r := NewRegistry()
	_ = r.Register(newFuncNode("Posts", nil))
	if err := r.Register(newFuncNode("Posts", nil)); !errors.IsConfiguration(err) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestRegistry_Graph(t *testing.T) {
	r := NewRegistry()
	_ = r.Register(newFuncNode("Posts", nil))
	_ = r.Register(newFuncNode("NewsFeed", nil))

	g := r.Graph(func(name string) []string {
		if name == "NewsFeed" {
			return []string{"Posts"}
		}
		return nil
	})
	if len(g.Nodes) != 2 || len(g.Edges) != 1 || g.Edges[0] != (Edge{From: "Posts", To: "NewsFeed"}) {
		t.Fatalf("unexpected graph %+v", g)
	}
}
