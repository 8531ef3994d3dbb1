package pipeline

import (
	"context"

	"github.com/kbukum/sitekit/document"
	"github.com/kbukum/sitekit/stream"
)

// Module transforms a sequence of documents. Implementations must not
// modify the input documents; changed documents are clones.
type Module interface {
	Name() string
	Execute(ctx context.Context, run *Context, docs []*document.Document) ([]*document.Document, error)
}

// ExecuteFunc is the signature of a module body.
type ExecuteFunc func(ctx context.Context, run *Context, docs []*document.Document) ([]*document.Document, error)

// ModuleFunc adapts a function into a Module.
func ModuleFunc(name string, fn ExecuteFunc) Module {
	return &funcModule{name: name, fn: fn}
}

type funcModule struct {
	name string
	fn   ExecuteFunc
}

func (m *funcModule) Name() string { return m.name }

func (m *funcModule) Execute(ctx context.Context, run *Context, docs []*document.Document) ([]*document.Document, error) {
	return m.fn(ctx, run, docs)
}

// DocumentFunc processes one document into zero or more documents.
type DocumentFunc func(ctx context.Context, run *Context, doc *document.Document) ([]*document.Document, error)

// ForEachDocument applies fn to every input document with at most
// parallelism calls in flight (0 means unbounded). The output holds each
// input's results in input order. The first error cancels the other calls
// and fails the module.
func ForEachDocument(name string, parallelism int, fn DocumentFunc) Module {
	return ModuleFunc(name, func(ctx context.Context, run *Context, docs []*document.Document) ([]*document.Document, error) {
		perDoc := stream.ParallelMap(stream.FromSlice(docs), parallelism,
			func(ctx context.Context, doc *document.Document) ([]*document.Document, error) {
				return fn(ctx, run, doc)
			})
		flat := stream.FlatMap(perDoc, func(_ context.Context, out []*document.Document) ([]*document.Document, error) {
			return out, nil
		})
		return stream.Collect(ctx, flat)
	})
}
