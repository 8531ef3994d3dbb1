package pipeline

import (
	"cmp"
	"context"
	"encoding/json"
	"path"
	"slices"
	"strings"

	"github.com/kbukum/sitekit/document"
	"github.com/kbukum/sitekit/errors"
	"github.com/kbukum/sitekit/stream"
)

// Filter keeps the documents for which keep returns true.
func Filter(keep func(*document.Document) bool) Module {
	return ModuleFunc("Filter", func(ctx context.Context, _ *Context, docs []*document.Document) ([]*document.Document, error) {
		return stream.Collect(ctx, stream.Filter(stream.FromSlice(docs), keep))
	})
}

// OrderModule sorts documents with a comparison function. The sort is stable,
// so documents that compare equal keep their input order.
type OrderModule struct {
	compare    func(a, b *document.Document) int
	descending bool
}

// OrderDocuments sorts ascending by compare.
func OrderDocuments(compare func(a, b *document.Document) int) *OrderModule {
	return &OrderModule{compare: compare}
}

// Descending reverses the sort direction.
func (m *OrderModule) Descending() *OrderModule {
	return &OrderModule{compare: m.compare, descending: true}
}

func (m *OrderModule) Name() string { return "OrderDocuments" }

func (m *OrderModule) Execute(_ context.Context, _ *Context, docs []*document.Document) ([]*document.Document, error) {
	out := slices.Clone(docs)
	slices.SortStableFunc(out, func(a, b *document.Document) int {
		if m.descending {
			return m.compare(b, a)
		}
		return m.compare(a, b)
	})
	return out, nil
}

// ByTime compares documents by a Time metadata key. Documents without the
// key sort as the zero time.
func ByTime(key string) func(a, b *document.Document) int {
	return func(a, b *document.Document) int {
		ta, _ := a.Metadata().GetTime(key)
		tb, _ := b.Metadata().GetTime(key)
		return ta.Compare(tb)
	}
}

// ByString compares documents by a String metadata key.
func ByString(key string) func(a, b *document.Document) int {
	return func(a, b *document.Document) int {
		sa, _ := a.Metadata().GetString(key)
		sb, _ := b.Metadata().GetString(key)
		return cmp.Compare(sa, sb)
	}
}

// ReplaceDocuments discards its input and returns the outputs of the named
// pipelines, concatenated in argument order. The pipelines must be
// dependencies of the executing pipeline.
func ReplaceDocuments(pipelines ...string) Module {
	return ModuleFunc("ReplaceDocuments", func(ctx context.Context, run *Context, _ []*document.Document) ([]*document.Document, error) {
		return concatOutputs(ctx, run, nil, pipelines)
	})
}

// ConcatDocuments appends the outputs of the named pipelines to its input.
func ConcatDocuments(pipelines ...string) Module {
	return ModuleFunc("ConcatDocuments", func(ctx context.Context, run *Context, docs []*document.Document) ([]*document.Document, error) {
		return concatOutputs(ctx, run, docs, pipelines)
	})
}

func concatOutputs(ctx context.Context, run *Context, head []*document.Document, pipelines []string) ([]*document.Document, error) {
	parts := []*stream.Stream[*document.Document]{stream.FromSlice(head)}
	for _, name := range pipelines {
		docs, err := run.Outputs.FromPipeline(name)
		if err != nil {
			return nil, err
		}
		parts = append(parts, stream.FromSlice(docs.Documents()))
	}
	return stream.Collect(ctx, stream.Concat(parts...))
}

// SetDestination clones every document with the destination returned by fn.
func SetDestination(fn func(*document.Document) string) Module {
	return ModuleFunc("SetDestination", func(_ context.Context, _ *Context, docs []*document.Document) ([]*document.Document, error) {
		out := make([]*document.Document, len(docs))
		for i, doc := range docs {
			out[i] = doc.CloneWith(document.WithDestination(fn(doc)))
		}
		return out, nil
	})
}

// ReplaceExtension derives a destination from the document source by
// swapping its extension for ext (".json").
func ReplaceExtension(ext string) func(*document.Document) string {
	return func(doc *document.Document) string {
		src := doc.Source()
		return strings.TrimSuffix(src, path.Ext(src)) + ext
	}
}

// RenderJSON clones every document with its metadata encoded as indented
// JSON in key order as the new content.
func RenderJSON() Module {
	return ModuleFunc("RenderJSON", func(_ context.Context, _ *Context, docs []*document.Document) ([]*document.Document, error) {
		out := make([]*document.Document, len(docs))
		for i, doc := range docs {
			data, err := json.MarshalIndent(doc.Metadata(), "", "  ")
			if err != nil {
				return nil, errors.Internal(err).WithDetail("source", doc.Source())
			}
			out[i] = doc.CloneWith(document.WithContent(append(data, '\n')))
		}
		return out, nil
	})
}
