package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"slices"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"go.yaml.in/yaml/v3"

	"github.com/kbukum/sitekit/document"
	"github.com/kbukum/sitekit/errors"
	"github.com/kbukum/sitekit/logger"
	"github.com/kbukum/sitekit/storage"
)

// ReadFiles loads every file in fsys matching one of the doublestar patterns
// ("projects/**/*.yml") as a document. The file's YAML mapping becomes the
// document metadata in key order; the raw bytes become its content and the
// path its source. Files are returned sorted by path, each path once.
func ReadFiles(fsys fs.FS, patterns ...string) Module {
	return ModuleFunc("ReadFiles", func(ctx context.Context, run *Context, _ []*document.Document) ([]*document.Document, error) {
		var paths []string
		for _, pattern := range patterns {
			matches, err := doublestar.Glob(fsys, pattern)
			if err != nil {
				return nil, errors.Configuration("invalid file pattern %q", pattern).WithCause(err)
			}
			paths = append(paths, matches...)
		}
		slices.Sort(paths)
		paths = slices.Compact(paths)

		docs := make([]*document.Document, 0, len(paths))
		for _, p := range paths {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			data, err := fs.ReadFile(fsys, p)
			if err != nil {
				return nil, fmt.Errorf("read %s: %w", p, err)
			}
			md, err := ParseYAML(data)
			if err != nil {
				return nil, errors.InvalidFormat(p, "YAML mapping").WithCause(err)
			}
			docs = append(docs, document.New(p, "", data, md))
		}
		run.Log().Debug("read files", logger.Fields(logger.FieldDocuments, len(docs)))
		return docs, nil
	})
}

// ParseYAML decodes a YAML mapping into Metadata, keeping key order. Nested
// mappings become Map values, sequences of scalars become Strings, and
// sequences of mappings become Records holding []*document.Metadata.
// Timestamps are decoded as Time. Null values are dropped. An empty input
// yields empty metadata.
func ParseYAML(data []byte) (*document.Metadata, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, err
	}
	if root.Kind == 0 || len(root.Content) == 0 {
		return document.NewMetadata(), nil
	}
	node := root.Content[0]
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: expected a mapping, got %s", node.Line, node.ShortTag())
	}
	return mappingToMetadata(node)
}

func mappingToMetadata(node *yaml.Node) (*document.Metadata, error) {
	pairs := make([]document.Pair, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, val := node.Content[i], node.Content[i+1]
		v, ok, err := nodeValue(val)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", key.Value, err)
		}
		if ok {
			pairs = append(pairs, document.Pair{Key: key.Value, Value: v})
		}
	}
	return document.NewMetadata(pairs...), nil
}

func nodeValue(node *yaml.Node) (document.Value, bool, error) {
	switch node.Kind {
	case yaml.AliasNode:
		return nodeValue(node.Alias)
	case yaml.MappingNode:
		md, err := mappingToMetadata(node)
		if err != nil {
			return document.Value{}, false, err
		}
		return document.Map(md), true, nil
	case yaml.SequenceNode:
		return sequenceValue(node)
	case yaml.ScalarNode:
		return scalarValue(node)
	default:
		return document.Value{}, false, fmt.Errorf("line %d: unsupported node", node.Line)
	}
}

func sequenceValue(node *yaml.Node) (document.Value, bool, error) {
	allMaps := len(node.Content) > 0
	for _, item := range node.Content {
		if item.Kind != yaml.MappingNode {
			allMaps = false
		}
	}
	if allMaps {
		records := make([]*document.Metadata, len(node.Content))
		for i, item := range node.Content {
			md, err := mappingToMetadata(item)
			if err != nil {
				return document.Value{}, false, err
			}
			records[i] = md
		}
		return document.Records(records), true, nil
	}

	items := make([]string, 0, len(node.Content))
	for _, item := range node.Content {
		if item.Kind != yaml.ScalarNode {
			return document.Value{}, false, fmt.Errorf("line %d: mixed sequence", item.Line)
		}
		items = append(items, item.Value)
	}
	return document.Strings(items), true, nil
}

func scalarValue(node *yaml.Node) (document.Value, bool, error) {
	switch node.ShortTag() {
	case "!!null":
		return document.Value{}, false, nil
	case "!!bool":
		var b bool
		if err := node.Decode(&b); err != nil {
			return document.Value{}, false, err
		}
		return document.Bool(b), true, nil
	case "!!int":
		var n int
		if err := node.Decode(&n); err != nil {
			return document.Value{}, false, err
		}
		return document.Int(n), true, nil
	case "!!float":
		var f float64
		if err := node.Decode(&f); err != nil {
			return document.Value{}, false, err
		}
		return document.Float(f), true, nil
	case "!!timestamp":
		var t time.Time
		if err := node.Decode(&t); err != nil {
			return document.Value{}, false, err
		}
		return document.Time(t), true, nil
	default:
		return document.String(node.Value), true, nil
	}
}

// WriteFiles uploads the content of every document that has a destination
// to store. Documents pass through unchanged.
func WriteFiles(store storage.Storage) Module {
	return ModuleFunc("WriteFiles", func(ctx context.Context, run *Context, docs []*document.Document) ([]*document.Document, error) {
		written := 0
		for _, doc := range docs {
			dest := doc.Destination()
			if dest == "" {
				run.Log().Debug("no destination, not writing", logger.Fields("source", doc.Source()))
				continue
			}
			if err := store.Upload(ctx, dest, bytes.NewReader(doc.Content())); err != nil {
				return nil, fmt.Errorf("write %s: %w", dest, err)
			}
			written++
		}
		run.Log().Debug("wrote files", logger.Fields(logger.FieldDocuments, written))
		return docs, nil
	})
}

// ReadStorage loads every object under prefix in store as a document whose
// source and destination are the object path.
func ReadStorage(store storage.Storage, prefix string) Module {
	return ModuleFunc("ReadStorage", func(ctx context.Context, _ *Context, _ []*document.Document) ([]*document.Document, error) {
		bc := storage.NewByteClient(store)
		files, err := bc.List(ctx, prefix)
		if err != nil {
			return nil, err
		}
		docs := make([]*document.Document, 0, len(files))
		for _, f := range files {
			data, err := bc.Download(ctx, f.Path)
			if err != nil {
				return nil, fmt.Errorf("read %s: %w", f.Path, err)
			}
			docs = append(docs, document.New(f.Path, f.Path, data, nil))
		}
		return docs, nil
	})
}
