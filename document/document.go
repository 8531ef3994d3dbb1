package document

import (
	"github.com/google/uuid"
)

// Document is an immutable unit of content. The zero value is not usable;
// construct documents with New and derive new ones with the Clone methods.
type Document struct {
	id          uuid.UUID
	parentID    uuid.UUID
	rootID      uuid.UUID
	source      string
	destination string
	content     []byte
	metadata    *Metadata
}

// New creates a root document. content is copied.
func New(source, destination string, content []byte, md *Metadata) *Document {
	id := uuid.New()
	if md == nil {
		md = NewMetadata()
	}
	return &Document{
		id:          id,
		rootID:      id,
		source:      source,
		destination: destination,
		content:     append([]byte(nil), content...),
		metadata:    md,
	}
}

func (d *Document) ID() uuid.UUID { return d.id }
func (d *Document) ParentID() uuid.UUID { return d.parentID }
func (d *Document) RootID() uuid.UUID { return d.rootID }
func (d *Document) Source() string { return d.source }
func (d *Document) Destination() string { return d.destination }
func (d *Document) Metadata() *Metadata { return d.metadata }

// Content returns the document bytes. The slice must not be modified.
func (d *Document) Content() []byte { return d.content }

// ContentString returns the document bytes as a string.
func (d *Document) ContentString() string { return string(d.content) }

// IsRoot reports whether the document was created by New rather than cloned.
func (d *Document) IsRoot() bool { return d.parentID == uuid.Nil }

// CloneOption customizes a clone.
type CloneOption func(*Document)

// WithDestination sets the clone's destination path.
func WithDestination(dest string) CloneOption {
	return func(d *Document) { d.destination = dest }
}

// WithContent replaces the clone's content. content is copied.
func WithContent(content []byte) CloneOption {
	return func(d *Document) { d.content = append([]byte(nil), content...) }
}

// WithSource sets the clone's source path.
func WithSource(source string) CloneOption {
	return func(d *Document) { d.source = source }
}

// Overlay merges md over the clone's metadata, replacing existing keys.
func Overlay(md *Metadata) CloneOption {
	return func(d *Document) { d.metadata = d.metadata.Merge(md) }
}

// OverlayIfAbsent merges only those keys of md the clone does not carry.
func OverlayIfAbsent(md *Metadata) CloneOption {
	return func(d *Document) { d.metadata = d.metadata.MergeIfAbsent(md) }
}

// CloneWith derives a new document from d. The clone gets a fresh ID,
// records d's ID as its ParentID and keeps d's RootID. Options apply in
// order.
func (d *Document) CloneWith(opts ...CloneOption) *Document {
	out := &Document{
		id:          uuid.New(),
		parentID:    d.id,
		rootID:      d.rootID,
		source:      d.source,
		destination: d.destination,
		content:     d.content,
		metadata:    d.metadata,
	}
	for _, opt := range opts {
		opt(out)
	}
	return out
}

// Clone derives a new document with overlay merged over d's metadata.
func (d *Document) Clone(overlay *Metadata) *Document {
	return d.CloneWith(Overlay(overlay))
}

// CloneIfAbsent derives a new document adding only the overlay keys d does
// not already carry.
func (d *Document) CloneIfAbsent(overlay *Metadata) *Document {
	return d.CloneWith(OverlayIfAbsent(overlay))
}

// Sequence is the ordered output of a module or pipeline.
type Sequence []*Document

// Len returns the number of documents.
func (s Sequence) Len() int { return len(s) }

// Documents returns s as a plain slice.
func (s Sequence) Documents() []*Document { return s }
