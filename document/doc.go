// Package document defines the immutable unit of content that flows through
// pipelines.
//
// A Document carries bytes plus key-ordered Metadata. Documents and their
// metadata are never changed after construction: every transformation
// produces a new Document through Clone, CloneIfAbsent or CloneWith, which
// record the parent's ID as ParentID and keep RootID stable.
//
// Metadata values are a tagged union (Value). The conventional type of each
// well-known key is listed in keys.go; typed accessors report a mismatch
// instead of guessing.
package document
