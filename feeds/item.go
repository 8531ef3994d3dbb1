package feeds

import (
	"context"
	"fmt"
	"time"

	"github.com/kbukum/sitekit/document"
	"github.com/kbukum/sitekit/pipeline"
	"github.com/kbukum/sitekit/validation"
)

// FeedItem is the feed view of a post or episode.
type FeedItem struct {
	Title       string    `json:"title" validate:"required"`
	Description string    `json:"description"`
	Published   time.Time `json:"published" validate:"required"`
	Link        string    `json:"link" validate:"required,url"`
	Author      string    `json:"author,omitempty"`
	// Recent is set when Published falls inside the run's recent window.
	Recent bool `json:"recent"`
}

// ItemOf returns the FeedItem attached to doc.
func ItemOf(doc *document.Document) (FeedItem, bool) {
	v, ok := doc.Metadata().Get(document.FeedItem)
	if !ok {
		return FeedItem{}, false
	}
	item, ok := v.Interface().(FeedItem)
	return item, ok
}

// NewFeedItem builds a FeedItem from a document's Title, Description,
// Published, Link and Author metadata. The item is recent when published
// at or after anchor.
func NewFeedItem(doc *document.Document, anchor time.Time) (FeedItem, error) {
	md := doc.Metadata()
	item := FeedItem{}
	item.Title, _ = md.GetString(document.Title)
	item.Description, _ = md.GetString(document.Description)
	item.Published, _ = md.GetTime(document.Published)
	item.Link, _ = md.GetString(document.Link)
	item.Author, _ = md.GetString(document.Author)
	item.Recent = !item.Published.Before(anchor)

	if err := validation.Validate(item); err != nil {
		return FeedItem{}, fmt.Errorf("%s: %w", doc.Source(), err)
	}
	return item, nil
}

// Project attaches a FeedItem to every document. A document that lacks a
// title, a publish time or a valid link fails the pipeline.
func Project() pipeline.Module {
	return pipeline.ModuleFunc("ProjectFeedItems", func(_ context.Context, run *pipeline.Context, docs []*document.Document) ([]*document.Document, error) {
		anchor := run.RecentAnchor()
		out := make([]*document.Document, 0, len(docs))
		for _, doc := range docs {
			item, err := NewFeedItem(doc, anchor)
			if err != nil {
				return nil, err
			}
			out = append(out, doc.Clone(document.NewMetadata(
				document.Pair{Key: document.FeedItem, Value: document.Any(item)},
			)))
		}
		return out, nil
	})
}

// IsRecent keeps documents whose FeedItem is recent.
func IsRecent(doc *document.Document) bool {
	item, ok := ItemOf(doc)
	return ok && item.Recent
}

// ByPublished orders documents by their FeedItem publish time.
func ByPublished(a, b *document.Document) int {
	ia, _ := ItemOf(a)
	ib, _ := ItemOf(b)
	return ia.Published.Compare(ib.Published)
}
