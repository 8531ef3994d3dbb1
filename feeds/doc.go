// Package feeds projects posts and episodes onto feed items and serializes
// them as Atom and RSS.
//
// A FeedItem is attached to a document under the document.FeedItem key by
// the Project module. Generator reads documents through an ItemConfig, a
// set of plain functions, so the same generator can serialize any document
// shape.
package feeds
