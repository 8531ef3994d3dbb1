package feeds

import (
	"context"
	"mime"
	"net/url"
	"path"
	"time"

	gofeeds "github.com/gorilla/feeds"

	"github.com/kbukum/sitekit/document"
	"github.com/kbukum/sitekit/errors"
	"github.com/kbukum/sitekit/pipeline"
)

const (
	DefaultAtomPath = "feeds/news.atom"
	DefaultRSSPath  = "feeds/news.rss"

	// ModuleName is the name Generator reports to the pipeline.
	ModuleName = "GenerateFeeds"
)

// ItemConfig reads the per-entry fields of a feed from a document. A nil
// function leaves the field empty.
type ItemConfig struct {
	Title       func(*document.Document) string
	Description func(*document.Document) string
	Published   func(*document.Document) time.Time
	Link        func(*document.Document) string
	ID          func(*document.Document) string
	Author      func(*document.Document) string
	Image       func(*document.Document) string
}

// FeedItemConfig reads entries from the attached FeedItem. The id is the
// link, the author falls back to the document's Author and then its Title,
// and entries carry no image.
func FeedItemConfig() ItemConfig {
	return ItemConfig{
		Title:       fromItem(func(i FeedItem) string { return i.Title }),
		Description: fromItem(func(i FeedItem) string { return i.Description }),
		Published:   fromItem(func(i FeedItem) time.Time { return i.Published }),
		Link:        fromItem(func(i FeedItem) string { return i.Link }),
		ID:          fromItem(func(i FeedItem) string { return normalizeLink(i.Link) }),
		Author:      itemAuthor,
	}
}

func fromItem[T any](get func(FeedItem) T) func(*document.Document) T {
	return func(d *document.Document) T {
		item, _ := ItemOf(d)
		return get(item)
	}
}

func itemAuthor(d *document.Document) string {
	if item, ok := ItemOf(d); ok && item.Author != "" {
		return item.Author
	}
	if s, _ := d.Metadata().GetString(document.Author); s != "" {
		return s
	}
	s, _ := d.Metadata().GetString(document.Title)
	return s
}

func normalizeLink(link string) string {
	u, err := url.Parse(link)
	if err != nil {
		return link
	}
	return u.String()
}

// Config configures a Generator.
type Config struct {
	AtomPath    string `mapstructure:"atom_path" validate:"required"`
	RSSPath     string `mapstructure:"rss_path" validate:"required"`
	Title       string `mapstructure:"title" validate:"required"`
	Description string `mapstructure:"description"`
	// Link is the site the feed belongs to.
	Link string `mapstructure:"link" validate:"required,url"`
	// Item defaults to FeedItemConfig.
	Item *ItemConfig `mapstructure:"-" validate:"-"`
}

// ApplyDefaults fills in the output paths.
func (c *Config) ApplyDefaults() {
	if c.AtomPath == "" {
		c.AtomPath = DefaultAtomPath
	}
	if c.RSSPath == "" {
		c.RSSPath = DefaultRSSPath
	}
}

// Generator serializes its input as one Atom and one RSS document. Entries
// keep input order.
type Generator struct {
	cfg Config
}

var _ pipeline.Module = (*Generator)(nil)

// NewGenerator creates a Generator.
func NewGenerator(cfg Config) *Generator {
	cfg.ApplyDefaults()
	if cfg.Item == nil {
		ic := FeedItemConfig()
		cfg.Item = &ic
	}
	return &Generator{cfg: cfg}
}

func (g *Generator) Name() string { return ModuleName }

// Execute returns the Atom document followed by the RSS document.
func (g *Generator) Execute(_ context.Context, run *pipeline.Context, docs []*document.Document) ([]*document.Document, error) {
	feed := g.build(run.Started, docs)

	atom, err := feed.ToAtom()
	if err != nil {
		return nil, errors.Internal(err).WithDetail("format", "atom")
	}
	rss, err := feed.ToRss()
	if err != nil {
		return nil, errors.Internal(err).WithDetail("format", "rss")
	}

	md := document.NewMetadata(document.KV(document.Title, g.cfg.Title))
	return []*document.Document{
		document.New("", g.cfg.AtomPath, []byte(atom), md),
		document.New("", g.cfg.RSSPath, []byte(rss), md),
	}, nil
}

func (g *Generator) build(generated time.Time, docs []*document.Document) *gofeeds.Feed {
	feed := &gofeeds.Feed{
		Title:       g.cfg.Title,
		Link:        &gofeeds.Link{Href: g.cfg.Link},
		Description: g.cfg.Description,
		Id:          g.cfg.Link,
		Created:     generated,
		Updated:     generated,
		Items:       make([]*gofeeds.Item, 0, len(docs)),
	}
	for _, doc := range docs {
		feed.Items = append(feed.Items, g.item(doc))
	}
	return feed
}

func (g *Generator) item(doc *document.Document) *gofeeds.Item {
	ic := *g.cfg.Item
	item := &gofeeds.Item{
		Title:       call(ic.Title, doc),
		Description: call(ic.Description, doc),
		Link:        &gofeeds.Link{Href: call(ic.Link, doc)},
		Id:          call(ic.ID, doc),
	}
	if ic.Published != nil {
		item.Created = ic.Published(doc)
		item.Updated = item.Created
	}
	if author := call(ic.Author, doc); author != "" {
		item.Author = &gofeeds.Author{Name: author}
	}
	if image := call(ic.Image, doc); image != "" {
		item.Enclosure = &gofeeds.Enclosure{Url: image, Length: "0", Type: mime.TypeByExtension(path.Ext(image))}
	}
	return item
}

func call(fn func(*document.Document) string, doc *document.Document) string {
	if fn == nil {
		return ""
	}
	return fn(doc)
}
