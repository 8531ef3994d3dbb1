package github

import (
	"context"
	"fmt"

	"github.com/kbukum/sitekit/document"
	"github.com/kbukum/sitekit/logger"
	"github.com/kbukum/sitekit/pipeline"
)

// ModuleName is the name IssueEnricher reports to the pipeline.
const ModuleName = "GitHubIssues"

const defaultParallelism = 4

// IssueFetcher returns every issue and pull request of a repository.
type IssueFetcher interface {
	FetchAll(ctx context.Context, owner, name string) ([]RawIssue, error)
}

// Membership decides whether a repository belongs to the foundation.
// Populate is called before the first lookup of every execution and must be
// cheap once the set is loaded.
type Membership interface {
	Populate(ctx context.Context) error
	IsMember(owner, name string) bool
}

// EnricherOption configures an IssueEnricher.
type EnricherOption func(*IssueEnricher)

// WithFoundation flags foundation projects using m.
func WithFoundation(m Membership) EnricherOption {
	return func(e *IssueEnricher) { e.foundation = m }
}

// WithMicrosoftOwners replaces DefaultMicrosoftOwners.
func WithMicrosoftOwners(owners ...string) EnricherOption {
	return func(e *IssueEnricher) { e.microsoftOwners = owners }
}

// WithParallelism bounds how many documents are enriched at once.
func WithParallelism(n int) EnricherOption {
	return func(e *IssueEnricher) {
		if n > 0 {
			e.parallelism = n
		}
	}
}

// IssueEnricher adds GitHub issue metadata to documents whose SourceCode
// points at a GitHub repository. Other documents pass through unchanged.
type IssueEnricher struct {
	issues          IssueFetcher
	foundation      Membership
	microsoftOwners []string
	parallelism     int
}

var _ pipeline.Module = (*IssueEnricher)(nil)

// NewIssueEnricher creates the enrichment module.
func NewIssueEnricher(issues IssueFetcher, opts ...EnricherOption) *IssueEnricher {
	e := &IssueEnricher{
		issues:          issues,
		microsoftOwners: DefaultMicrosoftOwners,
		parallelism:     defaultParallelism,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *IssueEnricher) Name() string { return ModuleName }

// Execute enriches docs in parallel, keeping their order. The first failure
// aborts the stage.
func (e *IssueEnricher) Execute(ctx context.Context, run *pipeline.Context, docs []*document.Document) ([]*document.Document, error) {
	if run.Settings.Validate {
		return docs, nil
	}
	if e.foundation != nil {
		if err := e.foundation.Populate(ctx); err != nil {
			return nil, err
		}
	}
	return pipeline.ForEachDocument(ModuleName, e.parallelism, e.enrich).Execute(ctx, run, docs)
}

func (e *IssueEnricher) enrich(ctx context.Context, run *pipeline.Context, doc *document.Document) ([]*document.Document, error) {
	log := run.Log().WithComponent(serviceName)
	source, _ := doc.Metadata().GetString(document.SourceCode)
	repo, ok := ParseRepository(source)
	if !ok {
		log.Debug("no GitHub repository, skipping", logger.Fields("source", source))
		return []*document.Document{doc}, nil
	}

	log.Info("getting GitHub issue data", logger.Fields("owner", repo.Owner, "name", repo.Name))
	raw, err := e.issues.FetchAll(ctx, repo.Owner, repo.Name)
	if err != nil {
		return nil, fmt.Errorf("fetch issues for %s: %w", repo, err)
	}

	issues := BuildIssues(raw, run.RecentAnchor())
	if len(issues) == 0 {
		log.Debug("repository has no issues", logger.Fields(logger.FieldRepository, repo.String()))
		return []*document.Document{doc}, nil
	}
	counts := CountIssues(issues)

	overlay := document.NewMetadata(
		document.KV(document.GitHubOwner, repo.Owner),
		document.KV(document.GitHubName, repo.Name),
		document.Pair{Key: document.Issues, Value: document.Records(issues)},
		document.KV(document.IssuesCount, counts.Total),
		document.KV(document.RecentIssuesCount, counts.Recent),
		document.KV(document.HelpWantedIssuesCount, counts.HelpWanted),
	)

	var flags []document.Pair
	if isMicrosoftOwner(e.microsoftOwners, repo.Owner) {
		flags = append(flags, document.KV(document.Microsoft, true))
	}
	if e.foundation != nil && e.foundation.IsMember(repo.Owner, repo.Name) {
		flags = append(flags, document.KV(document.Foundation, true))
	}
	enriched := doc.CloneWith(
		document.Overlay(overlay),
		document.OverlayIfAbsent(document.NewMetadata(flags...)),
	)
	return []*document.Document{enriched}, nil
}
