package github

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"

	"github.com/kbukum/sitekit/errors"
	"github.com/kbukum/sitekit/httpclient"
	"github.com/kbukum/sitekit/logger"
	"github.com/kbukum/sitekit/observability"
	"github.com/kbukum/sitekit/resilience"
)

const (
	// DefaultBaseURL is the public GitHub REST endpoint.
	DefaultBaseURL = "https://api.github.com"
	// PageSize is the per_page value sent with every issues request.
	PageSize = 100

	serviceName = "github"

	defaultCacheTTL          = 10 * time.Minute
	defaultCacheSize         = 512
	defaultTimeout           = 30 * time.Second
	defaultMaxRetries        = 3
	defaultMaxRateLimitWaits = 5
	defaultRateLimitFallback = time.Minute
	defaultUserAgent         = "sitegen"
	apiVersion               = "2022-11-28"
)

// Config configures a Client.
type Config struct {
	// BaseURL of the REST API. Defaults to https://api.github.com.
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	// Token is a personal access token. Ignored when a token source is set.
	Token string `yaml:"token" mapstructure:"token"`
	// CacheTTL is how long a repository's issues are reused. Defaults to 10m.
	CacheTTL time.Duration `yaml:"cache_ttl" mapstructure:"cache_ttl"`
	// CacheSize bounds the number of cached repositories.
	CacheSize int `yaml:"cache_size" mapstructure:"cache_size"`
	// Timeout is the per-request timeout.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
	// MaxRetries is the number of attempts for transient failures.
	MaxRetries int `yaml:"max_retries" mapstructure:"max_retries"`
	// MaxRateLimitWaits bounds how often one fetch waits out a rate limit.
	MaxRateLimitWaits int `yaml:"max_rate_limit_waits" mapstructure:"max_rate_limit_waits"`
	// UserAgent is sent with every request; GitHub rejects requests without one.
	UserAgent string `yaml:"user_agent" mapstructure:"user_agent"`
	// RequestRate spaces requests to at most this many per second. Zero
	// disables spacing.
	RequestRate float64 `yaml:"request_rate" mapstructure:"request_rate"`
}

// ApplyDefaults fills in zero-value fields.
func (c *Config) ApplyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.CacheTTL <= 0 {
		c.CacheTTL = defaultCacheTTL
	}
	if c.CacheSize <= 0 {
		c.CacheSize = defaultCacheSize
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = defaultMaxRetries
	}
	if c.MaxRateLimitWaits <= 0 {
		c.MaxRateLimitWaits = defaultMaxRateLimitWaits
	}
	if c.UserAgent == "" {
		c.UserAgent = defaultUserAgent
	}
}

// Option configures a Client.
type Option func(*Client)

// WithClock sets the clock used for rate-limit waits and retry backoff.
func WithClock(c resilience.Clock) Option {
	return func(cl *Client) { cl.clock = c }
}

// WithTransport replaces the HTTP transport.
func WithTransport(rt http.RoundTripper) Option {
	return func(cl *Client) { cl.transport = rt }
}

// WithMetrics records fetch durations and rate-limit waits.
func WithMetrics(m *observability.Metrics) Option {
	return func(cl *Client) { cl.metrics = m }
}

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) Option {
	return func(cl *Client) { cl.log = l }
}

// WithTokenSource authenticates with tokens from src instead of Config.Token.
func WithTokenSource(src httpclient.TokenSource) Option {
	return func(cl *Client) { cl.tokens = src }
}

// Client fetches repository issues from the GitHub REST API.
type Client struct {
	cfg       Config
	http      *httpclient.Adapter
	clock     resilience.Clock
	transport http.RoundTripper
	tokens    httpclient.TokenSource
	metrics   *observability.Metrics
	log       *logger.Logger

	cache *expirable.LRU[string, []RawIssue]
	group singleflight.Group
}

// NewClient creates a Client.
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	cfg.ApplyDefaults()

	c := &Client{
		cfg:   cfg,
		clock: resilience.SystemClock{},
		log:   logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.WithComponent(serviceName)

	retry := httpclient.DefaultRetryConfig()
	retry.MaxAttempts = cfg.MaxRetries
	retry.Clock = c.clock
	retry.OnRetry = func(attempt int, err error, backoff time.Duration) {
		c.log.Warn("retrying GitHub request", logger.Fields(
			"attempt", attempt,
			logger.FieldError, err.Error(),
			logger.FieldDuration, backoff.Milliseconds(),
		))
	}

	var auth *httpclient.AuthConfig
	switch {
	case c.tokens != nil:
		auth = httpclient.TokenSourceAuth(c.tokens)
	case cfg.Token != "":
		auth = httpclient.BearerAuth(cfg.Token)
	}

	var limiter *resilience.RateLimiterConfig
	if cfg.RequestRate > 0 {
		rl := resilience.DefaultRateLimiterConfig(serviceName)
		rl.Rate = cfg.RequestRate
		rl.Burst = max(1, int(cfg.RequestRate))
		rl.Clock = c.clock
		limiter = &rl
	}

	adapter, err := httpclient.New(httpclient.Config{
		Name:    serviceName,
		BaseURL: cfg.BaseURL,
		Timeout: cfg.Timeout,
		Auth:    auth,
		Headers: map[string]string{
			"Accept":               "application/vnd.github+json",
			"User-Agent":           cfg.UserAgent,
			"X-GitHub-Api-Version": apiVersion,
		},
		Retry:       retry,
		RateLimiter: limiter,
		Transport:   c.transport,
	})
	if err != nil {
		return nil, errors.Configuration("github client: %v", err)
	}
	c.http = adapter
	c.cache = expirable.NewLRU[string, []RawIssue](cfg.CacheSize, nil, cfg.CacheTTL)
	return c, nil
}

// FetchAll returns every issue and pull request of owner/name across all
// pages. Concurrent calls for one repository share a single fetch, and a
// successful result is reused until the cache entry expires. A repository
// that does not exist yields an empty result.
func (c *Client) FetchAll(ctx context.Context, owner, name string) ([]RawIssue, error) {
	key := owner + "/" + name
	if issues, ok := c.cache.Get(key); ok {
		return issues, nil
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		if issues, ok := c.cache.Get(key); ok {
			return issues, nil
		}
		issues, err := c.fetch(ctx, owner, name)
		if err != nil {
			return nil, err
		}
		c.cache.Add(key, issues)
		return issues, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]RawIssue), nil
}

func (c *Client) fetch(ctx context.Context, owner, name string) (issues []RawIssue, err error) {
	repo := owner + "/" + name
	ctx, op := observability.StartOperation(ctx, observability.SpanIssueFetch, serviceName, "fetch_issues", c.metrics)
	op.SetAttribute(observability.AttrRepository, repo)
	defer func() { op.End(err) }()

	issues = []RawIssue{}
	path := fmt.Sprintf("/repos/%s/%s/issues", owner, name)
	opts := []httpclient.RequestOption{
		httpclient.WithQueryParam("state", "all"),
		httpclient.WithQueryParam("per_page", strconv.Itoa(PageSize)),
	}
	waits := 0
	for path != "" {
		resp, err := httpclient.Get[[]RawIssue](c.http, ctx, path, opts...)
		if err != nil {
			if rl, ok := httpclient.RateLimitOf(err); ok {
				if waits >= c.cfg.MaxRateLimitWaits {
					return nil, errors.RateLimited(serviceName).WithDetail("repository", repo).WithCause(err)
				}
				waits++
				if err := c.waitRateLimit(ctx, repo, rl); err != nil {
					return nil, err
				}
				continue
			}
			if httpclient.IsNotFound(err) {
				c.log.Debug("repository not found", logger.Fields(logger.FieldRepository, repo))
				return []RawIssue{}, nil
			}
			return nil, c.translate(err, repo)
		}
		issues = append(issues, resp.Data...)

		// The next link already carries state, per_page and page.
		path = httpclient.NextLink(resp.Headers)
		opts = nil
	}
	op.SetAttribute(observability.AttrDocuments, len(issues))
	return issues, nil
}

func (c *Client) waitRateLimit(ctx context.Context, repo string, rl *httpclient.RateLimit) error {
	wait := rl.Wait(c.clock.Now(), defaultRateLimitFallback)
	c.log.Warn("GitHub rate limit reached, waiting", logger.Fields(
		logger.FieldRepository, repo,
		logger.FieldDuration, wait.Milliseconds(),
	))
	if c.metrics != nil {
		c.metrics.RecordRateLimitWait(ctx, serviceName, wait)
	}
	return c.clock.Sleep(ctx, wait)
}

// translate maps a transport error onto the build's error codes. Context
// errors are returned unchanged so cancellation is recognizable upstream.
func (c *Client) translate(err error, repo string) error {
	if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var herr *httpclient.Error
	status := 0
	if stderrors.As(err, &herr) {
		status = herr.StatusCode
	}
	details := map[string]any{"repository": repo, "status": status}
	if httpclient.IsAuth(err) {
		return errors.Unauthorized("GitHub rejected the configured credentials.").WithDetails(details).WithCause(err)
	}
	return errors.ExternalServiceError(serviceName, err).WithDetails(details)
}
