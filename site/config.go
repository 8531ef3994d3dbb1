package site

import (
	"os"
	"time"

	"github.com/kbukum/sitekit/config"
	"github.com/kbukum/sitekit/logger"
	"github.com/kbukum/sitekit/storage"
	"github.com/kbukum/sitekit/validation"
)

// ServiceName names the binary in config lookup, logs and traces.
const ServiceName = "sitegen"

const (
	defaultSiteTitle           = "Discover .NET"
	defaultSiteLink            = "https://discoverdot.net"
	defaultInputDir            = "input"
	defaultOutputDir           = "output"
	defaultMaxParallel         = 4
	defaultDocumentParallelism = 8
	defaultFeedTitle           = "Recent News From Discover .NET"
	defaultFeedDescription     = "A roundup of recent blog posts, podcasts, and more."
)

// Config is the sitegen configuration.
type Config struct {
	Site     SiteConfig `mapstructure:"site"`
	Validate bool       `mapstructure:"validate"`
	// InputDir holds the projects, posts and episodes YAML files.
	InputDir string `mapstructure:"input_dir" validate:"required"`
	// OutputDir receives the generated site.
	OutputDir           string           `mapstructure:"output_dir" validate:"required"`
	MaxParallel         int              `mapstructure:"max_parallel" validate:"gte=1"`
	DocumentParallelism int              `mapstructure:"document_parallelism" validate:"gte=1"`
	GitHub              GitHubConfig     `mapstructure:"github"`
	Foundation          FoundationConfig `mapstructure:"foundation"`
	Feeds               FeedsConfig      `mapstructure:"feeds"`
	// Deploy is the storage the Deploy pipeline publishes to. Deploy is not
	// registered when the provider is empty.
	Deploy  storage.Config `mapstructure:"deploy" validate:"-"`
	Logging logger.Config  `mapstructure:"logging"`
	Tracing TracingConfig  `mapstructure:"tracing"`
}

// SiteConfig describes the published site.
type SiteConfig struct {
	Title       string `mapstructure:"title" validate:"required"`
	Link        string `mapstructure:"link" validate:"required,url"`
	Description string `mapstructure:"description"`
}

// GitHubConfig configures issue enrichment. Either Token or the App fields
// authenticate; without both requests are anonymous and heavily rate limited.
type GitHubConfig struct {
	BaseURL        string        `mapstructure:"base_url" validate:"omitempty,url"`
	Token          string        `mapstructure:"token"`
	AppID          int64         `mapstructure:"app_id"`
	InstallationID int64         `mapstructure:"installation_id" validate:"required_with=AppID"`
	PrivateKeyPath string        `mapstructure:"private_key_path" validate:"required_with=AppID"`
	CacheTTL       time.Duration `mapstructure:"cache_ttl" validate:"gt=0"`
	Timeout        time.Duration `mapstructure:"timeout" validate:"gt=0"`
	MaxRetries     int           `mapstructure:"max_retries" validate:"gte=1"`
	RequestRate    float64       `mapstructure:"request_rate" validate:"gte=0"`
	// MicrosoftOwners overrides the owners flagged as Microsoft projects.
	MicrosoftOwners []string `mapstructure:"microsoft_owners"`
}

// UsesApp reports whether GitHub App authentication is configured.
func (c GitHubConfig) UsesApp() bool { return c.AppID != 0 }

// FoundationConfig locates the foundation project list. URL wins over File;
// with neither no project is flagged.
type FoundationConfig struct {
	URL  string `mapstructure:"url" validate:"omitempty,url"`
	File string `mapstructure:"file"`
}

// FeedsConfig configures the news feed.
type FeedsConfig struct {
	AtomPath    string `mapstructure:"atom_path" validate:"required"`
	RSSPath     string `mapstructure:"rss_path" validate:"required"`
	Title       string `mapstructure:"title" validate:"required"`
	Description string `mapstructure:"description"`
}

// TracingConfig configures OTLP export of traces and metrics.
type TracingConfig struct {
	Enabled    bool    `mapstructure:"enabled"`
	Endpoint   string  `mapstructure:"endpoint"`
	Insecure   bool    `mapstructure:"insecure"`
	SampleRate float64 `mapstructure:"sample_rate" validate:"gte=0,lte=1"`
}

// ApplyDefaults fills in zero-value fields.
func (c *Config) ApplyDefaults() {
	if c.Site.Title == "" {
		c.Site.Title = defaultSiteTitle
	}
	if c.Site.Link == "" {
		c.Site.Link = defaultSiteLink
	}
	if c.InputDir == "" {
		c.InputDir = defaultInputDir
	}
	if c.OutputDir == "" {
		c.OutputDir = defaultOutputDir
	}
	if c.MaxParallel <= 0 {
		c.MaxParallel = defaultMaxParallel
	}
	if c.DocumentParallelism <= 0 {
		c.DocumentParallelism = defaultDocumentParallelism
	}
	if c.GitHub.CacheTTL <= 0 {
		c.GitHub.CacheTTL = 10 * time.Minute
	}
	if c.GitHub.Timeout <= 0 {
		c.GitHub.Timeout = 30 * time.Second
	}
	if c.GitHub.MaxRetries <= 0 {
		c.GitHub.MaxRetries = 3
	}
	if c.GitHub.Token == "" && !c.GitHub.UsesApp() {
		c.GitHub.Token = os.Getenv("GITHUB_TOKEN")
	}
	if c.Feeds.AtomPath == "" {
		c.Feeds.AtomPath = "feeds/news.atom"
	}
	if c.Feeds.RSSPath == "" {
		c.Feeds.RSSPath = "feeds/news.rss"
	}
	if c.Feeds.Title == "" {
		c.Feeds.Title = defaultFeedTitle
	}
	if c.Feeds.Description == "" {
		c.Feeds.Description = defaultFeedDescription
	}
	if c.Deploy.Provider != "" {
		c.Deploy.ApplyDefaults()
	}
	if c.Tracing.Enabled {
		if c.Tracing.Endpoint == "" {
			c.Tracing.Endpoint = "localhost:4318"
		}
		if c.Tracing.SampleRate == 0 {
			c.Tracing.SampleRate = 1.0
		}
	}
	c.Logging.ApplyDefaults()
}

// Validate reports every invalid field at once.
func (c *Config) Validate() error {
	v := validation.New()
	v.Merge("", validation.Validate(c))
	if c.Deploy.Provider != "" {
		v.Merge("deploy", c.Deploy.Validate())
	}
	v.Merge("logging", c.Logging.Validate())
	v.Custom(c.GitHub.Token == "" || !c.GitHub.UsesApp(), "github", "token and app_id are mutually exclusive")
	return v.Err()
}

// Load reads the configuration from config files and SITEGEN_* environment
// variables. GITHUB_TOKEN is honored when no token is configured.
func Load(opts ...config.LoaderOption) (*Config, error) {
	opts = append([]config.LoaderOption{config.WithEnvPrefix("SITEGEN")}, opts...)
	return config.Load[Config](ServiceName, opts...)
}
