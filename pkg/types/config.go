package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "research-radar/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// TableFile names a flat table file together with its delimiter and
// encoding. Both are required; the table package never guesses them.
type TableFile struct {
	Path string `json:"path" yaml:"path"`

	// Delimiter is a single character such as "," or ";". "\t" and "tab"
	// select a tab.
	Delimiter string `json:"delimiter" yaml:"delimiter"`

	// Encoding is "utf-8" or "latin-1".
	Encoding string `json:"encoding" yaml:"encoding"`
}

// FetchSource selects the remote index the fetch stage queries.
type FetchSource string

const (
	FetchArxiv       FetchSource = "arxiv"
	FetchPatentsView FetchSource = "patentsview"
)

// FetchConfig holds settings for the fetch stage.
type FetchConfig struct {
	HTTPConfig `yaml:",inline"`

	Source FetchSource `json:"source" yaml:"source"`

	// Query is passed through to the remote index unchanged.
	Query string `json:"query" yaml:"query"`

	// Start is the pagination offset.
	Start int `json:"start" yaml:"start"`

	// MaxResults is the page size.
	MaxResults int `json:"max_results" yaml:"max_results"`

	// SortBy and SortOrder are passed to arXiv (e.g. "submittedDate", "descending").
	SortBy    string `json:"sort_by" yaml:"sort_by"`
	SortOrder string `json:"sort_order" yaml:"sort_order"`

	// BaseURL overrides the index endpoint. Empty uses the source default.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`

	// APIKey is sent to sources that accept one (PatentsView).
	APIKey string `json:"-" yaml:"-"`

	// MaxRetries bounds retries on HTTP 429. Negative disables retrying.
	MaxRetries int `json:"max_retries" yaml:"max_retries"`

	Output TableFile `json:"output" yaml:"output"`
}

// CombineConfig holds settings for the combine stage.
type CombineConfig struct {
	First  TableFile `json:"first" yaml:"first"`
	Second TableFile `json:"second" yaml:"second"`
	Output TableFile `json:"output" yaml:"output"`
}

// RateLimitConfig configures the token bucket that throttles generator calls.
type RateLimitConfig struct {
	// Interval is the time between tokens (rate = 1/Interval).
	Interval time.Duration `json:"interval" yaml:"interval"`

	// Burst is the bucket size.
	Burst int `json:"burst" yaml:"burst"`
}

// GeneratorConfig holds settings for the external text-generation endpoint.
type GeneratorConfig struct {
	HTTPConfig `yaml:",inline"`

	// URL is the model inference endpoint.
	URL string `json:"url" yaml:"url"`

	// Token is the bearer credential. Never serialized.
	Token string `json:"-" yaml:"-"`
}

// AnnotateConfig holds settings for the annotate stage.
type AnnotateConfig struct {
	Generator GeneratorConfig `json:"generator" yaml:"generator"`
	RateLimit RateLimitConfig `json:"rate_limit" yaml:"rate_limit"`

	// SourceFilter is matched as a substring of each record's DocumentURI.
	SourceFilter string `json:"source_filter" yaml:"source_filter"`

	// Topic is embedded in the prompt ("... from this <topic> abstract").
	Topic string `json:"topic" yaml:"topic"`

	// Parser selects the response parser: "markers" or "json".
	Parser string `json:"parser" yaml:"parser"`

	// Force re-annotates rows that already hold an annotation.
	Force bool `json:"force" yaml:"force"`

	// Resume fills rows from the ledger when a successful outcome exists.
	Resume bool `json:"resume" yaml:"resume"`

	Input  TableFile `json:"input" yaml:"input"`
	Output TableFile `json:"output" yaml:"output"`
}

// LedgerConfig holds settings for the annotation ledger.
type LedgerConfig struct {
	// Enabled turns on outcome recording during annotate.
	Enabled bool `json:"enabled" yaml:"enabled"`

	// Path is the SQLite database file.
	Path string `json:"path" yaml:"path"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	// Level is debug, info, warn, or error.
	Level string `json:"level" yaml:"level"`

	// Format is console or json.
	Format string `json:"format" yaml:"format"`
}

// Config groups all stage configurations.
type Config struct {
	Log      LogConfig      `json:"log" yaml:"log"`
	Fetch    FetchConfig    `json:"fetch" yaml:"fetch"`
	Combine  CombineConfig  `json:"combine" yaml:"combine"`
	Annotate AnnotateConfig `json:"annotate" yaml:"annotate"`
	Ledger   LedgerConfig   `json:"ledger" yaml:"ledger"`
}
