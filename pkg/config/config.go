package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Crawl option defaults. MaxDepth/MaxPages are inclusive bounds.
const (
	DefaultMaxDepth       = 2
	DefaultMaxPages       = 50
	DefaultTimeout        = 10 * time.Second
	DefaultDelay          = 500 * time.Millisecond
	DefaultMaxConcurrency = 8
	DefaultMaxAttempts    = 3
	DefaultBackoffStep    = 1 * time.Second
	DefaultMaxPageSize    = 10 << 20 // 10 MiB body cap per page
)

// DefaultUserAgent is the browser-like signature presented to crawled servers.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// CrawlConfig holds the options bounding a single crawl invocation
type CrawlConfig struct {
	MaxDepth         int           `yaml:"max_depth"`                      // Inclusive recursion depth bound (root = 0)
	MaxPages         int           `yaml:"max_pages"`                      // Inclusive bound on total fetches
	Timeout          time.Duration `yaml:"timeout,omitempty"`              // Per-attempt fetch deadline
	Delay            time.Duration `yaml:"delay,omitempty"`                // Politeness pause before every fetch after the first
	MaxConcurrency   int           `yaml:"max_concurrency,omitempty"`      // Cap on simultaneous in-flight fetches
	MaxAttempts      int           `yaml:"max_attempts,omitempty"`         // Total fetch attempts per URL (first try + retries)
	BackoffStep      time.Duration `yaml:"backoff_step,omitempty"`         // Linear backoff unit between failed attempts
	UserAgent        string        `yaml:"user_agent,omitempty"`           // Request signature; defaults to a browser UA
	MaxPageSizeBytes int64         `yaml:"max_page_size_bytes,omitempty"`  // Response body read cap
}

// AppConfig holds the global application configuration
type AppConfig struct {
	Crawl              CrawlConfig      `yaml:"crawl"`
	HTTPClientSettings HTTPClientConfig `yaml:"http_client_settings,omitempty"`
	ReportFilename     string           `yaml:"report_filename,omitempty"` // YAML crawl report output (empty = no report file)
}

// HTTPClientConfig holds settings for the shared HTTP client
type HTTPClientConfig struct {
	Timeout               time.Duration `yaml:"timeout,omitempty"`                 // Overall request timeout (0 = bounded per-attempt by CrawlConfig.Timeout)
	MaxIdleConns          int           `yaml:"max_idle_conns,omitempty"`          // Max total idle connections
	MaxIdleConnsPerHost   int           `yaml:"max_idle_conns_per_host,omitempty"` // Max idle connections per host
	IdleConnTimeout       time.Duration `yaml:"idle_conn_timeout,omitempty"`       // Timeout for idle connections
	TLSHandshakeTimeout   time.Duration `yaml:"tls_handshake_timeout,omitempty"`   // Timeout for TLS handshake
	ExpectContinueTimeout time.Duration `yaml:"expect_continue_timeout,omitempty"` // Timeout for 100-continue
	ForceAttemptHTTP2     *bool         `yaml:"force_attempt_http2,omitempty"`     // Tri-state: nil=default, true=force, false=disable
	DialerTimeout         time.Duration `yaml:"dialer_timeout,omitempty"`          // Connection dial timeout
	DialerKeepAlive       time.Duration `yaml:"dialer_keep_alive,omitempty"`       // TCP keep-alive interval
}

// DefaultCrawlConfig returns a CrawlConfig populated with the documented defaults
func DefaultCrawlConfig() CrawlConfig {
	return CrawlConfig{
		MaxDepth:         DefaultMaxDepth,
		MaxPages:         DefaultMaxPages,
		Timeout:          DefaultTimeout,
		Delay:            DefaultDelay,
		MaxConcurrency:   DefaultMaxConcurrency,
		MaxAttempts:      DefaultMaxAttempts,
		BackoffStep:      DefaultBackoffStep,
		UserAgent:        DefaultUserAgent,
		MaxPageSizeBytes: DefaultMaxPageSize,
	}
}

// ApplyDefaults fills unset options with their default values. MaxDepth and
// MaxPages are excluded: zero is a meaningful bound for both (a root-only
// crawl, a crawl that fetches nothing), so absent-vs-zero is decided where
// the value enters (Load seeds defaults before unmarshal, flag sentinels are
// negative).
func (c *CrawlConfig) ApplyDefaults() {
	d := DefaultCrawlConfig()
	if c.Timeout == 0 {
		c.Timeout = d.Timeout
	}
	if c.Delay == 0 {
		c.Delay = d.Delay
	}
	if c.MaxConcurrency == 0 {
		c.MaxConcurrency = d.MaxConcurrency
	}
	if c.MaxAttempts == 0 {
		c.MaxAttempts = d.MaxAttempts
	}
	if c.BackoffStep == 0 {
		c.BackoffStep = d.BackoffStep
	}
	if c.UserAgent == "" {
		c.UserAgent = d.UserAgent
	}
	if c.MaxPageSizeBytes == 0 {
		c.MaxPageSizeBytes = d.MaxPageSizeBytes
	}
}

// Load reads an AppConfig from a YAML file. Crawl options are seeded with
// their defaults before unmarshaling, so keys absent from the file keep the
// default while an explicit `max_depth: 0` or `max_pages: 0` is honored.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file '%s': %w", path, err)
	}
	cfg := AppConfig{Crawl: DefaultCrawlConfig()}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file '%s': %w", path, err)
	}
	return &cfg, nil
}
