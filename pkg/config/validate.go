package config

import (
	"fmt"
	"time"

	"github.com/zarif007/RepliKat/pkg/utils"
)

// Validate checks CrawlConfig fields and applies sensible defaults.
// Returns collected warnings and any fatal error.
// Modifies receiver in place to apply defaults.
func (c *CrawlConfig) Validate() (warnings []string, err error) {
	// MaxDepth and MaxPages: zero is a legitimate bound (root-only crawl,
	// no-fetch crawl), only negative values are invalid
	if c.MaxDepth < 0 {
		return nil, fmt.Errorf("%w: max_depth cannot be negative", utils.ErrConfigValidation)
	}
	if c.MaxPages < 0 {
		return nil, fmt.Errorf("%w: max_pages cannot be negative", utils.ErrConfigValidation)
	}

	// Timeout
	if c.Timeout < 0 {
		warnings = append(warnings, "timeout cannot be negative, using default")
		c.Timeout = 0
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}

	// Delay
	if c.Delay < 0 {
		warnings = append(warnings, "delay cannot be negative, disabling politeness pause")
		c.Delay = 0
	}

	// MaxConcurrency
	if c.MaxConcurrency <= 0 {
		warnings = append(warnings, fmt.Sprintf("max_concurrency should be > 0, defaulting to %d", DefaultMaxConcurrency))
		c.MaxConcurrency = DefaultMaxConcurrency
	}

	// MaxAttempts
	if c.MaxAttempts <= 0 {
		warnings = append(warnings, fmt.Sprintf("max_attempts should be > 0, defaulting to %d", DefaultMaxAttempts))
		c.MaxAttempts = DefaultMaxAttempts
	}

	// BackoffStep
	if c.BackoffStep < 0 {
		warnings = append(warnings, "backoff_step cannot be negative, disabling backoff")
		c.BackoffStep = 0
	}
	if c.BackoffStep == 0 && c.MaxAttempts > 1 {
		c.BackoffStep = DefaultBackoffStep
	}

	// UserAgent
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}

	// MaxPageSizeBytes
	if c.MaxPageSizeBytes < 0 {
		warnings = append(warnings, "max_page_size_bytes cannot be negative, using default")
		c.MaxPageSizeBytes = 0
	}
	if c.MaxPageSizeBytes == 0 {
		c.MaxPageSizeBytes = DefaultMaxPageSize
	}

	return warnings, nil
}

// Validate checks AppConfig and nested sections, applying defaults.
func (c *AppConfig) Validate() (warnings []string, err error) {
	crawlWarnings, crawlErr := c.Crawl.Validate()
	warnings = append(warnings, crawlWarnings...)
	if crawlErr != nil {
		return warnings, crawlErr
	}
	c.validateHTTPClientSettings()
	return warnings, nil
}

// validateHTTPClientSettings applies defaults to HTTP client settings.
func (c *AppConfig) validateHTTPClientSettings() {
	h := &c.HTTPClientSettings
	if h.MaxIdleConns <= 0 {
		h.MaxIdleConns = 100
	}
	if h.MaxIdleConnsPerHost <= 0 {
		h.MaxIdleConnsPerHost = 8
	}
	if h.IdleConnTimeout <= 0 {
		h.IdleConnTimeout = 90 * time.Second
	}
	if h.TLSHandshakeTimeout <= 0 {
		h.TLSHandshakeTimeout = 10 * time.Second
	}
	if h.ExpectContinueTimeout <= 0 {
		h.ExpectContinueTimeout = 1 * time.Second
	}
	if h.DialerTimeout <= 0 {
		h.DialerTimeout = 15 * time.Second
	}
	if h.DialerKeepAlive <= 0 {
		h.DialerKeepAlive = 30 * time.Second
	}
	// h.Timeout stays 0 by default: the per-attempt deadline from
	// CrawlConfig.Timeout bounds each request instead
}
