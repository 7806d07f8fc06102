package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/zarif007/RepliKat/pkg/config"
	"github.com/zarif007/RepliKat/pkg/utils"
)

// PageResponse is the descriptor a completed fetch attempt produces. Any HTTP
// response counts, including 4xx/5xx; the status code is the caller's problem.
type PageResponse struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// IsSuccess reports whether the response carries a 2xx status
func (r *PageResponse) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// IsHTML reports whether the response declared an HTML content type
func (r *PageResponse) IsHTML() bool {
	ct := strings.ToLower(r.ContentType)
	return strings.HasPrefix(ct, "text/html") || strings.HasPrefix(ct, "application/xhtml+xml")
}

// PageFetcher fetches a single page, bounded by retries and per-attempt deadlines
type PageFetcher interface {
	FetchPage(ctx context.Context, pageURL string) (*PageResponse, error)
}

// RetryingFetcher performs time-bounded page fetches with bounded retries and
// linear backoff, using an underlying http.Client
type RetryingFetcher struct {
	client *http.Client
	cfg    *config.CrawlConfig
	log    *logrus.Entry
}

// NewRetryingFetcher creates a RetryingFetcher
func NewRetryingFetcher(client *http.Client, cfg *config.CrawlConfig, log *logrus.Entry) *RetryingFetcher {
	return &RetryingFetcher{
		client: client,
		cfg:    cfg,
		log:    log,
	}
}

// FetchPage issues a GET for pageURL with a browser-like request signature.
// Each attempt is bounded by cfg.Timeout; transport failures (including
// per-attempt deadline hits) retry up to cfg.MaxAttempts total attempts with
// a linear backoff of cfg.BackoffStep × attemptNumber between them. Any HTTP
// response, success or error status, is returned immediately and never
// retried. Total failure returns utils.ErrRetryFailed wrapping the last
// transport error; callers learn nothing more specific than that.
func (f *RetryingFetcher) FetchPage(ctx context.Context, pageURL string) (*PageResponse, error) {
	var lastErr error

	reqLog := f.log.WithField("url", pageURL)
	maxAttempts := f.cfg.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		// Check the crawl-level context before attempting or sleeping
		select {
		case <-ctx.Done():
			reqLog.Warnf("Context cancelled before attempt %d: %v", attempt, ctx.Err())
			if lastErr != nil {
				return nil, fmt.Errorf("%w: %w", utils.ErrRetryFailed, lastErr)
			}
			return nil, fmt.Errorf("%w: %w", utils.ErrRetryFailed, ctx.Err())
		default:
		}

		// Linear backoff before retry attempts (not before the first attempt):
		// backoff_step × number of attempts already failed
		if attempt > 1 {
			delay := f.cfg.BackoffStep * time.Duration(attempt-1)
			if delay > 0 {
				reqLog.WithFields(logrus.Fields{"attempt": attempt, "max_attempts": maxAttempts, "delay": delay}).Warn("Retrying request...")
				select {
				case <-time.After(delay):
				case <-ctx.Done():
					reqLog.Warnf("Context cancelled during retry backoff: %v", ctx.Err())
					return nil, fmt.Errorf("%w: %w", utils.ErrRetryFailed, lastErr)
				}
			}
		}

		resp, err := f.fetchOnce(ctx, pageURL)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		reqLog.WithFields(logrus.Fields{
			"attempt":  attempt,
			"category": utils.CategorizeError(err),
		}).Warnf("Fetch attempt failed: %v", err)

		// Crawl-level cancellation is not a transient condition; stop retrying
		if ctx.Err() != nil {
			break
		}
	}

	reqLog.Errorf("All %d fetch attempts failed. Last error: %v", maxAttempts, lastErr)
	return nil, fmt.Errorf("%w: %w", utils.ErrRetryFailed, lastErr)
}

// fetchOnce performs a single attempt bounded by the per-attempt deadline.
func (f *RetryingFetcher) fetchOnce(ctx context.Context, pageURL string) (*PageResponse, error) {
	attemptCtx := ctx
	if f.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		attemptCtx, cancel = context.WithTimeout(ctx, f.cfg.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: creating request for '%s': %w", utils.ErrRequestCreation, pageURL, err)
	}
	// Browser-like request signature
	req.Header.Set("User-Agent", f.cfg.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()

	// Read body with size limit to prevent OOM on oversized pages
	maxSize := f.cfg.MaxPageSizeBytes
	if maxSize <= 0 {
		maxSize = config.DefaultMaxPageSize
	}
	body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxSize+1)) // +1 to detect exceeding the limit
	if readErr != nil {
		return nil, fmt.Errorf("%w: reading body from '%s': %w", utils.ErrResponseBodyRead, pageURL, readErr)
	}
	if int64(len(body)) > maxSize {
		return nil, fmt.Errorf("%w: page '%s' exceeds max size (%d bytes)", utils.ErrResponseBodyRead, pageURL, maxSize)
	}

	return &PageResponse{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}

var _ PageFetcher = (*RetryingFetcher)(nil)

// IsRetryFailure reports whether err is the fetcher's total-failure sentinel.
func IsRetryFailure(err error) bool {
	return errors.Is(err, utils.ErrRetryFailed)
}
