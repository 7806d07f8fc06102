package crawler

import (
	"context"
	"fmt"
	"net/url"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"

	"github.com/zarif007/RepliKat/pkg/config"
	"github.com/zarif007/RepliKat/pkg/extract"
	"github.com/zarif007/RepliKat/pkg/fetch"
	"github.com/zarif007/RepliKat/pkg/models"
	"github.com/zarif007/RepliKat/pkg/parse"
	"github.com/zarif007/RepliKat/pkg/utils"
)

// Crawler maps the reachable route structure of a site from one root URL.
// A single Crawler can run many crawls; all per-invocation state lives in a
// crawlState owned by the Crawl call.
type Crawler struct {
	log       *logrus.Entry
	cfg       *config.CrawlConfig
	fetcher   fetch.PageFetcher
	extractor *extract.LinkExtractor
}

// crawlState is the shared mutable state of one crawl invocation, passed by
// reference to every recursive branch.
type crawlState struct {
	rootHost string
	visited  *visitedSet
	budget   *pageBudget
	sem      *semaphore.Weighted // Bounds simultaneous in-flight fetches
	pacer    *fetch.Pacer
	outcomes *outcomeCounter
}

// New creates a Crawler. The fetcher is injected so tests (and the MCP layer)
// can share one client; pass NewRetryingFetcher's result for real crawls.
func New(cfg *config.CrawlConfig, fetcher fetch.PageFetcher, log *logrus.Entry) *Crawler {
	return &Crawler{
		log:       log,
		cfg:       cfg,
		fetcher:   fetcher,
		extractor: extract.NewLinkExtractor(log),
	}
}

// Crawl explores the site reachable from start and returns the route tree
// plus a summary report. It never fails: every failure mode is encoded on
// the nodes, and an unparsable start input yields a single degenerate root.
func (c *Crawler) Crawl(ctx context.Context, start string) (*models.RouteNode, *models.CrawlReport) {
	report := &models.CrawlReport{
		CrawlID:   uuid.New().String(),
		StartURL:  start,
		StartedAt: time.Now(),
	}
	crawlLog := c.log.WithField("crawl_id", report.CrawlID)

	startURL, err := parse.ParseStartURL(start)
	if err != nil {
		crawlLog.Warnf("Rejecting start input '%s': %v", start, err)
		root := &models.RouteNode{
			Path:     "/",
			URL:      start,
			Children: []*models.RouteNode{},
			Error:    models.MsgInvalidStartURL,
			Outcome:  models.OutcomeInvalidStart,
		}
		report.Outcomes = map[models.NodeOutcome]int{models.OutcomeInvalidStart: 1}
		c.finishReport(report, root)
		return root, report
	}

	canonical := parse.Normalize(startURL)
	st := &crawlState{
		rootHost: startURL.Hostname(),
		visited:  newVisitedSet(),
		budget:   newPageBudget(c.cfg.MaxPages),
		sem:      semaphore.NewWeighted(int64(c.cfg.MaxConcurrency)),
		pacer:    fetch.NewPacer(c.cfg.Delay, crawlLog),
		outcomes: newOutcomeCounter(),
	}
	report.RootHost = st.rootHost

	crawlLog.WithFields(logrus.Fields{
		"root_host": st.rootHost,
		"max_depth": c.cfg.MaxDepth,
		"max_pages": c.cfg.MaxPages,
	}).Info("Crawl starting")

	root := c.crawlNode(ctx, st, canonical, 0, crawlLog)

	c.finishReport(report, root)
	report.PagesFetched = st.budget.Used()
	report.Outcomes = st.outcomes.snapshot()
	crawlLog.WithFields(logrus.Fields{
		"pages_fetched": report.PagesFetched,
		"routes":        report.RoutesDiscovered,
		"duration":      report.Duration().String(),
	}).Info("Crawl finished")
	return root, report
}

// crawlNode resolves one canonical URL into a RouteNode, recursing into its
// in-domain children. This is the per-URL state machine: skip checks first,
// then the fetch, then the concurrent child expansion.
func (c *Crawler) crawlNode(ctx context.Context, st *crawlState, canonicalURL string, depth int, crawlLog *logrus.Entry) *models.RouteNode {
	taskLog := crawlLog.WithFields(logrus.Fields{"url": canonicalURL, "depth": depth})

	node := &models.RouteNode{
		Path:     parse.RoutePath(canonicalURL),
		URL:      canonicalURL,
		Children: []*models.RouteNode{},
	}
	resolve := func(outcome models.NodeOutcome) *models.RouteNode {
		node.Outcome = outcome
		st.outcomes.record(outcome)
		return node
	}

	// Depth and page budgets: exceeded branches return skip nodes, no fetch
	if depth > c.cfg.MaxDepth {
		taskLog.Debug("Depth budget exceeded")
		node.Error = models.MsgMaxDepth
		return resolve(models.OutcomeSkippedDepth)
	}
	if st.budget.Exhausted() {
		taskLog.Debug("Page budget exhausted")
		node.Error = models.MsgMaxPages
		return resolve(models.OutcomeSkippedBudget)
	}

	// Claim the URL; a branch that loses this race returns a bare node so
	// the same URL is never expanded under two parents
	if !st.visited.Add(canonicalURL) {
		taskLog.Debug("URL already claimed by another branch")
		return resolve(models.OutcomeSkippedVisited)
	}

	// Charge the budget under its own lock; racing siblings cannot overshoot
	if !st.budget.TryAcquire() {
		taskLog.Debug("Page budget exhausted at acquisition")
		node.Error = models.MsgMaxPages
		return resolve(models.OutcomeSkippedBudget)
	}

	resp, fetchErr := c.fetchPaced(ctx, st, canonicalURL, taskLog)
	if fetchErr != nil {
		if fetch.IsRetryFailure(fetchErr) {
			taskLog.WithField("category", utils.CategorizeError(fetchErr)).Warnf("Fetch failed after retries: %v", fetchErr)
		} else {
			taskLog.Warnf("Fetch aborted before any attempt: %v", fetchErr)
		}
		node.Error = models.MsgFetchFailed
		return resolve(models.OutcomeTransportFailure)
	}

	node.Status = resp.StatusCode
	if !resp.IsSuccess() {
		taskLog.WithField("status", resp.StatusCode).Info("Page returned HTTP error status")
		node.Error = fmt.Sprintf("HTTP %d", resp.StatusCode)
		return resolve(models.OutcomeHTTPError)
	}
	if !resp.IsHTML() {
		taskLog.WithField("content_type", resp.ContentType).Info("Page is not HTML, skipping link extraction")
		node.Error = models.MsgNotHTML
		return resolve(models.OutcomeNonHTML)
	}

	baseURL, err := url.Parse(canonicalURL)
	if err != nil {
		// Cannot happen for a URL the normalizer produced, but degrade to a
		// link-free page rather than dropping the node
		taskLog.Errorf("Canonical URL failed to re-parse: %v", err)
		return resolve(models.OutcomeSuccess)
	}

	candidates, extractErr := c.extractor.Links(resp.Body, baseURL, st.rootHost)
	if extractErr != nil {
		taskLog.Warnf("Link extraction failed, treating page as link-free: %v", extractErr)
		return resolve(models.OutcomeSuccess)
	}

	c.expandChildren(ctx, st, node, candidates, depth, taskLog)
	return resolve(models.OutcomeSuccess)
}

// fetchPaced applies the concurrency limit and the politeness pause around a
// single budgeted fetch.
func (c *Crawler) fetchPaced(ctx context.Context, st *crawlState, canonicalURL string, taskLog *logrus.Entry) (*fetch.PageResponse, error) {
	if err := st.sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("acquiring fetch slot: %w", err)
	}
	defer st.sem.Release(1)

	// Politeness pacing: every fetch after the crawl's first waits out the
	// configured delay
	st.pacer.ApplyDelay(st.rootHost, c.cfg.Delay)
	resp, err := c.fetcher.FetchPage(ctx, canonicalURL)
	st.pacer.UpdateLastRequestTime(st.rootHost)

	if err != nil {
		return nil, err
	}
	taskLog.WithFields(logrus.Fields{"status": resp.StatusCode, "bytes": len(resp.Body)}).Debug("Fetched page")
	return resp, nil
}

// expandChildren fans out over the candidate links of one page, recursing
// into every candidate no branch has claimed yet, and appends the resulting
// subtrees in completion order. One failed or panicked branch never aborts
// its siblings or the parent.
func (c *Crawler) expandChildren(ctx context.Context, st *crawlState, node *models.RouteNode, candidates []string, depth int, taskLog *logrus.Entry) {
	results := make(chan *models.RouteNode, len(candidates))
	launched := 0

	for _, candidate := range candidates {
		// Candidates another branch already claimed are not expanded here;
		// whichever branch claimed them owns their subtree
		if st.visited.Contains(candidate) {
			continue
		}
		launched++
		go func(childURL string) {
			defer func() {
				if r := recover(); r != nil {
					taskLog.WithFields(logrus.Fields{
						"panic_info":  r,
						"child_url":   childURL,
						"stack_trace": string(debug.Stack()),
					}).Error("PANIC recovered in child expansion")
					// The fabricated node must still be tallied so the
					// report's outcome counts match the tree
					st.outcomes.record(models.OutcomeTransportFailure)
					results <- &models.RouteNode{
						Path:     parse.RoutePath(childURL),
						URL:      childURL,
						Children: []*models.RouteNode{},
						Error:    models.MsgFetchFailed,
						Outcome:  models.OutcomeTransportFailure,
					}
				}
			}()
			results <- c.crawlNode(ctx, st, childURL, depth+1, taskLog)
		}(candidate)
	}

	// Join: children attach in the order their expansions settle
	for i := 0; i < launched; i++ {
		child := <-results
		if child == nil {
			continue
		}
		// Self-loop guard: a page linking to itself via a different query or
		// fragment must not become its own child
		if child.Path == node.Path {
			taskLog.Debugf("Dropping self-loop child: %s", child.URL)
			continue
		}
		node.Children = append(node.Children, child)
	}
}

func (c *Crawler) finishReport(report *models.CrawlReport, root *models.RouteNode) {
	report.FinishedAt = time.Now()
	report.RoutesDiscovered = root.CountNodes()
}
