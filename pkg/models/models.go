package models

import "time"

// RouteNode is one resolved route in the crawl result tree. A node either
// carries the HTTP status of a completed fetch, an Error string describing
// why no usable page was produced, or neither (a bare node for a URL that
// another branch already claimed).
type RouteNode struct {
	Path     string       `json:"path"`             // Canonical pathname, no query/fragment, no trailing slash except root "/"
	URL      string       `json:"url"`              // Full canonical URL used to fetch
	Children []*RouteNode `json:"children"`         // Discovery subtrees, appended in completion order
	Status   int          `json:"status,omitempty"` // HTTP status of the fetch attempt (0 = no fetch completed)
	Error    string       `json:"error,omitempty"`  // Diagnostic when the node yielded no usable page
	Outcome  NodeOutcome  `json:"outcome"`          // Tagged terminal state, see status.go
}

// CountNodes returns the number of nodes in the subtree rooted at n, inclusive.
func (n *RouteNode) CountNodes() int {
	if n == nil {
		return 0
	}
	count := 1
	for _, child := range n.Children {
		count += child.CountNodes()
	}
	return count
}

// Walk calls fn for every node in the subtree rooted at n, parent before children.
func (n *RouteNode) Walk(fn func(*RouteNode)) {
	if n == nil {
		return
	}
	fn(n)
	for _, child := range n.Children {
		child.Walk(fn)
	}
}

// CrawlReport summarizes a single crawl invocation for the caller.
type CrawlReport struct {
	CrawlID          string              `yaml:"crawl_id" json:"crawl_id"`
	StartURL         string              `yaml:"start_url" json:"start_url"`
	RootHost         string              `yaml:"root_host,omitempty" json:"root_host,omitempty"`
	Note             string              `yaml:"note,omitempty" json:"note,omitempty"` // Free-text note supplied by the caller, carried verbatim
	StartedAt        time.Time           `yaml:"started_at" json:"started_at"`
	FinishedAt       time.Time           `yaml:"finished_at" json:"finished_at"`
	PagesFetched     int                 `yaml:"pages_fetched" json:"pages_fetched"`         // Fetch attempts charged against the page budget
	RoutesDiscovered int                 `yaml:"routes_discovered" json:"routes_discovered"` // Total nodes in the returned tree
	Outcomes         map[NodeOutcome]int `yaml:"outcomes,omitempty" json:"outcomes,omitempty"`
}

// Duration returns the wall-clock time the crawl took.
func (r *CrawlReport) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
