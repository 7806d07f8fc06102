package models

// NodeOutcome is the terminal state a URL reached during the crawl
type NodeOutcome string

const (
	OutcomeUnset            NodeOutcome = ""                  // Zero value = node not yet resolved
	OutcomeSuccess          NodeOutcome = "success"           // 2xx HTML page, links explored
	OutcomeHTTPError        NodeOutcome = "http_error"        // Valid response with non-2xx status
	OutcomeNonHTML          NodeOutcome = "non_html"          // 2xx but not parseable as a page
	OutcomeTransportFailure NodeOutcome = "transport_failure" // Fetch failed after exhausting retries
	OutcomeSkippedDepth     NodeOutcome = "skipped_depth"     // Past the depth budget, no fetch issued
	OutcomeSkippedBudget    NodeOutcome = "skipped_budget"    // Past the page budget, no fetch issued
	OutcomeSkippedVisited   NodeOutcome = "skipped_visited"   // Another branch already claimed the URL
	OutcomeInvalidStart     NodeOutcome = "invalid_start"     // Root input was not parsable as a URL
)

// Node error strings are part of the result contract; callers match on them.
const (
	MsgMaxDepth        = "Max depth reached"
	MsgMaxPages        = "Max pages reached"
	MsgFetchFailed     = "Failed to fetch after retries"
	MsgNotHTML         = "Not HTML content"
	MsgInvalidStartURL = "Invalid starting URL"
)

// String implements fmt.Stringer for logging
func (o NodeOutcome) String() string {
	if o == "" {
		return "unset"
	}
	return string(o)
}

// IsValid returns true if the outcome is a known terminal value
func (o NodeOutcome) IsValid() bool {
	switch o {
	case OutcomeSuccess, OutcomeHTTPError, OutcomeNonHTML, OutcomeTransportFailure,
		OutcomeSkippedDepth, OutcomeSkippedBudget, OutcomeSkippedVisited, OutcomeInvalidStart:
		return true
	}
	return false
}

// IsSkip returns true for outcomes where no fetch attempt completed
func (o NodeOutcome) IsSkip() bool {
	switch o {
	case OutcomeSkippedDepth, OutcomeSkippedBudget, OutcomeSkippedVisited:
		return true
	}
	return false
}

// IsFetched returns true for outcomes carrying an HTTP status code
func (o NodeOutcome) IsFetched() bool {
	switch o {
	case OutcomeSuccess, OutcomeHTTPError, OutcomeNonHTML:
		return true
	}
	return false
}
