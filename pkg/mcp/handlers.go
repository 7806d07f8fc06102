package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/zarif007/RepliKat/pkg/config"
	"github.com/zarif007/RepliKat/pkg/crawler"
	"github.com/zarif007/RepliKat/pkg/fetch"
	"github.com/zarif007/RepliKat/pkg/parse"
)

// handleMapRoutes handles the map_routes tool
func (s *Server) handleMapRoutes(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	urlStr := strings.TrimSpace(request.GetString("url", ""))
	if urlStr == "" {
		return mcp.NewToolResultError("url parameter is required"), nil
	}

	// Canonicalize so two spellings of the same start URL share one job slot.
	// Unparsable input still gets a job; the crawl encodes the failure on its
	// degenerate root node.
	jobKey := urlStr
	if startURL, err := parse.ParseStartURL(urlStr); err == nil {
		jobKey = parse.Normalize(startURL)
	}

	crawlCfg := s.cfg.AppConfig.Crawl
	if maxDepth := request.GetInt("max_depth", -1); maxDepth >= 0 {
		crawlCfg.MaxDepth = maxDepth
	}
	if maxPages := request.GetInt("max_pages", -1); maxPages >= 0 {
		crawlCfg.MaxPages = maxPages
	}

	job, created := s.jobManager.CreateJob(jobKey)
	if !created {
		result := map[string]interface{}{
			"status":    "already_running",
			"message":   "A mapping job is already in progress for this URL",
			"job_id":    job.ID,
			"start_url": job.StartURL,
		}
		return mcp.NewToolResultText(formatJSON(result)), nil
	}

	go s.runMapJob(job, &crawlCfg, urlStr, request.GetString("note", ""))

	result := map[string]interface{}{
		"status":    "started",
		"message":   "Route mapping started",
		"job_id":    job.ID,
		"start_url": jobKey,
		"max_depth": crawlCfg.MaxDepth,
		"max_pages": crawlCfg.MaxPages,
	}
	return mcp.NewToolResultText(formatJSON(result)), nil
}

// handleGetJobStatus handles the get_job_status tool
func (s *Server) handleGetJobStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	jobID := request.GetString("job_id", "")
	if jobID == "" {
		return mcp.NewToolResultError("job_id parameter is required"), nil
	}

	job, ok := s.jobManager.Snapshot(jobID)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("job '%s' not found", jobID)), nil
	}

	result := map[string]interface{}{
		"job_id":     job.ID,
		"start_url":  job.StartURL,
		"status":     job.Status,
		"started_at": job.StartedAt.Format(time.RFC3339),
	}
	if !job.CompletedAt.IsZero() {
		result["completed_at"] = job.CompletedAt.Format(time.RFC3339)
		result["duration_seconds"] = job.CompletedAt.Sub(job.StartedAt).Seconds()
	}
	if job.Report != nil {
		result["pages_fetched"] = job.Report.PagesFetched
		result["routes_discovered"] = job.Report.RoutesDiscovered
	}

	return mcp.NewToolResultText(formatJSON(result)), nil
}

// handleGetRouteMap handles the get_route_map tool
func (s *Server) handleGetRouteMap(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	jobID := request.GetString("job_id", "")
	if jobID == "" {
		return mcp.NewToolResultError("job_id parameter is required"), nil
	}

	job, ok := s.jobManager.Snapshot(jobID)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("job '%s' not found", jobID)), nil
	}
	if job.Status != JobStatusCompleted || job.Root == nil {
		return mcp.NewToolResultError(fmt.Sprintf("job '%s' has no result yet (status: %s)", jobID, job.Status)), nil
	}

	format := request.GetString("format", "json")
	switch format {
	case "json":
		b, err := json.MarshalIndent(job.Root, "", "  ")
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to encode route tree: %v", err)), nil
		}
		return mcp.NewToolResultText(string(b)), nil
	case "tree":
		return mcp.NewToolResultText(crawler.RenderTreeString(job.Root)), nil
	case "list":
		var sb strings.Builder
		if err := crawler.RenderRouteList(&sb, job.Root); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to render route list: %v", err)), nil
		}
		return mcp.NewToolResultText(sb.String()), nil
	default:
		return mcp.NewToolResultError(fmt.Sprintf("unknown format '%s' (supported: json, tree, list)", format)), nil
	}
}

// handleCancelJob handles the cancel_job tool
func (s *Server) handleCancelJob(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	jobID := request.GetString("job_id", "")
	if jobID == "" {
		return mcp.NewToolResultError("job_id parameter is required"), nil
	}

	if !s.jobManager.CancelJob(jobID) {
		return mcp.NewToolResultError(fmt.Sprintf("job '%s' is not cancellable (not found or already finished)", jobID)), nil
	}

	result := map[string]interface{}{
		"status": "cancelled",
		"job_id": jobID,
	}
	return mcp.NewToolResultText(formatJSON(result)), nil
}

// handleListJobs handles the list_jobs tool
func (s *Server) handleListJobs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	jobs := s.jobManager.ListJobs()
	sort.Slice(jobs, func(i, j int) bool {
		return jobs[i].StartedAt.Before(jobs[j].StartedAt)
	})

	entries := make([]map[string]interface{}, 0, len(jobs))
	for _, job := range jobs {
		entry := map[string]interface{}{
			"job_id":     job.ID,
			"start_url":  job.StartURL,
			"status":     job.Status,
			"started_at": job.StartedAt.Format(time.RFC3339),
		}
		if !job.CompletedAt.IsZero() {
			entry["completed_at"] = job.CompletedAt.Format(time.RFC3339)
		}
		if job.Report != nil {
			entry["routes_discovered"] = job.Report.RoutesDiscovered
		}
		entries = append(entries, entry)
	}

	result := map[string]interface{}{
		"jobs":       entries,
		"total_jobs": len(entries),
	}
	return mcp.NewToolResultText(formatJSON(result)), nil
}

// runMapJob runs a mapping crawl in the background
func (s *Server) runMapJob(job *Job, crawlCfg *config.CrawlConfig, startURL, note string) {
	s.jobManager.MarkRunning(job.ID)

	jobCtx := s.jobManager.GetContext(job.ID)

	httpClient := fetch.NewClient(s.cfg.AppConfig.HTTPClientSettings, s.cfg.Logger)
	fetcher := fetch.NewRetryingFetcher(httpClient, crawlCfg, s.log)
	c := crawler.New(crawlCfg, fetcher, s.log)

	root, report := c.Crawl(jobCtx, startURL)
	report.Note = note

	s.jobManager.Complete(job.ID, root, report)
}

// formatJSON formats data as an indented JSON string
func formatJSON(data map[string]interface{}) string {
	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("{\"error\": %q}", err.Error())
	}
	return string(b)
}
