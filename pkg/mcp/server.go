package mcp

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"

	"github.com/zarif007/RepliKat/pkg/config"
)

const (
	serverName    = "replikat"
	serverVersion = "1.0.0"
)

// ServerConfig holds configuration for the MCP server
type ServerConfig struct {
	AppConfig *config.AppConfig
	Transport string // "stdio" or "sse"
	Port      int
	Logger    *logrus.Logger
}

// Server exposes route mapping as MCP tools, running crawls as background
// jobs so tool calls return immediately.
type Server struct {
	mcpServer  *server.MCPServer
	cfg        *ServerConfig
	log        *logrus.Entry
	jobManager *JobManager
}

// NewServer creates a new MCP server instance
func NewServer(cfg *ServerConfig) (*Server, error) {
	if cfg.AppConfig == nil {
		return nil, fmt.Errorf("AppConfig is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}

	mcpServer := server.NewMCPServer(
		serverName,
		serverVersion,
		server.WithLogging(),
	)

	s := &Server{
		mcpServer:  mcpServer,
		cfg:        cfg,
		log:        cfg.Logger.WithField("component", "mcp"),
		jobManager: NewJobManager(),
	}

	s.registerTools()

	return s, nil
}

// registerTools registers all available MCP tools
func (s *Server) registerTools() {
	// map_routes - Start a background route-mapping crawl
	mapRoutesTool := mcp.NewTool("map_routes",
		mcp.WithDescription("Map the route structure of a website starting from a URL. Returns immediately with a job ID."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("Starting URL of the site to map (scheme optional, https assumed)"),
		),
		mcp.WithNumber("max_depth",
			mcp.Description("Maximum link depth to follow from the start URL (default from config)"),
		),
		mcp.WithNumber("max_pages",
			mcp.Description("Maximum number of pages to fetch (default from config)"),
		),
		mcp.WithString("note",
			mcp.Description("Free-text note carried verbatim into the crawl report"),
		),
	)
	s.mcpServer.AddTool(mapRoutesTool, s.handleMapRoutes)

	// get_job_status - Check status of a mapping job
	getJobStatusTool := mcp.NewTool("get_job_status",
		mcp.WithDescription("Get the status of a route-mapping job"),
		mcp.WithString("job_id",
			mcp.Required(),
			mcp.Description("The job ID returned by map_routes"),
		),
	)
	s.mcpServer.AddTool(getJobStatusTool, s.handleGetJobStatus)

	// get_route_map - Retrieve the result of a completed job
	getRouteMapTool := mcp.NewTool("get_route_map",
		mcp.WithDescription("Get the route tree produced by a completed mapping job"),
		mcp.WithString("job_id",
			mcp.Required(),
			mcp.Description("The job ID returned by map_routes"),
		),
		mcp.WithString("format",
			mcp.Description("Result format: 'json' for the full tree, 'tree' for a text rendering, 'list' for flat paths (default: json)"),
		),
	)
	s.mcpServer.AddTool(getRouteMapTool, s.handleGetRouteMap)

	// cancel_job - Cancel a pending or running job
	cancelJobTool := mcp.NewTool("cancel_job",
		mcp.WithDescription("Cancel a pending or running route-mapping job"),
		mcp.WithString("job_id",
			mcp.Required(),
			mcp.Description("The job ID returned by map_routes"),
		),
	)
	s.mcpServer.AddTool(cancelJobTool, s.handleCancelJob)

	// list_jobs - List all known jobs
	listJobsTool := mcp.NewTool("list_jobs",
		mcp.WithDescription("List all route-mapping jobs known to this server"),
	)
	s.mcpServer.AddTool(listJobsTool, s.handleListJobs)

	s.log.Infof("Registered %d MCP tools", 5)
}

// Run starts the MCP server with the configured transport
func (s *Server) Run() error {
	switch s.cfg.Transport {
	case "stdio":
		s.log.Info("Starting MCP server with stdio transport")
		return server.ServeStdio(s.mcpServer)
	case "sse":
		addr := fmt.Sprintf(":%d", s.cfg.Port)
		s.log.Infof("Starting MCP server with SSE transport on %s", addr)
		sseServer := server.NewSSEServer(s.mcpServer)
		return sseServer.Start(addr)
	default:
		return fmt.Errorf("unknown transport: %s (supported: stdio, sse)", s.cfg.Transport)
	}
}

// Shutdown cancels running jobs ahead of process exit
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("Shutting down MCP server...")
	s.jobManager.CancelAll()
	return nil
}
