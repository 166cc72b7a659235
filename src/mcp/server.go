package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"devpulse-agent/src/logger"
	"devpulse-agent/src/provider"
	"devpulse-agent/src/report"
)

// Reporter builds reports and overviews. *report.Reporter implements it.
type Reporter interface {
	Weekly(ctx context.Context, owner, repo, user, token string) (*report.Report, error)
	Overview(ctx context.Context, owner, repo string) (*report.Overview, error)
}

// windowed is implemented by reporters that can change their window.
type windowed interface {
	WithDays(days int) *report.Reporter
}

// Server is the MCP server for devpulse.
type Server struct {
	mcpServer *server.MCPServer
	reporter  Reporter
	store     ReportStore
	logger    logger.Logger
}

// NewServer creates a new MCP server backed by reporter.
func NewServer(reporter Reporter, log logger.Logger) *Server {
	s := server.NewMCPServer(
		"devpulse",
		"1.0.0",
		server.WithToolCapabilities(true),
	)

	srv := &Server{
		mcpServer: s,
		reporter:  reporter,
		store:     NewInMemoryStore(),
		logger:    log,
	}
	srv.registerTools()

	return srv
}

// registerTools registers all available tools.
func (s *Server) registerTools() {
	reportTool := mcp.NewTool("weekly_report",
		mcp.WithDescription("Summarize recent GitHub activity for a repository, or for one contributor in it. Returns one section per contributor with a headline and shortened sources; use get_section for the full assessment."),
		mcp.WithString("owner",
			mcp.Required(),
			mcp.Description("Repository owner"),
		),
		mcp.WithString("repo",
			mcp.Required(),
			mcp.Description("Repository name"),
		),
		mcp.WithString("username",
			mcp.Description("Limit the report to this contributor"),
		),
		mcp.WithNumber("days",
			mcp.Description("Report window in days (default: 7)"),
		),
		mcp.WithString("token",
			mcp.Description("GitHub token to use instead of the server default"),
		),
	)

	sectionTool := mcp.NewTool("get_section",
		mcp.WithDescription("Get a contributor's full assessment and source links. Use after weekly_report."),
		mcp.WithString("request_id",
			mcp.Required(),
			mcp.Description("Request ID from weekly_report response"),
		),
		mcp.WithString("contributor",
			mcp.Required(),
			mcp.Description("Contributor login from the manifest"),
		),
	)

	overviewTool := mcp.NewTool("repo_overview",
		mcp.WithDescription("Validate a repository and summarize what it is about from its README and community profile, with its contributor list."),
		mcp.WithString("owner",
			mcp.Required(),
			mcp.Description("Repository owner"),
		),
		mcp.WithString("repo",
			mcp.Required(),
			mcp.Description("Repository name"),
		),
	)

	s.mcpServer.AddTool(reportTool, s.handleWeeklyReport)
	s.mcpServer.AddTool(sectionTool, s.handleGetSection)
	s.mcpServer.AddTool(overviewTool, s.handleRepoOverview)
}

// Run starts the MCP server on stdio.
func (s *Server) Run() error {
	return server.ServeStdio(s.mcpServer)
}

// handleWeeklyReport builds a report and returns its manifest.
func (s *Server) handleWeeklyReport(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	owner := request.GetString("owner", "")
	repo := request.GetString("repo", "")
	if owner == "" || repo == "" {
		return mcp.NewToolResultError("owner and repo parameters are required"), nil
	}
	user := request.GetString("username", "")
	token := request.GetString("token", "")

	reporter := s.reporter
	if w, ok := reporter.(windowed); ok {
		if days := request.GetInt("days", 0); days > 0 {
			reporter = w.WithDays(days)
		}
	}

	rep, err := reporter.Weekly(ctx, owner, repo, user, token)
	if err != nil {
		s.logger.Error("[MCP] weekly_report %s/%s failed: %v", owner, repo, err)
		return mcp.NewToolResultError(toolError("report failed", err)), nil
	}

	requestID := "req-" + uuid.NewString()
	s.store.Store(requestID, rep)

	return jsonResult(ToManifest(requestID, rep))
}

// handleGetSection returns the full section for one contributor.
func (s *Server) handleGetSection(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	requestID := request.GetString("request_id", "")
	if requestID == "" {
		return mcp.NewToolResultError("request_id parameter is required"), nil
	}

	contributor := request.GetString("contributor", "")
	if contributor == "" {
		return mcp.NewToolResultError("contributor parameter is required"), nil
	}

	section, found := s.store.Get(requestID, contributor)
	if !found {
		return mcp.NewToolResultError(fmt.Sprintf("section not found: request_id=%s, contributor=%s", requestID, contributor)), nil
	}

	return jsonResult(section)
}

// handleRepoOverview validates a repository and summarizes it.
func (s *Server) handleRepoOverview(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	owner := request.GetString("owner", "")
	repo := request.GetString("repo", "")
	if owner == "" || repo == "" {
		return mcp.NewToolResultError("owner and repo parameters are required"), nil
	}

	ov, err := s.reporter.Overview(ctx, owner, repo)
	if err != nil {
		return mcp.NewToolResultError(toolError("overview failed", err)), nil
	}

	return jsonResult(OverviewResponse{
		Repo:         owner + "/" + repo,
		Summary:      normalizeWhitespace(ov.Summary),
		Contributors: ov.Contributors,
	})
}

// toolError renders err for the caller, with a hint for known failures.
func toolError(prefix string, err error) string {
	return fmt.Sprintf("%s: %v", prefix, provider.WrapError(err))
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	jsonBytes, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonBytes)), nil
}
