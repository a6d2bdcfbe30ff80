package mcp

import (
	"context"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

type contextKey int

const userIDKey contextKey = iota

// UserIDFromContext extracts the user ID injected by the transport layer.
func UserIDFromContext(ctx context.Context) int64 {
	if id, ok := ctx.Value(userIDKey).(int64); ok {
		return id
	}
	return 1
}

// WithUserID returns a context with the given user ID.
func WithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// New creates an MCP server with all tools and resources registered.
func New(ds DataSource, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("LiftLog", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("LiftLog workout tracking server. Query workout programs, logged training volume over time, and per-muscle volume breakdowns. All data is scoped to the authenticated user."),
	)

	h := &handlers{ds: ds, log: log}

	// Tools
	s.AddTools(
		server.ServerTool{Tool: toolGetVolumeOverTime, Handler: h.getVolumeOverTime},
		server.ServerTool{Tool: toolGetVolumeByMuscle, Handler: h.getVolumeByMuscle},
		server.ServerTool{Tool: toolListWorkoutSets, Handler: h.listWorkoutSets},
		server.ServerTool{Tool: toolGetWorkoutSet, Handler: h.getWorkoutSet},
		server.ServerTool{Tool: toolGetRecentLogs, Handler: h.getRecentLogs},
	)

	// Resources
	s.AddResources(
		server.ServerResource{Resource: resMonthlySummary, Handler: h.monthlySummary},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds  DataSource
	log *slog.Logger
}

var resMonthlySummary = mcp.NewResource(
	"liftlog://monthly_summary",
	"Monthly Summary",
	mcp.WithResourceDescription("Current month's daily training volume series and per-muscle volume breakdown"),
	mcp.WithMIMEType("application/json"),
)
