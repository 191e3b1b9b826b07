package mcp

import (
	"context"
	"sort"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/hpungsan/wxdash/internal/config"
	"github.com/hpungsan/wxdash/internal/ops"
)

// toolEntry pairs a tool definition with a handler factory.
type toolEntry struct {
	def     mcp.Tool
	handler func(*Handlers) server.ToolHandlerFunc
}

var districtListToolDef = mcp.NewTool("district_list",
	mcp.WithDescription("List every district the dashboard knows, in directory order."),
	mcp.WithReadOnlyHintAnnotation(true),
)

var districtSuggestToolDef = mcp.NewTool("district_suggest",
	mcp.WithDescription("Suggest districts whose names contain the query, ignoring case. "+
		"Each match is split into segments with the matching runs highlighted."),
	mcp.WithString("query", mcp.Required(), mcp.Description("Text typed so far")),
	mcp.WithReadOnlyHintAnnotation(true),
)

var weatherFetchToolDef = mcp.NewTool("weather_fetch",
	mcp.WithDescription("Fetch current conditions and the next hours of forecast for a district. "+
		"The lookup is recorded in search history."),
	mcp.WithString("district", mcp.Required(), mcp.Description("District name, any case")),
)

var historyListToolDef = mcp.NewTool("history_list",
	mcp.WithDescription("List recent weather lookups, most recent first."),
	mcp.WithNumber("limit", mcp.Description("Maximum entries to return (default 10, max 100)")),
	mcp.WithReadOnlyHintAnnotation(true),
)

// toolRegistry maps tool names to their definitions and handler factories.
var toolRegistry = map[string]toolEntry{
	"district_list": {
		def:     districtListToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleDistrictList },
	},
	"district_suggest": {
		def:     districtSuggestToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleDistrictSuggest },
	},
	"weather_fetch": {
		def:     weatherFetchToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleWeatherFetch },
	},
	"history_list": {
		def:     historyListToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleHistoryList },
	},
}

// AllToolNames returns every valid tool name, sorted.
func AllToolNames() []string {
	names := make([]string, 0, len(toolRegistry))
	for name := range toolRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ValidateDisabledTools returns a list of unknown tool names from the given list.
func ValidateDisabledTools(names []string) []string {
	unknown := make([]string, 0)
	for _, name := range names {
		if _, ok := toolRegistry[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// NewServer creates a new MCP server with the wxdash tools registered.
// Tools listed in cfg.DisabledTools are excluded from registration.
func NewServer(env *ops.Env, cfg *config.Config, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"wxdash",
		version,
		server.WithToolCapabilities(true),
	)

	h := NewHandlers(env)

	disabled := make(map[string]bool, len(cfg.DisabledTools))
	for _, name := range cfg.DisabledTools {
		disabled[name] = true
	}

	for name, entry := range toolRegistry {
		if disabled[name] {
			continue
		}
		s.AddTool(entry.def, entry.handler(h))
	}

	return s
}

// Run starts the MCP server using stdio transport.
func Run(env *ops.Env, cfg *config.Config, version string) error {
	s := NewServer(env, cfg, version)
	return server.ServeStdio(s)
}

// ToolHandlerFunc is the signature for tool handlers.
type ToolHandlerFunc func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error)
