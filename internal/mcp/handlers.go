package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/wxdash/internal/errors"
	"github.com/hpungsan/wxdash/internal/ops"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	env *ops.Env
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(env *ops.Env) *Handlers {
	return &Handlers{env: env}
}

// Request types for each tool

// DistrictSuggestRequest represents the arguments for district_suggest.
type DistrictSuggestRequest struct {
	Query string `json:"query"`
}

// WeatherFetchRequest represents the arguments for weather_fetch.
type WeatherFetchRequest struct {
	District string `json:"district"`
}

// HistoryListRequest represents the arguments for history_list.
type HistoryListRequest struct {
	Limit int `json:"limit,omitempty"`
}

// HandleDistrictList handles the district_list tool call.
func (h *Handlers) HandleDistrictList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return successResult(ops.ListDistricts(h.env))
}

// HandleDistrictSuggest handles the district_suggest tool call.
func (h *Handlers) HandleDistrictSuggest(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[DistrictSuggestRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	return successResult(ops.Suggest(h.env, ops.SuggestInput{Query: input.Query}))
}

// HandleWeatherFetch handles the weather_fetch tool call.
func (h *Handlers) HandleWeatherFetch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[WeatherFetchRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Weather(ctx, h.env, ops.WeatherInput{District: input.District})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleHistoryList handles the history_list tool call.
func (h *Handlers) HandleHistoryList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[HistoryListRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.History(ctx, h.env, ops.HistoryInput{Limit: input.Limit})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// Result helpers

// errorResult creates an MCP error result from any error.
// Uses IsError: true so MCP clients recognize failures properly.
// Internal error details are never exposed.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	if wxErr := errors.As(err); wxErr != nil && wxErr.Code != errors.ErrInternal {
		message := wxErr.Message
		// A WxError wrapped with %w reports the full chain, so context a
		// caller added (e.g. "refresh: ...") reaches the client.
		if err != error(wxErr) {
			message = err.Error()
		}
		errorObj := map[string]any{
			"code":    wxErr.Code,
			"message": message,
			"status":  wxErr.Status,
		}
		if wxErr.Details != nil {
			errorObj["details"] = wxErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    errors.ErrInternal,
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
