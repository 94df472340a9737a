package tools

import (
	"context"
	"encoding/json"
	"fmt"

	mcplib "github.com/mark3labs/mcp-go/mcp"
)

// registerTools exposes the same canned data to MCP-compatible agents that
// the JSON endpoints serve to the planner.
func (s *Server) registerTools() {
	s.mcpServer.AddTool(
		mcplib.NewTool("get_weather",
			mcplib.WithDescription("Get the current weather and best travel season for a city"),
			mcplib.WithString("city", mcplib.Description("City name, e.g. Tokyo"), mcplib.Required()),
		),
		s.handleWeatherTool,
	)

	s.mcpServer.AddTool(
		mcplib.NewTool("get_attractions",
			mcplib.WithDescription("List top attractions for a city with suggested visit durations"),
			mcplib.WithString("city", mcplib.Description("City name, e.g. Kyoto"), mcplib.Required()),
		),
		s.handleAttractionsTool,
	)

	s.mcpServer.AddTool(
		mcplib.NewTool("convert_currency",
			mcplib.WithDescription("Convert an amount between two currencies"),
			mcplib.WithString("from", mcplib.Description("Source currency code, e.g. USD"), mcplib.Required()),
			mcplib.WithString("to", mcplib.Description("Target currency code, e.g. JPY"), mcplib.Required()),
			mcplib.WithNumber("amount", mcplib.Description("Amount to convert"), mcplib.DefaultNumber(1)),
		),
		s.handleCurrencyTool,
	)
}

func (s *Server) handleWeatherTool(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	_, span := s.tracer.StartSpan(ctx, "tool.weather")
	defer span.End()

	city := request.GetString("city", "")
	if city == "" {
		return errorResult("city is required"), nil
	}

	report, ok := lookupWeather(city)
	if !ok {
		return errorResult("no weather data for city: " + city), nil
	}
	return jsonResult(report)
}

func (s *Server) handleAttractionsTool(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	_, span := s.tracer.StartSpan(ctx, "tool.attractions")
	defer span.End()

	city := request.GetString("city", "")
	if city == "" {
		return errorResult("city is required"), nil
	}

	list, ok := lookupAttractions(city)
	if !ok {
		return errorResult("no attraction data for city: " + city), nil
	}
	return jsonResult(map[string]any{"city": city, "attractions": list})
}

func (s *Server) handleCurrencyTool(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	_, span := s.tracer.StartSpan(ctx, "tool.currency")
	defer span.End()

	from := request.GetString("from", "")
	to := request.GetString("to", "")
	amount := request.GetFloat("amount", 1)

	if from == "" || to == "" {
		return errorResult("from and to are required"), nil
	}
	if amount < 0 {
		return errorResult("amount must be non-negative"), nil
	}

	result, ok := convert(from, to, amount)
	if !ok {
		return errorResult(fmt.Sprintf("unsupported currency pair: %s/%s", from, to)), nil
	}
	return jsonResult(result)
}

func jsonResult(v any) (*mcplib.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("tools: marshal result: %w", err)
	}
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{
			mcplib.TextContent{Type: "text", Text: string(data)},
		},
	}, nil
}

func errorResult(msg string) *mcplib.CallToolResult {
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{
			mcplib.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
