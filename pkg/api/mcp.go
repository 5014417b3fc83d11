package api

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/hazyhaar/datadose/pkg/kit"
	"github.com/hazyhaar/datadose/pkg/pipeline"
)

// RegisterMCPTools registers the DataDose MCP tools on the server.
func RegisterMCPTools(srv *server.MCPServer, eng *pipeline.Engine, logger *slog.Logger) {
	ep := NewEndpoints(eng, logger)
	registerNormalize(srv, ep.Normalize)
	registerBatch(srv, ep.Batch)
	registerListTables(srv, ep.Tables)
}

func registerNormalize(srv *server.MCPServer, ep kit.Endpoint) {
	tool := mcp.NewTool("normalize_ingredient",
		mcp.WithDescription("Normalize one raw active-ingredient label into a canonical ' + '-joined ingredient node, or report why it is rejected."),
		mcp.WithString("ingredient", mcp.Required(), mcp.Description("The raw ingredient label, e.g. 'Paracetamol 500mg + Caffeine'")),
		mcp.WithBoolean("trace", mcp.Description("Include the state after every pipeline stage")),
	)
	kit.RegisterMCPTool(srv, tool, ep, func(req mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		args := req.GetArguments()
		ing, _ := args["ingredient"].(string)
		if ing == "" {
			return nil, fmt.Errorf("ingredient is required")
		}
		trace, _ := args["trace"].(bool)
		return &kit.MCPDecodeResult{Request: &normalizeReq{Ingredient: ing, Trace: trace}}, nil
	})
}

func registerBatch(srv *server.MCPServer, ep kit.Endpoint) {
	tool := mcp.NewTool("normalize_batch",
		mcp.WithDescription(fmt.Sprintf("Normalize up to %d ingredient labels.", MaxBatch)),
		mcp.WithString("ingredients", mcp.Required(), mcp.Description("Newline-separated list of raw ingredient labels")),
	)
	kit.RegisterMCPTool(srv, tool, ep, func(req mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		args := req.GetArguments()
		raw, _ := args["ingredients"].(string)
		// Labels contain commas, so lines separate them.
		var labels []string
		for _, line := range strings.Split(raw, "\n") {
			if line = strings.TrimSpace(line); line != "" {
				labels = append(labels, line)
			}
		}
		return &kit.MCPDecodeResult{Request: &batchReq{Ingredients: labels}}, nil
	})
}

func registerListTables(srv *server.MCPServer, ep kit.Endpoint) {
	tool := mcp.NewTool("list_tables",
		mcp.WithDescription("Describe the loaded lexicon: id, version, and the size of each correction table and term list."),
	)
	kit.RegisterMCPTool(srv, tool, ep, func(_ mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		return &kit.MCPDecodeResult{Request: nil}, nil
	})
}
