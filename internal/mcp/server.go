// Package mcp exposes the command and context stores as MCP tools.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/felixgeelhaar/recall/internal/memory"
	"github.com/felixgeelhaar/recall/internal/observe"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Server is the recall MCP tool server.
type Server struct {
	commands *memory.CommandStore
	contexts *memory.ContextStore
	obs      *observe.Observer
	mcp      *server.MCPServer
	tools    []server.ServerTool
}

// New registers one tool per store operation on a fresh MCP server.
func New(commands *memory.CommandStore, contexts *memory.ContextStore, obs *observe.Observer, version string) *Server {
	if obs == nil {
		obs = observe.Discard()
	}
	s := &Server{
		commands: commands,
		contexts: contexts,
		obs:      obs,
		mcp: server.NewMCPServer(
			"recall",
			version,
			server.WithToolCapabilities(true),
			server.WithRecovery(),
		),
	}
	s.tools = append(s.commandTools(), s.contextTools()...)
	s.mcp.AddTools(s.tools...)
	return s
}

// MCP returns the underlying server.
func (s *Server) MCP() *server.MCPServer {
	return s.mcp
}

// Tools returns the registered tools in registration order.
func (s *Server) Tools() []server.ServerTool {
	return s.tools
}

// Serve speaks MCP over the given streams, normally stdin and stdout, until
// in is closed or ctx is canceled.
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	s.obs.Log().Info().Int("tools", len(s.tools)).Msg("serving MCP on stdio")
	return server.NewStdioServer(s.mcp).Listen(ctx, in, out)
}

func tool(t mcp.Tool, h server.ToolHandlerFunc) server.ServerTool {
	return server.ServerTool{Tool: t, Handler: h}
}

func limitArg() mcp.ToolOption {
	return mcp.WithNumber("limit", mcp.Description(fmt.Sprintf("Maximum number of results (default %d)", memory.DefaultLimit)))
}

func tagsArg() mcp.ToolOption {
	return mcp.WithArray("tags", mcp.Description("Labels for the record"), mcp.WithStringItems())
}

// jsonResult renders v as the text content of a tool result.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding result: %w", err)
	}
	return mcp.NewToolResultText(string(out)), nil
}

// storeError turns a store failure into a tool error result. Not-found is
// reported by the callers as a normal result.
func (s *Server) storeError(name string, err error) *mcp.CallToolResult {
	s.obs.Log().Warn().Str("tool", name).Err(err).Msg("tool call failed")
	return mcp.NewToolResultError(err.Error())
}

func notFound(kind, id string) *mcp.CallToolResult {
	return mcp.NewToolResultText(fmt.Sprintf("%s %q not found", kind, id))
}

// optString returns a pointer to a string argument, or nil when absent.
func optString(req mcp.CallToolRequest, key string) *string {
	v, ok := req.GetArguments()[key]
	if !ok {
		return nil
	}
	s, ok := v.(string)
	if !ok {
		return nil
	}
	return &s
}

// optTags returns the tags argument, or nil when absent.
func optTags(req mcp.CallToolRequest) []string {
	if _, ok := req.GetArguments()["tags"]; !ok {
		return nil
	}
	return req.GetStringSlice("tags", []string{})
}

func limit(req mcp.CallToolRequest) int {
	return req.GetInt("limit", memory.DefaultLimit)
}
