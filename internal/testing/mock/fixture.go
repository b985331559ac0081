package mock

import (
	"context"
	"fmt"
	"net/http/httptest"
	"sync/atomic"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Fixture is an in-test MCP server exposing a fixed tool set:
//
//	echo      returns its "message" argument as text
//	math.add  adds "a" and "b"
//	fail      always returns a tool-level error
type Fixture struct {
	MCPServer *server.MCPServer
	calls     atomic.Int64
}

// NewFixture builds the fixture server.
func NewFixture() *Fixture {
	f := &Fixture{
		MCPServer: server.NewMCPServer("mcpdesk-fixture", "1.0.0", server.WithToolCapabilities(false)),
	}

	f.MCPServer.AddTool(
		mcp.NewTool("echo",
			mcp.WithDescription("Echo a message back"),
			mcp.WithString("message", mcp.Required(), mcp.Description("Text to echo")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			f.calls.Add(1)
			msg, _ := req.GetArguments()["message"].(string)
			return mcp.NewToolResultText(msg), nil
		},
	)

	f.MCPServer.AddTool(
		mcp.NewTool("math.add",
			mcp.WithDescription("Add two numbers"),
			mcp.WithNumber("a", mcp.Required()),
			mcp.WithNumber("b", mcp.Required()),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			f.calls.Add(1)
			args := req.GetArguments()
			a, _ := args["a"].(float64)
			b, _ := args["b"].(float64)
			return mcp.NewToolResultText(fmt.Sprintf("%g", a+b)), nil
		},
	)

	f.MCPServer.AddTool(
		mcp.NewTool("fail", mcp.WithDescription("Always fails")),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			f.calls.Add(1)
			return mcp.NewToolResultError("fixture failure"), nil
		},
	)

	return f
}

// Calls returns how many tool invocations the fixture has served.
func (f *Fixture) Calls() int64 {
	return f.calls.Load()
}

// ServeSSE starts an SSE endpoint and returns the server and its /sse URL.
func (f *Fixture) ServeSSE() (*httptest.Server, string) {
	ts := httptest.NewUnstartedServer(nil)
	baseURL := "http://" + ts.Listener.Addr().String()
	ts.Config.Handler = server.NewSSEServer(f.MCPServer,
		server.WithBaseURL(baseURL),
		server.WithSSEEndpoint("/sse"),
		server.WithMessageEndpoint("/message"),
	)
	ts.Start()
	return ts, baseURL + "/sse"
}

// ServeStreamableHTTP starts a streamable HTTP endpoint and returns the server and its /mcp URL.
func (f *Fixture) ServeStreamableHTTP() (*httptest.Server, string) {
	ts := httptest.NewServer(server.NewStreamableHTTPServer(f.MCPServer))
	return ts, ts.URL + "/mcp"
}
