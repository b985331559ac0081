package mcpclient

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mcpdesk/mcpdesk/pkg/logging"
)

// DefaultInitTimeout bounds the transport start plus MCP handshake when the
// caller's context carries no deadline.
const DefaultInitTimeout = 10 * time.Second

// Client is the capability set the session manager needs from a protocol
// client. Each transport (stdio, SSE, streamable HTTP) has its own adapter.
type Client interface {
	// Initialize opens the transport and performs the protocol handshake
	Initialize(ctx context.Context) error
	// Close shuts the transport down; it is safe to call on an unopened client
	Close() error
	// ListTools returns the tools exposed by the server
	ListTools(ctx context.Context) ([]mcp.Tool, error)
	// CallTool invokes a tool with the given arguments
	CallTool(ctx context.Context, name string, args map[string]any) (*mcp.CallToolResult, error)
	// Ping checks the server is responsive
	Ping(ctx context.Context) error
}

var (
	_ Client = (*StdioClient)(nil)
	_ Client = (*SSEClient)(nil)
	_ Client = (*StreamableHTTPClient)(nil)
)

// Identity is the client implementation info sent during the handshake.
type Identity struct {
	Name    string
	Version string
}

// DefaultIdentity is used when a factory is built without one.
var DefaultIdentity = Identity{Name: "mcpdesk", Version: "dev"}

// dialFunc creates the SDK client of one transport. It may start the
// transport; ctx bounds only the start, not the lifetime of the connection.
type dialFunc func(ctx context.Context) (*client.Client, error)

// baseMCPClient holds the connection shared by all adapters. Adapters only
// differ in how they dial; everything after the handshake lives here.
type baseMCPClient struct {
	identity    Identity
	initTimeout time.Duration

	client    client.MCPClient
	mu        sync.RWMutex
	connected bool
}

func (b *baseMCPClient) configure(identity Identity, initTimeout time.Duration) {
	b.identity = identity
	b.initTimeout = initTimeout
}

// checkConnected verifies the client is connected.
// Note: Caller must hold at least a read lock on mu.
func (b *baseMCPClient) checkConnected() error {
	if !b.connected || b.client == nil {
		return fmt.Errorf("client not connected")
	}
	return nil
}

// initContext applies the init timeout unless ctx already has a deadline.
func (b *baseMCPClient) initContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, hasDeadline := ctx.Deadline(); hasDeadline {
		return ctx, func() {}
	}
	timeout := b.initTimeout
	if timeout <= 0 {
		timeout = DefaultInitTimeout
	}
	return context.WithTimeout(ctx, timeout)
}

func (b *baseMCPClient) initializeRequest() mcp.InitializeRequest {
	identity := b.identity
	if identity.Name == "" {
		identity = DefaultIdentity
	}
	return mcp.InitializeRequest{
		Params: mcp.InitializeParams{
			ProtocolVersion: mcp.LATEST_PROTOCOL_VERSION,
			ClientInfo: mcp.Implementation{
				Name:    identity.Name,
				Version: identity.Version,
			},
			Capabilities: mcp.ClientCapabilities{},
		},
	}
}

// open dials and performs the handshake once. A failed handshake closes
// whatever the dial opened, including a spawned process.
func (b *baseMCPClient) open(ctx context.Context, transportName string, dial dialFunc) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.connected {
		return nil
	}

	initCtx, cancel := b.initContext(ctx)
	defer cancel()

	mcpClient, err := dial(ctx)
	if err != nil {
		return fmt.Errorf("failed to start %s transport: %w", transportName, err)
	}

	initResult, err := mcpClient.Initialize(initCtx, b.initializeRequest())
	if err != nil {
		if closeErr := mcpClient.Close(); closeErr != nil {
			logging.Debug("MCPClient", "Closing %s client after failed handshake: %v", transportName, closeErr)
		}
		return fmt.Errorf("failed to initialize MCP protocol: %w", err)
	}

	b.client = mcpClient
	b.connected = true

	logging.Debug("MCPClient", "%s session open with %s %s",
		transportName, initResult.ServerInfo.Name, initResult.ServerInfo.Version)
	return nil
}

// Close shuts the transport down. Closing an unopened client is a no-op.
func (b *baseMCPClient) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.connected || b.client == nil {
		return nil
	}

	err := b.client.Close()
	b.connected = false
	b.client = nil
	return err
}

// ListTools returns every tool of the server. The SDK follows pagination
// cursors itself.
func (b *baseMCPClient) ListTools(ctx context.Context) ([]mcp.Tool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if err := b.checkConnected(); err != nil {
		return nil, err
	}

	result, err := b.client.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		return nil, fmt.Errorf("failed to list tools: %w", err)
	}
	return result.Tools, nil
}

func (b *baseMCPClient) CallTool(ctx context.Context, name string, args map[string]any) (*mcp.CallToolResult, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if err := b.checkConnected(); err != nil {
		return nil, err
	}

	result, err := b.client.CallTool(ctx, mcp.CallToolRequest{
		Params: mcp.CallToolParams{Name: name, Arguments: args},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to call tool: %w", err)
	}
	return result, nil
}

func (b *baseMCPClient) Ping(ctx context.Context) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if err := b.checkConnected(); err != nil {
		return err
	}
	return b.client.Ping(ctx)
}
