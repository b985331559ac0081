package mcpclient

import (
	"context"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcpdesk/mcpdesk/internal/api"
	"github.com/mcpdesk/mcpdesk/internal/testing/mock"
	"github.com/mcpdesk/mcpdesk/internal/transport"
)

func TestFactory_PicksAdapter(t *testing.T) {
	f := &Factory{Identity: Identity{Name: "test", Version: "0.0.1"}, InitTimeout: time.Second}

	tests := []struct {
		name     string
		d        transport.Descriptor
		wantType any
	}{
		{
			name:     "stdio",
			d:        transport.Descriptor{Type: transport.DescriptorProcess, Process: &transport.ProcessDescriptor{Argv: []string{"npx", "demo"}}},
			wantType: &StdioClient{},
		},
		{
			name:     "sse default",
			d:        transport.Descriptor{Type: transport.DescriptorNetwork, Network: &transport.NetworkDescriptor{URL: "http://localhost/sse"}},
			wantType: &SSEClient{},
		},
		{
			name: "streamable",
			d: transport.Descriptor{Type: transport.DescriptorNetwork, Network: &transport.NetworkDescriptor{
				URL: "http://localhost/mcp", Transport: api.TransportStreamableHTTP,
			}},
			wantType: &StreamableHTTPClient{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := f.New(tt.d)
			require.NoError(t, err)
			assert.IsType(t, tt.wantType, c)
		})
	}
}

func TestFactory_RejectsBadDescriptors(t *testing.T) {
	f := &Factory{}

	_, err := f.New(transport.Descriptor{Type: transport.DescriptorProcess, Process: &transport.ProcessDescriptor{}})
	assert.Error(t, err)

	_, err = f.New(transport.Descriptor{Type: transport.DescriptorNetwork})
	assert.Error(t, err)

	_, err = f.New(transport.Descriptor{Type: transport.DescriptorNetwork, Network: &transport.NetworkDescriptor{URL: "http://x", Transport: "grpc"}})
	assert.True(t, api.IsUnsupportedKind(err))

	_, err = f.New(transport.Descriptor{})
	assert.Error(t, err)
}

func TestClient_OperationsBeforeInitialize(t *testing.T) {
	c := NewSSEClient("http://localhost:1/sse", nil)

	_, err := c.ListTools(context.Background())
	assert.Error(t, err)
	_, err = c.CallTool(context.Background(), "echo", nil)
	assert.Error(t, err)
	assert.Error(t, c.Ping(context.Background()))
	assert.NoError(t, c.Close(), "closing an unopened client is a no-op")
}

func textOf(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", result.Content[0])
	return text.Text
}

func TestNetworkAdapters_AgainstFixture(t *testing.T) {
	fixture := mock.NewFixture()

	sseServer, sseURL := fixture.ServeSSE()
	defer sseServer.Close()
	httpServer, httpURL := fixture.ServeStreamableHTTP()
	defer httpServer.Close()

	clients := map[string]Client{
		"sse":             NewSSEClient(sseURL, nil),
		"streamable-http": NewStreamableHTTPClient(httpURL, nil),
	}

	for name, c := range clients {
		t.Run(name, func(t *testing.T) {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			require.NoError(t, c.Initialize(ctx))
			defer c.Close()

			require.NoError(t, c.Initialize(ctx), "initialize is idempotent")
			require.NoError(t, c.Ping(ctx))

			tools, err := c.ListTools(ctx)
			require.NoError(t, err)
			names := make([]string, 0, len(tools))
			for _, tool := range tools {
				names = append(names, tool.Name)
			}
			assert.ElementsMatch(t, []string{"echo", "math.add", "fail"}, names)

			result, err := c.CallTool(ctx, "echo", map[string]any{"message": "hi"})
			require.NoError(t, err)
			assert.False(t, result.IsError)
			assert.Equal(t, "hi", textOf(t, result))

			result, err = c.CallTool(ctx, "fail", nil)
			require.NoError(t, err)
			assert.True(t, result.IsError)
		})
	}
}
