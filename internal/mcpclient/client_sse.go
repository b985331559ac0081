package mcpclient

import (
	"context"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/client/transport"
)

// SSEClient connects to a remote server over Server-Sent Events.
type SSEClient struct {
	baseMCPClient
	url     string
	headers map[string]string
}

// NewSSEClient creates an SSE adapter. headers are sent with every request.
func NewSSEClient(url string, headers map[string]string) *SSEClient {
	return &SSEClient{url: url, headers: headers}
}

// Initialize opens the event stream and performs the handshake.
func (c *SSEClient) Initialize(ctx context.Context) error {
	return c.open(ctx, "sse", func(ctx context.Context) (*client.Client, error) {
		var opts []transport.ClientOption
		if len(c.headers) > 0 {
			opts = append(opts, transport.WithHeaders(c.headers))
		}
		mcpClient, err := client.NewSSEMCPClient(c.url, opts...)
		if err != nil {
			return nil, err
		}
		// The stream must outlive the caller's request context.
		if err := mcpClient.Start(context.WithoutCancel(ctx)); err != nil {
			_ = mcpClient.Close()
			return nil, err
		}
		return mcpClient, nil
	})
}
