package mcpclient

import (
	"context"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/client/transport"
)

// StreamableHTTPClient connects to a remote server over streamable HTTP.
// Every request is a POST, so there is no stream to start before the handshake.
type StreamableHTTPClient struct {
	baseMCPClient
	url     string
	headers map[string]string
}

// NewStreamableHTTPClient creates a streamable HTTP adapter. headers are sent
// with every request.
func NewStreamableHTTPClient(url string, headers map[string]string) *StreamableHTTPClient {
	return &StreamableHTTPClient{url: url, headers: headers}
}

// Initialize performs the handshake.
func (c *StreamableHTTPClient) Initialize(ctx context.Context) error {
	return c.open(ctx, "streamable-http", func(context.Context) (*client.Client, error) {
		var opts []transport.StreamableHTTPCOption
		if len(c.headers) > 0 {
			opts = append(opts, transport.WithHTTPHeaders(c.headers))
		}
		return client.NewStreamableHttpClient(c.url, opts...)
	})
}
