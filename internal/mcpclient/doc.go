// Package mcpclient adapts the mark3labs/mcp-go client to the small Client
// capability interface used by the session manager.
//
// Three adapters exist, one per transport: StdioClient for command and
// package servers, SSEClient and StreamableHTTPClient for network endpoints.
// Factory.New picks the adapter from a transport.Descriptor.
package mcpclient
