// Package mock provides in-process MCP servers for tests.
//
// The Fixture server can be served over SSE or streamable HTTP with
// httptest, so client adapters and the session manager are tested against
// the real protocol without spawning processes.
package mock
