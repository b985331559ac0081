// Package session holds the single active MCP session.
//
// The Manager binds at most one protocol client at a time. Connect tears the
// previous session down before opening the next one, and connects and
// disconnects are serialized so that the last connect to complete owns the
// session. Discovery (ListServices, DescribeService) and invocation are
// forwarded to whatever client is bound when the call starts.
//
// Invocation never returns a Go error: failures are reported in the
// JSON-RPC style error half of api.ServiceResponse, which is what front ends
// render. Discovery failures on ListServices are logged and reported as an
// empty list.
//
// Every state transition is published on the event bus as a session-state
// event carrying the profile id.
package session
