// Package api holds the types shared across mcpdesk: server profiles, the
// service and invocation shapes returned by the session manager, events
// published to front ends, and the error taxonomy.
//
// Errors are typed so callers can branch with errors.As or the Is* helpers:
//
//	if api.IsNotFound(err) {
//	    // unknown profile, process or service id
//	}
//
// ConnectFailedError deliberately keeps the underlying message unchanged.
package api
