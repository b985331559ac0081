// Package bridge is the control surface front ends use to drive mcpdesk.
//
// The surface is an explicit allow-list: the Bridge type exposes one typed
// method per operation, and Invoke dispatches a fixed set of named channels
// to those methods. Nothing outside that list is reachable. Channel names
// follow the desktop IPC names front ends already know:
//
//	get-server-configs    save-server-config    remove-server-config
//	get-theme             set-theme
//	get-language          set-language
//	window-minimize       window-maximize       window-close
//	start-cmd-server      stop-cmd-server
//	start-pkg-server      stop-pkg-server
//	connect               disconnect
//	list-services         describe-service      invoke-service
//
// Arguments are positional, as a JSON array, mirroring the IPC calling
// convention. Missing trailing arguments take their zero value.
//
// Server serves the same channels over HTTP (POST /api/{channel}) and
// streams bus events to browsers as Server-Sent Events (GET /api/events).
package bridge
