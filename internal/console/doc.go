// Package console implements the interactive mcpdesk shell.
//
// The console is a front end over the bridge, so everything it can do is
// also reachable over HTTP and nothing more. It adds line editing with
// history and completion (chzyer/readline), table output (go-pretty), a
// spinner while connecting, and live printing of process output and session
// state events as they arrive on the bus.
//
// Commands:
//
//	profiles                         list stored server profiles
//	add http <name> <url> [transport]
//	add command <name> <command line>
//	add package <name> <manager> <package> [args...]
//	remove <profile-id>
//	connect <profile-id>             open a session (closes any current one)
//	disconnect
//	services                         list tools of the connected server
//	describe <service-id>
//	invoke <service-id> [method] [json]
//	start <profile-id | command line>
//	stop <process-id>
//	ps                               list running processes
//	theme [light|dark]
//	language [en|zh]
//	status
//	help
//	exit
package console
