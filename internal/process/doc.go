// Package process implements the registry of child processes spawned for
// command and package servers.
//
// Every child gets a fresh identifier. Its stdout and stderr are read by two
// goroutines that feed a single dispatcher, which appends each chunk to the
// process's output buffer and publishes a server-output event. When the child
// exits the dispatcher removes the entry and then publishes server-exit, so a
// Stop issued after the exit event reports NotFound.
package process
