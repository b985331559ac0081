// Package events carries asynchronous notifications from the hosting layer
// (process registry, session manager, profile watcher) to front ends.
//
// Producers call Publish; consumers call Subscribe and read from the returned
// channel until they cancel. Subscriber channels are bounded and never block
// producers. Process output is also kept in the registry's buffer, so a slow
// consumer can recover what it missed.
package events
