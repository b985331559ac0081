// Package transport derives a transport descriptor from a server profile.
//
// Select is pure: it validates the kind-specific parameters and produces
// either a network descriptor (URL and SSE or streamable HTTP flavour) or a
// process descriptor (argv). Command lines are split on whitespace; package
// profiles launch as [packageManager, packageName, ...args] with npx as the
// default launcher.
package transport
