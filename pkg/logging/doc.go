// Package logging provides subsystem-tagged structured logging for mcpdesk,
// built on the standard log/slog package.
//
// Every entry carries a subsystem attribute so that output from the session
// manager, the process registry, the profile store and the HTTP bridge can be
// filtered independently:
//
//	logging.InitForCLI(logging.LevelInfo, os.Stderr)
//
//	logging.Info("Session", "Connected to %s", profile.Name)
//	logging.Debug("Process", "Spawned %v as %s", argv, id)
//	logging.Error("Bridge", err, "Failed to handle %s", channel)
//
// Init may be called repeatedly. The console front end calls it again once the
// readline instance owns the terminal so log lines do not clobber the prompt.
//
// Before initialization only warnings and errors are written, to stderr.
package logging
