// Package config loads the application configuration.
//
// Configuration is read from config.yaml in the configuration directory
// (~/.config/mcpdesk unless --config-path is given) and layered over
// built-in defaults, so a missing file or a partial file is fine:
//
//	logLevel: debug
//	client:
//	  name: mcpdesk
//	  initTimeout: 15s
//	process:
//	  settleDelay: 2s
//	  eventBuffer: 512
//	server:
//	  listen: 127.0.0.1:7410
//	  allowedOrigins:
//	    - http://localhost:5173
//
// Server profiles and UI preferences are not configuration; they live in
// settings.yaml next to this file and are managed by the profile package.
package config
