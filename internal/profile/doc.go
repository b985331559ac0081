// Package profile persists server connection profiles and UI preferences.
//
// Everything lives in a single settings.yaml in the configuration directory
// (~/.config/mcpdesk by default):
//
//	serverConfigs:
//	  - id: 3f0c...
//	    name: Demo
//	    type: package
//	    config:
//	      packageManager: npx
//	      packageName: demo-server
//	theme: dark
//	language: en
//
// Profiles are append-only: Add never replaces an existing id, and there is
// no update operation, so a profile's kind is fixed once created. Remove
// deletes by id.
//
// Watch follows external edits of the file and publishes profiles-changed
// events so front ends can refresh.
package profile
