package config

import (
	"fmt"
	"net"
	"net/url"
	"strings"

	"github.com/mcpdesk/mcpdesk/pkg/logging"
)

// ValidationError represents a validation error with context
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

// Error implements the error interface
func (ve ValidationError) Error() string {
	if ve.Field == "" {
		return ve.Message
	}
	return fmt.Sprintf("field '%s': %s", ve.Field, ve.Message)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for multiple validation errors
func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "no validation errors"
	}
	if len(ve) == 1 {
		return ve[0].Error()
	}

	var messages []string
	for _, err := range ve {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(messages, "; "))
}

// Add adds a new validation error
func (ve *ValidationErrors) Add(field, message string, value interface{}) {
	*ve = append(*ve, ValidationError{Field: field, Value: value, Message: message})
}

// Validate checks every field and reports all problems at once.
func (c Config) Validate() error {
	var errs ValidationErrors

	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		errs.Add("logLevel", "must be one of: debug, info, warn, error", c.LogLevel)
	}
	if strings.TrimSpace(c.Client.Name) == "" {
		errs.Add("client.name", "is required", c.Client.Name)
	}
	if c.Client.InitTimeout <= 0 {
		errs.Add("client.initTimeout", "must be positive", c.Client.InitTimeout)
	}
	if c.Process.SettleDelay < 0 {
		errs.Add("process.settleDelay", "must not be negative", c.Process.SettleDelay)
	}
	if c.Process.EventBuffer <= 0 {
		errs.Add("process.eventBuffer", "must be positive", c.Process.EventBuffer)
	}
	if _, _, err := net.SplitHostPort(c.Server.Listen); err != nil {
		errs.Add("server.listen", "must be a host:port address", c.Server.Listen)
	}
	for _, origin := range c.Server.AllowedOrigins {
		if origin == "*" {
			continue
		}
		u, err := url.Parse(origin)
		if err != nil || u.Scheme == "" || u.Host == "" {
			errs.Add("server.allowedOrigins", "entries must be origins like http://host:port or *", origin)
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
