package api

import "time"

// Service is a tool exposed by the connected MCP server.
type Service struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
}

// ToolCall describes one invocable parameter or sub-method of a service.
type ToolCall struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	Required    bool   `json:"required,omitempty" yaml:"required,omitempty"`
}

// ServiceDetail is the full description of a single service.
type ServiceDetail struct {
	ID          string         `json:"id" yaml:"id"`
	Name        string         `json:"name" yaml:"name"`
	Description string         `json:"description" yaml:"description"`
	InputSchema map[string]any `json:"inputSchema,omitempty" yaml:"inputSchema,omitempty"`
	ToolCalls   []ToolCall     `json:"toolCalls" yaml:"toolCalls"`
}

// JSON-RPC error codes reported in ServiceResponse.
const (
	CodeNotConnected   = -32000
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
	NotConnectedReason = "Not connected to MCP server"
)

// RPCError is the error half of an invocation response.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// ServiceResponse is the outcome of an invocation. Elapsed is informational.
type ServiceResponse struct {
	Result  any           `json:"result"`
	Error   *RPCError     `json:"error,omitempty"`
	Elapsed time.Duration `json:"elapsed"`
}

// Failed reports whether the response carries an error.
func (r ServiceResponse) Failed() bool {
	return r.Error != nil
}

// ConnectionState is the Session Manager state.
type ConnectionState string

const (
	StateDisconnected ConnectionState = "disconnected"
	StateConnecting   ConnectionState = "connecting"
	StateConnected    ConnectionState = "connected"
)
