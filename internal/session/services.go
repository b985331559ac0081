package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mcpdesk/mcpdesk/internal/api"
	"github.com/mcpdesk/mcpdesk/pkg/logging"
)

// listTools fetches the tool list, coalescing concurrent calls against the
// same client.
func (m *Manager) listTools(ctx context.Context, s *session) ([]mcp.Tool, error) {
	key := fmt.Sprintf("%s/%p", s.profileID, s.client)
	v, err, shared := m.discovery.Do(key, func() (any, error) {
		return s.client.ListTools(ctx)
	})
	if shared {
		logging.Debug("SessionManager", "Shared tool discovery for %s", s.profileID)
	}
	if err != nil {
		return nil, err
	}
	return v.([]mcp.Tool), nil
}

// ListServices returns the tools exposed by the bound server. Discovery
// failures are logged and reported as an empty list.
func (m *Manager) ListServices(ctx context.Context) ([]api.Service, error) {
	s := m.active()
	if s == nil {
		return nil, api.ErrNotConnected
	}

	tools, err := m.listTools(ctx, s)
	if err != nil {
		logging.Error("SessionManager", err, "Error getting services from %s", s.profileID)
		return []api.Service{}, nil
	}

	services := make([]api.Service, 0, len(tools))
	for _, tool := range tools {
		services = append(services, api.Service{
			ID:          tool.Name,
			Name:        displayName(tool),
			Description: tool.Description,
		})
	}
	sort.Slice(services, func(i, j int) bool { return services[i].ID < services[j].ID })
	return services, nil
}

// DescribeService returns the detail of the service with the given id. The
// service's methods are the tools named "<id>.<method>"; a service with no
// methods lists its input parameters instead.
func (m *Manager) DescribeService(ctx context.Context, id string) (*api.ServiceDetail, error) {
	s := m.active()
	if s == nil {
		return nil, api.ErrNotConnected
	}

	tools, err := m.listTools(ctx, s)
	if err != nil {
		return nil, fmt.Errorf("failed to describe service %s: %w", id, err)
	}

	var (
		self    *mcp.Tool
		methods []api.ToolCall
	)
	prefix := id + "."
	for i := range tools {
		tool := tools[i]
		switch {
		case tool.Name == id:
			self = &tools[i]
		case strings.HasPrefix(tool.Name, prefix):
			methods = append(methods, api.ToolCall{
				Name:        strings.TrimPrefix(tool.Name, prefix),
				Description: tool.Description,
			})
		}
	}

	if self == nil && len(methods) == 0 {
		return nil, api.NewServiceNotFoundError(id)
	}

	detail := &api.ServiceDetail{ID: id, Name: id, ToolCalls: methods}
	if self != nil {
		detail.Name = displayName(*self)
		detail.Description = self.Description
		detail.InputSchema = inputSchema(*self)
		if len(methods) == 0 {
			detail.ToolCalls = parameters(detail.InputSchema)
		}
	}
	if detail.ToolCalls == nil {
		detail.ToolCalls = []api.ToolCall{}
	}
	sort.Slice(detail.ToolCalls, func(i, j int) bool { return detail.ToolCalls[i].Name < detail.ToolCalls[j].Name })
	return detail, nil
}

// InvokeService calls the tool "<id>.<method>", or "<id>" when method is
// empty. Failures are reported in the response, never as a Go error.
func (m *Manager) InvokeService(ctx context.Context, id, method string, params map[string]any) api.ServiceResponse {
	s := m.active()
	if s == nil {
		return api.ServiceResponse{
			Error: &api.RPCError{Code: api.CodeNotConnected, Message: api.NotConnectedReason},
		}
	}

	target := ToolName(id, method)
	if params == nil {
		params = map[string]any{}
	}

	start := time.Now()
	result, err := s.client.CallTool(ctx, target, params)
	elapsed := time.Since(start)

	if err != nil {
		logging.Error("SessionManager", err, "Error invoking %s", target)
		return api.ServiceResponse{
			Error: &api.RPCError{
				Code:    api.CodeInternalError,
				Message: fmt.Sprintf("Error invoking %s: %s", target, err.Error()),
			},
			Elapsed: elapsed,
		}
	}

	logging.Debug("SessionManager", "Invoked %s in %s", target, elapsed)

	resp := api.ServiceResponse{Result: resultValue(result), Elapsed: elapsed}
	if result != nil && result.IsError {
		resp.Error = &api.RPCError{Code: api.CodeInternalError, Message: resultText(result)}
	}
	return resp
}

// InvokeServiceJSON parses text as the parameter object and invokes the
// service. Malformed or non-object text is rejected before any I/O with an
// *api.InvalidPayloadError; blank text means no parameters.
func (m *Manager) InvokeServiceJSON(ctx context.Context, id, method, text string) (api.ServiceResponse, error) {
	params, err := ParseParams(text)
	if err != nil {
		return api.ServiceResponse{}, err
	}
	return m.InvokeService(ctx, id, method, params), nil
}

// ParseParams decodes a JSON object of invocation parameters.
func ParseParams(text string) (map[string]any, error) {
	params := map[string]any{}
	if strings.TrimSpace(text) == "" {
		return params, nil
	}
	var raw any
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, &api.InvalidPayloadError{Err: err}
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, &api.InvalidPayloadError{Err: fmt.Errorf("expected a JSON object")}
	}
	return obj, nil
}

// ToolName is the protocol tool name for a service method.
func ToolName(id, method string) string {
	if method == "" {
		return id
	}
	return id + "." + method
}

func displayName(tool mcp.Tool) string {
	if tool.Annotations.Title != "" {
		return tool.Annotations.Title
	}
	return tool.Name
}

// inputSchema renders the tool's schema the way it goes over the wire.
func inputSchema(tool mcp.Tool) map[string]any {
	data, err := json.Marshal(tool)
	if err != nil {
		return nil
	}
	var wire struct {
		InputSchema map[string]any `json:"inputSchema"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil
	}
	return wire.InputSchema
}

func parameters(schema map[string]any) []api.ToolCall {
	props, _ := schema["properties"].(map[string]any)
	if len(props) == 0 {
		return nil
	}
	required := map[string]bool{}
	if list, ok := schema["required"].([]any); ok {
		for _, name := range list {
			if s, ok := name.(string); ok {
				required[s] = true
			}
		}
	}

	calls := make([]api.ToolCall, 0, len(props))
	for name, prop := range props {
		call := api.ToolCall{Name: name, Required: required[name]}
		if p, ok := prop.(map[string]any); ok {
			call.Description, _ = p["description"].(string)
		}
		calls = append(calls, call)
	}
	return calls
}

// resultValue reduces a tool result to a plain value: structured content when
// present, a single text block decoded as JSON when it parses, the text
// otherwise, and the raw content list for anything else.
func resultValue(result *mcp.CallToolResult) any {
	if result == nil {
		return nil
	}
	if result.StructuredContent != nil {
		return result.StructuredContent
	}
	if len(result.Content) == 1 {
		if text, ok := mcp.AsTextContent(result.Content[0]); ok {
			var decoded any
			if err := json.Unmarshal([]byte(text.Text), &decoded); err == nil {
				return decoded
			}
			return text.Text
		}
	}
	return result.Content
}

func resultText(result *mcp.CallToolResult) string {
	var parts []string
	for _, content := range result.Content {
		if text, ok := mcp.AsTextContent(content); ok {
			parts = append(parts, text.Text)
		}
	}
	if len(parts) == 0 {
		return "tool reported an error"
	}
	return strings.Join(parts, "\n")
}
