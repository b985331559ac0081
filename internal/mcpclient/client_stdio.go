package mcpclient

import (
	"bufio"
	"context"
	"io"

	"github.com/mark3labs/mcp-go/client"

	"github.com/mcpdesk/mcpdesk/internal/api"
	"github.com/mcpdesk/mcpdesk/internal/events"
	"github.com/mcpdesk/mcpdesk/pkg/logging"
)

// StdioClient talks to a server spawned as a child process over its
// stdin/stdout. The child's stderr is forwarded as server-output events.
type StdioClient struct {
	baseMCPClient
	sourceID  string
	command   string
	args      []string
	env       map[string]string
	publisher events.Publisher
}

// NewStdioClient creates a stdio adapter. sourceID tags forwarded stderr events.
func NewStdioClient(sourceID, command string, args []string, env map[string]string, pub events.Publisher) *StdioClient {
	if pub == nil {
		pub = events.Discard
	}
	return &StdioClient{
		sourceID:  sourceID,
		command:   command,
		args:      args,
		env:       env,
		publisher: pub,
	}
}

// Initialize spawns the child process and performs the handshake. The
// process is killed again when the handshake fails.
func (c *StdioClient) Initialize(ctx context.Context) error {
	return c.open(ctx, "stdio", func(context.Context) (*client.Client, error) {
		env := make([]string, 0, len(c.env))
		for k, v := range c.env {
			env = append(env, k+"="+v)
		}

		logging.Debug("StdioClient", "Spawning %s %v", c.command, c.args)
		mcpClient, err := client.NewStdioMCPClient(c.command, env, c.args...)
		if err != nil {
			return nil, err
		}
		if stderr, ok := client.GetStderr(mcpClient); ok {
			go c.forwardStderr(stderr)
		}
		return mcpClient, nil
	})
}

// forwardStderr publishes each stderr line until the pipe closes.
func (c *StdioClient) forwardStderr(stderr io.Reader) {
	scanner := bufio.NewScanner(stderr)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text() + "\n"
		c.publisher.Publish(api.Event{
			Type:   api.EventServerOutput,
			ID:     c.sourceID,
			Data:   line,
			Stream: api.StreamStderr,
		})
	}
	if err := scanner.Err(); err != nil {
		logging.Debug("StdioClient", "stderr of %s closed: %v", c.command, err)
	}
}
