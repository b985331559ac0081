package mcpclient

import (
	"fmt"
	"time"

	"github.com/mcpdesk/mcpdesk/internal/api"
	"github.com/mcpdesk/mcpdesk/internal/events"
	"github.com/mcpdesk/mcpdesk/internal/transport"
)

// Factory builds the adapter matching a transport descriptor. It only
// constructs; the caller opens the client with Initialize.
type Factory struct {
	Identity    Identity
	InitTimeout time.Duration
	// Publisher receives stderr output of stdio servers.
	Publisher events.Publisher
}

// New returns an unopened client for d.
func (f *Factory) New(d transport.Descriptor) (Client, error) {
	switch d.Type {
	case transport.DescriptorProcess:
		if d.Process == nil || d.Process.Command() == "" {
			return nil, fmt.Errorf("process descriptor has no command")
		}
		c := NewStdioClient(d.ProfileID, d.Process.Command(), d.Process.Args(), d.Process.Env, f.Publisher)
		c.configure(f.Identity, f.InitTimeout)
		return c, nil

	case transport.DescriptorNetwork:
		if d.Network == nil {
			return nil, fmt.Errorf("network descriptor has no endpoint")
		}
		switch d.Network.Transport {
		case api.TransportStreamableHTTP:
			c := NewStreamableHTTPClient(d.Network.URL, nil)
			c.configure(f.Identity, f.InitTimeout)
			return c, nil
		case api.TransportSSE, "":
			c := NewSSEClient(d.Network.URL, nil)
			c.configure(f.Identity, f.InitTimeout)
			return c, nil
		default:
			return nil, &api.UnsupportedKindError{Field: "transport", Value: string(d.Network.Transport)}
		}

	default:
		return nil, fmt.Errorf("unknown descriptor type %q", d.Type)
	}
}
