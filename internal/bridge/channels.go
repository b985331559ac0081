package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/mcpdesk/mcpdesk/internal/api"
)

// Channel names.
const (
	ChannelGetServerConfigs   = "get-server-configs"
	ChannelSaveServerConfig   = "save-server-config"
	ChannelRemoveServerConfig = "remove-server-config"
	ChannelGetTheme           = "get-theme"
	ChannelSetTheme           = "set-theme"
	ChannelGetLanguage        = "get-language"
	ChannelSetLanguage        = "set-language"
	ChannelWindowMinimize     = "window-minimize"
	ChannelWindowMaximize     = "window-maximize"
	ChannelWindowClose        = "window-close"
	ChannelStartCmdServer     = "start-cmd-server"
	ChannelStopCmdServer      = "stop-cmd-server"
	ChannelStartPkgServer     = "start-pkg-server"
	ChannelStopPkgServer      = "stop-pkg-server"
	ChannelConnect            = "connect"
	ChannelDisconnect         = "disconnect"
	ChannelListServices       = "list-services"
	ChannelDescribeService    = "describe-service"
	ChannelInvokeService      = "invoke-service"
)

type handler func(ctx context.Context, args []json.RawMessage) (any, error)

// arg decodes the i-th positional argument into v. A missing or null
// argument leaves v untouched.
func arg(args []json.RawMessage, i int, v any) error {
	if i >= len(args) || len(args[i]) == 0 || string(args[i]) == "null" {
		return nil
	}
	if err := json.Unmarshal(args[i], v); err != nil {
		return &api.InvalidPayloadError{Err: fmt.Errorf("argument %d: %w", i, err)}
	}
	return nil
}

func (b *Bridge) registerChannels() map[string]handler {
	return map[string]handler{
		ChannelGetServerConfigs: func(ctx context.Context, args []json.RawMessage) (any, error) {
			return b.GetServerConfigs()
		},
		ChannelSaveServerConfig: func(ctx context.Context, args []json.RawMessage) (any, error) {
			var p api.ServerProfile
			if err := arg(args, 0, &p); err != nil {
				return nil, err
			}
			return b.SaveServerConfig(p)
		},
		ChannelRemoveServerConfig: func(ctx context.Context, args []json.RawMessage) (any, error) {
			var id string
			if err := arg(args, 0, &id); err != nil {
				return nil, err
			}
			return b.RemoveServerConfig(id)
		},
		ChannelGetTheme: func(ctx context.Context, args []json.RawMessage) (any, error) {
			return b.GetTheme()
		},
		ChannelSetTheme: func(ctx context.Context, args []json.RawMessage) (any, error) {
			var theme api.Theme
			if err := arg(args, 0, &theme); err != nil {
				return nil, err
			}
			return b.SetTheme(theme)
		},
		ChannelGetLanguage: func(ctx context.Context, args []json.RawMessage) (any, error) {
			return b.GetLanguage()
		},
		ChannelSetLanguage: func(ctx context.Context, args []json.RawMessage) (any, error) {
			var lang api.Language
			if err := arg(args, 0, &lang); err != nil {
				return nil, err
			}
			return b.SetLanguage(lang)
		},
		ChannelWindowMinimize: func(ctx context.Context, args []json.RawMessage) (any, error) {
			b.WindowMinimize()
			return nil, nil
		},
		ChannelWindowMaximize: func(ctx context.Context, args []json.RawMessage) (any, error) {
			b.WindowMaximize()
			return nil, nil
		},
		ChannelWindowClose: func(ctx context.Context, args []json.RawMessage) (any, error) {
			b.WindowClose()
			return nil, nil
		},
		ChannelStartCmdServer: func(ctx context.Context, args []json.RawMessage) (any, error) {
			var (
				command string
				extra   []string
			)
			if err := arg(args, 0, &command); err != nil {
				return nil, err
			}
			if err := arg(args, 1, &extra); err != nil {
				return nil, err
			}
			return b.StartCmdServer(ctx, command, extra)
		},
		ChannelStopCmdServer: func(ctx context.Context, args []json.RawMessage) (any, error) {
			var id string
			if err := arg(args, 0, &id); err != nil {
				return nil, err
			}
			return b.StopCmdServer(id), nil
		},
		ChannelStartPkgServer: func(ctx context.Context, args []json.RawMessage) (any, error) {
			var (
				manager api.PackageManager
				name    string
				extra   []string
			)
			if err := arg(args, 0, &manager); err != nil {
				return nil, err
			}
			if err := arg(args, 1, &name); err != nil {
				return nil, err
			}
			if err := arg(args, 2, &extra); err != nil {
				return nil, err
			}
			return b.StartPkgServer(ctx, manager, name, extra)
		},
		ChannelStopPkgServer: func(ctx context.Context, args []json.RawMessage) (any, error) {
			var id string
			if err := arg(args, 0, &id); err != nil {
				return nil, err
			}
			return b.StopPkgServer(id), nil
		},
		ChannelConnect: func(ctx context.Context, args []json.RawMessage) (any, error) {
			var id string
			if err := arg(args, 0, &id); err != nil {
				return nil, err
			}
			return b.Connect(ctx, id)
		},
		ChannelDisconnect: func(ctx context.Context, args []json.RawMessage) (any, error) {
			return b.Disconnect()
		},
		ChannelListServices: func(ctx context.Context, args []json.RawMessage) (any, error) {
			return b.ListServices(ctx)
		},
		ChannelDescribeService: func(ctx context.Context, args []json.RawMessage) (any, error) {
			var id string
			if err := arg(args, 0, &id); err != nil {
				return nil, err
			}
			return b.DescribeService(ctx, id)
		},
		ChannelInvokeService: func(ctx context.Context, args []json.RawMessage) (any, error) {
			var (
				id, method string
				params     map[string]any
			)
			if err := arg(args, 0, &id); err != nil {
				return nil, err
			}
			if err := arg(args, 1, &method); err != nil {
				return nil, err
			}
			if err := arg(args, 2, &params); err != nil {
				return nil, err
			}
			return b.InvokeService(ctx, id, method, params), nil
		},
	}
}

// Channels returns the allow-listed channel names, sorted.
func (b *Bridge) Channels() []string {
	names := make([]string, 0, len(b.channels))
	for name := range b.channels {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Invoke dispatches a channel call with positional JSON arguments.
func (b *Bridge) Invoke(ctx context.Context, channel string, args []json.RawMessage) (any, error) {
	h, ok := b.channels[channel]
	if !ok {
		return nil, &UnknownChannelError{Channel: channel}
	}
	return h(ctx, args)
}
