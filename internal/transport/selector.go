package transport

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/mcpdesk/mcpdesk/internal/api"
)

// DescriptorType tags which half of a Descriptor is populated.
type DescriptorType string

const (
	DescriptorNetwork DescriptorType = "network"
	DescriptorProcess DescriptorType = "process"
)

// NetworkDescriptor describes a network transport.
type NetworkDescriptor struct {
	URL       string
	Transport api.NetworkTransport
}

// ProcessDescriptor describes a transport over the stdio pipes of a child process.
type ProcessDescriptor struct {
	Argv []string
	Env  map[string]string
}

// Command returns the executable, i.e. argv[0].
func (p ProcessDescriptor) Command() string {
	if len(p.Argv) == 0 {
		return ""
	}
	return p.Argv[0]
}

// Args returns argv without the executable.
func (p ProcessDescriptor) Args() []string {
	if len(p.Argv) < 2 {
		return nil
	}
	return p.Argv[1:]
}

// Descriptor is the transport construction request derived from a profile.
// Exactly one of Network and Process is set, matching Type.
type Descriptor struct {
	Type      DescriptorType
	ProfileID string
	Network   *NetworkDescriptor
	Process   *ProcessDescriptor
}

// String renders the descriptor for logs.
func (d Descriptor) String() string {
	switch d.Type {
	case DescriptorNetwork:
		return fmt.Sprintf("%s %s", d.Network.Transport, d.Network.URL)
	case DescriptorProcess:
		return fmt.Sprintf("stdio %s", strings.Join(d.Process.Argv, " "))
	default:
		return "invalid transport"
	}
}

// Select maps a profile onto a transport descriptor. It performs no I/O.
func Select(profile api.ServerProfile) (Descriptor, error) {
	switch profile.Kind {
	case api.KindHTTP:
		network, err := selectNetwork(profile.Config)
		if err != nil {
			return Descriptor{}, err
		}
		return Descriptor{Type: DescriptorNetwork, ProfileID: profile.ID, Network: network}, nil

	case api.KindCommand:
		argv := strings.Fields(profile.Config.Command)
		if len(argv) == 0 {
			return Descriptor{}, &api.MissingParameterError{Kind: api.KindCommand, Parameter: "command"}
		}
		return Descriptor{
			Type:      DescriptorProcess,
			ProfileID: profile.ID,
			Process:   &ProcessDescriptor{Argv: argv, Env: profile.Config.Env},
		}, nil

	case api.KindPackage:
		argv, err := PackageArgv(profile.Config.PackageManager, profile.Config.PackageName, profile.Config.Args)
		if err != nil {
			return Descriptor{}, err
		}
		return Descriptor{
			Type:      DescriptorProcess,
			ProfileID: profile.ID,
			Process:   &ProcessDescriptor{Argv: argv, Env: profile.Config.Env},
		}, nil

	default:
		return Descriptor{}, &api.UnsupportedKindError{Field: "type", Value: string(profile.Kind)}
	}
}

// PackageArgv builds [manager, packageName, ...extra]. An empty manager falls
// back to api.DefaultPackageManager.
func PackageArgv(manager api.PackageManager, packageName string, extra []string) ([]string, error) {
	packageName = strings.TrimSpace(packageName)
	if packageName == "" {
		return nil, &api.MissingParameterError{Kind: api.KindPackage, Parameter: "packageName"}
	}
	if manager == "" {
		manager = api.DefaultPackageManager
	}
	if !manager.Valid() {
		return nil, &api.UnsupportedKindError{Field: "packageManager", Value: string(manager)}
	}

	argv := make([]string, 0, 2+len(extra))
	argv = append(argv, string(manager), packageName)
	argv = append(argv, extra...)
	return argv, nil
}

func selectNetwork(cfg api.ServerConfig) (*NetworkDescriptor, error) {
	raw := strings.TrimSpace(cfg.BaseURL)
	if raw == "" {
		return nil, &api.MissingParameterError{Kind: api.KindHTTP, Parameter: "baseUrl"}
	}

	u, err := url.Parse(raw)
	if err != nil {
		return nil, &api.MissingParameterError{Kind: api.KindHTTP, Parameter: "baseUrl", Reason: err.Error()}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, &api.MissingParameterError{Kind: api.KindHTTP, Parameter: "baseUrl", Reason: "scheme must be http or https"}
	}
	if u.Host == "" {
		return nil, &api.MissingParameterError{Kind: api.KindHTTP, Parameter: "baseUrl", Reason: "host is empty"}
	}

	flavour := cfg.Transport
	switch flavour {
	case "":
		flavour = api.TransportSSE
	case api.TransportSSE, api.TransportStreamableHTTP:
	default:
		return nil, &api.UnsupportedKindError{Field: "transport", Value: string(flavour)}
	}

	return &NetworkDescriptor{URL: raw, Transport: flavour}, nil
}
