package profile

import (
	"fmt"
	"strings"

	"github.com/mcpdesk/mcpdesk/internal/api"
)

// Settings is the root structure of settings.yaml.
type Settings struct {
	ServerConfigs []api.ServerProfile `yaml:"serverConfigs,omitempty"`
	Theme         api.Theme           `yaml:"theme,omitempty"`
	Language      api.Language        `yaml:"language,omitempty"`
}

// find returns the index of the profile with the given id, or -1.
func (s *Settings) find(id string) int {
	for i := range s.ServerConfigs {
		if s.ServerConfigs[i].ID == id {
			return i
		}
	}
	return -1
}

// Validate checks the fields every stored profile must carry. Kind-specific
// parameters are checked when the profile is connected.
func Validate(p api.ServerProfile) error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("profile name cannot be empty")
	}
	if !p.Kind.Valid() {
		return &api.UnsupportedKindError{Value: string(p.Kind)}
	}
	if p.Kind == api.KindHTTP && p.Config.Transport != "" && !p.Config.Transport.Valid() {
		return &api.UnsupportedKindError{Field: "transport", Value: string(p.Config.Transport)}
	}
	if p.Kind == api.KindPackage && p.Config.PackageManager != "" && !p.Config.PackageManager.Valid() {
		return &api.UnsupportedKindError{Field: "packageManager", Value: string(p.Config.PackageManager)}
	}
	return nil
}
