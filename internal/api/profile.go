package api

// ConnectionKind identifies how a server profile is reached. The literal values
// match the persisted settings format.
type ConnectionKind string

const (
	// KindHTTP is a network endpoint reached over SSE or streamable HTTP.
	KindHTTP ConnectionKind = "http"
	// KindCommand is a command line spawned as a child process speaking stdio.
	KindCommand ConnectionKind = "command"
	// KindPackage is a package launched through a package manager (npx, bun, uvx).
	KindPackage ConnectionKind = "package"
)

// Valid reports whether k is one of the recognized connection kinds.
func (k ConnectionKind) Valid() bool {
	switch k {
	case KindHTTP, KindCommand, KindPackage:
		return true
	}
	return false
}

// PackageManager is the launcher used for package profiles.
type PackageManager string

const (
	PackageManagerNpx PackageManager = "npx"
	PackageManagerBun PackageManager = "bun"
	PackageManagerUvx PackageManager = "uvx"

	// DefaultPackageManager is used when a package profile leaves the launcher unset.
	DefaultPackageManager = PackageManagerNpx
)

// PackageManagers lists the supported launchers in display order.
var PackageManagers = []PackageManager{PackageManagerNpx, PackageManagerBun, PackageManagerUvx}

// Valid reports whether m is a supported launcher.
func (m PackageManager) Valid() bool {
	for _, known := range PackageManagers {
		if m == known {
			return true
		}
	}
	return false
}

// NetworkTransport selects the flavour of an http profile.
type NetworkTransport string

const (
	TransportSSE            NetworkTransport = "sse"
	TransportStreamableHTTP NetworkTransport = "streamable-http"
)

// Valid reports whether t is a known transport. Empty is valid and means SSE.
func (t NetworkTransport) Valid() bool {
	return t == "" || t == TransportSSE || t == TransportStreamableHTTP
}

// ServerConfig is the kind-specific parameter bag of a profile. Only the fields
// relevant to the profile's kind are read.
type ServerConfig struct {
	// BaseURL is the endpoint of an http profile.
	BaseURL string `yaml:"baseUrl,omitempty" json:"baseUrl,omitempty"`
	// Transport picks SSE (default) or streamable HTTP for an http profile.
	Transport NetworkTransport `yaml:"transport,omitempty" json:"transport,omitempty"`
	// Command is the full command line of a command profile, split on whitespace at launch.
	Command string `yaml:"command,omitempty" json:"command,omitempty"`
	// PackageManager is the launcher of a package profile.
	PackageManager PackageManager `yaml:"packageManager,omitempty" json:"packageManager,omitempty"`
	// PackageName is the package launched by a package profile.
	PackageName string `yaml:"packageName,omitempty" json:"packageName,omitempty"`
	// Args are appended after the package name.
	Args []string `yaml:"args,omitempty" json:"args,omitempty"`
	// Env holds extra environment variables for spawned processes.
	Env map[string]string `yaml:"env,omitempty" json:"env,omitempty"`
}

// ServerProfile is a named, persisted server connection configuration.
// A profile's Kind never changes after creation; switching connection type
// means removing the profile and adding a new one.
type ServerProfile struct {
	ID     string         `yaml:"id" json:"id"`
	Name   string         `yaml:"name" json:"name"`
	Kind   ConnectionKind `yaml:"type" json:"type"`
	Config ServerConfig   `yaml:"config" json:"config"`
}

// Theme is the persisted UI colour scheme.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"

	DefaultTheme = ThemeLight
)

// Valid reports whether t is a known theme.
func (t Theme) Valid() bool {
	return t == ThemeLight || t == ThemeDark
}

// Language is the persisted UI language.
type Language string

const (
	LanguageEnglish Language = "en"
	LanguageChinese Language = "zh"

	DefaultLanguage = LanguageEnglish
)

// Valid reports whether l is a supported language.
func (l Language) Valid() bool {
	return l == LanguageEnglish || l == LanguageChinese
}
