package profile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/mcpdesk/mcpdesk/internal/api"
)

const (
	// SettingsFileName is the name of the settings file inside the config directory.
	SettingsFileName = "settings.yaml"
	// userConfigDir is the subdirectory under home for mcpdesk configuration.
	userConfigDir = ".config/mcpdesk"
)

// Store provides thread-safe access to settings.yaml. Every operation reads
// the file afresh so edits made by other processes are picked up.
type Store struct {
	mu         sync.RWMutex
	configPath string
	newID      func() string
}

// DefaultConfigDir returns ~/.config/mcpdesk.
func DefaultConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to determine home directory: %w", err)
	}
	return filepath.Join(homeDir, userConfigDir), nil
}

// NewStore creates a Store in the default configuration directory.
func NewStore() (*Store, error) {
	dir, err := DefaultConfigDir()
	if err != nil {
		return nil, err
	}
	return NewStoreWithPath(dir), nil
}

// NewStoreWithPath creates a Store rooted at a custom directory.
func NewStoreWithPath(configPath string) *Store {
	return &Store{
		configPath: configPath,
		newID:      uuid.NewString,
	}
}

// Path returns the full path of settings.yaml.
func (s *Store) Path() string {
	return filepath.Join(s.configPath, SettingsFileName)
}

// Load reads the settings file. A missing file yields empty settings.
func (s *Store) Load() (*Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.loadLocked()
}

func (s *Store) loadLocked() (*Settings, error) {
	data, err := os.ReadFile(s.Path())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Settings{}, nil
		}
		return nil, fmt.Errorf("failed to read settings file: %w", err)
	}

	var settings Settings
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("failed to parse settings file: %w", err)
	}

	return &settings, nil
}

func (s *Store) saveLocked(settings *Settings) error {
	if err := os.MkdirAll(s.configPath, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	// Write through a temp file so watchers never observe a half-written file.
	tmp, err := os.CreateTemp(s.configPath, SettingsFileName+".*")
	if err != nil {
		return fmt.Errorf("failed to write settings file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write settings file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write settings file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write settings file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.Path()); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write settings file: %w", err)
	}

	return nil
}

// update applies fn to the current settings and saves the result.
func (s *Store) update(fn func(*Settings) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	settings, err := s.loadLocked()
	if err != nil {
		return err
	}
	if err := fn(settings); err != nil {
		return err
	}
	return s.saveLocked(settings)
}

// List returns all profiles in insertion order.
func (s *Store) List() ([]api.ServerProfile, error) {
	settings, err := s.Load()
	if err != nil {
		return nil, err
	}
	if settings.ServerConfigs == nil {
		return []api.ServerProfile{}, nil
	}
	return settings.ServerConfigs, nil
}

// Get returns the profile with the given id.
func (s *Store) Get(id string) (api.ServerProfile, error) {
	settings, err := s.Load()
	if err != nil {
		return api.ServerProfile{}, err
	}
	i := settings.find(id)
	if i < 0 {
		return api.ServerProfile{}, api.NewProfileNotFoundError(id)
	}
	return settings.ServerConfigs[i], nil
}

// Add appends a profile and returns it as stored. An empty id is replaced
// with a fresh one; an id already in the store is rejected.
func (s *Store) Add(p api.ServerProfile) (api.ServerProfile, error) {
	if err := Validate(p); err != nil {
		return api.ServerProfile{}, err
	}

	err := s.update(func(settings *Settings) error {
		if p.ID == "" {
			p.ID = s.newID()
			for settings.find(p.ID) >= 0 {
				p.ID = s.newID()
			}
		} else if settings.find(p.ID) >= 0 {
			return fmt.Errorf("profile %q already exists", p.ID)
		}
		settings.ServerConfigs = append(settings.ServerConfigs, p)
		return nil
	})
	if err != nil {
		return api.ServerProfile{}, err
	}
	return p, nil
}

// Remove deletes the profile with the given id.
func (s *Store) Remove(id string) error {
	return s.update(func(settings *Settings) error {
		i := settings.find(id)
		if i < 0 {
			return api.NewProfileNotFoundError(id)
		}
		settings.ServerConfigs = append(settings.ServerConfigs[:i], settings.ServerConfigs[i+1:]...)
		return nil
	})
}

// Theme returns the stored theme, or the default when none is set.
func (s *Store) Theme() (api.Theme, error) {
	settings, err := s.Load()
	if err != nil {
		return "", err
	}
	if !settings.Theme.Valid() {
		return api.DefaultTheme, nil
	}
	return settings.Theme, nil
}

// SetTheme persists the theme.
func (s *Store) SetTheme(theme api.Theme) error {
	if !theme.Valid() {
		return fmt.Errorf("invalid theme %q: must be %q or %q", theme, api.ThemeLight, api.ThemeDark)
	}
	return s.update(func(settings *Settings) error {
		settings.Theme = theme
		return nil
	})
}

// Language returns the stored UI language, or the default when none is set.
func (s *Store) Language() (api.Language, error) {
	settings, err := s.Load()
	if err != nil {
		return "", err
	}
	if !settings.Language.Valid() {
		return api.DefaultLanguage, nil
	}
	return settings.Language, nil
}

// SetLanguage persists the UI language.
func (s *Store) SetLanguage(lang api.Language) error {
	if !lang.Valid() {
		return fmt.Errorf("invalid language %q", lang)
	}
	return s.update(func(settings *Settings) error {
		settings.Language = lang
		return nil
	})
}
