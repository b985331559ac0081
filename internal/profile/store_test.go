package profile

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcpdesk/mcpdesk/internal/api"
	"github.com/mcpdesk/mcpdesk/internal/events"
)

func packageProfile(id string) api.ServerProfile {
	return api.ServerProfile{
		ID:   id,
		Name: "Demo " + id,
		Kind: api.KindPackage,
		Config: api.ServerConfig{
			PackageManager: api.PackageManager("npx"),
			PackageName:    "demo-server",
		},
	}
}

func TestStore_CRUD(t *testing.T) {
	store := NewStoreWithPath(t.TempDir())

	t.Run("initial state is empty", func(t *testing.T) {
		profiles, err := store.List()
		require.NoError(t, err)
		assert.Empty(t, profiles)
		assert.NotNil(t, profiles)
	})

	t.Run("add and get", func(t *testing.T) {
		added, err := store.Add(packageProfile("s1"))
		require.NoError(t, err)
		assert.Equal(t, "s1", added.ID)

		got, err := store.Get("s1")
		require.NoError(t, err)
		assert.Equal(t, packageProfile("s1"), got)
	})

	t.Run("duplicate id rejected", func(t *testing.T) {
		_, err := store.Add(packageProfile("s1"))
		assert.Error(t, err)

		profiles, err := store.List()
		require.NoError(t, err)
		assert.Len(t, profiles, 1)
	})

	t.Run("append keeps order", func(t *testing.T) {
		_, err := store.Add(packageProfile("s2"))
		require.NoError(t, err)
		_, err = store.Add(packageProfile("s0"))
		require.NoError(t, err)

		profiles, err := store.List()
		require.NoError(t, err)
		ids := []string{}
		for _, p := range profiles {
			ids = append(ids, p.ID)
		}
		assert.Equal(t, []string{"s1", "s2", "s0"}, ids)
	})

	t.Run("remove", func(t *testing.T) {
		require.NoError(t, store.Remove("s2"))
		_, err := store.Get("s2")
		assert.True(t, api.IsNotFound(err))
	})

	t.Run("remove unknown", func(t *testing.T) {
		err := store.Remove("nope")
		assert.True(t, api.IsNotFound(err))
	})
}

func TestStore_AddGeneratesID(t *testing.T) {
	store := NewStoreWithPath(t.TempDir())
	ids := []string{"taken", "taken", "fresh"}
	store.newID = func() string {
		id := ids[0]
		ids = ids[1:]
		return id
	}

	_, err := store.Add(packageProfile("taken"))
	require.NoError(t, err)

	p := packageProfile("")
	added, err := store.Add(p)
	require.NoError(t, err)
	assert.Equal(t, "fresh", added.ID, "generated ids never collide with stored ones")
}

func TestStore_AddValidation(t *testing.T) {
	store := NewStoreWithPath(t.TempDir())

	tests := []struct {
		name    string
		profile api.ServerProfile
		check   func(error) bool
	}{
		{
			name:    "empty name",
			profile: api.ServerProfile{Kind: api.KindHTTP},
			check:   func(err error) bool { return err != nil },
		},
		{
			name:    "unknown kind",
			profile: api.ServerProfile{Name: "x", Kind: "ftp"},
			check:   api.IsUnsupportedKind,
		},
		{
			name:    "unknown transport",
			profile: api.ServerProfile{Name: "x", Kind: api.KindHTTP, Config: api.ServerConfig{Transport: "grpc"}},
			check:   api.IsUnsupportedKind,
		},
		{
			name:    "unknown package manager",
			profile: api.ServerProfile{Name: "x", Kind: api.KindPackage, Config: api.ServerConfig{PackageManager: "pip"}},
			check:   api.IsUnsupportedKind,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := store.Add(tt.profile)
			assert.True(t, tt.check(err), "unexpected error: %v", err)
		})
	}

	profiles, err := store.List()
	require.NoError(t, err)
	assert.Empty(t, profiles)
}

func TestStore_PersistedFormat(t *testing.T) {
	dir := t.TempDir()
	store := NewStoreWithPath(dir)

	_, err := store.Add(api.ServerProfile{
		ID:     "h1",
		Name:   "Remote",
		Kind:   api.KindHTTP,
		Config: api.ServerConfig{BaseURL: "http://localhost:3000/sse"},
	})
	require.NoError(t, err)
	require.NoError(t, store.SetTheme(api.ThemeDark))

	data, err := os.ReadFile(filepath.Join(dir, SettingsFileName))
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, "serverConfigs:")
	assert.Contains(t, content, "type: http")
	assert.Contains(t, content, "baseUrl: http://localhost:3000/sse")
	assert.Contains(t, content, "theme: dark")

	// A second store over the same directory sees the same data.
	other := NewStoreWithPath(dir)
	got, err := other.Get("h1")
	require.NoError(t, err)
	assert.Equal(t, "Remote", got.Name)
}

func TestStore_ThemeAndLanguage(t *testing.T) {
	store := NewStoreWithPath(t.TempDir())

	theme, err := store.Theme()
	require.NoError(t, err)
	assert.Equal(t, api.ThemeLight, theme)

	require.NoError(t, store.SetTheme(api.ThemeDark))
	theme, err = store.Theme()
	require.NoError(t, err)
	assert.Equal(t, api.ThemeDark, theme)

	assert.Error(t, store.SetTheme("sepia"))
	theme, _ = store.Theme()
	assert.Equal(t, api.ThemeDark, theme)

	lang, err := store.Language()
	require.NoError(t, err)
	assert.Equal(t, api.LanguageEnglish, lang)

	require.NoError(t, store.SetLanguage(api.LanguageChinese))
	lang, err = store.Language()
	require.NoError(t, err)
	assert.Equal(t, api.LanguageChinese, lang)

	assert.Error(t, store.SetLanguage("fr"))
}

func TestStore_CorruptFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, SettingsFileName), []byte("serverConfigs: [unclosed"), 0644))

	store := NewStoreWithPath(dir)
	_, err := store.List()
	assert.Error(t, err)
	_, err = store.Add(packageProfile("x"))
	assert.Error(t, err)
}

func TestStore_Watch(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	store := NewStoreWithPath(dir)

	bus := events.NewBus(16)
	ch, cancel := bus.Subscribe(api.EventProfilesChanged)
	defer cancel()

	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	require.NoError(t, store.watch(ctx, bus, 20*time.Millisecond))

	external := "serverConfigs:\n  - id: ext\n    name: External\n    type: command\n    config:\n      command: my-server --stdio\n"
	require.NoError(t, os.WriteFile(store.Path(), []byte(external), 0644))

	select {
	case ev := <-ch:
		assert.Equal(t, api.EventProfilesChanged, ev.Type)
	case <-time.After(2 * time.Second):
		t.Fatal("expected profiles-changed event")
	}

	got, err := store.Get("ext")
	require.NoError(t, err)
	assert.Equal(t, api.KindCommand, got.Kind)
	assert.Equal(t, "my-server --stdio", got.Config.Command)
}
