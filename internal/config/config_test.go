package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv unsets every EVERMEM_* override for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{EnvAPIURL, EnvUserID, EnvAutoRecall, EnvAutoCapture, EnvJournal} {
		t.Setenv(k, "")
		_ = os.Unsetenv(k)
	}
}

// --- Parse ---

func TestParse_Defaults(t *testing.T) {
	for name, in := range map[string]any{
		"nil":    nil,
		"string": "http://elsewhere",
		"slice":  []any{"a"},
		"empty":  map[string]any{},
	} {
		t.Run(name, func(t *testing.T) {
			cfg := Parse(in)
			assert.Equal(t, DefaultAPIURL, cfg.APIURL)
			assert.Equal(t, DefaultUserID, cfg.DefaultUserID)
			assert.True(t, cfg.AutoRecall)
			assert.False(t, cfg.AutoCapture)
			assert.Equal(t, DefaultJournalPath(), cfg.JournalPath)
		})
	}
}

func TestParse_ExplicitValues(t *testing.T) {
	cfg := Parse(map[string]any{
		"apiUrl":        "http://mem:9000/api/v1",
		"defaultUserId": "alice",
		"autoRecall":    false,
		"autoCapture":   true,
		"journalPath":   "",
	})
	assert.Equal(t, BridgeConfig{
		APIURL:        "http://mem:9000/api/v1",
		DefaultUserID: "alice",
		AutoRecall:    false,
		AutoCapture:   true,
		JournalPath:   "",
	}, cfg)
}

func TestParse_WrongTypesFallBack(t *testing.T) {
	cfg := Parse(map[string]any{
		"apiUrl":        42,
		"defaultUserId": true,
		"autoRecall":    "false",
		"autoCapture":   "true",
	})
	assert.Equal(t, DefaultAPIURL, cfg.APIURL)
	assert.Equal(t, DefaultUserID, cfg.DefaultUserID)
	assert.True(t, cfg.AutoRecall, "only a real false disables recall")
	assert.False(t, cfg.AutoCapture, "only a real true enables capture")
}

// --- Load ---

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_EmptyPath(t *testing.T) {
	clearEnv(t)
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_YAMLFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"apiUrl: http://mem:9000/api/v1\n"+
			"defaultUserId: bob\n"+
			"autoCapture: true\n"+
			"journalPath: /tmp/j.db\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://mem:9000/api/v1", cfg.APIURL)
	assert.Equal(t, "bob", cfg.DefaultUserID)
	assert.True(t, cfg.AutoRecall)
	assert.True(t, cfg.AutoCapture)
	assert.Equal(t, "/tmp/j.db", cfg.JournalPath)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("defaultUserId: bob\nautoRecall: true\n"), 0o600))

	t.Setenv(EnvUserID, "carol")
	t.Setenv(EnvAutoRecall, "false")
	t.Setenv(EnvAutoCapture, "not-a-bool")
	t.Setenv(EnvJournal, "")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "carol", cfg.DefaultUserID)
	assert.False(t, cfg.AutoRecall)
	assert.False(t, cfg.AutoCapture, "unparseable bool is ignored")
	assert.Empty(t, cfg.JournalPath, "an empty EVERMEM_JOURNAL disables the journal")
}

func TestLoad_InvalidYAML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("apiUrl: [unclosed\n"), 0o600))

	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidConfig))
}

func TestDefaultPaths(t *testing.T) {
	assert.Equal(t, "journal.db", filepath.Base(DefaultJournalPath()))
	assert.Equal(t, DataDirName, filepath.Base(filepath.Dir(DefaultConfigPath())))
}
