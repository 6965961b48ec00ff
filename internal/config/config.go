// Package config resolves the bridge's per-registration configuration.
//
// Configuration comes from the host as a loosely-typed object (plugin
// config), optionally from a YAML file, and from EVERMEM_* environment
// variables. It is resolved once and never mutated afterwards.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultAPIURL is the EverMemOS REST root on a local install.
	DefaultAPIURL = "http://localhost:8001/api/v1"

	// DefaultUserID is the identity used when a call names no user.
	DefaultUserID = "openclaw"

	// DataDirName is created under the user's home for local state.
	DataDirName = ".evermem-bridge"
)

// Environment variables applied on top of the config file.
const (
	EnvAPIURL      = "EVERMEM_API_URL"
	EnvUserID      = "EVERMEM_USER_ID"
	EnvAutoRecall  = "EVERMEM_AUTO_RECALL"
	EnvAutoCapture = "EVERMEM_AUTO_CAPTURE"
	EnvJournal     = "EVERMEM_JOURNAL"
)

// ErrInvalidConfig is returned when a config file cannot be decoded.
var ErrInvalidConfig = errors.New("invalid config")

// BridgeConfig is the immutable configuration of one bridge registration.
type BridgeConfig struct {
	APIURL        string `json:"apiUrl" yaml:"apiUrl"`
	DefaultUserID string `json:"defaultUserId" yaml:"defaultUserId"`
	AutoRecall    bool   `json:"autoRecall" yaml:"autoRecall"`
	AutoCapture   bool   `json:"autoCapture" yaml:"autoCapture"`

	// JournalPath is the SQLite capture journal. Empty disables it.
	JournalPath string `json:"journalPath" yaml:"journalPath"`
}

// Default returns the configuration used when nothing is supplied.
func Default() BridgeConfig {
	return Parse(nil)
}

// Parse coerces a host-supplied plugin config. Anything that is not an
// object yields the defaults; fields of the wrong type fall back to their
// default. AutoRecall is on unless explicitly false, AutoCapture is off
// unless explicitly true.
func Parse(value any) BridgeConfig {
	raw, _ := value.(map[string]any)

	cfg := BridgeConfig{
		APIURL:        DefaultAPIURL,
		DefaultUserID: DefaultUserID,
		AutoRecall:    true,
		JournalPath:   DefaultJournalPath(),
	}
	if s, ok := raw["apiUrl"].(string); ok {
		cfg.APIURL = s
	}
	if s, ok := raw["defaultUserId"].(string); ok {
		cfg.DefaultUserID = s
	}
	if b, ok := raw["autoRecall"].(bool); ok && !b {
		cfg.AutoRecall = false
	}
	if b, ok := raw["autoCapture"].(bool); ok && b {
		cfg.AutoCapture = true
	}
	if s, ok := raw["journalPath"].(string); ok {
		cfg.JournalPath = s
	}
	return cfg
}

// Load reads a YAML plugin config from path, applies EVERMEM_* environment
// overrides and parses the result. An empty path or a missing file is not
// an error.
func Load(path string) (BridgeConfig, error) {
	raw := map[string]any{}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
			// fall through with env and defaults only
		case err != nil:
			return BridgeConfig{}, fmt.Errorf("reading config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &raw); err != nil {
				return BridgeConfig{}, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, path, err)
			}
			if raw == nil {
				raw = map[string]any{}
			}
		}
	}

	applyEnv(raw)
	return Parse(raw), nil
}

// DefaultConfigPath is ~/.evermem-bridge/config.yaml.
func DefaultConfigPath() string {
	return filepath.Join(dataDir(), "config.yaml")
}

// DefaultJournalPath is ~/.evermem-bridge/journal.db.
func DefaultJournalPath() string {
	return filepath.Join(dataDir(), "journal.db")
}

func dataDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, DataDirName)
}

func applyEnv(raw map[string]any) {
	if v, ok := os.LookupEnv(EnvAPIURL); ok {
		raw["apiUrl"] = v
	}
	if v, ok := os.LookupEnv(EnvUserID); ok {
		raw["defaultUserId"] = v
	}
	if v, ok := os.LookupEnv(EnvJournal); ok {
		raw["journalPath"] = v
	}
	for env, key := range map[string]string{EnvAutoRecall: "autoRecall", EnvAutoCapture: "autoCapture"} {
		v, ok := os.LookupEnv(env)
		if !ok {
			continue
		}
		if b, err := strconv.ParseBool(v); err == nil {
			raw[key] = b
		}
	}
}
