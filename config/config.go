// Package config loads and saves the tss configuration file at
// ~/.tss/config.yaml.
package config

//go:generate go run ../tools/schema-generator

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// SourceConfig holds credentials and defaults for one remote source.
type SourceConfig struct {
	// APIKey authenticates against the source's API. Prefer
	// APIKeyCommand over storing keys in the file.
	APIKey string `yaml:"api_key,omitempty"`

	// APIKeyCommand is a shell command whose stdout is the API key,
	// for use with secret managers. Consulted when APIKey is empty.
	APIKeyCommand string `yaml:"api_key_command,omitempty"`

	// DefaultTag restricts syncing to recordings with this tag, for
	// sources that support tagging.
	DefaultTag string `yaml:"default_tag,omitempty"`

	// BaseURL overrides the source's API endpoint.
	BaseURL string `yaml:"base_url,omitempty"`
}

// Config is the top-level configuration structure for tss.
type Config struct {
	// Database overrides the default database path (~/.tss/tss.db).
	Database string `yaml:"database,omitempty"`

	// Sources maps a source name ("fireflies", "pocket") to its
	// credentials and defaults.
	Sources map[string]SourceConfig `yaml:"sources,omitempty"`
}

// Path returns the config file location, honoring TSS_CONFIG.
func Path() (string, error) {
	if p := os.Getenv("TSS_CONFIG"); p != "" {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".tss", "config.yaml"), nil
}

// Load reads the config file. A missing file yields an empty Config.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Config{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return &cfg, nil
}

// Save writes the config file, creating ~/.tss if needed.
func Save(cfg *Config) error {
	path, err := Path()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}

// Init writes a commented starter config. It refuses to overwrite an
// existing file.
func Init() (string, error) {
	path, err := Path()
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(path); err == nil {
		return path, fmt.Errorf("config already exists at %s", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create config directory: %w", err)
	}
	const starter = `# tss configuration
#
# database: /path/to/tss.db
#
# sources:
#   fireflies:
#     api_key_command: "pass show fireflies/api-key"
#   pocket:
#     api_key: "pk-..."
#     default_tag: "team-standup"
`
	if err := os.WriteFile(path, []byte(starter), 0o600); err != nil {
		return "", fmt.Errorf("write config %s: %w", path, err)
	}
	return path, nil
}

// APIKey resolves the credential for a source: explicit value first,
// then the TSS_<SOURCE>_API_KEY environment variable, then the stored
// key, then the key command.
func (c *Config) APIKey(source, flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	envKey := "TSS_" + strings.ToUpper(source) + "_API_KEY"
	if v := os.Getenv(envKey); v != "" {
		return v, nil
	}
	sc := c.Sources[source]
	if sc.APIKey != "" {
		return sc.APIKey, nil
	}
	if sc.APIKeyCommand != "" {
		out, err := exec.Command("sh", "-c", sc.APIKeyCommand).Output()
		if err != nil {
			return "", fmt.Errorf("run api_key_command for %s: %w", source, err)
		}
		key := strings.TrimSpace(string(out))
		if key == "" {
			return "", fmt.Errorf("api_key_command for %s produced no output", source)
		}
		return key, nil
	}
	return "", fmt.Errorf("no API key for %s: set %s, or api_key / api_key_command in the config", source, envKey)
}

// Redacted returns a copy with credentials masked for display.
func (c *Config) Redacted() *Config {
	out := &Config{Database: c.Database}
	if c.Sources != nil {
		out.Sources = make(map[string]SourceConfig, len(c.Sources))
		for name, sc := range c.Sources {
			if sc.APIKey != "" {
				sc.APIKey = redactKey(sc.APIKey)
			}
			out.Sources[name] = sc
		}
	}
	return out
}

func redactKey(key string) string {
	if len(key) <= 8 {
		return "********"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
