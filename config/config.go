// Package config provides configuration loading, validation and reload for the gateway.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the full gateway configuration. Accessors are safe for
// concurrent use with Reload.
type Config struct {
	Server           ServerConfig  `json:"server" yaml:"server"`
	Metrics          MetricsConfig `json:"metrics" yaml:"metrics"`
	Tokens           []AccessToken `json:"tokens" yaml:"tokens"`
	Groups           []ModelGroup  `json:"modelGroups" yaml:"modelGroups"`
	HeartbeatTimeout int           `json:"heartbeatTimeout,omitempty" yaml:"heartbeatTimeout,omitempty"`
	HTTPTimeout      int           `json:"httpTimeout,omitempty" yaml:"httpTimeout,omitempty"`
	DebugMode        bool          `json:"debugMode,omitempty" yaml:"debugMode,omitempty"`
	VerboseLog       bool          `json:"verboseLog,omitempty" yaml:"verboseLog,omitempty"`

	mu   sync.RWMutex
	path string
}

// ServerConfig holds the listen address.
type ServerConfig struct {
	Host string `json:"host" yaml:"host"`
	Port int    `json:"port" yaml:"port"`
}

// MetricsConfig controls the Prometheus metrics endpoint.
type MetricsConfig struct {
	Enabled  bool   `json:"enabled" yaml:"enabled"`
	Endpoint string `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
}

// AccessToken is an inbound bearer token. Only enabled tokens are accepted;
// with no tokens configured the gateway is open.
type AccessToken struct {
	Token   string `json:"token" yaml:"token"`
	Name    string `json:"name" yaml:"name"`
	Enabled bool   `json:"enabled" yaml:"enabled"`
}

// ModelGroup is a named, load-balanced set of backend endpoints exposed to
// clients as one logical model. Member order matters for the round-robin and
// sequential strategies.
type ModelGroup struct {
	ID       string          `json:"id" yaml:"id"`
	Name     string          `json:"name" yaml:"name"`
	Enabled  bool            `json:"enabled" yaml:"enabled"`
	Models   []ModelEndpoint `json:"models" yaml:"models"`
	Strategy string          `json:"strategy" yaml:"strategy"`

	// Retry and limit fields are parsed for compatibility with existing
	// config files but are not enforced by the pipeline.
	MaxRetries     int        `json:"maxRetries,omitempty" yaml:"maxRetries,omitempty"`
	RetryInterval  int        `json:"retryInterval,omitempty" yaml:"retryInterval,omitempty"`
	MaxConcurrency int        `json:"maxConcurrency,omitempty" yaml:"maxConcurrency,omitempty"`
	DailyLimit     DailyLimit `json:"dailyLimit,omitempty" yaml:"dailyLimit,omitempty"`

	Type          string `json:"type,omitempty" yaml:"type,omitempty"`
	MaxTokens     int    `json:"maxTokens,omitempty" yaml:"maxTokens,omitempty"`
	VisionCapable *bool  `json:"visionCapable,omitempty" yaml:"visionCapable,omitempty"`
	ToolsCapable  *bool  `json:"toolsCapable,omitempty" yaml:"toolsCapable,omitempty"`
}

// ModelEndpoint is one concrete backend inside a group.
type ModelEndpoint struct {
	ID      string `json:"id" yaml:"id"`
	Name    string `json:"name" yaml:"name"`
	BaseURL string `json:"baseUrl" yaml:"baseUrl"`
	APIKey  string `json:"apiKey" yaml:"apiKey"`
	// Platform is an optional explicit dialect hint; when empty the outbound
	// dialect is inferred from BaseURL.
	Platform string `json:"platform,omitempty" yaml:"platform,omitempty"`
}

// DailyLimit caps per-group daily traffic. Parsed but not enforced.
type DailyLimit struct {
	Enabled     bool `json:"enabled" yaml:"enabled"`
	MaxRequests int  `json:"maxRequests,omitempty" yaml:"maxRequests,omitempty"`
	MaxTokens   int  `json:"maxTokens,omitempty" yaml:"maxTokens,omitempty"`
}

// Load reads and validates the config file at path. The format is chosen by
// extension: .yaml/.yml is parsed as YAML, anything else as JSON. API keys
// and tokens support ${ENV_VAR} expansion.
func Load(path string) (*Config, error) {
	cfg := &Config{path: path}
	if err := cfg.load(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Reload re-reads the config file and atomically swaps the loaded sections.
// On error the previous configuration stays in effect.
func (c *Config) Reload() error {
	return c.load()
}

func (c *Config) load() error {
	data, err := os.ReadFile(c.path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	var next Config
	switch filepath.Ext(c.path) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &next); err != nil {
			return fmt.Errorf("parse config: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &next); err != nil {
			return fmt.Errorf("parse config: %w", err)
		}
	}

	expandSecrets(&next)

	if err := next.Validate(); err != nil {
		return err
	}

	c.mu.Lock()
	c.Server = next.Server
	c.Metrics = next.Metrics
	c.Tokens = next.Tokens
	c.Groups = next.Groups
	c.HeartbeatTimeout = next.HeartbeatTimeout
	c.HTTPTimeout = next.HTTPTimeout
	c.DebugMode = next.DebugMode
	c.VerboseLog = next.VerboseLog
	c.mu.Unlock()

	return nil
}

// expandSecrets applies ${ENV_VAR} expansion to credential fields.
func expandSecrets(c *Config) {
	for gi := range c.Groups {
		for mi := range c.Groups[gi].Models {
			c.Groups[gi].Models[mi].APIKey = os.ExpandEnv(c.Groups[gi].Models[mi].APIKey)
		}
	}
	for ti := range c.Tokens {
		c.Tokens[ti].Token = os.ExpandEnv(c.Tokens[ti].Token)
	}
}

// Validate checks structural invariants that would otherwise surface as
// routing failures at request time.
func (c *Config) Validate() error {
	seen := make(map[string]struct{}, len(c.Groups))
	for i, g := range c.Groups {
		if g.Name == "" {
			return fmt.Errorf("modelGroups[%d]: name is required", i)
		}
		if _, dup := seen[g.Name]; dup {
			return fmt.Errorf("modelGroups[%d]: duplicate group name %q", i, g.Name)
		}
		seen[g.Name] = struct{}{}
		for j, m := range g.Models {
			if m.Name == "" {
				return fmt.Errorf("modelGroups[%d].models[%d]: name is required", i, j)
			}
			if m.BaseURL == "" {
				return fmt.Errorf("modelGroups[%d].models[%d]: baseUrl is required", i, j)
			}
		}
	}
	return nil
}

// GetGroups returns a snapshot of all configured groups.
func (c *Config) GetGroups() []ModelGroup {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]ModelGroup, len(c.Groups))
	copy(out, c.Groups)
	return out
}

// GetGroupByName returns the group with the given client-visible name.
func (c *Config) GetGroupByName(name string) (*ModelGroup, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for i := range c.Groups {
		if c.Groups[i].Name == name {
			g := c.Groups[i]
			return &g, true
		}
	}
	return nil, false
}

// GetTokens returns a snapshot of the configured access tokens.
func (c *Config) GetTokens() []AccessToken {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]AccessToken, len(c.Tokens))
	copy(out, c.Tokens)
	return out
}

// GetHTTPTimeout returns the outbound relay timeout. Zero means no limit.
func (c *Config) GetHTTPTimeout() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return time.Duration(c.HTTPTimeout) * time.Second
}

// GetHeartbeatTimeout returns the supervisor heartbeat timeout (default 300s).
func (c *Config) GetHeartbeatTimeout() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.HeartbeatTimeout > 0 {
		return time.Duration(c.HeartbeatTimeout) * time.Second
	}
	return 300 * time.Second
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
