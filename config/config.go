package config

import (
	"encoding/json"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/sortid/clock"
	"github.com/rustyeddy/sortid/nanoid"
)

// Config represents the complete generator configuration
type Config struct {
	Generator   GeneratorConfig   `json:"generator" yaml:"generator"`
	Clock       ClockConfig       `json:"clock" yaml:"clock"`
	Persistence PersistenceConfig `json:"persistence" yaml:"persistence"`
	Node        NodeConfig        `json:"node" yaml:"node"`
	NanoID      NanoIDConfig      `json:"nanoid" yaml:"nanoid"`
	Log         LogConfig         `json:"log" yaml:"log"`
}

// GeneratorConfig selects what `sortid gen` produces
type GeneratorConfig struct {
	Kind  string `json:"kind" yaml:"kind"` // see Kinds
	Count int    `json:"count" yaml:"count"`
	Upper bool   `json:"upper,omitempty" yaml:"upper,omitempty"`
}

// Kinds lists the id kinds a generator can produce.
var Kinds = []string{"uuid1", "uuid3", "uuid4", "uuid5", "uuid6", "uuid7", "ulid", "nanoid", "cuid2"}

// ClockConfig tunes goroutine-owned ULID generators. Empty values keep
// the measured resolution and the default tolerance.
type ClockConfig struct {
	Resolution string `json:"resolution,omitempty" yaml:"resolution,omitempty"` // e.g. "1ms"
	Tolerance  string `json:"tolerance,omitempty" yaml:"tolerance,omitempty"`   // e.g. "1s"
}

// PersistenceConfig selects where clock state survives between runs
type PersistenceConfig struct {
	Type   string `json:"type" yaml:"type"` // "none", "memory", "file" or "sqlite"
	Dir    string `json:"dir,omitempty" yaml:"dir,omitempty"`
	DBPath string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

// NodeConfig selects the node id of version 1 and 6 UUIDs
type NodeConfig struct {
	Mode string `json:"mode" yaml:"mode"` // "system", "random" or "fixed"
	ID   string `json:"id,omitempty" yaml:"id,omitempty"`
}

// NanoIDConfig describes the nanoid format
type NanoIDConfig struct {
	Alphabet string `json:"alphabet,omitempty" yaml:"alphabet,omitempty"`
	Length   int    `json:"length" yaml:"length"`
}

// LogConfig contains logging parameters
type LogConfig struct {
	Level  string `json:"level" yaml:"level"`
	Format string `json:"format" yaml:"format"` // "text" or "json"
}

// LoadFromFile loads configuration from a file (JSON or YAML)
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		cfg = Default()
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SaveToFile saves configuration to a file (JSON or YAML based on extension)
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if !isKind(c.Generator.Kind) {
		return fmt.Errorf("generator.kind must be one of %s", strings.Join(Kinds, ", "))
	}
	if c.Generator.Count <= 0 {
		return fmt.Errorf("generator.count must be positive")
	}
	if _, err := c.Clock.Options(); err != nil {
		return err
	}

	switch c.Persistence.Type {
	case "none", "memory":
	case "file":
		if c.Persistence.Dir == "" {
			return fmt.Errorf("persistence dir required for file type")
		}
	case "sqlite":
		if c.Persistence.DBPath == "" {
			return fmt.Errorf("persistence db_path required for SQLite type")
		}
	default:
		return fmt.Errorf("persistence.type must be 'none', 'memory', 'file' or 'sqlite'")
	}

	switch c.Node.Mode {
	case "system", "random":
	case "fixed":
		if _, err := c.Node.Fixed(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("node.mode must be 'system', 'random' or 'fixed'")
	}

	if _, err := c.NanoID.Format(); err != nil {
		return fmt.Errorf("nanoid: %w", err)
	}

	if f := strings.ToLower(c.Log.Format); f != "text" && f != "json" {
		return fmt.Errorf("log.format must be 'text' or 'json'")
	}
	return nil
}

func isKind(k string) bool {
	for _, v := range Kinds {
		if v == k {
			return true
		}
	}
	return false
}

// Options converts the clock settings to clock options.
func (c ClockConfig) Options() ([]clock.Option, error) {
	var opts []clock.Option
	if c.Resolution != "" {
		d, err := time.ParseDuration(c.Resolution)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("clock.resolution %q must be a positive duration", c.Resolution)
		}
		opts = append(opts, clock.WithResolution(d))
	}
	if c.Tolerance != "" {
		d, err := time.ParseDuration(c.Tolerance)
		if err != nil || d < 0 {
			return nil, fmt.Errorf("clock.tolerance %q must be a non-negative duration", c.Tolerance)
		}
		opts = append(opts, clock.WithTolerance(d))
	}
	return opts, nil
}

// Fixed parses the configured node id, a six byte MAC address.
func (n NodeConfig) Fixed() ([6]byte, error) {
	var id [6]byte
	hw, err := net.ParseMAC(n.ID)
	if err != nil || len(hw) != len(id) {
		return id, fmt.Errorf("node.id %q must be a 6 byte MAC address", n.ID)
	}
	copy(id[:], hw)
	return id, nil
}

// Format builds the configured nanoid format. An empty alphabet means the
// default one.
func (n NanoIDConfig) Format() (*nanoid.Format, error) {
	alphabet := n.Alphabet
	if alphabet == "" {
		alphabet = nanoid.DefaultAlphabet
	}
	return nanoid.NewFormat(alphabet, n.Length)
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		Generator: GeneratorConfig{
			Kind:  "uuid7",
			Count: 1,
		},
		Persistence: PersistenceConfig{
			Type: "none",
		},
		Node: NodeConfig{
			Mode: "system",
		},
		NanoID: NanoIDConfig{
			Length: nanoid.DefaultLength,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}
