package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/pmartell/ddcswitch/internal/display"
)

// Machine describes the desired display state for one logical machine.
// Input is a name resolved against Config.Inputs.
type Machine struct {
	Input    string `yaml:"input"`
	Contrast int    `yaml:"contrast"`
}

// Readiness tunes the poll that waits for displays to answer DDC-CI
// queries again after an input switch.
type Readiness struct {
	Interval Duration `yaml:"interval"`
	Attempts int      `yaml:"attempts"`
}

// Config is the full profile table. It is built once at startup (builtin
// defaults overlaid by an optional YAML file), validated, and passed
// explicitly to whoever needs it; nothing reads it as global state.
type Config struct {
	Inputs    map[string]int     `yaml:"inputs"`
	Machines  map[string]Machine `yaml:"machines"`
	Readiness Readiness          `yaml:"readiness"`
}

// Profile is a Machine with its input name resolved to a source code.
type Profile struct {
	Input    display.InputSource
	Contrast int
}

// UnknownTargetError reports a target name with no configured machine.
type UnknownTargetError struct {
	Target string
	Known  []string
}

func (e *UnknownTargetError) Error() string {
	return fmt.Sprintf("unrecognized target %q (configured: %v)", e.Target, e.Known)
}

// Default returns the builtin configuration, always valid on its own.
func Default() *Config {
	return &Config{
		Inputs: map[string]int{
			"hdmi": int(display.InputHDMI),
			"usbc": int(display.InputUSBC),
		},
		Machines: map[string]Machine{
			"work": {Input: "hdmi", Contrast: 75},
			"mac":  {Input: "usbc", Contrast: 75},
		},
		Readiness: Readiness{
			Interval: Duration(750 * time.Millisecond),
			Attempts: 10,
		},
	}
}

// DefaultPath returns the standard config file location.
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "ddcswitch", "config.yaml"), nil
}

// Load reads the config from the standard location. A missing file is not
// an error; the builtin defaults apply.
func Load() (*Config, error) {
	path, err := DefaultPath()
	if err != nil {
		return nil, err
	}
	return LoadFromPath(path)
}

// LoadFromPath overlays the YAML file at path onto the builtin defaults.
// Map entries merge per key, so a file can retune one machine or add a
// new one without restating the rest.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks internal consistency: every machine must reference a
// known input, contrast must be non-negative, poll settings positive.
func (c *Config) Validate() error {
	for name, m := range c.Machines {
		if _, ok := c.Inputs[m.Input]; !ok {
			return fmt.Errorf("machine %q references unknown input %q", name, m.Input)
		}
		if m.Contrast < 0 {
			return fmt.Errorf("machine %q has negative contrast %d", name, m.Contrast)
		}
	}
	if c.Readiness.Interval <= 0 {
		return fmt.Errorf("readiness interval must be positive")
	}
	if c.Readiness.Attempts <= 0 {
		return fmt.Errorf("readiness attempts must be positive")
	}
	return nil
}

// Profile resolves a target machine name to a ready-to-apply profile.
func (c *Config) Profile(target string) (Profile, error) {
	m, ok := c.Machines[target]
	if !ok {
		return Profile{}, &UnknownTargetError{Target: target, Known: c.Targets()}
	}
	return Profile{
		Input:    display.InputSource(c.Inputs[m.Input]),
		Contrast: m.Contrast,
	}, nil
}

// Targets returns the configured machine names, sorted.
func (c *Config) Targets() []string {
	names := make([]string, 0, len(c.Machines))
	for name := range c.Machines {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Duration wraps time.Duration so YAML can carry values like "750ms".
type Duration time.Duration

func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}
