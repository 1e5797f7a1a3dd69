// Package config loads navguard.toml, the declarative configuration for
// the navguard command: initial location, named routes, guard rules, and
// the bridge listen address.
package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/navguard-dev/navguard/pkg/guard"
	"github.com/navguard-dev/navguard/pkg/pattern"
)

const (
	// FileName is the name of the configuration file.
	FileName = "navguard.toml"

	// DefaultListen is the default bridge listen address.
	DefaultListen = "localhost:7440"

	// DefaultInitialLocation is the location the machine starts at when
	// the config does not name one.
	DefaultInitialLocation = "/"

	// DefaultHistoryLimit caps the recorded history log.
	DefaultHistoryLimit = 1000
)

// Config is the parsed navguard.toml.
type Config struct {
	// InitialLocation is the root of the navigation stack.
	InitialLocation string `toml:"initial_location"`

	// HistoryLimit caps the machine's history log. Zero means the
	// default; negative means unlimited.
	HistoryLimit int `toml:"history_limit"`

	// Routes maps route names to path templates.
	Routes map[string]string `toml:"routes"`

	// Guards are declarative guard rules, applied in file order.
	Guards []GuardRule `toml:"guards"`

	// Bridge configures the HTTP/WebSocket bridge server.
	Bridge BridgeConfig `toml:"bridge"`

	// configPath stores the path the config was loaded from.
	configPath string
}

// BridgeConfig configures the bridge server.
type BridgeConfig struct {
	// Listen is the address the bridge binds to.
	Listen string `toml:"listen"`
}

// GuardRule is a declarative guard: a verdict applied to a set of
// location patterns.
type GuardRule struct {
	// Name identifies the rule in logs and errors.
	Name string `toml:"name"`

	// Action is one of "allow", "block", or "redirect".
	Action string `toml:"action"`

	// Target is the redirect destination (redirect action only).
	Target string `toml:"target"`

	// Reason is the reject reason (block action only).
	Reason string `toml:"reason"`

	// ShowError marks a block as user-visible.
	ShowError bool `toml:"show_error"`

	// Priority orders the rule among all guards. Higher runs first.
	Priority int `toml:"priority"`

	// AppliesTo restricts the rule to matching locations. Empty means
	// everywhere.
	AppliesTo []string `toml:"applies_to"`

	// Excludes exempts matching locations from the rule.
	Excludes []string `toml:"excludes"`
}

// Load reads navguard.toml from the given directory.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, FileName))
}

// LoadFile reads and validates a configuration file.
func LoadFile(path string) (*Config, error) {
	cfg := New()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("no %s found in %s", FileName, filepath.Dir(path))
		}
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	cfg.configPath = path
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// New returns a config with defaults applied.
func New() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Path returns where the config was loaded from, or "" for a config
// built in memory.
func (c *Config) Path() string {
	return c.configPath
}

func (c *Config) applyDefaults() {
	if c.InitialLocation == "" {
		c.InitialLocation = DefaultInitialLocation
	}
	if c.HistoryLimit == 0 {
		c.HistoryLimit = DefaultHistoryLimit
	}
	if c.Bridge.Listen == "" {
		c.Bridge.Listen = DefaultListen
	}
}

// Validate checks route templates and guard rules. It reports the first
// problem found.
func (c *Config) Validate() error {
	for name, template := range c.Routes {
		if _, err := pattern.Compile(template); err != nil {
			return fmt.Errorf("route %q: %w", name, err)
		}
	}

	for i, rule := range c.Guards {
		name := rule.Name
		if name == "" {
			name = fmt.Sprintf("#%d", i+1)
		}
		switch rule.Action {
		case "allow":
		case "block":
		case "redirect":
			if rule.Target == "" {
				return fmt.Errorf("guard %s: redirect action requires a target", name)
			}
		default:
			return fmt.Errorf("guard %s: unknown action %q", name, rule.Action)
		}
		for _, patterns := range [][]string{rule.AppliesTo, rule.Excludes} {
			for _, raw := range patterns {
				if _, err := pattern.Compile(raw); err != nil {
					return fmt.Errorf("guard %s: %w", name, err)
				}
			}
		}
	}
	return nil
}

// BuildGuards compiles the declarative rules into guards, in file
// order. Call only on a validated config.
func (c *Config) BuildGuards() []guard.Guard {
	guards := make([]guard.Guard, 0, len(c.Guards))
	for _, rule := range c.Guards {
		guards = append(guards, buildGuard(rule))
	}
	return guards
}

func buildGuard(rule GuardRule) guard.Guard {
	var result guard.Result
	switch rule.Action {
	case "block":
		var rejectOpts []guard.RejectOption
		if rule.ShowError {
			rejectOpts = append(rejectOpts, guard.WithShowError())
		}
		result = guard.RejectWith(rule.Reason, rejectOpts...)
	case "redirect":
		result = guard.RedirectTo(rule.Target)
	default:
		result = guard.Allow()
	}

	opts := []guard.Option{guard.WithPriority(rule.Priority)}
	if len(rule.AppliesTo) > 0 {
		opts = append(opts, guard.AppliesTo(pattern.MustCompileAll(rule.AppliesTo...)...))
	}
	if len(rule.Excludes) > 0 {
		opts = append(opts, guard.Excludes(pattern.MustCompileAll(rule.Excludes...)...))
	}
	return guard.New(func(context.Context, *guard.Context) (guard.Result, error) {
		return result, nil
	}, opts...)
}
