// Package config loads the optional leibniz.lua configuration file: a Lua
// script exposing a global `leibniz` table with a `disabled_rules` array
// and an optional `hooks` table of rule-name -> callback, invoked when that
// rule fires during analysis.
package config

import (
	"fmt"
	"os"
	"strings"

	lua "github.com/yuin/gopher-lua"
	"gopkg.in/yaml.v3"

	"github.com/xqlint/sqleibniz/pkg/diagnostic"
)

// Config is the result of loading and validating leibniz.lua.
type Config struct {
	DisabledRules []diagnostic.Rule
	Hooks         map[diagnostic.Rule]*lua.LFunction

	state *lua.LState
}

// Default returns the zero configuration used when no file is found or
// --ignore-config was passed.
func Default() *Config {
	return &Config{}
}

// yamlConfig is the plain-data shape accepted when the configuration file
// has a .yaml/.yml extension — a lighter alternative to leibniz.lua for
// projects that only need to disable rules and carry no hook scripting.
type yamlConfig struct {
	DisabledRules []string `yaml:"disabled_rules"`
}

// Load reads and executes fileName, returning the parsed leibniz table. A
// .yaml/.yml extension is loaded as plain data instead of Lua. A missing or
// malformed file is a plain error: the caller decides whether to warn and
// fall back to Default(), matching the teacher's convention of wrapping
// I/O failures with %w rather than panicking.
func Load(fileName string) (*Config, error) {
	content, err := os.ReadFile(fileName)
	if err != nil {
		return nil, fmt.Errorf("reading configuration from %q: %w", fileName, err)
	}

	if ext := strings.ToLower(fileName); strings.HasSuffix(ext, ".yaml") || strings.HasSuffix(ext, ".yml") {
		return loadYAML(fileName, content)
	}

	state := lua.NewState()
	if err := state.DoString(string(content)); err != nil {
		state.Close()
		return nil, fmt.Errorf("executing configuration %q: %w", fileName, err)
	}

	raw := state.GetGlobal("leibniz")
	if raw == lua.LNil {
		state.Close()
		return nil, fmt.Errorf("%s: leibniz table is missing from configuration", fileName)
	}
	tbl, ok := raw.(*lua.LTable)
	if !ok {
		state.Close()
		return nil, fmt.Errorf("%s: leibniz global must be a table, got %s", fileName, raw.Type())
	}

	cfg := &Config{state: state, Hooks: map[diagnostic.Rule]*lua.LFunction{}}

	if disabled, ok := tbl.RawGetString("disabled_rules").(*lua.LTable); ok {
		disabled.ForEach(func(_, v lua.LValue) {
			name, ok := v.(lua.LString)
			if !ok {
				return
			}
			if rule, ok := diagnostic.RuleByName(string(name)); ok {
				cfg.DisabledRules = append(cfg.DisabledRules, rule)
			}
		})
	}

	if hooks, ok := tbl.RawGetString("hooks").(*lua.LTable); ok {
		hooks.ForEach(func(k, v lua.LValue) {
			name, ok := k.(lua.LString)
			if !ok {
				return
			}
			fn, ok := v.(*lua.LFunction)
			if !ok {
				return
			}
			if rule, ok := diagnostic.RuleByName(string(name)); ok {
				cfg.Hooks[rule] = fn
			}
		})
	}

	return cfg, nil
}

func loadYAML(fileName string, content []byte) (*Config, error) {
	var raw yamlConfig
	if err := yaml.Unmarshal(content, &raw); err != nil {
		return nil, fmt.Errorf("parsing configuration %q: %w", fileName, err)
	}
	cfg := &Config{Hooks: map[diagnostic.Rule]*lua.LFunction{}}
	for _, name := range raw.DisabledRules {
		if rule, ok := diagnostic.RuleByName(name); ok {
			cfg.DisabledRules = append(cfg.DisabledRules, rule)
		}
	}
	return cfg, nil
}

// Close releases the underlying Lua state. Safe to call on a Default().
func (c *Config) Close() {
	if c.state != nil {
		c.state.Close()
	}
}

// DisabledSet builds the lookup map diagnostic.Filter expects.
func (c *Config) DisabledSet() map[diagnostic.Rule]bool {
	out := make(map[diagnostic.Rule]bool, len(c.DisabledRules))
	for _, r := range c.DisabledRules {
		out[r] = true
	}
	return out
}

// RunHook invokes the configured hook for rule, if any, passing the
// diagnostic's file, message and note as string arguments. Hook errors are
// reported but never abort analysis — a misbehaving hook is the user's
// scripting bug, not a sqleibniz failure.
func (c *Config) RunHook(d diagnostic.Diagnostic) error {
	fn, ok := c.Hooks[d.Rule]
	if !ok || c.state == nil {
		return nil
	}
	return c.state.CallByParam(lua.P{
		Fn:      fn,
		NRet:    0,
		Protect: true,
	}, lua.LString(d.File), lua.LString(d.Msg), lua.LString(d.Note))
}
