// Package config loads runtime settings from an optional bridge.yaml and
// NATIVEBRIDGE_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"golang.org/x/mod/modfile"
	"golang.org/x/mod/module"
	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"

	"github.com/go-drift/nativebridge/pkg/core"
	bridgeerrors "github.com/go-drift/nativebridge/pkg/errors"
	"github.com/go-drift/nativebridge/pkg/wire"
)

// FileName is the configuration file looked up by LoadOptional.
const FileName = "bridge.yaml"

// EnvPrefix starts every environment variable read by Resolve.
const EnvPrefix = "NATIVEBRIDGE_"

// Config represents the optional bridge.yaml configuration.
type Config struct {
	App    AppConfig    `yaml:"app" envPrefix:"APP_"`
	Bridge BridgeConfig `yaml:"bridge" envPrefix:"BRIDGE_"`
	Log    LogConfig    `yaml:"log" envPrefix:"LOG_"`
}

// AppConfig contains application metadata.
type AppConfig struct {
	Name string `yaml:"name,omitempty" env:"NAME"`
}

// BridgeConfig contains transport and protocol settings.
type BridgeConfig struct {
	Codec           string `yaml:"codec,omitempty" env:"CODEC"`
	AutoFlush       *bool  `yaml:"auto_flush,omitempty" env:"AUTO_FLUSH"`
	ProtocolVersion string `yaml:"protocol_version,omitempty" env:"PROTOCOL_VERSION"`
	RootType        string `yaml:"root_type,omitempty" env:"ROOT_TYPE"`
}

// LogConfig controls the error handler installed by Apply.
type LogConfig struct {
	Verbose bool `yaml:"verbose,omitempty" env:"VERBOSE"`
	Quiet   bool `yaml:"quiet,omitempty" env:"QUIET"`
}

// Resolved contains resolved configuration values.
type Resolved struct {
	Root            string
	ModulePath      string
	AppName         string
	Codec           wire.MessageCodec
	AutoFlush       bool
	ProtocolVersion string
	RootType        string
	Verbose         bool
	Quiet           bool
}

// LoadOptional reads bridge.yaml if present.
func LoadOptional(dir string) (*Config, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", FileName, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", FileName, err)
	}

	return &cfg, nil
}

// ParseEnv overlays NATIVEBRIDGE_* environment variables onto cfg. Fields
// without a matching variable keep their value.
func ParseEnv(cfg *Config) error {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Resolve loads bridge.yaml (if present), applies environment overrides
// and resolves defaults.
func Resolve(dir string) (*Resolved, error) {
	cfg, err := LoadOptional(dir)
	if err != nil {
		return nil, err
	}
	if err := ParseEnv(cfg); err != nil {
		return nil, err
	}
	return cfg.Resolve(dir)
}

// Resolve validates cfg and fills in defaults.
func (cfg *Config) Resolve(dir string) (*Resolved, error) {
	modulePath := optionalModulePath(dir)

	appName := strings.TrimSpace(cfg.App.Name)
	if appName == "" {
		appName = defaultAppName(modulePath, dir)
	}

	codec, err := wire.CodecByName(strings.TrimSpace(cfg.Bridge.Codec))
	if err != nil {
		return nil, fmt.Errorf("bridge.codec: %w", err)
	}

	version, err := normalizeVersion(cfg.Bridge.ProtocolVersion)
	if err != nil {
		return nil, err
	}

	rootType := strings.TrimSpace(cfg.Bridge.RootType)
	if rootType == "" {
		rootType = core.DefaultRootType
	}

	autoFlush := true
	if cfg.Bridge.AutoFlush != nil {
		autoFlush = *cfg.Bridge.AutoFlush
	}

	return &Resolved{
		Root:            dir,
		ModulePath:      modulePath,
		AppName:         appName,
		Codec:           codec,
		AutoFlush:       autoFlush,
		ProtocolVersion: version,
		RootType:        rootType,
		Verbose:         cfg.Log.Verbose,
		Quiet:           cfg.Log.Quiet,
	}, nil
}

// Options converts the resolved settings into runtime options.
func (r *Resolved) Options() []core.Option {
	return []core.Option{
		core.WithCodec(r.Codec),
		core.WithAutoFlush(r.AutoFlush),
		core.WithProtocolVersion(r.ProtocolVersion),
		core.WithRootType(r.RootType),
	}
}

// LogHandler returns the error handler described by the log settings.
func (r *Resolved) LogHandler() *bridgeerrors.LogHandler {
	return &bridgeerrors.LogHandler{Verbose: r.Verbose, Quiet: r.Quiet}
}

// Apply installs the log handler globally and creates a runtime.
func (r *Resolved) Apply(extra ...core.Option) *core.Runtime {
	bridgeerrors.SetHandler(r.LogHandler())
	return core.NewRuntime(append(r.Options(), extra...)...)
}

// normalizeVersion accepts versions with or without the leading "v" and
// returns the canonical semver form.
func normalizeVersion(version string) (string, error) {
	version = strings.TrimSpace(version)
	if version == "" {
		return core.ProtocolVersion, nil
	}
	if !strings.HasPrefix(version, "v") {
		version = "v" + version
	}
	if !semver.IsValid(version) {
		return "", fmt.Errorf("bridge.protocol_version %q is not a semantic version", version)
	}
	canonical := semver.Canonical(version)
	if semver.Major(canonical) != semver.Major(core.ProtocolVersion) {
		return "", fmt.Errorf("bridge.protocol_version %s is not supported (runtime speaks %s)", canonical, semver.Major(core.ProtocolVersion))
	}
	return canonical, nil
}

func optionalModulePath(dir string) string {
	data, err := os.ReadFile(filepath.Join(dir, "go.mod"))
	if err != nil {
		return ""
	}
	return modfile.ModulePath(data)
}

func defaultAppName(modulePath, dir string) string {
	base := filepath.Base(dir)
	if modulePath != "" {
		modName, _, ok := module.SplitPathVersion(modulePath)
		if ok {
			parts := strings.Split(modName, "/")
			base = parts[len(parts)-1]
		}
	}
	if base == "" || base == "." || base == string(filepath.Separator) {
		return "bridge_app"
	}
	return base
}
