package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/epaperdriver/gather-build/pkg/finder"
	"github.com/epaperdriver/gather-build/pkg/materialize"
)

// FileName is the optional config file looked up in the working directory
const FileName = "gather-build.toml"

// EnvPrefix prefixes environment overrides, e.g. GATHER_BUILD_OUTPUT=out
const EnvPrefix = "GATHER_BUILD_"

// Config holds all configuration for the application
type Config struct {
	Example    string   `koanf:"example"`
	Library    string   `koanf:"library"`
	Output     string   `koanf:"output"`
	Collision  string   `koanf:"collision"`
	Exclude    []string `koanf:"exclude"`
	Watch      bool     `koanf:"watch"`
	Check      bool     `koanf:"check"`
	Report     bool     `koanf:"report"`
	JSONLogs   bool     `koanf:"json"`
	Verbosity  string   `koanf:"verbosity"`
	VerboseCnt int      `koanf:"verbose"`
}

// Defaults returns the built-in configuration: the fixed directory names
// example, src and build relative to the working directory.
func Defaults() map[string]interface{} {
	return map[string]interface{}{
		"example":   "example",
		"library":   "src",
		"output":    "build",
		"collision": string(materialize.CollisionLibraryWins),
		"exclude":   []string{},
		"watch":     false,
		"check":     false,
		"report":    false,
		"json":      false,
		"verbosity": "",
		"verbose":   0,
	}
}

// NewFlagSet declares the command line flags. None of them is required.
func NewFlagSet(name string) *pflag.FlagSet {
	f := pflag.NewFlagSet(name, pflag.ContinueOnError)
	f.String("example", "example", "Directory holding one subdirectory per example")
	f.String("library", "src", "Directory holding the shared library files")
	f.String("output", "build", "Directory the build tree is written to")
	f.String("collision", string(materialize.CollisionLibraryWins), "What to do when an example file and a library file share an output name: library, example or error")
	f.StringSlice("exclude", nil, "Glob patterns of file names to leave out")
	f.Bool("watch", false, "Keep running and gather again when an input changes")
	f.Bool("check", false, "Check that quoted includes resolve inside each unit")
	f.Bool("report", false, "Print a summary of the gathered units")
	f.Bool("json", false, "Write logs as JSON")
	f.String("verbosity", "", "Log level: trace, debug, info, warn or error")
	f.CountP("verbose", "v", "Increase log verbosity (repeatable)")
	return f
}

// Load loads configuration from defaults, config file, environment variables, and flags.
// Priority: Flags > Env > Config File > Defaults
func Load(f *pflag.FlagSet) (*Config, error) {
	return load(f, FileName)
}

func load(f *pflag.FlagSet, path string) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(makeMapProvider(Defaults()), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file, only if present
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", path, err)
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	// 3. Environment variables, GATHER_BUILD_OUTPUT=out sets "output"
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags
	if f != nil {
		if err := k.Load(posflag.Provider(f, ".", k), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// Validate rejects settings the gatherer cannot run with
func (c *Config) Validate() error {
	for name, dir := range map[string]string{"example": c.Example, "library": c.Library, "output": c.Output} {
		if strings.TrimSpace(dir) == "" {
			return fmt.Errorf("%s directory must not be empty", name)
		}
	}
	if _, err := materialize.ParseCollisionPolicy(c.Collision); err != nil {
		return err
	}
	if _, err := finder.NewExcludeFilter(c.Exclude); err != nil {
		return err
	}
	return nil
}

// Helper to use map as a provider
type mapProvider struct {
	m map[string]interface{}
}

func makeMapProvider(m map[string]interface{}) *mapProvider {
	return &mapProvider{m: m}
}

func (p *mapProvider) Read() (map[string]interface{}, error) {
	return p.m, nil
}

func (p *mapProvider) ReadBytes() ([]byte, error) {
	return nil, fmt.Errorf("not implemented")
}
