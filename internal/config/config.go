// Package config loads todoflux settings.
//
// Precedence, lowest first:
//  1. Defaults declared in the embedded CUE schema
//  2. An optional CUE config file, validated against that schema
//  3. TODOFLUX_* environment variables
//  4. Command-line flags (applied by the caller)
package config

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
	"github.com/caarlos0/env/v11"
)

//go:embed schema.cue
var schemaCUE string

// Config holds resolved settings.
type Config struct {
	Database string   `json:"database,omitempty" env:"TODOFLUX_DB"`
	LogLevel string   `json:"log_level" env:"TODOFLUX_LOG_LEVEL"`
	Format   string   `json:"format" env:"TODOFLUX_FORMAT"`
	Seed     []string `json:"seed,omitempty"`
}

// Error is a configuration error with an optional source position.
type Error struct {
	Source  string
	Message string
	Pos     token.Pos
}

func (e *Error) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Source, e.Message)
}

// Default returns the schema defaults, ignoring files and environment.
func Default() Config {
	_, def, err := compileSchema()
	if err != nil {
		panic(fmt.Sprintf("config: invalid embedded schema: %v", err))
	}
	var cfg Config
	if err := validate(def, "schema.cue", &cfg); err != nil {
		panic(fmt.Sprintf("config: invalid embedded schema: %v", err))
	}
	return cfg
}

// Load resolves configuration from the schema defaults, the CUE file at
// path (skipped when path is empty) and the environment.
func Load(path string) (Config, error) {
	ctx, def, err := compileSchema()
	if err != nil {
		return Config{}, err
	}

	v := def
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		file := ctx.CompileBytes(data, cue.Filename(path))
		if err := file.Err(); err != nil {
			return Config{}, cueError(path, err)
		}
		v = def.Unify(file)
	}

	source := path
	if source == "" {
		source = "schema.cue"
	}
	var cfg Config
	if err := validate(v, source, &cfg); err != nil {
		return Config{}, err
	}

	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	// Environment values go through the same schema as the file.
	if err := validate(def.Unify(ctx.Encode(cfg)), "environment", &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func compileSchema() (*cue.Context, cue.Value, error) {
	ctx := cuecontext.New()
	def := ctx.CompileString(schemaCUE, cue.Filename("schema.cue")).
		LookupPath(cue.ParsePath("#Config"))
	if err := def.Err(); err != nil {
		return nil, cue.Value{}, fmt.Errorf("compile schema: %w", err)
	}
	return ctx, def, nil
}

func validate(v cue.Value, source string, cfg *Config) error {
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return cueError(source, err)
	}
	if err := v.Decode(cfg); err != nil {
		return cueError(source, err)
	}
	return nil
}

// cueError keeps the first CUE error and its position.
func cueError(source string, err error) error {
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return &Error{Source: source, Message: err.Error()}
	}

	first := errs[0]
	cfgErr := &Error{Source: source, Message: first.Error()}
	if positions := errors.Positions(first); len(positions) > 0 {
		cfgErr.Pos = positions[0]
	}
	return cfgErr
}

// Level returns the slog level for LogLevel.
func (c Config) Level() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
