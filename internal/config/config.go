// Package config loads blockpatch settings from, in increasing priority: built-in defaults, the nearest .blockpatch.json found by walking up from a start directory,
// and BLOCKPATCH_* environment variables. Command-line flags are layered on top by the caller.
//
// The JSON file uses nested objects for dotted keys:
//
//	{"color": "never", "diff": {"context": 5, "width": 120}, "parallel": 8, "log_file": "~/blockpatch.log"}
//
// Unknown keys are ignored. A value of the wrong type, a malformed file, or an out-of-range value is an error naming its source.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// FileName is the config file searched for by Load.
const FileName = ".blockpatch.json"

// Color modes.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Keys, as used in the JSON file and in error messages.
const (
	KeyColor       = "color"
	KeyDiffContext = "diff.context"
	KeyDiffWidth   = "diff.width"
	KeyParallel    = "parallel"
	KeyLogFile     = "log_file"
)

// EnvVars maps each key to the environment variable that overrides it.
var EnvVars = map[string]string{
	KeyColor:       "BLOCKPATCH_COLOR",
	KeyDiffContext: "BLOCKPATCH_CONTEXT",
	KeyDiffWidth:   "BLOCKPATCH_WIDTH",
	KeyParallel:    "BLOCKPATCH_PARALLEL",
	KeyLogFile:     "BLOCKPATCH_LOG_FILE",
}

// envOrder fixes the order env vars are applied so errors are deterministic.
var envOrder = []string{KeyColor, KeyDiffContext, KeyDiffWidth, KeyParallel, KeyLogFile}

// Config is the effective configuration.
type Config struct {
	Color       string // ColorAuto, ColorAlways, or ColorNever
	DiffContext int    // unchanged lines shown around each change
	DiffWidth   int    // max rendered line width; 0 means terminal width when known, else unlimited
	Parallel    int    // files applied at once
	LogFile     string // debug log path; "" disables logging

	File string // config file that was loaded, or "" if none was found
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Color:       ColorAuto,
		DiffContext: 3,
		DiffWidth:   0,
		Parallel:    4,
	}
}

// Load builds the effective configuration. startDir is where the upward search for FileName begins ("" means the working directory). getenv looks up environment
// variables; nil means os.Getenv.
func Load(startDir string, getenv func(string) string) (Config, error) {
	if getenv == nil {
		getenv = os.Getenv
	}
	cfg := Defaults()

	path, err := findNearest(FileName, startDir)
	if err != nil {
		return cfg, err
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := cfg.applyJSON(path, data); err != nil {
			return cfg, err
		}
		cfg.File = path
	}

	if err := cfg.applyEnv(getenv); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		if cfg.File != "" {
			return cfg, fmt.Errorf("config: %s: %w", cfg.File, err)
		}
		return cfg, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	var errs []error
	switch c.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		errs = append(errs, fmt.Errorf("%s: must be one of %q, %q, %q; got %q", KeyColor, ColorAuto, ColorAlways, ColorNever, c.Color))
	}
	if c.DiffContext < 0 {
		errs = append(errs, fmt.Errorf("%s: must be >= 0; got %d", KeyDiffContext, c.DiffContext))
	}
	if c.DiffWidth < 0 {
		errs = append(errs, fmt.Errorf("%s: must be >= 0; got %d", KeyDiffWidth, c.DiffWidth))
	}
	if c.Parallel < 1 {
		errs = append(errs, fmt.Errorf("%s: must be >= 1; got %d", KeyParallel, c.Parallel))
	}
	return errors.Join(errs...)
}

func (c *Config) applyJSON(path string, data []byte) error {
	if strings.TrimSpace(string(data)) == "" {
		return nil
	}
	if !gjson.ValidBytes(data) {
		return fmt.Errorf("config: %s: invalid JSON", path)
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return fmt.Errorf("config: %s: top level must be an object", path)
	}

	typeErr := func(key, want string, got gjson.Result) error {
		return fmt.Errorf("config: %s: %s: want %s, got %s", path, key, want, got.Type)
	}
	str := func(key string, dst *string) error {
		r := root.Get(key)
		if !r.Exists() {
			return nil
		}
		if r.Type != gjson.String {
			return typeErr(key, "string", r)
		}
		*dst = r.Str
		return nil
	}
	integer := func(key string, dst *int) error {
		r := root.Get(key)
		if !r.Exists() {
			return nil
		}
		if r.Type != gjson.Number || r.Num != float64(int(r.Num)) {
			return typeErr(key, "integer", r)
		}
		*dst = int(r.Num)
		return nil
	}

	var logFile string
	for _, err := range []error{
		str(KeyColor, &c.Color),
		integer(KeyDiffContext, &c.DiffContext),
		integer(KeyDiffWidth, &c.DiffWidth),
		integer(KeyParallel, &c.Parallel),
		str(KeyLogFile, &logFile),
	} {
		if err != nil {
			return err
		}
	}
	c.Color = strings.ToLower(c.Color)
	if logFile != "" {
		// Relative log paths are relative to the config file.
		logFile = ExpandPath(logFile)
		if !filepath.IsAbs(logFile) {
			logFile = filepath.Join(filepath.Dir(path), logFile)
		}
		c.LogFile = logFile
	}
	return nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	for _, key := range envOrder {
		name := EnvVars[key]
		v := strings.TrimSpace(getenv(name))
		if v == "" {
			continue
		}
		switch key {
		case KeyColor:
			c.Color = strings.ToLower(v)
		case KeyLogFile:
			c.LogFile = ExpandPath(v)
		default:
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("config: env %s: want integer, got %q", name, v)
			}
			switch key {
			case KeyDiffContext:
				c.DiffContext = n
			case KeyDiffWidth:
				c.DiffWidth = n
			case KeyParallel:
				c.Parallel = n
			}
		}
	}
	return nil
}

// findNearest walks up from start looking for a non-empty file named name. It returns "" if none is found.
func findNearest(name, start string) (string, error) {
	if start == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("config: %w", err)
		}
		start = wd
	}
	start, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("config: %w", err)
	}
	if fi, err := os.Stat(start); err == nil && !fi.IsDir() {
		start = filepath.Dir(start)
	}

	for dir := start; ; dir = filepath.Dir(dir) {
		candidate := filepath.Join(dir, name)
		if fi, err := os.Stat(candidate); err == nil && !fi.IsDir() && fi.Size() > 0 {
			return candidate, nil
		}
		if parent := filepath.Dir(dir); parent == dir {
			return "", nil
		}
	}
}
