// Package config loads the workspace manifest and runtime settings that
// configure the compilation core (module roots, cache directory, worker
// count, logging).
package config

import (
	"fmt"
	"runtime"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// StringSlice unmarshals from either a bare TOML string or a TOML array,
// so a manifest author can write a single search path without brackets.
type StringSlice []string

// UnmarshalTOML implements toml.Unmarshaler.
func (s *StringSlice) UnmarshalTOML(data interface{}) error {
	switch v := data.(type) {
	case string:
		*s = []string{v}
	case []interface{}:
		result := make([]string, len(v))
		for i, item := range v {
			str, ok := item.(string)
			if !ok {
				return fmt.Errorf("expected string in array, got %T", item)
			}
			result[i] = str
		}
		*s = result
	default:
		return fmt.Errorf("expected string or array for StringSlice, got %T", data)
	}
	return nil
}

// ModuleManifest is a single [[module]] entry in the workspace manifest,
// the fields the Module Manager (spec.md 4.1) consumes.
type ModuleManifest struct {
	Name            string      `toml:"moduleName"`
	SrcPath         string      `toml:"src_path"`
	PackageRequires []string    `toml:"package_requires"`
	Requires        []string    `toml:"requires"`
	MacroPaths      StringSlice `toml:"macro_paths"`
	TargetTriple    string      `toml:"target_triple"`
}

// Config is the full workspace manifest plus runtime overrides.
type Config struct {
	Modules     []ModuleManifest  `toml:"module"`
	CacheDir    string            `toml:"cache_dir"`
	WorkerCount int               `toml:"worker_count"`
	LogLevel    string            `toml:"log_level"`
	LogFile     string            `toml:"log_file"`
	CondCompile map[string]string `toml:"conditional_compilation"`
}

// DefaultWorkerCount implements the spec's W = max(1, (hw_threads-3)/2)
// formula.
func DefaultWorkerCount() int {
	n := (runtime.NumCPU() - 3) / 2
	if n < 1 {
		return 1
	}
	return n
}

// Default returns a configuration usable with no manifest present.
func Default() *Config {
	return &Config{
		CacheDir:    ".cache",
		WorkerCount: DefaultWorkerCount(),
		LogLevel:    "info",
		CondCompile: map[string]string{},
	}
}

// Load reads a TOML manifest from path, then layers viper-sourced
// environment overrides (CORELSP_WORKER_COUNT, CORELSP_CACHE_DIR,
// CORELSP_LOG_LEVEL) on top. No command-line flags are bound here.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, errors.Wrapf(err, "decoding manifest %s", path)
		}
	}

	v := viper.New()
	v.SetEnvPrefix("CORELSP")
	v.AutomaticEnv()
	v.SetDefault("worker_count", cfg.WorkerCount)
	v.SetDefault("cache_dir", cfg.CacheDir)
	v.SetDefault("log_level", cfg.LogLevel)

	if v.IsSet("worker_count") {
		cfg.WorkerCount = v.GetInt("worker_count")
	}
	if dir := v.GetString("cache_dir"); dir != "" {
		cfg.CacheDir = dir
	}
	if lvl := v.GetString("log_level"); lvl != "" {
		cfg.LogLevel = lvl
	}

	if cfg.WorkerCount < 1 {
		cfg.WorkerCount = DefaultWorkerCount()
	}
	return cfg, nil
}
