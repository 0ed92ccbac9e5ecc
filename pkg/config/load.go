// Package config handles configuration loading, validation, and merging for
// updatecheck. Configuration is YAML with optional inheritance (extends)
// from the built-in defaults or other files.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ajxudir/updatecheck/pkg/verbose"
)

// LocalConfigName is the config file looked up in the working directory.
const LocalConfigName = ".updatecheck.yml"

// LoadConfig loads configuration from the specified path or defaults.
//
// If configPath is provided, it loads that specific config file.
// Otherwise, it looks for .updatecheck.yml in the working directory.
// If no config is found, it returns the built-in default configuration.
// The result is validated before it is returned.
//
// Parameters:
//   - configPath: path to the config file, or empty to use defaults
//   - workDir: working directory for the configuration
//
// Returns:
//   - *Config: the loaded and merged configuration
//   - error: any error encountered during loading or validation
func LoadConfig(configPath, workDir string) (*Config, error) {
	var cfg *Config

	if configPath != "" {
		verbose.Infof("Loading config from: %s", configPath)
		loaded, err := loadRootConfig(configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
		verbose.ConfigLoaded(configPath)
	} else {
		localConfig := filepath.Join(workDir, LocalConfigName)
		if _, err := os.Stat(localConfig); err == nil {
			verbose.Infof("Found local config: %s", localConfig)
			loaded, err := loadRootConfig(localConfig)
			if err != nil {
				return nil, err
			}
			cfg = loaded
			verbose.ConfigLoaded(localConfig)
		}

		if cfg == nil {
			verbose.Info("Using built-in default configuration")
			cfg = loadDefaultConfig()
			cfg.SetRootConfig(true)
			verbose.ConfigLoaded("")
		}
	}

	if workDir != "" {
		cfg.WorkingDir = workDir
	} else if cfg.WorkingDir == "" {
		cfg.WorkingDir = "."
	}

	result := cfg.Validate()
	if result.HasErrors() {
		return nil, result.Err()
	}
	for _, w := range result.Warnings {
		verbose.Printf("Config warning: %s", w)
	}

	return cfg, nil
}

// loadRootConfig loads a user config file and resolves its extends chain
// using its own security settings.
func loadRootConfig(path string) (*Config, error) {
	loaded, err := loadConfigFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	loaded.SetRootConfig(true)

	cfg, err := processExtendsSecure(loaded, filepath.Dir(path), loaded)
	if err != nil {
		return nil, fmt.Errorf("failed to process extends: %w", err)
	}
	return cfg, nil
}

// loadConfigFileWithLimit loads a config file with a configurable size limit.
//
// Relative registry and license paths are resolved against the directory of
// the file, so that inherited configs keep pointing at their own fixtures.
//
// Parameters:
//   - path: path to the config file
//   - maxSize: maximum allowed file size in bytes
//
// Returns:
//   - *Config: the loaded configuration
//   - error: error if file is too large, not found, or has invalid YAML
func loadConfigFileWithLimit(path string, maxSize int64) (*Config, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.Size() > maxSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d bytes)\n\n"+
			"💡 To increase this limit, add to your root config:\n"+
			"   security:\n"+
			"     max_config_file_size: %d  # or larger value in bytes",
			info.Size(), maxSize, info.Size()*2)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg, err := loadConfigData(data)
	if err != nil {
		return nil, err
	}
	cfg.anchorPaths(filepath.Dir(path))
	return cfg, nil
}

// loadConfigFile loads a config file with the default size limit.
func loadConfigFile(path string) (*Config, error) {
	return loadConfigFileWithLimit(path, DefaultMaxConfigFileSize)
}

// loadConfigData parses YAML configuration data.
//
// Parameters:
//   - data: YAML configuration data as bytes
//
// Returns:
//   - *Config: the parsed configuration
//   - error: error if YAML is invalid or malformed
func loadConfigData(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("invalid YAML: %w", err)
	}
	return &cfg, nil
}

// anchorPaths makes relative file paths absolute against dir.
func (c *Config) anchorPaths(dir string) {
	anchor := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(dir, p)
	}
	c.Registry.Path = anchor(c.Registry.Path)
	c.Licenses = anchor(c.Licenses)
}

// LoadConfigFileStrict loads a config file and validates for unknown fields.
//
// This is more strict than LoadConfig: it returns an error if the config
// contains unknown fields or fails validation. Useful for catching typos
// early.
//
// Parameters:
//   - path: path to the config file
//
// Returns:
//   - *Config: the loaded configuration
//   - error: error if file has unknown fields, validation errors, or invalid YAML
func LoadConfigFileStrict(path string) (*Config, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.Size() > DefaultMaxConfigFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d bytes)", info.Size(), DefaultMaxConfigFileSize)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	result := ValidateConfigFile(data)
	if result.HasErrors() {
		return nil, result.Err()
	}

	cfg, err := loadConfigData(data)
	if err != nil {
		return nil, err
	}
	cfg.anchorPaths(filepath.Dir(path))
	return cfg, nil
}

// processExtendsSecure processes extends with security policy enforcement from root config.
//
// Parameters:
//   - cfg: the configuration to process
//   - baseDir: base directory for resolving relative paths
//   - rootCfg: the root configuration containing security settings
//
// Returns:
//   - *Config: the merged configuration after processing extends
//   - error: error if security policies are violated or extends chain is invalid
func processExtendsSecure(cfg *Config, baseDir string, rootCfg *Config) (*Config, error) {
	return processExtendsWithStackSecure(cfg, baseDir, make(map[string]bool), rootCfg)
}

// validateExtendPath checks if an extend path is allowed based on security settings.
//
// Path traversal (..) and absolute paths are blocked unless the root config
// allows them.
//
// Parameters:
//   - extend: the extend path to validate
//   - rootCfg: the root configuration containing security settings
//
// Returns:
//   - error: error if path violates security policy, nil if allowed
func validateExtendPath(extend string, rootCfg *Config) error {
	if strings.Contains(extend, "..") && !rootCfg.AllowsPathTraversal() {
		return fmt.Errorf("path traversal not allowed in extends: '%s' - "+
			"to allow, add security.allow_path_traversal: true to your root config",
			extend)
	}
	if filepath.IsAbs(extend) && !rootCfg.AllowsAbsolutePaths() {
		return fmt.Errorf("absolute paths not allowed in extends: '%s' - "+
			"to allow, add security.allow_absolute_paths: true to your root config",
			extend)
	}
	return nil
}

// processExtendsWithStackSecure processes extends with cycle detection and security enforcement.
//
// Extends are merged in order, then the config itself is merged on top. The
// name "default" refers to the built-in configuration.
//
// Parameters:
//   - cfg: the configuration to process
//   - baseDir: base directory for resolving relative paths
//   - stack: configs currently being processed, for cycle detection
//   - rootCfg: the root configuration containing security settings
//
// Returns:
//   - *Config: the merged configuration after processing all extends
//   - error: error if cycle detected, security policy violated, or file cannot be loaded
func processExtendsWithStackSecure(cfg *Config, baseDir string, stack map[string]bool, rootCfg *Config) (*Config, error) {
	if len(cfg.Extends) == 0 {
		return cfg, nil
	}

	base := &Config{}
	maxFileSize := rootCfg.GetMaxConfigFileSize()

	for _, extend := range cfg.Extends {
		var (
			extendCfg *Config
			extendKey string
		)

		if extend == "default" {
			extendKey = "__default__"
			if stack[extendKey] {
				return nil, fmt.Errorf("cyclic extends detected at %s", extend)
			}
			stack[extendKey] = true
			extendCfg = loadDefaultConfig()
		} else {
			if err := validateExtendPath(extend, rootCfg); err != nil {
				return nil, err
			}

			extendPath := extend
			if !filepath.IsAbs(extendPath) {
				extendPath = filepath.Join(baseDir, extend)
			}

			absPath, err := filepath.Abs(extendPath)
			if err != nil {
				return nil, fmt.Errorf("failed to resolve extend path '%s': %w", extend, err)
			}
			if _, err := os.Stat(absPath); err != nil {
				return nil, fmt.Errorf("failed to resolve extend '%s': %w", extend, err)
			}

			extendKey = absPath
			if stack[extendKey] {
				return nil, fmt.Errorf("cyclic extends detected at %s", extendPath)
			}
			stack[extendKey] = true

			loaded, err := loadConfigFileWithLimit(extendPath, maxFileSize)
			if err != nil {
				return nil, fmt.Errorf("failed to load extend '%s': %w", extend, err)
			}

			loaded, err = processExtendsWithStackSecure(loaded, filepath.Dir(extendPath), stack, rootCfg)
			if err != nil {
				return nil, err
			}
			extendCfg = loaded
		}

		base = mergeConfigs(base, extendCfg)
		verbose.Printf("Extended from %q: %d breakpoint packages, %d plugins", extend, len(extendCfg.Breakpoints), len(extendCfg.Plugins))
		delete(stack, extendKey)
	}

	result := mergeConfigs(base, cfg)
	result.Extends = nil

	return result, nil
}
