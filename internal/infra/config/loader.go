// Package config provides configuration loading functionality.
package config

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/runoshun/git-qa/internal/domain"
)

// Environment variables that override file locations.
const (
	EnvConfig     = "GIT_QA_CONFIG"
	EnvRepoConfig = "GIT_QA_REPO_CONFIG"
	EnvCache      = "GIT_QA_CACHE"
)

// Loader loads configuration from TOML files.
type Loader struct {
	globalPath     string // Path to the global config file
	repoConfigPath string // Fallback repo-local config file, used when a repo has no valid path
}

// NewLoader creates a new Loader honoring GIT_QA_CONFIG and GIT_QA_REPO_CONFIG.
func NewLoader() *Loader {
	globalPath := os.Getenv(EnvConfig)
	if globalPath == "" {
		globalPath = DefaultGlobalPath()
	}
	repoPath := os.Getenv(EnvRepoConfig)
	if repoPath == "" {
		if wd, err := os.Getwd(); err == nil {
			repoPath = domain.RepoConfigPath(wd)
		}
	}
	return NewLoaderWithPaths(globalPath, repoPath)
}

// NewLoaderWithPaths creates a new Loader with explicit file locations.
// This is useful for testing.
func NewLoaderWithPaths(globalPath, repoConfigPath string) *Loader {
	return &Loader{
		globalPath:     globalPath,
		repoConfigPath: repoConfigPath,
	}
}

// DefaultGlobalPath returns $XDG_CONFIG_HOME/git-qa/config.toml.
func DefaultGlobalPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(domain.GlobalConfigDir(configHome), domain.ConfigFileName)
}

// DefaultCacheDir returns $XDG_CACHE_HOME/git-qa.
func DefaultCacheDir() string {
	cacheHome := os.Getenv("XDG_CACHE_HOME")
	if cacheHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		cacheHome = filepath.Join(home, ".cache")
	}
	return filepath.Join(cacheHome, domain.AppName)
}

// ResolveCacheDir picks the cache directory.
// Precedence: flag > GIT_QA_CACHE > cache_dir > XDG default.
func ResolveCacheDir(flag string, cfg *domain.Config) string {
	if flag != "" {
		return flag
	}
	if env := os.Getenv(EnvCache); env != "" {
		return env
	}
	if cfg != nil && cfg.CacheDir != "" {
		return cfg.CacheDir
	}
	return DefaultCacheDir()
}

// GlobalPath returns the path of the global config file.
func (l *Loader) GlobalPath() string {
	return l.globalPath
}

// RepoConfigPath returns the fallback repo-local config file.
func (l *Loader) RepoConfigPath() string {
	return l.repoConfigPath
}

// Load returns the global configuration with every repository merged with its
// repo-local file. Keys from the global file take precedence.
// A missing global file yields an empty configuration.
func (l *Loader) Load() (*domain.Config, error) {
	cfg := &domain.Config{}
	if l.globalPath != "" {
		data, err := os.ReadFile(l.globalPath)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config: %w", err)
		default:
			warnings, err := decode(data, cfg)
			if err != nil {
				return nil, fmt.Errorf("parse %s: %w", l.globalPath, err)
			}
			cfg.Warnings = warnings
		}
	}

	names := make([]string, 0, len(cfg.Repos))
	for name := range cfg.Repos {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		repo := cfg.Repos[name]
		if repo == nil {
			repo = &domain.RepoConfig{}
			cfg.Repos[name] = repo
		}
		local, warnings, err := l.loadRepoFile(repo)
		if err != nil {
			return nil, err
		}
		for _, w := range warnings {
			cfg.Warnings = append(cfg.Warnings, fmt.Sprintf("repos.%s: %s", name, w))
		}
		if local != nil {
			fillRepo(repo, local)
		}
		source, err := DecodeSource(repo.GlobalConfigSource)
		if err != nil {
			return nil, fmt.Errorf("repos.%s.global_config_source: %w", name, err)
		}
		repo.GlobalConfigSource = source
	}

	return cfg, nil
}

// loadRepoFile reads <path>/.git-qa/config.toml, falling back to the loader's
// default repo file when the repository path is not a directory.
func (l *Loader) loadRepoFile(repo *domain.RepoConfig) (*domain.RepoConfig, []string, error) {
	path := l.repoConfigPath
	if repo.Path != "" {
		if info, err := os.Stat(repo.Path); err == nil && info.IsDir() {
			path = domain.RepoConfigPath(repo.Path)
		}
	}
	if path == "" {
		return nil, nil, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("read repo config: %w", err)
	}

	var local domain.RepoConfig
	warnings, err := decode(data, &local)
	if err != nil {
		return nil, nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &local, warnings, nil
}

// decode unmarshals TOML into v and reports unknown keys as warnings.
func decode(data []byte, v any) ([]string, error) {
	if err := toml.Unmarshal(data, v); err != nil {
		return nil, err
	}

	probe := reflect.New(reflect.TypeOf(v).Elem()).Interface()
	err := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields().Decode(probe)
	var strict *toml.StrictMissingError
	if !errors.As(err, &strict) {
		return nil, nil
	}
	warnings := make([]string, 0, len(strict.Errors))
	for _, e := range strict.Errors {
		warnings = append(warnings, "unknown key: "+strings.Join(e.Key(), "."))
	}
	slices.Sort(warnings)
	return warnings, nil
}

// fillRepo copies repo-local values into unset fields of base.
func fillRepo(base, local *domain.RepoConfig) {
	if base.Teams == nil {
		base.Teams = local.Teams
	}
	if base.QAStatuses == nil {
		base.QAStatuses = local.QAStatuses
	}
	if base.IgnoredLabels == nil {
		base.IgnoredLabels = local.IgnoredLabels
	}
	if base.GlobalConfigSource == "" {
		base.GlobalConfigSource = local.GlobalConfigSource
	}
}

// DecodeSource returns a global_config_source as a URL.
// Values not starting with "http" are base64 encoded URLs.
func DecodeSource(source string) (string, error) {
	if source == "" || strings.HasPrefix(source, "http") {
		return source, nil
	}
	decoded, err := base64.StdEncoding.DecodeString(source)
	if err != nil {
		return "", fmt.Errorf("decode base64: %w", err)
	}
	return string(decoded), nil
}
