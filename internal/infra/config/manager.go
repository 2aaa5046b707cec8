package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/runoshun/git-qa/internal/domain"
	"github.com/runoshun/git-qa/internal/infra/cache"
)

// ScrubbedValue replaces secrets in shown configuration.
const ScrubbedValue = "*****"

// Template is written by Init.
const Template = `# git-qa configuration
repo = ""
include_labels = []

[log]
level = "info"

[auth.github]
user = ""
token = ""

[auth.jira]
email = ""
token = ""

# [repos.example]
# path = "/path/to/repo"
# global_config_source = "https://raw.githubusercontent.com/org/qa/main/config.toml"
# qa_statuses = ["TODO", "IN PROGRESS", "DONE"]
# ignored_labels = ["qa/skip"]
#
# [repos.example.teams."Agent Platform"]
# jira_project = "AP"
# jira_issue_type = "Task"
# jira_statuses = ["To Do", "In Progress", "Done"]
# github_team = "agent-platform"
# github_labels = ["team/agent-platform"]
`

// Manager manages the global configuration file.
type Manager struct {
	path string
}

// NewManager creates a new Manager for the file at path.
func NewManager(path string) *Manager {
	return &Manager{path: path}
}

// Path returns the location of the configuration file.
func (m *Manager) Path() string {
	return m.path
}

// Exists reports whether the configuration file exists.
func (m *Manager) Exists() bool {
	_, err := os.Stat(m.path)
	return err == nil
}

// Init writes the default template.
func (m *Manager) Init() error {
	if m.path == "" {
		return errors.New("config path not available")
	}
	if m.Exists() {
		return domain.ErrConfigExists
	}
	if err := os.MkdirAll(filepath.Dir(m.path), 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	return cache.WriteAtomic(m.path, []byte(Template))
}

// Show returns the file contents. Auth tokens are scrubbed unless all is set.
func (m *Manager) Show(all bool) (string, error) {
	data, err := os.ReadFile(m.path)
	if err != nil {
		return "", fmt.Errorf("read config: %w", err)
	}
	if all {
		return string(data), nil
	}

	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return "", fmt.Errorf("parse config: %w", err)
	}
	scrub(raw)
	out, err := toml.Marshal(raw)
	if err != nil {
		return "", fmt.Errorf("render config: %w", err)
	}
	return string(out), nil
}

// Set assigns a value to a dotted key and saves the file.
// Values are parsed as TOML when possible and stored as strings otherwise.
func (m *Manager) Set(key, value string) error {
	parts := strings.Split(key, ".")
	for _, p := range parts {
		if p == "" {
			return fmt.Errorf("%w: %q", domain.ErrInvalidConfigKey, key)
		}
	}

	raw := map[string]any{}
	data, err := os.ReadFile(m.path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return fmt.Errorf("read config: %w", err)
	default:
		if err := toml.Unmarshal(data, &raw); err != nil {
			return fmt.Errorf("parse config: %w", err)
		}
	}

	table := raw
	for _, p := range parts[:len(parts)-1] {
		next, ok := table[p]
		if !ok {
			child := map[string]any{}
			table[p] = child
			table = child
			continue
		}
		child, ok := next.(map[string]any)
		if !ok {
			return fmt.Errorf("%w: %q is not a table", domain.ErrInvalidConfigKey, p)
		}
		table = child
	}
	table[parts[len(parts)-1]] = parseValue(value)

	out, err := toml.Marshal(raw)
	if err != nil {
		return fmt.Errorf("render config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(m.path), 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	return cache.WriteAtomic(m.path, out)
}

func parseValue(value string) any {
	var doc struct {
		V any `toml:"v"`
	}
	if err := toml.Unmarshal([]byte("v = "+value), &doc); err != nil || doc.V == nil {
		return value
	}
	return doc.V
}

func scrub(raw map[string]any) {
	auth, ok := raw["auth"].(map[string]any)
	if !ok {
		return
	}
	for _, service := range []string{"github", "jira"} {
		section, ok := auth[service].(map[string]any)
		if !ok {
			continue
		}
		if _, ok := section["token"]; ok {
			section["token"] = ScrubbedValue
		}
	}
}
