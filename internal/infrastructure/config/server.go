package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/felixgeelhaar/intakerouter/pkg/storage"
	"gopkg.in/yaml.v3"
)

const serverConfigFile = "server.yaml"

// JiraConfig locates the Jira Cloud project intakes are exported to.
type JiraConfig struct {
	BaseURL    string `yaml:"base_url"`
	Email      string `yaml:"email"`
	APIToken   string `yaml:"api_token,omitempty"`
	ProjectKey string `yaml:"project_key"`
}

// Enabled reports whether enough is configured to talk to Jira.
func (j JiraConfig) Enabled() bool {
	return j.BaseURL != "" && j.Email != "" && j.APIToken != "" && j.ProjectKey != ""
}

// ServerConfig holds host settings kept outside the routing policy.
type ServerConfig struct {
	HTTPAddr    string     `yaml:"http_addr"`
	DatabaseURL string     `yaml:"database_url,omitempty"`
	Jira        JiraConfig `yaml:"jira"`
}

const defaultHTTPAddr = ":8080"

// LoadServerConfig reads .intake/server.yaml and applies INTAKE_* environment
// overrides. A missing file is not an error.
func LoadServerConfig(root string) (*ServerConfig, error) {
	cfg := &ServerConfig{HTTPAddr: defaultHTTPAddr}

	repo := storage.NewFilesystemRepository(root)
	path, err := repo.ResolvePath(serverConfigFile)
	if err != nil {
		return nil, err
	}

	// #nosec G304 -- path is resolved inside the workspace
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal server config: %w", err)
		}
	case !os.IsNotExist(err):
		return nil, fmt.Errorf("failed to read server config: %w", err)
	}

	applyEnv(cfg)
	return cfg, nil
}

// SaveServerConfig writes cfg without the Jira token; tokens belong in the
// environment.
func SaveServerConfig(root string, cfg *ServerConfig) error {
	if cfg == nil {
		return fmt.Errorf("server config is nil")
	}

	repo := storage.NewFilesystemRepository(root)
	path, err := repo.ResolvePath(serverConfigFile)
	if err != nil {
		return err
	}

	out := *cfg
	out.Jira.APIToken = ""
	data, err := yaml.Marshal(&out)
	if err != nil {
		return fmt.Errorf("failed to marshal server config: %w", err)
	}
	return os.WriteFile(path, data, 0600)
}

func applyEnv(cfg *ServerConfig) {
	set := func(dst *string, key string) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*dst = v
		}
	}
	set(&cfg.HTTPAddr, "INTAKE_HTTP_ADDR")
	set(&cfg.DatabaseURL, "INTAKE_DATABASE_URL")
	set(&cfg.Jira.BaseURL, "INTAKE_JIRA_BASE_URL")
	set(&cfg.Jira.Email, "INTAKE_JIRA_EMAIL")
	set(&cfg.Jira.APIToken, "INTAKE_JIRA_API_TOKEN")
	set(&cfg.Jira.ProjectKey, "INTAKE_JIRA_PROJECT")
	cfg.Jira.BaseURL = strings.TrimRight(cfg.Jira.BaseURL, "/")
}
