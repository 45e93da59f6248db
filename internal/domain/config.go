package domain

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config represents the server configuration.
// Values come from an optional YAML file with environment variables layered on
// top; the environment wins per field.
type Config struct {
	Transport TransportConfig `yaml:"transport"`
	Backends  BackendsConfig  `yaml:"backends"`
	LogLevel  string          `yaml:"log_level,omitempty"`
}

// TransportConfig defines transport settings.
// Specifies whether to use stdio or HTTP transport.
type TransportConfig struct {
	Type string     `yaml:"type"` // "stdio" or "http"
	HTTP HTTPConfig `yaml:"http,omitempty"`
}

// HTTPConfig defines HTTP transport settings.
// Only used when transport type is "http".
type HTTPConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// BackendsConfig holds the optional Atlassian backends.
// Each backend is optional - only fully configured backends expose tools.
type BackendsConfig struct {
	Confluence *BackendConfig `yaml:"confluence,omitempty"`
	Jira       *BackendConfig `yaml:"jira,omitempty"`
}

// BackendConfig defines configuration for a single Atlassian backend.
// All three fields are required for the backend to be considered configured.
type BackendConfig struct {
	BaseURL  string `yaml:"base_url"`
	Username string `yaml:"username"`
	APIToken string `yaml:"api_token"`
}

// Environment variable names recognized by the configuration loader.
const (
	EnvConfluenceURL      = "CONFLUENCE_URL"
	EnvConfluenceUsername = "CONFLUENCE_USERNAME"
	EnvConfluenceAPIToken = "CONFLUENCE_API_TOKEN"
	EnvJiraURL            = "JIRA_URL"
	EnvJiraUsername       = "JIRA_USERNAME"
	EnvJiraAPIToken       = "JIRA_API_TOKEN"
	EnvLogLevel           = "LOG_LEVEL"
)

// LoadConfig builds the configuration from an optional YAML file and the
// environment. An empty path means environment-only. Partially configured
// backends are dropped; the returned warnings describe each drop so the
// caller can log them. Zero configured backends is valid.
func LoadConfig(path string) (*Config, []string, error) {
	config := &Config{}

	// Read the optional file
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, nil, fmt.Errorf("configuration file not found: %s", path)
			}
			return nil, nil, fmt.Errorf("failed to read configuration file: %w", err)
		}
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, nil, fmt.Errorf("invalid YAML syntax in configuration file: %w", err)
		}
	}

	// Overlay environment variables and fill defaults
	config.applyEnvironment()
	config.applyDefaults()

	// Drop incomplete backends before validation
	warnings := config.normalizeBackends()

	// Validate the merged configuration
	if err := config.Validate(); err != nil {
		return nil, nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, warnings, nil
}

// applyEnvironment overlays environment variables onto the configuration.
// Each variable overrides only its own field.
func (c *Config) applyEnvironment() {
	c.Backends.Confluence = overlayBackend(c.Backends.Confluence,
		EnvConfluenceURL, EnvConfluenceUsername, EnvConfluenceAPIToken)
	c.Backends.Jira = overlayBackend(c.Backends.Jira,
		EnvJiraURL, EnvJiraUsername, EnvJiraAPIToken)

	if level := os.Getenv(EnvLogLevel); level != "" {
		c.LogLevel = level
	}
}

// overlayBackend applies the three backend environment variables on top of an
// existing (possibly nil) backend configuration.
func overlayBackend(bc *BackendConfig, urlVar, userVar, tokenVar string) *BackendConfig {
	baseURL := os.Getenv(urlVar)
	username := os.Getenv(userVar)
	token := os.Getenv(tokenVar)

	if baseURL == "" && username == "" && token == "" {
		return bc
	}

	if bc == nil {
		bc = &BackendConfig{}
	}
	if baseURL != "" {
		bc.BaseURL = baseURL
	}
	if username != "" {
		bc.Username = username
	}
	if token != "" {
		bc.APIToken = token
	}
	return bc
}

// applyDefaults fills in defaults for fields that remain unset.
func (c *Config) applyDefaults() {
	if c.Transport.Type == "" {
		c.Transport.Type = "stdio"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// normalizeBackends drops backends that are only partially configured and
// returns a warning for each. A backend missing any of base URL, username, or
// API token cannot authenticate, so its tools are never advertised.
func (c *Config) normalizeBackends() []string {
	var warnings []string

	if c.Backends.Confluence != nil && !c.Backends.Confluence.complete() {
		warnings = append(warnings, backendWarning("Confluence", c.Backends.Confluence))
		c.Backends.Confluence = nil
	}

	if c.Backends.Jira != nil && !c.Backends.Jira.complete() {
		warnings = append(warnings, backendWarning("Jira", c.Backends.Jira))
		c.Backends.Jira = nil
	}

	return warnings
}

// complete reports whether all required backend fields are present.
func (bc *BackendConfig) complete() bool {
	return bc.BaseURL != "" && bc.Username != "" && bc.APIToken != ""
}

// backendWarning describes which fields a partial backend is missing.
func backendWarning(name string, bc *BackendConfig) string {
	var missing []string
	if bc.BaseURL == "" {
		missing = append(missing, "base URL")
	}
	if bc.Username == "" {
		missing = append(missing, "username")
	}
	if bc.APIToken == "" {
		missing = append(missing, "API token")
	}
	return fmt.Sprintf("%s backend is partially configured (missing %s); ignoring it",
		name, strings.Join(missing, ", "))
}

// Validate checks the configuration for completeness and correctness.
// Returns an error describing all validation failures.
func (c *Config) Validate() error {
	var errors []string

	// Validate transport configuration
	if err := c.validateTransport(); err != nil {
		errors = append(errors, err.Error())
	}

	// Validate the remaining (complete) backends
	if c.Backends.Confluence != nil {
		if err := c.Backends.Confluence.Validate("Confluence"); err != nil {
			errors = append(errors, err.Error())
		}
	}
	if c.Backends.Jira != nil {
		if err := c.Backends.Jira.Validate("Jira"); err != nil {
			errors = append(errors, err.Error())
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("validation errors: %s", strings.Join(errors, "; "))
	}

	return nil
}

// validateTransport validates the transport configuration.
func (c *Config) validateTransport() error {
	var errors []string

	// Check transport type is valid
	if c.Transport.Type != "stdio" && c.Transport.Type != "http" {
		errors = append(errors, fmt.Sprintf("invalid transport type '%s': must be 'stdio' or 'http'", c.Transport.Type))
	}

	// If HTTP transport, validate HTTP configuration
	if c.Transport.Type == "http" {
		if c.Transport.HTTP.Host == "" {
			errors = append(errors, "HTTP host is required when transport type is 'http'")
		}
		if c.Transport.HTTP.Port <= 0 || c.Transport.HTTP.Port > 65535 {
			errors = append(errors, fmt.Sprintf("invalid HTTP port %d: must be between 1 and 65535", c.Transport.HTTP.Port))
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("%s", strings.Join(errors, "; "))
	}

	return nil
}

// Validate validates a single backend configuration.
func (bc *BackendConfig) Validate(backendName string) error {
	var errors []string

	// Check base URL format
	parsedURL, err := url.Parse(bc.BaseURL)
	if err != nil {
		errors = append(errors, fmt.Sprintf("%s base URL is invalid: %v", backendName, err))
	} else if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		errors = append(errors, fmt.Sprintf("%s base URL must use http or https scheme", backendName))
	} else if parsedURL.Host == "" {
		errors = append(errors, fmt.Sprintf("%s base URL must include a host", backendName))
	}

	if len(errors) > 0 {
		return fmt.Errorf("%s", strings.Join(errors, "; "))
	}

	return nil
}
