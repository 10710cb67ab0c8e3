package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultBaseURL is the production Dooray API endpoint.
const DefaultBaseURL = "https://api.dooray.com"

const defaultTimeout = 30 * time.Second

// Config holds everything the server needs at startup. It is built once in
// main and passed by reference into every constructor; nothing mutates it
// after that.
type Config struct {
	APIToken         string        `yaml:"api_token"`
	BaseURL          string        `yaml:"base_url"`
	DefaultProjectID string        `yaml:"default_project_id"`
	Timeout          time.Duration `yaml:"timeout"`

	// HTTPAddr switches the MCP transport from stdio to SSE over HTTP
	// when non-empty, e.g. ":8080".
	HTTPAddr string `yaml:"http_addr"`

	// DownloadDir is where file-content actions persist downloaded
	// binaries. Defaults to a dooray-mcp directory under the OS temp dir.
	DownloadDir string `yaml:"download_dir"`

	// InlineFileContent returns downloaded bytes as base64 inside the
	// tool result instead of writing them to DownloadDir. Meant for
	// hosts that cannot reach this process's filesystem.
	InlineFileContent bool `yaml:"inline_file_content"`

	LogLevel string `yaml:"log_level"`
}

// FromEnv builds a Config from the process environment. When
// DOORAY_MCP_CONFIG names a YAML file it is loaded first and environment
// variables override it. A missing API token is an error: the server
// cannot make a single useful call without it.
func FromEnv() (*Config, error) {
	cfg := &Config{
		BaseURL:     DefaultBaseURL,
		Timeout:     defaultTimeout,
		DownloadDir: filepath.Join(os.TempDir(), "dooray-mcp"),
		LogLevel:    "info",
	}

	if path := os.Getenv("DOORAY_MCP_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	if v := os.Getenv("DOORAY_API_TOKEN"); v != "" {
		cfg.APIToken = v
	}
	if v := os.Getenv("DOORAY_BASE_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv("DOORAY_DEFAULT_PROJECT_ID"); v != "" {
		cfg.DefaultProjectID = v
	}
	if v := os.Getenv("DOORAY_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid DOORAY_TIMEOUT %q: %w", v, err)
		}
		cfg.Timeout = d
	}
	if v := os.Getenv("DOORAY_MCP_HTTP_ADDR"); v != "" {
		cfg.HTTPAddr = v
	}
	if v := os.Getenv("DOORAY_DOWNLOAD_DIR"); v != "" {
		cfg.DownloadDir = v
	}
	if v := os.Getenv("DOORAY_INLINE_FILES"); v == "true" || v == "1" {
		cfg.InlineFileContent = true
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}

	if cfg.APIToken == "" {
		return nil, fmt.Errorf("DOORAY_API_TOKEN environment variable is required")
	}

	return cfg, nil
}
