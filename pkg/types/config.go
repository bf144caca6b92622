package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "research-assistant/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// SourceConfig holds settings for the paper source.
type SourceConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// BaseURL is the arXiv API query endpoint.
	BaseURL string `json:"base_url" yaml:"base_url" mapstructure:"base_url"`

	// PageSize is the number of entries requested per page (default 100).
	PageSize int `json:"page_size" yaml:"page_size" mapstructure:"page_size"`
}

// ModelProvider identifies the text-generation backend.
type ModelProvider string

const (
	ProviderOllama ModelProvider = "ollama"
	ProviderOpenAI ModelProvider = "openai"
)

// ModelConfig holds settings for the analysis stage's model backend.
type ModelConfig struct {
	// Provider selects the backend: ollama or openai.
	Provider ModelProvider `json:"provider" yaml:"provider" mapstructure:"provider"`

	// Name is the model identifier (e.g. "openchat").
	Name string `json:"name" yaml:"name" mapstructure:"name"`

	// ServerURL overrides the backend endpoint. For ollama this is the server
	// address; for openai it is an OpenAI-compatible base URL.
	ServerURL string `json:"server_url,omitempty" yaml:"server_url,omitempty" mapstructure:"server_url"`

	// Temperature is the sampling temperature. Zero leaves the backend default.
	Temperature float64 `json:"temperature" yaml:"temperature" mapstructure:"temperature"`

	// Timeout bounds a single model call. Zero means no timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// MemoSize is the capacity of the prompt memo (default 100, negative disables).
	MemoSize int `json:"memo_size" yaml:"memo_size" mapstructure:"memo_size"`
}

// StoreConfig holds settings for the paper store.
type StoreConfig struct {
	// Path is the SQLite database file.
	Path string `json:"path" yaml:"path" mapstructure:"path"`

	// MaxResults is the default query limit (default 10).
	MaxResults int `json:"max_results" yaml:"max_results" mapstructure:"max_results"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	// Level is the minimum log level (debug, info, warn, error).
	Level string `json:"level" yaml:"level" mapstructure:"level"`

	// Format is json or console.
	Format string `json:"format" yaml:"format" mapstructure:"format"`
}

// ServerConfig holds settings for the HTTP API.
type ServerConfig struct {
	// Address is the listen address (e.g. ":8080").
	Address string `json:"address" yaml:"address" mapstructure:"address"`

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration `json:"shutdown_timeout" yaml:"shutdown_timeout" mapstructure:"shutdown_timeout"`
}

// Config groups all stage configurations.
type Config struct {
	Source SourceConfig `json:"source" yaml:"source" mapstructure:"source"`
	Model  ModelConfig  `json:"model" yaml:"model" mapstructure:"model"`
	Store  StoreConfig  `json:"store" yaml:"store" mapstructure:"store"`
	Log    LogConfig    `json:"log" yaml:"log" mapstructure:"log"`
	Server ServerConfig `json:"server" yaml:"server" mapstructure:"server"`
}
