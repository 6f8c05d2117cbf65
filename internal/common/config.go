package common

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/ternarybob/soundbite/internal/interfaces"
)

// Config represents the application configuration
type Config struct {
	Environment string         `toml:"environment"` // "development" or "production"
	Server      ServerConfig   `toml:"server"`
	Storage     StorageConfig  `toml:"storage"`
	Logging     LoggingConfig  `toml:"logging"`
	Variables   KeysDirConfig  `toml:"variables"` // Variables directory configuration (./variables.toml) for key/value pairs
	Vision      VisionConfig   `toml:"vision"`
	Gemini      GeminiConfig   `toml:"gemini"`
	Claude      ClaudeConfig   `toml:"claude"`
	Weaviate    WeaviateConfig `toml:"weaviate"`
	Search      SearchConfig   `toml:"search"`
	Upload      UploadConfig   `toml:"upload"`
	Audit       AuditConfig    `toml:"audit"`
}

type ServerConfig struct {
	Port int    `toml:"port"`
	Host string `toml:"host"`
}

type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path"`             // Database directory path
	ResetOnStartup bool   `toml:"reset_on_startup"` // Delete database on startup for clean test runs
}

type LoggingConfig struct {
	Level      string   `toml:"level"`       // "debug", "info", "warn", "error"
	Output     []string `toml:"output"`      // "stdout", "file"
	TimeFormat string   `toml:"time_format"` // Time format for logs (default: "15:04:05")
}

// KeysDirConfig contains configuration for key/value file loading (API keys and secrets)
type KeysDirConfig struct {
	Dir      string   `toml:"dir"`       // Directory containing variables.toml
	EnvFiles []string `toml:"env_files"` // Dotenv files loaded into the KV store, later files win
}

// VisionProvider selects the vision-language model used to describe images
type VisionProvider string

const (
	// VisionProviderGemini uses Google Gemini API
	VisionProviderGemini VisionProvider = "gemini"
	// VisionProviderClaude uses Anthropic Claude API
	VisionProviderClaude VisionProvider = "claude"
)

// VisionConfig contains configuration for the image description step
type VisionConfig struct {
	Provider VisionProvider `toml:"provider"` // "gemini" or "claude" (default: "gemini")
	Prompt   string         `toml:"prompt"`   // Override for the fixed sound-association prompt (empty = built-in)
}

// GeminiConfig contains Google Gemini API configuration
type GeminiConfig struct {
	APIKey      string  `toml:"api_key"`     // Google Gemini API key
	Model       string  `toml:"model"`       // Vision-capable model (default: "gemini-2.5-flash")
	MaxTokens   int     `toml:"max_tokens"`  // Maximum output tokens (default: 500)
	Timeout     string  `toml:"timeout"`     // Operation timeout as duration string (default: "60s")
	RateLimit   string  `toml:"rate_limit"`  // Optional minimum spacing between requests, e.g. "4s" for a 15 RPM key (default: "" = unpaced)
	Temperature float32 `toml:"temperature"` // Generation temperature (default: 0.7)
}

// ClaudeConfig contains Anthropic Claude API configuration
type ClaudeConfig struct {
	APIKey      string  `toml:"api_key"`     // Anthropic API key
	Model       string  `toml:"model"`       // Vision-capable model (default: "claude-sonnet-4-20250514")
	MaxTokens   int     `toml:"max_tokens"`  // Maximum output tokens (default: 500)
	Timeout     string  `toml:"timeout"`     // Operation timeout as duration string (default: "60s")
	RateLimit   string  `toml:"rate_limit"`  // Optional minimum spacing between requests (default: "" = unpaced)
	Temperature float32 `toml:"temperature"` // Generation temperature (default: 0.7)
}

// WeaviateConfig contains the vector database connection settings
type WeaviateConfig struct {
	URL              string `toml:"url"`                // e.g. "http://localhost:8080" or "https://cluster.weaviate.network"
	APIKey           string `toml:"api_key"`            // Optional Weaviate API key
	VectorizerAPIKey string `toml:"vectorizer_api_key"` // Sent as X-OpenAI-Api-Key for the text2vec-openai module
	ClassName        string `toml:"class_name"`         // Class holding sound bites (default: "SoundBite")
	Timeout          string `toml:"timeout"`            // Client timeout (default: "30s")
}

// SearchConfig contains defaults for the sound search pipeline
type SearchConfig struct {
	DefaultLimit     int     `toml:"default_limit"`     // Raw candidates requested when the caller omits limit (default: 10)
	DefaultThreshold float64 `toml:"default_threshold"` // Confidence fraction when the caller omits threshold (default: 0.7)
	MaxLimit         int     `toml:"max_limit"`         // Upper bound on caller-supplied limit (default: 100)
}

// UploadConfig contains image upload validation settings
type UploadConfig struct {
	MaxFileSize      int64    `toml:"max_file_size"`     // Bytes (default: 5000000)
	SupportedFormats []string `toml:"supported_formats"` // Accepted MIME types
}

// AuditConfig controls the local request audit trail
type AuditConfig struct {
	Enabled    bool `toml:"enabled"`     // Record describe/search/upload operations and serve /api/audit (default: false)
	LogQueries bool `toml:"log_queries"` // Store query text with each entry (default: false)
}

// NewDefaultConfig creates a configuration with default values
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port: 3000,
			Host: "localhost",
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path: "./data",
			},
		},
		Logging: LoggingConfig{
			Level:      "info",
			Output:     []string{"stdout", "file"},
			TimeFormat: "15:04:05",
		},
		Variables: KeysDirConfig{
			Dir:      "./",
			EnvFiles: []string{".env", ".env.local"},
		},
		Vision: VisionConfig{
			Provider: VisionProviderGemini,
		},
		Gemini: GeminiConfig{
			Model:       "gemini-2.5-flash",
			MaxTokens:   500,
			Timeout:     "60s",
			Temperature: 0.7,
		},
		Claude: ClaudeConfig{
			Model:       "claude-sonnet-4-20250514",
			MaxTokens:   500,
			Timeout:     "60s",
			Temperature: 0.7,
		},
		Weaviate: WeaviateConfig{
			URL:       "http://localhost:8080",
			ClassName: "SoundBite",
			Timeout:   "30s",
		},
		Search: SearchConfig{
			DefaultLimit:     10,
			DefaultThreshold: 0.7,
			MaxLimit:         100,
		},
		Upload: UploadConfig{
			MaxFileSize:      5000000,
			SupportedFormats: []string{"image/jpeg", "image/png", "image/webp", "image/gif"},
		},
		Audit: AuditConfig{
			Enabled:    false,
			LogQueries: false,
		},
	}
}

// DiscoverConfigFiles returns soundbite.toml from the working directory, or
// deployments/local/soundbite.toml for runs from the repository root.
func DiscoverConfigFiles() []string {
	for _, path := range []string{"soundbite.toml", filepath.Join("deployments", "local", "soundbite.toml")} {
		if _, err := os.Stat(path); err == nil {
			return []string{path}
		}
	}
	return nil
}

// LoadFromFiles loads configuration from multiple files with priority: default -> file1 -> file2 -> ... -> env.
// Later files override earlier files. CLI flags are applied afterwards by ApplyFlagOverrides.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		// Unmarshal merges into the existing values
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("SOUNDBITE_ENV"); env != "" {
		config.Environment = env
	} else if env := os.Getenv("GO_ENV"); env != "" {
		config.Environment = env
	}

	// Server configuration
	if port := os.Getenv("SOUNDBITE_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("SOUNDBITE_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}

	// Storage configuration
	if badgerPath := os.Getenv("SOUNDBITE_BADGER_PATH"); badgerPath != "" {
		config.Storage.Badger.Path = badgerPath
	}

	// Logging configuration
	if level := os.Getenv("SOUNDBITE_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if output := os.Getenv("SOUNDBITE_LOG_OUTPUT"); output != "" {
		if outputs := splitList(output); len(outputs) > 0 {
			config.Logging.Output = outputs
		}
	}

	// Vision configuration
	if provider := os.Getenv("SOUNDBITE_VISION_PROVIDER"); provider != "" {
		config.Vision.Provider = VisionProvider(strings.ToLower(provider))
	}

	// Gemini configuration
	if apiKey := os.Getenv("SOUNDBITE_GEMINI_API_KEY"); apiKey != "" {
		config.Gemini.APIKey = apiKey
	}
	if model := os.Getenv("SOUNDBITE_GEMINI_MODEL"); model != "" {
		config.Gemini.Model = model
	}
	if timeout := os.Getenv("SOUNDBITE_GEMINI_TIMEOUT"); timeout != "" {
		config.Gemini.Timeout = timeout
	}
	if rateLimit := os.Getenv("SOUNDBITE_GEMINI_RATE_LIMIT"); rateLimit != "" {
		config.Gemini.RateLimit = rateLimit
	}

	// Claude configuration
	if apiKey := os.Getenv("ANTHROPIC_API_KEY"); apiKey != "" {
		config.Claude.APIKey = apiKey
	}
	if apiKey := os.Getenv("SOUNDBITE_CLAUDE_API_KEY"); apiKey != "" {
		config.Claude.APIKey = apiKey // SOUNDBITE_ prefix takes priority
	}
	if model := os.Getenv("SOUNDBITE_CLAUDE_MODEL"); model != "" {
		config.Claude.Model = model
	}
	if timeout := os.Getenv("SOUNDBITE_CLAUDE_TIMEOUT"); timeout != "" {
		config.Claude.Timeout = timeout
	}

	// Weaviate configuration (WEAVIATE_* names kept for existing deployments)
	if url := os.Getenv("WEAVIATE_URL"); url != "" {
		config.Weaviate.URL = url
	}
	if url := os.Getenv("SOUNDBITE_WEAVIATE_URL"); url != "" {
		config.Weaviate.URL = url
	}
	if apiKey := os.Getenv("WEAVIATE_API_KEY"); apiKey != "" {
		config.Weaviate.APIKey = apiKey
	}
	if apiKey := os.Getenv("SOUNDBITE_WEAVIATE_API_KEY"); apiKey != "" {
		config.Weaviate.APIKey = apiKey
	}
	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
		config.Weaviate.VectorizerAPIKey = apiKey
	}
	if className := os.Getenv("SOUNDBITE_WEAVIATE_CLASS"); className != "" {
		config.Weaviate.ClassName = className
	}

	// Search configuration
	if limit := os.Getenv("SOUNDBITE_SEARCH_DEFAULT_LIMIT"); limit != "" {
		if l, err := strconv.Atoi(limit); err == nil && l > 0 {
			config.Search.DefaultLimit = l
		}
	}
	if threshold := os.Getenv("SOUNDBITE_SEARCH_DEFAULT_THRESHOLD"); threshold != "" {
		if t, err := strconv.ParseFloat(threshold, 64); err == nil && t >= 0 && t <= 1 {
			config.Search.DefaultThreshold = t
		}
	}

	// Upload configuration (NEXT_PUBLIC_* names from the web client are honoured)
	if maxSize := firstEnv("SOUNDBITE_UPLOAD_MAX_FILE_SIZE", "NEXT_PUBLIC_MAX_FILE_SIZE"); maxSize != "" {
		if ms, err := strconv.ParseInt(maxSize, 10, 64); err == nil && ms > 0 {
			config.Upload.MaxFileSize = ms
		}
	}
	if formats := firstEnv("SOUNDBITE_UPLOAD_SUPPORTED_FORMATS", "NEXT_PUBLIC_SUPPORTED_FORMATS"); formats != "" {
		if f := splitList(formats); len(f) > 0 {
			config.Upload.SupportedFormats = f
		}
	}

	// Variables configuration
	if variablesDir := os.Getenv("SOUNDBITE_VARIABLES_DIR"); variablesDir != "" {
		config.Variables.Dir = variablesDir
	}
}

// ApplyFlagOverrides applies command-line flag overrides to config
func ApplyFlagOverrides(config *Config, port int, host string) {
	if port > 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}

// ResolveAPIKey resolves an API key by name.
// Resolution order: environment variables → KV store → config fallback → error
func ResolveAPIKey(ctx context.Context, kvStorage interfaces.KeyValueStorage, name string, configFallback string) (string, error) {
	keyToEnvMapping := map[string][]string{
		"gemini_api_key":     {"SOUNDBITE_GEMINI_API_KEY", "GEMINI_API_KEY", "GOOGLE_API_KEY"},
		"anthropic_api_key":  {"SOUNDBITE_CLAUDE_API_KEY", "ANTHROPIC_API_KEY"},
		"weaviate_api_key":   {"SOUNDBITE_WEAVIATE_API_KEY", "WEAVIATE_API_KEY"},
		"vectorizer_api_key": {"SOUNDBITE_VECTORIZER_API_KEY", "OPENAI_API_KEY"},
	}

	if envVarNames, ok := keyToEnvMapping[name]; ok {
		for _, envVarName := range envVarNames {
			if envValue := os.Getenv(envVarName); envValue != "" {
				return envValue, nil
			}
		}
	}

	// KV store holds values loaded from variables.toml and .env files
	if kvStorage != nil {
		for _, key := range kvLookupKeys(name, keyToEnvMapping[name]) {
			value, err := kvStorage.Get(ctx, key)
			if err == nil && value != "" {
				return value, nil
			}
		}
	}

	if configFallback != "" {
		return configFallback, nil
	}

	return "", fmt.Errorf("API key '%s' not found in environment, KV store, or config", name)
}

// kvLookupKeys returns the KV keys checked for an API key: its own name first,
// then the env-style names (so OPENAI_API_KEY loaded from .env.local resolves).
func kvLookupKeys(name string, envNames []string) []string {
	keys := []string{name}
	return append(keys, envNames...)
}

// IsProduction returns true if the environment is set to production
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}

func firstEnv(names ...string) string {
	for _, name := range names {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}
	return ""
}

// splitList splits a comma-separated value, trimming entries and dropping empties
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
