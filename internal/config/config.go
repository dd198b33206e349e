package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/Egham-7/fetchstream/internal/models"

	fiberlog "github.com/gofiber/fiber/v2/log"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const defaultPort = "8080"

var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(?::(-[^}]*))?\}`)

// Config represents the complete application configuration
type Config struct {
	Server    models.ServerConfig    `yaml:"server"`
	Transport models.TransportConfig `yaml:"transport"`
	Streams   []models.StreamConfig  `yaml:"streams"`
}

// LoadFromFile loads configuration from a YAML file with environment variable substitution
func LoadFromFile(configPath string) (*Config, error) {
	cleanPath := filepath.Clean(configPath)

	if strings.Contains(cleanPath, "..") {
		return nil, fmt.Errorf("invalid config path: path traversal not allowed")
	}

	ext := filepath.Ext(cleanPath)
	if ext != ".yaml" && ext != ".yml" {
		return nil, fmt.Errorf("invalid config file: only .yaml and .yml files are allowed")
	}

	data, err := os.ReadFile(cleanPath) // #nosec G304 - path is validated above
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", cleanPath, err)
	}

	return Parse(data)
}

// Parse parses YAML configuration after substituting environment variables
func Parse(data []byte) (*Config, error) {
	content := substituteEnvVars(string(data))

	var config Config
	if err := yaml.Unmarshal([]byte(content), &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}

	config.applyDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// LoadEnvFiles loads environment variables from .env files in order of precedence
// Loads files in the order provided (first has highest priority)
func LoadEnvFiles(envFiles []string) {
	for _, envFile := range envFiles {
		if _, err := os.Stat(envFile); err == nil {
			if err := godotenv.Load(envFile); err == nil {
				fmt.Printf("Loaded environment variables from %s\n", envFile)
			}
		}
	}
}

// Validate checks that every stream can be started
func (c *Config) Validate() error {
	seen := make(map[string]bool, len(c.Streams))
	for i, stream := range c.Streams {
		if stream.URL == "" {
			return fmt.Errorf("stream %d (%s): url is required", i, stream.Name)
		}
		if seen[stream.Name] {
			return fmt.Errorf("stream %d: duplicate name %q", i, stream.Name)
		}
		seen[stream.Name] = true
		if stream.Timeout < 0 {
			return fmt.Errorf("stream %s: timeout must not be negative", stream.Name)
		}
	}
	switch strings.ToLower(c.Transport.Kind) {
	case "", models.TransportFastHTTP, models.TransportHTTP:
	default:
		return fmt.Errorf("unknown transport kind %q", c.Transport.Kind)
	}
	return nil
}

// Stream returns the stream with the given name
func (c *Config) Stream(name string) (models.StreamConfig, bool) {
	for _, stream := range c.Streams {
		if stream.Name == name {
			return stream, true
		}
	}
	return models.StreamConfig{}, false
}

func (c *Config) applyDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = defaultPort
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = "info"
	}
	c.Transport.Kind = strings.ToLower(strings.TrimSpace(c.Transport.Kind))
	for i := range c.Streams {
		if c.Streams[i].Name == "" {
			c.Streams[i].Name = fmt.Sprintf("stream-%d", i+1)
		}
		c.Streams[i].Decode = strings.ToLower(c.Streams[i].Decode)
	}
}

// ApplyLogLevel sets the global log level from its name; unknown names select info
func ApplyLogLevel(level string) {
	switch strings.ToLower(level) {
	case "trace":
		fiberlog.SetLevel(fiberlog.LevelTrace)
	case "debug":
		fiberlog.SetLevel(fiberlog.LevelDebug)
	case "info":
		fiberlog.SetLevel(fiberlog.LevelInfo)
	case "warn", "warning":
		fiberlog.SetLevel(fiberlog.LevelWarn)
	case "error":
		fiberlog.SetLevel(fiberlog.LevelError)
	case "fatal":
		fiberlog.SetLevel(fiberlog.LevelFatal)
	case "panic":
		fiberlog.SetLevel(fiberlog.LevelPanic)
	default:
		fiberlog.SetLevel(fiberlog.LevelInfo)
	}
}

// substituteEnvVars replaces ${VAR_NAME} and ${VAR_NAME:-default} patterns with environment variables
func substituteEnvVars(content string) string {
	return envVarPattern.ReplaceAllStringFunc(content, func(match string) string {
		submatches := envVarPattern.FindStringSubmatch(match)
		if len(submatches) < 2 {
			return match
		}

		varName := submatches[1]
		defaultValue := ""
		if len(submatches) > 2 && submatches[2] != "" {
			defaultValue = strings.TrimPrefix(submatches[2], "-")
		}

		if value := os.Getenv(varName); value != "" {
			return value
		}
		return defaultValue
	})
}
