package models

// ServerConfig holds settings for the stream simulator server
type ServerConfig struct {
	Port        string `json:"port,omitzero" yaml:"port"`
	Environment string `json:"environment,omitzero" yaml:"environment"`
	LogLevel    string `json:"log_level,omitzero" yaml:"log_level"`
}
