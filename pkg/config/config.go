package config

import (
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/spf13/viper"
)

const (
	// Default configuration values
	defaultLogLevel        = "info"
	defaultEOLBaseURL      = "https://endoflife.date/api"
	defaultPageConcurrency = 10
	defaultChannelCapacity = 32
	defaultLookaheadMonths = 12

	// Environment variable prefix
	envPrefix = "AZ_VM_EOL"
)

// Singleton instance for configuration
var (
	configInstance *Config
	configMutex    sync.RWMutex
)

// GetConfig returns the singleton configuration instance.
// Returns nil if configuration has not been loaded yet. Use LoadConfig() first.
// This function is thread-safe and handles concurrent access correctly.
func GetConfig() *Config {
	configMutex.RLock()
	defer configMutex.RUnlock()
	return configInstance
}

// LoadConfig loads configuration from an optional JSON file and environment variables.
// An empty configPath means defaults plus environment overrides only.
// Environment variables override config file values using the AZ_VM_EOL_ prefix.
// For example: AZ_VM_EOL_SCAN_PAGECONCURRENCY=5
func LoadConfig(configPath string) (*Config, error) {
	// Set up viper
	v := viper.New()
	v.SetConfigType("json")
	v.AutomaticEnv()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Register defaults so environment overrides apply even without a config file
	v.SetDefault("agent.loglevel", defaultLogLevel)
	v.SetDefault("eol.baseurl", defaultEOLBaseURL)
	v.SetDefault("scan.pageconcurrency", defaultPageConcurrency)
	v.SetDefault("scan.channelcapacity", defaultChannelCapacity)
	v.SetDefault("scan.eollookaheadmonths", defaultLookaheadMonths)
	v.SetDefault("output.strictformat", false)

	// Load the config file when one is specified
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file at %s: %w", configPath, err)
		}
	}

	// Unmarshal config
	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Set defaults for any missing values
	config.SetDefaults()

	// Validate the configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	// Set the singleton instance
	configMutex.Lock()
	defer configMutex.Unlock()
	configInstance = config

	return config, nil
}

// SetDefaults sets default values for any missing configuration fields
func (c *Config) SetDefaults() {
	if c.Agent.LogLevel == "" {
		c.Agent.LogLevel = defaultLogLevel
	}
	if c.EOL.BaseURL == "" {
		c.EOL.BaseURL = defaultEOLBaseURL
	}
	if c.Scan.PageConcurrency == 0 {
		c.Scan.PageConcurrency = defaultPageConcurrency
	}
	if c.Scan.ChannelCapacity == 0 {
		c.Scan.ChannelCapacity = defaultChannelCapacity
	}
	if c.Scan.EOLLookaheadMonths == 0 {
		c.Scan.EOLLookaheadMonths = defaultLookaheadMonths
	}
}

// validLogLevels defines the allowed logging levels for the scanner
var validLogLevels = map[string]bool{
	"debug":   true,
	"info":    true,
	"warning": true,
	"error":   true,
}

// Validate validates the configuration and ensures all fields are usable
func (c *Config) Validate() error {
	// Validate log level
	if !validLogLevels[c.Agent.LogLevel] {
		return fmt.Errorf("invalid agent.logLevel: %s. Valid values are: debug, info, warning, error", c.Agent.LogLevel)
	}

	// Validate scan tuning knobs
	if c.Scan.PageConcurrency < 1 {
		return fmt.Errorf("invalid scan.pageConcurrency: %d. Must be at least 1", c.Scan.PageConcurrency)
	}
	if c.Scan.ChannelCapacity < 1 {
		return fmt.Errorf("invalid scan.channelCapacity: %d. Must be at least 1", c.Scan.ChannelCapacity)
	}
	if c.Scan.EOLLookaheadMonths < 0 {
		return fmt.Errorf("invalid scan.eolLookaheadMonths: %d. Must not be negative", c.Scan.EOLLookaheadMonths)
	}

	// Validate the EOL calendar endpoint
	parsed, err := url.Parse(c.EOL.BaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("invalid eol.baseUrl: %q. Must be an absolute http(s) URL", c.EOL.BaseURL)
	}

	// Validate service principal completeness when partially provided
	if sp := c.Azure.ServicePrincipal; sp != nil {
		if sp.TenantID == "" || sp.ClientID == "" || sp.ClientSecret == "" {
			return fmt.Errorf("incomplete azure.servicePrincipal: tenantId, clientId and clientSecret are all required")
		}
	}

	return nil
}
