package config

// Config represents the complete scanner configuration structure.
// It contains Azure authentication settings and scan/output tuning knobs.
type Config struct {
	Azure  AzureConfig  `json:"azure"`
	Scan   ScanConfig   `json:"scan"`
	EOL    EOLConfig    `json:"eol"`
	Output OutputConfig `json:"output"`
	Agent  AgentConfig  `json:"agent"`
}

// AzureConfig holds Azure-specific configuration.
// When no service principal is configured, Azure CLI credentials are used.
type AzureConfig struct {
	TenantID         string                  `json:"tenantId"`                   // Azure tenant ID
	ServicePrincipal *ServicePrincipalConfig `json:"servicePrincipal,omitempty"` // Optional service principal authentication
}

// ServicePrincipalConfig holds Azure service principal authentication configuration.
// When provided, service principal authentication will be used instead of Azure CLI.
type ServicePrincipalConfig struct {
	TenantID     string `json:"tenantId"`     // Azure AD tenant ID
	ClientID     string `json:"clientId"`     // Azure AD application (client) ID
	ClientSecret string `json:"clientSecret"` // Azure AD application client secret
}

// ScanConfig holds tuning knobs for the enumeration pipeline.
type ScanConfig struct {
	PageConcurrency    int `json:"pageConcurrency"`    // Max concurrent page-processing tasks
	ChannelCapacity    int `json:"channelCapacity"`    // Capacity of the producer/consumer record channel
	EOLLookaheadMonths int `json:"eolLookaheadMonths"` // Window for flagging releases as ending soon
}

// EOLConfig holds settings for the endoflife.date calendar source.
type EOLConfig struct {
	BaseURL string `json:"baseUrl"` // Base URL of the EOL calendar API
}

// OutputConfig holds report output behavior settings.
type OutputConfig struct {
	// StrictFormat makes an unrecognized --format value a hard failure
	// (non-zero exit) instead of logging an error and exiting cleanly.
	StrictFormat bool `json:"strictFormat"`
}

// AgentConfig holds operational configuration for the scanner process.
type AgentConfig struct {
	LogLevel string `json:"logLevel"` // Logging level: debug, info, warning, error
}

// IsSPConfigured reports whether a complete service principal is configured.
func (c *Config) IsSPConfigured() bool {
	sp := c.Azure.ServicePrincipal
	return sp != nil && sp.TenantID != "" && sp.ClientID != "" && sp.ClientSecret != ""
}
