package auth

import (
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"

	"github.com/cloudops/azure-vm-eol/pkg/config"
)

// AuthProvider is a simple factory for Azure credentials
type AuthProvider struct{}

// NewAuthProvider creates a new authentication provider
func NewAuthProvider() *AuthProvider {
	return &AuthProvider{}
}

// UserCredential returns credential based on config (service principal or CLI fallback)
func (a *AuthProvider) UserCredential(cfg *config.Config) (azcore.TokenCredential, error) {
	if cfg.IsSPConfigured() {
		return a.serviceCredential(cfg)
	}
	return a.cliCredential(cfg)
}

// serviceCredential creates service principal credential from config
func (a *AuthProvider) serviceCredential(cfg *config.Config) (azcore.TokenCredential, error) {
	cred, err := azidentity.NewClientSecretCredential(
		cfg.Azure.ServicePrincipal.TenantID,
		cfg.Azure.ServicePrincipal.ClientID,
		cfg.Azure.ServicePrincipal.ClientSecret,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create service principal credential: %w", err)
	}
	return cred, nil
}

// cliCredential creates Azure CLI credential
func (a *AuthProvider) cliCredential(cfg *config.Config) (azcore.TokenCredential, error) {
	var options *azidentity.AzureCLICredentialOptions
	if cfg.Azure.TenantID != "" {
		options = &azidentity.AzureCLICredentialOptions{TenantID: cfg.Azure.TenantID}
	}
	cred, err := azidentity.NewAzureCLICredential(options)
	if err != nil {
		return nil, fmt.Errorf("failed to create CLI credential: %w", err)
	}
	return cred, nil
}
