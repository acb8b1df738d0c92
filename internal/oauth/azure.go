package oauth

import (
	"context"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/dimitrije/gatekeeper/internal/config"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/microsoft"
)

const azureLoginURL = "https://login.microsoftonline.com"

// AzureProvider signs users in through Microsoft Entra ID. The profile comes
// from the verified id_token rather than a userinfo call.
type AzureProvider struct {
	config   *oauth2.Config
	verifier *oidc.IDTokenVerifier
}

func NewAzureProvider(cfg config.AzureConfig) *AzureProvider {
	tenant := cfg.TenantID
	if tenant == "" {
		tenant = "common"
	}

	issuer := fmt.Sprintf("%s/%s/v2.0", azureLoginURL, tenant)
	keys := oidc.NewRemoteKeySet(context.Background(), fmt.Sprintf("%s/%s/discovery/v2.0/keys", azureLoginURL, tenant))

	return &AzureProvider{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{oidc.ScopeOpenID, "email", "profile"},
			Endpoint:     microsoft.AzureADEndpoint(tenant),
		},
		verifier: oidc.NewVerifier(issuer, keys, &oidc.Config{
			ClientID: cfg.ClientID,
			// Multi-tenant endpoints issue tokens under each user's own tenant.
			SkipIssuerCheck: isMultiTenant(tenant),
		}),
	}
}

func isMultiTenant(tenant string) bool {
	switch tenant {
	case "common", "organizations", "consumers":
		return true
	}
	return false
}

func (p *AzureProvider) Name() string {
	return "azure"
}

func (p *AzureProvider) GetConsentURL(state string, scopes []string, params map[string]string) string {
	return consentURL(p.config, state, withOpenID(scopes), params)
}

// withOpenID makes sure an id_token is issued for custom scope sets.
func withOpenID(scopes []string) []string {
	if len(scopes) == 0 {
		return scopes
	}
	for _, s := range scopes {
		if s == oidc.ScopeOpenID {
			return scopes
		}
	}
	return append([]string{oidc.ScopeOpenID}, scopes...)
}

func (p *AzureProvider) ExchangeCode(ctx context.Context, code string) (*UserInfo, error) {
	token, err := p.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange code: %w", err)
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return nil, fmt.Errorf("id_token missing in response")
	}

	idToken, err := p.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, fmt.Errorf("verify id_token: %w", err)
	}

	var claims struct {
		OID               string `json:"oid"`
		Email             string `json:"email"`
		PreferredUsername string `json:"preferred_username"`
		Name              string `json:"name"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("parse claims: %w", err)
	}

	id := claims.OID
	if id == "" {
		id = idToken.Subject
	}
	email := claims.Email
	if email == "" {
		email = claims.PreferredUsername
	}

	return &UserInfo{
		Email:       email,
		Name:        claims.Name,
		ID:          id,
		Provider:    "azure",
		AccessToken: token.AccessToken,
		Scopes:      grantedScopes(token, nil),
	}, nil
}
