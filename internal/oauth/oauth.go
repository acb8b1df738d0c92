package oauth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"strings"

	"golang.org/x/oauth2"
)

type UserInfo struct {
	Email     string
	Name      string
	AvatarURL string
	ID        string
	Provider  string
	// AccessToken is the provider's token, usable against its API.
	AccessToken string
	// Scopes holds what the provider actually granted, space separated.
	Scopes string
}

type Provider interface {
	GetConsentURL(state string, scopes []string, params map[string]string) string
	ExchangeCode(ctx context.Context, code string) (*UserInfo, error)
	Name() string
}

func GenerateState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// consentURL renders cfg's authorization URL for the requested scopes.
// Empty scopes keep the provider's configured set.
func consentURL(cfg *oauth2.Config, state string, scopes []string, params map[string]string) string {
	c := *cfg
	if len(scopes) > 0 {
		c.Scopes = scopes
	}
	opts := []oauth2.AuthCodeOption{oauth2.AccessTypeOffline}
	for k, v := range params {
		opts = append(opts, oauth2.SetAuthURLParam(k, v))
	}
	return c.AuthCodeURL(state, opts...)
}

// grantedScopes normalizes the token's scope field; GitHub separates with
// commas, the others with spaces. Falls back to the requested scopes.
func grantedScopes(token *oauth2.Token, requested []string) string {
	raw, _ := token.Extra("scope").(string)
	if raw == "" {
		return strings.Join(requested, " ")
	}
	return strings.Join(strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ' '
	}), " ")
}
