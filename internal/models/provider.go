package models

// Provider tags the identity provider that authenticated a user.
type Provider string

const (
	ProviderGitHub Provider = "github"
	ProviderGitLab Provider = "gitlab"
	ProviderAzure  Provider = "azure"
	ProviderGoogle Provider = "google"
	ProviderEmail  Provider = "email"
)

func (p Provider) Valid() bool {
	switch p {
	case ProviderGitHub, ProviderGitLab, ProviderAzure, ProviderGoogle, ProviderEmail:
		return true
	}
	return false
}

// OAuthProviders lists the providers reachable through an OAuth redirect.
var OAuthProviders = []Provider{ProviderGitHub, ProviderGitLab, ProviderAzure, ProviderGoogle}

type GitHubScope string

const (
	GitHubScopeRepo      GitHubScope = "repo"
	GitHubScopeReadUser  GitHubScope = "read:user"
	GitHubScopeUserEmail GitHubScope = "user:email"
	GitHubScopeWorkflow  GitHubScope = "workflow"
)

type GitLabScope string

const (
	GitLabScopeAPI             GitLabScope = "api"
	GitLabScopeReadUser        GitLabScope = "read_user"
	GitLabScopeWriteRepository GitLabScope = "write_repository"
	GitLabScopeReadRepository  GitLabScope = "read_repository"
	GitLabScopeProfile         GitLabScope = "profile"
)

type MicrosoftScope string

const (
	MicrosoftScopeOpenID        MicrosoftScope = "openid"
	MicrosoftScopeEmail         MicrosoftScope = "email"
	MicrosoftScopeProfile       MicrosoftScope = "profile"
	MicrosoftScopeOfflineAccess MicrosoftScope = "offline_access"
	MicrosoftScopeUserRead      MicrosoftScope = "User.Read"
)

type GoogleScope string

const (
	GoogleScopeOpenID          GoogleScope = "openid"
	GoogleScopeEmail           GoogleScope = "email"
	GoogleScopeProfile         GoogleScope = "profile"
	GoogleScopeUserinfoProfile GoogleScope = "https://www.googleapis.com/auth/userinfo.profile"
	GoogleScopeUserinfoEmail   GoogleScope = "https://www.googleapis.com/auth/userinfo.email"
)

func (GitHubScope) Provider() Provider    { return ProviderGitHub }
func (GitLabScope) Provider() Provider    { return ProviderGitLab }
func (MicrosoftScope) Provider() Provider { return ProviderAzure }
func (GoogleScope) Provider() Provider    { return ProviderGoogle }

// ScopeVocabulary ties each scope type to the one provider that accepts it,
// so a GitHub scope can never be requested from Google.
type ScopeVocabulary interface {
	GitHubScope | GitLabScope | MicrosoftScope | GoogleScope
	Provider() Provider
}

// ScopeStrings converts typed scopes to plain strings. A nil input stays nil.
func ScopeStrings[S ScopeVocabulary](scopes []S) []string {
	if scopes == nil {
		return nil
	}
	out := make([]string, len(scopes))
	for i, s := range scopes {
		out[i] = string(s)
	}
	return out
}

// DefaultScopes are used when neither the caller nor the deployment names any.
var DefaultScopes = map[Provider][]string{
	ProviderGitHub: {string(GitHubScopeReadUser), string(GitHubScopeRepo)},
	ProviderGitLab: {string(GitLabScopeAPI), string(GitLabScopeReadUser)},
	ProviderAzure:  {string(MicrosoftScopeOpenID), string(MicrosoftScopeEmail), string(MicrosoftScopeProfile)},
	ProviderGoogle: {string(GoogleScopeOpenID), string(GoogleScopeEmail), string(GoogleScopeProfile)},
}
