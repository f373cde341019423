package config

type OAuthConfig interface {
	GetIssuerURL() string
	GetTokenURL() string
	GetClientID() string
	GetClientSecret() string
	GetScopes() []string
}

type OAuth struct{}

var _ OAuthConfig = OAuth{}

// GetIssuerURL enables OIDC discovery of the token endpoint when set.
func (OAuth) GetIssuerURL() string {
	return GetEnv("ISSUER_URL", "")
}

// GetTokenURL is used when no issuer is configured.
func (OAuth) GetTokenURL() string {
	return GetEnv("TOKEN_URL", "http://localhost:8080/api/auth/login")
}

func (OAuth) GetClientID() string {
	return GetEnv("CLIENT_ID", "backoffice")
}

func (OAuth) GetClientSecret() string {
	return GetEnv("CLIENT_SECRET", "")
}

func (OAuth) GetScopes() []string {
	return GetList("OAUTH_SCOPES", nil)
}
