package config

type SessionConfig interface {
	GetAccessTokenKey() string
	GetRefreshTokenKey() string
	GetDefaultUsername() string
}

type Session struct{}

var _ SessionConfig = Session{}

func (Session) GetAccessTokenKey() string {
	return GetEnv("ACCESS_TOKEN_KEY", "accessToken")
}

func (Session) GetRefreshTokenKey() string {
	return GetEnv("REFRESH_TOKEN_KEY", "refreshToken")
}

// GetDefaultUsername is shown when a token carries neither a username nor a subject.
func (Session) GetDefaultUsername() string {
	return GetEnv("DEFAULT_USERNAME", "usuario")
}
