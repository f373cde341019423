package config

import "github.com/joho/godotenv"

type Config interface {
	EnvConfig
	SessionConfig
	SecurityConfig
	StorageConfig
	OAuthConfig
}

type EnvConfig interface {
	GetAppName() string
	GetEnv() string
	GetLogLevel() string
	GetAPIBaseURL() string
	GetLoginURL() string
}

type mainConfig struct {
	EnvVars
	Session
	Security
	Storage
	OAuth
}

// New returns the environment backed configuration. A .env file in the
// working directory is loaded first when present; variables already set in
// the process environment win.
func New() Config {
	_ = godotenv.Load(".env")
	return mainConfig{}
}
