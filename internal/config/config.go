package config

import "time"

type Config interface {
	EnvConfig
	PortalConfig
	SessionConfig
}

type EnvConfig interface {
	GetAppName() string
	GetBaseURL() string
	GetEnv() string
	GetLogLevel() string
}

type PortalConfig interface {
	GetPort() string
}

type SessionConfig interface {
	GetSessionFile() string
	GetCheckInterval() time.Duration
	GetDedupeRefresh() bool
}

type mainConfig struct {
	EnvVars
	Portal
	Session
}

func New() Config {
	return mainConfig{}
}
