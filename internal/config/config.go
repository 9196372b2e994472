package config

type Config interface {
	EnvConfig
	IdentityConfig
	BillingConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetDataFolder() string
	GetBaseURL() string
	GetDefaultLandingPath() string
	GetEnv() string
}

// IdentityConfig describes how to reach the external identity provider.
type IdentityConfig interface {
	GetIdentityBaseURL() string
	GetOIDCIssuer() string
	GetOIDCClientID() string
	GetOIDCClientSecret() string
}

// BillingConfig describes how to reach the remote bills/payments service.
type BillingConfig interface {
	GetBillsBaseURL() string
}

type mainConfig struct {
	EnvVars
}

func New() (Config, error) {
	envVars, err := ParseEnvVars()
	if err != nil {
		return nil, err
	}
	return mainConfig{EnvVars: envVars}, nil
}
