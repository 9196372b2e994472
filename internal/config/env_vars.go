package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// EnvVars holds all environment-driven settings. Parsed once at startup.
type EnvVars struct {
	Port             string `env:"PORT" envDefault:"8080"`
	AppName          string `env:"APP_NAME" envDefault:"BillDesk"`
	DataFolder       string `env:"FOLDER" envDefault:"./data"`
	BaseURL          string `env:"BASE_URL" envDefault:"http://localhost:8080"`
	LandingPath      string `env:"LANDING_PATH" envDefault:"/"`
	Env              string `env:"ENV" envDefault:"DEV"`
	BillsBaseURL     string `env:"BILLS_API_URL" envDefault:"http://localhost:5000"`
	IdentityBaseURL  string `env:"IDENTITY_API_URL" envDefault:"http://localhost:4000"`
	OIDCIssuer       string `env:"OIDC_ISSUER"`
	OIDCClientID     string `env:"OIDC_CLIENT_ID"`
	OIDCClientSecret string `env:"OIDC_CLIENT_SECRET"`
}

var _ EnvConfig = EnvVars{}
var _ IdentityConfig = EnvVars{}
var _ BillingConfig = EnvVars{}

func ParseEnvVars() (EnvVars, error) {
	var e EnvVars
	if err := env.Parse(&e); err != nil {
		return EnvVars{}, fmt.Errorf("[ParseEnvVars] env.Parse: %w", err)
	}
	return e, nil
}

func (e EnvVars) GetPort() string {
	port := e.Port
	if port != "" && port[0] != ':' {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (e EnvVars) GetAppName() string {
	return e.AppName
}

func (e EnvVars) GetDataFolder() string {
	return e.DataFolder
}

// GetBaseURL returns the app's own base URL (e.g. "https://billdesk.example.com").
// Used to build the federated sign-in redirect URI.
func (e EnvVars) GetBaseURL() string {
	return e.BaseURL
}

func (e EnvVars) GetDefaultLandingPath() string {
	return e.LandingPath
}

func (e EnvVars) GetEnv() string {
	return e.Env
}

func (e EnvVars) GetIdentityBaseURL() string {
	return e.IdentityBaseURL
}

func (e EnvVars) GetOIDCIssuer() string {
	return e.OIDCIssuer
}

func (e EnvVars) GetOIDCClientID() string {
	return e.OIDCClientID
}

func (e EnvVars) GetOIDCClientSecret() string {
	return e.OIDCClientSecret
}

func (e EnvVars) GetBillsBaseURL() string {
	return e.BillsBaseURL
}
