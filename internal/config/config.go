package config

import (
	"errors"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Port                             string  `mapstructure:"PORT"`
	GinMode                          string  `mapstructure:"GIN_MODE"`
	LogMode                          string  `mapstructure:"LOG_MODE"` // "development" or "production"
	FirebaseProjectID                string  `mapstructure:"FIREBASE_PROJECT_ID"`
	FirebaseWebAPIKey                string  `mapstructure:"FIREBASE_WEB_API_KEY"`
	GoogleApplicationCredentials     string  `mapstructure:"GOOGLE_APPLICATION_CREDENTIALS"`
	FirebaseServiceAccountJSONBase64 string  `mapstructure:"FIREBASE_SERVICE_ACCOUNT_JSON_BASE64"`
	ClientURL                        string  `mapstructure:"CLIENT_URL"`
	OAuthRedirectURL                 string  `mapstructure:"OAUTH_REDIRECT_URL"`
	DefaultMonthlyBudget             float64 `mapstructure:"DEFAULT_MONTHLY_BUDGET"`
}

// LoadConfig loads configuration from environment variables using Viper.
func LoadConfig() (*Config, error) {
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set default values
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("GIN_MODE", "debug")
	viper.SetDefault("LOG_MODE", "development")
	viper.SetDefault("DEFAULT_MONTHLY_BUDGET", 10000)

	// Bind environment variables
	viper.BindEnv("PORT")
	viper.BindEnv("GIN_MODE")
	viper.BindEnv("LOG_MODE")
	viper.BindEnv("FIREBASE_PROJECT_ID")
	viper.BindEnv("FIREBASE_WEB_API_KEY")
	viper.BindEnv("GOOGLE_APPLICATION_CREDENTIALS")
	viper.BindEnv("FIREBASE_SERVICE_ACCOUNT_JSON_BASE64")
	viper.BindEnv("CLIENT_URL")
	viper.BindEnv("OAUTH_REDIRECT_URL")
	viper.BindEnv("DEFAULT_MONTHLY_BUDGET")

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, errors.New("failed to unmarshal config: " + err.Error())
	}

	// Validate required fields
	if cfg.FirebaseProjectID == "" {
		return nil, errors.New("FIREBASE_PROJECT_ID is required")
	}
	if cfg.FirebaseWebAPIKey == "" {
		return nil, errors.New("FIREBASE_WEB_API_KEY is required")
	}
	if cfg.GoogleApplicationCredentials == "" && cfg.FirebaseServiceAccountJSONBase64 == "" {
		return nil, errors.New("either GOOGLE_APPLICATION_CREDENTIALS or FIREBASE_SERVICE_ACCOUNT_JSON_BASE64 is required")
	}
	if cfg.ClientURL == "" {
		return nil, errors.New("CLIENT_URL is required")
	}
	if cfg.OAuthRedirectURL == "" {
		// The federated flow lands back on the SPA origin by default.
		cfg.OAuthRedirectURL = cfg.ClientURL
	}
	if cfg.DefaultMonthlyBudget <= 0 {
		return nil, errors.New("DEFAULT_MONTHLY_BUDGET must be positive")
	}

	return &cfg, nil
}
