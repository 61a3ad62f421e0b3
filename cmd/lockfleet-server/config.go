package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/EternisAI/lockfleet/internal/api/http"
	"github.com/EternisAI/lockfleet/internal/auth"
	"github.com/EternisAI/lockfleet/internal/db"
	"github.com/EternisAI/lockfleet/internal/devices"
	"github.com/EternisAI/lockfleet/internal/tuya"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Log   LogConfig
	Http  http.Config
	Tuya  tuya.Config
	Auth  auth.Config
	Logs  devices.QueryDefaults
	Audit AuditConfig
	Otel  OtelConfig
}

type AuditConfig struct {
	Enabled bool      `mapstructure:"enabled"`
	DB      db.Config `mapstructure:"db"`
}

type OtelConfig struct {
	Enabled      bool    `mapstructure:"enabled"`
	Endpoint     string  `mapstructure:"endpoint"`
	Insecure     bool    `mapstructure:"insecure"`
	ServiceName  string  `mapstructure:"service_name"`
	SamplingRate float64 `mapstructure:"sampling_rate"`
}

var config Config

func InitConfig() {
	var err error

	_ = godotenv.Load()

	viper.SetConfigName("application")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./cmd/lockfleet-server")
	viper.SetConfigType("yaml")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	_ = viper.BindEnv("tuya.access_secret", "TUYA_ACCESS_SECRET")
	_ = viper.BindEnv("auth.jwt_secret", "JWT_SECRET")
	_ = viper.BindEnv("audit.db.url", "DATABASE_URL")

	viper.SetDefault("http.port", 8080)
	viper.SetDefault("log.level", LOG_LEVEL_INFO)
	viper.SetDefault("otel.service_name", "lockfleet")
	viper.SetDefault("otel.sampling_rate", 1.0)

	if err := viper.ReadInConfig(); err != nil {
		panic(err)
	}

	err = viper.Unmarshal(&config)
	if err != nil {
		panic(err)
	}

	// Initialize logger with configured log level
	initLogger(config.Log.Level)

	if err := config.validate(); err != nil {
		panic(err)
	}

	if strings.ToUpper(config.Log.Level) == LOG_LEVEL_DEBUG {
		configJSON, err := json.MarshalIndent(config.redacted(), "", "  ")
		if err == nil {
			fmt.Println("Config loaded:")
			fmt.Println(string(configJSON))
		}
	}
}

// validate rejects configurations the service cannot run with. The vendor
// secret is required even in sandbox mode because the sandbox seals tickets
// with it.
func (c Config) validate() error {
	var errs []error
	if c.Tuya.AccessSecret == "" {
		errs = append(errs, errors.New("tuya.access_secret is required"))
	}
	if c.Tuya.BaseURL == "" && !c.Tuya.Sandbox {
		errs = append(errs, errors.New("tuya.base_url is required"))
	}
	if c.Tuya.AppUID == "" {
		errs = append(errs, errors.New("tuya.app_account_uid is required"))
	}
	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("auth.jwt_secret is required"))
	}
	if c.Audit.Enabled && c.Audit.DB.Url == "" {
		errs = append(errs, errors.New("audit.db.url is required when audit is enabled"))
	}
	return errors.Join(errs...)
}

const redactedValue = "***"

func (c Config) redacted() Config {
	mask := func(s string) string {
		if s == "" {
			return ""
		}
		return redactedValue
	}
	c.Tuya.AccessSecret = mask(c.Tuya.AccessSecret)
	c.Tuya.AccessToken = mask(c.Tuya.AccessToken)
	c.Auth.JWTSecret = mask(c.Auth.JWTSecret)
	c.Auth.APIKeyHash = mask(c.Auth.APIKeyHash)
	ops := make([]auth.Operator, len(c.Auth.Operators))
	for i, op := range c.Auth.Operators {
		op.PasswordHash = mask(op.PasswordHash)
		ops[i] = op
	}
	c.Auth.Operators = ops
	c.Audit.DB.Url = mask(c.Audit.DB.Url)
	return c
}
