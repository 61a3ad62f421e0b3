package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

// Operator is a dashboard account declared in configuration.
type Operator struct {
	Username     string `mapstructure:"username"`
	PasswordHash string `mapstructure:"password_hash"`
	Role         string `mapstructure:"role"`
}

type Config struct {
	JWTSecret string        `mapstructure:"jwt_secret"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
	Issuer    string        `mapstructure:"issuer"`
	// APIKeyHash is the bcrypt hash of the machine API key.
	APIKeyHash string     `mapstructure:"api_key_hash"`
	Operators  []Operator `mapstructure:"operators"`
}

type Service struct {
	config    Config
	operators map[string]Operator
}

func NewService(config Config) *Service {
	ops := make(map[string]Operator, len(config.Operators))
	for _, op := range config.Operators {
		if op.Role == "" {
			op.Role = RoleViewer
		}
		ops[op.Username] = op
	}
	return &Service{config: config, operators: ops}
}

func (s *Service) Config() Config {
	return s.config
}

// Login verifies an operator's password and returns a signed token.
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	op, ok := s.operators[username]
	if !ok || !CheckPassword(password, op.PasswordHash) {
		slog.WarnContext(ctx, "Operator login rejected", "username", username)
		return "", ErrInvalidCredentials
	}

	token, err := GenerateToken(s.config, op.Username, op.Role)
	if err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	slog.InfoContext(ctx, "Operator logged in", "username", username, "role", op.Role)
	return token, nil
}

// APIKeyConfigured reports whether machine access is enabled.
func (s *Service) APIKeyConfigured() bool {
	return s.config.APIKeyHash != ""
}

// CheckAPIKey compares a machine API key with the configured bcrypt hash.
func (s *Service) CheckAPIKey(key string) bool {
	if s.config.APIKeyHash == "" || key == "" {
		return false
	}
	return CheckPassword(key, s.config.APIKeyHash)
}
