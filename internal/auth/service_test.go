package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-jwt-secret"

func newTestService(t *testing.T) *Service {
	t.Helper()
	hash, err := HashPassword("correct-horse")
	require.NoError(t, err)
	keyHash, err := HashPassword("machine-key")
	require.NoError(t, err)
	return NewService(Config{
		JWTSecret:  testSecret,
		TokenTTL:   time.Hour,
		APIKeyHash: keyHash,
		Operators: []Operator{
			{Username: "ana", PasswordHash: hash, Role: RoleAdmin},
			{Username: "ben", PasswordHash: hash},
		},
	})
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("correct-horse")
	require.NoError(t, err)
	assert.NotEqual(t, "correct-horse", hash)
	assert.True(t, CheckPassword("correct-horse", hash))
	assert.False(t, CheckPassword("wrong-horse", hash))

	_, err = HashPassword("short")
	assert.Error(t, err)
}

func TestLogin(t *testing.T) {
	svc := newTestService(t)

	token, err := svc.Login(context.Background(), "ana", "correct-horse")
	require.NoError(t, err)

	claims, err := ValidateToken(testSecret, token)
	require.NoError(t, err)
	assert.Equal(t, "ana", claims.Username)
	assert.Equal(t, RoleAdmin, claims.Role)
	assert.Equal(t, "lockfleet", claims.Issuer)
}

func TestLoginDefaultsRoleToViewer(t *testing.T) {
	svc := newTestService(t)

	token, err := svc.Login(context.Background(), "ben", "correct-horse")
	require.NoError(t, err)

	claims, err := ValidateToken(testSecret, token)
	require.NoError(t, err)
	assert.Equal(t, RoleViewer, claims.Role)
}

func TestLoginRejected(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Login(context.Background(), "ana", "wrong-horse")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), "nobody", "correct-horse")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	token, err := GenerateToken(Config{JWTSecret: testSecret}, "ana", RoleAdmin)
	require.NoError(t, err)

	_, err = ValidateToken("other-secret", token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	claims := Claims{
		Username: "ana",
		Role:     RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = ValidateToken(testSecret, token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateTokenRejectsOtherAlgorithms(t *testing.T) {
	claims := Claims{
		Username:         "ana",
		Role:             RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = ValidateToken(testSecret, token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestGenerateTokenRequiresSecret(t *testing.T) {
	_, err := GenerateToken(Config{}, "ana", RoleAdmin)
	assert.Error(t, err)
}

func TestCheckAPIKey(t *testing.T) {
	svc := newTestService(t)
	assert.True(t, svc.APIKeyConfigured())
	assert.True(t, svc.CheckAPIKey("machine-key"))
	assert.False(t, svc.CheckAPIKey("machine-kez"))
	assert.False(t, svc.CheckAPIKey(""))

	assert.False(t, NewService(Config{}).APIKeyConfigured())
	assert.False(t, NewService(Config{}).CheckAPIKey("machine-key"))
}
