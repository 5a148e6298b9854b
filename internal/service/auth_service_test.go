package service_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"albayan/internal/config"
	"albayan/internal/domain"
	"albayan/internal/service"
)

func TestAuthService_IssueAndValidate(t *testing.T) {
	svc := service.NewAuthService(config.AuthConfig{Secret: "s3cret", Issuer: "albayan"})

	token, expiry, err := svc.IssueToken("report-bot", time.Hour)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiry, 5*time.Second)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "report-bot", claims.Subject)
}

func TestAuthService_ValidateToken_Rejects(t *testing.T) {
	issuer := service.NewAuthService(config.AuthConfig{Secret: "s3cret", Issuer: "albayan"})
	valid, _, err := issuer.IssueToken("bot", time.Hour)
	require.NoError(t, err)
	expired, _, err := issuer.IssueToken("bot", -time.Minute)
	require.NoError(t, err)

	tests := []struct {
		name  string
		cfg   config.AuthConfig
		token string
	}{
		{"wrong secret", config.AuthConfig{Secret: "other", Issuer: "albayan"}, valid},
		{"wrong issuer", config.AuthConfig{Secret: "s3cret", Issuer: "someone-else"}, valid},
		{"expired", config.AuthConfig{Secret: "s3cret", Issuer: "albayan"}, expired},
		{"garbage", config.AuthConfig{Secret: "s3cret", Issuer: "albayan"}, "not.a.token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.NewAuthService(tt.cfg).ValidateToken(tt.token)
			assert.ErrorIs(t, err, domain.ErrUnauthorized)
		})
	}
}
