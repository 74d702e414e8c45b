package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestJWTConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     JWTConfig
		wantErr string
	}{
		{name: "valid", cfg: JWTConfig{Secret: "s", ExpirationHours: 24}},
		{name: "missing secret", cfg: JWTConfig{ExpirationHours: 24}, wantErr: "JWT_SECRET is required"},
		{name: "zero hours", cfg: JWTConfig{Secret: "s"}, wantErr: "at least 1 hour"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestJWTConfig_TTL(t *testing.T) {
	cfg := JWTConfig{Secret: "s", ExpirationHours: 2}
	assert.Equal(t, 2*time.Hour, cfg.TTL())
}
