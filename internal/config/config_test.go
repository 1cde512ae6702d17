package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsAndEnvOverride(t *testing.T) {
	t.Setenv("PORT", "9100")
	t.Setenv("RANKING_PRODUCT", "FIBRA")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Port)
	assert.Equal(t, "FIBRA", cfg.RankingProduct)
	assert.Equal(t, 8, cfg.JWTExpirationHours)
	assert.Equal(t, int64(10<<20), cfg.MediaMaxBytes)
}

func TestAllowedMediaHosts(t *testing.T) {
	cfg := &Config{MediaAllowedHosts: " res.cloudinary.com, Images.Cloudinary.com ,,"}
	assert.Equal(t, []string{"res.cloudinary.com", "images.cloudinary.com"}, cfg.AllowedMediaHosts())
}

func TestAllowedOrigins(t *testing.T) {
	cfg := &Config{CORSOrigins: "https://crm.example.com, http://localhost:5173"}
	assert.Equal(t, []string{"https://crm.example.com", "http://localhost:5173"}, cfg.AllowedOrigins())
	assert.Nil(t, (&Config{}).AllowedOrigins())
}
