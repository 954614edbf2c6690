package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medvault/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Port)
	assert.Equal(t, 5, cfg.DB.ConnectRetries)
	assert.Equal(t, "single", cfg.CardParser.Mode)
	assert.Equal(t, []string{"eng"}, cfg.OCR.Languages)
	assert.Equal(t, 2, cfg.Terminology.MinQueryLength)
	assert.Equal(t, 10, cfg.Terminology.DefaultLimit)
	assert.Equal(t, 50, cfg.Terminology.MaxLimit)
	assert.Equal(t, 72*time.Hour, cfg.Share.DefaultExpiry)
	assert.Equal(t, 720*time.Hour, cfg.Share.MaxExpiry)
	assert.Equal(t, 6, cfg.Share.OTPLength)
	assert.Equal(t, 10*time.Minute, cfg.Share.OTPTTL)
	assert.Equal(t, time.Minute, cfg.Share.OTPResendInterval)
	assert.Equal(t, 5, cfg.Share.OTPMaxAttempts)
	assert.Equal(t, 30*time.Minute, cfg.Share.AccessTokenTTL)
	assert.Len(t, cfg.CORS.AllowedOrigins, 3)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("MEDVAULT_DB_HOST", "db.internal")
	t.Setenv("MEDVAULT_CARD_PARSER_MODE", "fallback")
	t.Setenv("MEDVAULT_CARD_PARSER_SECONDARY_PROVIDER", "claude")
	t.Setenv("MEDVAULT_TERMINOLOGY_CACHE_TTL", "90s")
	t.Setenv("MEDVAULT_CORS_ALLOWED_ORIGINS", " https://app.example.com , ,https://admin.example.com")
	t.Setenv("MEDVAULT_OCR_LANGUAGES", "eng,spa")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "db.internal", cfg.DB.Host)
	assert.Equal(t, "fallback", cfg.CardParser.Mode)
	require.NotNil(t, cfg.CardParser.SecondaryConfig())
	assert.Equal(t, "claude", cfg.CardParser.SecondaryConfig().Provider)
	assert.Nil(t, cfg.CardParser.TertiaryConfig())
	assert.Equal(t, 90*time.Second, cfg.Terminology.CacheTTL)
	assert.Equal(t, []string{"https://app.example.com", "https://admin.example.com"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, []string{"eng", "spa"}, cfg.OCR.Languages)
}

func TestLoad_PlatformPort(t *testing.T) {
	t.Setenv("PORT", "9090")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Server.Port)

	t.Setenv("MEDVAULT_SERVER_PORT", ":7070")
	cfg, err = config.Load()
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.Server.Port)
}

func TestLoad_RejectsBadOTPLength(t *testing.T) {
	t.Setenv("MEDVAULT_SHARE_OTP_LENGTH", "2")

	cfg, err := config.Load()
	assert.Nil(t, cfg)
	assert.ErrorContains(t, err, "otp_length")
}

func TestCardParserConfig_PrimaryDefaultsToOCR(t *testing.T) {
	cfg := config.CardParserConfig{Primary: config.CardParserProviderConfig{TimeoutSecs: 30}}

	primary := cfg.PrimaryConfig()
	assert.Equal(t, "ocr", primary.Provider)
	assert.Equal(t, 30, primary.TimeoutSecs)
	assert.Empty(t, cfg.Primary.Provider)
}

func TestCardParserConfig_ExplicitPrimary(t *testing.T) {
	cfg := config.CardParserConfig{
		Primary: config.CardParserProviderConfig{Provider: "claude", APIKey: "sk-primary"},
	}

	primary := cfg.PrimaryConfig()
	assert.Equal(t, "claude", primary.Provider)
	assert.Equal(t, "sk-primary", primary.APIKey)
}

func TestEnvName(t *testing.T) {
	assert.Equal(t, "MEDVAULT_CARD_PARSER_PRIMARY_API_KEY", config.EnvName("card_parser.primary.api_key"))
}
