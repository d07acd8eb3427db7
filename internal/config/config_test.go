package config

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("GENAI_PROVIDER", "")
	t.Setenv("GENAI_API_KEY", "key")
	t.Setenv("GENAI_MODEL", "")
	t.Setenv("TARGET_LANGUAGE", "")
	t.Setenv("TRANSLATION_ENABLED", "")
	t.Setenv("SPEECH_APP_ID", "")
	t.Setenv("SPEECH_ACCESS_TOKEN", "")
	t.Setenv("SPEECH_API_KEY", "")
	t.Setenv("SPEECH_TIMEOUT", "")
	t.Setenv("WEATHER_API_KEY", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, ProviderGemini, cfg.AI.Provider)
	assert.Equal(t, "gemini-1.5-flash", cfg.AI.Model)
	assert.True(t, cfg.AI.Enabled())
	assert.True(t, cfg.Translation.Enabled)
	assert.Equal(t, "en", cfg.Translation.TargetLanguage)
	assert.False(t, cfg.Speech.Enabled)
	assert.Equal(t, 30*time.Second, cfg.Speech.Timeout)
	assert.Equal(t, "", cfg.Weather.APIKey)
	assert.Equal(t, "http://api.weatherstack.com/current", cfg.Weather.BaseURL)
}

func TestMissingGenerationKeyIsReportedNotFatalToLoad(t *testing.T) {
	t.Setenv("GENAI_PROVIDER", "gemini")
	t.Setenv("GENAI_API_KEY", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.AI.Enabled())
	assert.True(t, errors.Is(cfg.AI.Validate(), ErrGenerationKeyMissing))
}

func TestArkProviderNeedsModelAndCredentials(t *testing.T) {
	cfg := AIConfig{Provider: ProviderArk, Ark: ArkConfig{APIKey: "k"}}
	assert.False(t, cfg.Enabled())

	cfg.Ark.Model = "ep-123"
	assert.True(t, cfg.Enabled())

	cfg.Ark = ArkConfig{Model: "ep-123", AccessKey: "ak"}
	assert.False(t, cfg.Enabled())
	cfg.Ark.SecretKey = "sk"
	assert.True(t, cfg.Enabled())
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"PORT":                "80 80",
		"GENAI_PROVIDER":      "bard",
		"GENAI_TEMPERATURE":   "warm",
		"TRANSLATION_ENABLED": "maybe",
		"SPEECH_TIMEOUT":      "soon",
	}

	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestServerAddrAcceptsHostPort(t *testing.T) {
	t.Setenv("PORT", "127.0.0.1:9000")
	cfg, err := loadServerConfig()
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", cfg.Addr)
}

func TestBannerFollowsProvider(t *testing.T) {
	assert.Contains(t, AIConfig{Provider: ProviderGemini}.Banner(), "Missing Gemini API Key")
	assert.Contains(t, AIConfig{Provider: ProviderArk}.Banner(), "Missing Ark credentials")
	assert.Equal(t, "ep-1", AIConfig{Provider: ProviderArk, Model: "gemini", Ark: ArkConfig{Model: "ep-1"}}.ModelName())
}

func TestSpeechModelCarriesLanguages(t *testing.T) {
	m := SpeechConfig{AppID: "a", AccessToken: "t", ASRLanguage: "en-US", TTSLanguage: "en", Timeout: time.Second}.Model()
	assert.Equal(t, "a", m.AppID)
	assert.Equal(t, "en-US", m.ASRLanguage)
	assert.Equal(t, "en", m.TTSLanguage)
	assert.Equal(t, time.Second, m.Timeout)
}
