package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	speechmodel "github.com/zhouzirui/nova-ai/backend/internal/model/speech"
)

// ErrGenerationKeyMissing marks the fatal startup condition: without a
// generation credential no chat can be served.
var ErrGenerationKeyMissing = errors.New("missing generation API key: set GENAI_API_KEY (or ARK credentials when GENAI_PROVIDER=ark)")

// Config aggregates every configuration section of the service.
type Config struct {
	Server      ServerConfig
	Log         LogConfig
	AI          AIConfig
	Translation TranslationConfig
	Speech      SpeechConfig
	Weather     WeatherConfig
	Document    DocumentConfig
}

// Load reads configuration from the process environment.
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	ai, err := loadAIConfig()
	if err != nil {
		return nil, err
	}

	translation, err := loadTranslationConfig()
	if err != nil {
		return nil, err
	}

	speech, err := loadSpeechConfig()
	if err != nil {
		return nil, err
	}

	return &Config{
		Server:      server,
		Log:         loadLogConfig(),
		AI:          ai,
		Translation: translation,
		Speech:      speech,
		Weather:     loadWeatherConfig(),
		Document:    loadDocumentConfig(),
	}, nil
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr string
}

func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// ":8080" or "127.0.0.1:8080"
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// LogConfig configures pkg/log.
type LogConfig struct {
	Level      string
	Format     string
	OutputPath string
}

func loadLogConfig() LogConfig {
	return LogConfig{
		Level:      getEnvOrDefault("LOG_LEVEL", "info"),
		Format:     getEnvOrDefault("LOG_FORMAT", "console"),
		OutputPath: strings.TrimSpace(os.Getenv("LOG_OUTPUT_PATH")),
	}
}

// Provider names a generation backend.
type Provider string

const (
	ProviderGemini Provider = "gemini"
	ProviderArk    Provider = "ark"
)

// AIConfig describes the generation backend.
type AIConfig struct {
	Provider    Provider
	APIKey      string
	Model       string
	BaseURL     string
	Temperature *float64
	MaxTokens   *int
	Ark         ArkConfig
}

// ArkConfig carries Volcengine Ark credentials for the ark provider.
type ArkConfig struct {
	APIKey    string
	AccessKey string
	SecretKey string
	Model     string
	BaseURL   string
	Region    string
}

// Enabled reports whether the selected provider has the credentials it needs.
func (c AIConfig) Enabled() bool {
	switch c.Provider {
	case ProviderArk:
		return c.Ark.Model != "" && (c.Ark.APIKey != "" || (c.Ark.AccessKey != "" && c.Ark.SecretKey != ""))
	default:
		return c.APIKey != "" && c.Model != ""
	}
}

// Validate returns ErrGenerationKeyMissing when Enabled is false.
func (c AIConfig) Validate() error {
	if !c.Enabled() {
		return ErrGenerationKeyMissing
	}
	return nil
}

// Banner is the persistent notice shown while the generation key is missing.
func (c AIConfig) Banner() string {
	if c.Provider == ProviderArk {
		return "⚠️ Missing Ark credentials! Check your .env file."
	}
	return "⚠️ Missing Gemini API Key! Check your .env file."
}

// ModelName returns the model id of the selected provider.
func (c AIConfig) ModelName() string {
	if c.Provider == ProviderArk {
		return c.Ark.Model
	}
	return c.Model
}

func loadAIConfig() (AIConfig, error) {
	temperature, err := parseOptionalFloatEnv("GENAI_TEMPERATURE")
	if err != nil {
		return AIConfig{}, err
	}

	maxTokens, err := parseOptionalIntEnv("GENAI_MAX_TOKENS")
	if err != nil {
		return AIConfig{}, err
	}

	provider := Provider(strings.ToLower(getEnvOrDefault("GENAI_PROVIDER", string(ProviderGemini))))
	switch provider {
	case ProviderGemini, ProviderArk:
	default:
		return AIConfig{}, fmt.Errorf("invalid GENAI_PROVIDER value %q", provider)
	}

	return AIConfig{
		Provider:    provider,
		APIKey:      strings.TrimSpace(os.Getenv("GENAI_API_KEY")),
		Model:       getEnvOrDefault("GENAI_MODEL", "gemini-1.5-flash"),
		BaseURL:     getEnvOrDefault("GENAI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta/openai/"),
		Temperature: temperature,
		MaxTokens:   maxTokens,
		Ark: ArkConfig{
			APIKey:    strings.TrimSpace(os.Getenv("ARK_API_KEY")),
			AccessKey: strings.TrimSpace(os.Getenv("ARK_ACCESS_KEY")),
			SecretKey: strings.TrimSpace(os.Getenv("ARK_SECRET_KEY")),
			Model:     strings.TrimSpace(os.Getenv("ARK_MODEL")),
			BaseURL:   getEnvOrDefault("ARK_BASE_URL", "https://ark.cn-beijing.volces.com/api/v3"),
			Region:    getEnvOrDefault("ARK_REGION", "cn-beijing"),
		},
	}, nil
}

// TranslationConfig controls reply post-processing.
type TranslationConfig struct {
	Enabled        bool
	TargetLanguage string // ISO 639-1
}

func loadTranslationConfig() (TranslationConfig, error) {
	enabled, err := parseBoolEnv("TRANSLATION_ENABLED", true)
	if err != nil {
		return TranslationConfig{}, err
	}

	return TranslationConfig{
		Enabled:        enabled,
		TargetLanguage: strings.ToLower(getEnvOrDefault("TARGET_LANGUAGE", "en")),
	}, nil
}

// SpeechConfig describes the Volcengine speech services.
type SpeechConfig struct {
	AppID          string
	AccessToken    string
	ConcurrentMode bool
	ASRLanguage    string
	TTSVoice       string
	TTSSpeed       float32
	TTSVolume      float32
	TTSLanguage    string
	TTSFormat      string
	Timeout        time.Duration
	Enabled        bool
}

// Model converts the section into the speech client configuration.
func (c SpeechConfig) Model() *speechmodel.SpeechConfig {
	return &speechmodel.SpeechConfig{
		AppID:          c.AppID,
		AccessToken:    c.AccessToken,
		ConcurrentMode: c.ConcurrentMode,
		ASRLanguage:    c.ASRLanguage,
		TTSVoice:       c.TTSVoice,
		TTSSpeed:       c.TTSSpeed,
		TTSVolume:      c.TTSVolume,
		TTSLanguage:    c.TTSLanguage,
		TTSFormat:      c.TTSFormat,
		Timeout:        c.Timeout,
	}
}

func loadSpeechConfig() (SpeechConfig, error) {
	timeout, err := parseOptionalIntEnv("SPEECH_TIMEOUT")
	if err != nil {
		return SpeechConfig{}, err
	}
	timeoutSeconds := 30
	if timeout != nil {
		timeoutSeconds = *timeout
	}

	speed, err := parseOptionalFloat32Env("SPEECH_TTS_SPEED")
	if err != nil {
		return SpeechConfig{}, err
	}
	ttsSpeed := float32(1.0)
	if speed != nil {
		ttsSpeed = *speed
	}

	volume, err := parseOptionalFloat32Env("SPEECH_TTS_VOLUME")
	if err != nil {
		return SpeechConfig{}, err
	}
	ttsVolume := float32(1.0)
	if volume != nil {
		ttsVolume = *volume
	}

	concurrent, err := parseBoolEnv("SPEECH_ASR_CONCURRENT", false)
	if err != nil {
		return SpeechConfig{}, err
	}

	appID := strings.TrimSpace(os.Getenv("SPEECH_APP_ID"))
	accessToken := strings.TrimSpace(os.Getenv("SPEECH_ACCESS_TOKEN"))
	if accessToken == "" {
		accessToken = strings.TrimSpace(os.Getenv("SPEECH_API_KEY"))
	}

	return SpeechConfig{
		AppID:          appID,
		AccessToken:    accessToken,
		ConcurrentMode: concurrent,
		ASRLanguage:    getEnvOrDefault("SPEECH_ASR_LANGUAGE", "en-US"),
		TTSVoice:       getEnvOrDefault("SPEECH_TTS_VOICE", "en_female_amy_jupiter_bigtts"),
		TTSSpeed:       ttsSpeed,
		TTSVolume:      ttsVolume,
		TTSLanguage:    getEnvOrDefault("SPEECH_TTS_LANGUAGE", "en"),
		TTSFormat:      getEnvOrDefault("SPEECH_TTS_FORMAT", "mp3"),
		Timeout:        time.Duration(timeoutSeconds) * time.Second,
		Enabled:        appID != "" && accessToken != "",
	}, nil
}

// WeatherConfig describes the weatherstack provider.
type WeatherConfig struct {
	APIKey  string
	BaseURL string
}

func loadWeatherConfig() WeatherConfig {
	return WeatherConfig{
		APIKey:  strings.TrimSpace(os.Getenv("WEATHER_API_KEY")),
		BaseURL: getEnvOrDefault("WEATHER_BASE_URL", "http://api.weatherstack.com/current"),
	}
}

// DocumentConfig describes document extraction.
type DocumentConfig struct {
	TikaURL string
}

func loadDocumentConfig() DocumentConfig {
	return DocumentConfig{TikaURL: strings.TrimRight(strings.TrimSpace(os.Getenv("TIKA_URL")), "/")}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseBoolEnv(key string, defaultValue bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return val, nil
}

func parseOptionalFloatEnv(key string) (*float64, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalFloat32Env(key string) (*float32, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	result := float32(val)
	return &result, nil
}
