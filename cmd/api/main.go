package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/zhouzirui/nova-ai/backend/internal/config"
	"github.com/zhouzirui/nova-ai/backend/internal/handler"
	"github.com/zhouzirui/nova-ai/backend/internal/handler/status"
	"github.com/zhouzirui/nova-ai/backend/internal/service/ai"
	"github.com/zhouzirui/nova-ai/backend/internal/service/chat"
	"github.com/zhouzirui/nova-ai/backend/internal/service/document"
	"github.com/zhouzirui/nova-ai/backend/internal/service/speech"
	"github.com/zhouzirui/nova-ai/backend/internal/service/translate"
	"github.com/zhouzirui/nova-ai/backend/internal/service/voice"
	"github.com/zhouzirui/nova-ai/backend/internal/service/weather"
	"github.com/zhouzirui/nova-ai/backend/pkg/log"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		_ = log.Init("info", "console", "")
		log.Fatal("failed to load configuration", err)
	}

	if err := log.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.OutputPath); err != nil {
		panic(err)
	}
	defer log.Sync()

	if envErr != nil {
		log.Warnf("failed to load .env file, continuing with system environment variables only: %v", envErr)
	}

	report := status.Report{
		Provider:       string(cfg.AI.Provider),
		Model:          cfg.AI.ModelName(),
		TargetLanguage: cfg.Translation.TargetLanguage,
		Speech:         cfg.Speech.Enabled,
		Weather:        cfg.Weather.APIKey != "",
	}

	// Without a generation backend the server still starts so the banner
	// can be shown; chat endpoints answer 503.
	var (
		generator   chat.Generator
		postProcess chat.PostProcessor
	)
	aiService, err := ai.NewService(ctx, cfg.AI)
	if err != nil {
		log.Error("generation backend unavailable", err)
		report.Banner = cfg.AI.Banner()
		if !errors.Is(err, config.ErrGenerationKeyMissing) {
			report.Banner = fmt.Sprintf("⚠️ AI service unavailable: %v", err)
		}
	} else {
		generator = aiService
		report.Ready = true
		log.Infof("AI service initialized, provider=%s model=%s", cfg.AI.Provider, cfg.AI.ModelName())

		var translator translate.Translator
		if cfg.Translation.Enabled {
			llmTranslator, err := translate.NewLLMTranslator(ctx, aiService.ChatModel())
			if err != nil {
				log.Error("failed to initialize translator, replies will not be translated", err)
			} else {
				translator = llmTranslator
			}
		}
		translation := translate.NewService(translate.Config{
			Enabled:        cfg.Translation.Enabled,
			TargetLanguage: cfg.Translation.TargetLanguage,
		}, translate.WhatlangDetector{}, translator)
		report.Translation = translation.Enabled()
		postProcess = translation
	}

	documents := document.NewContext()
	extractor := document.NewExtractor(document.NewTikaClient(cfg.Document.TikaURL))
	if cfg.Document.TikaURL != "" {
		log.Infof("document extraction delegates non-PDF files to Tika at %s", cfg.Document.TikaURL)
	}

	chatService := chat.NewService(chat.NewStore(), generator, postProcess, documents)

	speechService := speech.NewService(cfg.Speech.Model())
	if speechService.Enabled() {
		log.Info("speech service initialized")
	} else {
		log.Warnf("speech credentials not configured, voice input and read-aloud are disabled")
	}

	weatherClient := weather.NewClient(cfg.Weather.APIKey, cfg.Weather.BaseURL)
	if !weatherClient.Enabled() {
		log.Warnf("WEATHER_API_KEY not set, weather lookups will report the missing key")
	}

	router := handler.NewRouter(handler.Dependencies{
		Chat:      chatService,
		Extractor: extractor,
		Documents: documents,
		Speech:    speechService,
		Speaker:   voice.NewSpeaker(speechService, ""),
		Weather:   weatherClient,
		Status:    report,
	})

	startServer(ctx, cfg.Server, router)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Infof("Nova AI backend listening on %s", addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatal("server error", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
