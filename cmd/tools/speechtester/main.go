package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/zhouzirui/nova-ai/backend/internal/config"
	"github.com/zhouzirui/nova-ai/backend/internal/service/speech"
	"github.com/zhouzirui/nova-ai/backend/internal/service/voice"
	"github.com/zhouzirui/nova-ai/backend/pkg/log"
)

func main() {
	if err := log.Init("debug", "console", ""); err != nil {
		panic(err)
	}
	defer log.Sync()

	if err := godotenv.Load(); err != nil {
		log.Warnf("failed to load .env, using system environment variables: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load configuration", err)
	}

	mode := flag.String("mode", "", "test mode: asr, tts or speak")
	audioPath := flag.String("audio", "", "input audio file for asr")
	text := flag.String("text", "", "text to synthesize for tts and speak")
	outputPath := flag.String("out", "", "output file for tts (derived from the format when empty)")
	format := flag.String("format", "", "audio format (asr: input format, tts: output format)")
	voiceID := flag.String("voice", "", "TTS voice id, defaults to SPEECH_TTS_VOICE")
	timeout := flag.Duration("timeout", 45*time.Second, "request timeout")
	flag.Parse()

	switch *mode {
	case "asr", "tts", "speak":
	default:
		flag.Usage()
		log.Fatalf("choose a test mode with -mode=asr, -mode=tts or -mode=speak")
	}

	if !cfg.Speech.Enabled {
		log.Fatalf("speech is not configured, set SPEECH_APP_ID and SPEECH_ACCESS_TOKEN")
	}

	speechCfg := cfg.Speech.Model()
	if *voiceID != "" {
		speechCfg.TTSVoice = *voiceID
	}
	if *format != "" && *mode != "asr" {
		speechCfg.TTSFormat = *format
	}
	svc := speech.NewService(speechCfg)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	switch *mode {
	case "asr":
		runASR(ctx, svc, *audioPath, *format)
	case "tts":
		runTTS(ctx, svc, *text, speechCfg.TTSFormat, *outputPath)
	case "speak":
		runSpeak(ctx, svc, *text)
	}
}

func runASR(ctx context.Context, svc *speech.Service, audioPath, format string) {
	if audioPath == "" {
		log.Fatalf("asr mode needs an audio file via -audio")
	}

	file, err := os.Open(audioPath)
	if err != nil {
		log.Fatalf("failed to open audio file: %v", err)
	}
	defer file.Close()

	if format == "" {
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(audioPath)), ".")
		if format == "" {
			format = "wav"
		}
	}

	log.Infof("[speech] starting ASR test: file=%s format=%s", audioPath, format)

	resp, err := svc.Transcribe(ctx, file, format)
	if err != nil {
		log.Fatalf("ASR failed: %v", err)
	}

	log.Infof("[speech] ASR succeeded: request=%s text=%q duration=%dms", resp.RequestID, resp.Text, resp.Duration)
}

func runTTS(ctx context.Context, svc *speech.Service, text, format, outputPath string) {
	if strings.TrimSpace(text) == "" {
		log.Fatalf("tts mode needs text via -text")
	}

	if outputPath == "" {
		outputPath = fmt.Sprintf("tts-output-%d.%s", time.Now().Unix(), format)
	}

	log.Infof("[speech] starting TTS test: format=%s", format)

	resp, err := svc.Synthesize(ctx, text)
	if err != nil {
		log.Fatalf("TTS failed: %v", err)
	}

	if err := os.WriteFile(outputPath, resp.AudioData, 0o644); err != nil {
		log.Fatalf("failed to write audio file: %v", err)
	}

	log.Infof("[speech] TTS succeeded: out=%s bytes=%d duration=%dms", outputPath, len(resp.AudioData), resp.Duration)
}

// runSpeak plays the synthesized text through the local audio player,
// the same path the read-aloud control takes on a desktop install.
func runSpeak(ctx context.Context, svc *speech.Service, text string) {
	speaker := voice.NewSpeaker(svc, "")
	if err := speaker.ReadAloud(ctx, text, voice.DefaultCommandPlayer()); err != nil {
		log.Fatalf("read aloud failed: %v", err)
	}
	log.Info("[voice] playback finished")
}
