package voice

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// ResponsePlayer plays audio by streaming it to an HTTP client.
type ResponsePlayer struct {
	w http.ResponseWriter
	r *http.Request
}

// NewResponsePlayer plays into w as the response to r.
func NewResponsePlayer(w http.ResponseWriter, r *http.Request) *ResponsePlayer {
	return &ResponsePlayer{w: w, r: r}
}

// Play implements Player.
func (p *ResponsePlayer) Play(_ context.Context, path, format string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}

	p.w.Header().Set("Content-Type", contentTypeFor(format))
	p.w.Header().Set("Cache-Control", "no-store")
	http.ServeContent(p.w, p.r, "speech."+format, info.ModTime(), f)
	return nil
}

func contentTypeFor(format string) string {
	switch strings.ToLower(format) {
	case "mp3":
		return "audio/mpeg"
	case "ogg_opus":
		return "audio/ogg"
	case "pcm":
		return "audio/L16"
	}
	if t := mime.TypeByExtension("." + format); t != "" {
		return t
	}
	return "application/octet-stream"
}

// CommandPlayer plays audio with a local command line player such as ffplay.
type CommandPlayer struct {
	Command string
	Args    []string
}

// DefaultCommandPlayer plays through ffplay without a window.
func DefaultCommandPlayer() *CommandPlayer {
	return &CommandPlayer{Command: "ffplay", Args: []string{"-nodisp", "-autoexit", "-loglevel", "quiet"}}
}

// Play implements Player.
func (p *CommandPlayer) Play(ctx context.Context, path, _ string) error {
	args := append(append([]string{}, p.Args...), filepath.Clean(path))
	cmd := exec.CommandContext(ctx, p.Command, args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", p.Command, err, strings.TrimSpace(string(out)))
	}
	return nil
}
