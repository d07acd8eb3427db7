package document

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// TikaClient extracts text through an Apache Tika server.
type TikaClient struct {
	serverURL  string
	httpClient *http.Client
}

// NewTikaClient returns nil when serverURL is empty.
func NewTikaClient(serverURL string) *TikaClient {
	serverURL = strings.TrimRight(strings.TrimSpace(serverURL), "/")
	if serverURL == "" {
		return nil
	}
	return &TikaClient{
		serverURL:  serverURL,
		httpClient: http.DefaultClient,
	}
}

// ExtractText PUTs body to /tika and returns the plain-text rendition.
func (c *TikaClient) ExtractText(ctx context.Context, body io.Reader, contentType string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.serverURL+"/tika", body)
	if err != nil {
		return "", fmt.Errorf("create tika request: %w", err)
	}
	req.Header.Set("Accept", "text/plain")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("call tika: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("tika returned [%d]: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	text, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read tika response: %w", err)
	}
	return string(text), nil
}
