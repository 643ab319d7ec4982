package transcribe

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/hushwire/hush-core/internal/capture"
	"github.com/hushwire/hush-core/internal/config"
	"github.com/hushwire/hush-core/internal/httpx"
)

const maxAttempts = 3

// GroqTranscriber calls Groq's OpenAI-compatible audio transcription
// endpoint with a Whisper-family model.
type GroqTranscriber struct {
	cfg    config.TranscribeConfig
	client *http.Client
}

func NewGroqTranscriber(cfg config.TranscribeConfig) *GroqTranscriber {
	return &GroqTranscriber{cfg: cfg, client: httpx.Client()}
}

// Warmup pre-establishes the TLS connection so the post-release request
// reuses a pooled connection.
func (g *GroqTranscriber) Warmup(ctx context.Context) error {
	base := strings.TrimSuffix(g.cfg.Endpoint, "/audio/transcriptions")
	return httpx.Warmup(ctx, base+"/models")
}

func (g *GroqTranscriber) Transcribe(ctx context.Context, clip capture.Clip, onProgress func(float64)) (string, error) {
	if len(clip.WAV) == 0 {
		return "", ErrEmptyAudio
	}
	if onProgress != nil {
		onProgress(0)
	}

	text, err := httpx.Do(ctx, maxAttempts, func(ctx context.Context) (string, error) {
		return g.attempt(ctx, clip)
	})
	if err != nil {
		return "", err
	}
	if onProgress != nil {
		onProgress(1)
	}
	return text, nil
}

func (g *GroqTranscriber) attempt(ctx context.Context, clip capture.Clip) (string, error) {
	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	if err := form.WriteField("model", g.cfg.Model); err != nil {
		return "", fmt.Errorf("build form: %w", err)
	}
	if err := form.WriteField("response_format", "text"); err != nil {
		return "", fmt.Errorf("build form: %w", err)
	}
	if lang := strings.TrimSpace(g.cfg.Language); lang != "" {
		if err := form.WriteField("language", lang); err != nil {
			return "", fmt.Errorf("build form: %w", err)
		}
	}
	part, err := form.CreateFormFile("file", "audio.wav")
	if err != nil {
		return "", fmt.Errorf("build form: %w", err)
	}
	if _, err := part.Write(clip.WAV); err != nil {
		return "", fmt.Errorf("build form: %w", err)
	}
	if err := form.Close(); err != nil {
		return "", fmt.Errorf("build form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.cfg.Endpoint, &body)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+g.cfg.APIKey)
	req.Header.Set("Content-Type", form.FormDataContentType())

	resp, err := g.client.Do(req)
	if err != nil {
		return "", httpx.Retryable(fmt.Errorf("%w: %v", ErrProvider, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("%w: HTTP %d", ErrProvider, resp.StatusCode)
		if httpx.RetryableStatus(resp.StatusCode) {
			return "", httpx.Retryable(err)
		}
		return "", err
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecode, err)
	}
	text := strings.TrimSpace(string(payload))
	if text == "" {
		return "", fmt.Errorf("%w: empty response", ErrProvider)
	}
	return text, nil
}
