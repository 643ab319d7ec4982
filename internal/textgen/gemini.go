package textgen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/hushwire/hush-core/internal/config"
	"github.com/hushwire/hush-core/internal/httpx"
)

const (
	maxAttempts     = 3
	maxOutputTokens = 4096
)

// GeminiClient implements both text passes against the Gemini
// generateContent API.
type GeminiClient struct {
	cfg    config.TextGenConfig
	client *http.Client
}

func NewGeminiClient(cfg config.TextGenConfig) *GeminiClient {
	return &GeminiClient{cfg: cfg, client: httpx.Client()}
}

// Warmup pre-establishes the TLS connection during the hold window.
func (g *GeminiClient) Warmup(ctx context.Context) error {
	return httpx.Warmup(ctx, g.cfg.Endpoint)
}

func (g *GeminiClient) Polish(ctx context.Context, transcript, appContext string, onProgress func(float64)) (string, error) {
	if strings.TrimSpace(transcript) == "" {
		return "", ErrEmptyInput
	}
	return g.generate(ctx, buildPolishPrompt(transcript, appContext), "", onProgress)
}

func (g *GeminiClient) Rewrite(ctx context.Context, instruction, selected string, onProgress func(float64)) (string, error) {
	if strings.TrimSpace(instruction) == "" || selected == "" {
		return "", ErrEmptyInput
	}
	return g.generate(ctx, buildRewritePrompt(instruction, selected), rewriteSystemInstruction, onProgress)
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents          []geminiContent   `json:"contents"`
	SystemInstruction *geminiContent    `json:"systemInstruction,omitempty"`
	GenerationConfig  *generationConfig `json:"generationConfig,omitempty"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature,omitempty"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text *string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

func (g *GeminiClient) generate(ctx context.Context, prompt, system string, onProgress func(float64)) (string, error) {
	if onProgress != nil {
		onProgress(0)
	}

	payload := geminiRequest{
		Contents: []geminiContent{{Role: "user", Parts: []geminiPart{{Text: prompt}}}},
		GenerationConfig: &generationConfig{
			Temperature:     g.cfg.Temperature,
			MaxOutputTokens: maxOutputTokens,
		},
	}
	if system != "" {
		payload.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: system}}}
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	url := fmt.Sprintf("%s/%s:generateContent", g.cfg.Endpoint, g.cfg.Model)

	text, err := httpx.Do(ctx, maxAttempts, func(ctx context.Context) (string, error) {
		return g.attempt(ctx, url, body)
	})
	if err != nil {
		return "", err
	}
	if onProgress != nil {
		onProgress(1)
	}
	return text, nil
}

func (g *GeminiClient) attempt(ctx context.Context, url string, body []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.cfg.APIKey)

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

	var decoded geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	if len(decoded.Candidates) == 0 || len(decoded.Candidates[0].Content.Parts) == 0 ||
		decoded.Candidates[0].Content.Parts[0].Text == nil {
		return "", fmt.Errorf("%w: empty response", ErrInvalidResponse)
	}
	text := strings.TrimSpace(*decoded.Candidates[0].Content.Parts[0].Text)
	if text == "" {
		return "", fmt.Errorf("%w: empty response", ErrInvalidResponse)
	}
	return text, nil
}
