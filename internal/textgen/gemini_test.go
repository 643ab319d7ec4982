package textgen

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hushwire/hush-core/internal/config"
)

func geminiConfig(endpoint string) config.TextGenConfig {
	return config.TextGenConfig{
		Mode:        "gemini",
		Endpoint:    endpoint,
		APIKey:      "test-key",
		Model:       "gemini-2.5-flash-lite-preview-09-2025",
		Temperature: 0.3,
	}
}

func candidateResponse(text string) string {
	body, _ := json.Marshal(map[string]any{
		"candidates": []map[string]any{{
			"content": map[string]any{
				"parts": []map[string]string{{"text": text}},
			},
		}},
	})
	return string(body)
}

func TestGeminiPolishSuccess(t *testing.T) {
	var gotKey, gotPath string
	var gotBody geminiRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("x-goog-api-key")
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Write([]byte(candidateResponse("  Hello world.  ")))
	}))
	defer server.Close()

	client := NewGeminiClient(geminiConfig(server.URL))
	var progress []float64
	text, err := client.Polish(context.Background(), "um hello world", "Slack", func(p float64) {
		progress = append(progress, p)
	})
	require.NoError(t, err)
	assert.Equal(t, "Hello world.", text)
	assert.Equal(t, "test-key", gotKey)
	assert.Contains(t, gotPath, "gemini-2.5-flash-lite-preview-09-2025:generateContent")
	assert.Equal(t, []float64{0, 1}, progress)

	require.Len(t, gotBody.Contents, 1)
	require.Len(t, gotBody.Contents[0].Parts, 1)
	assert.Contains(t, gotBody.Contents[0].Parts[0].Text, "um hello world")
	assert.Contains(t, gotBody.Contents[0].Parts[0].Text, "Slack")
	assert.Nil(t, gotBody.SystemInstruction)
	require.NotNil(t, gotBody.GenerationConfig)
	assert.Equal(t, maxOutputTokens, gotBody.GenerationConfig.MaxOutputTokens)
}

func TestGeminiRewriteSendsSystemInstruction(t *testing.T) {
	var gotBody geminiRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Write([]byte(candidateResponse("shorter text")))
	}))
	defer server.Close()

	client := NewGeminiClient(geminiConfig(server.URL))
	text, err := client.Rewrite(context.Background(), "make it shorter", "a very long paragraph", nil)
	require.NoError(t, err)
	assert.Equal(t, "shorter text", text)
	require.NotNil(t, gotBody.SystemInstruction)
	assert.Contains(t, gotBody.SystemInstruction.Parts[0].Text, "text editing assistant")
	assert.Contains(t, gotBody.Contents[0].Parts[0].Text, "make it shorter")
}

func TestGeminiRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(candidateResponse("done")))
	}))
	defer server.Close()

	client := NewGeminiClient(geminiConfig(server.URL))
	text, err := client.Polish(context.Background(), "hello", "", nil)
	require.NoError(t, err)
	assert.Equal(t, "done", text)
	assert.Equal(t, int32(2), calls.Load())
}

func TestGeminiFailsFastOnClientError(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	client := NewGeminiClient(geminiConfig(server.URL))
	_, err := client.Polish(context.Background(), "hello", "", nil)
	require.ErrorIs(t, err, ErrProvider)
	assert.Equal(t, int32(1), calls.Load())
}

func TestGeminiEmptyCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[]}`))
	}))
	defer server.Close()

	client := NewGeminiClient(geminiConfig(server.URL))
	_, err := client.Polish(context.Background(), "hello", "", nil)
	require.ErrorIs(t, err, ErrInvalidResponse)
}

func TestGeminiEmptyInput(t *testing.T) {
	client := NewGeminiClient(geminiConfig("http://unused"))
	_, err := client.Polish(context.Background(), "   ", "", nil)
	require.ErrorIs(t, err, ErrEmptyInput)
	_, err = client.Rewrite(context.Background(), "", "text", nil)
	require.ErrorIs(t, err, ErrEmptyInput)
}
