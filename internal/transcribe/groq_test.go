package transcribe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hushwire/hush-core/internal/capture"
	"github.com/hushwire/hush-core/internal/config"
)

func testClip(t *testing.T) capture.Clip {
	t.Helper()
	samples := make([]float32, 1600)
	wav, err := capture.EncodeWAV(samples, 16000)
	require.NoError(t, err)
	return capture.Clip{WAV: wav, SampleRate: 16000, Channels: 1}
}

func groqConfig(endpoint string) config.TranscribeConfig {
	return config.TranscribeConfig{
		Mode:     "groq",
		Endpoint: endpoint,
		APIKey:   "test-key",
		Model:    "whisper-large-v3-turbo",
	}
}

func TestGroqTranscribeSuccess(t *testing.T) {
	var gotAuth, gotModel string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, r.ParseMultipartForm(1<<20))
		gotModel = r.FormValue("model")
		_, _, err := r.FormFile("file")
		require.NoError(t, err)
		w.Write([]byte("  hello world\n"))
	}))
	defer server.Close()

	tr := NewGroqTranscriber(groqConfig(server.URL))
	var progress []float64
	text, err := tr.Transcribe(context.Background(), testClip(t), func(p float64) {
		progress = append(progress, p)
	})
	require.NoError(t, err)
	assert.Equal(t, "hello world", text)
	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, "whisper-large-v3-turbo", gotModel)
	assert.Equal(t, []float64{0, 1}, progress)
}

func TestGroqTranscribeIncludesLanguage(t *testing.T) {
	var gotLang string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		gotLang = r.FormValue("language")
		w.Write([]byte("bonjour"))
	}))
	defer server.Close()

	cfg := groqConfig(server.URL)
	cfg.Language = " fr "
	tr := NewGroqTranscriber(cfg)
	_, err := tr.Transcribe(context.Background(), testClip(t), nil)
	require.NoError(t, err)
	assert.Equal(t, "fr", gotLang)
}

func TestGroqTranscribeRetriesServerError(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("recovered"))
	}))
	defer server.Close()

	tr := NewGroqTranscriber(groqConfig(server.URL))
	text, err := tr.Transcribe(context.Background(), testClip(t), nil)
	require.NoError(t, err)
	assert.Equal(t, "recovered", text)
	assert.Equal(t, int32(2), calls.Load())
}

func TestGroqTranscribeNonRetryableFailsFast(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	tr := NewGroqTranscriber(groqConfig(server.URL))
	_, err := tr.Transcribe(context.Background(), testClip(t), nil)
	require.ErrorIs(t, err, ErrProvider)
	assert.Equal(t, int32(1), calls.Load())
}

func TestGroqTranscribeEmptyResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("   \n"))
	}))
	defer server.Close()

	tr := NewGroqTranscriber(groqConfig(server.URL))
	_, err := tr.Transcribe(context.Background(), testClip(t), nil)
	require.ErrorIs(t, err, ErrProvider)
}

func TestGroqTranscribeEmptyClip(t *testing.T) {
	tr := NewGroqTranscriber(groqConfig("http://unused.invalid"))
	_, err := tr.Transcribe(context.Background(), capture.Clip{}, nil)
	require.ErrorIs(t, err, ErrEmptyAudio)
}
