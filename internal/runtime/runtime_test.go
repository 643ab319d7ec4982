package runtime

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hushwire/hush-core/internal/config"
)

func TestBuildCollaboratorsDefaultsToMocks(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	collab, err := buildCollaborators(config.Default(), log)
	require.NoError(t, err)

	assert.NotNil(t, collab.Recorder)
	assert.NotNil(t, collab.Selection)
	assert.NotNil(t, collab.Transcriber)
	assert.NotNil(t, collab.Polisher)
	assert.NotNil(t, collab.Rewriter)
	assert.NotNil(t, collab.Deliverer)
	assert.Empty(t, collab.Warmers)
}

func TestBuildCollaboratorsProviderModesRegisterWarmers(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := config.Default()
	cfg.Transcribe.Mode = "groq"
	cfg.Transcribe.APIKey = "key"
	cfg.TextGen.Mode = "gemini"
	cfg.TextGen.APIKey = "key"

	collab, err := buildCollaborators(cfg, log)
	require.NoError(t, err)
	assert.Len(t, collab.Warmers, 2)
}

func TestBuildCollaboratorsRejectsBadSelectionCommand(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := config.Default()
	cfg.Selection.Mode = "exec"
	cfg.Selection.Command = ""

	_, err := buildCollaborators(cfg, log)
	require.Error(t, err)
}
