package session

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hushwire/hush-core/internal/capture"
	"github.com/hushwire/hush-core/internal/textgen"
	"github.com/hushwire/hush-core/internal/transcribe"
)

func TestUserMessageMapsKnownErrors(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{capture.ErrNotRecording, "No recording in progress"},
		{capture.ErrNoAudio, "No audio captured"},
		{transcribe.ErrEmptyAudio, "No audio captured"},
		{fmt.Errorf("%w: HTTP 500", transcribe.ErrProvider), "Transcription failed"},
		{fmt.Errorf("%w: empty response", textgen.ErrInvalidResponse), "Text generation returned an unusable response"},
		{errors.New("spontaneous failure"), "Something went wrong"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, userMessage(tc.err), "error: %v", tc.err)
	}
}
