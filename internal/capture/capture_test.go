package capture

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestEncodeAndInspectWAVRoundTrip(t *testing.T) {
	samples := sine(440, 16000, 8000, 0.5)
	data, err := EncodeWAV(samples, 16000)
	if err != nil {
		t.Fatalf("encode wav: %v", err)
	}

	dur, err := InspectWAV(data)
	if err != nil {
		t.Fatalf("inspect wav: %v", err)
	}
	if dur < 400*time.Millisecond || dur > 600*time.Millisecond {
		t.Fatalf("unexpected duration %v for half-second clip", dur)
	}
}

func TestEncodeWAVEmptyInput(t *testing.T) {
	if _, err := EncodeWAV(nil, 16000); !errors.Is(err, ErrNoAudio) {
		t.Fatalf("expected ErrNoAudio, got %v", err)
	}
}

func TestInspectWAVRejectsGarbage(t *testing.T) {
	if _, err := InspectWAV([]byte("definitely not a riff payload")); !errors.Is(err, ErrInvalidAudio) {
		t.Fatalf("expected ErrInvalidAudio, got %v", err)
	}
}

func TestPCM16ToFloatRejectsOddPayload(t *testing.T) {
	if _, err := pcm16ToFloat([]byte{0x01}); !errors.Is(err, ErrInvalidAudio) {
		t.Fatalf("expected ErrInvalidAudio, got %v", err)
	}
}

func TestMockRecorderLifecycle(t *testing.T) {
	rec := NewMockRecorder()

	if _, err := rec.Stop(context.Background()); !errors.Is(err, ErrNotRecording) {
		t.Fatalf("expected ErrNotRecording before start, got %v", err)
	}
	if err := rec.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := rec.Start(context.Background()); !errors.Is(err, ErrAlreadyRecording) {
		t.Fatalf("expected ErrAlreadyRecording, got %v", err)
	}

	clip, err := rec.Stop(context.Background())
	if err != nil {
		t.Fatalf("stop: %v", err)
	}
	if clip.SampleRate != 16000 || clip.Channels != 1 {
		t.Fatalf("unexpected clip format: %+v", clip)
	}
	if _, err := InspectWAV(clip.WAV); err != nil {
		t.Fatalf("mock clip should be valid wav: %v", err)
	}
}

func TestMockRecorderStopError(t *testing.T) {
	boom := errors.New("device gone")
	rec := NewMockRecorder()
	rec.StopErr = boom

	if err := rec.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := rec.Stop(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected stop error, got %v", err)
	}
}
