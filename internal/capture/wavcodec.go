package capture

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// EncodeWAV renders mono float32 samples as a 16-bit PCM WAV payload.
func EncodeWAV(samples []float32, sampleRate int) ([]byte, error) {
	if len(samples) == 0 {
		return nil, ErrNoAudio
	}

	// go-audio's encoder needs a seekable target to patch up header sizes.
	file, err := os.CreateTemp("", "hush_clip_*.wav")
	if err != nil {
		return nil, fmt.Errorf("temp file: %w", err)
	}
	defer os.Remove(file.Name())
	defer file.Close()

	buffer := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: sampleRate},
		SourceBitDepth: 16,
	}
	buffer.Data = make([]int, len(samples))
	for i, s := range samples {
		scaled := s * 32767
		if scaled > 32767 {
			scaled = 32767
		} else if scaled < -32768 {
			scaled = -32768
		}
		buffer.Data[i] = int(int16(scaled))
	}

	enc := wav.NewEncoder(file, sampleRate, 16, 1, 1)
	if err := enc.Write(buffer); err != nil {
		return nil, fmt.Errorf("write wav: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("close wav encoder: %w", err)
	}

	data, err := os.ReadFile(file.Name())
	if err != nil {
		return nil, fmt.Errorf("read wav: %w", err)
	}
	return data, nil
}

// InspectWAV validates a WAV payload and reports its duration.
func InspectWAV(data []byte) (time.Duration, error) {
	dec := wav.NewDecoder(bytes.NewReader(data))
	if !dec.IsValidFile() {
		return 0, ErrInvalidAudio
	}
	dur, err := dec.Duration()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidAudio, err)
	}
	return dur, nil
}

// pcm16ToFloat converts little-endian 16-bit PCM bytes to float32 samples.
func pcm16ToFloat(pcm []byte) ([]float32, error) {
	if len(pcm)%2 != 0 {
		return nil, fmt.Errorf("%w: pcm payload not aligned", ErrInvalidAudio)
	}
	out := make([]float32, len(pcm)/2)
	for i := range out {
		sample := int16(uint16(pcm[i*2]) | uint16(pcm[i*2+1])<<8)
		out[i] = float32(sample) / 32767
	}
	return out, nil
}
