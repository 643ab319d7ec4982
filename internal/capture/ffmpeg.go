package capture

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"sync"
	"time"

	shellwords "github.com/mattn/go-shellwords"

	"github.com/hushwire/hush-core/internal/config"
)

// whisperSampleRate is what the transcription provider expects.
const whisperSampleRate = 16000

// FFmpegRecorder captures microphone PCM through an ffmpeg child process and
// post-processes the take into a 16kHz mono WAV clip.
type FFmpegRecorder struct {
	cfg config.CaptureConfig
	cmd []string

	mu      sync.Mutex
	current *ffmpegTake
}

type ffmpegTake struct {
	cancel  context.CancelFunc
	proc    *exec.Cmd
	buf     bytes.Buffer
	copied  chan struct{}
	copyErr error
}

func NewFFmpegRecorder(cfg config.CaptureConfig) (*FFmpegRecorder, error) {
	parser := shellwords.NewParser()
	args, err := parser.Parse(cfg.Command)
	if err != nil {
		return nil, fmt.Errorf("parse capture command: %w", err)
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("capture command empty")
	}
	return &FFmpegRecorder{cfg: cfg, cmd: args}, nil
}

func (r *FFmpegRecorder) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current != nil {
		return ErrAlreadyRecording
	}

	procCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	args := append(append([]string{}, r.cmd[1:]...),
		"-nostdin",
		"-hide_banner",
		"-loglevel", "warning",
		"-f", r.cfg.InputFormat,
		"-i", r.cfg.InputDevice,
		"-ac", strconv.Itoa(r.cfg.Channels),
		"-ar", strconv.Itoa(r.cfg.SampleRate),
		"-f", "s16le",
		"-",
	)
	proc := exec.CommandContext(procCtx, r.cmd[0], args...)

	stdout, err := proc.StdoutPipe()
	if err != nil {
		cancel()
		return fmt.Errorf("capture stdout pipe: %w", err)
	}
	if err := proc.Start(); err != nil {
		cancel()
		return fmt.Errorf("start capture process: %w", err)
	}

	take := &ffmpegTake{cancel: cancel, proc: proc, copied: make(chan struct{})}
	go func() {
		_, err := io.Copy(&take.buf, stdout)
		take.copyErr = err
		close(take.copied)
	}()

	r.current = take
	return nil
}

func (r *FFmpegRecorder) Stop(ctx context.Context) (Clip, error) {
	r.mu.Lock()
	take := r.current
	r.current = nil
	r.mu.Unlock()

	if take == nil {
		return Clip{}, ErrNotRecording
	}

	take.cancel()
	select {
	case <-take.copied:
	case <-ctx.Done():
		return Clip{}, ctx.Err()
	}
	_ = take.proc.Wait()

	pcm := take.buf.Bytes()
	if len(pcm) == 0 {
		return Clip{}, ErrNoAudio
	}

	samples, err := pcm16ToFloat(pcm)
	if err != nil {
		return Clip{}, err
	}
	samples = Downmix(samples, r.cfg.Channels)
	duration := time.Duration(float64(len(samples)) / float64(r.cfg.SampleRate) * float64(time.Second))

	if r.cfg.SampleRate != whisperSampleRate {
		samples = Resample(samples, r.cfg.SampleRate, whisperSampleRate)
	}
	if r.cfg.Enhance {
		samples = Enhance(samples, whisperSampleRate)
	}

	wavBytes, err := EncodeWAV(samples, whisperSampleRate)
	if err != nil {
		return Clip{}, err
	}
	if _, err := InspectWAV(wavBytes); err != nil {
		return Clip{}, err
	}

	return Clip{
		WAV:        wavBytes,
		SampleRate: whisperSampleRate,
		Channels:   1,
		Duration:   duration,
	}, nil
}
