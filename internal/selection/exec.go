package selection

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"sync"

	shellwords "github.com/mattn/go-shellwords"
)

// execReader shells out to an accessibility helper that prints the current
// selection snapshot as JSON on stdout.
type execReader struct {
	cmd []string
	mu  sync.Mutex
}

func NewExecReader(command string) (Reader, error) {
	parser := shellwords.NewParser()
	args, err := parser.Parse(command)
	if err != nil {
		return nil, fmt.Errorf("parse selection command: %w", err)
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("selection command empty")
	}
	return &execReader{cmd: args}, nil
}

func (r *execReader) Snapshot(ctx context.Context) (Context, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	base := r.cmd[0]
	args := append([]string{}, r.cmd[1:]...)
	command := exec.CommandContext(ctx, base, args...)
	var stderr bytes.Buffer
	command.Stderr = &stderr

	output, err := command.Output()
	if err != nil {
		return Context{}, fmt.Errorf("selection command failed: %w: %s", err, stderr.String())
	}

	var snap Context
	if err := json.Unmarshal(output, &snap); err != nil {
		return Context{}, fmt.Errorf("decode selection snapshot: %w", err)
	}
	return snap, nil
}
