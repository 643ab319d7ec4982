package deliver

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"sync"

	shellwords "github.com/mattn/go-shellwords"

	"github.com/hushwire/hush-core/internal/config"
)

// execDeliverer shells out to platform helpers. The paste command receives
// the text on stdin and is expected to insert it at the caret; the copy
// command receives the text on stdin and loads the clipboard.
type execDeliverer struct {
	paste []string
	copy  []string
	mu    sync.Mutex
}

func NewExecDeliverer(cfg config.DeliveryConfig) (Deliverer, error) {
	parser := shellwords.NewParser()
	paste, err := parser.Parse(cfg.PasteCommand)
	if err != nil {
		return nil, fmt.Errorf("parse paste command: %w", err)
	}
	copyArgs, err := parser.Parse(cfg.CopyCommand)
	if err != nil {
		return nil, fmt.Errorf("parse copy command: %w", err)
	}
	if len(copyArgs) == 0 {
		return nil, fmt.Errorf("copy command empty")
	}
	return &execDeliverer{paste: paste, copy: copyArgs}, nil
}

func (d *execDeliverer) Deliver(ctx context.Context, req Request) (Outcome, error) {
	if strings.TrimSpace(req.Text) == "" {
		return "", ErrEmptyText
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if req.Editable && len(d.paste) > 0 {
		if err := d.run(ctx, d.paste, req.Text); err == nil {
			return OutcomePasted, nil
		}
		// Paste helpers fail when the target loses focus mid-flight.
		// The clipboard path below still gets the text to the user.
	}
	if err := d.run(ctx, d.copy, req.Text); err != nil {
		return "", fmt.Errorf("%w: %v", ErrDelivery, err)
	}
	return OutcomeCopied, nil
}

func (d *execDeliverer) run(ctx context.Context, argv []string, text string) error {
	command := exec.CommandContext(ctx, argv[0], argv[1:]...)
	command.Stdin = strings.NewReader(text)
	var stderr bytes.Buffer
	command.Stderr = &stderr
	if err := command.Run(); err != nil {
		return fmt.Errorf("%s: %w: %s", argv[0], err, stderr.String())
	}
	return nil
}
