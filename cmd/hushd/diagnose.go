package main

import (
	"context"
	"fmt"
	"os/exec"
	"time"

	shellwords "github.com/mattn/go-shellwords"
	"github.com/urfave/cli/v2"

	"github.com/hushwire/hush-core/internal/config"
	"github.com/hushwire/hush-core/internal/httpx"
)

// diagnoseCmd checks the local setup without starting the daemon: config
// validity, provider credentials and reachability, and the helper commands
// the exec collaborators shell out to.
func diagnoseCmd() *cli.Command {
	return &cli.Command{
		Name:  "diagnose",
		Usage: "Check configuration, credentials and helper commands",
		Action: func(c *cli.Context) error {
			cfg, err := config.Load(c.String("config"))
			if err != nil {
				report("config", false, err.Error())
				return cli.Exit("", 1)
			}
			report("config", true, c.String("config"))

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			failed := false
			failed = !checkTranscribe(ctx, cfg) || failed
			failed = !checkTextGen(ctx, cfg) || failed
			failed = !checkCommand("capture", cfg.Capture.Mode == "ffmpeg", cfg.Capture.Command) || failed
			failed = !checkCommand("selection", cfg.Selection.Mode == "exec", cfg.Selection.Command) || failed
			failed = !checkCommand("delivery paste", cfg.Delivery.Mode == "exec", cfg.Delivery.PasteCommand) || failed
			failed = !checkCommand("delivery copy", cfg.Delivery.Mode == "exec", cfg.Delivery.CopyCommand) || failed

			if failed {
				return cli.Exit("", 1)
			}
			return nil
		},
	}
}

func checkTranscribe(ctx context.Context, cfg config.Config) bool {
	if cfg.Transcribe.Mode != "groq" {
		report("transcription", true, "mock mode")
		return true
	}
	if cfg.Transcribe.APIKey == "" {
		report("transcription", false, "api key not set")
		return false
	}
	if err := httpx.Warmup(ctx, cfg.Transcribe.Endpoint); err != nil {
		report("transcription", false, fmt.Sprintf("endpoint unreachable: %v", err))
		return false
	}
	report("transcription", true, cfg.Transcribe.Model)
	return true
}

func checkTextGen(ctx context.Context, cfg config.Config) bool {
	if cfg.TextGen.Mode != "gemini" {
		report("text generation", true, "mock mode")
		return true
	}
	if cfg.TextGen.APIKey == "" {
		report("text generation", false, "api key not set")
		return false
	}
	if err := httpx.Warmup(ctx, cfg.TextGen.Endpoint); err != nil {
		report("text generation", false, fmt.Sprintf("endpoint unreachable: %v", err))
		return false
	}
	report("text generation", true, cfg.TextGen.Model)
	return true
}

func checkCommand(name string, enabled bool, command string) bool {
	if !enabled {
		report(name, true, "mock mode")
		return true
	}
	args, err := shellwords.NewParser().Parse(command)
	if err != nil || len(args) == 0 {
		report(name, false, "command not configured")
		return false
	}
	if _, err := exec.LookPath(args[0]); err != nil {
		report(name, false, fmt.Sprintf("%s not found in PATH", args[0]))
		return false
	}
	report(name, true, args[0])
	return true
}

func report(name string, ok bool, detail string) {
	mark := "ok"
	if !ok {
		mark = "FAIL"
	}
	fmt.Printf("%-18s %-4s %s\n", name, mark, detail)
}
