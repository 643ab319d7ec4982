package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/hushwire/hush-core/internal/config"
	"github.com/hushwire/hush-core/internal/eventstore"
)

// sessionsCmd inspects the persisted session timeline. Only phase metadata
// is stored, so output never contains transcript text.
func sessionsCmd() *cli.Command {
	return &cli.Command{
		Name:  "sessions",
		Usage: "List recent sessions, or show one session's timeline",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Aliases: []string{"n"}, Value: 20, Usage: "Maximum entries to show"},
			&cli.StringFlag{Name: "id", Usage: "Show the transition timeline of one session"},
		},
		Action: func(c *cli.Context) error {
			cfg, err := config.Load(c.String("config"))
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if cfg.EventStore.RetentionMode == "ephemeral" {
				return cli.Exit("event store is ephemeral; nothing persisted", 1)
			}

			ctx := context.Background()
			logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
			store, err := eventstore.Open(ctx, cfg.EventStore, logger)
			if err != nil {
				return fmt.Errorf("open event store: %w", err)
			}
			defer store.Close()

			if id := c.String("id"); id != "" {
				return printTimeline(ctx, store, id, c.Int("limit"))
			}
			return printSessions(ctx, store, c.Int("limit"))
		},
	}
}

func printSessions(ctx context.Context, store *eventstore.Store, limit int) error {
	sessions, err := store.RecentSessions(ctx, limit)
	if err != nil {
		return err
	}
	if len(sessions) == 0 {
		fmt.Println("no sessions recorded")
		return nil
	}
	for _, s := range sessions {
		mode := s.Mode
		if mode == "" {
			mode = "-"
		}
		app := s.AppName
		if app == "" {
			app = "-"
		}
		fmt.Printf("%s  %-14s %-12s %s\n", s.SessionID, mode, app, s.CreatedAt.Local().Format("2006-01-02 15:04:05"))
	}
	return nil
}

func printTimeline(ctx context.Context, store *eventstore.Store, sessionID string, limit int) error {
	transitions, err := store.ListTransitions(ctx, sessionID, limit)
	if err != nil {
		return err
	}
	if len(transitions) == 0 {
		return cli.Exit(fmt.Sprintf("no transitions for session %s", sessionID), 1)
	}
	for _, tr := range transitions {
		line := fmt.Sprintf("%s  %-19s", tr.CreatedAt.Local().Format("15:04:05.000"), tr.Phase)
		if tr.Progress > 0 {
			line += fmt.Sprintf("  %3.0f%%", tr.Progress*100)
		}
		if tr.Outcome != "" {
			line += "  " + tr.Outcome
		}
		if tr.Message != "" {
			line += "  " + tr.Message
		}
		fmt.Println(line)
	}
	return nil
}
