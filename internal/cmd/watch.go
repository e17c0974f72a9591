package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/offlinefirst/replaykit/pkg/player"
	"github.com/offlinefirst/replaykit/pkg/store"
)

func (a *App) newWatchCommand() *cobra.Command {
	var debounce time.Duration

	cmd := &cobra.Command{
		Use:   "watch <recording>",
		Short: "Replay a recording every time its file changes",
		Long:  "Watches a recording file and replays it after each rewrite. Useful while\nhand-editing a recording to tune delays or coordinates.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			appCtx, err := a.ensureAppContext()
			if err != nil {
				return err
			}
			cfg := appCtx.Config

			path, err := resolveRecording(cfg.Paths.RecordingsDir, args[0])
			if err != nil {
				return err
			}

			p, err := player.New(player.Options{
				PauseKey:        cfg.Playback.PauseKey,
				CancelKey:       cfg.Playback.CancelKey,
				Speed:           cfg.Playback.Speed,
				ScrollStep:      cfg.Playback.ScrollStep,
				DisableFailSafe: !cfg.Playback.FailSafe,
				Logger:          appCtx.Logger,
			})
			if err != nil {
				return err
			}

			ctx, stop := signalContext(cmd.Context())
			defer stop()

			fmt.Fprintf(a.stdout, "Watching %s; replaying on change. Ctrl-C to stop.\n", path)
			err = store.Watch(ctx, path, debounce, func() {
				rec, err := store.Load(path)
				if err != nil {
					appCtx.Logger.Error("reload failed", "path", path, "error", err)
					return
				}
				result, err := p.Play(ctx, rec.Events)
				if err != nil {
					appCtx.Logger.Error("replay failed", "path", path, "error", err)
					return
				}
				fmt.Fprintf(a.stdout, "Replayed %s: %s (%d events)\n", rec.Name, result.Outcome, result.Played)
			})
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}

	cmd.Flags().DurationVar(&debounce, "debounce", 500*time.Millisecond, "Minimum time between replays")

	return cmd
}
