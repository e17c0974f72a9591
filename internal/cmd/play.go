package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/offlinefirst/replaykit/pkg/input"
	"github.com/offlinefirst/replaykit/pkg/player"
	"github.com/offlinefirst/replaykit/pkg/store"
	"github.com/offlinefirst/replaykit/pkg/timing"
)

func (a *App) newPlayCommand() *cobra.Command {
	var (
		speed      float64
		countdown  int
		loops      int
		dryRun     bool
		noFailSafe bool
	)

	cmd := &cobra.Command{
		Use:   "play <recording>",
		Short: "Replay a recording",
		Long:  "Replays a recording by name or file path with the original relative timing.\nThe pause key suspends playback; the cancel key aborts it.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			appCtx, err := a.ensureAppContext()
			if err != nil {
				return err
			}
			cfg := appCtx.Config

			if !cmd.Flags().Changed("speed") {
				speed = cfg.Playback.Speed
			}
			if !cmd.Flags().Changed("countdown") {
				countdown = cfg.Playback.CountdownSeconds
			}
			failSafe := cfg.Playback.FailSafe
			if cmd.Flags().Changed("no-fail-safe") {
				failSafe = !noFailSafe
			}
			if loops < 1 {
				return errors.New("loops must be at least 1")
			}

			path, err := resolveRecording(cfg.Paths.RecordingsDir, args[0])
			if err != nil {
				return err
			}
			rec, err := store.Load(path)
			if err != nil {
				return err
			}

			opts := player.Options{
				PauseKey:        cfg.Playback.PauseKey,
				CancelKey:       cfg.Playback.CancelKey,
				Speed:           speed,
				ScrollStep:      cfg.Playback.ScrollStep,
				DisableFailSafe: !failSafe,
				Logger:          appCtx.Logger,
			}
			var journal *input.Journal
			if dryRun {
				journal = input.NewJournal()
				opts.Sink = journal
			} else {
				signals, err := input.SystemSource()
				if err != nil {
					appCtx.Logger.Warn("pause and cancel keys unavailable", "error", err)
				} else {
					opts.Signals = signals
				}
			}

			p, err := player.New(opts)
			if err != nil {
				return err
			}

			ctx, stop := signalContext(cmd.Context())
			defer stop()

			if !dryRun {
				if err := timing.Countdown(ctx, a.stdout, countdown); err != nil {
					return err
				}
			}

			for i := 0; i < loops; i++ {
				result, err := p.Play(ctx, rec.Events)
				if err != nil {
					return err
				}
				fmt.Fprintf(a.stdout, "Playback %s: %d/%d events in %s\n",
					result.Outcome, result.Played, len(rec.Events), result.Duration.Round(time.Millisecond))
				if result.Outcome != player.Completed {
					break
				}
			}

			if journal != nil {
				for _, action := range journal.Actions() {
					fmt.Fprintln(a.stdout, action)
				}
			}
			return nil
		},
	}

	cmd.Flags().Float64Var(&speed, "speed", 0, "Speed multiplier (2 plays twice as fast)")
	cmd.Flags().IntVar(&countdown, "countdown", 0, "Seconds to count down before playback starts")
	cmd.Flags().IntVar(&loops, "loops", 1, "Number of times to replay the recording")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the actions instead of synthesizing input")
	cmd.Flags().BoolVar(&noFailSafe, "no-fail-safe", false, "Disable the corner fail-safe abort")

	return cmd
}

// resolveRecording accepts a file path or a bare recording name looked up in
// the recordings directory.
func resolveRecording(dir, ref string) (string, error) {
	if _, err := os.Stat(ref); err == nil {
		return ref, nil
	}
	name := ref
	if !strings.HasSuffix(name, ".json") {
		name += ".json"
	}
	path := filepath.Join(dir, name)
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("recording %q not found (looked for %s)", ref, path)
	}
	return path, nil
}
