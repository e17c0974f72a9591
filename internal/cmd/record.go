package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/offlinefirst/replaykit/pkg/recorder"
	"github.com/offlinefirst/replaykit/pkg/store"
	"github.com/offlinefirst/replaykit/pkg/timing"
)

func (a *App) newRecordCommand() *cobra.Command {
	var (
		name      string
		exitKey   string
		pauseKey  string
		ignored   []string
		countdown int
	)

	cmd := &cobra.Command{
		Use:   "record",
		Short: "Capture keyboard and mouse activity into a recording",
		Long:  "Captures global keyboard and mouse events until the exit key is pressed.\nThe pause key suspends capture without ending the session.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			appCtx, err := a.ensureAppContext()
			if err != nil {
				return err
			}
			cfg := appCtx.Config

			if !cmd.Flags().Changed("exit-key") {
				exitKey = cfg.Record.ExitKey
			}
			if !cmd.Flags().Changed("pause-key") {
				pauseKey = cfg.Record.PauseKey
			}
			if !cmd.Flags().Changed("ignore") {
				ignored = cfg.Record.IgnoredKeys
			}
			if !cmd.Flags().Changed("countdown") {
				countdown = cfg.Record.CountdownSeconds
			}

			rec, err := recorder.New(recorder.Options{
				IgnoredKeys: ignored,
				ExitKey:     exitKey,
				PauseKey:    pauseKey,
				Logger:      appCtx.Logger,
			})
			if err != nil {
				return err
			}

			ctx, stop := signalContext(cmd.Context())
			defer stop()

			if err := timing.Countdown(ctx, a.stdout, countdown); err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "Recording. Press %s to stop, %s to pause.\n", exitKey, pauseKey)

			log, err := rec.Record(ctx)
			if err != nil {
				return err
			}
			if len(log) == 0 {
				fmt.Fprintln(a.stdout, "No events captured; nothing saved.")
				return nil
			}

			if name == "" {
				name = "recording_" + time.Now().Format("20060102_150405")
			}
			path, err := store.Save(cfg.Paths.RecordingsDir, store.New(name, log, time.Now()))
			if err != nil {
				return err
			}

			fmt.Fprintf(a.stdout, "Saved %d events (%s) to %s\n", len(log), log.Duration().Round(time.Millisecond), path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "Recording name (default: timestamped)")
	cmd.Flags().StringVar(&exitKey, "exit-key", "", "Key that ends the session")
	cmd.Flags().StringVar(&pauseKey, "pause-key", "", "Key that toggles capture")
	cmd.Flags().StringSliceVar(&ignored, "ignore", nil, "Keys to drop from the recording")
	cmd.Flags().IntVar(&countdown, "countdown", 0, "Seconds to count down before capture starts")

	return cmd
}
