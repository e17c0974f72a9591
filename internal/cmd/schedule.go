package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/offlinefirst/replaykit/pkg/metrics"
	"github.com/offlinefirst/replaykit/pkg/player"
	"github.com/offlinefirst/replaykit/pkg/schedule"
	"github.com/offlinefirst/replaykit/pkg/store"
)

func (a *App) newScheduleCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "schedule",
		Short: "Run recordings on the configured cron timetable",
		Long:  "Starts a daemon that replays recordings on the cron schedule from the\nconfig file. Triggers that land while a replay is active are skipped.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			appCtx, err := a.ensureAppContext()
			if err != nil {
				return err
			}
			cfg := appCtx.Config

			if len(cfg.Schedule.Jobs) == 0 {
				return errors.New("no schedule.jobs configured")
			}

			jobs := make([]schedule.Job, len(cfg.Schedule.Jobs))
			for i, job := range cfg.Schedule.Jobs {
				jobs[i] = schedule.Job{Spec: job.Spec, Recording: job.Recording}
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

			runner, err := schedule.NewRunner(schedule.Options{
				Jobs:   jobs,
				Logger: appCtx.Logger,
				Run: func(ctx context.Context, recording string) error {
					path, err := resolveRecording(cfg.Paths.RecordingsDir, recording)
					if err != nil {
						return err
					}
					rec, err := store.Load(path)
					if err != nil {
						return err
					}
					_, err = p.Play(ctx, rec.Events)
					return err
				},
			})
			if err != nil {
				return err
			}

			ctx, stop := signalContext(cmd.Context())
			defer stop()

			if cfg.Metrics.Enabled {
				go func() {
					if err := metrics.Serve(cfg.Metrics.Listen); err != nil {
						appCtx.Logger.Error("metrics endpoint failed", "listen", cfg.Metrics.Listen, "error", err)
					}
				}()
				appCtx.Logger.Info("metrics endpoint listening", "listen", cfg.Metrics.Listen)
			}

			fmt.Fprintf(a.stdout, "Scheduler running with %d job(s). Ctrl-C to stop.\n", len(jobs))
			if err := runner.Start(ctx); !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}
}
