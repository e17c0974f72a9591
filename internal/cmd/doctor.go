package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/offlinefirst/replaykit/pkg/permissions"
)

func (a *App) newDoctorCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check the permissions needed for capture and replay",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			probes := []struct {
				name   string
				result permissions.ProbeResult
			}{
				{"input monitoring", permissions.ProbeInputMonitoring(nil)},
				{"accessibility", permissions.ProbeAccessibility(nil)},
			}

			for _, probe := range probes {
				fmt.Fprintf(a.stdout, "%-17s %s", probe.name, probe.result.StatusString())
				if probe.result.Message != "" {
					fmt.Fprintf(a.stdout, "  (%s)", probe.result.Message)
				}
				fmt.Fprintln(a.stdout)
				if probe.result.Guidance != "" {
					fmt.Fprintf(a.stdout, "  hint: %s\n", probe.result.Guidance)
				}
			}
			return nil
		},
	}
}
