package cmd

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/offlinefirst/replaykit/pkg/store"
)

func (a *App) newListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored recordings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			appCtx, err := a.ensureAppContext()
			if err != nil {
				return err
			}

			infos, err := store.List(appCtx.Config.Paths.RecordingsDir)
			if err != nil {
				return err
			}
			if len(infos) == 0 {
				fmt.Fprintln(a.stdout, "No recordings found.")
				return nil
			}

			w := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tEVENTS\tDURATION\tCREATED\tPATH")
			for _, info := range infos {
				created := ""
				if !info.CreatedAt.IsZero() {
					created = info.CreatedAt.Local().Format(time.RFC3339)
				}
				fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\n",
					info.Name, info.Events, info.Duration.Round(time.Millisecond), created, info.Path)
			}
			return w.Flush()
		},
	}
}
