package commands

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func historyCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent fetch runs from the local ledger",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ledger, err := openLedger()
			if err != nil {
				return err
			}
			defer ledger.Close()

			runs, err := ledger.RecentRuns(limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Println("No runs recorded")
				return nil
			}

			for _, run := range runs {
				status := color.GreenString("ok")
				if !run.OK {
					status = color.RedString("failed")
				}
				fmt.Printf("%s  %-22s %-6s countries=%d duration=%s\n",
					run.StartedAt.Format("2006-01-02 15:04:05"),
					run.Command,
					status,
					run.Countries,
					run.FinishedAt.Sub(run.StartedAt).Round(time.Second),
				)
				if run.Note != "" {
					fmt.Printf("    %s\n", run.Note)
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum runs to show")
	return cmd
}
