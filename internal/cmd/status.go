package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var (
	statusUnlock bool
	statusLock   bool
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show today's report status",
	Long: `Recompute and print the status of today's report slot:
not_started, in_progress, sent, not_created, or not_sent.

--unlock sets the force-unlock override, reopening today's slot until
the next day rollover. --lock clears it.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if statusUnlock && statusLock {
			return fmt.Errorf("--unlock and --lock are mutually exclusive")
		}

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		ctx := context.Background()

		if statusUnlock {
			if err := a.engine.SetForceUnlock(ctx, true); err != nil {
				return err
			}
		}
		if statusLock {
			if err := a.engine.SetForceUnlock(ctx, false); err != nil {
				return err
			}
		}

		st, err := a.engine.Refresh(ctx, time.Now())
		if err != nil {
			return err
		}

		fmt.Println(string(st))
		return nil
	},
}

func init() {
	statusCmd.Flags().BoolVar(&statusUnlock, "unlock", false, "Set the force-unlock override")
	statusCmd.Flags().BoolVar(&statusLock, "lock", false, "Clear the force-unlock override")

	rootCmd.AddCommand(statusCmd)
}
