package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/katapios/lazybones/internal/channel"
	"github.com/katapios/lazybones/internal/ingest"
	"github.com/katapios/lazybones/internal/model"
)

var (
	syncWatch bool
	syncCheck bool

	importFrom       string
	importTo         string
	importProvenance string
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Pull new reports from the channel and the shared document",
	Long: `Run one ingestion pass per configured channel plus a shared-document
merge. With --watch, keep polling in the background until interrupted.
With --check, only verify channel credentials and connectivity.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		ctx := context.Background()

		if syncCheck {
			return checkChannels(ctx, os.Stdout, a.channels)
		}
		if syncWatch {
			return watch(a)
		}

		total := 0
		for _, pipeline := range a.externals {
			added, err := pipeline.Run(ctx)
			total += added
			if err != nil {
				return fmt.Errorf("channel ingestion: %w", err)
			}
		}

		added, err := a.shared.Sync(ctx, ingest.SharedFilter{})
		if err != nil {
			return fmt.Errorf("shared merge: %w", err)
		}
		total += added

		fmt.Printf("%d new report(s)\n", total)
		return nil
	},
}

// watch runs the background poller until SIGINT/SIGTERM.
func watch(a *app) error {
	poller := ingest.NewPoller(a.log, func(r ingest.Result) {
		if r.Err == nil && r.Added > 0 {
			fmt.Printf("%s: %d new report(s)\n", r.Channel, r.Added)
		}
	})

	for i, pipeline := range a.externals {
		cfg := a.channelCfgs[i]
		poller.Register(
			pipeline,
			channel.ChannelType(cfg.Type),
			time.Duration(cfg.PollIntervalSec)*time.Second,
		)
	}

	poller.Start()
	defer poller.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	return nil
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write all local reports to the shared document",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.service.ExportShared(context.Background()); err != nil {
			return err
		}
		fmt.Println("exported")
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Merge reports from the shared document",
	RunE: func(cmd *cobra.Command, args []string) error {
		filter := ingest.SharedFilter{}

		if importFrom != "" {
			d, err := time.ParseInLocation(model.DayLayout, importFrom, time.Local)
			if err != nil {
				return fmt.Errorf("invalid --from %q: expected YYYY-MM-DD", importFrom)
			}
			filter.From = &d
		}
		if importTo != "" {
			d, err := time.ParseInLocation(model.DayLayout, importTo, time.Local)
			if err != nil {
				return fmt.Errorf("invalid --to %q: expected YYYY-MM-DD", importTo)
			}
			filter.To = &d
		}
		if importProvenance != "" {
			filter.Provenance = &importProvenance
		}

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		added, err := a.shared.Sync(context.Background(), filter)
		if err != nil {
			return err
		}
		fmt.Printf("%d new report(s)\n", added)
		return nil
	},
}

func init() {
	syncCmd.Flags().BoolVar(&syncWatch, "watch", false, "Keep polling until interrupted")
	syncCmd.Flags().BoolVar(&syncCheck, "check", false, "Only verify channel credentials and connectivity")

	importCmd.Flags().StringVar(&importFrom, "from", "", "Earliest day to import, YYYY-MM-DD")
	importCmd.Flags().StringVar(&importTo, "to", "", "Latest day to import, YYYY-MM-DD")
	importCmd.Flags().StringVar(&importProvenance, "provenance", "", "Only import blocks with this author label")

	rootCmd.AddCommand(syncCmd, exportCmd, importCmd)
}
