package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/katapios/lazybones/internal/model"
	"github.com/katapios/lazybones/internal/store"
)

var publishCmd = &cobra.Command{
	Use:   "publish [report-id]",
	Short: "Publish a report to the messaging channel",
	Long: `Deliver a report's text to the configured channel and mark it
published. Without an id, publishes today's regular report.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		ctx := context.Background()

		id := ""
		if len(args) == 1 {
			id = args[0]
		} else {
			today := time.Now().Format(model.DayLayout)
			reportType := model.ReportTypeRegular
			reports, err := a.store.GetReports(ctx, store.ReportFilter{
				Day:  &today,
				Type: &reportType,
			})
			if err != nil {
				return err
			}
			if len(reports) == 0 {
				return fmt.Errorf("no regular report for today; run 'lazybones add' first")
			}
			id = reports[0].ID
		}

		if err := a.service.PublishReport(ctx, id); err != nil {
			return err
		}
		fmt.Println("published")
		return nil
	},
}

var evaluateCmd = &cobra.Command{
	Use:   "evaluate <report-id> <results>",
	Short: "Record a custom report's completion check",
	Long: `Judge a custom report's good items positionally. Results are a
comma-separated list of 1/0 (or true/false), one per good item:

  lazybones evaluate 4f0c... 1,0,1`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		results, err := parseResults(args[1])
		if err != nil {
			return err
		}

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.service.EvaluateReport(context.Background(), args[0], results); err != nil {
			return err
		}
		fmt.Println("evaluated")
		return nil
	},
}

// parseResults decodes a comma-separated bool list.
func parseResults(s string) ([]bool, error) {
	parts := strings.Split(s, ",")
	results := make([]bool, 0, len(parts))
	for _, p := range parts {
		b, err := strconv.ParseBool(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("invalid result %q: expected 1/0 or true/false", p)
		}
		results = append(results, b)
	}
	return results, nil
}

func init() {
	rootCmd.AddCommand(publishCmd, evaluateCmd)
}
