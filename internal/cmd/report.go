package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/katapios/lazybones/internal/format"
	"github.com/katapios/lazybones/internal/model"
)

var (
	addGood   []string
	addBad    []string
	addCustom bool
	addDate   string

	listDay string

	clearYes bool
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Create or replace today's report",
	Long: `Create a report for today (or --date). Saving a second regular or
custom report for the same day replaces the existing one.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		date := time.Now()
		if addDate != "" {
			date, err = time.ParseInLocation(model.DayLayout, addDate, time.Local)
			if err != nil {
				return fmt.Errorf("invalid --date %q: expected YYYY-MM-DD", addDate)
			}
		}

		reportType := model.ReportTypeRegular
		if addCustom {
			reportType = model.ReportTypeCustom
		}

		r := model.Report{
			Date:      date,
			Type:      reportType,
			GoodItems: addGood,
			BadItems:  addBad,
		}
		if err := a.service.SaveReport(context.Background(), r); err != nil {
			return err
		}

		fmt.Printf("saved %s report for %s\n", reportType, date.Format(model.DayLayout))
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored reports",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		var day *time.Time
		switch listDay {
		case "":
		case "today":
			now := time.Now()
			day = &now
		default:
			d, err := time.ParseInLocation(model.DayLayout, listDay, time.Local)
			if err != nil {
				return fmt.Errorf("invalid --day %q: expected YYYY-MM-DD or 'today'", listDay)
			}
			day = &d
		}

		reports, err := a.service.FetchReports(context.Background(), day)
		if err != nil {
			return err
		}
		if len(reports) == 0 {
			fmt.Println("no reports")
			return nil
		}

		for _, r := range reports {
			flags := make([]string, 0, 2)
			if r.Published {
				flags = append(flags, "published")
			}
			if r.Evaluation != nil && r.Evaluation.Evaluated {
				flags = append(flags, "evaluated")
			}
			suffix := ""
			if len(flags) > 0 {
				suffix = " (" + strings.Join(flags, ", ") + ")"
			}
			fmt.Printf("%s  %s  %-8s  %d good / %d bad%s\n",
				r.ID, r.Day(), r.Type,
				len(r.GoodItems), len(r.BadItems), suffix,
			)
		}
		return nil
	},
}

var showCmd = &cobra.Command{
	Use:   "show <report-id>",
	Short: "Print a report as interchange text",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		r, err := a.store.GetReportByID(context.Background(), args[0])
		if err != nil {
			return err
		}
		fmt.Print(format.Format(*r))
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <report-id>",
	Short: "Delete a report by id",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.service.DeleteReport(context.Background(), args[0]); err != nil {
			return err
		}
		fmt.Println("deleted")
		return nil
	},
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Discard every stored report",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !clearYes {
			return fmt.Errorf("refusing to clear without --yes")
		}

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.service.ClearAll(context.Background()); err != nil {
			return err
		}
		fmt.Println("cleared")
		return nil
	},
}

func init() {
	addCmd.Flags().StringArrayVar(&addGood, "good", nil, "Good item (repeatable)")
	addCmd.Flags().StringArrayVar(&addBad, "bad", nil, "Bad item (repeatable)")
	addCmd.Flags().BoolVar(&addCustom, "custom", false, "Save as a custom (plan/checklist) report")
	addCmd.Flags().StringVar(&addDate, "date", "", "Report day, YYYY-MM-DD (default: today)")

	listCmd.Flags().StringVar(&listDay, "day", "", "Filter by day: YYYY-MM-DD or 'today'")

	clearCmd.Flags().BoolVar(&clearYes, "yes", false, "Confirm discarding everything")

	rootCmd.AddCommand(addCmd, listCmd, showCmd, deleteCmd, clearCmd)
}
