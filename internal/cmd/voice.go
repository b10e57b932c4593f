package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/katapios/lazybones/internal/model"
)

var voiceDuration int

var voiceCmd = &cobra.Command{
	Use:   "voice",
	Short: "Manage a report's voice notes",
}

var voiceAddCmd = &cobra.Command{
	Use:   "add <report-id> <audio-file>",
	Short: "Attach a voice note to a report",
	Long: `Attach an audio file to a report. A relative path is resolved
against the configured voice directory.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		path := args[1]
		if !filepath.IsAbs(path) {
			path = filepath.Join(a.cfg.VoiceDir, path)
		}
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("audio file %s: %w", path, err)
		}

		n := model.VoiceNote{
			ReportID:    args[0],
			Path:        path,
			DurationSec: voiceDuration,
		}
		if err := a.service.AddVoiceNote(context.Background(), n); err != nil {
			return err
		}
		fmt.Println("attached")
		return nil
	},
}

var voiceListCmd = &cobra.Command{
	Use:   "list <report-id>",
	Short: "List a report's voice notes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		notes, err := a.service.VoiceNotes(context.Background(), args[0])
		if err != nil {
			return err
		}
		if len(notes) == 0 {
			fmt.Println("no voice notes")
			return nil
		}
		for _, n := range notes {
			fmt.Printf("%s  %3ds  %s\n", n.ID, n.DurationSec, n.Path)
		}
		return nil
	},
}

var voiceDetachCmd = &cobra.Command{
	Use:   "detach <note-id>",
	Short: "Detach a voice note from its report",
	Long: `Remove the note record, releasing ownership of the audio file.
The file itself is left in place.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.service.DetachVoiceNote(context.Background(), args[0]); err != nil {
			return err
		}
		fmt.Println("detached")
		return nil
	},
}

func init() {
	voiceAddCmd.Flags().IntVar(&voiceDuration, "duration", 0, "Recording length in seconds")

	voiceCmd.AddCommand(voiceAddCmd, voiceListCmd, voiceDetachCmd)
	rootCmd.AddCommand(voiceCmd)
}
