// Package cli wires the recording pipeline into a cobra command tree.
package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	"meetscribe/internal/config"
	"meetscribe/internal/ports"
	"meetscribe/internal/usecase"
)

// Version is stamped at build time via -ldflags.
var Version = "dev"

type Dependencies struct {
	Orchestrator *usecase.Orchestrator
	Store        ports.MeetingStore
	Syncer       ports.MeetingSyncer
	Formatter    *Formatter
	Config       config.Config
	Logger       *slog.Logger
}

func NewRootCmd(deps *Dependencies) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "meetscribe",
		Short: "Record meetings, transcribe, and extract action items",
		Long:  "Records meeting audio, streams a live transcription preview, and produces a final transcript, summary, and action items with Gemini.",
	}

	rootCmd.Version = Version

	rootCmd.AddCommand(NewRecordCmd(deps))
	rootCmd.AddCommand(NewListCmd(deps))
	rootCmd.AddCommand(NewDoctorCmd(deps))

	return rootCmd
}
