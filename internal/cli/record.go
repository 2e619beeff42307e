package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

func NewRecordCmd(deps *Dependencies) *cobra.Command {
	var (
		duration time.Duration
		sync     bool
	)

	cmd := &cobra.Command{
		Use:   "record",
		Short: "Record a meeting and process it",
		Long:  "Records audio from the configured input until Ctrl+C (or --duration elapses), then transcribes and analyzes the recording.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecord(cmd.Context(), deps, duration, sync)
		},
	}

	cmd.Flags().DurationVar(&duration, "duration", 0, "Stop automatically after this long (0 records until Ctrl+C)")
	cmd.Flags().BoolVar(&sync, "sync", false, "Push the finished meeting to Supabase")

	return cmd
}

func runRecord(ctx context.Context, deps *Dependencies, duration time.Duration, sync bool) error {
	f := deps.Formatter

	if err := deps.Orchestrator.Start(ctx); err != nil {
		return err
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(stop)

	var timeout <-chan time.Time
	if duration > 0 {
		timer := time.NewTimer(duration)
		defer timer.Stop()
		timeout = timer.C
	}

	select {
	case <-stop:
	case <-timeout:
	case <-ctx.Done():
	}

	// Post-processing must survive the Ctrl+C that ended the recording.
	meeting, err := deps.Orchestrator.Stop(context.WithoutCancel(ctx))
	if err != nil {
		return err
	}

	if sync {
		if deps.Syncer == nil {
			f.Warning("sync requested but Supabase is not configured (set SUPABASE_URL and SUPABASE_KEY)")
			return nil
		}
		synced, syncErr := deps.Syncer.Sync(ctx, meeting)
		if syncErr != nil {
			f.Warning("sync failed: " + syncErr.Error())
			return nil
		}
		if deps.Store != nil {
			if saveErr := deps.Store.Save(ctx, synced); saveErr != nil {
				deps.Logger.Warn("could not record synced flag locally", "error", saveErr)
			}
		}
		f.Success("Synced to Supabase")
	}

	return nil
}
