package cli

import (
	"os/exec"

	"github.com/spf13/cobra"
)

func NewDoctorCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check prerequisites",
		RunE: func(cmd *cobra.Command, args []string) error {
			f := deps.Formatter
			ok := true

			recorder := deps.Config.Audio.RecorderCommand
			if _, err := exec.LookPath(recorder); err != nil {
				f.SetupCheck(recorder, false, "not found on PATH")
				ok = false
			} else {
				f.SetupCheck(recorder, true, "installed")
			}

			if deps.Config.Gemini.APIKey != "" {
				f.SetupCheck("Gemini API key", true, "configured")
			} else {
				f.SetupCheck("Gemini API key", false, "not set. Set GEMINI_API_KEY")
				ok = false
			}

			if deps.Config.Postgres.DSN != "" {
				f.SetupCheck("Meeting store", true, "configured")
			} else {
				f.SetupCheck("Meeting store", false, "not set. Set MEETSCRIBE_POSTGRES_DSN (meetings will not be persisted)")
			}

			if deps.Config.Supabase.URL != "" && deps.Config.Supabase.Key != "" {
				f.SetupCheck("Supabase sync", true, "configured")
			} else {
				f.SetupCheck("Supabase sync", false, "not set. Set SUPABASE_URL and SUPABASE_KEY to enable --sync")
			}

			f.SetupCheck("Audio input", true, deps.Config.Audio.InputFormat+"/"+deps.Config.Audio.InputDevice)

			if ok {
				f.Success("\nReady to record")
			} else {
				f.Warning("\nSome prerequisites are missing")
			}
			return nil
		},
	}
}
