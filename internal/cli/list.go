package cli

import (
	"github.com/spf13/cobra"
)

func NewListCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List recorded meetings",
		RunE: func(cmd *cobra.Command, args []string) error {
			f := deps.Formatter

			if deps.Store == nil {
				f.Info("No meeting store configured (set MEETSCRIBE_POSTGRES_DSN)")
				return nil
			}

			meetings, err := deps.Store.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(meetings) == 0 {
				f.Info("No meetings found")
				return nil
			}

			f.MeetingListHeader()
			for _, m := range meetings {
				f.MeetingListItem(m)
			}
			return nil
		},
	}
}
