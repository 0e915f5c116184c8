package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Flush the pending-change queue to the sync transport",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, cleanup, err := openStore(true)
		if err != nil {
			return err
		}
		defer cleanup()

		before, err := st.PendingChanges(cmd.Context())
		if err != nil {
			return err
		}

		if err := st.SyncData(cmd.Context()); err != nil {
			return err
		}
		if lastErr := st.LastError(); lastErr != nil {
			return fmt.Errorf("sync finished with error: %w", lastErr)
		}

		after, err := st.PendingChanges(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Printf("flushed %d of %d pending changes\n", len(before)-len(after), len(before))
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show storage usage and sync queue state",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, cleanup, err := openStore(false)
		if err != nil {
			return err
		}
		defer cleanup()

		usage := st.StorageUsage(cmd.Context())
		fmt.Printf("storage used: %d bytes\n", usage.Used)

		pending, err := st.PendingChanges(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("pending changes: %d\n", len(pending))

		if last, ok, err := st.LastSyncTime(cmd.Context()); err == nil && ok {
			fmt.Printf("last sync: %s\n", last.Format(time.RFC3339))
		} else {
			fmt.Println("last sync: never")
		}
		return nil
	},
}
