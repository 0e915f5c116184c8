package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/weekendly/planner/internal/catalog"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the starter activity catalog into an empty store",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, cleanup, err := openStore(false)
		if err != nil {
			return err
		}
		defer cleanup()

		if err := catalog.EnsureSeeded(cmd.Context(), st, zap.NewNop()); err != nil {
			return err
		}

		fmt.Println("catalog seeded")
		return nil
	},
}
