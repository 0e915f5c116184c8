package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/weekendly/planner/internal/models"
)

var exportOutput string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export all planner data as a JSON snapshot",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, cleanup, err := openStore(false)
		if err != nil {
			return err
		}
		defer cleanup()

		envelope, err := st.ExportData(cmd.Context())
		if err != nil {
			return err
		}

		out := os.Stdout
		if exportOutput != "" {
			f, err := os.Create(exportOutput)
			if err != nil {
				return fmt.Errorf("failed to create output file: %w", err)
			}
			defer f.Close()
			out = f
		}

		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(envelope)
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Restore planner data from a JSON snapshot",
	Long: `Restore planner data from a snapshot produced by export. All
existing data is cleared first; sections missing from the snapshot
are skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read snapshot: %w", err)
		}

		var envelope models.ExportEnvelope
		if err := json.Unmarshal(raw, &envelope); err != nil {
			return fmt.Errorf("failed to parse snapshot: %w", err)
		}

		st, cleanup, err := openStore(false)
		if err != nil {
			return err
		}
		defer cleanup()

		if err := st.ImportData(cmd.Context(), &envelope); err != nil {
			return err
		}

		fmt.Printf("imported %d weekends, %d activities, %d categories\n",
			len(envelope.Data.Weekends), len(envelope.Data.Activities), len(envelope.Data.Categories))
		return nil
	},
}

var compactCmd = &cobra.Command{
	Use:   "compact",
	Short: "Apply the retention policy to the database",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, cleanup, err := openStore(false)
		if err != nil {
			return err
		}
		defer cleanup()

		if err := st.CompactDatabase(cmd.Context()); err != nil {
			return err
		}

		fmt.Println("compaction complete")
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Write the snapshot to a file instead of stdout")
}
