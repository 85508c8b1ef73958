package cmd

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/ssargent/dbkey/pkg/storage"
)

// loadCmd represents the load command
var loadCmd = &cobra.Command{
	Use:   "load <file.yaml>",
	Short: "Bulk load key-value pairs from a YAML file",
	Long: `Encode the rows of a YAML file in parallel and write them in file order.
Nothing is written if any row fails to encode.

The file has the form:

  rows:
    - fields: {stream: 7, seq: -1}
      value: hello

Example:
  dbkey load rows.yaml --workers 8`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open rows file: %w", err)
		}
		defer f.Close()

		rows, err := storage.ReadRows(f)
		if err != nil {
			return err
		}

		st, err := current(cmd).openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		workers, _ := cmd.Flags().GetInt("workers")
		n, err := storage.Load(cmd.Context(), st, rows, workers)
		if err != nil {
			return fmt.Errorf("failed to load %s: %w", args[0], err)
		}

		cmd.Printf("Loaded %d rows into %s\n", n, st.Descriptor().Name())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(loadCmd)
	loadCmd.Flags().Int("workers", runtime.NumCPU(), "Rows encoded in parallel")
}
