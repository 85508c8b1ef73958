package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ssargent/dbkey/pkg/storage"
)

// compactCmd represents the compact command
var compactCmd = &cobra.Command{
	Use:   "compact",
	Short: "Reclaim space held by overwritten and deleted values",
	Long: `Compact the store in the data directory.

The log engine rewrites its log with only the latest value of every live key.
The pebble engine runs a manual compaction over the whole key space.

Example:
  dbkey compact --engine log`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s := current(cmd)
		st, err := s.openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		c, ok := st.(storage.Compacter)
		if !ok {
			return fmt.Errorf("engine %s does not support compaction", s.cfg.Storage.Engine)
		}

		logStore, isLog := st.(*storage.LogStore)
		var before storage.LogStats
		if isLog {
			before = logStore.Stats()
		}
		if err := c.Compact(); err != nil {
			return err
		}
		if isLog {
			after := logStore.Stats()
			cmd.Printf("Compacted %d keys: %d -> %d bytes\n", after.Keys, before.DataSize, after.DataSize)
			return nil
		}
		cmd.Printf("Compacted %s\n", s.cfg.DataDir)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(compactCmd)
}
