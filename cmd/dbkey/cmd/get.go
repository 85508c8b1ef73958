package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// getCmd represents the get command
var getCmd = &cobra.Command{
	Use:   "get <key>...",
	Short: "Get a value for a key",
	Long: `Get the value stored under a key given as hex or name=literal pairs.

Example:
  dbkey get stream=7 seq=1`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := current(cmd).openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		key, err := parseKey(st.Descriptor(), args)
		if err != nil {
			return err
		}
		value, err := st.Get(key)
		if err != nil {
			return fmt.Errorf("failed to get %s: %w", key, err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", string(value))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(getCmd)
}
