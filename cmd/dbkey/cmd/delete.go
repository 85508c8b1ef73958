package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// deleteCmd represents the delete command
var deleteCmd = &cobra.Command{
	Use:   "delete <key>...",
	Short: "Delete a key-value pair",
	Long: `Delete the value stored under a key. Deleting a missing key is not an error.

Example:
  dbkey delete stream=7 seq=1`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s := current(cmd)
		st, err := s.openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		key, err := parseKey(st.Descriptor(), args)
		if err != nil {
			return err
		}
		if err := st.Delete(key); err != nil {
			return fmt.Errorf("failed to delete key: %w", err)
		}

		cmd.Printf("Deleted %s\n", key.Render(s.format))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}
