package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// boundsCmd represents the bounds command
var boundsCmd = &cobra.Command{
	Use:   "bounds",
	Short: "Print the default, smallest and largest keys",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s := current(cmd)
		desc, err := s.descriptor()
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "default\t%s\n", desc.Default().Render(s.format))
		fmt.Fprintf(w, "min\t%s\n", desc.MinKey().Render(s.format))
		fmt.Fprintf(w, "max\t%s\n", desc.MaxKey().Render(s.format))
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(boundsCmd)
}
