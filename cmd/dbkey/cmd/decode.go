package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// decodeCmd represents the decode command
var decodeCmd = &cobra.Command{
	Use:   "decode <hex>",
	Short: "Decode a hex key into field values",
	Long: `Decode a key given as contiguous or compact hex. Short input is padded
with zero bytes and long input is truncated to the key width.

Example:
  dbkey decode 0x00000007_7FFFFFFFFFFFFFFF_0000000000000000000000000000000000000000`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s := current(cmd)
		desc, err := s.descriptor()
		if err != nil {
			return err
		}
		key, err := desc.ParseHex(args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, key.Render(s.format))
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		for i, v := range key.Values() {
			f := desc.Field(i)
			fmt.Fprintf(w, "%s\t%s\t%s\n", f.DisplayName, f.Type, v)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(decodeCmd)
}
