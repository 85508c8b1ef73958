package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ssargent/dbkey/pkg/keycodec"
)

var allFormats = []keycodec.Format{
	keycodec.FormatCompact,
	keycodec.FormatStandard,
	keycodec.FormatLowerHex,
	keycodec.FormatUpperHex,
	keycodec.FormatPrettyLowerHex,
	keycodec.FormatPrettyUpperHex,
}

// encodeCmd represents the encode command
var encodeCmd = &cobra.Command{
	Use:   "encode [name=literal...]",
	Short: "Encode field literals into a key",
	Long: `Encode a key from field literals. Fields left out take their defaults.

Literals are decimal, 0x hex or 0b binary integers with optional _ separators
and type suffix, and hex strings or [a, b, c] / [x; n] lists for arrays.

Example:
  dbkey encode stream=7 seq=-1
  dbkey encode stream=0x07 id=[0xA5; 20] --all`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s := current(cmd)
		desc, err := s.descriptor()
		if err != nil {
			return err
		}
		fields, err := parseAssignments(args)
		if err != nil {
			return err
		}
		key, err := desc.FromLiterals(fields)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if all, _ := cmd.Flags().GetBool("all"); all {
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			for _, f := range allFormats {
				fmt.Fprintf(w, "%s\t%s\n", f, key.Render(f))
			}
			return w.Flush()
		}
		fmt.Fprintln(out, key.Render(s.format))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(encodeCmd)
	encodeCmd.Flags().Bool("all", false, "Print the key in every format")
}
