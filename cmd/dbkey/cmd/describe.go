package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ssargent/dbkey/pkg/schema"
)

// describeCmd represents the describe command
var describeCmd = &cobra.Command{
	Use:   "describe",
	Short: "Print the field table of the key schema",
	Long: `Print the name, width and per-field layout of the configured key.

Example:
  dbkey describe
  dbkey describe --yaml`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		desc, err := current(cmd).descriptor()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		if asYAML, _ := cmd.Flags().GetBool("yaml"); asYAML {
			data, err := schema.Marshal(desc)
			if err != nil {
				return err
			}
			_, err = out.Write(data)
			return err
		}

		fmt.Fprintf(out, "%s (%d bytes)\n", desc.Name(), desc.Width())
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "#\tNAME\tDISPLAY\tTYPE\tOFFSET\tSIZE\tDEFAULT\tMIN\tMAX")
		for _, f := range desc.Fields() {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\t%d\t%s\t%s\t%s\n",
				f.Index, f.Name, f.DisplayName, f.Type, f.Offset, f.Size(), f.Default, f.Min, f.Max)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(describeCmd)
	describeCmd.Flags().Bool("yaml", false, "Print the schema as YAML")
}
