package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ssargent/dbkey/pkg/keycodec"
)

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "List key-value pairs in key order",
	Long: `List the pairs with from <= key <= to in key order. Bounds are hex and
default to the smallest and largest key. A short --from is padded with zero
bytes and a short --to with 0xFF bytes, so a prefix given as both bounds
selects the keys starting with it.

Example:
  dbkey scan
  dbkey scan --from 00000007 --to 00000008 --limit 10
  dbkey scan --from 00000007 --to 00000007`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s := current(cmd)
		st, err := s.openStore()
		if err != nil {
			return err
		}
		defer st.Close()
		desc := st.Descriptor()

		bound := func(flag string, def keycodec.Key, pad byte) (keycodec.Key, error) {
			v, _ := cmd.Flags().GetString(flag)
			if v == "" {
				return def, nil
			}
			k, err := desc.ParseHex(v)
			if err != nil {
				return keycodec.Key{}, fmt.Errorf("--%s: %w", flag, err)
			}
			if n := hexLen(v); n < desc.Width() {
				b := k.Bytes()
				for i := n; i < len(b); i++ {
					b[i] = pad
				}
			}
			return k, nil
		}
		from, err := bound("from", desc.MinKey(), 0x00)
		if err != nil {
			return err
		}
		to, err := bound("to", desc.MaxKey(), 0xFF)
		if err != nil {
			return err
		}
		limit, _ := cmd.Flags().GetInt("limit")

		out := cmd.OutOrStdout()
		n := 0
		err = st.Scan(from, to, func(k keycodec.Key, v []byte) bool {
			fmt.Fprintf(out, "%s  %s\n", k.Render(s.format), v)
			n++
			return limit <= 0 || n < limit
		})
		if err != nil {
			return fmt.Errorf("failed to scan: %w", err)
		}
		return nil
	},
}

// hexLen returns how many bytes a hex bound names before padding.
func hexLen(s string) int {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && (s[:2] == "0x" || s[:2] == "0X") {
		s = s[2:]
	}
	return len(strings.ReplaceAll(s, "_", "")) / 2
}

func init() {
	rootCmd.AddCommand(scanCmd)
	scanCmd.Flags().String("from", "", "Smallest key to list (hex)")
	scanCmd.Flags().String("to", "", "Largest key to list (hex)")
	scanCmd.Flags().Int("limit", 0, "Stop after this many pairs (0 lists all)")
}
