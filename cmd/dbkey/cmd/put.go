package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ssargent/dbkey/pkg/keycodec"
	"github.com/ssargent/dbkey/pkg/storage"
)

// putCmd represents the put command
var putCmd = &cobra.Command{
	Use:   "put <key>... <value>",
	Short: "Put a key-value pair",
	Long: `Put a value under a key. The key is one hex argument of the full key
width or a list of name=literal pairs. The last argument is the value.

With --auto FIELD the named 20-byte array field is filled with a new KSUID, so
repeated puts with the same leading fields sort in insertion order.

Example:
  dbkey put stream=7 seq=1 hello
  dbkey put --auto id stream=7 seq=1 hello`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s := current(cmd)
		st, err := s.openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		desc := st.Descriptor()
		keyArgs, value := args[:len(args)-1], []byte(args[len(args)-1])

		var key keycodec.Key
		if auto, _ := cmd.Flags().GetString("auto"); auto != "" {
			fields, err := parseAssignments(keyArgs)
			if err != nil {
				return err
			}
			parsed, err := desc.ParseArgs(fields)
			if err != nil {
				return err
			}
			if key, err = storage.PutAuto(st, parsed, auto, value); err != nil {
				return fmt.Errorf("failed to put key-value: %w", err)
			}
		} else {
			if key, err = parseKey(desc, keyArgs); err != nil {
				return err
			}
			if err := st.Put(key, value); err != nil {
				return fmt.Errorf("failed to put key-value: %w", err)
			}
		}

		fmt.Fprintln(cmd.OutOrStdout(), key.Render(s.format))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(putCmd)
	putCmd.Flags().String("auto", "", "Fill this 20-byte array field with a new KSUID")
}
