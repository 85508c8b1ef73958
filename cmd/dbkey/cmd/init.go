/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ssargent/dbkey/pkg/config"
	"github.com/ssargent/dbkey/pkg/schema"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a configuration and a sample key schema",
	Long: `Create a configuration file with a generated API key and a sample key
schema next to it.

This command will:
- Write the configuration file with secure permissions
- Write schema.yaml declaring a sample EventKey, unless one exists
- Create the data directory

Examples:
  dbkey init
  dbkey init --config ./dbkey.yaml --data-dir ./data --print-key`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s := current(cmd)
		force, _ := cmd.Flags().GetBool("force")
		printKey, _ := cmd.Flags().GetBool("print-key")

		if config.ConfigExists(s.configPath) && !force {
			cmd.Printf("Already initialized. Use --force to reinitialize.\n")
			cmd.Printf("Configuration: %s\n", s.configPath)
			return nil
		}

		dataDir, _ := cmd.Flags().GetString("data-dir")
		cfg, err := config.BootstrapConfig(s.configPath, dataDir)
		if err != nil {
			return fmt.Errorf("failed to bootstrap config: %w", err)
		}
		if cmd.Flags().Changed("schema") {
			cfg.SchemaPath = s.cfg.SchemaPath
			if err := config.SaveConfig(cfg, s.configPath); err != nil {
				return err
			}
		}

		if force || !config.ConfigExists(cfg.SchemaPath) {
			desc, err := schema.Parse([]byte(schema.Sample))
			if err != nil {
				return err
			}
			if err := schema.Save(desc, cfg.SchemaPath); err != nil {
				return err
			}
			cmd.Printf("Schema written to %s\n", cfg.SchemaPath)
		}

		if err := os.MkdirAll(cfg.DataDir, 0750); err != nil {
			return fmt.Errorf("failed to create data directory: %w", err)
		}

		cmd.Printf("Configuration written to %s\n", s.configPath)
		cmd.Printf("Data directory: %s\n", cfg.DataDir)
		if printKey {
			cmd.Printf("API key: %s\n", cfg.Security.APIKey)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().Bool("force", false, "Overwrite an existing configuration and schema")
	initCmd.Flags().Bool("print-key", false, "Print the generated API key")
}
