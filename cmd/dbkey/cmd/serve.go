/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ssargent/dbkey/pkg/api"
	"github.com/ssargent/dbkey/pkg/config"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start the dbkey REST API server for the configured key schema.

The server encodes and decodes keys and stores values under them. Requests
must carry the API key in the X-API-Key header unless the key is empty.
An API key of "auto" generates a key for this run and prints it.

Examples:
  dbkey serve
  dbkey serve --port 9000 --bind 0.0.0.0
  dbkey serve --in-memory --api-key ""
  dbkey serve --engine log`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s := current(cmd)
		cfg := s.cfg
		flags := cmd.Flags()

		// Override config with command line flags if provided
		if flags.Changed("port") {
			cfg.Port, _ = flags.GetInt("port")
		}
		if flags.Changed("bind") {
			cfg.Bind, _ = flags.GetString("bind")
		}
		if flags.Changed("api-key") {
			cfg.Security.APIKey, _ = flags.GetString("api-key")
		}
		if cfg.Security.APIKey == "auto" {
			key, err := config.GenerateSecureKey(32)
			if err != nil {
				return err
			}
			cfg.Security.APIKey = key
			cmd.Printf("Generated API key for this run: %s\n", key)
		}

		if container == nil {
			return fmt.Errorf("dependency container not initialized")
		}
		inMemory, _ := flags.GetBool("in-memory")
		if inMemory {
			cfg.Storage.Engine = api.EngineMemory
		}
		st, err := s.openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		cmd.Printf("Starting dbkey server on %s:%d\n", cfg.Bind, cfg.Port)
		if cfg.Storage.Engine != api.EngineMemory {
			cmd.Printf("Data directory: %s (%s)\n", cfg.DataDir, cfg.Storage.Engine)
		}

		serverStarter := container.GetServerFactory().CreateServerStarter()
		return serverStarter.StartServer(ctx, st, api.ServerConfig{
			Port:         cfg.Port,
			Bind:         cfg.Bind,
			APIKey:       cfg.Security.APIKey,
			Format:       s.format,
			RequestLog:   cfg.Logging.RequestLog(),
			MaxValueSize: cfg.Security.MaxValueSize,
		})
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntP("port", "p", 8080, "Port to listen on")
	serveCmd.Flags().String("bind", "127.0.0.1", "Address to bind server to")
	serveCmd.Flags().String("api-key", "", "API key for authentication (empty disables it)")
	serveCmd.Flags().Bool("in-memory", false, "Serve an in-memory store instead of the data directory (same as --engine memory)")
}
