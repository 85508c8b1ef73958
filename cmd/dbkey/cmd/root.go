/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ssargent/dbkey/pkg/api"
	"github.com/ssargent/dbkey/pkg/config"
	"github.com/ssargent/dbkey/pkg/di"
	"github.com/ssargent/dbkey/pkg/keycodec"
	"github.com/ssargent/dbkey/pkg/schema"
	"github.com/ssargent/dbkey/pkg/storage"
)

var container *di.Container

// SetContainer injects the dependency container used by the commands
func SetContainer(c *di.Container) {
	container = c
}

type settingsKey struct{}

// settings is the configuration in effect for one command run: the config
// file overlaid with any flags given on the command line.
type settings struct {
	configPath string
	cfg        *config.Config
	format     keycodec.Format
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "dbkey",
	Short: "dbkey - order-preserving composite keys",
	Long: `dbkey encodes tuples of integers and byte arrays into fixed-width
binary keys whose byte order matches the order of the tuples.

The key layout comes from a YAML schema file. Keys can be encoded, decoded
and stored in an ordered key-value store that supports range scans.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSettings(cmd)
		if err != nil {
			return err
		}
		cmd.SetContext(context.WithValue(cmd.Context(), settingsKey{}, s))
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to config file (default: OS-specific location)")
	rootCmd.PersistentFlags().String("schema", "", "Path to the key schema file")
	rootCmd.PersistentFlags().StringP("data-dir", "d", "", "Data directory for the store")
	rootCmd.PersistentFlags().String("engine", "", "Storage engine: pebble, log or memory")
	rootCmd.PersistentFlags().StringP("format", "f", "",
		"Key format: compact, std, lower_hex, upper_hex, pretty_lower_hex, pretty_upper_hex")
}

func loadSettings(cmd *cobra.Command) (*settings, error) {
	flags := cmd.Flags()
	configPath, _ := flags.GetString("config")
	if configPath == "" {
		configPath = config.GetDefaultConfigPath()
	}

	cfg := config.DefaultConfig()
	if config.ConfigExists(configPath) {
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	// Flags win over the config file
	if flags.Changed("data-dir") {
		cfg.DataDir, _ = flags.GetString("data-dir")
	}
	if flags.Changed("schema") {
		cfg.SchemaPath, _ = flags.GetString("schema")
	}
	if flags.Changed("engine") {
		cfg.Storage.Engine, _ = flags.GetString("engine")
	}
	if flags.Changed("format") {
		cfg.Display.Format, _ = flags.GetString("format")
	}

	format, err := keycodec.ParseFormat(cfg.Display.Format)
	if err != nil {
		return nil, fmt.Errorf("invalid display format: %w", err)
	}
	return &settings{configPath: configPath, cfg: cfg, format: format}, nil
}

func current(cmd *cobra.Command) *settings {
	if s, ok := cmd.Context().Value(settingsKey{}).(*settings); ok {
		return s
	}
	return &settings{cfg: config.DefaultConfig()}
}

func (s *settings) descriptor() (*keycodec.Descriptor, error) {
	desc, err := schema.Load(s.cfg.SchemaPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("schema %s not found (run 'dbkey init' first)", s.cfg.SchemaPath)
	}
	return desc, err
}

// openStore opens the configured engine for the configured schema.
func (s *settings) openStore() (storage.Store, error) {
	if container == nil {
		return nil, fmt.Errorf("dependency container not initialized")
	}
	desc, err := s.descriptor()
	if err != nil {
		return nil, err
	}
	st, err := container.GetStoreFactory().OpenStore(api.StoreConfig{
		DataDir:    s.cfg.DataDir,
		Descriptor: desc,
		Engine:     s.cfg.Storage.Engine,
		Sync:       s.cfg.Storage.Sync,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	return st, nil
}

// parseAssignments reads name=literal arguments.
func parseAssignments(args []string) (map[string]string, error) {
	fields := make(map[string]string, len(args))
	for _, arg := range args {
		name, lit, ok := strings.Cut(arg, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("expected name=literal, got %q", arg)
		}
		if _, dup := fields[name]; dup {
			return nil, fmt.Errorf("field %s given twice", name)
		}
		fields[name] = lit
	}
	return fields, nil
}

// parseKey reads a key given either as one hex argument of the full key width
// or as name=literal pairs, with defaults for the fields left out.
func parseKey(desc *keycodec.Descriptor, args []string) (keycodec.Key, error) {
	if len(args) == 1 && !strings.Contains(args[0], "=") {
		return desc.ParseHexExact(args[0])
	}
	fields, err := parseAssignments(args)
	if err != nil {
		return keycodec.Key{}, err
	}
	return desc.FromLiterals(fields)
}
