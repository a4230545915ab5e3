package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/kardex/kardex/pkg/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and manage the configuration file",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		data, err := yaml.Marshal(cfg)
		if err != nil {
			fatal("Error encoding config", err)
		}
		os.Stdout.Write(data)
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		path := configPath
		if path == "" {
			var err error
			if path, err = config.DefaultPath(); err != nil {
				fatal("Error resolving config path", err)
			}
		}

		if _, err := os.Stat(path); err == nil {
			fatal("Refusing to overwrite", fmt.Errorf("config already exists at %s", path))
		}

		if err := config.Save(path, config.Default()); err != nil {
			fatal("Error writing config", err)
		}
		fmt.Printf("Wrote default config to %s\n", path)
	},
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the config file for errors",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		path := configPath
		if path == "" {
			var err error
			if path, err = config.DefaultPath(); err != nil {
				fatal("Error resolving config path", err)
			}
		}

		if _, err := config.Load(path); err != nil {
			fatal("Invalid config", err)
		}
		fmt.Printf("%s is valid\n", path)
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configValidateCmd)
}
