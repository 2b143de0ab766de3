package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/flatbed/internal/config"
	"github.com/jackzampolin/flatbed/internal/home"
)

var configForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration commands",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default config file",
	Long: `Write a commented default config file under the home directory.

Example:
  flatbed config init
  flatbed config init --home /srv/flatbed --force`,
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := home.New(homeDir)
		if err != nil {
			return err
		}
		if err := h.EnsureExists(); err != nil {
			return err
		}
		if h.ConfigExists() && !configForce {
			return fmt.Errorf("config already exists at %s (use --force to overwrite)", h.ConfigPath())
		}

		if err := config.WriteDefault(h.ConfigPath()); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", h.ConfigPath())
		return nil
	},
}

func init() {
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "overwrite an existing config file")

	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}
