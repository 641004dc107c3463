package main

import (
	"fmt"

	"github.com/schemadrift/schemadrift/internal/config"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize schemadrift globally",
	Long:  "Creates the schemadrift config directory and configuration file at ~/.schemadrift/",
	RunE: func(cmd *cobra.Command, args []string) error {
		if config.Exists() {
			return fmt.Errorf("schemadrift already initialized at ~/.schemadrift/")
		}

		if err := config.Init(); err != nil {
			return fmt.Errorf("failed to initialize: %w", err)
		}

		path, err := config.ConfigPath()
		if err != nil {
			return fmt.Errorf("failed to determine config path: %w", err)
		}
		fmt.Printf("Schemadrift initialized at %s\n", path)
		fmt.Println("\nNext steps:")
		fmt.Println("  schemadrift connections add prod <url>   # Register a connection")
		fmt.Println("  schemadrift compare prod staging         # Compare two schemas")

		return nil
	},
}
