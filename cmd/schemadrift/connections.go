package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/schemadrift/schemadrift/internal/config"
	"github.com/schemadrift/schemadrift/internal/introspect"
	"github.com/spf13/cobra"
)

var connectionsCmd = &cobra.Command{
	Use:     "connections",
	Aliases: []string{"conn"},
	Short:   "Manage saved connections",
	Long:    "Add, remove, and list registered database connections",
}

var connectionsAddDatabase string

var connectionsAddCmd = &cobra.Command{
	Use:   "add <name> <url>",
	Short: "Register a connection",
	Long: `Save a database URL under a name for use in compare, table, and
snapshot commands. The URL is stored as given, credentials included,
in ~/.schemadrift/schemadrift.json.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		// Auto-initialize schemadrift if not already done
		if !config.Exists() {
			fmt.Println("Schemadrift not initialized. Initializing now...")
			if err := config.Init(); err != nil {
				return fmt.Errorf("failed to initialize schemadrift: %w", err)
			}
			configPath, err := config.ConfigPath()
			if err != nil {
				return fmt.Errorf("failed to determine config path: %w", err)
			}
			fmt.Printf("Initialized schemadrift at %s\n\n", configPath)
		}

		cfg, err := config.Load()
		if err != nil {
			return err
		}

		name, urlstr := args[0], args[1]
		if err := cfg.AddConnection(name, urlstr, connectionsAddDatabase); err != nil {
			return err
		}

		if err := config.Save(cfg); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}

		fmt.Printf("Added connection '%s'\n", name)
		fmt.Printf("  URL: %s\n", introspect.MaskURL(urlstr))
		if connectionsAddDatabase != "" {
			fmt.Printf("  Database: %s\n", connectionsAddDatabase)
		}
		return nil
	},
}

var connectionsRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Unregister a connection",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		if err := cfg.RemoveConnection(args[0]); err != nil {
			return err
		}

		if err := config.Save(cfg); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}

		fmt.Printf("Removed connection '%s'\n", args[0])
		return nil
	},
}

var connectionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered connections",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		names := cfg.ListConnections()
		if len(names) == 0 {
			fmt.Println("No connections registered.")
			fmt.Println("Use 'schemadrift connections add <name> <url>' to add one.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tURL\tDATABASE")
		fmt.Fprintln(w, "----\t---\t--------")
		for _, name := range names {
			conn, _ := cfg.GetConnection(name)
			database := conn.Database
			if database == "" {
				database = "-"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", name, introspect.MaskURL(conn.URL), database)
		}
		w.Flush()
		return nil
	},
}

func init() {
	connectionsAddCmd.Flags().StringVarP(&connectionsAddDatabase, "database", "d", "", "Default database for this connection")

	connectionsCmd.AddCommand(connectionsAddCmd)
	connectionsCmd.AddCommand(connectionsRemoveCmd)
	connectionsCmd.AddCommand(connectionsListCmd)

	rootCmd.AddCommand(connectionsCmd)
}
