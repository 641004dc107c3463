package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/schemadrift/schemadrift/internal/introspect"
	"github.com/schemadrift/schemadrift/internal/schema"
	"github.com/spf13/cobra"
)

var databasesCmd = &cobra.Command{
	Use:   "databases <connection>",
	Short: "List databases on a server",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfigIfPresent()
		if err != nil {
			return err
		}

		side := resolveSide(cfg, args[0], "")
		if side.File != "" {
			return fmt.Errorf("'%s' is a snapshot file; use 'schemadrift tables %s'", args[0], args[0])
		}

		in, err := introspect.Open(cmd.Context(), side.URL)
		if err != nil {
			return err
		}
		defer in.Close()

		databases, err := in.ListDatabases(cmd.Context())
		if err != nil {
			return err
		}
		for _, db := range databases {
			fmt.Println(db)
		}
		return nil
	},
}

var tablesDatabase string

var tablesCmd = &cobra.Command{
	Use:   "tables <connection>",
	Short: "List tables and views",
	Long:  "List the tables and views of a database, or of a saved snapshot file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfigIfPresent()
		if err != nil {
			return err
		}

		side := resolveSide(cfg, args[0], tablesDatabase)

		var tables, views []string
		if side.File != "" {
			snap, err := schema.LoadFile(side.File)
			if err != nil {
				return err
			}
			tables, views = snap.TableNames(), snap.ViewNames()
		} else {
			in, err := introspect.Open(cmd.Context(), side.URL)
			if err != nil {
				return err
			}
			defer in.Close()

			database := side.Database
			if database == "" {
				if in.Engine() != schema.EngineSQLite {
					return fmt.Errorf("no database selected; use --database")
				}
				database = "main"
			}

			if tables, err = in.ListTables(cmd.Context(), database); err != nil {
				return err
			}
			if views, err = in.ListViews(cmd.Context(), database); err != nil {
				return err
			}
		}

		if len(tables) == 0 && len(views) == 0 {
			fmt.Println("No tables found.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tTYPE")
		fmt.Fprintln(w, "----\t----")
		for _, t := range tables {
			fmt.Fprintf(w, "%s\ttable\n", t)
		}
		for _, v := range views {
			fmt.Fprintf(w, "%s\tview\n", v)
		}
		w.Flush()
		return nil
	},
}

func init() {
	tablesCmd.Flags().StringVarP(&tablesDatabase, "database", "d", "", "Database (or schema) to list")
}
