package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/schemadrift/schemadrift/internal/config"
	"github.com/schemadrift/schemadrift/internal/engine"
	"github.com/spf13/cobra"
)

var (
	snapshotDatabase string
	snapshotJobs     int
	snapshotOut      string
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot <connection>",
	Short: "Save a schema snapshot to a file",
	Long: `Capture the full schema of a database and save it as a JSON file for
later offline comparison:

  schemadrift snapshot prod --database app
  schemadrift compare app-20250101-120000.json staging

Without --out the file lands under ~/.schemadrift/snapshots/. Use
--out - to write the snapshot to stdout.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfigIfPresent()
		if err != nil {
			return err
		}

		side := resolveSide(cfg, args[0], snapshotDatabase)
		if side.File != "" {
			return fmt.Errorf("'%s' is already a snapshot file", args[0])
		}

		snap, err := engine.New().Snapshot(cmd.Context(), side, engine.Options{Jobs: snapshotJobs})
		if err != nil {
			return err
		}

		if snapshotOut == "-" {
			data, err := json.MarshalIndent(snap, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to encode snapshot: %w", err)
			}
			fmt.Println(string(data))
			return nil
		}

		out := snapshotOut
		if out == "" {
			base, err := config.SnapshotBasePath()
			if err != nil {
				return err
			}
			if err := os.MkdirAll(base, 0755); err != nil {
				return fmt.Errorf("failed to create snapshot directory: %w", err)
			}
			name := fmt.Sprintf("%s-%s.json", snap.Database, snap.CapturedAt.Format("20060102-150405"))
			out = filepath.Join(base, name)
		}

		if err := snap.SaveFile(out); err != nil {
			return err
		}

		fmt.Printf("✓ Snapshot of %s saved to %s\n", snap.Database, out)
		fmt.Printf("  Engine: %s %s\n", snap.Engine, snap.ServerVersion)
		fmt.Printf("  Tables: %d, Views: %d\n", len(snap.Tables), len(snap.Views))
		return nil
	},
}

func init() {
	snapshotCmd.Flags().StringVarP(&snapshotDatabase, "database", "d", "", "Database (or schema) to capture")
	snapshotCmd.Flags().IntVarP(&snapshotJobs, "jobs", "j", 0, "Concurrent table fetches (default 4)")
	snapshotCmd.Flags().StringVarP(&snapshotOut, "out", "o", "", "Output file, or - for stdout")
}
