package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/schemadrift/schemadrift/internal/config"
	"github.com/schemadrift/schemadrift/internal/diff"
	"github.com/schemadrift/schemadrift/internal/engine"
	"github.com/schemadrift/schemadrift/internal/tui"
	"github.com/spf13/cobra"
)

var (
	reviewSourceDatabase string
	reviewTargetDatabase string
	reviewJobs           int
	reviewIndexes        bool
	reviewForeignKeys    bool
	reviewIdentical      bool
	reviewOut            string
	reviewCopy           bool
)

var reviewCmd = &cobra.Command{
	Use:   "review <source> <target>",
	Short: "Review differences interactively before generating the script",
	Long: `Compare two schemas and walk the differences in an interactive screen
before any script is generated.

Space toggles a diff in or out of the script, enter shows its detail,
and g generates the script for everything still selected:

  schemadrift review prod staging`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfigIfPresent()
		if err != nil {
			return err
		}
		rules, err := config.LoadRules()
		if err != nil {
			return err
		}

		source := resolveSide(cfg, args[0], reviewSourceDatabase)
		target := resolveSide(cfg, args[1], reviewTargetDatabase)
		opts := ruleOptions(cmd, rules, engine.Options{
			IncludeIndexes:     reviewIndexes,
			IncludeForeignKeys: reviewForeignKeys,
			KeepIdentical:      reviewIdentical,
			Jobs:               reviewJobs,
		})

		m := tui.NewModel(func(ctx context.Context) (*engine.Result, error) {
			return engine.New().Compare(ctx, source, target, opts)
		}, version)

		p := tea.NewProgram(m, tea.WithAltScreen())
		if _, err := p.Run(); err != nil {
			return fmt.Errorf("failed to run review: %w", err)
		}

		if err := m.Err(); err != nil {
			return err
		}
		if !m.Accepted() {
			return nil
		}

		result := m.Result()
		if result.Set.Counts().Total == 0 {
			fmt.Println("✓ No differences found.")
			return nil
		}

		script, err := diff.RenderScript(result.Set, result.Selection)
		if err != nil {
			return err
		}

		delivered, err := deliverScript(script, reviewOut, reviewCopy)
		if err != nil {
			return err
		}
		if !delivered {
			printScript(script)
		}
		return nil
	},
}

func init() {
	reviewCmd.Flags().StringVar(&reviewSourceDatabase, "source-database", "", "Database (or schema) to read on the source")
	reviewCmd.Flags().StringVar(&reviewTargetDatabase, "target-database", "", "Database (or schema) to read on the target")
	reviewCmd.Flags().IntVarP(&reviewJobs, "jobs", "j", 0, "Concurrent table fetches per side (default 4)")
	reviewCmd.Flags().BoolVar(&reviewIndexes, "indexes", false, "Fold index changes into the generated SQL")
	reviewCmd.Flags().BoolVar(&reviewForeignKeys, "foreign-keys", false, "Fold foreign key changes into the generated SQL")
	reviewCmd.Flags().BoolVar(&reviewIdentical, "include-identical", false, "Keep identical objects in the diff listing")
	reviewCmd.Flags().StringVarP(&reviewOut, "out", "o", "", "Write the script to a file")
	reviewCmd.Flags().BoolVar(&reviewCopy, "copy", false, "Copy the script to the clipboard")
}
