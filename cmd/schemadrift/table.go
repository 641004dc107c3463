package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/schemadrift/schemadrift/internal/config"
	"github.com/schemadrift/schemadrift/internal/diff"
	"github.com/schemadrift/schemadrift/internal/engine"
	"github.com/spf13/cobra"
)

var (
	tableIndexes     bool
	tableForeignKeys bool
	tableScriptOnly  bool
	tableOut         string
	tableCopy        bool
	tableExitCode    bool
)

var tableCmd = &cobra.Command{
	Use:   "table <source> <source-table> <target> [target-table]",
	Short: "Compare a single table pair",
	Long: `Compare one table on the source against one table on the target. The
table names need not match, which covers staged renames:

  schemadrift table prod users staging
  schemadrift table prod users staging users_v2

Table arguments may carry a database qualifier (app.users). Without
one the connection's default database applies.`,
	Args: cobra.RangeArgs(3, 4),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfigIfPresent()
		if err != nil {
			return err
		}
		rules, err := config.LoadRules()
		if err != nil {
			return err
		}

		sourceDB, sourceTable := splitQualified(args[1])
		targetArg := args[1]
		if len(args) == 4 {
			targetArg = args[3]
		}
		targetDB, targetTable := splitQualified(targetArg)

		source := resolveSide(cfg, args[0], sourceDB)
		target := resolveSide(cfg, args[2], targetDB)

		opts := engine.Options{
			IncludeIndexes:     tableIndexes,
			IncludeForeignKeys: tableForeignKeys,
		}
		if rules != nil {
			if !cmd.Flags().Changed("indexes") {
				opts.IncludeIndexes = rules.IncludeIndexes
			}
			if !cmd.Flags().Changed("foreign-keys") {
				opts.IncludeForeignKeys = rules.IncludeForeignKeys
			}
		}

		result, err := engine.New().CompareTables(cmd.Context(), source, target, sourceTable, targetTable, opts)
		if err != nil {
			return err
		}

		if result.Warning != "" {
			fmt.Fprintf(os.Stderr, "⚠️  %s\n\n", result.Warning)
		}

		d := &result.Set.Diffs[0]
		script, err := diff.RenderScript(result.Set, result.Selection)
		if err != nil {
			return err
		}

		if !tableScriptOnly {
			printTableSummary(result, d)
		}

		delivered, err := deliverScript(script, tableOut, tableCopy)
		if err != nil {
			return err
		}
		if !delivered && (tableScriptOnly || d.Kind != diff.KindIdentical) {
			printScript(script)
		}

		if tableExitCode && d.Kind != diff.KindIdentical {
			os.Exit(2)
		}
		return nil
	},
}

func init() {
	tableCmd.Flags().BoolVar(&tableIndexes, "indexes", false, "Fold index changes into the generated SQL")
	tableCmd.Flags().BoolVar(&tableForeignKeys, "foreign-keys", false, "Fold foreign key changes into the generated SQL")
	tableCmd.Flags().BoolVar(&tableScriptOnly, "script-only", false, "Print only the script, no summary")
	tableCmd.Flags().StringVarP(&tableOut, "out", "o", "", "Write the script to a file")
	tableCmd.Flags().BoolVar(&tableCopy, "copy", false, "Copy the script to the clipboard")
	tableCmd.Flags().BoolVar(&tableExitCode, "exit-code", false, "Exit with code 2 when the tables differ")
}

// splitQualified splits an optionally qualified table argument into its
// database and table parts. A bare name leaves the database empty.
func splitQualified(arg string) (database, table string) {
	if i := strings.Index(arg, "."); i >= 0 {
		return arg[:i], arg[i+1:]
	}
	return "", arg
}

func printTableSummary(result *engine.Result, d *diff.Diff) {
	fmt.Printf("Comparing %s → %s\n\n", result.Set.SourceLabel, result.Set.TargetLabel)

	if d.Kind == diff.KindIdentical {
		fmt.Println("✓ Tables are identical.")
		return
	}

	fmt.Printf("%s: %s\n", d.ID, d.Reason)
	for _, ch := range d.Changes {
		fmt.Printf("  %s %s: %s\n", changeMarker(ch.Kind), ch.ColumnName, ch.Detail)
	}
	for _, change := range d.IndexChanges {
		fmt.Printf("  ~ %s\n", change)
	}
	for _, change := range d.ForeignKeyChanges {
		fmt.Printf("  ~ %s\n", change)
	}
	fmt.Println()
}

func changeMarker(kind diff.ChangeKind) string {
	switch kind {
	case diff.ChangeAdd:
		return "+"
	case diff.ChangeDrop:
		return "-"
	default:
		return "~"
	}
}
