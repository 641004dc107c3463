package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/atotto/clipboard"
	"github.com/muesli/termenv"
	"github.com/schemadrift/schemadrift/internal/config"
	"github.com/schemadrift/schemadrift/internal/diff"
	"github.com/schemadrift/schemadrift/internal/engine"
	"github.com/spf13/cobra"
)

var (
	compareSourceDatabase string
	compareTargetDatabase string
	compareJobs           int
	compareIndexes        bool
	compareForeignKeys    bool
	compareIdentical      bool
	compareExclude        []string
	compareScriptOnly     bool
	compareOut            string
	compareCopy           bool
	compareExitCode       bool
)

var compareCmd = &cobra.Command{
	Use:   "compare <source> <target>",
	Short: "Compare two schemas and generate a sync script",
	Long: `Compare the source schema against the target and generate the DDL
that makes the target match the source.

Source and target are registered connection names, database URLs, or
snapshot files:

  schemadrift compare prod staging
  schemadrift compare mysql://root@localhost/app staging
  schemadrift compare app-20250101-120000.json prod

The script only ever alters the target. Use --exclude to leave
individual diffs out of it:

  schemadrift compare prod staging --exclude table:legacy_logs`,
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

		source := resolveSide(cfg, args[0], compareSourceDatabase)
		target := resolveSide(cfg, args[1], compareTargetDatabase)
		opts := ruleOptions(cmd, rules, engine.Options{
			IncludeIndexes:     compareIndexes,
			IncludeForeignKeys: compareForeignKeys,
			KeepIdentical:      compareIdentical,
			Jobs:               compareJobs,
		})

		result, err := engine.New().Compare(cmd.Context(), source, target, opts)
		if err != nil {
			return err
		}

		for _, id := range compareExclude {
			if err := result.Selection.Toggle(id); err != nil {
				return err
			}
		}

		if result.Warning != "" {
			fmt.Fprintf(os.Stderr, "⚠️  %s\n\n", result.Warning)
		}

		script, err := diff.RenderScript(result.Set, result.Selection)
		if err != nil {
			return err
		}

		counts := result.Set.Counts()
		if !compareScriptOnly {
			printCompareSummary(result)
		}

		delivered, err := deliverScript(script, compareOut, compareCopy)
		if err != nil {
			return err
		}
		if !delivered && (compareScriptOnly || counts.Total > 0) {
			printScript(script)
		}

		if compareExitCode && counts.Total > 0 {
			os.Exit(2)
		}
		return nil
	},
}

func init() {
	compareCmd.Flags().StringVar(&compareSourceDatabase, "source-database", "", "Database (or schema) to read on the source")
	compareCmd.Flags().StringVar(&compareTargetDatabase, "target-database", "", "Database (or schema) to read on the target")
	compareCmd.Flags().IntVarP(&compareJobs, "jobs", "j", 0, "Concurrent table fetches per side (default 4)")
	compareCmd.Flags().BoolVar(&compareIndexes, "indexes", false, "Fold index changes into the generated SQL")
	compareCmd.Flags().BoolVar(&compareForeignKeys, "foreign-keys", false, "Fold foreign key changes into the generated SQL")
	compareCmd.Flags().BoolVar(&compareIdentical, "include-identical", false, "Keep identical objects in the diff listing")
	compareCmd.Flags().StringArrayVarP(&compareExclude, "exclude", "x", nil, "Diff id to leave out of the script (repeatable)")
	compareCmd.Flags().BoolVar(&compareScriptOnly, "script-only", false, "Print only the script, no summary")
	compareCmd.Flags().StringVarP(&compareOut, "out", "o", "", "Write the script to a file")
	compareCmd.Flags().BoolVar(&compareCopy, "copy", false, "Copy the script to the clipboard")
	compareCmd.Flags().BoolVar(&compareExitCode, "exit-code", false, "Exit with code 2 when differences are found")
}

// loadConfigIfPresent loads the config when schemadrift has been
// initialized and returns nil when it hasn't. Comparing raw URLs or
// snapshot files works without any config.
func loadConfigIfPresent() (*config.Config, error) {
	if !config.Exists() {
		return nil, nil
	}
	return config.Load()
}

// resolveSide turns a command line argument into an engine side: a
// registered connection name, a snapshot file, or a database URL.
func resolveSide(cfg *config.Config, arg, database string) engine.Side {
	if cfg != nil {
		arg, database = cfg.Resolve(arg, database)
	}
	if isSnapshotPath(arg) {
		return engine.Side{File: strings.TrimPrefix(arg, "file:")}
	}
	return engine.Side{URL: arg, Database: database}
}

// isSnapshotPath reports whether an argument names a snapshot file
// rather than a connection URL.
func isSnapshotPath(arg string) bool {
	return strings.HasPrefix(arg, "file:") || strings.HasSuffix(arg, ".json")
}

// ruleOptions merges the rules file under the flag-derived options. An
// explicitly set flag always wins; rules fill in the rest.
func ruleOptions(cmd *cobra.Command, rules *config.Rules, opts engine.Options) engine.Options {
	if rules == nil {
		return opts
	}
	if !cmd.Flags().Changed("indexes") {
		opts.IncludeIndexes = rules.IncludeIndexes
	}
	if !cmd.Flags().Changed("foreign-keys") {
		opts.IncludeForeignKeys = rules.IncludeForeignKeys
	}
	if !cmd.Flags().Changed("jobs") && rules.Jobs > 0 {
		opts.Jobs = rules.Jobs
	}
	opts.ExcludeTables = rules.ExcludeTables
	return opts
}

func printCompareSummary(result *engine.Result) {
	fmt.Printf("Comparing %s → %s\n\n", result.Set.SourceLabel, result.Set.TargetLabel)

	counts := result.Set.Counts()
	if counts.Total == 0 {
		fmt.Println("✓ No differences found.")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "KIND\tOBJECT\tREASON")
	fmt.Fprintln(w, "----\t------\t------")
	for i := range result.Set.Diffs {
		d := &result.Set.Diffs[i]
		reason := d.Reason
		if result.Selection.IsExcluded(d.ID) {
			reason += " (excluded)"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", d.Kind, d.ID, reason)
	}
	w.Flush()

	fmt.Printf("\n%d to create, %d to alter, %d to drop\n", counts.Create, counts.Alter, counts.Drop)
	if n := result.Selection.ExcludedCount(); n > 0 {
		fmt.Printf("%d excluded from the script\n", n)
	}
	fmt.Println()
}

// deliverScript writes the script to a file and/or the clipboard. It
// reports whether any delivery happened, so callers know to fall back
// to stdout.
func deliverScript(script, outPath string, toClipboard bool) (bool, error) {
	delivered := false
	if outPath != "" {
		if err := os.WriteFile(outPath, []byte(script), 0644); err != nil {
			return false, fmt.Errorf("failed to write script: %w", err)
		}
		fmt.Printf("✓ Script written to %s\n", outPath)
		delivered = true
	}
	if toClipboard {
		if err := clipboard.WriteAll(script); err != nil {
			return false, fmt.Errorf("failed to copy script to clipboard: %w", err)
		}
		fmt.Println("✓ Script copied to clipboard")
		delivered = true
	}
	return delivered, nil
}

// printScript writes the script to stdout, syntax highlighted when the
// terminal supports color.
func printScript(script string) {
	profile := termenv.ColorProfile()
	if noColor || profile == termenv.Ascii {
		fmt.Print(script)
		return
	}

	formatter := "terminal256"
	if profile == termenv.TrueColor {
		formatter = "terminal16m"
	}
	if err := quick.Highlight(os.Stdout, script, "sql", formatter, "monokai"); err != nil {
		fmt.Print(script)
	}
}
