package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var helpMarkdown bool

var helpCmd = &cobra.Command{
	Use:   "help [command]",
	Short: "Help about any command",
	Long: `Help provides help for any command in the application.
Simply type schemadrift help [path to command] for full details.

Use --markdown to output documentation in markdown format (useful for AI tools).`,
	Run: func(cmd *cobra.Command, args []string) {
		if helpMarkdown {
			printMarkdownHelp(rootCmd)
			return
		}

		// Default help behavior
		if len(args) == 0 {
			_ = rootCmd.Help()
			fmt.Println()
			fmt.Println("💡 Tip: Use 'schemadrift help --markdown' for AI-friendly documentation")
			return
		}

		// Find the command and show its help
		targetCmd, _, err := rootCmd.Find(args)
		if err != nil {
			fmt.Printf("Unknown command: %s\n", strings.Join(args, " "))
			return
		}
		_ = targetCmd.Help()
	},
}

func init() {
	helpCmd.Flags().BoolVar(&helpMarkdown, "markdown", false, "Output documentation in markdown format (AI-friendly)")
	// Replace Cobra's default help command with our custom one
	rootCmd.SetHelpCommand(helpCmd)
}

func printMarkdownHelp(cmd *cobra.Command) {
	fmt.Println("# Schemadrift CLI Reference")
	fmt.Println()
	fmt.Println("Schemadrift compares database schemas and generates the DDL that brings a target schema in line with a source.")
	fmt.Println()
	fmt.Printf("**Version:** %s\n", version)
	fmt.Println()
	fmt.Println("## Commands")
	fmt.Println()

	// Group commands by category
	categories := map[string][]*cobra.Command{
		"Core":        {},
		"Inspection":  {},
		"Connections": {},
		"Utilities":   {},
	}

	for _, c := range cmd.Commands() {
		if c.Hidden {
			continue
		}
		switch c.Name() {
		case "init", "compare", "table", "review", "snapshot":
			categories["Core"] = append(categories["Core"], c)
		case "databases", "tables":
			categories["Inspection"] = append(categories["Inspection"], c)
		case "connections":
			categories["Connections"] = append(categories["Connections"], c)
		default:
			categories["Utilities"] = append(categories["Utilities"], c)
		}
	}

	// Print in order
	categoryOrder := []string{"Core", "Inspection", "Connections", "Utilities"}
	for _, cat := range categoryOrder {
		commands := categories[cat]
		if len(commands) == 0 {
			continue
		}

		fmt.Printf("### %s\n\n", cat)
		for _, c := range commands {
			printCommandMarkdown(c, 0)
		}
	}

	// Print exit codes
	fmt.Println("## Exit Codes")
	fmt.Println()
	fmt.Println("| Code | Meaning |")
	fmt.Println("|------|---------|")
	fmt.Println("| `0` | Success, or differences found without `--exit-code` |")
	fmt.Println("| `1` | Error: bad arguments, connection failure, failed metadata fetch |")
	fmt.Println("| `2` | Differences found and `--exit-code` was given |")
	fmt.Println()

	// Print configuration
	fmt.Println("## Configuration Files")
	fmt.Println()
	fmt.Println("- **Global config:** `~/.schemadrift/schemadrift.json` (connections, update state)")
	fmt.Println("- **Rules file:** `~/.schemadrift/rules.yaml` (exclude_tables, include_indexes, include_foreign_keys, jobs)")
	fmt.Println("- **Snapshots:** `~/.schemadrift/snapshots/`")
	fmt.Println()
}

func printCommandMarkdown(cmd *cobra.Command, depth int) {
	indent := strings.Repeat("  ", depth)

	// Command header
	fmt.Printf("%s#### `schemadrift %s`\n\n", indent, strings.TrimPrefix(cmd.CommandPath(), "schemadrift "))

	// Description
	if cmd.Long != "" {
		fmt.Printf("%s%s\n\n", indent, strings.Split(cmd.Long, "\n")[0])
	} else if cmd.Short != "" {
		fmt.Printf("%s%s\n\n", indent, cmd.Short)
	}

	// Usage
	if cmd.Use != "" && !cmd.HasSubCommands() {
		fmt.Printf("%s**Usage:** `%s`\n\n", indent, cmd.UseLine())
	}

	// Aliases
	if len(cmd.Aliases) > 0 {
		fmt.Printf("%s**Aliases:** %s\n\n", indent, strings.Join(cmd.Aliases, ", "))
	}

	// Flags
	if cmd.HasLocalFlags() {
		fmt.Printf("%s**Flags:**\n\n", indent)
		cmd.LocalFlags().VisitAll(func(f *pflag.Flag) {
			if f.Hidden {
				return
			}
			shorthand := ""
			if f.Shorthand != "" {
				shorthand = fmt.Sprintf("-%s, ", f.Shorthand)
			}
			fmt.Printf("%s- `%s--%s`: %s", indent, shorthand, f.Name, f.Usage)
			if f.DefValue != "" && f.DefValue != "false" && f.DefValue != "[]" {
				fmt.Printf(" (default: %s)", f.DefValue)
			}
			fmt.Println()
		})
		fmt.Println()
	}

	// Subcommands
	if cmd.HasSubCommands() {
		subCmds := cmd.Commands()
		// Sort by name
		sort.Slice(subCmds, func(i, j int) bool {
			return subCmds[i].Name() < subCmds[j].Name()
		})

		fmt.Printf("%s**Subcommands:**\n\n", indent)
		fmt.Printf("%s| Command | Description |\n", indent)
		fmt.Printf("%s|---------|-------------|\n", indent)
		for _, sub := range subCmds {
			if sub.Hidden {
				continue
			}
			fmt.Printf("%s| `%s` | %s |\n", indent, sub.Name(), sub.Short)
		}
		fmt.Println()
	}
}
