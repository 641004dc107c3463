package engine

import (
	"path/filepath"
	"strings"

	"github.com/schemadrift/schemadrift/internal/schema"
)

// filterTables removes tables matching any of the shell-style patterns
// from the snapshot, in place. Matching ignores case so one rule file
// covers engines with different folding rules.
func filterTables(snap *schema.Snapshot, patterns []string) {
	if len(patterns) == 0 {
		return
	}

	kept := snap.Tables[:0]
	for _, tbl := range snap.Tables {
		if !matchesAny(tbl.Name, patterns) {
			kept = append(kept, tbl)
		}
	}
	snap.Tables = kept
}

func matchesAny(name string, patterns []string) bool {
	lower := strings.ToLower(name)
	for _, pattern := range patterns {
		if ok, err := filepath.Match(strings.ToLower(pattern), lower); err == nil && ok {
			return true
		}
	}
	return false
}
