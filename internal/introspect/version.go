package introspect

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-version"

	"github.com/schemadrift/schemadrift/internal/schema"
)

// VersionSkew returns a warning worth surfacing before a comparison
// runs, or "" when the two servers look compatible. Cross-engine pairs
// always warn; same-engine pairs warn on a major version gap.
func VersionSkew(source, target *schema.Snapshot) string {
	if source.Engine != target.Engine {
		return fmt.Sprintf("comparing %s against %s: generated SQL uses the %s dialect",
			source.Engine, target.Engine, target.Engine)
	}

	sv, err := parseServerVersion(source.ServerVersion)
	if err != nil {
		return ""
	}
	tv, err := parseServerVersion(target.ServerVersion)
	if err != nil {
		return ""
	}
	if sv.Segments()[0] != tv.Segments()[0] {
		return fmt.Sprintf("source runs %s %s, target %s: defaults and types can differ across major versions",
			source.Engine, source.ServerVersion, target.ServerVersion)
	}
	return ""
}

// parseServerVersion extracts a comparable version from a server
// banner like "8.0.36-debian" or "16.2 (Debian 16.2-1)".
func parseServerVersion(raw string) (*version.Version, error) {
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return nil, fmt.Errorf("empty version string")
	}
	return version.NewVersion(fields[0])
}
