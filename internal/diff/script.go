package diff

import (
	"fmt"
	"strings"
	"time"
)

// ScriptGenerationError reports a malformed Set reaching the script
// renderer. It indicates a programming error upstream, not bad user
// input.
type ScriptGenerationError struct {
	Reason string
}

func (e *ScriptGenerationError) Error() string {
	return "script generation failed: " + e.Reason
}

// RenderScript renders the sync script for a set minus the selection's
// exclusions. Output is byte-identical for identical inputs: iteration
// follows Set.Diffs order and the timestamp comes from the set, never
// from the clock. Excluded objects appear nowhere in the output,
// comments included. A nil selection renders everything.
func RenderScript(set *Set, sel *Selection) (string, error) {
	if set == nil {
		return "", &ScriptGenerationError{Reason: "no diff set"}
	}

	var b strings.Builder
	b.WriteString("-- schemadrift sync script\n")
	fmt.Fprintf(&b, "-- run:       %s\n", set.RunID)
	fmt.Fprintf(&b, "-- source:    %s\n", set.SourceLabel)
	fmt.Fprintf(&b, "-- target:    %s\n", set.TargetLabel)
	fmt.Fprintf(&b, "-- generated: %s\n", set.GeneratedAt.Format(time.RFC3339))
	b.WriteString("--\n")
	b.WriteString("-- Statements alter the target schema. Review before applying.\n\n")

	rendered := 0
	for i := range set.Diffs {
		d := &set.Diffs[i]
		if d.Kind == KindIdentical {
			continue
		}
		if sel != nil && sel.IsExcluded(d.ID) {
			continue
		}
		if d.SQL == "" {
			return "", &ScriptGenerationError{
				Reason: fmt.Sprintf("%s diff %s has no SQL", d.Kind, d.ID),
			}
		}
		fmt.Fprintf(&b, "-- %s %s %s\n", d.Kind, d.ObjectType, d.ResolvedName())
		b.WriteString(d.SQL)
		b.WriteString(";\n\n")
		rendered++
	}

	fmt.Fprintf(&b, "-- end of script: %s\n", countNoun(rendered, "change"))
	return b.String(), nil
}
