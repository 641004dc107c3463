// Package diff implements the comparison core: set reconciliation,
// structural table comparison, diff classification, the selection
// model, and sync script rendering. All computation here is pure and
// synchronous; fetching schema metadata is the engine's job.
package diff

import (
	"fmt"
	"time"
)

// Kind is the DDL action a diff calls for.
type Kind string

const (
	KindCreate    Kind = "create"
	KindAlter     Kind = "alter"
	KindDrop      Kind = "drop"
	KindIdentical Kind = "identical"
)

// ObjectType is the kind of schema object a diff describes.
type ObjectType string

const (
	ObjectTable ObjectType = "table"
	ObjectView  ObjectType = "view"
)

// ChangeKind classifies one column-level change inside an alter diff.
type ChangeKind string

const (
	ChangeAdd    ChangeKind = "add"
	ChangeModify ChangeKind = "modify"
	ChangeDrop   ChangeKind = "drop"
)

// ColumnChange is one column-level change with a human-readable
// description of the before/after.
type ColumnChange struct {
	Kind       ChangeKind `json:"kind"`
	ColumnName string     `json:"columnName"`
	Detail     string     `json:"detail"`
}

// Diff is a single classified structural difference. SourceName and
// TargetName are empty when the object is absent on that side. SQL is
// empty for identical diffs; it never carries a trailing terminator
// (multi-statement SQL separates statements with ";\n").
type Diff struct {
	ID         string     `json:"id"`
	ObjectType ObjectType `json:"objectType"`
	Kind       Kind       `json:"kind"`
	SourceName string     `json:"sourceName,omitempty"`
	TargetName string     `json:"targetName,omitempty"`
	Reason     string     `json:"reason"`

	// Changes lists column-level changes; present only for alter diffs.
	Changes []ColumnChange `json:"changes,omitempty"`

	// IndexChanges and ForeignKeyChanges describe existence-level index
	// and foreign key differences for display. They are folded into SQL
	// only when the corresponding option is enabled.
	IndexChanges      []string `json:"indexChanges,omitempty"`
	ForeignKeyChanges []string `json:"foreignKeyChanges,omitempty"`

	SQL string `json:"sql,omitempty"`
}

// ResolvedName is the name a diff is addressed by: the target-side
// spelling when the object exists on the target, the source-side
// spelling otherwise.
func (d *Diff) ResolvedName() string {
	if d.TargetName != "" {
		return d.TargetName
	}
	return d.SourceName
}

func diffID(objectType ObjectType, name string) string {
	return fmt.Sprintf("%s:%s", objectType, name)
}

// Counts summarizes a Set by diff kind. Identical diffs never count.
type Counts struct {
	Create int `json:"create"`
	Alter  int `json:"alter"`
	Drop   int `json:"drop"`
	Total  int `json:"total"`
}

// Set is the result of one comparison run: the ordered diffs plus the
// run's identity. Order is deterministic (see Classify) and the script
// renderer follows it exactly.
type Set struct {
	RunID       string    `json:"runId"`
	GeneratedAt time.Time `json:"generatedAt"`
	SourceLabel string    `json:"sourceLabel"`
	TargetLabel string    `json:"targetLabel"`
	Diffs       []Diff    `json:"diffs"`
}

// Counts recomputes the per-kind totals from the diffs. It is never
// cached; callers always get a value consistent with Diffs.
func (s *Set) Counts() Counts {
	var c Counts
	for i := range s.Diffs {
		switch s.Diffs[i].Kind {
		case KindCreate:
			c.Create++
		case KindAlter:
			c.Alter++
		case KindDrop:
			c.Drop++
		}
	}
	c.Total = c.Create + c.Alter + c.Drop
	return c
}

// IDs returns the diff ids in set order.
func (s *Set) IDs() []string {
	ids := make([]string, 0, len(s.Diffs))
	for i := range s.Diffs {
		ids = append(ids, s.Diffs[i].ID)
	}
	return ids
}

// Find returns the diff with the given id, or nil.
func (s *Set) Find(id string) *Diff {
	for i := range s.Diffs {
		if s.Diffs[i].ID == id {
			return &s.Diffs[i]
		}
	}
	return nil
}
