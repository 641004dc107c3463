package diff

import "sort"

// Buckets is the three-way partition of two key sets. The buckets are
// pairwise disjoint and their union covers every distinct input key.
// Common carries the source-side spelling.
type Buckets struct {
	OnlyInSource []string
	OnlyInTarget []string
	Common       []string
}

// Partition splits source and target keys into the three buckets. fold
// normalizes a key before matching (nil means exact match); the
// original spellings are preserved in the output. Duplicate keys
// folding to the same value count once, first spelling wins. Buckets
// come back sorted by folded key so downstream order is deterministic.
func Partition(sourceKeys, targetKeys []string, fold func(string) string) Buckets {
	if fold == nil {
		fold = func(s string) string { return s }
	}

	sourceByKey := make(map[string]string, len(sourceKeys))
	sourceOrder := make([]string, 0, len(sourceKeys))
	for _, k := range sourceKeys {
		f := fold(k)
		if _, seen := sourceByKey[f]; !seen {
			sourceByKey[f] = k
			sourceOrder = append(sourceOrder, f)
		}
	}

	targetByKey := make(map[string]string, len(targetKeys))
	targetOrder := make([]string, 0, len(targetKeys))
	for _, k := range targetKeys {
		f := fold(k)
		if _, seen := targetByKey[f]; !seen {
			targetByKey[f] = k
			targetOrder = append(targetOrder, f)
		}
	}

	sort.Strings(sourceOrder)
	sort.Strings(targetOrder)

	var b Buckets
	for _, f := range sourceOrder {
		if _, ok := targetByKey[f]; ok {
			b.Common = append(b.Common, sourceByKey[f])
		} else {
			b.OnlyInSource = append(b.OnlyInSource, sourceByKey[f])
		}
	}
	for _, f := range targetOrder {
		if _, ok := sourceByKey[f]; !ok {
			b.OnlyInTarget = append(b.OnlyInTarget, targetByKey[f])
		}
	}
	return b
}
