package diff

import (
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPartition_Basic(t *testing.T) {
	b := Partition(
		[]string{"users", "orders", "products"},
		[]string{"orders", "legacy_logs", "products"},
		nil,
	)

	assert.Equal(t, []string{"users"}, b.OnlyInSource)
	assert.Equal(t, []string{"legacy_logs"}, b.OnlyInTarget)
	assert.Equal(t, []string{"orders", "products"}, b.Common)
}

func TestPartition_Empty(t *testing.T) {
	b := Partition(nil, nil, nil)

	assert.Empty(t, b.OnlyInSource)
	assert.Empty(t, b.OnlyInTarget)
	assert.Empty(t, b.Common)
}

func TestPartition_DisjointSets(t *testing.T) {
	b := Partition([]string{"a", "b"}, []string{"c", "d"}, nil)

	assert.Equal(t, []string{"a", "b"}, b.OnlyInSource)
	assert.Equal(t, []string{"c", "d"}, b.OnlyInTarget)
	assert.Empty(t, b.Common)
}

func TestPartition_FoldMatchesAcrossCase(t *testing.T) {
	b := Partition([]string{"Users"}, []string{"users"}, strings.ToLower)

	assert.Empty(t, b.OnlyInSource)
	assert.Empty(t, b.OnlyInTarget)

	// Common carries the source spelling
	assert.Equal(t, []string{"Users"}, b.Common)
}

func TestPartition_ExactWithoutFold(t *testing.T) {
	b := Partition([]string{"Users"}, []string{"users"}, nil)

	assert.Equal(t, []string{"Users"}, b.OnlyInSource)
	assert.Equal(t, []string{"users"}, b.OnlyInTarget)
	assert.Empty(t, b.Common)
}

func TestPartition_DedupesInput(t *testing.T) {
	b := Partition([]string{"a", "a", "A"}, []string{"b", "b"}, strings.ToLower)

	assert.Equal(t, []string{"a"}, b.OnlyInSource)
	assert.Equal(t, []string{"b"}, b.OnlyInTarget)
}

// The partition property: buckets are pairwise disjoint and their union
// covers every distinct key, for arbitrary inputs.
func TestPartition_CompletenessProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for run := 0; run < 50; run++ {
		source := randomKeys(rng)
		target := randomKeys(rng)

		b := Partition(source, target, nil)

		union := make(map[string]struct{})
		for _, k := range source {
			union[k] = struct{}{}
		}
		for _, k := range target {
			union[k] = struct{}{}
		}

		total := len(b.OnlyInSource) + len(b.OnlyInTarget) + len(b.Common)
		require.Equal(t, len(union), total, "run %d: buckets must cover the union", run)

		seen := make(map[string]string)
		for _, k := range b.OnlyInSource {
			seen[k] = "source"
		}
		for _, k := range b.OnlyInTarget {
			require.NotContains(t, seen, k, "run %d: buckets overlap", run)
			seen[k] = "target"
		}
		for _, k := range b.Common {
			require.NotContains(t, seen, k, "run %d: buckets overlap", run)
		}
	}
}

func randomKeys(rng *rand.Rand) []string {
	n := rng.Intn(12)
	keys := make([]string, 0, n)
	for i := 0; i < n; i++ {
		keys = append(keys, fmt.Sprintf("t%d", rng.Intn(10)))
	}
	return keys
}
