package introspect

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripCreateView(t *testing.T) {
	assert.Equal(t, "SELECT user_id, count(*) FROM orders GROUP BY user_id",
		stripCreateView("CREATE VIEW order_totals AS SELECT user_id, count(*) FROM orders GROUP BY user_id"))

	assert.Equal(t, "select 1",
		stripCreateView("create view v as select 1"))

	// Already a bare body; nothing to strip.
	assert.Equal(t, "SELECT 1", stripCreateView("  SELECT 1  "))
}

func TestDquote(t *testing.T) {
	assert.Equal(t, `"users"`, dquote("users"))
	assert.Equal(t, `"we""ird"`, dquote(`we"ird`))
}
