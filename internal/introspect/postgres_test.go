package introspect

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
)

func nullInt(v int64) sql.NullInt64 {
	return sql.NullInt64{Int64: v, Valid: true}
}

func TestComposePostgresType(t *testing.T) {
	tests := []struct {
		name      string
		dataType  string
		udtName   string
		maxLength sql.NullInt64
		precision sql.NullInt64
		scale     sql.NullInt64
		want      string
	}{
		{
			name:      "varchar carries its length",
			dataType:  "character varying",
			udtName:   "varchar",
			maxLength: nullInt(50),
			want:      "character varying(50)",
		},
		{
			name:      "char carries its length",
			dataType:  "character",
			udtName:   "bpchar",
			maxLength: nullInt(2),
			want:      "character(2)",
		},
		{
			name:      "numeric with precision and scale",
			dataType:  "numeric",
			udtName:   "numeric",
			precision: nullInt(10),
			scale:     nullInt(2),
			want:      "numeric(10,2)",
		},
		{
			name:      "numeric with precision only",
			dataType:  "numeric",
			udtName:   "numeric",
			precision: nullInt(8),
			scale:     nullInt(0),
			want:      "numeric(8)",
		},
		{
			name:     "array strips the underscore prefix",
			dataType: "ARRAY",
			udtName:  "_text",
			want:     "text[]",
		},
		{
			name:     "user-defined falls back to udt name",
			dataType: "USER-DEFINED",
			udtName:  "mood",
			want:     "mood",
		},
		{
			name:     "plain type passes through",
			dataType: "timestamp with time zone",
			udtName:  "timestamptz",
			want:     "timestamp with time zone",
		},
		{
			name:     "integer never gains precision",
			dataType: "integer",
			udtName:  "int4",
			want:     "integer",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := composePostgresType(tt.dataType, tt.udtName, tt.maxLength, tt.precision, tt.scale)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIndexDefColumns(t *testing.T) {
	assert.Equal(t, []string{"email"},
		indexDefColumns("CREATE INDEX idx_email ON public.users USING btree (email)"))

	assert.Equal(t, []string{"user_id", "created_at"},
		indexDefColumns("CREATE INDEX idx_user_created ON public.orders USING btree (user_id, created_at)"))

	assert.Equal(t, []string{"Email"},
		indexDefColumns(`CREATE UNIQUE INDEX idx_email ON public.users USING btree ("Email")`))

	assert.Nil(t, indexDefColumns("CREATE INDEX broken ON users"))
}
