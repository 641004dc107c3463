package introspect

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"

	"github.com/xo/dburl"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Open connects to the database named by a URL (mysql://, postgres://,
// sqlite:path) and returns the matching introspector. The connection is
// pinged before it is handed back.
func Open(ctx context.Context, urlstr string) (Introspector, error) {
	u, err := dburl.Parse(urlstr)
	if err != nil {
		return nil, fmt.Errorf("invalid connection url: %w", err)
	}

	driver := u.Driver
	if driver == "sqlite3" {
		// modernc.org/sqlite registers itself as "sqlite"
		driver = "sqlite"
	}

	db, err := sql.Open(driver, u.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s connection: %w", driver, err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to %s: %w", MaskURL(urlstr), err)
	}

	label := MaskURL(urlstr)
	switch driver {
	case "mysql":
		return &MySQL{db: db, label: label}, nil
	case "postgres":
		return &Postgres{db: db, label: label}, nil
	case "sqlite":
		return &SQLite{db: db, label: label}, nil
	default:
		db.Close()
		return nil, fmt.Errorf("unsupported database engine %q", u.Driver)
	}
}

// MaskURL returns a connection URL with the password masked.
func MaskURL(urlstr string) string {
	u, err := url.Parse(urlstr)
	if err != nil || u.User == nil {
		return urlstr
	}
	if _, hasPassword := u.User.Password(); !hasPassword {
		return urlstr
	}

	// Build manually to avoid URL encoding the asterisks
	rest := strings.TrimPrefix(urlstr, u.Scheme+"://")
	if at := strings.LastIndex(rest, "@"); at >= 0 {
		rest = rest[at+1:]
	}
	return fmt.Sprintf("%s://%s:****@%s", u.Scheme, u.User.Username(), rest)
}
