package storage

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Open creates a Store from a URL. Supported forms:
//
//	memory://                       in-process store
//	sqlite://./feedback.db          pure Go SQLite (modernc.org/sqlite)
//	sqlite:///./feedback.db         same, SQLAlchemy style
//	sqlite3://./feedback.db         cgo SQLite (mattn/go-sqlite3)
//	postgres://user:pw@host/db      PostgreSQL (lib/pq)
//	./feedback.db                   bare path, pure Go SQLite
func Open(ctx context.Context, url string, maxOpenConns int, busyTimeout time.Duration) (Store, error) {
	scheme, rest := splitScheme(url)

	switch scheme {
	case "memory":
		return NewMemoryStore(), nil
	case "sqlite", "sqlite3":
		path := sqlitePath(rest)
		if path == "" {
			return nil, fmt.Errorf("storage url %q has no database path", url)
		}
		return NewSQLStore(ctx, SQLConfig{
			Driver:      scheme,
			DSN:         path,
			BusyTimeout: busyTimeout,
		})
	case "file", "":
		return NewSQLStore(ctx, SQLConfig{
			Driver:      "sqlite",
			DSN:         url,
			BusyTimeout: busyTimeout,
		})
	case "postgres", "postgresql":
		return NewSQLStore(ctx, SQLConfig{
			Driver:       "postgres",
			DSN:          url,
			MaxOpenConns: maxOpenConns,
		})
	default:
		return nil, fmt.Errorf("unsupported storage scheme %q", scheme)
	}
}

func splitScheme(url string) (string, string) {
	i := strings.Index(url, "://")
	if i < 0 {
		if strings.HasPrefix(url, "file:") {
			return "file", url
		}
		return "", url
	}
	return strings.ToLower(url[:i]), url[i+3:]
}

// sqlitePath turns the remainder of a sqlite URL into a file path. One leading
// slash is dropped so that "sqlite:///rel.db" is relative and
// "sqlite:////abs.db" is absolute.
func sqlitePath(rest string) string {
	return strings.TrimPrefix(rest, "/")
}
