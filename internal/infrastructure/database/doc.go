// Package database manages the SQLite connection for the CHMS core.
//
// It wraps database/sql with connection configuration appropriate for
// SQLite (WAL mode, single writer, busy timeout), a health check, and an
// embedded migration runner. Migrations are .sql files compiled into the
// binary via embed.FS and tracked in a schema_migrations table; each
// migration applies in its own transaction.
//
// Lifecycle:
//
//	db, err := database.Open(database.Config{Path: "./data/chms.db"})
//	if err != nil { ... }
//	defer db.Close()
//	if err := db.Migrate(ctx); err != nil { ... }
package database
