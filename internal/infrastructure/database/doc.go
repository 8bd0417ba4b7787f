// Package database provides the SQLite connection behind the audit trail.
//
// Open configures WAL mode, a busy timeout and a single connection (SQLite
// has one writer). Migrations are plain SQL files passed in as an fs.FS,
// normally the embedded migrations package:
//
//	db, err := database.Open(database.Config{Path: cfg.Database.Path, WALMode: true, BusyTimeout: 5})
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx, migrations.FS); err != nil {
//	    return err
//	}
//
// All queries use parameterised statements. The database file is created
// with mode 0600.
package database
