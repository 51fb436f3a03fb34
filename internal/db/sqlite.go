package db

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// OpenDrafts opens (creating if needed) the SQLite file that stores form
// drafts and brings its schema up to date.
func OpenDrafts(path string) (*sql.DB, error) {
	dsn := fmt.Sprintf("file:%s?mode=rwc&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open drafts db: %w", err)
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping drafts db: %w", err)
	}

	if err := runSQLite(db); err != nil {
		if cerr := db.Close(); cerr != nil {
			return nil, fmt.Errorf("%w (also failed to close db: %v)", err, cerr)
		}
		return nil, err
	}

	return db, nil
}
