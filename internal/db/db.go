// Package db persists scan sessions, plan exports and device trails in
// SQLite.
package db

import (
	"compress/gzip"
	"database/sql"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/tailscale/tailsql/server/tailsql"
	_ "modernc.org/sqlite"
	"tailscale.com/tsweb"
)

type DB struct {
	*sql.DB
}

// NewDB opens the SQLite database at path and applies all pending
// migrations.
func NewDB(path string) (*DB, error) {
	db, err := OpenDB(path)
	if err != nil {
		return nil, err
	}
	if err := db.MigrateUp(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return db, nil
}

// OpenDB opens the database without touching the schema. Used by the migrate
// subcommand, which manages the schema itself.
func OpenDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// WAL keeps the web handlers readable while the feed goroutine writes.
	if _, err := db.Exec(`PRAGMA journal_mode = WAL; PRAGMA foreign_keys = ON;`); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set pragmas: %w", err)
	}

	return &DB{db}, nil
}

// InsertSession records the start of a scan session.
func (db *DB) InsertSession(sessionID string, startedAt time.Time) error {
	_, err := db.Exec(
		`INSERT INTO scan_sessions (session_id, started_at) VALUES (?, ?)`,
		sessionID, startedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert session %s: %w", sessionID, err)
	}
	return nil
}

// TouchSession updates a session's last-seen time and update counter.
func (db *DB) TouchSession(sessionID string, updates int64) error {
	_, err := db.Exec(
		`UPDATE scan_sessions SET last_update_at = ?, updates = ? WHERE session_id = ?`,
		time.Now().UTC(), updates, sessionID,
	)
	if err != nil {
		return fmt.Errorf("failed to touch session %s: %w", sessionID, err)
	}
	return nil
}

// SessionRow is one recorded scan session.
type SessionRow struct {
	SessionID    string
	StartedAt    time.Time
	LastUpdateAt sql.NullTime
	Updates      int64
}

// Sessions returns recorded sessions, newest first.
func (db *DB) Sessions(limit int) ([]SessionRow, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.Query(
		`SELECT session_id, started_at, last_update_at, updates
		 FROM scan_sessions ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []SessionRow
	for rows.Next() {
		var s SessionRow
		if err := rows.Scan(&s.SessionID, &s.StartedAt, &s.LastUpdateAt, &s.Updates); err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sessions, nil
}

// InsertExport stores one plan export document (JSON) for a session and
// returns its row id.
func (db *DB) InsertExport(sessionID string, document []byte) (int64, error) {
	res, err := db.Exec(
		`INSERT INTO plan_exports (session_id, document) VALUES (?, ?)`,
		sessionID, string(document),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert export for session %s: %w", sessionID, err)
	}
	return res.LastInsertId()
}

// ExportRow is one stored plan export.
type ExportRow struct {
	ID        int64
	SessionID string
	Document  string
	CreatedAt time.Time
}

// Exports returns stored exports for a session, newest first.
func (db *DB) Exports(sessionID string, limit int) ([]ExportRow, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.Query(
		`SELECT export_id, session_id, document, created_at
		 FROM plan_exports WHERE session_id = ? ORDER BY created_at DESC LIMIT ?`,
		sessionID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var exports []ExportRow
	for rows.Next() {
		var e ExportRow
		if err := rows.Scan(&e.ID, &e.SessionID, &e.Document, &e.CreatedAt); err != nil {
			return nil, err
		}
		exports = append(exports, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return exports, nil
}

// TrailSampleRow is one persisted device position estimate.
type TrailSampleRow struct {
	X, Y       float64
	RecordedAt time.Time
}

// InsertTrailSamples appends device trail samples for a session in one
// transaction.
func (db *DB) InsertTrailSamples(sessionID string, samples []TrailSampleRow) error {
	if len(samples) == 0 {
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(
		`INSERT INTO trail_samples (session_id, x, y, recorded_at) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, s := range samples {
		if _, err := stmt.Exec(sessionID, s.X, s.Y, s.RecordedAt.UTC()); err != nil {
			return fmt.Errorf("failed to insert trail sample: %w", err)
		}
	}
	return tx.Commit()
}

// TrailSamples returns a session's persisted trail, oldest first.
func (db *DB) TrailSamples(sessionID string) ([]TrailSampleRow, error) {
	rows, err := db.Query(
		`SELECT x, y, recorded_at FROM trail_samples
		 WHERE session_id = ? ORDER BY recorded_at ASC`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var samples []TrailSampleRow
	for rows.Next() {
		var s TrailSampleRow
		if err := rows.Scan(&s.X, &s.Y, &s.RecordedAt); err != nil {
			return nil, err
		}
		samples = append(samples, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return samples, nil
}

// AttachAdminRoutes mounts live SQL debugging and database backup endpoints
// under /debug/.
func (db *DB) AttachAdminRoutes(mux *http.ServeMux) {
	debug := tsweb.Debugger(mux)

	tsql, err := tailsql.NewServer(tailsql.Options{
		RoutePrefix: "/debug/tailsql/",
	})
	if err != nil {
		log.Fatalf("failed to create tailsql server: %v", err)
	}
	tsql.SetDB("sqlite://floorplan.db", db.DB, &tailsql.DBOptions{
		Label: "Floorplan DB",
	})

	debug.Handle("tailsql/", "SQL live debugging", tsql.NewMux())

	debug.Handle("backup", "Create and download a backup of the database now", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		unixTime := time.Now().Unix()
		backupPath := fmt.Sprintf("backup-%d.db", unixTime)
		if _, err := db.DB.Exec("VACUUM INTO ?", backupPath); err != nil {
			http.Error(w, fmt.Sprintf("Failed to create backup: %v", err), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", backupPath))
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Header().Set("Content-Encoding", "gzip")

		backupFile, err := os.Open(backupPath)
		if err != nil {
			http.Error(w, fmt.Sprintf("Failed to open backup file: %v", err), http.StatusInternalServerError)
			return
		}
		defer func() {
			backupFile.Close()
			if err := os.Remove(backupPath); err != nil {
				log.Printf("Failed to remove backup file: %v", err)
			}
		}()

		gzipWriter := gzip.NewWriter(w)
		defer gzipWriter.Close()
		if _, err := io.Copy(gzipWriter, backupFile); err != nil {
			http.Error(w, fmt.Sprintf("Failed to write backup file: %v", err), http.StatusInternalServerError)
			return
		}
	}))
}
