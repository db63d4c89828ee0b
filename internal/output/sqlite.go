package output

import (
	"database/sql"
	"fmt"

	"github.com/anatolykoptev/go_ytcomments/internal/engine"

	_ "modernc.org/sqlite"
)

// SQLite stores comments in a "comments" table, one row per comment id.
// Rows are written inside one transaction that Close commits.
type SQLite struct {
	db    *sql.DB
	tx    *sql.Tx
	stmt  *sql.Stmt
	count int
}

// OpenSQLite opens (or creates) the database at path and prepares the table.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("output: open db: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite: single writer
	if err := initCommentSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("output: init schema: %w", err)
	}
	tx, err := db.Begin()
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("output: begin: %w", err)
	}
	stmt, err := tx.Prepare(`INSERT OR REPLACE INTO comments
		(cid, position, text, time, time_parsed, author, channel, votes, replies, photo, heart, reply, paid)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		_ = tx.Rollback()
		db.Close()
		return nil, fmt.Errorf("output: prepare insert: %w", err)
	}
	return &SQLite{db: db, tx: tx, stmt: stmt}, nil
}

func initCommentSchema(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS comments (
		cid         TEXT PRIMARY KEY,
		position    INTEGER NOT NULL,
		text        TEXT NOT NULL,
		time        TEXT NOT NULL,
		time_parsed REAL,
		author      TEXT NOT NULL,
		channel     TEXT NOT NULL,
		votes       TEXT NOT NULL,
		replies     TEXT NOT NULL,
		photo       TEXT NOT NULL,
		heart       INTEGER NOT NULL,
		reply       INTEGER NOT NULL,
		paid        TEXT
	)`)
	return err
}

func (s *SQLite) Write(rec engine.CommentRecord) error {
	var parsed sql.NullFloat64
	if rec.TimeParsed != nil {
		parsed = sql.NullFloat64{Float64: *rec.TimeParsed, Valid: true}
	}
	var paid sql.NullString
	if rec.Paid != nil {
		paid = sql.NullString{String: *rec.Paid, Valid: true}
	}
	_, err := s.stmt.Exec(rec.CID, s.count, rec.Text, rec.Time, parsed, rec.Author, rec.Channel,
		rec.Votes, rec.Replies, rec.Photo, rec.Heart, rec.Reply, paid)
	if err != nil {
		return fmt.Errorf("output: insert %s: %w", rec.CID, err)
	}
	s.count++
	return nil
}

func (s *SQLite) Count() int { return s.count }

// Close commits the rows written so far and closes the database.
func (s *SQLite) Close() error {
	s.stmt.Close()
	err := s.tx.Commit()
	if cerr := s.db.Close(); err == nil {
		err = cerr
	}
	return err
}
