package persist

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLite stores records as rows of the clock_state table, keyed by name, so
// one database can hold the state of several clocks. Lock opens an
// IMMEDIATE transaction on the handle's own connection and Unlock commits
// it, which serializes handles across processes.
type SQLite[D Data] struct {
	RefCount

	path string
	name string

	mu sync.Mutex
	db *sql.DB
}

// NewSQLite returns a backend for the database at path. The database is
// opened (and created if needed) by the first Handle, closed when the last
// reference is dropped and reopened on demand.
func NewSQLite[D Data](path, name string) (*SQLite[D], error) {
	if path == "" {
		return nil, errors.New("sqlite: empty database path")
	}
	s := &SQLite[D]{path: path, name: name}
	s.release = s.closeDB
	return s, nil
}

func openSQLite(path string) (*sql.DB, error) {
	dsn := path
	if strings.Contains(dsn, "?") {
		dsn += "&_busy_timeout=5000"
	} else {
		dsn += "?_busy_timeout=5000"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create clock_state schema: %w", err)
	}

	return db, nil
}

func (s *SQLite[D]) Handle() (Handle[D], error) {
	s.mu.Lock()
	if s.db == nil {
		db, err := openSQLite(s.path)
		if err != nil {
			s.mu.Unlock()
			return nil, err
		}
		s.db = db
	}
	db := s.db
	s.mu.Unlock()

	conn, err := db.Conn(context.Background())
	if err != nil {
		return nil, fmt.Errorf("sqlite connection: %w", err)
	}
	return &sqliteHandle[D]{conn: conn, name: s.name}, nil
}

// Close closes the database regardless of outstanding references.
func (s *SQLite[D]) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *SQLite[D]) closeDB() {
	if err := s.Close(); err != nil {
		slog.Warn("close clock state database", "path", s.path, "err", err)
	}
}

type sqliteHandle[D Data] struct {
	conn *sql.Conn
	name string
}

func (h *sqliteHandle[D]) exec(query string, args ...any) error {
	if h.conn == nil {
		return ErrClosed
	}
	_, err := h.conn.ExecContext(context.Background(), query, args...)
	return err
}

func (h *sqliteHandle[D]) Lock() error {
	if err := h.exec(`BEGIN IMMEDIATE`); err != nil {
		return fmt.Errorf("lock clock_state %q: %w", h.name, err)
	}
	return nil
}

func (h *sqliteHandle[D]) Unlock() error {
	if err := h.exec(`COMMIT`); err != nil {
		return fmt.Errorf("unlock clock_state %q: %w", h.name, err)
	}
	return nil
}

func (h *sqliteHandle[D]) Load(d *D) (bool, error) {
	if h.conn == nil {
		return false, ErrClosed
	}

	var rec []byte
	err := h.conn.QueryRowContext(context.Background(),
		`SELECT record FROM clock_state WHERE name = ?`, h.name,
	).Scan(&rec)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load clock_state %q: %w", h.name, err)
	}

	if err := decode(d, rec); err != nil {
		return false, nil
	}
	return true, nil
}

func (h *sqliteHandle[D]) Store(d *D) error {
	rec := encode(d)
	var when int64
	switch v := any(d).(type) {
	case *UUIDData:
		when = v.When
	case *ULIDData:
		when = v.When
	}

	err := h.exec(`
		INSERT INTO clock_state (name, record, when_ns, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			record = excluded.record,
			when_ns = excluded.when_ns,
			updated_at = excluded.updated_at`,
		h.name, rec, when, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("store clock_state %q: %w", h.name, err)
	}
	return nil
}

func (h *sqliteHandle[D]) Close() error {
	if h.conn == nil {
		return nil
	}
	err := h.conn.Close()
	h.conn = nil
	return err
}
