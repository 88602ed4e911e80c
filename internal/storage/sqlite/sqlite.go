// Package sqlite provides a SQLite-backed implementation of the
// storage.Storage interface using Go's standard database/sql package.
//
// The blank import below registers the sqlite3 driver with database/sql.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/aanand-mishra/school-admin/internal/config"
	"github.com/aanand-mishra/school-admin/internal/storage"
	"github.com/aanand-mishra/school-admin/internal/types"

	// Side-effect only: registers the "sqlite3" driver.
	_ "github.com/mattn/go-sqlite3"
)

// tables maps each record kind to its table. Table names are never taken
// from input, so they are safe to format into SQL.
var tables = map[types.Kind]string{
	types.KindStudent: "students",
	types.KindTeacher: "teachers",
}

// SQLite is the concrete implementation of storage.Storage.
type SQLite struct {
	Db *sql.DB
}

// New opens the SQLite database at cfg.StoragePath, creates one table per
// record kind if missing, and returns a ready-to-use *SQLite.
//
// ":memory:" is accepted; the pool is then limited to one connection so
// every query sees the same database.
func New(cfg *config.StubConfig) (*SQLite, error) {
	if cfg.StoragePath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.StoragePath), 0o755); err != nil {
			return nil, fmt.Errorf("sqlite.New: create dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("sqlite.New: open db: %w", err)
	}
	if cfg.StoragePath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	// Schema (same for every kind):
	//   id       : uuid assigned on insert, sent to clients as _id
	//   fullname : full name
	//   class    : "1".."10"
	//   gender   : Male | Female | Other
	//   age      : age in years
	for _, table := range tables {
		_, err = db.Exec(fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id       TEXT    PRIMARY KEY,
				fullname TEXT    NOT NULL,
				class    TEXT    NOT NULL,
				gender   TEXT    NOT NULL,
				age      INTEGER NOT NULL
			)
		`, table))
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("sqlite.New: create table %s: %w", table, err)
		}
	}

	return &SQLite{Db: db}, nil
}

// Close closes the underlying pool.
func (s *SQLite) Close() error {
	return s.Db.Close()
}

func table(kind types.Kind) (string, error) {
	t, ok := tables[kind]
	if !ok {
		return "", fmt.Errorf("unknown record kind %q", kind)
	}
	return t, nil
}

// Create inserts a new row with a fresh uuid.
func (s *SQLite) Create(kind types.Kind, r types.Record) (types.Record, error) {
	t, err := table(kind)
	if err != nil {
		return types.Record{}, fmt.Errorf("Create: %w", err)
	}

	stmt, err := s.Db.Prepare(fmt.Sprintf(
		"INSERT INTO %s (id, fullname, class, gender, age) VALUES (?, ?, ?, ?, ?)", t,
	))
	if err != nil {
		return types.Record{}, fmt.Errorf("Create: prepare: %w", err)
	}
	defer stmt.Close()

	r.ID = uuid.NewString()
	if _, err := stmt.Exec(r.ID, r.FullName, r.Class, r.Gender, int(r.Age)); err != nil {
		return types.Record{}, fmt.Errorf("Create: exec: %w", err)
	}

	return r, nil
}

// GetByID fetches exactly one row matched by id.
func (s *SQLite) GetByID(kind types.Kind, id string) (types.Record, error) {
	t, err := table(kind)
	if err != nil {
		return types.Record{}, fmt.Errorf("GetByID: %w", err)
	}

	stmt, err := s.Db.Prepare(fmt.Sprintf(
		"SELECT id, fullname, class, gender, age FROM %s WHERE id = ? LIMIT 1", t,
	))
	if err != nil {
		return types.Record{}, fmt.Errorf("GetByID: prepare: %w", err)
	}
	defer stmt.Close()

	r, err := scan(stmt.QueryRow(id))
	if errors.Is(err, sql.ErrNoRows) {
		return types.Record{}, fmt.Errorf("no %s found with id %s: %w", kind, id, storage.ErrNotFound)
	}
	if err != nil {
		return types.Record{}, fmt.Errorf("GetByID: scan: %w", err)
	}

	return r, nil
}

// List returns all rows of the kind, oldest first by rowid.
func (s *SQLite) List(kind types.Kind) ([]types.Record, error) {
	t, err := table(kind)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}

	stmt, err := s.Db.Prepare(fmt.Sprintf(
		"SELECT id, fullname, class, gender, age FROM %s ORDER BY rowid", t,
	))
	if err != nil {
		return nil, fmt.Errorf("List: prepare: %w", err)
	}
	defer stmt.Close()

	rows, err := stmt.Query()
	if err != nil {
		return nil, fmt.Errorf("List: query: %w", err)
	}
	defer rows.Close()

	records := make([]types.Record, 0)
	for rows.Next() {
		r, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("List: scan row: %w", err)
		}
		records = append(records, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("List: rows iteration: %w", err)
	}

	return records, nil
}

// Update replaces a row's fields and returns the stored record.
func (s *SQLite) Update(kind types.Kind, id string, r types.Record) (types.Record, error) {
	t, err := table(kind)
	if err != nil {
		return types.Record{}, fmt.Errorf("Update: %w", err)
	}

	stmt, err := s.Db.Prepare(fmt.Sprintf(
		"UPDATE %s SET fullname = ?, class = ?, gender = ?, age = ? WHERE id = ?", t,
	))
	if err != nil {
		return types.Record{}, fmt.Errorf("Update: prepare: %w", err)
	}
	defer stmt.Close()

	res, err := stmt.Exec(r.FullName, r.Class, r.Gender, int(r.Age), id)
	if err != nil {
		return types.Record{}, fmt.Errorf("Update: exec: %w", err)
	}
	if err := affectedOne(res, kind, id); err != nil {
		return types.Record{}, err
	}

	return s.GetByID(kind, id)
}

// Delete removes a row by id.
func (s *SQLite) Delete(kind types.Kind, id string) error {
	t, err := table(kind)
	if err != nil {
		return fmt.Errorf("Delete: %w", err)
	}

	stmt, err := s.Db.Prepare(fmt.Sprintf("DELETE FROM %s WHERE id = ?", t))
	if err != nil {
		return fmt.Errorf("Delete: prepare: %w", err)
	}
	defer stmt.Close()

	res, err := stmt.Exec(id)
	if err != nil {
		return fmt.Errorf("Delete: exec: %w", err)
	}

	return affectedOne(res, kind, id)
}

type scanner interface {
	Scan(dest ...any) error
}

// scan reads columns in SELECT order: id, fullname, class, gender, age.
func scan(row scanner) (types.Record, error) {
	var (
		r   types.Record
		age int
	)
	if err := row.Scan(&r.ID, &r.FullName, &r.Class, &r.Gender, &age); err != nil {
		return types.Record{}, err
	}
	r.Age = types.Age(age)
	return r, nil
}

func affectedOne(res sql.Result, kind types.Kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("no %s found with id %s: %w", kind, id, storage.ErrNotFound)
	}
	return nil
}
