// Package sqlitestore is the SQLite-backed host call-history store.
package sqlitestore

import (
	"context"
	"database/sql"
	"embed"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/mattn/go-sqlite3"

	"github.com/Iron-Ham/callbridge/internal/calllog"
	"github.com/Iron-Ham/callbridge/internal/errors"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Store implements calllog.Store on a SQLite database file.
type Store struct {
	db   *sql.DB
	path string
}

var _ calllog.Store = (*Store)(nil)

// Open opens (creating if needed) the database at path and applies
// pending migrations.
func Open(path string) (*Store, error) {
	if err := migrateUp(path); err != nil {
		return nil, errors.Wrapf(err, "migrate %s", path)
	}

	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1) // sqlite
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, errors.Wrapf(err, "open %s", path)
	}

	return &Store{db: db, path: path}, nil
}

// migrateUp runs the embedded migrations on their own connection so that
// closing the migrator does not close the store's handle.
func migrateUp(path string) error {
	src, err := iofs.New(migrations, "migrations")
	if err != nil {
		return err
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, "sqlite3://"+path)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// CallsSince returns records with date >= sinceMillis, newest first. Rows
// sharing a timestamp keep insertion order.
func (s *Store) CallsSince(ctx context.Context, sinceMillis int64) ([]calllog.CallRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT number, date, type, duration
		FROM calls
		WHERE date >= ?
		ORDER BY date DESC, id ASC`, sinceMillis)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []calllog.CallRecord
	for rows.Next() {
		var r calllog.CallRecord
		if err := rows.Scan(&r.Number, &r.TimestampMillis, &r.Type, &r.DurationSeconds); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Insert appends records in a single transaction.
func (s *Store) Insert(ctx context.Context, records ...calllog.CallRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO calls (number, date, type, duration) VALUES (?, ?, ?, ?)`)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, r := range records {
		if _, err := stmt.ExecContext(ctx, r.Number, r.TimestampMillis, int(r.Type), r.DurationSeconds); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// Count returns the number of stored records.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM calls`).Scan(&n)
	return n, err
}

// ImportCSV reads records with the header number,date,type,duration and
// inserts them. type may be numeric or a call-type name.
func (s *Store) ImportCSV(ctx context.Context, r io.Reader) (int, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return 0, errors.Wrap(err, "read header")
	}
	cols, err := columnIndex(header)
	if err != nil {
		return 0, err
	}

	var records []calllog.CallRecord
	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return 0, errors.Wrapf(err, "line %d", line)
		}
		rec, err := parseRow(row, cols)
		if err != nil {
			return 0, errors.Wrapf(err, "line %d", line)
		}
		records = append(records, rec)
	}

	if len(records) == 0 {
		return 0, nil
	}
	if err := s.Insert(ctx, records...); err != nil {
		return 0, err
	}
	return len(records), nil
}

var csvColumns = []string{"number", "date", "type", "duration"}

func columnIndex(header []string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, c := range csvColumns {
		if _, ok := idx[c]; !ok {
			return nil, fmt.Errorf("missing column %q", c)
		}
	}
	return idx, nil
}

func parseRow(row []string, cols map[string]int) (calllog.CallRecord, error) {
	field := func(name string) string {
		i := cols[name]
		if i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	date, err := strconv.ParseInt(field("date"), 10, 64)
	if err != nil {
		return calllog.CallRecord{}, errors.Wrap(err, "date")
	}

	var typ calllog.CallType
	if n, err := strconv.Atoi(field("type")); err == nil {
		typ = calllog.CallType(n)
	} else if typ, err = calllog.ParseCallType(field("type")); err != nil {
		return calllog.CallRecord{}, err
	}

	duration := 0
	if d := field("duration"); d != "" {
		if duration, err = strconv.Atoi(d); err != nil {
			return calllog.CallRecord{}, errors.Wrap(err, "duration")
		}
	}

	return calllog.CallRecord{
		Number:          field("number"),
		TimestampMillis: date,
		Type:            typ,
		DurationSeconds: duration,
	}, nil
}
