package repository

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	_ "github.com/mattn/go-sqlite3"
	"github.com/secmon-lab/suistat/pkg/domain/interfaces"
	"github.com/secmon-lab/suistat/pkg/domain/model"
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// SQLite reads the dataset from a table of a SQLite database
type SQLite struct {
	db    *sql.DB
	table string
}

var _ interfaces.TabularSource = (*SQLite)(nil)

// NewSQLite opens the database file. The table is read in rowid order.
func NewSQLite(ctx context.Context, path, table string) (*SQLite, error) {
	if !identifierPattern.MatchString(table) {
		return nil, goerr.New("invalid table name", goerr.V("table", table))
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open sqlite database", goerr.V("path", path))
	}
	// in-memory databases are per connection
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, goerr.Wrap(err, "failed to connect to sqlite database", goerr.V("path", path))
	}

	ctxlog.From(ctx).Info("SQLite source initialized", "path", path, "table", table)
	return &SQLite{db: db, table: table}, nil
}

// ReadRows reads every row of the table
func (s *SQLite) ReadRows(ctx context.Context) ([]model.Row, error) {
	query := fmt.Sprintf(`SELECT * FROM "%s" ORDER BY rowid`, s.table)
	rs, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query table", goerr.V("table", s.table))
	}
	defer rs.Close()

	columns, err := rs.Columns()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get columns", goerr.V("table", s.table))
	}
	for i, c := range columns {
		columns[i] = normalizeColumn(c)
	}

	var rows []model.Row
	values := make([]sql.NullString, len(columns))
	dest := make([]any, len(columns))
	for i := range values {
		dest[i] = &values[i]
	}

	for rs.Next() {
		if err := rs.Scan(dest...); err != nil {
			return nil, goerr.Wrap(err, "failed to scan row", goerr.V("table", s.table))
		}
		row := make(model.Row, len(columns))
		for i, c := range columns {
			row[c] = values[i].String
		}
		rows = append(rows, row)
	}
	if err := rs.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate rows", goerr.V("table", s.table))
	}

	return rows, nil
}

// Import creates the table if needed and appends rows. Every column is stored as TEXT.
func (s *SQLite) Import(ctx context.Context, columns []string, rows []model.Row) error {
	if len(columns) == 0 {
		return goerr.New("no columns to import")
	}
	quoted := make([]string, len(columns))
	for i, c := range columns {
		if !identifierPattern.MatchString(c) {
			return goerr.New("invalid column name", goerr.V("column", c))
		}
		quoted[i] = fmt.Sprintf(`"%s" TEXT`, c)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return goerr.Wrap(err, "failed to begin transaction")
	}
	defer func() { _ = tx.Rollback() }()

	create := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS "%s" (%s)`, s.table, strings.Join(quoted, ", "))
	if _, err := tx.ExecContext(ctx, create); err != nil {
		return goerr.Wrap(err, "failed to create table", goerr.V("table", s.table))
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ")
	insert := fmt.Sprintf(`INSERT INTO "%s" (%s) VALUES (%s)`, s.table,
		`"`+strings.Join(columns, `", "`)+`"`, placeholders)
	stmt, err := tx.PrepareContext(ctx, insert)
	if err != nil {
		return goerr.Wrap(err, "failed to prepare insert", goerr.V("table", s.table))
	}
	defer stmt.Close()

	args := make([]any, len(columns))
	for i, row := range rows {
		for j, c := range columns {
			args[j] = row[c]
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return goerr.Wrap(err, "failed to insert row", goerr.V("index", i))
		}
	}

	if err := tx.Commit(); err != nil {
		return goerr.Wrap(err, "failed to commit import")
	}
	return nil
}

// Close closes the database
func (s *SQLite) Close() error {
	if err := s.db.Close(); err != nil {
		return goerr.Wrap(err, "failed to close sqlite database")
	}
	return nil
}
