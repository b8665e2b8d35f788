package datatable

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/apache/arrow/go/v17/arrow"
	_ "modernc.org/sqlite"
)

// SQLiteSink loads a committed ColumnStore's rows into an in-memory
// SQLite database, grounded in the teacher's driver.Connector
// buildCreateTableQuery/buildInsertQuery (here used directly over
// database/sql rather than implementing the full database/sql/driver.Conn
// surface, since the core's scope is loading data, not acting as a
// general-purpose SQL driver for arbitrary DSNs).
type SQLiteSink struct {
	db *sql.DB
}

// OpenSQLiteSink opens an in-memory SQLite database ready to receive
// tables via DumpTable.
func OpenSQLiteSink() (*SQLiteSink, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("datatable: open sqlite: %w", err)
	}
	return &SQLiteSink{db: db}, nil
}

// DB returns the underlying *sql.DB so callers can run arbitrary queries
// against the loaded tables.
func (s *SQLiteSink) DB() *sql.DB { return s.db }

func (s *SQLiteSink) Close() error { return s.db.Close() }

// DumpTable creates tableName (if it doesn't already exist) with one
// column per schema entry, typed by its inferred Kind, then inserts every
// row the ArrowColumnStore holds as a prepared-statement batch inside a
// single transaction.
func (s *SQLiteSink) DumpTable(ctx context.Context, tableName string, schema Schema, store *ArrowColumnStore) error {
	if len(schema) == 0 {
		return ErrNoColumns
	}

	if _, err := s.db.ExecContext(ctx, buildCreateTableQuery(tableName, schema)); err != nil {
		return fmt.Errorf("datatable: create table %s: %w", tableName, err)
	}

	columns := store.Columns()
	nrows := 0
	if len(columns) > 0 {
		nrows = columns[0].Array.Len()
	}
	if nrows == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("datatable: begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, buildInsertQuery(tableName, len(schema)))
	if err != nil {
		return fmt.Errorf("datatable: prepare insert: %w", err)
	}
	defer stmt.Close()

	for row := 0; row < nrows; row++ {
		args := make([]any, len(columns))
		for i, col := range columns {
			args[i] = arrowCellValue(col.Array, row)
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("datatable: insert row %d: %w", row, err)
		}
	}

	return tx.Commit()
}

func buildCreateTableQuery(tableName string, schema Schema) string {
	cols := make([]string, len(schema))
	for i, c := range schema {
		cols[i] = fmt.Sprintf("[%s] %s", c.Name, sqliteType(c.Kind))
	}
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS [%s] (%s)`, tableName, strings.Join(cols, ", "))
}

func buildInsertQuery(tableName string, ncols int) string {
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", ncols), ", ")
	return fmt.Sprintf(`INSERT INTO [%s] VALUES (%s)`, tableName, placeholders)
}

func sqliteType(k Kind) string {
	switch k {
	case KindInteger:
		return "INTEGER"
	case KindReal:
		return "REAL"
	case KindDatetime:
		return "TEXT"
	default:
		return "TEXT"
	}
}

func arrowCellValue(arr arrow.Array, row int) any {
	if arr.IsNull(row) {
		return nil
	}
	switch a := arr.(type) {
	case interface{ Value(int) int64 }:
		return a.Value(row)
	case interface{ Value(int) float64 }:
		return a.Value(row)
	case interface{ Value(int) string }:
		return a.Value(row)
	default:
		return nil
	}
}
