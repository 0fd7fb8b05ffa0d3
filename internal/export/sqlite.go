package export

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/jmarlow/fieldscan/internal/visit"
)

// WriteSQLite writes the table into a visits table in a SQLite file at
// path, creating parent directories as needed. An existing visits table is
// replaced, so the file always reflects exactly one scan.
func WriteSQLite(path string, t visit.Table) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating export directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return fmt.Errorf("opening export database: %w", err)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("closing export database: %w", closeErr)
		}
	}()

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return fmt.Errorf("configuring export database: %w", err)
	}

	if _, err := db.Exec("DROP TABLE IF EXISTS visits"); err != nil {
		return fmt.Errorf("dropping old visits table: %w", err)
	}
	if _, err := db.Exec(createStmt(t)); err != nil {
		return fmt.Errorf("creating visits table: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("beginning export transaction: %w", err)
	}

	cols := t.Columns()
	insert := fmt.Sprintf("INSERT INTO visits (%s) VALUES (%s)",
		quoteJoin(cols), placeholders(len(cols)))
	stmt, err := tx.Prepare(insert)
	if err != nil {
		rollback(tx)
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer func() {
		if closeErr := stmt.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("closing insert statement: %w", closeErr)
		}
	}()

	for _, row := range t.Rows {
		args := make([]any, 0, len(cols))
		for _, v := range rowValues(t, row) {
			args = append(args, v)
		}
		if _, err := stmt.Exec(args...); err != nil {
			rollback(tx)
			return fmt.Errorf("inserting visit %s/%s: %w",
				row.PlotID, row.VisitDate.Format(dateLayout), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing export: %w", err)
	}
	return nil
}

// createStmt builds the visits table schema from the table's columns.
// Derived fields are INTEGER, everything else TEXT.
func createStmt(t visit.Table) string {
	intCols := map[string]bool{
		"year": true, "month": true, "day_of_year": true, "days_since_first": true,
	}
	var defs []string
	for _, c := range t.Columns() {
		typ := "TEXT"
		if intCols[c] {
			typ = "INTEGER"
		}
		defs = append(defs, fmt.Sprintf("%q %s", c, typ))
	}
	return fmt.Sprintf("CREATE TABLE visits (%s)", strings.Join(defs, ", "))
}

func quoteJoin(cols []string) string {
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = fmt.Sprintf("%q", c)
	}
	return strings.Join(quoted, ", ")
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func rollback(tx *sql.Tx) {
	if err := tx.Rollback(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: rolling back export: %v\n", err)
	}
}
