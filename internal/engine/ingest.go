package engine

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// IngestCSV loads a columnar file into the store under an explicit table
// name. The header row names the columns; types are sniffed from the data
// (INTEGER, then REAL, then TEXT). Requires a writable handle.
func (d *DB) IngestCSV(ctx context.Context, table, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("ingest %s: %w", table, err)
	}
	defer f.Close()
	return d.ingestCSV(ctx, table, f)
}

func (d *DB) ingestCSV(ctx context.Context, table string, r io.Reader) error {
	cr := csv.NewReader(r)
	cr.ReuseRecord = false

	header, err := cr.Read()
	if err != nil {
		return fmt.Errorf("ingest %s: read header: %w", table, err)
	}

	var records [][]string
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("ingest %s: %w", table, err)
		}
		records = append(records, rec)
	}

	types := sniffTypes(header, records)

	var ddl strings.Builder
	fmt.Fprintf(&ddl, "CREATE TABLE %s (", quoteIdent(table))
	for i, col := range header {
		if i > 0 {
			ddl.WriteString(", ")
		}
		fmt.Fprintf(&ddl, "%s %s", quoteIdent(col), types[i])
	}
	ddl.WriteString(")")
	if err := d.Exec(ctx, ddl.String()); err != nil {
		return fmt.Errorf("ingest %s: %w", table, err)
	}

	if len(records) == 0 {
		return nil
	}

	placeholders := "(" + strings.TrimSuffix(strings.Repeat("?,", len(header)), ",") + ")"
	insert := fmt.Sprintf("INSERT INTO %s VALUES %s", quoteIdent(table), placeholders)

	tx, err := d.sqldb.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("ingest %s: %w", table, err)
	}
	stmt, err := tx.PrepareContext(ctx, insert)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("ingest %s: %w", table, err)
	}
	defer stmt.Close()

	for _, rec := range records {
		args := make([]any, len(rec))
		for i, field := range rec {
			args[i] = convertField(field, types[i])
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			tx.Rollback()
			return fmt.Errorf("ingest %s: %w", table, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("ingest %s: %w", table, err)
	}

	d.log.Debug("ingested %d rows into %s", len(records), table)
	return nil
}

// sniffTypes picks the narrowest SQLite affinity every non-empty value of a
// column fits in.
func sniffTypes(header []string, records [][]string) []string {
	types := make([]string, len(header))
	for col := range header {
		isInt, isReal, seen := true, true, false
		for _, rec := range records {
			if col >= len(rec) || rec[col] == "" {
				continue
			}
			seen = true
			v := rec[col]
			if _, err := strconv.ParseInt(v, 10, 64); err != nil {
				isInt = false
			}
			if _, err := strconv.ParseFloat(v, 64); err != nil {
				isReal = false
			}
		}
		switch {
		case seen && isInt:
			types[col] = "INTEGER"
		case seen && isReal:
			types[col] = "REAL"
		default:
			types[col] = "TEXT"
		}
	}
	return types
}

func convertField(field, typ string) any {
	if field == "" {
		return nil
	}
	switch typ {
	case "INTEGER":
		if n, err := strconv.ParseInt(field, 10, 64); err == nil {
			return n
		}
	case "REAL":
		if f, err := strconv.ParseFloat(field, 64); err == nil {
			return f
		}
	}
	return field
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
