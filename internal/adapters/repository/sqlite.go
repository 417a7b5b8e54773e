package repository

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	// Registers the pure-Go "sqlite" driver.
	_ "github.com/glebarez/go-sqlite"

	"github.com/okian/homerun/internal/domain/model"
)

const sqliteDriver = "sqlite"

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ReadSQLite decodes events from table in the SQLite database at path. The
// table must carry the same columns as the CSV export.
func ReadSQLite(ctx context.Context, path, table string) ([]model.Event, error) {
	if !tableName.MatchString(table) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTable, table)
	}
	db, err := sql.Open(sqliteDriver, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, `SELECT * FROM "`+table+`"`)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}
	defer rows.Close()

	names, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("columns %s: %w", table, err)
	}
	h := newHeader(names)
	if miss := h.missing(); len(miss) > 0 {
		return nil, fmt.Errorf("table %s columns %s: %w", table, strings.Join(miss, ", "), model.ErrMissingField)
	}

	vals := make([]any, len(names))
	ptrs := make([]any, len(names))
	for i := range vals {
		ptrs[i] = &vals[i]
	}
	rec := make([]string, len(names))

	var events []model.Event
	for line := 1; rows.Next(); line++ {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan %s row %d: %w", table, line, err)
		}
		for i, v := range vals {
			rec[i] = cellText(v)
		}
		rr := rowReader{h: h, rec: rec, line: line}
		e, err := rr.event()
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", table, err)
	}
	return events, nil
}

// cellText renders a SQLite value the way it would appear in a CSV cell;
// NULL becomes an empty cell.
func cellText(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case []byte:
		return string(t)
	case string:
		return t
	case bool:
		if t {
			return "1"
		}
		return "0"
	default:
		return fmt.Sprint(t)
	}
}
