package readers

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/denisenkom/go-mssqldb"
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"dfkernel/internal/column"
	"dfkernel/internal/dtype"
	"dfkernel/internal/errs"
)

// DSN builds a driver connection string for one of the supported engines,
// the same dbType-keyed construction the connection layer this reader
// replaces used for its own (security-scanning) connections.
func DSN(dbType, host string, port int, database, username, password string) (driver, dsn string, err error) {
	switch strings.ToLower(dbType) {
	case "mysql":
		return "mysql", fmt.Sprintf("%s:%s@tcp(%s:%d)/%s", username, password, host, port, database), nil
	case "postgres", "postgresql":
		return "postgres", fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
			host, port, username, password, database), nil
	case "sqlite", "sqlite3":
		return "sqlite", database, nil
	case "sqlserver", "mssql":
		return "sqlserver", fmt.Sprintf("server=%s;port=%d;user id=%s;password=%s;database=%s",
			host, port, username, password, database), nil
	default:
		return "", "", errs.New(errs.InvalidArgument, "unsupported database type %q", dbType)
	}
}

// ReadSQL runs query against driver/dsn and materializes the result set
// into a Table, inferring each output column's type from its driven
// string representation the same way ReadCSV/ReadJSON do.
func ReadSQL(driver, dsn, query string) (*column.Table, Schema, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, Schema{}, err
	}
	defer db.Close()

	rows, err := db.Query(query)
	if err != nil {
		return nil, Schema{}, err
	}
	defer rows.Close()

	names, err := rows.Columns()
	if err != nil {
		return nil, Schema{}, err
	}

	var byRow [][]string
	for rows.Next() {
		scanVals := make([]sql.NullString, len(names))
		scanTargets := make([]interface{}, len(names))
		for i := range scanVals {
			scanTargets[i] = &scanVals[i]
		}
		if err := rows.Scan(scanTargets...); err != nil {
			return nil, Schema{}, err
		}
		row := make([]string, len(names))
		for i, v := range scanVals {
			if v.Valid {
				row[i] = v.String
			}
		}
		byRow = append(byRow, row)
	}
	if err := rows.Err(); err != nil {
		return nil, Schema{}, err
	}

	byColumn := make([][]string, len(names))
	for c := range byColumn {
		byColumn[c] = make([]string, len(byRow))
		for r := range byRow {
			byColumn[c][r] = byRow[r][c]
		}
	}

	outCols := make([]*column.Column, len(names))
	types := make([]dtype.Type, len(names))
	for c := range names {
		col, typ, err := buildColumn(byColumn[c])
		if err != nil {
			return nil, Schema{}, err
		}
		outCols[c] = col
		types[c] = typ
	}

	tbl, err := column.NewTable(names, outCols)
	if err != nil {
		return nil, Schema{}, err
	}
	return tbl, Schema{Names: names, Types: types}, nil
}
