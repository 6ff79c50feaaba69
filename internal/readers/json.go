package readers

import (
	"encoding/json"
	"io"

	"dfkernel/internal/column"
	"dfkernel/internal/dtype"
)

// ReadJSON parses r as a JSON array of flat objects (the common
// "records" orientation) into a Table, unioning every row's keys into a
// stable column order (first seen) and inferring each column's type from
// its rendered string values the same way ReadCSV does.
func ReadJSON(r io.Reader) (*column.Table, Schema, error) {
	var records []map[string]json.RawMessage
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, Schema{}, err
	}

	var order []string
	seen := map[string]bool{}
	for _, rec := range records {
		for k := range rec {
			if !seen[k] {
				seen[k] = true
				order = append(order, k)
			}
		}
	}

	cols := make([][]string, len(order))
	for i := range cols {
		cols[i] = make([]string, len(records))
	}
	for r, rec := range records {
		for c, name := range order {
			raw, ok := rec[name]
			if !ok {
				continue
			}
			cols[c][r] = rawJSONToString(raw)
		}
	}

	outCols := make([]*column.Column, len(order))
	types := make([]dtype.Type, len(order))
	for c := range order {
		col, typ, err := buildColumn(cols[c])
		if err != nil {
			return nil, Schema{}, err
		}
		outCols[c] = col
		types[c] = typ
	}

	tbl, err := column.NewTable(order, outCols)
	if err != nil {
		return nil, Schema{}, err
	}
	return tbl, Schema{Names: order, Types: types}, nil
}

// rawJSONToString strips the surrounding quotes JSON puts around string
// values so "42" and 42 infer the same way; everything else (numbers,
// bools, null) already renders as a bare literal.
func rawJSONToString(raw json.RawMessage) string {
	s := string(raw)
	if s == "null" {
		return ""
	}
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		var unquoted string
		if err := json.Unmarshal(raw, &unquoted); err == nil {
			return unquoted
		}
	}
	return s
}
