// Package readers implements the external-collaborator surface that
// turns byte buffers or database rows into (Table, schema): CSV, JSON,
// and SQL. Readers call into the column model's factories and the
// validity-bitmap core but are not part of the specified kernel core.
package readers

import (
	"bufio"
	"encoding/csv"
	"io"
	"strconv"

	"dfkernel/internal/bitmap"
	"dfkernel/internal/column"
	"dfkernel/internal/dtype"
)

// Schema names each output column's inferred type.
type Schema struct {
	Names []string
	Types []dtype.Type
}

// ReadCSV parses r as RFC 4180 CSV with a header row, inferring each
// column's type from its non-empty values (Int64, then Float64, then
// Bool8, falling back to String), and returns the resulting Table.
func ReadCSV(r io.Reader) (*column.Table, Schema, error) {
	cr := csv.NewReader(bufio.NewReader(r))
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	if err != nil {
		return nil, Schema{}, err
	}
	if len(records) == 0 {
		return nil, Schema{}, nil
	}
	header := records[0]
	rows := records[1:]
	ncol := len(header)

	cols := make([][]string, ncol)
	for c := 0; c < ncol; c++ {
		cols[c] = make([]string, len(rows))
		for r, rec := range rows {
			if c < len(rec) {
				cols[c][r] = rec[c]
			}
		}
	}

	outCols := make([]*column.Column, ncol)
	types := make([]dtype.Type, ncol)
	for c := 0; c < ncol; c++ {
		col, typ, err := buildColumn(cols[c])
		if err != nil {
			return nil, Schema{}, err
		}
		outCols[c] = col
		types[c] = typ
	}

	tbl, err := column.NewTable(header, outCols)
	if err != nil {
		return nil, Schema{}, err
	}
	return tbl, Schema{Names: header, Types: types}, nil
}

func buildColumn(values []string) (*column.Column, dtype.Type, error) {
	switch inferType(values) {
	case typeInt64:
		return buildInt64Column(values)
	case typeFloat64:
		return buildFloat64Column(values)
	case typeBool8:
		return buildBool8Column(values)
	default:
		return buildStringColumn(values)
	}
}

type inferredType int

const (
	typeString inferredType = iota
	typeInt64
	typeFloat64
	typeBool8
)

// inferType picks the narrowest type every non-empty value in the column
// fits: a mix of plain integers stays Int64, a mix that also has a
// fractional value widens to Float64, an all-true/false column is Bool8,
// and anything that mixes those families or contains non-numeric,
// non-bool text falls back to String.
func inferType(values []string) inferredType {
	var sawAny, sawString, sawBool, sawFloat, sawInt bool
	for _, v := range values {
		if v == "" {
			continue
		}
		sawAny = true
		switch classify(v) {
		case typeInt64:
			sawInt = true
		case typeFloat64:
			sawFloat = true
		case typeBool8:
			sawBool = true
		default:
			sawString = true
		}
	}
	switch {
	case !sawAny:
		return typeString
	case sawString:
		return typeString
	case sawBool && (sawInt || sawFloat):
		return typeString
	case sawBool:
		return typeBool8
	case sawFloat:
		return typeFloat64
	default:
		return typeInt64
	}
}

func classify(v string) inferredType {
	if _, err := strconv.ParseInt(v, 10, 64); err == nil {
		return typeInt64
	}
	if _, err := strconv.ParseFloat(v, 64); err == nil {
		return typeFloat64
	}
	if _, err := strconv.ParseBool(v); err == nil {
		return typeBool8
	}
	return typeString
}

func buildInt64Column(values []string) (*column.Column, dtype.Type, error) {
	typ := dtype.Fixed(dtype.Int64)
	data := make([]int64, len(values))
	mask := bitmap.CreateNullMask(len(values), bitmap.AllValid)
	nullCount := 0
	for i, v := range values {
		if v == "" {
			bitmap.SetValid(mask, i, false)
			nullCount++
			continue
		}
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, typ, err
		}
		data[i] = n
	}
	return column.NewFixedWidthColumn(typ, len(values), data, mask, nullCount), typ, nil
}

func buildFloat64Column(values []string) (*column.Column, dtype.Type, error) {
	typ := dtype.Fixed(dtype.Float64)
	data := make([]float64, len(values))
	mask := bitmap.CreateNullMask(len(values), bitmap.AllValid)
	nullCount := 0
	for i, v := range values {
		if v == "" {
			bitmap.SetValid(mask, i, false)
			nullCount++
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, typ, err
		}
		data[i] = f
	}
	return column.NewFixedWidthColumn(typ, len(values), data, mask, nullCount), typ, nil
}

func buildBool8Column(values []string) (*column.Column, dtype.Type, error) {
	typ := dtype.Fixed(dtype.Bool8)
	data := make([]int8, len(values))
	mask := bitmap.CreateNullMask(len(values), bitmap.AllValid)
	nullCount := 0
	for i, v := range values {
		if v == "" {
			bitmap.SetValid(mask, i, false)
			nullCount++
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, typ, err
		}
		if b {
			data[i] = 1
		}
	}
	return column.NewFixedWidthColumn(typ, len(values), data, mask, nullCount), typ, nil
}

func buildStringColumn(values []string) (*column.Column, dtype.Type, error) {
	offsets := make([]int32, len(values)+1)
	var chars []byte
	mask := bitmap.CreateNullMask(len(values), bitmap.AllValid)
	for i, v := range values {
		if v == "" {
			bitmap.SetValid(mask, i, false)
		}
		chars = append(chars, v...)
		offsets[i+1] = offsets[i] + int32(len(v))
	}
	col, err := column.MakeStringsColumn(chars, offsets, mask)
	return col, dtype.Fixed(dtype.String), err
}
