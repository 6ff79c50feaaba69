package readers

import (
	"strings"
	"testing"

	"dfkernel/internal/dtype"
)

func TestReadJSONRecordsOrientation(t *testing.T) {
	data := `[{"id":1,"name":"alice"},{"id":2,"name":"bob"}]`
	tbl, schema, err := ReadJSON(strings.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if tbl.NumRows() != 2 {
		t.Fatalf("NumRows() = %d, want 2", tbl.NumRows())
	}
	if schema.Names[0] != "id" || schema.Names[1] != "name" {
		t.Fatalf("column order = %v, want [id name] (first-seen order)", schema.Names)
	}
	if schema.Types[0].ID != dtype.Int64 {
		t.Errorf("id inferred as %s, want Int64", schema.Types[0])
	}
	if schema.Types[1].ID != dtype.String {
		t.Errorf("name inferred as %s, want String", schema.Types[1])
	}
}

func TestReadJSONMissingKeyIsNull(t *testing.T) {
	data := `[{"a":1,"b":2},{"a":3}]`
	tbl, _, err := ReadJSON(strings.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	_, bi, ok := tbl.ColumnByName("b")
	if !ok {
		t.Fatal("column b should exist even though row 1 omits it")
	}
	v := tbl.Columns[bi].View()
	if !v.IsValid(0) || v.IsValid(1) {
		t.Fatalf("b validity = [%v,%v], want [true,false]", v.IsValid(0), v.IsValid(1))
	}
}

func TestReadJSONNullLiteralIsNull(t *testing.T) {
	data := `[{"x":null},{"x":5}]`
	tbl, _, err := ReadJSON(strings.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	v := tbl.Columns[0].View()
	if v.IsValid(0) || !v.IsValid(1) {
		t.Fatalf("x validity = [%v,%v], want [false,true]", v.IsValid(0), v.IsValid(1))
	}
}

func TestRawJSONToStringUnquotes(t *testing.T) {
	if got := rawJSONToString([]byte(`"hi"`)); got != "hi" {
		t.Errorf(`rawJSONToString("hi") = %q, want "hi"`, got)
	}
	if got := rawJSONToString([]byte(`42`)); got != "42" {
		t.Errorf("rawJSONToString(42) = %q, want 42", got)
	}
	if got := rawJSONToString([]byte(`null`)); got != "" {
		t.Errorf("rawJSONToString(null) = %q, want empty", got)
	}
}
