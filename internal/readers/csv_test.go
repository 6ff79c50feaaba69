package readers

import (
	"strings"
	"testing"

	"dfkernel/internal/dtype"
)

func TestReadCSVInfersTypesPerColumn(t *testing.T) {
	data := "id,score,active,name\n1,1.5,true,alice\n2,2.5,false,bob\n"
	tbl, schema, err := ReadCSV(strings.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if tbl.NumRows() != 2 {
		t.Fatalf("NumRows() = %d, want 2", tbl.NumRows())
	}
	want := map[string]dtype.ID{
		"id": dtype.Int64, "score": dtype.Float64, "active": dtype.Bool8, "name": dtype.String,
	}
	for i, name := range schema.Names {
		if got := schema.Types[i].ID; got != want[name] {
			t.Errorf("column %q inferred as %s, want %s", name, got, dtype.Fixed(want[name]))
		}
	}
}

func TestReadCSVMixedColumnFallsBackToString(t *testing.T) {
	// "id" mixes an integer with free text, so the whole column must stay
	// String rather than silently truncating "abc" through ParseInt.
	data := "id\n1\nabc\n"
	_, schema, err := ReadCSV(strings.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if schema.Types[0].ID != dtype.String {
		t.Fatalf("mixed int/text column inferred as %s, want String", schema.Types[0])
	}
}

func TestReadCSVEmptyValueIsNull(t *testing.T) {
	data := "n\n1\n\n3\n"
	tbl, _, err := ReadCSV(strings.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	v := tbl.Columns[0].View()
	if !v.IsValid(0) || v.IsValid(1) || !v.IsValid(2) {
		t.Fatalf("row validity = [%v,%v,%v], want [true,false,true]", v.IsValid(0), v.IsValid(1), v.IsValid(2))
	}
}

func TestReadCSVAllBoolColumn(t *testing.T) {
	data := "flag\ntrue\nfalse\ntrue\n"
	_, schema, err := ReadCSV(strings.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if schema.Types[0].ID != dtype.Bool8 {
		t.Fatalf("all-bool column inferred as %s, want Bool8", schema.Types[0])
	}
}

func TestReadCSVEmptyInput(t *testing.T) {
	tbl, _, err := ReadCSV(strings.NewReader(""))
	if err != nil {
		t.Fatal(err)
	}
	if tbl != nil {
		t.Fatalf("empty CSV input should produce a nil table, got %v", tbl)
	}
}

func TestInferTypePrecedence(t *testing.T) {
	cases := []struct {
		values []string
		want   inferredType
	}{
		{[]string{"1", "2", "3"}, typeInt64},
		{[]string{"1", "2.5"}, typeFloat64},
		{[]string{"true", "false"}, typeBool8},
		{[]string{"1", "true"}, typeString},
		{[]string{"hello", "1"}, typeString},
		{[]string{"", ""}, typeString},
	}
	for _, c := range cases {
		if got := inferType(c.values); got != c.want {
			t.Errorf("inferType(%v) = %v, want %v", c.values, got, c.want)
		}
	}
}
