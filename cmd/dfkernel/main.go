// Command dfkernel is a small demo CLI: it reads a CSV file, runs a
// group-by count over a chosen key column, and prints the result table,
// colorizing the header when stdout is a real terminal.
package main

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"

	"dfkernel/internal/column"
	"dfkernel/internal/dispatch"
	"dfkernel/internal/groupby"
	"dfkernel/internal/readers"
)

func main() {
	if len(os.Args) < 3 {
		fmt.Fprintln(os.Stderr, "usage: dfkernel <csv-path> <group-by-column>")
		os.Exit(2)
	}
	path, keyName := os.Args[1], os.Args[2]

	f, err := os.Open(path)
	if err != nil {
		fatal(err)
	}
	defer f.Close()

	tbl, _, err := readers.ReadCSV(f)
	if err != nil {
		fatal(err)
	}

	_, keyIdx, ok := tbl.ColumnByName(keyName)
	if !ok {
		fatal(fmt.Errorf("no column named %q", keyName))
	}

	view := tbl.View()
	keys, err := view.Project([]int{keyIdx})
	if err != nil {
		fatal(err)
	}
	req := []groupby.Request{{ColumnIndex: keyIdx, Specs: []dispatch.AggSpec{dispatch.Count()}}}
	uniqueKeys, results, _, err := groupby.Aggregate(keys, view, req, groupby.Options{SortResult: true})
	if err != nil {
		fatal(err)
	}

	printResult(uniqueKeys, results[0], keyName)
}

func printResult(keys *column.Table, counts *column.Column, keyName string) {
	color := isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
	header := fmt.Sprintf("%s\tcount", keyName)
	if color {
		header = "\x1b[1m" + header + "\x1b[0m"
	}
	fmt.Println(header)

	kv := keys.Columns[0].View()
	for i := 0; i < kv.Size(); i++ {
		n := column.At[int64](counts.View(), i)
		fmt.Printf("%s\t%d\n", formatValue(kv, i), n)
	}
}

// formatValue renders row i of v as a string for display, regardless of
// its underlying element type.
func formatValue(v *column.View, i int) string {
	if v.Type().IsString() {
		return v.StringAt(i)
	}
	switch d := v.Data().(type) {
	case []int8:
		return fmt.Sprintf("%d", d[v.Offset()+i])
	case []uint8:
		return fmt.Sprintf("%d", d[v.Offset()+i])
	case []int16:
		return fmt.Sprintf("%d", d[v.Offset()+i])
	case []uint16:
		return fmt.Sprintf("%d", d[v.Offset()+i])
	case []int32:
		return fmt.Sprintf("%d", d[v.Offset()+i])
	case []uint32:
		return fmt.Sprintf("%d", d[v.Offset()+i])
	case []int64:
		return fmt.Sprintf("%d", d[v.Offset()+i])
	case []uint64:
		return fmt.Sprintf("%d", d[v.Offset()+i])
	case []float32:
		return fmt.Sprintf("%g", d[v.Offset()+i])
	case []float64:
		return fmt.Sprintf("%g", d[v.Offset()+i])
	default:
		return "?"
	}
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "dfkernel:", err)
	os.Exit(1)
}
