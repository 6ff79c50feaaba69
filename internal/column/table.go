package column

import "dfkernel/internal/errs"

// Table is an ordered sequence of owning columns of equal row count.
// Column identity within a table is positional.
type Table struct {
	Names   []string
	Columns []*Column
}

func NewTable(names []string, cols []*Column) (*Table, error) {
	if len(names) != len(cols) {
		return nil, errs.New(errs.InvalidArgument, "names/columns length mismatch: %d vs %d", len(names), len(cols))
	}
	if len(cols) > 0 {
		n := cols[0].Size()
		for _, c := range cols[1:] {
			if c.Size() != n {
				return nil, errs.New(errs.InvalidArgument, "column row-count mismatch: %d vs %d", c.Size(), n)
			}
		}
	}
	return &Table{Names: names, Columns: cols}, nil
}

func (t *Table) NumColumns() int { return len(t.Columns) }

func (t *Table) NumRows() int {
	if len(t.Columns) == 0 {
		return 0
	}
	return t.Columns[0].Size()
}

// View returns a borrowed TableView over the full table.
func (t *Table) View() *TableView {
	views := make([]*View, len(t.Columns))
	for i, c := range t.Columns {
		views[i] = c.View()
	}
	return &TableView{Names: t.Names, Columns: views}
}

func (t *Table) ColumnByName(name string) (*Column, int, bool) {
	for i, n := range t.Names {
		if n == name {
			return t.Columns[i], i, true
		}
	}
	return nil, -1, false
}

// TableView is an ordered sequence of borrowed column views of equal row
// count. All kernels accept TableViews as input.
type TableView struct {
	Names   []string
	Columns []*View
}

func NewTableView(names []string, cols []*View) (*TableView, error) {
	if len(names) != len(cols) {
		return nil, errs.New(errs.InvalidArgument, "names/columns length mismatch: %d vs %d", len(names), len(cols))
	}
	if len(cols) > 0 {
		n := cols[0].Size()
		for _, c := range cols[1:] {
			if c.Size() != n {
				return nil, errs.New(errs.InvalidArgument, "column row-count mismatch: %d vs %d", c.Size(), n)
			}
		}
	}
	return &TableView{Names: names, Columns: cols}, nil
}

func (t *TableView) NumColumns() int { return len(t.Columns) }

func (t *TableView) NumRows() int {
	if len(t.Columns) == 0 {
		return 0
	}
	return t.Columns[0].Size()
}

func (t *TableView) ColumnByName(name string) (*View, int, bool) {
	for i, n := range t.Names {
		if n == name {
			return t.Columns[i], i, true
		}
	}
	return nil, -1, false
}

// Project returns a new TableView restricted to the given column indices,
// in the given order.
func (t *TableView) Project(indices []int) (*TableView, error) {
	names := make([]string, len(indices))
	cols := make([]*View, len(indices))
	for i, idx := range indices {
		if idx < 0 || idx >= len(t.Columns) {
			return nil, errs.New(errs.OutOfRange, "column index %d out of range [0,%d)", idx, len(t.Columns))
		}
		names[i] = t.Names[idx]
		cols[i] = t.Columns[idx]
	}
	return &TableView{Names: names, Columns: cols}, nil
}
