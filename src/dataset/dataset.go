// Package dataset generates synthetic numeric datasets for pipeline
// components.
package dataset

import (
	"math/rand"
)

// DefaultSeed is the seed used when no explicit seed is given. Re-seeding
// with the same constant on every call makes generation fully
// reproducible: the same row count always yields identical values.
const DefaultSeed int64 = 42

var numericColumns = []string{"y", "x1", "x2", "x3"}

// Table is an in-memory columnar table. Columns[i] holds the values of
// the column named Names[i]; all columns have the same length.
type Table struct {
	Names   []string
	Columns [][]float64
}

// NumRows returns the number of rows in the table.
func (t *Table) NumRows() int {
	if len(t.Columns) == 0 {
		return 0
	}
	return len(t.Columns[0])
}

// NumCols returns the number of columns in the table.
func (t *Table) NumCols() int {
	return len(t.Columns)
}

// Column returns the values of the named column, or nil if no such
// column exists.
func (t *Table) Column(name string) []float64 {
	for i, n := range t.Names {
		if n == name {
			return t.Columns[i]
		}
	}
	return nil
}

// NumericColumns returns the column names of the numeric dataset, in
// the order they appear in generated tables.
func NumericColumns() []string {
	out := make([]string, len(numericColumns))
	copy(out, numericColumns)
	return out
}

// GenerateNumeric generates a table of nRows rows and four columns
// (y, x1, x2, x3), each drawn independently from a standard normal
// distribution seeded with DefaultSeed.
func GenerateNumeric(nRows int) *Table {
	return GenerateNumericSeeded(nRows, DefaultSeed)
}

// GenerateNumericSeeded is GenerateNumeric with an explicit seed.
// Columns are filled one after another from a single random stream, so
// the same (nRows, seed) pair always produces the same table. A
// negative nRows is passed through to the allocation and panics; the
// caller owns range checking.
func GenerateNumericSeeded(nRows int, seed int64) *Table {
	rng := rand.New(rand.NewSource(seed))

	cols := make([][]float64, len(numericColumns))
	for i := range cols {
		col := make([]float64, nRows)
		for j := range col {
			col[j] = rng.NormFloat64()
		}
		cols[i] = col
	}

	return &Table{
		Names:   NumericColumns(),
		Columns: cols,
	}
}
