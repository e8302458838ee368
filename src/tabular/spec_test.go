package tabular_test

import (
	"math/rand"
	"testing"

	"github.com/apache/arrow-go/v18/parquet"

	"kfpComponents/src/tabular"
)

func TestSpecsFromDDL(t *testing.T) {
	t.Run("column types and order", func(t *testing.T) {
		ddl := `CREATE TABLE t (
			id bigint,
			score double,
			name varchar(20),
			created timestamp
		)`

		specs, err := tabular.SpecsFromDDL(ddl)
		if err != nil {
			t.Fatalf("SpecsFromDDL failed: %v", err)
		}
		if len(specs) != 4 {
			t.Fatalf("got %d specs, want 4", len(specs))
		}

		cases := []struct {
			name    string
			sqlType string
			typ     parquet.Type
		}{
			{"id", "bigint", parquet.Types.Int64},
			{"score", "double", parquet.Types.Double},
			{"name", "varchar", parquet.Types.ByteArray},
			{"created", "timestamp", parquet.Types.Int64},
		}
		for i, c := range cases {
			if specs[i].Name != c.name {
				t.Errorf("specs[%d].Name = %q, want %q", i, specs[i].Name, c.name)
			}
			if specs[i].SQLType != c.sqlType {
				t.Errorf("specs[%d].SQLType = %q, want %q", i, specs[i].SQLType, c.sqlType)
			}
			if specs[i].Type != c.typ {
				t.Errorf("specs[%d].Type = %v, want %v", i, specs[i].Type, c.typ)
			}
		}
	})

	t.Run("varchar length from DDL", func(t *testing.T) {
		specs, err := tabular.SpecsFromDDL("CREATE TABLE t (name varchar(20))")
		if err != nil {
			t.Fatalf("SpecsFromDDL failed: %v", err)
		}
		if specs[0].TypeLen != 20 {
			t.Errorf("TypeLen = %d, want 20", specs[0].TypeLen)
		}
		if specs[0].MinLen != 15 {
			t.Errorf("MinLen = %d, want 15", specs[0].MinLen)
		}
	})

	t.Run("double defaults to standard normal", func(t *testing.T) {
		specs, err := tabular.SpecsFromDDL("CREATE TABLE t (v double)")
		if err != nil {
			t.Fatalf("SpecsFromDDL failed: %v", err)
		}
		if specs[0].Mean != 0 || specs[0].StdDev != 1 {
			t.Errorf("(mean, stddev) = (%v, %v), want (0, 1)", specs[0].Mean, specs[0].StdDev)
		}
	})

	t.Run("comment options", func(t *testing.T) {
		ddl := "CREATE TABLE t (" +
			"v double comment 'mean=5, stddev=2', " +
			"s varchar(32) comment 'null_percent=150, max_length=8, min_length=4')"

		specs, err := tabular.SpecsFromDDL(ddl)
		if err != nil {
			t.Fatalf("SpecsFromDDL failed: %v", err)
		}

		if specs[0].Mean != 5 || specs[0].StdDev != 2 {
			t.Errorf("(mean, stddev) = (%v, %v), want (5, 2)", specs[0].Mean, specs[0].StdDev)
		}
		if specs[1].NullPercent != 100 {
			t.Errorf("NullPercent = %d, want clamp to 100", specs[1].NullPercent)
		}
		if specs[1].TypeLen != 8 || specs[1].MinLen != 4 {
			t.Errorf("(TypeLen, MinLen) = (%d, %d), want (8, 4)", specs[1].TypeLen, specs[1].MinLen)
		}
	})

	t.Run("rejected inputs", func(t *testing.T) {
		cases := map[string]string{
			"not a create table": "DROP TABLE t",
			"broken syntax":      "CREATE TABLE t (",
			"unknown option":     "CREATE TABLE t (v double comment 'skew=3')",
			"malformed option":   "CREATE TABLE t (v double comment 'mean')",
		}
		for name, ddl := range cases {
			t.Run(name, func(t *testing.T) {
				if _, err := tabular.SpecsFromDDL(ddl); err == nil {
					t.Errorf("SpecsFromDDL(%q) succeeded", ddl)
				}
			})
		}
	})
}

func TestFillBatch(t *testing.T) {
	specs, err := tabular.SpecsFromDDL(
		"CREATE TABLE t (id int, n bigint, f float, v double, s varchar(10), ts timestamp, d date)")
	if err != nil {
		t.Fatalf("SpecsFromDDL failed: %v", err)
	}

	for _, spec := range specs {
		t.Run(spec.Name, func(t *testing.T) {
			buf, err := spec.MakeBuffer(32)
			if err != nil {
				t.Fatalf("MakeBuffer failed: %v", err)
			}
			defLevels := make([]int16, 32)
			rng := rand.New(rand.NewSource(1))

			if err := spec.FillBatch(buf, defLevels, rng); err != nil {
				t.Fatalf("FillBatch failed: %v", err)
			}
			for i, lvl := range defLevels {
				if lvl != 0 && lvl != 1 {
					t.Fatalf("defLevels[%d] = %d, want 0 or 1", i, lvl)
				}
			}
		})
	}

	t.Run("strings respect length bounds", func(t *testing.T) {
		specs, err := tabular.SpecsFromDDL("CREATE TABLE t (s varchar(10) comment 'min_length=4')")
		if err != nil {
			t.Fatalf("SpecsFromDDL failed: %v", err)
		}
		spec := specs[0]

		buf, err := spec.MakeBuffer(64)
		if err != nil {
			t.Fatalf("MakeBuffer failed: %v", err)
		}
		defLevels := make([]int16, 64)
		rng := rand.New(rand.NewSource(1))
		if err := spec.FillBatch(buf, defLevels, rng); err != nil {
			t.Fatalf("FillBatch failed: %v", err)
		}

		values, ok := buf.([]parquet.ByteArray)
		if !ok {
			t.Fatalf("buffer is %T, want []parquet.ByteArray", buf)
		}
		for i, v := range values {
			if defLevels[i] == 0 {
				continue
			}
			if len(v) < 4 || len(v) > 10 {
				t.Errorf("values[%d] has length %d, want 4..10", i, len(v))
			}
		}
	})
}
