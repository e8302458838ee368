package runner_test

import (
	"bytes"
	"context"
	"os"
	"testing"

	"kfpComponents/src/component"
	"kfpComponents/src/config"
	"kfpComponents/src/runner"
	"kfpComponents/src/writer"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Common.Path = t.TempDir()
	return cfg
}

func newTestRunner(t *testing.T, cfg *config.Config) *runner.LocalRunner {
	t.Helper()
	r, err := runner.New(cfg)
	if err != nil {
		t.Fatalf("runner.New failed: %v", err)
	}
	t.Cleanup(r.Close)
	return r
}

func TestRunMakeNumericDataset(t *testing.T) {
	cfg := testConfig(t)
	r := newTestRunner(t, cfg)
	c := component.MakeNumericDataset(cfg)

	t.Run("writes the output artifact", func(t *testing.T) {
		exec, err := r.Run(context.Background(), c, map[string]any{"n_rows": 10})
		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}
		if exec.RunID == "" {
			t.Error("RunID is empty")
		}

		out, ok := exec.Outputs["data_out"]
		if !ok {
			t.Fatal("no data_out in outputs")
		}

		tbl, err := writer.ReadTable(out.Path())
		if err != nil {
			t.Fatalf("ReadTable(%q) failed: %v", out.Path(), err)
		}
		if tbl.NumRows() != 10 || tbl.NumCols() != 4 {
			t.Errorf("artifact is %dx%d, want 10x4", tbl.NumRows(), tbl.NumCols())
		}
	})

	t.Run("zero rows", func(t *testing.T) {
		exec, err := r.Run(context.Background(), c, map[string]any{"n_rows": 0})
		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}

		tbl, err := writer.ReadTable(exec.Outputs["data_out"].Path())
		if err != nil {
			t.Fatalf("ReadTable failed: %v", err)
		}
		if tbl.NumRows() != 0 {
			t.Errorf("NumRows() = %d, want 0", tbl.NumRows())
		}
		if tbl.NumCols() != 4 {
			t.Errorf("NumCols() = %d, want 4", tbl.NumCols())
		}
	})

	t.Run("runs are byte-identical", func(t *testing.T) {
		first, err := r.Run(context.Background(), c, map[string]any{"n_rows": 25})
		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}
		second, err := r.Run(context.Background(), c, map[string]any{"n_rows": 25})
		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}
		if first.RunID == second.RunID {
			t.Error("two runs share a run ID")
		}

		a, err := os.ReadFile(first.Outputs["data_out"].Path())
		if err != nil {
			t.Fatal(err)
		}
		b, err := os.ReadFile(second.Outputs["data_out"].Path())
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(a, b) {
			t.Error("two runs with the same parameters produced different artifact bytes")
		}
	})

	t.Run("invalid params fail before execution", func(t *testing.T) {
		if _, err := r.Run(context.Background(), c, map[string]any{"rows": 10}); err == nil {
			t.Error("Run accepted a misnamed parameter")
		}
	})
}

func TestRunMakeTabularDataset(t *testing.T) {
	cfg := testConfig(t)
	r := newTestRunner(t, cfg)
	c := component.MakeTabularDataset(cfg)

	params := map[string]any{
		"n_rows":     16,
		"schema_sql": "CREATE TABLE users (id bigint, balance double, name varchar(12))",
	}
	exec, err := r.Run(context.Background(), c, params)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	info, err := os.Stat(exec.Outputs["data_out"].Path())
	if err != nil {
		t.Fatalf("artifact missing: %v", err)
	}
	if info.Size() == 0 {
		t.Error("artifact is empty")
	}
}
