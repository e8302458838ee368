package component_test

import (
	"testing"

	"kfpComponents/src/component"
	"kfpComponents/src/config"
)

func numericOutputs() map[string]*component.Dataset {
	return map[string]*component.Dataset{
		"data_out": component.NewDataset(nil, "data_out", "data_out", "/tmp/data_out"),
	}
}

func TestBind(t *testing.T) {
	c := component.MakeNumericDataset(config.Default())

	t.Run("valid binding", func(t *testing.T) {
		inv, err := c.Bind(map[string]any{"n_rows": 10}, numericOutputs())
		if err != nil {
			t.Fatalf("Bind failed: %v", err)
		}

		n, err := inv.Int("n_rows")
		if err != nil {
			t.Fatalf("Int failed: %v", err)
		}
		if n != 10 {
			t.Errorf("n_rows = %d, want 10", n)
		}

		out, err := inv.Output("data_out")
		if err != nil {
			t.Fatalf("Output failed: %v", err)
		}
		if out.Path() != "/tmp/data_out" {
			t.Errorf("Path() = %q, want %q", out.Path(), "/tmp/data_out")
		}
	})

	t.Run("int64 accepted for integer", func(t *testing.T) {
		inv, err := c.Bind(map[string]any{"n_rows": int64(7)}, numericOutputs())
		if err != nil {
			t.Fatalf("Bind failed: %v", err)
		}
		n, err := inv.Int("n_rows")
		if err != nil || n != 7 {
			t.Errorf("Int = (%d, %v), want (7, nil)", n, err)
		}
	})

	t.Run("missing parameter", func(t *testing.T) {
		if _, err := c.Bind(map[string]any{}, numericOutputs()); err == nil {
			t.Error("Bind accepted empty params")
		}
	})

	t.Run("wrong parameter type", func(t *testing.T) {
		if _, err := c.Bind(map[string]any{"n_rows": "ten"}, numericOutputs()); err == nil {
			t.Error("Bind accepted a string for an integer parameter")
		}
	})

	t.Run("unknown parameter", func(t *testing.T) {
		params := map[string]any{"n_rows": 10, "oops": 1}
		if _, err := c.Bind(params, numericOutputs()); err == nil {
			t.Error("Bind accepted an undeclared parameter")
		}
	})

	t.Run("missing output location", func(t *testing.T) {
		if _, err := c.Bind(map[string]any{"n_rows": 10}, nil); err == nil {
			t.Error("Bind accepted an invocation without output locations")
		}
	})
}

func TestComponentMetadata(t *testing.T) {
	t.Run("default environment", func(t *testing.T) {
		c := component.MakeNumericDataset(config.Default())

		if c.Name != "make_numeric_dataset" {
			t.Errorf("Name = %q, want make_numeric_dataset", c.Name)
		}
		if c.Environment.BaseImage != config.DefaultBaseImage {
			t.Errorf("BaseImage = %q, want %q", c.Environment.BaseImage, config.DefaultBaseImage)
		}
	})

	t.Run("configured environment", func(t *testing.T) {
		cfg := config.Default()
		cfg.Component.BaseImage = "registry.example.com/runtime:1.2"
		cfg.Component.PackagesToInstall = []string{"extras"}

		c := component.MakeTabularDataset(cfg)

		if c.Environment.BaseImage != "registry.example.com/runtime:1.2" {
			t.Errorf("BaseImage = %q", c.Environment.BaseImage)
		}
		if len(c.Environment.PackagesToInstall) != 1 || c.Environment.PackagesToInstall[0] != "extras" {
			t.Errorf("PackagesToInstall = %v", c.Environment.PackagesToInstall)
		}
	})

	t.Run("tabular signature", func(t *testing.T) {
		c := component.MakeTabularDataset(config.Default())

		if len(c.Inputs) != 2 {
			t.Fatalf("Inputs = %v, want n_rows and schema_sql", c.Inputs)
		}
		if len(c.Outputs) != 1 || c.Outputs[0].Name != "data_out" {
			t.Errorf("Outputs = %v, want [data_out]", c.Outputs)
		}
	})
}
