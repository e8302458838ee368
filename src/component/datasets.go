package component

import (
	"context"

	"github.com/pingcap/errors"

	"kfpComponents/src/config"
	"kfpComponents/src/dataset"
	"kfpComponents/src/tabular"
	"kfpComponents/src/writer"
)

func environmentFor(cfg *config.Config) Environment {
	env := Environment{BaseImage: config.DefaultBaseImage}
	if cfg == nil {
		return env
	}
	if cfg.Component.BaseImage != "" {
		env.BaseImage = cfg.Component.BaseImage
	}
	env.PackagesToInstall = append(env.PackagesToInstall, cfg.Component.PackagesToInstall...)
	return env
}

// componentParquetOptions resolves the parquet options components write
// with. Artifacts are always written as a single row group so that any
// n_rows value is accepted.
func componentParquetOptions(cfg *config.Config) (writer.ParquetOptions, error) {
	opts, err := writer.ParquetFromConfig(cfg)
	if err != nil {
		return writer.ParquetOptions{}, err
	}
	opts.RowGroups = 1
	return opts, nil
}

// MakeNumericDataset returns the component that generates the synthetic
// numeric dataset (columns y, x1, x2, x3, standard normal, fixed seed)
// and writes it to the data_out artifact as Parquet. Errors from
// generation or serialization propagate to the caller unmodified; no
// retries, no partial-output cleanup.
func MakeNumericDataset(cfg *config.Config) *Component {
	return &Component{
		Name:        "make_numeric_dataset",
		Environment: environmentFor(cfg),
		Inputs: []Parameter{
			{Name: "n_rows", Type: Integer},
		},
		Outputs: []OutputSpec{
			{Name: "data_out"},
		},
		Execute: func(ctx context.Context, inv *Invocation) error {
			nRows, err := inv.Int("n_rows")
			if err != nil {
				return errors.Trace(err)
			}
			out, err := inv.Output("data_out")
			if err != nil {
				return errors.Trace(err)
			}
			opts, err := componentParquetOptions(cfg)
			if err != nil {
				return errors.Trace(err)
			}

			table := dataset.GenerateNumeric(nRows)

			w, err := out.Create(ctx)
			if err != nil {
				return errors.Trace(err)
			}
			if err := writer.WriteTable(ctx, w, table, opts); err != nil {
				//nolint: errcheck
				w.Close(ctx)
				return errors.Trace(err)
			}
			return errors.Trace(w.Close(ctx))
		},
	}
}

// MakeTabularDataset returns the component that generates a synthetic
// dataset for an arbitrary table schema. schema_sql is a CREATE TABLE
// statement; each column is synthesized per its type and comment
// options, deterministically from the library's fixed seed.
func MakeTabularDataset(cfg *config.Config) *Component {
	return &Component{
		Name:        "make_tabular_dataset",
		Environment: environmentFor(cfg),
		Inputs: []Parameter{
			{Name: "n_rows", Type: Integer},
			{Name: "schema_sql", Type: String},
		},
		Outputs: []OutputSpec{
			{Name: "data_out"},
		},
		Execute: func(ctx context.Context, inv *Invocation) error {
			nRows, err := inv.Int("n_rows")
			if err != nil {
				return errors.Trace(err)
			}
			schemaSQL, err := inv.String("schema_sql")
			if err != nil {
				return errors.Trace(err)
			}
			out, err := inv.Output("data_out")
			if err != nil {
				return errors.Trace(err)
			}
			opts, err := componentParquetOptions(cfg)
			if err != nil {
				return errors.Trace(err)
			}

			specs, err := tabular.SpecsFromDDL(schemaSQL)
			if err != nil {
				return errors.Trace(err)
			}

			w, err := out.Create(ctx)
			if err != nil {
				return errors.Trace(err)
			}
			if err := writer.WriteSynthetic(ctx, w, specs, nRows, dataset.DefaultSeed, opts); err != nil {
				//nolint: errcheck
				w.Close(ctx)
				return errors.Trace(err)
			}
			return errors.Trace(w.Close(ctx))
		},
	}
}
