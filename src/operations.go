package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"runtime"
	"strings"
	"time"

	"kfpComponents/src/component"
	"kfpComponents/src/config"
	"kfpComponents/src/dataset"
	"kfpComponents/src/runner"
	"kfpComponents/src/tasks"
	"kfpComponents/src/util"
	"kfpComponents/src/writer"

	"github.com/docker/go-units"
	"github.com/pingcap/errors"
	"github.com/pingcap/tidb/br/pkg/storage"
	"golang.org/x/sync/errgroup"
)

func componentByName(cfg *config.Config, name string) (*component.Component, error) {
	switch name {
	case "make_numeric_dataset":
		return component.MakeNumericDataset(cfg), nil
	case "make_tabular_dataset":
		return component.MakeTabularDataset(cfg), nil
	}
	return nil, errors.Errorf("unknown component: %s", name)
}

// RunComponent executes one component under the local runner and logs
// where its output artifacts were written.
func RunComponent(cfg *config.Config, name string, rows int, schemaPath string) error {
	c, err := componentByName(cfg, name)
	if err != nil {
		return errors.Trace(err)
	}

	if rows <= 0 {
		rows = cfg.Common.Rows
	}
	params := map[string]any{"n_rows": rows}
	if schemaPath != "" {
		sql, err := os.ReadFile(schemaPath)
		if err != nil {
			return errors.Annotatef(err, "failed to read schema file: %s", schemaPath)
		}
		params["schema_sql"] = string(sql)
	}

	r, err := runner.New(cfg)
	if err != nil {
		return errors.Trace(err)
	}
	defer r.Close()

	exec, err := r.Run(context.Background(), c, params)
	if err != nil {
		return errors.Trace(err)
	}

	log.Printf("Run %s finished", exec.RunID)
	for _, ds := range exec.Outputs {
		log.Printf("Output %s: %s", ds.Name, ds.URI)
	}
	return nil
}

// CreateFiles writes the configured number of numeric dataset files
// under the pipeline root. Each file is seeded from its file number so
// files differ from each other but reruns reproduce them exactly.
func CreateFiles(cfg *config.Config, threads int) error {
	start := time.Now()

	store, err := config.GetStore(cfg)
	if err != nil {
		return errors.Trace(err)
	}
	//nolint: errcheck
	defer store.Close()

	suffix := strings.ToLower(cfg.Common.FileFormat)
	var parquetOpts writer.ParquetOptions
	if suffix == "parquet" {
		parquetOpts, err = writer.ParquetFromConfig(cfg)
		if err != nil {
			return errors.Trace(err)
		}
	}

	progress := util.NewProgressLogger(cfg.Common.Files, "writing", time.Second)

	ctx := context.Background()
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(threads)

	for fileNo := 0; fileNo < cfg.Common.Files; fileNo++ {
		eg.Go(func() error {
			fileName := fmt.Sprintf("%s.%d.%s", cfg.Common.Prefix, fileNo, suffix)
			tbl := dataset.GenerateNumericSeeded(cfg.Common.Rows, dataset.DefaultSeed+int64(fileNo))

			w, err := store.Create(ctx, fileName, &storage.WriterOption{
				Concurrency: 8,
			})
			if err != nil {
				return errors.Annotatef(err, "failed to create file: %s", fileName)
			}
			cw := util.NewCountingWriter(w, progress)

			switch suffix {
			case "parquet":
				err = writer.WriteTable(ctx, cw, tbl, parquetOpts)
			case "csv":
				err = writer.WriteTableCSV(ctx, cw, tbl, cfg.CSV)
			}
			if err != nil {
				//nolint: errcheck
				cw.Close(ctx)
				return errors.Annotatef(err, "failed to write file: %s", fileName)
			}
			if err := cw.Close(ctx); err != nil {
				return errors.Annotatef(err, "failed to close file: %s", fileName)
			}

			progress.UpdateFiles(1)
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return errors.Trace(err)
	}

	files, bytes := progress.Snapshot()
	fmt.Printf("Wrote %d files (%s) in %s\n", files, units.BytesSize(float64(bytes)), time.Since(start))
	return nil
}

func ShowFiles(cfg *config.Config) error {
	store, err := config.GetStore(cfg)
	if err != nil {
		return errors.Trace(err)
	}
	//nolint: errcheck
	defer store.Close()

	return store.WalkDir(context.Background(), &storage.WalkOption{}, func(path string, size int64) error {
		log.Printf("Name: %s, Size: %s", path, units.BytesSize(float64(size)))
		return nil
	})
}

func DeleteAllFiles(cfg *config.Config) error {
	store, err := config.GetStore(cfg)
	if err != nil {
		return errors.Trace(err)
	}
	//nolint: errcheck
	defer store.Close()

	var fileNames []string
	err = store.WalkDir(context.Background(), &storage.WalkOption{}, func(path string, size int64) error {
		fileNames = append(fileNames, path)
		return nil
	})
	if err != nil {
		return errors.Trace(err)
	}

	var eg errgroup.Group
	eg.SetLimit(runtime.NumCPU())
	for _, fileName := range fileNames {
		eg.Go(func() error {
			return store.DeleteFile(context.Background(), fileName)
		})
	}

	return eg.Wait()
}

func RunTask(cfg *config.Config, session string) error {
	return tasks.Run(context.Background(), session, cfg)
}
