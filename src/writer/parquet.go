// Package writer serializes tables and synthetic column batches to
// Parquet and CSV through external storage.
package writer

import (
	"context"
	"math/rand"
	"strings"

	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/file"
	"github.com/apache/arrow-go/v18/parquet/schema"
	"github.com/docker/go-units"
	"github.com/pingcap/errors"
	"github.com/pingcap/tidb/br/pkg/storage"

	"kfpComponents/src/config"
	"kfpComponents/src/dataset"
	"kfpComponents/src/tabular"
)

// batchSize is the number of rows filled per synthetic column batch.
const batchSize = 1024

const defaultPageSize = units.MiB

// ParquetOptions controls the shape of written parquet files.
type ParquetOptions struct {
	RowGroups   int
	PageSize    int64
	Compression compress.Compression
}

func (o ParquetOptions) normalized() ParquetOptions {
	if o.RowGroups <= 0 {
		o.RowGroups = 1
	}
	if o.PageSize <= 0 {
		o.PageSize = defaultPageSize
	}
	return o
}

// ParquetFromConfig resolves parquet options from the configuration.
func ParquetFromConfig(cfg *config.Config) (ParquetOptions, error) {
	codec, err := CompressionCodec(cfg.Parquet.Compression)
	if err != nil {
		return ParquetOptions{}, err
	}
	return ParquetOptions{
		RowGroups:   cfg.Parquet.NumRowGroups,
		PageSize:    cfg.Parquet.PageSizeBytes,
		Compression: codec,
	}, nil
}

// CompressionCodec maps a codec name to the parquet compression codec.
func CompressionCodec(name string) (compress.Compression, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "snappy":
		return compress.Codecs.Snappy, nil
	case "zstd":
		return compress.Codecs.Zstd, nil
	case "gzip":
		return compress.Codecs.Gzip, nil
	case "brotli":
		return compress.Codecs.Brotli, nil
	case "lz4_raw", "lz4":
		return compress.Codecs.Lz4Raw, nil
	case "uncompressed", "none", "":
		return compress.Codecs.Uncompressed, nil
	default:
		return compress.Codecs.Uncompressed, errors.Errorf("unsupported parquet compression: %q", name)
	}
}

// externalWriter adapts a storage.ExternalFileWriter to the io.Writer
// the parquet writer expects. Seek and Read are stubs: the writer only
// appends.
type externalWriter struct {
	ctx context.Context
	w   storage.ExternalFileWriter
}

func (ew *externalWriter) Write(b []byte) (int, error) {
	return ew.w.Write(ew.ctx, b)
}

func (ew *externalWriter) Seek(offset int64, whence int) (int64, error) {
	return 0, nil
}

func (ew *externalWriter) Read(b []byte) (int, error) {
	return 0, nil
}

func (ew *externalWriter) Close() error {
	return nil
}

func writerProperties(names []string, opts ParquetOptions) []parquet.WriterProperty {
	props := []parquet.WriterProperty{
		parquet.WithDataPageSize(opts.PageSize),
		parquet.WithDataPageVersion(parquet.DataPageV2),
		parquet.WithVersion(parquet.V2_LATEST),
	}
	for _, name := range names {
		props = append(props,
			parquet.WithDictionaryFor(name, true),
			parquet.WithCompressionFor(name, opts.Compression),
		)
	}
	return props
}

// WriteTable writes an in-memory table as a parquet file. Output is
// deterministic: the same table and options always produce identical
// bytes.
func WriteTable(ctx context.Context, w storage.ExternalFileWriter, tbl *dataset.Table, opts ParquetOptions) error {
	opts = opts.normalized()

	nRows := tbl.NumRows()
	if nRows%opts.RowGroups != 0 {
		return errors.Errorf("row count %d is not divisible by row groups %d", nRows, opts.RowGroups)
	}

	fields := make([]schema.Node, tbl.NumCols())
	for i, name := range tbl.Names {
		var err error
		fields[i], err = schema.NewPrimitiveNodeConverted(
			name,
			parquet.Repetitions.Optional,
			parquet.Types.Double, schema.ConvertedTypes.None,
			0, 0, 0,
			-1,
		)
		if err != nil {
			return errors.Trace(err)
		}
	}

	node, err := schema.NewGroupNode("schema", parquet.Repetitions.Required, fields, -1)
	if err != nil {
		return errors.Trace(err)
	}

	props := writerProperties(tbl.Names, opts)
	pw := file.NewParquetWriter(
		&externalWriter{ctx: ctx, w: w},
		node,
		file.WithWriterProps(parquet.NewWriterProperties(props...)),
	)

	if nRows > 0 {
		rowsPerGroup := nRows / opts.RowGroups
		defLevels := make([]int16, rowsPerGroup)
		for i := range defLevels {
			defLevels[i] = 1
		}

		for g := 0; g < opts.RowGroups; g++ {
			rgw := pw.AppendRowGroup()
			for col := range tbl.Columns {
				cw, err := rgw.NextColumn()
				if err != nil {
					return errors.Trace(err)
				}
				fw, ok := cw.(*file.Float64ColumnChunkWriter)
				if !ok {
					return errors.Errorf("unexpected column writer type: %T", cw)
				}
				values := tbl.Columns[col][g*rowsPerGroup : (g+1)*rowsPerGroup]
				if _, err := fw.WriteBatch(values, defLevels, nil); err != nil {
					return errors.Trace(err)
				}
				if err := cw.Close(); err != nil {
					return errors.Trace(err)
				}
			}
			if err := rgw.Close(); err != nil {
				return errors.Trace(err)
			}
		}
	}

	return errors.Trace(pw.Close())
}

// WriteSynthetic writes nRows of synthetic data for the given column
// specs as a parquet file. Generation is deterministic for a fixed
// (specs, nRows, seed) triple: columns are filled one after another
// from a single random stream seeded once per file.
func WriteSynthetic(
	ctx context.Context,
	w storage.ExternalFileWriter,
	specs []*tabular.ColumnSpec,
	nRows int,
	seed int64,
	opts ParquetOptions,
) error {
	opts = opts.normalized()

	if nRows%opts.RowGroups != 0 {
		return errors.Errorf("row count %d is not divisible by row groups %d", nRows, opts.RowGroups)
	}

	fields := make([]schema.Node, len(specs))
	names := make([]string, len(specs))
	for i, spec := range specs {
		var err error
		fields[i], err = schema.NewPrimitiveNodeConverted(
			spec.Name,
			parquet.Repetitions.Optional,
			spec.Type, spec.Converted,
			spec.TypeLen, 0, 0,
			-1,
		)
		if err != nil {
			return errors.Trace(err)
		}
		names[i] = spec.Name
	}

	node, err := schema.NewGroupNode("schema", parquet.Repetitions.Required, fields, -1)
	if err != nil {
		return errors.Trace(err)
	}

	props := writerProperties(names, opts)
	pw := file.NewParquetWriter(
		&externalWriter{ctx: ctx, w: w},
		node,
		file.WithWriterProps(parquet.NewWriterProperties(props...)),
	)

	rng := rand.New(rand.NewSource(seed))

	if nRows > 0 {
		rowsPerGroup := nRows / opts.RowGroups
		for g := 0; g < opts.RowGroups; g++ {
			rgw := pw.AppendRowGroup()
			for _, spec := range specs {
				cw, err := rgw.NextColumn()
				if err != nil {
					return errors.Trace(err)
				}
				if err := writeSyntheticColumn(cw, spec, rowsPerGroup, rng); err != nil {
					return errors.Trace(err)
				}
				if err := cw.Close(); err != nil {
					return errors.Trace(err)
				}
			}
			if err := rgw.Close(); err != nil {
				return errors.Trace(err)
			}
		}
	}

	return errors.Trace(pw.Close())
}

func writeSyntheticColumn(cw file.ColumnChunkWriter, spec *tabular.ColumnSpec, rows int, rng *rand.Rand) error {
	for written := 0; written < rows; {
		n := min(batchSize, rows-written)

		buf, err := spec.MakeBuffer(n)
		if err != nil {
			return err
		}
		defLevels := make([]int16, n)
		if err := spec.FillBatch(buf, defLevels, rng); err != nil {
			return err
		}
		if err := writeColumnBatch(cw, buf, defLevels); err != nil {
			return err
		}

		written += n
	}
	return nil
}

func writeColumnBatch(cw file.ColumnChunkWriter, buf any, defLevels []int16) error {
	var err error
	switch w := cw.(type) {
	case *file.Int32ColumnChunkWriter:
		_, err = w.WriteBatch(buf.([]int32), defLevels, nil)
	case *file.Int64ColumnChunkWriter:
		_, err = w.WriteBatch(buf.([]int64), defLevels, nil)
	case *file.Float32ColumnChunkWriter:
		_, err = w.WriteBatch(buf.([]float32), defLevels, nil)
	case *file.Float64ColumnChunkWriter:
		_, err = w.WriteBatch(buf.([]float64), defLevels, nil)
	case *file.ByteArrayColumnChunkWriter:
		_, err = w.WriteBatch(buf.([]parquet.ByteArray), defLevels, nil)
	default:
		return errors.Errorf("unsupported parquet column writer: %T", cw)
	}
	return err
}

// ReadTable reads a parquet file of float64 columns back into an
// in-memory table. Used by tests and inspection tooling; the file must
// come from WriteTable or an equivalent all-double writer.
func ReadTable(path string) (*dataset.Table, error) {
	rdr, err := file.OpenParquetFile(path, false)
	if err != nil {
		return nil, errors.Trace(err)
	}
	//nolint: errcheck
	defer rdr.Close()

	sc := rdr.MetaData().Schema
	numCols := sc.NumColumns()

	names := make([]string, numCols)
	for i := range names {
		names[i] = sc.Column(i).Name()
	}

	cols := make([][]float64, numCols)
	for i := range cols {
		cols[i] = []float64{}
	}

	for g := 0; g < rdr.NumRowGroups(); g++ {
		rgr := rdr.RowGroup(g)
		rows := rgr.NumRows()

		for i := 0; i < numCols; i++ {
			ccr, err := rgr.Column(i)
			if err != nil {
				return nil, errors.Trace(err)
			}
			fr, ok := ccr.(*file.Float64ColumnChunkReader)
			if !ok {
				return nil, errors.Errorf("column %q is not a double column", names[i])
			}

			values := make([]float64, rows)
			defLevels := make([]int16, rows)
			_, read, err := fr.ReadBatch(rows, values, defLevels, nil)
			if err != nil {
				return nil, errors.Trace(err)
			}
			cols[i] = append(cols[i], values[:read]...)
		}
	}

	return &dataset.Table{Names: names, Columns: cols}, nil
}
