package writer

import (
	"context"
	"strconv"

	"github.com/docker/go-units"
	"github.com/pingcap/errors"
	"github.com/pingcap/tidb/br/pkg/storage"

	"kfpComponents/src/config"
	"kfpComponents/src/dataset"
)

const (
	defaultCSVSeparator = ","
	defaultCSVEndLine   = "\n"
)

func csvSeparatorAndEndline(cfg config.CSVConfig) (string, string) {
	separator := cfg.Separator
	if separator == "" {
		separator = defaultCSVSeparator
	}
	endline := cfg.EndLine
	if endline == "" {
		endline = defaultCSVEndLine
	}
	return separator, endline
}

func appendCSVRow(buf []byte, fields []string, separator, endline []byte) []byte {
	for i, field := range fields {
		if i > 0 {
			buf = append(buf, separator...)
		}
		buf = append(buf, field...)
	}
	return append(buf, endline...)
}

// WriteTableCSV writes an in-memory table as CSV with a header row of
// column names.
func WriteTableCSV(ctx context.Context, w storage.ExternalFileWriter, tbl *dataset.Table, cfg config.CSVConfig) error {
	separator, endline := csvSeparatorAndEndline(cfg)
	separatorBytes, endlineBytes := []byte(separator), []byte(endline)

	buffer := make([]byte, 0, 64*units.KiB)
	buffer = appendCSVRow(buffer, tbl.Names, separatorBytes, endlineBytes)
	if _, err := w.Write(ctx, buffer); err != nil {
		return errors.Trace(err)
	}

	fields := make([]string, tbl.NumCols())
	for row := 0; row < tbl.NumRows(); row++ {
		for col := range tbl.Columns {
			fields[col] = strconv.FormatFloat(tbl.Columns[col][row], 'g', -1, 64)
		}
		buffer = appendCSVRow(buffer[:0], fields, separatorBytes, endlineBytes)
		if _, err := w.Write(ctx, buffer); err != nil {
			return errors.Trace(err)
		}
	}

	return nil
}
