// Package tabular turns SQL table schemas into column specifications
// for synthetic dataset generation.
package tabular

import (
	"errors"
	"strconv"
	"strings"

	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/schema"
	"github.com/cznic/mathutil"
	"github.com/pingcap/tidb/pkg/ddl"
	"github.com/pingcap/tidb/pkg/meta/model"
	"github.com/pingcap/tidb/pkg/parser"
	"github.com/pingcap/tidb/pkg/parser/ast"
	"github.com/pingcap/tidb/pkg/parser/mysql"
	_ "github.com/pingcap/tidb/pkg/planner/core" // sets up expression.EvalSimpleAst in core_init
	"github.com/pingcap/tidb/pkg/types"

	_ "github.com/pingcap/tidb/pkg/util/collate"
	"github.com/pingcap/tidb/pkg/util/mock"
)

// validChar is the character set used for synthetic string values.
const validChar = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ_&*!.;<>?:-+()[]{}"

// ColumnSpec describes one synthetic dataset column.
type ColumnSpec struct {
	Name      string
	SQLType   string               // type in SQL, e.g. "double", "varchar"
	Type      parquet.Type         // physical parquet type
	Converted schema.ConvertedType // logical annotation for the parquet schema

	TypeLen int // bit width for integers, max byte length for strings
	MinLen  int // minimum length for string values

	NullPercent int     // percentage of NULL cells, 0..100
	Mean        float64 // distribution mean for numeric columns
	StdDev      float64 // distribution stddev; 0 means uniform for ints
	Signed      bool
}

// Clone returns a copy of the spec.
func (c *ColumnSpec) Clone() *ColumnSpec {
	clone := *c
	return &clone
}

// String returns a compact description of the spec, for logs.
func (c *ColumnSpec) String() string {
	var b strings.Builder
	b.WriteString("ColumnSpec{")
	b.WriteString("Name: " + c.Name)
	b.WriteString(", SQLType: " + c.SQLType)
	b.WriteString(", TypeLen: " + strconv.Itoa(c.TypeLen))
	if c.NullPercent > 0 {
		b.WriteString(", NullPercent: " + strconv.Itoa(c.NullPercent))
	}
	if c.Mean != 0 {
		b.WriteString(", Mean: " + strconv.FormatFloat(c.Mean, 'g', -1, 64))
	}
	if c.StdDev != 0 {
		b.WriteString(", StdDev: " + strconv.FormatFloat(c.StdDev, 'g', -1, 64))
	}
	b.WriteString("}")
	return b.String()
}

// defaultSpecs maps SQL column types to their baseline specs. Floating
// point columns default to a standard normal distribution, matching the
// numeric dataset components.
var defaultSpecs = map[byte]*ColumnSpec{
	mysql.TypeTiny: {
		SQLType:   "tinyint",
		Type:      parquet.Types.Int32,
		Converted: schema.ConvertedTypes.Int8,
		TypeLen:   8,
		Signed:    true,
	},
	mysql.TypeShort: {
		SQLType:   "smallint",
		Type:      parquet.Types.Int32,
		Converted: schema.ConvertedTypes.Int32,
		TypeLen:   16,
		Signed:    true,
	},
	mysql.TypeInt24: {
		SQLType:   "mediumint",
		Type:      parquet.Types.Int32,
		Converted: schema.ConvertedTypes.Int32,
		TypeLen:   24,
		Signed:    true,
	},
	mysql.TypeLong: {
		SQLType:   "int",
		Type:      parquet.Types.Int32,
		Converted: schema.ConvertedTypes.Int32,
		TypeLen:   32,
		Signed:    true,
	},
	mysql.TypeLonglong: {
		SQLType:   "bigint",
		Type:      parquet.Types.Int64,
		Converted: schema.ConvertedTypes.None,
		TypeLen:   64,
		Signed:    true,
	},
	mysql.TypeFloat: {
		SQLType:   "float",
		Type:      parquet.Types.Float,
		Converted: schema.ConvertedTypes.None,
		TypeLen:   32,
		StdDev:    1,
	},
	mysql.TypeDouble: {
		SQLType:   "double",
		Type:      parquet.Types.Double,
		Converted: schema.ConvertedTypes.None,
		TypeLen:   64,
		StdDev:    1,
	},
	mysql.TypeVarchar: {
		SQLType:   "varchar",
		Type:      parquet.Types.ByteArray,
		Converted: schema.ConvertedTypes.None,
		TypeLen:   64,
	},
	mysql.TypeString: {
		SQLType:   "char",
		Type:      parquet.Types.ByteArray,
		Converted: schema.ConvertedTypes.None,
		TypeLen:   64,
	},
	mysql.TypeVarString: {
		SQLType:   "char",
		Type:      parquet.Types.ByteArray,
		Converted: schema.ConvertedTypes.None,
		TypeLen:   64,
	},
	mysql.TypeBlob: {
		SQLType:   "char",
		Type:      parquet.Types.ByteArray,
		Converted: schema.ConvertedTypes.None,
		TypeLen:   64,
	},
	mysql.TypeTimestamp: {
		SQLType:   "timestamp",
		Type:      parquet.Types.Int64,
		Converted: schema.ConvertedTypes.TimestampMicros,
	},
	mysql.TypeDatetime: {
		SQLType:   "datetime",
		Type:      parquet.Types.Int64,
		Converted: schema.ConvertedTypes.TimestampMicros,
	},
	mysql.TypeDate: {
		SQLType:   "date",
		Type:      parquet.Types.Int32,
		Converted: schema.ConvertedTypes.Date,
	},
}

// parseComment applies comment-driven options to the spec. Options are
// "key=value" pairs separated by commas, e.g.
// `double comment 'mean=5, stddev=2, null_percent=10'`.
func (c *ColumnSpec) parseComment(comment string) error {
	comment = strings.ReplaceAll(comment, " ", "")
	if comment == "" {
		return nil
	}

	for _, opt := range strings.Split(comment, ",") {
		s := strings.SplitN(opt, "=", 2)
		if len(s) != 2 {
			return errors.New("malformed comment option: " + opt)
		}
		k, v := s[0], s[1]
		switch k {
		case "null_percent":
			pct, err := strconv.Atoi(v)
			if err != nil {
				return errors.New("invalid null_percent for column " + c.Name + ": " + v)
			}
			c.NullPercent = mathutil.Clamp(pct, 0, 100)
		case "max_length":
			length, err := strconv.Atoi(v)
			if err != nil || length <= 0 {
				return errors.New("invalid max_length for column " + c.Name + ": " + v)
			}
			c.TypeLen = length
		case "min_length":
			length, err := strconv.Atoi(v)
			if err != nil || length < 0 {
				return errors.New("invalid min_length for column " + c.Name + ": " + v)
			}
			c.MinLen = length
		case "mean":
			mean, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return errors.New("invalid mean for column " + c.Name + ": " + v)
			}
			c.Mean = mean
		case "stddev":
			stddev, err := strconv.ParseFloat(v, 64)
			if err != nil || stddev < 0 {
				return errors.New("invalid stddev for column " + c.Name + ": " + v)
			}
			c.StdDev = stddev
		default:
			return errors.New("unknown comment option for column " + c.Name + ": " + k)
		}
	}
	return nil
}

func tableInfoFromDDL(createTableSQL string) (*model.TableInfo, error) {
	p := parser.New()
	p.SetSQLMode(mysql.ModeANSIQuotes)

	stmt, err := p.ParseOneStmt(createTableSQL, "", "")
	if err != nil {
		return nil, err
	}

	s, ok := stmt.(*ast.CreateTableStmt)
	if !ok {
		return nil, errors.New("not a CREATE TABLE statement")
	}

	metaBuildCtx := ddl.NewMetaBuildContextWithSctx(mock.NewContext())
	return ddl.BuildTableInfoWithStmt(metaBuildCtx, s, mysql.DefaultCharset, "", nil)
}

// SpecsFromDDL parses a CREATE TABLE statement into column specs, one
// per column, in declaration order.
func SpecsFromDDL(createTableSQL string) ([]*ColumnSpec, error) {
	tbInfo, err := tableInfoFromDDL(createTableSQL)
	if err != nil {
		return nil, err
	}

	specs := make([]*ColumnSpec, 0, len(tbInfo.Columns))
	for _, col := range tbInfo.Columns {
		spec, ok := defaultSpecs[col.GetType()]
		if !ok {
			return nil, errors.New("unsupported column type for column: " + col.Name.L)
		}
		spec = spec.Clone()
		spec.Name = col.Name.L

		if !types.IsTypeNumeric(col.GetType()) && col.GetFlen() > 0 {
			spec.TypeLen = min(col.GetFlen(), 64)
		}
		if col.Comment != "" {
			if err := spec.parseComment(col.Comment); err != nil {
				return nil, err
			}
		}

		if spec.Type == parquet.Types.ByteArray {
			if spec.MinLen == 0 {
				spec.MinLen = int(float64(spec.TypeLen) * 0.75)
			}
			spec.MinLen = min(spec.TypeLen, spec.MinLen)
		}

		specs = append(specs, spec)
	}

	return specs, nil
}
