package tabular

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/apache/arrow-go/v18/parquet"
)

// fiftyYearsMicros bounds synthetic timestamps to [epoch, epoch+50y).
const fiftyYearsMicros = 1576800000000000

func (c *ColumnSpec) fillBatchNull(length int, rng *rand.Rand) []bool {
	randomBytes := make([]byte, length)
	rng.Read(randomBytes)

	null := make([]bool, length)
	for i := range length {
		null[i] = int(randomBytes[i])*100 < c.NullPercent*256
	}
	return null
}

// normal draws from the column's configured normal distribution.
func (c *ColumnSpec) normal(rng *rand.Rand) float64 {
	return rng.NormFloat64()*c.StdDev + c.Mean
}

func (c *ColumnSpec) intRange() (lower, upper int64) {
	if c.TypeLen >= 64 {
		return math.MinInt64, math.MaxInt64
	}
	upper = 1<<c.TypeLen - 1
	if c.Signed {
		lower = -(1 << (c.TypeLen - 1))
		upper -= 1 << (c.TypeLen - 1)
	}
	return lower, upper
}

// generateInt draws a synthetic integer: gaussian around Mean when a
// stddev is configured, uniform over the type's range otherwise. The
// result is clamped to the column's bit width.
func (c *ColumnSpec) generateInt(rng *rand.Rand) int64 {
	lower, upper := c.intRange()

	if c.StdDev > 0 {
		v := int64(math.Round(c.normal(rng)))
		if v > upper {
			v = upper
		} else if v < lower {
			v = lower
		}
		return v
	}

	if c.TypeLen >= 64 {
		return int64(rng.Uint64())
	}
	return lower + rng.Int63n(upper-lower+1)
}

func (c *ColumnSpec) fillInt64(out []int64, defLevel []int16, rng *rand.Rand) {
	nullMap := c.fillBatchNull(len(out), rng)
	for i := range out {
		if nullMap[i] {
			defLevel[i] = 0
		} else {
			defLevel[i] = 1
			out[i] = c.generateInt(rng)
		}
	}
}

func (c *ColumnSpec) fillInt32(out []int32, defLevel []int16, rng *rand.Rand) {
	nullMap := c.fillBatchNull(len(out), rng)
	for i := range out {
		if nullMap[i] {
			defLevel[i] = 0
		} else {
			defLevel[i] = 1
			out[i] = int32(c.generateInt(rng))
		}
	}
}

func (c *ColumnSpec) fillFloat64(out []float64, defLevel []int16, rng *rand.Rand) {
	nullMap := c.fillBatchNull(len(out), rng)
	for i := range out {
		if nullMap[i] {
			defLevel[i] = 0
		} else {
			defLevel[i] = 1
			out[i] = c.normal(rng)
		}
	}
}

func (c *ColumnSpec) fillFloat32(out []float32, defLevel []int16, rng *rand.Rand) {
	nullMap := c.fillBatchNull(len(out), rng)
	for i := range out {
		if nullMap[i] {
			defLevel[i] = 0
		} else {
			defLevel[i] = 1
			out[i] = float32(c.normal(rng))
		}
	}
}

func (c *ColumnSpec) fillString(out []parquet.ByteArray, defLevel []int16, rng *rand.Rand) {
	nullMap := c.fillBatchNull(len(out), rng)

	lower := c.MinLen
	upper := c.TypeLen
	slen := rng.Intn(upper-lower+1) + lower

	buf := make([]byte, slen*len(out))
	rng.Read(buf)
	for i := range buf {
		buf[i] = validChar[int(buf[i])%len(validChar)]
	}

	for i := range out {
		if nullMap[i] {
			defLevel[i] = 0
		} else {
			defLevel[i] = 1
			out[i] = buf[i*slen : (i+1)*slen]
		}
	}
}

func (c *ColumnSpec) fillTimestamp(out []int64, defLevel []int16, rng *rand.Rand) {
	nullMap := c.fillBatchNull(len(out), rng)
	for i := range out {
		if nullMap[i] {
			defLevel[i] = 0
		} else {
			defLevel[i] = 1
			out[i] = rng.Int63n(fiftyYearsMicros)
		}
	}
}

func (c *ColumnSpec) fillDate(out []int32, defLevel []int16, rng *rand.Rand) {
	nullMap := c.fillBatchNull(len(out), rng)
	for i := range out {
		if nullMap[i] {
			defLevel[i] = 0
		} else {
			defLevel[i] = 1
			out[i] = rng.Int31() & 16383
		}
	}
}

// MakeBuffer allocates a value buffer of the column's physical type.
func (c *ColumnSpec) MakeBuffer(length int) (any, error) {
	switch c.Type {
	case parquet.Types.Int32:
		return make([]int32, length), nil
	case parquet.Types.Int64:
		return make([]int64, length), nil
	case parquet.Types.Float:
		return make([]float32, length), nil
	case parquet.Types.Double:
		return make([]float64, length), nil
	case parquet.Types.ByteArray:
		return make([]parquet.ByteArray, length), nil
	default:
		return nil, fmt.Errorf("unsupported parquet type: %v", c.Type)
	}
}

// FillBatch populates the value buffer and definition levels with one
// batch of synthetic values. The buffer must come from MakeBuffer.
func (c *ColumnSpec) FillBatch(valueBuffer any, defLevel []int16, rng *rand.Rand) error {
	switch c.SQLType {
	case "bigint":
		buf, ok := valueBuffer.([]int64)
		if !ok {
			return fmt.Errorf("unexpected buffer type for bigint: %T", valueBuffer)
		}
		c.fillInt64(buf, defLevel, rng)
	case "int", "mediumint", "smallint", "tinyint":
		buf, ok := valueBuffer.([]int32)
		if !ok {
			return fmt.Errorf("unexpected buffer type for int: %T", valueBuffer)
		}
		c.fillInt32(buf, defLevel, rng)
	case "double":
		buf, ok := valueBuffer.([]float64)
		if !ok {
			return fmt.Errorf("unexpected buffer type for double: %T", valueBuffer)
		}
		c.fillFloat64(buf, defLevel, rng)
	case "float":
		buf, ok := valueBuffer.([]float32)
		if !ok {
			return fmt.Errorf("unexpected buffer type for float: %T", valueBuffer)
		}
		c.fillFloat32(buf, defLevel, rng)
	case "varchar", "char":
		buf, ok := valueBuffer.([]parquet.ByteArray)
		if !ok {
			return fmt.Errorf("unexpected buffer type for string: %T", valueBuffer)
		}
		c.fillString(buf, defLevel, rng)
	case "timestamp", "datetime":
		buf, ok := valueBuffer.([]int64)
		if !ok {
			return fmt.Errorf("unexpected buffer type for timestamp: %T", valueBuffer)
		}
		c.fillTimestamp(buf, defLevel, rng)
	case "date":
		buf, ok := valueBuffer.([]int32)
		if !ok {
			return fmt.Errorf("unexpected buffer type for date: %T", valueBuffer)
		}
		c.fillDate(buf, defLevel, rng)
	default:
		return fmt.Errorf("unsupported column type: %s", c.SQLType)
	}

	return nil
}
