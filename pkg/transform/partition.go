package transform

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/twmb/murmur3"

	"github.com/fieldry/fieldry/pkg/dates"
)

// Partition transforms derive a human-readable path value from a row field,
// producing Hive-style directory segments such as "dt=2024-12-19".

// PartitionTransform defines how to transform a source field into a partition value.
type PartitionTransform string

// Use value as-is - TransformIdentity
// Hash into N buckets - TransformBucket
// Truncate to width W - TransformTruncate
// For example: a configuration like this
//
//	{
//	   "partitions": [
//	     {"field": "created_at", "transform": "day", "name": "dt"},
//	     {"field": "user_id", "transform": "bucket", "param": 16, "name": "user_bucket"}
//	   ]
//	 }
//
// Results in paths like:
//
//	data/dt=2024-12-31/user_bucket=7/file.parquet
const (
	TransformIdentity PartitionTransform = "identity"
	TransformBucket   PartitionTransform = "bucket"
	TransformTruncate PartitionTransform = "truncate"
	TransformYear     PartitionTransform = "year"
	TransformMonth    PartitionTransform = "month"
	TransformDay      PartitionTransform = "day"
	TransformHour     PartitionTransform = "hour"
	TransformVoid     PartitionTransform = "void"
)

// ApplyTransform applies a partition transform to a value and returns the
// path value. Void, and temporal transforms over non-temporal values,
// return "".
func ApplyTransform(value any, transform PartitionTransform, param int) string {
	switch transform {
	case TransformIdentity:
		return fmt.Sprintf("%v", value)
	case TransformBucket:
		return applyBucket(value, param)
	case TransformTruncate:
		return applyTruncate(value, param)
	case TransformYear:
		return applyTemporal(value, "2006")
	case TransformMonth:
		return applyTemporal(value, "2006-01")
	case TransformDay:
		return applyTemporal(value, "2006-01-02")
	case TransformHour:
		return applyTemporal(value, "2006-01-02-15")
	case TransformVoid:
		return ""
	default:
		// Unknown transform, use identity
		return fmt.Sprintf("%v", value)
	}
}

// applyBucket hashes the value into a bucket number (0 to N-1) using
// Murmur3 x86 32-bit with seed 0:
//
//	bucket_N(x) = (murmur3_x86_32_hash(x) & Integer.MAX_VALUE) % N
func applyBucket(value any, numBuckets int) string {
	if numBuckets <= 0 {
		numBuckets = 1
	}

	hash := bucketHash(value)
	bucket := int(hash&0x7FFFFFFF) % numBuckets

	return fmt.Sprintf("%d", bucket)
}

// bucketHash computes the 32-bit bucket hash for a value. Integers widen to
// int64 and floats to float64 before hashing, so a promoted column type
// keeps its bucket assignments.
func bucketHash(value any) uint32 {
	switch v := value.(type) {
	case int:
		return hashLong(int64(v))
	case int32:
		return hashLong(int64(v))
	case int64:
		return hashLong(v)
	case uint32:
		return hashLong(int64(v))
	case uint64:
		return hashLong(int64(v))
	case string:
		return murmur3.StringSum32(v)
	case []byte:
		return murmur3.Sum32(v)
	case time.Time:
		// hash as microseconds from Unix epoch
		return hashLong(v.UnixMicro())
	case float32:
		return hashDouble(float64(v))
	case float64:
		return hashDouble(v)
	case bool:
		if v {
			return hashLong(1)
		}
		return hashLong(0)
	default:
		return murmur3.StringSum32(fmt.Sprintf("%v", value))
	}
}

// hashLong hashes a 64-bit integer using little-endian byte representation.
func hashLong(v int64) uint32 {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(v))
	return murmur3.Sum32(buf[:])
}

// hashDouble hashes a double using its IEEE 754 bit representation.
// NaN patterns canonicalize to 0x7ff8000000000000 and negative zero to
// positive zero, so equal values always land in the same bucket.
func hashDouble(v float64) uint32 {
	var bits uint64
	switch {
	case math.IsNaN(v):
		bits = 0x7ff8000000000000
	case v == 0:
		bits = 0
	default:
		bits = math.Float64bits(v)
	}
	return hashLong(int64(bits))
}

// floorDiv performs floor division. Integer truncation bins must grow
// toward negative infinity: floorDiv(-999, 100) = -10, where Go's -999/100
// yields -9.
func floorDiv(a, b int64) int64 {
	q := a / b
	// signs differ with a remainder, adjust toward negative infinity
	if (a^b) < 0 && a%b != 0 {
		q--
	}
	return q
}

// applyTruncate truncates strings to width W (in characters), or integers
// to bins of width W. String truncation is character-based, not byte-based.
func applyTruncate(value any, width int) string {
	if width <= 0 {
		width = 1
	}

	switch v := value.(type) {
	case string:
		return truncateRunes(v, width)
	case int:
		w := int64(width)
		return fmt.Sprintf("%d", floorDiv(int64(v), w)*w)
	case int32:
		w := int64(width)
		return fmt.Sprintf("%d", floorDiv(int64(v), w)*w)
	case int64:
		w := int64(width)
		return fmt.Sprintf("%d", floorDiv(v, w)*w)
	default:
		return truncateRunes(fmt.Sprintf("%v", value), width)
	}
}

func truncateRunes(s string, width int) string {
	runes := []rune(s)
	if len(runes) > width {
		return string(runes[:width])
	}
	return s
}

// applyTemporal renders the value's timestamp with the given Go layout,
// or "" when the value carries no recognizable timestamp.
func applyTemporal(value any, layout string) string {
	t := toTime(value)
	if t.IsZero() {
		return ""
	}
	return t.Format(layout)
}

// pathParser parses timestamp strings for temporal transforms. A nil result
// location keeps parsed instants as-is (UTC for offsetless input).
var pathParser = dates.NewParser(dates.WithResultLocation(nil))

// toTime converts timestamp representations to time.Time in UTC.
// For integers the unit is detected by magnitude:
//   - < 1e11: seconds (covers dates up to year ~5138)
//   - 1e11 to 1e14: milliseconds
//   - >= 1e14: microseconds
func toTime(value any) time.Time {
	switch v := value.(type) {
	case time.Time:
		return v.UTC()
	case int64:
		return intToTime(v).UTC()
	case int:
		return intToTime(int64(v)).UTC()
	case float64:
		// Seconds since epoch with a fractional part. Floor handles
		// negative values correctly; some clients emit floats for time.
		sec := int64(math.Floor(v))
		nsec := int64((v - math.Floor(v)) * 1e9)
		return time.Unix(sec, nsec).UTC()
	case string:
		if t, ok := pathParser.Parse(v); ok {
			return t.UTC()
		}
		return time.Time{}
	default:
		return time.Time{}
	}
}

// intToTime converts an integer timestamp using magnitude-based unit
// detection. Year 2024 is ~1.7e9 seconds, ~1.7e12 milliseconds, and
// ~1.7e15 microseconds; the thresholds sit well clear of all three.
func intToTime(v int64) time.Time {
	// dates before 1970
	if v < 0 {
		return time.Unix(v, 0)
	}

	const (
		maxSeconds      = int64(1e11) - 1
		maxMilliseconds = int64(1e14) - 1
	)

	switch {
	case v <= maxSeconds:
		return time.Unix(v, 0)
	case v <= maxMilliseconds:
		return time.UnixMilli(v)
	default:
		return time.UnixMicro(v)
	}
}

// escapePartitionValue escapes special characters in partition values for
// Hive-style paths. Characters that need escaping: / = % and the common
// control characters. This follows Hive's escaping convention.
func escapePartitionValue(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	for _, r := range s {
		switch r {
		case '/':
			b.WriteString("%2F")
		case '=':
			b.WriteString("%3D")
		case '%':
			b.WriteString("%25")
		case '\n':
			b.WriteString("%0A")
		case '\r':
			b.WriteString("%0D")
		case '\t':
			b.WriteString("%09")
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// BuildPartitionPath builds a Hive-style partition path from the partition
// spec and a row. Example: "dt=2024-12-19/region=us-west".
func BuildPartitionPath(partitions []CompiledPartition, row []any) string {
	if len(partitions) == 0 || len(row) == 0 {
		return ""
	}

	var parts []string
	for _, pf := range partitions {
		if pf.FieldIndex >= len(row) {
			continue
		}

		if pf.Transform == TransformVoid {
			continue
		}

		value := ApplyTransform(row[pf.FieldIndex], pf.Transform, pf.Param)
		if value != "" {
			parts = append(parts, fmt.Sprintf("%s=%s", pf.Name, escapePartitionValue(value)))
		}
	}

	if len(parts) == 0 {
		return ""
	}

	return strings.Join(parts, "/")
}
