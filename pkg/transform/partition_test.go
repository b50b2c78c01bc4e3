package transform

import (
	"strconv"
	"testing"
	"time"
)

func TestApplyTransform_Identity(t *testing.T) {
	if got := ApplyTransform("us-west", TransformIdentity, 0); got != "us-west" {
		t.Errorf("identity string: got %q", got)
	}
	if got := ApplyTransform(42, TransformIdentity, 0); got != "42" {
		t.Errorf("identity int: got %q", got)
	}
}

func TestApplyTransform_Temporal(t *testing.T) {
	ts := time.Date(2024, 12, 19, 10, 30, 0, 0, time.UTC)

	tests := []struct {
		transform PartitionTransform
		want      string
	}{
		{TransformYear, "2024"},
		{TransformMonth, "2024-12"},
		{TransformDay, "2024-12-19"},
		{TransformHour, "2024-12-19-10"},
	}

	for _, tt := range tests {
		t.Run(string(tt.transform), func(t *testing.T) {
			if got := ApplyTransform(ts, tt.transform, 0); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestApplyTransform_TemporalFromEpoch(t *testing.T) {
	// 2024-12-19T00:00:00Z
	const epochSeconds = int64(1734480000)

	if got := ApplyTransform(epochSeconds, TransformDay, 0); got != "2024-12-19" {
		t.Errorf("seconds: got %q", got)
	}
	if got := ApplyTransform(epochSeconds*1000, TransformDay, 0); got != "2024-12-19" {
		t.Errorf("milliseconds: got %q", got)
	}
	if got := ApplyTransform(epochSeconds*1000000, TransformDay, 0); got != "2024-12-19" {
		t.Errorf("microseconds: got %q", got)
	}
}

func TestApplyTransform_TemporalFromString(t *testing.T) {
	if got := ApplyTransform("2024-12-19 10:30:00", TransformDay, 0); got != "2024-12-19" {
		t.Errorf("datetime string: got %q", got)
	}
	if got := ApplyTransform("not a timestamp", TransformDay, 0); got != "" {
		t.Errorf("garbage string should yield empty, got %q", got)
	}
}

func TestApplyTransform_Bucket(t *testing.T) {
	const buckets = 16

	first := ApplyTransform("user-123", TransformBucket, buckets)
	second := ApplyTransform("user-123", TransformBucket, buckets)
	if first != second {
		t.Errorf("bucket not deterministic: %q vs %q", first, second)
	}

	n, err := strconv.Atoi(first)
	if err != nil {
		t.Fatalf("bucket value not numeric: %q", first)
	}
	if n < 0 || n >= buckets {
		t.Errorf("bucket %d out of range [0,%d)", n, buckets)
	}

	// int and int64 of the same value must land in the same bucket
	a := ApplyTransform(12345, TransformBucket, buckets)
	b := ApplyTransform(int64(12345), TransformBucket, buckets)
	if a != b {
		t.Errorf("int/int64 bucket mismatch: %q vs %q", a, b)
	}

	// float32 and float64 of the same value must land in the same bucket
	fa := ApplyTransform(float32(1.5), TransformBucket, buckets)
	fb := ApplyTransform(float64(1.5), TransformBucket, buckets)
	if fa != fb {
		t.Errorf("float bucket mismatch: %q vs %q", fa, fb)
	}
}

func TestApplyTransform_Truncate(t *testing.T) {
	if got := ApplyTransform("abcdefgh", TransformTruncate, 3); got != "abc" {
		t.Errorf("string truncate: got %q", got)
	}
	// character-based, not byte-based
	if got := ApplyTransform("héllo", TransformTruncate, 2); got != "hé" {
		t.Errorf("unicode truncate: got %q", got)
	}
	if got := ApplyTransform(1234, TransformTruncate, 100); got != "1200" {
		t.Errorf("int truncate: got %q", got)
	}
	// floor division toward negative infinity
	if got := ApplyTransform(-999, TransformTruncate, 100); got != "-1000" {
		t.Errorf("negative int truncate: got %q", got)
	}
	if got := ApplyTransform(int64(-1), TransformTruncate, 10); got != "-10" {
		t.Errorf("negative int64 truncate: got %q", got)
	}
}

func TestApplyTransform_Void(t *testing.T) {
	if got := ApplyTransform("anything", TransformVoid, 0); got != "" {
		t.Errorf("void should yield empty, got %q", got)
	}
}

func TestEscapePartitionValue(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{"a/b", "a%2Fb"},
		{"k=v", "k%3Dv"},
		{"50%", "50%25"},
		{"line\nbreak", "line%0Abreak"},
		{"tab\there", "tab%09here"},
	}
	for _, tt := range tests {
		if got := escapePartitionValue(tt.in); got != tt.want {
			t.Errorf("escapePartitionValue(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestBuildPartitionPath(t *testing.T) {
	partitions := []CompiledPartition{
		{Field: "created_at", Transform: TransformDay, Name: "dt", FieldIndex: 0},
		{Field: "region", Transform: TransformIdentity, Name: "region", FieldIndex: 1},
	}
	row := []any{time.Date(2024, 12, 19, 0, 0, 0, 0, time.UTC), "us/west"}

	path := BuildPartitionPath(partitions, row)
	want := "dt=2024-12-19/region=us%2Fwest"
	if path != want {
		t.Errorf("got %q, want %q", path, want)
	}
}

func TestBuildPartitionPath_SkipsVoidAndEmpty(t *testing.T) {
	partitions := []CompiledPartition{
		{Field: "ignored", Transform: TransformVoid, Name: "ignored", FieldIndex: 0},
		{Field: "region", Transform: TransformIdentity, Name: "region", FieldIndex: 1},
	}
	row := []any{"whatever", "eu-central"}

	path := BuildPartitionPath(partitions, row)
	if path != "region=eu-central" {
		t.Errorf("got %q", path)
	}

	if got := BuildPartitionPath(nil, row); got != "" {
		t.Errorf("empty spec should yield empty path, got %q", got)
	}
	if got := BuildPartitionPath(partitions, nil); got != "" {
		t.Errorf("empty row should yield empty path, got %q", got)
	}
}

func TestFloorDiv(t *testing.T) {
	tests := []struct {
		a, b, want int64
	}{
		{10, 3, 3},
		{-10, 3, -4},
		{-999, 100, -10},
		{999, 100, 9},
		{-100, 100, -1},
	}
	for _, tt := range tests {
		if got := floorDiv(tt.a, tt.b); got != tt.want {
			t.Errorf("floorDiv(%d, %d) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}
