package transform

import (
	"errors"
	"testing"

	"github.com/apache/arrow-go/v18/arrow"

	celschema "github.com/fieldry/fieldry/pkg/cel/schema"
)

const orderSchemaJSON = `{
	"type": "object",
	"title": "Order",
	"properties": {
		"order_id": {"type": "string"},
		"amount": {"type": "number"},
		"region": {"type": "string"},
		"created_at": {"type": "string"}
	},
	"required": ["order_id", "amount"]
}`

func compileOrderProfile(t *testing.T, config *Config) *CompiledProfile {
	t.Helper()

	mapped, err := celschema.NewJSONSchemaMapper().Map([]byte(orderSchemaJSON))
	if err != nil {
		t.Fatalf("map schema: %v", err)
	}

	profile, err := NewCompiler().Compile(config, mapped, FormatJSON, "orders")
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	return profile
}

func orderConfig() *Config {
	return &Config{
		Validations: []string{"record.amount > 0.0"},
		Filter:      "record.amount >= 10.0",
		Fields: []FieldSpec{
			{Name: "order_id", Expr: "record.order_id", FieldID: intPtr(1)},
			{Name: "amount", Expr: "record.amount", FieldID: intPtr(2)},
			{Name: "is_large", Expr: "record.amount > 100.0"},
			{Name: "region", Expr: "upper(record.region)"},
		},
		Partitions: []PartitionField{
			{Field: "region", Transform: TransformIdentity},
		},
		Sort: []SortField{
			{Field: "amount", Direction: SortDesc, NullOrder: NullsLast},
		},
	}
}

func TestCompiler_Compile(t *testing.T) {
	profile := compileOrderProfile(t, orderConfig())

	if profile.SchemaName == "" {
		t.Error("schema name should default to the root type")
	}
	if profile.RecordVar != "record" {
		t.Errorf("expected record var %q, got %q", "record", profile.RecordVar)
	}
	if !profile.HasValidation() || !profile.HasFilter() || !profile.HasPartitions() || !profile.HasSort() {
		t.Error("expected validations, filter, partitions and sort to be compiled")
	}
	if profile.FieldCount() != 4 {
		t.Fatalf("expected 4 fields, got %d", profile.FieldCount())
	}

	if f := profile.GetFieldByName("is_large"); f == nil {
		t.Error("GetFieldByName(is_large) returned nil")
	} else if f.ArrowType.ID() != arrow.BOOL {
		t.Errorf("is_large arrow type: got %v", f.ArrowType)
	}

	if profile.Partitions[0].FieldIndex != 3 {
		t.Errorf("partition should resolve to row index 3, got %d", profile.Partitions[0].FieldIndex)
	}
	if profile.Sort[0].FieldIndex != 1 {
		t.Errorf("sort should resolve to row index 1, got %d", profile.Sort[0].FieldIndex)
	}
}

func TestCompiler_OutputSchema(t *testing.T) {
	profile := compileOrderProfile(t, orderConfig())
	schema := profile.OutputSchema

	if schema.NumFields() != 4 {
		t.Fatalf("expected 4 schema fields, got %d", schema.NumFields())
	}

	f0 := schema.Field(0)
	if f0.Name != "order_id" || f0.Type.ID() != arrow.STRING {
		t.Errorf("unexpected field 0: %v", f0)
	}
	id, ok := f0.Metadata.GetValue("PARQUET:field_id")
	if !ok || id != "1" {
		t.Errorf("field 0 should carry PARQUET:field_id=1, got %q (%v)", id, ok)
	}

	f1 := schema.Field(1)
	if f1.Type.ID() != arrow.FLOAT64 {
		t.Errorf("amount should map to float64, got %v", f1.Type)
	}
	if v, ok := f1.Metadata.GetValue("sort"); !ok || v != "true" {
		t.Error("amount should be marked as a sort field")
	}

	f3 := schema.Field(3)
	if v, ok := f3.Metadata.GetValue("partition"); !ok || v != "true" {
		t.Error("region should be marked as a partition field")
	}
}

func TestCompiler_AsOverride(t *testing.T) {
	config := &Config{
		Fields: []FieldSpec{
			{Name: "amount_cents", Expr: "record.amount * 100.0", As: "long"},
			{Name: "price", Expr: "record.amount", As: "decimal(10,2)"},
		},
	}
	profile := compileOrderProfile(t, config)

	if profile.Fields[0].ArrowType.ID() != arrow.INT64 {
		t.Errorf("as=long should map to int64, got %v", profile.Fields[0].ArrowType)
	}
	dec, ok := profile.Fields[1].ArrowType.(*arrow.Decimal128Type)
	if !ok {
		t.Fatalf("as=decimal(10,2) should map to decimal128, got %v", profile.Fields[1].ArrowType)
	}
	if dec.Precision != 10 || dec.Scale != 2 {
		t.Errorf("unexpected decimal parameters: %v", dec)
	}
}

func TestCompiler_Errors(t *testing.T) {
	tests := []struct {
		name   string
		config *Config
	}{
		{
			name: "unknown record field",
			config: &Config{
				Fields: []FieldSpec{{Name: "x", Expr: "record.missing_field"}},
			},
		},
		{
			name: "non-bool validation",
			config: &Config{
				Validations: []string{"record.order_id"},
				Fields:      []FieldSpec{{Name: "id", Expr: "record.order_id"}},
			},
		},
		{
			name: "non-bool filter",
			config: &Config{
				Filter: "record.amount",
				Fields: []FieldSpec{{Name: "id", Expr: "record.order_id"}},
			},
		},
		{
			name: "bad as type",
			config: &Config{
				Fields: []FieldSpec{{Name: "id", Expr: "record.order_id", As: "varchar"}},
			},
		},
	}

	mapped, err := celschema.NewJSONSchemaMapper().Map([]byte(orderSchemaJSON))
	if err != nil {
		t.Fatalf("map schema: %v", err)
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCompiler().Compile(tt.config, mapped, FormatJSON, "")
			if err == nil {
				t.Fatal("expected compile error")
			}
			var compileErrs *CompileErrors
			if !errors.As(err, &compileErrs) {
				t.Errorf("expected *CompileErrors, got %T: %v", err, err)
			}
		})
	}
}

func TestExecutor_Process(t *testing.T) {
	profile := compileOrderProfile(t, orderConfig())
	exec := NewExecutor(profile)

	result := exec.Process(map[string]any{
		"order_id": "ord-1",
		"amount":   150.0,
		"region":   "eu-west",
	})
	if !result.IsOK() {
		t.Fatalf("expected OK, got %v (%v)", result.Status, result.Error)
	}
	if result.Row[0] != "ord-1" {
		t.Errorf("row[0]: got %v", result.Row[0])
	}
	if result.Row[2] != true {
		t.Errorf("row[2] (is_large): got %v", result.Row[2])
	}
	if result.Row[3] != "EU-WEST" {
		t.Errorf("row[3] (region): got %v", result.Row[3])
	}
}

func TestExecutor_Rejected(t *testing.T) {
	profile := compileOrderProfile(t, orderConfig())
	exec := NewExecutor(profile)

	result := exec.Process(map[string]any{
		"order_id": "ord-2",
		"amount":   -5.0,
		"region":   "us",
	})
	if result.Status != StatusRejected {
		t.Fatalf("expected rejected, got %v", result.Status)
	}
	if !errors.Is(result.Error, ErrValidationFailed) {
		t.Errorf("expected ErrValidationFailed, got %v", result.Error)
	}
	if result.Location != "validate[0]" {
		t.Errorf("unexpected location: %q", result.Location)
	}
}

func TestExecutor_Filtered(t *testing.T) {
	profile := compileOrderProfile(t, orderConfig())
	exec := NewExecutor(profile)

	result := exec.Process(map[string]any{
		"order_id": "ord-3",
		"amount":   5.0,
		"region":   "us",
	})
	if result.Status != StatusFiltered {
		t.Fatalf("expected filtered, got %v", result.Status)
	}
	if result.Error != nil {
		t.Errorf("filtered records carry no error, got %v", result.Error)
	}
}

func TestExecutor_ProcessWithMetadata(t *testing.T) {
	config := &Config{
		Fields: []FieldSpec{
			{Name: "order_id", Expr: "record.order_id"},
			{Name: "source", Expr: "_source"},
		},
	}
	profile := compileOrderProfile(t, config)
	exec := NewExecutor(profile)

	result := exec.ProcessWithMetadata(
		map[string]any{"order_id": "ord-4", "amount": 10.0},
		map[string]any{"_source": "api"},
	)
	if !result.IsOK() {
		t.Fatalf("expected OK, got %v (%v)", result.Status, result.Error)
	}
	if result.Row[1] != "api" {
		t.Errorf("expected source %q, got %v", "api", result.Row[1])
	}
}

func TestExecutor_ProcessBatch(t *testing.T) {
	profile := compileOrderProfile(t, orderConfig())
	exec := NewExecutor(profile)

	records := []map[string]any{
		{"order_id": "a", "amount": 150.0, "region": "eu"},
		{"order_id": "b", "amount": 5.0, "region": "eu"},
		{"order_id": "c", "amount": -1.0, "region": "eu"},
		{"order_id": "d", "amount": 20.0, "region": "us"},
	}

	batch := exec.ProcessBatch(records)
	if batch.Total() != 4 {
		t.Errorf("total: got %d", batch.Total())
	}
	if batch.OKCount != 2 || batch.FilteredCount != 1 || batch.RejectedCount != 1 {
		t.Errorf("unexpected counts: ok=%d filtered=%d rejected=%d errors=%d",
			batch.OKCount, batch.FilteredCount, batch.RejectedCount, batch.ErrorCount)
	}
	if !batch.HasErrors() {
		t.Error("batch with a rejection should report errors")
	}
	if len(batch.OKRows()) != 2 {
		t.Errorf("expected 2 OK rows, got %d", len(batch.OKRows()))
	}
}

func TestExecutor_SortRows(t *testing.T) {
	profile := compileOrderProfile(t, orderConfig())
	exec := NewExecutor(profile)

	// sort spec: amount desc, nulls-last (row index 1)
	rows := [][]any{
		{"a", 10.0, false, "EU"},
		{"b", nil, false, "EU"},
		{"c", 150.0, true, "US"},
		{"d", 40.0, false, "US"},
	}

	exec.SortRows(rows)

	order := []string{"c", "d", "a", "b"}
	for i, want := range order {
		if rows[i][0] != want {
			t.Errorf("rows[%d]: got %v, want %v", i, rows[i][0], want)
		}
	}
}

func TestExecutor_SortRows_NullsFirstAsc(t *testing.T) {
	config := orderConfig()
	config.Sort = []SortField{
		{Field: "amount", Direction: SortAsc, NullOrder: NullsFirst},
	}
	exec := NewExecutor(compileOrderProfile(t, config))

	rows := [][]any{
		{"a", 10.0, false, "EU"},
		{"b", nil, false, "EU"},
		{"c", 5.0, false, "US"},
	}
	exec.SortRows(rows)

	order := []string{"b", "c", "a"}
	for i, want := range order {
		if rows[i][0] != want {
			t.Errorf("rows[%d]: got %v, want %v", i, rows[i][0], want)
		}
	}
}

func TestExecutor_PartitionPathFromRow(t *testing.T) {
	profile := compileOrderProfile(t, orderConfig())
	exec := NewExecutor(profile)

	result := exec.Process(map[string]any{
		"order_id": "ord-9",
		"amount":   99.0,
		"region":   "ap-south",
	})
	if !result.IsOK() {
		t.Fatalf("process: %v", result.Error)
	}

	path := BuildPartitionPath(profile.Partitions, result.Row)
	if path != "region=AP-SOUTH" {
		t.Errorf("got %q", path)
	}
}
