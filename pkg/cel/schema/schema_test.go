package schema

import (
	"errors"
	"testing"

	"github.com/google/cel-go/cel"
	"github.com/hamba/avro/v2"
)

func mapAvro(t *testing.T, doc string) *MappedSchema {
	t.Helper()
	mapped, err := NewAvroMapper().Map([]byte(doc))
	if err != nil {
		t.Fatalf("Map error: %v", err)
	}
	return mapped
}

func typedEnv(t *testing.T, doc string, opts EnvOptions) (*cel.Env, string) {
	t.Helper()
	adapter, err := NewAvroAdapter(mapAvro(t, doc))
	if err != nil {
		t.Fatalf("NewAvroAdapter error: %v", err)
	}
	env, rootType, err := BuildTypedEnv(adapter, NewTypeProvider(), opts)
	if err != nil {
		t.Fatalf("BuildTypedEnv error: %v", err)
	}
	return env, rootType
}

func compiles(env *cel.Env, expr string) bool {
	_, issues := env.Compile(expr)
	return issues == nil || issues.Err() == nil
}

func TestAvroMapper(t *testing.T) {
	tests := []struct {
		name       string
		doc        string
		wantName   string
		wantFields int
	}{
		{
			name: "flat_profile",
			doc: `{
				"type": "record",
				"name": "Profile",
				"namespace": "io.fieldry",
				"fields": [
					{"name": "active", "type": "boolean"},
					{"name": "login_count", "type": "int"},
					{"name": "display_name", "type": "string"}
				]
			}`,
			wantName:   "io.fieldry.Profile",
			wantFields: 3,
		},
		{
			name: "nested_with_collections",
			doc: `{
				"type": "record",
				"name": "Statement",
				"fields": [
					{"name": "account_no", "type": "string"},
					{"name": "holder", "type": {
						"type": "record",
						"name": "Holder",
						"fields": [
							{"name": "full_name", "type": "string"},
							{"name": "birth_year", "type": "int"}
						]
					}},
					{"name": "entries", "type": {"type": "array", "items": {
						"type": "record",
						"name": "Entry",
						"fields": [
							{"name": "memo", "type": "string"},
							{"name": "amount", "type": "double"}
						]
					}}},
					{"name": "labels", "type": {"type": "map", "values": "string"}}
				]
			}`,
			wantName:   "Statement",
			wantFields: 4,
		},
		{
			name: "logical_types",
			doc: `{
				"type": "record",
				"name": "Payment",
				"fields": [
					{"name": "created_at", "type": {"type": "long", "logicalType": "timestamp-micros"}},
					{"name": "paid_on", "type": {"type": "int", "logicalType": "date"}},
					{"name": "payment_id", "type": {"type": "string", "logicalType": "uuid"}}
				]
			}`,
			wantName:   "Payment",
			wantFields: 3,
		},
		{
			name: "nullable_unions",
			doc: `{
				"type": "record",
				"name": "Contact",
				"fields": [
					{"name": "nickname", "type": ["null", "string"]},
					{"name": "last_seen", "type": ["null", {
						"type": "record",
						"name": "Visit",
						"fields": [{"name": "day", "type": "int"}]
					}]}
				]
			}`,
			wantName:   "Contact",
			wantFields: 2,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			mapped := mapAvro(t, tc.doc)

			rec, ok := mapped.Raw.(*avro.RecordSchema)
			if !ok {
				t.Fatalf("Raw is %T, want *avro.RecordSchema", mapped.Raw)
			}
			if rec.FullName() != tc.wantName {
				t.Errorf("FullName = %s, want %s", rec.FullName(), tc.wantName)
			}
			if len(rec.Fields()) != tc.wantFields {
				t.Errorf("Fields count = %d, want %d", len(rec.Fields()), tc.wantFields)
			}
		})
	}
}

func TestAvroMapper_RejectsBadInput(t *testing.T) {
	m := NewAvroMapper()

	if _, err := m.Map([]byte("{not json")); err == nil {
		t.Error("expected error for malformed JSON")
	}

	_, err := m.Map([]byte(`{"type": "string"}`))
	if !errors.Is(err, ErrNotRecordSchema) {
		t.Errorf("expected ErrNotRecordSchema, got %v", err)
	}

	_, err = m.Map([]byte(`{"type": "array", "items": "long"}`))
	if !errors.Is(err, ErrNotRecordSchema) {
		t.Errorf("expected ErrNotRecordSchema, got %v", err)
	}
}

func TestNewAvroAdapter_Errors(t *testing.T) {
	if _, err := NewAvroAdapter(nil); !errors.Is(err, ErrNilSchema) {
		t.Errorf("nil schema: expected ErrNilSchema, got %v", err)
	}

	if _, err := NewAvroAdapter(&MappedSchema{Raw: 42}); !errors.Is(err, ErrNotAvroSchema) {
		t.Errorf("foreign Raw: expected ErrNotAvroSchema, got %v", err)
	}

	arr, _ := avro.Parse(`{"type": "array", "items": "string"}`)
	if _, err := NewAvroAdapter(&MappedSchema{Raw: arr}); !errors.Is(err, ErrNotRecordSchema) {
		t.Errorf("non-record Raw: expected ErrNotRecordSchema, got %v", err)
	}
}

const receiptSchema = `{
	"type": "record",
	"name": "Receipt",
	"namespace": "io.fieldry",
	"fields": [
		{"name": "total_text", "type": "string"},
		{"name": "cashier", "type": {
			"type": "record",
			"name": "Cashier",
			"fields": [
				{"name": "badge", "type": "string"},
				{"name": "shift", "type": "int"}
			]
		}}
	]
}`

func TestBuildTypedEnv_Defaults(t *testing.T) {
	env, rootType := typedEnv(t, receiptSchema, DefaultEnvOptions())

	if rootType != "io.fieldry.Receipt" {
		t.Errorf("rootType = %s, want io.fieldry.Receipt", rootType)
	}

	if !compiles(env, "record.cashier.shift > 1") {
		t.Error("nested field access should compile")
	}
	if compiles(env, "record.cashier.shiftt > 1") {
		t.Error("typo'd nested field should not compile")
	}

	// default metadata rides along with the record var
	for _, expr := range []string{
		"_record_id != ''",
		"_received_at > timestamp('2020-01-01T00:00:00Z')",
		"_source == 'pos'",
		"_locale == 'id_ID'",
	} {
		if !compiles(env, expr) {
			t.Errorf("default metadata expression should compile: %s", expr)
		}
	}
}

func TestBuildTypedEnv_CustomMetadata(t *testing.T) {
	opts := EnvOptions{
		MetadataFields: []MetadataField{
			{Name: "_store_code", Type: cel.StringType},
			{Name: "_till_no", Type: cel.IntType},
		},
	}
	env, _ := typedEnv(t, receiptSchema, opts)

	if !compiles(env, "_store_code == 'JKT-01' && _till_no > 0") {
		t.Error("custom metadata fields should compile")
	}
	// defaults are additive unless disabled
	if !compiles(env, "_source == 'pos'") {
		t.Error("default metadata should still be present")
	}
}

func TestBuildTypedEnv_DisableDefaultMetadata(t *testing.T) {
	opts := EnvOptions{
		DisableDefaultMetadata: true,
		MetadataFields: []MetadataField{
			{Name: "_store_code", Type: cel.StringType},
		},
	}
	env, _ := typedEnv(t, receiptSchema, opts)

	if !compiles(env, "_store_code == 'JKT-01'") {
		t.Error("custom metadata field should compile")
	}
	if compiles(env, "_source == 'pos'") {
		t.Error("_source should be gone when defaults are disabled")
	}
}

func TestBuildTypedEnv_CustomRecordVarName(t *testing.T) {
	opts := EnvOptions{
		RecordVarName:          "receipt",
		DisableDefaultMetadata: true,
	}
	env, _ := typedEnv(t, receiptSchema, opts)

	if !compiles(env, "receipt.total_text != ''") {
		t.Error("custom record var should compile")
	}
	if compiles(env, "record.total_text != ''") {
		t.Error("default record var should be gone under a custom name")
	}
}

func TestBuildTypedEnv_InstallsFormattingFuncs(t *testing.T) {
	env, _ := typedEnv(t, receiptSchema, DefaultEnvOptions())

	// the full function surface is installed into every typed env
	for _, expr := range []string{
		"parseAmount(record.total_text, _locale)",
		"formatDate(_received_at, 'yyyy-MM-dd')",
		"slugify(record.cashier.badge)",
		"coalesce(record.total_text, '0')",
	} {
		if !compiles(env, expr) {
			t.Errorf("formatting expression should compile: %s", expr)
		}
	}
}

func TestBuildTypedEnv_NilAdapter(t *testing.T) {
	_, _, err := BuildTypedEnv(nil, NewTypeProvider(), DefaultEnvOptions())
	if !errors.Is(err, ErrNilAdapter) {
		t.Errorf("expected ErrNilAdapter, got %v", err)
	}
}

func TestNewAvroAdapterFromSchema(t *testing.T) {
	parsed, err := avro.Parse(`{
		"type": "record",
		"name": "Tally",
		"fields": [{"name": "n", "type": "int"}]
	}`)
	if err != nil {
		t.Fatalf("avro.Parse error: %v", err)
	}

	adapter := NewAvroAdapterFromSchema(parsed.(*avro.RecordSchema))
	rootType, err := adapter.BuildTypes(NewTypeProvider())
	if err != nil {
		t.Fatalf("BuildTypes error: %v", err)
	}
	if rootType != "Tally" {
		t.Errorf("rootType = %s, want Tally", rootType)
	}
}

func TestDefaultMetadataFields(t *testing.T) {
	want := map[string]bool{
		"_record_id":   true,
		"_received_at": true,
		"_source":      true,
		"_locale":      true,
	}

	fields := DefaultMetadataFields()
	if len(fields) != len(want) {
		t.Fatalf("got %d fields, want %d", len(fields), len(want))
	}
	for _, f := range fields {
		if !want[f.Name] {
			t.Errorf("unexpected field %s", f.Name)
		}
	}
}
