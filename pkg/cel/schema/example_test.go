package schema_test

import (
	"testing"

	"github.com/fieldry/fieldry/pkg/cel"
	"github.com/fieldry/fieldry/pkg/cel/schema"
)

// invoiceSchema is the kind of half-normalized record the typed env exists
// for: amounts and dates arrive as display text and get cleaned up by
// expressions.
var invoiceSchema = `{
	"type": "record",
	"name": "Invoice",
	"fields": [
		{"name": "invoice_id", "type": "string"},
		{"name": "customer_name", "type": "string"},
		{"name": "amount_text", "type": "string"},
		{"name": "issued_on", "type": "string"},
		{"name": "item_count", "type": "int"},
		{"name": "tags", "type": {"type": "array", "items": "string"}}
	]
}`

func buildInvoiceEnv(tb testing.TB) *cel.Env {
	tb.Helper()
	mapped, err := schema.NewAvroMapper().Map([]byte(invoiceSchema))
	if err != nil {
		tb.Fatalf("Map error: %v", err)
	}
	adapter, err := schema.NewAvroAdapter(mapped)
	if err != nil {
		tb.Fatalf("NewAvroAdapter error: %v", err)
	}
	env, _, err := schema.BuildTypedEnv(adapter, schema.NewTypeProvider(), schema.DefaultEnvOptions())
	if err != nil {
		tb.Fatalf("BuildTypedEnv error: %v", err)
	}
	return env
}

func TestTypedEnv_NormalizationExpressions(t *testing.T) {
	env := buildInvoiceEnv(t)

	// the formatting library is installed alongside the schema types, so
	// normalization expressions type-check against both
	valid := []string{
		`record.invoice_id.startsWith('INV-')`,
		`parseAmount(record.amount_text, ifNull(_locale, 'en_US'))`,
		`formatDateString(record.issued_on, '', 'yyyy-MM-dd')`,
		`slugify(record.customer_name)`,
		`record.item_count > 0 && record.tags.size() > 0`,
		`record.item_count > 10 ? 'bulk' : 'retail'`,
		`upper(trim(record.customer_name))`,
	}

	for _, expr := range valid {
		_, issues := env.Compile(expr)
		if issues != nil && issues.Err() != nil {
			t.Errorf("expected valid: %s\n  error: %v", expr, issues.Err())
		}
	}
}

func TestTypedEnv_RejectsMistypedExpressions(t *testing.T) {
	env := buildInvoiceEnv(t)

	invalid := []string{
		// the schema has no such field
		"record.amount > 100.0",
		// string field, numeric comparison
		"record.amount_text > 100.0",
		// int has no string methods
		"record.item_count.startsWith('x')",
		// slugify wants a string
		"slugify(record.item_count)",
	}

	for _, expr := range invalid {
		_, issues := env.Compile(expr)
		if issues == nil || issues.Err() == nil {
			t.Errorf("expected compile error for: %s", expr)
		}
	}
}

func TestTypedEnv_NormalizesInvoice(t *testing.T) {
	env := buildInvoiceEnv(t)
	compiler := cel.NewCompiler(env)
	evaluator := cel.NewEvaluator()

	record := map[string]any{
		"record": map[string]any{
			"invoice_id":    "INV-2023-0042",
			"customer_name": "  PT Sinar Jaya  ",
			"amount_text":   "1.234,56",
			"issued_on":     "15/06/2023",
			"item_count":    int64(3),
			"tags":          []any{"wholesale"},
		},
		"_locale": "id_ID",
	}

	amount, err := compiler.Compile(`parseAmount(record.amount_text, _locale)`)
	if err != nil {
		t.Fatalf("Compile error: %v", err)
	}
	if got, err := evaluator.EvalInt(amount, record); err != nil || got != 123456 {
		t.Errorf("amount = %d, %v; want 123456 cents", got, err)
	}

	issued, err := compiler.CompileString(`formatDateString(record.issued_on, 'dd/MM/yyyy', 'yyyy-MM-dd')`)
	if err != nil {
		t.Fatalf("Compile error: %v", err)
	}
	if got, err := evaluator.EvalString(issued, record); err != nil || got != "2023-06-15" {
		t.Errorf("issued_on = %q, %v; want 2023-06-15", got, err)
	}

	slug, err := compiler.CompileString(`slugify(trim(record.customer_name))`)
	if err != nil {
		t.Fatalf("Compile error: %v", err)
	}
	if got, err := evaluator.EvalString(slug, record); err != nil || got != "pt-sinar-jaya" {
		t.Errorf("slug = %q, %v; want pt-sinar-jaya", got, err)
	}
}

// Benchmarks

func BenchmarkSchemaMap(b *testing.B) {
	m := schema.NewAvroMapper()
	doc := []byte(invoiceSchema)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = m.Map(doc)
	}
}

func BenchmarkBuildTypedEnv(b *testing.B) {
	mapped, _ := schema.NewAvroMapper().Map([]byte(invoiceSchema))
	adapter, _ := schema.NewAvroAdapter(mapped)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _, _ = schema.BuildTypedEnv(adapter, schema.NewTypeProvider(), schema.DefaultEnvOptions())
	}
}

func BenchmarkCompileWithCache(b *testing.B) {
	env := buildInvoiceEnv(b)
	compiler := cel.NewCompiler(env)
	cache := cel.NewExprCache()

	expr := `parseAmount(record.amount_text, 'en_US')`

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = cache.GetOrCompile(expr, compiler.Compile)
	}
}

func BenchmarkEval_Normalization(b *testing.B) {
	env := buildInvoiceEnv(b)
	compiler := cel.NewCompiler(env)
	evaluator := cel.NewEvaluator()

	expr, _ := compiler.CompileString(`formatDateString(record.issued_on, '', 'yyyy-MM-dd')`)
	vars := map[string]any{
		"record": map[string]any{"issued_on": "15/06/2023"},
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = evaluator.EvalString(expr, vars)
	}
}

func BenchmarkEval_Predicate(b *testing.B) {
	env := buildInvoiceEnv(b)
	compiler := cel.NewCompiler(env)
	evaluator := cel.NewEvaluator()

	expr, _ := compiler.CompileBool(`record.invoice_id.startsWith('INV-') && record.item_count > 0`)
	vars := map[string]any{
		"record": map[string]any{
			"invoice_id": "INV-2023-0042",
			"item_count": int64(3),
		},
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = evaluator.EvalBool(expr, vars)
	}
}
