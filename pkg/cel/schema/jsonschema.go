package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/cel-go/cel"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

var (
	// ErrNotObjectSchema is returned when the root schema is not an object type.
	ErrNotObjectSchema = errors.New("root schema must be an object type")

	// ErrInvalidJSONSchema is returned when the document is not valid JSON Schema.
	ErrInvalidJSONSchema = errors.New("invalid JSON schema")
)

// jsonSchemaNode is the subset of JSON Schema the type mapping reads:
// structural keywords, $ref/$defs, enum/const, and the format annotation.
// prefixItems, patternProperties, and the conditional keywords are not
// mapped; shapes outside the subset fall back to dyn.
type jsonSchemaNode struct {
	ID    string         `json:"$id"`
	Title string         `json:"title"`
	Type  jsonSchemaType `json:"type"`
	Ref   string         `json:"$ref"`

	Defs        map[string]*jsonSchemaNode `json:"$defs"`
	Definitions map[string]*jsonSchemaNode `json:"definitions"`

	Properties           map[string]*jsonSchemaNode `json:"properties"`
	AdditionalProperties *jsonSchemaNode            `json:"additionalProperties"`
	Items                *jsonSchemaNode            `json:"items"`

	AnyOf []*jsonSchemaNode `json:"anyOf"`
	OneOf []*jsonSchemaNode `json:"oneOf"`
	AllOf []*jsonSchemaNode `json:"allOf"`

	// https://www.learnjsonschema.com/2020-12/format-annotation/format/
	Format string `json:"format"`

	Enum  []any `json:"enum"`
	Const any   `json:"const"`
}

// jsonSchemaType accepts both the single-string and array forms of the
// "type" keyword.
type jsonSchemaType []string

func (t *jsonSchemaType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*t = []string{s}
		return nil
	}

	var arr []string
	if err := json.Unmarshal(data, &arr); err == nil {
		*t = arr
		return nil
	}

	// Malformed type keywords surface through document validation, not here.
	return nil
}

// JSONSchemaMapper parses JSON Schema documents for use with the TypeProvider.
type JSONSchemaMapper struct {
	// SkipValidation skips compiling the document as JSON Schema before
	// mapping it.
	SkipValidation bool
}

// NewJSONSchemaMapper creates a mapper with validation enabled.
func NewJSONSchemaMapper() *JSONSchemaMapper {
	return &JSONSchemaMapper{}
}

// Map validates and parses a JSON Schema document into a MappedSchema.
func (m *JSONSchemaMapper) Map(schema []byte) (*MappedSchema, error) {
	if !m.SkipValidation {
		if err := m.validate(schema); err != nil {
			return nil, err
		}
	}

	var node jsonSchemaNode
	if err := json.Unmarshal(schema, &node); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSONSchema, err)
	}

	if !node.isObject() {
		return nil, ErrNotObjectSchema
	}

	return &MappedSchema{Raw: &node}, nil
}

// validate compiles the document as JSON Schema. Dangling $refs and
// malformed keywords the lenient node parser would accept fail here.
func (m *JSONSchemaMapper) validate(schema []byte) error {
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(string(schema)))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidJSONSchema, err)
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", doc); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidJSONSchema, err)
	}

	if _, err := compiler.Compile("schema.json"); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidJSONSchema, err)
	}

	return nil
}

func (n *jsonSchemaNode) isObject() bool {
	return n.hasType("object") || len(n.Properties) > 0
}

func (n *jsonSchemaNode) isArray() bool {
	return n.hasType("array")
}

func (n *jsonSchemaNode) hasType(typeName string) bool {
	for _, t := range n.Type {
		if t == typeName {
			return true
		}
	}
	return false
}

// name resolves a stable type name for the node: $id with any URL prefix
// and fragment stripped, else the title without spaces, else "".
func (n *jsonSchemaNode) name() string {
	if n.ID != "" {
		name := n.ID
		if idx := strings.LastIndex(name, "/"); idx >= 0 {
			name = name[idx+1:]
		}
		if idx := strings.LastIndex(name, "#"); idx >= 0 {
			name = name[:idx]
		}
		return name
	}
	if n.Title != "" {
		return strings.ReplaceAll(n.Title, " ", "")
	}
	return ""
}

// JSONSchemaAdapter implements SchemaAdapter for JSON Schema documents.
type JSONSchemaAdapter struct {
	root        *jsonSchemaNode
	definitions map[string]*jsonSchemaNode
}

// NewJSONSchemaAdapter creates an adapter from a MappedSchema holding a
// parsed JSON Schema.
func NewJSONSchemaAdapter(mapped *MappedSchema) (*JSONSchemaAdapter, error) {
	if mapped == nil {
		return nil, ErrNilSchema
	}

	node, ok := mapped.Raw.(*jsonSchemaNode)
	if !ok {
		return nil, fmt.Errorf("expected *jsonSchemaNode, got %T", mapped.Raw)
	}

	// definitions is the draft-07 spelling, $defs the 2019-09+ one.
	defs := make(map[string]*jsonSchemaNode)
	for k, v := range node.Definitions {
		defs[k] = v
	}
	for k, v := range node.Defs {
		defs[k] = v
	}

	return &JSONSchemaAdapter{
		root:        node,
		definitions: defs,
	}, nil
}

// BuildTypes implements SchemaAdapter.
func (a *JSONSchemaAdapter) BuildTypes(provider *TypeProvider) (string, error) {
	if a.root == nil {
		return "", ErrNilSchema
	}

	rootName := a.root.name()
	if rootName == "" {
		rootName = "Root"
	}

	a.registerObject(a.root, rootName, provider)
	return rootName, nil
}

// registerObject registers the node's property table under typeName.
// Property keys are walked in sorted order so path-derived names for
// anonymous nested objects come out deterministic.
func (a *JSONSchemaAdapter) registerObject(node *jsonSchemaNode, typeName string, p *TypeProvider) {
	if node == nil || !node.isObject() {
		return
	}

	fields := make(map[string]*cel.Type)

	keys := make([]string, 0, len(node.Properties))
	for k := range node.Properties {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, fieldName := range keys {
		fields[fieldName] = a.celType(node.Properties[fieldName], typeName+"_"+fieldName, p)
	}

	p.registerType(typeName, fields)
}

// celType maps a schema node to a CEL type. pathName seeds type names for
// anonymous nested objects ("Order_customer_address").
func (a *JSONSchemaAdapter) celType(node *jsonSchemaNode, pathName string, p *TypeProvider) *cel.Type {
	if node == nil {
		return cel.DynType
	}

	if node.Ref != "" {
		if resolved := a.resolveRef(node.Ref); resolved != nil {
			return a.celType(resolved, pathName, p)
		}
		return cel.DynType
	}

	if len(node.AllOf) > 0 {
		return a.allOfType(node.AllOf, pathName, p)
	}
	if len(node.AnyOf) > 0 {
		return a.unionType(node.AnyOf, pathName, p)
	}
	if len(node.OneOf) > 0 {
		return a.unionType(node.OneOf, pathName, p)
	}

	if len(node.Enum) > 0 {
		return a.enumType(node.Enum)
	}
	if node.Const != nil {
		return a.constType(node.Const)
	}

	if len(node.Type) > 1 {
		return a.multiType(node, pathName, p)
	}
	if len(node.Type) == 1 {
		return a.singleType(node, node.Type[0], pathName, p)
	}

	// No type keyword: infer from structure.
	if node.isObject() {
		return a.objectType(node, pathName, p)
	}
	if node.isArray() {
		return a.arrayType(node, pathName, p)
	}

	return cel.DynType
}

func (a *JSONSchemaAdapter) singleType(node *jsonSchemaNode, typeName, pathName string, p *TypeProvider) *cel.Type {
	switch typeName {
	case "string":
		return a.stringType(node)
	case "integer":
		return cel.IntType
	case "number":
		return cel.DoubleType
	case "boolean":
		return cel.BoolType
	case "null":
		return cel.NullType
	case "array":
		return a.arrayType(node, pathName, p)
	case "object":
		return a.objectType(node, pathName, p)
	default:
		return cel.DynType
	}
}

// stringType refines strings by format annotation: date-time and date map
// to timestamp, time and duration to duration, byte and binary (the
// OpenAPI spellings) to bytes. Everything else stays a string.
func (a *JSONSchemaAdapter) stringType(node *jsonSchemaNode) *cel.Type {
	switch node.Format {
	case "date-time", "date":
		return cel.TimestampType
	case "time", "duration":
		return cel.DurationType
	case "byte", "binary":
		return cel.BytesType
	default:
		return cel.StringType
	}
}

func (a *JSONSchemaAdapter) arrayType(node *jsonSchemaNode, pathName string, p *TypeProvider) *cel.Type {
	if node.Items == nil {
		return cel.ListType(cel.DynType)
	}
	return cel.ListType(a.celType(node.Items, pathName+"_item", p))
}

func (a *JSONSchemaAdapter) objectType(node *jsonSchemaNode, pathName string, p *TypeProvider) *cel.Type {
	// Objects with properties become named struct types.
	if len(node.Properties) > 0 {
		nestedName := node.name()
		if nestedName == "" {
			nestedName = pathName
		}
		a.registerObject(node, nestedName, p)
		return cel.ObjectType(nestedName)
	}

	// additionalProperties only: a homogeneous map.
	if node.AdditionalProperties != nil {
		return cel.MapType(cel.StringType, a.celType(node.AdditionalProperties, pathName+"_value", p))
	}

	return cel.MapType(cel.StringType, cel.DynType)
}

// multiType handles the array form of "type", most commonly the nullable
// idiom ["string", "null"].
func (a *JSONSchemaAdapter) multiType(node *jsonSchemaNode, pathName string, p *TypeProvider) *cel.Type {
	var nonNull []string
	for _, t := range node.Type {
		if t != "null" {
			nonNull = append(nonNull, t)
		}
	}

	if len(nonNull) == 1 {
		return a.singleType(node, nonNull[0], pathName, p)
	}
	return cel.DynType
}

// unionType maps anyOf/oneOf. A single non-null branch maps to that
// branch's type, nullable at runtime; several branches map to dyn.
func (a *JSONSchemaAdapter) unionType(schemas []*jsonSchemaNode, pathName string, p *TypeProvider) *cel.Type {
	var nonNull *cel.Type

	for _, s := range schemas {
		if s.hasType("null") {
			continue
		}
		if nonNull != nil {
			return cel.DynType
		}
		nonNull = a.celType(s, pathName, p)
	}

	if nonNull == nil {
		return cel.NullType
	}
	return nonNull
}

func (a *JSONSchemaAdapter) resolveRef(ref string) *jsonSchemaNode {
	if name, ok := strings.CutPrefix(ref, "#/definitions/"); ok {
		return a.definitions[name]
	}
	if name, ok := strings.CutPrefix(ref, "#/$defs/"); ok {
		return a.definitions[name]
	}
	return nil
}

// allOfType flattens schema composition into one object carrying every
// branch's properties. $ref branches are resolved first; the first branch
// with a name supplies the type name.
func (a *JSONSchemaAdapter) allOfType(schemas []*jsonSchemaNode, pathName string, p *TypeProvider) *cel.Type {
	merged := &jsonSchemaNode{
		Properties: make(map[string]*jsonSchemaNode),
	}

	for _, s := range schemas {
		resolved := s
		if s.Ref != "" {
			resolved = a.resolveRef(s.Ref)
			if resolved == nil {
				continue
			}
		}

		for k, v := range resolved.Properties {
			merged.Properties[k] = v
		}

		if merged.Title == "" && resolved.Title != "" {
			merged.Title = resolved.Title
		}
		if merged.ID == "" && resolved.ID != "" {
			merged.ID = resolved.ID
		}
	}

	if len(merged.Properties) > 0 {
		return a.objectType(merged, pathName, p)
	}

	return cel.DynType
}

// enumType infers the member type from the first enum value, defaulting
// to string.
func (a *JSONSchemaAdapter) enumType(values []any) *cel.Type {
	if len(values) == 0 {
		return cel.DynType
	}
	if t := literalType(values[0]); t != cel.DynType && t != cel.NullType {
		return t
	}
	return cel.StringType
}

// constType infers the type from the const value.
func (a *JSONSchemaAdapter) constType(value any) *cel.Type {
	return literalType(value)
}

// literalType maps a decoded JSON literal to a CEL type. encoding/json
// decodes every number as float64, so integral floats count as ints.
func literalType(v any) *cel.Type {
	switch v := v.(type) {
	case string:
		return cel.StringType
	case float64:
		if v == float64(int64(v)) {
			return cel.IntType
		}
		return cel.DoubleType
	case int, int32, int64:
		return cel.IntType
	case bool:
		return cel.BoolType
	case nil:
		return cel.NullType
	default:
		return cel.DynType
	}
}
