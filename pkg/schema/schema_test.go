package schema

import (
	"errors"
	"testing"

	"github.com/goliatone/go-configform/pkg/ordered"
	"github.com/google/go-cmp/cmp"
)

func decode(t *testing.T, text string) any {
	t.Helper()
	value, err := ordered.DecodeJSON([]byte(text))
	if err != nil {
		t.Fatalf("decode %q: %v", text, err)
	}
	return value
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  error
	}{
		{name: "valid", input: `{"type":"object","properties":{}}`},
		{name: "null", input: `null`, want: ErrNotAnObject},
		{name: "array", input: `[{"type":"object"}]`, want: ErrNotAnObject},
		{name: "string", input: `"object"`, want: ErrNotAnObject},
		{name: "missing type", input: `{"properties":{}}`, want: ErrWrongRootType},
		{name: "string type", input: `{"type":"string","properties":{}}`, want: ErrWrongRootType},
		{name: "type list", input: `{"type":["object"],"properties":{}}`, want: ErrWrongRootType},
		{name: "type case", input: `{"type":"Object","properties":{}}`, want: ErrWrongRootType},
		{name: "missing properties", input: `{"type":"object"}`, want: ErrMissingProperties},
		{name: "array properties", input: `{"type":"object","properties":[]}`, want: ErrMissingProperties},
		{name: "null properties", input: `{"type":"object","properties":null}`, want: ErrMissingProperties},
		{name: "shallow", input: `{"type":"object","properties":{"a":{"type":"object","properties":7},"b":42}}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate(decode(t, tc.input))
			if tc.want == nil {
				if err != nil {
					t.Fatalf("expected schema to be accepted, got %v", err)
				}
				return
			}
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestValidate_NilAndPlainMaps(t *testing.T) {
	if err := Validate(nil); !errors.Is(err, ErrNotAnObject) {
		t.Fatalf("expected NotAnObject for nil, got %v", err)
	}
	var nilMap *ordered.Map
	if err := Validate(nilMap); !errors.Is(err, ErrNotAnObject) {
		t.Fatalf("expected NotAnObject for nil map, got %v", err)
	}
	plain := map[string]any{"type": "object", "properties": map[string]any{}}
	if err := Validate(plain); err != nil {
		t.Fatalf("expected plain map to be accepted, got %v", err)
	}
}

func TestValidationErrorMessages(t *testing.T) {
	cases := map[ValidationCode]string{
		CodeNotAnObject:       "Schema must be a JSON object.",
		CodeWrongRootType:     `Root schema must have type "object".`,
		CodeMissingProperties: "Root schema must contain a properties object.",
	}
	for code, want := range cases {
		err := &ValidationError{Code: code}
		if err.Error() != want {
			t.Fatalf("%s: expected %q, got %q", code, want, err.Error())
		}
	}

	var target *ValidationError
	if !errors.As(Validate(nil), &target) || target.Code != CodeNotAnObject {
		t.Fatalf("expected errors.As to expose the code, got %+v", target)
	}
}

func TestCompile_PreservesOrderAndTypes(t *testing.T) {
	root, err := Compile(decode(t, `{
		"type": "object",
		"title": "App Config",
		"required": ["name", "settings", 3],
		"properties": {
			"name": {"type": "string", "title": "Name"},
			"port": {"type": "integer"},
			"mode": {"type": "string", "enum": ["dev", "prod"]},
			"ratio": {"type": "number"},
			"enabled": {"type": "boolean"},
			"settings": {
				"type": "object",
				"properties": {"retries": {"type": "integer"}, "region": {}}
			},
			"untyped": {"description": "no type"},
			"odd": {"type": "array"},
			"weird": 42,
			"emptyEnum": {"enum": []}
		}
	}`))
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	if root.Title() != "App Config" {
		t.Fatalf("unexpected title %q", root.Title())
	}
	if diff := cmp.Diff([]string{"name", "settings"}, root.Required); diff != "" {
		t.Fatalf("required mismatch (-want +got):\n%s", diff)
	}

	var names []string
	for _, prop := range root.Properties {
		names = append(names, prop.Name)
	}
	wantNames := []string{"name", "port", "mode", "ratio", "enabled", "settings", "untyped", "odd", "weird", "emptyEnum"}
	if diff := cmp.Diff(wantNames, names); diff != "" {
		t.Fatalf("property order mismatch (-want +got):\n%s", diff)
	}

	leafTypes := map[string]LeafType{
		"name":      LeafString,
		"port":      LeafInteger,
		"mode":      LeafString,
		"ratio":     LeafNumber,
		"enabled":   LeafBoolean,
		"untyped":   LeafString,
		"odd":       LeafString,
		"weird":     LeafString,
		"emptyEnum": LeafString,
	}
	for name, want := range leafTypes {
		node, ok := root.Property(name)
		if !ok {
			t.Fatalf("missing property %s", name)
		}
		leaf, ok := node.(*LeafNode)
		if !ok {
			t.Fatalf("%s: expected leaf, got %T", name, node)
		}
		if leaf.Type != want {
			t.Fatalf("%s: expected %s, got %s", name, want, leaf.Type)
		}
	}

	mode, _ := root.Property("mode")
	if diff := cmp.Diff([]any{"dev", "prod"}, mode.(*LeafNode).Enum); diff != "" {
		t.Fatalf("enum mismatch (-want +got):\n%s", diff)
	}
	emptyEnum, _ := root.Property("emptyEnum")
	if leaf := emptyEnum.(*LeafNode); leaf.Enum == nil || len(leaf.Enum) != 0 || !leaf.HasEnum() {
		t.Fatalf("expected declared empty enum, got %#v", leaf.Enum)
	}
	odd, _ := root.Property("odd")
	if got := odd.(*LeafNode).TypeName(); got != "array" {
		t.Fatalf("expected declared type name to survive, got %q", got)
	}

	settings, ok := root.Property("settings")
	if !ok || settings.Kind() != KindObject {
		t.Fatalf("expected settings to be an object node, got %#v", settings)
	}
	retries, ok := settings.(*ObjectNode).Property("retries")
	if !ok || retries.(*LeafNode).Type != LeafInteger {
		t.Fatalf("expected settings.retries to be an integer leaf: %#v", retries)
	}
}

func TestCompile_LenientNestedObjects(t *testing.T) {
	root, err := Compile(decode(t, `{"type":"object","properties":{"a":{"type":"object"},"b":{"type":"object","properties":[1]}}}`))
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	for _, prop := range root.Properties {
		object, ok := prop.Node.(*ObjectNode)
		if !ok {
			t.Fatalf("%s: expected object node, got %T", prop.Name, prop.Node)
		}
		if len(object.Properties) != 0 {
			t.Fatalf("%s: expected no children, got %d", prop.Name, len(object.Properties))
		}
	}
}

func TestCompile_RejectsInvalidRoot(t *testing.T) {
	if _, err := Compile(decode(t, `{"type":"object"}`)); !errors.Is(err, ErrMissingProperties) {
		t.Fatalf("expected MissingProperties, got %v", err)
	}
}

func TestPath(t *testing.T) {
	root := Root()
	if root.String() != "$" || !root.IsRoot() || root.Label() != "Root" || root.InputName() != "" {
		t.Fatalf("unexpected root rendering: %q %q", root.String(), root.Label())
	}

	parent := root.Child("settings")
	first := parent.Child("retries")
	second := parent.Child("region")
	if first.String() != "$.settings.retries" || second.String() != "$.settings.region" {
		t.Fatalf("sibling paths alias each other: %s %s", first, second)
	}
	if first.InputName() != "settings.retries" || first.Name() != "retries" || first.Len() != 2 {
		t.Fatalf("unexpected path accessors for %s", first)
	}

	parsed, err := ParsePath("$.settings.retries")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !parsed.Equal(first) {
		t.Fatalf("parsed path %s differs from %s", parsed, first)
	}
	if _, err := ParsePath("settings.retries"); err == nil {
		t.Fatalf("expected error for path without root sentinel")
	}
}

func TestLiteralString(t *testing.T) {
	cases := []struct {
		in   any
		want string
	}{
		{in: "a b", want: "a b"},
		{in: float64(3), want: "3"},
		{in: 2.5, want: "2.5"},
		{in: -0.0, want: "0"},
		{in: 1e21, want: "1e+21"},
		{in: 123456789012345680000.0, want: "123456789012345680000"},
		{in: 0.000001, want: "0.000001"},
		{in: 1e-7, want: "1e-7"},
		{in: 1.5e-10, want: "1.5e-10"},
		{in: true, want: "true"},
		{in: false, want: "false"},
		{in: nil, want: "null"},
		{in: int64(42), want: "42"},
		{in: []any{float64(1), "b", nil}, want: "1,b,"},
		{in: ordered.NewMap(0), want: "[object Object]"},
	}
	for _, tc := range cases {
		if got := LiteralString(tc.in); got != tc.want {
			t.Fatalf("LiteralString(%#v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestDocumentFormatAndParse(t *testing.T) {
	yamlDoc := MustNewDocument(SourceFromFile("schemas/app.schema.yaml"), []byte("type: object\nproperties:\n  b: {type: integer}\n  a: {}\n"))
	if yamlDoc.Format() != FormatYAML {
		t.Fatalf("expected yaml format, got %s", yamlDoc.Format())
	}
	root, err := Load(yamlDoc)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if root.Properties[0].Name != "b" || root.Properties[1].Name != "a" {
		t.Fatalf("yaml property order lost: %+v", root.Properties)
	}

	sniffed := MustNewDocument(SourceFromUpload("upload"), []byte(`  {"type":"object","properties":{}}`))
	if sniffed.Format() != FormatJSON {
		t.Fatalf("expected sniffed json, got %s", sniffed.Format())
	}
	if got := Summary(MustCompile(decode(t, `{"type":"object","properties":{"a":{}}}`)), "upload.json"); got != "Loaded: upload.json (1 top-level fields)" {
		t.Fatalf("unexpected summary %q", got)
	}

	if _, err := NewDocument(SourceFromFile("x.json"), []byte("  ")); err == nil {
		t.Fatalf("expected error for empty document")
	}
	if _, err := Parse(MustNewDocument(SourceFromFile("x.json"), []byte("{"))); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestParseSource(t *testing.T) {
	if src := ParseSource("https://example.com/app.schema.json"); src == nil || src.Kind() != SourceKindURL {
		t.Fatalf("expected url source, got %#v", src)
	}
	if src := ParseSource("./app.schema.json"); src == nil || src.Kind() != SourceKindFile || src.Location() != "app.schema.json" {
		t.Fatalf("expected cleaned file source, got %#v", src)
	}
	if src := ParseSource("  "); src != nil {
		t.Fatalf("expected nil source for blank input")
	}
}
