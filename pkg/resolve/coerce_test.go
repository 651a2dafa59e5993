package resolve_test

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-configform/pkg/resolve"
	"github.com/goliatone/go-configform/pkg/schema"
)

func TestCoerce(t *testing.T) {
	path := schema.Root().Child("field")

	cases := []struct {
		name     string
		leaf     *schema.LeafNode
		raw      string
		required bool
		want     any
		wantOK   bool
		wantErr  error
	}{
		{name: "absent optional", leaf: schema.NewLeaf(schema.LeafInteger), raw: ""},
		{name: "absent required string", leaf: schema.NewLeaf(schema.LeafString), required: true, wantErr: resolve.ErrRequiredFieldMissing},
		{name: "absent required boolean", leaf: schema.NewLeaf(schema.LeafBoolean), required: true, wantErr: resolve.ErrRequiredFieldMissing},
		{name: "absent required enum", leaf: schema.NewLeaf(schema.LeafString, "a"), required: true, wantErr: resolve.ErrRequiredFieldMissing},
		{name: "string verbatim", leaf: schema.NewLeaf(schema.LeafString), raw: "  spaced  ", want: "  spaced  ", wantOK: true},
		{name: "integer", leaf: schema.NewLeaf(schema.LeafInteger), raw: "42", want: int64(42), wantOK: true},
		{name: "integer with zero fraction", leaf: schema.NewLeaf(schema.LeafInteger), raw: "8.0", want: int64(8), wantOK: true},
		{name: "integer exponent", leaf: schema.NewLeaf(schema.LeafInteger), raw: "1e3", want: int64(1000), wantOK: true},
		{name: "integer negative", leaf: schema.NewLeaf(schema.LeafInteger), raw: "-7", want: int64(-7), wantOK: true},
		{name: "integer hex", leaf: schema.NewLeaf(schema.LeafInteger), raw: "0x1F", want: int64(31), wantOK: true},
		{name: "integer padded", leaf: schema.NewLeaf(schema.LeafInteger), raw: " 12 ", want: int64(12), wantOK: true},
		{name: "integer huge", leaf: schema.NewLeaf(schema.LeafInteger), raw: "1e20", want: 1e20, wantOK: true},
		{name: "integer fraction", leaf: schema.NewLeaf(schema.LeafInteger), raw: "8.5", wantErr: resolve.ErrExpectedInteger},
		{name: "integer text", leaf: schema.NewLeaf(schema.LeafInteger), raw: "eight", wantErr: resolve.ErrExpectedInteger},
		{name: "integer infinity", leaf: schema.NewLeaf(schema.LeafInteger), raw: "Infinity", wantErr: resolve.ErrExpectedInteger},
		{name: "integer whitespace", leaf: schema.NewLeaf(schema.LeafInteger), raw: "  ", wantErr: resolve.ErrExpectedInteger},
		{name: "number", leaf: schema.NewLeaf(schema.LeafNumber), raw: "0.75", want: 0.75, wantOK: true},
		{name: "number leading dot", leaf: schema.NewLeaf(schema.LeafNumber), raw: ".5", want: 0.5, wantOK: true},
		{name: "number trailing dot", leaf: schema.NewLeaf(schema.LeafNumber), raw: "5.", want: float64(5), wantOK: true},
		{name: "number plus sign", leaf: schema.NewLeaf(schema.LeafNumber), raw: "+2.5e-1", want: 0.25, wantOK: true},
		{name: "number negative zero", leaf: schema.NewLeaf(schema.LeafNumber), raw: "-0", want: float64(0), wantOK: true},
		{name: "number overflow", leaf: schema.NewLeaf(schema.LeafNumber), raw: "1e400", wantErr: resolve.ErrExpectedNumber},
		{name: "number nan", leaf: schema.NewLeaf(schema.LeafNumber), raw: "NaN", wantErr: resolve.ErrExpectedNumber},
		{name: "number underscore", leaf: schema.NewLeaf(schema.LeafNumber), raw: "1_000", wantErr: resolve.ErrExpectedNumber},
		{name: "number text", leaf: schema.NewLeaf(schema.LeafNumber), raw: "12abc", wantErr: resolve.ErrExpectedNumber},
		{name: "boolean true", leaf: schema.NewLeaf(schema.LeafBoolean), raw: "true", want: true, wantOK: true},
		{name: "boolean false", leaf: schema.NewLeaf(schema.LeafBoolean), raw: "false", want: false, wantOK: true},
		{name: "boolean yes", leaf: schema.NewLeaf(schema.LeafBoolean), raw: "yes", wantErr: resolve.ErrExpectedBoolean},
		{name: "enum keeps number type", leaf: schema.NewLeaf(schema.LeafString, float64(1), float64(2), float64(3)), raw: "2", want: float64(2), wantOK: true},
		{name: "enum beats type", leaf: schema.NewLeaf(schema.LeafInteger, "low", "high"), raw: "high", want: "high", wantOK: true},
		{name: "enum boolean literal", leaf: schema.NewLeaf(schema.LeafString, true, false), raw: "false", want: false, wantOK: true},
		{name: "enum null literal", leaf: schema.NewLeaf(schema.LeafString, nil, "x"), raw: "null", want: nil, wantOK: true},
		{name: "enum first match wins", leaf: schema.NewLeaf(schema.LeafString, float64(1), "1"), raw: "1", want: float64(1), wantOK: true},
		{name: "enum exact text", leaf: schema.NewLeaf(schema.LeafNumber, float64(1)), raw: "1.0", wantErr: resolve.ErrInvalidEnumValue},
		{name: "empty enum", leaf: schema.NewLeaf(schema.LeafString, []any{}...), raw: "x", wantErr: resolve.ErrInvalidEnumValue},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok, err := resolve.Coerce(tc.leaf, resolve.Text(tc.raw), path, tc.required)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("expected %v, got %v (value %#v)", tc.wantErr, err, got)
				}
				var resErr *resolve.Error
				if !errors.As(err, &resErr) || !resErr.Path.Equal(path) {
					t.Fatalf("expected error to carry path %s, got %#v", path, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if ok != tc.wantOK {
				t.Fatalf("expected ok=%v, got %v", tc.wantOK, ok)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("value mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCoerce_NegativeZeroIsNormalized(t *testing.T) {
	got, _, err := resolve.Coerce(schema.NewLeaf(schema.LeafNumber), resolve.Text("-0.0"), schema.Root().Child("n"), false)
	if err != nil {
		t.Fatalf("coerce: %v", err)
	}
	if math.Signbit(got.(float64)) {
		t.Fatalf("expected positive zero, got %v", got)
	}
}

func TestParseNumber(t *testing.T) {
	accepted := map[string]float64{
		"0":      0,
		"10":     10,
		"-1.25":  -1.25,
		"1E2":    100,
		"0b101":  5,
		"0o17":   15,
		"0XfF":   255,
		"\t3\n":  3,
		"007":    7,
		"1.5e+3": 1500,
	}
	for text, want := range accepted {
		got, ok := resolve.ParseNumber(text)
		if !ok || got != want {
			t.Fatalf("ParseNumber(%q) = %v, %v; want %v", text, got, ok, want)
		}
	}

	rejected := []string{"", " ", "-", ".", "e5", "1e", "0x", "-0x10", "0x1.8p1", "1,000", "Infinity", "-Infinity", "0b102", "1 2"}
	for _, text := range rejected {
		if got, ok := resolve.ParseNumber(text); ok {
			t.Fatalf("ParseNumber(%q) accepted as %v", text, got)
		}
	}
}

func TestInput(t *testing.T) {
	if !resolve.Text("").IsAbsent() {
		t.Fatalf("empty text must be absent")
	}
	if text, ok := resolve.Text(" ").Value(); !ok || text != " " {
		t.Fatalf("whitespace must be kept verbatim, got %q %v", text, ok)
	}
	if _, ok := resolve.Absent().Value(); ok {
		t.Fatalf("absent input reported a value")
	}

	in := resolve.Inputs{}
	path := schema.Root().Child("a").Child("b")
	in.Set(path, "v")
	if text, ok := in.Lookup(path).Value(); !ok || text != "v" {
		t.Fatalf("lookup returned %q %v", text, ok)
	}
	if !in.Lookup(schema.Root().Child("missing")).IsAbsent() {
		t.Fatalf("missing lookup must be absent")
	}
}

func TestErrorMessages(t *testing.T) {
	path := schema.Root().Child("a")
	cases := map[resolve.Code]string{
		resolve.CodeRequiredFieldMissing: "Required field is missing: $.a",
		resolve.CodeInvalidEnumValue:     "Invalid enum value for $.a.",
		resolve.CodeExpectedInteger:      "Expected integer at $.a.",
		resolve.CodeExpectedNumber:       "Expected number at $.a.",
		resolve.CodeExpectedBoolean:      "Expected boolean at $.a.",
		resolve.CodeMissingInput:         "Missing input for $.a.",
	}
	for code, want := range cases {
		err := resolve.NewError(code, path)
		if err.Error() != want {
			t.Fatalf("%s: expected %q, got %q", code, want, err.Error())
		}
		if err.Collaborator() != (code == resolve.CodeMissingInput) {
			t.Fatalf("%s: unexpected collaborator flag", code)
		}
	}
}
