package schema

import (
	"os"
	"strings"
	"testing"
)

// The model package's golden fixture doubles as the schema conformance
// fixture: one valid single-run document.
func validDoc(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile("../model/testdata/complete_document.golden")
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	return string(data)
}

func TestValidate_ConformingDocument(t *testing.T) {
	if err := Validate([]byte(validDoc(t))); err != nil {
		t.Errorf("Validate() failed for a conforming document: %v", err)
	}
}

func TestValidate_RejectsViolations(t *testing.T) {
	doc := validDoc(t)

	tests := []struct {
		name string
		old  string
		new  string
	}{
		{"unknown technology", `"technology":"simulator"`, `"technology":"analog"`},
		{"unknown relation type", `"relation_type":"wasGeneratedBy"`, `"relation_type":"wasAttributedTo"`},
		{"wrong prov mode", `"prov_mode":"lean"`, `"prov_mode":"full"`},
		{"empty device id", `"device_id":"sim1","provider"`, `"device_id":"","provider"`},
		{"zero shots", `"num_shots":1024`, `"num_shots":0`},
		{"negative count", `"counts":{"00":512,"11":512}`, `"counts":{"00":-1,"11":1025}`},
		{"string shots", `"num_shots":1024`, `"num_shots":"many"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mutated := strings.Replace(doc, tt.old, tt.new, 1)
			if mutated == doc {
				t.Fatalf("mutation %q not applied; fixture changed?", tt.old)
			}
			if err := Validate([]byte(mutated)); err == nil {
				t.Error("Validate() accepted a non-conforming document")
			}
		})
	}
}

func TestValidate_MissingRequiredField(t *testing.T) {
	doc := strings.Replace(validDoc(t),
		`"model_version":"1.0",`, "", 1)
	if err := Validate([]byte(doc)); err == nil {
		t.Error("Validate() accepted a document without model_version")
	}
}

func TestValidate_TraceListForm(t *testing.T) {
	// compilation_trace may be an array of traces instead of a bare object.
	doc := validDoc(t)
	start := strings.Index(doc, `"compilation_trace":`)
	if start < 0 {
		t.Fatal("fixture missing compilation_trace")
	}
	objStart := start + len(`"compilation_trace":`)
	objEnd := strings.Index(doc, `,"execution_context"`)
	traceObj := doc[objStart:objEnd]

	listDoc := doc[:objStart] + "[" + traceObj + "]" + doc[objEnd:]
	if err := Validate([]byte(listDoc)); err != nil {
		t.Errorf("Validate() rejected the array trace form: %v", err)
	}
}

func TestValidate_MalformedJSON(t *testing.T) {
	if err := Validate([]byte(`{"model_version":`)); err == nil {
		t.Error("Validate() accepted malformed JSON")
	}
}

func TestValidate_OpenProviderMaps(t *testing.T) {
	// Free-form maps admit arbitrary provider fields.
	doc := strings.Replace(validDoc(t),
		`"operational_parameters":{}`,
		`"operational_parameters":{"max_shots":100000,"pulse_support":true}`, 1)
	if err := Validate([]byte(doc)); err != nil {
		t.Errorf("Validate() rejected open provider fields: %v", err)
	}
}
