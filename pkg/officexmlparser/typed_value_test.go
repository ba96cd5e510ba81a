package officexmlparser

import (
	"testing"
	"time"

	"github.com/goccy/go-json"
)

func TestDecodeVariantValue(t *testing.T) {
	tests := []struct {
		tag, text string
		want      TypedValue
		wantOk    bool
	}{
		{"vt:bool", "TRUE", BooleanValue(true), true},
		{"vt:bool", "no", BooleanValue(false), true},
		{"vt:bool", "", BooleanValue(false), true},
		{"vt:bool", " true", BooleanValue(false), true},
		{"vt:i1", "-3", NumberValue(-3), true},
		{"vt:i8", "9000000000", NumberValue(9e9), true},
		{"vt:ui4", "4", NumberValue(4), true},
		{"vt:int", "5", NumberValue(5), true},
		{"vt:uint", "6", NumberValue(6), true},
		{"vt:r4", "1e3", NumberValue(1000), true},
		{"vt:r8", "abc", TypedValue{}, false},
		{"vt:r8", "", TypedValue{}, false},
		{"vt:r8", "Inf", TypedValue{}, false},
		{"vt:decimal", "2.25", NumberValue(2.25), true},
		{"vt:i3", "3", TextValue("3"), true},
		{"vt:filetime", "", TextValue(""), true},
		{"vt:date", "  ", TextValue("  "), true},
		{"vt:date", "tomorrow-ish", TextValue("tomorrow-ish"), true},
		{"vt:lpwstr", "hello", TextValue("hello"), true},
		{"vt:lpstr", "", TypedValue{}, false},
		{"vt:bstr", "x", TextValue("x"), true},
		{"lpwstr", "no prefix", TextValue("no prefix"), true},
	}
	for _, tt := range tests {
		t.Run(tt.tag+"/"+tt.text, func(t *testing.T) {
			got, ok := decodeVariantValue(tt.tag, tt.text)
			if ok != tt.wantOk {
				t.Fatalf("decodeVariantValue(%q, %q) ok = %v, want %v", tt.tag, tt.text, ok, tt.wantOk)
			}
			if got != tt.want {
				t.Errorf("decodeVariantValue(%q, %q) = %+v, want %+v", tt.tag, tt.text, got, tt.want)
			}
		})
	}
}

func TestDecodeOdfValue(t *testing.T) {
	tests := []struct {
		valueType, text string
		want            TypedValue
		wantOk          bool
	}{
		{"string", "text", TextValue("text"), true},
		{"boolean", "True", BooleanValue(true), true},
		{"boolean", "yes", BooleanValue(false), true},
		{"float", "3.25", NumberValue(3.25), true},
		{"float", "three", TypedValue{}, false},
		{"date", "not-a-date", TextValue("not-a-date"), true},
		{"time", "PT01H02M03S", TextValue("PT01H02M03S"), true},
		{"currency", "9.99", TextValue("9.99"), true},
	}
	for _, tt := range tests {
		t.Run(tt.valueType+"/"+tt.text, func(t *testing.T) {
			got, ok := decodeOdfValue(tt.valueType, tt.text)
			if ok != tt.wantOk || got != tt.want {
				t.Errorf("decodeOdfValue(%q, %q) = %+v, %v, want %+v, %v", tt.valueType, tt.text, got, ok, tt.want, tt.wantOk)
			}
		})
	}
	got, ok := decodeOdfValue("date", "2024-02-29T10:00:00Z")
	if !ok || got.Type != TypeTimestamp || !got.Time.Equal(time.Date(2024, 2, 29, 10, 0, 0, 0, time.UTC)) {
		t.Errorf("expected timestamp, got %+v", got)
	}
}

func TestTypedValueJSON(t *testing.T) {
	props := CustomProperties{
		"a": TextValue("x"),
		"b": NumberValue(1.5),
		"c": BooleanValue(true),
		"d": TimestampValue(time.Date(2024, 2, 29, 10, 0, 0, 0, time.UTC)),
	}
	data, err := json.Marshal(props)
	if err != nil {
		t.Fatal(err)
	}
	want := `{"a":{"type":"text","value":"x"},"b":{"type":"number","value":1.5},"c":{"type":"boolean","value":true},"d":{"type":"timestamp","value":"2024-02-29T10:00:00Z"}}`
	if string(data) != want {
		t.Errorf("expected %s, got %s", want, data)
	}
	var back CustomProperties
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	for k, v := range props {
		if back[k].String() != v.String() || back[k].Type != v.Type {
			t.Errorf("%s: expected %v, got %v", k, v, back[k])
		}
	}
}

func TestTimestampJSONKeepsInvalidText(t *testing.T) {
	m := Metadata{Created: newTimestamp("someday"), Modified: newTimestamp("2024-01-02T03:04:05Z")}
	data, err := json.Marshal(m)
	if err != nil {
		t.Fatal(err)
	}
	want := `{"created":"someday","modified":"2024-01-02T03:04:05Z"}`
	if string(data) != want {
		t.Errorf("expected %s, got %s", want, data)
	}
	var back Metadata
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	if back.Created == nil || back.Created.Valid || back.Created.Raw != "someday" {
		t.Errorf("expected invalid created timestamp, got %+v", back.Created)
	}
	if back.Modified == nil || !back.Modified.Valid {
		t.Errorf("expected valid modified timestamp, got %+v", back.Modified)
	}
}
