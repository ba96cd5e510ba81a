package officexmlparser

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/dlclark/regexp2"
	"github.com/goccy/go-json"
	"github.com/johbar/office-metadata-service/pkg/dateparser"
)

// ValueType is the variant held by a TypedValue.
type ValueType int

const (
	TypeText ValueType = iota
	TypeNumber
	TypeBoolean
	TypeTimestamp
)

var valueTypeNames = [...]string{"text", "number", "boolean", "timestamp"}

func (t ValueType) String() string {
	if int(t) < len(valueTypeNames) {
		return valueTypeNames[t]
	}
	return fmt.Sprintf("ValueType(%d)", int(t))
}

// TypedValue is a decoded custom property value.
// Only the field belonging to Type is meaningful.
type TypedValue struct {
	Type   ValueType
	Text   string
	Number float64
	Bool   bool
	Time   time.Time
}

func TextValue(s string) TypedValue         { return TypedValue{Type: TypeText, Text: s} }
func NumberValue(f float64) TypedValue      { return TypedValue{Type: TypeNumber, Number: f} }
func BooleanValue(b bool) TypedValue        { return TypedValue{Type: TypeBoolean, Bool: b} }
func TimestampValue(t time.Time) TypedValue { return TypedValue{Type: TypeTimestamp, Time: t} }

// Value returns the active variant as string, float64, bool or time.Time.
func (v TypedValue) Value() any {
	switch v.Type {
	case TypeNumber:
		return v.Number
	case TypeBoolean:
		return v.Bool
	case TypeTimestamp:
		return v.Time
	}
	return v.Text
}

func (v TypedValue) String() string {
	switch v.Type {
	case TypeNumber:
		return strconv.FormatFloat(v.Number, 'f', -1, 64)
	case TypeBoolean:
		return strconv.FormatBool(v.Bool)
	case TypeTimestamp:
		return v.Time.Format(time.RFC3339)
	}
	return v.Text
}

type typedValueJSON struct {
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value"`
}

func (v TypedValue) MarshalJSON() ([]byte, error) {
	var raw []byte
	var err error
	if v.Type == TypeTimestamp {
		raw, err = json.Marshal(v.Time.Format(time.RFC3339Nano))
	} else {
		raw, err = json.Marshal(v.Value())
	}
	if err != nil {
		return nil, err
	}
	return json.Marshal(typedValueJSON{Type: v.Type.String(), Value: raw})
}

func (v *TypedValue) UnmarshalJSON(data []byte) error {
	var tv typedValueJSON
	if err := json.Unmarshal(data, &tv); err != nil {
		return err
	}
	switch tv.Type {
	case "text":
		*v = TypedValue{Type: TypeText}
		return json.Unmarshal(tv.Value, &v.Text)
	case "number":
		*v = TypedValue{Type: TypeNumber}
		return json.Unmarshal(tv.Value, &v.Number)
	case "boolean":
		*v = TypedValue{Type: TypeBoolean}
		return json.Unmarshal(tv.Value, &v.Bool)
	case "timestamp":
		var s string
		if err := json.Unmarshal(tv.Value, &s); err != nil {
			return err
		}
		t, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return err
		}
		*v = TimestampValue(t)
		return nil
	}
	return fmt.Errorf("unknown value type %q", tv.Type)
}

// decodeFunc turns raw text into a value. ok is false if the value is to be dropped.
type decodeFunc func(text string) (v TypedValue, ok bool)

// Each type family has its own failure policy:
// text never fails (but empty text is dropped), booleans never fail,
// numbers are dropped and dates degrade to text, even when empty.

func decodeText(text string) (TypedValue, bool) {
	if text == "" {
		return TypedValue{}, false
	}
	return TextValue(text), true
}

func decodeBoolean(text string) (TypedValue, bool) {
	return BooleanValue(strings.EqualFold(text, "true")), true
}

func decodeNumber(text string) (TypedValue, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return TypedValue{}, false
	}
	return NumberValue(f), true
}

func decodeTimestampOrText(text string) (TypedValue, bool) {
	t, err := dateparser.ToTime(text)
	if err != nil {
		return TextValue(text), true
	}
	return TimestampValue(t), true
}

// odfValueTypes maps office:value-type / meta:value-type attribute values.
// Unknown types (percentage, currency, ...) are kept as text.
var odfValueTypes = map[string]decodeFunc{
	"string":  decodeText,
	"boolean": decodeBoolean,
	"float":   decodeNumber,
	"date":    decodeTimestampOrText,
	"time":    decodeTimestampOrText,
}

func decodeOdfValue(valueType, text string) (TypedValue, bool) {
	if decode, ok := odfValueTypes[valueType]; ok {
		return decode(text)
	}
	return decodeText(text)
}

// variantTypes maps the element names of the docPropsVTypes schema
// used in docProps/custom.xml. Order matters: first match wins.
var variantTypes = []struct {
	tag    *regexp2.Regexp
	decode decodeFunc
}{
	{regexp2.MustCompile(`^vt:bool$`, regexp2.None), decodeBoolean},
	{regexp2.MustCompile(`^vt:(?:u?i[1248]|u?int|r[48]|decimal)$`, regexp2.None), decodeNumber},
	{regexp2.MustCompile(`^vt:(?:filetime|date)$`, regexp2.None), decodeTimestampOrText},
}

func decodeVariantValue(tag, text string) (TypedValue, bool) {
	for _, vt := range variantTypes {
		// MatchString only fails on MatchTimeout, which is not set
		if ok, _ := vt.tag.MatchString(tag); ok {
			return vt.decode(text)
		}
	}
	return decodeText(text)
}
