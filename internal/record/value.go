// Package record decodes loosely-typed Firestore field values into display text.
package record

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// Kind identifies which tag of a Firestore value was populated.
type Kind int

const (
	KindOther Kind = iota
	KindString
	KindInteger
	KindDouble
	KindBoolean
	KindArray
	KindMap
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInteger:
		return "integer"
	case KindDouble:
		return "double"
	case KindBoolean:
		return "boolean"
	case KindArray:
		return "array"
	case KindMap:
		return "map"
	default:
		return "other"
	}
}

// Value is a single tagged field value as delivered by the record store.
// Scalar holds the source text for string, integer, double and boolean kinds.
// Raw holds the source representation and backs the textual fallback.
type Value struct {
	Kind   Kind
	Scalar string
	Raw    string
	Elems  []Value
	Fields []Field
}

// Field is a named Value. Field order is the order of the source mapping.
type Field struct {
	Name  string
	Value Value
}

// Text returns the display form of v. It never returns an empty string for
// non-scalar kinds.
func (v Value) Text() string {
	switch v.Kind {
	case KindString, KindInteger, KindDouble, KindBoolean:
		return v.Scalar
	}
	if v.Raw != "" {
		return v.Raw
	}
	return "{}"
}

// Lookup returns the named member of a map value.
func (v Value) Lookup(name string) (Value, bool) {
	for _, f := range v.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return Value{}, false
}

// ParseFields walks a Firestore "fields" JSON object in document order.
func ParseFields(raw []byte) ([]Field, error) {
	if !gjson.ValidBytes(raw) {
		return nil, fmt.Errorf("fields payload is not valid JSON")
	}
	obj := gjson.ParseBytes(raw)
	if !obj.IsObject() {
		return nil, fmt.Errorf("fields payload must be a JSON object, got %s", obj.Type)
	}
	return parseObject(obj), nil
}

func parseObject(obj gjson.Result) []Field {
	var fields []Field
	obj.ForEach(func(key, val gjson.Result) bool {
		fields = append(fields, Field{Name: key.String(), Value: parseValue(val)})
		return true
	})
	return fields
}

func parseValue(val gjson.Result) Value {
	v := Value{Kind: KindOther, Raw: val.Get("@ugly").Raw}
	if !val.IsObject() {
		return v
	}
	if s := val.Get("stringValue"); s.Exists() {
		v.Kind, v.Scalar = KindString, s.String()
		return v
	}
	if n := val.Get("integerValue"); n.Exists() {
		v.Kind, v.Scalar = KindInteger, literal(n)
		return v
	}
	if n := val.Get("doubleValue"); n.Exists() {
		v.Kind, v.Scalar = KindDouble, literal(n)
		return v
	}
	if b := val.Get("booleanValue"); b.Exists() {
		v.Kind, v.Scalar = KindBoolean, strconv.FormatBool(b.Bool())
		return v
	}
	if a := val.Get("arrayValue"); a.Exists() {
		v.Kind = KindArray
		for _, elem := range a.Get("values").Array() {
			v.Elems = append(v.Elems, parseValue(elem))
		}
		return v
	}
	if m := val.Get("mapValue"); m.Exists() {
		v.Kind = KindMap
		if fields := m.Get("fields"); fields.IsObject() {
			v.Fields = parseObject(fields)
		}
		return v
	}
	return v
}

// literal keeps numbers exactly as written by the source. Firestore sends
// integers as JSON strings and doubles as JSON numbers.
func literal(r gjson.Result) string {
	if r.Type == gjson.String {
		return r.String()
	}
	return r.Raw
}

// FromNative adapts snapshot data returned by the Firestore SDK. Keys are
// emitted in sorted order since SDK maps carry none.
func FromNative(data map[string]any) []Field {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fields := make([]Field, 0, len(keys))
	for _, k := range keys {
		fields = append(fields, Field{Name: k, Value: nativeValue(data[k])})
	}
	return fields
}

func nativeValue(x any) Value {
	switch t := x.(type) {
	case string:
		return Value{Kind: KindString, Scalar: t, Raw: strconv.Quote(t)}
	case int64:
		s := strconv.FormatInt(t, 10)
		return Value{Kind: KindInteger, Scalar: s, Raw: s}
	case int:
		s := strconv.Itoa(t)
		return Value{Kind: KindInteger, Scalar: s, Raw: s}
	case float64:
		s := strconv.FormatFloat(t, 'g', -1, 64)
		return Value{Kind: KindDouble, Scalar: s, Raw: s}
	case bool:
		s := strconv.FormatBool(t)
		return Value{Kind: KindBoolean, Scalar: s, Raw: s}
	case []any:
		v := Value{Kind: KindArray}
		parts := make([]string, 0, len(t))
		for _, e := range t {
			ev := nativeValue(e)
			v.Elems = append(v.Elems, ev)
			parts = append(parts, ev.Text())
		}
		v.Raw = "[" + strings.Join(parts, ", ") + "]"
		return v
	case map[string]any:
		v := Value{Kind: KindMap, Fields: FromNative(t)}
		parts := make([]string, 0, len(v.Fields))
		for _, f := range v.Fields {
			parts = append(parts, f.Name+": "+f.Value.Text())
		}
		v.Raw = "{" + strings.Join(parts, ", ") + "}"
		return v
	case time.Time:
		return Value{Kind: KindOther, Raw: t.UTC().Format(time.RFC3339Nano)}
	case nil:
		return Value{Kind: KindOther, Raw: "null"}
	default:
		return Value{Kind: KindOther, Raw: fmt.Sprintf("%v", t)}
	}
}
