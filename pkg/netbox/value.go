package netbox

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/valyala/fastjson"
)

// Kind identifies the variant held by a Value.
type Kind int

// Value kinds.
const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindList
	KindObject
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindList:
		return "list"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Value is a decoded JSON value: a scalar, a list of values or an object.
// Numbers keep their literal text so ids round-trip exactly.
type Value struct {
	kind    Kind
	boolean bool
	text    string
	list    []Value
	object  *Object
}

// NullValue returns the null value.
func NullValue() Value { return Value{kind: KindNull} }

// BoolValue wraps a bool.
func BoolValue(b bool) Value { return Value{kind: KindBool, boolean: b} }

// StringValue wraps a string.
func StringValue(s string) Value { return Value{kind: KindString, text: s} }

// NumberValue wraps a number given by its literal text.
func NumberValue(literal string) Value { return Value{kind: KindNumber, text: literal} }

// IntValue wraps an integer.
func IntValue(n int64) Value { return NumberValue(strconv.FormatInt(n, 10)) }

// ListValue wraps a list of values.
func ListValue(items ...Value) Value { return Value{kind: KindList, list: items} }

// ObjectValue wraps an object.
func ObjectValue(o *Object) Value {
	if o == nil {
		o = NewObject("")
	}

	return Value{kind: KindObject, object: o}
}

// Kind returns the variant held by v.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is JSON null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Bool returns the boolean value, false for other kinds.
func (v Value) Bool() bool { return v.kind == KindBool && v.boolean }

// Int parses a number value as int64.
func (v Value) Int() (int64, error) {
	if v.kind != KindNumber {
		return 0, fmt.Errorf("value of kind %s is not a number", v.kind)
	}

	n, err := strconv.ParseInt(v.text, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing integer %q: %w", v.text, err)
	}

	return n, nil
}

// Float parses a number value as float64.
func (v Value) Float() (float64, error) {
	if v.kind != KindNumber {
		return 0, fmt.Errorf("value of kind %s is not a number", v.kind)
	}

	f, err := strconv.ParseFloat(v.text, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing float %q: %w", v.text, err)
	}

	return f, nil
}

// List returns the list items, nil for other kinds.
func (v Value) List() []Value {
	if v.kind != KindList {
		return nil
	}

	return v.list
}

// Object returns the nested object, nil for other kinds.
func (v Value) Object() *Object {
	if v.kind != KindObject {
		return nil
	}

	return v.object
}

// Field reads a field of an object value. Reading a field of any other kind,
// or one that was never materialized, returns a MissingAttributeError.
func (v Value) Field(name string) (Value, error) {
	if v.kind != KindObject {
		return Value{}, &MissingAttributeError{Resource: v.kind.String(), Attribute: name}
	}

	return v.object.Field(name)
}

// String returns the text form: strings unquoted, numbers as written,
// everything else as JSON.
func (v Value) String() string {
	switch v.kind {
	case KindString, KindNumber:
		return v.text
	case KindNull:
		return "null"
	case KindBool:
		return strconv.FormatBool(v.boolean)
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return ""
		}

		return string(data)
	}
}

// Interface converts v into plain Go values: nil, bool, json.Number, string,
// []interface{} and map[string]interface{}.
func (v Value) Interface() interface{} {
	switch v.kind {
	case KindBool:
		return v.boolean
	case KindNumber:
		return json.Number(v.text)
	case KindString:
		return v.text
	case KindList:
		items := make([]interface{}, len(v.list))
		for i, item := range v.list {
			items[i] = item.Interface()
		}

		return items
	case KindObject:
		return v.object.Map()
	default:
		return nil
	}
}

// MarshalJSON implements json.Marshaler. Object fields keep their order.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNull:
		return []byte("null"), nil
	case KindBool:
		return []byte(strconv.FormatBool(v.boolean)), nil
	case KindNumber:
		return []byte(v.text), nil
	case KindString:
		return json.Marshal(v.text)
	case KindList:
		var sb strings.Builder

		sb.WriteByte('[')

		for i, item := range v.list {
			if i > 0 {
				sb.WriteByte(',')
			}

			data, err := item.MarshalJSON()
			if err != nil {
				return nil, err
			}

			sb.Write(data)
		}

		sb.WriteByte(']')

		return []byte(sb.String()), nil
	case KindObject:
		return v.object.MarshalJSON()
	default:
		return nil, fmt.Errorf("unknown value kind %d", v.kind)
	}
}

// NormalizeKey lowercases a JSON key and maps spaces to underscores.
func NormalizeKey(key string) string {
	return strings.ReplaceAll(strings.ToLower(key), " ", "_")
}

type objectField struct {
	key   string
	raw   string
	value Value
}

// Object is an ordered field set addressed by normalized key. Lookups are
// case-insensitive. Keys colliding after normalization overwrite each other.
type Object struct {
	name   string
	fields []objectField
	index  map[string]int
}

// NewObject returns an empty object. name is used in error messages.
func NewObject(name string) *Object {
	return &Object{name: name, index: make(map[string]int)}
}

// Set stores a field under its normalized key.
func (o *Object) Set(key string, value Value) {
	normalized := NormalizeKey(key)
	if i, ok := o.index[normalized]; ok {
		o.fields[i] = objectField{key: normalized, raw: key, value: value}

		return
	}

	o.index[normalized] = len(o.fields)
	o.fields = append(o.fields, objectField{key: normalized, raw: key, value: value})
}

// Get looks a field up by name.
func (o *Object) Get(name string) (Value, bool) {
	if o == nil {
		return Value{}, false
	}

	i, ok := o.index[NormalizeKey(name)]
	if !ok {
		return Value{}, false
	}

	return o.fields[i].value, true
}

// Field is Get with a MissingAttributeError for absent names.
func (o *Object) Field(name string) (Value, error) {
	value, ok := o.Get(name)
	if !ok {
		owner := ""
		if o != nil {
			owner = o.name
		}

		return Value{}, &MissingAttributeError{Resource: owner, Attribute: name}
	}

	return value, nil
}

// Has reports whether name was materialized.
func (o *Object) Has(name string) bool {
	_, ok := o.Get(name)

	return ok
}

// Keys returns the normalized keys in document order.
func (o *Object) Keys() []string {
	if o == nil {
		return nil
	}

	keys := make([]string, len(o.fields))
	for i, field := range o.fields {
		keys[i] = field.key
	}

	return keys
}

// RawKeys returns the keys as they appeared in the document.
func (o *Object) RawKeys() []string {
	if o == nil {
		return nil
	}

	keys := make([]string, len(o.fields))
	for i, field := range o.fields {
		keys[i] = field.raw
	}

	return keys
}

// GetRaw looks a field up by its exact document key.
func (o *Object) GetRaw(key string) (Value, bool) {
	if o == nil {
		return Value{}, false
	}

	for _, field := range o.fields {
		if field.raw == key {
			return field.value, true
		}
	}

	return Value{}, false
}

// Len returns the number of fields.
func (o *Object) Len() int {
	if o == nil {
		return 0
	}

	return len(o.fields)
}

// Map converts the object into a map of plain Go values.
func (o *Object) Map() map[string]interface{} {
	m := make(map[string]interface{}, o.Len())
	if o == nil {
		return m
	}

	for _, field := range o.fields {
		m[field.key] = field.value.Interface()
	}

	return m
}

// MarshalJSON implements json.Marshaler using the original keys.
func (o *Object) MarshalJSON() ([]byte, error) {
	var sb strings.Builder

	sb.WriteByte('{')

	if o != nil {
		for i, field := range o.fields {
			if i > 0 {
				sb.WriteByte(',')
			}

			key, err := json.Marshal(field.raw)
			if err != nil {
				return nil, err
			}

			sb.Write(key)
			sb.WriteByte(':')

			data, err := field.value.MarshalJSON()
			if err != nil {
				return nil, err
			}

			sb.Write(data)
		}
	}

	sb.WriteByte('}')

	return []byte(sb.String()), nil
}

// ParseValue decodes a JSON document into a Value tree.
func ParseValue(data []byte) (Value, error) {
	parsed, err := fastjson.ParseBytes(data)
	if err != nil {
		return Value{}, fmt.Errorf("parsing JSON: %w", err)
	}

	return fromFastJSON("", parsed), nil
}

func fromFastJSON(name string, v *fastjson.Value) Value {
	switch v.Type() {
	case fastjson.TypeObject:
		object := NewObject(name)
		v.GetObject().Visit(func(key []byte, child *fastjson.Value) {
			object.Set(string(key), fromFastJSON(NormalizeKey(string(key)), child))
		})

		return ObjectValue(object)
	case fastjson.TypeArray:
		children := v.GetArray()
		items := make([]Value, len(children))

		for i, child := range children {
			items[i] = fromFastJSON(name, child)
		}

		return ListValue(items...)
	case fastjson.TypeString:
		return StringValue(string(v.GetStringBytes()))
	case fastjson.TypeNumber:
		return NumberValue(string(v.MarshalTo(nil)))
	case fastjson.TypeTrue:
		return BoolValue(true)
	case fastjson.TypeFalse:
		return BoolValue(false)
	default:
		return NullValue()
	}
}

// ValueOf converts plain Go values into a Value. Maps are visited in sorted
// key order.
func ValueOf(x interface{}) Value {
	switch t := x.(type) {
	case nil:
		return NullValue()
	case Value:
		return t
	case *Object:
		return ObjectValue(t)
	case bool:
		return BoolValue(t)
	case string:
		return StringValue(t)
	case json.Number:
		return NumberValue(t.String())
	case int:
		return IntValue(int64(t))
	case int32:
		return IntValue(int64(t))
	case int64:
		return IntValue(t)
	case uint:
		return NumberValue(strconv.FormatUint(uint64(t), 10))
	case uint64:
		return NumberValue(strconv.FormatUint(t, 10))
	case float32:
		return NumberValue(strconv.FormatFloat(float64(t), 'f', -1, 32))
	case float64:
		return NumberValue(strconv.FormatFloat(t, 'f', -1, 64))
	case []interface{}:
		items := make([]Value, len(t))
		for i, item := range t {
			items[i] = ValueOf(item)
		}

		return ListValue(items...)
	case []string:
		items := make([]Value, len(t))
		for i, item := range t {
			items[i] = StringValue(item)
		}

		return ListValue(items...)
	case Payload:
		return ValueOf(map[string]interface{}(t))
	case map[string]interface{}:
		keys := make([]string, 0, len(t))
		for key := range t {
			keys = append(keys, key)
		}

		sort.Strings(keys)

		object := NewObject("")
		for _, key := range keys {
			object.Set(key, ValueOf(t[key]))
		}

		return ObjectValue(object)
	default:
		data, err := json.Marshal(t)
		if err != nil {
			return StringValue(fmt.Sprint(t))
		}

		parsed, err := ParseValue(data)
		if err != nil {
			return StringValue(fmt.Sprint(t))
		}

		return parsed
	}
}
