package observability

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Limits applied by Serializer.
const (
	MaxDepth        = 3
	MaxItems        = 10
	MaxKeys         = 20
	maxPointerChain = 8

	// DefaultMaxString is used when a Serializer has no positive MaxString.
	DefaultMaxString = 300

	// MaxDepthMarker replaces any value nested deeper than MaxDepth.
	MaxDepthMarker = "<max-depth>"
)

// Kind identifies the variant held by a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindUint
	KindFloat
	KindString
	KindBytes
	KindImage
	KindSequence
	KindMapping
	KindOpaque
)

var kindNames = [...]string{
	KindNull:     "null",
	KindBool:     "bool",
	KindInt:      "int",
	KindUint:     "uint",
	KindFloat:    "float",
	KindString:   "string",
	KindBytes:    "bytes",
	KindImage:    "image",
	KindSequence: "sequence",
	KindMapping:  "mapping",
	KindOpaque:   "opaque",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// Field is one entry of a mapping Value.
type Field struct {
	Key   string
	Value Value
}

// Value is a bounded, loggable rendering of an arbitrary Go value. The zero
// Value is null.
type Value struct {
	kind   Kind
	b      bool
	i      int64
	u      uint64
	f      float64
	s      string
	n      int
	items  []Value
	fields []Field
}

// ImagePayload is implemented by results that carry encoded image data. Such
// values are logged as a format and size summary only.
type ImagePayload interface {
	ImageFormat() string
	ImageByteSize() int
}

func Null() Value              { return Value{} }
func Bool(v bool) Value        { return Value{kind: KindBool, b: v} }
func Int(v int64) Value        { return Value{kind: KindInt, i: v} }
func Uint(v uint64) Value      { return Value{kind: KindUint, u: v} }
func Float(v float64) Value    { return Value{kind: KindFloat, f: v} }
func String(v string) Value    { return Value{kind: KindString, s: v} }
func Bytes(length int) Value   { return Value{kind: KindBytes, n: length} }
func Opaque(text string) Value { return Value{kind: KindOpaque, s: text} }

// Image summarises an encoded image.
func Image(format string, byteSize int) Value {
	return Value{kind: KindImage, s: format, n: byteSize}
}

// Sequence builds an ordered Value.
func Sequence(items ...Value) Value {
	return Value{kind: KindSequence, items: items}
}

// Mapping builds a keyed Value that keeps the given field order.
func Mapping(fields ...Field) Value {
	return Value{kind: KindMapping, fields: fields}
}

func (v Value) Kind() Kind { return v.kind }

// Str returns the text of a string or opaque value, or the format of an image.
func (v Value) Str() string { return v.s }

// Len returns the length of a bytes summary or the byte size of an image summary.
func (v Value) Len() int { return v.n }

func (v Value) Items() []Value  { return v.items }
func (v Value) Fields() []Field { return v.fields }

// Get returns the value stored under key in a mapping.
func (v Value) Get(key string) (Value, bool) {
	for _, f := range v.fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return Value{}, false
}

// Interface converts v into plain Go values (nil, bool, numbers, string,
// []any, map[string]any).
func (v Value) Interface() any {
	switch v.kind {
	case KindBool:
		return v.b
	case KindInt:
		return v.i
	case KindUint:
		return v.u
	case KindFloat:
		return v.f
	case KindString, KindOpaque:
		return v.s
	case KindBytes:
		return map[string]any{"kind": "bytes", "length": v.n}
	case KindImage:
		return map[string]any{"kind": "image", "format": v.s, "byteSize": v.n}
	case KindSequence:
		out := make([]any, len(v.items))
		for i, item := range v.items {
			out[i] = item.Interface()
		}
		return out
	case KindMapping:
		out := make(map[string]any, len(v.fields))
		for _, f := range v.fields {
			out[f.Key] = f.Value.Interface()
		}
		return out
	default:
		return nil
	}
}

// MarshalJSON renders v. Mappings keep their field order and non-finite
// floats are written as strings so the output is always valid JSON.
func (v Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	v.appendJSON(&buf)
	return buf.Bytes(), nil
}

func (v Value) appendJSON(buf *bytes.Buffer) {
	switch v.kind {
	case KindNull:
		buf.WriteString("null")
	case KindBool:
		buf.WriteString(strconv.FormatBool(v.b))
	case KindInt:
		buf.WriteString(strconv.FormatInt(v.i, 10))
	case KindUint:
		buf.WriteString(strconv.FormatUint(v.u, 10))
	case KindFloat:
		if math.IsNaN(v.f) || math.IsInf(v.f, 0) {
			writeJSONString(buf, strconv.FormatFloat(v.f, 'g', -1, 64))
			return
		}
		buf.WriteString(strconv.FormatFloat(v.f, 'g', -1, 64))
	case KindString, KindOpaque:
		writeJSONString(buf, v.s)
	case KindBytes:
		buf.WriteString(`{"kind":"bytes","length":`)
		buf.WriteString(strconv.Itoa(v.n))
		buf.WriteByte('}')
	case KindImage:
		buf.WriteString(`{"kind":"image","format":`)
		writeJSONString(buf, v.s)
		buf.WriteString(`,"byteSize":`)
		buf.WriteString(strconv.Itoa(v.n))
		buf.WriteByte('}')
	case KindSequence:
		buf.WriteByte('[')
		for i, item := range v.items {
			if i > 0 {
				buf.WriteByte(',')
			}
			item.appendJSON(buf)
		}
		buf.WriteByte(']')
	case KindMapping:
		buf.WriteByte('{')
		for i, f := range v.fields {
			if i > 0 {
				buf.WriteByte(',')
			}
			writeJSONString(buf, f.Key)
			buf.WriteByte(':')
			f.Value.appendJSON(buf)
		}
		buf.WriteByte('}')
	default:
		buf.WriteString("null")
	}
}

// writeJSONString quotes s without HTML escaping so markers like <max-depth>
// stay readable in log lines.
func writeJSONString(buf *bytes.Buffer, s string) {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		buf.WriteString(`""`)
		return
	}
	buf.Truncate(buf.Len() - 1)
}

// Serializer converts arbitrary values into bounded Values. It never panics
// and has no error path: anything it does not understand becomes opaque text.
type Serializer struct {
	// MaxString is the number of characters kept from each string.
	MaxString int

	// Redactor, when set, masks secrets before strings are truncated. The
	// truncation marker then counts characters of the redacted text.
	Redactor *Redactor
}

// Serialize converts v at depth zero.
func (s Serializer) Serialize(v any) (out Value) {
	defer func() {
		if r := recover(); r != nil {
			out = Opaque(s.truncate(fmt.Sprintf("<unserializable %T>", v)))
		}
	}()
	return s.value(v, 0)
}

// TruncateString applies the string limit to text.
func (s Serializer) TruncateString(text string) string {
	return s.truncate(text)
}

func (s Serializer) limit() int {
	if s.MaxString <= 0 {
		return DefaultMaxString
	}
	return s.MaxString
}

func (s Serializer) truncate(text string) string {
	text = s.Redactor.Redact(text)
	limit := s.limit()
	if len(text) <= limit {
		return text
	}
	count := utf8.RuneCountInString(text)
	if count <= limit {
		return text
	}
	cut := 0
	for i := range text {
		if cut == limit {
			return fmt.Sprintf("%s...<truncated %d chars>", text[:i], count-limit)
		}
		cut++
	}
	return text
}

func (s Serializer) value(v any, depth int) Value {
	if depth > MaxDepth {
		return String(MaxDepthMarker)
	}
	if out, ok := s.known(v); ok {
		return out
	}
	return s.reflectValue(reflect.ValueOf(v), depth)
}

// known handles the concrete types that need no reflection.
func (s Serializer) known(v any) (Value, bool) {
	switch t := v.(type) {
	case nil:
		return Null(), true
	case string:
		return String(s.truncate(t)), true
	case bool:
		return Bool(t), true
	case int:
		return Int(int64(t)), true
	case int64:
		return Int(t), true
	case float64:
		return Float(t), true
	case []byte:
		return Bytes(len(t)), true
	case json.RawMessage:
		return Bytes(len(t)), true
	case ImagePayload:
		if isNilPointer(t) {
			return Null(), true
		}
		return Image(t.ImageFormat(), t.ImageByteSize()), true
	case error:
		if isNilPointer(t) {
			return Null(), true
		}
		return String(s.truncate(t.Error())), true
	}
	return Value{}, false
}

func isNilPointer(v any) bool {
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}

func (s Serializer) reflectValue(rv reflect.Value, depth int) Value {
	if rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		for hops := 0; rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface; hops++ {
			if rv.IsNil() {
				return Null()
			}
			if hops >= maxPointerChain {
				return s.opaque(rv)
			}
			rv = rv.Elem()
		}
		if rv.CanInterface() {
			if out, ok := s.known(rv.Interface()); ok {
				return out
			}
		}
	}

	switch rv.Kind() {
	case reflect.Invalid:
		return Null()
	case reflect.Bool:
		return Bool(rv.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Int(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return Uint(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return Float(rv.Float())
	case reflect.String:
		return String(s.truncate(rv.String()))
	case reflect.Slice:
		if rv.IsNil() {
			return Null()
		}
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return Bytes(rv.Len())
		}
		return s.sequence(rv, depth)
	case reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return Bytes(rv.Len())
		}
		return s.sequence(rv, depth)
	case reflect.Map:
		if rv.IsNil() {
			return Null()
		}
		return s.mapping(rv, depth)
	case reflect.Struct:
		if rv.CanInterface() {
			if str, ok := rv.Interface().(fmt.Stringer); ok && !hasExportedFields(rv.Type()) {
				return Opaque(s.truncate(str.String()))
			}
		}
		return s.structFields(rv, depth)
	default:
		return s.opaque(rv)
	}
}

func (s Serializer) sequence(rv reflect.Value, depth int) Value {
	n := rv.Len()
	kept := min(n, MaxItems)
	items := make([]Value, 0, kept+1)
	for i := 0; i < kept; i++ {
		items = append(items, s.element(rv.Index(i), depth+1))
	}
	if n > MaxItems {
		items = append(items, String(fmt.Sprintf("...<%d more>", n-MaxItems)))
	}
	return Sequence(items...)
}

func (s Serializer) mapping(rv reflect.Value, depth int) Value {
	type entry struct {
		key string
		val reflect.Value
	}
	entries := make([]entry, 0, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		entries = append(entries, entry{key: s.truncate(keyString(iter.Key())), val: iter.Value()})
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].key < entries[j].key })

	kept := min(len(entries), MaxKeys)
	fields := make([]Field, 0, kept+1)
	for _, e := range entries[:kept] {
		fields = append(fields, Field{Key: e.key, Value: s.element(e.val, depth+1)})
	}
	if len(entries) > MaxKeys {
		fields = append(fields, Field{Key: "...", Value: String(fmt.Sprintf("<%d more keys>", len(entries)-MaxKeys))})
	}
	return Mapping(fields...)
}

func (s Serializer) structFields(rv reflect.Value, depth int) Value {
	rt := rv.Type()
	fields := make([]Field, 0, min(rt.NumField(), MaxKeys+1))
	total := 0
	for i := 0; i < rt.NumField(); i++ {
		name, ok := FieldName(rt.Field(i))
		if !ok {
			continue
		}
		total++
		if total > MaxKeys {
			continue
		}
		fields = append(fields, Field{Key: name, Value: s.element(rv.Field(i), depth+1)})
	}
	if total > MaxKeys {
		fields = append(fields, Field{Key: "...", Value: String(fmt.Sprintf("<%d more keys>", total-MaxKeys))})
	}
	return Mapping(fields...)
}

func (s Serializer) element(rv reflect.Value, depth int) Value {
	if depth > MaxDepth {
		return String(MaxDepthMarker)
	}
	if rv.CanInterface() {
		return s.value(rv.Interface(), depth)
	}
	return s.reflectValue(rv, depth)
}

func (s Serializer) opaque(rv reflect.Value) Value {
	if rv.CanInterface() {
		return Opaque(s.truncate(fmt.Sprintf("%v", rv.Interface())))
	}
	return Opaque(s.truncate("<" + rv.Type().String() + ">"))
}

// FieldName returns the log key of an exported struct field: its json tag
// name, or the Go name when untagged. ok is false for unexported or "-" fields.
func FieldName(f reflect.StructField) (name string, ok bool) {
	if !f.IsExported() {
		return "", false
	}
	tag := f.Tag.Get("json")
	if tag == "-" {
		return "", false
	}
	name, _, _ = strings.Cut(tag, ",")
	if name == "" {
		name = f.Name
	}
	return name, true
}

func hasExportedFields(rt reflect.Type) bool {
	for i := 0; i < rt.NumField(); i++ {
		if rt.Field(i).IsExported() {
			return true
		}
	}
	return false
}

func keyString(k reflect.Value) string {
	if k.Kind() == reflect.String {
		return k.String()
	}
	if k.CanInterface() {
		return fmt.Sprint(k.Interface())
	}
	return k.String()
}
