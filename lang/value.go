package lang

import (
	"context"
	"fmt"
	"maps"
	"math"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Kind identifies the variant held by a [Value].
type Kind uint8

const (
	// KindUndefined is the absence of a value (a failed lookup). It is never
	// the same as [KindNull], which is a present but empty value.
	KindUndefined Kind = iota

	// KindNull represents an explicitly empty value.
	KindNull

	// KindBool represents a boolean.
	KindBool

	// KindInt represents a signed 64-bit integer.
	KindInt

	// KindFloat represents a 64-bit floating-point number.
	KindFloat

	// KindString represents a character string.
	KindString

	// KindTime represents an instant in time.
	KindTime

	// KindList represents an ordered collection of values.
	KindList

	// KindMap represents a collection of values keyed by name.
	KindMap

	// KindCallable represents a deferred function (see [Callable]).
	KindCallable

	// KindRaw represents a raw-HTML payload that bypasses escaping.
	KindRaw

	// KindExternal represents any other Go value. It participates in
	// resolution and formatting only through the capability interfaces
	// [ImplicitValuer], [PropertyGetter], [Formatter], and [Sequence].
	KindExternal
)

// String returns a string representation of the value kind.
func (k Kind) String() string {
	switch k {
	case KindUndefined:
		return "Undefined"

	case KindNull:
		return "Null"

	case KindBool:
		return "Bool"

	case KindInt:
		return "Int"

	case KindFloat:
		return "Float"

	case KindString:
		return "String"

	case KindTime:
		return "Time"

	case KindList:
		return "List"

	case KindMap:
		return "Map"

	case KindCallable:
		return "Callable"

	case KindRaw:
		return "Raw"

	case KindExternal:
		return "External"

	default:
		return "Unknown"
	}
}

// RawHTML is a pre-sanitized HTML fragment. Values of this type are written
// to rendered output verbatim, without escaping and without re-parsing.
type RawHTML string

// Value is the closed tagged union of everything the reducer operates on.
//
// The zero Value is undefined.
type Value struct {
	kind Kind
	data any
}

// Undefined returns the undefined value (not-found).
func Undefined() Value { return Value{} }

// Null returns the present-but-empty value.
func Null() Value { return Value{kind: KindNull} }

// Bool returns a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, data: b} }

// Int returns an integer value.
func Int(i int64) Value { return Value{kind: KindInt, data: i} }

// Float returns a floating-point value.
func Float(f float64) Value { return Value{kind: KindFloat, data: f} }

// String returns a string value.
func String(s string) Value { return Value{kind: KindString, data: s} }

// Time returns a time value.
func Time(t time.Time) Value { return Value{kind: KindTime, data: t} }

// List returns an ordered collection of values.
func List(elems ...Value) Value {
	if elems == nil {
		elems = []Value{}
	}

	return Value{kind: KindList, data: elems}
}

// Map returns a keyed collection of values.
func Map(m map[string]Value) Value {
	if m == nil {
		m = map[string]Value{}
	}

	return Value{kind: KindMap, data: m}
}

// Func returns a callable value.
func Func(c Callable) Value {
	if c == nil {
		return Null()
	}

	return Value{kind: KindCallable, data: c}
}

// Raw returns a raw-HTML payload.
func Raw(html string) Value { return Value{kind: KindRaw, data: RawHTML(html)} }

// External returns a value wrapping an arbitrary Go value.
func External(x any) Value {
	if x == nil {
		return Null()
	}

	return Value{kind: KindExternal, data: x}
}

// ValueOf converts a native Go value into a [Value].
//
// Decoded YAML and JSON documents (maps with string keys, slices, numbers of
// any width, strings, booleans, and timestamps) convert structurally.
// Functions with the [CallableFunc] signature become callables. Anything else
// becomes an external value.
func ValueOf(x any) Value {
	switch v := x.(type) {
	case nil:
		return Null()
	case Value:
		return v
	case *Value:
		if v == nil {
			return Null()
		}

		return *v
	case string:
		return String(v)
	case bool:
		return Bool(v)
	case int:
		return Int(int64(v))
	case int8:
		return Int(int64(v))
	case int16:
		return Int(int64(v))
	case int32:
		return Int(int64(v))
	case int64:
		return Int(v)
	case uint:
		return unsigned(uint64(v))
	case uint8:
		return Int(int64(v))
	case uint16:
		return Int(int64(v))
	case uint32:
		return Int(int64(v))
	case uint64:
		return unsigned(v)
	case float32:
		return Float(float64(v))
	case float64:
		return Float(v)
	case time.Time:
		return Time(v)
	case *time.Time:
		if v == nil {
			return Null()
		}

		return Time(*v)
	case RawHTML:
		return Raw(string(v))
	case Callable:
		return Func(v)
	case func(ctx context.Context, param Value, scope *Scope) (Value, error):
		return Func(CallableFunc(v))
	case []Value:
		return List(slices.Clone(v)...)
	case []any:
		elems := make([]Value, len(v))
		for i, e := range v {
			elems[i] = ValueOf(e)
		}

		return List(elems...)
	case []string:
		elems := make([]Value, len(v))
		for i, e := range v {
			elems[i] = String(e)
		}

		return List(elems...)
	case map[string]Value:
		return Map(maps.Clone(v))
	case map[string]any:
		m := make(map[string]Value, len(v))
		for k, e := range v {
			m[k] = ValueOf(e)
		}

		return Map(m)
	}

	return reflectValue(x)
}

// unsigned converts an unsigned integer, promoting to float when it does not
// fit in an int64.
func unsigned(u uint64) Value {
	if u > math.MaxInt64 {
		return Float(float64(u))
	}

	return Int(int64(u))
}

// reflectValue handles slices, arrays, and maps of arbitrary element types.
func reflectValue(x any) Value {
	rv := reflect.ValueOf(x)

	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return List()
		}

		elems := make([]Value, rv.Len())
		for i := range elems {
			elems[i] = ValueOf(rv.Index(i).Interface())
		}

		return List(elems...)

	case reflect.Map:
		m := make(map[string]Value, rv.Len())

		iter := rv.MapRange()
		for iter.Next() {
			m[fmt.Sprint(iter.Key().Interface())] = ValueOf(iter.Value().Interface())
		}

		return Map(m)

	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return Null()
		}
	}

	return External(x)
}

// Kind returns the variant held by v.
func (v Value) Kind() Kind { return v.kind }

// IsDefined reports whether v is anything other than [KindUndefined].
func (v Value) IsDefined() bool { return v.kind != KindUndefined }

// IsNull reports whether v is [KindNull].
func (v Value) IsNull() bool { return v.kind == KindNull }

// AsBool returns the boolean held by v.
func (v Value) AsBool() (bool, bool) {
	b, ok := v.data.(bool)

	return b, ok && v.kind == KindBool
}

// AsInt returns the integer held by v.
func (v Value) AsInt() (int64, bool) {
	i, ok := v.data.(int64)

	return i, ok && v.kind == KindInt
}

// AsFloat returns the number held by v as a float. Integers convert.
func (v Value) AsFloat() (float64, bool) {
	switch v.kind {
	case KindFloat:
		return v.data.(float64), true
	case KindInt:
		return float64(v.data.(int64)), true
	default:
		return 0, false
	}
}

// AsString returns the string held by v.
func (v Value) AsString() (string, bool) {
	s, ok := v.data.(string)

	return s, ok && v.kind == KindString
}

// AsTime returns the time held by v.
func (v Value) AsTime() (time.Time, bool) {
	t, ok := v.data.(time.Time)

	return t, ok && v.kind == KindTime
}

// AsList returns the elements held by v. The slice must not be modified.
func (v Value) AsList() ([]Value, bool) {
	l, ok := v.data.([]Value)

	return l, ok && v.kind == KindList
}

// AsMap returns the entries held by v. The map must not be modified.
func (v Value) AsMap() (map[string]Value, bool) {
	m, ok := v.data.(map[string]Value)

	return m, ok && v.kind == KindMap
}

// AsCallable returns the callable held by v.
func (v Value) AsCallable() (Callable, bool) {
	c, ok := v.data.(Callable)

	return c, ok && v.kind == KindCallable
}

// AsRaw returns the raw-HTML payload held by v.
func (v Value) AsRaw() (RawHTML, bool) {
	r, ok := v.data.(RawHTML)

	return r, ok && v.kind == KindRaw
}

// External returns the Go value wrapped by an external value, or nil.
func (v Value) External() any {
	if v.kind != KindExternal {
		return nil
	}

	return v.data
}

// String returns the default textual representation of v.
func (v Value) String() string {
	switch v.kind {
	case KindUndefined, KindNull:
		return ""

	case KindBool:
		return strconv.FormatBool(v.data.(bool))

	case KindInt:
		return strconv.FormatInt(v.data.(int64), 10)

	case KindFloat:
		return strconv.FormatFloat(v.data.(float64), 'f', -1, 64)

	case KindString:
		return v.data.(string)

	case KindTime:
		return v.data.(time.Time).Format(time.RFC3339)

	case KindList:
		elems := v.data.([]Value)
		parts := make([]string, len(elems))

		for i, e := range elems {
			parts[i] = e.String()
		}

		return strings.Join(parts, ",")

	case KindMap:
		m := v.data.(map[string]Value)
		parts := make([]string, 0, len(m))

		for _, k := range sortedKeys(m) {
			parts = append(parts, m[k].String())
		}

		return strings.Join(parts, ",")

	case KindCallable:
		return "<callable>"

	case KindRaw:
		return string(v.data.(RawHTML))

	default:
		return fmt.Sprint(v.data)
	}
}

// Native converts v back into plain Go data: lists become []any, maps become
// map[string]any, and external values are unwrapped.
func (v Value) Native() any {
	switch v.kind {
	case KindUndefined, KindNull:
		return nil

	case KindList:
		elems := v.data.([]Value)
		out := make([]any, len(elems))

		for i, e := range elems {
			out[i] = e.Native()
		}

		return out

	case KindMap:
		m := v.data.(map[string]Value)
		out := make(map[string]any, len(m))

		for k, e := range m {
			out[k] = e.Native()
		}

		return out

	case KindRaw:
		return string(v.data.(RawHTML))

	default:
		return v.data
	}
}
