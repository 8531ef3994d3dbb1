package document

import (
	"encoding/json"
	"fmt"
	"time"
)

// Kind identifies which field of a Value is set.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindString
	KindInt
	KindFloat
	KindBool
	KindTime
	KindStrings
	KindRecords
	KindMap
	KindAny
)

var kindNames = [...]string{"invalid", "string", "int", "float", "bool", "time", "strings", "records", "map", "any"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", k)
}

// Value is a tagged union holding one metadata value.
// The zero Value is invalid.
type Value struct {
	kind Kind
	s    string
	i    int64
	f    float64
	b    bool
	t    time.Time
	ss   []string
	m    *Metadata
	a    any
}

func String(s string) Value { return Value{kind: KindString, s: s} }
func Int(n int) Value { return Value{kind: KindInt, i: int64(n)} }
func Float(f float64) Value { return Value{kind: KindFloat, f: f} }
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }
func Time(t time.Time) Value { return Value{kind: KindTime, t: t} }
func Map(m *Metadata) Value { return Value{kind: KindMap, m: m} }
func Any(v any) Value { return Value{kind: KindAny, a: v} }
func Strings(ss []string) Value { return Value{kind: KindStrings, ss: append([]string(nil), ss...)} }

// Records wraps a slice of structured records, e.g. []github.Issue.
// The slice is shared, not copied; callers must not modify it afterwards.
func Records(records any) Value { return Value{kind: KindRecords, a: records} }

// ValueOf infers the Kind of a plain Go value.
func ValueOf(v any) Value {
	switch x := v.(type) {
	case Value:
		return x
	case string:
		return String(x)
	case int:
		return Int(x)
	case int64:
		return Value{kind: KindInt, i: x}
	case float64:
		return Float(x)
	case bool:
		return Bool(x)
	case time.Time:
		return Time(x)
	case []string:
		return Strings(x)
	case *Metadata:
		return Map(x)
	default:
		return Any(v)
	}
}

// Kind returns the kind of value held.
func (v Value) Kind() Kind { return v.kind }

// IsValid reports whether the value holds anything.
func (v Value) IsValid() bool { return v.kind != KindInvalid }

func (v Value) AsString() (string, bool) { return v.s, v.kind == KindString }
func (v Value) AsInt() (int, bool) { return int(v.i), v.kind == KindInt }
func (v Value) AsFloat() (float64, bool) { return v.f, v.kind == KindFloat }
func (v Value) AsBool() (bool, bool) { return v.b, v.kind == KindBool }
func (v Value) AsTime() (time.Time, bool) { return v.t, v.kind == KindTime }
func (v Value) AsStrings() ([]string, bool) { return v.ss, v.kind == KindStrings }
func (v Value) AsMap() (*Metadata, bool) { return v.m, v.kind == KindMap }

// Interface returns the held value as a plain Go value.
func (v Value) Interface() any {
	switch v.kind {
	case KindString:
		return v.s
	case KindInt:
		return int(v.i)
	case KindFloat:
		return v.f
	case KindBool:
		return v.b
	case KindTime:
		return v.t
	case KindStrings:
		return v.ss
	case KindMap:
		return v.m
	case KindRecords, KindAny:
		return v.a
	default:
		return nil
	}
}

// Equal reports whether two values have the same kind and content.
// Records and Any values compare by their JSON encoding.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindInvalid:
		return true
	case KindString:
		return v.s == o.s
	case KindInt:
		return v.i == o.i
	case KindFloat:
		return v.f == o.f
	case KindBool:
		return v.b == o.b
	case KindTime:
		return v.t.Equal(o.t)
	case KindStrings:
		if len(v.ss) != len(o.ss) {
			return false
		}
		for i := range v.ss {
			if v.ss[i] != o.ss[i] {
				return false
			}
		}
		return true
	case KindMap:
		return v.m.Equal(o.m)
	default:
		a, errA := json.Marshal(v.a)
		b, errB := json.Marshal(o.a)
		return errA == nil && errB == nil && string(a) == string(b)
	}
}

// MarshalJSON encodes the held value.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Interface())
}

func (v Value) String() string {
	return fmt.Sprintf("%v", v.Interface())
}
