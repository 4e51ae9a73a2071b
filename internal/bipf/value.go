package bipf

import "bytes"

// Kind identifies the variant held by a Value.
type Kind uint8

const (
	KindNone Kind = iota
	KindInt
	KindString
	KindBytes
	KindList
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindInt:
		return "int"
	case KindString:
		return "string"
	case KindBytes:
		return "bytes"
	case KindList:
		return "list"
	case KindBool:
		return "bool"
	default:
		return "unknown"
	}
}

// Value is an immutable tagged union. The zero Value is None.
type Value struct {
	kind Kind
	i    int64
	s    string
	b    []byte
	l    []Value
}

func None() Value            { return Value{} }
func Int(n int64) Value      { return Value{kind: KindInt, i: n} }
func String(s string) Value  { return Value{kind: KindString, s: s} }
func Bool(v bool) Value      { return Value{kind: KindBool, i: b2i(v)} }
func Bytes(b []byte) Value   { return Value{kind: KindBytes, b: bytes.Clone(nonNil(b))} }
func List(vs ...Value) Value { return Value{kind: KindList, l: append([]Value{}, vs...)} }

// Kind reports the variant.
func (v Value) Kind() Kind { return v.kind }

func (v Value) IsNone() bool { return v.kind == KindNone }
func (v Value) IsList() bool { return v.kind == KindList }

// AsInt returns the integer and whether v holds one.
func (v Value) AsInt() (int64, bool) { return v.i, v.kind == KindInt }

// AsString returns the text and whether v holds one.
func (v Value) AsString() (string, bool) { return v.s, v.kind == KindString }

// AsBytes returns a copy of the byte string and whether v holds one.
func (v Value) AsBytes() ([]byte, bool) {
	if v.kind != KindBytes {
		return nil, false
	}
	return bytes.Clone(v.b), true
}

// AsBool returns the boolean and whether v holds one.
func (v Value) AsBool() (bool, bool) { return v.i != 0, v.kind == KindBool }

// Len returns the number of list elements, 0 for non-lists.
func (v Value) Len() int { return len(v.l) }

// Index returns the i-th list element, or None when out of range.
func (v Value) Index(i int) Value {
	if v.kind != KindList || i < 0 || i >= len(v.l) {
		return None()
	}
	return v.l[i]
}

// Items returns a copy of the list elements.
func (v Value) Items() []Value {
	if v.kind != KindList {
		return nil
	}
	return append([]Value(nil), v.l...)
}

// Equal reports deep equality.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNone:
		return true
	case KindInt, KindBool:
		return v.i == o.i
	case KindString:
		return v.s == o.s
	case KindBytes:
		return bytes.Equal(v.b, o.b)
	case KindList:
		if len(v.l) != len(o.l) {
			return false
		}
		for i := range v.l {
			if !v.l[i].Equal(o.l[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// AppTag returns the application-type tag of a record: the first list
// element when it is a short string.
func AppTag(v Value) (string, bool) {
	if v.kind != KindList || len(v.l) == 0 {
		return "", false
	}
	s, ok := v.l[0].AsString()
	if !ok || len(s) == 0 || len(s) > 16 {
		return "", false
	}
	return s, true
}

func b2i(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

func nonNil(b []byte) []byte {
	if b == nil {
		return []byte{}
	}
	return b
}
