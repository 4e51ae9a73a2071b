package bipf

import (
	"errors"
	"math"
	"testing"

	"github.com/go-playground/assert/v2"
)

func TestRoundTrip(t *testing.T) {
	values := []Value{
		None(),
		Int(0), Int(1), Int(-1), Int(127), Int(128), Int(-129), Int(1 << 40),
		Int(math.MaxInt64), Int(math.MinInt64),
		String(""), String("hello"), String("grüße"),
		Bytes(nil), Bytes([]byte{0, 1, 2, 0xff}),
		Bool(true), Bool(false),
		List(),
		List(String("TAV"), String("hi"), None(), Int(1700000000)),
		List(String("KAN"), Bytes([]byte{9}), List(Bytes([]byte{1}), Bytes([]byte{2})), List(List(Int(-5)))),
	}
	for _, v := range values {
		b, err := Encode(v)
		if err != nil {
			t.Fatalf("encode %v: %v", v.Kind(), err)
		}
		got, err := Decode(b)
		if err != nil {
			t.Fatalf("decode %x: %v", b, err)
		}
		if !got.Equal(v) {
			t.Fatalf("round trip mismatch for %x", b)
		}
	}
}

func TestKnownEncodings(t *testing.T) {
	assert.Equal(t, MustEncode(None()), []byte{0x06})
	assert.Equal(t, MustEncode(String("ab")), []byte{0x10, 'a', 'b'})
	assert.Equal(t, MustEncode(Int(1)), []byte{0x0a, 0x01})
	assert.Equal(t, MustEncode(Int(-1)), []byte{0x0a, 0xff})
	assert.Equal(t, MustEncode(Int(128)), []byte{0x12, 0x80, 0x00})
	assert.Equal(t, MustEncode(List(Int(1))), []byte{0x14, 0x0a, 0x01})
}

func TestDecodeAcceptsWideInts(t *testing.T) {
	// 4-byte little-endian int as written by fixed-width encoders.
	v, err := Decode([]byte{0x22, 0x05, 0x00, 0x00, 0x00})
	assert.Equal(t, err, nil)
	n, ok := v.AsInt()
	assert.Equal(t, ok, true)
	assert.Equal(t, n, int64(5))
}

func TestDecodeRejectsMalformed(t *testing.T) {
	cases := map[string][]byte{
		"empty":          {},
		"truncated body": {0x18, 'a', 'b'},
		"truncated list": {0x1c, 0x10, 'a'},
		"child spills":   {0x0c, 0x18, 'a', 'b', 'c'},
		"trailing":       {0x06, 0x06},
		"bad tag":        {0x03},
		"bad utf8":       {0x08, 0xff},
		"empty int":      {0x02},
		"wide int":       {0x4a, 1, 2, 3, 4, 5, 6, 7, 8, 9},
		"bad bool":       {0x0e, 0x02},
		"bad header":     {0xff, 0xff},
	}
	for name, b := range cases {
		v, err := Decode(b)
		if err == nil {
			t.Fatalf("%s: expected error", name)
		}
		if !errors.Is(err, ErrDecode) {
			t.Fatalf("%s: expected ErrDecode, got %v", name, err)
		}
		var de *DecodeError
		if !errors.As(err, &de) {
			t.Fatalf("%s: expected *DecodeError", name)
		}
		if !v.IsNone() {
			t.Fatalf("%s: partial value returned", name)
		}
	}
}

func TestDecodeRejectsDeepNesting(t *testing.T) {
	v := None()
	for i := 0; i < maxDepth+2; i++ {
		v = List(v)
	}
	if _, err := Decode(MustEncode(v)); !errors.Is(err, ErrDecode) {
		t.Fatalf("expected depth error, got %v", err)
	}
}

func TestEncodeRejectsInvalidUTF8(t *testing.T) {
	if _, err := Encode(List(String("\xff"))); !errors.Is(err, ErrEncode) {
		t.Fatalf("expected ErrEncode, got %v", err)
	}
}

func TestToStructured(t *testing.T) {
	v := List(String("TAV"), Bytes([]byte("hi")), None(), Int(42), Bool(true), List(String("x")))
	got := ToStructured(v)
	want := []any{"TAV", "aGk=", nil, int64(42), true, []any{"x"}}
	assert.Equal(t, got, want)

	pv, err := ToProto(v)
	assert.Equal(t, err, nil)
	assert.Equal(t, len(pv.GetListValue().GetValues()), 6)
	assert.Equal(t, pv.GetListValue().GetValues()[3].GetNumberValue(), float64(42))
}

func TestAppTag(t *testing.T) {
	tag, ok := AppTag(List(String("KAN"), None()))
	assert.Equal(t, ok, true)
	assert.Equal(t, tag, "KAN")
	_, ok = AppTag(List(Int(1)))
	assert.Equal(t, ok, false)
	_, ok = AppTag(String("KAN"))
	assert.Equal(t, ok, false)
}
