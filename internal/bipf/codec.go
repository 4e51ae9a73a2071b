package bipf

import (
	"encoding/binary"
	"errors"
	"fmt"
	"unicode/utf8"
)

const (
	tagString   = 0
	tagBytes    = 1
	tagInt      = 2
	tagList     = 4
	tagBoolNone = 6

	maxDepth = 128
)

// ErrDecode is wrapped by every decoding failure.
var ErrDecode = errors.New("bipf: decode")

// ErrEncode is returned when a value cannot be represented.
var ErrEncode = errors.New("bipf: encode")

// DecodeError locates a decoding failure.
type DecodeError struct {
	Offset int
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("bipf: decode at offset %d: %s", e.Offset, e.Reason)
}

func (e *DecodeError) Unwrap() error { return ErrDecode }

// Encode serializes v.
func Encode(v Value) ([]byte, error) {
	return appendValue(nil, v)
}

// MustEncode is Encode for values known to be representable. It panics otherwise.
func MustEncode(v Value) []byte {
	b, err := Encode(v)
	if err != nil {
		panic(err)
	}
	return b
}

func appendValue(dst []byte, v Value) ([]byte, error) {
	switch v.kind {
	case KindNone:
		return appendHeader(dst, 0, tagBoolNone), nil
	case KindBool:
		dst = appendHeader(dst, 1, tagBoolNone)
		return append(dst, byte(v.i)), nil
	case KindInt:
		body := encodeInt(v.i)
		dst = appendHeader(dst, len(body), tagInt)
		return append(dst, body...), nil
	case KindString:
		if !utf8.ValidString(v.s) {
			return nil, fmt.Errorf("%w: invalid utf-8 string", ErrEncode)
		}
		dst = appendHeader(dst, len(v.s), tagString)
		return append(dst, v.s...), nil
	case KindBytes:
		dst = appendHeader(dst, len(v.b), tagBytes)
		return append(dst, v.b...), nil
	case KindList:
		var body []byte
		for _, e := range v.l {
			var err error
			if body, err = appendValue(body, e); err != nil {
				return nil, err
			}
		}
		dst = appendHeader(dst, len(body), tagList)
		return append(dst, body...), nil
	default:
		return nil, fmt.Errorf("%w: unknown kind %d", ErrEncode, v.kind)
	}
}

func appendHeader(dst []byte, n int, tag uint64) []byte {
	return binary.AppendUvarint(dst, uint64(n)<<3|tag)
}

// encodeInt returns the shortest little-endian two's complement form of n.
func encodeInt(n int64) []byte {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(n))
	size := 8
	for size > 1 {
		top := buf[size-1]
		sign := buf[size-2] & 0x80
		if (top == 0x00 && sign == 0) || (top == 0xff && sign != 0) {
			size--
			continue
		}
		break
	}
	return append([]byte(nil), buf[:size]...)
}

// Decode parses exactly one value spanning all of b.
func Decode(b []byte) (Value, error) {
	v, n, err := decodeAt(b, 0, 0)
	if err != nil {
		return Value{}, err
	}
	if n != len(b) {
		return Value{}, &DecodeError{Offset: n, Reason: "trailing bytes"}
	}
	return v, nil
}

// decodeAt decodes the value starting at b[off:] and returns the offset just past it.
func decodeAt(b []byte, off, depth int) (Value, int, error) {
	if depth > maxDepth {
		return Value{}, 0, &DecodeError{Offset: off, Reason: "nesting too deep"}
	}
	h, hn := binary.Uvarint(b[off:])
	if hn <= 0 {
		return Value{}, 0, &DecodeError{Offset: off, Reason: "bad header"}
	}
	start := off + hn
	size := h >> 3
	if size > uint64(len(b)-start) {
		return Value{}, 0, &DecodeError{Offset: off, Reason: "length exceeds input"}
	}
	end := start + int(size)
	body := b[start:end]
	switch h & 7 {
	case tagString:
		if !utf8.Valid(body) {
			return Value{}, 0, &DecodeError{Offset: start, Reason: "invalid utf-8"}
		}
		return String(string(body)), end, nil
	case tagBytes:
		return Bytes(body), end, nil
	case tagInt:
		if len(body) == 0 || len(body) > 8 {
			return Value{}, 0, &DecodeError{Offset: start, Reason: "bad int width"}
		}
		return Int(decodeInt(body)), end, nil
	case tagList:
		items := []Value{}
		for pos := start; pos < end; {
			// Elements must not spill past the list body.
			item, next, err := decodeAt(b[:end], pos, depth+1)
			if err != nil {
				return Value{}, 0, err
			}
			items = append(items, item)
			pos = next
		}
		return Value{kind: KindList, l: items}, end, nil
	case tagBoolNone:
		switch len(body) {
		case 0:
			return None(), end, nil
		case 1:
			if body[0] > 1 {
				return Value{}, 0, &DecodeError{Offset: start, Reason: "bad bool"}
			}
			return Bool(body[0] == 1), end, nil
		}
		return Value{}, 0, &DecodeError{Offset: start, Reason: "bad boolnull width"}
	default:
		return Value{}, 0, &DecodeError{Offset: off, Reason: fmt.Sprintf("unsupported tag %d", h&7)}
	}
}

func decodeInt(body []byte) int64 {
	var buf [8]byte
	copy(buf[:], body)
	if body[len(body)-1]&0x80 != 0 {
		for i := len(body); i < 8; i++ {
			buf[i] = 0xff
		}
	}
	return int64(binary.LittleEndian.Uint64(buf[:]))
}
