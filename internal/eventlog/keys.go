package eventlog

import (
	"encoding/binary"
)

var (
	logPrefix  = []byte("log/")
	metaSuffix = []byte("/m")
	entrySeg   = []byte("/e/")
	cursorSeg  = []byte("/c/")
)

func appendBE8(dst []byte, v uint64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	return append(dst, b[:]...)
}

func keyBase(name string, extra int) []byte {
	k := make([]byte, 0, len(logPrefix)+len(name)+extra)
	k = append(k, logPrefix...)
	return append(k, name...)
}

// KeyLogMeta builds the metadata key for a log.
func KeyLogMeta(name string) []byte {
	return append(keyBase(name, len(metaSuffix)), metaSuffix...)
}

// KeyLogEntry builds the entry key with a big-endian sequence for proper ordering.
func KeyLogEntry(name string, seq uint64) []byte {
	k := append(keyBase(name, len(entrySeg)+8), entrySeg...)
	return appendBE8(k, seq)
}

// KeyCursor builds the durable cursor key for a reader group.
func KeyCursor(name, group string) []byte {
	k := append(keyBase(name, len(cursorSeg)+len(group)), cursorSeg...)
	return append(k, group...)
}

// KeyCursorPrefix covers every cursor of a log.
func KeyCursorPrefix(name string) []byte {
	return append(keyBase(name, len(cursorSeg)), cursorSeg...)
}

func entryBounds(name string) (low, high []byte) {
	low = KeyLogEntry(name, 0)
	high = append(KeyLogEntry(name, ^uint64(0)), 0x00)
	return low, high
}

func seqFromKey(k []byte) uint64 {
	return binary.BigEndian.Uint64(k[len(k)-8:])
}
