package eventlog

import "testing"

func TestRecordRoundTrip(t *testing.T) {
	enc := EncodeRecord([]byte("hdr"), []byte("payload"))
	dec, ok := DecodeRecord(enc)
	if !ok || string(dec.Header) != "hdr" || string(dec.Payload) != "payload" {
		t.Fatalf("round trip: %+v %v", dec, ok)
	}
}

func TestRecordRejectsCorruption(t *testing.T) {
	enc := EncodeRecord([]byte("hdr"), []byte("payload"))
	enc[len(enc)-6] ^= 0x01
	if _, ok := DecodeRecord(enc); ok {
		t.Fatalf("expected crc mismatch")
	}
	if _, ok := DecodeRecord([]byte{0x7f, 0, 0, 0, 0}); ok {
		t.Fatalf("expected header length overflow")
	}
}
