package ui

import (
	"encoding/json"
	"testing"
)

func entryCall(t *testing.T, seq uint64, fn, app string) Call {
	t.Helper()
	args, err := json.Marshal([]any{EntryObject{
		Header: EntryHeader{FID: "@feed.ed25519", Ref: "cmVm", Seq: 1},
		Body:   []any{app, "hello"},
	}})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return Call{Seq: seq, Func: fn, Args: args}
}

func TestFilterMatches(t *testing.T) {
	f, err := NewFilter(`func == "new_in_order_event" && app == "KAN"`)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if !f.Match(entryCall(t, 1, "new_in_order_event", "KAN")) {
		t.Fatalf("expected match")
	}
	if f.Match(entryCall(t, 2, "new_event", "KAN")) {
		t.Fatalf("func mismatch matched")
	}
	if f.Match(entryCall(t, 3, "new_in_order_event", "TAV")) {
		t.Fatalf("app mismatch matched")
	}
}

func TestFilterOverSeqAndFid(t *testing.T) {
	f, err := NewFilter(`seq > 5 && fid.startsWith("@feed")`)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if f.Match(entryCall(t, 5, "new_event", "TAV")) || !f.Match(entryCall(t, 6, "new_event", "TAV")) {
		t.Fatalf("seq gate")
	}
}

func TestEmptyFilterMatchesAll(t *testing.T) {
	f, err := NewFilter("  ")
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if !f.Match(Call{Func: "anything"}) {
		t.Fatalf("zero filter must match")
	}
}

func TestFilterRejectsBadExpression(t *testing.T) {
	if _, err := NewFilter(`func ==`); err == nil {
		t.Fatalf("expected compile error")
	}
	if _, err := NewFilter(`unknown_var == 1`); err == nil {
		t.Fatalf("expected check error")
	}
}

func TestFilterSkipsUndecodableArgs(t *testing.T) {
	f, err := NewFilter(`func == "new_event"`)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if !f.Match(Call{Seq: 1, Func: "new_event", Args: json.RawMessage("[]")}) {
		t.Fatalf("expected match")
	}
	if f.Match(Call{Seq: 2, Func: "new_event", Args: json.RawMessage("{")}) {
		t.Fatalf("malformed args matched")
	}
}
