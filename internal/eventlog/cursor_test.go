package eventlog

import "testing"

func TestCommitCursorIdempotent(t *testing.T) {
	l := newTestLog(t)
	seqs := appendN(t, l, "a", "b")
	tok1, tok2 := TokenFromSeq(seqs[0]), TokenFromSeq(seqs[1])

	if err := l.CommitCursor("g1", tok1); err != nil {
		t.Fatalf("commit1: %v", err)
	}
	if got, ok := l.GetCursor("g1"); !ok || got.Seq() != tok1.Seq() {
		t.Fatalf("cursor mismatch")
	}
	if err := l.CommitCursor("g1", TokenFromSeq(0)); err != nil {
		t.Fatalf("commit lower: %v", err)
	}
	if got, _ := l.GetCursor("g1"); got.Seq() != tok1.Seq() {
		t.Fatalf("cursor regressed")
	}
	if err := l.CommitCursor("g1", tok2); err != nil {
		t.Fatalf("commit2: %v", err)
	}
	groups, err := l.Groups()
	if err != nil || groups["g1"] != tok2.Seq() {
		t.Fatalf("groups: %v %v", groups, err)
	}
}

func TestCursorPersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	db := openTestDB(t, dir)
	l, _ := OpenLog(db, "ui")
	seqs := appendN(t, l, "a")
	if err := l.CommitCursor("g1", TokenFromSeq(seqs[0])); err != nil {
		t.Fatalf("commit: %v", err)
	}
	_ = db.Close()

	db2 := openTestDB(t, dir)
	defer db2.Close()
	l2, _ := OpenLog(db2, "ui")
	if got, ok := l2.GetCursor("g1"); !ok || got.Seq() != seqs[0] {
		t.Fatalf("cursor not persisted")
	}
}
