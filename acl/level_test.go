package acl

import "testing"

func TestLevel_Ordering(t *testing.T) {
	if !(LevelNone < LevelRead && LevelRead < LevelWrite && LevelWrite < LevelAdmin) {
		t.Fatalf("levels are not ordered: none=%d read=%d write=%d admin=%d",
			LevelNone, LevelRead, LevelWrite, LevelAdmin)
	}
	if LevelRead != 1 || LevelWrite != 2 {
		t.Fatalf("wire values changed: read=%d write=%d", LevelRead, LevelWrite)
	}
}

func TestLevel_Valid(t *testing.T) {
	for _, l := range []Level{LevelNone, LevelRead, LevelWrite, LevelAdmin} {
		if !l.Valid() {
			t.Fatalf("expected %v to be valid", l)
		}
	}
	if Level(-1).Valid() || Level(4).Valid() {
		t.Fatalf("expected out-of-range levels to be invalid")
	}
}

func TestParseLevel_RoundTrip(t *testing.T) {
	for _, l := range []Level{LevelNone, LevelRead, LevelWrite, LevelAdmin} {
		got, err := ParseLevel(l.String())
		if err != nil {
			t.Fatalf("ParseLevel(%q): %v", l.String(), err)
		}
		if got != l {
			t.Fatalf("ParseLevel(%q)=%v, want %v", l.String(), got, l)
		}
	}
	if _, err := ParseLevel("owner"); err == nil {
		t.Fatalf("expected error for unknown level name")
	}
}
