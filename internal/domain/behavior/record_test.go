package behavior

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRecordCloneIsDeep(t *testing.T) {
	rec := NewRecord()
	rec.SetFloat("value", 10)
	rec["nested"] = Record{"inner": "x"}
	rec["plain"] = map[string]any{"inner": "y"}

	clone := rec.Clone()
	clone.SetFloat("value", 20)
	clone["nested"].(Record).SetString("inner", "changed")
	clone["plain"].(Record).SetString("inner", "changed")

	if rec.Float("value", 0) != 10 {
		t.Fatalf("clone mutation leaked into original value")
	}
	if rec["nested"].(Record).String("inner", "") != "x" {
		t.Fatalf("clone mutation leaked into nested record")
	}
	if rec["plain"].(map[string]any)["inner"] != "y" {
		t.Fatalf("clone mutation leaked into nested map")
	}
}

func TestRecordEqualTreatsEmptyAsNil(t *testing.T) {
	var nilRec Record
	if !NewRecord().Equal(nilRec) {
		t.Fatalf("empty record should equal nil record")
	}
	if !nilRec.Equal(NewRecord()) {
		t.Fatalf("nil record should equal empty record")
	}
}

func TestRecordEqualAfterJSONRoundTrip(t *testing.T) {
	rec := NewRecord()
	rec.SetFloat("value", 42.5)
	rec.SetInt("steps", 7)
	rec.SetBool("adult", true)
	rec.SetString("name", "n")

	raw, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back Record
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if !rec.Equal(back) {
		t.Fatalf("record not equal after round trip: %s", cmp.Diff(rec, back))
	}
	if back.Int("steps", 0) != 7 {
		t.Fatalf("Int(steps)=%d want 7", back.Int("steps", 0))
	}
}

func TestRecordAccessorFallbacks(t *testing.T) {
	rec := NewRecord()
	rec["wrong"] = []string{"not a number"}

	if got := rec.Float("missing", 1.5); got != 1.5 {
		t.Fatalf("Float fallback=%v want 1.5", got)
	}
	if got := rec.Float("wrong", 2.5); got != 2.5 {
		t.Fatalf("Float wrong-type fallback=%v want 2.5", got)
	}
	if got := rec.Int("missing", 3); got != 3 {
		t.Fatalf("Int fallback=%d want 3", got)
	}
	if got := rec.Bool("missing", true); got != true {
		t.Fatalf("Bool fallback=%v want true", got)
	}
	if got := rec.String("missing", "d"); got != "d" {
		t.Fatalf("String fallback=%q want d", got)
	}
}
