package observe

import (
	"testing"

	"github.com/vango-dev/reactive/pkg/reactive"
)

func TestRecordReadSubscribesAndWriteReruns(t *testing.T) {
	e := reactive.NewEngine()
	x := NewRecord(WithEngine(e))
	x.Set("value", 1)

	var seen []any
	e.NewRunner(func() error {
		seen = append(seen, x.Get("value"))
		return nil
	})

	if len(seen) != 1 || seen[0] != any(1) {
		t.Fatalf("initial run saw %v", seen)
	}

	x.Set("value", 2)
	if len(seen) != 2 || seen[1] != any(2) {
		t.Fatalf("write did not re-run reader: %v", seen)
	}

	// The second run re-subscribed: a further write re-runs again.
	x.Set("value", 3)
	if len(seen) != 3 || seen[2] != any(3) {
		t.Errorf("re-subscription after re-run missing: %v", seen)
	}
}

func TestRecordEqualWriteDoesNotTrigger(t *testing.T) {
	e := reactive.NewEngine()
	x := NewRecord(WithEngine(e))
	x.Set("value", "same")

	runs := 0
	e.NewRunner(func() error {
		runs++
		_ = x.Get("value")
		return nil
	})

	x.Set("value", "same")
	if runs != 1 {
		t.Errorf("equal write triggered: %d runs", runs)
	}
}

// Branch re-derivation through real container reads: after the reader
// switches from a to b, writes to a no longer re-run it.
func TestRecordBranchRederivation(t *testing.T) {
	e := reactive.NewEngine()
	obj := NewRecord(WithEngine(e))
	obj.Set("flag", true)
	obj.Set("a", 1)
	obj.Set("b", 10)

	runs := 0
	e.NewRunner(func() error {
		runs++
		if obj.Get("flag").(bool) {
			_ = obj.Get("a")
		} else {
			_ = obj.Get("b")
		}
		return nil
	})

	if runs != 1 {
		t.Fatalf("got %d runs after create", runs)
	}

	obj.Set("a", 2)
	if runs != 2 {
		t.Fatalf("write to a did not re-run: %d runs", runs)
	}

	obj.Set("flag", false) // re-runs, reading b this time
	if runs != 3 {
		t.Fatalf("flag flip did not re-run: %d runs", runs)
	}

	obj.Set("a", 3)
	if runs != 3 {
		t.Errorf("stale branch subscription survived: %d runs", runs)
	}

	obj.Set("b", 11)
	if runs != 4 {
		t.Errorf("active branch subscription missing: %d runs", runs)
	}
}

// Shape readers wake on additions and deletions but not on plain sets of
// existing fields.
func TestRecordShapeFanOut(t *testing.T) {
	e := reactive.NewEngine()
	obj := NewRecord(WithEngine(e))
	obj.Set("existing", 1)

	iterRuns := 0
	e.NewRunner(func() error {
		iterRuns++
		_ = obj.Keys()
		return nil
	})

	keyRuns := 0
	e.NewRunner(func() error {
		keyRuns++
		_ = obj.Get("existing")
		return nil
	})

	obj.Set("fresh", 1) // addition
	if iterRuns != 2 {
		t.Errorf("addition did not wake shape reader: %d runs", iterRuns)
	}

	obj.Delete("fresh")
	if iterRuns != 3 {
		t.Errorf("deletion did not wake shape reader: %d runs", iterRuns)
	}

	obj.Set("existing", 2) // value change only
	if iterRuns != 3 {
		t.Errorf("object set woke shape reader: %d runs", iterRuns)
	}
	if keyRuns != 2 {
		t.Errorf("specific-key reader missed its set: %d runs", keyRuns)
	}
}

func TestRecordHasAndLen(t *testing.T) {
	e := reactive.NewEngine()
	obj := NewRecord(WithEngine(e))

	hasRuns := 0
	e.NewRunner(func() error {
		hasRuns++
		_ = obj.Has("maybe")
		return nil
	})
	lenRuns := 0
	e.NewRunner(func() error {
		lenRuns++
		_ = obj.Len()
		return nil
	})

	obj.Set("maybe", 1)
	if hasRuns != 2 {
		t.Errorf("existence reader not woken by add: %d runs", hasRuns)
	}
	if lenRuns != 2 {
		t.Errorf("len reader not woken by add: %d runs", lenRuns)
	}
}

func TestRecordClearWakesEveryone(t *testing.T) {
	e := reactive.NewEngine()
	obj := NewRecord(WithEngine(e))
	obj.Set("a", 1)

	aRuns, shapeRuns := 0, 0
	e.NewRunner(func() error {
		aRuns++
		_ = obj.Get("a")
		return nil
	})
	e.NewRunner(func() error {
		shapeRuns++
		_ = obj.Len()
		return nil
	})

	obj.Clear()
	if aRuns != 2 || shapeRuns != 2 {
		t.Errorf("clear fan-out incomplete: a=%d shape=%d", aRuns, shapeRuns)
	}

	// Clearing an already-empty record is silent.
	obj.Clear()
	if aRuns != 2 || shapeRuns != 2 {
		t.Errorf("empty clear triggered: a=%d shape=%d", aRuns, shapeRuns)
	}
}

func TestRecordDeleteAbsentIsNoop(t *testing.T) {
	e := reactive.NewEngine()
	obj := NewRecord(WithEngine(e))

	runs := 0
	e.NewRunner(func() error {
		runs++
		_ = obj.Len()
		return nil
	})

	obj.Delete("never-there")
	if runs != 1 {
		t.Errorf("absent delete triggered: %d runs", runs)
	}
}

func TestRecordRelease(t *testing.T) {
	e := reactive.NewEngine()
	obj := NewRecord(WithEngine(e))
	obj.Set("value", 1)

	runs := 0
	e.NewRunner(func() error {
		runs++
		_ = obj.Get("value")
		return nil
	})

	obj.Release()
	obj.Set("value", 2)
	if runs != 1 {
		t.Errorf("released record still triggers: %d runs", runs)
	}
}
