package headlessterm

import "testing"

func TestSynchronizedUpdateWindow(t *testing.T) {
	term := New(WithSize(24, 80))

	if term.SyncUpdateActive(0) {
		t.Error("no window open yet")
	}

	term.BeginSynchronizedUpdate(100)
	if !term.SyncUpdateActive(200) {
		t.Error("window should be active before the deadline")
	}
	if term.SuspendUpdateUntil() != 100+syncUpdateMaxMS {
		t.Errorf("expected deadline %d, got %d", 100+syncUpdateMaxMS, term.SuspendUpdateUntil())
	}

	term.EndSynchronizedUpdate()
	if term.SyncUpdateActive(200) {
		t.Error("end marker should force a flush")
	}
	if term.SuspendUpdateUntil() != 0 {
		t.Error("deadline should clear with the window")
	}
}

func TestSynchronizedUpdateExpiry(t *testing.T) {
	term := New(WithSize(24, 80))

	term.BeginSynchronizedUpdate(0)
	if !term.SyncUpdateActive(syncUpdateMaxMS - 1) {
		t.Error("window should hold until the cap")
	}
	if term.SyncUpdateActive(syncUpdateMaxMS) {
		t.Error("window past its deadline must tear down")
	}
	// Expiry is a full teardown, not a decrement.
	if term.SyncUpdateActive(0) {
		t.Error("expired window must stay closed")
	}
}

func TestSynchronizedUpdateNesting(t *testing.T) {
	term := New(WithSize(24, 80))

	term.BeginSynchronizedUpdate(0)
	term.BeginSynchronizedUpdate(10)
	term.EndSynchronizedUpdate()
	if !term.SyncUpdateActive(20) {
		t.Error("inner end must not close the outer window")
	}
	term.EndSynchronizedUpdate()
	if term.SyncUpdateActive(20) {
		t.Error("outermost end closes the window")
	}
}

func TestSynchronizedUpdateNeverDefersInput(t *testing.T) {
	term := New(WithSize(24, 80))

	term.BeginSynchronizedUpdate(0)
	term.WriteString("hello")
	if content := term.LineContent(0); content != "hello" {
		t.Errorf("interpretation must continue during the window, got %q", content)
	}
	term.EndSynchronizedUpdate()
}

func TestEndSynchronizedUpdateUnderflow(t *testing.T) {
	term := New(WithSize(24, 80))

	term.EndSynchronizedUpdate() // stray end marker
	term.BeginSynchronizedUpdate(0)
	if !term.SyncUpdateActive(1) {
		t.Error("a stray end marker must not wedge later windows")
	}
}

type countingRenderer struct {
	updates     int
	invalidates int
}

func (r *countingRenderer) Invalidate(row0, col0, row1, col1 int) { r.invalidates++ }
func (r *countingRenderer) ScheduleUpdate()                       { r.updates++ }

func TestSynchronizedUpdateDefersPaints(t *testing.T) {
	r := &countingRenderer{}
	term := New(WithSize(24, 80), WithRenderer(r))

	term.BeginSynchronizedUpdate(0)
	term.WriteString("lots of ")
	term.WriteString("output")
	if r.updates != 0 {
		t.Errorf("no paints may be scheduled inside the window, got %d", r.updates)
	}

	term.EndSynchronizedUpdate()
	if r.updates != 1 {
		t.Errorf("closing the window forces exactly one flush, got %d", r.updates)
	}
	if content := term.LineContent(0); content != "lots of output" {
		t.Errorf("interpretation was never deferred, got %q", content)
	}
}

func TestRendererScheduledOnDirtyWrite(t *testing.T) {
	r := &countingRenderer{}
	term := New(WithSize(24, 80), WithRenderer(r))

	term.WriteString("x")
	if r.updates == 0 {
		t.Error("a dirtying write schedules a paint")
	}
}
