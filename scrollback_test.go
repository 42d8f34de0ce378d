package headlessterm

import (
	"bytes"
	"testing"
)

func TestMemoryScrollbackPushAndEvict(t *testing.T) {
	sb := NewMemoryScrollback(3)

	for i := 0; i < 5; i++ {
		line := []Cell{{Char: rune('a' + i)}}
		sb.Push(line)
	}

	if sb.Len() != 3 {
		t.Fatalf("expected capacity 3, got %d", sb.Len())
	}
	// Oldest two ('a', 'b') were dropped.
	if sb.Line(0)[0].Char != 'c' {
		t.Errorf("expected oldest retained line 'c', got %q", sb.Line(0)[0].Char)
	}
	if sb.Line(2)[0].Char != 'e' {
		t.Errorf("expected newest line 'e', got %q", sb.Line(2)[0].Char)
	}
}

func TestMemoryScrollbackCopiesLines(t *testing.T) {
	sb := NewMemoryScrollback(10)
	line := []Cell{{Char: 'x'}}
	sb.Push(line)

	// Mutating the caller's slice must not alias the stored entry.
	line[0].Char = 'y'
	if sb.Line(0)[0].Char != 'x' {
		t.Error("scrollback entries must never be mutated after insertion")
	}
}

func TestMemoryScrollbackOutOfRange(t *testing.T) {
	sb := NewMemoryScrollback(10)
	sb.Push([]Cell{{Char: 'a'}})

	if sb.Line(-1) != nil || sb.Line(1) != nil {
		t.Error("out-of-range indexes must return nil")
	}
}

func TestMemoryScrollbackSetMaxLines(t *testing.T) {
	sb := NewMemoryScrollback(0) // unbounded
	for i := 0; i < 10; i++ {
		sb.Push([]Cell{{Char: rune('0' + i)}})
	}

	sb.SetMaxLines(4)
	if sb.Len() != 4 {
		t.Fatalf("expected trim to 4, got %d", sb.Len())
	}
	if sb.Line(0)[0].Char != '6' {
		t.Errorf("trim must drop from the front, got %q", sb.Line(0)[0].Char)
	}
}

func TestMemoryScrollbackAsTerminalProvider(t *testing.T) {
	sb := NewMemoryScrollback(100)
	term := New(WithSize(3, 10), WithScrollback(sb))

	term.WriteString("one\r\ntwo\r\nthree\r\nfour\r\nfive")

	if sb.Len() != 2 {
		t.Fatalf("expected 2 evicted lines, got %d", sb.Len())
	}
	if sb.Line(0)[0].Char != 'o' {
		t.Errorf("expected 'one' evicted first, got %q", sb.Line(0)[0].Char)
	}
}

func TestHibernationPoolStoreLoad(t *testing.T) {
	pool, err := NewHibernationPool()
	if err != nil {
		t.Fatal(err)
	}
	defer pool.Close()

	data := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	seg, err := pool.Store(data)
	if err != nil {
		t.Fatal(err)
	}
	if seg.Length != int64(len(data)) {
		t.Errorf("expected length %d, got %d", len(data), seg.Length)
	}
	if seg.ID == "" {
		t.Error("segment needs an identity")
	}

	got, err := pool.Load(seg)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, data) {
		t.Errorf("round-trip mismatch: %v", got)
	}
}

func TestHibernationPoolSegmentsAppend(t *testing.T) {
	pool, err := NewHibernationPool()
	if err != nil {
		t.Fatal(err)
	}
	defer pool.Close()

	a, _ := pool.Store([]byte{0xAA, 0xAA})
	b, _ := pool.Store([]byte{0xBB})

	if b.Offset != a.Offset+a.Length {
		t.Errorf("segments must append: a=%+v b=%+v", a, b)
	}
	gotA, _ := pool.Load(a)
	gotB, _ := pool.Load(b)
	if !bytes.Equal(gotA, []byte{0xAA, 0xAA}) || !bytes.Equal(gotB, []byte{0xBB}) {
		t.Error("segments must not overlap")
	}
}

func TestHibernationRefcount(t *testing.T) {
	pool, err := NewHibernationPool()
	if err != nil {
		t.Fatal(err)
	}
	defer pool.Close()

	seg, _ := pool.Store([]byte{1})
	pool.Retain(seg)
	pool.Release(seg)
	pool.Release(seg)
	pool.Release(seg) // already zero, must not go negative

	pool.mu.Lock()
	rc := pool.refcount[seg.ID]
	pool.mu.Unlock()
	if rc != 0 {
		t.Errorf("expected refcount 0, got %d", rc)
	}
}
