package headlessterm

import (
	"fmt"
	"os"
	"sync"

	"github.com/google/uuid"
)

// MemoryScrollback is a bounded in-memory ring of evicted lines, the
// ScrollbackProvider implementation doc.go already documents under
// NewMemoryScrollback but the original library never shipped. Lines beyond
// MaxLines are dropped oldest-first (spec §3 Scrollback Ring).
type MemoryScrollback struct {
	mu       sync.Mutex
	lines    [][]Cell
	maxLines int
}

// NewMemoryScrollback creates a ring holding up to maxLines evicted lines.
// maxLines <= 0 means unbounded.
func NewMemoryScrollback(maxLines int) *MemoryScrollback {
	return &MemoryScrollback{maxLines: maxLines}
}

// Push appends a newly evicted line, copying it so later mutation of the
// live buffer's row doesn't alias scrollback entries (spec §3: "Scrollback
// entries are never mutated after insertion").
func (s *MemoryScrollback) Push(line []Cell) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := make([]Cell, len(line))
	for i, c := range line {
		cp[i] = c.Copy()
	}
	s.lines = append(s.lines, cp)

	if s.maxLines > 0 && len(s.lines) > s.maxLines {
		drop := len(s.lines) - s.maxLines
		s.lines = s.lines[drop:]
	}
}

// Len returns the number of lines currently retained.
func (s *MemoryScrollback) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.lines)
}

// Line returns the line at index (0 = oldest), or nil if out of range.
func (s *MemoryScrollback) Line(index int) []Cell {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.lines) {
		return nil
	}
	return s.lines[index]
}

// Clear discards all retained lines.
func (s *MemoryScrollback) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = nil
}

// SetMaxLines changes the capacity, trimming from the front if needed.
func (s *MemoryScrollback) SetMaxLines(max int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.maxLines = max
	if max > 0 && len(s.lines) > max {
		s.lines = s.lines[len(s.lines)-max:]
	}
}

// MaxLines returns the configured capacity (0 = unbounded).
func (s *MemoryScrollback) MaxLines() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.maxLines
}

var _ ScrollbackProvider = (*MemoryScrollback)(nil)

// --- Image hibernation -----------------------------------------------------

// ImageSegment is the on-disk handle an Image holds once hibernated: a
// byte range within the shared temp file (spec §3 Image "strage", §6
// Persistence: "a concatenation of raw RGBA buffers").
type ImageSegment struct {
	ID     string
	Offset int64
	Length int64
}

// HibernationPool is the shared, unlinked temp file every live image's
// hibernated buffer is appended to. Segments are refcounted so a pool
// compaction (not implemented) could eventually reclaim
// dead ranges; for now segments are appended only and the file grows
// monotonically, matching spec §5's "shared across all live images,
// accessed only from the same thread" model.
type HibernationPool struct {
	mu       sync.Mutex
	file     *os.File
	size     int64
	refcount map[string]int
}

// NewHibernationPool creates an anonymous temp file that is unlinked
// immediately so it is cleaned up by the OS on process exit even if the
// process crashes, per spec §6 Persistence.
func NewHibernationPool() (*HibernationPool, error) {
	f, err := os.CreateTemp("", "termcore-imgpool-*")
	if err != nil {
		return nil, fmt.Errorf("hibernation pool: %w", err)
	}
	name := f.Name()
	if err := os.Remove(name); err != nil {
		f.Close()
		return nil, fmt.Errorf("hibernation pool: unlink: %w", err)
	}
	return &HibernationPool{file: f, refcount: make(map[string]int)}, nil
}

// Store appends an RGBA buffer, returning its segment handle.
func (p *HibernationPool) Store(data []byte) (ImageSegment, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	offset := p.size
	n, err := p.file.WriteAt(data, offset)
	if err != nil {
		return ImageSegment{}, fmt.Errorf("hibernation pool: write: %w", err)
	}
	p.size += int64(n)

	seg := ImageSegment{ID: uuid.NewString(), Offset: offset, Length: int64(n)}
	p.refcount[seg.ID] = 1
	return seg, nil
}

// Load reads back a hibernated buffer.
func (p *HibernationPool) Load(seg ImageSegment) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	buf := make([]byte, seg.Length)
	if _, err := p.file.ReadAt(buf, seg.Offset); err != nil {
		return nil, fmt.Errorf("hibernation pool: read: %w", err)
	}
	return buf, nil
}

// Retain increments a segment's refcount (an image may share hibernated
// storage with a DECCRA copy of itself).
func (p *HibernationPool) Retain(seg ImageSegment) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.refcount[seg.ID]++
}

// Release decrements a segment's refcount. The backing bytes are not
// reclaimed (no compaction pass exists), but the
// refcount lets a future compaction pass identify dead ranges.
func (p *HibernationPool) Release(seg ImageSegment) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.refcount[seg.ID] > 0 {
		p.refcount[seg.ID]--
	}
}

// Close releases the underlying (already-unlinked) file descriptor.
func (p *HibernationPool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.file.Close()
}

// Hibernate moves an image's pixel buffer to the shared pool and returns
// the segment handle; the caller is responsible for freeing the in-memory
// buffer once this returns successfully.
func (m *ImageManager) Hibernate(pool *HibernationPool, id uint32) (ImageSegment, error) {
	img := m.Image(id)
	if img == nil {
		return ImageSegment{}, fmt.Errorf("hibernate: no such image %d", id)
	}
	return pool.Store(img.Data)
}

// Wake restores a hibernated image's pixel buffer from the pool, e.g. just
// before a repaint touches it.
func (m *ImageManager) Wake(pool *HibernationPool, id uint32, seg ImageSegment) error {
	data, err := pool.Load(seg)
	if err != nil {
		return err
	}
	img := m.Image(id)
	if img == nil {
		return fmt.Errorf("wake: no such image %d", id)
	}
	img.Data = data
	return nil
}
