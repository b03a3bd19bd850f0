package dashboard

import (
	"errors"
	"sync"
)

// Page names one dashboard page. Each page owns exactly one chart slot.
type Page string

const (
	PageDashboard Page = "dashboard"
	PageUsage     Page = "usage"
	PageBudget    Page = "budget"
	PageBreakdown Page = "breakdown"
)

// AllPages lists the pages in navigation order.
var AllPages = []Page{PageDashboard, PageUsage, PageBudget, PageBreakdown}

// ErrSlotClosed is returned by Replace after Close.
var ErrSlotClosed = errors.New("chart slot closed")

// Handle is a rendered chart. Destroy releases it; calling it twice is a
// no-op.
type Handle interface {
	Destroy()
}

// Sink renders page payloads into charts.
type Sink interface {
	Render(page Page, payload any) (Handle, error)
}

// Slot owns the single live chart of one page. A new render always destroys
// the previous chart first.
type Slot struct {
	mu      sync.Mutex
	page    Page
	sink    Sink
	current Handle
	closed  bool
}

func NewSlot(page Page, sink Sink) *Slot {
	return &Slot{page: page, sink: sink}
}

// Replace destroys the live chart and renders payload in its place. When
// rendering fails the slot is left empty.
func (s *Slot) Replace(payload any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSlotClosed
	}
	if s.current != nil {
		s.current.Destroy()
		s.current = nil
	}
	h, err := s.sink.Render(s.page, payload)
	if err != nil {
		return err
	}
	s.current = h
	return nil
}

// Close destroys the live chart and rejects further renders.
func (s *Slot) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != nil {
		s.current.Destroy()
		s.current = nil
	}
	s.closed = true
}

// Board holds one slot per page.
type Board struct {
	slots map[Page]*Slot
}

func NewBoard(sink Sink) *Board {
	b := &Board{slots: make(map[Page]*Slot, len(AllPages))}
	for _, p := range AllPages {
		b.slots[p] = NewSlot(p, sink)
	}
	return b
}

// Publish replaces the chart of every page with the payloads in pages.
func (b *Board) Publish(pages *Pages) error {
	var errs []error
	for _, p := range AllPages {
		if err := b.slots[p].Replace(pages.Payload(p)); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close closes every slot.
func (b *Board) Close() {
	for _, s := range b.slots {
		s.Close()
	}
}

// MemorySink keeps the live payload of each page in memory. The API serves
// chart data from it.
type MemorySink struct {
	mu   sync.RWMutex
	live map[Page]*memoryHandle
	seq  uint64
}

func NewMemorySink() *MemorySink {
	return &MemorySink{live: make(map[Page]*memoryHandle)}
}

type memoryHandle struct {
	sink    *MemorySink
	page    Page
	id      uint64
	payload any
	once    sync.Once
}

func (h *memoryHandle) Destroy() {
	h.once.Do(func() {
		h.sink.mu.Lock()
		defer h.sink.mu.Unlock()
		if cur, ok := h.sink.live[h.page]; ok && cur.id == h.id {
			delete(h.sink.live, h.page)
		}
	})
}

func (m *MemorySink) Render(page Page, payload any) (Handle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	h := &memoryHandle{sink: m, page: page, id: m.seq, payload: payload}
	m.live[page] = h
	return h, nil
}

// Latest returns the live payload for page.
func (m *MemorySink) Latest(page Page) (any, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	h, ok := m.live[page]
	if !ok {
		return nil, false
	}
	return h.payload, true
}

// Live reports how many charts are currently rendered.
func (m *MemorySink) Live() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.live)
}
