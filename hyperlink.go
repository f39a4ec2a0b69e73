package vtcore

import "sync"

// HyperlinkLink is the resolved target of an OSC 8 hyperlink: the URI it
// points at and the explicit id= parameter it was opened with, if any.
type HyperlinkLink struct {
	ID  string
	URI string
}

// hyperlinkEntry is one row of the hyperlink side table.
type hyperlinkEntry struct {
	link     HyperlinkLink
	refCount int
}

// HyperlinkTable stores OSC 8 link targets out-of-line and reference-counts
// them, so a Cell can carry a small uint32 id instead of a pointer into the
// table. That keeps the grid and scrollback from ever holding a pointer into
// each other's lifetime: a cell that outlives its buffer (by being copied
// into scrollback) still resolves its id here, and the entry is freed once
// the last referencing cell, wherever it lives, releases it.
type HyperlinkTable struct {
	mu      sync.Mutex
	entries map[uint32]*hyperlinkEntry
	byKey   map[string]uint32 // explicit id + URI -> table id, for id= reuse
	nextID  uint32
}

// NewHyperlinkTable creates an empty hyperlink table.
func NewHyperlinkTable() *HyperlinkTable {
	return &HyperlinkTable{
		entries: make(map[uint32]*hyperlinkEntry),
		byKey:   make(map[string]uint32),
	}
}

func hyperlinkKey(id, uri string) string {
	return id + "\x00" + uri
}

// Intern resolves (id, uri) to a table id, minting a fresh one unless id is
// non-empty and already known for this URI. Per xterm's OSC 8 convention, an
// explicit id groups every occurrence of the same link (e.g. a URL spanning
// several wrapped cells, or the same link printed twice) under one table
// entry; an empty id always gets its own fresh id so unrelated untagged
// links never collide. The returned id is not yet retained by any cell;
// callers must call Retain for each cell that stores it.
func (tbl *HyperlinkTable) Intern(id, uri string) uint32 {
	tbl.mu.Lock()
	defer tbl.mu.Unlock()

	if id != "" {
		key := hyperlinkKey(id, uri)
		if existing, ok := tbl.byKey[key]; ok {
			return existing
		}
		tbl.nextID++
		newID := tbl.nextID
		tbl.entries[newID] = &hyperlinkEntry{link: HyperlinkLink{ID: id, URI: uri}}
		tbl.byKey[key] = newID
		return newID
	}

	tbl.nextID++
	newID := tbl.nextID
	tbl.entries[newID] = &hyperlinkEntry{link: HyperlinkLink{URI: uri}}
	return newID
}

// Retain increments the reference count for id. A zero id (meaning "no
// hyperlink") is a no-op.
func (tbl *HyperlinkTable) Retain(id uint32) {
	if id == 0 {
		return
	}
	tbl.mu.Lock()
	defer tbl.mu.Unlock()
	if e, ok := tbl.entries[id]; ok {
		e.refCount++
	}
}

// Release decrements the reference count for id, evicting the entry once
// nothing references it anymore. A zero id is a no-op.
func (tbl *HyperlinkTable) Release(id uint32) {
	if id == 0 {
		return
	}
	tbl.mu.Lock()
	defer tbl.mu.Unlock()
	e, ok := tbl.entries[id]
	if !ok {
		return
	}
	e.refCount--
	if e.refCount <= 0 {
		delete(tbl.entries, id)
		if e.link.ID != "" {
			delete(tbl.byKey, hyperlinkKey(e.link.ID, e.link.URI))
		}
	}
}

// Lookup returns the link data for id. Returns false for id == 0 or any id
// no longer present in the table.
func (tbl *HyperlinkTable) Lookup(id uint32) (HyperlinkLink, bool) {
	if id == 0 {
		return HyperlinkLink{}, false
	}
	tbl.mu.Lock()
	defer tbl.mu.Unlock()
	e, ok := tbl.entries[id]
	if !ok {
		return HyperlinkLink{}, false
	}
	return e.link, true
}

// RefCount returns the live reference count for id, or 0 if id is unknown.
func (tbl *HyperlinkTable) RefCount(id uint32) int {
	tbl.mu.Lock()
	defer tbl.mu.Unlock()
	if e, ok := tbl.entries[id]; ok {
		return e.refCount
	}
	return 0
}

// Len returns the number of distinct hyperlink targets currently tracked.
func (tbl *HyperlinkTable) Len() int {
	tbl.mu.Lock()
	defer tbl.mu.Unlock()
	return len(tbl.entries)
}
