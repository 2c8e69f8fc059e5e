package vm

import "sync"

// SelectorTable interns selector names to dense numeric IDs.
//
// Selectors are message names such as "size", "at:put:", or constant names
// for constant-read sends. Interning happens at compile/load time so that
// method tables can be indexed by integer instead of compared by string.
//
// The table is append-only: IDs are never reused and a name, once interned,
// keeps its ID for the lifetime of the runtime. Safe for concurrent use.
type SelectorTable struct {
	mu     sync.RWMutex
	byName map[string]int
	byID   []string
}

// NewSelectorTable creates an empty selector table.
func NewSelectorTable() *SelectorTable {
	return &SelectorTable{
		byName: make(map[string]int),
		byID:   make([]string, 0, 128),
	}
}

// Intern returns the ID for name, assigning a fresh one on first sight.
func (st *SelectorTable) Intern(name string) int {
	st.mu.RLock()
	id, ok := st.byName[name]
	st.mu.RUnlock()
	if ok {
		return id
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	if id, ok := st.byName[name]; ok {
		return id
	}
	id = len(st.byID)
	st.byName[name] = id
	st.byID = append(st.byID, name)
	return id
}

// Lookup returns the ID for name, or -1 if it was never interned.
func (st *SelectorTable) Lookup(name string) int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	if id, ok := st.byName[name]; ok {
		return id
	}
	return -1
}

// Name returns the selector name for id, or "" for an unknown ID.
func (st *SelectorTable) Name(id int) string {
	st.mu.RLock()
	defer st.mu.RUnlock()
	if id < 0 || id >= len(st.byID) {
		return ""
	}
	return st.byID[id]
}

// Len returns the number of interned selectors.
func (st *SelectorTable) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.byID)
}
