package refstore

import (
	"fmt"
	"sort"
	"sync"
)

// MemoryStore is an in-process Store. Entries are deep-copied on the way in
// and out so callers never alias stored values.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[entryKey]*Entry
}

type entryKey struct {
	testID   string
	gridName string
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[entryKey]*Entry)}
}

var _ Store = (*MemoryStore)(nil)

func cloneEntry(e *Entry) *Entry {
	c := *e
	c.Values = append([]float64(nil), e.Values...)
	return &c
}

func (m *MemoryStore) Load(testID, gridName string) (*Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entries[entryKey{testID, gridName}]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, keyString(testID, gridName))
	}
	return cloneEntry(e), nil
}

func (m *MemoryStore) Save(e *Entry) error {
	if err := e.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[entryKey{e.TestID, e.GridName}] = cloneEntry(e)
	return nil
}

func (m *MemoryStore) List(testID string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var names []string
	for _, e := range m.entries {
		if e.TestID == testID {
			names = append(names, e.GridName)
		}
	}
	sort.Strings(names)
	return names, nil
}

func (m *MemoryStore) Delete(testID, gridName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := entryKey{testID, gridName}
	if _, ok := m.entries[k]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, keyString(testID, gridName))
	}
	delete(m.entries, k)
	return nil
}
