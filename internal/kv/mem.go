package kv

import "bytes"

// MemStore keeps values in memory. The zero value is ready to use.
//
// FailSaves makes every Save return the given error, which lets callers
// exercise best-effort persistence paths.
type MemStore struct {
	values    map[string][]byte
	FailSaves error
	Saves     int
}

// NewMemStore returns an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{values: make(map[string][]byte)}
}

// Load returns a copy of the value stored under key.
func (m *MemStore) Load(key string) ([]byte, bool, error) {
	name, err := sanitizeKey(key)
	if err != nil {
		return nil, false, err
	}
	v, ok := m.values[name]
	if !ok {
		return nil, false, nil
	}
	return bytes.Clone(v), true, nil
}

// Save stores a copy of data under key.
func (m *MemStore) Save(key string, data []byte) error {
	name, err := sanitizeKey(key)
	if err != nil {
		return err
	}
	if m.FailSaves != nil {
		return m.FailSaves
	}
	if m.values == nil {
		m.values = make(map[string][]byte)
	}
	m.values[name] = bytes.Clone(data)
	m.Saves++
	return nil
}
