package kv

import (
	"bytes"
	"encoding/gob"
	"sync"
)

// MemoryStore is a process-local Store backed by a map, used by the CLI when
// its config sets DataDir to "memory" or leaves it empty.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

func (s *MemoryStore) Get(key []byte, out interface{}) (bool, error) {
	s.mu.RLock()
	raw, ok := s.data[string(key)]
	s.mu.RUnlock()
	if !ok {
		return false, nil
	}
	dec := gob.NewDecoder(bytes.NewReader(raw))
	if err := dec.Decode(out); err != nil {
		return false, err
	}
	return true, nil
}

func (s *MemoryStore) Put(key []byte, value interface{}) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(value); err != nil {
		return err
	}
	s.mu.Lock()
	s.data[string(key)] = buf.Bytes()
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Close() error { return nil }
