package kv

import (
	"bytes"
	"encoding/gob"

	"github.com/syndtr/goleveldb/leveldb"
)

// LevelStore is a goleveldb-backed Store for durable single-node
// deployments (cmd/lendingd with DataDir set to a directory path in its
// config file), grounded on the teacher's
// use of goleveldb as its state-trie backing store.
type LevelStore struct {
	db *leveldb.DB
}

func OpenLevelStore(dir string) (*LevelStore, error) {
	db, err := leveldb.OpenFile(dir, nil)
	if err != nil {
		return nil, err
	}
	return &LevelStore{db: db}, nil
}

func (s *LevelStore) Get(key []byte, out interface{}) (bool, error) {
	raw, err := s.db.Get(key, nil)
	if err == leveldb.ErrNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	dec := gob.NewDecoder(bytes.NewReader(raw))
	if err := dec.Decode(out); err != nil {
		return false, err
	}
	return true, nil
}

func (s *LevelStore) Put(key []byte, value interface{}) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(value); err != nil {
		return err
	}
	return s.db.Put(key, buf.Bytes(), nil)
}

func (s *LevelStore) Close() error {
	return s.db.Close()
}
