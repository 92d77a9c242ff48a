// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package state is the journaled key-value view the staking module reads and writes.
// It follows the flow as bellow:
//
//	   [ revertable state ]
//	            |
//	     [ stacked map ] -> [ journal ] -> [ commit ] -> [ kv store ]
//	            |
//	       [ lru cache ]
//	            |
//	      [ kv store ]
//
// Every write lands in the stacked map first, so a checkpoint can be reverted
// without touching the store. Commit flushes the journal in one bulk write.
package state

import (
	"encoding/binary"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/vechain/npos/cache"
	"github.com/vechain/npos/kv"
	"github.com/vechain/npos/npos"
	"github.com/vechain/npos/stackedmap"
)

const defaultCacheSize = 4096

// Error is the error caused by state access failure.
type Error struct {
	cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("state: %v", e.cause)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// State manages the staking key space.
type State struct {
	store kv.Store
	cache *cache.LRU                             // committed values, nil for absent keys
	sm    *stackedmap.StackedMap[string, []byte] // keeps revisions, nil value means deleted
}

// New create state object over the given store.
func New(store kv.Store) *State {
	lru, _ := cache.NewLRU(defaultCacheSize)
	s := &State{
		store: store,
		cache: lru,
	}
	s.sm = stackedmap.New(s.cacheGetter)
	return s
}

// cacheGetter implements stackedmap.MapGetter.
func (s *State) cacheGetter(key string) ([]byte, bool, error) {
	if v, ok := s.cache.Get(key); ok {
		metricStateAccess().AddWithLabel(1, map[string]string{"type": "read", "target": "cache"})
		return v.([]byte), true, nil
	}
	metricStateAccess().AddWithLabel(1, map[string]string{"type": "read", "target": "store"})

	val, err := s.store.Get([]byte(key))
	if err != nil {
		if !s.store.IsNotFound(err) {
			return nil, false, err
		}
		val = nil
	}
	s.cache.Add(key, val)
	return val, true, nil
}

// Get returns the value stored at key, or nil if absent.
func (s *State) Get(key []byte) ([]byte, error) {
	v, _, err := s.sm.Get(string(key))
	if err != nil {
		return nil, &Error{err}
	}
	return v, nil
}

// Has returns whether a value is stored at key.
func (s *State) Has(key []byte) (bool, error) {
	v, err := s.Get(key)
	if err != nil {
		return false, err
	}
	return len(v) > 0, nil
}

// Put stores val at key. An empty val deletes the key.
func (s *State) Put(key, val []byte) {
	if len(val) == 0 {
		val = nil
	}
	s.sm.Put(string(key), val)
}

// Delete removes the value at key.
func (s *State) Delete(key []byte) {
	s.sm.Put(string(key), nil)
}

// EncodeValue set value encoded by given enc method.
// Error returned by enc will be absorbed by State instance.
func (s *State) EncodeValue(key []byte, enc func() ([]byte, error)) error {
	raw, err := enc()
	if err != nil {
		return &Error{err}
	}
	s.Put(key, raw)
	return nil
}

// DecodeValue get and decode value. dec receives nil for absent keys.
// Error returned by dec will be absorbed by State instance.
func (s *State) DecodeValue(key []byte, dec func([]byte) error) error {
	raw, err := s.Get(key)
	if err != nil {
		return err
	}
	if err := dec(raw); err != nil {
		return &Error{err}
	}
	return nil
}

// NewCheckpoint makes a checkpoint of current state.
// It returns revision of the checkpoint.
func (s *State) NewCheckpoint() int {
	return s.sm.Push()
}

// RevertTo revert to checkpoint specified by revision.
func (s *State) RevertTo(revision int) {
	s.sm.PopTo(revision)
	if s.sm.Depth() == 0 {
		s.sm.Push()
	}
}

// changes returns the latest uncommitted value of every written key.
func (s *State) changes() map[string][]byte {
	changes := make(map[string][]byte)
	s.sm.Journal(func(k string, v []byte) bool {
		changes[k] = v
		return true
	})
	return changes
}

// Iterate visits the live key-value pairs under prefix in ascending key order,
// merging uncommitted writes over the store.
func (s *State) Iterate(prefix []byte, fn func(key, val []byte) error) error {
	merged := make(map[string][]byte)
	err := kv.Walk(s.store, kv.PrefixRange(prefix), func(k, v []byte) error {
		merged[string(k)] = append([]byte(nil), v...)
		return nil
	})
	if err != nil {
		return &Error{err}
	}
	for k, v := range s.changes() {
		if !strings.HasPrefix(k, string(prefix)) {
			continue
		}
		if v == nil {
			delete(merged, k)
		} else {
			merged[k] = v
		}
	}

	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		if err := fn([]byte(k), merged[k]); err != nil {
			return err
		}
	}
	return nil
}

// Dirty reports whether there are uncommitted writes.
func (s *State) Dirty() bool {
	dirty := false
	s.sm.Journal(func(string, []byte) bool {
		dirty = true
		return false
	})
	return dirty
}

// Commit writes all journaled changes to the store and resets the journal.
func (s *State) Commit() error {
	changes := s.changes()
	if len(changes) == 0 {
		return nil
	}

	bulk := s.store.Bulk()
	for k, v := range changes {
		var err error
		if v == nil {
			err = bulk.Delete([]byte(k))
		} else {
			err = bulk.Put([]byte(k), v)
		}
		if err != nil {
			return &Error{err}
		}
	}
	if err := bulk.Write(); err != nil {
		return &Error{err}
	}
	metricStateAccess().AddWithLabel(int64(len(changes)), map[string]string{"type": "write", "target": "store"})

	for k, v := range changes {
		s.cache.Add(k, v)
	}
	if rate, changed := s.cache.Stats().HitRate(); changed {
		metricCacheHitRate().Set(rate)
	}
	s.sm.PopTo(0)
	s.sm.Push()
	return nil
}

// Digest returns a Blake2b hash over every live key-value pair, for comparing replicas.
func (s *State) Digest() (npos.Bytes32, error) {
	var err error
	h := npos.Blake2bFn(func(w io.Writer) {
		var lenBuf [4]byte
		err = s.Iterate(nil, func(k, v []byte) error {
			binary.BigEndian.PutUint32(lenBuf[:], uint32(len(k)))
			w.Write(lenBuf[:])
			w.Write(k)
			binary.BigEndian.PutUint32(lenBuf[:], uint32(len(v)))
			w.Write(lenBuf[:])
			w.Write(v)
			return nil
		})
	})
	if err != nil {
		return npos.Bytes32{}, err
	}
	return h, nil
}
