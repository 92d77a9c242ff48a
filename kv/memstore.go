// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package kv

import (
	"errors"
	"sync"

	"github.com/syndtr/goleveldb/leveldb/comparer"
	"github.com/syndtr/goleveldb/leveldb/memdb"
	"github.com/syndtr/goleveldb/leveldb/util"
)

// memStore is a sorted in-memory Store backed by the goleveldb skiplist.
type memStore struct {
	db *memdb.DB
	mu sync.Mutex // serializes bulk writes and snapshots
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() Store {
	return &memStore{db: memdb.New(comparer.DefaultComparer, 0)}
}

func (m *memStore) Get(key []byte) ([]byte, error) {
	val, err := m.db.Get(key)
	if err != nil {
		return nil, err
	}
	return append([]byte(nil), val...), nil
}

func (m *memStore) Has(key []byte) (bool, error) {
	return m.db.Contains(key), nil
}

func (m *memStore) IsNotFound(err error) bool {
	return errors.Is(err, memdb.ErrNotFound)
}

func (m *memStore) Put(key, val []byte) error {
	return m.db.Put(key, val)
}

func (m *memStore) Delete(key []byte) error {
	if err := m.db.Delete(key); err != nil && !m.IsNotFound(err) {
		return err
	}
	return nil
}

// Snapshot copies the current content into a detached store.
func (m *memStore) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	cpy := memdb.New(comparer.DefaultComparer, m.db.Size())
	it := m.db.NewIterator(nil)
	for it.Next() {
		_ = cpy.Put(it.Key(), it.Value())
	}
	it.Release()

	snap := &memStore{db: cpy}
	return &struct {
		Getter
		ReleaseFunc
	}{snap, func() { cpy.Reset() }}
}

func (m *memStore) Bulk() Bulk {
	type op struct {
		key, val []byte
		del      bool
	}
	var (
		ops       []op
		autoFlush bool
	)
	flush := func() error {
		m.mu.Lock()
		defer m.mu.Unlock()
		for _, o := range ops {
			var err error
			if o.del {
				err = m.Delete(o.key)
			} else {
				err = m.db.Put(o.key, o.val)
			}
			if err != nil {
				return err
			}
		}
		ops = ops[:0]
		return nil
	}
	add := func(o op) error {
		ops = append(ops, o)
		if autoFlush {
			return flush()
		}
		return nil
	}

	return &struct {
		PutFunc
		DeleteFunc
		EnableAutoFlushFunc
		WriteFunc
	}{
		func(key, val []byte) error {
			return add(op{key: append([]byte(nil), key...), val: append([]byte(nil), val...)})
		},
		func(key []byte) error {
			return add(op{key: append([]byte(nil), key...), del: true})
		},
		func() { autoFlush = true },
		flush,
	}
}

func (m *memStore) Iterate(r Range) Iterator {
	return m.db.NewIterator(&util.Range{Start: r.Start, Limit: r.Limit})
}
