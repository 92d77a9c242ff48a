// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package kv defines the ordered key-value store the staking state is persisted to.
package kv

// Getter reads single keys.
type Getter interface {
	Get(key []byte) ([]byte, error)
	Has(key []byte) (bool, error)
	// IsNotFound reports whether err is the not-found error of this getter.
	IsNotFound(err error) bool
}

// Putter writes single keys.
type Putter interface {
	Put(key, val []byte) error
	Delete(key []byte) error
}

// Snapshot is a read-only view frozen at the time it was taken.
type Snapshot interface {
	Getter
	Release()
}

// Bulk batches writes until Write.
type Bulk interface {
	Putter
	EnableAutoFlush() // writes become visible in chunks, the batch is no longer atomic
	Write() error
}

// Iterator walks a key range in ascending order.
type Iterator interface {
	Next() bool
	Key() []byte
	Value() []byte
	Release()
	Error() error
}

// Range selects keys in [Start, Limit). An empty Limit means no upper bound.
type Range struct {
	Start []byte
	Limit []byte
}

// Store is an ordered key-value store.
type Store interface {
	Getter
	Putter

	Snapshot() Snapshot
	Bulk() Bulk
	Iterate(r Range) Iterator
}
