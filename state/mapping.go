// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"reflect"

	"github.com/ethereum/go-ethereum/rlp"
)

type Key interface {
	Bytes() []byte
}

// Mapping is a typed key/value table stored under its own key prefix.
// Values are RLP encoded. Keys are stored raw, so iteration follows byte order of keys.
type Mapping[K Key, V any] struct {
	state  *State
	prefix []byte
}

func NewMapping[K Key, V any](state *State, name string) *Mapping[K, V] {
	return &Mapping[K, V]{state: state, prefix: []byte(name + "/")}
}

func (m *Mapping[K, V]) key(k K) []byte {
	return append(append([]byte{}, m.prefix...), k.Bytes()...)
}

// Get returns the value for key, or the zero value if absent.
// Pointer values are allocated so callers never receive a nil pointer.
func (m *Mapping[K, V]) Get(key K) (value V, err error) {
	value, _, err = m.Lookup(key)
	return
}

// Lookup returns the value for key and whether it exists.
func (m *Mapping[K, V]) Lookup(key K) (value V, exists bool, err error) {
	err = m.state.DecodeValue(m.key(key), func(raw []byte) error {
		value = decodeInto[V](raw, &exists)
		if !exists {
			return nil
		}
		return rlp.DecodeBytes(raw, &value)
	})
	return
}

// Set stores value for key.
func (m *Mapping[K, V]) Set(key K, value V) error {
	return m.state.EncodeValue(m.key(key), func() ([]byte, error) {
		return rlp.EncodeToBytes(value)
	})
}

// Delete removes key.
func (m *Mapping[K, V]) Delete(key K) {
	m.state.Delete(m.key(key))
}

// Iterate visits all entries in ascending key order. The key passed to fn excludes the prefix.
func (m *Mapping[K, V]) Iterate(fn func(key []byte, value V) error) error {
	return m.state.Iterate(m.prefix, func(k, raw []byte) error {
		var exists bool
		value := decodeInto[V](raw, &exists)
		if err := rlp.DecodeBytes(raw, &value); err != nil {
			return &Error{err}
		}
		return fn(k[len(m.prefix):], value)
	})
}

// Value is a single typed slot, such as a counter or a configuration parameter.
type Value[V any] struct {
	state *State
	key   []byte
}

func NewValue[V any](state *State, name string) *Value[V] {
	return &Value[V]{state: state, key: []byte(name)}
}

// Get returns the stored value, or the zero value if unset.
func (v *Value[V]) Get() (value V, err error) {
	value, _, err = v.Lookup()
	return
}

// Lookup returns the stored value and whether it is set.
func (v *Value[V]) Lookup() (value V, exists bool, err error) {
	err = v.state.DecodeValue(v.key, func(raw []byte) error {
		value = decodeInto[V](raw, &exists)
		if !exists {
			return nil
		}
		return rlp.DecodeBytes(raw, &value)
	})
	return
}

// Set stores the value.
func (v *Value[V]) Set(value V) error {
	return v.state.EncodeValue(v.key, func() ([]byte, error) {
		return rlp.EncodeToBytes(value)
	})
}

// Delete clears the slot.
func (v *Value[V]) Delete() {
	v.state.Delete(v.key)
}

// decodeInto prepares the destination for raw, allocating pointer types.
func decodeInto[V any](raw []byte, exists *bool) (value V) {
	if t := reflect.TypeOf(value); t != nil && t.Kind() == reflect.Ptr {
		value = reflect.New(t.Elem()).Interface().(V)
	}
	*exists = len(raw) > 0
	return
}
