// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package co holds small concurrency helpers.
package co

import (
	"sync"
)

// Signal announces an event to every goroutine waiting for it.
// Unlike sync.Cond it is channel based, so waiting can be part of a select.
type Signal struct {
	mu sync.Mutex
	ch chan struct{}
}

func (s *Signal) current() chan struct{} {
	if s.ch == nil {
		s.ch = make(chan struct{})
	}
	return s.ch
}

// Broadcast wakes all waiters.
func (s *Signal) Broadcast() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ch != nil {
		close(s.ch)
	}
	s.ch = make(chan struct{})
}

// NewWaiter returns a Waiter that observes every broadcast made after this call.
func (s *Signal) NewWaiter() *Waiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	return &Waiter{signal: s, ch: s.current()}
}

// Waiter follows the broadcasts of one Signal. It is not safe for concurrent use.
type Waiter struct {
	signal *Signal
	ch     chan struct{}
}

// C returns a channel that is closed by the first broadcast since the previous call to C.
func (w *Waiter) C() <-chan struct{} {
	ch := w.ch

	w.signal.mu.Lock()
	w.ch = w.signal.current()
	w.signal.mu.Unlock()

	return ch
}
