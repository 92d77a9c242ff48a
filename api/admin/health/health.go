// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package health

import (
	"sync"
	"time"

	"github.com/vechain/npos/npos"
)

type SessionProgress struct {
	Index     npos.SessionIndex `json:"index"`
	Timestamp *time.Time        `json:"timestamp"`
}

type Status struct {
	Healthy bool             `json:"healthy"`
	Session *SessionProgress `json:"session"`
	Running bool             `json:"running"`
}

// Health tracks the progress of the session driver.
type Health struct {
	lock        sync.RWMutex
	lastSession time.Time
	index       npos.SessionIndex
	running     bool
}

func New() *Health {
	return &Health{lastSession: time.Now()}
}

// SessionEnded records that session index started now.
func (h *Health) SessionEnded(index npos.SessionIndex) {
	h.lock.Lock()
	defer h.lock.Unlock()

	h.lastSession = time.Now()
	h.index = index
}

// SetRunning marks whether sessions are still being driven.
func (h *Health) SetRunning(running bool) {
	h.lock.Lock()
	defer h.lock.Unlock()

	h.running = running
	h.lastSession = time.Now()
}

// Status reports healthy unless the driver runs and no session ended within maxTimeBetweenSessions.
func (h *Health) Status(maxTimeBetweenSessions time.Duration) *Status {
	h.lock.RLock()
	defer h.lock.RUnlock()

	last := h.lastSession
	return &Status{
		Healthy: !h.running || time.Since(last) <= maxTimeBetweenSessions,
		Session: &SessionProgress{Index: h.index, Timestamp: &last},
		Running: h.running,
	}
}
