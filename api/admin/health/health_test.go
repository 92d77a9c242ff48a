// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package health

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/npos/npos"
)

func TestHealthStatus(t *testing.T) {
	h := New()
	assert.True(t, h.Status(0).Healthy, "idle driver is healthy")

	h.SetRunning(true)
	h.SessionEnded(7)
	status := h.Status(time.Minute)
	assert.True(t, status.Healthy)
	assert.True(t, status.Running)
	assert.Equal(t, npos.SessionIndex(7), status.Session.Index)

	time.Sleep(10 * time.Millisecond)
	assert.False(t, h.Status(time.Millisecond).Healthy)

	h.SetRunning(false)
	assert.True(t, h.Status(time.Millisecond).Healthy)
}

func TestHealthAPI(t *testing.T) {
	h := New()
	h.SetRunning(true)
	h.SessionEnded(3)

	router := mux.NewRouter()
	NewAPI(h).Mount(router, "/admin/health")

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/admin/health", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	var status Status
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&status))
	assert.True(t, status.Healthy)
	assert.Equal(t, npos.SessionIndex(3), status.Session.Index)

	time.Sleep(10 * time.Millisecond)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/admin/health?maxTimeBetweenSessions=1ms", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}
