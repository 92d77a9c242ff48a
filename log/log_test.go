// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTerminalHandler(t *testing.T) {
	var buf bytes.Buffer
	var lvl slog.LevelVar
	lvl.Set(slog.LevelInfo)

	l := NewLogger(NewTerminalHandlerWithLevel(&buf, &lvl, false)).With("pkg", "staking")
	l.Debug("hidden")
	assert.Empty(t, buf.String())

	l.Info("new era", "era", 7, "stake", uint64(1234567))
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "INFO ["), out)
	assert.Contains(t, out, "new era")
	assert.Contains(t, out, "pkg=staking")
	assert.Contains(t, out, "era=7")
	assert.Contains(t, out, "stake=1,234,567")
}

func TestJSONHandler(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(JSONHandler(&buf))
	l.Warn("slashed", "amount", uint256.NewInt(42))

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "warn", rec["lvl"])
	assert.Equal(t, "slashed", rec["msg"])
	assert.Equal(t, "42", rec["amount"])
}

func TestWithContextFollowsRoot(t *testing.T) {
	pkgLogger := WithContext("pkg", "test")

	old := Root()
	defer SetDefault(old)

	var buf bytes.Buffer
	SetDefault(NewLogger(LogfmtHandlerWithLevel(&buf, new(slog.LevelVar))))

	pkgLogger.Info("hello", "k", "v")
	assert.Contains(t, buf.String(), "pkg=test")
	assert.Contains(t, buf.String(), "k=v")
	assert.Contains(t, buf.String(), "lvl=info")
}

func TestAppendUint64(t *testing.T) {
	assert.Equal(t, "99999", string(appendUint64(nil, 99999, false)))
	assert.Equal(t, "100,000", string(appendUint64(nil, 100000, false)))
	assert.Equal(t, "-1,000,000", string(appendInt64(nil, -1000000)))
}

func TestFromLegacyLevel(t *testing.T) {
	assert.Equal(t, LevelCrit, FromLegacyLevel(0))
	assert.Equal(t, slog.LevelInfo, FromLegacyLevel(3))
	assert.Equal(t, LevelTrace, FromLegacyLevel(9))
}
