// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reverts

import (
	"errors"
	"fmt"
	"testing"

	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func Test_Reverts(t *testing.T) {
	revert := New("test")
	assert.Equal(t, "test", revert.message)
	assert.Equal(t, revert.Error(), revert.message)

	assert.True(t, IsRevertErr(revert))
	assert.True(t, IsRevertErr(pkgerrors.Wrap(revert, "bond")))
	assert.False(t, IsRevertErr(nil))
	assert.False(t, IsRevertErr(fmt.Errorf("test")))
	assert.False(t, IsRevertErr(42))
}

func TestRevertIs(t *testing.T) {
	sentinel := New("stash already bonded")

	assert.True(t, errors.Is(New("stash already bonded"), sentinel))
	assert.True(t, errors.Is(pkgerrors.WithMessage(sentinel, "bond"), sentinel))
	assert.False(t, errors.Is(New("not a stash"), sentinel))
	assert.Equal(t, "value 3 too large", Newf("value %d too large", 3).Error())
}
