// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/npos/config"
	"github.com/vechain/npos/engine"
	"github.com/vechain/npos/kv"
	"github.com/vechain/npos/npos"
)

var ts *httptest.Server

func stashOf(i byte) npos.Address      { return npos.BytesToAddress([]byte{0x5, i}) }
func controllerOf(i byte) npos.Address { return npos.BytesToAddress([]byte{0xc, i}) }

func TestStaking(t *testing.T) {
	initStakingServer(t)
	defer ts.Close()

	for name, tt := range map[string]func(*testing.T){
		"getEra":        getEra,
		"getElected":    getElected,
		"getExposure":   getExposure,
		"getLedger":     getLedger,
		"getValidators": getValidators,
		"getNominators": getNominators,
		"getOffline":    getOffline,
		"badAddress":    badAddress,
	} {
		t.Run(name, tt)
	}
}

func initStakingServer(t *testing.T) {
	cfg := config.Default()
	cfg.Staking.SessionsPerEra = 3
	cfg.Staking.ValidatorCount = 2
	cfg.Staking.MinimumValidatorCount = 1
	cfg.Genesis = config.Genesis{
		SessionReward: 10,
		Accounts: []config.Account{
			{Address: stashOf(1), Stake: 1000, Reward: 1},
			{Address: stashOf(2), Stake: 2000, Reward: 1},
			{Address: stashOf(3), Stake: 1500, Reward: 1},
		},
		Stakers: []config.Staker{
			{Stash: stashOf(1), Controller: controllerOf(1), Bond: 1000, Role: config.RoleValidator, Name: "one"},
			{Stash: stashOf(2), Controller: controllerOf(2), Bond: 2000, Role: config.RoleValidator, Payee: "controller"},
			{Stash: stashOf(3), Controller: controllerOf(3), Bond: 1500, Role: config.RoleNominator,
				Targets: []npos.Address{stashOf(1), stashOf(2)}},
		},
	}
	cfg.Scenario = []config.Action{
		{Session: 0, Kind: config.ActionUnbond, Controller: controllerOf(3), Value: 500},
		{Session: 0, Kind: config.ActionOffline, Controller: controllerOf(2), Count: 1},
	}

	e := engine.New(kv.NewMemStore(), cfg)
	_, err := e.Init()
	require.NoError(t, err)
	_, err = e.EndSession()
	require.NoError(t, err)

	router := mux.NewRouter()
	New(e).Mount(router, "/staking")
	ts = httptest.NewServer(router)
}

func getEra(t *testing.T) {
	var era Era
	httpGetJSON(t, "/staking/era", &era)
	assert.Equal(t, npos.SessionIndex(1), era.Session)
	assert.Equal(t, npos.EraIndex(0), era.Era)
	assert.Equal(t, npos.Balance(10), era.SessionReward)
	assert.Equal(t, npos.Balance(10), era.EraReward)
	assert.Equal(t, uint32(2), era.ValidatorCount)
	assert.Equal(t, uint32(1), era.MinValidatorCount)
	assert.NotZero(t, era.SlotStake)
}

func getElected(t *testing.T) {
	var elected Elected
	httpGetJSON(t, "/staking/elected", &elected)
	assert.ElementsMatch(t, []npos.Address{stashOf(1), stashOf(2)}, elected.Stashes)
	assert.ElementsMatch(t, []npos.Address{controllerOf(1), controllerOf(2)}, elected.Controllers)
	assert.Empty(t, elected.Disabled)
}

func getExposure(t *testing.T) {
	var exposure Exposure
	httpGetJSON(t, "/staking/exposures/"+stashOf(1).String(), &exposure)
	assert.Equal(t, stashOf(1), exposure.Stash)
	assert.Equal(t, npos.Balance(1000), exposure.Own)

	sum := exposure.Own
	for _, o := range exposure.Others {
		assert.Equal(t, stashOf(3), o.Who)
		sum += o.Value
	}
	assert.Equal(t, exposure.Total, sum)
}

func getLedger(t *testing.T) {
	var ledger Ledger
	httpGetJSON(t, "/staking/ledgers/"+controllerOf(3).String(), &ledger)
	assert.Equal(t, Ledger{
		Controller: controllerOf(3),
		Stash:      stashOf(3),
		Total:      1500,
		Active:     1000,
		Unlocking:  []UnlockChunk{{Value: 500, Era: 1}},
		Payee:      "stash",
	}, ledger)

	var payee Ledger
	httpGetJSON(t, "/staking/ledgers/"+controllerOf(2).String(), &payee)
	assert.Equal(t, "controller", payee.Payee)

	_, code := httpGet(t, "/staking/ledgers/"+controllerOf(9).String())
	assert.Equal(t, http.StatusNotFound, code)
}

func getValidators(t *testing.T) {
	var validators []Validator
	httpGetJSON(t, "/staking/validators", &validators)
	require.Len(t, validators, 2)
	assert.Equal(t, stashOf(1), validators[0].Stash)
	assert.Equal(t, "one", validators[0].Name)
	assert.Equal(t, uint32(3), validators[0].UnstakeThreshold)
	assert.Equal(t, stashOf(2), validators[1].Stash)
	assert.Equal(t, uint32(1), validators[1].SlashCount)
}

func getNominators(t *testing.T) {
	var nominators []Nominator
	httpGetJSON(t, "/staking/nominators", &nominators)
	assert.Equal(t, []Nominator{{Stash: stashOf(3), Targets: []npos.Address{stashOf(1), stashOf(2)}}}, nominators)
}

func getOffline(t *testing.T) {
	var offline []Offline
	httpGetJSON(t, "/staking/offline", &offline)
	assert.Equal(t, []Offline{{Stash: stashOf(2), Block: 0, Count: 1}}, offline)
}

func badAddress(t *testing.T) {
	_, code := httpGet(t, "/staking/exposures/0x1234")
	assert.Equal(t, http.StatusBadRequest, code)
}

func httpGet(t *testing.T, path string) ([]byte, int) {
	res, err := http.Get(ts.URL + path) //#nosec G107
	require.NoError(t, err)
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return body, res.StatusCode
}

func httpGetJSON(t *testing.T, path string, v any) {
	body, code := httpGet(t, path)
	require.Equal(t, http.StatusOK, code, string(body))
	require.NoError(t, json.Unmarshal(body, v))
}
