// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"fmt"
	"io"

	"github.com/pkg/errors"
	"github.com/pmezard/go-difflib/difflib"
	"gopkg.in/cheggaaa/pb.v1"

	"github.com/vechain/npos/config"
	"github.com/vechain/npos/engine"
	"github.com/vechain/npos/genesis"
	"github.com/vechain/npos/kv"
	"github.com/vechain/npos/npos"
	"github.com/vechain/npos/state"
)

var errStateMismatch = errors.New("state mismatch")

// verifyState replays the network described by cfg in memory up to the session stored in
// store, and compares the result with store.
func verifyState(cfg *config.Config, store kv.Store, out io.Writer) error {
	if _, ok, err := genesis.Load(state.New(store)); err != nil {
		return err
	} else if !ok {
		return errors.New("no network found in data dir")
	}

	stored := engine.New(store, cfg)
	storedID, err := stored.Init()
	if err != nil {
		return err
	}
	var sessions npos.SessionIndex
	if err := stored.View(func(s *engine.Snapshot) (err error) {
		sessions, err = s.Session.Index()
		return
	}); err != nil {
		return err
	}

	fmt.Fprintf(out, ">> Replaying %d sessions <<\n", sessions)
	replayed, replayedID, err := replay(cfg, sessions, out)
	if err != nil {
		return errors.WithMessage(err, "replay")
	}
	if replayedID != storedID {
		fmt.Fprintf(out, "genesis mismatch: replayed %v, stored %v\n", replayedID, storedID)
		return errStateMismatch
	}

	storedDigest, err := stored.Digest()
	if err != nil {
		return err
	}
	replayedDigest, err := replayed.Digest()
	if err != nil {
		return err
	}
	if storedDigest != replayedDigest {
		diff, err := stateDiff(replayed, stored)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, "\nDiff state")
		fmt.Fprintln(out, diff)
		return errStateMismatch
	}
	fmt.Fprintf(out, "state verified, digest %v\n", storedDigest)
	return nil
}

func replay(cfg *config.Config, sessions npos.SessionIndex, out io.Writer) (*engine.Engine, npos.Bytes32, error) {
	e := engine.New(kv.NewMemStore(), cfg)
	id, err := e.Init()
	if err != nil {
		return nil, npos.Bytes32{}, err
	}

	bar := pb.New64(int64(sessions)).
		Set64(0).
		SetMaxWidth(90)
	bar.Output = out
	// redraw from this goroutine only, so out needs no locking
	bar.ManualUpdate = true
	bar.Start()
	defer func() { bar.NotPrint = true }()

	for i := npos.SessionIndex(0); i < sessions; i++ {
		if _, err := e.EndSession(); err != nil {
			return nil, npos.Bytes32{}, err
		}
		bar.Add64(1)
		bar.Update()
	}
	bar.Finish()
	return e, id, nil
}

func stateDiff(expected, actual *engine.Engine) (string, error) {
	e, err := dumpLines(expected)
	if err != nil {
		return "", err
	}
	a, err := dumpLines(actual)
	if err != nil {
		return "", err
	}
	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        e,
		B:        a,
		FromFile: "Replayed",
		ToFile:   "Stored",
		Context:  1,
	})
}

func dumpLines(e *engine.Engine) (lines []string, err error) {
	err = e.Dump(func(key, val []byte) error {
		lines = append(lines, fmt.Sprintf("%q = %x\n", key, val))
		return nil
	})
	return
}
