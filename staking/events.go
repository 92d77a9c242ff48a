// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"github.com/vechain/npos/npos"
)

// Event is emitted by the staking module.
type Event interface {
	Name() string
}

// RewardEvent is emitted once per era with the reward paid to each elected validator.
type RewardEvent struct {
	PerValidator npos.Balance
}

// OfflineWarningEvent is emitted for an offline report below the tolerated count.
// SlashCount is the count before the report.
type OfflineWarningEvent struct {
	Stash      npos.Address
	SlashCount uint32
}

// OfflineSlashEvent is emitted when an offline validator is slashed and chilled.
type OfflineSlashEvent struct {
	Stash  npos.Address
	Amount npos.Balance
}

type BondedEvent struct {
	Stash      npos.Address
	Controller npos.Address
	Amount     npos.Balance
}

type UnbondedEvent struct {
	Stash  npos.Address
	Amount npos.Balance
	Era    npos.EraIndex
}

type WithdrawnEvent struct {
	Stash  npos.Address
	Amount npos.Balance
}

// NewEraEvent is emitted after the era counter advanced.
type NewEraEvent struct {
	Era     npos.EraIndex
	Elected int
}

// ElectionFailedEvent is emitted when an era ends without a new validator set.
type ElectionFailedEvent struct {
	Era npos.EraIndex
}

func (RewardEvent) Name() string         { return "Reward" }
func (OfflineWarningEvent) Name() string { return "OfflineWarning" }
func (OfflineSlashEvent) Name() string   { return "OfflineSlash" }
func (BondedEvent) Name() string         { return "Bonded" }
func (UnbondedEvent) Name() string       { return "Unbonded" }
func (WithdrawnEvent) Name() string      { return "Withdrawn" }
func (NewEraEvent) Name() string         { return "NewEra" }
func (ElectionFailedEvent) Name() string { return "ElectionFailed" }

// EventSink receives staking events.
type EventSink interface {
	Emit(Event)
}

// EventSinkFunc adapts a function to an EventSink.
type EventSinkFunc func(Event)

func (f EventSinkFunc) Emit(e Event) { f(e) }

// EventLog collects events in memory.
type EventLog struct {
	Events []Event
}

func (l *EventLog) Emit(e Event) { l.Events = append(l.Events, e) }

// Take returns the collected events and resets the log.
func (l *EventLog) Take() []Event {
	events := l.Events
	l.Events = nil
	return events
}

type discardEvents struct{}

func (discardEvents) Emit(Event) {}
