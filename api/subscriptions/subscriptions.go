// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package subscriptions streams session progress over websocket.
package subscriptions

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"github.com/vechain/npos/api/staking"
	"github.com/vechain/npos/api/utils"
	"github.com/vechain/npos/co"
	"github.com/vechain/npos/engine"
	"github.com/vechain/npos/log"
	"github.com/vechain/npos/npos"
)

var logger = log.WithContext("pkg", "subscriptions")

const (
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 7 / 10
	writeWait  = 10 * time.Second
)

// Backend adds session notifications to the snapshot source.
type Backend interface {
	staking.Backend
	NewSessionWaiter() *co.Waiter
}

type Subscriptions struct {
	backend  Backend
	upgrader *websocket.Upgrader
	done     chan struct{}
	goes     co.Goes
}

// SessionMessage describes the session that just started.
type SessionMessage struct {
	Index      npos.SessionIndex `json:"index"`
	Era        npos.EraIndex     `json:"era"`
	Validators []npos.Address    `json:"validators"`
	Disabled   []npos.Address    `json:"disabled"`
}

func New(backend Backend, allowedOrigins []string) *Subscriptions {
	return &Subscriptions{
		backend: backend,
		upgrader: &websocket.Upgrader{
			EnableCompression: true,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				for _, allowed := range allowedOrigins {
					if allowed == "*" || allowed == origin {
						return true
					}
				}
				return false
			},
		},
		done: make(chan struct{}),
	}
}

func (s *Subscriptions) sessionMessage() (*SessionMessage, error) {
	var msg SessionMessage
	err := s.backend.View(func(snap *engine.Snapshot) (err error) {
		if msg.Index, err = snap.Session.Index(); err != nil {
			return
		}
		if msg.Era, err = snap.Staking.CurrentEra(); err != nil {
			return
		}
		if msg.Validators, err = snap.Session.Validators(); err != nil {
			return
		}
		msg.Disabled, err = snap.Session.Disabled()
		return
	})
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

// parsePos reads the optional index of the last session the client has seen.
func parsePos(req *http.Request) (pos npos.SessionIndex, ok bool, err error) {
	query := req.URL.Query().Get("pos")
	if query == "" {
		return 0, false, nil
	}
	n, err := strconv.ParseUint(query, 10, 32)
	if err != nil {
		return 0, false, utils.BadRequest(errors.WithMessage(err, "pos"))
	}
	return npos.SessionIndex(n), true, nil
}

func (s *Subscriptions) handleSubscribeSession(w http.ResponseWriter, req *http.Request) error {
	pos, seen, err := parsePos(req)
	if err != nil {
		return err
	}
	// take the waiter before the first read so no session end slips between them
	waiter := s.backend.NewSessionWaiter()

	conn, err := s.upgrader.Upgrade(w, req, nil)
	if err != nil {
		// the upgrader has already replied
		logger.Debug("upgrade failed", "err", err)
		return nil
	}
	defer conn.Close()

	closed := make(chan struct{})
	s.goes.Go(func() {
		defer close(closed)
		conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})

	pingTicker := time.NewTicker(pingPeriod)
	defer pingTicker.Stop()

	for {
		msg, err := s.sessionMessage()
		if err != nil {
			logger.Warn("read session", "err", err)
			return nil
		}
		if !seen || msg.Index > pos {
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(msg); err != nil {
				logger.Debug("write session", "err", err)
				return nil
			}
			pos, seen = msg.Index, true
		}

		select {
		case <-s.done:
			conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""), time.Now().Add(writeWait))
			return nil
		case <-closed:
			return nil
		case <-waiter.C():
		case <-pingTicker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return nil
			}
		}
	}
}

// Close ends every open subscription and waits for their readers to exit.
func (s *Subscriptions) Close() {
	close(s.done)
	s.goes.Wait()
}

func (s *Subscriptions) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/session").
		Methods(http.MethodGet).
		Name("subscriptions_session").
		HandlerFunc(utils.WrapHandlerFunc(s.handleSubscribeSession))
}
