// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"github.com/vechain/stakepool/api/utils"
	"github.com/vechain/stakepool/api/utils/types"
	"github.com/vechain/stakepool/log"
	"github.com/vechain/stakepool/metrics"
	"github.com/vechain/stakepool/staker"
	"github.com/vechain/stakepool/thor"
)

var (
	logger = log.WithContext("pkg", "subscriptions")

	metricActiveWebsocketCount = metrics.LazyLoadGauge("api_active_websocket_count")
)

const (
	pingPeriod = 25 * time.Second
	pongWait   = 30 * time.Second
	writeWait  = 10 * time.Second
	// events buffered per connection before the slow client is dropped
	eventBuffer = 256
)

type Subscriptions struct {
	pool     *staker.Pool
	upgrader *websocket.Upgrader
	done     chan struct{}
	wg       sync.WaitGroup
}

func New(pool *staker.Pool, allowedOrigins []string) *Subscriptions {
	return &Subscriptions{
		pool: pool,
		upgrader: &websocket.Upgrader{
			EnableCompression: true,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				for _, allowed := range allowedOrigins {
					if allowed == origin || allowed == "*" {
						return true
					}
				}
				return false
			},
		},
		done: make(chan struct{}),
	}
}

// matcher selects the events a subscriber asked for.
type matcher struct {
	address *thor.Address
	kinds   map[staker.EventKind]bool
}

func parseMatcher(req *http.Request) (*matcher, error) {
	m := &matcher{}
	query := req.URL.Query()
	if s := query.Get("address"); s != "" {
		addr, err := thor.ParseAddress(s)
		if err != nil {
			return nil, utils.BadRequest(errors.WithMessage(err, "address"))
		}
		m.address = addr
	}
	if kinds := query["kind"]; len(kinds) > 0 {
		m.kinds = make(map[staker.EventKind]bool, len(kinds))
		for _, k := range kinds {
			m.kinds[staker.EventKind(k)] = true
		}
	}
	return m, nil
}

func (m *matcher) match(ev *staker.Event) bool {
	if m.kinds != nil && !m.kinds[ev.Kind] {
		return false
	}
	if m.address != nil && ev.User != *m.address && ev.Counterparty != *m.address {
		return false
	}
	return true
}

func (s *Subscriptions) handleSubscribeEvents(w http.ResponseWriter, req *http.Request) error {
	m, err := parseMatcher(req)
	if err != nil {
		return err
	}
	conn, err := s.upgrader.Upgrade(w, req, nil)
	if err != nil {
		// the upgrader already responded
		logger.Debug("upgrade failed", "error", err)
		return nil
	}

	s.wg.Add(1)
	defer s.wg.Done()
	metricActiveWebsocketCount().Add(1)
	defer metricActiveWebsocketCount().Add(-1)

	if err := s.pipe(conn, m); err != nil {
		logger.Debug("subscription closed", "error", err)
	}
	return nil
}

// pipe forwards matching pool events to conn until the client leaves or the api closes.
func (s *Subscriptions) pipe(conn *websocket.Conn, m *matcher) error {
	defer conn.Close()

	ch := make(chan *staker.Event, eventBuffer)
	sub := s.pool.SubscribeEvents(ch)
	defer sub.Unsubscribe()

	// the read loop handles pongs and notices the client going away
	closed := make(chan struct{})
	conn.SetReadLimit(1024)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case ev := <-ch:
			if len(ch) == cap(ch) {
				return errors.New("client too slow")
			}
			if !m.match(ev) {
				continue
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(types.ConvertEvent(0, ev)); err != nil {
				return err
			}
		case err := <-sub.Err():
			return err
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return err
			}
		case <-closed:
			return nil
		case <-s.done:
			return conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, ""),
				time.Now().Add(writeWait))
		}
	}
}

// Close ends every open subscription and waits for them to leave.
func (s *Subscriptions) Close() {
	close(s.done)
	s.wg.Wait()
}

func (s *Subscriptions) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/events").
		Methods(http.MethodGet).
		Name("WS /subscriptions/events").
		HandlerFunc(utils.WrapHandlerFunc(s.handleSubscribeEvents))
}
