// Package notify delivers new-ride alerts to interested members, either
// over a live WebSocket subscription on a route or to a configured webhook.
package notify

import (
	"log/slog"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/example/cabshare/internal/models"
)

// Notifier receives every successfully posted ride.
type Notifier interface {
	NotifyRide(r models.Ride) error
}

// rideWriter is the slice of the websocket connection the registry needs.
type rideWriter interface {
	WriteJSON(v interface{}) error
}

type wsSession struct {
	conn rideWriter
	mu   sync.Mutex
}

func (s *wsSession) send(r models.Ride) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteJSON(r)
}

// RouteWatchers holds WebSocket sessions grouped by normalized route key.
// A member watching "main gate__station" gets every new ride on that route.
type RouteWatchers struct {
	mu       sync.RWMutex
	sessions map[string][]*wsSession
	logger   *slog.Logger
}

func NewRouteWatchers(logger *slog.Logger) *RouteWatchers {
	return &RouteWatchers{sessions: make(map[string][]*wsSession), logger: logger}
}

func (w *RouteWatchers) Add(routeKey string, conn *websocket.Conn) {
	w.add(routeKey, conn)
}

func (w *RouteWatchers) add(routeKey string, conn rideWriter) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.sessions[routeKey] = append(w.sessions[routeKey], &wsSession{conn: conn})
}

// NotifyRide fans the ride out to all watchers of its route. Sessions whose
// write fails are dropped from the registry. The watcher list is snapshotted
// under the lock; concurrent notifies never share a backing array with prune.
func (w *RouteWatchers) NotifyRide(r models.Ride) error {
	w.mu.RLock()
	watchers := append([]*wsSession(nil), w.sessions[r.RouteKey]...)
	w.mu.RUnlock()
	if len(watchers) == 0 {
		return nil
	}

	var dead []*wsSession
	for _, s := range watchers {
		if err := s.send(r); err != nil {
			if w.logger != nil {
				w.logger.Warn("ride alert send failed", "route_key", r.RouteKey, "error", err)
			}
			dead = append(dead, s)
		}
	}
	if len(dead) > 0 {
		w.prune(r.RouteKey, dead)
	}
	return nil
}

func (w *RouteWatchers) prune(routeKey string, dead []*wsSession) {
	w.mu.Lock()
	defer w.mu.Unlock()
	kept := make([]*wsSession, 0, len(w.sessions[routeKey]))
	for _, s := range w.sessions[routeKey] {
		alive := true
		for _, d := range dead {
			if s == d {
				alive = false
				break
			}
		}
		if alive {
			kept = append(kept, s)
		}
	}
	if len(kept) == 0 {
		delete(w.sessions, routeKey)
		return
	}
	w.sessions[routeKey] = kept
}
