package http

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/m-mizutani/ctxlog"
	"github.com/secmon-lab/suistat/pkg/domain/model"
	"github.com/secmon-lab/suistat/pkg/domain/types"
	"github.com/secmon-lab/suistat/pkg/service/board"
)

const (
	liveWriteWait  = 10 * time.Second
	livePongWait   = 60 * time.Second
	livePingPeriod = livePongWait * 9 / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// liveMessage is sent to websocket clients after every board change
type liveMessage struct {
	Version uint64                           `json:"version"`
	Blank   bool                             `json:"blank"`
	SVG     string                           `json:"svg,omitempty"`
	Slots   map[types.SlotID]model.SlotValue `json:"slots"`
}

func newLiveMessage(snap board.Snapshot) liveMessage {
	return liveMessage{
		Version: snap.Version,
		Blank:   snap.Blank(),
		SVG:     snap.SVG,
		Slots:   snap.Slots,
	}
}

// offerLatest puts snap into a one-slot channel, replacing an unread older snapshot
func offerLatest(ch chan board.Snapshot, snap board.Snapshot) {
	for {
		select {
		case ch <- snap:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}

func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	logger := ctxlog.From(r.Context())

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("Failed to upgrade websocket", "error", err)
		return
	}
	defer conn.Close()

	updates := make(chan board.Snapshot, 1)
	cancel := s.board.Subscribe(func(snap board.Snapshot) {
		offerLatest(updates, snap)
	})
	defer cancel()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(livePongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(livePongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	send := func(snap board.Snapshot) bool {
		_ = conn.SetWriteDeadline(time.Now().Add(liveWriteWait))
		if err := conn.WriteJSON(newLiveMessage(snap)); err != nil {
			logger.Debug("Websocket write failed", "error", err)
			return false
		}
		return true
	}

	if !send(s.board.Snapshot()) {
		return
	}

	ticker := time.NewTicker(livePingPeriod)
	defer ticker.Stop()

	for {
		select {
		case snap := <-updates:
			if !send(snap) {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(liveWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-closed:
			logger.Debug("Websocket client disconnected")
			return
		case <-r.Context().Done():
			return
		}
	}
}
