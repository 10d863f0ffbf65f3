package fleettracking

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/theoremus-urban-solutions/fleet-tracking/tracking"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type wsMessage struct {
	Type   string      `json:"type"` // snapshot | update
	Assets []assetView `json:"assets,omitempty"`
	Asset  *assetView  `json:"asset,omitempty"`
}

// wsSession is one viewer connection. It implements tracking.Renderer by
// marshalling state into an outbound queue; a dedicated goroutine does the
// actual socket writes so the sync loop never blocks on a slow client. A
// full queue drops the message, and the next poll re-sends the full table.
type wsSession struct {
	srv  *Server
	conn *websocket.Conn
	out  chan []byte
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade error: %v", err)
		return
	}
	sess := &wsSession{srv: s, conn: conn, out: make(chan []byte, 16)}
	go sess.writePump()

	// the loop's immediate first poll delivers the initial snapshot
	loop := s.tracker.OpenSession(sess, time.Duration(s.cfg.Sync.PollIntervalMS)*time.Millisecond)
	sess.readPump(loop)
}

// RenderSnapshot implements tracking.Renderer.
func (ws *wsSession) RenderSnapshot(snap map[string]tracking.PositionRecord) {
	ws.enqueue(wsMessage{Type: "snapshot", Assets: ws.srv.viewsOf(snap)})
}

// RenderUpdate implements tracking.Renderer.
func (ws *wsSession) RenderUpdate(assetID string, rec tracking.PositionRecord) {
	v := ws.srv.viewOf(assetID, rec)
	ws.enqueue(wsMessage{Type: "update", Asset: &v})
}

func (ws *wsSession) enqueue(msg wsMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("ws marshal error: %v", err)
		return
	}
	select {
	case ws.out <- data:
	default:
		log.Printf("ws client slow, dropping %s message", msg.Type)
	}
}

func (ws *wsSession) writePump() {
	for data := range ws.out {
		if err := ws.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			return
		}
	}
}

// readPump blocks until the client goes away, then tears the session down.
// Stopping the loop before closing the queue guarantees no render call can
// race the close.
func (ws *wsSession) readPump(loop *tracking.SyncLoop) {
	defer func() {
		loop.Stop()
		close(ws.out)
		_ = ws.conn.Close()
	}()
	for {
		if _, _, err := ws.conn.ReadMessage(); err != nil {
			return
		}
	}
}
