// Package calibws streams the calibration state machine over a
// websocket: clients push accelerometer samples and request phase
// advances, the server replies with state/progress/result frames.
// This is the ambient layer that is allowed to read the wall clock;
// internal/calibration itself never does.
package calibws

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/relabs-tech/kartpower/internal/calibration"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// WSMessage is one client->server frame.
type WSMessage struct {
	Action string           `json:"action"` // "sample", "advance", "reset"
	Sample *calibration.Vec3 `json:"sample,omitempty"`
}

// WSResponse is one server->client frame.
type WSResponse struct {
	Type     string            `json:"type"` // "state", "result", "error"
	State    calibration.State `json:"state,omitempty"`
	Progress float64           `json:"progress,omitempty"`
	Result   *calibration.Data `json:"result,omitempty"`
	Message  string            `json:"message,omitempty"`
}

// Session binds one calibration Engine to one websocket connection.
type Session struct {
	conn   *websocket.Conn
	mu     sync.Mutex
	engine *calibration.Engine
}

// HandleCalibrationWS upgrades the request and serves the calibration
// protocol until the client disconnects.
func HandleCalibrationWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("calibws: websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	session := &Session{conn: conn, engine: calibration.New()}
	session.sendState()

	for {
		var msg WSMessage
		if err := conn.ReadJSON(&msg); err != nil {
			log.Printf("calibws: websocket read error: %v", err)
			return
		}

		session.mu.Lock()
		switch msg.Action {
		case "sample":
			if msg.Sample != nil {
				session.engine.PushSample(*msg.Sample)
			}
			session.sendState()

		case "advance":
			if err := session.engine.AdvancePhase(time.Now()); err != nil {
				session.sendError(err.Error())
			} else if data, ok := session.engine.Result(); ok {
				session.sendResult(data)
			} else {
				session.sendState()
			}

		case "reset":
			session.engine.Reset()
			session.sendState()
		}
		session.mu.Unlock()
	}
}

func (s *Session) sendState() {
	s.conn.WriteJSON(WSResponse{
		Type:     "state",
		State:    s.engine.State(),
		Progress: s.engine.Progress(),
	})
}

func (s *Session) sendResult(data calibration.Data) {
	s.conn.WriteJSON(WSResponse{
		Type:   "result",
		State:  calibration.Done,
		Result: &data,
	})
}

func (s *Session) sendError(message string) {
	s.conn.WriteJSON(WSResponse{
		Type:    "error",
		State:   s.engine.State(),
		Message: message,
	})
}
