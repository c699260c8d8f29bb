package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/oxygene76/vb3d-sim/internal/types"
	"github.com/oxygene76/vb3d-sim/pkg/scene"
)

const liveWriteWait = 10 * time.Second

// liveFrame is one reply on a live session. Each inbound config message
// produces exactly one frame, carrying either a scene or an error.
type liveFrame struct {
	Session string         `json:"session"`
	Seq     int            `json:"seq"`
	Scene   *types.Scene   `json:"scene,omitempty"`
	Error   *errorResponse `json:"error,omitempty"`
}

// handleLive upgrades to a websocket and re-renders on every config
// message. A rejected config is reported in the frame and the previous
// config stays in effect for the next partial update.
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("live upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	session := uuid.NewString()
	log := s.logger.With(zap.String("session", session))
	s.sessions.Add(1)
	defer s.sessions.Add(-1)
	log.Info("live session opened", zap.String("remote", conn.RemoteAddr().String()))

	conn.SetReadLimit(s.cfg.MaxMessageBytes)
	current := cloneConfig(s.defaults)

	for seq := 1; ; seq++ {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Warn("live session read failed", zap.Error(err))
			}
			break
		}

		frame := liveFrame{Session: session, Seq: seq}
		next := cloneConfig(current)
		release, err := s.acquire(r.Context())
		if err != nil {
			log.Warn("live session cancelled", zap.Error(err))
			break
		}
		sc, err := decodeAndRender(msg, &next)
		release()
		if err != nil {
			resp := newErrorResponse(err)
			frame.Error = &resp
			log.Debug("live config rejected", zap.Int("seq", seq), zap.Error(err))
		} else {
			current = next
			frame.Scene = sc
		}

		conn.SetWriteDeadline(time.Now().Add(liveWriteWait))
		if err := conn.WriteJSON(frame); err != nil {
			log.Warn("live session write failed", zap.Error(err))
			break
		}
	}
	log.Info("live session closed")
}

func decodeAndRender(msg []byte, cfg *scene.Config) (*types.Scene, error) {
	if err := json.Unmarshal(msg, cfg); err != nil {
		return nil, fmt.Errorf("invalid config message: %w", err)
	}
	return scene.Render(*cfg)
}
