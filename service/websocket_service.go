package service

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/tieubaoca/manualbot/config"
	"github.com/tieubaoca/manualbot/types"
)

const (
	writeWait    = 10 * time.Second
	pongWait     = 60 * time.Second
	pingInterval = 30 * time.Second

	defaultMaxMessageSize = 512 * 1024
)

// Answerer is implemented by AnswerService.
type Answerer interface {
	Answer(ctx context.Context, manual, role, content string, history []types.Message) (*types.AnswerResponse, error)
}

// ChatSession is the conversation of one socket. With a positive limit only
// the most recent limit turns are kept.
type ChatSession struct {
	history []types.Message
	limit   int
}

func NewChatSession(limit int) *ChatSession {
	return &ChatSession{history: make([]types.Message, 0), limit: limit}
}

func (s *ChatSession) Append(msgs ...types.Message) {
	s.history = append(s.history, msgs...)
	if s.limit > 0 && len(s.history) > s.limit {
		s.history = append(s.history[:0:0], s.history[len(s.history)-s.limit:]...)
	}
}

// History returns a copy of the kept turns, oldest first.
func (s *ChatSession) History() []types.Message {
	out := make([]types.Message, len(s.history))
	copy(out, s.history)
	return out
}

func (s *ChatSession) Len() int { return len(s.history) }

type WebSocketService struct {
	answerer       Answerer
	upgrader       websocket.Upgrader
	historyLimit   int
	maxMessageSize int64
}

func NewWebSocketService(answerer Answerer, cfg config.ChatConfig) *WebSocketService {
	maxSize := int64(cfg.MaxMessageSize)
	if maxSize <= 0 {
		maxSize = defaultMaxMessageSize
	}
	return &WebSocketService{
		answerer: answerer,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		historyLimit:   cfg.HistoryLimit,
		maxMessageSize: maxSize,
	}
}

func (s *WebSocketService) HandleChat(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("Upgrade error")
		return
	}
	defer conn.Close()

	conn.SetReadLimit(s.maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	go s.keepAlive(ctx, conn)

	remote := conn.RemoteAddr().String()
	log.Info().Str("remote", remote).Msg("Chat connection opened")
	session := NewChatSession(s.historyLimit)
	for {
		_, p, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Str("remote", remote).Msg("WebSocket read error")
			}
			break
		}
		reply := s.handleMessage(ctx, session, p)
		if reply == nil {
			continue
		}
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(reply); err != nil {
			log.Warn().Err(err).Str("remote", remote).Msg("Write error")
			break
		}
	}
	log.Info().Str("remote", remote).Int("turns", session.Len()).Msg("Chat connection closed")
}

// handleMessage turns one inbound frame into the reply to send, or nil when
// the frame is ignored.
func (s *WebSocketService) handleMessage(ctx context.Context, session *ChatSession, data []byte) any {
	var req types.ChatRequest
	if err := json.Unmarshal(data, &req); err != nil {
		log.Debug().Err(err).Msg("Unmarshal error")
		return types.ErrorResponse{Error: "Invalid JSON"}
	}
	if !req.Valid() {
		return nil
	}

	// The user turn stays in the session even when no answer comes back.
	session.Append(types.Message{Role: types.RoleUser, Content: req.Content})
	res, err := s.answerer.Answer(ctx, req.Manual, req.Role, req.Content, session.History())
	if err != nil {
		log.Error().Err(err).Str("manual", req.Manual).Msg("Answer error")
		return types.ErrorResponse{Error: "Internal server error"}
	}
	session.Append(types.Message{Role: types.RoleSystem, Content: res.Data.OutputText})
	return res
}

func (s *WebSocketService) keepAlive(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}
