package controllers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/samber/lo"

	"supernova/assistant"
)

const (
	assistantFallbackReply = "Something went wrong. Please try again."
	assistantReplyTimeout  = 60 * time.Second
)

// Responder produces the assistant's reply to one user message.
type Responder interface {
	Respond(ctx context.Context, conv *assistant.Conversation, credential, message string) (string, error)
}

type AssistantController struct {
	responder Responder
	upgrader  websocket.Upgrader
}

// NewAssistantController accepts websocket handshakes from allowedOrigins,
// or from any origin when the list is empty.
func NewAssistantController(responder Responder, allowedOrigins []string) *AssistantController {
	return &AssistantController{
		responder: responder,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || len(allowedOrigins) == 0 || lo.Contains(allowedOrigins, origin)
			},
		},
	}
}

type assistantReply struct {
	Content string `json:"content"`
}

// Chat upgrades the request and serves one conversation until the client
// disconnects.
func (ctl *AssistantController) Chat(c *gin.Context) {
	session := currentSession(c)

	conn, err := ctl.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	conv := assistant.NewConversation()
	slog.Info("assistant connected", "user_id", session.UserID.Hex())
	defer slog.Info("assistant disconnected", "user_id", session.UserID.Hex(), "messages", conv.Len())

	for {
		kind, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				slog.Warn("assistant read failed", "error", err)
			}
			return
		}
		if kind != websocket.TextMessage {
			continue
		}
		message := inboundMessage(data)
		if message == "" {
			continue
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), assistantReplyTimeout)
		reply, err := ctl.responder.Respond(ctx, conv, session.Token, message)
		cancel()
		if err != nil {
			slog.Error("assistant reply failed", "user_id", session.UserID.Hex(), "error", err)
			reply = assistantFallbackReply
		}

		if err := conn.WriteJSON(assistantReply{Content: reply}); err != nil {
			slog.Warn("assistant write failed", "error", err)
			return
		}
	}
}

// inboundMessage accepts either a bare text frame or {"message": "..."}.
func inboundMessage(data []byte) string {
	var envelope struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(data, &envelope) == nil && envelope.Message != "" {
		return strings.TrimSpace(envelope.Message)
	}
	return strings.TrimSpace(string(data))
}
