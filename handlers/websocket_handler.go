package handlers

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/golang-jwt/jwt/v4"
	"github.com/gorilla/websocket"

	"github.com/sketcher2345/hackathon-platform/live"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Cross-origin dashboards are allowed; auth happens via the token.
		return true
	},
}

type WebSocketHandler struct {
	hub       *live.Hub
	jwtSecret []byte
	logger    *slog.Logger
}

func NewWebSocketHandler(hub *live.Hub, jwtSecret []byte, logger *slog.Logger) *WebSocketHandler {
	return &WebSocketHandler{hub: hub, jwtSecret: jwtSecret, logger: logger}
}

// ServeHackathonEvents upgrades the connection and subscribes the client to
// the hackathon's event room. Browsers cannot set an Authorization header on
// a websocket request, so the token travels as a query parameter.
func (h *WebSocketHandler) ServeHackathonEvents(w http.ResponseWriter, r *http.Request) {
	hackathonID, err := urlParamInt(r, "hackathonID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tokenString := r.URL.Query().Get("token")
	if tokenString == "" {
		unauthorizedResponse(w, r, "token query parameter is required")
		return
	}
	if err := h.validateToken(tokenString); err != nil {
		unauthorizedResponse(w, r, "invalid or expired token")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", slog.Any("error", err))
		return
	}

	client := &live.Client{
		Hub:  h.hub,
		Conn: conn,
		Send: make(chan []byte, 256),
		Room: live.RoomForHackathon(hackathonID),
	}
	h.hub.Register <- client

	go client.WritePump()
	go client.ReadPump()
}

func (h *WebSocketHandler) validateToken(tokenString string) error {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return h.jwtSecret, nil
	})
	if err != nil {
		return err
	}
	if !token.Valid {
		return fmt.Errorf("token is not valid")
	}
	if _, ok := claims["host_id"]; !ok {
		return fmt.Errorf("host_id claim is missing")
	}
	return nil
}
