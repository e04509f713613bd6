package handlers

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/mokki-app/mokki/middleware"
	"github.com/mokki-app/mokki/realtime"
	"github.com/mokki-app/mokki/services"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type WebSocketHandler struct {
	hub          *realtime.Hub
	houseService services.HouseService
	logger       *slog.Logger
}

func NewWebSocketHandler(hub *realtime.Hub, houseService services.HouseService, logger *slog.Logger) *WebSocketHandler {
	return &WebSocketHandler{hub: hub, houseService: houseService, logger: logger}
}

// HouseActivity upgrades the connection and subscribes the caller to the
// house room. Only members may listen.
func (h *WebSocketHandler) HouseActivity(w http.ResponseWriter, r *http.Request) {
	houseID, err := getIDFromURL(r, "houseID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	if err := h.houseService.RequireMember(r.Context(), houseID, currentUserID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", slog.Any("error", err))
		return
	}

	client := &realtime.Client{
		Hub:  h.hub,
		Conn: conn,
		Send: make(chan []byte, 256),
		Room: fmt.Sprintf("house_%d", houseID),
	}
	h.hub.Register <- client

	go client.WritePump()
	go client.ReadPump()
}
