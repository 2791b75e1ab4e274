package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/medcamp/camp-system/live"
)

type WebSocketHandler struct {
	hub      *live.Hub
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

func NewWebSocketHandler(hub *live.Hub, logger *slog.Logger) *WebSocketHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &WebSocketHandler{
		hub:    hub,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Источник проверяет CORS-слой на уровне роутера.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// ServeCampFeed обрабатывает GET /ws/camps/{campID}: апгрейд соединения
// и подписка на живые события по заявкам этого лагеря.
func (h *WebSocketHandler) ServeCampFeed(w http.ResponseWriter, r *http.Request) {
	campID, err := getIDFromURL(r, "campID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade сам пишет ответ при ошибке рукопожатия.
		h.logger.Error("websocket upgrade failed", slog.Any("error", err))
		return
	}

	client := h.hub.NewClient(conn, campID)
	client.StartPumps()

	h.logger.Info("websocket client connected", slog.Int("camp_id", campID))
}
