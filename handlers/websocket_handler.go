package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/hackslate/hackathon-system/live"
	"github.com/hackslate/hackathon-system/services"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WebsocketHandler upgrades clients onto a project's live event feed.
type WebsocketHandler struct {
	hub            *live.Hub
	projectService services.ProjectService
	logger         *slog.Logger
}

func NewWebsocketHandler(hub *live.Hub, projectService services.ProjectService, logger *slog.Logger) *WebsocketHandler {
	return &WebsocketHandler{
		hub:            hub,
		projectService: projectService,
		logger:         logger,
	}
}

// Subscribe joins the caller to the event room of one project. The project
// must exist; after the upgrade the connection only receives pushes.
func (h *WebsocketHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	publicID := chi.URLParam(r, "publicID")

	if _, err := h.projectService.GetByPublicID(r.Context(), publicID); err != nil {
		classifiedErrorResponse(w, r, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", slog.Any("error", err))
		return
	}

	client := live.NewClient(h.hub, conn, publicID)
	h.hub.Register <- client

	go client.WritePump()
	go client.ReadPump()
}
