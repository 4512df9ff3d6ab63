package realtime

import (
	"net/http"

	"github.com/anvarbek/vitrina/backend/internal/middleware"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// clientCommand is what a connected client may send: room membership changes.
// Everything else flows server to client.
type clientCommand struct {
	Action string `json:"action"` // "join" or "leave"
	Room   string `json:"room"`
}

// Handler upgrades authenticated requests to websocket connections and
// keeps them registered in the hub until disconnect.
type Handler struct {
	hub *Hub
}

// NewHandler creates a new websocket Handler
func NewHandler(hub *Hub) *Handler {
	return &Handler{hub: hub}
}

// RegisterRoutes registers the websocket endpoint
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/ws", h.Serve)
}

// Serve performs the handshake: the bearer token arrives as a query
// parameter since browsers cannot set headers on websocket requests.
func (h *Handler) Serve(c echo.Context) error {
	token := c.QueryParam("token")
	if token == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "Missing token")
	}
	claims, err := middleware.ParseToken(token)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "WebSocket upgrade failed")
	}

	userID := claims.UserID
	h.hub.Register(userID, conn)
	logrus.WithFields(logrus.Fields{"user_id": userID, "username": claims.Username}).Info("websocket connected")

	defer func() {
		h.hub.Unregister(userID, conn)
		conn.Close()
		logrus.WithField("user_id", userID).Info("websocket disconnected")
	}()

	for {
		var cmd clientCommand
		if err := conn.ReadJSON(&cmd); err != nil {
			break // client disconnected
		}
		switch cmd.Action {
		case "join":
			if cmd.Room != "" {
				h.hub.JoinRoom(cmd.Room, conn)
			}
		case "leave":
			if cmd.Room != "" {
				h.hub.LeaveRoom(cmd.Room, conn)
			}
		}
	}
	return nil
}
