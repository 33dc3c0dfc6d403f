package server

import (
	"errors"
	"log/slog"

	"nestaway/internal/middleware"
	"nestaway/internal/notifications"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// ListingFeedHandler upgrades GET /api/ws/listings. Subscribers receive a
// listing_created event for every listing created on any instance.
func (s *Server) ListingFeedHandler() fiber.Handler {
	upgrade := websocket.New(func(conn *websocket.Conn) {
		client, err := s.hub.Register(uuid.NewString(), conn)
		if err != nil {
			if errors.Is(err, notifications.ErrHubFull) {
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseTryAgainLater, err.Error()))
			}
			middleware.Logger.Warn("listing feed register failed", slog.String("error", err.Error()))
			_ = conn.Close()
			return
		}

		middleware.Logger.Debug("listing feed subscriber connected",
			slog.String("client", client.ID),
			slog.Int("subscribers", s.hub.Count()),
		)

		go client.WritePump()
		client.ReadPump()
	})

	return func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		return upgrade(c)
	}
}
