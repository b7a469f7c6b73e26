package server

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/dgaponov99/practicum-my-blog/internal/middleware"
	"github.com/dgaponov99/practicum-my-blog/internal/models"
	"github.com/dgaponov99/practicum-my-blog/internal/notifications"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	jsoniter "github.com/json-iterator/go"
	"github.com/samber/lo"
)

// streamReadyFrame is sent once the Redis subscription is live. Events
// published before it may be missed.
const streamReadyFrame = `{"type":"subscribed"}`

// EventsUpgrade guards GET /api/events: only WebSocket upgrades are accepted,
// and only when Redis is configured.
func (s *Server) EventsUpgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return models.RespondWithError(c, fiber.StatusUpgradeRequired,
			models.NewValidationError("WebSocket upgrade required"))
	}
	if s.redis == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "event stream unavailable",
		})
	}
	return c.Next()
}

// EventsStream forwards blog events to the client as JSON text frames. The
// optional "types" query parameter is a comma-separated allowlist of event
// types.
func (s *Server) EventsStream() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		middleware.ActiveEventStreams.Inc()
		defer middleware.ActiveEventStreams.Dec()
		defer func() { _ = conn.Close() }()

		types := lo.Compact(lo.Map(strings.Split(conn.Query("types"), ","), func(t string, _ int) string {
			return strings.TrimSpace(t)
		}))

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		// The ready frame and forwarded events are written from different
		// goroutines.
		var writeMu sync.Mutex
		write := func(msg []byte) error {
			writeMu.Lock()
			defer writeMu.Unlock()
			return conn.WriteMessage(websocket.TextMessage, msg)
		}

		err := s.notifier.Subscribe(ctx, func(ev notifications.Event) {
			if len(types) > 0 && !lo.Contains(types, ev.Type) {
				return
			}
			msg, err := jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(ev)
			if err != nil {
				return
			}
			if err := write(msg); err != nil {
				cancel()
			}
		})
		if err != nil {
			middleware.Logger.Warn("event stream subscription failed", slog.String("error", err.Error()))
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"subscription failed"}`))
			return
		}
		if err := write([]byte(streamReadyFrame)); err != nil {
			return
		}

		// Clients never send; reading only detects the close.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})
}
