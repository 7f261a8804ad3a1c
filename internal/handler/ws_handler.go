package handler

import (
	"toko-kelontong-pos/internal/ws"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const wsTenantKey = "ws_tenant"

// WSUpgrade runs after RequireAuth and only lets tenant users open the feed.
func WSUpgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return c.SendStatus(fiber.StatusUpgradeRequired)
	}
	p := principal(c)
	if p.TenantID == nil {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "live updates are per store"})
	}
	c.Locals(wsTenantKey, *p.TenantID)
	return c.Next()
}

// WSFeed registers the connection with its tenant's channel until the client
// goes away.
func WSFeed(hub *ws.Hub) fiber.Handler {
	return websocket.New(func(c *websocket.Conn) {
		tenantID, _ := c.Locals(wsTenantKey).(uuid.UUID)
		client := &ws.Client{TenantID: tenantID, Conn: c}
		if !hub.Join(client) {
			_ = c.Close()
			return
		}
		defer hub.Leave(client)

		for {
			// Keep alive loop
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	})
}
