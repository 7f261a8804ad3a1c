package middleware

import (
	"strings"

	"toko-kelontong-pos/internal/metrics"
	"toko-kelontong-pos/internal/model"
	"toko-kelontong-pos/internal/session"

	"github.com/gofiber/fiber/v2"
)

const principalKey = "principal"

// BearerToken reads "Authorization: Bearer <token>", falling back to the
// ?token= query parameter used by websocket clients.
func BearerToken(c *fiber.Ctx) string {
	if header := c.Get(fiber.HeaderAuthorization); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	return c.Query("token")
}

// RequireAuth resolves the session on every request and admits only an
// authenticated principal. Lookup failures are answered with 503, never
// with access.
func RequireAuth(resolver *session.Resolver, m *metrics.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		res := resolver.Resolve(c.UserContext(), BearerToken(c))

		switch res.Status {
		case session.Authenticated:
			c.Locals(principalKey, *res.Principal)
			return c.Next()
		case session.Denied:
			m.SessionDenied(string(res.Reason))
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error":    res.Err.Error(),
				"redirect": res.Redirect(),
			})
		case session.Indeterminate:
			m.SessionDenied("indeterminate")
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"error": session.ErrTransientLookup.Error(),
			})
		default:
			msg := "Unauthorized"
			if res.Err != nil {
				msg = res.Err.Error()
			}
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error":    msg,
				"redirect": res.Redirect(),
			})
		}
	}
}

// RequireRole admits the principal only when its role is one of roles.
func RequireRole(roles ...model.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, ok := CurrentPrincipal(c)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
		}
		for _, r := range roles {
			if p.Role == r {
				return c.Next()
			}
		}
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error":    "Forbidden: this page is not available for your role",
			"redirect": session.LandingRoute(p.Role),
		})
	}
}

// CurrentPrincipal returns the principal stored by RequireAuth.
func CurrentPrincipal(c *fiber.Ctx) (session.Principal, bool) {
	p, ok := c.Locals(principalKey).(session.Principal)
	return p, ok
}
