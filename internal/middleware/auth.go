package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/famechasepro/genewell-new/pkg/utils"
)

// AdminRequired guards the dashboard routes. The token also arrives as a
// ?token= query parameter for the websocket upgrade, which cannot carry
// headers from a browser.
func AdminRequired(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := tokenFromRequest(c)
		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Missing authorization header",
			})
		}

		claims, err := utils.ValidateToken(tokenString, secret)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid or expired token",
			})
		}
		if claims.Role != "admin" {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Forbidden",
			})
		}

		c.Locals("admin_id", claims.UserID)
		c.Locals("role", claims.Role)

		return c.Next()
	}
}

func tokenFromRequest(c *fiber.Ctx) string {
	authHeader := c.Get("Authorization")
	if authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1]
		}
		return ""
	}
	return c.Query("token")
}
