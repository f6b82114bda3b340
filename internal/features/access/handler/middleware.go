package handler

import (
	"net/http"

	"order-ledger/internal/core/logger"
	"order-ledger/internal/features/access/domain"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const (
	// RoleHeader carries the operator role set by the console gateway.
	RoleHeader = "X-Console-Role"
	// RedirectHeader tells the console where to send a denied operator.
	RedirectHeader = "X-Redirect-To"
	// RoleLocal is the fiber local holding the resolved role.
	RoleLocal = "role"
)

// DeniedResponse represents the body of a denied request.
type DeniedResponse struct {
	// Message is the denial reason.
	Message string `json:"message"`
	// RedirectTo is the page the console should navigate to.
	RedirectTo string `json:"redirect_to"`
	// RayID is the unique request identifier for debugging.
	RayID string `json:"ray_id"`
}

// Middleware enforces the access policy on every request of the group it is mounted on.
func Middleware() fiber.Handler {
	log := logger.Named("access")

	return func(c *fiber.Ctx) error {
		role := domain.Role(c.Get(RoleHeader))
		decision := domain.Decide(role, c.Method(), c.Path())
		if decision.Allow {
			c.Locals(RoleLocal, role)
			return c.Next()
		}

		rayID, ok := c.Locals("requestid").(string)
		if !ok {
			rayID = "unknown"
		}

		log.Warn("Request denied",
			zap.String("role", string(role)),
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.String("ray_id", rayID),
		)

		status := http.StatusForbidden
		if !role.Valid() {
			status = http.StatusUnauthorized
		}
		c.Set(RedirectHeader, decision.RedirectTo)
		return c.Status(status).JSON(DeniedResponse{
			Message:    decision.Reason,
			RedirectTo: decision.RedirectTo,
			RayID:      rayID,
		})
	}
}
