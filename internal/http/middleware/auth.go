package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"certdocs/internal/apperror"
	"certdocs/internal/auth"
)

// IdentityLocalKey is the key under which Authenticate stores the caller's auth.Identity.
const IdentityLocalKey = "identity"

// Authenticate verifies the bearer token, or the cookieName cookie when no
// Authorization header is sent, and stores the identity in locals.
func Authenticate(v *auth.Verifier, cookieName string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerToken(c.Get(fiber.HeaderAuthorization))
		if token == "" && cookieName != "" {
			token = c.Cookies(cookieName)
		}
		id, err := v.Verify(token)
		if err != nil {
			return err
		}
		c.Locals(IdentityLocalKey, id)
		return c.Next()
	}
}

// Require rejects callers whose role lacks capability.
func Require(capability auth.Capability) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := IdentityFrom(c)
		if !ok {
			return apperror.InvalidToken("middleware.Require", nil)
		}
		if !id.Role.Can(capability) {
			return apperror.Forbidden("middleware.Require", "role "+id.Role.String()+" may not "+string(capability))
		}
		return c.Next()
	}
}

// IdentityFrom returns the identity stored by Authenticate.
func IdentityFrom(c *fiber.Ctx) (auth.Identity, bool) {
	id, ok := c.Locals(IdentityLocalKey).(auth.Identity)
	return id, ok
}

func bearerToken(h string) string {
	const prefix = "bearer "
	if len(h) > len(prefix) && strings.EqualFold(h[:len(prefix)], prefix) {
		return strings.TrimSpace(h[len(prefix):])
	}
	return ""
}
