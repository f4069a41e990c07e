package credstore

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// ClaimsKey is the fiber Locals key holding the validated *Claims
const ClaimsKey = "claims"

// TokenValidator validates bearer tokens
type TokenValidator interface {
	Validate(tokenString string) (*Claims, error)
}

// BearerAuth rejects requests without a valid "Authorization: Bearer" token
// and stores the claims under ClaimsKey.
func BearerAuth(validator TokenValidator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw, ok := bearerToken(c.Get(fiber.HeaderAuthorization))
		if !ok {
			return ErrMissingToken
		}

		claims, err := validator.Validate(raw)
		if err != nil {
			return err
		}

		c.Locals(ClaimsKey, claims)
		return c.Next()
	}
}

// ClaimsFrom returns the claims stored by BearerAuth
func ClaimsFrom(c *fiber.Ctx) (*Claims, bool) {
	claims, ok := c.Locals(ClaimsKey).(*Claims)
	return claims, ok && claims != nil
}

func bearerToken(header string) (string, bool) {
	const scheme = "Bearer"
	header = strings.TrimSpace(header)
	if len(header) <= len(scheme)+1 || !strings.EqualFold(header[:len(scheme)], scheme) || header[len(scheme)] != ' ' {
		return "", false
	}
	token := strings.TrimSpace(header[len(scheme)+1:])
	return token, token != ""
}
