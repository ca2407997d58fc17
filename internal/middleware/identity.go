package middleware

// identity.go holds helpers shared across middleware files.  The rate
// limiter and response cache key requests by caller identity; for
// authenticated requests that is the numeric user ID stored by JWTAuth,
// for anonymous browsing it degrades to "guest".

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// identityKey returns a stable identity string for the request: the
// authenticated user's ID when present, "guest" otherwise.
func identityKey(c echo.Context) string {
	if v, ok := c.Get("user_id").(uint64); ok && v != 0 {
		return strconv.FormatUint(v, 10)
	}
	return "guest"
}
