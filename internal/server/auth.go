package server

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"modelgate/config"
)

// AuthMiddleware creates an Echo middleware enforcing the configured access
// tokens. With no enabled tokens the gateway stays open. Paths in skipPaths
// bypass the check.
func AuthMiddleware(cfg *config.Config, skipPaths []string) echo.MiddlewareFunc {
	skip := make(map[string]struct{}, len(skipPaths))
	for _, p := range skipPaths {
		skip[p] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if _, ok := skip[c.Request().URL.Path]; ok {
				return next(c)
			}

			// Tokens are re-read per request so a reload takes effect
			// without a restart.
			enabled := enabledTokens(cfg.GetTokens())
			if len(enabled) == 0 {
				return next(c)
			}

			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return c.JSON(http.StatusUnauthorized, map[string]any{
					"error": "missing authorization header",
				})
			}

			const prefix = "Bearer "
			if !strings.HasPrefix(authHeader, prefix) {
				return c.JSON(http.StatusUnauthorized, map[string]any{
					"error": "invalid authorization header format, expected 'Bearer <token>'",
				})
			}

			token := strings.TrimPrefix(authHeader, prefix)
			if _, ok := enabled[token]; !ok {
				return c.JSON(http.StatusUnauthorized, map[string]any{
					"error": "invalid access token",
				})
			}

			return next(c)
		}
	}
}

func enabledTokens(tokens []config.AccessToken) map[string]struct{} {
	out := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		if t.Enabled && t.Token != "" {
			out[t.Token] = struct{}{}
		}
	}
	return out
}
