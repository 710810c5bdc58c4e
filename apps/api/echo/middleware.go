package echoapi

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	operatorCookieName = "op_session"
	operatorKeyCtx     = "operatorKey"
)

// operatorSessionMiddleware keys every request to an operator browsing
// context. Each cookie value owns an independent session state: two
// presenters minting concurrently never share a token.
func operatorSessionMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			cookie, err := ctx.Cookie(operatorCookieName)
			if err != nil || cookie.Value == "" {
				cookie = &http.Cookie{
					Name:     operatorCookieName,
					Value:    uuid.New().String(),
					Path:     "/",
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				}
				ctx.SetCookie(cookie)
			}
			ctx.Set(operatorKeyCtx, cookie.Value)
			return next(ctx)
		}
	}
}
