package api

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// userIDContextKey is the echo context key the authenticated user id is
// stored under.
const userIDContextKey = "user_id"

// AuthMiddleware validates the Bearer token and stores the authenticated
// user id in the request context.
func (c *Controller) AuthMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		header := ctx.Request().Header.Get(echo.HeaderAuthorization)
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			return ctx.JSON(http.StatusUnauthorized, ErrorResponse{Error: "인증이 필요합니다"})
		}

		userID, err := c.Tokens.VerifyToken(token)
		if err != nil {
			c.logger.Debug("token verification failed", "error", err)
			return ctx.JSON(http.StatusUnauthorized, ErrorResponse{Error: "유효하지 않은 토큰입니다"})
		}

		ctx.Set(userIDContextKey, userID)
		return next(ctx)
	}
}

// RequireAdmin allows the request through only when the authenticated user
// has the admin role.
func (c *Controller) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		user, err := c.DS.GetUser(currentUserID(ctx))
		if err != nil {
			return ctx.JSON(http.StatusUnauthorized, ErrorResponse{Error: "사용자를 찾을 수 없습니다"})
		}
		if user.Role != "admin" {
			return ctx.JSON(http.StatusForbidden, ErrorResponse{Error: "관리자 권한이 필요합니다"})
		}
		return next(ctx)
	}
}

// currentUserID returns the authenticated user id set by AuthMiddleware.
func currentUserID(ctx echo.Context) string {
	userID, _ := ctx.Get(userIDContextKey).(string)
	return userID
}
