package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/soundguard/soundguard-go/internal/security"
)

// initAuthRoutes registers registration, login and profile endpoints.
// Register and login are public; the profile endpoints require a token.
func (c *Controller) initAuthRoutes() {
	group := c.Group.Group("/auth")
	group.POST("/register", c.Register)
	group.POST("/login", c.Login)
	group.GET("/me", c.CurrentUser, c.AuthMiddleware)
	group.PUT("/me", c.UpdateCurrentUser, c.AuthMiddleware)
}

// Register creates a new account.
func (c *Controller) Register(ctx echo.Context) error {
	var req security.SignupRequest
	if err := ctx.Bind(&req); err != nil {
		return c.HandleError(ctx, err, "잘못된 요청입니다", http.StatusBadRequest)
	}
	if req.UserID == "" || req.Password == "" || req.Name == "" || req.Email == "" {
		return ctx.JSON(http.StatusBadRequest, ErrorResponse{Error: "필수 항목이 누락되었습니다"})
	}

	user, err := c.Auth.Register(&req)
	if err != nil {
		return ctx.JSON(statusForAccountError(err), ErrorResponse{Error: err.Error()})
	}

	c.logger.Info("user registered", "user_id", user.UserID)
	return ctx.JSON(http.StatusOK, user)
}

// Login verifies credentials and returns a token.
func (c *Controller) Login(ctx echo.Context) error {
	var req security.LoginRequest
	if err := ctx.Bind(&req); err != nil {
		return c.HandleError(ctx, err, "잘못된 요청입니다", http.StatusBadRequest)
	}

	result, err := c.Auth.Login(&req)
	if err != nil {
		return ctx.JSON(statusForAccountError(err), ErrorResponse{Error: err.Error()})
	}
	return ctx.JSON(http.StatusOK, result)
}

// CurrentUser returns the authenticated account.
func (c *Controller) CurrentUser(ctx echo.Context) error {
	user, err := c.Auth.CurrentUser(currentUserID(ctx))
	if err != nil {
		return ctx.JSON(statusForAccountError(err), ErrorResponse{Error: err.Error()})
	}
	return ctx.JSON(http.StatusOK, user)
}

// UpdateCurrentUser applies a profile update to the authenticated account.
func (c *Controller) UpdateCurrentUser(ctx echo.Context) error {
	var req security.UpdateUserRequest
	if err := ctx.Bind(&req); err != nil {
		return c.HandleError(ctx, err, "잘못된 요청입니다", http.StatusBadRequest)
	}

	user, err := c.Auth.UpdateUser(currentUserID(ctx), &req)
	if err != nil {
		return ctx.JSON(statusForAccountError(err), ErrorResponse{Error: err.Error()})
	}
	return ctx.JSON(http.StatusOK, user)
}
