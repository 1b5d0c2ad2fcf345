package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/soundguard/soundguard-go/internal/datastore"
	"github.com/soundguard/soundguard-go/internal/errors"
	"github.com/soundguard/soundguard-go/internal/security"
)

// UpdateRoleRequest changes a user's role.
type UpdateRoleRequest struct {
	Role string `json:"role"`
}

func (c *Controller) initAdminRoutes(group *echo.Group) {
	admin := group.Group("/admin", c.RequireAdmin)
	admin.GET("/users", c.AdminListUsers)
	admin.DELETE("/users/:id", c.AdminDeleteUser)
	admin.PUT("/users/:id/role", c.AdminUpdateUserRole)
}

// AdminListUsers returns every registered account.
func (c *Controller) AdminListUsers(ctx echo.Context) error {
	users, err := c.DS.GetAllUsers()
	if err != nil {
		return c.HandleError(ctx, err, "사용자 목록 조회 실패", http.StatusInternalServerError)
	}

	responses := make([]security.UserInfo, 0, len(users))
	for i := range users {
		responses = append(responses, security.UserInfo{
			UserID: users[i].UserID,
			Name:   users[i].Name,
			Email:  users[i].Email,
			Role:   users[i].Role,
		})
	}
	return ctx.JSON(http.StatusOK, responses)
}

// AdminDeleteUser removes an account and everything it owns. Admins cannot
// delete themselves.
func (c *Controller) AdminDeleteUser(ctx echo.Context) error {
	targetID := ctx.Param("id")
	if targetID == currentUserID(ctx) {
		return ctx.JSON(http.StatusBadRequest, ErrorResponse{Error: "자기 자신은 삭제할 수 없습니다"})
	}

	if err := c.DS.DeleteUser(targetID); err != nil {
		if errors.Is(err, datastore.ErrRecordNotFound) {
			return ctx.JSON(http.StatusNotFound, ErrorResponse{Error: "사용자를 찾을 수 없습니다"})
		}
		return c.HandleError(ctx, err, "사용자 삭제 실패", http.StatusInternalServerError)
	}

	c.logger.Info("user deleted by admin", "target", targetID, "admin", currentUserID(ctx))
	return ctx.JSON(http.StatusOK, map[string]bool{"success": true})
}

// AdminUpdateUserRole changes an account's role.
func (c *Controller) AdminUpdateUserRole(ctx echo.Context) error {
	var req UpdateRoleRequest
	if err := ctx.Bind(&req); err != nil {
		return c.HandleError(ctx, err, "잘못된 요청입니다", http.StatusBadRequest)
	}
	if req.Role == "" {
		return ctx.JSON(http.StatusBadRequest, ErrorResponse{Error: "역할이 필요합니다"})
	}

	user, err := c.DS.GetUser(ctx.Param("id"))
	if err != nil {
		if errors.Is(err, datastore.ErrRecordNotFound) {
			return ctx.JSON(http.StatusNotFound, ErrorResponse{Error: "사용자를 찾을 수 없습니다"})
		}
		return c.HandleError(ctx, err, "역할 변경 실패", http.StatusInternalServerError)
	}

	user.Role = req.Role
	if err := c.DS.UpdateUser(&user); err != nil {
		return c.HandleError(ctx, err, "역할 변경 실패", http.StatusInternalServerError)
	}

	return ctx.JSON(http.StatusOK, security.UserInfo{
		UserID: user.UserID,
		Name:   user.Name,
		Email:  user.Email,
		Role:   user.Role,
	})
}
