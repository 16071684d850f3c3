package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/elifnazdmn/HomeStock-Web/internal/domain"
	"github.com/elifnazdmn/HomeStock-Web/internal/webserver"
	"github.com/elifnazdmn/HomeStock-Web/pkg/common"
)

type loginPayload struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// login checks credentials against sys_user and issues a session token
// carrying the role claim the route guards rely on.
func login(c echo.Context) error {
	var payload loginPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse login request", err.Error())
	}
	if err := c.Validate(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Email and password are required", err.Error())
	}

	email := strings.ToLower(strings.TrimSpace(payload.Email))
	hashed := common.Sha256HashWithSalt(payload.Password, common.GetSecretSalt())

	var user domain.SysUser
	err := webserver.GetDB(c).
		Where("email = ? AND status = ?", email, common.ENABLED).
		First(&user).Error
	if err != nil || user.Password != hashed {
		return fail(c, http.StatusUnauthorized, "LOGIN_FAILED", "Email or password is wrong", nil)
	}

	expire := time.Duration(appConfig.Web.JwtExpire) * time.Hour
	token, err := webserver.IssueToken(appConfig.Web.Secret, user.ID, user.Name, user.Role, expire)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "TOKEN_ERROR", "Failed to issue session token", err.Error())
	}

	webserver.GetDB(c).Model(&domain.SysUser{}).
		Where("id = ?", user.ID).
		Update("last_login", time.Now())

	zap.L().Info("user logged in", zap.Int64("user_id", user.ID), zap.String("role", user.Role))
	return ok(c, map[string]interface{}{
		"token": token,
		"role":  user.Role,
		"user": map[string]interface{}{
			"id":    user.ID,
			"name":  user.Name,
			"email": user.Email,
			"phone": user.Phone,
		},
	})
}
