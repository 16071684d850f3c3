package adminapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/elifnazdmn/HomeStock-Web/internal/domain"
	"github.com/elifnazdmn/HomeStock-Web/internal/webserver"
	"github.com/elifnazdmn/HomeStock-Web/pkg/common"
)

type userPayload struct {
	Name     string `json:"name" validate:"required,min=1,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"omitempty,max=30"`
	Password string `json:"password" validate:"omitempty,min=6"`
	Role     string `json:"role" validate:"omitempty,oneof=admin user"`
	Status   string `json:"status" validate:"omitempty,oneof=enabled disabled"`
}

// registerUserRoutes registers household member CRUD endpoints
func registerUserRoutes() {
	webserver.AdminGET("/users", listUsers)
	webserver.AdminGET("/users/:id", getUser)
	webserver.AdminPOST("/users", createUser)
	webserver.AdminPUT("/users/:id", updateUser)
	webserver.AdminDELETE("/users/:id", deleteUser)
}

func listUsers(c echo.Context) error {
	page, pageSize := parsePagination(c)

	db := GetDB(c).Model(&domain.SysUser{})
	if q := strings.TrimSpace(c.QueryParam("q")); q != "" {
		if strings.EqualFold(db.Name(), "postgres") {
			db = db.Where("name ILIKE ? OR email ILIKE ?", "%"+q+"%", "%"+q+"%")
		} else {
			like := "%" + strings.ToLower(q) + "%"
			db = db.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?", like, like)
		}
	}
	if role := strings.TrimSpace(c.QueryParam("role")); role != "" {
		db = db.Where("role = ?", role)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query users", err.Error())
	}

	var rows []domain.SysUser
	if err := db.Order("id ASC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&rows).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query users", err.Error())
	}
	return paged(c, rows, total, page, pageSize)
}

func getUser(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid user ID", nil)
	}
	var user domain.SysUser
	if err := GetDB(c).Where("id = ?", id).First(&user).Error; err != nil {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "User not found", nil)
	}
	return ok(c, user)
}

func createUser(c echo.Context) error {
	var payload userPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse user", err.Error())
	}
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}
	if payload.Password == "" {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Password is required", nil)
	}

	email := strings.ToLower(strings.TrimSpace(payload.Email))
	var count int64
	GetDB(c).Model(&domain.SysUser{}).Where("email = ?", email).Count(&count)
	if count > 0 {
		return fail(c, http.StatusConflict, "EMAIL_EXISTS", "Email already registered", nil)
	}

	if payload.Role == "" {
		payload.Role = domain.RoleUser
	}
	if payload.Status == "" {
		payload.Status = common.ENABLED
	}

	user := domain.SysUser{
		ID:       common.UUIDint64(),
		Name:     strings.TrimSpace(payload.Name),
		Email:    email,
		Phone:    strings.TrimSpace(payload.Phone),
		Password: common.Sha256HashWithSalt(payload.Password, common.GetSecretSalt()),
		Role:     payload.Role,
		Status:   payload.Status,
	}
	if err := GetDB(c).Create(&user).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create user", err.Error())
	}
	return ok(c, user)
}

func updateUser(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid user ID", nil)
	}
	var user domain.SysUser
	if err := GetDB(c).Where("id = ?", id).First(&user).Error; err != nil {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "User not found", nil)
	}

	var payload userPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse user", err.Error())
	}
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}

	email := strings.ToLower(strings.TrimSpace(payload.Email))
	if email != user.Email {
		var count int64
		GetDB(c).Model(&domain.SysUser{}).Where("email = ? AND id != ?", email, id).Count(&count)
		if count > 0 {
			return fail(c, http.StatusConflict, "EMAIL_EXISTS", "Email already registered", nil)
		}
	}

	// The last admin cannot be demoted, otherwise the console locks itself out.
	if user.Role == domain.RoleAdmin && payload.Role == domain.RoleUser {
		var admins int64
		GetDB(c).Model(&domain.SysUser{}).Where("role = ?", domain.RoleAdmin).Count(&admins)
		if admins <= 1 {
			return fail(c, http.StatusConflict, "LAST_ADMIN", "Cannot demote the last admin", nil)
		}
	}

	user.Name = strings.TrimSpace(payload.Name)
	user.Email = email
	user.Phone = strings.TrimSpace(payload.Phone)
	if payload.Role != "" {
		user.Role = payload.Role
	}
	if payload.Status != "" {
		user.Status = payload.Status
	}
	if payload.Password != "" {
		user.Password = common.Sha256HashWithSalt(payload.Password, common.GetSecretSalt())
	}

	if err := GetDB(c).Save(&user).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update user", err.Error())
	}
	return ok(c, user)
}

func deleteUser(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid user ID", nil)
	}
	var user domain.SysUser
	if err := GetDB(c).Where("id = ?", id).First(&user).Error; err != nil {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "User not found", nil)
	}
	if user.Role == domain.RoleAdmin {
		return fail(c, http.StatusConflict, "ADMIN_UNDELETABLE", "Admin accounts cannot be deleted", nil)
	}

	err = GetDB(c).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&domain.PantryRecord{}).Error; err != nil {
			return err
		}
		return tx.Delete(&user).Error
	})
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to delete user", err.Error())
	}
	return ok(c, map[string]interface{}{"id": id})
}
