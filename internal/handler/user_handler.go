package handler

import (
	"net/http"
	"strconv"
	"time"

	"ricemill-service/internal/auth"
	"ricemill-service/internal/middleware"
	"ricemill-service/internal/model"
	"ricemill-service/pkg/logger"
	"ricemill-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// CreateUser handles POST /users (admin only)
func (h *Handler) CreateUser(c echo.Context) error {
	log := logger.FromContext(c)

	caller, ok := middleware.CurrentUser(c)
	if !ok {
		return unauthenticated(c)
	}
	if err := auth.AuthorizeRole(callerOf(caller), auth.ManageUsers); err != nil {
		prometheus.RecordAuthError("forbidden")
		return forbidden(c, "admin privileges required")
	}

	var req struct {
		Username  string `json:"username"`
		Email     string `json:"email"`
		Password  string `json:"password"`
		FullName  string `json:"full_name"`
		Role      string `json:"role"`
		CompanyID uint   `json:"company_id"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse user creation request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.Username == "" || req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "username, email and password are required"})
	}

	// Roles outside the closed set are rejected at write time
	role, err := auth.ParseRole(req.Role)
	if err != nil {
		log.Error("Unknown role on user creation", zap.String("role", req.Role))
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "unknown role"})
	}

	// Uniqueness checks on username and email
	defer prometheus.TrackDBOperation("query")(time.Now())
	var existing model.User
	if result := h.DB.Where("username = ?", req.Username).First(&existing); result.Error == nil {
		return c.JSON(http.StatusConflict, echo.Map{"error": "username already registered"})
	}
	if result := h.DB.Where("email = ?", req.Email).First(&existing); result.Error == nil {
		return c.JSON(http.StatusConflict, echo.Map{"error": "email already registered"})
	}

	// The target company must exist
	var company model.Company
	if result := h.DB.First(&company, req.CompanyID); result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "company not found"})
	}

	// Hash password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Error("Failed to hash password", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "user creation failed"})
	}

	user := model.User{
		Username:  req.Username,
		Email:     req.Email,
		Password:  string(hashedPassword),
		FullName:  req.FullName,
		Active:    true,
		Role:      role.String(),
		CompanyID: company.ID,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if result := h.DB.Create(&user); result.Error != nil {
		log.Error("Failed to create user", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "user creation failed"})
	}

	log.Info("User created",
		zap.String("username", user.Username),
		zap.String("role", user.Role),
		zap.Uint("company_id", user.CompanyID))
	return c.JSON(http.StatusCreated, user)
}

// ListUsers handles GET /users (admin only)
func (h *Handler) ListUsers(c echo.Context) error {
	log := logger.FromContext(c)

	caller, ok := middleware.CurrentUser(c)
	if !ok {
		return unauthenticated(c)
	}
	if err := auth.AuthorizeRole(callerOf(caller), auth.ManageUsers); err != nil {
		prometheus.RecordAuthError("forbidden")
		return forbidden(c, "admin privileges required")
	}

	skip, limit := pagination(c)

	defer prometheus.TrackDBOperation("query")(time.Now())
	var users []model.User
	if result := h.DB.Offset(skip).Limit(limit).Find(&users); result.Error != nil {
		log.Error("Failed to list users", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to list users"})
	}

	return c.JSON(http.StatusOK, users)
}

// UpdateUser handles PATCH /users/:id (admin only). Only supplied fields
// change; a supplied password is re-hashed.
func (h *Handler) UpdateUser(c echo.Context) error {
	log := logger.FromContext(c)

	caller, ok := middleware.CurrentUser(c)
	if !ok {
		return unauthenticated(c)
	}
	if err := auth.AuthorizeRole(callerOf(caller), auth.ManageUsers); err != nil {
		prometheus.RecordAuthError("forbidden")
		return forbidden(c, "admin privileges required")
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user ID"})
	}

	var user model.User
	if result := h.DB.First(&user, id); result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}

	var req struct {
		Email    *string `json:"email"`
		Password *string `json:"password"`
		FullName *string `json:"full_name"`
		Active   *bool   `json:"active"`
		Role     *string `json:"role"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	updates := map[string]interface{}{}
	if req.Email != nil {
		var existing model.User
		if result := h.DB.Where("email = ? AND id <> ?", *req.Email, user.ID).First(&existing); result.Error == nil {
			return c.JSON(http.StatusConflict, echo.Map{"error": "email already registered"})
		}
		updates["email"] = *req.Email
	}
	if req.Password != nil && *req.Password != "" {
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			log.Error("Failed to hash password", zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "user update failed"})
		}
		updates["password"] = string(hashedPassword)
	}
	if req.FullName != nil {
		updates["full_name"] = *req.FullName
	}
	if req.Active != nil {
		updates["active"] = *req.Active
	}
	if req.Role != nil {
		role, err := auth.ParseRole(*req.Role)
		if err != nil {
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "unknown role"})
		}
		updates["role"] = role.String()
	}

	if len(updates) > 0 {
		defer prometheus.TrackDBOperation("update")(time.Now())
		if result := h.DB.Model(&user).Updates(updates); result.Error != nil {
			log.Error("Failed to update user", zap.Error(result.Error))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "user update failed"})
		}
	}

	log.Info("User updated", zap.Uint("id", user.ID))
	return c.JSON(http.StatusOK, user)
}

// DeleteUser handles DELETE /users/:id (admin only)
func (h *Handler) DeleteUser(c echo.Context) error {
	log := logger.FromContext(c)

	caller, ok := middleware.CurrentUser(c)
	if !ok {
		return unauthenticated(c)
	}
	if err := auth.AuthorizeRole(callerOf(caller), auth.ManageUsers); err != nil {
		prometheus.RecordAuthError("forbidden")
		return forbidden(c, "admin privileges required")
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user ID"})
	}

	var user model.User
	if result := h.DB.First(&user, id); result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())
	if result := h.DB.Delete(&user); result.Error != nil {
		log.Error("Failed to delete user", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "user deletion failed"})
	}

	log.Info("User deleted", zap.Uint("id", user.ID))
	return c.JSON(http.StatusOK, echo.Map{"message": "user deleted"})
}
