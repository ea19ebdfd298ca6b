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
)

// CreateCompany handles POST /companies (admin only)
func (h *Handler) CreateCompany(c echo.Context) error {
	log := logger.FromContext(c)

	user, ok := middleware.CurrentUser(c)
	if !ok {
		return unauthenticated(c)
	}
	if err := auth.AuthorizeRole(callerOf(user), auth.ManageCompanies); err != nil {
		log.Error("Company creation denied", zap.String("role", user.Role))
		prometheus.RecordAuthError("forbidden")
		return forbidden(c, "admin privileges required")
	}

	var req struct {
		Name          string `json:"name"`
		Address       string `json:"address"`
		ContactPerson string `json:"contact_person"`
		PhoneNumber   string `json:"phone_number"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse company creation request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.Name == "" {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "name is required"})
	}

	// Uniqueness check on name
	defer prometheus.TrackDBOperation("query")(time.Now())
	var existing model.Company
	if result := h.DB.Where("name = ?", req.Name).First(&existing); result.Error == nil {
		log.Error("Company name already registered", zap.String("name", req.Name))
		return c.JSON(http.StatusConflict, echo.Map{"error": "company name already registered"})
	}

	company := model.Company{
		Name:          req.Name,
		Address:       req.Address,
		ContactPerson: req.ContactPerson,
		PhoneNumber:   req.PhoneNumber,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if result := h.DB.Create(&company); result.Error != nil {
		log.Error("Failed to create company", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "company creation failed"})
	}

	log.Info("Company created", zap.String("name", company.Name), zap.Uint("id", company.ID))
	return c.JSON(http.StatusCreated, company)
}

// ListCompanies handles GET /companies (admin only)
func (h *Handler) ListCompanies(c echo.Context) error {
	log := logger.FromContext(c)

	user, ok := middleware.CurrentUser(c)
	if !ok {
		return unauthenticated(c)
	}
	if err := auth.AuthorizeRole(callerOf(user), auth.ManageCompanies); err != nil {
		prometheus.RecordAuthError("forbidden")
		return forbidden(c, "admin privileges required")
	}

	skip, limit := pagination(c)

	defer prometheus.TrackDBOperation("query")(time.Now())
	var companies []model.Company
	if result := h.DB.Offset(skip).Limit(limit).Find(&companies); result.Error != nil {
		log.Error("Failed to list companies", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to list companies"})
	}

	return c.JSON(http.StatusOK, companies)
}

// UpdateCompany handles PATCH /companies/:id (admin only). Only supplied
// fields change.
func (h *Handler) UpdateCompany(c echo.Context) error {
	log := logger.FromContext(c)

	user, ok := middleware.CurrentUser(c)
	if !ok {
		return unauthenticated(c)
	}
	if err := auth.AuthorizeRole(callerOf(user), auth.ManageCompanies); err != nil {
		prometheus.RecordAuthError("forbidden")
		return forbidden(c, "admin privileges required")
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid company ID"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var company model.Company
	if result := h.DB.First(&company, id); result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "company not found"})
	}

	var req struct {
		Name          *string `json:"name"`
		Address       *string `json:"address"`
		ContactPerson *string `json:"contact_person"`
		PhoneNumber   *string `json:"phone_number"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		if *req.Name == "" {
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "name must not be empty"})
		}
		var existing model.Company
		if result := h.DB.Where("name = ? AND id <> ?", *req.Name, company.ID).First(&existing); result.Error == nil {
			return c.JSON(http.StatusConflict, echo.Map{"error": "company name already registered"})
		}
		updates["name"] = *req.Name
	}
	if req.Address != nil {
		updates["address"] = *req.Address
	}
	if req.ContactPerson != nil {
		updates["contact_person"] = *req.ContactPerson
	}
	if req.PhoneNumber != nil {
		updates["phone_number"] = *req.PhoneNumber
	}

	if len(updates) > 0 {
		defer prometheus.TrackDBOperation("update")(time.Now())
		if result := h.DB.Model(&company).Updates(updates); result.Error != nil {
			log.Error("Failed to update company", zap.Error(result.Error))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "company update failed"})
		}
	}

	log.Info("Company updated", zap.Uint("id", company.ID))
	return c.JSON(http.StatusOK, company)
}

// DeleteCompany handles DELETE /companies/:id (admin only)
func (h *Handler) DeleteCompany(c echo.Context) error {
	log := logger.FromContext(c)

	user, ok := middleware.CurrentUser(c)
	if !ok {
		return unauthenticated(c)
	}
	if err := auth.AuthorizeRole(callerOf(user), auth.ManageCompanies); err != nil {
		prometheus.RecordAuthError("forbidden")
		return forbidden(c, "admin privileges required")
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid company ID"})
	}

	var company model.Company
	if result := h.DB.First(&company, id); result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "company not found"})
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())
	if result := h.DB.Delete(&company); result.Error != nil {
		log.Error("Failed to delete company", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "company deletion failed"})
	}

	log.Info("Company deleted", zap.Uint("id", company.ID))
	return c.JSON(http.StatusOK, echo.Map{"message": "company deleted"})
}
