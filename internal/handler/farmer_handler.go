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

// CreateFarmer handles POST /farmers. Non-admin callers may only register
// farmers for their own company.
func (h *Handler) CreateFarmer(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordFarmerOperation("create")

	user, ok := middleware.CurrentUser(c)
	if !ok {
		return unauthenticated(c)
	}
	if err := auth.AuthorizeRole(callerOf(user), auth.ManageFarmers); err != nil {
		prometheus.RecordAuthError("forbidden")
		return forbidden(c, "insufficient privileges")
	}

	var req struct {
		Name          string  `json:"name"`
		Village       string  `json:"village"`
		MobileNumber  string  `json:"mobile_number"`
		AadhaarNumber *string `json:"aadhaar_number"`
		FarmAreaAcres float64 `json:"farm_area_acres"`
		CompanyID     uint    `json:"company_id"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse farmer creation request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.Name == "" || req.MobileNumber == "" {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "name and mobile_number are required"})
	}
	if req.FarmAreaAcres < 0 {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "farm_area_acres must not be negative"})
	}

	// Tenancy: the target company must be the caller's own unless admin
	if err := auth.Authorize(callerOf(user), auth.ManageFarmers, req.CompanyID); err != nil {
		log.Error("Cross-company farmer creation denied",
			zap.Uint("caller_company_id", user.CompanyID),
			zap.Uint("target_company_id", req.CompanyID))
		prometheus.RecordAuthError("forbidden")
		return forbidden(c, "cannot create farmer for a different company")
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var company model.Company
	if result := h.DB.First(&company, req.CompanyID); result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "company not found"})
	}

	// Mobile numbers are unique per company, not globally
	var existing model.Farmer
	if result := h.DB.Where("mobile_number = ? AND company_id = ?", req.MobileNumber, req.CompanyID).First(&existing); result.Error == nil {
		log.Error("Duplicate mobile number within company",
			zap.String("mobile_number", req.MobileNumber),
			zap.Uint("company_id", req.CompanyID))
		return c.JSON(http.StatusConflict, echo.Map{"error": "farmer with this mobile number already registered for this company"})
	}

	farmer := model.Farmer{
		Name:          req.Name,
		Village:       req.Village,
		MobileNumber:  req.MobileNumber,
		AadhaarNumber: req.AadhaarNumber,
		FarmAreaAcres: req.FarmAreaAcres,
		CompanyID:     req.CompanyID,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if result := h.DB.Create(&farmer); result.Error != nil {
		log.Error("Failed to create farmer", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "farmer creation failed"})
	}

	log.Info("Farmer registered",
		zap.String("name", farmer.Name),
		zap.Uint("id", farmer.ID),
		zap.Uint("company_id", farmer.CompanyID))
	return c.JSON(http.StatusCreated, farmer)
}

// ListFarmers handles GET /farmers. Admin sees all farmers; other roles see
// only their own company's.
func (h *Handler) ListFarmers(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordFarmerOperation("list")

	user, ok := middleware.CurrentUser(c)
	if !ok {
		return unauthenticated(c)
	}
	caller := callerOf(user)
	if err := auth.AuthorizeRole(caller, auth.ManageFarmers); err != nil {
		prometheus.RecordAuthError("forbidden")
		return forbidden(c, "insufficient privileges")
	}

	skip, limit := pagination(c)

	defer prometheus.TrackDBOperation("query")(time.Now())
	var farmers []model.Farmer
	query := h.DB.Offset(skip).Limit(limit)
	if !caller.IsAdmin() {
		query = query.Where("company_id = ?", user.CompanyID)
	}
	if result := query.Find(&farmers); result.Error != nil {
		log.Error("Failed to list farmers", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to list farmers"})
	}

	return c.JSON(http.StatusOK, farmers)
}

// UpdateFarmer handles PATCH /farmers/:id. Only supplied fields change; a
// farmer never moves between companies.
func (h *Handler) UpdateFarmer(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordFarmerOperation("update")

	user, ok := middleware.CurrentUser(c)
	if !ok {
		return unauthenticated(c)
	}
	if err := auth.AuthorizeRole(callerOf(user), auth.ManageFarmers); err != nil {
		prometheus.RecordAuthError("forbidden")
		return forbidden(c, "insufficient privileges")
	}

	farmer, ok := h.scopedFarmer(c, user, c.Param("id"))
	if !ok {
		return nil
	}

	var req struct {
		Name          *string  `json:"name"`
		Village       *string  `json:"village"`
		MobileNumber  *string  `json:"mobile_number"`
		AadhaarNumber *string  `json:"aadhaar_number"`
		FarmAreaAcres *float64 `json:"farm_area_acres"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Village != nil {
		updates["village"] = *req.Village
	}
	if req.MobileNumber != nil {
		var existing model.Farmer
		if result := h.DB.Where("mobile_number = ? AND company_id = ? AND id <> ?", *req.MobileNumber, farmer.CompanyID, farmer.ID).First(&existing); result.Error == nil {
			return c.JSON(http.StatusConflict, echo.Map{"error": "farmer with this mobile number already registered for this company"})
		}
		updates["mobile_number"] = *req.MobileNumber
	}
	if req.AadhaarNumber != nil {
		updates["aadhaar_number"] = *req.AadhaarNumber
	}
	if req.FarmAreaAcres != nil {
		if *req.FarmAreaAcres < 0 {
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "farm_area_acres must not be negative"})
		}
		updates["farm_area_acres"] = *req.FarmAreaAcres
	}

	if len(updates) > 0 {
		defer prometheus.TrackDBOperation("update")(time.Now())
		if result := h.DB.Model(farmer).Updates(updates); result.Error != nil {
			log.Error("Failed to update farmer", zap.Error(result.Error))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "farmer update failed"})
		}
	}

	log.Info("Farmer updated", zap.Uint("id", farmer.ID))
	return c.JSON(http.StatusOK, farmer)
}

// DeleteFarmer handles DELETE /farmers/:id
func (h *Handler) DeleteFarmer(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordFarmerOperation("delete")

	user, ok := middleware.CurrentUser(c)
	if !ok {
		return unauthenticated(c)
	}
	if err := auth.AuthorizeRole(callerOf(user), auth.ManageFarmers); err != nil {
		prometheus.RecordAuthError("forbidden")
		return forbidden(c, "insufficient privileges")
	}

	farmer, ok := h.scopedFarmer(c, user, c.Param("id"))
	if !ok {
		return nil
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())
	if result := h.DB.Delete(farmer); result.Error != nil {
		log.Error("Failed to delete farmer", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "farmer deletion failed"})
	}

	log.Info("Farmer deleted", zap.Uint("id", farmer.ID))
	return c.JSON(http.StatusOK, echo.Map{"message": "farmer deleted"})
}

// scopedFarmer loads a farmer by path parameter and enforces the tenancy
// rule: a non-admin caller must belong to the farmer's owning company. The
// NotFound check runs before the tenancy comparison, so the two outcomes
// stay distinguishable. On failure the response has already been written
// and ok is false.
func (h *Handler) scopedFarmer(c echo.Context, user *model.User, param string) (*model.Farmer, bool) {
	id, err := strconv.ParseUint(param, 10, 32)
	if err != nil {
		_ = c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid farmer ID"})
		return nil, false
	}
	return h.scopedFarmerByID(c, user, uint(id))
}

// scopedFarmerByID is scopedFarmer for callers that already hold the id,
// such as entry creation where the farmer id arrives in the request body.
func (h *Handler) scopedFarmerByID(c echo.Context, user *model.User, id uint) (*model.Farmer, bool) {
	log := logger.FromContext(c)

	defer prometheus.TrackDBOperation("query")(time.Now())
	var farmer model.Farmer
	if result := h.DB.First(&farmer, id); result.Error != nil {
		_ = c.JSON(http.StatusNotFound, echo.Map{"error": "farmer not found"})
		return nil, false
	}

	caller := callerOf(user)
	if !caller.IsAdmin() && farmer.CompanyID != user.CompanyID {
		log.Error("Cross-company farmer access denied",
			zap.Uint("farmer_id", farmer.ID),
			zap.Uint("caller_company_id", user.CompanyID),
			zap.Uint("farmer_company_id", farmer.CompanyID))
		prometheus.RecordAuthError("forbidden")
		_ = forbidden(c, "farmer belongs to a different company")
		return nil, false
	}

	return &farmer, true
}
