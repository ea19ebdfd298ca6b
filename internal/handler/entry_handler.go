package handler

import (
	"net/http"
	"time"

	"ricemill-service/internal/auth"
	"ricemill-service/internal/ledger"
	"ricemill-service/internal/middleware"
	"ricemill-service/internal/model"
	"ricemill-service/pkg/logger"
	"ricemill-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// CreateSeedDistribution handles POST /seed-distributions. The total amount
// is computed here and stored, never accepted from the client.
func (h *Handler) CreateSeedDistribution(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntry("seed_distribution")

	user, ok := middleware.CurrentUser(c)
	if !ok {
		return unauthenticated(c)
	}
	if err := auth.AuthorizeRole(callerOf(user), auth.RecordTransactions); err != nil {
		prometheus.RecordAuthError("forbidden")
		return forbidden(c, "insufficient privileges")
	}

	var req struct {
		FarmerID     uint    `json:"farmer_id"`
		Date         string  `json:"date"`
		NumBagsGiven int     `json:"num_bags_given"`
		RatePerBag   float64 `json:"rate_per_bag"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse seed distribution request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	date, err := parseDate(req.Date)
	if err != nil {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "date must be YYYY-MM-DD"})
	}
	if req.NumBagsGiven <= 0 || req.RatePerBag <= 0 {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "num_bags_given and rate_per_bag must be positive"})
	}

	farmer, ok := h.scopedFarmerByID(c, user, req.FarmerID)
	if !ok {
		return nil
	}

	entry := model.SeedDistribution{
		FarmerID:     farmer.ID,
		Date:         date,
		NumBagsGiven: req.NumBagsGiven,
		RatePerBag:   req.RatePerBag,
		TotalAmount:  ledger.SeedTotal(req.NumBagsGiven, req.RatePerBag),
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if result := h.DB.Create(&entry); result.Error != nil {
		log.Error("Failed to create seed distribution", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "seed distribution creation failed"})
	}

	log.Info("Seed distribution recorded",
		zap.Uint("id", entry.ID),
		zap.Uint("farmer_id", entry.FarmerID),
		zap.Float64("total_amount", entry.TotalAmount))
	return c.JSON(http.StatusCreated, entry)
}

// CreateHarvestEntry handles POST /harvest-entries. Weight in quintals and
// the sale amount are computed and stored.
func (h *Handler) CreateHarvestEntry(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntry("harvest_entry")

	user, ok := middleware.CurrentUser(c)
	if !ok {
		return unauthenticated(c)
	}
	if err := auth.AuthorizeRole(callerOf(user), auth.RecordTransactions); err != nil {
		prometheus.RecordAuthError("forbidden")
		return forbidden(c, "insufficient privileges")
	}

	var req struct {
		FarmerID          uint    `json:"farmer_id"`
		Date              string  `json:"date"`
		NumBagsReturned   int     `json:"num_bags_returned"`
		NetWeightPerBagKg float64 `json:"net_weight_per_bag_kg"`
		RatePerQuintal    float64 `json:"rate_per_quintal"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse harvest entry request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	date, err := parseDate(req.Date)
	if err != nil {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "date must be YYYY-MM-DD"})
	}
	if req.NumBagsReturned <= 0 || req.NetWeightPerBagKg <= 0 || req.RatePerQuintal <= 0 {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "num_bags_returned, net_weight_per_bag_kg and rate_per_quintal must be positive"})
	}

	farmer, ok := h.scopedFarmerByID(c, user, req.FarmerID)
	if !ok {
		return nil
	}

	weight := ledger.HarvestWeightQuintals(req.NumBagsReturned, req.NetWeightPerBagKg)
	entry := model.HarvestEntry{
		FarmerID:            farmer.ID,
		Date:                date,
		NumBagsReturned:     req.NumBagsReturned,
		NetWeightPerBagKg:   req.NetWeightPerBagKg,
		TotalWeightQuintals: weight,
		RatePerQuintal:      req.RatePerQuintal,
		TotalAmount:         ledger.HarvestTotal(weight, req.RatePerQuintal),
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if result := h.DB.Create(&entry); result.Error != nil {
		log.Error("Failed to create harvest entry", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "harvest entry creation failed"})
	}

	log.Info("Harvest entry recorded",
		zap.Uint("id", entry.ID),
		zap.Uint("farmer_id", entry.FarmerID),
		zap.Float64("total_weight_quintals", entry.TotalWeightQuintals),
		zap.Float64("total_amount", entry.TotalAmount))
	return c.JSON(http.StatusCreated, entry)
}

// ListSeedDistributions handles GET /farmers/:id/seed-distributions
func (h *Handler) ListSeedDistributions(c echo.Context) error {
	log := logger.FromContext(c)

	user, ok := middleware.CurrentUser(c)
	if !ok {
		return unauthenticated(c)
	}
	if err := auth.AuthorizeRole(callerOf(user), auth.RecordTransactions); err != nil {
		prometheus.RecordAuthError("forbidden")
		return forbidden(c, "insufficient privileges")
	}

	farmer, ok := h.scopedFarmer(c, user, c.Param("id"))
	if !ok {
		return nil
	}

	skip, limit := pagination(c)

	defer prometheus.TrackDBOperation("query")(time.Now())
	var entries []model.SeedDistribution
	if result := h.DB.Where("farmer_id = ?", farmer.ID).Offset(skip).Limit(limit).Find(&entries); result.Error != nil {
		log.Error("Failed to list seed distributions", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to list seed distributions"})
	}

	return c.JSON(http.StatusOK, entries)
}

// ListHarvestEntries handles GET /farmers/:id/harvest-entries
func (h *Handler) ListHarvestEntries(c echo.Context) error {
	log := logger.FromContext(c)

	user, ok := middleware.CurrentUser(c)
	if !ok {
		return unauthenticated(c)
	}
	if err := auth.AuthorizeRole(callerOf(user), auth.RecordTransactions); err != nil {
		prometheus.RecordAuthError("forbidden")
		return forbidden(c, "insufficient privileges")
	}

	farmer, ok := h.scopedFarmer(c, user, c.Param("id"))
	if !ok {
		return nil
	}

	skip, limit := pagination(c)

	defer prometheus.TrackDBOperation("query")(time.Now())
	var entries []model.HarvestEntry
	if result := h.DB.Where("farmer_id = ?", farmer.ID).Offset(skip).Limit(limit).Find(&entries); result.Error != nil {
		log.Error("Failed to list harvest entries", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to list harvest entries"})
	}

	return c.JSON(http.StatusOK, entries)
}
