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

// GenerateReceipt handles POST /farmers/:id/receipts?date=YYYY-MM-DD. It
// aggregates the farmer's entire transaction history as of call time and
// appends a new receipt row. Repeated calls produce new rows with identical
// values; receipts are recomputable snapshots, not deduplicated.
func (h *Handler) GenerateReceipt(c echo.Context) error {
	log := logger.FromContext(c)

	user, ok := middleware.CurrentUser(c)
	if !ok {
		return unauthenticated(c)
	}
	if err := auth.AuthorizeRole(callerOf(user), auth.ManageReceipts); err != nil {
		prometheus.RecordAuthError("forbidden")
		return forbidden(c, "insufficient privileges")
	}

	date, err := parseDate(c.QueryParam("date"))
	if err != nil {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "date must be YYYY-MM-DD"})
	}

	farmer, ok := h.scopedFarmer(c, user, c.Param("id"))
	if !ok {
		return nil
	}

	// Load the farmer's full lifetime history, no date filtering
	defer prometheus.TrackDBOperation("query")(time.Now())
	var seeds []model.SeedDistribution
	if result := h.DB.Where("farmer_id = ?", farmer.ID).Find(&seeds); result.Error != nil {
		log.Error("Failed to load seed distributions", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "receipt generation failed"})
	}
	var harvests []model.HarvestEntry
	if result := h.DB.Where("farmer_id = ?", farmer.ID).Find(&harvests); result.Error != nil {
		log.Error("Failed to load harvest entries", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "receipt generation failed"})
	}

	summary := ledger.Summarize(seeds, harvests)

	receipt := model.Receipt{
		FarmerID:       farmer.ID,
		Date:           date,
		SeedCostDebit:  summary.SeedCostDebit,
		RiceSaleCredit: summary.RiceSaleCredit,
		FinalBalance:   summary.FinalBalance,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if result := h.DB.Create(&receipt); result.Error != nil {
		log.Error("Failed to create receipt", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "receipt generation failed"})
	}

	prometheus.ReceiptCounter.Inc()

	log.Info("Receipt generated",
		zap.Uint("id", receipt.ID),
		zap.Uint("farmer_id", receipt.FarmerID),
		zap.Float64("seed_cost_debit", receipt.SeedCostDebit),
		zap.Float64("rice_sale_credit", receipt.RiceSaleCredit),
		zap.Float64("final_balance", receipt.FinalBalance))
	return c.JSON(http.StatusCreated, receipt)
}

// ListReceipts handles GET /farmers/:id/receipts
func (h *Handler) ListReceipts(c echo.Context) error {
	log := logger.FromContext(c)

	user, ok := middleware.CurrentUser(c)
	if !ok {
		return unauthenticated(c)
	}
	if err := auth.AuthorizeRole(callerOf(user), auth.ManageReceipts); err != nil {
		prometheus.RecordAuthError("forbidden")
		return forbidden(c, "insufficient privileges")
	}

	farmer, ok := h.scopedFarmer(c, user, c.Param("id"))
	if !ok {
		return nil
	}

	skip, limit := pagination(c)

	defer prometheus.TrackDBOperation("query")(time.Now())
	var receipts []model.Receipt
	if result := h.DB.Where("farmer_id = ?", farmer.ID).Offset(skip).Limit(limit).Find(&receipts); result.Error != nil {
		log.Error("Failed to list receipts", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to list receipts"})
	}

	return c.JSON(http.StatusOK, receipts)
}
