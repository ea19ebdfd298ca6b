package handler

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ricemill-service/internal/model"
)

// TestFullScenario walks the whole flow: admin provisions a company and an
// agent, the agent registers a farmer, records both sides of the ledger and
// generates a receipt.
func TestFullScenario(t *testing.T) {
	env := newTestEnv(t)
	home := env.seedCompany("Head Office")
	env.seedUser("alice", "admin", home.ID)
	adminToken := env.token("alice")

	// Admin creates company "Acme"
	rec := env.do(http.MethodPost, "/companies", adminToken, map[string]string{
		"name": "Acme",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var acme model.Company
	decode(t, rec, &acme)

	// Admin creates agent bob in Acme
	rec = env.do(http.MethodPost, "/users", adminToken, map[string]interface{}{
		"username":   "bob",
		"email":      "bob@acme.example",
		"password":   "hunter2",
		"role":       "agent",
		"company_id": acme.ID,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	// Bob authenticates
	rec = env.do(http.MethodPost, "/token", "", map[string]string{
		"username": "bob",
		"password": "hunter2",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var login struct {
		AccessToken string `json:"access_token"`
	}
	decode(t, rec, &login)
	bobToken := login.AccessToken

	// Bob registers a farmer for Acme
	rec = env.do(http.MethodPost, "/farmers", bobToken, map[string]interface{}{
		"name":            "Ram Singh",
		"village":         "Rampur",
		"mobile_number":   "9999999999",
		"farm_area_acres": 3.2,
		"company_id":      acme.ID,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var farmer model.Farmer
	decode(t, rec, &farmer)

	// Same mobile again for Acme conflicts
	rec = env.do(http.MethodPost, "/farmers", bobToken, map[string]interface{}{
		"name":          "Shyam Singh",
		"mobile_number": "9999999999",
		"company_id":    acme.ID,
	})
	require.Equal(t, http.StatusConflict, rec.Code)

	// Seed distribution: 10 bags at 50 per bag
	rec = env.do(http.MethodPost, "/seed-distributions", bobToken, map[string]interface{}{
		"farmer_id":      farmer.ID,
		"date":           "2026-06-01",
		"num_bags_given": 10,
		"rate_per_bag":   50,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var seed model.SeedDistribution
	decode(t, rec, &seed)
	assert.Equal(t, 500.0, seed.TotalAmount)

	// Harvest entry: 10 bags, 60 kg net per bag, 2000 per quintal
	rec = env.do(http.MethodPost, "/harvest-entries", bobToken, map[string]interface{}{
		"farmer_id":             farmer.ID,
		"date":                  "2026-08-15",
		"num_bags_returned":     10,
		"net_weight_per_bag_kg": 60,
		"rate_per_quintal":      2000,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var harvest model.HarvestEntry
	decode(t, rec, &harvest)
	assert.Equal(t, 6.0, harvest.TotalWeightQuintals)
	assert.Equal(t, 12000.0, harvest.TotalAmount)

	// Receipt aggregates the farmer's lifetime history
	rec = env.do(http.MethodPost, fmt.Sprintf("/farmers/%d/receipts?date=2026-08-20", farmer.ID), bobToken, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	var receipt model.Receipt
	decode(t, rec, &receipt)
	assert.Equal(t, 500.0, receipt.SeedCostDebit)
	assert.Equal(t, 12000.0, receipt.RiceSaleCredit)
	assert.Equal(t, 11500.0, receipt.FinalBalance)
}

func TestGenerateReceiptFarmerNotFound(t *testing.T) {
	env := newTestEnv(t)
	acme := env.seedCompany("Acme Rice Mill")
	env.seedUser("bob", "agent", acme.ID)

	rec := env.do(http.MethodPost, "/farmers/9999/receipts?date=2026-08-20", env.token("bob"), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGenerateReceiptCrossCompanyForbidden(t *testing.T) {
	env := newTestEnv(t)
	acme := env.seedCompany("Acme Rice Mill")
	rival := env.seedCompany("Rival Rice Mill")
	env.seedUser("bob", "agent", acme.ID)
	farmer := env.seedFarmer("Mohan Das", "9999999993", rival.ID)

	rec := env.do(http.MethodPost, fmt.Sprintf("/farmers/%d/receipts?date=2026-08-20", farmer.ID), env.token("bob"), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestGenerateReceiptBadDate(t *testing.T) {
	env := newTestEnv(t)
	acme := env.seedCompany("Acme Rice Mill")
	env.seedUser("bob", "agent", acme.ID)
	farmer := env.seedFarmer("Ram Singh", "9999999991", acme.ID)

	rec := env.do(http.MethodPost, fmt.Sprintf("/farmers/%d/receipts?date=20-08-2026", farmer.ID), env.token("bob"), nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestRepeatedReceiptGenerationAppendsIdenticalSnapshots(t *testing.T) {
	env := newTestEnv(t)
	acme := env.seedCompany("Acme Rice Mill")
	env.seedUser("bob", "agent", acme.ID)
	farmer := env.seedFarmer("Ram Singh", "9999999991", acme.ID)
	token := env.token("bob")

	rec := env.do(http.MethodPost, "/seed-distributions", token, map[string]interface{}{
		"farmer_id":      farmer.ID,
		"date":           "2026-06-01",
		"num_bags_given": 4,
		"rate_per_bag":   75,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	path := fmt.Sprintf("/farmers/%d/receipts?date=2026-08-20", farmer.ID)
	first := env.do(http.MethodPost, path, token, nil)
	require.Equal(t, http.StatusCreated, first.Code)
	second := env.do(http.MethodPost, path, token, nil)
	require.Equal(t, http.StatusCreated, second.Code)

	var a, b model.Receipt
	decode(t, first, &a)
	decode(t, second, &b)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, a.SeedCostDebit, b.SeedCostDebit)
	assert.Equal(t, a.FinalBalance, b.FinalBalance)

	list := env.do(http.MethodGet, fmt.Sprintf("/farmers/%d/receipts", farmer.ID), token, nil)
	require.Equal(t, http.StatusOK, list.Code)
	var receipts []model.Receipt
	decode(t, list, &receipts)
	assert.Len(t, receipts, 2)
}

func TestReceiptWithNoHistoryIsZero(t *testing.T) {
	env := newTestEnv(t)
	acme := env.seedCompany("Acme Rice Mill")
	env.seedUser("bob", "agent", acme.ID)
	farmer := env.seedFarmer("Ram Singh", "9999999991", acme.ID)

	rec := env.do(http.MethodPost, fmt.Sprintf("/farmers/%d/receipts?date=2026-08-20", farmer.ID), env.token("bob"), nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	var receipt model.Receipt
	decode(t, rec, &receipt)
	assert.Zero(t, receipt.SeedCostDebit)
	assert.Zero(t, receipt.RiceSaleCredit)
	assert.Zero(t, receipt.FinalBalance)
}
