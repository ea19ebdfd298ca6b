package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"ricemill-service/internal/middleware"
	"ricemill-service/internal/model"
	"ricemill-service/pkg/config"
	"ricemill-service/pkg/jwtutil"
)

// testEnv wires the full request surface against an in-memory sqlite
// database, with the real auth middleware in front of the protected routes.
type testEnv struct {
	t   *testing.T
	e   *echo.Echo
	db  *gorm.DB
	jwt *jwtutil.JWT
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	// A named shared-cache memory database keeps all pooled connections on
	// the same data
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&model.Company{},
		&model.User{},
		&model.Farmer{},
		&model.SeedDistribution{},
		&model.HarvestEntry{},
		&model.Receipt{},
	))

	jwt := jwtutil.New(&config.JWTConfig{SigningKey: "test-key", ExpirationMinutes: 30})
	h := New(db, jwt)

	e := echo.New()
	e.POST("/token", h.Login)

	authed := e.Group("")
	authed.Use(middleware.Auth(db, jwt))
	authed.GET("/users/me", h.GetProfile)
	authed.POST("/companies", h.CreateCompany)
	authed.GET("/companies", h.ListCompanies)
	authed.PATCH("/companies/:id", h.UpdateCompany)
	authed.DELETE("/companies/:id", h.DeleteCompany)
	authed.POST("/users", h.CreateUser)
	authed.GET("/users", h.ListUsers)
	authed.PATCH("/users/:id", h.UpdateUser)
	authed.DELETE("/users/:id", h.DeleteUser)
	authed.POST("/farmers", h.CreateFarmer)
	authed.GET("/farmers", h.ListFarmers)
	authed.PATCH("/farmers/:id", h.UpdateFarmer)
	authed.DELETE("/farmers/:id", h.DeleteFarmer)
	authed.POST("/seed-distributions", h.CreateSeedDistribution)
	authed.POST("/harvest-entries", h.CreateHarvestEntry)
	authed.GET("/farmers/:id/seed-distributions", h.ListSeedDistributions)
	authed.GET("/farmers/:id/harvest-entries", h.ListHarvestEntries)
	authed.POST("/farmers/:id/receipts", h.GenerateReceipt)
	authed.GET("/farmers/:id/receipts", h.ListReceipts)

	return &testEnv{t: t, e: e, db: db, jwt: jwt}
}

const testPassword = "secret"

// seedCompany inserts a company directly
func (env *testEnv) seedCompany(name string) model.Company {
	env.t.Helper()
	company := model.Company{Name: name, Address: "Mill Road", ContactPerson: "Owner", PhoneNumber: "1234567890"}
	require.NoError(env.t, env.db.Create(&company).Error)
	return company
}

// seedUser inserts an active user with the shared test password
func (env *testEnv) seedUser(username, role string, companyID uint) model.User {
	env.t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(env.t, err)
	user := model.User{
		Username:  username,
		Email:     username + "@example.com",
		Password:  string(hashed),
		FullName:  username,
		Active:    true,
		Role:      role,
		CompanyID: companyID,
	}
	require.NoError(env.t, env.db.Create(&user).Error)
	return user
}

// seedFarmer inserts a farmer directly
func (env *testEnv) seedFarmer(name, mobile string, companyID uint) model.Farmer {
	env.t.Helper()
	farmer := model.Farmer{
		Name:          name,
		Village:       "Rampur",
		MobileNumber:  mobile,
		FarmAreaAcres: 2.5,
		CompanyID:     companyID,
	}
	require.NoError(env.t, env.db.Create(&farmer).Error)
	return farmer
}

// token issues a valid token for the username
func (env *testEnv) token(username string) string {
	env.t.Helper()
	token, err := env.jwt.GenerateToken(username)
	require.NoError(env.t, err)
	return token
}

// do performs an HTTP request against the test server
func (env *testEnv) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	env.t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(env.t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	return rec
}

// decode unmarshals a JSON response body
func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}
