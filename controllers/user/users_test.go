package userControllers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/marketbay/marketplace-api/auth"
	"github.com/marketbay/marketplace-api/middleware"
	"github.com/marketbay/marketplace-api/models"
	"github.com/marketbay/marketplace-api/routes"
)

func setup(t *testing.T) (*gorm.DB, *gin.Engine) {
	t.Setenv("JWT_SECRET", "test-secret")
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.Address{},
		&models.Product{}, &models.ProductImage{},
		&models.Cart{}, &models.CartItem{},
		&models.Order{}, &models.OrderItem{},
		&models.PasswordResetToken{},
	))

	r := gin.New()
	r.Use(middleware.ErrorHandler())
	routes.SetupRoutes(r, db, auth.SMTPMailer{})
	return db, r
}

func createUser(t *testing.T, db *gorm.DB, email string, role models.Role) models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	require.NoError(t, err)
	user := models.User{
		ID:        uuid.NewString(),
		Name:      "Test User",
		Email:     email,
		Password:  string(hash),
		Role:      role,
		Activated: true,
	}
	user.Cart = models.Cart{UserID: user.ID}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func do(t *testing.T, r *gin.Engine, method, path string, user models.User, body any) *httptest.ResponseRecorder {
	t.Helper()
	var raw []byte
	if body != nil {
		var err error
		raw, err = json.Marshal(body)
		require.NoError(t, err)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	token, err := auth.IssueSessionToken(user)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestGetProfileOmitsPassword(t *testing.T) {
	db, r := setup(t)
	user := createUser(t, db, "a@x.com", models.RoleUser)

	w := do(t, r, http.MethodGet, "/user/me", user, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "password")
	assert.Contains(t, w.Body.String(), "a@x.com")
}

func TestAddAndListAddresses(t *testing.T) {
	db, r := setup(t)
	user := createUser(t, db, "a@x.com", models.RoleUser)

	w := do(t, r, http.MethodPost, "/user/address", user, gin.H{
		"street": "1 Main St", "city": "Springfield", "state": "IL",
		"zip_code": "62701", "country": "USA",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	// Missing fields are rejected.
	w = do(t, r, http.MethodPost, "/user/address", user, gin.H{"street": "2 Side St"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodGet, "/user/addresses", user, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Addresses []models.Address `json:"addresses"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Addresses, 1)
	assert.Equal(t, user.ID, resp.Addresses[0].UserID)
}

func TestUpdateProfile(t *testing.T) {
	db, r := setup(t)
	user := createUser(t, db, "a@x.com", models.RoleUser)
	createUser(t, db, "taken@x.com", models.RoleUser)

	w := do(t, r, http.MethodPut, "/user/me", user, gin.H{"name": "Renamed"})
	require.Equal(t, http.StatusOK, w.Code)

	var reloaded models.User
	require.NoError(t, db.First(&reloaded, "id = ?", user.ID).Error)
	assert.Equal(t, "Renamed", reloaded.Name)

	// Taking another account's email fails on the unique index.
	w = do(t, r, http.MethodPut, "/user/me", user, gin.H{"email": "taken@x.com"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
