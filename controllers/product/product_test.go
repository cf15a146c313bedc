package productcontroller_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
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
	t.Setenv("UPLOAD_DIR", t.TempDir())
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

func bearer(t *testing.T, user models.User) string {
	t.Helper()
	token, err := auth.IssueSessionToken(user)
	require.NoError(t, err)
	return "Bearer " + token
}

// productForm builds a multipart createProduct request body.
func productForm(t *testing.T, fields map[string]string, imageNames []string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	for _, name := range imageNames {
		part, err := writer.CreateFormFile("images", name)
		require.NoError(t, err)
		_, err = part.Write([]byte("fake image bytes"))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return &buf, writer.FormDataContentType()
}

func defaultFields() map[string]string {
	return map[string]string{
		"name":        "Mug",
		"description": "A sturdy mug",
		"category":    "kitchen",
		"tags":        "mug,ceramic",
		"price":       "9.50",
		"stock":       "10",
	}
}

func createProductReq(t *testing.T, r *gin.Engine, token string, fields map[string]string, images []string) *httptest.ResponseRecorder {
	t.Helper()
	body, contentType := productForm(t, fields, images)
	req := httptest.NewRequest(http.MethodPost, "/api/products/createProduct", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type productResponse struct {
	Status  bool           `json:"status"`
	Product models.Product `json:"product"`
}

func decodeProduct(t *testing.T, w *httptest.ResponseRecorder) productResponse {
	t.Helper()
	var resp productResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestCreateProductImageOrderRoundTrips(t *testing.T) {
	db, r := setup(t)
	seller := createUser(t, db, "seller@x.com", models.RoleSeller)

	w := createProductReq(t, r, bearer(t, seller), defaultFields(), []string{"a.png", "b.png"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decodeProduct(t, w)
	require.Len(t, created.Product.Images, 2)

	// Fetch it back: the gallery keeps upload order.
	req := httptest.NewRequest(http.MethodGet, "/api/products/"+strconv.FormatUint(uint64(created.Product.ID), 10), nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	fetched := decodeProduct(t, rec)
	require.Len(t, fetched.Product.Images, 2)
	assert.Contains(t, fetched.Product.Images[0].URL, "a.png")
	assert.Contains(t, fetched.Product.Images[1].URL, "b.png")
	assert.Equal(t, 0, fetched.Product.Images[0].Position)
	assert.Equal(t, 1, fetched.Product.Images[1].Position)
}

func TestCreateProductRequiresFields(t *testing.T) {
	db, r := setup(t)
	seller := createUser(t, db, "seller@x.com", models.RoleSeller)

	fields := defaultFields()
	delete(fields, "price")
	w := createProductReq(t, r, bearer(t, seller), fields, []string{"a.png"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// No images is an error too.
	w = createProductReq(t, r, bearer(t, seller), defaultFields(), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateProductRequiresSellerRole(t *testing.T) {
	db, r := setup(t)
	buyer := createUser(t, db, "buyer@x.com", models.RoleUser)

	w := createProductReq(t, r, bearer(t, buyer), defaultFields(), []string{"a.png"})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestUpdateProductOwnership(t *testing.T) {
	db, r := setup(t)
	owner := createUser(t, db, "owner@x.com", models.RoleSeller)
	rival := createUser(t, db, "rival@x.com", models.RoleSeller)
	admin := createUser(t, db, "admin@x.com", models.RoleAdmin)

	w := createProductReq(t, r, bearer(t, owner), defaultFields(), []string{"a.png"})
	require.Equal(t, http.StatusCreated, w.Code)
	product := decodeProduct(t, w).Product
	path := "/api/products/updateProduct/" + strconv.FormatUint(uint64(product.ID), 10)

	update := func(token string) *httptest.ResponseRecorder {
		body, contentType := productForm(t, map[string]string{"price": "12.00"}, nil)
		req := httptest.NewRequest(http.MethodPut, path, body)
		req.Header.Set("Content-Type", contentType)
		req.Header.Set("Authorization", token)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec
	}

	// Another seller is rejected; ownership comes from the token, not the body.
	assert.Equal(t, http.StatusForbidden, update(bearer(t, rival)).Code)
	assert.Equal(t, http.StatusOK, update(bearer(t, owner)).Code)
	assert.Equal(t, http.StatusOK, update(bearer(t, admin)).Code)

	var reloaded models.Product
	require.NoError(t, db.First(&reloaded, product.ID).Error)
	assert.InDelta(t, 12.0, reloaded.Price, 1e-9)
}

func TestDeleteProductOwnership(t *testing.T) {
	db, r := setup(t)
	owner := createUser(t, db, "owner@x.com", models.RoleSeller)
	rival := createUser(t, db, "rival@x.com", models.RoleSeller)

	w := createProductReq(t, r, bearer(t, owner), defaultFields(), []string{"a.png"})
	require.Equal(t, http.StatusCreated, w.Code)
	product := decodeProduct(t, w).Product
	path := "/api/products/deleteProduct/" + strconv.FormatUint(uint64(product.ID), 10)

	del := func(token string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodDelete, path, nil)
		req.Header.Set("Authorization", token)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusForbidden, del(bearer(t, rival)).Code)
	assert.Equal(t, http.StatusOK, del(bearer(t, owner)).Code)

	// Soft-deleted products vanish from reads.
	req := httptest.NewRequest(http.MethodGet, "/api/products/"+strconv.FormatUint(uint64(product.ID), 10), nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetSellerProducts(t *testing.T) {
	db, r := setup(t)
	owner := createUser(t, db, "owner@x.com", models.RoleSeller)
	rival := createUser(t, db, "rival@x.com", models.RoleSeller)

	require.Equal(t, http.StatusCreated, createProductReq(t, r, bearer(t, owner), defaultFields(), []string{"a.png"}).Code)
	fields := defaultFields()
	fields["name"] = "Hat"
	require.Equal(t, http.StatusCreated, createProductReq(t, r, bearer(t, rival), fields, []string{"b.png"}).Code)

	req := httptest.NewRequest(http.MethodGet, "/api/products/seller/mine", nil)
	req.Header.Set("Authorization", bearer(t, owner))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Products []models.Product `json:"products"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Products, 1)
	assert.Equal(t, "Mug", resp.Products[0].Name)
	assert.Equal(t, owner.ID, resp.Products[0].SellerID)
}
