package productcontroller

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/MilanKumarMishra/ecommerce-platform/auth"
	"github.com/MilanKumarMishra/ecommerce-platform/middleware"
	"github.com/MilanKumarMishra/ecommerce-platform/models"
)

var testSecret = []byte("test-secret")

func setupRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Product{}, &models.Order{}, &models.OrderItem{}))

	r := gin.New()
	// nil cache disables redis in tests
	r.GET("/api/products", GetProducts(db, nil))
	r.GET("/api/products/:id", GetProductByID(db))
	r.POST("/api/products",
		middleware.RequireAuth(testSecret),
		middleware.RequireAdmin(),
		CreateProduct(db, nil))
	return r, db
}

func bearerFor(t *testing.T, userID string, admin bool) string {
	t.Helper()
	token, err := auth.IssueToken(models.User{
		ID: userID, Email: userID + "@example.com", IsAdmin: admin,
	}, testSecret)
	require.NoError(t, err)
	return "Bearer " + token
}

func createProduct(t *testing.T, r *gin.Engine, bearer string, body map[string]any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/products", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", bearer)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateProduct(t *testing.T) {
	body := map[string]any{
		"name": "Mug", "price": 9.5, "description": "A mug",
		"image": "https://example.com/mug.png", "category": "kitchen",
	}

	t.Run("admin can create", func(t *testing.T) {
		r, db := setupRouter(t)
		w := createProduct(t, r, bearerFor(t, "root", true), body)
		require.Equal(t, http.StatusCreated, w.Code)

		var created models.Product
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
		assert.NotEmpty(t, created.ID)
		assert.Equal(t, "Mug", created.Name)
		assert.InDelta(t, 9.5, created.Price, 1e-9)

		var count int64
		db.Model(&models.Product{}).Count(&count)
		assert.EqualValues(t, 1, count)
	})

	t.Run("non-admin rejected", func(t *testing.T) {
		r, _ := setupRouter(t)
		w := createProduct(t, r, bearerFor(t, "u1", false), body)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("no credential rejected", func(t *testing.T) {
		r, _ := setupRouter(t)
		w := createProduct(t, r, "", body)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("missing name rejected", func(t *testing.T) {
		r, _ := setupRouter(t)
		w := createProduct(t, r, bearerFor(t, "root", true),
			map[string]any{"price": 9.5})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("negative price rejected", func(t *testing.T) {
		r, _ := setupRouter(t)
		w := createProduct(t, r, bearerFor(t, "root", true),
			map[string]any{"name": "Mug", "price": -1})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestGetProducts(t *testing.T) {
	t.Run("lists the catalog", func(t *testing.T) {
		r, _ := setupRouter(t)
		admin := bearerFor(t, "root", true)
		createProduct(t, r, admin, map[string]any{"name": "Mug", "price": 9.5})
		createProduct(t, r, admin, map[string]any{"name": "Pen", "price": 1.0})

		req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)

		var products []models.Product
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &products))
		assert.Len(t, products, 2)
	})

	t.Run("empty catalog yields an empty list", func(t *testing.T) {
		r, _ := setupRouter(t)
		req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, "[]", w.Body.String())
	})
}

func TestGetProductByID(t *testing.T) {
	t.Run("returns a single product", func(t *testing.T) {
		r, _ := setupRouter(t)
		w := createProduct(t, r, bearerFor(t, "root", true),
			map[string]any{"name": "Mug", "price": 9.5})
		require.Equal(t, http.StatusCreated, w.Code)
		var created models.Product
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

		req := httptest.NewRequest(http.MethodGet, "/api/products/"+created.ID, nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var got models.Product
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, created.ID, got.ID)
	})

	t.Run("unknown id yields not found", func(t *testing.T) {
		r, _ := setupRouter(t)
		req := httptest.NewRequest(http.MethodGet, "/api/products/ghost", nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
