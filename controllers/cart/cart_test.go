package cartControllers

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
	"gorm.io/gorm/clause"

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
	group := r.Group("/api/cart")
	group.Use(middleware.RequireAuth(testSecret))
	group.GET("/:userId", GetCart(db))
	group.POST("/:userId", SaveCart(db))
	group.DELETE("/:userId/item/:itemId", DeleteCartItem(db))
	return r, db
}

func bearerFor(t *testing.T, userID string) string {
	t.Helper()
	token, err := auth.IssueToken(models.User{ID: userID, Email: userID + "@example.com"}, testSecret)
	require.NoError(t, err)
	return "Bearer " + token
}

func doRequest(t *testing.T, r *gin.Engine, method, path, bearer string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", bearer)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func itemsOf(t *testing.T, w *httptest.ResponseRecorder) []models.OrderItem {
	t.Helper()
	var resp struct {
		Items []models.OrderItem `json:"items"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Items
}

func saveBody(items ...models.OrderItem) map[string]any {
	payload := make([]map[string]any, 0, len(items))
	for _, it := range items {
		payload = append(payload, map[string]any{
			"id": it.ProductID, "name": it.Name, "price": it.Price,
			"image": it.Image, "quantity": it.Quantity,
		})
	}
	return map[string]any{"items": payload}
}

func TestGetCart(t *testing.T) {
	t.Run("creates an empty pending record on first read", func(t *testing.T) {
		r, db := setupRouter(t)
		w := doRequest(t, r, http.MethodGet, "/api/cart/u1", bearerFor(t, "u1"), nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, itemsOf(t, w))

		var count int64
		db.Model(&models.Order{}).
			Where("user_id = ? AND status = ?", "u1", models.OrderStatusPending).
			Count(&count)
		assert.EqualValues(t, 1, count)
	})

	t.Run("repeated reads reuse the single pending record", func(t *testing.T) {
		r, db := setupRouter(t)
		doRequest(t, r, http.MethodGet, "/api/cart/u1", bearerFor(t, "u1"), nil)
		doRequest(t, r, http.MethodGet, "/api/cart/u1", bearerFor(t, "u1"), nil)

		var count int64
		db.Model(&models.Order{}).Where("user_id = ?", "u1").Count(&count)
		assert.EqualValues(t, 1, count)
	})

	t.Run("requires a credential", func(t *testing.T) {
		r, _ := setupRouter(t)
		w := doRequest(t, r, http.MethodGet, "/api/cart/u1", "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("rejects another user's cart", func(t *testing.T) {
		r, _ := setupRouter(t)
		w := doRequest(t, r, http.MethodGet, "/api/cart/u1", bearerFor(t, "u2"), nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestPendingOrderUniqueness(t *testing.T) {
	t.Run("schema rejects a second pending record per user", func(t *testing.T) {
		_, db := setupRouter(t)
		require.NoError(t, db.Create(&models.Order{UserID: "u1", Status: models.OrderStatusPending}).Error)
		err := db.Create(&models.Order{UserID: "u1", Status: models.OrderStatusPending}).Error
		require.Error(t, err)

		var count int64
		db.Model(&models.Order{}).Where("user_id = ?", "u1").Count(&count)
		assert.EqualValues(t, 1, count)
	})

	t.Run("losing the create race falls back to the existing record", func(t *testing.T) {
		_, db := setupRouter(t)
		winner := models.Order{UserID: "u1", Status: models.OrderStatusPending}
		require.NoError(t, db.Create(&winner).Error)

		// The loser's insert path: conflict on the pending index, no row written.
		loser := models.Order{UserID: "u1", Status: models.OrderStatusPending}
		res := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&loser)
		require.NoError(t, res.Error)
		assert.Zero(t, res.RowsAffected)

		got, err := findOrCreatePending(db, "u1")
		require.NoError(t, err)
		assert.Equal(t, winner.ID, got.ID)
	})

	t.Run("completed orders do not block the pending record", func(t *testing.T) {
		_, db := setupRouter(t)
		require.NoError(t, db.Create(&models.Order{UserID: "u1", Status: models.OrderStatusCompleted}).Error)

		pending, err := findOrCreatePending(db, "u1")
		require.NoError(t, err)
		assert.Equal(t, models.OrderStatusPending, pending.Status)

		var count int64
		db.Model(&models.Order{}).Where("user_id = ?", "u1").Count(&count)
		assert.EqualValues(t, 2, count)
	})
}

func TestSaveCart(t *testing.T) {
	t.Run("replaces the pending record wholesale", func(t *testing.T) {
		r, _ := setupRouter(t)
		bearer := bearerFor(t, "u1")

		w := doRequest(t, r, http.MethodPost, "/api/cart/u1", bearer, saveBody(
			models.OrderItem{ProductID: "a", Name: "Mug", Price: 5, Quantity: 2},
			models.OrderItem{ProductID: "b", Name: "Pen", Price: 1, Quantity: 1},
		))
		require.Equal(t, http.StatusOK, w.Code)
		require.Len(t, itemsOf(t, w), 2)

		w = doRequest(t, r, http.MethodPost, "/api/cart/u1", bearer, saveBody(
			models.OrderItem{ProductID: "c", Name: "Hat", Price: 9, Quantity: 1},
		))
		require.Equal(t, http.StatusOK, w.Code)

		w = doRequest(t, r, http.MethodGet, "/api/cart/u1", bearer, nil)
		items := itemsOf(t, w)
		require.Len(t, items, 1)
		assert.Equal(t, "c", items[0].ProductID)
	})

	t.Run("merges duplicate ids and drops zero quantities", func(t *testing.T) {
		r, _ := setupRouter(t)
		bearer := bearerFor(t, "u1")

		w := doRequest(t, r, http.MethodPost, "/api/cart/u1", bearer, saveBody(
			models.OrderItem{ProductID: "a", Price: 5, Quantity: 2},
			models.OrderItem{ProductID: "a", Price: 5, Quantity: 3},
			models.OrderItem{ProductID: "b", Price: 1, Quantity: 0},
		))
		require.Equal(t, http.StatusOK, w.Code)

		items := itemsOf(t, w)
		require.Len(t, items, 1)
		assert.Equal(t, "a", items[0].ProductID)
		assert.Equal(t, 5, items[0].Quantity)
	})

	t.Run("an empty save clears the pending record", func(t *testing.T) {
		r, db := setupRouter(t)
		bearer := bearerFor(t, "u1")

		doRequest(t, r, http.MethodPost, "/api/cart/u1", bearer, saveBody(
			models.OrderItem{ProductID: "a", Price: 5, Quantity: 2},
		))
		w := doRequest(t, r, http.MethodPost, "/api/cart/u1", bearer, saveBody())
		require.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, itemsOf(t, w))

		var count int64
		db.Model(&models.OrderItem{}).Count(&count)
		assert.Zero(t, count)
	})

	t.Run("rejects another user's cart", func(t *testing.T) {
		r, _ := setupRouter(t)
		w := doRequest(t, r, http.MethodPost, "/api/cart/u1", bearerFor(t, "u2"), saveBody())
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestDeleteCartItem(t *testing.T) {
	t.Run("removes one item and returns the rest", func(t *testing.T) {
		r, _ := setupRouter(t)
		bearer := bearerFor(t, "u1")

		doRequest(t, r, http.MethodPost, "/api/cart/u1", bearer, saveBody(
			models.OrderItem{ProductID: "a", Price: 5, Quantity: 2},
			models.OrderItem{ProductID: "b", Price: 1, Quantity: 1},
		))

		w := doRequest(t, r, http.MethodDelete, "/api/cart/u1/item/a", bearer, nil)
		require.Equal(t, http.StatusOK, w.Code)
		items := itemsOf(t, w)
		require.Len(t, items, 1)
		assert.Equal(t, "b", items[0].ProductID)
	})

	t.Run("missing item yields not found", func(t *testing.T) {
		r, _ := setupRouter(t)
		bearer := bearerFor(t, "u1")
		doRequest(t, r, http.MethodGet, "/api/cart/u1", bearer, nil)

		w := doRequest(t, r, http.MethodDelete, "/api/cart/u1/item/ghost", bearer, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("missing cart yields not found", func(t *testing.T) {
		r, _ := setupRouter(t)
		w := doRequest(t, r, http.MethodDelete, "/api/cart/u1/item/a", bearerFor(t, "u1"), nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
