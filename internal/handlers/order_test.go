package handlers_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/example/naturalpower/internal/models"
)

func TestCheckoutCommitsEverythingTogether(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "Ana", "ana@example.com", "secret123")
	token := env.login(t, "ana@example.com", "secret123")
	product := env.seedProduct(t, "Verde Detox", 3990, 3)

	status, _ := env.doJSON(t, http.MethodPost, "/api/cart/items", token, map[string]any{
		"product_id": product.ID,
		"quantity":   3,
	})
	require.Equal(t, http.StatusCreated, status)

	status, body := env.doJSON(t, http.MethodPost, "/api/orders", token, nil)
	require.Equal(t, http.StatusCreated, status)

	var created struct {
		ID    uint    `json:"id"`
		Total float64 `json:"total"`
	}
	require.NoError(t, json.Unmarshal(body, &created))
	require.Equal(t, 3*3990.0, created.Total)

	var refreshed models.Product
	require.NoError(t, env.db.First(&refreshed, product.ID).Error)
	require.Zero(t, refreshed.Stock)

	var items []models.OrderItem
	require.NoError(t, env.db.Where("order_id = ?", created.ID).Find(&items).Error)
	require.Len(t, items, 1)
	require.Equal(t, 3, items[0].Quantity)

	var cartLines int64
	require.NoError(t, env.db.Model(&models.CartItem{}).
		Where("user_email = ?", "ana@example.com").Count(&cartLines).Error)
	require.Zero(t, cartLines)
}

func TestCheckoutFailureRollsBackEverything(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "Ana", "ana@example.com", "secret123")
	token := env.login(t, "ana@example.com", "secret123")
	product := env.seedProduct(t, "Naranja Boost", 3990, 5)

	status, _ := env.doJSON(t, http.MethodPost, "/api/cart/items", token, map[string]any{
		"product_id": product.ID,
		"quantity":   2,
	})
	require.Equal(t, http.StatusCreated, status)

	// Force the item snapshot insert to fail mid-transaction.
	require.NoError(t, env.db.Migrator().DropTable(&models.OrderItem{}))

	status, _ = env.doJSON(t, http.MethodPost, "/api/orders", token, nil)
	require.Equal(t, http.StatusInternalServerError, status)

	var orders int64
	require.NoError(t, env.db.Model(&models.Order{}).Count(&orders).Error)
	require.Zero(t, orders)

	var refreshed models.Product
	require.NoError(t, env.db.First(&refreshed, product.ID).Error)
	require.Equal(t, 5, refreshed.Stock)

	var cartLines int64
	require.NoError(t, env.db.Model(&models.CartItem{}).
		Where("user_email = ?", "ana@example.com").Count(&cartLines).Error)
	require.EqualValues(t, 1, cartLines)
}

func TestCheckoutStockFloorsAtZero(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "Ana", "ana@example.com", "secret123")
	token := env.login(t, "ana@example.com", "secret123")
	product := env.seedProduct(t, "Rojo Pasion", 4290, 1)

	status, _ := env.doJSON(t, http.MethodPost, "/api/cart/items", token, map[string]any{
		"product_id": product.ID,
		"quantity":   4,
	})
	require.Equal(t, http.StatusCreated, status)

	status, _ = env.doJSON(t, http.MethodPost, "/api/orders", token, nil)
	require.Equal(t, http.StatusCreated, status)

	var refreshed models.Product
	require.NoError(t, env.db.First(&refreshed, product.ID).Error)
	require.Zero(t, refreshed.Stock)
}

func TestCheckoutEmptyCart(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "Ana", "ana@example.com", "secret123")
	token := env.login(t, "ana@example.com", "secret123")

	status, _ := env.doJSON(t, http.MethodPost, "/api/orders", token, nil)
	require.Equal(t, http.StatusBadRequest, status)
}

func TestCheckoutRequiresIdentity(t *testing.T) {
	env := newTestEnv(t)

	status, _ := env.doJSON(t, http.MethodPost, "/api/orders", "", nil)
	require.Equal(t, http.StatusUnauthorized, status)
}

func TestListOrdersReturnsSnapshots(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "Ana", "ana@example.com", "secret123")
	token := env.login(t, "ana@example.com", "secret123")
	product := env.seedProduct(t, "Amanecer Tropical", 4500, 15)

	status, _ := env.doJSON(t, http.MethodPost, "/api/cart/items", token, map[string]any{
		"product_id": product.ID,
		"quantity":   2,
	})
	require.Equal(t, http.StatusCreated, status)

	status, _ = env.doJSON(t, http.MethodPost, "/api/orders", token, nil)
	require.Equal(t, http.StatusCreated, status)

	status, body := env.doJSON(t, http.MethodGet, "/api/orders", token, nil)
	require.Equal(t, http.StatusOK, status)

	var orders []struct {
		Total float64            `json:"total"`
		Items []models.OrderItem `json:"items"`
	}
	require.NoError(t, json.Unmarshal(body, &orders))
	require.Len(t, orders, 1)
	require.Len(t, orders[0].Items, 1)
	require.Equal(t, "Amanecer Tropical", orders[0].Items[0].Name)
}
