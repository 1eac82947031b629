package handlers_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/example/naturalpower/internal/models"
)

func TestListProductsPaginates(t *testing.T) {
	env := newTestEnv(t)
	for i := 0; i < 12; i++ {
		env.seedProduct(t, "Jugo", 3990, 5)
	}

	status, body := env.doJSON(t, http.MethodGet, "/api/products", "", nil)
	require.Equal(t, http.StatusOK, status)

	var products []models.Product
	require.NoError(t, json.Unmarshal(body, &products))
	require.Len(t, products, 10) // default page size

	status, body = env.doJSON(t, http.MethodGet, "/api/products?page=2&limit=10", "", nil)
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(body, &products))
	require.Len(t, products, 2)
}

func TestFilterProductsByCategory(t *testing.T) {
	env := newTestEnv(t)
	env.seedProduct(t, "Verde Detox", 3990, 10)
	tropical := models.Product{Name: "Amanecer Tropical", Price: 4500, Stock: 15, Category: "tropical"}
	require.NoError(t, env.db.Create(&tropical).Error)

	status, body := env.doJSON(t, http.MethodGet, "/api/products/filter?category=tropical", "", nil)
	require.Equal(t, http.StatusOK, status)

	var products []models.Product
	require.NoError(t, json.Unmarshal(body, &products))
	require.Len(t, products, 1)
	require.Equal(t, "Amanecer Tropical", products[0].Name)
}

func TestAuthenticatedRequestsAreAudited(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "Ana", "ana@example.com", "secret123")
	token := env.login(t, "ana@example.com", "secret123")

	status, _ := env.doJSON(t, http.MethodGet, "/api/products", token, nil)
	require.Equal(t, http.StatusOK, status)

	var rows []models.UserActivity
	require.NoError(t, env.db.
		Where("user_email = ? AND action = ?", "ana@example.com", "GET /api/products").
		Find(&rows).Error)
	require.Len(t, rows, 1)
	require.Equal(t, "Status: 200", rows[0].Details)
}

func TestLoginRequestsAreNotDoubleAudited(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "Ana", "ana@example.com", "secret123")
	env.login(t, "ana@example.com", "secret123")

	// The login handler itself writes LOGIN_SUCCEEDED; the tracking
	// middleware must not add a second row for the same request.
	var rows int64
	require.NoError(t, env.db.Model(&models.UserActivity{}).
		Where("user_email = ? AND action LIKE ?", "ana@example.com", "POST /api/auth/login%").
		Count(&rows).Error)
	require.Zero(t, rows)
}
