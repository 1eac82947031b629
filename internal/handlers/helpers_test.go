package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/example/naturalpower/internal/config"
	"github.com/example/naturalpower/internal/database"
	"github.com/example/naturalpower/internal/handlers"
	"github.com/example/naturalpower/internal/models"
	"github.com/example/naturalpower/internal/routes"
	"github.com/example/naturalpower/internal/services"
)

type fakeMailer struct {
	lastTo   string
	lastLink string
	sent     int
}

func (m *fakeMailer) SendPasswordReset(to, resetLink string) error {
	m.lastTo = to
	m.lastLink = resetLink
	m.sent++
	return nil
}

type fakeProvider struct {
	payment      services.Payment
	err          error
	lastItems    []services.CheckoutItem
	lastMetadata map[string]any
}

func (p *fakeProvider) CreatePreference(_ context.Context, items []services.CheckoutItem, metadata map[string]any) (services.CheckoutSession, error) {
	p.lastItems = items
	p.lastMetadata = metadata
	if p.err != nil {
		return services.CheckoutSession{}, p.err
	}
	return services.CheckoutSession{PreferenceID: "pref-1", InitPoint: "https://pay.test/init"}, nil
}

func (p *fakeProvider) GetPayment(_ context.Context, paymentID string) (services.Payment, error) {
	if p.err != nil {
		return services.Payment{}, p.err
	}
	payment := p.payment
	if payment.ID == "" {
		payment.ID = paymentID
	}
	return payment, nil
}

type testEnv struct {
	app      *fiber.App
	db       *gorm.DB
	cfg      *config.Config
	mailer   *fakeMailer
	provider *fakeProvider
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	// A second pooled connection would get its own empty in-memory database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))

	cfg := &config.Config{
		JWTSecret:       "test-jwt-secret",
		TokenExpires:    30 * time.Minute,
		FrontendBaseURL: "http://127.0.0.1:8004/app",
	}

	app := fiber.New(fiber.Config{ErrorHandler: handlers.ErrorHandler})

	env := &testEnv{
		app:      app,
		db:       db,
		cfg:      cfg,
		mailer:   &fakeMailer{},
		provider: &fakeProvider{},
	}
	routes.Register(app, db, cfg, env.mailer, env.provider)

	return env
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

type envelope struct {
	Status int             `json:"status"`
	Body   json.RawMessage `json:"body"`
}

func (e *testEnv) doJSON(t *testing.T, method, path, token string, payload any) (int, json.RawMessage) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	require.Equal(t, resp.StatusCode, env.Status)

	return resp.StatusCode, env.Body
}

func (e *testEnv) register(t *testing.T, name, email, password string) {
	t.Helper()

	status, _ := e.doJSON(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"name":     name,
		"email":    email,
		"password": password,
		"address":  "Av. Siempre Viva 742",
	})
	require.Equal(t, http.StatusCreated, status)
}

func (e *testEnv) login(t *testing.T, email, password string) string {
	t.Helper()

	status, body := e.doJSON(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    email,
		"password": password,
	})
	require.Equal(t, http.StatusOK, status)

	var result struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(body, &result))
	require.NotEmpty(t, result.Token)

	return result.Token
}

func (e *testEnv) seedProduct(t *testing.T, name string, price float64, stock int) models.Product {
	t.Helper()

	product := models.Product{Name: name, Price: price, Stock: stock, Category: "detox"}
	require.NoError(t, e.db.Create(&product).Error)
	return product
}
