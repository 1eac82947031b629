package handlers_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/example/naturalpower/internal/models"
)

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "Ana", "ana@example.com", "secret123")

	status, _ := env.doJSON(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"name":     "Ana Again",
		"email":    "Ana@Example.com",
		"password": "another123",
	})
	require.Equal(t, http.StatusBadRequest, status)

	var count int64
	require.NoError(t, env.db.Model(&models.User{}).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestLoginFailureLeavesNoSession(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "Ana", "ana@example.com", "secret123")

	status, _ := env.doJSON(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "ana@example.com",
		"password": "wrong-password",
	})
	require.Equal(t, http.StatusUnauthorized, status)

	var sessions int64
	require.NoError(t, env.db.Model(&models.UserSession{}).Count(&sessions).Error)
	require.Zero(t, sessions)

	var failed int64
	require.NoError(t, env.db.Model(&models.UserActivity{}).
		Where("user_email = ? AND action = ?", "ana@example.com", "LOGIN_FAILED").
		Count(&failed).Error)
	require.EqualValues(t, 1, failed)
}

func TestLoginRecordsSessionAndActivity(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "Ana", "ana@example.com", "secret123")
	token := env.login(t, "ana@example.com", "secret123")
	require.NotEmpty(t, token)

	var sessions []models.UserSession
	require.NoError(t, env.db.Where("user_email = ?", "ana@example.com").Find(&sessions).Error)
	require.Len(t, sessions, 1)
	require.True(t, sessions[0].IsActive)

	var logins int64
	require.NoError(t, env.db.Model(&models.UserActivity{}).
		Where("user_email = ? AND action = ?", "ana@example.com", "LOGIN_SUCCEEDED").
		Count(&logins).Error)
	require.EqualValues(t, 1, logins)
}

func TestLogoutRevokesAllSessions(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "Ana", "ana@example.com", "secret123")
	env.login(t, "ana@example.com", "secret123")
	token := env.login(t, "ana@example.com", "secret123")

	status, _ := env.doJSON(t, http.MethodPost, "/api/users/me/logout", token, nil)
	require.Equal(t, http.StatusOK, status)

	var active int64
	require.NoError(t, env.db.Model(&models.UserSession{}).
		Where("user_email = ? AND is_active = ?", "ana@example.com", true).
		Count(&active).Error)
	require.Zero(t, active)
}

func TestMeReportsIdentityAndSessions(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "Ana", "ana@example.com", "secret123")
	token := env.login(t, "ana@example.com", "secret123")

	status, body := env.doJSON(t, http.MethodGet, "/api/users/me", token, nil)
	require.Equal(t, http.StatusOK, status)

	var me struct {
		Email          string `json:"email"`
		ActiveSessions int    `json:"active_sessions"`
		IsAdmin        bool   `json:"is_admin"`
	}
	require.NoError(t, json.Unmarshal(body, &me))
	require.Equal(t, "ana@example.com", me.Email)
	require.Equal(t, 1, me.ActiveSessions)
	require.True(t, me.IsAdmin) // first registered user with no allow-list configured
}

func TestMeRequiresToken(t *testing.T) {
	env := newTestEnv(t)

	status, _ := env.doJSON(t, http.MethodGet, "/api/users/me", "", nil)
	require.Equal(t, http.StatusUnauthorized, status)
}
