//go:build integration

package integration

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskhive/taskhive/internal/testutil"
)

func TestAuth_Register_Login_Flow(t *testing.T) {
	client := newTestClient(t)
	username := testutil.RandomUsername("flow")

	resp, err := client.POST("/api/v1/auth/register", map[string]string{
		"username": username,
		"password": testPassword,
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var registerResult struct {
		Data struct {
			Token string `json:"token"`
			User  struct {
				ID       string `json:"id"`
				Username string `json:"username"`
				Role     string `json:"role"`
			} `json:"user"`
		} `json:"data"`
	}
	testutil.DecodeJSON(t, resp, &registerResult)
	assert.NotEmpty(t, registerResult.Data.Token)
	assert.NotEmpty(t, registerResult.Data.User.ID)
	assert.Equal(t, username, registerResult.Data.User.Username)
	assert.Equal(t, "user", registerResult.Data.User.Role)

	resp, err = client.POST("/api/v1/auth/login", map[string]string{
		"username": username,
		"password": testPassword,
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var loginResult struct {
		Data struct {
			Token string `json:"token"`
			User  struct {
				Username string `json:"username"`
			} `json:"user"`
		} `json:"data"`
	}
	testutil.DecodeJSON(t, resp, &loginResult)
	assert.NotEmpty(t, loginResult.Data.Token)
	assert.Equal(t, username, loginResult.Data.User.Username)
}

func TestAuth_Register_DuplicateUsername(t *testing.T) {
	client := newTestClient(t)
	username := testutil.RandomUsername("dup")

	resp, err := client.POST("/api/v1/auth/register", map[string]string{
		"username": username,
		"password": testPassword,
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp, err = client.POST("/api/v1/auth/register", map[string]string{
		"username": username,
		"password": "different456",
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()
}

func TestAuth_Register_Validation(t *testing.T) {
	client := newTestClient(t)

	tests := []struct {
		name     string
		username string
		password string
	}{
		{"short username", "ab", testPassword},
		{"short password", testutil.RandomUsername("shortpw"), "12345"},
		{"missing username", "", testPassword},
		{"missing password", testutil.RandomUsername("nopw"), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := client.POST("/api/v1/auth/register", map[string]string{
				"username": tt.username,
				"password": tt.password,
			})
			require.NoError(t, err)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			resp.Body.Close()
		})
	}
}

func TestAuth_Login_InvalidCredentials(t *testing.T) {
	client := newTestClient(t)
	username, _ := registerUser(t, client, "creds")

	// Wrong password and unknown username must be indistinguishable.
	for _, creds := range []map[string]string{
		{"username": username, "password": "wrongpassword"},
		{"username": testutil.RandomUsername("ghost"), "password": testPassword},
	} {
		resp, err := client.POST("/api/v1/auth/login", creds)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

		var result struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		testutil.DecodeJSON(t, resp, &result)
		assert.Equal(t, "invalid credentials", result.Error.Message)
	}
}

func TestAuth_Me_RequiresAuth(t *testing.T) {
	client := newTestClient(t)

	resp, err := client.GET("/api/v1/me")
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func TestAuth_Me_ReturnsCurrentUser(t *testing.T) {
	client := newTestClient(t)
	username, userID := registerUser(t, client, "me")

	resp, err := client.GET("/api/v1/me")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var result struct {
		Data struct {
			ID       string `json:"id"`
			Username string `json:"username"`
			Role     string `json:"role"`
		} `json:"data"`
	}
	testutil.DecodeJSON(t, resp, &result)
	assert.Equal(t, userID, result.Data.ID)
	assert.Equal(t, username, result.Data.Username)
	assert.Equal(t, "user", result.Data.Role)
}

func TestAuth_InvalidToken(t *testing.T) {
	client := newTestClient(t)
	client.Token = "not-a-valid-token"

	resp, err := client.GET("/api/v1/me")
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}
