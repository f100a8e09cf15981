//go:build integration

package integration

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/taskhive/taskhive/internal/testutil"
)

const testPassword = "password123"

// registerUser registers a fresh account on the given client and returns
// its username and user ID. The client keeps the returned token.
func registerUser(t *testing.T, client *testutil.Client, prefix string) (username, userID string) {
	t.Helper()
	username = testutil.RandomUsername(prefix)
	userID = client.RegisterAs(t, username, testPassword)
	return username, userID
}

// registerAdmin registers a fresh account and promotes it to admin directly
// in the database, then logs in again so the token carries the admin role.
func registerAdmin(t *testing.T, client *testutil.Client, prefix string) (username, userID string) {
	t.Helper()
	username, userID = registerUser(t, client, prefix)
	promoteToAdmin(t, username)
	client.LoginAs(t, username, testPassword)
	return username, userID
}

// promoteToAdmin flips an account role to admin directly in the database.
// Tokens issued before promotion keep the old role.
func promoteToAdmin(t *testing.T, username string) {
	t.Helper()
	tag, err := testDB.Exec(context.Background(),
		"UPDATE users SET role = 'admin' WHERE username = $1", username)
	require.NoError(t, err)
	require.EqualValues(t, 1, tag.RowsAffected(), "user %s not found for promotion", username)
}

// createTestTask creates a task and returns its ID.
func createTestTask(t *testing.T, client *testutil.Client, title string, opts ...taskOption) string {
	t.Helper()

	payload := map[string]interface{}{
		"title": title,
	}
	for _, opt := range opts {
		opt(payload)
	}

	resp, err := client.POST("/api/v1/tasks", payload)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var result struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	testutil.DecodeJSON(t, resp, &result)
	return result.Data.ID
}

type taskOption func(map[string]interface{})

func withTaskStatus(status string) taskOption {
	return func(m map[string]interface{}) {
		m["status"] = status
	}
}

func withTaskDescription(description string) taskOption {
	return func(m map[string]interface{}) {
		m["description"] = description
	}
}

// createTestProduct creates a product via an admin client and returns its ID.
func createTestProduct(t *testing.T, client *testutil.Client, name string, stock int) string {
	t.Helper()

	resp, err := client.POST("/api/v1/products", map[string]interface{}{
		"name":  name,
		"unit":  "pcs",
		"stock": stock,
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var result struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	testutil.DecodeJSON(t, resp, &result)
	return result.Data.ID
}
