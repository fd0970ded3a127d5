package handler_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================
// REGISTRATION
// =============================================================

func TestHandleRegister(t *testing.T) {
	t.Run("creates account and returns 201", func(t *testing.T) {
		env := newTestEnv(t)

		body := `{"username":"sakif","email":"sakif@example.com","password":"` + testPassword + `","password2":"` + testPassword + `","firstName":"Sakif","lastName":"Rahman"}`
		rr := httptest.NewRecorder()
		env.auth.HandleRegister(rr, newRequest(http.MethodPost, "/auth/register", body, ""))

		require.Equal(t, http.StatusCreated, rr.Code)

		var res struct {
			Message string          `json:"message"`
			User    json.RawMessage `json:"user"`
		}
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&res))
		assert.Equal(t, "User registered successfully.", res.Message)

		var user map[string]any
		require.NoError(t, json.Unmarshal(res.User, &user))
		assert.Equal(t, "sakif", user["username"])
		assert.Equal(t, "sakif@example.com", user["email"])
		assert.Equal(t, "Sakif", user["firstName"])
		assert.NotEmpty(t, user["id"])

		// The hash must never appear in a response, under any key.
		assert.NotContains(t, user, "password")
		assert.NotContains(t, user, "passwordHash")
	})

	t.Run("password mismatch flags both fields", func(t *testing.T) {
		env := newTestEnv(t)

		body := `{"username":"sakif","email":"sakif@example.com","password":"` + testPassword + `","password2":"different-pass-9"}`
		rr := httptest.NewRecorder()
		env.auth.HandleRegister(rr, newRequest(http.MethodPost, "/auth/register", body, ""))

		require.Equal(t, http.StatusBadRequest, rr.Code)

		var res struct {
			Error  string            `json:"error"`
			Fields map[string]string `json:"fields"`
		}
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&res))
		assert.Equal(t, "validation_error", res.Error)
		assert.Equal(t, "Password fields didn't match.", res.Fields["password"])
		assert.Equal(t, "Password fields didn't match.", res.Fields["password2"])
	})

	t.Run("duplicate email is a field error", func(t *testing.T) {
		env := newTestEnv(t)
		env.registerUser(t, "first")

		body := `{"username":"second","email":"first@example.com","password":"` + testPassword + `","password2":"` + testPassword + `"}`
		rr := httptest.NewRecorder()
		env.auth.HandleRegister(rr, newRequest(http.MethodPost, "/auth/register", body, ""))

		require.Equal(t, http.StatusBadRequest, rr.Code)

		var res struct {
			Fields map[string]string `json:"fields"`
		}
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&res))
		assert.Contains(t, res.Fields, "email")
	})

	t.Run("malformed JSON", func(t *testing.T) {
		env := newTestEnv(t)

		rr := httptest.NewRecorder()
		env.auth.HandleRegister(rr, newRequest(http.MethodPost, "/auth/register", `{"username":`, ""))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

// =============================================================
// LOGIN & REFRESH
// =============================================================

func TestHandleLogin(t *testing.T) {
	t.Run("returns access and refresh tokens", func(t *testing.T) {
		env := newTestEnv(t)
		env.registerUser(t, "sakif")

		body := `{"email":"sakif@example.com","password":"` + testPassword + `"}`
		rr := httptest.NewRecorder()
		env.auth.HandleLogin(rr, newRequest(http.MethodPost, "/auth/login", body, ""))

		require.Equal(t, http.StatusOK, rr.Code)

		var res map[string]string
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&res))
		assert.NotEmpty(t, res["access"])
		assert.NotEmpty(t, res["refresh"])
		assert.NotEqual(t, res["access"], res["refresh"])
	})

	t.Run("wrong password and unknown email look identical", func(t *testing.T) {
		env := newTestEnv(t)
		env.registerUser(t, "sakif")

		for _, body := range []string{
			`{"email":"sakif@example.com","password":"wrong-pass-123"}`,
			`{"email":"nobody@example.com","password":"` + testPassword + `"}`,
		} {
			rr := httptest.NewRecorder()
			env.auth.HandleLogin(rr, newRequest(http.MethodPost, "/auth/login", body, ""))

			require.Equal(t, http.StatusUnauthorized, rr.Code)

			var res map[string]string
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&res))
			assert.Equal(t, "Invalid credentials.", res["error"])
		}
	})

	t.Run("missing fields", func(t *testing.T) {
		env := newTestEnv(t)

		rr := httptest.NewRecorder()
		env.auth.HandleLogin(rr, newRequest(http.MethodPost, "/auth/login", `{}`, ""))

		require.Equal(t, http.StatusBadRequest, rr.Code)

		var res map[string]string
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&res))
		assert.Equal(t, "Email and password are required.", res["error"])
	})
}

func TestHandleRefresh(t *testing.T) {
	t.Run("exchanges refresh for new access token", func(t *testing.T) {
		env := newTestEnv(t)
		env.registerUser(t, "sakif")

		// Log in first to obtain a real refresh token.
		loginBody := `{"email":"sakif@example.com","password":"` + testPassword + `"}`
		loginRR := httptest.NewRecorder()
		env.auth.HandleLogin(loginRR, newRequest(http.MethodPost, "/auth/login", loginBody, ""))
		require.Equal(t, http.StatusOK, loginRR.Code)

		var tokens map[string]string
		require.NoError(t, json.NewDecoder(loginRR.Body).Decode(&tokens))

		rr := httptest.NewRecorder()
		body := fmt.Sprintf(`{"refresh":%q}`, tokens["refresh"])
		env.auth.HandleRefresh(rr, newRequest(http.MethodPost, "/auth/login/refresh", body, ""))

		require.Equal(t, http.StatusOK, rr.Code)

		var res map[string]string
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&res))
		assert.NotEmpty(t, res["access"])
	})

	t.Run("access token is rejected as refresh", func(t *testing.T) {
		env := newTestEnv(t)
		env.registerUser(t, "sakif")

		loginBody := `{"email":"sakif@example.com","password":"` + testPassword + `"}`
		loginRR := httptest.NewRecorder()
		env.auth.HandleLogin(loginRR, newRequest(http.MethodPost, "/auth/login", loginBody, ""))

		var tokens map[string]string
		require.NoError(t, json.NewDecoder(loginRR.Body).Decode(&tokens))

		rr := httptest.NewRecorder()
		body := fmt.Sprintf(`{"refresh":%q}`, tokens["access"])
		env.auth.HandleRefresh(rr, newRequest(http.MethodPost, "/auth/login/refresh", body, ""))

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

// =============================================================
// PROFILE
// =============================================================

func TestHandleGetUser(t *testing.T) {
	env := newTestEnv(t)
	user := env.registerUser(t, "sakif")

	rr := httptest.NewRecorder()
	env.auth.HandleGetUser(rr, newRequest(http.MethodGet, "/auth/user", "", user.ID))

	require.Equal(t, http.StatusOK, rr.Code)

	var res map[string]any
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&res))
	assert.Equal(t, user.ID, res["id"])
	assert.Equal(t, "sakif", res["username"])
}

func TestHandlePatchUser(t *testing.T) {
	t.Run("merges only the provided fields", func(t *testing.T) {
		env := newTestEnv(t)
		user := env.registerUser(t, "sakif")

		rr := httptest.NewRecorder()
		env.auth.HandlePatchUser(rr, newRequest(http.MethodPatch, "/auth/user", `{"firstName":"Sakif"}`, user.ID))

		require.Equal(t, http.StatusOK, rr.Code)

		var res map[string]any
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&res))
		assert.Equal(t, "Sakif", res["firstName"])
		// Untouched fields survive the patch.
		assert.Equal(t, "sakif", res["username"])
		assert.Equal(t, "sakif@example.com", res["email"])
	})

	t.Run("taken username is a field error", func(t *testing.T) {
		env := newTestEnv(t)
		env.registerUser(t, "taken")
		user := env.registerUser(t, "sakif")

		rr := httptest.NewRecorder()
		env.auth.HandlePatchUser(rr, newRequest(http.MethodPatch, "/auth/user", `{"username":"taken"}`, user.ID))

		require.Equal(t, http.StatusBadRequest, rr.Code)

		var res struct {
			Fields map[string]string `json:"fields"`
		}
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&res))
		assert.Contains(t, res.Fields, "username")
	})
}

func TestHandleUpdateUser(t *testing.T) {
	// PUT requires the full representation: omitting the email blanks it,
	// which fails validation.
	env := newTestEnv(t)
	user := env.registerUser(t, "sakif")

	rr := httptest.NewRecorder()
	env.auth.HandleUpdateUser(rr, newRequest(http.MethodPut, "/auth/user", `{"username":"sakif2"}`, user.ID))

	require.Equal(t, http.StatusBadRequest, rr.Code)

	var res struct {
		Fields map[string]string `json:"fields"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&res))
	assert.Contains(t, res.Fields, "email")
}

// =============================================================
// LOGOUT & PASSWORD RESET
// =============================================================

func TestHandleLogout(t *testing.T) {
	env := newTestEnv(t)
	user := env.registerUser(t, "sakif")

	rr := httptest.NewRecorder()
	env.auth.HandleLogout(rr, newRequest(http.MethodPost, "/auth/logout", "", user.ID))

	require.Equal(t, http.StatusOK, rr.Code)

	var res map[string]string
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&res))
	assert.Equal(t, "Successfully logged out.", res["message"])
}

func TestHandlePasswordReset(t *testing.T) {
	// Known and unknown addresses get the same answer — the endpoint must
	// not reveal which emails have accounts.
	env := newTestEnv(t)
	env.registerUser(t, "sakif")

	for _, email := range []string{"sakif@example.com", "nobody@example.com"} {
		rr := httptest.NewRecorder()
		body := fmt.Sprintf(`{"email":%q}`, email)
		env.auth.HandlePasswordReset(rr, newRequest(http.MethodPost, "/auth/password-reset", body, ""))

		require.Equal(t, http.StatusOK, rr.Code)

		var res map[string]string
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&res))
		assert.Equal(t, "OK", res["status"])
	}
}

func TestHandlePasswordResetConfirm(t *testing.T) {
	t.Run("missing token", func(t *testing.T) {
		env := newTestEnv(t)

		rr := httptest.NewRecorder()
		body := `{"token":"","password":"` + testPassword + `"}`
		env.auth.HandlePasswordResetConfirm(rr, newRequest(http.MethodPost, "/auth/password-reset/confirm", body, ""))

		require.Equal(t, http.StatusBadRequest, rr.Code)

		var res map[string]string
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&res))
		assert.Equal(t, "Token is required", res["error"])
	})

	t.Run("unknown token", func(t *testing.T) {
		env := newTestEnv(t)

		rr := httptest.NewRecorder()
		body := `{"token":"never-issued","password":"` + testPassword + `"}`
		env.auth.HandlePasswordResetConfirm(rr, newRequest(http.MethodPost, "/auth/password-reset/confirm", body, ""))

		require.Equal(t, http.StatusBadRequest, rr.Code)

		var res map[string]string
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&res))
		assert.Equal(t, "Invalid or expired token", res["error"])
	})
}
