package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContactHandleSubmit(t *testing.T) {
	t.Run("accepts a valid submission", func(t *testing.T) {
		env := newTestEnv(t)

		body := `{"name":"Visitor","email":"visitor@example.com","subject":"Hello","message":"Great site!"}`
		rr := httptest.NewRecorder()
		env.contact.HandleSubmit(rr, newRequest(http.MethodPost, "/contact", body, ""))

		require.Equal(t, http.StatusOK, rr.Code)

		var res map[string]string
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&res))
		assert.Equal(t, "Your message has been sent. Thank you for contacting us!", res["detail"])
	})

	t.Run("collects field errors", func(t *testing.T) {
		env := newTestEnv(t)

		// Everything wrong at once — each field gets its own message.
		body := `{"name":"","email":"not-an-email","subject":"","message":""}`
		rr := httptest.NewRecorder()
		env.contact.HandleSubmit(rr, newRequest(http.MethodPost, "/contact", body, ""))

		require.Equal(t, http.StatusBadRequest, rr.Code)

		var res struct {
			Error  string            `json:"error"`
			Fields map[string]string `json:"fields"`
		}
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&res))
		assert.Equal(t, "validation_error", res.Error)
		assert.Contains(t, res.Fields, "name")
		assert.Contains(t, res.Fields, "email")
		assert.Contains(t, res.Fields, "subject")
		assert.Contains(t, res.Fields, "message")
	})

	t.Run("rejects header injection in the subject", func(t *testing.T) {
		env := newTestEnv(t)

		body := `{"name":"Visitor","email":"visitor@example.com","subject":"Hi\r\nBcc: spam@evil.com","message":"..."}`
		rr := httptest.NewRecorder()
		env.contact.HandleSubmit(rr, newRequest(http.MethodPost, "/contact", body, ""))

		require.Equal(t, http.StatusBadRequest, rr.Code)

		var res struct {
			Fields map[string]string `json:"fields"`
		}
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&res))
		assert.Contains(t, res.Fields, "subject")
	})

	t.Run("malformed JSON", func(t *testing.T) {
		env := newTestEnv(t)

		rr := httptest.NewRecorder()
		env.contact.HandleSubmit(rr, newRequest(http.MethodPost, "/contact", `{"name":`, ""))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}
