package httprpc

import (
	"net/http"
	"net/http/httptest"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_StatusTag(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "not_found", statusTag(404))
	assert.Equal(t, "method_not_allowed", statusTag(405))
	assert.Equal(t, "bad_request", statusTag(400))
	assert.Equal(t, "internal_server_error", statusTag(500))
	// Unknown status codes fall back to a generic tag.
	assert.Equal(t, "http_error", statusTag(499))
}

func decodeEnvelope(t *testing.T, resp response) errorEnvelope {
	t.Helper()

	var env errorEnvelope
	require.NoError(t, json.Unmarshal(resp.body, &env))
	return env
}

func Test_ErrorResponse(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest(http.MethodGet, "/users/42", nil)

	resp := errorResponse(http.StatusNotFound, r, "")
	assert.Equal(t, http.StatusNotFound, resp.status)
	assert.Equal(t, "application/json", resp.header.Get("Content-Type"))
	env := decodeEnvelope(t, resp)
	assert.Equal(t, "error", env.Type)
	assert.Equal(t, "not_found", env.Tag)
	require.NotNil(t, env.Message)
	assert.Equal(t, "The requested URL /users/42 was not found on this service.", *env.Message)

	resp = errorResponse(http.StatusMethodNotAllowed, r, "")
	env = decodeEnvelope(t, resp)
	assert.Equal(t, "method_not_allowed", env.Tag)
	require.NotNil(t, env.Message)
	assert.Equal(t, "The requested URL /users/42 was not allowed HTTP method GET.", *env.Message)

	// An explicit message always wins over the synthesized one.
	resp = errorResponse(http.StatusNotFound, r, "gone fishing")
	env = decodeEnvelope(t, resp)
	assert.Equal(t, "gone fishing", *env.Message)

	// 400 without a message carries null.
	resp = errorResponse(http.StatusBadRequest, r, "")
	env = decodeEnvelope(t, resp)
	assert.Equal(t, "bad_request", env.Tag)
	assert.Nil(t, env.Message)

	// Other statuses fall back to the status phrase.
	resp = errorResponse(http.StatusInternalServerError, r, "")
	env = decodeEnvelope(t, resp)
	require.NotNil(t, env.Message)
	assert.Equal(t, "Internal Server Error", *env.Message)
}

func Test_EnvelopeWireShape(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest(http.MethodPost, "/", nil)
	resp := errorResponse(http.StatusBadRequest, r, "`method` is missing.")

	assert.JSONEq(t,
		`{"_type": "error", "_tag": "bad_request", "message": "`+"`method` is missing."+`"}`,
		string(resp.body))
}

func Test_Response_Write(t *testing.T) {
	t.Parallel()

	resp := jsonResponse(http.StatusOK, map[string]interface{}{"ok": true})

	rec := httptest.NewRecorder()
	resp.write(rec)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"ok": true}`, rec.Body.String())
}
