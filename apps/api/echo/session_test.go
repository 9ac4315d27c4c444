package echoapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sessionRequest is like newRequest but carries a session ID.
func sessionRequest(method, path, sessionID string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	req, rec := newRequest(method, path, data...)
	if sessionID != "" {
		req.Header.Set(sessionHeader, sessionID)
	}
	return req, rec
}

func Test_sessionApi_create(t *testing.T) {
	app, _ := newTestServer(t)

	req, rec := newRequest(http.MethodPost, "/v1/session")
	app.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	var res SessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.NotEmpty(t, res.SessionID)
	assert.Equal(t, res.SessionID, rec.Header().Get(sessionHeader))

	// a supplied ID is kept as-is
	req, rec = sessionRequest(http.MethodPost, "/v1/session", res.SessionID)
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, res.SessionID, rec.Header().Get(sessionHeader))
}

func Test_sessionApi_keys(t *testing.T) {
	app, _ := newTestServer(t)
	sid := "test-session"

	// empty to start with
	req, rec := sessionRequest(http.MethodGet, "/v1/session/keys", sid)
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	// set, read back, list
	req, rec = sessionRequest(http.MethodPut, "/v1/session/keys/theme", sid, []byte(`{"value":"dark"}`))
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	req, rec = sessionRequest(http.MethodGet, "/v1/session/keys/theme", sid)
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"key":"theme","value":"dark"}`, rec.Body.String())

	req, rec = sessionRequest(http.MethodGet, "/v1/session/keys", sid)
	app.ServeHTTP(rec, req)
	assert.JSONEq(t, `["theme"]`, rec.Body.String())

	// last write wins
	req, rec = sessionRequest(http.MethodPut, "/v1/session/keys/theme", sid, []byte(`{"value":{"mode":"light","size":12}}`))
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	req, rec = sessionRequest(http.MethodGet, "/v1/session/keys/theme", sid)
	app.ServeHTTP(rec, req)
	assert.JSONEq(t, `{"key":"theme","value":{"mode":"light","size":12}}`, rec.Body.String())

	// delete
	req, rec = sessionRequest(http.MethodDelete, "/v1/session/keys/theme", sid)
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	req, rec = sessionRequest(http.MethodGet, "/v1/session/keys/theme", sid)
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func Test_sessionApi_isolation(t *testing.T) {
	app, _ := newTestServer(t)

	req, rec := sessionRequest(http.MethodPut, "/v1/session/keys/who", "session-a", []byte(`{"value":"alice"}`))
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	// another session does not see it
	req, rec = sessionRequest(http.MethodGet, "/v1/session/keys/who", "session-b")
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func Test_sessionApi_counters(t *testing.T) {
	app, _ := newTestServer(t)
	sid := "counter-session"

	do := func(op string) *httptest.ResponseRecorder {
		req, rec := sessionRequest(http.MethodPost, "/v1/session/counters/clicks", sid, []byte(`{"op":"`+op+`"}`))
		app.ServeHTTP(rec, req)
		return rec
	}

	rec := do("increment")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"name":"clicks","value":1}`, rec.Body.String())

	rec = do("increment")
	assert.JSONEq(t, `{"name":"clicks","value":2}`, rec.Body.String())

	rec = do("decrement")
	assert.JSONEq(t, `{"name":"clicks","value":1}`, rec.Body.String())

	rec = do("reset")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"name":"clicks","value":0}`, rec.Body.String())

	// unknown op
	req, rec2 := sessionRequest(http.MethodPost, "/v1/session/counters/clicks", sid, []byte(`{"op":"double"}`))
	app.ServeHTTP(rec2, req)
	assert.Equal(t, http.StatusBadRequest, rec2.Code)

	// counter op on a non-numeric value
	req, rec2 = sessionRequest(http.MethodPut, "/v1/session/keys/label", sid, []byte(`{"value":"hello"}`))
	app.ServeHTTP(rec2, req)
	require.Equal(t, http.StatusOK, rec2.Code)
	req, rec2 = sessionRequest(http.MethodPost, "/v1/session/counters/label", sid, []byte(`{"op":"increment"}`))
	app.ServeHTTP(rec2, req)
	assert.Equal(t, http.StatusBadRequest, rec2.Code)
}

func Test_sessionApi_clear(t *testing.T) {
	app, _ := newTestServer(t)
	sid := "clear-session"

	req, rec := sessionRequest(http.MethodPut, "/v1/session/keys/a", sid, []byte(`{"value":1}`))
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	req, rec = sessionRequest(http.MethodDelete, "/v1/session", sid)
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	// the session comes back empty
	req, rec = sessionRequest(http.MethodGet, "/v1/session/keys", sid)
	app.ServeHTTP(rec, req)
	assert.JSONEq(t, `[]`, rec.Body.String())
}
