package web

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssoellinger/open-ldap-viewer/directory"
	"github.com/ssoellinger/open-ldap-viewer/registry"
)

func testServer() *Server {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return NewServer(registry.New(log), "127.0.0.1:0", directory.ConnectionSettings{}, log)
}

func doRequest(t *testing.T, s *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestNoActiveSessionIsConflict(t *testing.T) {
	s := testServer()

	for _, target := range []string{
		"/api/tree?dn=dc%3Dexample%2Cdc%3Dcom",
		"/api/tree/count?dn=dc%3Dexample%2Cdc%3Dcom",
		"/api/entry?dn=dc%3Dexample%2Cdc%3Dcom",
		"/api/search?filter=(cn%3D*)",
		"/api/schema",
		"/api/stats",
		"/api/contexts",
		"/api/export",
	} {
		rec := doRequest(t, s, http.MethodGet, target, "")
		assert.Equal(t, http.StatusConflict, rec.Code, "target %s", target)
	}
}

func TestListSessionsEmpty(t *testing.T) {
	rec := doRequest(t, testServer(), http.MethodGet, "/api/sessions", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var infos []registry.Info
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &infos))
	assert.Empty(t, infos)
}

func TestConnectRejectsBadBody(t *testing.T) {
	s := testServer()

	rec := doRequest(t, s, http.MethodPost, "/api/sessions", "not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, s, http.MethodPost, "/api/sessions", `{"baseDn":"dc=example,dc=com"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestActivateUnknownSession(t *testing.T) {
	rec := doRequest(t, testServer(), http.MethodPost, "/api/sessions/deadbeef/activate", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRemoveUnknownSession(t *testing.T) {
	rec := doRequest(t, testServer(), http.MethodDelete, "/api/sessions/deadbeef", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDefaultsHidesPassword(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)
	defaults := directory.ConnectionSettings{
		Server:   "ldap.example.com",
		Username: "cn=admin,dc=example,dc=com",
		Password: "secret",
	}
	s := NewServer(registry.New(log), "127.0.0.1:0", defaults, log)

	rec := doRequest(t, s, http.MethodGet, "/api/defaults", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var got directory.ConnectionSettings
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "ldap.example.com", got.Server)
	assert.Empty(t, got.Password)
}

func TestStaticIndexServed(t *testing.T) {
	rec := doRequest(t, testServer(), http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Open LDAP Viewer")
}
