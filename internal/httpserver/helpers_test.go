package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/robalobadob/bloglist/internal/credential"
	"github.com/robalobadob/bloglist/internal/model"
	"github.com/robalobadob/bloglist/internal/store"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.Disabled)
	os.Exit(m.Run())
}

type testEnv struct {
	srv   *Server
	st    store.Store
	creds *credential.Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWithStore(t, store.NewMemoryStore())
}

func newTestEnvWithStore(t *testing.T, st store.Store) *testEnv {
	t.Helper()
	creds, err := credential.New([]byte("test-secret-"+t.Name()), credential.WithCost(bcrypt.MinCost))
	require.NoError(t, err)
	return &testEnv{
		srv:   New(st, creds, Options{ClientOrigin: "http://localhost:5173"}),
		st:    st,
		creds: creds,
	}
}

// do sends a request through the full router. body may be nil, a string
// (sent verbatim) or any value (JSON-encoded).
func (e *testEnv) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.srv.Router().ServeHTTP(rec, req)
	return rec
}

// seedUser stores a user directly, bypassing the HTTP layer.
func (e *testEnv) seedUser(t *testing.T, username, password string) model.User {
	t.Helper()
	hash, err := e.creds.Hash(password)
	require.NoError(t, err)
	u := model.User{Username: username, Name: "Name " + username, PasswordHash: hash}
	require.NoError(t, e.st.CreateUser(context.Background(), &u))
	return u
}

func (e *testEnv) tokenFor(t *testing.T, u model.User) string {
	t.Helper()
	tok, err := e.creds.IssueToken(u.Username, u.ID)
	require.NoError(t, err)
	return tok
}

// seedBlog creates a post through the API as u.
func (e *testEnv) seedBlog(t *testing.T, u model.User, title string) model.BlogView {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/api/blogs",
		map[string]any{"title": title, "author": "FHGF", "url": title + ".com"}, e.tokenFor(t, u))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return decode[model.BlogView](t, rec)
}

func (e *testEnv) blogCount(t *testing.T) int {
	t.Helper()
	blogs, err := e.st.ListBlogs(context.Background())
	require.NoError(t, err)
	return len(blogs)
}

func (e *testEnv) userCount(t *testing.T) int {
	t.Helper()
	users, err := e.st.ListUsers(context.Background())
	require.NoError(t, err)
	return len(users)
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[map[string]string](t, rec)["error"]
}
