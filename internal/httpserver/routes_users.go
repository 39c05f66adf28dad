// internal/httpserver/routes_users.go
//
// User endpoints:
//   - POST /api/users → register (username ≥ 3, password ≥ 3, unique username)
//   - GET  /api/users → all users with their posts populated
//   - POST /api/login → token issuance (see auth.go)

package httpserver

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"

	"github.com/robalobadob/bloglist/internal/apperr"
	"github.com/robalobadob/bloglist/internal/credential"
	"github.com/robalobadob/bloglist/internal/model"
	"github.com/robalobadob/bloglist/internal/store"
)

// minUsernameLen is the shortest accepted username, in characters.
const minUsernameLen = 3

func (s *Server) mountUsers(r chi.Router) {
	r.Post("/users", s.handleCreateUser)
	r.Get("/users", s.handleListUsers)
	r.Post("/login", s.handleLogin)
}

type createUserReq struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

// validate checks both fields before anything touches the store.
func (req *createUserReq) validate() error {
	req.Username = strings.TrimSpace(req.Username)
	req.Name = strings.TrimSpace(req.Name)
	if utf8.RuneCountInString(req.Username) < minUsernameLen {
		return apperr.Validation(fmt.Sprintf("username must be at least %d characters long", minUsernameLen))
	}
	if utf8.RuneCountInString(req.Password) < credential.MinPasswordLen {
		return apperr.Validation(fmt.Sprintf("password must be at least %d characters long", credential.MinPasswordLen))
	}
	return nil
}

var errUsernameTaken = apperr.Validation("username must be unique")

// handleCreateUser validates input, checks uniqueness, hashes the password
// and stores the user. The response never carries the hash.
func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserReq
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, r, err)
		return
	}

	ctx := r.Context()
	if _, err := s.store.GetUserByUsername(ctx, req.Username); err == nil {
		writeError(w, r, errUsernameTaken)
		return
	} else if !errors.Is(err, store.ErrNotFound) {
		writeError(w, r, apperr.Internal("check username", err))
		return
	}

	hash, err := s.creds.Hash(req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	u := model.User{Username: req.Username, Name: req.Name, PasswordHash: hash, Blogs: []string{}}
	if err := s.store.CreateUser(ctx, &u); err != nil {
		// Lost a race with a concurrent registration.
		if errors.Is(err, store.ErrDuplicateUsername) {
			writeError(w, r, errUsernameTaken)
			return
		}
		writeError(w, r, apperr.Internal("insert user", err))
		return
	}

	writeJSON(w, http.StatusOK, model.UserView{
		ID:       u.ID,
		Username: u.Username,
		Name:     u.Name,
		Blogs:    []model.BlogSummary{},
	})
}

// handleListUsers returns every user with their posts populated. Back-references
// to deleted posts are skipped.
func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.store.ListUsers(r.Context())
	if err != nil {
		writeError(w, r, apperr.Internal("list users", err))
		return
	}
	blogs, err := s.store.ListBlogs(r.Context())
	if err != nil {
		writeError(w, r, apperr.Internal("list blogs", err))
		return
	}
	byID := make(map[string]model.Blog, len(blogs))
	for _, b := range blogs {
		byID[b.ID] = b
	}

	out := make([]model.UserView, 0, len(users))
	for _, u := range users {
		v := model.UserView{ID: u.ID, Username: u.Username, Name: u.Name, Blogs: []model.BlogSummary{}}
		for _, id := range u.Blogs {
			if b, ok := byID[id]; ok {
				v.Blogs = append(v.Blogs, b.Summary())
			}
		}
		out = append(out, v)
	}
	writeJSON(w, http.StatusOK, out)
}
