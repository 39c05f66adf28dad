// internal/httpserver/auth.go
//
// Bearer-token authentication.
//   - requireAuth: verifies the token, resolves the user, stores it in the
//     request context. Rejects with 401 before the handler runs.
//   - POST /api/login: exchanges username/password for a token.

package httpserver

import (
	"context"
	"errors"
	"net/http"
	"strings"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/bloglist/internal/apperr"
	"github.com/robalobadob/bloglist/internal/model"
	"github.com/robalobadob/bloglist/internal/store"
)

// ctxUserKey is the context key type for the resolved *model.User.
type ctxUserKey struct{}

const bearerPrefix = "bearer "

// bearerToken extracts the token from "Authorization: Bearer <token>".
// The scheme is matched case-insensitively; anything else yields "".
func bearerToken(r *http.Request) string {
	a := r.Header.Get("Authorization")
	if len(a) < len(bearerPrefix) || !strings.EqualFold(a[:len(bearerPrefix)], bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(a[len(bearerPrefix):])
}

// requireAuth enforces a valid token for an existing user and injects that
// user into the request context.
func (s *Server) requireAuth() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := s.creds.VerifyToken(bearerToken(r))
			if err != nil {
				writeError(w, r, err)
				return
			}
			id, ok := model.ParseID(claims.UserID)
			if !ok {
				writeError(w, r, apperr.Auth("token missing or invalid"))
				return
			}
			u, err := s.store.GetUser(r.Context(), id)
			if err != nil {
				if errors.Is(err, store.ErrNotFound) {
					// Same answer as a bad signature: do not reveal which ids exist.
					log.Debug().Str("reqId", chimw.GetReqID(r.Context())).Msg("token for unknown user")
					writeError(w, r, apperr.Auth("token missing or invalid"))
					return
				}
				writeError(w, r, apperr.Internal("resolve token user", err))
				return
			}
			ctx := context.WithValue(r.Context(), ctxUserKey{}, &u)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// currentUser returns the user resolved by requireAuth, or nil.
func currentUser(r *http.Request) *model.User {
	u, _ := r.Context().Value(ctxUserKey{}).(*model.User)
	return u
}

type loginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginRes struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	Name     string `json:"name"`
}

// handleLogin verifies credentials and issues a token. Unknown users and
// wrong passwords get the same answer.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body loginReq
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, r, err)
		return
	}

	invalid := apperr.Auth("invalid username or password")
	u, err := s.store.GetUserByUsername(r.Context(), strings.TrimSpace(body.Username))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, r, invalid)
			return
		}
		writeError(w, r, apperr.Internal("find user", err))
		return
	}
	ok, err := s.creds.Verify(body.Password, u.PasswordHash)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !ok {
		writeError(w, r, invalid)
		return
	}

	tok, err := s.creds.IssueToken(u.Username, u.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, loginRes{Token: tok, Username: u.Username, Name: u.Name})
}
