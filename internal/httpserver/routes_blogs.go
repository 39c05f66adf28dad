// internal/httpserver/routes_blogs.go
//
// Blog endpoints under /api/blogs:
//   - GET    /api/blogs      → all posts, owner populated
//   - GET    /api/blogs/{id} → one post (400 malformed id, 404 missing)
//   - POST   /api/blogs      → create (auth), links the post to its owner
//   - PUT    /api/blogs/{id} → full overwrite of title/author/url/likes
//   - DELETE /api/blogs/{id} → delete (auth, owner only)

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/bloglist/internal/apperr"
	"github.com/robalobadob/bloglist/internal/model"
	"github.com/robalobadob/bloglist/internal/store"
)

func (s *Server) mountBlogs(r chi.Router) {
	r.Route("/blogs", func(r chi.Router) {
		r.Get("/", s.handleListBlogs)
		r.Get("/{id}", s.handleGetBlog)
		r.With(s.requireAuth()).Post("/", s.handleCreateBlog)
		// Update is open to unauthenticated callers and does not check ownership.
		r.Put("/{id}", s.handleUpdateBlog)
		r.With(s.requireAuth()).Delete("/{id}", s.handleDeleteBlog)
	})
}

// likes accepts any JSON value. Anything other than a non-negative integer
// (absent, null, strings, fractions, negatives) is stored as 0.
type likes int

func (l *likes) UnmarshalJSON(b []byte) error {
	*l = 0
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return nil
	}
	v, err := n.Int64()
	if err != nil || v < 0 || int64(int(v)) != v {
		return nil
	}
	*l = likes(v)
	return nil
}

type blogReq struct {
	Title  string `json:"title"`
	Author string `json:"author"`
	URL    string `json:"url"`
	Likes  likes  `json:"likes"`
}

func (req *blogReq) validate() error {
	req.Title = strings.TrimSpace(req.Title)
	req.Author = strings.TrimSpace(req.Author)
	req.URL = strings.TrimSpace(req.URL)
	switch {
	case req.Title == "" && req.URL == "":
		return apperr.Validation("title and url are required")
	case req.Title == "":
		return apperr.Validation("title is required")
	case req.URL == "":
		return apperr.Validation("url is required")
	}
	return nil
}

// blogID reads and validates the {id} URL parameter. Malformed ids never
// reach the store.
func blogID(r *http.Request) (string, error) {
	id, ok := model.ParseID(chi.URLParam(r, "id"))
	if !ok {
		return "", apperr.Validation("malformed id")
	}
	return id, nil
}

// owner loads the populated owner of b. A dangling owner renders as null.
func (s *Server) owner(ctx context.Context, b model.Blog) (*model.OwnerView, error) {
	u, err := s.store.GetUser(ctx, b.UserID)
	if errors.Is(err, store.ErrNotFound) {
		log.Warn().Str("blog", b.ID).Str("user", b.UserID).Msg("blog owner missing")
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Internal("load blog owner", err)
	}
	return u.Owner(), nil
}

func (s *Server) handleListBlogs(w http.ResponseWriter, r *http.Request) {
	blogs, err := s.store.ListBlogs(r.Context())
	if err != nil {
		writeError(w, r, apperr.Internal("list blogs", err))
		return
	}
	users, err := s.store.ListUsers(r.Context())
	if err != nil {
		writeError(w, r, apperr.Internal("list users", err))
		return
	}
	owners := make(map[string]*model.OwnerView, len(users))
	for _, u := range users {
		owners[u.ID] = u.Owner()
	}

	out := make([]model.BlogView, 0, len(blogs))
	for _, b := range blogs {
		out = append(out, b.View(owners[b.UserID]))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetBlog(w http.ResponseWriter, r *http.Request) {
	id, err := blogID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	b, err := s.store.GetBlog(r.Context(), id)
	if err != nil {
		writeError(w, r, blogLookupErr(err))
		return
	}
	own, err := s.owner(r.Context(), b)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b.View(own))
}

// handleCreateBlog stores a post owned by the caller, then appends it to the
// caller's back-references. If the second write fails the post is removed
// again; if that also fails the orphan is logged.
func (s *Server) handleCreateBlog(w http.ResponseWriter, r *http.Request) {
	me := currentUser(r)
	if me == nil {
		writeError(w, r, apperr.Auth("token missing or invalid"))
		return
	}
	var req blogReq
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, r, err)
		return
	}

	ctx := r.Context()
	b := model.Blog{
		Title:  req.Title,
		Author: req.Author,
		URL:    req.URL,
		Likes:  int(req.Likes),
		UserID: me.ID,
	}
	if err := s.store.CreateBlog(ctx, &b); err != nil {
		writeError(w, r, apperr.Internal("insert blog", err))
		return
	}

	if err := s.store.AddUserBlog(ctx, me.ID, b.ID); err != nil {
		// Compensate even if the request context is already done.
		cctx := context.WithoutCancel(ctx)
		reqID := chimw.GetReqID(ctx)
		if derr := s.store.DeleteBlog(cctx, b.ID); derr != nil {
			log.Error().Err(err).AnErr("compensateErr", derr).
				Str("reqId", reqID).Str("blog", b.ID).Str("user", me.ID).
				Msg("orphan blog: owner link and rollback both failed")
		} else {
			log.Warn().Err(err).Str("reqId", reqID).Str("blog", b.ID).Str("user", me.ID).
				Msg("blog removed after owner link failed")
		}
		writeError(w, r, apperr.Internal("link blog to owner", err))
		return
	}

	writeJSON(w, http.StatusOK, b.View(me.Owner()))
}

// handleUpdateBlog overwrites title, author, url and likes. Omitted fields are
// not merged: an omitted author becomes empty and omitted likes become 0.
func (s *Server) handleUpdateBlog(w http.ResponseWriter, r *http.Request) {
	id, err := blogID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req blogReq
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, r, err)
		return
	}

	updated, err := s.store.UpdateBlog(r.Context(), model.Blog{
		ID:     id,
		Title:  req.Title,
		Author: req.Author,
		URL:    req.URL,
		Likes:  int(req.Likes),
	})
	if err != nil {
		writeError(w, r, blogLookupErr(err))
		return
	}
	own, err := s.owner(r.Context(), updated)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated.View(own))
}

// handleDeleteBlog removes a post owned by the caller. The owner's
// back-reference is left in place.
func (s *Server) handleDeleteBlog(w http.ResponseWriter, r *http.Request) {
	me := currentUser(r)
	if me == nil {
		writeError(w, r, apperr.Auth("token missing or invalid"))
		return
	}
	id, err := blogID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	b, err := s.store.GetBlog(r.Context(), id)
	if err != nil {
		writeError(w, r, blogLookupErr(err))
		return
	}
	if b.UserID != me.ID {
		writeError(w, r, apperr.Auth("you do not have permission to delete this blog"))
		return
	}
	if err := s.store.DeleteBlog(r.Context(), id); err != nil {
		writeError(w, r, blogLookupErr(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func blogLookupErr(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return apperr.NotFound("blog not found")
	}
	return apperr.Internal("blog lookup", err)
}
