// internal/store/store.go
//
// Persistence interface for users and blog posts. The HTTP layer treats the
// store as an opaque document service: find, insert, update and delete by id.
// Two implementations live in this package: an in-memory map (memory.go) and
// SQLite (sqlite.go).

package store

import (
	"context"
	"errors"

	"github.com/robalobadob/bloglist/internal/model"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrDuplicateUsername = errors.New("duplicate username")
)

// Store is the full persistence surface used by the server.
type Store interface {
	UserStore
	BlogStore
	Close() error
}

type UserStore interface {
	// CreateUser inserts u, assigning u.ID if empty. Usernames are unique
	// case-insensitively; a clash returns ErrDuplicateUsername.
	CreateUser(ctx context.Context, u *model.User) error
	GetUser(ctx context.Context, id string) (model.User, error)
	GetUserByUsername(ctx context.Context, username string) (model.User, error)
	// ListUsers returns users in creation order with their Blogs back-references.
	ListUsers(ctx context.Context) ([]model.User, error)
	// AddUserBlog appends blogID to the user's back-references.
	AddUserBlog(ctx context.Context, userID, blogID string) error
}

type BlogStore interface {
	// CreateBlog inserts b, assigning b.ID if empty. The owner must exist.
	CreateBlog(ctx context.Context, b *model.Blog) error
	GetBlog(ctx context.Context, id string) (model.Blog, error)
	// ListBlogs returns posts in creation order.
	ListBlogs(ctx context.Context) ([]model.Blog, error)
	// UpdateBlog overwrites title, author, url and likes of the post with
	// b.ID and returns the stored result. Ownership is never changed.
	UpdateBlog(ctx context.Context, b model.Blog) (model.Blog, error)
	DeleteBlog(ctx context.Context, id string) error
}
