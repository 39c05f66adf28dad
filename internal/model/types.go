// internal/model/types.go
//
// Core type definitions for the bloglist backend.
// Defines:
//   - User: an account that owns blog posts.
//   - Blog: a single blog post entry.
//   - JSON views used by the HTTP layer (credential fields never appear here).

package model

import (
	"github.com/google/uuid"
)

// User is a registered account.
type User struct {
	ID           string   // Unique identifier (UUID).
	Username     string   // Unique, at least 3 characters.
	Name         string   // Optional display name.
	PasswordHash string   // bcrypt hash; never serialized.
	Blogs        []string // IDs of posts created by this user. May contain stale IDs.
}

// Blog is a single blog post.
type Blog struct {
	ID     string
	Title  string
	Author string
	URL    string
	Likes  int
	UserID string // Owner; fixed at creation.
}

// OwnerView is the populated form of Blog.UserID.
type OwnerView struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
}

// BlogView is the JSON shape of a blog post. User is nil when the owner no
// longer resolves.
type BlogView struct {
	ID     string     `json:"id"`
	Title  string     `json:"title"`
	Author string     `json:"author"`
	URL    string     `json:"url"`
	Likes  int        `json:"likes"`
	User   *OwnerView `json:"user"`
}

// BlogSummary is how a post appears inside a UserView.
type BlogSummary struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Author string `json:"author"`
	URL    string `json:"url"`
	Likes  int    `json:"likes"`
}

// UserView is the JSON shape of a user.
type UserView struct {
	ID       string        `json:"id"`
	Username string        `json:"username"`
	Name     string        `json:"name"`
	Blogs    []BlogSummary `json:"blogs"`
}

// NewID returns a fresh random identifier.
func NewID() string { return uuid.NewString() }

// ParseID reports whether s is a well-formed identifier and returns its
// canonical form. Only the 36-character hyphenated UUID form is accepted.
func ParseID(s string) (string, bool) {
	if len(s) != 36 {
		return "", false
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return "", false
	}
	return id.String(), true
}

// Owner returns the owner summary of u.
func (u User) Owner() *OwnerView {
	return &OwnerView{ID: u.ID, Username: u.Username, Name: u.Name}
}

// View renders b with the given owner (may be nil).
func (b Blog) View(owner *OwnerView) BlogView {
	return BlogView{
		ID:     b.ID,
		Title:  b.Title,
		Author: b.Author,
		URL:    b.URL,
		Likes:  b.Likes,
		User:   owner,
	}
}

// Summary renders b as it appears in a user's blog list.
func (b Blog) Summary() BlogSummary {
	return BlogSummary{ID: b.ID, Title: b.Title, Author: b.Author, URL: b.URL, Likes: b.Likes}
}
