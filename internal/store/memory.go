// internal/store/memory.go
//
// In-memory implementation of Store.
// Used for development (STORE=memory) and tests.
//
// Characteristics:
//   - Users and blogs kept in maps keyed by ID, plus insertion-order slices.
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - Values are copied in and out; callers never alias stored state.
//   - State is lost when the process restarts.

package store

import (
	"context"
	"strings"
	"sync"

	"github.com/robalobadob/bloglist/internal/model"
)

type memory struct {
	mu        sync.RWMutex
	users     map[string]*model.User
	userOrder []string
	blogs     map[string]*model.Blog
	blogOrder []string
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() Store {
	return &memory{
		users: make(map[string]*model.User),
		blogs: make(map[string]*model.Blog),
	}
}

func (m *memory) Close() error { return nil }

func (m *memory) CreateUser(ctx context.Context, u *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if strings.EqualFold(existing.Username, u.Username) {
			return ErrDuplicateUsername
		}
	}
	if u.ID == "" {
		u.ID = model.NewID()
	}
	cp := copyUser(*u)
	m.users[u.ID] = &cp
	m.userOrder = append(m.userOrder, u.ID)
	return nil
}

func (m *memory) GetUser(ctx context.Context, id string) (model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if u, ok := m.users[id]; ok {
		return copyUser(*u), nil
	}
	return model.User{}, ErrNotFound
}

func (m *memory) GetUserByUsername(ctx context.Context, username string) (model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if strings.EqualFold(u.Username, username) {
			return copyUser(*u), nil
		}
	}
	return model.User{}, ErrNotFound
}

func (m *memory) ListUsers(ctx context.Context) ([]model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.User, 0, len(m.userOrder))
	for _, id := range m.userOrder {
		out = append(out, copyUser(*m.users[id]))
	}
	return out, nil
}

func (m *memory) AddUserBlog(ctx context.Context, userID, blogID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return ErrNotFound
	}
	u.Blogs = append(u.Blogs, blogID)
	return nil
}

func (m *memory) CreateBlog(ctx context.Context, b *model.Blog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[b.UserID]; !ok {
		return ErrNotFound
	}
	if b.ID == "" {
		b.ID = model.NewID()
	}
	cp := *b
	m.blogs[b.ID] = &cp
	m.blogOrder = append(m.blogOrder, b.ID)
	return nil
}

func (m *memory) GetBlog(ctx context.Context, id string) (model.Blog, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if b, ok := m.blogs[id]; ok {
		return *b, nil
	}
	return model.Blog{}, ErrNotFound
}

func (m *memory) ListBlogs(ctx context.Context) ([]model.Blog, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.Blog, 0, len(m.blogOrder))
	for _, id := range m.blogOrder {
		out = append(out, *m.blogs[id])
	}
	return out, nil
}

func (m *memory) UpdateBlog(ctx context.Context, b model.Blog) (model.Blog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.blogs[b.ID]
	if !ok {
		return model.Blog{}, ErrNotFound
	}
	cur.Title = b.Title
	cur.Author = b.Author
	cur.URL = b.URL
	cur.Likes = b.Likes
	return *cur, nil
}

func (m *memory) DeleteBlog(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.blogs[id]; !ok {
		return ErrNotFound
	}
	delete(m.blogs, id)
	for i, bid := range m.blogOrder {
		if bid == id {
			m.blogOrder = append(m.blogOrder[:i], m.blogOrder[i+1:]...)
			break
		}
	}
	return nil
}

func copyUser(u model.User) model.User {
	u.Blogs = append([]string{}, u.Blogs...)
	return u
}
