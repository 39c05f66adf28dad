package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/bloglist/internal/model"
)

// storeFactories builds a fresh, empty store of every implementation.
func storeFactories() map[string]func(t *testing.T) Store {
	return map[string]func(t *testing.T) Store{
		"memory": func(t *testing.T) Store {
			return NewMemoryStore()
		},
		"sqlite": func(t *testing.T) Store {
			st, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "test.db"))
			require.NoError(t, err)
			t.Cleanup(func() { _ = st.Close() })
			return st
		},
	}
}

func forEachStore(t *testing.T, fn func(t *testing.T, st Store)) {
	for name, factory := range storeFactories() {
		t.Run(name, func(t *testing.T) {
			fn(t, factory(t))
		})
	}
}

func mustCreateUser(t *testing.T, st Store, username string) model.User {
	t.Helper()
	u := model.User{Username: username, Name: "Name " + username, PasswordHash: "hash"}
	require.NoError(t, st.CreateUser(context.Background(), &u))
	return u
}

func TestUsers(t *testing.T) {
	forEachStore(t, func(t *testing.T, st Store) {
		ctx := context.Background()

		root := mustCreateUser(t, st, "root")
		_, ok := model.ParseID(root.ID)
		assert.True(t, ok, "store assigns a well-formed id")

		got, err := st.GetUser(ctx, root.ID)
		require.NoError(t, err)
		assert.Equal(t, "root", got.Username)
		assert.Equal(t, "Name root", got.Name)
		assert.Equal(t, "hash", got.PasswordHash)
		assert.Empty(t, got.Blogs)

		byName, err := st.GetUserByUsername(ctx, "ROOT")
		require.NoError(t, err)
		assert.Equal(t, root.ID, byName.ID)

		_, err = st.GetUser(ctx, model.NewID())
		assert.ErrorIs(t, err, ErrNotFound)
		_, err = st.GetUserByUsername(ctx, "nobody")
		assert.ErrorIs(t, err, ErrNotFound)

		dup := model.User{Username: "Root", PasswordHash: "x"}
		assert.ErrorIs(t, st.CreateUser(ctx, &dup), ErrDuplicateUsername)

		mustCreateUser(t, st, "qwerty")
		users, err := st.ListUsers(ctx)
		require.NoError(t, err)
		require.Len(t, users, 2)
		assert.Equal(t, "root", users[0].Username)
		assert.Equal(t, "qwerty", users[1].Username)
	})
}

func TestBlogs(t *testing.T) {
	forEachStore(t, func(t *testing.T, st Store) {
		ctx := context.Background()
		owner := mustCreateUser(t, st, "owner")

		b := model.Blog{Title: "first", Author: "PR", URL: "first.net", Likes: 7, UserID: owner.ID}
		require.NoError(t, st.CreateBlog(ctx, &b))
		require.NotEmpty(t, b.ID)

		got, err := st.GetBlog(ctx, b.ID)
		require.NoError(t, err)
		assert.Equal(t, b, got)

		second := model.Blog{Title: "second", URL: "second.net", UserID: owner.ID}
		require.NoError(t, st.CreateBlog(ctx, &second))

		all, err := st.ListBlogs(ctx)
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, "first", all[0].Title)
		assert.Equal(t, "second", all[1].Title)

		updated, err := st.UpdateBlog(ctx, model.Blog{
			ID: b.ID, Title: "joulupukki", Author: "ACF", URL: "jouluonkohta.net", Likes: 9567,
			UserID: model.NewID(),
		})
		require.NoError(t, err)
		assert.Equal(t, "joulupukki", updated.Title)
		assert.Equal(t, 9567, updated.Likes)
		assert.Equal(t, owner.ID, updated.UserID, "ownership is immutable")

		_, err = st.UpdateBlog(ctx, model.Blog{ID: model.NewID(), Title: "x", URL: "y"})
		assert.ErrorIs(t, err, ErrNotFound)

		require.NoError(t, st.DeleteBlog(ctx, b.ID))
		_, err = st.GetBlog(ctx, b.ID)
		assert.ErrorIs(t, err, ErrNotFound)
		assert.ErrorIs(t, st.DeleteBlog(ctx, b.ID), ErrNotFound)

		all, err = st.ListBlogs(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})
}

func TestCreateBlog_UnknownOwner(t *testing.T) {
	forEachStore(t, func(t *testing.T, st Store) {
		b := model.Blog{Title: "t", URL: "u", UserID: model.NewID()}
		assert.ErrorIs(t, st.CreateBlog(context.Background(), &b), ErrNotFound)
	})
}

func TestUserBlogBackReferences(t *testing.T) {
	forEachStore(t, func(t *testing.T, st Store) {
		ctx := context.Background()
		owner := mustCreateUser(t, st, "owner")
		other := mustCreateUser(t, st, "other")

		var ids []string
		for _, title := range []string{"a", "b"} {
			b := model.Blog{Title: title, URL: title + ".net", UserID: owner.ID}
			require.NoError(t, st.CreateBlog(ctx, &b))
			require.NoError(t, st.AddUserBlog(ctx, owner.ID, b.ID))
			ids = append(ids, b.ID)
		}

		got, err := st.GetUser(ctx, owner.ID)
		require.NoError(t, err)
		assert.Equal(t, ids, got.Blogs)

		// Deleting a post leaves the back-reference behind.
		require.NoError(t, st.DeleteBlog(ctx, ids[0]))
		got, err = st.GetUser(ctx, owner.ID)
		require.NoError(t, err)
		assert.Equal(t, ids, got.Blogs)

		users, err := st.ListUsers(ctx)
		require.NoError(t, err)
		require.Len(t, users, 2)
		assert.Equal(t, ids, users[0].Blogs)
		assert.Equal(t, other.ID, users[1].ID)
		assert.Empty(t, users[1].Blogs)

		assert.ErrorIs(t, st.AddUserBlog(ctx, model.NewID(), ids[1]), ErrNotFound)
	})
}

func TestMemoryStore_NoAliasing(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()
	u := mustCreateUser(t, st, "alias")

	got, err := st.GetUser(ctx, u.ID)
	require.NoError(t, err)
	got.Blogs = append(got.Blogs, "mutated")

	again, err := st.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, again.Blogs)
}

func TestOpenSQLite_Reopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "blog.db")

	st, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	u := mustCreateUser(t, st, "persisted")
	require.NoError(t, st.Close())

	st, err = OpenSQLite(ctx, path)
	require.NoError(t, err)
	defer st.Close()

	got, err := st.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "persisted", got.Username)
}
