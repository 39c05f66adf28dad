// internal/store/sqlite.go
//
// SQLite implementation of Store.
// Responsibilities:
//   - Opening the database file with safe defaults (WAL, busy timeout, foreign keys).
//   - Applying embedded goose migrations from ./migrations.
//   - Mapping constraint violations onto the package's sentinel errors.

package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/bloglist/internal/model"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

type sqliteStore struct {
	db *sql.DB
}

// OpenSQLite opens (and creates if missing) the SQLite database at path and
// brings its schema up to date.
func OpenSQLite(ctx context.Context, path string) (Store, error) {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, err
	}
	// One writer at a time; avoids SQLITE_BUSY between pooled connections.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", path, err)
	}
	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &sqliteStore{db: db}, nil
}

// migrate applies pending migrations and logs each one.
func migrate(ctx context.Context, db *sql.DB) error {
	fsys, err := fs.Sub(embedMigrations, "migrations")
	if err != nil {
		return fmt.Errorf("migrations fs: %w", err)
	}
	provider, err := goose.NewProvider(goose.DialectSQLite3, db, fsys)
	if err != nil {
		return fmt.Errorf("goose provider: %w", err)
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	for _, r := range results {
		log.Info().Str("migration", r.Source.Path).Dur("took", r.Duration).Msg("applied")
	}
	return nil
}

func (s *sqliteStore) Close() error { return s.db.Close() }

func (s *sqliteStore) CreateUser(ctx context.Context, u *model.User) error {
	if u.ID == "" {
		u.ID = model.NewID()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, username, name, password_hash) VALUES (?,?,?,?)`,
		u.ID, u.Username, u.Name, u.PasswordHash)
	if isConstraint(err, sqlite3.ErrConstraintUnique) {
		return ErrDuplicateUsername
	}
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	if u.Blogs == nil {
		u.Blogs = []string{}
	}
	return nil
}

func (s *sqliteStore) GetUser(ctx context.Context, id string) (model.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, username, name, password_hash FROM users WHERE id=?`, id)
	return s.scanUserWithBlogs(ctx, row)
}

func (s *sqliteStore) GetUserByUsername(ctx context.Context, username string) (model.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, username, name, password_hash FROM users WHERE username=?`, username)
	return s.scanUserWithBlogs(ctx, row)
}

func (s *sqliteStore) scanUserWithBlogs(ctx context.Context, row *sql.Row) (model.User, error) {
	var u model.User
	if err := row.Scan(&u.ID, &u.Username, &u.Name, &u.PasswordHash); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, ErrNotFound
		}
		return model.User{}, fmt.Errorf("scan user: %w", err)
	}
	refs, err := s.blogRefs(ctx, `WHERE user_id=?`, u.ID)
	if err != nil {
		return model.User{}, err
	}
	u.Blogs = refs[u.ID]
	if u.Blogs == nil {
		u.Blogs = []string{}
	}
	return u, nil
}

func (s *sqliteStore) ListUsers(ctx context.Context) ([]model.User, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, username, name, password_hash FROM users ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	out := []model.User{}
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Username, &u.Name, &u.PasswordHash); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	refs, err := s.blogRefs(ctx, "")
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Blogs = refs[out[i].ID]
		if out[i].Blogs == nil {
			out[i].Blogs = []string{}
		}
	}
	return out, nil
}

// blogRefs loads back-references grouped by user id, in append order.
func (s *sqliteStore) blogRefs(ctx context.Context, where string, args ...any) (map[string][]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id, blog_id FROM user_blogs `+where+` ORDER BY seq`, args...)
	if err != nil {
		return nil, fmt.Errorf("list user blogs: %w", err)
	}
	defer rows.Close()

	refs := make(map[string][]string)
	for rows.Next() {
		var userID, blogID string
		if err := rows.Scan(&userID, &blogID); err != nil {
			return nil, fmt.Errorf("scan user blog: %w", err)
		}
		refs[userID] = append(refs[userID], blogID)
	}
	return refs, rows.Err()
}

func (s *sqliteStore) AddUserBlog(ctx context.Context, userID, blogID string) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO user_blogs (user_id, blog_id) SELECT id, ? FROM users WHERE id=?`,
		blogID, userID)
	if err != nil {
		return fmt.Errorf("insert user blog: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *sqliteStore) CreateBlog(ctx context.Context, b *model.Blog) error {
	if b.ID == "" {
		b.ID = model.NewID()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO blogs (id, title, author, url, likes, user_id) VALUES (?,?,?,?,?,?)`,
		b.ID, b.Title, b.Author, b.URL, b.Likes, b.UserID)
	if isConstraint(err, sqlite3.ErrConstraintForeignKey) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("insert blog: %w", err)
	}
	return nil
}

func (s *sqliteStore) GetBlog(ctx context.Context, id string) (model.Blog, error) {
	var b model.Blog
	err := s.db.QueryRowContext(ctx,
		`SELECT id, title, author, url, likes, user_id FROM blogs WHERE id=?`, id).
		Scan(&b.ID, &b.Title, &b.Author, &b.URL, &b.Likes, &b.UserID)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Blog{}, ErrNotFound
	}
	if err != nil {
		return model.Blog{}, fmt.Errorf("get blog: %w", err)
	}
	return b, nil
}

func (s *sqliteStore) ListBlogs(ctx context.Context) ([]model.Blog, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, author, url, likes, user_id FROM blogs ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("list blogs: %w", err)
	}
	defer rows.Close()

	out := []model.Blog{}
	for rows.Next() {
		var b model.Blog
		if err := rows.Scan(&b.ID, &b.Title, &b.Author, &b.URL, &b.Likes, &b.UserID); err != nil {
			return nil, fmt.Errorf("scan blog: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (s *sqliteStore) UpdateBlog(ctx context.Context, b model.Blog) (model.Blog, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE blogs SET title=?, author=?, url=?, likes=? WHERE id=?`,
		b.Title, b.Author, b.URL, b.Likes, b.ID)
	if err != nil {
		return model.Blog{}, fmt.Errorf("update blog: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return model.Blog{}, ErrNotFound
	}
	return s.GetBlog(ctx, b.ID)
}

func (s *sqliteStore) DeleteBlog(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM blogs WHERE id=?`, id)
	if err != nil {
		return fmt.Errorf("delete blog: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func isConstraint(err error, code sqlite3.ErrNoExtended) bool {
	var se sqlite3.Error
	return errors.As(err, &se) && se.ExtendedCode == code
}
