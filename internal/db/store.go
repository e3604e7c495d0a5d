package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"blogz/internal/models"
)

// Store holds every query the site runs against users and blogs.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// ---- users

// CreateUser inserts u and sets its ID. A username or email collision
// returns ErrDuplicate.
func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO users(username,email,password_hash,created_at) VALUES(?,?,?,?)`,
		u.Username, u.Email, u.PasswordHash, u.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("insert user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	u.ID = id
	return nil
}

// UserExists reports whether either the username or the email is taken.
func (s *Store) UserExists(ctx context.Context, username, email string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE username = ? OR email = ?`, username, email).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check user: %w", err)
	}
	return n > 0, nil
}

func (s *Store) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.userWhere(ctx, `email = ?`, email)
}

func (s *Store) UserByID(ctx context.Context, id int64) (*models.User, error) {
	return s.userWhere(ctx, `id = ?`, id)
}

func (s *Store) userWhere(ctx context.Context, cond string, arg any) (*models.User, error) {
	var u models.User
	err := s.db.QueryRowContext(ctx,
		`SELECT id, username, email, password_hash, created_at FROM users WHERE `+cond, arg).
		Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

// ListUsers returns every user with a count of their posts, by username.
func (s *Store) ListUsers(ctx context.Context) ([]models.UserSummary, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT u.id, u.username,
		(SELECT COUNT(*) FROM blogs b WHERE b.owner_id = u.id)
		FROM users u ORDER BY u.username`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []models.UserSummary
	for rows.Next() {
		var u models.UserSummary
		if err := rows.Scan(&u.ID, &u.Username, &u.Posts); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// ---- blogs

// CreateBlog inserts b and sets its ID. The owner must already exist.
func (s *Store) CreateBlog(ctx context.Context, b *models.Blog) error {
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now().UTC()
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO blogs(owner_id,name,body,created_at) VALUES(?,?,?,?)`,
		b.OwnerID, b.Name, b.Body, b.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert blog: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert blog: %w", err)
	}
	b.ID = id
	return nil
}

const blogSelect = `SELECT b.id, b.owner_id, b.name, b.body, b.created_at, u.username
	FROM blogs b JOIN users u ON u.id = b.owner_id`

func (s *Store) BlogByID(ctx context.Context, id int64) (*models.Blog, error) {
	var b models.Blog
	err := s.db.QueryRowContext(ctx, blogSelect+` WHERE b.id = ?`, id).
		Scan(&b.ID, &b.OwnerID, &b.Name, &b.Body, &b.CreatedAt, &b.Owner)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, fmt.Errorf("get blog: %w", err)
	}
	return &b, nil
}

// ListBlogs returns posts newest first. ownerID 0 lists every post.
func (s *Store) ListBlogs(ctx context.Context, ownerID int64) ([]models.Blog, error) {
	q := blogSelect
	var args []any
	if ownerID != 0 {
		q += ` WHERE b.owner_id = ?`
		args = append(args, ownerID)
	}
	q += ` ORDER BY b.id DESC`

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list blogs: %w", err)
	}
	defer rows.Close()

	var blogs []models.Blog
	for rows.Next() {
		var b models.Blog
		if err := rows.Scan(&b.ID, &b.OwnerID, &b.Name, &b.Body, &b.CreatedAt, &b.Owner); err != nil {
			return nil, fmt.Errorf("scan blog: %w", err)
		}
		blogs = append(blogs, b)
	}
	return blogs, rows.Err()
}
