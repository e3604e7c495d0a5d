package db

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blogz/internal/models"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dbc, err := Open(DriverSQLite, filepath.Join(t.TempDir(), "blogz.db"))
	require.NoError(t, err)
	t.Cleanup(func() { dbc.Close() })
	require.NoError(t, Migrate(context.Background(), dbc, DriverSQLite))
	return dbc
}

func mustUser(t *testing.T, s *Store, username, email string) *models.User {
	t.Helper()
	u := &models.User{Username: username, Email: email, PasswordHash: "x"}
	require.NoError(t, s.CreateUser(context.Background(), u))
	return u
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open("postgres", "whatever")
	assert.Error(t, err)
}

func TestMySQLDSNForcesParseTime(t *testing.T) {
	for _, in := range []string{
		"blogz:secret@tcp(localhost:3306)/blogz",
		"blogz:secret@tcp(localhost:3306)/blogz?parseTime=false&loc=Local",
	} {
		out, err := mysqlDSN(in)
		require.NoError(t, err, in)
		cfg, err := mysql.ParseDSN(out)
		require.NoError(t, err, out)
		assert.True(t, cfg.ParseTime, out)
		assert.Equal(t, time.UTC, cfg.Loc, out)
		assert.Equal(t, "blogz", cfg.User)
		assert.Equal(t, "secret", cfg.Passwd)
		assert.Equal(t, "localhost:3306", cfg.Addr)
		assert.Equal(t, "blogz", cfg.DBName)
	}

	_, err := mysqlDSN("not a dsn")
	assert.Error(t, err)
}

func TestMigrateIsIdempotent(t *testing.T) {
	dbc := openTestDB(t)
	assert.NoError(t, Migrate(context.Background(), dbc, DriverSQLite))
}

func TestCreateUserDuplicate(t *testing.T) {
	ctx := context.Background()
	s := NewStore(openTestDB(t))
	u := mustUser(t, s, "alice_b", "alice@x.com")
	assert.NotZero(t, u.ID)

	err := s.CreateUser(ctx, &models.User{Username: "alice_b", Email: "other@x.com", PasswordHash: "x"})
	assert.True(t, errors.Is(err, ErrDuplicate), "got %v", err)

	err = s.CreateUser(ctx, &models.User{Username: "someone", Email: "alice@x.com", PasswordHash: "x"})
	assert.True(t, errors.Is(err, ErrDuplicate), "got %v", err)

	users, err := s.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestUserIdentityIgnoresCase(t *testing.T) {
	ctx := context.Background()
	s := NewStore(openTestDB(t))
	u := mustUser(t, s, "alice_b", "alice@x.com")

	err := s.CreateUser(ctx, &models.User{Username: "ALICE_B", Email: "new@x.com", PasswordHash: "x"})
	assert.ErrorIs(t, err, ErrDuplicate)
	err = s.CreateUser(ctx, &models.User{Username: "newuser", Email: "ALICE@X.com", PasswordHash: "x"})
	assert.ErrorIs(t, err, ErrDuplicate)

	exists, err := s.UserExists(ctx, "Alice_B", "other@x.com")
	require.NoError(t, err)
	assert.True(t, exists)

	got, err := s.UserByEmail(ctx, "Alice@X.COM")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
}

func TestUserExists(t *testing.T) {
	ctx := context.Background()
	s := NewStore(openTestDB(t))
	mustUser(t, s, "alice_b", "alice@x.com")

	for _, tc := range []struct {
		username, email string
		want            bool
	}{
		{"alice_b", "new@x.com", true},
		{"newuser", "alice@x.com", true},
		{"newuser", "new@x.com", false},
	} {
		got, err := s.UserExists(ctx, tc.username, tc.email)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, "%s/%s", tc.username, tc.email)
	}
}

func TestUserLookups(t *testing.T) {
	ctx := context.Background()
	s := NewStore(openTestDB(t))
	u := mustUser(t, s, "alice_b", "alice@x.com")

	got, err := s.UserByEmail(ctx, "alice@x.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, "alice_b", got.Username)
	assert.False(t, got.CreatedAt.IsZero())

	got, err = s.UserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice@x.com", got.Email)

	_, err = s.UserByEmail(ctx, "nobody@x.com")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.UserByID(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBlogsOwnershipAndOrder(t *testing.T) {
	ctx := context.Background()
	s := NewStore(openTestDB(t))
	alice := mustUser(t, s, "alice_b", "alice@x.com")
	bob := mustUser(t, s, "bobby_b", "bob@x.com")

	var ids []int64
	for _, p := range []struct {
		owner *models.User
		name  string
	}{
		{alice, "a1"}, {bob, "b1"}, {alice, "a2"}, {bob, "b2"}, {alice, "a3"},
	} {
		b := &models.Blog{OwnerID: p.owner.ID, Name: p.name, Body: "body of " + p.name}
		require.NoError(t, s.CreateBlog(ctx, b))
		ids = append(ids, b.ID)
	}

	all, err := s.ListBlogs(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 5)
	assert.Equal(t, []string{"a3", "b2", "a2", "b1", "a1"}, names(all))

	mine, err := s.ListBlogs(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"a3", "a2", "a1"}, names(mine))
	for _, b := range mine {
		assert.Equal(t, alice.ID, b.OwnerID)
		assert.Equal(t, "alice_b", b.Owner)
	}

	b, err := s.BlogByID(ctx, ids[1])
	require.NoError(t, err)
	assert.Equal(t, "b1", b.Name)
	assert.Equal(t, "bobby_b", b.Owner)
	assert.Equal(t, bob.ID, b.OwnerID)

	_, err = s.BlogByID(ctx, 12345)
	assert.ErrorIs(t, err, ErrNotFound)

	users, err := s.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "alice_b", users[0].Username)
	assert.Equal(t, 3, users[0].Posts)
	assert.Equal(t, 2, users[1].Posts)
}

func TestCreateBlogRequiresOwner(t *testing.T) {
	s := NewStore(openTestDB(t))
	err := s.CreateBlog(context.Background(), &models.Blog{OwnerID: 42, Name: "n", Body: "b"})
	assert.Error(t, err)
}

func TestListBlogsEmpty(t *testing.T) {
	s := NewStore(openTestDB(t))
	blogs, err := s.ListBlogs(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, blogs)
}

func names(blogs []models.Blog) []string {
	out := make([]string, len(blogs))
	for i, b := range blogs {
		out[i] = b.Name
	}
	return out
}
