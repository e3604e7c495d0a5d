package auth

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/google/uuid"
)

const SessionCookie = "blogz_session"

// Manager keeps login sessions in the sessions table. The cookie carries only
// the session id.
type Manager struct {
	db     *sql.DB
	maxAge time.Duration
	secure bool
}

func NewManager(db *sql.DB, maxAge time.Duration, secure bool) *Manager {
	return &Manager{db: db, maxAge: maxAge, secure: secure}
}

// Create starts a new session for userID, dropping any earlier session of
// that user and any expired ones, and sets the cookie.
func (m *Manager) Create(ctx context.Context, w http.ResponseWriter, userID int64) error {
	now := time.Now().UTC()
	if _, err := m.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE user_id = ? OR expires_at < ?`, userID, now); err != nil {
		return err
	}

	id := uuid.New().String()
	expires := now.Add(m.maxAge)
	_, err := m.db.ExecContext(ctx, `INSERT INTO sessions(id,user_id,expires_at) VALUES(?,?,?)`, id, userID, expires)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
		Expires:  expires,
	})
	return nil
}

func (m *Manager) Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var err error
	c, _ := r.Cookie(SessionCookie)
	if c != nil && c.Value != "" {
		_, err = m.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, c.Value)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   m.secure,
		MaxAge:   -1,
	})
	return err
}

// CurrentUserID resolves the request's session cookie. Unknown, malformed
// and expired sessions all report false.
func (m *Manager) CurrentUserID(r *http.Request) (int64, bool) {
	c, err := r.Cookie(SessionCookie)
	if err != nil || c.Value == "" {
		return 0, false
	}
	if _, err := uuid.Parse(c.Value); err != nil {
		return 0, false
	}
	var uid int64
	var exp time.Time
	err = m.db.QueryRowContext(r.Context(),
		`SELECT user_id, expires_at FROM sessions WHERE id = ?`, c.Value).Scan(&uid, &exp)
	if err != nil || time.Now().After(exp) {
		return 0, false
	}
	return uid, true
}
