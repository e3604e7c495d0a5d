package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"blogz/internal/auth"
	"blogz/internal/db"
	"blogz/internal/models"
)

// Neither message names the field or check that failed.
const (
	msgUserExists     = "User already exists"
	msgBadCredentials = "Password incorrect, or user does not exist"
)

func (h *Handler) RegisterForm(c *gin.Context) {
	if currentUser(c) != nil {
		c.Redirect(http.StatusSeeOther, "/blog")
		return
	}
	h.renderRegister(c, http.StatusOK, registerForm{}, map[string]string{})
}

func (h *Handler) renderRegister(c *gin.Context, status int, f registerForm, errs map[string]string) {
	f.Password, f.Confirm = "", ""
	h.render(c, status, "register", gin.H{"Title": "Register", "Form": f, "Errors": errs})
}

func (h *Handler) Register(c *gin.Context) {
	var f registerForm
	if err := bindForm(c, &f); err != nil {
		h.renderRegister(c, http.StatusBadRequest, f, fieldErrors(err))
		return
	}
	ctx := c.Request.Context()

	exists, err := h.store.UserExists(ctx, f.Username, f.Email)
	if err != nil {
		h.serverError(c, err)
		return
	}
	if exists {
		h.userExists(c)
		return
	}

	hash, err := h.hasher.Hash(f.Password)
	if errors.Is(err, auth.ErrPasswordTooLong) {
		h.renderRegister(c, http.StatusBadRequest, f, map[string]string{"Password": "Password is too long."})
		return
	} else if err != nil {
		h.serverError(c, err)
		return
	}

	u := &models.User{Username: f.Username, Email: f.Email, PasswordHash: hash}
	if err := h.store.CreateUser(ctx, u); errors.Is(err, db.ErrDuplicate) {
		h.userExists(c)
		return
	} else if err != nil {
		h.serverError(c, err)
		return
	}
	h.metrics.Registrations.Inc()
	log.Printf("[auth] registered user %d (%s)", u.ID, u.Username)

	if err := h.sessions.Create(ctx, c.Writer, u.ID); err != nil {
		h.serverError(c, err)
		return
	}
	c.Redirect(http.StatusSeeOther, "/blog")
}

func (h *Handler) userExists(c *gin.Context) {
	auth.SetFlash(c.Writer, auth.FlashError, msgUserExists)
	c.Redirect(http.StatusSeeOther, "/register")
}

func (h *Handler) LoginForm(c *gin.Context) {
	if currentUser(c) != nil {
		c.Redirect(http.StatusSeeOther, "/")
		return
	}
	h.render(c, http.StatusOK, "login", gin.H{"Title": "Log In", "Form": loginForm{}, "Errors": map[string]string{}})
}

func (h *Handler) Login(c *gin.Context) {
	var f loginForm
	if err := bindForm(c, &f); err != nil {
		f.Password = ""
		h.render(c, http.StatusBadRequest, "login", gin.H{"Title": "Log In", "Form": f, "Errors": fieldErrors(err)})
		return
	}
	ctx := c.Request.Context()

	u, err := h.store.UserByEmail(ctx, f.Email)
	switch {
	case errors.Is(err, db.ErrNotFound):
		h.hasher.VerifyNothing(f.Password)
		h.loginFailed(c)
		return
	case err != nil:
		h.serverError(c, err)
		return
	case !h.hasher.Verify(f.Password, u.PasswordHash):
		h.loginFailed(c)
		return
	}

	if err := h.sessions.Create(ctx, c.Writer, u.ID); err != nil {
		h.serverError(c, err)
		return
	}
	h.metrics.Logins.WithLabelValues("success").Inc()
	auth.SetFlash(c.Writer, auth.FlashSuccess, "Logged in")
	c.Redirect(http.StatusSeeOther, "/")
}

func (h *Handler) loginFailed(c *gin.Context) {
	h.metrics.Logins.WithLabelValues("failure").Inc()
	auth.SetFlash(c.Writer, auth.FlashError, msgBadCredentials)
	c.Redirect(http.StatusSeeOther, "/login")
}

func (h *Handler) Logout(c *gin.Context) {
	if err := h.sessions.Destroy(c.Request.Context(), c.Writer, c.Request); err != nil {
		log.Printf("[auth] logout: %v", err)
	}
	auth.SetFlash(c.Writer, auth.FlashSuccess, "Logged out")
	c.Redirect(http.StatusFound, "/login")
}
