package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bindPosted(t *testing.T, form url.Values, obj any) error {
	t.Helper()
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
	c.Request.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return bindForm(c, obj)
}

func TestBindFormNormalizes(t *testing.T) {
	var f blogForm
	// "e" followed by a combining acute accent composes to a single rune.
	err := bindPosted(t, url.Values{"blog-name": {"  Cafe\u0301  "}, "blog-body": {"body"}}, &f)
	require.NoError(t, err)
	assert.Equal(t, "Caf\u00e9", f.Name)
}

func TestBindFormKeepsPasswordsVerbatim(t *testing.T) {
	var f loginForm
	err := bindPosted(t, url.Values{"email": {"alice@x.com"}, "password": {"  spaced  "}}, &f)
	require.NoError(t, err)
	assert.Equal(t, "  spaced  ", f.Password)
}

func TestBindFormLowercasesEmail(t *testing.T) {
	var f registerForm
	err := bindPosted(t, url.Values{"username": {"Alice1"}, "email": {" Alice@X.com "}, "password": {"Password123"}, "confirm": {"Password123"}}, &f)
	require.NoError(t, err)
	assert.Equal(t, "alice@x.com", f.Email)
	assert.Equal(t, "Alice1", f.Username)
	assert.Equal(t, "Password123", f.Password)
}

func TestFieldErrors(t *testing.T) {
	var f registerForm
	err := bindPosted(t, url.Values{"username": {"alice1"}, "email": {""}, "password": {"password123"}, "confirm": {"nope"}}, &f)
	require.Error(t, err)
	errs := fieldErrors(err)
	assert.Equal(t, msgRequired, errs["Email"])
	assert.Equal(t, "Passwords must match", errs["Confirm"])
	assert.NotContains(t, errs, "Username")

	assert.Equal(t, map[string]string{"Form": "Invalid form submission."}, fieldErrors(errors.New("boom")))
}
