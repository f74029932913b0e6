package session_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ywdonga/DiduServer/internal/session"
)

func TestGenerateID_Unique(t *testing.T) {
	a, err := session.GenerateID()
	require.NoError(t, err)

	b, err := session.GenerateID()
	require.NoError(t, err)

	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
}

func TestSetCookie_HostPrefixDefaults(t *testing.T) {
	w := httptest.NewRecorder()

	session.SetCookie(w, "sid", time.Now().Add(time.Hour), session.CookieOptions{
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)

	c := cookies[0]
	assert.Equal(t, session.CookieName, c.Name)
	assert.Equal(t, "sid", c.Value)
	assert.Equal(t, "/", c.Path, "__Host- cookies require path /")
	assert.True(t, c.HttpOnly)
	assert.True(t, c.Secure)
}

func TestClearCookie(t *testing.T) {
	w := httptest.NewRecorder()

	session.ClearCookie(w, session.CookieOptions{Secure: true})

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, -1, cookies[0].MaxAge)
	assert.Empty(t, cookies[0].Value)
}
