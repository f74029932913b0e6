package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ywdonga/DiduServer/internal/session"
	"github.com/ywdonga/DiduServer/internal/utils"
)

// Nonce mints a fresh nonce, stashes it in the caller's session and
// returns it. The client embeds the nonce in the vendor sign-in request
// so the identity token echoes it back, binding the token to this
// session.
func (h *Handler) Nonce(c *gin.Context) {
	nonce := utils.RandomString(32)
	expiresAt := time.Now().Add(h.sessionTTL)

	// Reuse the existing session when the cookie still resolves.
	if cookie, err := c.Request.Cookie(session.CookieName); err == nil && cookie.Value != "" {
		if sess, err := h.sessions.Get(c.Request.Context(), cookie.Value); err == nil && sess != nil {
			sess.Nonce = nonce
			sess.ExpiresAt = expiresAt

			if err := h.sessions.Update(c.Request.Context(), *sess); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "session error"})
				return
			}

			session.SetCookie(c.Writer, sess.SessionID, expiresAt, session.CookieOptions{
				Secure:   true,
				SameSite: http.SameSiteLaxMode,
			})

			c.JSON(http.StatusOK, gin.H{"nonce": nonce})
			return
		}
	}

	sessionID, err := session.GenerateID()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session error"})
		return
	}

	if err := h.sessions.Create(c.Request.Context(), session.Session{
		SessionID: sessionID,
		Nonce:     nonce,
		ExpiresAt: expiresAt,
	}); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session error"})
		return
	}

	session.SetCookie(c.Writer, sessionID, expiresAt, session.CookieOptions{
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})

	c.JSON(http.StatusOK, gin.H{"nonce": nonce})
}

// sessionNonce returns the nonce stashed in the caller's session, or
// "" when no usable session exists. The verifier treats "" as a
// failure, so absence needs no extra handling here.
func (h *Handler) sessionNonce(c *gin.Context) string {
	cookie, err := c.Request.Cookie(session.CookieName)
	if err != nil || cookie.Value == "" {
		return ""
	}

	sess, err := h.sessions.Get(c.Request.Context(), cookie.Value)
	if err != nil || sess == nil {
		return ""
	}

	if time.Now().After(sess.ExpiresAt) {
		_ = h.sessions.Delete(c.Request.Context(), sess.SessionID)
		return ""
	}

	return sess.Nonce
}
