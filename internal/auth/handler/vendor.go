package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ywdonga/DiduServer/internal/auth"
	"github.com/ywdonga/DiduServer/internal/auth/provision"
	"github.com/ywdonga/DiduServer/internal/auth/store"
	"github.com/ywdonga/DiduServer/internal/auth/token"
	"github.com/ywdonga/DiduServer/internal/auth/verifier"
)

type identityTokenRequest struct {
	IdentityToken string `json:"identity_token"`
}

// vendorRegister is the third-party registration flow: verify the
// identity token against the vendor's keys, then provision a user and
// bearer token. The full request body travels to the registration hook
// as the application-defined payload.
func (h *Handler) vendorRegister(c *gin.Context) {
	vendor, err := auth.ParseVendor(c.Param("vendor"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown identity vendor"})
		return
	}

	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	var req identityTokenRequest
	if err := json.Unmarshal(body, &req); err != nil || req.IdentityToken == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "identity_token required"})
		return
	}

	ident, err := h.verifier.Verify(
		c.Request.Context(),
		vendor,
		req.IdentityToken,
		h.sessionNonce(c),
	)
	if err != nil {
		zap.L().Debug("identity token rejected",
			zap.String("vendor", string(vendor)),
			zap.Error(err),
		)
		c.JSON(http.StatusBadRequest, gin.H{"error": verifyMessage(err)})
		return
	}

	value, err := h.provisioner.CreateUserAndToken(
		c.Request.Context(),
		ident.Email,
		vendor,
		ident.Subject,
		body,
	)
	if err != nil {
		switch {
		case errors.Is(err, provision.ErrMissingEmail):
			c.JSON(http.StatusBadRequest, gin.H{"error": "email required"})
		case errors.Is(err, provision.ErrAlreadyRegistered):
			c.JSON(http.StatusBadRequest, gin.H{"error": "already registered"})
		default:
			// Registration hook rejections propagate verbatim.
			zap.L().Error("provisioning failed",
				zap.String("vendor", string(vendor)),
				zap.Error(err),
			)
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"token": value})
}

// vendorLogin is the lookup path for an already registered vendor
// subject: verify the identity token, then return the user's current
// bearer token.
func (h *Handler) vendorLogin(c *gin.Context) {
	vendor, err := auth.ParseVendor(c.Param("vendor"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown identity vendor"})
		return
	}

	var req identityTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.IdentityToken == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "identity_token required"})
		return
	}

	ident, err := h.verifier.Verify(
		c.Request.Context(),
		vendor,
		req.IdentityToken,
		h.sessionNonce(c),
	)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": verifyMessage(err)})
		return
	}

	value, err := h.tokens.APITokenForUser(
		c.Request.Context(),
		store.SubjectFilter(vendor, ident.Subject),
	)
	if err != nil {
		if errors.Is(err, token.ErrUnauthorized) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token lookup failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": value})
}

// verifyMessage keeps response bodies to the sentinel text, without any
// wrapped detail.
func verifyMessage(err error) string {
	for _, sentinel := range []error{
		verifier.ErrInvalidSignature,
		verifier.ErrTokenExpired,
		verifier.ErrInvalidIssuer,
		verifier.ErrInvalidAudience,
		verifier.ErrInvalidNonce,
	} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return "invalid identity token"
}
