package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ywdonga/DiduServer/internal/auth/credentials"
	"github.com/ywdonga/DiduServer/internal/auth/provision"
	"github.com/ywdonga/DiduServer/internal/auth/token"
	"github.com/ywdonga/DiduServer/internal/auth/verifier"
	"github.com/ywdonga/DiduServer/internal/session"
)

type Handler struct {
	verifier    *verifier.Verifier
	provisioner *provision.Service
	tokens      *token.Service
	credentials *credentials.Service
	sessions    session.Store
	sessionTTL  time.Duration
}

func NewHandler(
	verifier *verifier.Verifier,
	provisioner *provision.Service,
	tokens *token.Service,
	credentials *credentials.Service,
	sessions session.Store,
	sessionTTL time.Duration,
) *Handler {
	return &Handler{
		verifier:    verifier,
		provisioner: provisioner,
		tokens:      tokens,
		credentials: credentials,
		sessions:    sessions,
		sessionTTL:  sessionTTL,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.POST("/auth/nonce", h.Nonce)

	r.POST("/oauth/:vendor/register", h.vendorRegister)
	r.POST("/oauth/:vendor/login", h.vendorLogin)

	r.POST("/auth/register", h.Register)
	r.POST("/auth/login", h.Login)
}
