package app

import (
	"context"
	"time"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ywdonga/DiduServer/internal/auth/credentials"
	"github.com/ywdonga/DiduServer/internal/auth/handler"
	"github.com/ywdonga/DiduServer/internal/auth/provision"
	"github.com/ywdonga/DiduServer/internal/auth/store"
	"github.com/ywdonga/DiduServer/internal/auth/token"
	"github.com/ywdonga/DiduServer/internal/auth/verifier"
	"github.com/ywdonga/DiduServer/internal/config"
	"github.com/ywdonga/DiduServer/internal/middleware"
	"github.com/ywdonga/DiduServer/internal/session"
)

func setupHTTP(ctx context.Context, cfg config.Config) (*gin.Engine, func() error, error) {

	infra, err := setupInfra(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	// ----------------------------
	// Dependencies
	// ----------------------------

	sessionStore := session.NewRedisStore(infra.Redis.Client)
	pg := store.NewPostgres(infra.DB)

	idVerifier := verifier.New(ctx,
		verifier.VendorConfig{
			Issuer:   cfg.AppleIssuer,
			Audience: cfg.AppleClientID,
			JWKSURL:  cfg.AppleJWKSURL,
		},
		verifier.VendorConfig{
			Issuer:   cfg.GoogleIssuer,
			Audience: cfg.GoogleClientID,
			JWKSURL:  cfg.GoogleJWKSURL,
		},
	)

	tokenService := token.NewService(pg, nil)
	provisionService := provision.NewService(pg, tokenService, nil)
	credentialService := credentials.NewService(pg, tokenService)

	authHandler := handler.NewHandler(
		idVerifier,
		provisionService,
		tokenService,
		credentialService,
		sessionStore,
		cfg.SessionTTL,
	)

	// ----------------------------
	// Router
	// ----------------------------

	router := gin.New()
	router.Use(
		gin.Recovery(),
		ginzap.Ginzap(zap.L(), time.RFC3339, true),
	)

	// ----------------------------
	// Public Routes
	// ----------------------------

	authHandler.RegisterRoutes(router)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ----------------------------
	// Protected API Routes
	// ----------------------------

	api := router.Group("/api")
	api.Use(middleware.RequireAuth(pg))

	api.GET("/me", func(c *gin.Context) {
		userID, _ := middleware.UserIDFromContext(c.Request.Context())
		c.JSON(200, gin.H{
			"user_id": userID,
		})
	})

	// ----------------------------
	// Cleanup
	// ----------------------------

	return router, func() error {
		return infra.DB.Close()
	}, nil
}
