// Package v1 exposes the authentication HTTP API.
package v1

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/agentgate/auth-service/config"
	"github.com/agentgate/auth-service/internal/core/domain"
	"github.com/agentgate/auth-service/internal/logger"
	logicv1 "github.com/agentgate/auth-service/internal/logic/v1"
	"github.com/agentgate/auth-service/middleware"
)

// AccessTokenCookie is the cookie carrying the token in cookie delivery mode.
const AccessTokenCookie = "access_token"

const bearerPrefix = "Bearer "

// Handler groups HTTP handlers for the auth API v1.
// Dependencies are injected via the constructor — no global state.
type Handler struct {
	auth *logicv1.AuthService
	cfg  config.AuthConfig
}

// NewHandler creates a new Handler with the given AuthService and auth
// configuration (token delivery mode, cookie attributes).
func NewHandler(auth *logicv1.AuthService, cfg config.AuthConfig) *Handler {
	return &Handler{auth: auth, cfg: cfg}
}

// RegisterRoutes registers all auth API v1 routes on the given router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/auth/register", h.Register)
	rg.POST("/auth/login", h.Login)
	rg.POST("/auth/logout", h.Logout)
	rg.GET("/auth/me", h.GetMe)
}

// Register handles HTTP request for account registration.
func (h *Handler) Register(c *gin.Context) {
	ctx, span := middleware.StartSpan(c.Request.Context(), "http.request", trace.WithAttributes(
		attribute.String("layer", "web"),
		attribute.String("method", c.Request.Method),
		attribute.String("path", c.Request.URL.Path),
	))
	defer span.End()

	log := logger.FromContext(ctx)

	var req domain.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.SetAttributes(attribute.Bool("request.valid", false))
		span.RecordError(err)
		log.Error().Err(err).Msg("Invalid request")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	span.SetAttributes(attribute.Bool("request.valid", true))

	account, err := h.auth.Register(ctx, req)
	if err != nil {
		span.RecordError(err)
		log.Error().Err(err).Str("account_code", req.AccountCode).Msg("Registration failed")

		switch {
		case errors.Is(err, logicv1.ErrAccountExists):
			c.JSON(http.StatusConflict, gin.H{"error": "Account already registered"})
		case errors.Is(err, logicv1.ErrEmptyPassword):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Password cannot be empty"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}

	log.Info().Str("account_code", account.AccountCode).Msg("Registration successful")
	c.JSON(http.StatusCreated, account)
}

// Login handles HTTP request for credential verification and token issuance.
// Delivery depends on configuration: bearer mode returns the token in the
// response body, cookie mode sets an HttpOnly SameSite=Lax cookie.
func (h *Handler) Login(c *gin.Context) {
	ctx, span := middleware.StartSpan(c.Request.Context(), "http.request", trace.WithAttributes(
		attribute.String("layer", "web"),
		attribute.String("method", c.Request.Method),
		attribute.String("path", c.Request.URL.Path),
	))
	defer span.End()

	log := logger.FromContext(ctx)

	var req domain.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.SetAttributes(attribute.Bool("request.valid", false))
		span.RecordError(err)
		log.Error().Err(err).Msg("Invalid request")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	span.SetAttributes(attribute.Bool("request.valid", true))

	session, err := h.auth.Login(ctx, req)
	if err != nil {
		span.RecordError(err)
		middleware.RecordLogin("failure")
		log.Error().Err(err).Msg("Login failed")

		switch {
		case errors.Is(err, logicv1.ErrInvalidCredentials):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}

	middleware.RecordLogin("success")
	log.Info().Str("account_code", session.Account.AccountCode).Msg("Login successful")

	if h.cfg.TokenDelivery == config.DeliveryCookie {
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(AccessTokenCookie, session.AccessToken,
			int(h.cfg.TokenTTL.Seconds()), "/", h.cfg.CookieDomain, h.cfg.CookieSecure, true)
		c.JSON(http.StatusOK, session.Account)
		return
	}

	c.JSON(http.StatusOK, domain.TokenResponse{
		AccessToken: session.AccessToken,
		TokenType:   "bearer",
		ExpiresAt:   session.ExpiresAt,
	})
}

// Logout clears the access token cookie. Tokens are self-contained and not
// revoked server-side; they stay valid until natural expiry.
func (h *Handler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(AccessTokenCookie, "", -1, "/", h.cfg.CookieDomain, h.cfg.CookieSecure, true)
	c.Status(http.StatusNoContent)
}

// GetMe returns the account behind the presented token.
// The token is read from the Authorization header (Bearer) first, then
// from the access token cookie.
func (h *Handler) GetMe(c *gin.Context) {
	ctx, span := middleware.StartSpan(c.Request.Context(), "http.request", trace.WithAttributes(
		attribute.String("layer", "web"),
		attribute.String("method", c.Request.Method),
		attribute.String("path", c.Request.URL.Path),
	))
	defer span.End()

	log := logger.FromContext(ctx)

	token, ok := tokenFromRequest(c)
	if !ok {
		span.SetAttributes(attribute.Bool("auth.present", false))
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	span.SetAttributes(attribute.Bool("auth.present", true))

	account, err := h.auth.ResolveCurrentUser(ctx, token)
	if err != nil {
		span.RecordError(err)
		log.Warn().Err(err).Msg("Token validation failed")

		switch {
		case errors.Is(err, logicv1.ErrUnauthenticated):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}

	log.Info().Str("account_code", account.AccountCode).Msg("Token validated")
	c.JSON(http.StatusOK, account)
}

func tokenFromRequest(c *gin.Context) (string, bool) {
	if auth := c.GetHeader("Authorization"); strings.HasPrefix(auth, bearerPrefix) {
		token := auth[len(bearerPrefix):]
		if token != "" {
			return token, true
		}
	}

	if cookie, err := c.Cookie(AccessTokenCookie); err == nil && cookie != "" {
		return cookie, true
	}

	return "", false
}
