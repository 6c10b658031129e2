package postlogin

import (
	"errors"
	"log"
	"net/http"

	"postlogin/internal/pkg/response"
	"postlogin/internal/pkg/token"

	"github.com/gin-gonic/gin"
)

// Handler manages all HTTP interactions for post-login sessions
type Handler struct {
	service *Service
}

// NewHandler creates a new postlogin handler with injected service
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(v1 *gin.RouterGroup) {
	group := v1.Group("/postlogin")
	{
		group.POST("/init-session", h.InitSession)
		group.POST("/renew-token", h.RenewToken)
		group.GET("/health", h.Health)
	}
}

func (h *Handler) InitSession(c *gin.Context) {
	var req InitSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body", err.Error())
		return
	}

	pair, err := h.service.InitSession(c.Request.Context(), req.Data, requestID(c))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, pair)
}

func (h *Handler) RenewToken(c *gin.Context) {
	var req RenewTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body", err.Error())
		return
	}

	pair, err := h.service.RenewToken(c.Request.Context(), req.Data.RefreshToken, requestID(c))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, pair)
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "postlogin",
	})
}

// writeError maps lifecycle failures to stable error codes. The caller's
// retry behavior depends on these staying distinct: only
// VERIFIER_UNAVAILABLE is retryable, everything else needs re-initiation.
func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrValidation), errors.Is(err, ErrInvalidIdentity):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request data")
	case errors.Is(err, ErrUnknownChannel):
		response.Error(c, http.StatusNotFound, "UNKNOWN_CHANNEL", "Cannot resolve business unit for channel")
	case errors.Is(err, token.ErrInvalidToken):
		response.Error(c, http.StatusBadRequest, "INVALID_TOKEN", "Invalid refresh token")
	case errors.Is(err, token.ErrTokenExpired):
		response.Error(c, http.StatusUnauthorized, "TOKEN_EXPIRED", "Refresh token expired")
	case errors.Is(err, ErrSessionNotFound):
		response.Error(c, http.StatusNotFound, "SESSION_NOT_FOUND", "Session not found")
	case errors.Is(err, ErrStaleToken):
		response.Error(c, http.StatusUnauthorized, "STALE_TOKEN", "Refresh token already used")
	case errors.Is(err, ErrExternalSessionExpired):
		response.Error(c, http.StatusUnauthorized, "EXTERNAL_SESSION_EXPIRED", "External session expired")
	case errors.Is(err, ErrVerificationUnavailable):
		response.Error(c, http.StatusServiceUnavailable, "VERIFIER_UNAVAILABLE", "Session verification temporarily unavailable")
	default:
		log.Printf("postlogin_error request_id=%s error=%q", requestID(c), err.Error())
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal Server Error")
	}
}

func requestID(c *gin.Context) string {
	id := c.GetHeader("x-request-id")
	if id == "" {
		id = c.GetHeader("X-Request-ID")
	}
	return id
}
