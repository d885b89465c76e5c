package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/arnavshah/trip-roster-api/pkg/auth"
	"github.com/arnavshah/trip-roster-api/pkg/metrics"
	"github.com/arnavshah/trip-roster-api/pkg/models"
	"github.com/arnavshah/trip-roster-api/pkg/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Version is reported by the root route
const Version = "1.0.0"

// Handler contains dependencies for the route handlers
type Handler struct {
	Service *service.RosterService
	Auth    *auth.Authenticator
	Metrics *metrics.Collector
	Logger  *zap.Logger
}

// AuthMiddleware verifies the JWT token for roster routes
func (h *Handler) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader("Authorization")
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{Error: "Authorization header required"})
			return
		}

		// Strip "Bearer " if present
		token = strings.TrimPrefix(token, "Bearer ")

		claims, err := h.Auth.VerifyToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{Error: "Invalid token"})
			return
		}

		c.Set("username", claims.Username)
		c.Next()
	}
}

// Login exchanges the shared password for a bearer token
func (h *Handler) Login(c *gin.Context) {
	var req models.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	token, err := h.Auth.Login(req.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "Invalid credentials"})
		return
	}
	if err != nil {
		h.logger().Error("could not create token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Could not create token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"access_token": token, "token_type": "bearer"})
}

// Index reports the service name and version
func (h *Handler) Index(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Trip Roster API",
		"version": Version,
	})
}

func (h *Handler) logger() *zap.Logger {
	if h.Logger == nil {
		return zap.NewNop()
	}
	return h.Logger
}
