package httpapi

import (
	"log"
	"net/http"
	"strings"
	"time"

	"ride-hail-client/internal/domain/auth"

	"github.com/gin-gonic/gin"
)

const ctxUser = "user"

func (s *Server) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := parseBearer(c.GetHeader("Authorization"))
		if token == "" {
			abortDetail(c, http.StatusUnauthorized, "Authentication credentials were not provided.")
			return
		}

		claims, err := s.tokenSvc.ParseAccessToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"detail": "Given token not valid for any token type",
				"code":   "token_not_valid",
			})
			return
		}

		user, err := s.store.FindByID(c.Request.Context(), claims.UserID)
		if err != nil {
			abortDetail(c, http.StatusUnauthorized, "User not found")
			return
		}

		c.Set(ctxUser, user)
		c.Next()
	}
}

func currentUser(c *gin.Context) auth.User {
	if v, ok := c.Get(ctxUser); ok {
		if u, ok := v.(auth.User); ok {
			return u
		}
	}
	return auth.User{}
}

func parseBearer(h string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(h), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func (s *Server) ginLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		log.Printf("[Backend] %3d | %13v | %-7s %s | req=%s",
			c.Writer.Status(),
			time.Since(start),
			c.Request.Method,
			path,
			c.GetHeader("X-Request-ID"),
		)
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PATCH, OPTIONS")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
