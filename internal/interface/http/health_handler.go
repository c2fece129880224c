package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"health": "ok",
		"store":  "memory",
		"time":   s.now().Format(time.RFC3339),
	})
}
